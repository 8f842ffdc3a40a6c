package dag

import (
	"cmp"
	"strconv"
)

type labelKind uint8

const (
	unlabeled labelKind = iota
	positional
	named
)

// Label identifies one edge among the edges entering or leaving a node. It is
// either absent (NoLabel), a position (Index) or a caller-chosen name (Named).
// Labels are comparable and may be used as map keys.
type Label struct {
	kind  labelKind
	index int
	name  string
}

// NoLabel is the label of a node's single default output.
var NoLabel = Label{}

// Index returns a positional label.
func Index(i int) Label {
	return Label{kind: positional, index: i}
}

// Named returns a named label. An empty name yields NoLabel.
func Named(name string) Label {
	if name == "" {
		return NoLabel
	}
	return Label{kind: named, name: name}
}

// ParseLabel converts the textual form used in pipeline files and bracket
// expressions: "" is NoLabel, an unsigned decimal is positional and anything
// else is a name.
func ParseLabel(s string) Label {
	if s == "" {
		return NoLabel
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Named(s)
		}
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return Named(s)
	}
	return Index(i)
}

// IsNone reports whether l is NoLabel.
func (l Label) IsNone() bool { return l.kind == unlabeled }

// Position returns the index of a positional label.
func (l Label) Position() (int, bool) {
	return l.index, l.kind == positional
}

// Name returns the name of a named label.
func (l Label) Name() (string, bool) {
	return l.name, l.kind == named
}

// IsNamed reports whether l was created with Named.
func (l Label) IsNamed() bool { return l.kind == named }

func (l Label) String() string {
	switch l.kind {
	case positional:
		return strconv.Itoa(l.index)
	case named:
		return l.name
	default:
		return ""
	}
}

// Repr is the quoted display form: None, 0 or 'name'.
func (l Label) Repr() string {
	switch l.kind {
	case positional:
		return strconv.Itoa(l.index)
	case named:
		return "'" + l.name + "'"
	default:
		return "None"
	}
}

// Compare orders NoLabel first, then positions by index, then names
// lexicographically.
func (l Label) Compare(o Label) int {
	if c := cmp.Compare(l.kind, o.kind); c != 0 {
		return c
	}
	if c := cmp.Compare(l.index, o.index); c != 0 {
		return c
	}
	return cmp.Compare(l.name, o.name)
}

// Hash is stable across processes and distinguishes Index(0) from Named("0").
func (l Label) Hash() uint64 {
	buf := make([]byte, 0, 10+len(l.name))
	buf = append(buf, 'L', byte(l.kind))
	buf = strconv.AppendInt(buf, int64(l.index), 10)
	buf = append(buf, ':')
	buf = append(buf, l.name...)
	return sum64(buf)
}
