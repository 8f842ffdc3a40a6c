package graph

import "strings"

// NodeKind tags the closed set of vertex variants.
type NodeKind uint8

const (
	KindInput NodeKind = iota
	KindSource
	KindFilter
	KindOutput
	KindMergeOutputs
	KindGlobal
)

var nodeKindNames = [...]string{
	KindInput:        "input",
	KindSource:       "source",
	KindFilter:       "filter",
	KindOutput:       "output",
	KindMergeOutputs: "merge_outputs",
	KindGlobal:       "global",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// NodeKinds is a set of node kinds.
type NodeKinds uint8

// KindsOf builds a set.
func KindsOf(kinds ...NodeKind) NodeKinds {
	var s NodeKinds
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports membership.
func (s NodeKinds) Has(k NodeKind) bool { return s&(1<<k) != 0 }

func (s NodeKinds) String() string {
	var names []string
	for k := KindInput; k <= KindGlobal; k++ {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// StreamKind tags the two kinds of stream.
type StreamKind uint8

const (
	// Processable streams come from inputs, sources and filters; filters and
	// outputs consume them.
	Processable StreamKind = iota
	// OutputKind streams come from output, merge_outputs and global nodes.
	OutputKind
)

func (k StreamKind) String() string {
	switch k {
	case Processable:
		return "processable"
	case OutputKind:
		return "output"
	default:
		return "unknown"
	}
}

// Sources returns the node kinds a stream of kind k may originate from.
func (k StreamKind) Sources() NodeKinds {
	switch k {
	case Processable:
		return KindsOf(KindInput, KindFilter, KindSource)
	case OutputKind:
		return KindsOf(KindOutput, KindGlobal, KindMergeOutputs)
	default:
		return 0
	}
}

// StreamKinds is a set of stream kinds.
type StreamKinds uint8

// StreamKindsOf builds a set.
func StreamKindsOf(kinds ...StreamKind) StreamKinds {
	var s StreamKinds
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports membership.
func (s StreamKinds) Has(k StreamKind) bool { return s&(1<<k) != 0 }

func (s StreamKinds) String() string {
	var names []string
	for _, k := range []StreamKind{Processable, OutputKind} {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Unbounded disables the maximum incoming stream count.
const Unbounded = -1

// variant fixes the construction parameters of one node kind.
type variant struct {
	incoming  StreamKinds
	outgoing  StreamKind
	minInputs int
	maxInputs int
}

var variants = [...]variant{
	KindInput:        {incoming: 0, outgoing: Processable, minInputs: 0, maxInputs: 0},
	KindSource:       {incoming: 0, outgoing: Processable, minInputs: 0, maxInputs: 0},
	KindFilter:       {incoming: StreamKindsOf(Processable), outgoing: Processable, minInputs: 1, maxInputs: 1},
	KindOutput:       {incoming: StreamKindsOf(Processable), outgoing: OutputKind, minInputs: 0, maxInputs: Unbounded},
	KindMergeOutputs: {incoming: StreamKindsOf(OutputKind), outgoing: OutputKind, minInputs: 1, maxInputs: Unbounded},
	KindGlobal:       {incoming: StreamKindsOf(OutputKind), outgoing: OutputKind, minInputs: 1, maxInputs: 1},
}
