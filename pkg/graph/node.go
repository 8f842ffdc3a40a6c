package graph

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattjoyce/ffgraph/pkg/dag"
)

// Params are the positional and keyword parameters of an operation.
type Params struct {
	Args   []any
	Kwargs map[string]any
}

// Node is a graph vertex. Its kind fixes which streams it accepts, how many,
// and the kind of stream it produces.
type Node struct {
	repr *dag.ReprNode
	kind NodeKind

	incoming  StreamKinds
	outgoing  StreamKind
	minInputs int
	maxInputs int

	// attachMu serializes AttachStreams calls on one node.
	attachMu sync.Mutex
}

func newNode(spec StreamSpec, name string, kind NodeKind, maxInputs int, p Params) (*Node, error) {
	v := variants[kind]
	n := &Node{
		kind:      kind,
		incoming:  v.incoming,
		outgoing:  v.outgoing,
		minInputs: v.minInputs,
		maxInputs: maxInputs,
	}

	streams, err := Normalize(spec)
	if err != nil {
		return nil, err
	}
	if err := n.checkLen(streams.Len()); err != nil {
		return nil, err
	}
	if err := n.checkKinds(streams); err != nil {
		return nil, err
	}
	n.repr = dag.NewReprNode(edgeMapOf(streams), name, p.Args, p.Kwargs)
	return n, nil
}

func (n *Node) checkLen(count int) error {
	if count < n.minInputs {
		return &ArityError{Bound: BoundMin, Limit: n.minInputs, Actual: count}
	}
	if n.maxInputs != Unbounded && count > n.maxInputs {
		return &ArityError{Bound: BoundMax, Limit: n.maxInputs, Actual: count}
	}
	return nil
}

func (n *Node) checkKinds(streams StreamMap) error {
	for label, s := range streams.All() {
		if s == nil {
			return &TypeMismatchError{Expected: n.incoming.String(), Actual: "nil", Msg: "incoming stream " + label.Repr()}
		}
		if !n.incoming.Has(s.kind) {
			return &TypeMismatchError{
				Expected: n.incoming.String(),
				Actual:   s.kind.String(),
				Msg:      fmt.Sprintf("incoming stream %s of %s node", label.Repr(), n.kind),
			}
		}
	}
	return nil
}

func edgeMapOf(streams StreamMap) dag.EdgeMap {
	var m dag.EdgeMap
	for label, s := range streams.All() {
		m.Set(label, s.upstream())
	}
	return m
}

// Repr exposes the representation substrate; it satisfies dag.Vertex.
func (n *Node) Repr() *dag.ReprNode { return n.repr }

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the operation name.
func (n *Node) Name() string { return n.repr.Name() }

// Args returns a copy of the positional parameters.
func (n *Node) Args() []any { return n.repr.Args() }

// Kwargs returns a copy of the keyword parameters.
func (n *Node) Kwargs() map[string]any { return n.repr.Kwargs() }

// OutgoingKind returns the kind of stream this node produces.
func (n *Node) OutgoingKind() StreamKind { return n.outgoing }

// InputBounds returns the minimum and maximum incoming stream counts; max
// is Unbounded when there is no limit.
func (n *Node) InputBounds() (min, max int) { return n.minInputs, n.maxInputs }

// Hash returns the structural hash of the node.
func (n *Node) Hash() uint64 { return n.repr.Hash() }

// ShortHash returns the display fingerprint of Hash.
func (n *Node) ShortHash() string { return n.repr.ShortHash() }

// Equal reports structural equality.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.Hash() == o.Hash()
}

// Incoming returns a snapshot of the incoming edge map.
func (n *Node) Incoming() dag.EdgeMap { return n.repr.Incoming() }

// IncomingStreams rebuilds the incoming edge map as streams.
func (n *Node) IncomingStreams() StreamMap {
	var m StreamMap
	for label, up := range n.repr.Incoming().All() {
		src := up.Node.(*Node)
		m.Set(label, &Stream{node: src, label: up.Label, selector: up.Selector, kind: src.outgoing})
	}
	return m
}

// Stream creates an outgoing stream of this node. It is the only way edges
// originate from a node.
func (n *Node) Stream(label dag.Label, selector string) *Stream {
	return &Stream{node: n, label: label, selector: selector, kind: n.outgoing}
}

// Default returns the unlabeled outgoing stream.
func (n *Node) Default() *Stream { return n.Stream(dag.NoLabel, "") }

// Index evaluates the bracket form of stream creation: "0" or "name" picks a
// label, "0:audio" also selects a component, ":audio" selects a component of
// the unlabeled output.
func (n *Node) Index(expr string) (*Stream, error) {
	label, selector, hasSelector := strings.Cut(expr, ":")
	if hasSelector && selector == "" {
		return nil, invalidUsage("missing component name in %q", expr)
	}
	return n.Stream(dag.ParseLabel(label), selector), nil
}

// AttachStreams adds incoming streams after construction. New entries are
// appended after the existing ones and unlabeled or positional labels are
// renumbered into one sequence; named labels are kept. The stored edge map
// is replaced only if the merged map passes validation.
func (n *Node) AttachStreams(spec StreamSpec) error {
	added, err := Normalize(spec)
	if err != nil {
		return err
	}
	if err := n.checkKinds(added); err != nil {
		return err
	}

	n.attachMu.Lock()
	defer n.attachMu.Unlock()

	current := n.repr.Incoming()
	var merged dag.EdgeMap
	pos := 0
	appendEntry := func(label dag.Label, up dag.Upstream) error {
		if label.IsNamed() {
			if merged.Has(label) {
				return invalidUsage("duplicate incoming label %s", label.Repr())
			}
			merged.Set(label, up)
			return nil
		}
		merged.Set(dag.Index(pos), up)
		pos++
		return nil
	}
	for label, up := range current.All() {
		if err := appendEntry(label, up); err != nil {
			return err
		}
	}
	for label, s := range added.All() {
		if err := appendEntry(label, s.upstream()); err != nil {
			return err
		}
	}

	if err := n.checkLen(merged.Len()); err != nil {
		return err
	}
	for label, s := range added.All() {
		if s.node.reaches(n) {
			return invalidUsage("incoming stream %s is downstream of %s; attaching it would create a cycle", label.Repr(), n.ShortRepr())
		}
	}
	n.repr.ReplaceIncoming(merged)
	return nil
}

// reaches reports whether target is n or lies upstream of n.
func (n *Node) reaches(target *Node) bool {
	want := target.repr
	seen := map[*dag.ReprNode]bool{}
	stack := []*dag.ReprNode{n.repr}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r == want {
			return true
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		for _, up := range r.Incoming().Values() {
			stack = append(stack, up.Node.Repr())
		}
	}
	return false
}

// ShortRepr is the compact display name: the file basename for input,
// source and output nodes that have one, otherwise the operation name.
func (n *Node) ShortRepr() string {
	if n.kind == KindInput || n.kind == KindSource || n.kind == KindOutput {
		if v, ok := n.repr.Kwarg("filename"); ok {
			if s := fmt.Sprint(v); s != "" {
				return filepath.Base(s)
			}
		}
	}
	return n.repr.Name()
}

func (n *Node) describe(includeHash bool) string {
	return n.repr.LongRepr(n.ShortRepr(), includeHash)
}

func (n *Node) String() string { return n.describe(true) }
