package graph

import (
	"fmt"
	"strings"

	"github.com/mattjoyce/ffgraph/pkg/dag"
)

// Stream is a typed handle to one outgoing edge of a node, optionally
// narrowed to a named component such as "a" or "v". Streams are immutable.
type Stream struct {
	node     *Node
	label    dag.Label
	selector string
	kind     StreamKind
}

// NewStream validates that node may be the source of a stream of kind.
func NewStream(node *Node, label dag.Label, kind StreamKind, selector string) (*Stream, error) {
	if node == nil {
		return nil, &TypeMismatchError{Expected: kind.Sources().String(), Actual: "nil", Msg: "upstream node"}
	}
	if !kind.Sources().Has(node.kind) {
		return nil, &TypeMismatchError{
			Expected: kind.Sources().String(),
			Actual:   node.kind.String(),
			Msg:      "upstream node of " + kind.String() + " stream",
		}
	}
	return &Stream{node: node, label: label, selector: selector, kind: kind}, nil
}

// Node returns the upstream node.
func (s *Stream) Node() *Node { return s.node }

// Label returns the upstream label.
func (s *Stream) Label() dag.Label { return s.label }

// Selector returns the component selector, empty when none.
func (s *Stream) Selector() string { return s.selector }

// Kind returns the stream kind.
func (s *Stream) Kind() StreamKind { return s.kind }

// Hash combines the node hash with the label hash. The selector is not part
// of a stream's identity.
func (s *Stream) Hash() uint64 {
	return dag.CombineHashes(s.node.Hash(), s.label.Hash())
}

// Equal reports whether both streams refer to the same node output.
func (s *Stream) Equal(o *Stream) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Hash() == o.Hash()
}

// Select returns a stream for a component of the same output. It can only
// pick a component that already exists on the output; use a split filter to
// duplicate a stream.
func (s *Stream) Select(component string) (*Stream, error) {
	if component == "" {
		return nil, invalidUsage("empty component selector")
	}
	return &Stream{node: s.node, label: s.label, selector: component, kind: s.kind}, nil
}

// Index evaluates the bracket form of component selection. Only the bare
// component form ":name" is accepted; "name" and "start:name" are rejected.
func (s *Stream) Index(expr string) (*Stream, error) {
	start, component, ok := strings.Cut(expr, ":")
	if !ok || start != "" {
		return nil, invalidUsage("use %q, not %q", ":"+lastPart(expr), expr)
	}
	if component == "" {
		return nil, invalidUsage("missing component name in %q", expr)
	}
	return s.Select(component)
}

func lastPart(expr string) string {
	if i := strings.LastIndex(expr, ":"); i >= 0 {
		return expr[i+1:]
	}
	return expr
}

func (s *Stream) String() string {
	selector := ""
	if s.selector != "" {
		selector = ":" + s.selector
	}
	return fmt.Sprintf("%s[%s%s] <%s>", s.node.describe(false), s.label.Repr(), selector, s.node.ShortHash())
}

func (s *Stream) upstream() dag.Upstream {
	return dag.Upstream{Node: s.node, Label: s.label, Selector: s.selector}
}
