package ffmpeg

import (
	"github.com/mattjoyce/ffgraph/pkg/dag"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

// Kwargs are keyword parameters of an operation.
type Kwargs map[string]any

func params(args []any, kw Kwargs) graph.Params {
	return graph.Params{Args: args, Kwargs: map[string]any(kw)}
}

// Stream is a processable stream: the output of an input, source or filter.
type Stream struct {
	s   *graph.Stream
	err error
}

// OutputStream is the output of an output, merge_outputs or global node.
type OutputStream struct {
	s   *graph.Stream
	err error
}

// Node wraps a node whose outgoing streams are picked by label, such as the
// result of FilterMultiOutput or Split.
type Node struct {
	n   *graph.Node
	err error
}

func streamOf(n *graph.Node, err error) Stream {
	if err != nil {
		return Stream{err: err}
	}
	return Stream{s: n.Default()}
}

func outputOf(n *graph.Node, err error) OutputStream {
	if err != nil {
		return OutputStream{err: err}
	}
	return OutputStream{s: n.Default()}
}

// Err returns the first error recorded while building the stream.
func (s Stream) Err() error { return s.err }

// Graph returns the underlying IR stream.
func (s Stream) Graph() (*graph.Stream, error) { return s.s, s.err }

// Node returns the upstream node of the stream.
func (s Stream) Node() *graph.Node {
	if s.s == nil {
		return nil
	}
	return s.s.Node()
}

// Select narrows the stream to one component, e.g. "a" or "v".
func (s Stream) Select(component string) Stream {
	if s.err != nil {
		return s
	}
	sel, err := s.s.Select(component)
	return Stream{s: sel, err: err}
}

// Index is the bracket form of Select and only accepts ":component".
func (s Stream) Index(expr string) Stream {
	if s.err != nil {
		return s
	}
	sel, err := s.s.Index(expr)
	return Stream{s: sel, err: err}
}

// Audio is shorthand for Select("a").
func (s Stream) Audio() Stream { return s.Select("a") }

// Video is shorthand for Select("v").
func (s Stream) Video() Stream { return s.Select("v") }

func (s Stream) String() string {
	if s.err != nil {
		return "<error: " + s.err.Error() + ">"
	}
	return s.s.String()
}

// Err returns the first error recorded while building the stream.
func (o OutputStream) Err() error { return o.err }

// Graph returns the underlying IR stream.
func (o OutputStream) Graph() (*graph.Stream, error) { return o.s, o.err }

// Node returns the upstream node of the stream.
func (o OutputStream) Node() *graph.Node {
	if o.s == nil {
		return nil
	}
	return o.s.Node()
}

func (o OutputStream) String() string {
	if o.err != nil {
		return "<error: " + o.err.Error() + ">"
	}
	return o.s.String()
}

// Err returns the error recorded while building the node.
func (n Node) Err() error { return n.err }

// Graph returns the underlying IR node.
func (n Node) Graph() (*graph.Node, error) { return n.n, n.err }

// Stream returns the outgoing stream with the given position.
func (n Node) Stream(i int) Stream {
	if n.err != nil {
		return Stream{err: n.err}
	}
	return Stream{s: n.n.Stream(dag.Index(i), "")}
}

// Index is the bracket form: "0", "name", "0:a" or ":a".
func (n Node) Index(expr string) Stream {
	if n.err != nil {
		return Stream{err: n.err}
	}
	s, err := n.n.Index(expr)
	return Stream{s: s, err: err}
}

func graphStreams(streams []Stream) ([]*graph.Stream, error) {
	out := make([]*graph.Stream, len(streams))
	for i, s := range streams {
		if s.err != nil {
			return nil, s.err
		}
		out[i] = s.s
	}
	return out, nil
}

func graphOutputs(streams []OutputStream) ([]*graph.Stream, error) {
	out := make([]*graph.Stream, len(streams))
	for i, s := range streams {
		if s.err != nil {
			return nil, s.err
		}
		out[i] = s.s
	}
	return out, nil
}
