package graph

import (
	"errors"
	"testing"

	"github.com/mattjoyce/ffgraph/pkg/dag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInput(t *testing.T, filename string) *Node {
	t.Helper()
	n, err := NewInputNode("input", Params{Kwargs: map[string]any{"filename": filename}})
	require.NoError(t, err)
	return n
}

func mustFilter(t *testing.T, spec StreamSpec, name string, p Params) *Node {
	t.Helper()
	n, err := NewFilterNode(spec, name, 0, p)
	require.NoError(t, err)
	return n
}

func TestFilterArity(t *testing.T) {
	in := mustInput(t, "in.mp4")

	_, err := NewFilterNode(nil, "hflip", 1, Params{})
	var arityErr *ArityError
	require.ErrorAs(t, err, &arityErr)
	assert.Equal(t, BoundMin, arityErr.Bound)
	assert.Equal(t, 0, arityErr.Actual)

	_, err = NewFilterNode([]*Stream{in.Default(), in.Default()}, "hflip", 1, Params{})
	require.ErrorAs(t, err, &arityErr)
	assert.Equal(t, BoundMax, arityErr.Bound)
	assert.Equal(t, 1, arityErr.Limit)
	assert.Equal(t, 2, arityErr.Actual)
	assert.True(t, errors.Is(err, ErrArity))

	n, err := NewFilterNode(in.Default(), "hflip", 1, Params{})
	require.NoError(t, err)
	assert.Equal(t, 1, n.Incoming().Len())
}

func TestFilterUnboundedInputs(t *testing.T) {
	in := mustInput(t, "in.mp4")
	streams := []*Stream{in.Default(), in.Default(), in.Default()}
	n, err := NewFilterNode(streams, "concat", Unbounded, Params{})
	require.NoError(t, err)
	assert.Equal(t, []dag.Label{dag.Index(0), dag.Index(1), dag.Index(2)}, n.Incoming().Labels())
}

func TestOutputRejectsOutputStream(t *testing.T) {
	in := mustInput(t, "in.mp4")
	out, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "a.mp4"}})
	require.NoError(t, err)

	_, err = NewOutputNode(out.Default(), "output", Params{Kwargs: map[string]any{"filename": "b.mp4"}})
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "output", tm.Actual)
	assert.Contains(t, tm.Expected, "processable")
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestOutputAllowsNoStreams(t *testing.T) {
	out, err := NewOutputNode(nil, "output", Params{Kwargs: map[string]any{"filename": "a.mp4"}})
	require.NoError(t, err)
	assert.Zero(t, out.Incoming().Len())
}

func TestGlobalAndMergeBounds(t *testing.T) {
	in := mustInput(t, "in.mp4")
	out1, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "a.mp4"}})
	require.NoError(t, err)
	out2, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "b.mp4"}})
	require.NoError(t, err)

	_, err = NewGlobalNode([]*Stream{out1.Default(), out2.Default()}, "overwrite_output", Params{})
	assert.ErrorIs(t, err, ErrArity)

	_, err = NewMergeOutputsNode(nil, "merge_outputs")
	assert.ErrorIs(t, err, ErrArity)

	merged, err := NewMergeOutputsNode([]*Stream{out1.Default(), out2.Default()}, "merge_outputs")
	require.NoError(t, err)

	g, err := NewGlobalNode(merged.Default(), "overwrite_output", Params{})
	require.NoError(t, err)
	assert.Equal(t, OutputKind, g.Default().Kind())

	_, err = NewGlobalNode(in.Default(), "overwrite_output", Params{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestHashIsStructural(t *testing.T) {
	build := func() *Node {
		in := mustInput(t, "in.mp4")
		return mustFilter(t, in.Default(), "scale", Params{Args: []any{320, -1}, Kwargs: map[string]any{"flags": "lanczos"}})
	}
	a, b := build(), build()
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))

	in := mustInput(t, "in.mp4")
	c := mustFilter(t, in.Default(), "scale", Params{Args: []any{640, -1}, Kwargs: map[string]any{"flags": "lanczos"}})
	assert.NotEqual(t, a.Hash(), c.Hash())

	d := mustFilter(t, in.Stream(dag.Index(1), ""), "scale", Params{Args: []any{320, -1}, Kwargs: map[string]any{"flags": "lanczos"}})
	assert.NotEqual(t, a.Hash(), d.Hash())
}

func TestAttachStreamsMergesAndRenumbers(t *testing.T) {
	in := mustInput(t, "in.mp4")
	out, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "a.mp4"}})
	require.NoError(t, err)
	before := out.Hash()

	require.NoError(t, out.AttachStreams([]*Stream{in.Stream(dag.NoLabel, "a")}))

	edges := out.Incoming()
	assert.Equal(t, []dag.Label{dag.Index(0), dag.Index(1)}, edges.Labels())
	second, _ := edges.Get(dag.Index(1))
	assert.Equal(t, "a", second.Selector)
	assert.NotEqual(t, before, out.Hash())
}

func TestAttachStreamsKeepsNamedLabels(t *testing.T) {
	in := mustInput(t, "in.mp4")
	out, err := NewOutputNode(StreamMap{}, "output", Params{Kwargs: map[string]any{"filename": "a.mp4"}})
	require.NoError(t, err)

	require.NoError(t, out.AttachStreams(map[string]*Stream{"main": in.Default()}))
	require.NoError(t, out.AttachStreams(in.Default()))
	assert.Equal(t, []dag.Label{dag.Named("main"), dag.Index(0)}, out.Incoming().Labels())

	err = out.AttachStreams(map[string]*Stream{"main": in.Default()})
	assert.ErrorIs(t, err, ErrInvalidUsage)
	assert.Equal(t, 2, out.Incoming().Len())
}

func TestAttachStreamsFailureLeavesNodeIntact(t *testing.T) {
	in := mustInput(t, "in.mp4")
	out, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "a.mp4"}})
	require.NoError(t, err)
	g, err := NewGlobalNode(out.Default(), "overwrite_output", Params{})
	require.NoError(t, err)

	other, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "b.mp4"}})
	require.NoError(t, err)
	before := g.Incoming()
	hash := g.Hash()

	err = g.AttachStreams(other.Default())
	assert.ErrorIs(t, err, ErrArity)
	assert.Equal(t, before.Labels(), g.Incoming().Labels())
	assert.Equal(t, hash, g.Hash())

	err = out.AttachStreams(other.Default())
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 1, out.Incoming().Len())

	f := mustFilter(t, in.Default(), "hflip", Params{})
	err = f.AttachStreams(in.Default())
	assert.ErrorIs(t, err, ErrArity)
	assert.Equal(t, 1, f.Incoming().Len())
}

func TestAttachStreamsRejectsCycles(t *testing.T) {
	in := mustInput(t, "in.mp4")
	out1, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "a.mp4"}})
	require.NoError(t, err)
	out2, err := NewOutputNode(in.Default(), "output", Params{Kwargs: map[string]any{"filename": "b.mp4"}})
	require.NoError(t, err)
	merge, err := NewMergeOutputsNode([]*Stream{out1.Default(), out2.Default()}, "merge_outputs")
	require.NoError(t, err)
	hash := merge.Hash()

	err = merge.AttachStreams(merge.Default())
	assert.ErrorIs(t, err, ErrInvalidUsage)
	assert.Contains(t, err.Error(), "cycle")
	assert.Equal(t, 2, merge.Incoming().Len())
	assert.Equal(t, hash, merge.Hash())

	concat, err := NewFilterNode(in.Default(), "concat", Unbounded, Params{})
	require.NoError(t, err)
	flipped := mustFilter(t, concat.Default(), "hflip", Params{})
	err = concat.AttachStreams(flipped.Default())
	assert.ErrorIs(t, err, ErrInvalidUsage)
	assert.Equal(t, 1, concat.Incoming().Len())

	_, err = dag.TopoSort([]dag.Vertex{flipped})
	require.NoError(t, err)

	// A sibling branch is not a cycle.
	other := mustFilter(t, in.Default(), "vflip", Params{})
	require.NoError(t, concat.AttachStreams(other.Default()))
	assert.Equal(t, 2, concat.Incoming().Len())
}

func TestNodeIndex(t *testing.T) {
	in := mustInput(t, "in.mp4")
	s, err := in.Index("0:audio")
	require.NoError(t, err)
	assert.Equal(t, dag.Index(0), s.Label())
	assert.Equal(t, "audio", s.Selector())

	s, err = in.Index("main")
	require.NoError(t, err)
	assert.Equal(t, dag.Named("main"), s.Label())

	s, err = in.Index(":v")
	require.NoError(t, err)
	assert.True(t, s.Label().IsNone())
	assert.Equal(t, "v", s.Selector())

	_, err = in.Index("0:")
	assert.ErrorIs(t, err, ErrInvalidUsage)
}

func TestShortRepr(t *testing.T) {
	in := mustInput(t, "/media/clips/in.mp4")
	assert.Equal(t, "in.mp4", in.ShortRepr())
	f := mustFilter(t, in.Default(), "hflip", Params{})
	assert.Equal(t, "hflip", f.ShortRepr())
	assert.Contains(t, in.String(), "in.mp4(filename='/media/clips/in.mp4')")
}

func TestIncomingStreams(t *testing.T) {
	in := mustInput(t, "in.mp4")
	f := mustFilter(t, in.Stream(dag.NoLabel, "v"), "hflip", Params{})
	streams := f.IncomingStreams()
	s, ok := streams.Get(dag.NoLabel)
	require.True(t, ok)
	assert.Same(t, in, s.Node())
	assert.Equal(t, "v", s.Selector())
	assert.Equal(t, Processable, s.Kind())
}
