package graph

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mattjoyce/ffgraph/pkg/dag"
)

// StreamMap maps an incoming edge label to the stream bound to it.
type StreamMap = dag.LabelMap[*Stream]

// StreamSpec is any value accepted by Normalize: nil, *Stream, []*Stream,
// StreamMap, *StreamMap or map[string]*Stream.
type StreamSpec any

// Normalize turns a caller's stream specification into a StreamMap:
//   - nil yields an empty map
//   - a single stream is stored under dag.NoLabel
//   - a slice is keyed by position
//   - a StreamMap is returned as a copy
//   - a map[string]*Stream is keyed by name, sorted
func Normalize(spec StreamSpec) (StreamMap, error) {
	var m StreamMap
	switch v := spec.(type) {
	case nil:
	case *Stream:
		m.Set(dag.NoLabel, v)
	case []*Stream:
		for i, s := range v {
			m.Set(dag.Index(i), s)
		}
	case StreamMap:
		m = v.Clone()
	case *StreamMap:
		if v != nil {
			m = v.Clone()
		}
	case map[string]*Stream:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			m.Set(dag.Named(k), v[k])
		}
	default:
		return StreamMap{}, &TypeMismatchError{
			Expected: "{nil, *Stream, []*Stream, StreamMap, map[string]*Stream}",
			Actual:   fmt.Sprintf("%T", spec),
			Msg:      "stream spec",
		}
	}
	return m, nil
}

// NodesOf returns the upstream node of every stream in m, in order.
func NodesOf(m StreamMap) ([]*Node, error) {
	nodes := make([]*Node, 0, m.Len())
	for label, s := range m.All() {
		if s == nil {
			return nil, &TypeMismatchError{Expected: "Stream", Actual: "nil", Msg: "stream " + label.Repr()}
		}
		nodes = append(nodes, s.node)
	}
	return nodes, nil
}

// SpecNodes is Normalize followed by NodesOf.
func SpecNodes(spec StreamSpec) ([]*Node, error) {
	m, err := Normalize(spec)
	if err != nil {
		return nil, err
	}
	return NodesOf(m)
}
