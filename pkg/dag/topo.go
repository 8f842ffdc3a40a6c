package dag

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotDAG is returned by TopoSort when the graph contains a cycle.
var ErrNotDAG = errors.New("graph is not a DAG")

// Downstream is one consumer of an upstream node's output.
type Downstream struct {
	Node     Vertex
	Label    Label
	Selector string
}

// OutgoingEdge pairs an upstream output label with one of its consumers.
type OutgoingEdge struct {
	UpstreamLabel Label
	Downstream
}

// Sorted is the result of TopoSort.
type Sorted struct {
	// Nodes lists every reachable node once, upstream before downstream.
	Nodes []Vertex

	hashes   *hasher
	outgoing map[uint64]*LabelMap[[]Downstream]
}

// Hash returns the structural hash of v. Every node reached by TopoSort is
// hashed once during the sort; other vertices fall back to Repr().Hash().
func (s *Sorted) Hash(v Vertex) uint64 {
	if r, ok := s.hashes.memo[v.Repr()]; ok {
		return r.value
	}
	return v.Repr().Hash()
}

// Outgoing returns the consumers of v grouped by upstream label, with labels
// in sorted order.
func (s *Sorted) Outgoing(v Vertex) LabelMap[[]Downstream] {
	m, ok := s.outgoing[s.Hash(v)]
	if !ok {
		return LabelMap[[]Downstream]{}
	}
	labels := m.Labels()
	slices.SortStableFunc(labels, Label.Compare)
	var out LabelMap[[]Downstream]
	for _, l := range labels {
		ds, _ := m.Get(l)
		out.Set(l, slices.Clone(ds))
	}
	return out
}

// OutgoingEdges flattens Outgoing into a list ordered by upstream label.
func (s *Sorted) OutgoingEdges(v Vertex) []OutgoingEdge {
	var out []OutgoingEdge
	for label, ds := range s.Outgoing(v).All() {
		for _, d := range ds {
			out = append(out, OutgoingEdge{UpstreamLabel: label, Downstream: d})
		}
	}
	return out
}

// TopoSort linearizes everything reachable upstream of roots. Nodes are
// identified by structural hash, so hash-equal nodes appear once.
func TopoSort(roots []Vertex) (*Sorted, error) {
	s := &Sorted{hashes: newHasher(), outgoing: make(map[uint64]*LabelMap[[]Downstream])}
	marked := make(map[uint64]bool)
	done := make(map[uint64]bool)

	var visit func(up Vertex, upLabel Label, down *Downstream) error
	visit = func(up Vertex, upLabel Label, down *Downstream) error {
		h := s.hashes.hash(up.Repr()).value
		if marked[h] {
			return fmt.Errorf("%w: cycle through %s", ErrNotDAG, up.Repr().Name())
		}
		if down != nil {
			m, ok := s.outgoing[h]
			if !ok {
				m = &LabelMap[[]Downstream]{}
				s.outgoing[h] = m
			}
			ds, _ := m.Get(upLabel)
			m.Set(upLabel, append(ds, *down))
		}
		if done[h] {
			return nil
		}
		marked[h] = true
		for label, edge := range up.Repr().Incoming().All() {
			d := &Downstream{Node: up, Label: label, Selector: edge.Selector}
			if err := visit(edge.Node, edge.Label, d); err != nil {
				return err
			}
		}
		delete(marked, h)
		done[h] = true
		s.Nodes = append(s.Nodes, up)
		return nil
	}

	for _, root := range roots {
		if err := visit(root, NoLabel, nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}
