// Package dag is the representation substrate underneath the filter graph:
// edge labels, ordered edge maps, structural hashing and topological
// linearization.
//
// A ReprNode stores an operation name, its positional and keyword
// parameters and the map of incoming edges. Its hash is derived from those
// values and, recursively, from the hashes of its upstream nodes, so two
// separately constructed nodes with the same operation, parameters and
// upstream structure hash equal and are treated as the same node by
// TopoSort.
package dag
