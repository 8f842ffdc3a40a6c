// Package graph is the typed filter graph IR.
//
// Nodes are vertices of a closed set of kinds (input, source, filter, output,
// merge_outputs, global). Streams are typed handles to a node's outgoing
// edges. Constructors validate the number and kind of incoming streams, and
// AttachStreams re-validates atomically when streams are added later.
//
// A node's identity is structural: it is derived from the operation name,
// the parameters and the identities of upstream nodes, see package dag.
package graph
