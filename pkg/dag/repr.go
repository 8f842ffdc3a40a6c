package dag

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// generation advances on every ReplaceIncoming. Cached hashes are only valid
// for the generation they were computed in, since a change anywhere upstream
// changes every downstream hash.
var generation atomic.Uint64

// Vertex is anything that owns a ReprNode. Upstream references point at
// vertices so higher layers can recover their own node type.
type Vertex interface {
	Repr() *ReprNode
}

// Upstream is the source end of an incoming edge.
type Upstream struct {
	Node     Vertex
	Label    Label
	Selector string
}

// EdgeMap maps a downstream (incoming) label to the upstream it is bound to.
type EdgeMap = LabelMap[Upstream]

// ReprNode stores a node's operation, parameters and incoming edges, and
// derives the node's structural hash from them.
type ReprNode struct {
	name   string
	args   []any
	kwargs map[string]any

	mu       sync.RWMutex
	incoming EdgeMap
	hashGen  uint64
	hashVal  uint64
	hashOK   bool
}

// NewReprNode copies its arguments; later changes to args, kwargs or incoming
// by the caller are not observed.
func NewReprNode(incoming EdgeMap, name string, args []any, kwargs map[string]any) *ReprNode {
	n := &ReprNode{
		name:     name,
		args:     append([]any{}, args...),
		kwargs:   make(map[string]any, len(kwargs)),
		incoming: incoming.Clone(),
	}
	maps.Copy(n.kwargs, kwargs)
	return n
}

// Name returns the operation name.
func (n *ReprNode) Name() string { return n.name }

// Args returns a copy of the positional parameters.
func (n *ReprNode) Args() []any { return slices.Clone(n.args) }

// Kwargs returns a copy of the keyword parameters.
func (n *ReprNode) Kwargs() map[string]any { return maps.Clone(n.kwargs) }

// Kwarg returns one keyword parameter.
func (n *ReprNode) Kwarg(key string) (any, bool) {
	v, ok := n.kwargs[key]
	return v, ok
}

// Incoming returns a snapshot of the incoming edge map.
func (n *ReprNode) Incoming() EdgeMap {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.incoming.Clone()
}

// IncomingLen returns the number of incoming edges.
func (n *ReprNode) IncomingLen() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.incoming.Len()
}

// ReplaceIncoming swaps in a new incoming edge map. Callers validate the map
// before calling; the swap itself cannot fail.
func (n *ReprNode) ReplaceIncoming(m EdgeMap) {
	next := m.Clone()
	n.mu.Lock()
	n.incoming = next
	n.hashOK = false
	n.mu.Unlock()
	generation.Add(1)
}

// Hash returns the structural hash: operation name, parameters, and for
// every incoming edge its label and the upstream node, label and selector.
// Results are cached until the next ReplaceIncoming on any node.
func (n *ReprNode) Hash() uint64 {
	return newHasher().hash(n).value
}

func (n *ReprNode) cachedHash(gen uint64) (uint64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.hashOK && n.hashGen == gen {
		return n.hashVal, true
	}
	return 0, false
}

func (n *ReprNode) storeHash(gen, h uint64) {
	n.mu.Lock()
	n.hashGen, n.hashVal, n.hashOK = gen, h, true
	n.mu.Unlock()
}

type hashResult struct {
	value uint64
	// partial is set when a cycle was cut short; such hashes are not cached.
	partial bool
}

// hasher shares intermediate hashes across every node it is asked about, so
// hashing a whole graph visits each node once.
type hasher struct {
	gen      uint64
	memo     map[*ReprNode]hashResult
	visiting map[*ReprNode]bool
}

func newHasher() *hasher {
	return &hasher{
		gen:      generation.Load(),
		memo:     make(map[*ReprNode]hashResult),
		visiting: make(map[*ReprNode]bool),
	}
}

func (h *hasher) hash(n *ReprNode) hashResult {
	if r, ok := h.memo[n]; ok {
		return r
	}
	if h.visiting[n] {
		// Cyclic graphs have no structural hash; TopoSort reports them.
		return hashResult{partial: true}
	}
	if v, ok := n.cachedHash(h.gen); ok {
		r := hashResult{value: v}
		h.memo[n] = r
		return r
	}
	h.visiting[n] = true
	defer delete(h.visiting, n)

	edges := n.Incoming()
	hashes := make([]uint64, 0, 4*edges.Len()+1)
	partial := false
	for label, up := range edges.All() {
		r := h.hash(up.Node.Repr())
		partial = partial || r.partial
		hashes = append(hashes, label.Hash(), r.value, up.Label.Hash(), HashString(up.Selector))
	}
	hashes = append(hashes, n.innerHash())

	r := hashResult{value: CombineHashes(hashes...), partial: partial}
	h.memo[n] = r
	if !partial {
		n.storeHash(h.gen, r.value)
	}
	return r
}

func (n *ReprNode) innerHash() uint64 {
	return CombineHashes(HashString(n.name), HashValue(n.args), HashValue(n.kwargs))
}

// ShortHash is the 12 character display fingerprint of Hash.
func (n *ReprNode) ShortHash() string {
	return ShortHash(n.Hash())
}

// FormatParams renders parameters as they appear in descriptions:
// positional values first, then key=value pairs sorted by key.
func (n *ReprNode) FormatParams() string {
	parts := make([]string, 0, len(n.args)+len(n.kwargs))
	for _, a := range n.args {
		parts = append(parts, reprValue(a))
	}
	for _, k := range slices.Sorted(maps.Keys(n.kwargs)) {
		parts = append(parts, k+"="+reprValue(n.kwargs[k]))
	}
	return strings.Join(parts, ", ")
}

// LongRepr renders "name(params) <hash>", with the hash suffix optional.
func (n *ReprNode) LongRepr(display string, includeHash bool) string {
	if display == "" {
		display = n.name
	}
	out := fmt.Sprintf("%s(%s)", display, n.FormatParams())
	if includeHash {
		out += " <" + n.ShortHash() + ">"
	}
	return out
}

func reprValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprint(v)
}
