package graph

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// OperatorFunc applies a named operation to zero or more streams and returns
// the node it created.
type OperatorFunc func(in []*Stream, p Params) (*Node, error)

// Operator is a registered operation and the stream kinds it applies to. An
// operator with no kinds is a constructor and accepts no streams.
type Operator struct {
	Name  string
	Kinds StreamKinds
	Fn    OperatorFunc
}

// OperatorTable maps operation names to functions so that callers holding
// only a name, such as pipeline files, can apply them to streams. Stream
// types are never modified by registration.
type OperatorTable struct {
	mu  sync.RWMutex
	ops map[string]Operator
}

// NewOperatorTable returns an empty table.
func NewOperatorTable() *OperatorTable {
	return &OperatorTable{ops: make(map[string]Operator)}
}

// Register adds fn under name for the given stream kinds.
func (t *OperatorTable) Register(name string, fn OperatorFunc, kinds ...StreamKind) error {
	if name == "" {
		return invalidUsage("operator name is required")
	}
	if fn == nil {
		return invalidUsage("operator %q has no function", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.ops[name]; exists {
		return fmt.Errorf("operator %q already registered", name)
	}
	t.ops[name] = Operator{Name: name, Kinds: StreamKindsOf(kinds...), Fn: fn}
	return nil
}

// RegisterFilter registers an operator on processable streams.
func (t *OperatorTable) RegisterFilter(name string, fn OperatorFunc) error {
	return t.Register(name, fn, Processable)
}

// RegisterOutput registers an operator on output streams.
func (t *OperatorTable) RegisterOutput(name string, fn OperatorFunc) error {
	return t.Register(name, fn, OutputKind)
}

// RegisterConstructor registers an operator that takes no streams.
func (t *OperatorTable) RegisterConstructor(name string, fn OperatorFunc) error {
	return t.Register(name, fn)
}

// Lookup returns the operator registered under name.
func (t *OperatorTable) Lookup(name string) (Operator, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	op, ok := t.ops[name]
	return op, ok
}

// Names lists, sorted, the operators applicable to streams of kind.
func (t *OperatorTable) Names(kind StreamKind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for name, op := range t.ops {
		if op.Kinds.Has(kind) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// All lists every registered operator name, sorted.
func (t *OperatorTable) All() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.ops))
}

// Apply looks up name and invokes it after checking every stream's kind.
func (t *OperatorTable) Apply(name string, in []*Stream, p Params) (*Node, error) {
	op, ok := t.Lookup(name)
	if !ok {
		return nil, invalidUsage("unknown operator %q", name)
	}
	if op.Kinds == 0 && len(in) > 0 {
		return nil, invalidUsage("operator %q takes no input streams; got %d", name, len(in))
	}
	for i, s := range in {
		if s == nil {
			return nil, &TypeMismatchError{Expected: op.Kinds.String(), Actual: "nil", Msg: fmt.Sprintf("operator %q stream %d", name, i)}
		}
		if !op.Kinds.Has(s.kind) {
			return nil, &TypeMismatchError{
				Expected: op.Kinds.String(),
				Actual:   s.kind.String(),
				Msg:      fmt.Sprintf("operator %q stream %d", name, i),
			}
		}
	}
	return op.Fn(in, p)
}
