package dag

import "iter"

type entry[V any] struct {
	label Label
	value V
}

// LabelMap is an insertion-ordered mapping from Label to V. The zero value is
// an empty map ready to use. Copies share storage; use Clone before mutating
// a map that was handed out.
type LabelMap[V any] struct {
	entries []entry[V]
}

// Len returns the number of entries.
func (m LabelMap[V]) Len() int { return len(m.entries) }

// Get returns the value stored under label.
func (m LabelMap[V]) Get(label Label) (V, bool) {
	for _, e := range m.entries {
		if e.label == label {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Has reports whether label is present.
func (m LabelMap[V]) Has(label Label) bool {
	_, ok := m.Get(label)
	return ok
}

// Set stores value under label. An existing label keeps its position.
func (m *LabelMap[V]) Set(label Label, value V) {
	for i := range m.entries {
		if m.entries[i].label == label {
			m.entries[i].value = value
			return
		}
	}
	m.entries = append(m.entries, entry[V]{label: label, value: value})
}

// Labels returns the keys in insertion order.
func (m LabelMap[V]) Labels() []Label {
	out := make([]Label, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.label
	}
	return out
}

// Values returns the values in insertion order.
func (m LabelMap[V]) Values() []V {
	out := make([]V, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.value
	}
	return out
}

// All iterates entries in insertion order.
func (m LabelMap[V]) All() iter.Seq2[Label, V] {
	return func(yield func(Label, V) bool) {
		for _, e := range m.entries {
			if !yield(e.label, e.value) {
				return
			}
		}
	}
}

// Clone returns a copy that does not share storage with m.
func (m LabelMap[V]) Clone() LabelMap[V] {
	if m.entries == nil {
		return LabelMap[V]{}
	}
	return LabelMap[V]{entries: append([]entry[V](nil), m.entries...)}
}
