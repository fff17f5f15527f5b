// Package collections provides the insertion-ordered mapping primitive used
// throughout the raw document model. Every mapping in the pipeline preserves
// the order keys appeared in the source document.
package collections

// OrderedMap is a string-keyed map with stable iteration order.
// The zero value is not usable; call NewOrderedMap.
type OrderedMap struct {
	keys  []string
	index map[string]int
	vals  []any
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[string]int)}
}

// Set inserts or replaces the value for key. Replacing keeps the key's
// original position.
func (m *OrderedMap) Set(key string, value any) {
	if i, ok := m.index[key]; ok {
		m.vals[i] = value
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, value)
}

// Get returns the value for key and whether it is present.
func (m *OrderedMap) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Lookup returns the value for key, or nil when absent.
func (m *OrderedMap) Lookup(key string) any {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *OrderedMap) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (m *OrderedMap) Delete(key string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// At returns the i-th key and value in insertion order.
func (m *OrderedMap) At(i int) (string, any) {
	return m.keys[i], m.vals[i]
}

// Each calls fn for every entry in insertion order. Iteration stops when fn
// returns false.
func (m *OrderedMap) Each(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// Merge copies every entry of other into m. When override is false, keys
// already present in m win; when true, other's entries replace them.
func (m *OrderedMap) Merge(other *OrderedMap, override bool) {
	other.Each(func(key string, value any) bool {
		if override || !m.Has(key) {
			m.Set(key, value)
		}
		return true
	})
}

// Clone returns a shallow copy with the same order.
func (m *OrderedMap) Clone() *OrderedMap {
	if m == nil {
		return nil
	}
	c := NewOrderedMap()
	for i, k := range m.keys {
		c.Set(k, m.vals[i])
	}
	return c
}
