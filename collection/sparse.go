package collection

import "sort"

// Sparse is a persistent map keyed by a 64-bit hash, used as both the
// generic dict storage and the attribute map backing every Object
// (spec.md §3 "Sparse-list: persistent map keyed by a 64-bit hash"). Lookup
// is O(log n) via binary search over a hash-sorted entry array; "mutation"
// rebuilds the array (copy-on-write), which keeps the implementation simple
// while still giving every reader of an old handle a stable snapshot.
//
// Entries store the original key alongside its hash so hash collisions are
// resolved by falling back to key equality, checked with the supplied
// equality function (attribute maps use identity on interned strings;
// generic dict storage uses a value-equality callback supplied by the
// caller).
type Sparse struct {
	entries []sparseEntry
}

type sparseEntry struct {
	hash  uint64
	key   interface{}
	value interface{}
}

// Eq compares two keys for equality, used to break hash collisions.
type Eq func(a, b interface{}) bool

// NewSparse returns an empty map.
func NewSparse() *Sparse { return &Sparse{} }

// Len returns the number of entries.
func (s *Sparse) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Sparse) search(hash uint64) int {
	return sort.Search(len(s.entries), func(i int) bool { return s.entries[i].hash >= hash })
}

// Get looks up key by its hash, using eq to disambiguate collisions. ok is
// false if no matching entry exists.
func (s *Sparse) Get(hash uint64, key interface{}, eq Eq) (value interface{}, ok bool) {
	if s == nil {
		return nil, false
	}
	i := s.search(hash)
	for i < len(s.entries) && s.entries[i].hash == hash {
		if eq(s.entries[i].key, key) {
			return s.entries[i].value, true
		}
		i++
	}
	return nil, false
}

// SetAt returns a new Sparse with key bound to value, replacing any existing
// binding for an equal key. The receiver is untouched.
func (s *Sparse) SetAt(hash uint64, key, value interface{}, eq Eq) *Sparse {
	if s == nil {
		s = &Sparse{}
	}
	i := s.search(hash)
	for j := i; j < len(s.entries) && s.entries[j].hash == hash; j++ {
		if eq(s.entries[j].key, key) {
			out := append([]sparseEntry(nil), s.entries...)
			out[j] = sparseEntry{hash, key, value}
			return &Sparse{entries: out}
		}
	}
	out := make([]sparseEntry, 0, len(s.entries)+1)
	out = append(out, s.entries[:i]...)
	out = append(out, sparseEntry{hash, key, value})
	out = append(out, s.entries[i:]...)
	return &Sparse{entries: out}
}

// RemoveAt returns a new Sparse with the entry for key removed, if present.
func (s *Sparse) RemoveAt(hash uint64, key interface{}, eq Eq) *Sparse {
	if s == nil {
		return s
	}
	i := s.search(hash)
	for j := i; j < len(s.entries) && s.entries[j].hash == hash; j++ {
		if eq(s.entries[j].key, key) {
			out := make([]sparseEntry, 0, len(s.entries)-1)
			out = append(out, s.entries[:j]...)
			out = append(out, s.entries[j+1:]...)
			return &Sparse{entries: out}
		}
	}
	return s
}

// Keys returns a snapshot of every key, in hash order (the iteration order
// spec.md §3 describes: "iterator yields hash keys").
func (s *Sparse) Keys() []interface{} {
	if s == nil {
		return nil
	}
	out := make([]interface{}, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.key
	}
	return out
}

// Entries returns a snapshot of every (key, value) pair, in hash order.
func (s *Sparse) Entries() [][2]interface{} {
	if s == nil {
		return nil
	}
	out := make([][2]interface{}, len(s.entries))
	for i, e := range s.entries {
		out[i] = [2]interface{}{e.key, e.value}
	}
	return out
}

// SparseIterator walks a fixed snapshot of a Sparse map's keys.
type SparseIterator struct {
	snapshot []interface{}
	pos      int
}

// Iterator returns a snapshot cursor over keys.
func (s *Sparse) Iterator() *SparseIterator {
	return &SparseIterator{snapshot: s.Keys()}
}

// Next returns the next key and true, or (nil, false) at exhaustion.
func (it *SparseIterator) Next() (interface{}, bool) {
	if it.pos >= len(it.snapshot) {
		return nil, false
	}
	k := it.snapshot[it.pos]
	it.pos++
	return k, true
}
