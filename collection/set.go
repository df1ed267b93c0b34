package collection

// Set is a persistent unordered collection with identity-or-equality
// membership, backed by the same hash-sorted entry array as Sparse (a set
// is a map from hash to a bucket of distinct members sharing that hash).
type Set struct {
	m *Sparse
}

// NewSet returns an empty Set.
func NewSet() *Set { return &Set{m: NewSparse()} }

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

// Contains reports whether an equal member is present.
func (s *Set) Contains(hash uint64, key interface{}, eq Eq) bool {
	if s == nil {
		return false
	}
	_, ok := s.m.Get(hash, key, eq)
	return ok
}

// Add returns a new Set with key added (a no-op handle change if already
// present).
func (s *Set) Add(hash uint64, key interface{}, eq Eq) *Set {
	if s == nil {
		s = NewSet()
	}
	return &Set{m: s.m.SetAt(hash, key, key, eq)}
}

// Remove returns a new Set with key removed, if present.
func (s *Set) Remove(hash uint64, key interface{}, eq Eq) *Set {
	if s == nil {
		return s
	}
	return &Set{m: s.m.RemoveAt(hash, key, eq)}
}

// Members returns a snapshot of every member.
func (s *Set) Members() []interface{} {
	if s == nil {
		return nil
	}
	return s.m.Keys()
}

// Iterator returns a snapshot cursor over members.
func (s *Set) Iterator() *SparseIterator {
	if s == nil {
		return NewSet().Iterator()
	}
	return s.m.Iterator()
}
