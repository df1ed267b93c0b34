package collection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strEq(a, b interface{}) bool { return a.(string) == b.(string) }

func strHash(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

func TestSparseSetAtAndGet(t *testing.T) {
	s := NewSparse()
	s = s.SetAt(strHash("a"), "a", 1, strEq)
	s = s.SetAt(strHash("b"), "b", 2, strEq)

	v, ok := s.Get(strHash("a"), "a", strEq)
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = s.Get(strHash("missing"), "missing", strEq)
	require.False(t, ok)
}

func TestSparseSetAtIsNotMutating(t *testing.T) {
	s1 := NewSparse().SetAt(strHash("a"), "a", 1, strEq)
	s2 := s1.SetAt(strHash("a"), "a", 2, strEq)

	v1, _ := s1.Get(strHash("a"), "a", strEq)
	v2, _ := s2.Get(strHash("a"), "a", strEq)
	require.Equal(t, 1, v1, "s1 must not observe s2's overwrite")
	require.Equal(t, 2, v2)
}

func TestSparseRemoveAt(t *testing.T) {
	s := NewSparse()
	s = s.SetAt(strHash("a"), "a", 1, strEq)
	s = s.SetAt(strHash("b"), "b", 2, strEq)
	s2 := s.RemoveAt(strHash("a"), "a", strEq)

	_, ok := s2.Get(strHash("a"), "a", strEq)
	require.False(t, ok)
	v, ok := s2.Get(strHash("b"), "b", strEq)
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 2, s.Len(), "original untouched")
	require.Equal(t, 1, s2.Len())
}

func TestSparseCollisionFallsBackToEquality(t *testing.T) {
	const h = uint64(42)
	s := NewSparse()
	s = s.SetAt(h, "a", 1, strEq)
	s = s.SetAt(h, "b", 2, strEq)

	va, ok := s.Get(h, "a", strEq)
	require.True(t, ok)
	require.Equal(t, 1, va)
	vb, ok := s.Get(h, "b", strEq)
	require.True(t, ok)
	require.Equal(t, 2, vb)
}
