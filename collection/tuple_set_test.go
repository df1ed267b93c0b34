package collection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTupleBasics(t *testing.T) {
	tp := NewTuple(1, "x", true)
	require.Equal(t, 3, tp.Len())
	require.Equal(t, 1, tp.At(0))
	require.Equal(t, "x", tp.At(1))
	require.Equal(t, true, tp.At(2))
}

func TestTupleIsImmutableSnapshot(t *testing.T) {
	src := []interface{}{1, 2, 3}
	tp := NewTuple(src...)
	src[0] = "mutated"
	require.Equal(t, 1, tp.At(0), "NewTuple must copy its input slice")
}

func TestSetAddContainsRemove(t *testing.T) {
	s := NewSet()
	s = s.Add(strHash("a"), "a", strEq)
	s = s.Add(strHash("b"), "b", strEq)
	require.True(t, s.Contains(strHash("a"), "a", strEq))
	require.Equal(t, 2, s.Len())

	s2 := s.Remove(strHash("a"), "a", strEq)
	require.False(t, s2.Contains(strHash("a"), "a", strEq))
	require.True(t, s.Contains(strHash("a"), "a", strEq), "original set untouched")
}

func TestSetAddIsIdempotent(t *testing.T) {
	s := NewSet().Add(strHash("a"), "a", strEq).Add(strHash("a"), "a", strEq)
	require.Equal(t, 1, s.Len())
}
