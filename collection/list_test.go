package collection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListAppendLastAndAt(t *testing.T) {
	l := NewList()
	for i := 0; i < 200; i++ {
		l = l.AppendLast(i)
	}
	require.Equal(t, 200, l.Len())
	for i := 0; i < 200; i++ {
		require.Equal(t, i, l.At(i))
	}
}

func TestListSetAtIsReferentiallyTransparent(t *testing.T) {
	l := NewList(1, 2, 3)
	l2 := l.SetAt(1, "x")

	require.Equal(t, 2, l.At(1), "original list must be unaffected by SetAt")
	require.Equal(t, "x", l2.At(1))
	require.Equal(t, 3, l.Len())
	require.Equal(t, 3, l2.Len())
}

func TestListSetAtThenAtObservesLastWrite(t *testing.T) {
	l := NewList(0, 0, 0)
	l = l.SetAt(2, "a")
	l = l.SetAt(2, "b")
	require.Equal(t, "b", l.At(2))
}

func TestListRemoveAt(t *testing.T) {
	l := NewList(1, 2, 3, 4)
	l2 := l.RemoveAt(1)
	require.Equal(t, 3, l2.Len())
	require.Equal(t, []interface{}{1, 3, 4}, l2.Slice())
	require.Equal(t, 4, l.Len(), "original list untouched")
}

func TestListIteratorSnapshotIsStable(t *testing.T) {
	l := NewList(1, 2, 3)
	it := l.Iterator()
	_ = l.AppendLast(4) // mutation produces a new handle, l is untouched anyway

	var got []interface{}
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []interface{}{1, 2, 3}, got)

	_, ok := it.Next()
	require.False(t, ok, "iterator must stay exhausted")
}

func TestListAppendAcrossTrieBoundary(t *testing.T) {
	// width is 32; push well past several trie levels to exercise pushTail.
	l := NewList()
	const n = 5000
	for i := 0; i < n; i++ {
		l = l.AppendLast(i)
	}
	require.Equal(t, n, l.Len())
	require.Equal(t, 0, l.At(0))
	require.Equal(t, n-1, l.At(n-1))
	require.Equal(t, n/2, l.At(n/2))
}
