// Package collection implements the persistent (structural-sharing)
// container types spec.md §3 requires for list/dict("sparse list")/tuple/set
// backing: every "mutating" operation returns a new handle rather than
// disturbing the receiver, so a reader holding an old handle sees a stable
// snapshot (spec.md §9 "Concurrency of persistent containers").
//
// The containers here are untyped (store interface{}) deliberately: they
// have no dependency on the object model so that pyobj can depend on
// collection without a cycle. pyobj's List/Dict/Tuple/Set wrap these and
// restrict the element type to *pyobj.Object.
package collection

const bits = 5
const width = 1 << bits
const mask = width - 1

// List is a persistent vector (Clojure/Bagwell-style bit-partitioned trie),
// giving O(log32 n) At/SetAt/AppendLast. Zero value is the empty list.
type List struct {
	count int
	shift uint
	root  *listNode
	tail  []interface{}
}

type listNode struct {
	children [width]interface{} // either *listNode or, at the leaf level, unused
}

// NewList builds a List containing the given values in order.
func NewList(values ...interface{}) *List {
	l := &List{}
	for _, v := range values {
		l = l.AppendLast(v)
	}
	return l
}

// Len returns the number of elements.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return l.count
}

func (l *List) tailOffset() int {
	if l.count < width {
		return 0
	}
	return ((l.count - 1) >> bits) << bits
}

// At returns the element at index i. It panics if i is out of range, like a
// Go slice; callers at the language boundary (BINARY_SUBSCR) translate that
// into an IndexError before it can propagate.
func (l *List) At(i int) interface{} {
	if l == nil || i < 0 || i >= l.count {
		panic("collection: list index out of range")
	}
	if i >= l.tailOffset() {
		return l.tail[i&mask]
	}
	node := l.root
	for shift := l.shift; shift > 0; shift -= bits {
		node = node.children[(i>>shift)&mask].(*listNode)
	}
	return node.children[i&mask]
}

// SetAt returns a new List with index i replaced by v; l is untouched.
func (l *List) SetAt(i int, v interface{}) *List {
	if l == nil || i < 0 || i >= l.count {
		panic("collection: list index out of range")
	}
	if i >= l.tailOffset() {
		newTail := append([]interface{}(nil), l.tail...)
		newTail[i&mask] = v
		return &List{count: l.count, shift: l.shift, root: l.root, tail: newTail}
	}
	return &List{count: l.count, shift: l.shift, root: setAtNode(l.root, l.shift, i, v), tail: l.tail}
}

func setAtNode(n *listNode, shift uint, i int, v interface{}) *listNode {
	nn := &listNode{children: n.children}
	if shift == 0 {
		nn.children[i&mask] = v
		return nn
	}
	idx := (i >> shift) & mask
	nn.children[idx] = setAtNode(n.children[idx].(*listNode), shift-bits, i, v)
	return nn
}

// AppendLast returns a new List with v appended.
func (l *List) AppendLast(v interface{}) *List {
	if l == nil {
		l = &List{}
	}
	if len(l.tail) < width {
		newTail := append(append([]interface{}(nil), l.tail...), v)
		return &List{count: l.count + 1, shift: l.shift, root: l.root, tail: newTail}
	}
	// Tail is full: push it into the trie and start a new tail.
	var newRoot *listNode
	newShift := l.shift
	tailNode := &listNode{}
	copy(tailNode.children[:], l.tail)
	if l.root == nil {
		newRoot = tailNode
	} else if (l.count >> bits) > (1 << l.shift) {
		newRoot = &listNode{}
		newRoot.children[0] = l.root
		newRoot.children[1] = newPath(l.shift, tailNode)
		newShift += bits
	} else {
		newRoot = pushTail(l.root, l.shift, l.count, tailNode)
	}
	return &List{count: l.count + 1, shift: newShift, root: newRoot, tail: []interface{}{v}}
}

func newPath(shift uint, node *listNode) *listNode {
	if shift == 0 {
		return node
	}
	p := &listNode{}
	p.children[0] = newPath(shift-bits, node)
	return p
}

func pushTail(n *listNode, shift uint, count int, tailNode *listNode) *listNode {
	nn := &listNode{children: n.children}
	idx := ((count - 1) >> shift) & mask
	if shift == bits {
		nn.children[idx] = tailNode
	} else {
		child, _ := n.children[idx].(*listNode)
		if child == nil {
			nn.children[idx] = newPath(shift-bits, tailNode)
		} else {
			nn.children[idx] = pushTail(child, shift-bits, count, tailNode)
		}
	}
	return nn
}

// RemoveAt returns a new List with index i removed, shifting later elements
// down. Implemented as a rebuild (O(n)): removal is rare relative to
// append/set in the language surface this backs, so simplicity wins over
// shaving the constant factor.
func (l *List) RemoveAt(i int) *List {
	if l == nil || i < 0 || i >= l.count {
		panic("collection: list index out of range")
	}
	out := &List{}
	for j := 0; j < l.count; j++ {
		if j == i {
			continue
		}
		out = out.AppendLast(l.At(j))
	}
	return out
}

// Slice returns a Go slice snapshot of the list's contents, used by
// iterators (spec.md §3 "iterator is an index into a snapshot").
func (l *List) Slice() []interface{} {
	n := l.Len()
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		out[i] = l.At(i)
	}
	return out
}

// Iterator returns a snapshot cursor. Mutations to the source list after the
// iterator is created are never observed by it.
func (l *List) Iterator() *ListIterator {
	return &ListIterator{snapshot: l.Slice()}
}

// ListIterator walks a fixed snapshot of a List's contents.
type ListIterator struct {
	snapshot []interface{}
	pos      int
}

// Next returns the next element and true, or (nil, false) at exhaustion.
func (it *ListIterator) Next() (interface{}, bool) {
	if it.pos >= len(it.snapshot) {
		return nil, false
	}
	v := it.snapshot[it.pos]
	it.pos++
	return v, true
}
