package pyobj

import "github.com/gamarino/protoPython-sub000/collection"

// NewList builds a list Object over the persistent collection.List
// (spec.md §3 "List: persistent bit-partitioned vector trie"), grounded on
// collection/list.go.
func NewList(items []*Object) *Object {
	l := collection.NewList()
	for _, it := range items {
		l = l.AppendLast(it)
	}
	return &Object{Kind: KindList, List: l, Class: ListType}
}

// NewTuple builds an immutable tuple Object (collection/tuple.go).
func NewTuple(items []*Object) *Object {
	vals := make([]interface{}, len(items))
	for i, it := range items {
		vals[i] = it
	}
	return &Object{Kind: KindTuple, Tuple: collection.NewTuple(vals...), Class: TupleType}
}

// TupleItems converts a tuple Object's elements back to []*Object.
func TupleItems(t *Object) []*Object {
	raw := t.Tuple.Slice()
	out := make([]*Object, len(raw))
	for i, v := range raw {
		out[i] = v.(*Object)
	}
	return out
}

// ListItems snapshots a list Object's elements as []*Object.
func ListItems(l *Object) []*Object {
	raw := l.List.Slice()
	out := make([]*Object, len(raw))
	for i, v := range raw {
		out[i] = v.(*Object)
	}
	return out
}

// NewDict builds an empty dict Object; entries are added with DictSetItem.
func NewDict() *Object {
	return &Object{Kind: KindDict, Dict: newDictStorage(), Class: DictType}
}

// valueHash and valueEq provide the (hash, eq) pair collection.Sparse needs
// to compare two Python dict/set keys by value instead of Go identity:
// immediates compare by their payload, heap objects fall back to identity.
// User-defined __hash__/__eq__ methods are not consulted.
func valueHash(o *Object) uint64 {
	switch o.Kind {
	case KindNone:
		return 0
	case KindBool:
		if o.Bool {
			return 1
		}
		return 2
	case KindInt:
		return hashInt64(o.Int)
	case KindFloat:
		return hashInt64(int64(o.Float))
	case KindStr, KindBytes:
		return hashString(o.Str)
	default:
		return hashPointer(o)
	}
}

func hashInt64(v int64) uint64 {
	u := uint64(v)
	u ^= u >> 33
	u *= 0xff51afd7ed558ccd
	u ^= u >> 33
	return u
}

func hashPointer(o *Object) uint64 {
	return hashString(o.GoString())
}

func valueEq(a, b interface{}) bool {
	x, y := a.(*Object), b.(*Object)
	if x.Kind != y.Kind {
		return false
	}
	switch x.Kind {
	case KindNone:
		return true
	case KindBool:
		return x.Bool == y.Bool
	case KindInt:
		return x.Int == y.Int
	case KindFloat:
		return x.Float == y.Float
	case KindStr, KindBytes:
		return x.Str == y.Str
	default:
		return x == y
	}
}

// DictSetItem returns a new dict value with key bound to val (copy-on-write,
// spec.md §3/§9).
func DictSetItem(d *Object, key, val *Object) *Object {
	nd := &dictStorage{entries: d.Dict.entries.SetAt(valueHash(key), key, [2]*Object{key, val}, func(a, b interface{}) bool {
		return valueEq(a.(*Object), b.(*Object))
	})}
	return &Object{Kind: KindDict, Dict: nd, Class: DictType}
}

// DictGetItem looks up key, returning (value, ok).
func DictGetItem(d *Object, key *Object) (*Object, bool) {
	v, ok := d.Dict.entries.Get(valueHash(key), key, func(a, b interface{}) bool {
		return valueEq(a.(*Object), b.(*Object))
	})
	if !ok {
		return nil, false
	}
	return v.([2]*Object)[1], true
}

// DictDelItem returns a new dict value with key removed, if present.
func DictDelItem(d *Object, key *Object) *Object {
	nd := &dictStorage{entries: d.Dict.entries.RemoveAt(valueHash(key), key, func(a, b interface{}) bool {
		return valueEq(a.(*Object), b.(*Object))
	})}
	return &Object{Kind: KindDict, Dict: nd, Class: DictType}
}

// DictLen reports the number of key/value pairs.
func DictLen(d *Object) int { return d.Dict.entries.Len() }

// DictItems snapshots the dict's (key, value) pairs in hash order.
func DictItems(d *Object) [][2]*Object {
	entries := d.Dict.entries.Entries()
	out := make([][2]*Object, len(entries))
	for i, e := range entries {
		out[i] = e[1].([2]*Object)
	}
	return out
}

// NewSet builds a set Object over the persistent collection.Set.
func NewSet(items []*Object) *Object {
	s := collection.NewSet()
	for _, it := range items {
		s = s.Add(valueHash(it), it, valueEq)
	}
	return &Object{Kind: KindSet, Set: s, Class: SetType}
}

// SetAdd returns a new set value with member added.
func SetAdd(s *Object, member *Object) *Object {
	return &Object{Kind: KindSet, Set: s.Set.Add(valueHash(member), member, valueEq), Class: SetType}
}

// SetContains reports membership.
func SetContains(s *Object, member *Object) bool {
	return s.Set.Contains(valueHash(member), member, valueEq)
}

// SetItems snapshots a set's members.
func SetItems(s *Object) []*Object {
	raw := s.Set.Members()
	out := make([]*Object, len(raw))
	for i, v := range raw {
		out[i] = v.(*Object)
	}
	return out
}
