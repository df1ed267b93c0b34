package vm

import "github.com/gamarino/protoPython-sub000/pyobj"

// iterCursor is the "plain Go index cursor" DESIGN.md's Open Question
// section commits to for internal iteration: GET_ITER/FOR_ITER never call
// back into user __iter__/__next__ for the builtin containers, they just
// walk a snapshot, the same shortcut collection's persistent structures
// make cheap since Slice()/Members() are already O(n) copies.
type iterCursor struct {
	next func() (*pyobj.Object, bool)
}

// NewIterator builds an iterator over o's elements for FOR_ITER. User
// classes that only define __iter__/__next__ are driven through those
// methods instead, preserving the external protocol spec.md §4.6 requires.
func NewIterator(f *Frame, o *pyobj.Object) (*iterCursor, error) {
	switch o.Kind {
	case pyobj.KindList:
		items := pyobj.ListItems(o)
		i := 0
		return &iterCursor{next: func() (*pyobj.Object, bool) {
			if i >= len(items) {
				return nil, false
			}
			v := items[i]
			i++
			return v, true
		}}, nil
	case pyobj.KindTuple:
		items := pyobj.TupleItems(o)
		i := 0
		return &iterCursor{next: func() (*pyobj.Object, bool) {
			if i >= len(items) {
				return nil, false
			}
			v := items[i]
			i++
			return v, true
		}}, nil
	case pyobj.KindSet:
		items := pyobj.SetItems(o)
		i := 0
		return &iterCursor{next: func() (*pyobj.Object, bool) {
			if i >= len(items) {
				return nil, false
			}
			v := items[i]
			i++
			return v, true
		}}, nil
	case pyobj.KindDict:
		items := pyobj.DictItems(o)
		i := 0
		return &iterCursor{next: func() (*pyobj.Object, bool) {
			if i >= len(items) {
				return nil, false
			}
			v := items[i][0]
			i++
			return v, true
		}}, nil
	case pyobj.KindStr:
		runes := []rune(o.Str)
		i := 0
		return &iterCursor{next: func() (*pyobj.Object, bool) {
			if i >= len(runes) {
				return nil, false
			}
			v := pyobj.Str(string(runes[i]))
			i++
			return v, true
		}}, nil
	case pyobj.KindGenerator:
		return &iterCursor{next: func() (*pyobj.Object, bool) {
			v, ok, err := GeneratorNext(f, o)
			if err != nil {
				return nil, false
			}
			return v, ok
		}}, nil
	default:
		iterFn, ok := o.GetAttribute("__iter__")
		if !ok {
			return nil, f.RaiseType(pyobj.TypeErrorType, "%s object is not iterable", o.Kind)
		}
		iterObj, err := Call(f, iterFn, nil, nil)
		if err != nil {
			return nil, err
		}
		return &iterCursor{next: func() (*pyobj.Object, bool) {
			nextFn, ok := iterObj.GetAttribute("__next__")
			if !ok {
				return nil, false
			}
			v, err := Call(f, nextFn, nil, nil)
			if err != nil {
				return nil, false
			}
			return v, true
		}}, nil
	}
}

// Iterate drives a full iteration of o, invoking fn once per element; fn
// returns (false, nil) to stop early. This is the exported surface package
// env's builtins (list(), sum(), sorted(), for-loops inside native funcs)
// use to consume an iterable without reaching into iterCursor's unexported
// field directly.
func Iterate(f *Frame, o *pyobj.Object, fn func(*pyobj.Object) (bool, error)) error {
	cur, err := NewIterator(f, o)
	if err != nil {
		return err
	}
	for {
		v, ok := cur.next()
		if !ok {
			return nil
		}
		cont, err := fn(v)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// Collect drains o into a []*pyobj.Object, the common case of Iterate used
// by list()/tuple()/set()/sorted().
func Collect(f *Frame, o *pyobj.Object) ([]*pyobj.Object, error) {
	var out []*pyobj.Object
	err := Iterate(f, o, func(v *pyobj.Object) (bool, error) {
		out = append(out, v)
		return true, nil
	})
	return out, err
}
