package vm

import (
	"fmt"
	"strings"

	"github.com/gamarino/protoPython-sub000/pyobj"
)

// Repr implements repr(v): dispatches to a user __repr__ when the class
// defines one, otherwise renders the builtin kinds the way Python's own
// reprs look (quoted strings, bracketed containers), falling back to
// pyobj.GoString for anything else.
func Repr(f *Frame, v *pyobj.Object) string {
	if reprFn, ok := v.GetAttribute("__repr__"); ok && v.Kind == pyobj.KindInstance {
		if guardRepr(f, v) {
			return "..."
		}
		defer releaseRepr(f, v)
		result, err := Call(f, reprFn, nil, nil)
		if err == nil {
			return result.Str
		}
	}
	switch v.Kind {
	case pyobj.KindStr:
		return fmt.Sprintf("%q", v.Str)
	case pyobj.KindList:
		return bracketed("[", "]", pyobj.ListItems(v), f)
	case pyobj.KindTuple:
		items := pyobj.TupleItems(v)
		if len(items) == 1 {
			return "(" + Repr(f, items[0]) + ",)"
		}
		return bracketed("(", ")", items, f)
	case pyobj.KindSet:
		return bracketed("{", "}", pyobj.SetItems(v), f)
	case pyobj.KindDict:
		var parts []string
		for _, kv := range pyobj.DictItems(v) {
			parts = append(parts, Repr(f, kv[0])+": "+Repr(f, kv[1]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case pyobj.KindNone:
		return "None"
	case pyobj.KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	default:
		return v.GoString()
	}
}

func bracketed(open, close string, items []*pyobj.Object, f *Frame) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = Repr(f, it)
	}
	return open + strings.Join(parts, ", ") + close
}

func guardRepr(f *Frame, v *pyobj.Object) bool {
	if f.Thread == nil {
		return false
	}
	if f.Thread.reprState[v] {
		return true
	}
	f.Thread.reprState[v] = true
	return false
}

func releaseRepr(f *Frame, v *pyobj.Object) {
	if f.Thread != nil {
		delete(f.Thread.reprState, v)
	}
}

// Str implements str(v): a user __str__ wins, then __repr__, then the
// builtin text forms (unquoted strings, numeric formatting).
func Str(f *Frame, v *pyobj.Object) string {
	if strFn, ok := v.GetAttribute("__str__"); ok && v.Kind == pyobj.KindInstance {
		result, err := Call(f, strFn, nil, nil)
		if err == nil {
			return result.Str
		}
	}
	switch v.Kind {
	case pyobj.KindStr:
		return v.Str
	case pyobj.KindBytes:
		return v.Str
	default:
		return Repr(f, v)
	}
}
