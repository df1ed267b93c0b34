package env

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/collection"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/vm"
)

var installOnce sync.Once

// installTypeMethods registers native methods onto the shared pyobj type
// prototype objects (ListType, DictType, ...), mirroring runtime/*.go's
// per-type method tables (e.g. runtime/list.go's listMethods map) but
// spread across one function per basis type. Idempotent: every Environment
// created in a process calls this, but pyobj's type Objects are process-wide
// singletons so the registration only needs to happen once.
func installTypeMethods() {
	installOnce.Do(func() {
		installFunctionBinding()
		installListMethods()
		installDictMethods()
		installSetMethods()
		installTupleMethods()
		installStrMethods()
	})
}

// method registers a native under name on typeObj's own attrs.
func method(typeObj *pyobj.Object, name string, fn pyobj.NativeFunc) {
	typeObj.SetAttribute(name, pyobj.NewNative(name, fn))
}

// installFunctionBinding gives FuncType a __get__ so that a method found by
// walking an instance's prototype chain comes back bound to that instance,
// the non-data-descriptor half of spec.md §4.6's descriptor protocol
// (property/classmethod/staticmethod are the data-descriptor half, not
// needed by this runtime's builtin surface).
func installFunctionBinding() {
	pyobj.FuncType.SetAttribute("__get__", pyobj.NewNative("__get__", func(call *pyobj.Call) (*pyobj.Object, error) {
		if len(call.Args) < 2 {
			return nil, pyobj.Raise(pyobj.TypeErrorType, "__get__ expected 2 arguments")
		}
		fn, instance := call.Args[0], call.Args[1]
		if instance == nil || instance.Kind == pyobj.KindNone || instance.Kind == pyobj.KindType {
			return fn, nil
		}
		return bindMethod(fn, instance), nil
	}))
}

// bindMethod wraps fn as a native that re-enters vm.Call with instance
// prepended to the argument list, deferring to whatever call.Frame the
// eventual call site supplies (pyobj.Call.Frame's documented purpose).
func bindMethod(fn, instance *pyobj.Object) *pyobj.Object {
	name := fn.Str
	if name == "" {
		name = "<bound method>"
	}
	return pyobj.NewNative(name, func(call *pyobj.Call) (*pyobj.Object, error) {
		f := frameOf(call)
		args := append([]*pyobj.Object{instance}, call.Args...)
		return vm.Call(f, fn, args, call.Kwargs)
	})
}

func selfOf(call *pyobj.Call, name string) (*pyobj.Object, []*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return nil, nil, pyobj.Raise(pyobj.TypeErrorType, "%s() missing receiver", name)
	}
	return call.Args[0], call.Args[1:], nil
}

func installListMethods() {
	t := pyobj.ListType
	method(t, "append", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "append")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("append", 1, len(rest))
		}
		self.List = self.List.AppendLast(rest[0])
		return pyobj.None, nil
	})
	method(t, "extend", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "extend")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("extend", 1, len(rest))
		}
		items, err := vm.Collect(frameOf(call), rest[0])
		if err != nil {
			return nil, err
		}
		for _, v := range items {
			self.List = self.List.AppendLast(v)
		}
		return pyobj.None, nil
	})
	method(t, "pop", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "pop")
		if err != nil {
			return nil, err
		}
		n := self.List.Len()
		if n == 0 {
			return nil, pyobj.Raise(pyobj.IndexErrorType, "pop from empty list")
		}
		idx := n - 1
		if len(rest) == 1 {
			idx = normalizeIndex(int(rest[0].Int), n)
		}
		if idx < 0 || idx >= n {
			return nil, pyobj.Raise(pyobj.IndexErrorType, "pop index out of range")
		}
		v := self.List.At(idx).(*pyobj.Object)
		self.List = self.List.RemoveAt(idx)
		return v, nil
	})
	method(t, "insert", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "insert")
		if err != nil {
			return nil, err
		}
		if len(rest) != 2 {
			return nil, argErr("insert", 2, len(rest))
		}
		n := self.List.Len()
		idx := int(rest[0].Int)
		if idx < 0 {
			idx += n
		}
		if idx < 0 {
			idx = 0
		}
		if idx > n {
			idx = n
		}
		items := pyobj.ListItems(self)
		items = append(items[:idx], append([]*pyobj.Object{rest[1]}, items[idx:]...)...)
		self.List = collection.NewList()
		for _, v := range items {
			self.List = self.List.AppendLast(v)
		}
		return pyobj.None, nil
	})
	method(t, "remove", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "remove")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("remove", 1, len(rest))
		}
		f := frameOf(call)
		for i, v := range pyobj.ListItems(self) {
			if valuesEq(f, v, rest[0]) {
				self.List = self.List.RemoveAt(i)
				return pyobj.None, nil
			}
		}
		return nil, pyobj.Raise(pyobj.ValueErrorType, "list.remove(x): x not in list")
	})
	method(t, "index", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "index")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("index", 1, len(rest))
		}
		f := frameOf(call)
		for i, v := range pyobj.ListItems(self) {
			if valuesEq(f, v, rest[0]) {
				return pyobj.Int(int64(i)), nil
			}
		}
		return nil, pyobj.Raise(pyobj.ValueErrorType, "%s is not in list", vm.Repr(f, rest[0]))
	})
	method(t, "count", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "count")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("count", 1, len(rest))
		}
		f := frameOf(call)
		n := int64(0)
		for _, v := range pyobj.ListItems(self) {
			if valuesEq(f, v, rest[0]) {
				n++
			}
		}
		return pyobj.Int(n), nil
	})
	method(t, "clear", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "clear")
		if err != nil {
			return nil, err
		}
		self.List = collection.NewList()
		return pyobj.None, nil
	})
	method(t, "copy", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "copy")
		if err != nil {
			return nil, err
		}
		return pyobj.NewList(pyobj.ListItems(self)), nil
	})
	method(t, "reverse", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "reverse")
		if err != nil {
			return nil, err
		}
		items := pyobj.ListItems(self)
		out := collection.NewList()
		for i := len(items) - 1; i >= 0; i-- {
			out = out.AppendLast(items[i])
		}
		self.List = out
		return pyobj.None, nil
	})
	method(t, "sort", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "sort")
		if err != nil {
			return nil, err
		}
		items := pyobj.ListItems(self)
		f := frameOf(call)
		keyFn, hasKey := call.Kwargs["key"]
		reverse := call.Kwargs["reverse"] != nil && pyobj.IsTruthy(call.Kwargs["reverse"])
		keyOf := func(v *pyobj.Object) *pyobj.Object {
			if !hasKey {
				return v
			}
			r, err := vm.Call(f, keyFn, []*pyobj.Object{v}, nil)
			if err != nil {
				return v
			}
			return r
		}
		keys := make([]*pyobj.Object, len(items))
		for i, v := range items {
			keys[i] = keyOf(v)
		}
		sort.SliceStable(items, func(i, j int) bool {
			cmp, _ := vm.CompareValues(f, bytecode.CmpLT, keys[i], keys[j])
			less := cmp != nil && pyobj.IsTruthy(cmp)
			if reverse {
				return !less && !valuesEq(f, keys[i], keys[j])
			}
			return less
		})
		out := collection.NewList()
		for _, v := range items {
			out = out.AppendLast(v)
		}
		self.List = out
		return pyobj.None, nil
	})
}

func normalizeIndex(idx, n int) int {
	if idx < 0 {
		idx += n
	}
	return idx
}

func installDictMethods() {
	t := pyobj.DictType
	method(t, "get", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "get")
		if err != nil {
			return nil, err
		}
		if len(rest) < 1 {
			return nil, argErr("get", 1, 0)
		}
		if v, ok := pyobj.DictGetItem(self, rest[0]); ok {
			return v, nil
		}
		if len(rest) > 1 {
			return rest[1], nil
		}
		return pyobj.None, nil
	})
	method(t, "keys", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "keys")
		if err != nil {
			return nil, err
		}
		items := pyobj.DictItems(self)
		out := make([]*pyobj.Object, len(items))
		for i, kv := range items {
			out[i] = kv[0]
		}
		return pyobj.NewList(out), nil
	})
	method(t, "values", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "values")
		if err != nil {
			return nil, err
		}
		items := pyobj.DictItems(self)
		out := make([]*pyobj.Object, len(items))
		for i, kv := range items {
			out[i] = kv[1]
		}
		return pyobj.NewList(out), nil
	})
	method(t, "items", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "items")
		if err != nil {
			return nil, err
		}
		items := pyobj.DictItems(self)
		out := make([]*pyobj.Object, len(items))
		for i, kv := range items {
			out[i] = pyobj.NewTuple([]*pyobj.Object{kv[0], kv[1]})
		}
		return pyobj.NewList(out), nil
	})
	method(t, "pop", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "pop")
		if err != nil {
			return nil, err
		}
		if len(rest) < 1 {
			return nil, argErr("pop", 1, 0)
		}
		v, ok := pyobj.DictGetItem(self, rest[0])
		if !ok {
			if len(rest) > 1 {
				return rest[1], nil
			}
			return nil, pyobj.Raise(pyobj.KeyErrorType, "%s", vm.Repr(frameOf(call), rest[0]))
		}
		self.Dict = pyobj.DictDelItem(self, rest[0]).Dict
		return v, nil
	})
	method(t, "setdefault", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "setdefault")
		if err != nil {
			return nil, err
		}
		if len(rest) < 1 {
			return nil, argErr("setdefault", 1, 0)
		}
		if v, ok := pyobj.DictGetItem(self, rest[0]); ok {
			return v, nil
		}
		def := pyobj.None
		if len(rest) > 1 {
			def = rest[1]
		}
		self.Dict = pyobj.DictSetItem(self, rest[0], def).Dict
		return def, nil
	})
	method(t, "update", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "update")
		if err != nil {
			return nil, err
		}
		if len(rest) == 1 {
			if rest[0].Kind == pyobj.KindDict {
				for _, kv := range pyobj.DictItems(rest[0]) {
					self.Dict = pyobj.DictSetItem(self, kv[0], kv[1]).Dict
				}
			} else {
				pairs, err := vm.Collect(frameOf(call), rest[0])
				if err != nil {
					return nil, err
				}
				for _, kv := range pairs {
					items := pyobj.TupleItems(kv)
					if len(items) == 2 {
						self.Dict = pyobj.DictSetItem(self, items[0], items[1]).Dict
					}
				}
			}
		}
		for k, v := range call.Kwargs {
			self.Dict = pyobj.DictSetItem(self, pyobj.Str(k), v).Dict
		}
		return pyobj.None, nil
	})
	method(t, "clear", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "clear")
		if err != nil {
			return nil, err
		}
		self.Dict = pyobj.NewDict().Dict
		return pyobj.None, nil
	})
	method(t, "copy", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "copy")
		if err != nil {
			return nil, err
		}
		nd := pyobj.NewDict()
		for _, kv := range pyobj.DictItems(self) {
			nd = pyobj.DictSetItem(nd, kv[0], kv[1])
		}
		return nd, nil
	})
}

func installSetMethods() {
	t := pyobj.SetType
	method(t, "add", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "add")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("add", 1, len(rest))
		}
		self.Set = pyobj.SetAdd(self, rest[0]).Set
		return pyobj.None, nil
	})
	method(t, "discard", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "discard")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("discard", 1, len(rest))
		}
		var kept []*pyobj.Object
		for _, v := range pyobj.SetItems(self) {
			if !valuesEq(frameOf(call), v, rest[0]) {
				kept = append(kept, v)
			}
		}
		self.Set = pyobj.NewSet(kept).Set
		return pyobj.None, nil
	})
	method(t, "remove", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "remove")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("remove", 1, len(rest))
		}
		if !pyobj.SetContains(self, rest[0]) {
			return nil, pyobj.Raise(pyobj.KeyErrorType, "%s", vm.Repr(frameOf(call), rest[0]))
		}
		var kept []*pyobj.Object
		for _, v := range pyobj.SetItems(self) {
			if !valuesEq(frameOf(call), v, rest[0]) {
				kept = append(kept, v)
			}
		}
		self.Set = pyobj.NewSet(kept).Set
		return pyobj.None, nil
	})
	method(t, "union", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "union")
		if err != nil {
			return nil, err
		}
		items := pyobj.SetItems(self)
		for _, other := range rest {
			more, err := vm.Collect(frameOf(call), other)
			if err != nil {
				return nil, err
			}
			items = append(items, more...)
		}
		return pyobj.NewSet(items), nil
	})
	method(t, "intersection", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "intersection")
		if err != nil {
			return nil, err
		}
		var out []*pyobj.Object
		for _, v := range pyobj.SetItems(self) {
			in := true
			for _, other := range rest {
				items, err := vm.Collect(frameOf(call), other)
				if err != nil {
					return nil, err
				}
				found := false
				for _, o := range items {
					if valuesEq(frameOf(call), v, o) {
						found = true
						break
					}
				}
				if !found {
					in = false
					break
				}
			}
			if in {
				out = append(out, v)
			}
		}
		return pyobj.NewSet(out), nil
	})
	method(t, "difference", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "difference")
		if err != nil {
			return nil, err
		}
		var excluded []*pyobj.Object
		for _, other := range rest {
			items, err := vm.Collect(frameOf(call), other)
			if err != nil {
				return nil, err
			}
			excluded = append(excluded, items...)
		}
		var out []*pyobj.Object
		for _, v := range pyobj.SetItems(self) {
			skip := false
			for _, e := range excluded {
				if valuesEq(frameOf(call), v, e) {
					skip = true
					break
				}
			}
			if !skip {
				out = append(out, v)
			}
		}
		return pyobj.NewSet(out), nil
	})
	method(t, "clear", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "clear")
		if err != nil {
			return nil, err
		}
		self.Set = pyobj.NewSet(nil).Set
		return pyobj.None, nil
	})
}

func installTupleMethods() {
	t := pyobj.TupleType
	method(t, "index", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "index")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("index", 1, len(rest))
		}
		f := frameOf(call)
		for i, v := range pyobj.TupleItems(self) {
			if valuesEq(f, v, rest[0]) {
				return pyobj.Int(int64(i)), nil
			}
		}
		return nil, pyobj.Raise(pyobj.ValueErrorType, "tuple.index(x): x not in tuple")
	})
	method(t, "count", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "count")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("count", 1, len(rest))
		}
		f := frameOf(call)
		n := int64(0)
		for _, v := range pyobj.TupleItems(self) {
			if valuesEq(f, v, rest[0]) {
				n++
			}
		}
		return pyobj.Int(n), nil
	})
}

func installStrMethods() {
	t := pyobj.StrType
	method(t, "upper", strMethod(strings.ToUpper))
	method(t, "lower", strMethod(strings.ToLower))
	method(t, "strip", strArgMethod(func(s, cutset string) string {
		if cutset == "" {
			return strings.TrimSpace(s)
		}
		return strings.Trim(s, cutset)
	}))
	method(t, "lstrip", strArgMethod(func(s, cutset string) string {
		if cutset == "" {
			return strings.TrimLeft(s, " \t\n\r")
		}
		return strings.TrimLeft(s, cutset)
	}))
	method(t, "rstrip", strArgMethod(func(s, cutset string) string {
		if cutset == "" {
			return strings.TrimRight(s, " \t\n\r")
		}
		return strings.TrimRight(s, cutset)
	}))
	method(t, "title", strMethod(strings.Title))
	method(t, "capitalize", strMethod(func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	}))
	method(t, "split", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "split")
		if err != nil {
			return nil, err
		}
		var parts []string
		if len(rest) == 0 || rest[0].Kind == pyobj.KindNone {
			parts = strings.Fields(self.Str)
		} else {
			parts = strings.Split(self.Str, rest[0].Str)
		}
		out := make([]*pyobj.Object, len(parts))
		for i, p := range parts {
			out[i] = pyobj.Str(p)
		}
		return pyobj.NewList(out), nil
	})
	method(t, "join", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "join")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("join", 1, len(rest))
		}
		items, err := vm.Collect(frameOf(call), rest[0])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(items))
		for i, v := range items {
			parts[i] = v.Str
		}
		return pyobj.Str(strings.Join(parts, self.Str)), nil
	})
	method(t, "replace", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "replace")
		if err != nil {
			return nil, err
		}
		if len(rest) < 2 {
			return nil, argErr("replace", 2, len(rest))
		}
		n := -1
		if len(rest) > 2 {
			n = int(rest[2].Int)
		}
		return pyobj.Str(strings.Replace(self.Str, rest[0].Str, rest[1].Str, n)), nil
	})
	method(t, "startswith", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "startswith")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("startswith", 1, len(rest))
		}
		return pyobj.Bool(strings.HasPrefix(self.Str, rest[0].Str)), nil
	})
	method(t, "endswith", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "endswith")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("endswith", 1, len(rest))
		}
		return pyobj.Bool(strings.HasSuffix(self.Str, rest[0].Str)), nil
	})
	method(t, "find", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "find")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("find", 1, len(rest))
		}
		return pyobj.Int(int64(strings.Index(self.Str, rest[0].Str))), nil
	})
	method(t, "index", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "index")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("index", 1, len(rest))
		}
		i := strings.Index(self.Str, rest[0].Str)
		if i < 0 {
			return nil, pyobj.Raise(pyobj.ValueErrorType, "substring not found")
		}
		return pyobj.Int(int64(i)), nil
	})
	method(t, "count", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "count")
		if err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, argErr("count", 1, len(rest))
		}
		return pyobj.Int(int64(strings.Count(self.Str, rest[0].Str))), nil
	})
	method(t, "isdigit", strBoolMethod(func(s string) bool {
		if s == "" {
			return false
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}))
	method(t, "isalpha", strBoolMethod(func(s string) bool {
		if s == "" {
			return false
		}
		for _, r := range s {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
				return false
			}
		}
		return true
	}))
	method(t, "format", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "format")
		if err != nil {
			return nil, err
		}
		f := frameOf(call)
		out := self.Str
		for i, v := range rest {
			out = strings.Replace(out, "{"+strconv.Itoa(i)+"}", vm.Str(f, v), 1)
		}
		out = strings.Replace(out, "{}", out, 0)
		for i := range rest {
			placeholder := "{}"
			if idx := strings.Index(out, placeholder); idx >= 0 && i < len(rest) {
				out = out[:idx] + vm.Str(f, rest[i]) + out[idx+len(placeholder):]
			}
		}
		return pyobj.Str(out), nil
	})
	method(t, "encode", func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "encode")
		if err != nil {
			return nil, err
		}
		return pyobj.Bytes([]byte(self.Str)), nil
	})
}

func strMethod(fn func(string) string) pyobj.NativeFunc {
	return func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "str method")
		if err != nil {
			return nil, err
		}
		return pyobj.Str(fn(self.Str)), nil
	}
}

func strBoolMethod(fn func(string) bool) pyobj.NativeFunc {
	return func(call *pyobj.Call) (*pyobj.Object, error) {
		self, _, err := selfOf(call, "str method")
		if err != nil {
			return nil, err
		}
		return pyobj.Bool(fn(self.Str)), nil
	}
}

func strArgMethod(fn func(s, arg string) string) pyobj.NativeFunc {
	return func(call *pyobj.Call) (*pyobj.Object, error) {
		self, rest, err := selfOf(call, "str method")
		if err != nil {
			return nil, err
		}
		arg := ""
		if len(rest) > 0 {
			arg = rest[0].Str
		}
		return pyobj.Str(fn(self.Str, arg)), nil
	}
}
