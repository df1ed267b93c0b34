package env

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/vm"
)

// buildBuiltinsModule populates the builtins module namespace (spec.md
// §4.6 "populate the builtins module"), grounded on runtime/builtin_types.go's
// builtinFuncs map -- one NativeFunc per CPython builtin this runtime
// supports, registered by name exactly the way the teacher's dict literal
// does, just spread across Go functions instead of one giant map literal.
func buildBuiltinsModule(e *Environment) *pyobj.Object {
	b := pyobj.NewModule("builtins")
	reg := func(name string, fn pyobj.NativeFunc) { b.SetAttribute(name, pyobj.NewNative(name, fn)) }

	reg("print", builtinPrint)
	reg("len", builtinLen)
	reg("repr", builtinRepr)
	reg("str", builtinStr)
	reg("int", builtinInt)
	reg("float", builtinFloat)
	reg("bool", builtinBool)
	reg("list", builtinList)
	reg("tuple", builtinTuple)
	reg("dict", builtinDict)
	reg("set", builtinSet)
	reg("abs", builtinAbs)
	reg("min", builtinMin)
	reg("max", builtinMax)
	reg("sum", builtinSum)
	reg("sorted", builtinSorted)
	reg("reversed", builtinReversed)
	reg("enumerate", builtinEnumerate)
	reg("zip", builtinZip)
	reg("range", builtinRange)
	reg("iter", builtinIter)
	reg("next", builtinNext)
	reg("type", builtinType)
	reg("isinstance", builtinIsinstance)
	reg("issubclass", builtinIssubclass)
	reg("getattr", builtinGetattr)
	reg("setattr", builtinSetattr)
	reg("hasattr", builtinHasattr)
	reg("delattr", builtinDelattr)
	reg("callable", builtinCallable)
	reg("id", builtinID)
	reg("hash", builtinHash)
	reg("input", builtinInput)
	reg("ord", builtinOrd)
	reg("chr", builtinChr)
	reg("all", builtinAll)
	reg("any", builtinAny)
	reg("map", builtinMap)
	reg("filter", builtinFilter)
	reg("open", builtinOpen)
	reg("vars", builtinVars)
	reg("format", builtinFormat)
	reg("__build_class__", builtinBuildClass)

	b.SetAttribute("None", pyobj.None)
	b.SetAttribute("True", pyobj.True)
	b.SetAttribute("False", pyobj.False)
	for name, t := range wellKnownTypes {
		if name == "None" {
			continue
		}
		b.SetAttribute(name, t)
	}
	for _, exc := range exceptionTypeTable() {
		b.SetAttribute(exc.TypeDef.Name, exc)
	}
	return b
}

func exceptionTypeTable() []*pyobj.Object {
	return []*pyobj.Object{
		pyobj.BaseExceptionType, pyobj.ExceptionType, pyobj.StopIterationType,
		pyobj.GeneratorExitType, pyobj.ArithmeticErrorType, pyobj.ZeroDivisionErrorType,
		pyobj.OverflowErrorType, pyobj.AssertionErrorType, pyobj.AttributeErrorType,
		pyobj.BufferErrorType, pyobj.EOFErrorType, pyobj.ImportErrorType,
		pyobj.ModuleNotFoundErrorType, pyobj.LookupErrorType, pyobj.IndexErrorType,
		pyobj.KeyErrorType, pyobj.MemoryErrorType, pyobj.NameErrorType,
		pyobj.UnboundLocalErrorType, pyobj.OSErrorType, pyobj.RuntimeErrorType,
		pyobj.NotImplementedErrorType, pyobj.RecursionErrorType, pyobj.SyntaxErrorType,
		pyobj.IndentationErrorType, pyobj.SystemErrorType, pyobj.TypeErrorType,
		pyobj.ValueErrorType, pyobj.UnicodeErrorType, pyobj.KeyboardInterruptType,
		pyobj.SystemExitType,
	}
}

// frameOf recovers the calling *vm.Frame a native stashed on pyobj.Call, the
// bridge pyobj.Call.Frame documents: natives that need to call back into
// user code (print's str() dispatch, sorted's key function) need a Frame to
// drive vm.Call/vm.Str/vm.Repr; ones that only touch builtin kinds don't.
func frameOf(call *pyobj.Call) *vm.Frame {
	f, _ := call.Frame.(*vm.Frame)
	return f
}

func argErr(name string, want, got int) error {
	return pyobj.Raise(pyobj.TypeErrorType, "%s() takes %d arguments but %d were given", name, want, got)
}

func builtinPrint(call *pyobj.Call) (*pyobj.Object, error) {
	f := frameOf(call)
	sep := " "
	end := "\n"
	if v, ok := call.Kwargs["sep"]; ok {
		sep = v.Str
	}
	if v, ok := call.Kwargs["end"]; ok {
		end = v.Str
	}
	parts := make([]string, len(call.Args))
	for i, a := range call.Args {
		if f != nil {
			parts[i] = vm.Str(f, a)
		} else {
			parts[i] = a.GoString()
		}
	}
	fmt.Print(strings.Join(parts, sep))
	fmt.Print(end)
	return pyobj.None, nil
}

func builtinLen(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("len", 1, len(call.Args))
	}
	o := call.Args[0]
	switch o.Kind {
	case pyobj.KindStr, pyobj.KindBytes:
		return pyobj.Int(int64(len([]rune(o.Str)))), nil
	case pyobj.KindList:
		return pyobj.Int(int64(o.List.Len())), nil
	case pyobj.KindTuple:
		return pyobj.Int(int64(o.Tuple.Len())), nil
	case pyobj.KindDict:
		return pyobj.Int(int64(pyobj.DictLen(o))), nil
	case pyobj.KindSet:
		return pyobj.Int(int64(o.Set.Len())), nil
	default:
		if f := frameOf(call); f != nil {
			if lenFn, ok := o.GetAttribute("__len__"); ok {
				return vm.Call(f, lenFn, nil, nil)
			}
		}
		return nil, pyobj.Raise(pyobj.TypeErrorType, "object of type '%s' has no len()", o.Kind)
	}
}

func builtinRepr(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("repr", 1, len(call.Args))
	}
	f := frameOf(call)
	return pyobj.Str(vm.Repr(f, call.Args[0])), nil
}

func builtinStr(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return pyobj.Str(""), nil
	}
	f := frameOf(call)
	return pyobj.Str(vm.Str(f, call.Args[0])), nil
}

func builtinInt(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return pyobj.Int(0), nil
	}
	v := call.Args[0]
	base := 10
	if len(call.Args) > 1 {
		base = int(call.Args[1].Int)
	}
	switch v.Kind {
	case pyobj.KindInt:
		return v, nil
	case pyobj.KindBool:
		if v.Bool {
			return pyobj.Int(1), nil
		}
		return pyobj.Int(0), nil
	case pyobj.KindFloat:
		return pyobj.Int(int64(v.Float)), nil
	case pyobj.KindStr:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), base, 64)
		if err != nil {
			return nil, pyobj.Raise(pyobj.ValueErrorType, "invalid literal for int() with base %d: %s", base, vm.Repr(frameOf(call), v))
		}
		return pyobj.Int(n), nil
	default:
		return nil, pyobj.Raise(pyobj.TypeErrorType, "int() argument must be a string or a number, not '%s'", v.Kind)
	}
}

func builtinFloat(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return pyobj.Float(0), nil
	}
	v := call.Args[0]
	switch v.Kind {
	case pyobj.KindFloat:
		return v, nil
	case pyobj.KindInt:
		return pyobj.Float(float64(v.Int)), nil
	case pyobj.KindBool:
		if v.Bool {
			return pyobj.Float(1), nil
		}
		return pyobj.Float(0), nil
	case pyobj.KindStr:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil, pyobj.Raise(pyobj.ValueErrorType, "could not convert string to float: %s", vm.Repr(frameOf(call), v))
		}
		return pyobj.Float(n), nil
	default:
		return nil, pyobj.Raise(pyobj.TypeErrorType, "float() argument must be a string or a number, not '%s'", v.Kind)
	}
}

func builtinBool(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return pyobj.False, nil
	}
	f := frameOf(call)
	return pyobj.Bool(vm.IsTrue(f, call.Args[0])), nil
}

func builtinList(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return pyobj.NewList(nil), nil
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	return pyobj.NewList(items), nil
}

func builtinTuple(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return pyobj.NewTuple(nil), nil
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	return pyobj.NewTuple(items), nil
}

func builtinSet(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return pyobj.NewSet(nil), nil
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	return pyobj.NewSet(items), nil
}

func builtinDict(call *pyobj.Call) (*pyobj.Object, error) {
	d := pyobj.NewDict()
	if len(call.Args) > 0 {
		pairs, err := vm.Collect(frameOf(call), call.Args[0])
		if err != nil {
			return nil, err
		}
		for _, kv := range pairs {
			items := pyobj.TupleItems(kv)
			if len(items) == 2 {
				d = pyobj.DictSetItem(d, items[0], items[1])
			}
		}
	}
	for k, v := range call.Kwargs {
		d = pyobj.DictSetItem(d, pyobj.Str(k), v)
	}
	return d, nil
}

func builtinAbs(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("abs", 1, len(call.Args))
	}
	v := call.Args[0]
	if v.Kind == pyobj.KindFloat {
		if v.Float < 0 {
			return pyobj.Float(-v.Float), nil
		}
		return v, nil
	}
	n := v.Int
	if n < 0 {
		n = -n
	}
	return pyobj.Int(n), nil
}

func builtinMin(call *pyobj.Call) (*pyobj.Object, error) { return minMax(call, true) }
func builtinMax(call *pyobj.Call) (*pyobj.Object, error) { return minMax(call, false) }

func minMax(call *pyobj.Call, wantMin bool) (*pyobj.Object, error) {
	items := call.Args
	if len(items) == 1 {
		var err error
		items, err = vm.Collect(frameOf(call), call.Args[0])
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		if d, ok := call.Kwargs["default"]; ok {
			return d, nil
		}
		return nil, pyobj.Raise(pyobj.ValueErrorType, "min()/max() arg is an empty sequence")
	}
	f := frameOf(call)
	keyFn, hasKey := call.Kwargs["key"]
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
	best := items[0]
	bestKey := keyOf(best)
	for _, v := range items[1:] {
		k := keyOf(v)
		cmp, err := vm.CompareValues(f, bytecode.CmpLT, k, bestKey)
		if err != nil {
			return nil, err
		}
		if (wantMin && pyobj.IsTruthy(cmp)) || (!wantMin && !pyobj.IsTruthy(cmp) && !valuesEq(f, k, bestKey)) {
			best, bestKey = v, k
		}
	}
	return best, nil
}

func valuesEq(f *vm.Frame, a, b *pyobj.Object) bool {
	v, err := vm.CompareValues(f, bytecode.CmpEQ, a, b)
	return err == nil && pyobj.IsTruthy(v)
}

func builtinSum(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return nil, argErr("sum", 1, 0)
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	total := pyobj.Int(0)
	if len(call.Args) > 1 {
		total = call.Args[1]
	}
	f := frameOf(call)
	for _, v := range items {
		total, err = vm.BinaryOp(f, bytecode.BINARY_ADD, total, v)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}

func builtinSorted(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return nil, argErr("sorted", 1, 0)
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	f := frameOf(call)
	keyFn, hasKey := call.Kwargs["key"]
	reverse := false
	if r, ok := call.Kwargs["reverse"]; ok {
		reverse = pyobj.IsTruthy(r)
	}
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
	return pyobj.NewList(items), nil
}

func builtinReversed(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("reversed", 1, len(call.Args))
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	out := make([]*pyobj.Object, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return pyobj.NewList(out), nil
}

func builtinEnumerate(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) == 0 {
		return nil, argErr("enumerate", 1, 0)
	}
	start := int64(0)
	if len(call.Args) > 1 {
		start = call.Args[1].Int
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	out := make([]*pyobj.Object, len(items))
	for i, v := range items {
		out[i] = pyobj.NewTuple([]*pyobj.Object{pyobj.Int(start + int64(i)), v})
	}
	return pyobj.NewList(out), nil
}

func builtinZip(call *pyobj.Call) (*pyobj.Object, error) {
	f := frameOf(call)
	seqs := make([][]*pyobj.Object, len(call.Args))
	minLen := -1
	for i, a := range call.Args {
		items, err := vm.Collect(f, a)
		if err != nil {
			return nil, err
		}
		seqs[i] = items
		if minLen < 0 || len(items) < minLen {
			minLen = len(items)
		}
	}
	if minLen < 0 {
		minLen = 0
	}
	out := make([]*pyobj.Object, minLen)
	for i := 0; i < minLen; i++ {
		row := make([]*pyobj.Object, len(seqs))
		for j := range seqs {
			row[j] = seqs[j][i]
		}
		out[i] = pyobj.NewTuple(row)
	}
	return pyobj.NewList(out), nil
}

func builtinRange(call *pyobj.Call) (*pyobj.Object, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(call.Args) {
	case 1:
		stop = call.Args[0].Int
	case 2:
		start, stop = call.Args[0].Int, call.Args[1].Int
	case 3:
		start, stop, step = call.Args[0].Int, call.Args[1].Int, call.Args[2].Int
	default:
		return nil, pyobj.Raise(pyobj.TypeErrorType, "range expected 1 to 3 arguments, got %d", len(call.Args))
	}
	if step == 0 {
		return nil, pyobj.Raise(pyobj.ValueErrorType, "range() arg 3 must not be zero")
	}
	var out []*pyobj.Object
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, pyobj.Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, pyobj.Int(i))
		}
	}
	return pyobj.NewList(out), nil
}

func builtinIter(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("iter", 1, len(call.Args))
	}
	items, err := vm.Collect(frameOf(call), call.Args[0])
	if err != nil {
		return nil, err
	}
	return pyobj.NewList(items), nil
}

func builtinNext(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) < 1 {
		return nil, argErr("next", 1, 0)
	}
	gen := call.Args[0]
	f := frameOf(call)
	v, ok, err := vm.GeneratorNext(f, gen)
	if err != nil {
		return nil, err
	}
	if !ok {
		if len(call.Args) > 1 {
			return call.Args[1], nil
		}
		return nil, pyobj.Raise(pyobj.StopIterationType, "")
	}
	return v, nil
}

func builtinType(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("type", 1, len(call.Args))
	}
	v := call.Args[0]
	if v.Class != nil {
		return v.Class, nil
	}
	return pyobj.ObjectType, nil
}

// builtinBuildClass runs a class suite's body function to collect its
// namespace, then assembles a type Object over the given bases, the
// equivalent of CPython's __build_class__ that MAKE_FUNCTION/CALL_FUNCTION
// for a class statement ultimately calls into (runtime/classobject.go's
// newClass is the teacher's closest analogue, minus metaclasses).
func builtinBuildClass(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) < 2 {
		return nil, pyobj.Raise(pyobj.TypeErrorType, "__build_class__ requires a function and a class name")
	}
	fn := call.Args[0]
	name := call.Args[1].Str
	bases := call.Args[2:]
	f := frameOf(call)
	ns, err := vm.Call(f, fn, nil, nil)
	if err != nil {
		return nil, err
	}
	cls := &pyobj.Object{Kind: pyobj.KindType, Class: pyobj.TypeType, TypeDef: &pyobj.TypeDef{Name: name, Bases: bases}}
	if len(bases) > 0 {
		cls.Proto = append([]*pyobj.Object(nil), bases...)
	} else {
		cls.Proto = []*pyobj.Object{pyobj.ObjectType}
	}
	if ns.Attrs != nil {
		for _, k := range ns.Attrs.Keys() {
			attrName := k.(string)
			if v, ok := ns.GetAttribute(attrName); ok {
				cls.SetAttribute(attrName, v)
			}
		}
	}
	return cls, nil
}

func builtinIsinstance(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 2 {
		return nil, argErr("isinstance", 2, len(call.Args))
	}
	return pyobj.Bool(call.Args[0].IsInstance(call.Args[1])), nil
}

func builtinIssubclass(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 2 {
		return nil, argErr("issubclass", 2, len(call.Args))
	}
	cls, base := call.Args[0], call.Args[1]
	dummy := pyobj.New(pyobj.KindInstance, cls)
	return pyobj.Bool(dummy.IsInstance(base) || cls == base), nil
}

func builtinGetattr(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) < 2 {
		return nil, argErr("getattr", 2, len(call.Args))
	}
	v, ok := call.Args[0].GetAttribute(call.Args[1].Str)
	if !ok {
		if len(call.Args) > 2 {
			return call.Args[2], nil
		}
		return nil, pyobj.Raise(pyobj.AttributeErrorType, "'%s' object has no attribute '%s'", call.Args[0].Kind, call.Args[1].Str)
	}
	return v, nil
}

func builtinSetattr(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 3 {
		return nil, argErr("setattr", 3, len(call.Args))
	}
	call.Args[0].SetAttribute(call.Args[1].Str, call.Args[2])
	return pyobj.None, nil
}

func builtinHasattr(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 2 {
		return nil, argErr("hasattr", 2, len(call.Args))
	}
	_, ok := call.Args[0].GetAttribute(call.Args[1].Str)
	return pyobj.Bool(ok), nil
}

func builtinDelattr(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 2 {
		return nil, argErr("delattr", 2, len(call.Args))
	}
	call.Args[0].DeleteAttribute(call.Args[1].Str)
	return pyobj.None, nil
}

func builtinCallable(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("callable", 1, len(call.Args))
	}
	return pyobj.Bool(pyobj.Callable(call.Args[0])), nil
}

func builtinID(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("id", 1, len(call.Args))
	}
	return pyobj.Int(int64(reflect.ValueOf(call.Args[0]).Pointer())), nil
}

func builtinHash(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("hash", 1, len(call.Args))
	}
	switch k := call.Args[0].Kind; k {
	case pyobj.KindList, pyobj.KindDict, pyobj.KindSet:
		return nil, pyobj.Raise(pyobj.TypeErrorType, "unhashable type: '%s'", k)
	}
	return pyobj.Int(int64(hashOf(call.Args[0]))), nil
}

// hashOf computes hash(v) for the builtin immutable kinds, the subset
// dict/set keying actually needs; a tuple combines its items' hashes. The
// unhashable kinds (list, dict, set) are rejected by builtinHash with
// CPython's TypeError: unhashable type before hashOf is reached.
func hashOf(v *pyobj.Object) uint64 {
	switch v.Kind {
	case pyobj.KindTuple:
		h := uint64(0x345678)
		for _, it := range pyobj.TupleItems(v) {
			h = h*1000003 ^ hashOf(it)
		}
		return h
	case pyobj.KindStr:
		h := fnv64a(v.Str)
		return h
	case pyobj.KindInt:
		return uint64(v.Int)
	case pyobj.KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case pyobj.KindFloat:
		return uint64(v.Float)
	default:
		return uint64(reflect.ValueOf(v).Pointer())
	}
}

func fnv64a(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

func builtinInput(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) > 0 {
		f := frameOf(call)
		fmt.Print(vm.Str(f, call.Args[0]))
	}
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return pyobj.Str(strings.TrimRight(line, "\r\n")), nil
}

func builtinOrd(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 || len([]rune(call.Args[0].Str)) != 1 {
		return nil, pyobj.Raise(pyobj.TypeErrorType, "ord() expected a character")
	}
	return pyobj.Int(int64([]rune(call.Args[0].Str)[0])), nil
}

func builtinChr(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("chr", 1, len(call.Args))
	}
	return pyobj.Str(string(rune(call.Args[0].Int))), nil
}

func builtinAll(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("all", 1, len(call.Args))
	}
	f := frameOf(call)
	ok := true
	err := vm.Iterate(f, call.Args[0], func(v *pyobj.Object) (bool, error) {
		if !vm.IsTrue(f, v) {
			ok = false
			return false, nil
		}
		return true, nil
	})
	return pyobj.Bool(ok), err
}

func builtinAny(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("any", 1, len(call.Args))
	}
	f := frameOf(call)
	found := false
	err := vm.Iterate(f, call.Args[0], func(v *pyobj.Object) (bool, error) {
		if vm.IsTrue(f, v) {
			found = true
			return false, nil
		}
		return true, nil
	})
	return pyobj.Bool(found), err
}

func builtinMap(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) < 2 {
		return nil, argErr("map", 2, len(call.Args))
	}
	f := frameOf(call)
	fn := call.Args[0]
	seqs := make([][]*pyobj.Object, len(call.Args)-1)
	minLen := -1
	for i, a := range call.Args[1:] {
		items, err := vm.Collect(f, a)
		if err != nil {
			return nil, err
		}
		seqs[i] = items
		if minLen < 0 || len(items) < minLen {
			minLen = len(items)
		}
	}
	if minLen < 0 {
		minLen = 0
	}
	out := make([]*pyobj.Object, minLen)
	for i := 0; i < minLen; i++ {
		args := make([]*pyobj.Object, len(seqs))
		for j := range seqs {
			args[j] = seqs[j][i]
		}
		v, err := vm.Call(f, fn, args, nil)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return pyobj.NewList(out), nil
}

func builtinFilter(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 2 {
		return nil, argErr("filter", 2, len(call.Args))
	}
	f := frameOf(call)
	fn := call.Args[0]
	items, err := vm.Collect(f, call.Args[1])
	if err != nil {
		return nil, err
	}
	var out []*pyobj.Object
	for _, v := range items {
		keep := true
		if fn.Kind != pyobj.KindNone {
			r, err := vm.Call(f, fn, []*pyobj.Object{v}, nil)
			if err != nil {
				return nil, err
			}
			keep = vm.IsTrue(f, r)
		} else {
			keep = vm.IsTrue(f, v)
		}
		if keep {
			out = append(out, v)
		}
	}
	return pyobj.NewList(out), nil
}

func builtinOpen(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) < 1 {
		return nil, argErr("open", 1, 0)
	}
	mode := "r"
	if len(call.Args) > 1 {
		mode = call.Args[1].Str
	}
	return newFileObject(call.Args[0].Str, mode)
}

func builtinVars(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) != 1 {
		return nil, argErr("vars", 1, len(call.Args))
	}
	o := call.Args[0]
	d := pyobj.NewDict()
	if o.Attrs == nil {
		return d, nil
	}
	for _, k := range o.Attrs.Keys() {
		name := k.(string)
		if v, ok := o.GetAttribute(name); ok {
			d = pyobj.DictSetItem(d, pyobj.Str(name), v)
		}
	}
	return d, nil
}

func builtinFormat(call *pyobj.Call) (*pyobj.Object, error) {
	if len(call.Args) < 1 {
		return nil, argErr("format", 1, 0)
	}
	f := frameOf(call)
	return pyobj.Str(vm.Str(f, call.Args[0])), nil
}
