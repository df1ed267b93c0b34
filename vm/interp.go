package vm

import (
	"fmt"

	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
)

// Run executes f from its current PC until it returns, raises, or yields.
// sendValue is pushed onto the stack as the result of the YIELD_VALUE
// expression being resumed; it is ignored on a frame's first entry (PC==0).
// This is the whole of the generator suspension model DESIGN.md describes:
// a generator is just a Frame whose Run call returned early with yielded
// true, and resuming it is calling Run again — no goroutine, no RunState
// label, because PC plus the Stack/Locals/BlockStack already reify
// everything a Go-closure-based coroutine would otherwise have to capture.
//
// Each instruction is dispatched by step; Run's only job beyond the fetch
// loop is handing a step error to unwind, which walks f.BlockStack looking
// for a try/except/finally/with block willing to catch it before giving up
// and letting the error propagate to the caller (another frame's own step,
// most likely a CALL_FUNCTION, which will in turn run its own unwind).
func (f *Frame) Run(sendValue *pyobj.Object) (value *pyobj.Object, yielded bool, err error) {
	if f.PC != 0 && sendValue != nil {
		f.push(sendValue)
	}
	code := f.Code
	for f.PC < code.Len() {
		v, y, done, stepErr := f.step(code)
		if stepErr != nil {
			if f.unwind(stepErr) {
				continue
			}
			return nil, false, stepErr
		}
		if done {
			return v, y, nil
		}
	}
	return pyobj.None, false, nil
}

// unwind pops block records off f.BlockStack looking for one that catches
// err, truncating the value stack to the block's recorded depth as it goes.
// A BlockExcept or BlockFinally block catches unconditionally: the compiled
// except chain (or finally body) decides for itself, via the isinstance
// builtin, whether it actually wants the exception, and RERAISE sends
// anything unwanted back through here. A BlockWith block never catches; it
// just gets its __exit__ run on the way past. A BlockLoop block never
// catches either — SETUP_LOOP exists only so break/continue have something
// to validate against, not for exception handling.
func (f *Frame) unwind(err error) bool {
	pe, ok := err.(*pyobj.PyError)
	if !ok {
		return false
	}
	for len(f.BlockStack) > 0 {
		blk := f.BlockStack[len(f.BlockStack)-1]
		f.BlockStack = f.BlockStack[:len(f.BlockStack)-1]
		f.Stack = f.Stack[:blk.StackLevel]
		switch blk.Type {
		case BlockExcept, BlockFinally:
			f.PendingExc = pe.Exc
			f.push(pe.Exc)
			f.PC = blk.Handler
			return true
		case BlockWith:
			mgr := f.pop()
			if exitFn, ok := mgr.GetAttribute("__exit__"); ok {
				Call(f, exitFn, []*pyobj.Object{pe.Exc.Class, pe.Exc, pyobj.None}, nil)
			}
		case BlockLoop:
		}
	}
	return false
}

// step decodes and executes a single instruction. done reports whether the
// frame's execution is over (RETURN_VALUE/YIELD_VALUE/YIELD_FROM), in which
// case value/yielded hold the result; err is a *pyobj.PyError for anything
// Run should try to route through unwind first.
func (f *Frame) step(code *Code) (value *pyobj.Object, yielded bool, done bool, err error) {
	op, arg := code.Fetch(f.PC)
	f.Lineno = code.Line(f.PC)
	f.PC += bytecode.InstructionWidth

	switch op {
	case bytecode.NOP:

	case bytecode.POP_TOP:
		f.pop()
	case bytecode.DUP_TOP:
		f.push(f.top())
	case bytecode.DUP_TOP_TWO:
		n := len(f.Stack)
		a, b := f.Stack[n-2], f.Stack[n-1]
		f.push(a)
		f.push(b)
	case bytecode.ROT_TWO:
		n := len(f.Stack)
		f.Stack[n-1], f.Stack[n-2] = f.Stack[n-2], f.Stack[n-1]
	case bytecode.ROT_THREE:
		n := len(f.Stack)
		f.Stack[n-1], f.Stack[n-2], f.Stack[n-3] = f.Stack[n-2], f.Stack[n-3], f.Stack[n-1]
	case bytecode.ROT_FOUR:
		n := len(f.Stack)
		f.Stack[n-1], f.Stack[n-2], f.Stack[n-3], f.Stack[n-4] = f.Stack[n-2], f.Stack[n-3], f.Stack[n-4], f.Stack[n-1]

	case bytecode.LOAD_CONST:
		f.push(code.Consts[arg])
	case bytecode.LOAD_NAME:
		name := code.Names[arg]
		v, ok := f.lookupName(name)
		if !ok {
			return nil, false, true, f.RaiseType(pyobj.NameErrorType, "name '%s' is not defined", name)
		}
		f.push(v)
	case bytecode.STORE_NAME:
		f.Globals.SetAttribute(code.Names[arg], f.pop())
	case bytecode.DELETE_NAME:
		f.Globals.DeleteAttribute(code.Names[arg])
	case bytecode.LOAD_GLOBAL:
		name := code.Names[arg]
		v, ok := f.moduleGlobals().GetAttribute(name)
		if !ok {
			v, ok = f.lookupBuiltin(name)
		}
		if !ok {
			return nil, false, true, f.RaiseType(pyobj.NameErrorType, "name '%s' is not defined", name)
		}
		f.push(v)
	case bytecode.STORE_GLOBAL:
		f.moduleGlobals().SetAttribute(code.Names[arg], f.pop())
	case bytecode.LOAD_FAST:
		v := f.Locals[arg]
		if v == nil {
			return nil, false, true, f.RaiseType(pyobj.UnboundLocalErrorType, "local variable '%s' referenced before assignment", code.Varnames[arg])
		}
		f.push(v)
	case bytecode.STORE_FAST:
		f.Locals[arg] = f.pop()
	case bytecode.DELETE_FAST:
		f.Locals[arg] = nil
	case bytecode.LOAD_DEREF:
		f.push(pyobj.CellGet(f.derefCell(arg)))
	case bytecode.STORE_DEREF:
		pyobj.CellSet(f.derefCell(arg), f.pop())
	case bytecode.LOAD_CLOSURE:
		f.push(f.derefCell(arg))

	case bytecode.LOAD_ATTR:
		obj := f.pop()
		v, ok := obj.GetAttribute(code.Names[arg])
		if !ok {
			return nil, false, true, f.RaiseType(pyobj.AttributeErrorType, "'%s' object has no attribute '%s'", obj.Kind, code.Names[arg])
		}
		f.push(v)
	case bytecode.STORE_ATTR:
		obj := f.pop()
		obj.SetAttribute(code.Names[arg], f.pop())
	case bytecode.DELETE_ATTR:
		f.pop().DeleteAttribute(code.Names[arg])
	case bytecode.BINARY_SUBSCR:
		index := f.pop()
		obj := f.pop()
		v, serr := Subscript(f, obj, index)
		if serr != nil {
			return nil, false, true, serr
		}
		f.push(v)
	case bytecode.STORE_SUBSCR:
		index := f.pop()
		obj := f.pop()
		val := f.pop()
		if serr := SetSubscript(f, obj, index, val); serr != nil {
			return nil, false, true, serr
		}
	case bytecode.DELETE_SUBSCR:
		index := f.pop()
		obj := f.pop()
		if serr := DeleteSubscript(f, obj, index); serr != nil {
			return nil, false, true, serr
		}

	case bytecode.BINARY_ADD, bytecode.BINARY_SUBTRACT, bytecode.BINARY_MULTIPLY,
		bytecode.BINARY_TRUE_DIVIDE, bytecode.BINARY_FLOOR_DIVIDE, bytecode.BINARY_MODULO,
		bytecode.BINARY_POWER, bytecode.BINARY_LSHIFT, bytecode.BINARY_RSHIFT,
		bytecode.BINARY_AND, bytecode.BINARY_OR, bytecode.BINARY_XOR,
		bytecode.INPLACE_ADD, bytecode.INPLACE_SUBTRACT, bytecode.INPLACE_MULTIPLY,
		bytecode.INPLACE_TRUE_DIVIDE, bytecode.INPLACE_FLOOR_DIVIDE, bytecode.INPLACE_MODULO,
		bytecode.INPLACE_POWER, bytecode.INPLACE_LSHIFT, bytecode.INPLACE_RSHIFT,
		bytecode.INPLACE_AND, bytecode.INPLACE_OR, bytecode.INPLACE_XOR:
		r := f.pop()
		l := f.pop()
		v, berr := BinaryOp(f, op, l, r)
		if berr != nil {
			return nil, false, true, berr
		}
		f.push(v)

	case bytecode.UNARY_POSITIVE, bytecode.UNARY_NEGATIVE, bytecode.UNARY_INVERT, bytecode.UNARY_NOT:
		v, uerr := UnaryOp(f, op, f.pop())
		if uerr != nil {
			return nil, false, true, uerr
		}
		f.push(v)

	case bytecode.COMPARE_OP:
		r := f.pop()
		l := f.pop()
		v, cerr := CompareValues(f, bytecode.CompareOp(arg), l, r)
		if cerr != nil {
			return nil, false, true, cerr
		}
		f.push(v)
	case bytecode.IS_OP:
		r := f.pop()
		l := f.pop()
		f.push(pyobj.Bool(l == r))
	case bytecode.IS_NOT_OP:
		r := f.pop()
		l := f.pop()
		f.push(pyobj.Bool(l != r))
	case bytecode.CONTAINS_OP:
		item := f.pop()
		container := f.pop()
		ok, cerr := Contains(f, container, item)
		if cerr != nil {
			return nil, false, true, cerr
		}
		f.push(pyobj.Bool(ok))
	case bytecode.NOT_CONTAINS_OP:
		item := f.pop()
		container := f.pop()
		ok, cerr := Contains(f, container, item)
		if cerr != nil {
			return nil, false, true, cerr
		}
		f.push(pyobj.Bool(!ok))

	case bytecode.BUILD_LIST:
		f.push(pyobj.NewList(f.popN(arg)))
	case bytecode.BUILD_TUPLE:
		f.push(pyobj.NewTuple(f.popN(arg)))
	case bytecode.BUILD_SET:
		f.push(pyobj.NewSet(f.popN(arg)))
	case bytecode.BUILD_MAP:
		items := f.popN(arg * 2)
		d := pyobj.NewDict()
		for i := 0; i < len(items); i += 2 {
			d = pyobj.DictSetItem(d, items[i], items[i+1])
		}
		f.push(d)
	case bytecode.BUILD_SLICE:
		step := f.pop()
		upper := f.pop()
		lower := f.pop()
		f.push(NewSlice(lower, upper, step))
	case bytecode.UNPACK_SEQUENCE:
		v := f.pop()
		items, uerr := sequenceItems(f, v)
		if uerr != nil {
			return nil, false, true, uerr
		}
		if len(items) != arg {
			return nil, false, true, f.RaiseType(pyobj.ValueErrorType, "expected %d values to unpack, got %d", arg, len(items))
		}
		for i := len(items) - 1; i >= 0; i-- {
			f.push(items[i])
		}
	case bytecode.UNPACK_EX:
		before := arg >> 16
		after := arg & 0xFFFF
		v := f.pop()
		items, uerr := sequenceItems(f, v)
		if uerr != nil {
			return nil, false, true, uerr
		}
		if len(items) < before+after {
			return nil, false, true, f.RaiseType(pyobj.ValueErrorType, "not enough values to unpack (expected at least %d, got %d)", before+after, len(items))
		}
		mid := items[before : len(items)-after]
		for i := len(items) - 1; i >= len(items)-after; i-- {
			f.push(items[i])
		}
		f.push(pyobj.NewList(append([]*pyobj.Object(nil), mid...)))
		for i := before - 1; i >= 0; i-- {
			f.push(items[i])
		}
	case bytecode.LIST_APPEND:
		v := f.pop()
		target := f.Stack[len(f.Stack)-arg]
		target.List = target.List.AppendLast(v)
	case bytecode.SET_ADD:
		v := f.pop()
		target := f.Stack[len(f.Stack)-arg]
		*target = *pyobj.SetAdd(target, v)
	case bytecode.MAP_ADD:
		val := f.pop()
		key := f.pop()
		target := f.Stack[len(f.Stack)-arg]
		*target = *pyobj.DictSetItem(target, key, val)
	case bytecode.CAST_LIST:
		v := f.pop()
		items := pyobj.ListItems(v)
		switch arg {
		case 1:
			f.push(pyobj.NewTuple(items))
		case 2:
			f.push(pyobj.NewSet(items))
		default:
			f.push(v)
		}
	case bytecode.DICT_UPDATE:
		upd := f.pop()
		target := f.Stack[len(f.Stack)-arg]
		for _, kv := range pyobj.DictItems(upd) {
			*target = *pyobj.DictSetItem(target, kv[0], kv[1])
		}

	case bytecode.JUMP_ABSOLUTE, bytecode.JUMP_FORWARD:
		f.PC = arg
	case bytecode.POP_JUMP_IF_FALSE:
		if !IsTrue(f, f.pop()) {
			f.PC = arg
		}
	case bytecode.POP_JUMP_IF_TRUE:
		if IsTrue(f, f.pop()) {
			f.PC = arg
		}
	case bytecode.JUMP_IF_FALSE_OR_POP:
		if !IsTrue(f, f.top()) {
			f.PC = arg
		} else {
			f.pop()
		}
	case bytecode.JUMP_IF_TRUE_OR_POP:
		if IsTrue(f, f.top()) {
			f.PC = arg
		} else {
			f.pop()
		}
	case bytecode.GET_ITER:
		it, ierr := NewIterator(f, f.pop())
		if ierr != nil {
			return nil, false, true, ierr
		}
		wrapper := pyobj.New(pyobj.KindInstance, nil)
		wrapper.Extra = it
		f.push(wrapper)
	case bytecode.FOR_ITER:
		it := f.top().Extra.(*iterCursor)
		v, ok := it.next()
		if !ok {
			f.pop()
			f.PC = arg
		} else {
			f.push(v)
		}

	case bytecode.CALL_FUNCTION:
		args := f.popN(arg)
		fn := f.pop()
		v, cerr := Call(f, fn, args, nil)
		if cerr != nil {
			return nil, false, true, cerr
		}
		f.push(v)
	case bytecode.CALL_FUNCTION_KW:
		names := pyobj.TupleItems(f.pop())
		allArgs := f.popN(arg)
		positional := allArgs[:len(allArgs)-len(names)]
		kwvals := allArgs[len(allArgs)-len(names):]
		kwargs := make(map[string]*pyobj.Object, len(names))
		for i, n := range names {
			kwargs[n.Str] = kwvals[i]
		}
		fn := f.pop()
		v, cerr := Call(f, fn, positional, kwargs)
		if cerr != nil {
			return nil, false, true, cerr
		}
		f.push(v)
	case bytecode.CALL_FUNCTION_EX:
		var kwargs map[string]*pyobj.Object
		if arg&1 != 0 {
			kwDict := f.pop()
			kwargs = make(map[string]*pyobj.Object)
			for _, kv := range pyobj.DictItems(kwDict) {
				kwargs[kv[0].Str] = kv[1]
			}
		}
		argsVal := f.pop()
		positional, serr := sequenceItems(f, argsVal)
		if serr != nil {
			return nil, false, true, serr
		}
		fn := f.pop()
		v, cerr := Call(f, fn, positional, kwargs)
		if cerr != nil {
			return nil, false, true, cerr
		}
		f.push(v)
	case bytecode.MAKE_FUNCTION:
		v, merr := f.makeFunction(arg)
		if merr != nil {
			return nil, false, true, merr
		}
		f.push(v)
	case bytecode.RETURN_VALUE:
		return f.pop(), false, true, nil
	case bytecode.YIELD_VALUE:
		return f.pop(), true, true, nil
	case bytecode.YIELD_FROM:
		return f.pop(), true, true, nil

	case bytecode.SETUP_FINALLY:
		f.BlockStack = append(f.BlockStack, Block{Type: BlockFinally, Handler: arg, StackLevel: len(f.Stack)})
	case bytecode.SETUP_EXCEPT:
		f.BlockStack = append(f.BlockStack, Block{Type: BlockExcept, Handler: arg, StackLevel: len(f.Stack)})
	case bytecode.SETUP_LOOP:
		f.BlockStack = append(f.BlockStack, Block{Type: BlockLoop, Handler: arg, StackLevel: len(f.Stack)})
	case bytecode.SETUP_WITH:
		mgr := f.top()
		enter, _ := mgr.GetAttribute("__enter__")
		v, werr := Call(f, enter, nil, nil)
		if werr != nil {
			return nil, false, true, werr
		}
		f.BlockStack = append(f.BlockStack, Block{Type: BlockWith, Handler: arg, StackLevel: len(f.Stack)})
		f.push(v)
	case bytecode.WITH_CLEANUP:
		mgr := f.pop()
		exitFn, _ := mgr.GetAttribute("__exit__")
		_, werr := Call(f, exitFn, []*pyobj.Object{pyobj.None, pyobj.None, pyobj.None}, nil)
		if werr != nil {
			return nil, false, true, werr
		}
	case bytecode.POP_BLOCK:
		f.BlockStack = f.BlockStack[:len(f.BlockStack)-1]
	case bytecode.POP_EXCEPT:
		f.PendingExc = nil
	case bytecode.RAISE_VARARGS:
		switch arg {
		case 0:
			if f.PendingExc == nil {
				return nil, false, true, f.RaiseType(pyobj.RuntimeErrorType, "No active exception to re-raise")
			}
			return nil, false, true, f.Raise(f.PendingExc)
		case 1:
			return nil, false, true, f.Raise(f.pop())
		default:
			cause := f.pop()
			exc := f.pop()
			exc.SetAttribute("__cause__", cause)
			return nil, false, true, f.Raise(exc)
		}
	case bytecode.RERAISE:
		if f.PendingExc != nil {
			return nil, false, true, f.Raise(f.PendingExc)
		}

	case bytecode.IMPORT_NAME:
		mod, ierr := f.importName(code.Names[arg])
		if ierr != nil {
			return nil, false, true, ierr
		}
		f.pop()
		f.pop()
		f.push(mod)
	case bytecode.IMPORT_FROM:
		mod := f.top()
		v, ok := mod.GetAttribute(code.Names[arg])
		if !ok {
			return nil, false, true, f.RaiseType(pyobj.ImportErrorType, "cannot import name '%s'", code.Names[arg])
		}
		f.push(v)
	case bytecode.IMPORT_STAR:
		mod := f.pop()
		if err := importStar(f.Globals, mod); err != nil {
			return nil, false, true, err
		}

	case bytecode.PRINT_EXPR:
		v := f.pop()
		fmt.Println(Repr(f, v))
	case bytecode.FORMAT_VALUE:
		v := f.pop()
		f.push(pyobj.Str(formatValue(f, v, arg)))
	case bytecode.BUILD_STRING:
		parts := f.popN(arg)
		s := ""
		for _, p := range parts {
			s += p.Str
		}
		f.push(pyobj.Str(s))

	default:
		return nil, false, true, f.RaiseType(pyobj.SystemErrorType, "unimplemented opcode %s", op)
	}
	return nil, false, false, nil
}

func (f *Frame) moduleGlobals() *pyobj.Object {
	if f.ModuleGlobals != nil {
		return f.ModuleGlobals
	}
	return f.Globals
}

func (f *Frame) derefCell(idx int) *pyobj.Object {
	if idx < len(f.Cells) {
		return f.Cells[idx]
	}
	return f.Freevars[idx-len(f.Cells)]
}

func (f *Frame) lookupName(name string) (*pyobj.Object, bool) {
	if v, ok := f.Globals.GetAttribute(name); ok {
		return v, true
	}
	return f.lookupBuiltin(name)
}

func (f *Frame) lookupBuiltin(name string) (*pyobj.Object, bool) {
	if f.Thread == nil || f.Thread.Builtins == nil {
		return nil, false
	}
	return f.Thread.Builtins.GetAttribute(name)
}

func sequenceItems(f *Frame, v *pyobj.Object) ([]*pyobj.Object, error) {
	switch v.Kind {
	case pyobj.KindList:
		return pyobj.ListItems(v), nil
	case pyobj.KindTuple:
		return pyobj.TupleItems(v), nil
	default:
		it, err := NewIterator(f, v)
		if err != nil {
			return nil, err
		}
		var out []*pyobj.Object
		for {
			item, ok := it.next()
			if !ok {
				break
			}
			out = append(out, item)
		}
		return out, nil
	}
}

// makeFunction implements MAKE_FUNCTION with CPython 3.6's flag bits:
// bit0 defaults tuple present, bit3 closure tuple present, plus a
// compiler-private bit4 marking a class suite's implicit function so
// vm.Call knows to hand back its namespace instead of its return value.
// Annotations and keyword-only defaults are out of scope (spec.md's
// expanded function signature support stops at *args/**kwargs).
func (f *Frame) makeFunction(flags int) (*pyobj.Object, error) {
	qualname := f.pop()
	codeObj := f.pop()
	var closure []*pyobj.Object
	if flags&0x8 != 0 {
		closure = pyobj.TupleItems(f.pop())
	}
	var defaults []*pyobj.Object
	if flags&0x1 != 0 {
		defaults = pyobj.TupleItems(f.pop())
	}
	code := codeObj.Extra.(*Code)
	def := &pyobj.FunctionDef{
		Name:       qualname.Str,
		ParamNames: code.Varnames[:code.ArgCount],
		Defaults:   defaults,
		VarArgName: code.VarArgName,
		KwArgName:  code.KwArgName,
		Closure:    closure,
		// A function closes over the globals of the module lexically
		// enclosing it, not whatever namespace happens to be f.Globals at
		// the point of definition (inside a class suite, f.Globals is the
		// class's own fresh namespace).
		Globals:     f.moduleGlobals(),
		Code:        code,
		IsGenerator: code.IsGenerator,
		IsClassBody: flags&0x10 != 0,
	}
	return pyobj.NewFunction(def), nil
}

func formatValue(f *Frame, v *pyobj.Object, conv int) string {
	switch conv {
	case 1:
		return Repr(f, v)
	case 2:
		return Str(f, v)
	default:
		return Str(f, v)
	}
}
