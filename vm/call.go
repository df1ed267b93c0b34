package vm

import "github.com/gamarino/protoPython-sub000/pyobj"

// Call invokes fn (a native, a compiled function, a bound method, or a type
// acting as its own constructor) with args/kwargs, the equivalent of
// runtime/function.go's functionCall but built around this package's Frame
// instead of threading a *Frame argument through every native.
func Call(f *Frame, fn *pyobj.Object, args []*pyobj.Object, kwargs map[string]*pyobj.Object) (*pyobj.Object, error) {
	switch fn.Kind {
	case pyobj.KindNative:
		result, err := fn.Native(&pyobj.Call{Args: args, Kwargs: kwargs, Frame: f})
		if err != nil {
			if pe, ok := err.(*pyobj.PyError); ok {
				return nil, f.Raise(pe.Exc)
			}
			return nil, err
		}
		return result, nil
	case pyobj.KindFunction:
		def := fn.Extra.(*pyobj.FunctionDef)
		code := def.Code.(*Code)
		bound, err := bindArgs(f, def, args, kwargs, len(code.Varnames))
		if err != nil {
			return nil, err
		}
		if def.IsGenerator || code.IsGenerator {
			return NewGenerator(f, def, code, bound), nil
		}
		if def.IsClassBody {
			ns := pyobj.New(pyobj.KindInstance, nil)
			child := NewChildFrame(f, code, ns)
			child.ModuleGlobals = def.Globals
			child.Locals = bound
			child.Freevars = def.Closure
			child.Cells = make([]*pyobj.Object, len(code.Cellvars))
			for i := range child.Cells {
				child.Cells[i] = pyobj.NewCell(pyobj.None)
			}
			if _, _, err := child.Run(pyobj.None); err != nil {
				return nil, err
			}
			return ns, nil
		}
		child := NewChildFrame(f, code, def.Globals)
		child.Locals = bound
		child.Freevars = def.Closure
		child.Cells = make([]*pyobj.Object, len(code.Cellvars))
		for i := range child.Cells {
			child.Cells[i] = pyobj.NewCell(pyobj.None)
		}
		value, _, err := child.Run(pyobj.None)
		return value, err
	case pyobj.KindType:
		return Instantiate(f, fn, args, kwargs)
	default:
		callFn, ok := fn.GetAttribute("__call__")
		if !ok {
			return nil, f.RaiseType(pyobj.TypeErrorType, "'%s' object is not callable", fn.Kind)
		}
		return Call(f, callFn, args, kwargs)
	}
}

// bindArgs maps positional/keyword arguments onto a function's local
// variable slots, applying defaults and collecting *args/**kwargs the way
// runtime/function.go's argument-binding pass does, adapted to this
// package's flat Locals slice instead of a separate vars dict. nVarnames is
// the full length of the code object's co_varnames (spec.md §3): the
// returned slice always has this length, since the compiler lays out
// co_varnames as params, then *args/**kwargs, then every other plain local
// assigned in the body, and LOAD_FAST/STORE_FAST index straight into it.
func bindArgs(f *Frame, def *pyobj.FunctionDef, args []*pyobj.Object, kwargs map[string]*pyobj.Object, nVarnames int) ([]*pyobj.Object, error) {
	n := len(def.ParamNames)
	locals := make([]*pyobj.Object, nVarnames)

	positional := args
	if def.VarArgName == "" && len(args) > n {
		return nil, f.RaiseType(pyobj.TypeErrorType, "%s() takes %d positional arguments but %d were given", def.Name, n, len(args))
	}
	if len(positional) > n {
		positional = args[:n]
	}
	for i, v := range positional {
		locals[i] = v
	}
	remainingKwargs := make(map[string]*pyobj.Object, len(kwargs))
	for k, v := range kwargs {
		remainingKwargs[k] = v
	}
	for i := len(positional); i < n; i++ {
		name := def.ParamNames[i]
		if v, ok := remainingKwargs[name]; ok {
			locals[i] = v
			delete(remainingKwargs, name)
			continue
		}
		di := i - (n - len(def.Defaults))
		if di >= 0 && di < len(def.Defaults) {
			locals[i] = def.Defaults[di]
			continue
		}
		return nil, f.RaiseType(pyobj.TypeErrorType, "%s() missing required argument: '%s'", def.Name, name)
	}
	idx := n
	if def.VarArgName != "" {
		var rest []*pyobj.Object
		if len(args) > n {
			rest = args[n:]
		}
		locals[idx] = pyobj.NewTuple(rest)
		idx++
	}
	if def.KwArgName != "" {
		d := pyobj.NewDict()
		for k, v := range remainingKwargs {
			d = pyobj.DictSetItem(d, pyobj.Str(k), v)
		}
		locals[idx] = d
	} else if len(remainingKwargs) > 0 {
		for k := range remainingKwargs {
			return nil, f.RaiseType(pyobj.TypeErrorType, "%s() got an unexpected keyword argument '%s'", def.Name, k)
		}
	}
	return locals, nil
}

// Instantiate constructs an instance of class cls, calling __init__ if the
// class (or a prototype ancestor) defines one, mirroring
// runtime/type.go's newObject + typeCall split.
func Instantiate(f *Frame, cls *pyobj.Object, args []*pyobj.Object, kwargs map[string]*pyobj.Object) (*pyobj.Object, error) {
	instance := pyobj.New(pyobj.KindInstance, cls)
	instance.Proto = []*pyobj.Object{cls}
	if initFn, ok := cls.GetAttribute("__init__"); ok {
		if _, err := Call(f, initFn, append([]*pyobj.Object{instance}, args...), kwargs); err != nil {
			return nil, err
		}
	}
	return instance, nil
}
