package pyobj

// FunctionDef is the payload of a KindFunction Object: the parameter
// signature, captured closure cells, and defining globals. The actual
// compiled bytecode lives in the vm package's Code type and is stashed in
// Code as an opaque interface{} so this package never imports vm (spec.md
// §4.5 "a function object pairs a code object with the globals and
// closure cells it closed over").
type FunctionDef struct {
	Name       string
	ParamNames []string
	Defaults   []*Object
	VarArgName string
	KwArgName  string
	Closure    []*Object // *Object of KindCell
	Globals    *Object   // a KindModule or KindDict namespace object
	Code       interface{}
	IsGenerator bool
	// IsClassBody marks a function object built from a class suite: calling
	// it (vm.Call) returns the populated namespace object instead of
	// whatever its implicit `return None` would yield, the same way
	// CPython's __build_class__ captures a class body's local namespace
	// after running it.
	IsClassBody bool
}

// NewFunction wraps def as a callable Object.
func NewFunction(def *FunctionDef) *Object {
	return &Object{Kind: KindFunction, Class: FuncType, Extra: def}
}

// NewNative wraps a Go-implemented builtin as a callable Object, the
// equivalent of the teacher's newBuiltinFunction (runtime/native.go).
func NewNative(name string, fn NativeFunc) *Object {
	return &Object{Kind: KindNative, Class: FuncType, Str: name, Native: fn}
}

// NewCell allocates a closure cell, used by LOAD_CLOSURE/LOAD_DEREF.
func NewCell(initial *Object) *Object {
	return &Object{Kind: KindCell, Class: CellType, Extra: &initial}
}

// CellGet/CellSet read and write through a cell's boxed pointer.
func CellGet(cell *Object) *Object {
	return *(cell.Extra.(*Object))
}

func CellSet(cell *Object, v *Object) {
	*(cell.Extra.(*Object)) = v
}

// Callable reports whether o can be invoked (function, native, bound
// method, or a type object acting as its own constructor).
func Callable(o *Object) bool {
	switch o.Kind {
	case KindFunction, KindNative, KindType:
		return true
	default:
		_, ok := o.GetAttribute("__call__")
		return ok
	}
}
