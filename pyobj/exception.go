package pyobj

import "fmt"

// PyError is a Go error wrapping a raised Python exception object, so that
// pyobj- and vm-level functions can return plain (T, error) results instead
// of threading a *Frame through every call as the teacher's runtime package
// does (runtime/core.go's "(f *Frame, ...) (*Object, *BaseException)"
// convention). The vm package's Frame still keeps its own pending-exception
// slot for bytecode-level try/except/finally bookkeeping (spec.md §4.1); this
// just keeps pyobj itself idiomatic Go and free of a dependency on vm.Frame.
type PyError struct {
	Exc *Object
}

func (e *PyError) Error() string {
	if e.Exc == nil {
		return "PyError: <nil>"
	}
	msg := ExceptionMessage(e.Exc)
	name := "Exception"
	if e.Exc.Class != nil && e.Exc.Class.TypeDef != nil {
		name = e.Exc.Class.TypeDef.Name
	}
	if msg == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, msg)
}

// Raise wraps class (an exception type Object) and a formatted message into
// a *PyError ready to be returned as a Go error.
func Raise(class *Object, format string, args ...interface{}) *PyError {
	exc := NewException(class, fmt.Sprintf(format, args...))
	return &PyError{Exc: exc}
}

// NewException builds an exception instance of class with a single string
// argument, matching BaseException.args in the teacher
// (runtime/baseexception.go).
func NewException(class *Object, msg string) *Object {
	e := &Object{Kind: KindException, Class: class}
	e.SetAttribute("args", NewTuple([]*Object{Str(msg)}))
	return e
}

// ExceptionMessage extracts the first element of an exception's args tuple,
// mirroring baseExceptionStr's "single-arg shortcut" (runtime/baseexception.go).
func ExceptionMessage(exc *Object) string {
	argsAttr, ok := exc.GetAttribute("args")
	if !ok || argsAttr.Tuple == nil || argsAttr.Tuple.Len() == 0 {
		return ""
	}
	first := argsAttr.Tuple.At(0).(*Object)
	if first.Kind == KindStr {
		return first.Str
	}
	return first.GoString()
}

// The builtin exception hierarchy (spec.md §4.6 "Exceptions"), grounded on
// CPython's own tree and on the teacher's exception type table spread
// across runtime/*.go (e.g. runtime/baseexception.go, and the scattered
// *ErrorType vars referenced throughout runtime/core.go).
var (
	BaseExceptionType  = newExcType("BaseException", nil)
	ExceptionType      = newExcType("Exception", BaseExceptionType)
	StopIterationType  = newExcType("StopIteration", ExceptionType)
	GeneratorExitType  = newExcType("GeneratorExit", BaseExceptionType)
	ArithmeticErrorType = newExcType("ArithmeticError", ExceptionType)
	ZeroDivisionErrorType = newExcType("ZeroDivisionError", ArithmeticErrorType)
	OverflowErrorType  = newExcType("OverflowError", ArithmeticErrorType)
	AssertionErrorType = newExcType("AssertionError", ExceptionType)
	AttributeErrorType = newExcType("AttributeError", ExceptionType)
	BufferErrorType    = newExcType("BufferError", ExceptionType)
	EOFErrorType       = newExcType("EOFError", ExceptionType)
	ImportErrorType    = newExcType("ImportError", ExceptionType)
	ModuleNotFoundErrorType = newExcType("ModuleNotFoundError", ImportErrorType)
	LookupErrorType    = newExcType("LookupError", ExceptionType)
	IndexErrorType     = newExcType("IndexError", LookupErrorType)
	KeyErrorType       = newExcType("KeyError", LookupErrorType)
	MemoryErrorType    = newExcType("MemoryError", ExceptionType)
	NameErrorType      = newExcType("NameError", ExceptionType)
	UnboundLocalErrorType = newExcType("UnboundLocalError", NameErrorType)
	OSErrorType        = newExcType("OSError", ExceptionType)
	RuntimeErrorType   = newExcType("RuntimeError", ExceptionType)
	NotImplementedErrorType = newExcType("NotImplementedError", RuntimeErrorType)
	RecursionErrorType = newExcType("RecursionError", RuntimeErrorType)
	SyntaxErrorType    = newExcType("SyntaxError", ExceptionType)
	IndentationErrorType = newExcType("IndentationError", SyntaxErrorType)
	SystemErrorType    = newExcType("SystemError", ExceptionType)
	TypeErrorType      = newExcType("TypeError", ExceptionType)
	ValueErrorType     = newExcType("ValueError", ExceptionType)
	UnicodeErrorType   = newExcType("UnicodeError", ValueErrorType)
	KeyboardInterruptType = newExcType("KeyboardInterrupt", BaseExceptionType)
	SystemExitType     = newExcType("SystemExit", BaseExceptionType)
)

func newExcType(name string, base *Object) *Object {
	t := &Object{Kind: KindType, Class: TypeType, TypeDef: &TypeDef{Name: name}}
	if base != nil {
		t.TypeDef.Bases = []*Object{base}
		t.Proto = []*Object{base}
	} else {
		t.Proto = []*Object{ObjectType}
	}
	return t
}

// init wires BaseException.__init__ so that user code constructing an
// exception (raise ValueError("x")) populates args the same way vm.Instantiate
// populates any other instance's state, instead of only NewException's
// native-side shortcut. Every exception type inherits this through Proto,
// mirroring BaseException.__init__ in CPython's own exceptions.c.
func init() {
	BaseExceptionType.SetAttribute("__init__", NewNative("__init__", func(call *Call) (*Object, error) {
		if len(call.Args) == 0 {
			return None, nil
		}
		self := call.Args[0]
		self.SetAttribute("args", NewTuple(call.Args[1:]))
		return None, nil
	}))
}
