package vm

import "github.com/gamarino/protoPython-sub000/pyobj"

// Frame is one activation record, chained to its caller through Back the
// same way runtime/frame.go chains Frames through f_back, but carrying a PC
// and an explicit value/block stack instead of a RunState label, since this
// VM dispatches real bytecode rather than resuming a Go closure.
type Frame struct {
	*Thread
	Back    *Frame
	Code    *Code
	Globals *pyobj.Object // module namespace
	// ModuleGlobals, when set, overrides Globals as the destination/source
	// for LOAD_GLOBAL/STORE_GLOBAL only. A class body's frame points
	// Globals at its own fresh namespace (so STORE_NAME populates the
	// class dict) while ModuleGlobals keeps pointing at the enclosing
	// module, the same split CPython's LOAD_GLOBAL/STORE_NAME pair needs
	// inside a class suite (spec.md §4.6 name resolution order).
	ModuleGlobals *pyobj.Object
	Locals  []*pyobj.Object
	Cells   []*pyobj.Object // this frame's own cellvars, boxed for capture
	Freevars []*pyobj.Object // cells captured from an enclosing frame

	Stack      []*pyobj.Object
	BlockStack []Block
	PC         int
	Lineno     int
}

// NewFrame creates a Frame for executing code on thread th, chained above
// back (nil for a module's top-level frame).
func NewFrame(th *Thread, back *Frame, code *Code, globals *pyobj.Object) *Frame {
	return &Frame{
		Thread:  th,
		Back:    back,
		Code:    code,
		Globals: globals,
		Locals:  make([]*pyobj.Object, len(code.Varnames)),
	}
}

// NewChildFrame creates a Frame inheriting its Thread from back, the usual
// case of one function call pushing a new frame onto the same call stack.
func NewChildFrame(back *Frame, code *Code, globals *pyobj.Object) *Frame {
	return NewFrame(back.Thread, back, code, globals)
}

func (f *Frame) push(v *pyobj.Object) {
	f.Stack = append(f.Stack, v)
}

func (f *Frame) pop() *pyobj.Object {
	n := len(f.Stack) - 1
	v := f.Stack[n]
	f.Stack = f.Stack[:n]
	return v
}

func (f *Frame) top() *pyobj.Object {
	return f.Stack[len(f.Stack)-1]
}

func (f *Frame) popN(n int) []*pyobj.Object {
	out := make([]*pyobj.Object, n)
	copy(out, f.Stack[len(f.Stack)-n:])
	f.Stack = f.Stack[:len(f.Stack)-n]
	return out
}

// Raise records exc as the thread's pending exception, the equivalent of
// runtime/frame.go's Frame.Raise/RaiseType without the variadic cause/
// traceback plumbing (spec.md's exception value carries __cause__ as a
// plain attribute instead).
func (f *Frame) Raise(exc *pyobj.Object) error {
	f.PendingExc = exc
	return &pyobj.PyError{Exc: exc}
}

// RaiseType is a convenience wrapper building a formatted exception of the
// given class.
func (f *Frame) RaiseType(class *pyobj.Object, format string, args ...interface{}) error {
	err := pyobj.Raise(class, format, args...)
	f.PendingExc = err.Exc
	return err
}

// ClearExc clears the thread's pending exception, mirroring
// runtime/frame.go's RestoreExc(nil, nil) calls after an exception is
// caught and handled.
func (f *Frame) ClearExc() {
	f.PendingExc = nil
}
