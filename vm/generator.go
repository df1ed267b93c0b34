package vm

import "github.com/gamarino/protoPython-sub000/pyobj"

// generatorState is a KindGenerator Object's Extra payload: just the
// suspended Frame plus a couple of bookkeeping flags. Resuming a generator
// is calling genFrame.Run again at its saved PC -- DESIGN.md calls this out
// as the one place this VM diverges sharply from the teacher's
// generatorStateCreated/Ready/Running/Done mutex state machine
// (runtime/generator.go): here there is no separate goroutine to hand
// control to, so "suspended" is simply "Run returned with yielded=true".
type generatorState struct {
	frame   *Frame
	started bool
	done    bool
}

// NewGenerator wraps a not-yet-started call to a generator function's body
// as a KindGenerator Object.
func NewGenerator(f *Frame, def *pyobj.FunctionDef, code *Code, locals []*pyobj.Object) *pyobj.Object {
	child := NewChildFrame(f, code, def.Globals)
	child.Locals = locals
	child.Freevars = def.Closure
	child.Cells = make([]*pyobj.Object, len(code.Cellvars))
	for i := range child.Cells {
		child.Cells[i] = pyobj.NewCell(pyobj.None)
	}
	gen := pyobj.New(pyobj.KindGenerator, pyobj.GeneratorType)
	gen.Extra = &generatorState{frame: child}
	return gen
}

// GeneratorNext resumes gen with no sent value (the GET_ITER/FOR_ITER/
// built-in next() path), returning (value, true, nil) on a yield and
// (nil, false, nil) once the generator body returns, the Go-native
// equivalent of StopIteration termination.
func GeneratorNext(f *Frame, gen *pyobj.Object) (*pyobj.Object, bool, error) {
	return GeneratorSend(f, gen, pyobj.None)
}

// GeneratorSend resumes gen with sendValue as the result of the generator's
// last yield expression, implementing generator.send(value) (spec.md's
// coroutine resumption operation).
func GeneratorSend(f *Frame, gen *pyobj.Object, sendValue *pyobj.Object) (*pyobj.Object, bool, error) {
	state := gen.Extra.(*generatorState)
	if state.done {
		return nil, false, f.Raise(pyobj.NewException(pyobj.StopIterationType, ""))
	}
	var toSend *pyobj.Object
	if state.started {
		toSend = sendValue
	}
	state.started = true
	value, yielded, err := state.frame.Run(toSend)
	if err != nil {
		state.done = true
		return nil, false, err
	}
	if !yielded {
		state.done = true
		return nil, false, nil
	}
	return value, true, nil
}

// GeneratorClose implements generator.close(): raise GeneratorExit at the
// suspension point and discard any value it yields in response.
func GeneratorClose(f *Frame, gen *pyobj.Object) error {
	state := gen.Extra.(*generatorState)
	if state.done {
		return nil
	}
	state.done = true
	if !state.started {
		return nil
	}
	exc := pyobj.NewException(pyobj.GeneratorExitType, "")
	if !state.frame.unwind(&pyobj.PyError{Exc: exc}) {
		return nil
	}
	if _, _, err := state.frame.Run(nil); err != nil {
		if pe, ok := err.(*pyobj.PyError); !ok || pe.Exc.Class != pyobj.GeneratorExitType {
			return err
		}
	}
	return nil
}
