// Package vm implements the bytecode interpreter of spec.md §4.4/§4.5: a
// stack-based PC-driven dispatch loop over the opcode set in package
// bytecode, frames chained through f_back the way runtime/frame.go chains
// them, and a generator/coroutine suspension model built directly on top of
// the PC (simpler than the teacher's Go-closure/RunState trampoline, since
// a PC-driven loop can suspend and resume just by saving an integer instead
// of a label).
package vm

import (
	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
)

// Code is a compiled function or module body, the equivalent of
// runtime/code.go's Code object and CPython's code object.
type Code struct {
	Name       string
	Filename   string
	Consts     []*pyobj.Object
	Names      []string // global/attr names referenced by LOAD_NAME &c.
	Varnames   []string // local variable names, index == LOAD_FAST arg
	Freevars   []string // names closed over from an enclosing scope
	Cellvars   []string // names captured by nested closures
	Insns      []int    // flattened (opcode, arg) pairs, bytecode.InstructionWidth per instruction
	Lnotab     []int32  // Lnotab[pc/InstructionWidth] is the source line of that instruction
	ArgCount   int
	VarArgName string // "" if the function takes no *args
	KwArgName  string // "" if the function takes no **kwargs
	Defaults   []*pyobj.Object
	IsGenerator bool
}

// Fetch decodes the instruction at pc.
func (c *Code) Fetch(pc int) (bytecode.Op, int) {
	op := bytecode.Op(c.Insns[pc])
	arg := c.Insns[pc+1]
	return op, arg
}

// Line returns the source line for the instruction at pc, for tracebacks.
func (c *Code) Line(pc int) int {
	idx := pc / bytecode.InstructionWidth
	if idx < 0 || idx >= len(c.Lnotab) {
		return 0
	}
	return int(c.Lnotab[idx])
}

// Len returns the number of instruction slots in the code object.
func (c *Code) Len() int { return len(c.Insns) }
