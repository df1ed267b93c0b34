package compiler

import (
	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/parser"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/vm"
)

// SyntaxError is re-exported from package parser so callers of Compile
// never need to import parser themselves just to type-assert the error.
type SyntaxError = parser.SyntaxError

// loopCtx tracks the jump-patch lists break/continue need while compiling
// one while/for body, pushed on fnState.loopStack per spec.md §4.4
// ("break/continue emit jumps recorded on a compiler-internal loop stack").
type loopCtx struct {
	breakJumps []int
	continueAt int // PC a `continue` jumps to (the loop's re-test/increment point); -1 until known
	continuePending []int // continue jumps emitted before continueAt is known, patched at loop end
}

// fnState is the in-progress compilation record for one code object: a
// module, a class body, a function, a lambda, or a comprehension's implicit
// function. One fnState is pushed per nested scope encountered, chained via
// parent so MAKE_FUNCTION closure-building can reach an enclosing fnState's
// cell table.
type fnState struct {
	parent *fnState
	scope  *scope

	name     string
	filename string

	consts    []*pyobj.Object
	constKeys map[constKey]int

	names   []string
	nameIdx map[string]int

	varnames []string
	varIdx   map[string]int

	insns  []int
	lnotab []int32
	line   int

	loopStack []*loopCtx

	argCount   int
	varArgName string
	kwArgName  string
	isGenerator bool
}

// constKey makes hashable literal constants comparable for LOAD_CONST
// dedup (spec.md §4.4 "co_consts deduplicated by value-equality for
// hashable literals"); non-hashable/container literals (list/dict/set
// literals, which must not alias across occurrences) are never looked up
// through this map, only appended.
type constKey struct {
	kind  pyobj.Kind
	i     int64
	f     float64
	s     string
}

func newFnState(parent *fnState, s *scope, name, filename string) *fnState {
	return &fnState{
		parent:    parent,
		scope:     s,
		name:      name,
		filename:  filename,
		constKeys: make(map[constKey]int),
		nameIdx:   make(map[string]int),
		varIdx:    make(map[string]int),
	}
}

func (fs *fnState) addConst(v *pyobj.Object) int {
	switch v.Kind {
	case pyobj.KindNone, pyobj.KindBool, pyobj.KindInt, pyobj.KindFloat, pyobj.KindStr, pyobj.KindBytes:
		key := constKey{kind: v.Kind, i: v.Int, f: v.Float, s: v.Str}
		if v.Kind == pyobj.KindBool {
			if v.Bool {
				key.i = 1
			}
		}
		if idx, ok := fs.constKeys[key]; ok {
			return idx
		}
		idx := len(fs.consts)
		fs.consts = append(fs.consts, v)
		fs.constKeys[key] = idx
		return idx
	default:
		idx := len(fs.consts)
		fs.consts = append(fs.consts, v)
		return idx
	}
}

func (fs *fnState) addName(name string) int {
	if idx, ok := fs.nameIdx[name]; ok {
		return idx
	}
	idx := len(fs.names)
	fs.names = append(fs.names, name)
	fs.nameIdx[name] = idx
	return idx
}

func (fs *fnState) addVarname(name string) int {
	if idx, ok := fs.varIdx[name]; ok {
		return idx
	}
	idx := len(fs.varnames)
	fs.varnames = append(fs.varnames, name)
	fs.varIdx[name] = idx
	return idx
}

// emit appends one (opcode, arg) instruction and returns the PC of its
// opcode slot (bytecode.InstructionWidth slots per instruction, whether or
// not the argument is meaningful, per spec.md §4.4's fixed-width encoding
// discipline so absolute jump targets stay simple integers).
func (fs *fnState) emit(op bytecode.Op, arg int, line int) int {
	pos := len(fs.insns)
	fs.insns = append(fs.insns, int(op), arg)
	fs.lnotab = append(fs.lnotab, int32(line))
	return pos
}

func (fs *fnState) pc() int { return len(fs.insns) }

func (fs *fnState) patchArg(pos int, arg int) {
	fs.insns[pos+1] = arg
}

func (fs *fnState) pushLoop() *loopCtx {
	lc := &loopCtx{continueAt: -1}
	fs.loopStack = append(fs.loopStack, lc)
	return lc
}

func (fs *fnState) popLoop() {
	fs.loopStack = fs.loopStack[:len(fs.loopStack)-1]
}

func (fs *fnState) currentLoop() *loopCtx {
	if len(fs.loopStack) == 0 {
		return nil
	}
	return fs.loopStack[len(fs.loopStack)-1]
}

func (fs *fnState) finishLoop(lc *loopCtx, continueAt int) {
	for _, p := range lc.continuePending {
		fs.patchArg(p, continueAt)
	}
	end := fs.pc()
	for _, p := range lc.breakJumps {
		fs.patchArg(p, end)
	}
}

// toCode assembles this fnState's accumulated instructions into a *vm.Code,
// laying out co_varnames as params, then *args/**kwargs, then every other
// plain local in first-assignment order (vm.Call's bindArgs relies on this
// exact ordering to size and fill a function call's Locals slice).
func (fs *fnState) toCode() *vm.Code {
	return &vm.Code{
		Name:        fs.name,
		Filename:    fs.filename,
		Consts:      fs.consts,
		Names:       fs.names,
		Varnames:    fs.varnames,
		Freevars:    append([]string(nil), fs.scope.freeOrder...),
		Cellvars:    append([]string(nil), fs.scope.cellOrder...),
		Insns:       fs.insns,
		Lnotab:      fs.lnotab,
		ArgCount:    fs.argCount,
		VarArgName:  fs.varArgName,
		KwArgName:   fs.kwArgName,
		IsGenerator: fs.isGenerator,
	}
}

// Compile parses and compiles Python source into a module-level *vm.Code,
// the single entry point package env/importer use to turn source text into
// something a Frame can run (spec.md §4.7 "parse -> compile -> allocate a
// module Object").
func Compile(src, filename string) (*vm.Code, *SyntaxError) {
	mod, serr := parser.ParseModule(src)
	if serr != nil {
		return nil, serr
	}
	return CompileModuleAST(mod, filename), nil
}

// CompileModuleAST compiles an already-parsed module, used by the REPL
// (which parses one statement/block at a time but shares this compiler).
func CompileModuleAST(mod *ast.Module, filename string) *vm.Code {
	root := buildModuleScope(mod)
	resolveScopes(root)
	fs := newFnState(nil, root, "<module>", filename)
	c := &compiler{fs: fs}
	c.compileStmts(mod.Body)
	c.emitImplicitReturn()
	return fs.toCode()
}

// compiler drives statement/expression codegen against the current fnState
// (swapped via pushFn/popFn when descending into a nested function/class/
// comprehension scope).
type compiler struct {
	fs *fnState
}

func (c *compiler) pushFn(node ast.Node, name string, isGen bool) *fnState {
	child := c.fs.scope.children[node]
	fs := newFnState(c.fs, child, name, c.fs.filename)
	fs.isGenerator = isGen
	c.fs = fs
	return fs
}

func (c *compiler) popFn() *vm.Code {
	code := c.fs.toCode()
	c.fs = c.fs.parent
	return code
}

func (c *compiler) emit(op bytecode.Op, arg int, line int) int { return c.fs.emit(op, arg, line) }

func (c *compiler) emitImplicitReturn() {
	last := len(c.fs.insns)
	line := 0
	if last >= 2 {
		line = int(c.fs.lnotab[len(c.fs.lnotab)-1])
	}
	noneIdx := c.fs.addConst(pyobj.None)
	c.emit(bytecode.LOAD_CONST, noneIdx, line)
	c.emit(bytecode.RETURN_VALUE, 0, line)
}
