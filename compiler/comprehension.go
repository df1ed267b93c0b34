package compiler

import (
	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/bytecode"
)

// compileCompFor emits the nested for-loop structure shared by every
// comprehension kind (spec.md §4.4 "comprehensions compile to an implicit
// function with one parameter, the outermost iterable"): gens[0] iterates
// over the function's sole parameter `.0`, every later generator's
// iterable is evaluated fresh on each pass through the enclosing loop, and
// each generator's `if` guards short-circuit straight back to that
// generator's own FOR_ITER (a guard failure is just "skip this item").
func (c *compiler) compileCompFor(gens []ast.Comprehension, idx int, line int, emitBody func()) {
	g := gens[idx]
	if idx == 0 {
		c.loadName(".0", line)
	} else {
		c.compileExpr(g.Iter)
	}
	c.emit(bytecode.GET_ITER, 0, line)
	loopStart := c.fs.pc()
	jmpEnd := c.emit(bytecode.FOR_ITER, 0, line)
	c.compileStoreTarget(g.Target, line)
	for _, ifE := range g.Ifs {
		c.compileExpr(ifE)
		c.emit(bytecode.POP_JUMP_IF_FALSE, loopStart, line)
	}
	if idx+1 < len(gens) {
		c.compileCompFor(gens, idx+1, line, emitBody)
	} else {
		emitBody()
	}
	c.emit(bytecode.JUMP_ABSOLUTE, loopStart, line)
	c.fs.patchArg(jmpEnd, c.fs.pc())
}

func (c *compiler) loadFastRaw(name string, line int) {
	c.emit(bytecode.LOAD_FAST, c.fs.addVarname(name), line)
}

func (c *compiler) storeFastRaw(name string, line int) {
	c.emit(bytecode.STORE_FAST, c.fs.addVarname(name), line)
}

// bindCompParams lays out a comprehension's implicit function varnames:
// `.0` (the sole parameter) plus every other name the comprehension's own
// scope binds (loop targets), skipping names promoted to cells for a
// nested closure.
func bindCompParams(fs *fnState) {
	fs.argCount = 1
	fs.addVarname(".0")
	for _, nm := range fs.scope.boundOrder {
		if fs.scope.cells[nm] {
			continue
		}
		fs.addVarname(nm)
	}
}

func (c *compiler) compileListComp(n *ast.ListComp) {
	line := n.Line()
	fs := c.pushFn(n, "<listcomp>", false)
	bindCompParams(fs)
	c.emit(bytecode.BUILD_LIST, 0, line)
	c.storeFastRaw(".result", line)
	c.compileCompFor(n.Gens, 0, line, func() {
		c.loadFastRaw(".result", line)
		c.compileExpr(n.Elt)
		c.emit(bytecode.LIST_APPEND, 1, line)
	})
	c.loadFastRaw(".result", line)
	c.emit(bytecode.RETURN_VALUE, 0, line)
	code := c.popFn()
	c.makeFunctionObj(fs, code, "<listcomp>", nil, line, false)
	c.compileExpr(n.Gens[0].Iter)
	c.emit(bytecode.GET_ITER, 0, line)
	c.emit(bytecode.CALL_FUNCTION, 1, line)
}

func (c *compiler) compileSetComp(n *ast.SetComp) {
	line := n.Line()
	fs := c.pushFn(n, "<setcomp>", false)
	bindCompParams(fs)
	c.emit(bytecode.BUILD_SET, 0, line)
	c.storeFastRaw(".result", line)
	c.compileCompFor(n.Gens, 0, line, func() {
		c.loadFastRaw(".result", line)
		c.compileExpr(n.Elt)
		c.emit(bytecode.SET_ADD, 1, line)
	})
	c.loadFastRaw(".result", line)
	c.emit(bytecode.RETURN_VALUE, 0, line)
	code := c.popFn()
	c.makeFunctionObj(fs, code, "<setcomp>", nil, line, false)
	c.compileExpr(n.Gens[0].Iter)
	c.emit(bytecode.GET_ITER, 0, line)
	c.emit(bytecode.CALL_FUNCTION, 1, line)
}

func (c *compiler) compileDictComp(n *ast.DictComp) {
	line := n.Line()
	fs := c.pushFn(n, "<dictcomp>", false)
	bindCompParams(fs)
	c.emit(bytecode.BUILD_MAP, 0, line)
	c.storeFastRaw(".result", line)
	c.compileCompFor(n.Gens, 0, line, func() {
		c.loadFastRaw(".result", line)
		c.compileExpr(n.Key)
		c.compileExpr(n.Value)
		c.emit(bytecode.MAP_ADD, 1, line)
	})
	c.loadFastRaw(".result", line)
	c.emit(bytecode.RETURN_VALUE, 0, line)
	code := c.popFn()
	c.makeFunctionObj(fs, code, "<dictcomp>", nil, line, false)
	c.compileExpr(n.Gens[0].Iter)
	c.emit(bytecode.GET_ITER, 0, line)
	c.emit(bytecode.CALL_FUNCTION, 1, line)
}

// compileGeneratorExp differs from the other comprehensions only in that
// its implicit function is itself flagged a generator and its body yields
// each element instead of accumulating into a container, so a generator
// expression's laziness (elements produced on demand, not eagerly) falls
// straight out of the same generator machinery `yield` already uses.
func (c *compiler) compileGeneratorExp(n *ast.GeneratorExp) {
	line := n.Line()
	fs := c.pushFn(n, "<genexpr>", true)
	bindCompParams(fs)
	c.compileCompFor(n.Gens, 0, line, func() {
		c.compileExpr(n.Elt)
		c.emit(bytecode.YIELD_VALUE, 0, line)
		c.emit(bytecode.POP_TOP, 0, line)
	})
	c.emitImplicitReturn()
	code := c.popFn()
	c.makeFunctionObj(fs, code, "<genexpr>", nil, line, false)
	c.compileExpr(n.Gens[0].Iter)
	c.emit(bytecode.GET_ITER, 0, line)
	c.emit(bytecode.CALL_FUNCTION, 1, line)
}
