package compiler

import (
	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
)

// compileStmts emits code for a statement list in order, the statement half
// of spec.md §4.4's codegen paired with compileExpr in expr.go.
func (c *compiler) compileStmts(stmts []ast.Stmt) {
	for _, st := range stmts {
		c.compileStmt(st)
	}
}

func (c *compiler) compileStmt(st ast.Stmt) {
	line := st.Line()
	switch n := st.(type) {
	case *ast.ExprStmt:
		c.compileExpr(n.Value)
		c.emit(bytecode.POP_TOP, 0, line)
	case *ast.Assign:
		c.compileExpr(n.Value)
		for i, t := range n.Targets {
			if i < len(n.Targets)-1 {
				c.emit(bytecode.DUP_TOP, 0, line)
			}
			c.compileStoreTarget(t, line)
		}
	case *ast.AugAssign:
		c.compileAugAssign(n, line)
	case *ast.AnnAssign:
		if n.Value != nil {
			c.compileExpr(n.Value)
			c.compileStoreTarget(n.Target, line)
		}
	case *ast.Return:
		if n.Value != nil {
			c.compileExpr(n.Value)
		} else {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
		}
		c.emit(bytecode.RETURN_VALUE, 0, line)
	case *ast.Pass:
	case *ast.Break:
		lc := c.fs.currentLoop()
		jmp := c.emit(bytecode.JUMP_FORWARD, 0, line)
		lc.breakJumps = append(lc.breakJumps, jmp)
	case *ast.Continue:
		lc := c.fs.currentLoop()
		jmp := c.emit(bytecode.JUMP_ABSOLUTE, 0, line)
		lc.continuePending = append(lc.continuePending, jmp)
	case *ast.Delete:
		for _, t := range n.Targets {
			c.compileDeleteTarget(t, line)
		}
	case *ast.Global, *ast.Nonlocal:
		// Fully resolved by the scoping pre-pass (scope.go); nothing to emit.
	case *ast.Assert:
		c.compileAssert(n, line)
	case *ast.Raise:
		c.compileRaise(n, line)
	case *ast.If:
		c.compileIf(n)
	case *ast.While:
		c.compileWhile(n)
	case *ast.For:
		c.compileFor(n)
	case *ast.Try:
		c.compileTry(n, line)
	case *ast.With:
		c.compileWithItems(n.Items, 0, n.Body, line)
	case *ast.FunctionDef:
		c.compileFunctionDef(n)
	case *ast.ClassDef:
		c.compileClassDef(n)
	case *ast.Import:
		c.compileImport(n, line)
	case *ast.ImportFrom:
		c.compileImportFrom(n, line)
	}
}

// compileStoreTarget emits the STORE_* sequence for an assignment target,
// assuming the value being assigned is already on top of the stack.
func (c *compiler) compileStoreTarget(target ast.Expr, line int) {
	switch t := target.(type) {
	case *ast.Name:
		c.storeName(t.Id, line)
	case *ast.Attribute:
		c.compileExpr(t.Value)
		c.emit(bytecode.STORE_ATTR, c.fs.addName(t.Attr), line)
	case *ast.Subscript:
		c.compileExpr(t.Value)
		c.compileExpr(t.Index)
		c.emit(bytecode.STORE_SUBSCR, 0, line)
	case *ast.Tuple:
		c.unpackTargets(t.Elts, line)
	case *ast.List:
		c.unpackTargets(t.Elts, line)
	case *ast.Starred:
		c.compileStoreTarget(t.Value, line)
	}
}

// unpackTargets implements `a, b = ...` / `a, *b, c = ...`, mirroring the
// UNPACK_SEQUENCE / UNPACK_EX split the VM already knows how to execute.
func (c *compiler) unpackTargets(elts []ast.Expr, line int) {
	starIdx := -1
	for i, e := range elts {
		if _, ok := e.(*ast.Starred); ok {
			starIdx = i
			break
		}
	}
	if starIdx < 0 {
		c.emit(bytecode.UNPACK_SEQUENCE, len(elts), line)
		for _, e := range elts {
			c.compileStoreTarget(e, line)
		}
		return
	}
	before := starIdx
	after := len(elts) - starIdx - 1
	c.emit(bytecode.UNPACK_EX, before<<16|after, line)
	for i := 0; i < before; i++ {
		c.compileStoreTarget(elts[i], line)
	}
	c.compileStoreTarget(elts[starIdx], line)
	for i := starIdx + 1; i < len(elts); i++ {
		c.compileStoreTarget(elts[i], line)
	}
}

func (c *compiler) compileDeleteTarget(target ast.Expr, line int) {
	switch t := target.(type) {
	case *ast.Name:
		c.deleteName(t.Id, line)
	case *ast.Attribute:
		c.compileExpr(t.Value)
		c.emit(bytecode.DELETE_ATTR, c.fs.addName(t.Attr), line)
	case *ast.Subscript:
		c.compileExpr(t.Value)
		c.compileExpr(t.Index)
		c.emit(bytecode.DELETE_SUBSCR, 0, line)
	case *ast.Tuple:
		for _, e := range t.Elts {
			c.compileDeleteTarget(e, line)
		}
	case *ast.List:
		for _, e := range t.Elts {
			c.compileDeleteTarget(e, line)
		}
	}
}

// compileAugAssign reads the target once, applies the in-place op, and
// writes it back, evaluating any object/index subexpression only once the
// way CPython's augmented assignment does.
func (c *compiler) compileAugAssign(n *ast.AugAssign, line int) {
	switch t := n.Target.(type) {
	case *ast.Name:
		c.loadName(t.Id, line)
		c.compileExpr(n.Value)
		c.emit(inplaceOpCode(n.Op), 0, line)
		c.storeName(t.Id, line)
	case *ast.Attribute:
		c.compileExpr(t.Value)
		c.emit(bytecode.DUP_TOP, 0, line)
		c.emit(bytecode.LOAD_ATTR, c.fs.addName(t.Attr), line)
		c.compileExpr(n.Value)
		c.emit(inplaceOpCode(n.Op), 0, line)
		c.emit(bytecode.ROT_TWO, 0, line)
		c.emit(bytecode.STORE_ATTR, c.fs.addName(t.Attr), line)
	case *ast.Subscript:
		c.compileExpr(t.Value)
		c.compileExpr(t.Index)
		c.emit(bytecode.DUP_TOP_TWO, 0, line)
		c.emit(bytecode.BINARY_SUBSCR, 0, line)
		c.compileExpr(n.Value)
		c.emit(inplaceOpCode(n.Op), 0, line)
		c.emit(bytecode.ROT_THREE, 0, line)
		c.emit(bytecode.STORE_SUBSCR, 0, line)
	}
}

func (c *compiler) compileAssert(n *ast.Assert, line int) {
	c.compileExpr(n.Test)
	jmp := c.emit(bytecode.POP_JUMP_IF_TRUE, 0, line)
	c.loadName("AssertionError", line)
	if n.Msg != nil {
		c.compileExpr(n.Msg)
		c.emit(bytecode.CALL_FUNCTION, 1, line)
	} else {
		c.emit(bytecode.CALL_FUNCTION, 0, line)
	}
	c.emit(bytecode.RAISE_VARARGS, 1, line)
	c.fs.patchArg(jmp, c.fs.pc())
}

func (c *compiler) compileRaise(n *ast.Raise, line int) {
	switch {
	case n.Exc == nil:
		c.emit(bytecode.RAISE_VARARGS, 0, line)
	case n.Cause != nil:
		c.compileExpr(n.Exc)
		c.compileExpr(n.Cause)
		c.emit(bytecode.RAISE_VARARGS, 2, line)
	default:
		c.compileExpr(n.Exc)
		c.emit(bytecode.RAISE_VARARGS, 1, line)
	}
}

func (c *compiler) compileIf(n *ast.If) {
	line := n.Line()
	c.compileExpr(n.Test)
	jmpElse := c.emit(bytecode.POP_JUMP_IF_FALSE, 0, line)
	c.compileStmts(n.Body)
	if len(n.Orelse) > 0 {
		jmpEnd := c.emit(bytecode.JUMP_FORWARD, 0, line)
		c.fs.patchArg(jmpElse, c.fs.pc())
		c.compileStmts(n.Orelse)
		c.fs.patchArg(jmpEnd, c.fs.pc())
	} else {
		c.fs.patchArg(jmpElse, c.fs.pc())
	}
}

func (c *compiler) compileWhile(n *ast.While) {
	line := n.Line()
	lc := c.fs.pushLoop()
	loopStart := c.fs.pc()
	c.compileExpr(n.Test)
	jmpEnd := c.emit(bytecode.POP_JUMP_IF_FALSE, 0, line)
	c.compileStmts(n.Body)
	c.emit(bytecode.JUMP_ABSOLUTE, loopStart, line)
	c.fs.patchArg(jmpEnd, c.fs.pc())
	c.compileStmts(n.Orelse)
	c.fs.finishLoop(lc, loopStart)
	c.fs.popLoop()
}

func (c *compiler) compileFor(n *ast.For) {
	line := n.Line()
	c.compileExpr(n.Iter)
	c.emit(bytecode.GET_ITER, 0, line)
	lc := c.fs.pushLoop()
	loopStart := c.fs.pc()
	jmpEnd := c.emit(bytecode.FOR_ITER, 0, line)
	c.compileStoreTarget(n.Target, line)
	c.compileStmts(n.Body)
	c.emit(bytecode.JUMP_ABSOLUTE, loopStart, line)
	c.fs.patchArg(jmpEnd, c.fs.pc())
	c.compileStmts(n.Orelse)
	c.fs.finishLoop(lc, loopStart)
	c.fs.popLoop()
}

// compileTry dispatches to the finally-wrapping form when a finally clause
// is present, otherwise compiles a plain try/except chain.
func (c *compiler) compileTry(n *ast.Try, line int) {
	if len(n.Finally) > 0 {
		c.compileTryFinally(n, line)
		return
	}
	c.compileTryExcept(n, line)
}

// compileTryExcept assumes the VM's block-stack unwind (Frame.unwind) will
// push the raised exception object and jump here when the body raises,
// leaving PendingExc set until a matching handler's POP_EXCEPT clears it.
func (c *compiler) compileTryExcept(n *ast.Try, line int) {
	setup := c.emit(bytecode.SETUP_EXCEPT, 0, line)
	c.compileStmts(n.Body)
	c.emit(bytecode.POP_BLOCK, 0, line)
	c.compileStmts(n.Orelse)
	endJump := c.emit(bytecode.JUMP_FORWARD, 0, line)
	c.fs.patchArg(setup, c.fs.pc())
	c.compileExceptHandlers(n.Handlers, line)
	c.fs.patchArg(endJump, c.fs.pc())
}

// compileExceptHandlers compiles the handler chain with the raised
// exception on top of the stack: each typed handler calls the isinstance
// builtin to decide whether it matches, a bare handler always matches, and
// falling off the end re-raises via RERAISE (PendingExc is still set).
// POP_EXCEPT is deferred to the end of each matching handler's body so a
// bare `raise` inside it can still re-raise the exception being handled.
func (c *compiler) compileExceptHandlers(handlers []*ast.ExceptHandler, line int) {
	var endJumps []int
	for _, h := range handlers {
		hasGuard := h.Type != nil
		var nextJump int
		if hasGuard {
			c.emit(bytecode.DUP_TOP, 0, line)
			c.loadName("isinstance", line)
			c.emit(bytecode.ROT_TWO, 0, line)
			c.compileExpr(h.Type)
			c.emit(bytecode.CALL_FUNCTION, 2, line)
			nextJump = c.emit(bytecode.POP_JUMP_IF_FALSE, 0, line)
		}
		if h.Name != "" {
			c.storeName(h.Name, h.Line())
		} else {
			c.emit(bytecode.POP_TOP, 0, line)
		}
		c.compileStmts(h.Body)
		c.emit(bytecode.POP_EXCEPT, 0, line)
		endJumps = append(endJumps, c.emit(bytecode.JUMP_FORWARD, 0, line))
		if hasGuard {
			c.fs.patchArg(nextJump, c.fs.pc())
		}
	}
	c.emit(bytecode.RERAISE, 0, line)
	end := c.fs.pc()
	for _, j := range endJumps {
		c.fs.patchArg(j, end)
	}
}

// compileTryFinally wraps an inner try/except (if any handlers are
// present) or the bare body in a SETUP_FINALLY block, compiling the
// finally clause twice: once inline on the fall-through path, once at the
// block's exception-unwind target, where it re-raises afterward since
// PendingExc is still set (no handler's POP_EXCEPT ran on that path).
func (c *compiler) compileTryFinally(n *ast.Try, line int) {
	setup := c.emit(bytecode.SETUP_FINALLY, 0, line)
	if len(n.Handlers) > 0 {
		innerTry := ast.NewTry(line, n.Body, n.Handlers, n.Orelse, nil)
		c.compileTryExcept(innerTry, line)
	} else {
		c.compileStmts(n.Body)
		c.compileStmts(n.Orelse)
	}
	c.emit(bytecode.POP_BLOCK, 0, line)
	c.compileStmts(n.Finally)
	endJump := c.emit(bytecode.JUMP_FORWARD, 0, line)
	c.fs.patchArg(setup, c.fs.pc())
	c.compileStmts(n.Finally)
	c.emit(bytecode.RERAISE, 0, line)
	c.fs.patchArg(endJump, c.fs.pc())
}

// compileWithItems recursively opens each context manager in Items before
// compiling body, so `with a() as x, b() as y:` nests b's block inside a's.
func (c *compiler) compileWithItems(items []ast.WithItem, idx int, body []ast.Stmt, line int) {
	if idx == len(items) {
		c.compileStmts(body)
		return
	}
	item := items[idx]
	c.compileExpr(item.ContextExpr)
	c.emit(bytecode.SETUP_WITH, 0, line)
	if item.OptionalVar != nil {
		c.compileStoreTarget(item.OptionalVar, line)
	} else {
		c.emit(bytecode.POP_TOP, 0, line)
	}
	c.compileWithItems(items, idx+1, body, line)
	c.emit(bytecode.WITH_CLEANUP, 0, line)
	c.emit(bytecode.POP_BLOCK, 0, line)
}

func (c *compiler) compileFunctionDef(n *ast.FunctionDef) {
	line := n.Line()
	isGen := containsYield(n.Body)
	var defaultExprs []ast.Expr
	for _, a := range n.Params.Args {
		if a.Default != nil {
			defaultExprs = append(defaultExprs, a.Default)
		}
	}
	for _, d := range n.Decorators {
		c.compileExpr(d.Value)
	}
	fs := c.pushFn(n, n.Name, isGen)
	bindParamVarnames(fs, n.Params)
	c.compileStmts(n.Body)
	c.emitImplicitReturn()
	code := c.popFn()
	c.makeFunctionObj(fs, code, n.Name, defaultExprs, line, false)
	c.applyDecorators(n.Decorators, line)
	c.storeName(n.Name, line)
}

// compileClassDef builds the class body as an implicit IsClassBody function
// and hands it, its name, and its bases to __build_class__, mirroring
// CPython's own LOAD_BUILD_CLASS dance (pyobj/function.go's IsClassBody doc
// comment).
func (c *compiler) compileClassDef(n *ast.ClassDef) {
	line := n.Line()
	for _, d := range n.Decorators {
		c.compileExpr(d.Value)
	}
	c.loadName("__build_class__", line)
	fs := c.pushFn(n, n.Name, false)
	c.compileStmts(n.Body)
	c.emitImplicitReturn()
	code := c.popFn()
	c.makeFunctionObj(fs, code, n.Name, nil, line, true)
	c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Str(n.Name)), line)
	for _, b := range n.Bases {
		c.compileExpr(b)
	}
	c.emit(bytecode.CALL_FUNCTION, 2+len(n.Bases), line)
	c.applyDecorators(n.Decorators, line)
	c.storeName(n.Name, line)
}

func (c *compiler) compileImport(n *ast.Import, line int) {
	for _, al := range n.Names {
		c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
		c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
		c.emit(bytecode.IMPORT_NAME, c.fs.addName(al.Name), line)
		c.storeName(importBindName(al), line)
	}
}

func (c *compiler) compileImportFrom(n *ast.ImportFrom, line int) {
	c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
	c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
	c.emit(bytecode.IMPORT_NAME, c.fs.addName(n.Module), line)
	if len(n.Names) == 1 && n.Names[0].Name == "*" {
		c.emit(bytecode.IMPORT_STAR, 0, line)
		return
	}
	for _, al := range n.Names {
		c.emit(bytecode.IMPORT_FROM, c.fs.addName(al.Name), line)
		bindName := al.AsName
		if bindName == "" {
			bindName = al.Name
		}
		c.storeName(bindName, line)
	}
	c.emit(bytecode.POP_TOP, 0, line)
}
