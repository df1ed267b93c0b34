package compiler

import (
	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/vm"
)

// loadName/storeName/deleteName dispatch on the scoping pre-pass's
// classification of name (spec.md §4.4/§4.6) to the matching opcode family.
func (c *compiler) loadName(name string, line int) {
	switch c.fs.scope.resolve(name) {
	case nameFast:
		c.emit(bytecode.LOAD_FAST, c.fs.addVarname(name), line)
	case nameCell, nameFreeVar:
		c.emit(bytecode.LOAD_DEREF, c.fs.scope.cellIndex(name), line)
	case nameGlobalExplicit:
		c.emit(bytecode.LOAD_GLOBAL, c.fs.addName(name), line)
	default:
		c.emit(bytecode.LOAD_NAME, c.fs.addName(name), line)
	}
}

func (c *compiler) storeName(name string, line int) {
	switch c.fs.scope.resolve(name) {
	case nameFast:
		c.emit(bytecode.STORE_FAST, c.fs.addVarname(name), line)
	case nameCell, nameFreeVar:
		c.emit(bytecode.STORE_DEREF, c.fs.scope.cellIndex(name), line)
	case nameGlobalExplicit:
		c.emit(bytecode.STORE_GLOBAL, c.fs.addName(name), line)
	default:
		c.emit(bytecode.STORE_NAME, c.fs.addName(name), line)
	}
}

// deleteName has no dedicated DELETE_GLOBAL/DELETE_DEREF opcode: `del` on a
// global or a closed-over variable is rare enough that we fall back to
// DELETE_NAME, which is exact for a plain function frame (its Globals is
// already the enclosing module) and only imprecise inside a class suite's
// `global x; del x`, an edge case not worth two more opcodes for.
func (c *compiler) deleteName(name string, line int) {
	switch c.fs.scope.resolve(name) {
	case nameFast:
		c.emit(bytecode.DELETE_FAST, c.fs.addVarname(name), line)
	default:
		c.emit(bytecode.DELETE_NAME, c.fs.addName(name), line)
	}
}

const (
	mfDefaults  = 0x1
	mfClosure   = 0x8
	mfClassBody = 0x10
)

// makeFunctionObj emits the MAKE_FUNCTION sequence for a just-closed child
// fnState, in the pop order vm.Frame.makeFunction expects: defaults tuple,
// then closure tuple, then code constant, then qualname constant.
func (c *compiler) makeFunctionObj(childFS *fnState, code *vm.Code, name string, defaultExprs []ast.Expr, line int, isClassBody bool) {
	flags := 0
	if len(defaultExprs) > 0 {
		for _, d := range defaultExprs {
			c.compileExpr(d)
		}
		c.emit(bytecode.BUILD_TUPLE, len(defaultExprs), line)
		flags |= mfDefaults
	}
	if len(childFS.scope.freeOrder) > 0 {
		for _, fv := range childFS.scope.freeOrder {
			c.emit(bytecode.LOAD_CLOSURE, c.fs.scope.cellIndex(fv), line)
		}
		c.emit(bytecode.BUILD_TUPLE, len(childFS.scope.freeOrder), line)
		flags |= mfClosure
	}
	if isClassBody {
		flags |= mfClassBody
	}
	codeObj := &pyobj.Object{Kind: pyobj.KindCode, Extra: code}
	c.emit(bytecode.LOAD_CONST, c.fs.addConst(codeObj), line)
	c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Str(name)), line)
	c.emit(bytecode.MAKE_FUNCTION, flags, line)
}

// applyDecorators emits one CALL_FUNCTION per decorator, assuming the
// decorator callables were already pushed (in source order, bottom
// decorator closest to the def applied first) below the object they wrap.
func (c *compiler) applyDecorators(decs []ast.Decorator, line int) {
	for range decs {
		c.emit(bytecode.CALL_FUNCTION, 1, line)
	}
}

// bindParamVarnames lays out a function/lambda/comprehension fnState's
// co_varnames as params, then *args/**kwargs, then every other plain local
// bound in the body (vm/call.go's bindArgs relies on exactly this order).
func bindParamVarnames(fs *fnState, params ast.Params) {
	fs.argCount = len(params.Args)
	fs.varArgName = params.VarArg
	fs.kwArgName = params.KWArg
	for _, a := range params.Args {
		fs.addVarname(a.Name)
	}
	if params.VarArg != "" {
		fs.addVarname(params.VarArg)
	}
	if params.KWArg != "" {
		fs.addVarname(params.KWArg)
	}
	for _, name := range fs.scope.boundOrder {
		if fs.scope.cells[name] {
			continue
		}
		fs.addVarname(name)
	}
}

// containsYield reports whether a statement list directly contains a yield
// or yield-from (not counting nested function/class bodies, which own
// their own generator-ness), the spec.md §4.5 "a function body containing
// any yield...is flagged co_is_generator" pre-pass.
func containsYield(stmts []ast.Stmt) bool {
	for _, st := range stmts {
		if stmtContainsYield(st) {
			return true
		}
	}
	return false
}

func stmtContainsYield(st ast.Stmt) bool {
	switch n := st.(type) {
	case *ast.ExprStmt:
		return exprContainsYield(n.Value)
	case *ast.Assign:
		return exprContainsYield(n.Value)
	case *ast.AugAssign:
		return exprContainsYield(n.Value)
	case *ast.AnnAssign:
		return n.Value != nil && exprContainsYield(n.Value)
	case *ast.Return:
		return exprContainsYield(n.Value)
	case *ast.Assert:
		return exprContainsYield(n.Test) || exprContainsYield(n.Msg)
	case *ast.Raise:
		return exprContainsYield(n.Exc) || exprContainsYield(n.Cause)
	case *ast.If:
		return exprContainsYield(n.Test) || containsYield(n.Body) || containsYield(n.Orelse)
	case *ast.While:
		return exprContainsYield(n.Test) || containsYield(n.Body) || containsYield(n.Orelse)
	case *ast.For:
		return exprContainsYield(n.Iter) || containsYield(n.Body) || containsYield(n.Orelse)
	case *ast.Try:
		if containsYield(n.Body) || containsYield(n.Orelse) || containsYield(n.Finally) {
			return true
		}
		for _, h := range n.Handlers {
			if containsYield(h.Body) {
				return true
			}
		}
		return false
	case *ast.With:
		for _, item := range n.Items {
			if exprContainsYield(item.ContextExpr) {
				return true
			}
		}
		return containsYield(n.Body)
	default:
		return false
	}
}

func exprContainsYield(e ast.Expr) bool {
	if e == nil {
		return false
	}
	switch n := e.(type) {
	case *ast.Yield, *ast.YieldFrom:
		return true
	case *ast.BinOp:
		return exprContainsYield(n.Left) || exprContainsYield(n.Right)
	case *ast.BoolOp:
		for _, v := range n.Values {
			if exprContainsYield(v) {
				return true
			}
		}
		return false
	case *ast.UnaryOp:
		return exprContainsYield(n.Operand)
	case *ast.Compare:
		if exprContainsYield(n.Left) {
			return true
		}
		for _, c := range n.Comparators {
			if exprContainsYield(c) {
				return true
			}
		}
		return false
	case *ast.Call:
		if exprContainsYield(n.Func) {
			return true
		}
		for _, a := range n.Args {
			if exprContainsYield(a) {
				return true
			}
		}
		for _, k := range n.Keywords {
			if exprContainsYield(k.Value) {
				return true
			}
		}
		return false
	case *ast.IfExp:
		return exprContainsYield(n.Test) || exprContainsYield(n.Body) || exprContainsYield(n.Orelse)
	case *ast.Tuple:
		for _, el := range n.Elts {
			if exprContainsYield(el) {
				return true
			}
		}
		return false
	case *ast.List:
		for _, el := range n.Elts {
			if exprContainsYield(el) {
				return true
			}
		}
		return false
	case *ast.SetLit:
		for _, el := range n.Elts {
			if exprContainsYield(el) {
				return true
			}
		}
		return false
	case *ast.DictLit:
		for _, ent := range n.Entries {
			if exprContainsYield(ent.Key) || exprContainsYield(ent.Value) {
				return true
			}
		}
		return false
	case *ast.Attribute:
		return exprContainsYield(n.Value)
	case *ast.Subscript:
		return exprContainsYield(n.Value) || exprContainsYield(n.Index)
	case *ast.Slice:
		return exprContainsYield(n.Lower) || exprContainsYield(n.Upper) || exprContainsYield(n.Step)
	case *ast.Starred:
		return exprContainsYield(n.Value)
	case *ast.FStringLit:
		for _, p := range n.Parts {
			if p.Value != nil && exprContainsYield(p.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
