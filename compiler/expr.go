package compiler

import (
	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
)

// compileExpr emits code that leaves exactly one value on the stack: the
// result of evaluating e. This is the expression half of spec.md §4.4's
// codegen, paired with compileStmt in stmt.go.
func (c *compiler) compileExpr(e ast.Expr) {
	line := e.Line()
	switch n := e.(type) {
	case *ast.NumberLit:
		if n.IsFloat {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Float(n.Float)), line)
		} else {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Int(n.Int)), line)
		}
	case *ast.StringLit:
		if n.Bytes {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Bytes([]byte(n.Value))), line)
		} else {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Str(n.Value)), line)
		}
	case *ast.BoolLit:
		c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Bool(n.Value)), line)
	case *ast.NoneLit:
		c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
	case *ast.FStringLit:
		c.compileFString(n)
	case *ast.Name:
		c.loadName(n.Id, line)
	case *ast.Starred:
		// A bare Starred only appears here inside a container display
		// (e.g. `[*a, *b]`); call-site Starred args are handled directly
		// by compileCall's own argument-list builder.
		c.compileExpr(n.Value)
	case *ast.Tuple:
		c.compileDisplay(n.Elts, line, bytecode.BUILD_TUPLE)
	case *ast.List:
		c.compileDisplay(n.Elts, line, bytecode.BUILD_LIST)
	case *ast.SetLit:
		c.compileDisplay(n.Elts, line, bytecode.BUILD_SET)
	case *ast.DictLit:
		c.compileDictLit(n, line)
	case *ast.ListComp:
		c.compileListComp(n)
	case *ast.SetComp:
		c.compileSetComp(n)
	case *ast.DictComp:
		c.compileDictComp(n)
	case *ast.GeneratorExp:
		c.compileGeneratorExp(n)
	case *ast.Attribute:
		c.compileExpr(n.Value)
		c.emit(bytecode.LOAD_ATTR, c.fs.addName(n.Attr), line)
	case *ast.Subscript:
		c.compileExpr(n.Value)
		c.compileExpr(n.Index)
		c.emit(bytecode.BINARY_SUBSCR, 0, line)
	case *ast.Slice:
		c.compileSliceParts(n, line)
		c.emit(bytecode.BUILD_SLICE, 0, line)
	case *ast.Call:
		c.compileCall(n)
	case *ast.UnaryOp:
		c.compileExpr(n.Operand)
		c.emit(unaryOpCode(n.Op), 0, line)
	case *ast.BinOp:
		c.compileExpr(n.Left)
		c.compileExpr(n.Right)
		c.emit(binOpCode(n.Op), 0, line)
	case *ast.BoolOp:
		c.compileBoolOp(n, line)
	case *ast.Compare:
		c.compileCompare(n, line)
	case *ast.IfExp:
		c.compileIfExp(n, line)
	case *ast.Lambda:
		c.compileLambda(n)
	case *ast.Yield:
		if n.Value != nil {
			c.compileExpr(n.Value)
		} else {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
		}
		c.emit(bytecode.YIELD_VALUE, 0, line)
	case *ast.YieldFrom:
		c.compileExpr(n.Value)
		c.emit(bytecode.GET_ITER, 0, line)
		c.emit(bytecode.YIELD_FROM, 0, line)
	}
}

// compileSliceParts pushes lower, upper, step (None where absent).
func (c *compiler) compileSliceParts(n *ast.Slice, line int) {
	pushOrNone := func(e ast.Expr) {
		if e == nil {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.None), line)
		} else {
			c.compileExpr(e)
		}
	}
	pushOrNone(n.Lower)
	pushOrNone(n.Upper)
	pushOrNone(n.Step)
}

func (c *compiler) compileDisplay(elts []ast.Expr, line int, build bytecode.Op) {
	hasStar := false
	for _, e := range elts {
		if _, ok := e.(*ast.Starred); ok {
			hasStar = true
			break
		}
	}
	if !hasStar {
		for _, e := range elts {
			c.compileExpr(e)
		}
		c.emit(build, len(elts), line)
		return
	}
	// A display containing `*expr` unpacking is built the same way a call's
	// splatted argument list is: accumulate into a list, then cast.
	c.emit(bytecode.BUILD_LIST, 0, line)
	c.appendDisplayElts(elts, line)
	switch build {
	case bytecode.BUILD_TUPLE:
		c.emit(bytecode.CAST_LIST, 1, line)
	case bytecode.BUILD_SET:
		c.emit(bytecode.CAST_LIST, 2, line)
	}
}

// appendDisplayElts accumulates elts (a mix of plain expressions and
// `*expr` unpacking) into the list already on top of the stack, using the
// same GET_ITER/FOR_ITER/LIST_APPEND pattern compileCall's argument-list
// builder uses.
func (c *compiler) appendDisplayElts(elts []ast.Expr, line int) {
	for _, e := range elts {
		if st, ok := e.(*ast.Starred); ok {
			c.compileExpr(st.Value)
			c.emit(bytecode.GET_ITER, 0, line)
			loopStart := c.fs.pc()
			jmp := c.emit(bytecode.FOR_ITER, 0, line)
			c.emit(bytecode.LIST_APPEND, 2, line)
			c.emit(bytecode.JUMP_ABSOLUTE, loopStart, line)
			c.fs.patchArg(jmp, c.fs.pc())
		} else {
			c.compileExpr(e)
			c.emit(bytecode.LIST_APPEND, 1, line)
		}
	}
}

func (c *compiler) compileDictLit(n *ast.DictLit, line int) {
	c.emit(bytecode.BUILD_MAP, 0, line)
	for _, ent := range n.Entries {
		if ent.Key == nil {
			c.compileExpr(ent.Value)
			c.emit(bytecode.DICT_UPDATE, 1, line)
			continue
		}
		c.compileExpr(ent.Key)
		c.compileExpr(ent.Value)
		c.emit(bytecode.MAP_ADD, 1, line)
	}
}

func (c *compiler) compileBoolOp(n *ast.BoolOp, line int) {
	var jumps []int
	op := bytecode.JUMP_IF_FALSE_OR_POP
	if n.Op == "or" {
		op = bytecode.JUMP_IF_TRUE_OR_POP
	}
	for i, v := range n.Values {
		c.compileExpr(v)
		if i < len(n.Values)-1 {
			jumps = append(jumps, c.emit(op, 0, line))
		}
	}
	end := c.fs.pc()
	for _, j := range jumps {
		c.fs.patchArg(j, end)
	}
}

// compileCompare implements chained comparisons (`a < b < c`) with
// single evaluation of each intermediate operand, CPython's classic
// DUP_TOP/ROT_THREE/JUMP_IF_FALSE_OR_POP pattern.
func (c *compiler) compileCompare(n *ast.Compare, line int) {
	c.compileExpr(n.Left)
	if len(n.Ops) == 1 {
		c.compileExpr(n.Comparators[0])
		c.emitCompareOp(n.Ops[0], line)
		return
	}
	var cleanupJumps []int
	for i := 0; i < len(n.Ops)-1; i++ {
		c.compileExpr(n.Comparators[i])
		c.emit(bytecode.DUP_TOP, 0, line)
		c.emit(bytecode.ROT_THREE, 0, line)
		c.emitCompareOp(n.Ops[i], line)
		cleanupJumps = append(cleanupJumps, c.emit(bytecode.JUMP_IF_FALSE_OR_POP, 0, line))
	}
	last := len(n.Ops) - 1
	c.compileExpr(n.Comparators[last])
	c.emitCompareOp(n.Ops[last], line)
	endJump := c.emit(bytecode.JUMP_FORWARD, 0, line)
	cleanup := c.fs.pc()
	for _, j := range cleanupJumps {
		c.fs.patchArg(j, cleanup)
	}
	c.emit(bytecode.ROT_TWO, 0, line)
	c.emit(bytecode.POP_TOP, 0, line)
	c.fs.patchArg(endJump, c.fs.pc())
}

func (c *compiler) emitCompareOp(op string, line int) {
	switch op {
	case "==":
		c.emit(bytecode.COMPARE_OP, int(bytecode.CmpEQ), line)
	case "!=":
		c.emit(bytecode.COMPARE_OP, int(bytecode.CmpNE), line)
	case "<":
		c.emit(bytecode.COMPARE_OP, int(bytecode.CmpLT), line)
	case "<=":
		c.emit(bytecode.COMPARE_OP, int(bytecode.CmpLE), line)
	case ">":
		c.emit(bytecode.COMPARE_OP, int(bytecode.CmpGT), line)
	case ">=":
		c.emit(bytecode.COMPARE_OP, int(bytecode.CmpGE), line)
	case "is":
		c.emit(bytecode.IS_OP, 0, line)
	case "is not":
		c.emit(bytecode.IS_NOT_OP, 0, line)
	case "in":
		// CONTAINS_OP reads (container, item) off the stack with item on
		// top; our chain pushes (item, container) in source order, so swap.
		c.emit(bytecode.ROT_TWO, 0, line)
		c.emit(bytecode.CONTAINS_OP, 0, line)
	case "not in":
		c.emit(bytecode.ROT_TWO, 0, line)
		c.emit(bytecode.NOT_CONTAINS_OP, 0, line)
	}
}

func (c *compiler) compileIfExp(n *ast.IfExp, line int) {
	c.compileExpr(n.Test)
	jmpFalse := c.emit(bytecode.POP_JUMP_IF_FALSE, 0, line)
	c.compileExpr(n.Body)
	jmpEnd := c.emit(bytecode.JUMP_FORWARD, 0, line)
	c.fs.patchArg(jmpFalse, c.fs.pc())
	c.compileExpr(n.Orelse)
	c.fs.patchArg(jmpEnd, c.fs.pc())
}

func (c *compiler) compileLambda(n *ast.Lambda) {
	line := n.Line()
	var defaultExprs []ast.Expr
	for _, a := range n.Params.Args {
		if a.Default != nil {
			defaultExprs = append(defaultExprs, a.Default)
		}
	}
	fs := c.pushFn(n, "<lambda>", false)
	bindParamVarnames(fs, n.Params)
	c.compileExpr(n.Body)
	c.emit(bytecode.RETURN_VALUE, 0, line)
	code := c.popFn()
	c.makeFunctionObj(fs, code, "<lambda>", defaultExprs, line, false)
}

func unaryOpCode(op string) bytecode.Op {
	switch op {
	case "-":
		return bytecode.UNARY_NEGATIVE
	case "+":
		return bytecode.UNARY_POSITIVE
	case "~":
		return bytecode.UNARY_INVERT
	case "not":
		return bytecode.UNARY_NOT
	}
	return bytecode.NOP
}

func binOpCode(op string) bytecode.Op {
	switch op {
	case "+":
		return bytecode.BINARY_ADD
	case "-":
		return bytecode.BINARY_SUBTRACT
	case "*":
		return bytecode.BINARY_MULTIPLY
	case "/":
		return bytecode.BINARY_TRUE_DIVIDE
	case "//":
		return bytecode.BINARY_FLOOR_DIVIDE
	case "%":
		return bytecode.BINARY_MODULO
	case "**":
		return bytecode.BINARY_POWER
	case "<<":
		return bytecode.BINARY_LSHIFT
	case ">>":
		return bytecode.BINARY_RSHIFT
	case "&":
		return bytecode.BINARY_AND
	case "|":
		return bytecode.BINARY_OR
	case "^":
		return bytecode.BINARY_XOR
	default:
		// "@" matrix multiplication has no dedicated opcode (spec.md's
		// numeric tower stops at int/float); closest fallback.
		return bytecode.BINARY_MULTIPLY
	}
}

func inplaceOpCode(op string) bytecode.Op {
	switch op {
	case "+=":
		return bytecode.INPLACE_ADD
	case "-=":
		return bytecode.INPLACE_SUBTRACT
	case "*=":
		return bytecode.INPLACE_MULTIPLY
	case "/=":
		return bytecode.INPLACE_TRUE_DIVIDE
	case "//=":
		return bytecode.INPLACE_FLOOR_DIVIDE
	case "%=":
		return bytecode.INPLACE_MODULO
	case "**=":
		return bytecode.INPLACE_POWER
	case "<<=":
		return bytecode.INPLACE_LSHIFT
	case ">>=":
		return bytecode.INPLACE_RSHIFT
	case "&=":
		return bytecode.INPLACE_AND
	case "|=":
		return bytecode.INPLACE_OR
	case "^=":
		return bytecode.INPLACE_XOR
	default:
		return bytecode.INPLACE_ADD
	}
}

// compileFString lowers an f-string into a sequence of string constants and
// FORMAT_VALUE-ed expressions, joined by BUILD_STRING (spec.md §4.4
// "compiled as a sequence of string literals and FORMAT_VALUE opcodes").
func (c *compiler) compileFString(n *ast.FStringLit) {
	line := n.Line()
	for _, p := range n.Parts {
		if p.Value != nil {
			c.compileExpr(p.Value)
			c.emit(bytecode.FORMAT_VALUE, 2, line)
		} else {
			c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Str(p.Literal)), line)
		}
	}
	c.emit(bytecode.BUILD_STRING, len(n.Parts), line)
}

// compileCall handles the three call shapes spec.md's opcode set supports:
// plain positional (CALL_FUNCTION), positional+named keywords
// (CALL_FUNCTION_KW), and anything involving `*args`/`**kwargs` splats
// (CALL_FUNCTION_EX), the same three-tier CALL_FUNCTION* family CPython 3.6
// used before CALL_METHOD/vectorcall.
func (c *compiler) compileCall(n *ast.Call) {
	line := n.Line()
	c.compileExpr(n.Func)

	hasStarredArg := false
	for _, a := range n.Args {
		if _, ok := a.(*ast.Starred); ok {
			hasStarredArg = true
			break
		}
	}
	hasDoubleStarKw := false
	for _, k := range n.Keywords {
		if k.Name == "" {
			hasDoubleStarKw = true
			break
		}
	}

	if !hasStarredArg && !hasDoubleStarKw {
		for _, a := range n.Args {
			c.compileExpr(a)
		}
		if len(n.Keywords) == 0 {
			c.emit(bytecode.CALL_FUNCTION, len(n.Args), line)
			return
		}
		for _, k := range n.Keywords {
			c.compileExpr(k.Value)
		}
		names := make([]*pyobj.Object, len(n.Keywords))
		for i, k := range n.Keywords {
			names[i] = pyobj.Str(k.Name)
		}
		c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.NewTuple(names)), line)
		c.emit(bytecode.CALL_FUNCTION_KW, len(n.Args)+len(n.Keywords), line)
		return
	}

	c.emit(bytecode.BUILD_LIST, 0, line)
	for _, a := range n.Args {
		if st, ok := a.(*ast.Starred); ok {
			c.compileExpr(st.Value)
			c.emit(bytecode.GET_ITER, 0, line)
			loopStart := c.fs.pc()
			jmp := c.emit(bytecode.FOR_ITER, 0, line)
			c.emit(bytecode.LIST_APPEND, 2, line)
			c.emit(bytecode.JUMP_ABSOLUTE, loopStart, line)
			c.fs.patchArg(jmp, c.fs.pc())
		} else {
			c.compileExpr(a)
			c.emit(bytecode.LIST_APPEND, 1, line)
		}
	}
	if len(n.Keywords) == 0 {
		c.emit(bytecode.CALL_FUNCTION_EX, 0, line)
		return
	}
	c.emit(bytecode.BUILD_MAP, 0, line)
	for _, k := range n.Keywords {
		if k.Name == "" {
			c.compileExpr(k.Value)
			c.emit(bytecode.DICT_UPDATE, 1, line)
			continue
		}
		c.emit(bytecode.LOAD_CONST, c.fs.addConst(pyobj.Str(k.Name)), line)
		c.compileExpr(k.Value)
		c.emit(bytecode.MAP_ADD, 1, line)
	}
	c.emit(bytecode.CALL_FUNCTION_EX, 1, line)
}
