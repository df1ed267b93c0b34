package ast

// This file provides exported constructors for every node so that callers
// outside the package (the parser) can build nodes without reaching into
// unexported embedded fields.

func NewExprStmt(line int, v Expr) *ExprStmt { return &ExprStmt{stmtBase{base{line}}, v} }
func NewAssign(line int, targets []Expr, value Expr) *Assign {
	return &Assign{stmtBase{base{line}}, targets, value}
}
func NewAugAssign(line int, target Expr, op string, value Expr) *AugAssign {
	return &AugAssign{stmtBase{base{line}}, target, op, value}
}
func NewAnnAssign(line int, target, annotation, value Expr) *AnnAssign {
	return &AnnAssign{stmtBase{base{line}}, target, annotation, value}
}
func NewReturn(line int, value Expr) *Return { return &Return{stmtBase{base{line}}, value} }
func NewPass(line int) *Pass                 { return &Pass{stmtBase{base{line}}} }
func NewBreak(line int) *Break               { return &Break{stmtBase{base{line}}} }
func NewContinue(line int) *Continue         { return &Continue{stmtBase{base{line}}} }
func NewDelete(line int, targets []Expr) *Delete {
	return &Delete{stmtBase{base{line}}, targets}
}
func NewGlobal(line int, names []string) *Global { return &Global{stmtBase{base{line}}, names} }
func NewNonlocal(line int, names []string) *Nonlocal {
	return &Nonlocal{stmtBase{base{line}}, names}
}
func NewAssert(line int, test, msg Expr) *Assert { return &Assert{stmtBase{base{line}}, test, msg} }
func NewRaise(line int, exc, cause Expr) *Raise  { return &Raise{stmtBase{base{line}}, exc, cause} }
func NewIf(line int, test Expr, body, orelse []Stmt) *If {
	return &If{stmtBase{base{line}}, test, body, orelse}
}
func NewWhile(line int, test Expr, body, orelse []Stmt) *While {
	return &While{stmtBase{base{line}}, test, body, orelse}
}
func NewFor(line int, target, iter Expr, body, orelse []Stmt) *For {
	return &For{stmtBase{base{line}}, target, iter, body, orelse}
}
func NewExceptHandler(line int, typ Expr, name string, body []Stmt) *ExceptHandler {
	return &ExceptHandler{base{line}, typ, name, body}
}
func NewTry(line int, body []Stmt, handlers []*ExceptHandler, orelse, finally []Stmt) *Try {
	return &Try{stmtBase{base{line}}, body, handlers, orelse, finally}
}
func NewWith(line int, items []WithItem, body []Stmt) *With {
	return &With{stmtBase{base{line}}, items, body}
}
func NewFunctionDef(line int, name string, params Params, body []Stmt, decs []Decorator) *FunctionDef {
	return &FunctionDef{stmtBase{base{line}}, name, params, body, decs, false}
}
func NewClassDef(line int, name string, bases []Expr, body []Stmt, decs []Decorator) *ClassDef {
	return &ClassDef{stmtBase{base{line}}, name, bases, body, decs}
}
func NewImport(line int, names []ImportAlias) *Import { return &Import{stmtBase{base{line}}, names} }
func NewImportFrom(line int, module string, names []ImportAlias, level int) *ImportFrom {
	return &ImportFrom{stmtBase{base{line}}, module, names, level}
}

func NewNumberInt(line int, v int64) *NumberLit {
	return &NumberLit{exprBase{base{line}}, false, v, 0}
}
func NewNumberFloat(line int, v float64) *NumberLit {
	return &NumberLit{exprBase{base{line}}, true, 0, v}
}
func NewStringLit(line int, value string, bytesLit bool) *StringLit {
	return &StringLit{exprBase{base{line}}, value, bytesLit}
}
func NewFStringLit(line int, parts []FStringPart) *FStringLit {
	return &FStringLit{exprBase{base{line}}, parts}
}
func NewBoolLit(line int, v bool) *BoolLit { return &BoolLit{exprBase{base{line}}, v} }
func NewNoneLit(line int) *NoneLit         { return &NoneLit{exprBase{base{line}}} }
func NewName(line int, id string) *Name    { return &Name{exprBase{base{line}}, id} }
func NewStarred(line int, v Expr) *Starred { return &Starred{exprBase{base{line}}, v} }
func NewTuple(line int, elts []Expr) *Tuple { return &Tuple{exprBase{base{line}}, elts} }
func NewList(line int, elts []Expr) *List   { return &List{exprBase{base{line}}, elts} }
func NewSetLit(line int, elts []Expr) *SetLit { return &SetLit{exprBase{base{line}}, elts} }
func NewDictLit(line int, entries []DictEntry) *DictLit {
	return &DictLit{exprBase{base{line}}, entries}
}
func NewListComp(line int, elt Expr, gens []Comprehension) *ListComp {
	return &ListComp{exprBase{base{line}}, elt, gens}
}
func NewSetComp(line int, elt Expr, gens []Comprehension) *SetComp {
	return &SetComp{exprBase{base{line}}, elt, gens}
}
func NewDictComp(line int, key, value Expr, gens []Comprehension) *DictComp {
	return &DictComp{exprBase{base{line}}, key, value, gens}
}
func NewGeneratorExp(line int, elt Expr, gens []Comprehension) *GeneratorExp {
	return &GeneratorExp{exprBase{base{line}}, elt, gens}
}
func NewAttribute(line int, value Expr, attr string) *Attribute {
	return &Attribute{exprBase{base{line}}, value, attr}
}
func NewSubscript(line int, value, index Expr) *Subscript {
	return &Subscript{exprBase{base{line}}, value, index}
}
func NewSlice(line int, lower, upper, step Expr) *Slice {
	return &Slice{exprBase{base{line}}, lower, upper, step}
}
func NewCall(line int, fn Expr, args []Expr, kws []Keyword) *Call {
	return &Call{exprBase{base{line}}, fn, args, kws}
}
func NewUnaryOp(line int, op string, operand Expr) *UnaryOp {
	return &UnaryOp{exprBase{base{line}}, op, operand}
}
func NewBinOp(line int, op string, left, right Expr) *BinOp {
	return &BinOp{exprBase{base{line}}, op, left, right}
}
func NewBoolOp(line int, op string, values []Expr) *BoolOp {
	return &BoolOp{exprBase{base{line}}, op, values}
}
func NewCompare(line int, left Expr, ops []string, comparators []Expr) *Compare {
	return &Compare{exprBase{base{line}}, left, ops, comparators}
}
func NewIfExp(line int, test, body, orelse Expr) *IfExp {
	return &IfExp{exprBase{base{line}}, test, body, orelse}
}
func NewLambda(line int, params Params, body Expr) *Lambda {
	return &Lambda{exprBase{base{line}}, params, body}
}
func NewYield(line int, value Expr) *Yield         { return &Yield{exprBase{base{line}}, value} }
func NewYieldFrom(line int, value Expr) *YieldFrom { return &YieldFrom{exprBase{base{line}}, value} }
