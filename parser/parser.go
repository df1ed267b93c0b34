// Package parser implements the recursive-descent parser of spec.md §4.3:
// tokens to AST. Modeled structurally on go/parser's recursive-descent
// shape (golang-china-golangdoc.translations/src/go/parser in the
// retrieval pack) — one method per grammar production, a lookahead token
// held in the parser, panic/recover used internally to unwind out of deeply
// nested productions on the first syntax error — adapted throughout to
// Python's grammar (indentation-delimited blocks instead of braces,
// operator-precedence expression climbing for the much larger Python
// operator set).
package parser

import (
	"fmt"

	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/token"
)

// SyntaxError is returned on a parse failure, carrying the position and
// source line the spec requires (spec.md §4.3 "on syntax error, the parser
// produces a SyntaxError exception object carrying lineno, offset, and the
// offending source text").
type SyntaxError struct {
	Msg  string
	Pos  token.Position
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s (line %d)", e.Msg, e.Pos.Line)
}

type parseAbort struct{ err *SyntaxError }

// Parser holds lexer lookahead and produces a *ast.Module.
type Parser struct {
	lex       *token.Lexer
	tok       token.Token
	source    string
	loopDepth int
}

// New creates a Parser over Python source text.
func New(src string) *Parser {
	p := &Parser{lex: token.New(src), source: src}
	p.next()
	return p
}

// ParseModule parses a complete module, returning a partial AST (possibly
// nil) plus the first syntax error encountered, matching spec.md §4.3's
// "returns a partial/None AST" error-recovery contract.
func ParseModule(src string) (mod *ast.Module, err *SyntaxError) {
	p := New(src)
	defer func() {
		if r := recover(); r != nil {
			if ab, ok := r.(parseAbort); ok {
				err = ab.err
				return
			}
			panic(r)
		}
	}()
	mod = p.parseModule()
	return mod, nil
}

func (p *Parser) next() {
	t, lexErr := p.lex.Next()
	if lexErr != nil {
		if se, ok := lexErr.(*token.SyntaxError); ok {
			p.abort(se.Msg, se.Pos)
		}
		p.abort(lexErr.Error(), token.Position{})
	}
	p.tok = t
}

func (p *Parser) abort(msg string, pos token.Position) {
	line := pos.Line
	panic(parseAbort{&SyntaxError{Msg: msg, Pos: pos, Text: lineText(p.source, line)}})
}

func lineText(src string, line int) string {
	cur := 1
	start := 0
	for i := 0; i < len(src); i++ {
		if cur == line {
			end := i
			for end < len(src) && src[end] != '\n' {
				end++
			}
			return src[start:end]
		}
		if src[i] == '\n' {
			cur++
			start = i + 1
		}
	}
	return ""
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.abort(fmt.Sprintf(format, args...), p.tok.Pos)
}

func (p *Parser) atKeyword(kw string) bool {
	return p.tok.Kind == token.KEYWORD && p.tok.Value == kw
}

func (p *Parser) atOp(op string) bool {
	return (p.tok.Kind == token.OP || p.tok.Kind == token.PUNC) && p.tok.Value == op
}

func (p *Parser) expectOp(op string) token.Position {
	if !p.atOp(op) {
		p.errorf("expected %q, got %q", op, p.tok.Value)
	}
	pos := p.tok.Pos
	p.next()
	return pos
}

func (p *Parser) expectKeyword(kw string) token.Position {
	if !p.atKeyword(kw) {
		p.errorf("expected keyword %q", kw)
	}
	pos := p.tok.Pos
	p.next()
	return pos
}

func (p *Parser) expectIdent() string {
	if p.tok.Kind != token.IDENT {
		p.errorf("expected identifier, got %q", p.tok.Value)
	}
	name := p.tok.Value
	p.next()
	return name
}

func (p *Parser) skipNewlines() {
	for p.tok.Kind == token.NEWLINE {
		p.next()
	}
}

// ---- Module / block structure ----

func (p *Parser) parseModule() *ast.Module {
	mod := &ast.Module{}
	p.skipNewlines()
	for p.tok.Kind != token.EOF {
		mod.Body = append(mod.Body, p.parseStatement()...)
		p.skipNewlines()
	}
	return mod
}

// parseBlock parses an indented suite: `:` NEWLINE INDENT stmt+ DEDENT, or a
// simple-statement list on the same line as the colon.
func (p *Parser) parseBlock() []ast.Stmt {
	p.expectOp(":")
	if p.tok.Kind != token.NEWLINE {
		return p.parseSimpleStmtLine()
	}
	p.next() // NEWLINE
	p.skipNewlines()
	if p.tok.Kind != token.INDENT {
		p.errorf("expected an indented block")
	}
	p.next()
	var body []ast.Stmt
	for p.tok.Kind != token.DEDENT && p.tok.Kind != token.EOF {
		body = append(body, p.parseStatement()...)
		p.skipNewlines()
	}
	if p.tok.Kind == token.DEDENT {
		p.next()
	}
	return body
}

func (p *Parser) parseSimpleStmtLine() []ast.Stmt {
	var out []ast.Stmt
	out = append(out, p.parseSimpleStmt())
	for p.atOp(";") {
		p.next()
		if p.tok.Kind == token.NEWLINE || p.tok.Kind == token.EOF {
			break
		}
		out = append(out, p.parseSimpleStmt())
	}
	if p.tok.Kind == token.NEWLINE {
		p.next()
	}
	return out
}

// ---- Statements ----

func (p *Parser) parseStatement() []ast.Stmt {
	switch {
	case p.atKeyword("if"):
		return []ast.Stmt{p.parseIf()}
	case p.atKeyword("while"):
		return []ast.Stmt{p.parseWhile()}
	case p.atKeyword("for"):
		return []ast.Stmt{p.parseFor()}
	case p.atKeyword("try"):
		return []ast.Stmt{p.parseTry()}
	case p.atKeyword("with"):
		return []ast.Stmt{p.parseWith()}
	case p.atKeyword("def"):
		return []ast.Stmt{p.parseFunctionDef(nil)}
	case p.atKeyword("class"):
		return []ast.Stmt{p.parseClassDef(nil)}
	case p.atOp("@"):
		return []ast.Stmt{p.parseDecorated()}
	default:
		return p.parseSimpleStmtLine()
	}
}

func (p *Parser) parseSimpleStmt() ast.Stmt {
	line := p.tok.Pos.Line
	switch {
	case p.atKeyword("pass"):
		p.next()
		return mkPass(line)
	case p.atKeyword("break"):
		p.next()
		return mkBreak(line)
	case p.atKeyword("continue"):
		p.next()
		return mkContinue(line)
	case p.atKeyword("return"):
		p.next()
		var val ast.Expr
		if !p.atStmtEnd() {
			val = p.parseExprList()
		}
		return mkReturn(line, val)
	case p.atKeyword("del"):
		p.next()
		targets := []ast.Expr{p.parseExpr()}
		for p.atOp(",") {
			p.next()
			targets = append(targets, p.parseExpr())
		}
		return mkDelete(line, targets)
	case p.atKeyword("global"):
		p.next()
		return mkGlobal(line, p.parseNameList())
	case p.atKeyword("nonlocal"):
		p.next()
		return mkNonlocal(line, p.parseNameList())
	case p.atKeyword("assert"):
		p.next()
		test := p.parseExpr()
		var msg ast.Expr
		if p.atOp(",") {
			p.next()
			msg = p.parseExpr()
		}
		return mkAssert(line, test, msg)
	case p.atKeyword("raise"):
		p.next()
		var exc, cause ast.Expr
		if !p.atStmtEnd() {
			exc = p.parseExpr()
			if p.atKeyword("from") {
				p.next()
				cause = p.parseExpr()
			}
		}
		return mkRaise(line, exc, cause)
	case p.atKeyword("import"):
		return p.parseImport()[0]
	case p.atKeyword("from"):
		return p.parseImportFrom()[0]
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) atStmtEnd() bool {
	return p.tok.Kind == token.NEWLINE || p.tok.Kind == token.EOF || p.atOp(";")
}

func (p *Parser) parseNameList() []string {
	names := []string{p.expectIdent()}
	for p.atOp(",") {
		p.next()
		names = append(names, p.expectIdent())
	}
	return names
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	line := p.tok.Pos.Line
	first := p.parseExprList()
	if p.atOp(":") {
		p.next()
		ann := p.parseExpr()
		var val ast.Expr
		if p.atOp("=") {
			p.next()
			val = p.parseExprList()
		}
		return mkAnnAssign(line, first, ann, val)
	}
	if aug, ok := p.augOp(); ok {
		p.next()
		val := p.parseExprList()
		return mkAugAssign(line, first, aug, val)
	}
	if p.atOp("=") {
		targets := []ast.Expr{first}
		var value ast.Expr
		for p.atOp("=") {
			p.next()
			value = p.parseExprList()
			if p.atOp("=") {
				targets = append(targets, value)
			}
		}
		return mkAssign(line, targets, value)
	}
	return mkExprStmt(line, first)
}

func (p *Parser) augOp() (string, bool) {
	if p.tok.Kind != token.OP {
		return "", false
	}
	switch p.tok.Value {
	case "+=", "-=", "*=", "/=", "//=", "%=", "**=", "&=", "|=", "^=", "<<=", ">>=":
		return p.tok.Value, true
	}
	return "", false
}

func (p *Parser) parseImport() []ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	var names []ast.ImportAlias
	names = append(names, p.parseImportAlias())
	for p.atOp(",") {
		p.next()
		names = append(names, p.parseImportAlias())
	}
	return []ast.Stmt{mkImport(line, names)}
}

func (p *Parser) parseImportAlias() ast.ImportAlias {
	name := p.expectIdent()
	for p.atOp(".") {
		p.next()
		name += "." + p.expectIdent()
	}
	as := ""
	if p.atKeyword("as") {
		p.next()
		as = p.expectIdent()
	}
	return ast.ImportAlias{Name: name, AsName: as}
}

func (p *Parser) parseImportFrom() []ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	level := 0
	for p.atOp(".") {
		level++
		p.next()
	}
	module := ""
	if p.tok.Kind == token.IDENT {
		module = p.expectIdent()
		for p.atOp(".") {
			p.next()
			module += "." + p.expectIdent()
		}
	}
	p.expectKeyword("import")
	var names []ast.ImportAlias
	if p.atOp("*") {
		p.next()
		names = []ast.ImportAlias{{Name: "*"}}
		return []ast.Stmt{mkImportFrom(line, module, names, level)}
	}
	paren := p.atOp("(")
	if paren {
		p.next()
	}
	names = append(names, p.parseFromAlias())
	for p.atOp(",") {
		p.next()
		if paren && p.atOp(")") {
			break
		}
		names = append(names, p.parseFromAlias())
	}
	if paren {
		p.expectOp(")")
	}
	return []ast.Stmt{mkImportFrom(line, module, names, level)}
}

func (p *Parser) parseFromAlias() ast.ImportAlias {
	name := p.expectIdent()
	as := ""
	if p.atKeyword("as") {
		p.next()
		as = p.expectIdent()
	}
	return ast.ImportAlias{Name: name, AsName: as}
}

func (p *Parser) parseIf() ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	test := p.parseExpr()
	body := p.parseBlock()
	var orelse []ast.Stmt
	if p.atKeyword("elif") {
		orelse = []ast.Stmt{p.parseIf()}
	} else if p.atKeyword("else") {
		p.next()
		orelse = p.parseBlock()
	}
	return mkIf(line, test, body, orelse)
}

func (p *Parser) parseWhile() ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	test := p.parseExpr()
	p.loopDepth++
	body := p.parseBlock()
	p.loopDepth--
	var orelse []ast.Stmt
	if p.atKeyword("else") {
		p.next()
		orelse = p.parseBlock()
	}
	return mkWhile(line, test, body, orelse)
}

func (p *Parser) parseFor() ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	target := p.parseTargetList()
	p.expectKeyword("in")
	iter := p.parseExprList()
	p.loopDepth++
	body := p.parseBlock()
	p.loopDepth--
	var orelse []ast.Stmt
	if p.atKeyword("else") {
		p.next()
		orelse = p.parseBlock()
	}
	return mkFor(line, target, iter, body, orelse)
}

func (p *Parser) parseTargetList() ast.Expr {
	first := p.parseTarget()
	if !p.atOp(",") {
		return first
	}
	elts := []ast.Expr{first}
	for p.atOp(",") {
		p.next()
		if p.atKeyword("in") || p.atOp(":") {
			break
		}
		elts = append(elts, p.parseTarget())
	}
	return mkTuple(first.Line(), elts)
}

func (p *Parser) parseTarget() ast.Expr {
	if p.atOp("*") {
		line := p.tok.Pos.Line
		p.next()
		return mkStarred(line, p.parseOr())
	}
	return p.parseOr()
}

func (p *Parser) parseTry() ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	body := p.parseBlock()
	var handlers []*ast.ExceptHandler
	for p.atKeyword("except") {
		handlers = append(handlers, p.parseExceptHandler())
	}
	var orelse, finally []ast.Stmt
	if p.atKeyword("else") {
		p.next()
		orelse = p.parseBlock()
	}
	if p.atKeyword("finally") {
		p.next()
		finally = p.parseBlock()
	}
	return mkTry(line, body, handlers, orelse, finally)
}

func (p *Parser) parseExceptHandler() *ast.ExceptHandler {
	line := p.tok.Pos.Line
	p.next()
	var typ ast.Expr
	name := ""
	if !p.atOp(":") {
		typ = p.parseExpr()
		if p.atKeyword("as") {
			p.next()
			name = p.expectIdent()
		}
	}
	body := p.parseBlock()
	return mkExceptHandler(line, typ, name, body)
}

func (p *Parser) parseWith() ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	var items []ast.WithItem
	items = append(items, p.parseWithItem())
	for p.atOp(",") {
		p.next()
		items = append(items, p.parseWithItem())
	}
	body := p.parseBlock()
	return mkWith(line, items, body)
}

func (p *Parser) parseWithItem() ast.WithItem {
	ctx := p.parseExpr()
	var v ast.Expr
	if p.atKeyword("as") {
		p.next()
		v = p.parseTarget()
	}
	return ast.WithItem{ContextExpr: ctx, OptionalVar: v}
}

func (p *Parser) parseDecorated() ast.Stmt {
	var decs []ast.Decorator
	for p.atOp("@") {
		p.next()
		decs = append(decs, ast.Decorator{Value: p.parseExpr()})
		if p.tok.Kind == token.NEWLINE {
			p.next()
		}
	}
	if p.atKeyword("def") {
		return p.parseFunctionDef(decs)
	}
	return p.parseClassDef(decs)
}

func (p *Parser) parseFunctionDef(decs []ast.Decorator) ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	name := p.expectIdent()
	params := p.parseParams()
	if p.atOp("->") {
		p.next()
		p.parseExpr() // return annotation, accepted and discarded
	}
	body := p.parseBlock()
	return mkFunctionDef(line, name, params, body, decs)
}

func (p *Parser) parseParams() ast.Params {
	p.expectOp("(")
	var params ast.Params
	for !p.atOp(")") {
		if p.atOp("*") {
			p.next()
			if p.tok.Kind == token.IDENT {
				params.VarArg = p.expectIdent()
			}
		} else if p.atOp("**") {
			p.next()
			params.KWArg = p.expectIdent()
		} else {
			name := p.expectIdent()
			if p.atOp(":") {
				p.next()
				p.parseExpr() // type annotation, discarded
			}
			var def ast.Expr
			if p.atOp("=") {
				p.next()
				def = p.parseExpr()
			}
			params.Args = append(params.Args, ast.Arg{Name: name, Default: def})
		}
		if p.atOp(",") {
			p.next()
		} else {
			break
		}
	}
	p.expectOp(")")
	return params
}

func (p *Parser) parseClassDef(decs []ast.Decorator) ast.Stmt {
	line := p.tok.Pos.Line
	p.next()
	name := p.expectIdent()
	var bases []ast.Expr
	if p.atOp("(") {
		p.next()
		for !p.atOp(")") {
			bases = append(bases, p.parseExpr())
			if p.atOp(",") {
				p.next()
			} else {
				break
			}
		}
		p.expectOp(")")
	}
	body := p.parseBlock()
	return mkClassDef(line, name, bases, body, decs)
}

// ---- Expressions (precedence climbing, lowest to highest) ----

func (p *Parser) parseExprList() ast.Expr {
	first := p.parseExprOrStar()
	if !p.atOp(",") {
		return first
	}
	elts := []ast.Expr{first}
	for p.atOp(",") {
		p.next()
		if p.atStmtEnd() || p.atOp("=") {
			break
		}
		elts = append(elts, p.parseExprOrStar())
	}
	return mkTuple(first.Line(), elts)
}

func (p *Parser) parseExprOrStar() ast.Expr {
	if p.atOp("*") {
		line := p.tok.Pos.Line
		p.next()
		return mkStarred(line, p.parseExpr())
	}
	return p.parseExpr()
}

// parseExpr parses one full expression, including lambda/ternary/yield.
func (p *Parser) parseExpr() ast.Expr {
	if p.atKeyword("lambda") {
		return p.parseLambda()
	}
	if p.atKeyword("yield") {
		return p.parseYield()
	}
	e := p.parseOr()
	if p.atKeyword("if") {
		line := e.Line()
		p.next()
		test := p.parseOr()
		p.expectKeyword("else")
		orelse := p.parseExpr()
		return mkIfExp(line, test, e, orelse)
	}
	return e
}

func (p *Parser) parseYield() ast.Expr {
	line := p.tok.Pos.Line
	p.next()
	if p.atKeyword("from") {
		p.next()
		return mkYieldFrom(line, p.parseExpr())
	}
	if p.atStmtEnd() || p.atOp(")") {
		return mkYield(line, nil)
	}
	return mkYield(line, p.parseExprList())
}

func (p *Parser) parseLambda() ast.Expr {
	line := p.tok.Pos.Line
	p.next()
	var params ast.Params
	for !p.atOp(":") {
		if p.atOp("*") {
			p.next()
			params.VarArg = p.expectIdent()
		} else if p.atOp("**") {
			p.next()
			params.KWArg = p.expectIdent()
		} else {
			name := p.expectIdent()
			var def ast.Expr
			if p.atOp("=") {
				p.next()
				def = p.parseExpr()
			}
			params.Args = append(params.Args, ast.Arg{Name: name, Default: def})
		}
		if p.atOp(",") {
			p.next()
		} else {
			break
		}
	}
	p.expectOp(":")
	body := p.parseExpr()
	return mkLambda(line, params, body)
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if p.atKeyword("or") {
		line := left.Line()
		values := []ast.Expr{left}
		for p.atKeyword("or") {
			p.next()
			values = append(values, p.parseAnd())
		}
		return mkBoolOp(line, "or", values)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	if p.atKeyword("and") {
		line := left.Line()
		values := []ast.Expr{left}
		for p.atKeyword("and") {
			p.next()
			values = append(values, p.parseNot())
		}
		return mkBoolOp(line, "and", values)
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.atKeyword("not") {
		line := p.tok.Pos.Line
		p.next()
		return mkUnaryOp(line, "not", p.parseNot())
	}
	return p.parseComparison()
}

var compareOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseBitOr()
	var ops []string
	var comparators []ast.Expr
	for {
		if p.tok.Kind == token.OP && compareOps[p.tok.Value] {
			ops = append(ops, p.tok.Value)
			p.next()
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		if p.atKeyword("in") {
			ops = append(ops, "in")
			p.next()
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		if p.atKeyword("not") {
			// lookahead for "not in"
			save := *p
			p.next()
			if p.atKeyword("in") {
				p.next()
				ops = append(ops, "not in")
				comparators = append(comparators, p.parseBitOr())
				continue
			}
			*p = save
		}
		if p.atKeyword("is") {
			p.next()
			if p.atKeyword("not") {
				p.next()
				ops = append(ops, "is not")
			} else {
				ops = append(ops, "is")
			}
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		break
	}
	if len(ops) == 0 {
		return left
	}
	return mkCompare(left.Line(), left, ops, comparators)
}

func (p *Parser) parseBitOr() ast.Expr {
	left := p.parseBitXor()
	for p.atOp("|") {
		p.next()
		left = mkBinOp(left.Line(), "|", left, p.parseBitXor())
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expr {
	left := p.parseBitAnd()
	for p.atOp("^") {
		p.next()
		left = mkBinOp(left.Line(), "^", left, p.parseBitAnd())
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	left := p.parseShift()
	for p.atOp("&") {
		p.next()
		left = mkBinOp(left.Line(), "&", left, p.parseShift())
	}
	return left
}

func (p *Parser) parseShift() ast.Expr {
	left := p.parseArith()
	for p.atOp("<<") || p.atOp(">>") {
		op := p.tok.Value
		p.next()
		left = mkBinOp(left.Line(), op, left, p.parseArith())
	}
	return left
}

func (p *Parser) parseArith() ast.Expr {
	left := p.parseTerm()
	for p.atOp("+") || p.atOp("-") {
		op := p.tok.Value
		p.next()
		left = mkBinOp(left.Line(), op, left, p.parseTerm())
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.atOp("*") || p.atOp("/") || p.atOp("//") || p.atOp("%") || p.atOp("@") {
		op := p.tok.Value
		p.next()
		left = mkBinOp(left.Line(), op, left, p.parseFactor())
	}
	return left
}

func (p *Parser) parseFactor() ast.Expr {
	if p.atOp("+") || p.atOp("-") || p.atOp("~") {
		op := p.tok.Value
		line := p.tok.Pos.Line
		p.next()
		return mkUnaryOp(line, op, p.parseFactor())
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.Expr {
	left := p.parseUnaryPostfix()
	if p.atOp("**") {
		p.next()
		right := p.parseFactor()
		return mkBinOp(left.Line(), "**", left, right)
	}
	return left
}

func (p *Parser) parseUnaryPostfix() ast.Expr {
	e := p.parseAtom()
	for {
		switch {
		case p.atOp("."):
			p.next()
			name := p.expectIdent()
			e = mkAttribute(e.Line(), e, name)
		case p.atOp("("):
			e = p.parseCall(e)
		case p.atOp("["):
			e = p.parseSubscript(e)
		default:
			return e
		}
	}
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	p.next() // (
	var args []ast.Expr
	var kws []ast.Keyword
	for !p.atOp(")") {
		if p.atOp("**") {
			p.next()
			kws = append(kws, ast.Keyword{Name: "", Value: p.parseExpr()})
		} else if p.atOp("*") {
			p.next()
			args = append(args, mkStarred(p.tok.Pos.Line, p.parseExpr()))
		} else if p.tok.Kind == token.IDENT && p.peekIsAssign() {
			name := p.expectIdent()
			p.expectOp("=")
			kws = append(kws, ast.Keyword{Name: name, Value: p.parseExpr()})
		} else {
			args = append(args, p.parseExpr())
		}
		if p.atOp(",") {
			p.next()
		} else {
			break
		}
	}
	p.expectOp(")")
	return mkCall(fn.Line(), fn, args, kws)
}

// peekIsAssign reports whether the token after the current IDENT is `=`
// (and not `==`), without consuming input, to disambiguate `f(x=1)` keyword
// args from `f(x==1)` / `f(x)`.
func (p *Parser) peekIsAssign() bool {
	save := *p
	p.next()
	isAssign := p.atOp("=")
	*p = save
	return isAssign
}

func (p *Parser) parseSubscript(val ast.Expr) ast.Expr {
	p.next() // [
	idx := p.parseSliceOrExpr()
	p.expectOp("]")
	return mkSubscript(val.Line(), val, idx)
}

func (p *Parser) parseSliceOrExpr() ast.Expr {
	var lower, upper, step ast.Expr
	isSlice := false
	if !p.atOp(":") {
		lower = p.parseExpr()
	}
	if p.atOp(":") {
		isSlice = true
		p.next()
		if !p.atOp(":") && !p.atOp("]") {
			upper = p.parseExpr()
		}
		if p.atOp(":") {
			p.next()
			if !p.atOp("]") {
				step = p.parseExpr()
			}
		}
	}
	if !isSlice {
		return lower
	}
	return mkSlice(p.tok.Pos.Line, lower, upper, step)
}

func (p *Parser) parseAtom() ast.Expr {
	line := p.tok.Pos.Line
	switch {
	case p.tok.Kind == token.INT || p.tok.Kind == token.FLOAT:
		return p.parseNumber()
	case p.tok.Kind == token.STRING:
		return p.parseStringChain()
	case p.atKeyword("True"):
		p.next()
		return mkBoolLit(line, true)
	case p.atKeyword("False"):
		p.next()
		return mkBoolLit(line, false)
	case p.atKeyword("None"):
		p.next()
		return mkNoneLit(line)
	case p.tok.Kind == token.IDENT:
		name := p.expectIdent()
		return mkName(line, name)
	case p.atOp("("):
		return p.parseParenForm()
	case p.atOp("["):
		return p.parseListForm()
	case p.atOp("{"):
		return p.parseBraceForm()
	case p.atOp("..."):
		p.next()
		return mkNoneLit(line)
	}
	p.errorf("unexpected token %q", p.tok.Value)
	return nil
}

func (p *Parser) parseNumber() ast.Expr {
	t := p.tok
	p.next()
	return mkNumber(t)
}

func (p *Parser) parseStringChain() ast.Expr {
	line := p.tok.Pos.Line
	var parts []token.Token
	anyF := false
	for p.tok.Kind == token.STRING {
		if p.tok.String.FString {
			anyF = true
		}
		parts = append(parts, p.tok)
		p.next()
	}
	if anyF {
		return mkFString(line, parts)
	}
	full := ""
	bytesLit := false
	for _, t := range parts {
		full += t.Value
		bytesLit = bytesLit || t.String.Bytes
	}
	return mkStringLit(line, full, bytesLit)
}

func (p *Parser) parseParenForm() ast.Expr {
	line := p.tok.Pos.Line
	p.next() // (
	if p.atOp(")") {
		p.next()
		return mkTuple(line, nil)
	}
	first := p.parseExprOrStar()
	if comp, ok := p.tryComprehensionTail(first); ok {
		p.expectOp(")")
		return mkGeneratorExp(line, first, comp)
	}
	if p.atOp(",") {
		elts := []ast.Expr{first}
		for p.atOp(",") {
			p.next()
			if p.atOp(")") {
				break
			}
			elts = append(elts, p.parseExprOrStar())
		}
		p.expectOp(")")
		return mkTuple(line, elts)
	}
	p.expectOp(")")
	return first
}

func (p *Parser) parseListForm() ast.Expr {
	line := p.tok.Pos.Line
	p.next() // [
	if p.atOp("]") {
		p.next()
		return mkList(line, nil)
	}
	first := p.parseExprOrStar()
	if comp, ok := p.tryComprehensionTail(first); ok {
		p.expectOp("]")
		return mkListComp(line, first, comp)
	}
	elts := []ast.Expr{first}
	for p.atOp(",") {
		p.next()
		if p.atOp("]") {
			break
		}
		elts = append(elts, p.parseExprOrStar())
	}
	p.expectOp("]")
	return mkList(line, elts)
}

func (p *Parser) parseBraceForm() ast.Expr {
	line := p.tok.Pos.Line
	p.next() // {
	if p.atOp("}") {
		p.next()
		return mkDict(line, nil)
	}
	if p.atOp("**") {
		p.next()
		entries := []ast.DictEntry{{Key: nil, Value: p.parseOr()}}
		for p.atOp(",") {
			p.next()
			entries = append(entries, p.parseDictEntry())
		}
		p.expectOp("}")
		return mkDict(line, entries)
	}
	firstKey := p.parseExpr()
	if p.atOp(":") {
		p.next()
		firstVal := p.parseExpr()
		if comp, ok := p.tryComprehensionTail(nil); ok {
			p.expectOp("}")
			return mkDictComp(line, firstKey, firstVal, comp)
		}
		entries := []ast.DictEntry{{Key: firstKey, Value: firstVal}}
		for p.atOp(",") {
			p.next()
			if p.atOp("}") {
				break
			}
			entries = append(entries, p.parseDictEntry())
		}
		p.expectOp("}")
		return mkDict(line, entries)
	}
	// Set literal or set comprehension.
	if comp, ok := p.tryComprehensionTail(firstKey); ok {
		p.expectOp("}")
		return mkSetComp(line, firstKey, comp)
	}
	elts := []ast.Expr{firstKey}
	for p.atOp(",") {
		p.next()
		if p.atOp("}") {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	p.expectOp("}")
	return mkSetLit(line, elts)
}

func (p *Parser) parseDictEntry() ast.DictEntry {
	if p.atOp("**") {
		p.next()
		return ast.DictEntry{Key: nil, Value: p.parseOr()}
	}
	k := p.parseExpr()
	p.expectOp(":")
	v := p.parseExpr()
	return ast.DictEntry{Key: k, Value: v}
}

// tryComprehensionTail consumes `for ... in ... [if ...]` clauses if present
// and reports ok=true; elt is unused by callers that already captured the
// leading element expression.
func (p *Parser) tryComprehensionTail(elt ast.Expr) ([]ast.Comprehension, bool) {
	if !p.atKeyword("for") {
		return nil, false
	}
	var gens []ast.Comprehension
	for p.atKeyword("for") {
		p.next()
		target := p.parseTargetList()
		p.expectKeyword("in")
		iter := p.parseOr()
		var ifs []ast.Expr
		for p.atKeyword("if") {
			p.next()
			ifs = append(ifs, p.parseOr())
		}
		gens = append(gens, ast.Comprehension{Target: target, Iter: iter, Ifs: ifs})
	}
	return gens, true
}
