package parser

import (
	"strconv"
	"strings"

	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/token"
)

// Thin forwarding helpers so parser.go's productions read as plain
// `mkWhatever(line, ...)` calls instead of `ast.NewWhatever(...)` sprinkled
// everywhere; all they do is call the exported ast constructors.

func mkPass(line int) ast.Stmt     { return ast.NewPass(line) }
func mkBreak(line int) ast.Stmt    { return ast.NewBreak(line) }
func mkContinue(line int) ast.Stmt { return ast.NewContinue(line) }
func mkReturn(line int, v ast.Expr) ast.Stmt { return ast.NewReturn(line, v) }
func mkDelete(line int, targets []ast.Expr) ast.Stmt { return ast.NewDelete(line, targets) }
func mkGlobal(line int, names []string) ast.Stmt      { return ast.NewGlobal(line, names) }
func mkNonlocal(line int, names []string) ast.Stmt     { return ast.NewNonlocal(line, names) }
func mkAssert(line int, test, msg ast.Expr) ast.Stmt { return ast.NewAssert(line, test, msg) }
func mkRaise(line int, exc, cause ast.Expr) ast.Stmt { return ast.NewRaise(line, exc, cause) }

func mkExprStmt(line int, v ast.Expr) ast.Stmt        { return ast.NewExprStmt(line, v) }
func mkAssign(line int, t []ast.Expr, v ast.Expr) ast.Stmt { return ast.NewAssign(line, t, v) }
func mkAugAssign(line int, t ast.Expr, op string, v ast.Expr) ast.Stmt {
	return ast.NewAugAssign(line, t, op, v)
}
func mkAnnAssign(line int, t, ann, v ast.Expr) ast.Stmt { return ast.NewAnnAssign(line, t, ann, v) }
func mkIf(line int, test ast.Expr, body, orelse []ast.Stmt) ast.Stmt {
	return ast.NewIf(line, test, body, orelse)
}
func mkWhile(line int, test ast.Expr, body, orelse []ast.Stmt) ast.Stmt {
	return ast.NewWhile(line, test, body, orelse)
}
func mkFor(line int, target, iter ast.Expr, body, orelse []ast.Stmt) ast.Stmt {
	return ast.NewFor(line, target, iter, body, orelse)
}
func mkExceptHandler(line int, typ ast.Expr, name string, body []ast.Stmt) *ast.ExceptHandler {
	return ast.NewExceptHandler(line, typ, name, body)
}
func mkTry(line int, body []ast.Stmt, handlers []*ast.ExceptHandler, orelse, finally []ast.Stmt) ast.Stmt {
	return ast.NewTry(line, body, handlers, orelse, finally)
}
func mkWith(line int, items []ast.WithItem, body []ast.Stmt) ast.Stmt {
	return ast.NewWith(line, items, body)
}
func mkFunctionDef(line int, name string, params ast.Params, body []ast.Stmt, decs []ast.Decorator) ast.Stmt {
	return ast.NewFunctionDef(line, name, params, body, decs)
}
func mkClassDef(line int, name string, bases []ast.Expr, body []ast.Stmt, decs []ast.Decorator) ast.Stmt {
	return ast.NewClassDef(line, name, bases, body, decs)
}
func mkImport(line int, names []ast.ImportAlias) ast.Stmt { return ast.NewImport(line, names) }
func mkImportFrom(line int, module string, names []ast.ImportAlias, level int) ast.Stmt {
	return ast.NewImportFrom(line, module, names, level)
}

func mkName(line int, id string) ast.Expr          { return ast.NewName(line, id) }
func mkBoolLit(line int, v bool) ast.Expr          { return ast.NewBoolLit(line, v) }
func mkNoneLit(line int) ast.Expr                  { return ast.NewNoneLit(line) }
func mkStarred(line int, v ast.Expr) ast.Expr      { return ast.NewStarred(line, v) }
func mkTuple(line int, elts []ast.Expr) ast.Expr   { return ast.NewTuple(line, elts) }
func mkList(line int, elts []ast.Expr) ast.Expr    { return ast.NewList(line, elts) }
func mkSetLit(line int, elts []ast.Expr) ast.Expr  { return ast.NewSetLit(line, elts) }
func mkDict(line int, entries []ast.DictEntry) ast.Expr { return ast.NewDictLit(line, entries) }
func mkListComp(line int, elt ast.Expr, gens []ast.Comprehension) ast.Expr {
	return ast.NewListComp(line, elt, gens)
}
func mkSetComp(line int, elt ast.Expr, gens []ast.Comprehension) ast.Expr {
	return ast.NewSetComp(line, elt, gens)
}
func mkDictComp(line int, key, value ast.Expr, gens []ast.Comprehension) ast.Expr {
	return ast.NewDictComp(line, key, value, gens)
}
func mkGeneratorExp(line int, elt ast.Expr, gens []ast.Comprehension) ast.Expr {
	return ast.NewGeneratorExp(line, elt, gens)
}
func mkAttribute(line int, value ast.Expr, attr string) ast.Expr {
	return ast.NewAttribute(line, value, attr)
}
func mkSubscript(line int, value, index ast.Expr) ast.Expr { return ast.NewSubscript(line, value, index) }
func mkSlice(line int, lower, upper, step ast.Expr) ast.Expr {
	return ast.NewSlice(line, lower, upper, step)
}
func mkCall(line int, fn ast.Expr, args []ast.Expr, kws []ast.Keyword) ast.Expr {
	return ast.NewCall(line, fn, args, kws)
}
func mkUnaryOp(line int, op string, operand ast.Expr) ast.Expr {
	return ast.NewUnaryOp(line, op, operand)
}
func mkBinOp(line int, op string, left, right ast.Expr) ast.Expr {
	return ast.NewBinOp(line, op, left, right)
}
func mkBoolOp(line int, op string, values []ast.Expr) ast.Expr { return ast.NewBoolOp(line, op, values) }
func mkCompare(line int, left ast.Expr, ops []string, comparators []ast.Expr) ast.Expr {
	return ast.NewCompare(line, left, ops, comparators)
}
func mkIfExp(line int, test, body, orelse ast.Expr) ast.Expr {
	return ast.NewIfExp(line, test, body, orelse)
}
func mkLambda(line int, params ast.Params, body ast.Expr) ast.Expr {
	return ast.NewLambda(line, params, body)
}
func mkYield(line int, value ast.Expr) ast.Expr     { return ast.NewYield(line, value) }
func mkYieldFrom(line int, value ast.Expr) ast.Expr { return ast.NewYieldFrom(line, value) }
func mkStringLit(line int, value string, bytesLit bool) ast.Expr {
	return ast.NewStringLit(line, value, bytesLit)
}

func mkNumber(t token.Token) ast.Expr {
	if t.Kind == token.FLOAT {
		f, _ := strconv.ParseFloat(t.Value, 64)
		return ast.NewNumberFloat(t.Pos.Line, f)
	}
	n, err := strconv.ParseInt(t.Value, 10, 64)
	if err != nil {
		f, _ := strconv.ParseFloat(t.Value, 64)
		return ast.NewNumberFloat(t.Pos.Line, f)
	}
	return ast.NewNumberInt(t.Pos.Line, n)
}

// mkFString parses the minimal f-string form of spec.md §4.2/§4.4: a
// sequence of literal chunks and `{expr}` substitutions, each substitution
// recursively parsed as a full expression via a nested Parser.
func mkFString(line int, parts []token.Token) ast.Expr {
	var out []ast.FStringPart
	for _, t := range parts {
		if !t.String.FString {
			out = append(out, ast.FStringPart{Literal: t.Value})
			continue
		}
		out = append(out, splitFStringParts(t.Value)...)
	}
	return ast.NewFStringLit(line, out)
}

func splitFStringParts(s string) []ast.FStringPart {
	var out []ast.FStringPart
	var lit strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '{' && i+1 < len(s) && s[i+1] == '{' {
			lit.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < len(s) && s[i+1] == '}' {
			lit.WriteByte('}')
			i += 2
			continue
		}
		if c == '{' {
			if lit.Len() > 0 {
				out = append(out, ast.FStringPart{Literal: lit.String()})
				lit.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				if s[j] == '{' {
					depth++
				} else if s[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := s[i+1 : j]
			sub := New(exprSrc)
			expr := sub.parseExpr()
			out = append(out, ast.FStringPart{Value: expr})
			i = j + 1
			continue
		}
		lit.WriteByte(c)
		i++
	}
	if lit.Len() > 0 {
		out = append(out, ast.FStringPart{Literal: lit.String()})
	}
	return out
}
