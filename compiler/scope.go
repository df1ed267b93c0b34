// Package compiler implements spec.md §4.4: the AST-to-bytecode
// compilation pipeline. This file is the scoping pre-pass ("a pre-pass
// determines, for each name in a function body, whether it is local, a
// free variable, global, or builtin"), built as a tree of *scope values
// mirroring the AST's function/class/comprehension nesting, resolved
// bottom-up the way a small compiler's symbol table normally is.
package compiler

import "github.com/gamarino/protoPython-sub000/ast"

type scopeKind int

const (
	scopeModule scopeKind = iota
	scopeClass
	scopeFunction
)

// scope is the compile-time symbol table for one lexical namespace: a
// module, a class body, or a function/lambda/comprehension body. Children
// are keyed by the AST node that introduces them so codegen, which walks
// the same AST a second time, can fetch the matching resolved scope
// without rebuilding it.
type scope struct {
	kind     scopeKind
	parent   *scope
	children map[ast.Node]*scope

	bound      map[string]bool
	boundOrder []string
	globals    map[string]bool
	nonlocals  map[string]bool
	uses       map[string]bool

	free      map[string]bool
	freeOrder []string
	cells     map[string]bool
	cellOrder []string
}

func newScope(kind scopeKind, parent *scope) *scope {
	return &scope{
		kind:      kind,
		parent:    parent,
		children:  make(map[ast.Node]*scope),
		bound:     make(map[string]bool),
		globals:   make(map[string]bool),
		nonlocals: make(map[string]bool),
		uses:      make(map[string]bool),
		free:      make(map[string]bool),
		cells:     make(map[string]bool),
	}
}

func (s *scope) bind(name string) {
	if s.globals[name] {
		return
	}
	if !s.bound[name] {
		s.bound[name] = true
		s.boundOrder = append(s.boundOrder, name)
	}
}

func (s *scope) use(name string) { s.uses[name] = true }

// buildModuleScope runs the binding-collection walk over an entire module
// and returns its root scope, with every nested function/class/
// comprehension scope attached under scope.children. Call resolveScopes on
// the result before using it for codegen.
func buildModuleScope(mod *ast.Module) *scope {
	s := newScope(scopeModule, nil)
	collectDeclarations(s, mod.Body)
	walkStmts(s, mod.Body)
	return s
}

// collectDeclarations pre-scans this scope's own statement list (not
// descending into nested function/class bodies, which collect their own)
// for global/nonlocal declarations, since a name's status as global must be
// known before any use() of it elsewhere in the same scope is classified.
func collectDeclarations(s *scope, stmts []ast.Stmt) {
	for _, st := range stmts {
		switch n := st.(type) {
		case *ast.Global:
			for _, nm := range n.Names {
				s.globals[nm] = true
			}
		case *ast.Nonlocal:
			for _, nm := range n.Names {
				s.nonlocals[nm] = true
			}
		case *ast.If:
			collectDeclarations(s, n.Body)
			collectDeclarations(s, n.Orelse)
		case *ast.While:
			collectDeclarations(s, n.Body)
			collectDeclarations(s, n.Orelse)
		case *ast.For:
			collectDeclarations(s, n.Body)
			collectDeclarations(s, n.Orelse)
		case *ast.Try:
			collectDeclarations(s, n.Body)
			for _, h := range n.Handlers {
				collectDeclarations(s, h.Body)
			}
			collectDeclarations(s, n.Orelse)
			collectDeclarations(s, n.Finally)
		case *ast.With:
			collectDeclarations(s, n.Body)
		}
	}
}

func walkStmts(s *scope, stmts []ast.Stmt) {
	for _, st := range stmts {
		walkStmt(s, st)
	}
}

func walkTarget(s *scope, t ast.Expr) {
	switch n := t.(type) {
	case *ast.Name:
		s.bind(n.Id)
	case *ast.Tuple:
		for _, e := range n.Elts {
			walkTarget(s, e)
		}
	case *ast.List:
		for _, e := range n.Elts {
			walkTarget(s, e)
		}
	case *ast.Starred:
		walkTarget(s, n.Value)
	case *ast.Attribute:
		walkExpr(s, n.Value)
	case *ast.Subscript:
		walkExpr(s, n.Value)
		walkExpr(s, n.Index)
	}
}

func walkStmt(s *scope, st ast.Stmt) {
	switch n := st.(type) {
	case *ast.ExprStmt:
		walkExpr(s, n.Value)
	case *ast.Assign:
		walkExpr(s, n.Value)
		for _, t := range n.Targets {
			walkTarget(s, t)
		}
	case *ast.AugAssign:
		walkExpr(s, n.Value)
		walkTarget(s, n.Target)
	case *ast.AnnAssign:
		walkExpr(s, n.Annotation)
		if n.Value != nil {
			walkExpr(s, n.Value)
		}
		walkTarget(s, n.Target)
	case *ast.Return:
		walkExpr(s, n.Value)
	case *ast.Pass, *ast.Break, *ast.Continue:
	case *ast.Delete:
		for _, t := range n.Targets {
			walkTarget(s, t)
		}
	case *ast.Global, *ast.Nonlocal:
		// handled by collectDeclarations
	case *ast.Assert:
		walkExpr(s, n.Test)
		walkExpr(s, n.Msg)
	case *ast.Raise:
		walkExpr(s, n.Exc)
		walkExpr(s, n.Cause)
	case *ast.If:
		walkExpr(s, n.Test)
		walkStmts(s, n.Body)
		walkStmts(s, n.Orelse)
	case *ast.While:
		walkExpr(s, n.Test)
		walkStmts(s, n.Body)
		walkStmts(s, n.Orelse)
	case *ast.For:
		walkExpr(s, n.Iter)
		walkTarget(s, n.Target)
		walkStmts(s, n.Body)
		walkStmts(s, n.Orelse)
	case *ast.Try:
		walkStmts(s, n.Body)
		for _, h := range n.Handlers {
			walkExpr(s, h.Type)
			if h.Name != "" {
				s.bind(h.Name)
			}
			walkStmts(s, h.Body)
		}
		walkStmts(s, n.Orelse)
		walkStmts(s, n.Finally)
	case *ast.With:
		for _, item := range n.Items {
			walkExpr(s, item.ContextExpr)
			if item.OptionalVar != nil {
				walkTarget(s, item.OptionalVar)
			}
		}
		walkStmts(s, n.Body)
	case *ast.FunctionDef:
		for _, d := range n.Decorators {
			walkExpr(s, d.Value)
		}
		for _, a := range n.Params.Args {
			if a.Default != nil {
				walkExpr(s, a.Default)
			}
		}
		s.bind(n.Name)
		child := newScope(scopeFunction, s)
		for _, a := range n.Params.Args {
			child.bind(a.Name)
		}
		if n.Params.VarArg != "" {
			child.bind(n.Params.VarArg)
		}
		if n.Params.KWArg != "" {
			child.bind(n.Params.KWArg)
		}
		collectDeclarations(child, n.Body)
		walkStmts(child, n.Body)
		s.children[n] = child
	case *ast.ClassDef:
		for _, d := range n.Decorators {
			walkExpr(s, d.Value)
		}
		for _, b := range n.Bases {
			walkExpr(s, b)
		}
		s.bind(n.Name)
		child := newScope(scopeClass, s)
		collectDeclarations(child, n.Body)
		walkStmts(child, n.Body)
		s.children[n] = child
	case *ast.Import:
		for _, al := range n.Names {
			s.bind(importBindName(al))
		}
	case *ast.ImportFrom:
		for _, al := range n.Names {
			if al.Name == "*" {
				continue
			}
			if al.AsName != "" {
				s.bind(al.AsName)
			} else {
				s.bind(al.Name)
			}
		}
	}
}

func importBindName(al ast.ImportAlias) string {
	if al.AsName != "" {
		return al.AsName
	}
	name := al.Name
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

func walkExpr(s *scope, e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.NumberLit, *ast.StringLit, *ast.BoolLit, *ast.NoneLit:
	case *ast.FStringLit:
		for _, p := range n.Parts {
			if p.Value != nil {
				walkExpr(s, p.Value)
			}
		}
	case *ast.Name:
		s.use(n.Id)
	case *ast.Starred:
		walkExpr(s, n.Value)
	case *ast.Tuple:
		for _, el := range n.Elts {
			walkExpr(s, el)
		}
	case *ast.List:
		for _, el := range n.Elts {
			walkExpr(s, el)
		}
	case *ast.SetLit:
		for _, el := range n.Elts {
			walkExpr(s, el)
		}
	case *ast.DictLit:
		for _, ent := range n.Entries {
			walkExpr(s, ent.Key)
			walkExpr(s, ent.Value)
		}
	case *ast.ListComp:
		walkComprehension(s, n.Gens, n, func(cs *scope) { walkExpr(cs, n.Elt) })
	case *ast.SetComp:
		walkComprehension(s, n.Gens, n, func(cs *scope) { walkExpr(cs, n.Elt) })
	case *ast.DictComp:
		walkComprehension(s, n.Gens, n, func(cs *scope) {
			walkExpr(cs, n.Key)
			walkExpr(cs, n.Value)
		})
	case *ast.GeneratorExp:
		walkComprehension(s, n.Gens, n, func(cs *scope) { walkExpr(cs, n.Elt) })
	case *ast.Attribute:
		walkExpr(s, n.Value)
	case *ast.Subscript:
		walkExpr(s, n.Value)
		walkExpr(s, n.Index)
	case *ast.Slice:
		walkExpr(s, n.Lower)
		walkExpr(s, n.Upper)
		walkExpr(s, n.Step)
	case *ast.Call:
		walkExpr(s, n.Func)
		for _, a := range n.Args {
			walkExpr(s, a)
		}
		for _, k := range n.Keywords {
			walkExpr(s, k.Value)
		}
	case *ast.UnaryOp:
		walkExpr(s, n.Operand)
	case *ast.BinOp:
		walkExpr(s, n.Left)
		walkExpr(s, n.Right)
	case *ast.BoolOp:
		for _, v := range n.Values {
			walkExpr(s, v)
		}
	case *ast.Compare:
		walkExpr(s, n.Left)
		for _, c := range n.Comparators {
			walkExpr(s, c)
		}
	case *ast.IfExp:
		walkExpr(s, n.Test)
		walkExpr(s, n.Body)
		walkExpr(s, n.Orelse)
	case *ast.Lambda:
		for _, a := range n.Params.Args {
			if a.Default != nil {
				walkExpr(s, a.Default)
			}
		}
		child := newScope(scopeFunction, s)
		for _, a := range n.Params.Args {
			child.bind(a.Name)
		}
		if n.Params.VarArg != "" {
			child.bind(n.Params.VarArg)
		}
		if n.Params.KWArg != "" {
			child.bind(n.Params.KWArg)
		}
		walkExpr(child, n.Body)
		s.children[n] = child
	case *ast.Yield:
		walkExpr(s, n.Value)
	case *ast.YieldFrom:
		walkExpr(s, n.Value)
	}
}

// walkComprehension builds the implicit function scope spec.md §4.4
// describes ("comprehensions compile to an implicit function with one
// parameter, the outermost iterable, to isolate scope"): the first
// generator's iterable is evaluated in the enclosing scope s, everything
// else — targets, later iterables, guards, and the element expression —
// lives in the comprehension's own child scope.
func walkComprehension(s *scope, gens []ast.Comprehension, node ast.Node, body func(*scope)) {
	if len(gens) == 0 {
		return
	}
	walkExpr(s, gens[0].Iter)
	child := newScope(scopeFunction, s)
	child.bind(".0")
	walkTarget(child, gens[0].Target)
	for _, ifE := range gens[0].Ifs {
		walkExpr(child, ifE)
	}
	for _, g := range gens[1:] {
		walkExpr(child, g.Iter)
		walkTarget(child, g.Target)
		for _, ifE := range g.Ifs {
			walkExpr(child, ifE)
		}
	}
	body(child)
	s.children[node] = child
}

// resolveScopes runs the bottom-up closure-resolution pass: every child's
// still-unresolved free names are offered to s, which either claims them as
// its own cells (if s is a function and binds that name) or relays them
// further up its own free set, terminating at module scope where an
// unclaimed name simply falls back to a runtime global/builtin lookup.
func resolveScopes(s *scope) {
	for _, c := range s.children {
		resolveScopes(c)
	}
	need := make(map[string]bool)
	for name := range s.uses {
		if s.globals[name] {
			continue
		}
		if s.bound[name] {
			continue
		}
		need[name] = true
	}
	for name := range s.nonlocals {
		need[name] = true
	}
	for _, c := range s.children {
		for name := range c.free {
			need[name] = true
		}
	}
	eligible := s.kind == scopeFunction
	for name := range need {
		if eligible && s.bound[name] && !s.globals[name] {
			if !s.cells[name] {
				s.cells[name] = true
				s.cellOrder = append(s.cellOrder, name)
			}
			continue
		}
		if s.parent == nil {
			continue // module scope: unresolved names are runtime globals/builtins
		}
		if !s.free[name] {
			s.free[name] = true
			s.freeOrder = append(s.freeOrder, name)
		}
	}
}

// nameKind is the codegen-facing classification of one name reference,
// spec.md §4.4's "local, a free variable, global, or builtin" pre-pass
// result, refined with the module/class "namespace" case (STORE_NAME
// instead of STORE_FAST/STORE_GLOBAL) spec.md §4.6 describes for module and
// class bodies alike.
type nameKind int

const (
	nameFast nameKind = iota
	nameCell
	nameFreeVar
	nameGlobalExplicit
	nameNamespace
)

func (s *scope) resolve(name string) nameKind {
	if s.kind == scopeFunction {
		if s.cells[name] {
			return nameCell
		}
		if s.free[name] {
			return nameFreeVar
		}
		if s.bound[name] && !s.globals[name] {
			return nameFast
		}
		return nameGlobalExplicit
	}
	if s.free[name] {
		return nameFreeVar
	}
	if s.kind == scopeClass && (!s.bound[name] || s.globals[name]) {
		return nameGlobalExplicit
	}
	return nameNamespace
}

// cellIndex returns the LOAD_CLOSURE/LOAD_DEREF slot for name within s,
// using the same "own cells first, then received freevars" numbering as
// vm.Frame.derefCell.
func (s *scope) cellIndex(name string) int {
	for i, n := range s.cellOrder {
		if n == name {
			return i
		}
	}
	for i, n := range s.freeOrder {
		if n == name {
			return len(s.cellOrder) + i
		}
	}
	return -1
}
