// Package repl implements spec.md §6's interactive loop: `>>> `/`... `
// prompts, multi-line input with an empty-line-terminates-block heuristic,
// and a history file at $HOME/.runtime_history. Explicitly scoped as a thin
// shell over the core VM/compiler by spec.md §1 ("REPL cosmetics ... not
// architectural"); line editing and history are delegated to
// github.com/peterh/liner, the same library ozanh/ugo and gad-lang/gad use
// for their REPLs (see SPEC_FULL.md §2).
package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/gamarino/protoPython-sub000/ast"
	"github.com/gamarino/protoPython-sub000/compiler"
	"github.com/gamarino/protoPython-sub000/env"
	"github.com/gamarino/protoPython-sub000/parser"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/vm"
)

const historyBasename = ".runtime_history"

// Run drives the interactive loop against e until EOF (Ctrl-D) or an
// uncaught SystemExit, returning the process exit code (spec.md §7: 0 on a
// clean Ctrl-D exit, or SystemExit's code). Uncaught exceptions other than
// SystemExit print a traceback and return to the prompt, per spec.md §6.
func Run(e *env.Environment, startupPath string, noColor bool) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyBasename)
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if historyPath == "" {
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	out := stdoutWriter(noColor)
	mod := pyobj.NewModule("__main__")
	mod.SetAttribute("__builtins__", e.Builtins)

	if startupPath != "" {
		if src, err := os.ReadFile(startupPath); err == nil {
			runChunk(e, mod, string(src), "<startup>", out)
		} else {
			fmt.Fprintf(os.Stderr, "protopy: could not read RUNTIME_STARTUP file %q: %v\n", startupPath, err)
		}
	}

	for {
		chunk, eof := readBlock(line)
		if eof {
			fmt.Fprintln(out)
			return 0
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		line.AppendHistory(chunk)
		if code := runChunk(e, mod, chunk, "<stdin>", out); code != nil {
			return *code
		}
	}
}

// readBlock accumulates lines from line until a logical statement is
// complete: a single physical line with no trailing colon or backslash is
// complete immediately; otherwise a `... ` continuation starts and runs
// until an empty line (or a prompt error). Unclosed brackets and dedents
// are not detected. Returns eof=true on Ctrl-D at the first prompt.
func readBlock(line *liner.State) (src string, eof bool) {
	first, err := line.Prompt(">>> ")
	if err != nil {
		return "", true
	}
	if !needsContinuation(first) {
		return first, false
	}
	var buf strings.Builder
	buf.WriteString(first)
	buf.WriteByte('\n')
	for {
		more, err := line.Prompt("... ")
		if err != nil || strings.TrimSpace(more) == "" {
			break
		}
		buf.WriteString(more)
		buf.WriteByte('\n')
	}
	return buf.String(), false
}

func needsContinuation(l string) bool {
	t := strings.TrimRight(l, " \t")
	return strings.HasSuffix(t, ":") || strings.HasSuffix(t, "\\")
}

// runChunk compiles and runs one REPL chunk against the persistent mod
// namespace. If the chunk is a single bare expression statement, its value
// is rebound to "_" and printed (if not None) the way CPython's REPL
// echoes expression results; other chunks run exactly as a module body
// would. Returns non-nil *int only when a SystemExit should end the loop.
func runChunk(e *env.Environment, mod *pyobj.Object, src, filename string, out interface{ Write([]byte) (int, error) }) *int {
	modAst, serr := parser.ParseModule(src)
	if serr != nil {
		fmt.Fprintf(os.Stderr, "  File %q, line %d\n    %s\n%s\n", filename, serr.Pos.Line, serr.Text, serr.Error())
		return nil
	}
	echoExpr := rewriteTrailingExpr(modAst)
	code := compiler.CompileModuleAST(modAst, filename)

	th := e.NewThread()
	f := vm.NewFrame(th, nil, code, mod)
	_, _, err := f.Run(pyobj.None)
	if err != nil {
		pe, ok := err.(*pyobj.PyError)
		if !ok {
			fmt.Fprintln(os.Stderr, err)
			return nil
		}
		if pe.Exc.Class == pyobj.SystemExitType {
			codeVal := 0
			if c, ok := pe.Exc.GetAttribute("code"); ok && c.Kind == pyobj.KindInt {
				codeVal = int(c.Int)
			}
			return &codeVal
		}
		frames := []env.TracebackFrame{{Filename: filename, Line: 0, FuncName: "<module>"}}
		env.FormatTraceback(os.Stderr, frames, pe.Exc)
		return nil
	}
	if echoExpr {
		if v, ok := mod.GetAttribute("_"); ok && v.Kind != pyobj.KindNone {
			fmt.Fprintln(out, vm.Repr(f, v))
		}
	}
	return nil
}

// rewriteTrailingExpr mutates mod in place so a lone expression statement
// assigns to "_" instead of discarding its value, returning whether it did.
func rewriteTrailingExpr(mod *ast.Module) bool {
	if len(mod.Body) != 1 {
		return false
	}
	es, ok := mod.Body[0].(*ast.ExprStmt)
	if !ok {
		return false
	}
	line := es.Line()
	mod.Body[0] = ast.NewAssign(line, []ast.Expr{ast.NewName(line, "_")}, es.Value)
	return true
}

func stdoutWriter(noColor bool) interface {
	Write(p []byte) (int, error)
} {
	if !noColor && isatty.IsTerminal(os.Stdout.Fd()) {
		return colorable.NewColorable(os.Stdout)
	}
	return colorable.NewNonColorable(os.Stdout)
}
