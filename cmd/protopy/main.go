// Command protopy is the CLI driver of spec.md §6: `protopy script.py`,
// `protopy -m module`, `protopy -c "source"`, or no arguments for the
// interactive loop. Exit codes follow §7: 0 success, 1 uncaught runtime
// exception, 2 syntax/usage error, n from sys.exit(n).
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/gamarino/protoPython-sub000/env"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/repl"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := loadConfig()
	logger := newLogger(cfg)

	opts := env.Options{
		Path:       cfg.path,
		Log:        logger,
		ThreadDiag: cfg.threadDiag,
		EnvDiag:    cfg.envDiag,
	}
	e := env.New(opts)

	switch {
	case len(args) == 0:
		env.SetArgv([]string{""})
		return repl.Run(e, cfg.startup, cfg.noColor)

	case args[0] == "-c":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: protopy -c \"source\"")
			return 2
		}
		env.SetArgv(append([]string{"-c"}, args[2:]...))
		_, err := e.RunSource(args[1], "<string>")
		return handleResult(err)

	case args[0] == "-m":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: protopy -m module [args...]")
			return 2
		}
		env.SetArgv(append([]string{args[1]}, args[2:]...))
		_, err := e.RunModule(args[1])
		return handleResult(err)

	default:
		script := args[0]
		src, ferr := os.ReadFile(script)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "protopy: can't open file %q: %v\n", script, ferr)
			return 2
		}
		env.SetArgv(append([]string{script}, args[1:]...))
		_, err := e.RunSource(string(src), script)
		return handleResult(err)
	}
}

// handleResult maps a RunSource/RunModule error to spec.md §7's exit-code
// rule: SystemExit exits with its code attribute (0 for None, int value for
// int, 1 for anything else); any other uncaught exception prints a
// traceback and exits 1; a syntax error prints the message and exits 2.
func handleResult(err error) int {
	if err == nil {
		return 0
	}
	pe, ok := err.(*pyobj.PyError)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if pe.Exc.Class == pyobj.SystemExitType {
		return systemExitCode(pe.Exc)
	}
	if pe.Exc.Class == pyobj.SyntaxErrorType || pe.Exc.Class == pyobj.IndentationErrorType {
		printSyntaxError(pe.Exc)
		return 2
	}
	printTraceback(pe.Exc)
	return 1
}

func systemExitCode(exc *pyobj.Object) int {
	code, ok := exc.GetAttribute("code")
	if !ok || code.Kind == pyobj.KindNone {
		return 0
	}
	if code.Kind == pyobj.KindInt {
		return int(code.Int)
	}
	if code.Kind == pyobj.KindStr && code.Str != "" {
		fmt.Fprintln(os.Stderr, code.Str)
	}
	return 1
}

func printSyntaxError(exc *pyobj.Object) {
	lineno, _ := exc.GetAttribute("lineno")
	text, _ := exc.GetAttribute("text")
	msg := pyobj.ExceptionMessage(exc)
	name := "SyntaxError"
	if exc.Class.TypeDef != nil {
		name = exc.Class.TypeDef.Name
	}
	fmt.Fprintf(os.Stderr, "  File \"<string>\", line %s\n", fmtAttr(lineno))
	if text != nil && text.Kind == pyobj.KindStr && text.Str != "" {
		fmt.Fprintf(os.Stderr, "    %s\n", text.Str)
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", name, msg)
}

func fmtAttr(o *pyobj.Object) string {
	if o == nil {
		return "?"
	}
	return o.GoString()
}

// printTraceback renders the frame this process actually has at the point
// the top-level error surfaced: by the time RunSource/RunModule returns,
// the Python call stack that raised it has already unwound through Go's
// own call stack (env.environment.go's FormatTraceback doc comment), so
// the traceback here is necessarily the coarse module-level view rather
// than a full per-call frame list.
func printTraceback(exc *pyobj.Object) {
	frames := []env.TracebackFrame{{Filename: "<module>", Line: 0, FuncName: "<module>"}}
	env.FormatTraceback(os.Stderr, frames, exc)
}

func newLogger(cfg config) zerolog.Logger {
	var w = os.Stderr
	useColor := isatty.IsTerminal(w.Fd()) && !cfg.noColor
	var writer interface {
		Write(p []byte) (int, error)
	}
	if useColor {
		writer = colorable.NewColorable(w)
	} else {
		writer = colorable.NewNonColorable(w)
	}
	level := zerolog.Disabled
	if cfg.threadDiag || cfg.envDiag {
		level = zerolog.DebugLevel
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
