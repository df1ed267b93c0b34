package env

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/gamarino/protoPython-sub000/importer"
	"github.com/gamarino/protoPython-sub000/pyobj"
)

// registerStdlibNatives populates the native provider with the handful of
// standard-library modules spec.md §1 calls "enumerated registrations, not
// architectural" -- the core only needs enough of each to exercise the
// object model and VM that consume them (sys.exit for the exit-code path of
// §6/§7, sys.argv/sys.path for script invocation, a couple of math
// functions to back float-heavy test programs). Grounded on
// runtime/builtin_types.go's per-module registration functions
// (e.g. weakrefModule, moduleInit) -- one builder func per module name,
// same shape, registered through importer.NativeProvider.Register instead
// of the teacher's direct moduleRegistry insert.
func registerStdlibNatives(p *importer.NativeProvider) {
	p.Register("sys", buildSysModule)
	p.Register("math", buildMathModule)
	p.Register("os", buildOSModule)
	p.Register("time", buildTimeModule)
}

// buildSysModule is the Provider-facing builder (matches
// func() (*pyobj.Object, error)); split from buildSysModuleImpl only so the
// doc comment on the zero-arg signature stays next to the registration.
func buildSysModule() (*pyobj.Object, error) { return buildSysModuleImpl() }

// sysArgv is set by cmd/protopy before the first `import sys` runs, the
// same "mutate before first use" convention the teacher's os.Args-derived
// globals use (runtime/builtin_types.go's osModule).
var sysArgv []string
var sysPathExtra []string

// SetArgv configures the argv list new "sys" modules are built with. Called
// once by cmd/protopy's driver before creating threads that might import sys.
func SetArgv(argv []string) { sysArgv = argv }

// SetPath configures additional sys.path entries (RUNTIME_PATH) new "sys"
// modules are seeded with, alongside argv.
func SetPath(path []string) { sysPathExtra = path }

func buildSysModuleImpl() (*pyobj.Object, error) {
	m := pyobj.NewModule("sys")
	argv := make([]*pyobj.Object, 0, len(sysArgv))
	for _, a := range sysArgv {
		argv = append(argv, pyobj.Str(a))
	}
	m.SetAttribute("argv", pyobj.NewList(argv))

	path := make([]*pyobj.Object, 0, len(sysPathExtra))
	for _, p := range sysPathExtra {
		path = append(path, pyobj.Str(p))
	}
	m.SetAttribute("path", pyobj.NewList(path))
	m.SetAttribute("platform", pyobj.Str(runtime.GOOS))
	m.SetAttribute("version", pyobj.Str("protoPython-sub000"))
	m.SetAttribute("maxsize", pyobj.Int(int64(^uint(0)>>1)))

	reg := func(name string, fn pyobj.NativeFunc) { m.SetAttribute(name, pyobj.NewNative(name, fn)) }
	reg("exit", sysExit)
	reg("stdout_write", sysStdoutWrite)
	reg("stderr_write", sysStderrWrite)
	return m, nil
}

// sysExit implements sys.exit([code]), raising SystemExit the way
// spec.md §7 requires ("SystemExit which exits with its code attribute").
func sysExit(call *pyobj.Call) (*pyobj.Object, error) {
	exc := pyobj.NewException(pyobj.SystemExitType, "")
	if len(call.Args) > 0 {
		exc.SetAttribute("code", call.Args[0])
	} else {
		exc.SetAttribute("code", pyobj.None)
	}
	return nil, &pyobj.PyError{Exc: exc}
}

func sysStdoutWrite(call *pyobj.Call) (*pyobj.Object, error) {
	for _, a := range call.Args {
		fmt.Fprint(os.Stdout, a.GoString())
	}
	return pyobj.None, nil
}

func sysStderrWrite(call *pyobj.Call) (*pyobj.Object, error) {
	for _, a := range call.Args {
		fmt.Fprint(os.Stderr, a.GoString())
	}
	return pyobj.None, nil
}

// buildMathModule wires in a handful of float functions, grounded on
// runtime/float.go's math.* delegation shape (CPython's math module is a
// thin wrapper over libm the same way).
func buildMathModule() (*pyobj.Object, error) {
	m := pyobj.NewModule("math")
	m.SetAttribute("pi", pyobj.Float(math.Pi))
	m.SetAttribute("e", pyobj.Float(math.E))
	m.SetAttribute("inf", pyobj.Float(math.Inf(1)))
	m.SetAttribute("nan", pyobj.Float(math.NaN()))

	unary := func(name string, fn func(float64) float64) {
		m.SetAttribute(name, pyobj.NewNative(name, func(call *pyobj.Call) (*pyobj.Object, error) {
			if len(call.Args) != 1 {
				return nil, argErr(name, 1, len(call.Args))
			}
			x, err := toFloat(call.Args[0])
			if err != nil {
				return nil, err
			}
			return pyobj.Float(fn(x)), nil
		}))
	}
	unary("sqrt", math.Sqrt)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("fabs", math.Abs)

	m.SetAttribute("pow", pyobj.NewNative("pow", func(call *pyobj.Call) (*pyobj.Object, error) {
		if len(call.Args) != 2 {
			return nil, argErr("pow", 2, len(call.Args))
		}
		x, err := toFloat(call.Args[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(call.Args[1])
		if err != nil {
			return nil, err
		}
		return pyobj.Float(math.Pow(x, y)), nil
	}))
	return m, nil
}

func toFloat(o *pyobj.Object) (float64, error) {
	switch o.Kind {
	case pyobj.KindFloat:
		return o.Float, nil
	case pyobj.KindInt:
		return float64(o.Int), nil
	case pyobj.KindBool:
		if o.Bool {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, pyobj.Raise(pyobj.TypeErrorType, "must be real number, not %s", o.Kind.String())
	}
}

// buildOSModule wires a tiny slice of os: getcwd, getenv, the argv-adjacent
// name constant. Grounded on runtime/builtin_types.go's posixModule, which
// spec.md §1 classes as an out-of-scope enumerated registration; kept
// minimal on purpose.
func buildOSModule() (*pyobj.Object, error) {
	m := pyobj.NewModule("os")
	m.SetAttribute("name", pyobj.Str("posix"))
	m.SetAttribute("sep", pyobj.Str(string(os.PathSeparator)))
	m.SetAttribute("linesep", pyobj.Str("\n"))
	m.SetAttribute("getcwd", pyobj.NewNative("getcwd", func(call *pyobj.Call) (*pyobj.Object, error) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, pyobj.Raise(pyobj.OSErrorType, "%v", err)
		}
		return pyobj.Str(wd), nil
	}))
	m.SetAttribute("getenv", pyobj.NewNative("getenv", func(call *pyobj.Call) (*pyobj.Object, error) {
		if len(call.Args) < 1 {
			return nil, argErr("getenv", 1, len(call.Args))
		}
		v, ok := os.LookupEnv(call.Args[0].Str)
		if !ok {
			if len(call.Args) > 1 {
				return call.Args[1], nil
			}
			return pyobj.None, nil
		}
		return pyobj.Str(v), nil
	}))
	return m, nil
}

// buildTimeModule wires time.time()/time.sleep(), grounded on
// runtime/builtin_types.go's timeModule shape (also explicitly out of
// architectural scope per spec.md §1; kept minimal).
func buildTimeModule() (*pyobj.Object, error) {
	m := pyobj.NewModule("time")
	m.SetAttribute("time", pyobj.NewNative("time", func(call *pyobj.Call) (*pyobj.Object, error) {
		return pyobj.Float(float64(time.Now().UnixNano()) / 1e9), nil
	}))
	m.SetAttribute("sleep", pyobj.NewNative("sleep", func(call *pyobj.Call) (*pyobj.Object, error) {
		if len(call.Args) != 1 {
			return nil, argErr("sleep", 1, len(call.Args))
		}
		secs, err := toFloat(call.Args[0])
		if err != nil {
			return nil, err
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return pyobj.None, nil
	}))
	return m, nil
}
