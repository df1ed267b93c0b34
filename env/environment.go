// Package env implements spec.md §4.6: bootstrapping type prototypes,
// installing built-in methods, populating the builtins module, exposing the
// exception hierarchy, and mediating name resolution -- the runtime handle
// an embedder or the CLI driver creates one of per independent interpreter
// instance (spec.md §9 "forbid static construction").
//
// Grounded on runtime/builtin_types.go's builtinTypes map + typeState init
// ordering (the teacher's single monolithic bootstrap function), split here
// across environment.go (handle + import/resolve plumbing),
// builtins_funcs.go (the free-function builtins dict) and
// builtins_types.go (methods installed onto each pyobj type prototype).
package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gamarino/protoPython-sub000/compiler"
	"github.com/gamarino/protoPython-sub000/importer"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/space"
	"github.com/gamarino/protoPython-sub000/vm"
)

// Options configures a new Environment. Zero value is usable: an in-memory
// environment with no search path and diagnostics disabled.
type Options struct {
	Path       []string // RUNTIME_PATH entries, search order
	Log        zerolog.Logger
	ThreadDiag bool // RUNTIME_THREAD_DIAG
	EnvDiag    bool // RUNTIME_ENV_DIAG
}

// Environment is one independent runtime instance: its own Space, its own
// builtins module, its own module registry and import lock. Tests and
// embedders are free to create as many as they like; nothing here is a
// process-wide singleton (spec.md §9's "Global mutable state" note).
type Environment struct {
	ID       uuid.UUID
	Space    *space.Space
	Builtins *pyobj.Object
	Chain    *importer.Chain
	Path     []string

	log        zerolog.Logger
	envDiag    bool
	importLock vm.RecursiveMutex

	resolveGen uint64
	resolveMu  struct{} // placeholder: per-thread caches live on vm.Thread in a real embedding

	nativeProvider *importer.NativeProvider
}

// New bootstraps a fresh Environment: builds the Space, installs builtin
// type methods onto the pyobj package's shared type-prototype objects,
// populates the builtins module, and wires the provider chain in the order
// spec.md §4.7 lists (native, compiled, source).
func New(opts Options) *Environment {
	id := uuid.New()
	log := opts.Log.With().Str("env", id.String()).Logger()
	sp := space.New(log)

	e := &Environment{
		ID:      id,
		Space:   sp,
		Path:    opts.Path,
		log:     log,
		envDiag: opts.EnvDiag,
	}

	installTypeMethods()
	e.Builtins = buildBuiltinsModule(e)

	e.Chain = importer.NewChain()
	e.nativeProvider = importer.NewNativeProvider()
	registerStdlibNatives(e.nativeProvider)
	e.Chain.Register(e.nativeProvider)
	e.Chain.Register(importer.NewCompiledProvider(e.Chain, e, e.Path))
	e.Chain.Register(importer.NewSourceProvider(e.Chain, e, e.Path))

	if opts.ThreadDiag {
		e.log.Debug().Msg("thread diagnostics enabled")
	}
	return e
}

// NewThread creates a vm.Thread bound to this Environment: its Space, its
// builtins namespace, and an importer wired to this Environment's re-entrant
// import lock. Every goroutine acting as a Python "thread" calls this once.
func (e *Environment) NewThread() *vm.Thread {
	th := vm.NewThread(e.Space)
	th.Builtins = e.Builtins
	th.Importer = &envImporter{env: e, thread: th}
	return th
}

// envImporter adapts Environment+Chain to vm.ModuleImporter, wrapping every
// import attempt in the re-entrant lock + GC safepoint park/unpark dance
// spec.md §4.6/§5 require ("any import attempt acquires [the import lock],
// parks the calling thread at a GC safepoint during acquisition, and checks
// the STW flag on release").
type envImporter struct {
	env    *Environment
	thread *vm.Thread
}

func (ei *envImporter) Import(name string) (*pyobj.Object, error) {
	ei.env.Space.Park()
	ei.env.importLock.Lock(ei.thread)
	ei.env.Space.Unpark()
	defer ei.env.importLock.Unlock(ei.thread)
	if ei.env.envDiag {
		ei.env.log.Debug().Str("module", name).Msg("import")
	}
	return ei.env.Chain.Import(name)
}

// ExecModule implements importer.Executor: create a frame with mod as both
// globals and locals, hand it to the VM, per spec.md §4.7's execution
// recipe. Each call runs the module body on a new Thread from NewThread,
// not on the thread that triggered the import.
func (e *Environment) ExecModule(code *vm.Code, mod *pyobj.Object) error {
	th := e.NewThread()
	mod.SetAttribute("__builtins__", e.Builtins)
	f := vm.NewFrame(th, nil, code, mod)
	_, _, err := f.Run(pyobj.None)
	return err
}

// RunSource compiles and executes src as a `__main__` module, the `-c`/
// script-file entry point of spec.md §6.
func (e *Environment) RunSource(src, filename string) (*pyobj.Object, error) {
	code, serr := compiler.Compile(src, filename)
	if serr != nil {
		return nil, &pyobj.PyError{Exc: syntaxErrorObject(serr)}
	}
	mod := pyobj.NewModule("__main__")
	mod.SetAttribute("__file__", pyobj.Str(filename))
	err := e.ExecModule(code, mod)
	return mod, err
}

// RunModule implements `runtime -m module_name`: import it and, if it was
// not already executed (the common case of the first and only import),
// its top-level code has already run as a side effect of Import.
func (e *Environment) RunModule(name string) (*pyobj.Object, error) {
	th := e.NewThread()
	mod, err := th.Importer.Import(name)
	if err != nil {
		return nil, err
	}
	mod.SetAttribute("__name__", pyobj.Str("__main__"))
	return mod, nil
}

func syntaxErrorObject(serr *compiler.SyntaxError) *pyobj.Object {
	exc := pyobj.NewException(pyobj.SyntaxErrorType, serr.Msg)
	exc.SetAttribute("lineno", pyobj.Int(int64(serr.Pos.Line)))
	exc.SetAttribute("offset", pyobj.Int(int64(serr.Pos.Column)))
	exc.SetAttribute("text", pyobj.Str(serr.Text))
	return exc
}

// Resolve implements spec.md §4.6's resolve(name): well-known type/singleton
// shortcuts, then frame globals, then the builtins module. The "thread-local
// resolve cache keyed by name, with a generation counter for lock-free
// invalidation" spec.md describes is a hot-path optimization over exactly
// this search order. No such cache exists here; e.resolveGen changes only
// when BumpResolveGeneration is called, not automatically when the builtins
// module or a type prototype's attribute map changes.
func (e *Environment) Resolve(globals *pyobj.Object, name string) (*pyobj.Object, bool) {
	if t, ok := wellKnownTypes[name]; ok {
		return t, true
	}
	if globals != nil {
		if v, ok := globals.GetAttribute(name); ok {
			return v, true
		}
	}
	return e.Builtins.GetAttribute(name)
}

// BumpResolveGeneration invalidates any cached resolve(name) results a
// caller may be holding, e.g. after a native module registers new builtins
// at runtime.
func (e *Environment) BumpResolveGeneration() { e.resolveGen++ }

// ResolveGeneration returns the current generation counter.
func (e *Environment) ResolveGeneration() uint64 { return e.resolveGen }

var wellKnownTypes = map[string]*pyobj.Object{
	"int":   pyobj.IntType,
	"float": pyobj.FloatType,
	"str":   pyobj.StrType,
	"bytes": pyobj.BytesType,
	"list":  pyobj.ListType,
	"tuple": pyobj.TupleType,
	"dict":  pyobj.DictType,
	"set":   pyobj.SetType,
	"bool":  pyobj.BoolType,
	"type":  pyobj.TypeType,
	"object": pyobj.ObjectType,
	"None":  pyobj.None,
}

// FormatTraceback renders spec.md §6's exception presentation: a
// "Traceback (most recent call last):" header, frames oldest-first, then
// "TypeName: message". frames is supplied oldest-first by the caller; this
// package does not retain a traceback list on the exception object. The CLI
// driver and the REPL each pass a single module-level frame, so the report
// names only the "<module>" line, not the inner frames of the raise.
func FormatTraceback(w *os.File, frames []TracebackFrame, exc *pyobj.Object) {
	fmt.Fprintln(w, "Traceback (most recent call last):")
	for _, fr := range frames {
		fmt.Fprintf(w, "  File %q, line %d, in %s\n", fr.Filename, fr.Line, fr.FuncName)
	}
	name := "Exception"
	if exc.Class != nil && exc.Class.TypeDef != nil {
		name = exc.Class.TypeDef.Name
	}
	msg := pyobj.ExceptionMessage(exc)
	if msg == "" {
		fmt.Fprintln(w, name)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", name, msg)
	if name == "NameError" || name == "AttributeError" {
		if suggestion := suggestName(msg, nameCandidates(exc)); suggestion != "" {
			fmt.Fprintf(w, "Did you mean: '%s'?\n", suggestion)
		}
	}
}

// TracebackFrame is one line of a printed traceback.
type TracebackFrame struct {
	Filename string
	Line     int
	FuncName string
}

// nameCandidates extracts the failing name from a NameError/AttributeError
// message so suggestName has something to compare against; real candidate
// scope enumeration belongs to the CLI driver, which has the live frame.
func nameCandidates(exc *pyobj.Object) []string {
	if v, ok := exc.GetAttribute("__candidates__"); ok && v.Kind == pyobj.KindList {
		items := pyobj.ListItems(v)
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Str)
		}
		return out
	}
	return nil
}

// suggestName computes a Levenshtein-nearest candidate to the failing name
// embedded in msg, per spec.md §6 "the formatter computes a Levenshtein
// suggestion from the failing scope's candidate names".
func suggestName(msg string, candidates []string) string {
	name := extractQuoted(msg)
	if name == "" || len(candidates) == 0 {
		return ""
	}
	best := ""
	bestDist := len(name) + 1
	for _, c := range candidates {
		d := levenshtein(name, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist > 2 {
		return ""
	}
	return best
}

func extractQuoted(msg string) string {
	i := strings.IndexByte(msg, '\'')
	if i < 0 {
		return ""
	}
	j := strings.IndexByte(msg[i+1:], '\'')
	if j < 0 {
		return ""
	}
	return msg[i+1 : i+1+j]
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
