package importer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gamarino/protoPython-sub000/compiler"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/vm"
)

// Executor runs a compiled code object's top-level body against a freshly
// allocated module namespace, the "create a frame with the module as both
// globals and locals, hand it to the VM" step of spec.md §4.7. Package env
// implements this (it owns the Thread/builtins wiring); importer only
// consumes the interface so it never needs to construct a Thread itself.
type Executor interface {
	ExecModule(code *vm.Code, mod *pyobj.Object) error
}

// SourceProvider scans a list of search-path directories for `<name>.py` or
// `<name>/__init__.py`, the plain-text loading path of spec.md §4.7.
type SourceProvider struct {
	chain *Chain
	exec  Executor
	paths []string
}

// NewSourceProvider builds a provider over paths (already split and
// RUNTIME_PATH-prepended by the caller), executing loaded modules with
// exec and registering them against chain for cycle safety.
func NewSourceProvider(chain *Chain, exec Executor, paths []string) *SourceProvider {
	return &SourceProvider{chain: chain, exec: exec, paths: paths}
}

// TryLoad implements Provider.
func (p *SourceProvider) TryLoad(name string) (*pyobj.Object, bool, error) {
	path, isPackage, ok := p.find(name)
	if !ok {
		return nil, false, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, false, &pyobj.PyError{Exc: pyobj.NewException(pyobj.OSErrorType, err.Error())}
	}
	code, serr := compiler.Compile(string(src), path)
	if serr != nil {
		return nil, false, &pyobj.PyError{Exc: syntaxErrorObject(serr)}
	}
	mod := pyobj.NewModule(name)
	mod.SetAttribute("__file__", pyobj.Str(path))
	if isPackage {
		mod.SetAttribute("__path__", pyobj.NewList([]*pyobj.Object{pyobj.Str(filepath.Dir(path))}))
	}
	// Reserve before executing: a cyclic `import` reached from inside
	// code's top-level body resolves back to this (incomplete) namespace
	// instead of re-running TryLoad (spec.md §4.7 "mid-execution lookups
	// see the partially-populated module").
	p.chain.reserve(name, mod)
	if err := p.exec.ExecModule(code, mod); err != nil {
		// The module stays in the registry but unexecuted, so a retry is
		// possible (spec.md §4.7 "the module remains in the registry but
		// with __executed__ = false").
		mod.SetAttribute("__executed__", pyobj.False)
		return nil, false, err
	}
	mod.SetAttribute("__executed__", pyobj.True)
	p.chain.markReady(name)
	return mod, true, nil
}

func (p *SourceProvider) find(name string) (path string, isPackage bool, ok bool) {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator))
	for _, dir := range p.paths {
		pkgInit := filepath.Join(dir, rel, "__init__.py")
		if fileExists(pkgInit) {
			return pkgInit, true, true
		}
		mod := filepath.Join(dir, rel+".py")
		if fileExists(mod) {
			return mod, false, true
		}
	}
	return "", false, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// syntaxErrorObject converts a *compiler.SyntaxError into the SyntaxError
// exception instance spec.md §4.3/§7 describes, carrying lineno/offset/text.
func syntaxErrorObject(serr *compiler.SyntaxError) *pyobj.Object {
	exc := pyobj.NewException(pyobj.SyntaxErrorType, serr.Msg)
	exc.SetAttribute("lineno", pyobj.Int(int64(serr.Pos.Line)))
	exc.SetAttribute("offset", pyobj.Int(int64(serr.Pos.Column)))
	exc.SetAttribute("text", pyobj.Str(serr.Text))
	return exc
}
