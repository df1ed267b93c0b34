// Package importer implements the module resolution chain of spec.md §4.7: a
// configurable list of Providers consulted in order for each dotted module
// name, a process-wide module registry guaranteeing a module's top-level
// code runs at most once, and the dotted-name loading walk (a.b.c loads a,
// then a.b, then a.b.c, attaching each child as an attribute of its parent).
// Grounded on runtime/module.go's moduleRegistry/ModuleInit/ImportModule
// shape, adapted from the teacher's "slice of code objects, one per
// component" calling convention to a provider-chain-per-component walk.
package importer

import (
	"strings"

	"github.com/gamarino/protoPython-sub000/pyobj"
)

// Provider resolves a single (non-dotted) module name component to a
// module namespace, or reports that it does not claim that name.
type Provider interface {
	TryLoad(name string) (*pyobj.Object, bool, error)
}

// moduleState mirrors runtime/module.go's moduleState enum: a module is
// registered before its top-level code runs so that a cyclic import sees
// the partially-populated namespace rather than recursing (spec.md §4.7
// "cycles break at the first sys.modules insertion").
type moduleState int

const (
	stateNew moduleState = iota
	stateInitializing
	stateReady
)

type entry struct {
	mod   *pyobj.Object
	state moduleState
}

// Chain is the environment's configured provider list plus the module
// registry ("sys.modules" equivalent). The re-entrant import lock is not
// held here; it lives on package env's Environment. Providers are tried in
// registration order for each dotted-name component; the first to claim a
// name wins.
//
// Chain does not itself implement the safepoint park/unpark dance (spec.md
// §4.6 "any import attempt acquires [the import lock], parks the calling
// thread at a GC safepoint during acquisition") -- that coordination needs a
// *vm.Thread, which would make this package depend on vm, inverting the
// dependency order DESIGN.md records (pyobj -> vm -> compiler -> importer ->
// env). Package env's envImporter.Import wraps Chain.Import with the import
// lock and the park/unpark calls instead.
type Chain struct {
	providers []Provider
	registry  map[string]*entry
}

// NewChain builds an empty provider chain; providers are added with
// Register in the order they should be consulted.
func NewChain() *Chain {
	return &Chain{registry: map[string]*entry{}}
}

// Register appends p to the chain, to be tried after any provider already
// registered.
func (c *Chain) Register(p Provider) {
	c.providers = append(c.providers, p)
}

// Import resolves a (possibly dotted) module name, loading and executing
// every prefix component that is not already registered, attaching each
// child module as an attribute of its parent (spec.md §4.7 "a.b.c loads a,
// then a.b, then a.b.c, each time attaching the child as an attribute of
// the parent"). Returns the leaf module (the one named by the full dotted
// name), matching `import a.b.c` binding `a` in the importing namespace
// while IMPORT_NAME's caller decides whether to keep the leaf or the root.
func (c *Chain) Import(name string) (*pyobj.Object, error) {
	parts := strings.Split(name, ".")
	var parent *pyobj.Object
	prefix := ""
	for i, part := range parts {
		if prefix == "" {
			prefix = part
		} else {
			prefix = prefix + "." + part
		}
		mod, err := c.loadOne(prefix)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			parent.SetAttribute(part, mod)
		}
		parent = mod
		_ = i
	}
	return parent, nil
}

// loadOne resolves exactly one fully-qualified (dotted) component name
// against the registry, running its top-level code exactly once. Providers
// whose loading can recurse back into an Import of the same name (source,
// compiled) call Chain.reserve themselves before executing top-level code,
// so a cyclic import observes the partially-populated module here rather
// than re-entering TryLoad; providers with no such risk (native) simply
// return a finished module and loadOne registers it after the fact.
func (c *Chain) loadOne(fullName string) (*pyobj.Object, error) {
	if e, ok := c.registry[fullName]; ok {
		return e.mod, nil
	}
	for _, p := range c.providers {
		mod, ok, err := p.TryLoad(fullName)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, already := c.registry[fullName]; !already {
			c.registry[fullName] = &entry{mod: mod, state: stateReady}
		}
		return mod, nil
	}
	return nil, &pyobj.PyError{Exc: pyobj.NewException(pyobj.ModuleNotFoundErrorType, "No module named '"+fullName+"'")}
}

// Registered reports whether fullName has already been loaded, the
// equivalent of a `name in sys.modules` check.
func (c *Chain) Registered(fullName string) (*pyobj.Object, bool) {
	e, ok := c.registry[fullName]
	if !ok {
		return nil, false
	}
	return e.mod, true
}

// reserve marks fullName as currently initializing before running its
// top-level code, so a reentrant import of the same name (a true import
// cycle) observes the partially-populated module object instead of
// recursing into loadOne again. Used by SourceProvider/CompiledProvider.
func (c *Chain) reserve(fullName string, mod *pyobj.Object) {
	c.registry[fullName] = &entry{mod: mod, state: stateInitializing}
}

func (c *Chain) markReady(fullName string) {
	if e, ok := c.registry[fullName]; ok {
		e.state = stateReady
	}
}
