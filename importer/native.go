package importer

import "github.com/gamarino/protoPython-sub000/pyobj"

// NativeProvider is the registry of built-in modules populated at
// environment init (spec.md §4.7 "native provider with a registry of
// built-in modules populated at init"). A native module has no source file
// and cannot import-cycle into itself, so it is never reserved early: its
// builder simply runs to completion and the result is registered by
// Chain.loadOne.
type NativeProvider struct {
	builders map[string]func() (*pyobj.Object, error)
}

// NewNativeProvider creates a native module registry seeded with every
// builder registered through RegisterGenerated (typically by a blank
// import of a cmd/gennative-generated package, the way Go database drivers
// self-register with database/sql via init()).
func NewNativeProvider() *NativeProvider {
	p := &NativeProvider{builders: map[string]func() (*pyobj.Object, error){}}
	for name, build := range generatedBuilders {
		p.builders[name] = build
	}
	return p
}

// generatedBuilders holds builders contributed by generated packages before
// any Environment exists, since a generated package's init() runs at
// program startup, well before env.New is called.
var generatedBuilders = map[string]func() (*pyobj.Object, error){}

// RegisterGenerated adds a builder to the process-wide generated-module
// registry. Called from the init() of a cmd/gennative-emitted package; the
// generated file picks the module name, this package just remembers it
// until the next NativeProvider is constructed.
func RegisterGenerated(name string, build func() (*pyobj.Object, error)) {
	generatedBuilders[name] = build
}

// Register adds a builder for a built-in module name (e.g. "sys", "math").
// cmd/gennative emits calls shaped like this one from reflecting over an
// arbitrary Go package's exported symbols.
func (p *NativeProvider) Register(name string, build func() (*pyobj.Object, error)) {
	p.builders[name] = build
}

// TryLoad implements Provider.
func (p *NativeProvider) TryLoad(name string) (*pyobj.Object, bool, error) {
	build, ok := p.builders[name]
	if !ok {
		return nil, false, nil
	}
	mod, err := build()
	if err != nil {
		return nil, false, err
	}
	return mod, true, nil
}
