// Command gennative generates a native-module registration package from an
// arbitrary importable Go package, adapted from the teacher's
// tools/pkgc.go wrapper generator (_examples/google-grumpy/tools/pkgc.go).
// Where pkgc emits a `__go__/<path>` module calling grumpy.WrapNative,
// gennative emits a package whose init()
// calls importer.RegisterGenerated against this runtime's native provider
// API (spec.md §4.7's "native provider with a registry of built-in modules
// populated at init"), since this runtime has no Go-interop import syntax
// in scope -- see DESIGN.md for what else changed.
//
// usage: gennative PACKAGE > generated_<name>.go
package main

import (
	"bytes"
	"fmt"
	"go/constant"
	"go/importer"
	"go/types"
	"math"
	"os"
	"path"
)

const packageTemplate = `// Code generated by cmd/gennative from %[2]q. DO NOT EDIT.
package %[1]s

import (
	"reflect"

	mod %[2]q

	pyimporter "github.com/gamarino/protoPython-sub000/importer"
	"github.com/gamarino/protoPython-sub000/nativeconv"
	"github.com/gamarino/protoPython-sub000/pyobj"
)

func init() {
	pyimporter.RegisterGenerated(%[2]q, build)
}

func build() (*pyobj.Object, error) {
	m := pyobj.NewModule(%[2]q)
%[3]s
	return m, nil
}
`

const funcTemplate = `	m.SetAttribute(%[1]q, pyobj.NewNative(%[1]q, func(call *pyobj.Call) (*pyobj.Object, error) {
		return nativeconv.CallFunc(reflect.ValueOf(mod.%[1]s), call.Args)
	}))
`

const varTemplate = `	if v, err := nativeconv.ToPy(reflect.ValueOf(%[1]s)); err != nil {
		return nil, err
	} else {
		m.SetAttribute(%[2]q, v)
	}
`

func getConst(name string, v constant.Value) string {
	format := "%s"
	switch v.Kind() {
	case constant.Int:
		if i, exact := constant.Uint64Val(v); exact && i > math.MaxInt64 {
			format = "uint64(%s)"
		}
	case constant.Float:
		format = "float64(%s)"
	}
	return fmt.Sprintf(format, name)
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: gennative PACKAGE")
		os.Exit(1)
	}
	pkgPath := os.Args[1]
	pkg, err := importer.Default().Import(pkgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to import %q: %v\n", pkgPath, err)
		os.Exit(2)
	}

	var buf bytes.Buffer
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		o := scope.Lookup(name)
		if !o.Exported() {
			continue
		}
		switch x := o.(type) {
		case *types.Func:
			buf.WriteString(fmt.Sprintf(funcTemplate, name))
		case *types.Const:
			buf.WriteString(fmt.Sprintf(varTemplate, getConst("mod."+name, x.Val()), name))
		case *types.Var:
			buf.WriteString(fmt.Sprintf(varTemplate, "mod."+name, name))
		default:
			// Types (struct/interface definitions) have no pyobj
			// representation in this runtime's closed Kind set; skipped
			// rather than approximated.
		}
	}
	fmt.Printf(packageTemplate, path.Base(pkgPath), pkgPath, buf.Bytes())
}
