package vm

import "github.com/gamarino/protoPython-sub000/pyobj"

// importName implements IMPORT_NAME: resolve a dotted module name through
// the thread's ModuleImporter (package importer/env owns the actual
// provider chain; vm only consumes the interface, per DESIGN.md's
// cycle-avoidance note under "Provider-chain ownership").
func (f *Frame) importName(name string) (*pyobj.Object, error) {
	if f.Thread == nil || f.Thread.Importer == nil {
		return nil, f.RaiseType(pyobj.ImportErrorType, "no module importer configured")
	}
	mod, err := f.Thread.Importer.Import(name)
	if err != nil {
		if pe, ok := err.(*pyobj.PyError); ok {
			return nil, f.Raise(pe.Exc)
		}
		return nil, f.RaiseType(pyobj.ModuleNotFoundErrorType, "No module named '%s'", name)
	}
	return mod, nil
}

// importStar implements IMPORT_STAR: bind every public attribute of mod
// (honoring an explicit __all__ if present) into globals.
func importStar(globals, mod *pyobj.Object) error {
	if all, ok := mod.GetAttribute("__all__"); ok {
		switch all.Kind {
		case pyobj.KindList:
			for _, n := range pyobj.ListItems(all) {
				if v, ok := mod.GetAttribute(n.Str); ok {
					globals.SetAttribute(n.Str, v)
				}
			}
			return nil
		case pyobj.KindTuple:
			for _, n := range pyobj.TupleItems(all) {
				if v, ok := mod.GetAttribute(n.Str); ok {
					globals.SetAttribute(n.Str, v)
				}
			}
			return nil
		}
	}
	if mod.Attrs == nil {
		return nil
	}
	for _, k := range mod.Attrs.Keys() {
		name := k.(string)
		if len(name) > 0 && name[0] == '_' {
			continue
		}
		if v, ok := mod.GetAttribute(name); ok {
			globals.SetAttribute(name, v)
		}
	}
	return nil
}
