package pyobj

// NewModule creates a module namespace object. A module's globals are just
// its own attribute map, so LOAD_GLOBAL/STORE_GLOBAL in the vm package can
// use GetAttribute/SetAttribute directly against it (spec.md §4.7 "a
// module's namespace is a plain attribute dict").
func NewModule(name string) *Object {
	m := &Object{Kind: KindModule, Class: ModuleType}
	m.SetAttribute("__name__", Str(name))
	return m
}

// ModuleName returns a module's __name__, or "" if unset.
func ModuleName(m *Object) string {
	if v, ok := m.GetAttribute("__name__"); ok && v.Kind == KindStr {
		return v.Str
	}
	return ""
}
