// Package pyobj implements the prototype-based object model of spec.md §3:
// every Python value (except the handful of tagged immediates cached below)
// is an *Object carrying a prototype chain, a class pointer, and an
// attribute map, instead of the teacher's single-inheritance *Type/slots
// table (runtime/object.go, runtime/type.go). The teacher's trick of
// interning small integers to dodge allocation (runtime/int.go's
// internedInts) stands in here for spec.md's literal tagged-pointer
// encoding, which Go cannot express safely without unsafe pointer
// arithmetic; DESIGN.md records this substitution.
package pyobj

import (
	"fmt"

	"github.com/gamarino/protoPython-sub000/collection"
)

// Kind discriminates an Object's payload, mirroring the fixed set of basis
// types the teacher hangs off reflect.Type (runtime/object.go's
// objectBasis) without needing reflection: this runtime has a closed set of
// primitive representations plus a generic "instance" kind for everything
// built out of class bodies.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBytes
	KindList
	KindTuple
	KindDict
	KindSet
	KindFunction
	KindNative
	KindType
	KindModule
	KindException
	KindInstance
	KindGenerator
	KindCell
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindFunction, KindNative:
		return "function"
	case KindType:
		return "type"
	case KindModule:
		return "module"
	case KindException:
		return "exception"
	case KindGenerator:
		return "generator"
	case KindCell:
		return "cell"
	case KindCode:
		return "code"
	default:
		return "instance"
	}
}

// NativeFunc is a builtin callable implemented in Go, the equivalent of the
// teacher's newBuiltinFunction closures (runtime/native.go).
type NativeFunc func(call *Call) (*Object, error)

// Call packages a call site's arguments, mirroring the teacher's
// Args/KWArgs pair (runtime/function.go) while staying free of any
// dependency on the vm package's Frame/Thread types.
type Call struct {
	Args    []*Object
	Kwargs  map[string]*Object
	Self    *Object // bound receiver, nil for free functions
	Closure interface{}
	// Frame is the calling *vm.Frame, stashed as interface{} so pyobj never
	// has to import vm. Natives that only touch their own Args/Kwargs (most
	// container methods) ignore it; natives that need to call back into
	// Python (print/str/sorted's key function) type-assert it, e.g.
	// `call.Frame.(vmFrame)` against a small same-package interface.
	Frame interface{}
}

// Object is the universal runtime value: every Python object, including
// classes and modules, is represented by one of these. Extra carries a
// payload owned by a higher layer (the vm package's compiled Code or
// generator/frame state) so pyobj never has to import vm.
type Object struct {
	Kind  Kind
	Proto []*Object // prototype chain, walked depth-first by GetAttribute
	Class *Object   // the object's "type()"; nil for the bootstrap Type objects
	Attrs *collection.Sparse

	Bool    bool
	Int     int64
	Float   float64
	Str     string
	List    *collection.List
	Tuple   *collection.Tuple
	Dict    *dictStorage
	Set     *collection.Set
	Native  NativeFunc
	TypeDef *TypeDef

	Extra interface{}
}

// TypeDef holds the bookkeeping for an Object of KindType: its name and the
// direct bases it was declared with (spec.md §3 "a type is itself an
// Object, constructed with one or more parent prototypes").
type TypeDef struct {
	Name  string
	Bases []*Object
}

// dictStorage wraps collection.Sparse with a value-equality comparator so
// dict keys compare by Python equality (Eq) rather than Go identity.
type dictStorage struct {
	entries *collection.Sparse
}

func newDictStorage() *dictStorage { return &dictStorage{entries: collection.NewSparse()} }

func attrEq(a, b interface{}) bool { return a.(string) == b.(string) }

func internString(s string) string { return internTable.Intern(s) }

// New constructs a bare Object of the given kind with the given class.
func New(kind Kind, class *Object) *Object {
	return &Object{Kind: kind, Class: class}
}

// GetAttribute looks up name on o: first in o's own attribute map, then by a
// depth-first walk of o's prototype chain (spec.md §3 "attribute lookup
// walks the prototype list in declaration order, depth-first"), applying
// the descriptor protocol (spec.md §4.6) when the found value's class
// defines __get__.
func (o *Object) GetAttribute(name string) (*Object, bool) {
	name = internString(name)
	// An object's own attribute map shadows the prototype chain outright
	// (spec.md §3): the descriptor protocol only fires for values found by
	// walking Proto/Class below, matching CPython's instance-dict-shadows-
	// non-data-descriptor rule closely enough for this runtime's purposes.
	// Without this split, a function stashed directly in a module's own
	// attrs (every builtin) would get spuriously bound to the module as
	// its receiver once FuncType grows a __get__.
	if v, ok := o.ownAttr(name); ok {
		return v, true
	}
	if v, ok := o.protoLookup(name, map[*Object]bool{}); ok {
		return applyGetDescriptor(v, o), true
	}
	return nil, false
}

func (o *Object) ownAttr(name string) (*Object, bool) {
	if o.Attrs == nil {
		return nil, false
	}
	v, ok := o.Attrs.Get(hashString(name), name, attrEq)
	if !ok {
		return nil, false
	}
	return v.(*Object), true
}

func (o *Object) protoLookup(name string, seen map[*Object]bool) (*Object, bool) {
	if seen[o] {
		return nil, false
	}
	seen[o] = true
	for _, p := range o.Proto {
		if v, ok := p.ownAttr(name); ok {
			return v, true
		}
		if v, ok := p.protoLookup(name, seen); ok {
			return v, true
		}
	}
	if o.Class != nil && o.Class != o {
		if v, ok := o.Class.ownAttr(name); ok {
			return v, true
		}
		if v, ok := o.Class.protoLookup(name, seen); ok {
			return v, true
		}
	}
	return nil, false
}

func applyGetDescriptor(v, instance *Object) *Object {
	if v.Class == nil {
		return v
	}
	get, ok := v.Class.ownAttr("__get__")
	if !ok {
		return v
	}
	if get.Kind != KindNative {
		return v
	}
	result, err := get.Native(&Call{Args: []*Object{v, instance}})
	if err != nil {
		return v
	}
	return result
}

// SetAttribute binds name to value directly on o's own attribute map. The
// prototype chain is not consulted, so a __set__ defined on the class of an
// inherited binding is never called.
func (o *Object) SetAttribute(name string, value *Object) {
	name = internString(name)
	if o.Attrs == nil {
		o.Attrs = collection.NewSparse()
	}
	o.Attrs = o.Attrs.SetAt(hashString(name), name, value, attrEq)
}

// DeleteAttribute removes name from o's own attribute map.
func (o *Object) DeleteAttribute(name string) bool {
	name = internString(name)
	if o.Attrs == nil {
		return false
	}
	if _, ok := o.Attrs.Get(hashString(name), name, attrEq); !ok {
		return false
	}
	o.Attrs = o.Attrs.RemoveAt(hashString(name), name, attrEq)
	return true
}

// IsInstance reports whether o's class is t or a descendant of t in the
// prototype/base chain.
func (o *Object) IsInstance(t *Object) bool {
	if o.Class == nil {
		return false
	}
	return classIsSubclass(o.Class, t, map[*Object]bool{})
}

func classIsSubclass(c, t *Object, seen map[*Object]bool) bool {
	if c == t {
		return true
	}
	if seen[c] {
		return false
	}
	seen[c] = true
	if c.TypeDef == nil {
		return false
	}
	for _, base := range c.TypeDef.Bases {
		if classIsSubclass(base, t, seen) {
			return true
		}
	}
	for _, p := range c.Proto {
		if classIsSubclass(p, t, seen) {
			return true
		}
	}
	return false
}

func hashString(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// GoString renders a debugging form, used by %v-style diagnostics; it never
// invokes user __repr__, unlike Repr in the vm package.
func (o *Object) GoString() string {
	if o == nil {
		return "<nil>"
	}
	switch o.Kind {
	case KindNone:
		return "None"
	case KindBool:
		return fmt.Sprintf("%v", o.Bool)
	case KindInt:
		return fmt.Sprintf("%d", o.Int)
	case KindFloat:
		return fmt.Sprintf("%g", o.Float)
	case KindStr:
		return fmt.Sprintf("%q", o.Str)
	default:
		return fmt.Sprintf("<%s object>", o.Kind)
	}
}
