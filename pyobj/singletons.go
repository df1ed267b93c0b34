package pyobj

import "github.com/gamarino/protoPython-sub000/space"

// internTable backs attribute-name interning (object.go's internString) so
// that two equal attribute names always compare pointer-identical once
// interned, same effect as the teacher's string cache without needing the
// Space's GC bookkeeping in this package.
var internTable = space.NewInternTable()

// NoneType/None and the True/False singletons are created once and reused,
// the same trick runtime/int.go uses for internedInts — spec.md's tagged
// immediates collapse to a reuse-the-singleton-object discipline here.
var (
	// ObjectType is the root of every prototype chain (spec.md §3 "every
	// instance's prototype chain ends at object"); TypeType is its own
	// __class__ and ObjectType's __class__ is TypeType, the two invariants
	// spec.md §3 calls out under "Types as objects".
	ObjectType = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "object"}}
	NoneType  = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "NoneType"}}
	None      = &Object{Kind: KindNone, Class: NoneType}
	BoolType  = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "bool"}}
	True      = &Object{Kind: KindBool, Bool: true, Class: BoolType}
	False     = &Object{Kind: KindBool, Bool: false, Class: BoolType}
	IntType   = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "int"}}
	FloatType = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "float"}}
	StrType   = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "str"}}
	BytesType = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "bytes"}}
	ListType  = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "list"}}
	TupleType = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "tuple"}}
	DictType  = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "dict"}}
	SetType   = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "set"}}
	FuncType  = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "function"}}
	TypeType  = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "type"}}
	ModuleType = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "module"}}
	GeneratorType = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "generator"}}
	CellType  = &Object{Kind: KindType, TypeDef: &TypeDef{Name: "cell"}}
)

const (
	internedIntMin = -5
	internedIntMax = 256
)

var internedInts [internedIntMax - internedIntMin + 1]*Object

func init() {
	for i := range internedInts {
		internedInts[i] = &Object{Kind: KindInt, Int: int64(i + internedIntMin), Class: IntType}
	}
	ObjectType.Class = TypeType
	TypeType.Class = TypeType
	TypeType.Proto = []*Object{ObjectType}
	for _, t := range []*Object{NoneType, BoolType, IntType, FloatType, StrType, BytesType,
		ListType, TupleType, DictType, SetType, FuncType, ModuleType, GeneratorType, CellType} {
		t.Class = TypeType
		t.Proto = []*Object{ObjectType}
	}
}

// Bool returns the canonical True or False object.
func Bool(v bool) *Object {
	if v {
		return True
	}
	return False
}

// Int returns an Object for v, reusing the interned small-int cache for the
// common range (-5..256), the same window CPython itself caches.
func Int(v int64) *Object {
	if v >= internedIntMin && v <= internedIntMax {
		return internedInts[v-internedIntMin]
	}
	return &Object{Kind: KindInt, Int: v, Class: IntType}
}

// Float returns a new float Object; floats are never interned since equal
// float values are comparatively rare in practice (spec.md §3 notes only
// int/bool/None/short strings as interning candidates).
func Float(v float64) *Object {
	return &Object{Kind: KindFloat, Float: v, Class: FloatType}
}

// Str returns an Object for s, interning its Go string content when it
// qualifies under space.ShortStringThreshold.
func Str(s string) *Object {
	return &Object{Kind: KindStr, Str: internString(s), Class: StrType}
}

// Bytes returns a bytes Object (stored as a Go string of raw bytes).
func Bytes(b []byte) *Object {
	return &Object{Kind: KindBytes, Str: string(b), Class: BytesType}
}

// IsTruthy implements Python truthiness without invoking user __bool__
// (callers needing the full protocol go through the vm package's IsTrue,
// which falls back to this after checking for an overridden slot).
func IsTruthy(o *Object) bool {
	switch o.Kind {
	case KindNone:
		return false
	case KindBool:
		return o.Bool
	case KindInt:
		return o.Int != 0
	case KindFloat:
		return o.Float != 0
	case KindStr, KindBytes:
		return len(o.Str) != 0
	case KindList:
		return o.List.Len() != 0
	case KindTuple:
		return o.Tuple.Len() != 0
	case KindDict:
		return o.Dict != nil && o.Dict.entries.Len() != 0
	case KindSet:
		return o.Set.Len() != 0
	default:
		return true
	}
}
