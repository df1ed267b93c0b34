// Package nativeconv converts between Go reflect.Values and *pyobj.Object
// for native modules generated by cmd/gennative, the equivalent of the
// teacher's grumpy.WrapNative (runtime/native.go) scoped down to the
// handful of primitive kinds spec.md's supported Python surface actually
// has values for (int, float, string, bool) -- this runtime has no
// interface{}-boxed "native Go object" kind the way grumpy's reflection
// wrapper does, so arbitrary struct/interface values are out of scope and
// reported as a TypeError rather than silently boxed.
package nativeconv

import (
	"reflect"

	"github.com/gamarino/protoPython-sub000/pyobj"
)

// ToPy converts a reflected Go value into the nearest pyobj representation.
func ToPy(v reflect.Value) (*pyobj.Object, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return pyobj.None, nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Bool:
		return pyobj.Bool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return pyobj.Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return pyobj.Int(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return pyobj.Float(v.Float()), nil
	case reflect.String:
		return pyobj.Str(v.String()), nil
	case reflect.Slice, reflect.Array:
		items := make([]*pyobj.Object, v.Len())
		for i := range items {
			item, err := ToPy(v.Index(i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return pyobj.NewList(items), nil
	default:
		return nil, pyobj.Raise(pyobj.TypeErrorType, "cannot convert Go value of kind %s to a Python object", v.Kind())
	}
}

// FromPy converts a *pyobj.Object argument to the reflect.Value a native Go
// function parameter of type want expects.
func FromPy(o *pyobj.Object, want reflect.Type) (reflect.Value, error) {
	switch want.Kind() {
	case reflect.Bool:
		if o.Kind != pyobj.KindBool {
			return reflect.Value{}, pyobj.Raise(pyobj.TypeErrorType, "expected bool, got %s", o.Kind)
		}
		return reflect.ValueOf(o.Bool), nil
	case reflect.String:
		if o.Kind != pyobj.KindStr {
			return reflect.Value{}, pyobj.Raise(pyobj.TypeErrorType, "expected str, got %s", o.Kind)
		}
		return reflect.ValueOf(o.Str), nil
	case reflect.Float32, reflect.Float64:
		f, err := asFloat(o)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(want), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if o.Kind != pyobj.KindInt {
			return reflect.Value{}, pyobj.Raise(pyobj.TypeErrorType, "expected int, got %s", o.Kind)
		}
		return reflect.ValueOf(o.Int).Convert(want), nil
	default:
		return reflect.Value{}, pyobj.Raise(pyobj.TypeErrorType, "unsupported native parameter kind %s", want.Kind())
	}
}

func asFloat(o *pyobj.Object) (float64, error) {
	switch o.Kind {
	case pyobj.KindFloat:
		return o.Float, nil
	case pyobj.KindInt:
		return float64(o.Int), nil
	default:
		return 0, pyobj.Raise(pyobj.TypeErrorType, "expected a number, got %s", o.Kind)
	}
}

// CallFunc invokes fn (an exported Go func, possibly with a non-pointer
// receiver already bound via reflect.ValueOf(mod.Func)) with args converted
// from Python call arguments, and converts its first return value back (a
// (T, error)-returning Go func has its error treated as a Go-level native
// failure, the same way env's own NativeFuncs surface host errors).
func CallFunc(fn reflect.Value, args []*pyobj.Object) (*pyobj.Object, error) {
	t := fn.Type()
	if t.NumIn() != len(args) {
		return nil, pyobj.Raise(pyobj.TypeErrorType, "native function takes %d arguments but %d were given", t.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		v, err := FromPy(a, t.In(i))
		if err != nil {
			return nil, err
		}
		in[i] = v
	}
	out := fn.Call(in)
	if len(out) == 0 {
		return pyobj.None, nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(errType) && !last.IsNil() {
		return nil, pyobj.Raise(pyobj.OSErrorType, "%v", last.Interface())
	}
	if len(out) == 1 && out[0].Type().Implements(errType) {
		return pyobj.None, nil
	}
	return ToPy(out[0])
}

var errType = reflect.TypeOf((*error)(nil)).Elem()
