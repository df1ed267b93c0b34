package vm

import (
	"strings"

	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
)

// BinaryOp implements the BINARY_*/INPLACE_* family for the builtin numeric
// and sequence kinds, falling back to the left operand's __op__ dunder (and
// the right operand's reflected __rop__) for instances, the same
// left-then-reflected search order CPython uses.
func BinaryOp(f *Frame, op bytecode.Op, l, r *pyobj.Object) (*pyobj.Object, error) {
	if isNumeric(l) && isNumeric(r) {
		return numericBinOp(f, op, l, r)
	}
	if op == bytecode.BINARY_ADD || op == bytecode.INPLACE_ADD {
		if l.Kind == pyobj.KindStr && r.Kind == pyobj.KindStr {
			return pyobj.Str(l.Str + r.Str), nil
		}
		if l.Kind == pyobj.KindList && r.Kind == pyobj.KindList {
			return pyobj.NewList(append(pyobj.ListItems(l), pyobj.ListItems(r)...)), nil
		}
		if l.Kind == pyobj.KindTuple && r.Kind == pyobj.KindTuple {
			return pyobj.NewTuple(append(pyobj.TupleItems(l), pyobj.TupleItems(r)...)), nil
		}
	}
	if op == bytecode.BINARY_MULTIPLY || op == bytecode.INPLACE_MULTIPLY {
		if l.Kind == pyobj.KindStr && r.Kind == pyobj.KindInt {
			return pyobj.Str(strings.Repeat(l.Str, int(r.Int))), nil
		}
		if l.Kind == pyobj.KindList && r.Kind == pyobj.KindInt {
			items := pyobj.ListItems(l)
			out := make([]*pyobj.Object, 0, len(items)*int(r.Int))
			for i := int64(0); i < r.Int; i++ {
				out = append(out, items...)
			}
			return pyobj.NewList(out), nil
		}
	}
	if name, ok := dunderName(op); ok {
		if slot, ok := l.GetAttribute(name); ok {
			return Call(f, slot, []*pyobj.Object{r}, nil)
		}
		if slot, ok := r.GetAttribute("__r" + name[2:]); ok {
			return Call(f, slot, []*pyobj.Object{l}, nil)
		}
	}
	return nil, f.RaiseType(pyobj.TypeErrorType, "unsupported operand type(s) for %s: '%s' and '%s'", op, l.Kind, r.Kind)
}

func isNumeric(o *pyobj.Object) bool {
	return o.Kind == pyobj.KindInt || o.Kind == pyobj.KindFloat || o.Kind == pyobj.KindBool
}

func asFloat(o *pyobj.Object) float64 {
	switch o.Kind {
	case pyobj.KindFloat:
		return o.Float
	case pyobj.KindBool:
		if o.Bool {
			return 1
		}
		return 0
	default:
		return float64(o.Int)
	}
}

func asInt(o *pyobj.Object) int64 {
	switch o.Kind {
	case pyobj.KindBool:
		if o.Bool {
			return 1
		}
		return 0
	default:
		return o.Int
	}
}

func numericBinOp(f *Frame, op bytecode.Op, l, r *pyobj.Object) (*pyobj.Object, error) {
	useFloat := l.Kind == pyobj.KindFloat || r.Kind == pyobj.KindFloat
	switch op {
	case bytecode.BINARY_ADD, bytecode.INPLACE_ADD:
		if useFloat {
			return pyobj.Float(asFloat(l) + asFloat(r)), nil
		}
		return pyobj.Int(asInt(l) + asInt(r)), nil
	case bytecode.BINARY_SUBTRACT, bytecode.INPLACE_SUBTRACT:
		if useFloat {
			return pyobj.Float(asFloat(l) - asFloat(r)), nil
		}
		return pyobj.Int(asInt(l) - asInt(r)), nil
	case bytecode.BINARY_MULTIPLY, bytecode.INPLACE_MULTIPLY:
		if useFloat {
			return pyobj.Float(asFloat(l) * asFloat(r)), nil
		}
		return pyobj.Int(asInt(l) * asInt(r)), nil
	case bytecode.BINARY_TRUE_DIVIDE, bytecode.INPLACE_TRUE_DIVIDE:
		if asFloat(r) == 0 {
			return nil, f.RaiseType(pyobj.ZeroDivisionErrorType, "division by zero")
		}
		return pyobj.Float(asFloat(l) / asFloat(r)), nil
	case bytecode.BINARY_FLOOR_DIVIDE, bytecode.INPLACE_FLOOR_DIVIDE:
		if asInt(r) == 0 && !useFloat {
			return nil, f.RaiseType(pyobj.ZeroDivisionErrorType, "integer division or modulo by zero")
		}
		if useFloat {
			return pyobj.Float(float64(int64(asFloat(l) / asFloat(r)))), nil
		}
		return pyobj.Int(floorDivInt(asInt(l), asInt(r))), nil
	case bytecode.BINARY_MODULO, bytecode.INPLACE_MODULO:
		if useFloat {
			lf, rf := asFloat(l), asFloat(r)
			if rf == 0 {
				return nil, f.RaiseType(pyobj.ZeroDivisionErrorType, "float modulo")
			}
			m := lf - rf*float64(int64(lf/rf))
			return pyobj.Float(m), nil
		}
		ri := asInt(r)
		if ri == 0 {
			return nil, f.RaiseType(pyobj.ZeroDivisionErrorType, "integer division or modulo by zero")
		}
		return pyobj.Int(floorModInt(asInt(l), ri)), nil
	case bytecode.BINARY_POWER, bytecode.INPLACE_POWER:
		if useFloat {
			return pyobj.Float(powFloat(asFloat(l), asFloat(r))), nil
		}
		return pyobj.Int(powInt(asInt(l), asInt(r))), nil
	case bytecode.BINARY_LSHIFT, bytecode.INPLACE_LSHIFT:
		return pyobj.Int(asInt(l) << uint(asInt(r))), nil
	case bytecode.BINARY_RSHIFT, bytecode.INPLACE_RSHIFT:
		return pyobj.Int(asInt(l) >> uint(asInt(r))), nil
	case bytecode.BINARY_AND, bytecode.INPLACE_AND:
		return pyobj.Int(asInt(l) & asInt(r)), nil
	case bytecode.BINARY_OR, bytecode.INPLACE_OR:
		return pyobj.Int(asInt(l) | asInt(r)), nil
	case bytecode.BINARY_XOR, bytecode.INPLACE_XOR:
		return pyobj.Int(asInt(l) ^ asInt(r)), nil
	}
	return nil, f.RaiseType(pyobj.TypeErrorType, "unsupported numeric operator %s", op)
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

func powInt(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func powFloat(base, exp float64) float64 {
	result := 1.0
	neg := exp < 0
	n := exp
	if neg {
		n = -n
	}
	for i := 0.0; i < n; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

func dunderName(op bytecode.Op) (string, bool) {
	switch op {
	case bytecode.BINARY_ADD, bytecode.INPLACE_ADD:
		return "__add__", true
	case bytecode.BINARY_SUBTRACT, bytecode.INPLACE_SUBTRACT:
		return "__sub__", true
	case bytecode.BINARY_MULTIPLY, bytecode.INPLACE_MULTIPLY:
		return "__mul__", true
	case bytecode.BINARY_TRUE_DIVIDE, bytecode.INPLACE_TRUE_DIVIDE:
		return "__truediv__", true
	case bytecode.BINARY_FLOOR_DIVIDE, bytecode.INPLACE_FLOOR_DIVIDE:
		return "__floordiv__", true
	case bytecode.BINARY_MODULO, bytecode.INPLACE_MODULO:
		return "__mod__", true
	case bytecode.BINARY_POWER, bytecode.INPLACE_POWER:
		return "__pow__", true
	default:
		return "", false
	}
}

// UnaryOp implements UNARY_*.
func UnaryOp(f *Frame, op bytecode.Op, v *pyobj.Object) (*pyobj.Object, error) {
	switch op {
	case bytecode.UNARY_NOT:
		return pyobj.Bool(!IsTrue(f, v)), nil
	case bytecode.UNARY_POSITIVE:
		if v.Kind == pyobj.KindFloat {
			return pyobj.Float(v.Float), nil
		}
		return pyobj.Int(asInt(v)), nil
	case bytecode.UNARY_NEGATIVE:
		if v.Kind == pyobj.KindFloat {
			return pyobj.Float(-v.Float), nil
		}
		return pyobj.Int(-asInt(v)), nil
	case bytecode.UNARY_INVERT:
		return pyobj.Int(^asInt(v)), nil
	default:
		return nil, f.RaiseType(pyobj.TypeErrorType, "bad unary operator %s", op)
	}
}

// IsTrue implements Python truthiness for the value protocol: an overridden
// __bool__ wins, otherwise pyobj.IsTruthy's structural rules apply.
func IsTrue(f *Frame, v *pyobj.Object) bool {
	if boolFn, ok := v.GetAttribute("__bool__"); ok {
		result, err := Call(f, boolFn, nil, nil)
		if err == nil {
			return pyobj.IsTruthy(result)
		}
	}
	return pyobj.IsTruthy(v)
}

// CompareValues implements COMPARE_OP's immediate sub-operators.
func CompareValues(f *Frame, cmp bytecode.CompareOp, l, r *pyobj.Object) (*pyobj.Object, error) {
	switch cmp {
	case bytecode.CmpEQ:
		return pyobj.Bool(valuesEqual(f, l, r)), nil
	case bytecode.CmpNE:
		return pyobj.Bool(!valuesEqual(f, l, r)), nil
	}
	if !isNumeric(l) || !isNumeric(r) {
		if l.Kind == pyobj.KindStr && r.Kind == pyobj.KindStr {
			return pyobj.Bool(compareStrOp(cmp, l.Str, r.Str)), nil
		}
		return nil, f.RaiseType(pyobj.TypeErrorType, "'%s' not supported between instances of '%s' and '%s'", cmp, l.Kind, r.Kind)
	}
	lf, rf := asFloat(l), asFloat(r)
	switch cmp {
	case bytecode.CmpLT:
		return pyobj.Bool(lf < rf), nil
	case bytecode.CmpLE:
		return pyobj.Bool(lf <= rf), nil
	case bytecode.CmpGT:
		return pyobj.Bool(lf > rf), nil
	case bytecode.CmpGE:
		return pyobj.Bool(lf >= rf), nil
	}
	return nil, f.RaiseType(pyobj.TypeErrorType, "bad compare operator")
}

func compareStrOp(cmp bytecode.CompareOp, a, b string) bool {
	switch cmp {
	case bytecode.CmpLT:
		return a < b
	case bytecode.CmpLE:
		return a <= b
	case bytecode.CmpGT:
		return a > b
	case bytecode.CmpGE:
		return a >= b
	}
	return false
}

func valuesEqual(f *Frame, l, r *pyobj.Object) bool {
	if l.Kind != r.Kind {
		if isNumeric(l) && isNumeric(r) {
			return asFloat(l) == asFloat(r)
		}
		return false
	}
	switch l.Kind {
	case pyobj.KindNone:
		return true
	case pyobj.KindBool:
		return l.Bool == r.Bool
	case pyobj.KindInt:
		return l.Int == r.Int
	case pyobj.KindFloat:
		return l.Float == r.Float
	case pyobj.KindStr, pyobj.KindBytes:
		return l.Str == r.Str
	case pyobj.KindTuple:
		li, ri := pyobj.TupleItems(l), pyobj.TupleItems(r)
		if len(li) != len(ri) {
			return false
		}
		for i := range li {
			if !valuesEqual(f, li[i], ri[i]) {
				return false
			}
		}
		return true
	case pyobj.KindList:
		li, ri := pyobj.ListItems(l), pyobj.ListItems(r)
		if len(li) != len(ri) {
			return false
		}
		for i := range li {
			if !valuesEqual(f, li[i], ri[i]) {
				return false
			}
		}
		return true
	default:
		if eqFn, ok := l.GetAttribute("__eq__"); ok {
			result, err := Call(f, eqFn, []*pyobj.Object{r}, nil)
			if err == nil {
				return pyobj.IsTruthy(result)
			}
		}
		return l == r
	}
}

// Contains implements the CONTAINS_OP family.
func Contains(f *Frame, container, item *pyobj.Object) (bool, error) {
	switch container.Kind {
	case pyobj.KindList:
		for _, v := range pyobj.ListItems(container) {
			if valuesEqual(f, v, item) {
				return true, nil
			}
		}
		return false, nil
	case pyobj.KindTuple:
		for _, v := range pyobj.TupleItems(container) {
			if valuesEqual(f, v, item) {
				return true, nil
			}
		}
		return false, nil
	case pyobj.KindSet:
		return pyobj.SetContains(container, item), nil
	case pyobj.KindDict:
		_, ok := pyobj.DictGetItem(container, item)
		return ok, nil
	case pyobj.KindStr:
		return strings.Contains(container.Str, item.Str), nil
	default:
		if containsFn, ok := container.GetAttribute("__contains__"); ok {
			result, err := Call(f, containsFn, []*pyobj.Object{item}, nil)
			if err != nil {
				return false, err
			}
			return pyobj.IsTruthy(result), nil
		}
		return false, f.RaiseType(pyobj.TypeErrorType, "argument of type '%s' is not iterable", container.Kind)
	}
}
