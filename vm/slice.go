package vm

import "github.com/gamarino/protoPython-sub000/pyobj"

// SliceObject is the Extra payload of a BUILD_SLICE result: a slice literal
// `lower:upper:step`, any component possibly None.
type SliceObject struct {
	Lower, Upper, Step *pyobj.Object
}

// NewSlice wraps a slice literal's three components as an Object usable as
// a BINARY_SUBSCR index.
func NewSlice(lower, upper, step *pyobj.Object) *pyobj.Object {
	o := pyobj.New(pyobj.KindInstance, nil)
	o.Extra = &SliceObject{Lower: lower, Upper: upper, Step: step}
	return o
}

func sliceBounds(sl *SliceObject, length int) (start, stop, step int) {
	step = 1
	if sl.Step != nil && sl.Step.Kind != pyobj.KindNone {
		step = int(asInt(sl.Step))
	}
	if step == 0 {
		step = 1
	}
	if step > 0 {
		start, stop = 0, length
	} else {
		start, stop = length-1, -1
	}
	if sl.Lower != nil && sl.Lower.Kind != pyobj.KindNone {
		start = clampIndex(int(asInt(sl.Lower)), length, step)
	}
	if sl.Upper != nil && sl.Upper.Kind != pyobj.KindNone {
		stop = clampIndex(int(asInt(sl.Upper)), length, step)
	}
	return start, stop, step
}

func clampIndex(i, length, step int) int {
	if i < 0 {
		i += length
	}
	if step > 0 {
		if i < 0 {
			i = 0
		}
		if i > length {
			i = length
		}
	} else {
		if i < -1 {
			i = -1
		}
		if i >= length {
			i = length - 1
		}
	}
	return i
}

// sliceSequence implements obj[slice] for the builtin sequence kinds.
func sliceSequence(f *Frame, obj *pyobj.Object, sl *SliceObject) (*pyobj.Object, error) {
	switch obj.Kind {
	case pyobj.KindList:
		items := pyobj.ListItems(obj)
		return pyobj.NewList(sliceItems(items, sl)), nil
	case pyobj.KindTuple:
		items := pyobj.TupleItems(obj)
		return pyobj.NewTuple(sliceItems(items, sl)), nil
	case pyobj.KindStr:
		runes := []rune(obj.Str)
		items := make([]*pyobj.Object, len(runes))
		for i, r := range runes {
			items[i] = pyobj.Str(string(r))
		}
		out := sliceItems(items, sl)
		s := ""
		for _, o := range out {
			s += o.Str
		}
		return pyobj.Str(s), nil
	default:
		return nil, f.RaiseType(pyobj.TypeErrorType, "'%s' object is not sliceable", obj.Kind)
	}
}

func sliceItems(items []*pyobj.Object, sl *SliceObject) []*pyobj.Object {
	start, stop, step := sliceBounds(sl, len(items))
	var out []*pyobj.Object
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, items[i])
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, items[i])
		}
	}
	return out
}
