package vm

import "github.com/gamarino/protoPython-sub000/pyobj"

// Subscript implements BINARY_SUBSCR: obj[index]. A Slice object selects a
// sub-sequence; anything else is a key/index lookup.
func Subscript(f *Frame, obj, index *pyobj.Object) (*pyobj.Object, error) {
	if sl, ok := index.Extra.(*SliceObject); ok && index.Kind == pyobj.KindInstance {
		return sliceSequence(f, obj, sl)
	}
	switch obj.Kind {
	case pyobj.KindList:
		i, err := normalizeIndex(f, obj.List.Len(), index)
		if err != nil {
			return nil, err
		}
		return obj.List.At(i).(*pyobj.Object), nil
	case pyobj.KindTuple:
		i, err := normalizeIndex(f, obj.Tuple.Len(), index)
		if err != nil {
			return nil, err
		}
		return obj.Tuple.At(i).(*pyobj.Object), nil
	case pyobj.KindStr:
		runes := []rune(obj.Str)
		i, err := normalizeIndex(f, len(runes), index)
		if err != nil {
			return nil, err
		}
		return pyobj.Str(string(runes[i])), nil
	case pyobj.KindDict:
		v, ok := pyobj.DictGetItem(obj, index)
		if !ok {
			return nil, f.RaiseType(pyobj.KeyErrorType, "%s", Repr(f, index))
		}
		return v, nil
	default:
		getItem, ok := obj.GetAttribute("__getitem__")
		if !ok {
			return nil, f.RaiseType(pyobj.TypeErrorType, "'%s' object is not subscriptable", obj.Kind)
		}
		return Call(f, getItem, []*pyobj.Object{index}, nil)
	}
}

// SetSubscript implements STORE_SUBSCR: obj[index] = val.
func SetSubscript(f *Frame, obj, index, val *pyobj.Object) error {
	switch obj.Kind {
	case pyobj.KindList:
		i, err := normalizeIndex(f, obj.List.Len(), index)
		if err != nil {
			return err
		}
		obj.List = obj.List.SetAt(i, val)
		return nil
	case pyobj.KindDict:
		*obj = *pyobj.DictSetItem(obj, index, val)
		return nil
	default:
		setItem, ok := obj.GetAttribute("__setitem__")
		if !ok {
			return f.RaiseType(pyobj.TypeErrorType, "'%s' object does not support item assignment", obj.Kind)
		}
		_, err := Call(f, setItem, []*pyobj.Object{index, val}, nil)
		return err
	}
}

// DeleteSubscript implements DELETE_SUBSCR: del obj[index].
func DeleteSubscript(f *Frame, obj, index *pyobj.Object) error {
	switch obj.Kind {
	case pyobj.KindList:
		i, err := normalizeIndex(f, obj.List.Len(), index)
		if err != nil {
			return err
		}
		obj.List = obj.List.RemoveAt(i)
		return nil
	case pyobj.KindDict:
		*obj = *pyobj.DictDelItem(obj, index)
		return nil
	default:
		delItem, ok := obj.GetAttribute("__delitem__")
		if !ok {
			return f.RaiseType(pyobj.TypeErrorType, "'%s' object does not support item deletion", obj.Kind)
		}
		_, err := Call(f, delItem, []*pyobj.Object{index}, nil)
		return err
	}
}

func normalizeIndex(f *Frame, length int, index *pyobj.Object) (int, error) {
	if index.Kind != pyobj.KindInt && index.Kind != pyobj.KindBool {
		return 0, f.RaiseType(pyobj.TypeErrorType, "indices must be integers")
	}
	i := int(asInt(index))
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, f.RaiseType(pyobj.IndexErrorType, "index out of range")
	}
	return i, nil
}
