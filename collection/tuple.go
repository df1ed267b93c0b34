package collection

// Tuple is an immutable fixed-length sequence. Unlike List it never needs
// copy-on-write mutation, so it's just a plain slice wrapper; the value is
// still exposed as a handle type for symmetry with List/Sparse/Set.
type Tuple struct {
	values []interface{}
}

// NewTuple copies values into a new Tuple.
func NewTuple(values ...interface{}) *Tuple {
	cp := append([]interface{}(nil), values...)
	return &Tuple{values: cp}
}

// Len returns the number of elements.
func (t *Tuple) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// At returns the element at index i.
func (t *Tuple) At(i int) interface{} {
	return t.values[i]
}

// Slice returns the tuple's contents as a Go slice. Callers must not mutate
// the result; it aliases the Tuple's backing array.
func (t *Tuple) Slice() []interface{} {
	if t == nil {
		return nil
	}
	return t.values
}
