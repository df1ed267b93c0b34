package pyobj

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAttributeThenGetAttributeRoundTrip(t *testing.T) {
	o := &Object{Kind: KindInstance, Class: ObjectType}
	o.SetAttribute("x", Int(1))
	o.SetAttribute("x", Int(2))

	v, ok := o.GetAttribute("x")
	require.True(t, ok)
	require.Equal(t, int64(2), v.Int, "last write must win")
}

func TestGetAttributeOwnMapShadowsPrototype(t *testing.T) {
	parent := &Object{Kind: KindInstance, Class: ObjectType}
	parent.SetAttribute("name", Str("parent"))

	child := &Object{Kind: KindInstance, Class: ObjectType, Proto: []*Object{parent}}
	v, ok := child.GetAttribute("name")
	require.True(t, ok)
	require.Equal(t, "parent", v.Str)

	child.SetAttribute("name", Str("child"))
	v, ok = child.GetAttribute("name")
	require.True(t, ok)
	require.Equal(t, "child", v.Str, "own attribute map must shadow the prototype chain")
}

func TestMultiParentPrototypeChainFirstWins(t *testing.T) {
	a := &Object{Kind: KindInstance, Class: ObjectType}
	a.SetAttribute("who", Str("a"))
	b := &Object{Kind: KindInstance, Class: ObjectType}
	b.SetAttribute("who", Str("b"))

	child := &Object{Kind: KindInstance, Class: ObjectType, Proto: []*Object{a, b}}
	v, ok := child.GetAttribute("who")
	require.True(t, ok)
	require.Equal(t, "a", v.Str, "first parent in Proto must win when both define the name")
}

func TestGetAttributeMissingReturnsFalse(t *testing.T) {
	o := &Object{Kind: KindInstance, Class: ObjectType}
	_, ok := o.GetAttribute("nope")
	require.False(t, ok)
}

func TestDeleteAttribute(t *testing.T) {
	o := &Object{Kind: KindInstance, Class: ObjectType}
	o.SetAttribute("x", Int(1))
	require.True(t, o.DeleteAttribute("x"))
	_, ok := o.GetAttribute("x")
	require.False(t, ok)
	require.False(t, o.DeleteAttribute("x"), "deleting twice reports no-op")
}

func TestIsInstanceWalksClassChain(t *testing.T) {
	base := &Object{Kind: KindType, Class: TypeType, TypeDef: &TypeDef{Name: "Base"}}
	derived := &Object{Kind: KindType, Class: TypeType, TypeDef: &TypeDef{Name: "Derived"}, Proto: []*Object{base}}
	inst := &Object{Kind: KindInstance, Class: derived}

	require.True(t, inst.IsInstance(derived))
	require.True(t, inst.IsInstance(base))
}

func TestSmallIntInterning(t *testing.T) {
	a := Int(5)
	b := Int(5)
	require.Same(t, a, b, "small ints in the interned range must be identity-equal")
}

func TestNoneAndBoolSingletons(t *testing.T) {
	require.Same(t, None, None)
	require.True(t, Bool(true) == True)
	require.True(t, Bool(false) == False)
}
