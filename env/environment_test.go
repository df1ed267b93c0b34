package env

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamarino/protoPython-sub000/pyobj"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it, used to assert on the output of builtinPrint
// (which writes straight to the process's stdout the way CPython's print()
// ultimately does).
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func newTestEnv() *Environment {
	return New(Options{})
}

// The numbered scenarios below mirror spec.md §8's "End-to-end scenarios"
// literally: given source, the expected stdout/exit behavior.

func TestScenario1PrintArithmetic(t *testing.T) {
	e := newTestEnv()
	out := captureStdout(t, func() {
		_, err := e.RunSource(`print(1 + 2)`, "<test>")
		require.NoError(t, err)
	})
	require.Equal(t, "3\n", out)
}

func TestScenario2ListAppendSum(t *testing.T) {
	e := newTestEnv()
	out := captureStdout(t, func() {
		_, err := e.RunSource(`x = [1,2,3]
x.append(4)
print(sum(x))`, "<test>")
		require.NoError(t, err)
	})
	require.Equal(t, "10\n", out)
}

func TestScenario3DictLenAndIndex(t *testing.T) {
	e := newTestEnv()
	out := captureStdout(t, func() {
		_, err := e.RunSource(`d = {"a":1}
d["b"] = 2
print(len(d), d["a"]+d["b"])`, "<test>")
		require.NoError(t, err)
	})
	require.Equal(t, "2 3\n", out)
}

func TestScenario4RecursiveFib(t *testing.T) {
	e := newTestEnv()
	out := captureStdout(t, func() {
		_, err := e.RunSource("def fib(n):\n    return n if n<2 else fib(n-1)+fib(n-2)\nprint(fib(10))", "<test>")
		require.NoError(t, err)
	})
	require.Equal(t, "55\n", out)
}

func TestScenario5GeneratorYields(t *testing.T) {
	e := newTestEnv()
	out := captureStdout(t, func() {
		_, err := e.RunSource("def g():\n    yield 1\n    yield 2\nprint(list(g()))", "<test>")
		require.NoError(t, err)
	})
	require.Equal(t, "[1, 2]\n", out)
}

func TestScenario6TryExceptCatchesValueError(t *testing.T) {
	e := newTestEnv()
	out := captureStdout(t, func() {
		_, err := e.RunSource("try:\n    raise ValueError(\"x\")\nexcept ValueError as e:\n    print(e.args[0])", "<test>")
		require.NoError(t, err)
	})
	require.Equal(t, "x\n", out)
}

func TestScenario7SysExitSetsCode(t *testing.T) {
	e := newTestEnv()
	SetArgv([]string{"<test>"})
	_, err := e.RunSource(`import sys
sys.exit(3)`, "<test>")
	require.Error(t, err)
	pe, ok := err.(*pyobj.PyError)
	require.True(t, ok)
	require.Equal(t, pyobj.SystemExitType, pe.Exc.Class)
	code, ok := pe.Exc.GetAttribute("code")
	require.True(t, ok)
	require.Equal(t, int64(3), code.Int)
}

func TestScenario8UndefinedNameRaisesNameError(t *testing.T) {
	e := newTestEnv()
	_, err := e.RunSource(`print(undefined_name)`, "<test>")
	require.Error(t, err)
	pe, ok := err.(*pyobj.PyError)
	require.True(t, ok)
	require.Equal(t, pyobj.NameErrorType, pe.Exc.Class)
	require.Contains(t, pyobj.ExceptionMessage(pe.Exc), "undefined_name")
}

func TestEmptyModuleLeavesNoPendingException(t *testing.T) {
	e := newTestEnv()
	_, err := e.RunSource("", "<test>")
	require.NoError(t, err)
}

func TestResolveFallsThroughToBuiltins(t *testing.T) {
	e := newTestEnv()
	mod := pyobj.NewModule("empty")
	v, ok := e.Resolve(mod, "len")
	require.True(t, ok)
	require.Equal(t, pyobj.KindNative, v.Kind)
}

func TestTwoEnvironmentsAreIndependent(t *testing.T) {
	e1 := newTestEnv()
	e2 := newTestEnv()
	require.NotEqual(t, e1.ID, e2.ID)
	_, err := e1.RunSource(`x = 1`, "<test>")
	require.NoError(t, err)
}
