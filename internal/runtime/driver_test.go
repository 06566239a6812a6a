package runtime_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/executor"
	"github.com/tobix/bfprove/internal/runtime"
)

func newTestRuntime(t *testing.T, mode runtime.Mode) (*runtime.Runtime, *bytes.Buffer) {
	t.Helper()
	exec := executor.NewInterpreted() // deterministic across CI platforms; compiled backend is exercised in internal/jit
	var out bytes.Buffer
	return runtime.New(exec, mode, &out, &out), &out
}

func runLines(rt *runtime.Runtime, lines ...string) {
	for _, l := range lines {
		rt.HandleLine(l)
	}
}

func TestConstantQueryHolds(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Fast)
	runLines(rt, "10")
	require.Contains(t, out.String(), "Formula does hold.")
}

func TestNeqHoldsAcrossFullDomainInProofMode(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Proof)
	runLines(rt, "x <> x + 1")
	require.Contains(t, out.String(), "Formula does hold.")
}

func TestEqFailsAtFirstSentinelInFastMode(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Fast)
	runLines(rt, "x = x + 1")
	require.Contains(t, out.String(), "Formula does not hold for -2147483648!")
}

func TestFunctionCallCounterexampleAtIntMax(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Fast)
	runLines(rt, "f(x) := x + 1", "f(x) > x")
	require.Contains(t, out.String(), "Formula does not hold for 2147483647!")
}

func TestDeletedFunctionResolvesToZero(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Fast)
	runLines(rt, "f(x) := x + 1", ".delete f", "f(0) = 0")
	require.Contains(t, out.String(), "Formula does hold.")
}

func TestModuloCounterexampleInProofMode(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Proof)
	runLines(rt, "(x + 1) % 2 <> x % 2")
	require.Contains(t, out.String(), "Formula does not hold for")
}

func TestQuitLineStopsTheShell(t *testing.T) {
	rt, _ := newTestRuntime(t, runtime.Fast)
	require.True(t, rt.HandleLine("quit"))
	require.True(t, rt.HandleLine("  quit  "))
	require.False(t, rt.HandleLine("10"))
}

func TestModeAndExecutorCommands(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Fast)
	runLines(rt, ".mode proof")
	require.Equal(t, runtime.Proof, rt.Mode)
	require.True(t, strings.Contains(out.String(), "mode set to proof"))

	runLines(rt, ".executor interpreted")
	require.Equal(t, executor.Interpreted, rt.Exec.Kind())
}

func TestParseErrorIsReportedNotFatal(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Fast)
	runLines(rt, ".bogus", "10")
	require.Contains(t, out.String(), "ERROR>")
	require.Contains(t, out.String(), "Formula does hold.")
}

func TestDivisionByZeroQueryReportsErrorWithoutCrashing(t *testing.T) {
	rt, out := newTestRuntime(t, runtime.Fast)
	runLines(rt, "x / 0 = 0")
	require.Contains(t, out.String(), "ERROR>")
}
