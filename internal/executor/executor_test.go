package executor_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/executor"
)

func TestNewPrefersCompiledWhenSupported(t *testing.T) {
	exec, ok := executor.New()
	require.True(t, ok, "this test environment is expected to support executable memory")
	require.Equal(t, executor.Compiled, exec.Kind())
}

func TestInterpretedExecutorRoundtrip(t *testing.T) {
	exec := executor.NewInterpreted()
	param := "n"
	exec.Define(ast.FunctionDef{Name: "sq", Parameter: &param, Body: ast.BinaryExpr{
		Op: ast.Mul, Left: ast.Var{Name: "n"}, Right: ast.Var{Name: "n"},
	}})
	q := exec.CompileQuery(ast.FunctionCall{Name: "sq", Arg: ast.Number{Value: 6}})
	require.Equal(t, int32(36), q.Call(0))

	_, ok := exec.Show("sq")
	require.True(t, ok)

	exec.Delete("sq")
	q2 := exec.CompileQuery(ast.FunctionCall{Name: "sq", Arg: ast.Number{Value: 6}})
	require.Equal(t, int32(0), q2.Call(0), "deleted function resolves to 0")
}

func TestCompiledExecutorRoundtrip(t *testing.T) {
	exec := executor.NewCompiled()
	param := "n"
	exec.Define(ast.FunctionDef{Name: "sq", Parameter: &param, Body: ast.BinaryExpr{
		Op: ast.Mul, Left: ast.Var{Name: "n"}, Right: ast.Var{Name: "n"},
	}})
	q := exec.CompileQuery(ast.FunctionCall{Name: "sq", Arg: ast.Number{Value: 6}})
	require.Equal(t, int32(36), q.Call(0))

	names := exec.List()
	require.Contains(t, names, "sq")

	text, ok := exec.Show("sq")
	require.True(t, ok)
	require.NotEmpty(t, text)
}
