package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/ast"
)

func TestUsedVariablesOrderAndDedup(t *testing.T) {
	// x + (y + x) -> [x, y], first-occurrence order, deduplicated.
	expr := ast.BinaryExpr{
		Op:   ast.Add,
		Left: ast.Var{Name: "x"},
		Right: ast.BinaryExpr{
			Op:    ast.Add,
			Left:  ast.Var{Name: "y"},
			Right: ast.Var{Name: "x"},
		},
	}
	require.Equal(t, []string{"x", "y"}, ast.UsedVariables(expr))
}

func TestUsedVariablesNumberYieldsNothing(t *testing.T) {
	require.Empty(t, ast.UsedVariables(ast.Number{Value: 42}))
}

func TestUsedVariablesFunctionCallDescendsOnlyIntoArg(t *testing.T) {
	call := ast.FunctionCall{Name: "f", Arg: ast.Var{Name: "x"}}
	require.Equal(t, []string{"x"}, ast.UsedVariables(call))

	noArg := ast.FunctionCall{Name: "f"}
	require.Empty(t, ast.UsedVariables(noArg))
}

func TestFunctionDefCloneIsIndependent(t *testing.T) {
	param := "x"
	original := ast.FunctionDef{Name: "f", Parameter: &param, Body: ast.Var{Name: "x"}}
	clone := original.Clone()

	require.Equal(t, original.Name, clone.Name)
	require.NotSame(t, original.Parameter, clone.Parameter)
	*clone.Parameter = "y"
	require.Equal(t, "x", *original.Parameter)
}
