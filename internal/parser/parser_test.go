package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/parser"
)

func TestParseQuery(t *testing.T) {
	action, err := parser.Parse("x <> x + 1")
	require.NoError(t, err)
	query, ok := action.(ast.ActionQuery)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, ast.UsedVariables(query.Expr))
}

func TestParseFunctionDefWithParameter(t *testing.T) {
	action, err := parser.Parse("f(x) := x + 1")
	require.NoError(t, err)
	def, ok := action.(ast.ActionFunctionDef)
	require.True(t, ok)
	require.Equal(t, "f", def.Def.Name)
	require.NotNil(t, def.Def.Parameter)
	require.Equal(t, "x", *def.Def.Parameter)
}

func TestParseFunctionDefWithoutParameter(t *testing.T) {
	action, err := parser.Parse("g() := 10")
	require.NoError(t, err)
	def := action.(ast.ActionFunctionDef)
	require.Nil(t, def.Def.Parameter)
}

func TestParseFunctionCallNoArg(t *testing.T) {
	action, err := parser.Parse("f() = 0")
	require.NoError(t, err)
	query := action.(ast.ActionQuery)
	bin := query.Expr.(ast.BinaryExpr)
	call, ok := bin.Left.(ast.FunctionCall)
	require.True(t, ok)
	require.Equal(t, "f", call.Name)
	require.Nil(t, call.Arg)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 = 7 should parse as 1 + (2 * 3) = 7
	action, err := parser.Parse("1 + 2 * 3 = 7")
	require.NoError(t, err)
	query := action.(ast.ActionQuery)
	rel := query.Expr.(ast.BinaryExpr)
	require.Equal(t, ast.Eq, rel.Op)
	add := rel.Left.(ast.BinaryExpr)
	require.Equal(t, ast.Add, add.Op)
	mul := add.Right.(ast.BinaryExpr)
	require.Equal(t, ast.Mul, mul.Op)
}

func TestParseLeftAssociativity(t *testing.T) {
	// 10 - 3 - 2 should parse as (10 - 3) - 2
	action, err := parser.Parse("10 - 3 - 2")
	require.NoError(t, err)
	query := action.(ast.ActionQuery)
	outer := query.Expr.(ast.BinaryExpr)
	require.Equal(t, ast.Sub, outer.Op)
	inner, ok := outer.Left.(ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.Sub, inner.Op)
	require.Equal(t, ast.Number{Value: 2}, outer.Right)
}

func TestParseIntegerOverflowFails(t *testing.T) {
	_, err := parser.Parse("99999999999")
	require.Error(t, err)
}

func TestParseCommands(t *testing.T) {
	cases := map[string]ast.CommandKind{
		".list":      ast.CmdList,
		".benchmark": ast.CmdBenchmark,
	}
	for src, kind := range cases {
		action, err := parser.Parse(src)
		require.NoError(t, err, src)
		cmd := action.(ast.ActionCommand).Command
		require.Equal(t, kind, cmd.Kind)
	}

	action, err := parser.Parse(".mode proof")
	require.NoError(t, err)
	cmd := action.(ast.ActionCommand).Command
	require.Equal(t, ast.CmdMode, cmd.Kind)
	require.Equal(t, "proof", cmd.Arg)

	action, err = parser.Parse(".delete f")
	require.NoError(t, err)
	cmd = action.(ast.ActionCommand).Command
	require.Equal(t, ast.CmdDelete, cmd.Kind)
	require.Equal(t, "f", cmd.Name)
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := parser.Parse(".frobnicate")
	require.Error(t, err)
}
