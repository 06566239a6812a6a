package runtime

import (
	"fmt"
	"time"

	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/executor"
)

// benchmarkCase is one fixed timed comparison from the original's
// `runtime.rs::benchmark` (SPEC_FULL.md §4.9): a label, an optional
// helper definition installed before timing starts, and the expression
// timed over the Benchmark window on both backends.
type benchmarkCase struct {
	label string
	setup *ast.FunctionDef
	expr  ast.Expr
}

func benchmarkCases() []benchmarkCase {
	v := ast.Var{Name: "x"}
	simple := benchmarkCase{
		label: "Simple",
		expr:  ast.BinaryExpr{Op: ast.Neq, Left: v, Right: ast.BinaryExpr{Op: ast.Add, Left: v, Right: ast.Number{Value: 1}}},
	}
	complex := benchmarkCase{
		label: "Complex",
		expr: ast.BinaryExpr{
			Op:   ast.Neq,
			Left: ast.BinaryExpr{Op: ast.Rem, Left: ast.BinaryExpr{Op: ast.Add, Left: v, Right: ast.Number{Value: 1}}, Right: ast.Number{Value: 2}},
			Right: ast.BinaryExpr{Op: ast.Rem, Left: v, Right: ast.Number{Value: 2}},
		},
	}
	param := "x"
	doubleDef := ast.FunctionDef{Name: "f", Parameter: &param, Body: ast.BinaryExpr{Op: ast.Mul, Left: ast.Var{Name: "x"}, Right: ast.Number{Value: 2}}}
	callThrough := benchmarkCase{
		label: "FunctionCall",
		setup: &doubleDef,
		expr: ast.BinaryExpr{
			Op:    ast.Eq,
			Left:  ast.BinaryExpr{Op: ast.Mul, Left: v, Right: ast.Number{Value: 2}},
			Right: ast.FunctionCall{Name: "f", Arg: v},
		},
	}
	return []benchmarkCase{simple, complex, callThrough}
}

// RunBenchmarkSuite times each of the three fixed cases once on the
// compiled backend and once on the interpreted backend, over the
// Benchmark-mode window, printing elapsed milliseconds for each
// (SPEC_FULL.md §4.9; original `.benchmark` command).
func (r *Runtime) RunBenchmarkSuite() {
	for _, c := range benchmarkCases() {
		compiled := executor.NewCompiled()
		interpreted := executor.NewInterpreted()
		if c.setup != nil {
			compiled.Define(*c.setup)
			interpreted.Define(*c.setup)
		}

		fmt.Fprintf(r.Out, "JIT> benchmark %q (compiled):\n", c.label)
		r.timeOverWindow(compiled.CompileQuery(c.expr))

		fmt.Fprintf(r.Out, "JIT> benchmark %q (interpreted):\n", c.label)
		r.timeOverWindow(interpreted.CompileQuery(c.expr))
	}
}

func (r *Runtime) timeOverWindow(c executor.Callable) {
	start := time.Now()
	for v := int64(-benchmarkWindow); v <= benchmarkWindow; v++ {
		c.Call(int32(v))
	}
	elapsed := time.Since(start)
	fmt.Fprintf(r.Out, "JIT> elapsed: %d ms\n", elapsed.Milliseconds())
}
