// Package runtime drives the query loop: given an Executor and the
// current ExecutionMode, it selects an input range, iterates a
// Callable over it, and renders the fixed-text protocol this prover
// speaks on stdout (`ERROR>`, `JIT>`, `Formula does hold.`, `Formula
// does not hold for <v>!`). Grounded on wazero's own preference for
// direct `fmt.Fprintf` over a logging framework for user-facing output.
package runtime

import (
	"fmt"
	"io"
	"math"

	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/bferrors"
	"github.com/tobix/bfprove/internal/executor"
	"github.com/tobix/bfprove/internal/interp"
	"github.com/tobix/bfprove/internal/parser"
)

// Mode selects the input range a query is checked over.
type Mode int

const (
	Proof Mode = iota
	Fast
	Benchmark
)

func (m Mode) String() string {
	switch m {
	case Proof:
		return "proof"
	case Fast:
		return "fast"
	case Benchmark:
		return "benchmark"
	default:
		return "?"
	}
}

// ShouldPrintProgress reports whether the query loop prints its
// periodic "remaining" line in this mode. Benchmark mode suppresses it
// so timed runs aren't skewed by I/O (original_source's
// ExecutionMode::should_print_info).
func (m Mode) ShouldPrintProgress() bool { return m != Benchmark }

// sentinels is Fast mode's fixed input set.
var sentinels = []int32{math.MinInt32, -1, 0, 1, math.MaxInt32}

// benchmarkWindow is the half-width of Benchmark mode's fixed
// symmetric range: values run from -benchmarkWindow to
// +benchmarkWindow inclusive (10,000,001 values).
const benchmarkWindow = 5_000_000

// progressInterval is how often the query loop prints a "remaining"
// line in modes that allow it.
const progressInterval = 100_000_000

// Runtime owns one Executor and the current Mode for the process's
// one REPL goroutine: single-threaded, cooperative, no concurrent
// access to Exec.
type Runtime struct {
	Exec     executor.Executor
	Mode     Mode
	Out      io.Writer
	Err      io.Writer
	fallback bool // true if Exec was forced to Interpreted at startup

	// oracle mirrors every definition regardless of which backend is
	// active, so TestExpr always has an accurate reference semantics
	// to compare against even when Exec is the compiled backend.
	oracle *interp.Interpreter
}

// New returns a Runtime on the given executor/mode, writing protocol
// output to out and error output to errOut.
func New(exec executor.Executor, mode Mode, out, errOut io.Writer) *Runtime {
	return &Runtime{Exec: exec, Mode: mode, Out: out, Err: errOut, oracle: interp.New()}
}

// ReportFallback notes (once, at startup) that the compiled backend
// was unavailable and the interpreted backend was used instead.
func (r *Runtime) ReportFallback() {
	r.fallback = true
	fmt.Fprintln(r.Out, "JIT> executable memory unavailable; falling back to the interpreted executor")
}

// HandleAction dispatches one parsed top-level unit and renders its
// effect to r.Out/r.Err, recovering any bferrors.Error or runtime
// panic so one bad action never takes down the shell.
func (r *Runtime) HandleAction(a ast.Action) {
	defer func() {
		if rec := recover(); rec != nil {
			r.reportPanic(rec)
		}
	}()

	switch act := a.(type) {
	case ast.ActionFunctionDef:
		r.Exec.Define(act.Def)
		r.oracle.Define(act.Def)
		fmt.Fprintf(r.Out, "JIT> defined %q\n", act.Def.Name)
	case ast.ActionQuery:
		r.ExecuteQuery(act.Expr)
	case ast.ActionCommand:
		r.handleCommand(act.Command)
	}
}

// HandleLine parses and dispatches one REPL line (internal/shell is a
// thin stdin loop over this). The bare literal "quit" (no leading '.')
// is recognized here rather than by the parser; it reports true to
// tell the caller to stop.
func (r *Runtime) HandleLine(line string) (quit bool) {
	if trimmedIsQuit(line) {
		return true
	}
	action, err := parser.Parse(line)
	if err != nil {
		fmt.Fprintf(r.Err, "ERROR> %s\n", err)
		return false
	}
	r.HandleAction(action)
	return false
}

func trimmedIsQuit(line string) bool {
	i, j := 0, len(line)
	for i < j && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	for j > i && (line[j-1] == ' ' || line[j-1] == '\t' || line[j-1] == '\r') {
		j--
	}
	return line[i:j] == "quit"
}

func (r *Runtime) reportPanic(rec any) {
	if be, ok := rec.(*bferrors.Error); ok {
		fmt.Fprintf(r.Err, "ERROR> %s\n", be.Error())
		return
	}
	fmt.Fprintf(r.Err, "ERROR> %v\n", rec)
}

func (r *Runtime) handleCommand(cmd ast.Command) {
	switch cmd.Kind {
	case ast.CmdShow:
		text, ok := r.Exec.Show(cmd.Name)
		if !ok {
			fmt.Fprintf(r.Err, "ERROR> no such function %q\n", cmd.Name)
			return
		}
		fmt.Fprint(r.Out, text)
	case ast.CmdList:
		for _, n := range r.Exec.List() {
			fmt.Fprintln(r.Out, n)
		}
	case ast.CmdDelete:
		r.Exec.Delete(cmd.Name)
		r.oracle.Delete(cmd.Name)
		fmt.Fprintf(r.Out, "JIT> deleted %q\n", cmd.Name)
	case ast.CmdMode:
		mode, ok := parseMode(cmd.Arg)
		if !ok {
			fmt.Fprintf(r.Err, "ERROR> unknown mode %q\n", cmd.Arg)
			return
		}
		r.Mode = mode
		fmt.Fprintf(r.Out, "JIT> mode set to %s\n", mode)
	case ast.CmdExecutor:
		r.switchExecutor(cmd.Arg)
	case ast.CmdTest:
		r.TestExpr(cmd.Expr)
	case ast.CmdBenchmark:
		r.RunBenchmarkSuite()
	}
}

func parseMode(s string) (Mode, bool) {
	switch s {
	case "proof":
		return Proof, true
	case "fast":
		return Fast, true
	case "benchmark":
		return Benchmark, true
	default:
		return 0, false
	}
}

// switchExecutor swaps the active backend and replays every known
// definition onto it from r.oracle, so `.executor` mid-session doesn't
// silently forget what's been defined so far.
func (r *Runtime) switchExecutor(name string) {
	var next executor.Executor
	switch name {
	case "compiled":
		next = executor.NewCompiled()
	case "interpreted":
		next = executor.NewInterpreted()
	default:
		fmt.Fprintf(r.Err, "ERROR> unknown executor %q\n", name)
		return
	}
	for _, fnName := range r.oracle.Names() {
		if def, ok := r.oracle.Get(fnName); ok {
			next.Define(def)
		}
	}
	r.Exec = next
	fmt.Fprintf(r.Out, "JIT> executor set to %s\n", name)
}

// ExecuteQuery runs expr's compiled query over the current mode's
// input range, printing the first counterexample or "Formula does
// hold." if none is found.
func (r *Runtime) ExecuteQuery(expr ast.Expr) {
	callable := r.Exec.CompileQuery(expr)
	vars := ast.UsedVariables(expr)

	if len(vars) == 0 {
		r.checkSingle(callable)
		return
	}

	switch r.Mode {
	case Proof:
		r.iterateFull(callable)
	case Fast:
		r.iterateSet(callable, sentinels)
	case Benchmark:
		r.iterateWindow(callable, -benchmarkWindow, benchmarkWindow)
	}
}

func (r *Runtime) checkSingle(c executor.Callable) {
	if c.Call(0) == 0 {
		fmt.Fprintln(r.Out, "Formula does not hold for 0!")
		return
	}
	fmt.Fprintln(r.Out, "Formula does hold.")
}

func (r *Runtime) iterateSet(c executor.Callable, values []int32) {
	for _, v := range values {
		if c.Call(v) == 0 {
			fmt.Fprintf(r.Out, "Formula does not hold for %d!\n", v)
			return
		}
	}
	fmt.Fprintln(r.Out, "Formula does hold.")
}

func (r *Runtime) iterateWindow(c executor.Callable, lo, hi int64) {
	for v := lo; v <= hi; v++ {
		if c.Call(int32(v)) == 0 {
			fmt.Fprintf(r.Out, "Formula does not hold for %d!\n", v)
			return
		}
	}
	fmt.Fprintln(r.Out, "Formula does hold.")
}

// iterateFull enumerates every int32 value in ascending order,
// printing a progress line every progressInterval iterations. It
// walks via int64 to avoid wrapping past math.MaxInt32 back to the
// start.
func (r *Runtime) iterateFull(c executor.Callable) {
	var checked int64
	for v := int64(math.MinInt32); v <= int64(math.MaxInt32); v++ {
		if c.Call(int32(v)) == 0 {
			fmt.Fprintf(r.Out, "Formula does not hold for %d!\n", v)
			return
		}
		checked++
		if r.Mode.ShouldPrintProgress() && checked%progressInterval == 0 {
			remaining := (int64(math.MaxInt32) - v)
			fmt.Fprintf(r.Out, "JIT> %d values remaining\n", remaining)
		}
	}
	fmt.Fprintln(r.Out, "Formula does hold.")
}

// TestExpr cross-checks expr's compiled and interpreted evaluation
// over a fixed window (the original's ±1000 plus the Fast-mode
// sentinel set, per SPEC_FULL.md §4.9), printing the first divergent
// input or "Test OK".
func (r *Runtime) TestExpr(expr ast.Expr) {
	compiled := r.Exec.CompileQuery(expr)
	oracle := r.oracle.CompileQuery(expr)

	check := func(v int32) bool {
		var want, got int32
		ok := func() (ok bool) {
			defer func() {
				if recover() != nil {
					ok = false
				}
			}()
			want = oracle.Call(v)
			got = compiled.Call(v)
			return true
		}()
		return ok && want == got
	}

	for v := int32(-1000); v <= 1000; v++ {
		if !check(v) {
			fmt.Fprintf(r.Out, "Test FAILED at %d\n", v)
			return
		}
	}
	for _, v := range sentinels {
		if !check(v) {
			fmt.Fprintf(r.Out, "Test FAILED at %d\n", v)
			return
		}
	}
	fmt.Fprintln(r.Out, "Test OK")
}
