// Package interp is the tree-walking reference evaluator: the oracle
// the JIT must agree with bit-for-bit.
package interp

import (
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/bferrors"
)

// Interpreter holds pending function definitions. It has no
// compilation step and no memoization: every call re-evaluates the
// callee's body from scratch.
type Interpreter struct {
	defs map[string]ast.FunctionDef
}

// New returns an empty Interpreter.
func New() *Interpreter {
	return &Interpreter{defs: make(map[string]ast.FunctionDef)}
}

// Define installs or replaces a function definition.
func (i *Interpreter) Define(def ast.FunctionDef) {
	i.defs[def.Name] = def.Clone()
}

// Delete removes a function definition, if present.
func (i *Interpreter) Delete(name string) {
	delete(i.defs, name)
}

// Has reports whether name currently has a definition.
func (i *Interpreter) Has(name string) bool {
	_, ok := i.defs[name]
	return ok
}

// Names returns the currently defined function names, in no
// particular order, for the `.list` command.
func (i *Interpreter) Names() []string {
	names := make([]string, 0, len(i.defs))
	for n := range i.defs {
		names = append(names, n)
	}
	return names
}

// Get returns name's current definition, if any. Used by
// internal/runtime to replay definitions onto a freshly-switched
// executor ('.executor' command).
func (i *Interpreter) Get(name string) (ast.FunctionDef, bool) {
	def, ok := i.defs[name]
	return def, ok
}

// Callable evaluates expr with its single free variable (if any) bound
// to the supplied argument.
type Callable struct {
	interp *Interpreter
	expr   ast.Expr
	param  string // "" if expr has no free variable
}

// CompileQuery returns a Callable over expr bound to the first
// variable in first-occurrence order, matching the compiled backend's
// binding contract.
func (i *Interpreter) CompileQuery(expr ast.Expr) *Callable {
	vars := ast.UsedVariables(expr)
	param := ""
	if len(vars) > 0 {
		param = vars[0]
	}
	return &Callable{interp: i, expr: expr, param: param}
}

// Call evaluates the bound expression at arg. Division/remainder by
// zero panics with a *bferrors.Error of Kind ArithmeticTrap; callers
// that need to isolate a single query's failure should recover it,
// mirroring how a JIT-emitted division trap terminates only the
// current query.
func (c *Callable) Call(arg int32) int32 {
	scope := scope{vars: map[string]int32{}}
	if c.param != "" {
		scope.vars[c.param] = arg
	}
	return eval(c.interp, c.expr, scope)
}

type scope struct {
	vars map[string]int32
}

func eval(i *Interpreter, e ast.Expr, s scope) int32 {
	switch n := e.(type) {
	case ast.Number:
		return n.Value
	case ast.Var:
		v, ok := s.vars[n.Name]
		if !ok {
			panic(bferrors.New(bferrors.NameResolution, "variable %q is not bound", n.Name))
		}
		return v
	case ast.FunctionCall:
		var arg int32
		if n.Arg != nil {
			arg = eval(i, n.Arg, s)
		}
		return callNamed(i, n.Name, arg)
	case ast.BinaryExpr:
		return evalBinary(i, n, s)
	default:
		panic(bferrors.New(bferrors.Parse, "unhandled expression node %T", e))
	}
}

// callNamed resolves name by lookup at call time (never by identity),
// the same resolution discipline the trampoline helper uses for
// compiled calls, so redefinition and deletion behave identically in
// both backends.
func callNamed(i *Interpreter, name string, arg int32) int32 {
	def, ok := i.defs[name]
	if !ok {
		return 0
	}
	inner := scope{vars: map[string]int32{}}
	if def.Parameter != nil {
		inner.vars[*def.Parameter] = arg
	}
	return eval(i, def.Body, inner)
}

func evalBinary(i *Interpreter, n ast.BinaryExpr, s scope) int32 {
	lhs := eval(i, n.Left, s)
	rhs := eval(i, n.Right, s)
	switch n.Op {
	case ast.Add:
		return lhs + rhs
	case ast.Sub:
		return lhs - rhs
	case ast.Mul:
		return lhs * rhs
	case ast.Div:
		if rhs == 0 {
			panic(bferrors.New(bferrors.ArithmeticTrap, "division by zero"))
		}
		return divTruncToZero(lhs, rhs)
	case ast.Rem:
		if rhs == 0 {
			panic(bferrors.New(bferrors.ArithmeticTrap, "division by zero"))
		}
		return lhs - divTruncToZero(lhs, rhs)*rhs
	case ast.Eq:
		return boolToI32(lhs == rhs)
	case ast.Neq:
		return boolToI32(lhs != rhs)
	case ast.Gt:
		return boolToI32(lhs > rhs)
	case ast.Lt:
		return boolToI32(lhs < rhs)
	case ast.Gte:
		return boolToI32(lhs >= rhs)
	case ast.Lte:
		return boolToI32(lhs <= rhs)
	default:
		panic(bferrors.New(bferrors.Parse, "unhandled operator %v", n.Op))
	}
}

// divTruncToZero mirrors the hardware IDIV semantics the JIT relies
// on: truncation toward zero. Go's own `/` on int32 already truncates
// toward zero identically, so this is spelled out explicitly only to
// make clear it's a deliberate cross-backend contract, not an
// incidental detail that happens to match.
func divTruncToZero(a, b int32) int32 {
	return a / b
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
