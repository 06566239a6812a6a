// Package executor selects between the JIT-compiled and interpreted
// backends and exposes them behind one interface, so internal/runtime
// never has to know which is live. Grounded on the same
// executor/engine split wazero draws between its compiler and
// interpreter engines (internal/engine/compiler vs
// internal/engine/interpreter), generalized here to this prover's
// `.executor` shell command.
package executor

import (
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/codemem"
	"github.com/tobix/bfprove/internal/interp"
	"github.com/tobix/bfprove/internal/jit"
	"github.com/tobix/bfprove/internal/repository"
)

// Callable is a bound, repeatedly invokable compiled query or function
// body, independent of which backend produced it.
type Callable interface {
	Call(arg int32) int32
}

// Kind names the two backends the `.executor` command can select
// between.
type Kind int

const (
	Compiled Kind = iota
	Interpreted
)

func (k Kind) String() string {
	if k == Compiled {
		return "compiled"
	}
	return "interpreted"
}

// Executor defines, queries, and deletes functions against one
// backend.
type Executor interface {
	Kind() Kind
	Define(def ast.FunctionDef)
	CompileQuery(expr ast.Expr) Callable
	Delete(name string)
	// Show returns a human-readable rendering of name's installed code,
	// for the `.show` command; the interpreted backend has no machine
	// code to show.
	Show(name string) (string, bool)
	List() []string
}

// New returns the JIT-compiled backend, or falls back to the
// interpreted one when this process can't allocate executable memory.
// The returned bool is false when that fallback happened; logging it
// is left to the caller.
func New() (Executor, bool) {
	if codemem.Supported() {
		return NewCompiled(), true
	}
	return NewInterpreted(), false
}

// CompiledExecutor owns a Code Repository and lazily JIT-compiles
// every definition on first call.
type CompiledExecutor struct {
	repo    *repository.CodeRepository
	repoKey uintptr
}

// NewCompiled returns a ready CompiledExecutor with a fresh Code
// Repository registered for trampoline lookups.
func NewCompiled() *CompiledExecutor {
	repo := repository.New()
	key := jit.RegisterRepository(repo)
	return &CompiledExecutor{repo: repo, repoKey: key}
}

func (e *CompiledExecutor) Kind() Kind { return Compiled }

func (e *CompiledExecutor) Define(def ast.FunctionDef) {
	jit.InsertPlaceholder(e.repo, def, e.repoKey)
}

func (e *CompiledExecutor) CompileQuery(expr ast.Expr) Callable {
	runable, err := jit.CompileQuery(expr, e.repoKey)
	if err != nil {
		panic(err) // internal/runtime's HandleAction recovers this and prints it as an ERROR> line
	}
	return runable
}

func (e *CompiledExecutor) Delete(name string) { e.repo.Delete(name) }

func (e *CompiledExecutor) Show(name string) (string, bool) { return e.repo.Print(name) }

func (e *CompiledExecutor) List() []string { return e.repo.List() }

// InterpretedExecutor wraps internal/interp.Interpreter as an
// Executor, used as the portable fallback and as the `.test` command's
// oracle.
type InterpretedExecutor struct {
	interp *interp.Interpreter
}

// NewInterpreted returns a ready InterpretedExecutor.
func NewInterpreted() *InterpretedExecutor {
	return &InterpretedExecutor{interp: interp.New()}
}

func (e *InterpretedExecutor) Kind() Kind { return Interpreted }

func (e *InterpretedExecutor) Define(def ast.FunctionDef) { e.interp.Define(def) }

func (e *InterpretedExecutor) CompileQuery(expr ast.Expr) Callable {
	return e.interp.CompileQuery(expr)
}

func (e *InterpretedExecutor) Delete(name string) { e.interp.Delete(name) }

func (e *InterpretedExecutor) Show(name string) (string, bool) {
	if !e.interp.Has(name) {
		return "", false
	}
	return "<interpreted: no machine code>", true
}

func (e *InterpretedExecutor) List() []string { return e.interp.Names() }
