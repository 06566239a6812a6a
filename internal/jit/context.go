// Package jit lowers internal/ast expressions to native x86-64 machine
// code using internal/asm/amd64, and manages the lazy-compile /
// self-patching call mechanism that lets a function start as an
// uncompiled stub and swap in its compiled body on first call. It is
// grounded on wazero's internal/engine/compiler (the value-location/
// register bookkeeping in compiler_value_location.go), generalized to
// the Windows x64 calling convention used for generated code: integer
// arguments in RCX/RDX/R8/R9, return value in RAX, RBX/RBP/RDI/RSI and
// R12-R15 callee-saved.
package jit

import (
	"github.com/tobix/bfprove/internal/asm/amd64"
	"github.com/tobix/bfprove/internal/bferrors"
)

// scratchPool lists the registers available for intermediate values.
// nextScratch pops from the end, so R15 is handed out first and BX
// last. RCX is excluded: it carries the sole function parameter and is
// bound for the lifetime of the compilation.
var scratchPool = []amd64.Reg{amd64.BX, amd64.R8, amd64.R9, amd64.R10, amd64.R11, amd64.R12, amd64.R13, amd64.R14, amd64.R15}

// calleeSaved lists the registers this compiler's generated prologue
// must save and its epilogue must restore, because the compiler uses
// them as scratch but the Windows x64 convention requires them
// preserved across a call. R10/R11 are caller-saved under that
// convention so they are not pushed even though the pool uses them.
var calleeSaved = []amd64.Reg{amd64.BX, amd64.R12, amd64.R13, amd64.R14, amd64.R15}

// Context tracks register assignment for a single function body
// lowering. Registers are handed out from the end of scratchPool and
// released with maybeRelease, an overapproximation of real liveness:
// a register is freed as soon as the node that produced it has been
// consumed by its single parent, which is always safe for the
// expression-tree (no shared subexpressions) shape internal/ast
// produces.
type Context struct {
	asm       *amd64.Asm
	free      []amd64.Reg
	param     amd64.Reg
	paramName string // "" if this compilation binds no parameter
}

// NewContext returns a Context writing into asm, with RCX reserved for
// the bound parameter named paramName ("" if this compilation binds
// none: a zero-arity function, or a query with no free variables).
func NewContext(asm *amd64.Asm, paramName string) *Context {
	free := make([]amd64.Reg, len(scratchPool))
	copy(free, scratchPool)
	return &Context{asm: asm, free: free, param: amd64.CX, paramName: paramName}
}

// Param returns the register holding the function's bound parameter.
// A zero-arity function (no ast.FunctionDef.Parameter, or a bare query
// expression with no free variables) simply never reads it; the
// register is never handed out as scratch either way since it is
// excluded from scratchPool.
func (c *Context) Param() amd64.Reg { return c.param }

// ResolveVar reports whether name is the bound parameter, returning
// the register holding its value. It returns false both when this
// compilation binds no parameter at all and when name refers to some
// other, unbound identifier (e.g. the second distinct variable in an
// expression like `x + y`, which has only one bound parameter).
func (c *Context) ResolveVar(name string) (amd64.Reg, bool) {
	if c.paramName == "" || name != c.paramName {
		return 0, false
	}
	return c.param, true
}

// nextScratch pops the next available scratch register. It panics with
// a bferrors.ResourceExhaustion error if the pool is exhausted, which
// happens when an expression nests deeply enough to keep more
// intermediate values live at once than the 9 scratch registers hold
// (for example a long right-nested chain like 1 + (1 + (1 + ...))).
// The parser imposes no nesting limit; internal/runtime recovers the
// panic and reports it as an ERROR> line.
func (c *Context) nextScratch() amd64.Reg {
	if len(c.free) == 0 {
		panic(bferrors.New(bferrors.ResourceExhaustion, "scratch register pool exhausted"))
	}
	r := c.free[len(c.free)-1]
	c.free = c.free[:len(c.free)-1]
	return r
}

// maybeRelease returns r to the free pool if it came from scratchPool;
// releasing the parameter register or a register not currently in use
// is a silent no-op, matching the original allocator's "maybe" naming.
func (c *Context) maybeRelease(r amd64.Reg) {
	if r == c.param {
		return
	}
	for _, s := range scratchPool {
		if s == r {
			for _, f := range c.free {
				if f == r {
					return // already free
				}
			}
			c.free = append(c.free, r)
			return
		}
	}
}

// Asm exposes the underlying assembler for node lowering functions.
func (c *Context) Asm() *amd64.Asm { return c.asm }
