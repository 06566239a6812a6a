package jit

import (
	"github.com/tobix/bfprove/internal/asm/amd64"
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/bferrors"
)

// repoKey threads the registered Code Repository's lookup key through
// a single lowering pass, so FunctionCall (call.go) can bake it into
// the generated trampoline call without a Context field every leaf
// lowering function would otherwise have to thread for no reason.
type lowering struct {
	ctx     *Context
	repoKey uintptr
}

// lowerExpr emits code evaluating e and returns the register holding
// its 32-bit result. The caller owns that register until it releases
// it via ctx.maybeRelease.
func (l *lowering) lowerExpr(e ast.Expr) amd64.Reg {
	switch n := e.(type) {
	case ast.Number:
		r := l.ctx.nextScratch()
		l.ctx.asm.MovRegImm32(r, n.Value)
		return r
	case ast.Var:
		r, ok := l.ctx.ResolveVar(n.Name)
		if !ok {
			panic(bferrors.New(bferrors.NameResolution, "variable %q is not bound", n.Name))
		}
		return r
	case ast.FunctionCall:
		return l.lowerCall(n)
	case ast.BinaryExpr:
		return l.lowerBinary(n)
	default:
		panic("jit: unknown expression node")
	}
}

func (l *lowering) lowerBinary(n ast.BinaryExpr) amd64.Reg {
	a := l.ctx.asm
	lhs := l.lowerExpr(n.Left)
	// Every operator below writes its result into lhs; when lhs is the
	// bound parameter, work on a scratch copy so later reads of the
	// parameter still see the argument.
	if lhs == l.ctx.param {
		copyReg := l.ctx.nextScratch()
		a.MovRegReg(copyReg, lhs)
		lhs = copyReg
	}
	rhs := l.lowerExpr(n.Right)

	switch n.Op {
	case ast.Add:
		a.AddRegReg(lhs, rhs)
		l.ctx.maybeRelease(rhs)
		return lhs
	case ast.Sub:
		a.SubRegReg(lhs, rhs)
		l.ctx.maybeRelease(rhs)
		return lhs
	case ast.Mul:
		// Low 32 bits of signed and unsigned multiplication coincide,
		// so the unsigned MUL encoding also implements signed 32-bit
		// multiply (amd64.MulUnsigned's doc comment).
		a.MovRegReg(amd64.AX, lhs)
		a.MulUnsigned(rhs)
		a.MovRegReg(lhs, amd64.AX)
		l.ctx.maybeRelease(rhs)
		return lhs
	case ast.Div, ast.Rem:
		l.emitZeroCheck(rhs)
		a.MovRegReg(amd64.AX, lhs)
		a.Cdq()
		a.IDivSigned(rhs)
		if n.Op == ast.Div {
			a.MovRegReg(lhs, amd64.AX)
		} else {
			a.MovRegReg(lhs, amd64.DX)
		}
		l.ctx.maybeRelease(rhs)
		return lhs
	case ast.Eq, ast.Neq, ast.Gt, ast.Lt, ast.Gte, ast.Lte:
		a.CmpRegReg(lhs, rhs)
		a.SetCC(relOpCC(n.Op), lhs)
		l.ctx.maybeRelease(rhs)
		return lhs
	default:
		panic("jit: unknown binary operator")
	}
}

func relOpCC(op ast.Op) amd64.CC {
	switch op {
	case ast.Eq:
		return amd64.CCEq
	case ast.Neq:
		return amd64.CCNeq
	case ast.Gt:
		return amd64.CCGt
	case ast.Lt:
		return amd64.CCLt
	case ast.Gte:
		return amd64.CCGe
	case ast.Lte:
		return amd64.CCLe
	default:
		panic("jit: not a relational operator")
	}
}

// emitZeroCheck guards a Div/Rem: if divisor == 0 it calls
// internal/jit's trap entry, which panics with bferrors.ArithmeticTrap
// and never returns, matching the interpreter's behavior for the same
// input — internal/runtime recovers both backends' panics identically.
func (l *lowering) emitZeroCheck(divisor amd64.Reg) {
	a := l.ctx.asm
	a.TestRegReg(divisor)
	// JNE over the trap call when divisor != 0.
	a.JccRel8(amd64.CCNeq, 0) // patched below
	skipFrom := a.Len()
	a.MovRegImm64(amd64.AX, int64(DivZeroTrapAddr()))
	a.CallReg(amd64.AX)
	rel := int8(a.Len() - skipFrom)
	patchRel8(a, skipFrom-1, rel)
}

// patchRel8 overwrites the single relative-displacement byte emitted
// by JccRel8/JmpRel8 at offset pos once the jump's true length is
// known. There is no general relocation table (see amd64.Asm's doc
// comment): this is the one place in the JIT where a forward
// reference's length is not known until after the bytes in between are
// emitted, so it is patched directly instead.
func patchRel8(a *amd64.Asm, pos int, rel int8) {
	a.Bytes()[pos] = byte(rel)
}
