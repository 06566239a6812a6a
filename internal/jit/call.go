package jit

import (
	"github.com/tobix/bfprove/internal/asm/amd64"
	"github.com/tobix/bfprove/internal/ast"
)

// volatileScratch lists the scratchPool members that are NOT
// callee-saved under the win64 convention (R8-R11; BX and R12-R15 are
// preserved by every generated prologue/epilogue in compile.go). A
// FunctionCall lowering must assume the trampoline call clobbers them,
// so it saves and restores whichever of them are part of the pool
// around every call, regardless of whether the allocator currently
// considers them live — simpler and always safe, at the cost of a few
// extra push/pop pairs per call site.
var volatileScratch = []amd64.Reg{amd64.R8, amd64.R9, amd64.R10, amd64.R11}

// lowerCall emits a FunctionCall: evaluate the argument, resolve the
// callee by name through the trampoline — resolution is always by
// name, at call time, never a baked-in code address, so redefinition
// and deletion take effect on the very next call — and return the
// register holding the result.
func (l *lowering) lowerCall(n ast.FunctionCall) amd64.Reg {
	a := l.ctx.asm

	var argReg amd64.Reg
	if n.Arg != nil {
		argReg = l.lowerExpr(n.Arg)
	} else {
		argReg = l.ctx.nextScratch()
		a.MovRegImm32(argReg, 0)
	}

	// RCX holds the bound parameter and is overwritten below with the
	// repository key, so it is saved and restored around the call too.
	a.Push(amd64.CX)
	for _, r := range volatileScratch {
		a.Push(r)
	}

	// Capture the argument before anything below overwrites the
	// register it might alias (argReg can legitimately be R8, R9, or
	// the parameter register CX — e.g. a direct `f(x)` call).
	a.MovRegReg(amd64.R9, argReg)
	a.MovRegImm32(amd64.R8, int32(len(n.Name)))

	// Jump-around-data: LEA loads a RIP-relative pointer to the name
	// bytes that follow, then a short JMP skips over those bytes so
	// execution resumes normally. No relocation table is needed
	// because both displacements are known at emission time.
	a.LeaRIP(amd64.DX, 2)
	a.JmpRel8(int8(len(n.Name)))
	a.RawBytes([]byte(n.Name))

	a.MovRegImm64(amd64.CX, int64(l.repoKey))

	a.SubRSPImm8(32) // win64 shadow space
	a.MovRegImm64(amd64.R10, int64(TrampolineAddr()))
	a.CallReg(amd64.R10)
	a.AddRSPImm8(32)

	for i := len(volatileScratch) - 1; i >= 0; i-- {
		a.Pop(volatileScratch[i])
	}
	a.Pop(amd64.CX)

	l.ctx.maybeRelease(argReg)
	dst := l.ctx.nextScratch()
	a.MovRegReg(dst, amd64.AX)
	return dst
}
