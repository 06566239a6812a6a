// Package amd64 is a small hand-rolled x86-64 instruction encoder.
//
// It exists for the same reason wazero's internal/asm/amd64 does (see
// that package's impl.go, whose header notes the project moved off a
// third-party assembler "once we reach some maturity"): the instruction
// set this JIT needs is small and fixed, so emitting bytes directly is
// simpler and has no dependency surface. Naming follows the Go
// assembler's convention (https://go.dev/doc/asm) where it overlaps.
//
// The instruction set is the small one the compiler in internal/jit
// works with: 32-bit integer ALU ops, unsigned MUL (internal/jit relies
// on the low 32 bits of signed and unsigned multiplication coinciding),
// CDQ+signed IDIV for Div/Rem (an unsigned DIV encoder is also present
// but internal/jit does not use it), TEST+Jcc for the explicit
// divide-by-zero check, SETcc+MOVZX for relational results,
// PUSH/POP/CALL/RET/JMP, and RIP-relative LEA for the self-patching
// call mechanism's inline name data.
package amd64

// Reg is a general-purpose x86-64 register, numbered to match the
// physical encoding (Reg - 1 == the 4-bit encoding used in ModRM/REX),
// the same scheme wazero's internal/asm uses for its Register type.
type Reg uint8

const (
	NoReg Reg = iota
	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// enc is the 4-bit physical register encoding (0-15).
func (r Reg) enc() byte { return byte(r - 1) }

// low3 is the 3 bits of enc that fit directly in a ModRM/opcode byte;
// the 4th bit is carried in the REX prefix.
func (r Reg) low3() byte { return r.enc() & 0x7 }

func (r Reg) extended() bool { return r.enc() >= 8 }

// needsREXForByte reports whether referencing the low byte of r
// requires a REX prefix to get spl/bpl/sil/dil instead of ah/ch/dh/bh.
func (r Reg) needsREXForByte() bool { return r == SP || r == BP || r == SI || r == DI }

// CC is a condition code for SETcc, named after the Go assembler's
// instruction suffixes (JEQ/JNE/...) rather than the raw Intel
// mnemonics.
type CC byte

const (
	CCEq  CC = 0x4 // E/Z
	CCNeq CC = 0x5 // NE/NZ
	CCGt  CC = 0xF // G (signed >)
	CCLt  CC = 0xC // L (signed <)
	CCGe  CC = 0xD // GE (signed >=)
	CCLe  CC = 0xE // LE (signed <=)
)

// Asm accumulates encoded machine code in a flat buffer. There is no
// label/relocation machinery: the jump-around-data pattern in
// internal/jit/call.go and the RIP-relative LEA of inline name bytes
// have lengths known at emission time, so their offsets are computed
// directly. The one forward jump whose length is not known up front,
// internal/jit's divide-by-zero guard, is patched in place through
// Bytes() once the guarded code has been emitted.
type Asm struct {
	buf []byte
}

// New returns an empty assembler.
func New() *Asm { return &Asm{} }

// Len returns the number of bytes emitted so far.
func (a *Asm) Len() int { return len(a.buf) }

// Bytes returns the accumulated machine code.
func (a *Asm) Bytes() []byte { return a.buf }

func (a *Asm) emit(bs ...byte) { a.buf = append(a.buf, bs...) }

func (a *Asm) emitImm32(v int32) {
	u := uint32(v)
	a.emit(byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
}

func (a *Asm) emitImm64(v int64) {
	u := uint64(v)
	a.emit(byte(u), byte(u>>8), byte(u>>16), byte(u>>24), byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56))
}

func modrm(mod, reg, rm byte) byte { return mod<<6 | (reg&7)<<3 | (rm & 7) }

// rex builds a REX prefix byte. w selects 64-bit operand size; r, x, b
// are the extension bits for the ModRM.reg, SIB.index, and
// ModRM.rm/SIB.base fields respectively.
func rex(w, r, x, b bool) byte {
	var v byte = 0x40
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if x {
		v |= 0x02
	}
	if b {
		v |= 0x01
	}
	return v
}

func boolBit(cond bool, bit byte) byte {
	if cond {
		return bit
	}
	return 0
}

// MovRegImm32 emits `mov dst, imm32` as a 32-bit move; the upper 32
// bits of the destination's 64-bit register are zeroed, per the
// standard x86-64 rule for 32-bit operand writes.
func (a *Asm) MovRegImm32(dst Reg, imm int32) {
	if dst.extended() {
		a.emit(rex(false, false, false, true))
	}
	a.emit(0xB8 + dst.low3())
	a.emitImm32(imm)
}

// MovRegImm64 emits `movabs dst, imm64`, used to bake the Code
// Repository pointer and the trampoline helper's entry address into
// generated code as 64-bit immediates.
func (a *Asm) MovRegImm64(dst Reg, imm int64) {
	a.emit(rex(true, false, false, dst.extended()))
	a.emit(0xB8 + dst.low3())
	a.emitImm64(imm)
}

// MovRegReg emits `mov dst, src` (32-bit).
func (a *Asm) MovRegReg(dst, src Reg) {
	if r := rex(false, src.extended(), false, dst.extended()); r != 0x40 {
		a.emit(r)
	}
	a.emit(0x89, modrm(3, src.low3(), dst.low3()))
}

// MovRegReg64 emits `mov dst, src` (64-bit), used to move pointer-
// sized values between registers.
func (a *Asm) MovRegReg64(dst, src Reg) {
	a.emit(rex(true, src.extended(), false, dst.extended()))
	a.emit(0x89, modrm(3, src.low3(), dst.low3()))
}

// AddRegReg emits `add dst, src` (32-bit, wraps on overflow).
func (a *Asm) AddRegReg(dst, src Reg) {
	if r := rex(false, src.extended(), false, dst.extended()); r != 0x40 {
		a.emit(r)
	}
	a.emit(0x01, modrm(3, src.low3(), dst.low3()))
}

// SubRegReg emits `sub dst, src` (32-bit, wraps on overflow).
func (a *Asm) SubRegReg(dst, src Reg) {
	if r := rex(false, src.extended(), false, dst.extended()); r != 0x40 {
		a.emit(r)
	}
	a.emit(0x29, modrm(3, src.low3(), dst.low3()))
}

// XorRegReg emits `xor dst, src` (32-bit); used with dst==src to zero
// a register before SETcc.
func (a *Asm) XorRegReg(dst, src Reg) {
	if r := rex(false, src.extended(), false, dst.extended()); r != 0x40 {
		a.emit(r)
	}
	a.emit(0x31, modrm(3, src.low3(), dst.low3()))
}

// CmpRegReg emits `cmp a, b` (32-bit), setting flags from a-b.
func (a *Asm) CmpRegReg(lhs, rhs Reg) {
	if r := rex(false, rhs.extended(), false, lhs.extended()); r != 0x40 {
		a.emit(r)
	}
	a.emit(0x39, modrm(3, rhs.low3(), lhs.low3()))
}

// MulUnsigned emits `mul src` (unsigned EAX*src -> EDX:EAX). The
// compiler only ever reads EAX afterward: the low 32 bits of signed
// and unsigned multiplication coincide, so this also implements
// signed 32-bit multiply.
func (a *Asm) MulUnsigned(src Reg) {
	if src.extended() {
		a.emit(rex(false, false, false, true))
	}
	a.emit(0xF7, modrm(3, 4, src.low3()))
}

// DivUnsigned emits `div src` (unsigned EDX:EAX / src -> quotient
// EAX, remainder EDX). Callers must zero EDX first and must not call
// this with src==0 (internal/jit checks for a zero divisor explicitly
// rather than relying on the processor's #DE trap, for portability).
func (a *Asm) DivUnsigned(src Reg) {
	if src.extended() {
		a.emit(rex(false, false, false, true))
	}
	a.emit(0xF7, modrm(3, 6, src.low3()))
}

// Cdq emits `cdq`, sign-extending EAX into EDX:EAX. internal/jit uses
// this immediately before IDivSigned: truncated signed division needs
// EDX holding the sign of EAX, not zero.
func (a *Asm) Cdq() { a.emit(0x99) }

// IDivSigned emits `idiv src` (signed EDX:EAX / src -> quotient EAX,
// remainder EDX, truncated toward zero). Same zero-divisor and EDX
// preconditions as DivUnsigned; this is what internal/jit's Div/Rem
// lowering actually uses, since the arithmetic it implements is signed.
func (a *Asm) IDivSigned(src Reg) {
	if src.extended() {
		a.emit(rex(false, false, false, true))
	}
	a.emit(0xF7, modrm(3, 7, src.low3()))
}

// SetCC emits `setcc dst8` followed by a zero-extending move into the
// full 32-bit register, so the result is always a clean 0/1 value in
// the register the caller expects a normal ALU result in.
func (a *Asm) SetCC(cc CC, dst Reg) {
	if dst.extended() || dst.needsREXForByte() {
		a.emit(rex(false, false, false, dst.extended()))
	}
	a.emit(0x0F, 0x90|byte(cc), modrm(3, 0, dst.low3()))
	a.movzxByte(dst, dst)
}

func (a *Asm) movzxByte(dst, src Reg) {
	if r := rex(false, dst.extended(), false, src.extended()); r != 0x40 || src.needsREXForByte() {
		a.emit(r)
	}
	a.emit(0x0F, 0xB6, modrm(3, dst.low3(), src.low3()))
}

// Push emits `push r` (64-bit).
func (a *Asm) Push(r Reg) {
	if r.extended() {
		a.emit(rex(false, false, false, true))
	}
	a.emit(0x50 + r.low3())
}

// Pop emits `pop r` (64-bit).
func (a *Asm) Pop(r Reg) {
	if r.extended() {
		a.emit(rex(false, false, false, true))
	}
	a.emit(0x58 + r.low3())
}

// Ret emits `ret`.
func (a *Asm) Ret() { a.emit(0xC3) }

// CallReg emits an indirect `call r`.
func (a *Asm) CallReg(r Reg) {
	if r.extended() {
		a.emit(rex(false, false, false, true))
	}
	a.emit(0xFF, modrm(3, 2, r.low3()))
}

// SubRSPImm8 emits `sub rsp, imm8`, used to reserve Windows x64 shadow
// space / re-align the stack before a call.
func (a *Asm) SubRSPImm8(imm int8) {
	a.emit(rex(true, false, false, false), 0x83, modrm(3, 5, SP.low3()), byte(imm))
}

// AddRSPImm8 emits `add rsp, imm8`, undoing SubRSPImm8.
func (a *Asm) AddRSPImm8(imm int8) {
	a.emit(rex(true, false, false, false), 0x83, modrm(3, 0, SP.low3()), byte(imm))
}

// LeaRIP emits `lea dst, [rip+disp]`: a position-independent load of
// an address disp bytes past the end of this instruction. Used to
// obtain a pointer to the inline ASCII name data emitted by
// internal/jit/call.go's jump-around-data pattern.
func (a *Asm) LeaRIP(dst Reg, disp int32) {
	a.emit(rex(true, dst.extended(), false, false))
	a.emit(0x8D, modrm(0, dst.low3(), 5))
	a.emitImm32(disp)
}

// JmpRel8 emits a short unconditional jump; rel is measured from the
// byte immediately following this 2-byte instruction.
func (a *Asm) JmpRel8(rel int8) {
	a.emit(0xEB, byte(rel))
}

// JccRel8 emits a short conditional jump; rel is measured from the
// byte immediately following this 2-byte instruction. Used by
// internal/jit's Div/Rem lowering to skip the divide-by-zero trap call
// when the divisor is non-zero.
func (a *Asm) JccRel8(cc CC, rel int8) {
	a.emit(0x70|byte(cc), byte(rel))
}

// TestRegReg emits `test r, r` (32-bit), setting ZF when r is zero.
func (a *Asm) TestRegReg(r Reg) {
	if rx := rex(false, r.extended(), false, r.extended()); rx != 0x40 {
		a.emit(rx)
	}
	a.emit(0x85, modrm(3, r.low3(), r.low3()))
}

// RawBytes appends literal data (e.g. a function name's ASCII bytes)
// directly into the instruction stream.
func (a *Asm) RawBytes(b []byte) {
	a.buf = append(a.buf, b...)
}
