package jit

import (
	"reflect"
	"unsafe"

	"github.com/tobix/bfprove/internal/bferrors"
	"github.com/tobix/bfprove/internal/repository"
)

// callWin64 invokes the native code at entry with arg passed the way
// this package's generated prologues expect (ECX), returning the
// callee's EAX. It is implemented in trampoline_amd64.s: Go's compiler
// inserts the ABIInternal<->ABI0 wrapper automatically for a plain
// assembly-bodied function, so ordinary Go code can call it directly
// (see https://go.dev/doc/asm, "ABIInternal"); no ABI suffix is needed
// on this declaration.
func callWin64(entry uintptr, arg int64) int32

// winToGoEntry is never called from Go. Its only use is
// reflect.ValueOf(winToGoEntry).Pointer(), which yields a stable code
// address JIT-compiled functions CALL directly, entering with the
// Windows x64 incoming register state (RCX/RDX/R8/R9) the FunctionCall
// lowering (call.go) sets up. A zero-argument Go signature means ABI0
// and ABIInternal coincide for this symbol, so there is no
// register-clobbering wrapper between "the address we took" and "the
// code that runs" — see trampoline_amd64.s.
func winToGoEntry()

var trampolineEntry = reflect.ValueOf(winToGoEntry).Pointer()

// TrampolineAddr returns the address generated code calls to resolve
// a FunctionCall by name against a repository at call time.
func TrampolineAddr() uintptr { return trampolineEntry }

// repoTable maps the integer value baked into generated code (the
// CodeRepository's address, taken once and never reallocated — see
// internal/codemem's non-moving-heap note) back to the *repository.CodeRepository
// it identifies. Kept as a side table, rather than trusting the
// assembly to dereference a raw Go pointer out of a register, so a
// future moving GC would only stale this map instead of miscompiling
// live calls.
var repoTable = map[uintptr]*repository.CodeRepository{}

// RegisterRepository records repo under its own address so generated
// code calling through the trampoline can find it again. Must be
// called once before any code referencing repo is finalized.
func RegisterRepository(repo *repository.CodeRepository) uintptr {
	key := uintptr(unsafe.Pointer(repo))
	repoTable[key] = repo
	return key
}

// goTrampolineCall is the actual lookup-and-call logic. It is invoked
// from trampoline_amd64.s after that file reshuffles the incoming
// win64 register arguments into a normal Go call.
func goTrampolineCall(repoKey uintptr, namePtr unsafe.Pointer, nameLen int32, arg int32) int32 {
	repo, ok := repoTable[repoKey]
	if !ok {
		return 0
	}
	name := unsafe.String((*byte)(namePtr), int(nameLen))
	return repo.Call(name, arg)
}

// divZeroTrap is CALLed directly by generated code (no assembly bridge
// needed: it takes no arguments, so there is no win64-vs-Go register
// convention to reconcile) when a Div or Rem lowering's runtime
// zero-check fires. It never returns to its caller.
func divZeroTrap() {
	panic(bferrors.New(bferrors.ArithmeticTrap, "division by zero"))
}

var divZeroTrapEntry = reflect.ValueOf(divZeroTrap).Pointer()

// DivZeroTrapAddr returns the address lower.go's Div/Rem lowering
// embeds as the target of its zero-divisor guard.
func DivZeroTrapAddr() uintptr { return divZeroTrapEntry }
