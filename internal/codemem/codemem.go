// Package codemem owns the executable memory pages backing JIT
// Artifacts. Allocation follows wazero's internal/platform precedent
// for this exact concern: raw syscall.Mmap/Mprotect, no third-party
// mmap wrapper (wazero's own go.mod carries no golang.org/x/sys
// dependency at all for this).
package codemem

// Region is one write-then-execute memory region owned by a single
// Artifact. Its address never changes after Finalize: compiled entry
// points must never move once a caller holds one.
type Region struct {
	mem []byte
}

// Addr returns the base address of the region as a uintptr, suitable
// for baking into other generated code as an immediate (the trampoline
// helper resolves callees by name, never by address, but the entry
// address is still needed to invoke a Runable directly from Go; see
// internal/jit/artifact.go).
func (r *Region) Addr() uintptr {
	if len(r.mem) == 0 {
		return 0
	}
	return uintptrOf(r.mem)
}

// Bytes exposes the region's contents, valid to read regardless of
// whether it is currently write-protected or execute-protected.
func (r *Region) Bytes() []byte { return r.mem }

// Len returns the size of the region in bytes (page-rounded).
func (r *Region) Len() int { return len(r.mem) }
