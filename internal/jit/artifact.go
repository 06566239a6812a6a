package jit

import "github.com/tobix/bfprove/internal/codemem"

// Runable is a finalized, callable, executable-memory-backed piece of
// generated code: the concrete Artifact (internal/repository.Artifact)
// this package installs into the Code Repository.
type Runable struct {
	region *codemem.Region
}

// NewRunable finalizes region (making it executable) and wraps it.
// Callers must not write to region.Bytes() afterward.
func NewRunable(region *codemem.Region) (*Runable, error) {
	if err := region.Finalize(); err != nil {
		return nil, err
	}
	return &Runable{region: region}, nil
}

// Call invokes the compiled function with arg, via the win64-bridging
// trampoline in trampoline_amd64.s.
func (r *Runable) Call(arg int32) int32 {
	return callWin64(r.region.Addr(), int64(arg))
}

// Bytes exposes the raw machine code for the `.show` command
// (internal/repository.Print).
func (r *Runable) Bytes() []byte { return r.region.Bytes() }
