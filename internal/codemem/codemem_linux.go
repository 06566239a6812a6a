//go:build linux

package codemem

import (
	"fmt"
	"syscall"
)

// Supported reports whether this platform can allocate write-then-
// execute pages for the JIT backend. internal/executor falls back to
// the interpreted backend when this is false.
func Supported() bool { return true }

// Alloc reserves a page-rounded, zeroed, writable-but-not-yet-
// executable region of at least size bytes.
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		size = 1
	}
	page := syscall.Getpagesize()
	rounded := (size + page - 1) &^ (page - 1)
	mem, err := syscall.Mmap(-1, 0, rounded, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_PRIVATE|syscall.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("codemem: mmap %d bytes: %w", rounded, err)
	}
	return &Region{mem: mem}, nil
}

// Finalize write-protects the region down to PROT_READ|PROT_EXEC. The
// region's address (and thus any entry address already handed out for
// it) is unaffected: only the page protection bits change.
func (r *Region) Finalize() error {
	if err := syscall.Mprotect(r.mem, syscall.PROT_READ|syscall.PROT_EXEC); err != nil {
		return fmt.Errorf("codemem: mprotect exec: %w", err)
	}
	return nil
}

// Free releases the region. The Code Repository's graveyard
// (internal/repository) exists precisely so this is never called
// while any code path might still return into the region.
func (r *Region) Free() error {
	if len(r.mem) == 0 {
		return nil
	}
	return syscall.Munmap(r.mem)
}
