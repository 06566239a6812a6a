package codemem

import "unsafe"

// uintptrOf returns the address of b's backing array. b must be
// non-empty and must not be moved afterward; mmap'd slices never are,
// since the Go runtime's (non-moving) GC never relocates memory it did
// not allocate.
func uintptrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}
