//go:build linux

package codemem_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/codemem"
)

func TestAllocFinalizeFreeRoundtrip(t *testing.T) {
	require.True(t, codemem.Supported())

	r, err := codemem.Alloc(16)
	require.NoError(t, err)
	require.NotZero(t, r.Addr())

	// ret (0xC3) is valid executable code on its own.
	copy(r.Bytes(), []byte{0xC3})

	addrBefore := r.Addr()
	require.NoError(t, r.Finalize())
	require.NoError(t, r.Free())
	require.Equal(t, addrBefore, r.Addr(), "address must stay stable across Finalize")
}

func TestAllocRoundsUpToPageSize(t *testing.T) {
	r, err := codemem.Alloc(1)
	require.NoError(t, err)
	require.Equal(t, os.Getpagesize(), r.Len())
	defer r.Free()
}
