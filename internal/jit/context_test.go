package jit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/asm/amd64"
	"github.com/tobix/bfprove/internal/bferrors"
)

func TestNextScratchNeverYieldsParamOrFixedRegs(t *testing.T) {
	ctx := NewContext(amd64.New(), "x")
	seen := make(map[amd64.Reg]bool)
	for i := 0; i < len(scratchPool); i++ {
		r := ctx.nextScratch()
		require.False(t, seen[r], "register handed out twice before release: %v", r)
		seen[r] = true
		require.NotEqual(t, amd64.CX, r)
		require.NotEqual(t, amd64.AX, r)
		require.NotEqual(t, amd64.DX, r)
	}
}

func TestScratchPoolExhaustionPanics(t *testing.T) {
	ctx := NewContext(amd64.New(), "x")
	for i := 0; i < len(scratchPool); i++ {
		ctx.nextScratch()
	}
	require.PanicsWithValue(t, bferrors.New(bferrors.ResourceExhaustion, "scratch register pool exhausted"), func() {
		ctx.nextScratch()
	})
}

func TestResolveVarMatchesOnlyTheBoundParameterName(t *testing.T) {
	ctx := NewContext(amd64.New(), "x")
	r, ok := ctx.ResolveVar("x")
	require.True(t, ok)
	require.Equal(t, ctx.Param(), r)

	_, ok = ctx.ResolveVar("y")
	require.False(t, ok, "a second, distinct variable name is not the bound parameter")

	noParam := NewContext(amd64.New(), "")
	_, ok = noParam.ResolveVar("x")
	require.False(t, ok, "a compilation with no bound parameter resolves nothing")
}

func TestMaybeReleaseIsIdempotentAndIgnoresParam(t *testing.T) {
	ctx := NewContext(amd64.New(), "x")
	r := ctx.nextScratch()
	ctx.maybeRelease(r)
	ctx.maybeRelease(r) // double release must not duplicate the free slot
	count := 0
	for _, f := range ctx.free {
		if f == r {
			count++
		}
	}
	require.Equal(t, 1, count)

	ctx.maybeRelease(ctx.Param()) // no-op, CX is never pool-managed
	for _, f := range ctx.free {
		require.NotEqual(t, amd64.CX, f)
	}
}
