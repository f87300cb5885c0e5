// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateRejectsZeroLength(t *testing.T) {
	require.Panics(t, func() { Allocate(0) })
	require.Panics(t, func() { Allocate(-8) })
	require.Panics(t, func() { AllocateAligned(0, 16) })
}

func TestAllocateAlignedRejectsBadAlignment(t *testing.T) {
	require.Panics(t, func() { AllocateAligned(8, 0) })
	require.Panics(t, func() { AllocateAligned(8, 3) })
	require.Panics(t, func() { AllocateAligned(8, -16) })
}

func TestAllocateAlignedAlignment(t *testing.T) {
	for _, alignment := range []int{8, 16, 64, 256} {
		a := AllocateAligned(32, alignment)
		require.Zero(t, a.Address()%uintptr(alignment),
			"address 0x%x not aligned to %d", a.Address(), alignment)
		a.Free()
	}
}

func TestAllocationIsZeroFilled(t *testing.T) {
	a := Allocate(64)
	defer a.Free()

	for i, b := range a.Bytes(64) {
		require.Zero(t, b, "byte %d not zero", i)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	a := Allocate(64)
	defer a.Free()

	Write(a, 0, uint64(0xDEADBEEF))
	Write(a, 8, int32(-7))
	Write(a, 12, [3]uint16{1, 2, 3})

	require.Equal(t, uint64(0xDEADBEEF), Read[uint64](a, 0))
	require.Equal(t, int32(-7), Read[int32](a, 8))
	require.Equal(t, [3]uint16{1, 2, 3}, Read[[3]uint16](a, 12))
}

func TestReadAtUnalignedOffset(t *testing.T) {
	a := Allocate(16)
	defer a.Free()

	Write(a, 3, uint32(0xABCD1234))
	require.Equal(t, uint32(0xABCD1234), Read[uint32](a, 3))
}

func TestSliceView(t *testing.T) {
	a := Allocate(8 * 4)
	defer a.Free()

	view := Slice[int64](a, 0, 4)
	require.Len(t, view, 4)
	view[2] = 42
	require.Equal(t, int64(42), Read[int64](a, 16))

	tail := Slice[int64](a, 2, 2)
	require.Equal(t, int64(42), tail[0])
}

func TestSizeReportsRequestedLength(t *testing.T) {
	a := Allocate(24)
	defer a.Free()

	size, ok := a.Size()
	require.True(t, ok)
	require.Equal(t, 24, size)
}

func TestResizePreservesLeadingBytes(t *testing.T) {
	a := Allocate(8)
	defer a.Free()

	for i := 0; i < 8; i++ {
		Write(a, i, byte(i+1))
	}

	a.Resize(32)
	size, ok := a.Size()
	require.True(t, ok)
	require.Equal(t, 32, size)
	for i := 0; i < 8; i++ {
		require.Equal(t, byte(i+1), Read[byte](a, i))
	}
	// Grown region is zero-filled.
	for i := 8; i < 32; i++ {
		require.Zero(t, Read[byte](a, i))
	}

	// Shrinking keeps the leading min(old, new) bytes.
	a.Resize(4)
	for i := 0; i < 4; i++ {
		require.Equal(t, byte(i+1), Read[byte](a, i))
	}
}

func TestEqualityOfHandles(t *testing.T) {
	a := Allocate(8)
	b := a // view of the same block
	require.True(t, a == b)

	c := Allocate(8)
	require.False(t, a == c)
	c.Free()

	a.Free()
	// Disposed handles are indistinguishable from each other and from
	// the zero value.
	require.True(t, a == Allocation{})
	require.True(t, a.IsDisposed())
	require.False(t, b.IsDisposed(), "stale copies are views, not disposed")
}

func TestCopyBetweenAllocations(t *testing.T) {
	src := Allocate(16)
	dst := Allocate(16)
	defer src.Free()
	defer dst.Free()

	for i := 0; i < 16; i++ {
		Write(src, i, byte(i))
	}
	Copy(dst, 4, src, 0, 8)
	for i := 0; i < 8; i++ {
		require.Equal(t, byte(i), Read[byte](dst, 4+i))
	}
}

func TestCopyOverlappingRanges(t *testing.T) {
	a := Allocate(8)
	defer a.Free()

	for i := 0; i < 8; i++ {
		Write(a, i, byte(i))
	}
	// Shift [0,6) right by two; overlap resolves as if through an
	// intermediate buffer.
	Copy(a, 2, a, 0, 6)
	require.Equal(t, []byte{0, 1, 0, 1, 2, 3, 4, 5}, append([]byte(nil), a.Bytes(8)...))
}

func TestAllocateValue(t *testing.T) {
	type point struct{ X, Y int32 }
	a := AllocateValue(point{X: 3, Y: -4})
	defer a.Free()

	require.Equal(t, point{X: 3, Y: -4}, Read[point](a, 0))
	size, ok := a.Size()
	require.True(t, ok)
	require.Equal(t, 8, size)
}

func TestClearZeroesRange(t *testing.T) {
	a := Allocate(8)
	defer a.Free()

	for i := 0; i < 8; i++ {
		Write(a, i, byte(0xFF))
	}
	a.Clear(2, 4)
	require.Equal(t, []byte{0xFF, 0xFF, 0, 0, 0, 0, 0xFF, 0xFF}, append([]byte(nil), a.Bytes(8)...))
}

func TestFreeOfDisposedHandlePanics(t *testing.T) {
	a := Allocate(8)
	a.Free()
	require.Panics(t, func() { a.Free() })
}

func TestOutOfBoundsAccessPanics(t *testing.T) {
	if !TrackingEnabled {
		t.Skip("bounds checks are compiled out")
	}
	a := Allocate(8)
	defer a.Free()

	require.Panics(t, func() { Read[uint64](a, 1) })
	require.Panics(t, func() { Write(a, 8, byte(0)) })
	require.Panics(t, func() { Slice[uint32](a, 1, 2) })
	require.Panics(t, func() { a.Bytes(9) })
}
