// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewArrayRejectsZeroLength(t *testing.T) {
	require.Panics(t, func() { NewArray[int32](0) })
	require.Panics(t, func() { NewArray[int32](-4) })
}

func TestArrayStartsZeroValued(t *testing.T) {
	a := NewArray[int64](16)
	defer a.Free()

	require.Equal(t, 16, a.Length())
	for _, v := range a.Slice() {
		require.Zero(t, v)
	}
}

func TestArrayAtAndSet(t *testing.T) {
	a := NewArray[int32](4)
	defer a.Free()

	a.Set(2, 99)
	require.Equal(t, int32(99), a.At(2))
	require.Panics(t, func() { a.At(4) })
	require.Panics(t, func() { a.Set(-1, 0) })
}

func TestArrayFill(t *testing.T) {
	a := NewArray[uint16](8)
	defer a.Free()

	a.Fill(0xBEEF)
	for _, v := range a.Slice() {
		require.Equal(t, uint16(0xBEEF), v)
	}
}

func TestArrayResize(t *testing.T) {
	a := NewArrayFrom([]int32{1, 2, 3})
	defer a.Free()

	a.Resize(6)
	require.Equal(t, 6, a.Length())
	require.Equal(t, []int32{1, 2, 3, 0, 0, 0}, append([]int32(nil), a.Slice()...))

	a.Resize(2)
	require.Equal(t, []int32{1, 2}, append([]int32(nil), a.Slice()...))
}

func TestArrayIndexOf(t *testing.T) {
	a := NewArrayFrom([]int32{4, 5, 6})
	defer a.Free()

	require.Equal(t, 1, a.IndexOf(5))
	require.True(t, a.Contains(6))
	_, ok := a.TryIndexOf(7)
	require.False(t, ok)
	require.Panics(t, func() { a.IndexOf(7) })
}

func TestArrayHashMatchesListComposition(t *testing.T) {
	a := NewArrayFrom([]int32{1, 2, 3})
	b := NewArrayFrom([]int32{1, 2, 3})
	defer a.Free()
	defer b.Free()

	require.Equal(t, a.Hash(), b.Hash())

	b.Set(0, 9)
	require.NotEqual(t, a.Hash(), b.Hash())
}
