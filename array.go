// SPDX-License-Identifier: Apache-2.0

package unmanaged

import "fmt"

// Array is a fixed-length sequence of elements stored in one raw
// allocation. Unlike List it never grows on its own; the length only
// changes through an explicit Resize. Element types must not contain
// Go pointers.
type Array[T comparable] struct {
	mem    Allocation
	length int
}

// NewArray creates an array of length zero-valued elements. Length must
// be positive, matching the construction rule of every collection here.
func NewArray[T comparable](length int) *Array[T] {
	if length <= 0 {
		panic(fmt.Sprintf("unmanaged: array length %d, must be positive", length))
	}
	return &Array[T]{
		mem:    Allocate(length * elementSize[T]()),
		length: length,
	}
}

// NewArrayFrom creates an array holding a copy of values.
func NewArrayFrom[T comparable](values []T) *Array[T] {
	a := NewArray[T](len(values))
	copy(a.Slice(), values)
	return a
}

// Length returns the element count.
func (a *Array[T]) Length() int { return a.length }

// Slice returns the typed view over all elements. The view is valid
// until the array is resized or freed.
func (a *Array[T]) Slice() []T {
	return Slice[T](a.mem, 0, a.length)
}

// At returns the element at index.
func (a *Array[T]) At(index int) T {
	a.checkIndex(index)
	return a.Slice()[index]
}

// Set stores value at index.
func (a *Array[T]) Set(index int, value T) {
	a.checkIndex(index)
	a.Slice()[index] = value
}

// Fill sets every element to value.
func (a *Array[T]) Fill(value T) {
	s := a.Slice()
	for i := range s {
		s[i] = value
	}
}

// TryIndexOf returns the index of the first element equal to item, and
// whether one was found.
func (a *Array[T]) TryIndexOf(item T) (int, bool) {
	s := a.Slice()
	for i := range s {
		if s[i] == item {
			return i, true
		}
	}
	return 0, false
}

// IndexOf returns the index of the first element equal to item,
// panicking when the value is absent.
func (a *Array[T]) IndexOf(item T) int {
	if index, ok := a.TryIndexOf(item); ok {
		return index
	}
	panic(fmt.Sprintf("unmanaged: value %v not found in array", item))
}

// Contains reports whether the array holds an element equal to item.
func (a *Array[T]) Contains(item T) bool {
	_, ok := a.TryIndexOf(item)
	return ok
}

// Resize reallocates the array to newLength elements, preserving the
// leading min(old, new) elements. Added elements are zero-valued.
func (a *Array[T]) Resize(newLength int) {
	if newLength <= 0 {
		panic(fmt.Sprintf("unmanaged: array length %d, must be positive", newLength))
	}
	if newLength == a.length {
		return
	}
	a.mem.Resize(newLength * elementSize[T]())
	a.length = newLength
}

// Hash returns a content hash with the same composition as List.Hash:
// element type identity, count, and djb2 over the live bytes.
func (a *Array[T]) Hash() uint32 {
	h := djb2(a.mem.Bytes(a.length * elementSize[T]()))
	h = h*33 ^ uint32(a.length)
	h = h*33 ^ uint32(TypeIDOf[T]())
	return h
}

// Free releases the backing allocation.
func (a *Array[T]) Free() {
	a.mem.Free()
	a.length = 0
}

func (a *Array[T]) checkIndex(index int) {
	if index < 0 || index >= a.length {
		panic(fmt.Sprintf("unmanaged: index %d out of range for array of %d", index, a.length))
	}
}
