// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"fmt"
	"unsafe"
)

// List is a growable sequence of fixed-size elements stored in one raw
// allocation, which it owns and reallocates on growth. Element types
// must not contain Go pointers.
type List[T comparable] struct {
	mem      Allocation
	count    int
	capacity int
}

// NewList creates a list with the given element capacity. Capacity must
// be positive; a zero-capacity list is a construction error, enforced
// in every build so callers state their sizing intent explicitly.
func NewList[T comparable](capacity int) *List[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("unmanaged: list capacity %d, must be positive", capacity))
	}
	size := elementSize[T]()
	return &List[T]{
		mem:      Allocate(capacity * size),
		capacity: capacity,
	}
}

// NewListFrom creates a list holding a copy of values, with capacity
// equal to len(values). An empty values slice panics, as NewList would.
func NewListFrom[T comparable](values []T) *List[T] {
	l := NewList[T](len(values))
	l.AddRange(values)
	return l
}

// Count returns the number of live elements.
func (l *List[T]) Count() int { return l.count }

// Capacity returns the allocated element capacity.
func (l *List[T]) Capacity() int { return l.capacity }

// Slice returns a typed view of the live elements. The view is valid
// until the next operation that grows or frees the list.
func (l *List[T]) Slice() []T {
	return Slice[T](l.mem, 0, l.count)
}

// Add appends item, doubling the capacity first when the list is full.
func (l *List[T]) Add(item T) {
	l.ensure(l.count + 1)
	l.all()[l.count] = item
	l.count++
}

// AddRange appends all of values in one contiguous copy.
func (l *List[T]) AddRange(values []T) {
	if len(values) == 0 {
		return
	}
	l.ensure(l.count + len(values))
	copy(l.all()[l.count:], values)
	l.count += len(values)
}

// Insert places item at index, shifting the trailing elements one slot
// right. index may equal Count, which appends. Larger indexes panic.
func (l *List[T]) Insert(index int, item T) {
	if index < 0 || index > l.count {
		panic(fmt.Sprintf("unmanaged: insert index %d out of range for list of %d", index, l.count))
	}
	l.ensure(l.count + 1)
	s := l.all()
	copy(s[index+1:l.count+1], s[index:l.count])
	s[index] = item
	l.count++
}

// RemoveAt removes and returns the element at index, shifting the
// trailing elements one slot left so order is preserved.
func (l *List[T]) RemoveAt(index int) T {
	l.checkIndex(index)
	s := l.all()
	removed := s[index]
	copy(s[index:l.count-1], s[index+1:l.count])
	l.count--
	return removed
}

// RemoveAtSwapBack removes and returns the element at index by moving
// the last element into the vacated slot. O(1), but reorders the list.
func (l *List[T]) RemoveAtSwapBack(index int) T {
	l.checkIndex(index)
	s := l.all()
	removed := s[index]
	s[index] = s[l.count-1]
	l.count--
	return removed
}

// IndexOf returns the index of the first element equal to item. A
// missing value panics; use TryIndexOf when absence is expected.
func (l *List[T]) IndexOf(item T) int {
	if index, ok := l.TryIndexOf(item); ok {
		return index
	}
	panic(fmt.Sprintf("unmanaged: value %v not found in list", item))
}

// TryIndexOf returns the index of the first element equal to item, and
// whether one was found.
func (l *List[T]) TryIndexOf(item T) (int, bool) {
	s := l.all()
	for i := 0; i < l.count; i++ {
		if s[i] == item {
			return i, true
		}
	}
	return 0, false
}

// Contains reports whether the list holds an element equal to item.
func (l *List[T]) Contains(item T) bool {
	_, ok := l.TryIndexOf(item)
	return ok
}

// SetCapacity reallocates the backing block to exactly newCapacity
// elements, independent of the growth policy. It cannot shrink below
// the live count.
func (l *List[T]) SetCapacity(newCapacity int) {
	if newCapacity <= 0 {
		panic(fmt.Sprintf("unmanaged: list capacity %d, must be positive", newCapacity))
	}
	if newCapacity < l.count {
		panic(fmt.Sprintf("unmanaged: capacity %d below live count %d", newCapacity, l.count))
	}
	if newCapacity == l.capacity {
		return
	}
	l.mem.Resize(newCapacity * elementSize[T]())
	l.capacity = newCapacity
}

// Clear resets the count to zero without touching capacity or contents.
func (l *List[T]) Clear() {
	l.count = 0
}

// ClearWithCapacity resets the count to zero and grows the capacity to
// at least minimumCapacity. Since the list is empty afterwards, growth
// does not copy old contents.
func (l *List[T]) ClearWithCapacity(minimumCapacity int) {
	l.count = 0
	if minimumCapacity > l.capacity {
		l.mem.Free()
		l.mem = Allocate(minimumCapacity * elementSize[T]())
		l.capacity = minimumCapacity
	}
}

// Hash returns a content hash combining the element type identity, the
// live count and a djb2 hash of the live byte range. Two lists with the
// same element type and contents hash equal regardless of their backing
// addresses.
func (l *List[T]) Hash() uint32 {
	h := djb2(l.mem.Bytes(l.count * elementSize[T]()))
	h = h*33 ^ uint32(l.count)
	h = h*33 ^ uint32(TypeIDOf[T]())
	return h
}

// Free releases the backing allocation. The list must not be used
// afterwards.
func (l *List[T]) Free() {
	l.mem.Free()
	l.count = 0
	l.capacity = 0
}

// ReinterpretAs returns a view of the list's live bytes as elements of
// To. The live byte length must be a whole multiple of To's size;
// anything else panics, since a partial trailing element has no
// meaning.
func ReinterpretAs[To comparable, From comparable](l *List[From]) []To {
	byteLength := l.count * elementSize[From]()
	size := elementSize[To]()
	if byteLength%size != 0 {
		panic(fmt.Sprintf("unmanaged: %d stored bytes not divisible by element size %d", byteLength, size))
	}
	return Slice[To](l.mem, 0, byteLength/size)
}

// all returns the view over the full capacity, not just live elements.
func (l *List[T]) all() []T {
	return Slice[T](l.mem, 0, l.capacity)
}

// ensure grows the backing block by repeated doubling until it holds at
// least needed elements. Growth is never by arbitrary increments, which
// keeps amortized append cost constant.
func (l *List[T]) ensure(needed int) {
	if needed <= l.capacity {
		return
	}
	if l.capacity == 0 {
		panic("unmanaged: use of freed list")
	}
	newCapacity := l.capacity
	for newCapacity < needed {
		newCapacity *= 2
	}
	l.mem.Resize(newCapacity * elementSize[T]())
	l.capacity = newCapacity
}

func (l *List[T]) checkIndex(index int) {
	if index < 0 || index >= l.count {
		panic(fmt.Sprintf("unmanaged: index %d out of range for list of %d", index, l.count))
	}
}

// elementSize returns the byte size of T, rejecting zero-size types
// which cannot live in raw buffers.
func elementSize[T any]() int {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		panic("unmanaged: element type has zero size")
	}
	return size
}
