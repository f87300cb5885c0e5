// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"fmt"
	"unsafe"
)

// Allocation is a handle to one contiguous, exclusively owned block of
// raw memory. The handle itself is just the starting address; byte
// length lives in the allocator's bookkeeping and, when tracking is
// enabled, in the ledger.
//
// Copies of an Allocation are views of the same block. Freeing through
// any copy invalidates all of them; the ledger detects (but cannot
// prevent) use of a stale copy. Two handles are equal when they point
// at the same address, and all disposed handles are equal to each other
// and to the zero value, so == works for both comparisons.
type Allocation struct {
	ptr unsafe.Pointer
}

// Allocate returns a zero-filled block of byteLength bytes from the
// DefaultAllocator and registers it with the tracking ledger.
// A zero or negative length panics: it always indicates a caller bug,
// so the check is enforced in every build.
func Allocate(byteLength int) Allocation {
	if byteLength <= 0 {
		panic(fmt.Sprintf("unmanaged: allocation of %d bytes requested, length must be positive", byteLength))
	}
	ptr := DefaultAllocator.Alloc(uintptr(byteLength), minAlignment)
	trackRegister(uintptr(ptr), uintptr(byteLength), classPlain)
	return Allocation{ptr: ptr}
}

// AllocateAligned is Allocate with an explicit alignment, which must be
// a positive power of two. The block is registered under the aligned
// class so leak reports can tell the two acquisition paths apart.
func AllocateAligned(byteLength, alignment int) Allocation {
	if byteLength <= 0 {
		panic(fmt.Sprintf("unmanaged: allocation of %d bytes requested, length must be positive", byteLength))
	}
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		panic(fmt.Sprintf("unmanaged: alignment %d is not a positive power of two", alignment))
	}
	ptr := DefaultAllocator.Alloc(uintptr(byteLength), uintptr(alignment))
	trackRegister(uintptr(ptr), uintptr(byteLength), classAligned)
	return Allocation{ptr: ptr}
}

// AllocateValue allocates a block holding a copy of value.
func AllocateValue[T any](value T) Allocation {
	a := Allocate(int(unsafe.Sizeof(value)))
	Write(a, 0, value)
	return a
}

// Address returns the block's starting address, or 0 for a disposed handle.
func (a Allocation) Address() uintptr {
	return uintptr(a.ptr)
}

// IsDisposed reports whether the handle is the disposed (zero) value.
// A live copy of a freed handle still reports false; only the ledger
// can catch that case.
func (a Allocation) IsDisposed() bool {
	return a.ptr == nil
}

// Size returns the block's requested byte length, preferring the
// ledger's record and falling back to the allocator's bookkeeping when
// tracking is compiled out.
func (a Allocation) Size() (int, bool) {
	if a.ptr == nil {
		return 0, false
	}
	if size, ok := trackSize(uintptr(a.ptr)); ok {
		return int(size), true
	}
	size, ok := DefaultAllocator.SizeOf(a.ptr)
	return int(size), ok
}

// AssertLive panics unless the handle refers to a currently registered
// block, distinguishing use-after-free from never-allocated addresses
// in the message. It is a no-op when tracking is compiled out.
func (a Allocation) AssertLive() {
	trackAssertLive(uintptr(a.ptr))
}

// Free releases the block exactly once: the address is removed from the
// ledger, returned to the allocator, and the receiver becomes the
// disposed handle. Freeing an already disposed handle, or a stale copy
// of a freed one, panics.
func (a *Allocation) Free() {
	if a.ptr == nil {
		panic("unmanaged: free of disposed allocation")
	}
	trackUnregister(uintptr(a.ptr))
	DefaultAllocator.Free(a.ptr)
	a.ptr = nil
}

// Resize reallocates the block to newByteLength bytes, preserving the
// leading min(old, new) bytes. The old address is unregistered and the
// new one registered even when the backend returns the same address, so
// the ledger never silently aliases the two lifetimes.
func (a *Allocation) Resize(newByteLength int) {
	if newByteLength <= 0 {
		panic(fmt.Sprintf("unmanaged: resize to %d bytes requested, length must be positive", newByteLength))
	}
	if a.ptr == nil {
		panic("unmanaged: resize of disposed allocation")
	}
	class := trackClass(uintptr(a.ptr))
	trackUnregister(uintptr(a.ptr))
	a.ptr = DefaultAllocator.Realloc(a.ptr, uintptr(newByteLength))
	trackRegister(uintptr(a.ptr), uintptr(newByteLength), class)
}

// Bytes returns a byte view of the block's first byteLength bytes.
// The view is bounds-checked against the ledger in tracking builds and
// trusted otherwise.
func (a Allocation) Bytes(byteLength int) []byte {
	if byteLength < 0 {
		panic(fmt.Sprintf("unmanaged: negative view length %d", byteLength))
	}
	trackBounds(uintptr(a.ptr), 0, uintptr(byteLength))
	return unsafe.Slice((*byte)(a.ptr), byteLength)
}

// Clear zero-fills byteLength bytes starting at byteOffset.
func (a Allocation) Clear(byteOffset, byteLength int) {
	trackBounds(uintptr(a.ptr), uintptr(byteOffset), uintptr(byteLength))
	b := unsafe.Slice((*byte)(unsafe.Add(a.ptr, byteOffset)), byteLength)
	clear(b)
}

// Read copies the value of type T stored at byteOffset out of the
// block. The offset may be unaligned; the value is assembled with a
// byte copy. Bounds are checked only in tracking builds.
func Read[T any](a Allocation, byteOffset int) T {
	var value T
	size := unsafe.Sizeof(value)
	trackBounds(uintptr(a.ptr), uintptr(byteOffset), size)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&value)), size)
	src := unsafe.Slice((*byte)(unsafe.Add(a.ptr, byteOffset)), size)
	copy(dst, src)
	return value
}

// Write copies value into the block at byteOffset. The offset may be
// unaligned. Bounds are checked only in tracking builds.
func Write[T any](a Allocation, byteOffset int, value T) {
	size := unsafe.Sizeof(value)
	trackBounds(uintptr(a.ptr), uintptr(byteOffset), size)
	dst := unsafe.Slice((*byte)(unsafe.Add(a.ptr, byteOffset)), size)
	src := unsafe.Slice((*byte)(unsafe.Pointer(&value)), size)
	copy(dst, src)
}

// Slice returns a typed view of elementCount elements of T starting at
// element index startElement. The element offset must respect T's
// natural alignment; offsets that are whole multiples of the element
// size always do, since blocks are at least 8-byte aligned.
func Slice[T any](a Allocation, startElement, elementCount int) []T {
	if startElement < 0 || elementCount < 0 {
		panic(fmt.Sprintf("unmanaged: invalid view [%d, %d)", startElement, startElement+elementCount))
	}
	var zero T
	size := unsafe.Sizeof(zero)
	trackBounds(uintptr(a.ptr), uintptr(startElement)*size, uintptr(elementCount)*size)
	first := (*T)(unsafe.Add(a.ptr, uintptr(startElement)*size))
	return unsafe.Slice(first, elementCount)
}

// Copy moves byteLength bytes from source at sourceOffset to
// destination at destinationOffset. Source and destination may be the
// same block with overlapping ranges; the copy behaves as if it went
// through an intermediate buffer.
func Copy(destination Allocation, destinationOffset int, source Allocation, sourceOffset int, byteLength int) {
	if byteLength < 0 {
		panic(fmt.Sprintf("unmanaged: negative copy length %d", byteLength))
	}
	trackBounds(uintptr(source.ptr), uintptr(sourceOffset), uintptr(byteLength))
	trackBounds(uintptr(destination.ptr), uintptr(destinationOffset), uintptr(byteLength))
	copyRaw(unsafe.Add(destination.ptr, destinationOffset), unsafe.Add(source.ptr, sourceOffset), uintptr(byteLength))
}
