// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"fmt"
	"unsafe"
)

// minAlignment is the smallest alignment any backend hands out. Byte
// slices from the Go heap can be aligned as loosely as the tiny
// allocator allows, so backends pad every request up to at least this.
const minAlignment = 8

// Allocator is a memory backend that hands out raw, zero-filled blocks.
//
// Implementations keep their own address bookkeeping because they need
// it to release blocks; the tracking ledger layered above them is a
// separate, diagnostics-only concern that can be compiled out.
//
// Allocators are not safe for concurrent use.
type Allocator interface {
	// Alloc returns a zero-filled block of the given size, aligned to at
	// least alignment bytes. Allocation failure is fatal and panics.
	Alloc(size, alignment uintptr) unsafe.Pointer

	// Realloc returns a block of newSize bytes holding the leading
	// min(oldSize, newSize) bytes of ptr's block, then releases ptr.
	// The returned address is always treated as a fresh block, even when
	// it happens to equal ptr.
	Realloc(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer

	// Free releases the block at ptr. Releasing an address the allocator
	// does not know panics.
	Free(ptr unsafe.Pointer)

	// SizeOf returns the requested byte length of the block at ptr, when
	// ptr is a live block of this allocator.
	SizeOf(ptr unsafe.Pointer) (uintptr, bool)
}

// DefaultAllocator is the backend used by Allocate, AllocateAligned and
// every component built on them. Swap it (for example to
// NewMmapAllocator()) before the first allocation; switching while
// blocks are live would release them through the wrong backend.
var DefaultAllocator Allocator = NewHeapAllocator()

// heapBlock pins one Go heap buffer and remembers the caller's view of it.
type heapBlock struct {
	buf       []byte
	size      uintptr
	alignment uintptr
}

// HeapAllocator allocates blocks from the Go heap. Each block is pinned
// in an internal table so the collector cannot reclaim it until Free;
// release is therefore deterministic from the ledger's point of view
// while reclamation is left to the collector.
type HeapAllocator struct {
	blocks map[uintptr]heapBlock
}

// NewHeapAllocator returns an empty heap-backed allocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{blocks: make(map[uintptr]heapBlock)}
}

// Alloc satisfies the Allocator interface.
func (h *HeapAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	if alignment < minAlignment {
		alignment = minAlignment
	}
	buf := make([]byte, size+alignment-1) // zero-filled, padded for alignment
	ptr := align(unsafe.Pointer(unsafe.SliceData(buf)), alignment)
	h.blocks[uintptr(ptr)] = heapBlock{buf: buf, size: size, alignment: alignment}
	return ptr
}

// Realloc satisfies the Allocator interface.
func (h *HeapAllocator) Realloc(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	old, ok := h.blocks[uintptr(ptr)]
	if !ok {
		panic(fmt.Sprintf("unmanaged: realloc of untracked address 0x%x", uintptr(ptr)))
	}
	next := h.Alloc(newSize, old.alignment)
	copyRaw(next, ptr, min(old.size, newSize))
	delete(h.blocks, uintptr(ptr))
	return next
}

// Free satisfies the Allocator interface.
func (h *HeapAllocator) Free(ptr unsafe.Pointer) {
	if _, ok := h.blocks[uintptr(ptr)]; !ok {
		panic(fmt.Sprintf("unmanaged: free of untracked address 0x%x", uintptr(ptr)))
	}
	delete(h.blocks, uintptr(ptr)) // unpins; the collector reclaims the buffer
}

// SizeOf satisfies the Allocator interface.
func (h *HeapAllocator) SizeOf(ptr unsafe.Pointer) (uintptr, bool) {
	block, ok := h.blocks[uintptr(ptr)]
	return block.size, ok
}

// align rounds ptr up to the next multiple of alignment.
func align(ptr unsafe.Pointer, alignment uintptr) unsafe.Pointer {
	rem := uintptr(ptr) % alignment
	if rem == 0 {
		return ptr
	}
	return unsafe.Add(ptr, alignment-rem)
}

// copyRaw copies n bytes between raw addresses. The copy builtin gives
// it memmove semantics, so overlapping ranges are well defined.
func copyRaw(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
