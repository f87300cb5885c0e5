// SPDX-License-Identifier: Apache-2.0

//go:build unix

package unmanaged

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapBlock records one anonymous mapping and the caller's block inside it.
type mmapBlock struct {
	mapping   []byte
	size      uintptr
	alignment uintptr
}

// mmapAllocator obtains blocks from anonymous private mappings instead
// of the Go heap. Freed blocks are unmapped immediately, so release is
// fully deterministic and use-after-free faults at the hardware level
// rather than silently reading stale heap memory.
type mmapAllocator struct {
	blocks map[uintptr]mmapBlock
}

// NewMmapAllocator returns an allocator backed by anonymous mmap. On
// platforms without mmap the fallback constructor returns a heap
// allocator instead.
func NewMmapAllocator() Allocator {
	return &mmapAllocator{blocks: make(map[uintptr]mmapBlock)}
}

// Alloc satisfies the Allocator interface.
func (m *mmapAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	if alignment < minAlignment {
		alignment = minAlignment
	}
	mapping, err := unix.Mmap(-1, 0, int(size+alignment-1),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		panic(fmt.Sprintf("unmanaged: mmap of %d bytes failed: %v", size, err))
	}
	// Mappings are page aligned, so the shift below is zero for any
	// alignment up to the page size.
	ptr := align(unsafe.Pointer(unsafe.SliceData(mapping)), alignment)
	m.blocks[uintptr(ptr)] = mmapBlock{mapping: mapping, size: size, alignment: alignment}
	return ptr
}

// Realloc satisfies the Allocator interface.
func (m *mmapAllocator) Realloc(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	old, ok := m.blocks[uintptr(ptr)]
	if !ok {
		panic(fmt.Sprintf("unmanaged: realloc of untracked address 0x%x", uintptr(ptr)))
	}
	next := m.Alloc(newSize, old.alignment)
	copyRaw(next, ptr, min(old.size, newSize))
	m.Free(ptr)
	return next
}

// Free satisfies the Allocator interface.
func (m *mmapAllocator) Free(ptr unsafe.Pointer) {
	block, ok := m.blocks[uintptr(ptr)]
	if !ok {
		panic(fmt.Sprintf("unmanaged: free of untracked address 0x%x", uintptr(ptr)))
	}
	delete(m.blocks, uintptr(ptr))
	if err := unix.Munmap(block.mapping); err != nil {
		panic(fmt.Sprintf("unmanaged: munmap of 0x%x failed: %v", uintptr(ptr), err))
	}
}

// SizeOf satisfies the Allocator interface.
func (m *mmapAllocator) SizeOf(ptr unsafe.Pointer) (uintptr, bool) {
	block, ok := m.blocks[uintptr(ptr)]
	return block.size, ok
}
