// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package unmanaged

// NewMmapAllocator falls back to the heap allocator on platforms
// without anonymous mmap support.
func NewMmapAllocator() Allocator {
	return NewHeapAllocator()
}
