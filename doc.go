// SPDX-License-Identifier: Apache-2.0

// Package unmanaged provides manually managed memory for Go programs:
// a raw allocation primitive with explicit, exactly-once release, a
// debug-mode tracking ledger that detects leaks, double frees and
// use-after-free, growable typed collections stored in raw byte
// buffers, and a binary writer/reader pair that serializes typed
// values through the same buffers.
//
// Memory obtained through this package is never reclaimed by the
// garbage collector while its Allocation handle is live; release is
// always explicit. Element types stored in allocations must not
// contain Go pointers, since the collector does not scan raw buffers.
//
// Nothing in this package is safe for concurrent use. Every handle,
// collection and cursor has exactly one logical owner, and callers
// that share one across goroutines must provide their own locking.
// The only exception is WriterPool, which synchronizes itself.
package unmanaged
