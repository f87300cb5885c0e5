// SPDX-License-Identifier: Apache-2.0

package unmanaged

import "sync"

// WriterPool recycles Writers across uses to avoid re-growing buffers
// for recurring serialization workloads. Writers are keyed by a caller
// chosen use-case key, and replacement writers are sized from the
// rolling mean of the peak positions observed for that key.
//
// The pool guards its own state with a mutex, but the writers it hands
// out stay single-owner, and the shared allocation backend underneath
// is unsynchronized: processes that allocate from several goroutines
// still need their own external locking around all allocation activity.
//
// Unlike a garbage-collected pool, idle writers own manual memory, so
// the pool keeps strong references and caps the idle set; a Release
// that would exceed the cap frees the writer immediately instead of
// letting it linger.
type WriterPool struct {
	idle    []*PooledWriter
	sizes   map[uint64]*pooledWriterSize
	maxIdle int
	mu      sync.Mutex
}

// pooledWriterSize tracks required capacity across the last 50 writers
// released under one key.
type pooledWriterSize struct {
	count      int
	totalBytes int
}

// PooledWriter wraps a Writer for use in the pool.
type PooledWriter struct {
	Writer *Writer
	Key    uint64
}

const (
	defaultPooledCapacity = 256
	defaultMaxIdle        = 16
)

// NewWriterPool creates an empty pool holding at most maxIdle idle
// writers; maxIdle values below one fall back to the default.
func NewWriterPool(maxIdle int) *WriterPool {
	if maxIdle < 1 {
		maxIdle = defaultMaxIdle
	}
	return &WriterPool{
		sizes:   make(map[uint64]*pooledWriterSize),
		maxIdle: maxIdle,
	}
}

// Acquire returns an idle writer, or creates one sized for the given
// use-case key. The caller owns the writer until Release.
func (p *WriterPool) Acquire(key uint64) *PooledWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.idle); n > 0 {
		item := p.idle[n-1]
		p.idle = p.idle[:n-1]
		item.Key = key
		return item
	}
	return &PooledWriter{
		Writer: NewWriter(p.writerSize(key)),
		Key:    key,
	}
}

// Release returns a writer to the pool, recording its peak usage so
// future writers for the same key start with enough capacity. When the
// idle set is full the writer's memory is freed instead.
func (p *WriterPool) Release(item *PooledWriter) {
	peak := item.Writer.Peak()
	item.Writer.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.recordPeak(item.Key, peak)
	item.Key = 0
	if len(p.idle) >= p.maxIdle {
		item.Writer.Free()
		return
	}
	p.idle = append(p.idle, item)
}

// ReleaseMany returns several writers at once under one lock.
func (p *WriterPool) ReleaseMany(items []*PooledWriter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, item := range items {
		peak := item.Writer.Peak()
		item.Writer.Reset()
		p.recordPeak(item.Key, peak)
		item.Key = 0
		if len(p.idle) >= p.maxIdle {
			item.Writer.Free()
			continue
		}
		p.idle = append(p.idle, item)
	}
}

// Drain frees every idle writer. Call it at teardown so pooled buffers
// do not show up as leaks in the ledger.
func (p *WriterPool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, item := range p.idle {
		item.Writer.Free()
	}
	p.idle = p.idle[:0]
}

func (p *WriterPool) recordPeak(key uint64, peak int) {
	if size, ok := p.sizes[key]; ok {
		if size.count == 50 {
			size.count = 1
			size.totalBytes = size.totalBytes / 50
		}
		size.count++
		size.totalBytes += peak
	} else {
		p.sizes[key] = &pooledWriterSize{count: 1, totalBytes: peak}
	}
}

// writerSize returns the starting capacity for a given use-case key.
func (p *WriterPool) writerSize(key uint64) int {
	if size, ok := p.sizes[key]; ok && size.totalBytes > 0 {
		mean := size.totalBytes / size.count
		if mean > 0 {
			return mean
		}
	}
	return defaultPooledCapacity
}
