// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterPoolReusesWriters(t *testing.T) {
	p := NewWriterPool(4)
	defer p.Drain()

	item := p.Acquire(1)
	first := item.Writer
	WriteValue(first, uint64(7))
	p.Release(item)

	again := p.Acquire(1)
	require.Same(t, first, again.Writer)
	require.Zero(t, again.Writer.Position(), "released writers come back reset")
	p.Release(again)
}

func TestWriterPoolSizesFromObservedPeaks(t *testing.T) {
	p := NewWriterPool(1)
	defer p.Drain()

	item := p.Acquire(7)
	WriteSpan(item.Writer, make([]byte, 4096))
	p.Release(item)

	// Occupy the single idle slot so the next acquire creates fresh.
	holder := p.Acquire(7)
	fresh := p.Acquire(7)
	require.GreaterOrEqual(t, fresh.Writer.Capacity(), 4096,
		"replacement writers start at the observed mean peak")
	p.ReleaseMany([]*PooledWriter{holder, fresh})
}

func TestWriterPoolCapsIdleSet(t *testing.T) {
	if !TrackingEnabled {
		t.Skip("tracking is compiled out")
	}
	ResetTracking()

	p := NewWriterPool(2)
	items := []*PooledWriter{p.Acquire(0), p.Acquire(0), p.Acquire(0)}
	p.ReleaseMany(items)

	// One writer was freed on release, two idle remain.
	require.Len(t, Leaks(), 2)
	p.Drain()
	require.Empty(t, Leaks())
}
