// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Writer is a sequential cursor that serializes typed values into a
// growable raw allocation it owns. The produced stream is flat and
// non-self-describing: readers must know the exact sequence of types
// that was written. Values are stored in their native in-memory layout.
//
// Writer implements io.Writer and io.ByteWriter for draining into the
// stream from external sources.
type Writer struct {
	mem      Allocation
	position int
	capacity int
	peak     int
}

// NewWriter creates a writer with the given initial byte capacity,
// which must be positive.
func NewWriter(capacity int) *Writer {
	if capacity <= 0 {
		panic(fmt.Sprintf("unmanaged: writer capacity %d, must be positive", capacity))
	}
	return &Writer{
		mem:      Allocate(capacity),
		capacity: capacity,
	}
}

// Position returns the current write offset.
func (w *Writer) Position() int { return w.position }

// SetPosition moves the write offset. It may not exceed the current
// capacity. Moving backwards truncates logically without freeing or
// clearing anything, which is how a writer is reused.
func (w *Writer) SetPosition(position int) {
	if position < 0 || position > w.capacity {
		panic(fmt.Sprintf("unmanaged: position %d outside buffer of %d bytes", position, w.capacity))
	}
	w.position = position
}

// Capacity returns the allocated byte capacity.
func (w *Writer) Capacity() int { return w.capacity }

// Peak returns the high-water mark of the write offset over the
// writer's lifetime, including across Reset. Pools use it to size
// replacement writers.
func (w *Writer) Peak() int { return w.peak }

// Reset moves the write offset to zero, keeping the buffer for reuse.
func (w *Writer) Reset() { w.position = 0 }

// Bytes returns a view of the written bytes [0, Position). The view is
// valid until the next write that grows the buffer, and borrowing it
// never transfers ownership.
func (w *Writer) Bytes() []byte {
	return w.mem.Bytes(w.position)
}

// Write implements io.Writer. It never returns an error; growth failure
// is fatal in the backing allocator.
func (w *Writer) Write(p []byte) (int, error) {
	w.writeBytes(p)
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(c byte) error {
	w.ensure(1)
	w.mem.Bytes(w.capacity)[w.position] = c
	w.advance(1)
	return nil
}

// WriteText appends text as a 4-byte little-endian byte count followed
// by the UTF-8 bytes. The explicit length prefix is the one end-of-text
// convention of the format; no terminator is ever written.
func (w *Writer) WriteText(text string) {
	w.writeTextLength(len(text))
	w.writeBytes([]byte(text))
}

// WriteText16 appends text as a 4-byte little-endian byte count
// followed by UTF-16LE code units, for consumers that exchange UTF-16
// payloads.
func (w *Writer) WriteText16(text string) error {
	encoded, err := encodeUTF16LE(text)
	if err != nil {
		return err
	}
	w.writeTextLength(len(encoded))
	w.writeBytes(encoded)
	return nil
}

// writeTextLength appends the explicitly little-endian length prefix,
// keeping the text framing independent of host byte order.
func (w *Writer) writeTextLength(length int) {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(length))
	w.writeBytes(prefix[:])
}

// Free releases the owned buffer. The writer must not be used afterwards.
func (w *Writer) Free() {
	w.mem.Free()
	w.position = 0
	w.capacity = 0
}

// WriteValue appends the sizeof(T) bytes of value, growing the buffer
// by doubling when needed.
func WriteValue[T any](w *Writer, value T) {
	size := int(unsafe.Sizeof(value))
	w.ensure(size)
	Write(w.mem, w.position, value)
	w.advance(size)
}

// WriteSpan appends all elements of values in one contiguous copy.
func WriteSpan[T any](w *Writer, values []T) {
	if len(values) == 0 {
		return
	}
	size := elementSize[T]()
	total := size * len(values)
	w.ensure(total)
	copy(Slice[byte](w.mem, w.position, total), unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(values))), total))
	w.advance(total)
}

// writeBytes appends p verbatim.
func (w *Writer) writeBytes(p []byte) {
	if len(p) == 0 {
		return
	}
	w.ensure(len(p))
	copy(w.mem.Bytes(w.capacity)[w.position:], p)
	w.advance(len(p))
}

// ensure grows the owned buffer by repeated doubling until n more bytes
// fit at the current position.
func (w *Writer) ensure(n int) {
	needed := w.position + n
	if needed <= w.capacity {
		return
	}
	if w.capacity == 0 {
		panic("unmanaged: use of freed writer")
	}
	newCapacity := w.capacity
	for newCapacity < needed {
		newCapacity *= 2
	}
	w.mem.Resize(newCapacity)
	w.capacity = newCapacity
}

func (w *Writer) advance(n int) {
	w.position += n
	if w.position > w.peak {
		w.peak = w.position
	}
}
