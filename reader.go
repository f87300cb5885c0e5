// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
	"unsafe"
)

// Reader is a sequential cursor over a borrowed byte buffer. It never
// owns the memory it reads: freeing the source is the owner's job, and
// a Reader constructed over a Writer must be dropped before the Writer
// grows or is freed.
//
// Reads that would pass the end of the buffer panic; the stream is
// schema-less, so an overrun means the reader and writer disagree on
// the sequence of types, which is a programming error. Malformed text
// payloads return errors instead, since text content comes from data.
//
// Reader implements io.Reader.
type Reader struct {
	data     []byte
	position int
}

// NewReader creates a reader over an externally supplied byte source.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderFor creates a reader borrowing the written bytes of w.
func NewReaderFor(w *Writer) *Reader {
	return NewReader(w.Bytes())
}

// Position returns the current read offset.
func (r *Reader) Position() int { return r.position }

// SetPosition moves the read offset, which may not exceed the readable
// length.
func (r *Reader) SetPosition(position int) {
	if position < 0 || position > len(r.data) {
		panic(fmt.Sprintf("unmanaged: position %d outside buffer of %d bytes", position, len(r.data)))
	}
	r.position = position
}

// Length returns the total readable byte length.
func (r *Reader) Length() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.position }

// ReadBytes consumes and returns a view of the next n bytes.
func (r *Reader) ReadBytes(n int) []byte {
	r.checkRead(n)
	view := r.data[r.position : r.position+n]
	r.position += n
	return view
}

// Read implements io.Reader, returning io.EOF once the buffer is
// exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	if r.position == len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.position:])
	r.position += n
	return n, nil
}

// ReadText consumes a text payload written by Writer.WriteText. The
// payload is validated as UTF-8; malformed sequences and truncated
// payloads are format errors and never panic, because text content is
// data rather than schema. The cursor does not move when an error is
// returned.
func (r *Reader) ReadText() (string, error) {
	length, err := r.readTextLength()
	if err != nil {
		return "", err
	}
	raw := r.data[r.position+4 : r.position+4+length]
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: malformed UTF-8 at offset %d", ErrTextEncoding, r.position+4)
	}
	r.position += 4 + length
	return string(raw), nil
}

// ReadText16 consumes a text payload written by Writer.WriteText16,
// reconstructing surrogate pairs into their code points. The cursor
// does not move when an error is returned.
func (r *Reader) ReadText16() (string, error) {
	length, err := r.readTextLength()
	if err != nil {
		return "", err
	}
	if length%2 != 0 {
		return "", fmt.Errorf("%w: odd UTF-16 byte count %d", ErrTextEncoding, length)
	}
	decoded, err := decodeUTF16LE(r.data[r.position+4 : r.position+4+length])
	if err != nil {
		return "", err
	}
	r.position += 4 + length
	return decoded, nil
}

// readTextLength validates the 4-byte little-endian length prefix
// without moving the cursor. Callers advance past the prefix and the
// payload together, and only once the payload is accepted.
func (r *Reader) readTextLength() (int, error) {
	if r.Remaining() < 4 {
		return 0, fmt.Errorf("%w: missing length prefix", ErrTextTruncated)
	}
	length := int(binary.LittleEndian.Uint32(r.data[r.position:]))
	if length > r.Remaining()-4 {
		return 0, fmt.Errorf("%w: payload of %d bytes, %d remaining", ErrTextTruncated, length, r.Remaining()-4)
	}
	return length, nil
}

// ReadValue consumes sizeof(T) bytes and returns them as a value of T.
// The bytes are assembled with a copy, so the buffer offset does not
// need to respect T's alignment.
func ReadValue[T any](r *Reader) T {
	var value T
	size := int(unsafe.Sizeof(value))
	r.checkRead(size)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&value)), size)
	copy(dst, r.data[r.position:])
	r.position += size
	return value
}

// ReadSpan consumes count elements of T and returns them as a fresh
// slice. Copying out, rather than aliasing the buffer, keeps the result
// independent of the borrowed memory's lifetime and alignment.
func ReadSpan[T any](r *Reader, count int) []T {
	if count < 0 {
		panic(fmt.Sprintf("unmanaged: negative span count %d", count))
	}
	if count == 0 {
		return nil
	}
	size := elementSize[T]()
	total := size * count
	r.checkRead(total)
	out := make([]T, count)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), total)
	copy(dst, r.data[r.position:])
	r.position += total
	return out
}

func (r *Reader) checkRead(n int) {
	if r.position+n > len(r.data) {
		panic(fmt.Sprintf("unmanaged: read of %d bytes at offset %d passes end of %d byte buffer",
			n, r.position, len(r.data)))
	}
}
