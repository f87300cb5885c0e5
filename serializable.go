// SPDX-License-Identifier: Apache-2.0

package unmanaged

// Serializable is the capability a value type implements to compose
// with Writer and Reader. SerializeTo appends the value's binary form;
// DeserializeFrom reconstructs the receiver from the cursor, returning
// an error only for format-level problems such as malformed text.
//
// The contract's correctness criterion is the round-trip law: reading
// back what was written must reproduce the original value. Clone checks
// exactly that.
type Serializable interface {
	SerializeTo(w *Writer)
	DeserializeFrom(r *Reader) error
}

// serializablePtr constrains PT to be *T implementing Serializable, so
// ReadObject and Clone can deserialize into a zero value they own.
type serializablePtr[T any] interface {
	*T
	Serializable
}

// WriteObject appends value through its Serializable implementation.
// It is a thin dispatch wrapper kept for symmetry with ReadObject.
func WriteObject(w *Writer, value Serializable) {
	value.SerializeTo(w)
}

// ReadObject reconstructs a value of T from the cursor.
func ReadObject[T any, PT serializablePtr[T]](r *Reader) (T, error) {
	var value T
	if err := PT(&value).DeserializeFrom(r); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// Clone copies value by writing it into a throwaway buffer and reading
// it back.
func Clone[T any, PT serializablePtr[T]](value T) (T, error) {
	w := NewWriter(64)
	defer w.Free()
	PT(&value).SerializeTo(w)
	r := NewReaderFor(w)
	return ReadObject[T, PT](r)
}
