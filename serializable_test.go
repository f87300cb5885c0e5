// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// transform is a sample value type implementing the serialization
// contract, with a nested text field to exercise composite payloads.
type transform struct {
	Position [3]float32
	Rotation [4]float32
	Name     string
}

func (v *transform) SerializeTo(w *Writer) {
	WriteValue(w, v.Position)
	WriteValue(w, v.Rotation)
	w.WriteText(v.Name)
}

func (v *transform) DeserializeFrom(r *Reader) error {
	v.Position = ReadValue[[3]float32](r)
	v.Rotation = ReadValue[[4]float32](r)
	name, err := r.ReadText()
	if err != nil {
		return err
	}
	v.Name = name
	return nil
}

func TestSerializableRoundTripLaw(t *testing.T) {
	original := transform{
		Position: [3]float32{1, -2, 3.5},
		Rotation: [4]float32{0, 0, 0, 1},
		Name:     "root",
	}

	w := NewWriter(16)
	defer w.Free()
	WriteObject(w, &original)

	r := NewReaderFor(w)
	got, err := ReadObject[transform](r)
	require.NoError(t, err)
	require.Equal(t, original, got)
	require.Zero(t, r.Remaining(), "deserialization must consume exactly what was written")
}

func TestCloneReproducesValue(t *testing.T) {
	original := transform{
		Position: [3]float32{9, 8, 7},
		Rotation: [4]float32{0.5, 0.5, 0.5, 0.5},
		Name:     "clone-источник-😀",
	}

	cloned, err := Clone(original)
	require.NoError(t, err)
	require.Equal(t, original, cloned)
}

func TestCloneLeavesNoLeaks(t *testing.T) {
	if !TrackingEnabled {
		t.Skip("tracking is compiled out")
	}
	ResetTracking()

	_, err := Clone(transform{Name: "x"})
	require.NoError(t, err)
	require.Empty(t, Leaks(), "the throwaway writer must be freed")
}

func TestMultipleObjectsInOneStream(t *testing.T) {
	first := transform{Position: [3]float32{1, 1, 1}, Name: "a"}
	second := transform{Position: [3]float32{2, 2, 2}, Name: "b"}

	w := NewWriter(16)
	defer w.Free()
	WriteObject(w, &first)
	WriteObject(w, &second)

	r := NewReaderFor(w)
	gotFirst, err := ReadObject[transform](r)
	require.NoError(t, err)
	gotSecond, err := ReadObject[transform](r)
	require.NoError(t, err)
	require.Equal(t, first, gotFirst)
	require.Equal(t, second, gotSecond)
}
