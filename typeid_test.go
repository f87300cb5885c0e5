// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeIDIsStable(t *testing.T) {
	first := TypeIDOf[int64]()
	second := TypeIDOf[int64]()
	require.Equal(t, first, second)
}

func TestTypeIDPacksByteSize(t *testing.T) {
	require.Equal(t, 8, TypeIDOf[int64]().Size())
	require.Equal(t, 4, TypeIDOf[uint32]().Size())
	require.Equal(t, 1, TypeIDOf[byte]().Size())

	type vec3 struct{ X, Y, Z float32 }
	require.Equal(t, 12, TypeIDOf[vec3]().Size())
}

func TestTypeIDDistinguishesTypes(t *testing.T) {
	// Same size, different names.
	require.NotEqual(t, TypeIDOf[int32](), TypeIDOf[uint32]())
	require.NotEqual(t, TypeIDOf[int64](), TypeIDOf[uint64]())

	type a struct{ V uint32 }
	type b struct{ V uint32 }
	require.NotEqual(t, TypeIDOf[a](), TypeIDOf[b]())
}
