// SPDX-License-Identifier: Apache-2.0

package unmanaged

// djb2 computes the classic multiplicative rolling hash over data.
// It is used for collection content hashes and type identities, where
// a stable, dependency-free mixing function matters more than
// distribution quality.
func djb2(data []byte) uint32 {
	h := uint32(5381)
	for _, b := range data {
		h = h*33 + uint32(b)
	}
	return h
}

// djb2String is djb2 without the []byte conversion allocation.
func djb2String(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}
