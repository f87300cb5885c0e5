// SPDX-License-Identifier: Apache-2.0

package unmanaged

import "errors"

var (
	// ErrTextTruncated indicates a text payload declared more bytes than the
	// buffer holds.
	ErrTextTruncated = errors.New("unmanaged: text payload truncated")
	// ErrTextEncoding indicates a text payload contained malformed byte
	// sequences for its declared encoding.
	ErrTextEncoding = errors.New("unmanaged: invalid text encoding")
)
