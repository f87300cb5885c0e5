// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// utf16LE is the UTF-16 little-endian codec used by the WriteText16 /
// ReadText16 pair. No byte order mark is written or expected; the
// format fixes the byte order instead.
var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func encodeUTF16LE(text string) ([]byte, error) {
	encoded, err := utf16LE.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTextEncoding, err)
	}
	return encoded, nil
}

func decodeUTF16LE(data []byte) (string, error) {
	decoded, err := utf16LE.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextEncoding, err)
	}
	return string(decoded), nil
}
