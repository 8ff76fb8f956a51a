package util

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsLikelyBinary reports whether the first bytes of b contain a NUL byte.
func IsLikelyBinary(b []byte) bool {
	if len(b) > maxBinaryCheckBytes {
		b = b[:maxBinaryCheckBytes]
	}
	return bytes.IndexByte(b, 0) >= 0
}

// CleanRequestFile prepares a request file read from disk: it drops a UTF-8
// byte order mark and refuses binary content or invalid UTF-8.
func CleanRequestFile(b []byte, src string) ([]byte, error) {
	if IsLikelyBinary(b) {
		return nil, fmt.Errorf("%s looks like a binary file", src)
	}
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%s is not valid UTF-8", src)
	}
	return b, nil
}
