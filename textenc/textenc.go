// Package textenc converts between Go strings and the two in-memory text
// encodings the scanner and patcher operate on: byte-per-character narrow
// text and UTF-16LE wide text.
package textenc

import (
	"golang.org/x/text/encoding/unicode"

	"gamestringer/process"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeWide encodes s as UTF-16LE code units without a terminator
func EncodeWide(s string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(s))
}

// DecodeWide decodes UTF-16LE code units into a string
func DecodeWide(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts s to raw bytes in the given encoding. Narrow text is the
// string's bytes as-is; callers keep narrow pairs within single-byte range.
func Encode(s string, enc process.Encoding) ([]byte, error) {
	if enc == process.EncodingWide {
		return EncodeWide(s)
	}
	return []byte(s), nil
}

// Units returns the number of characters s occupies in the encoding
func Units(s string, enc process.Encoding) (int, error) {
	b, err := Encode(s, enc)
	if err != nil {
		return 0, err
	}
	return len(b) / enc.Unit(), nil
}
