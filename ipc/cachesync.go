package ipc

import (
	"encoding/binary"
	"fmt"

	"gamestringer/textenc"
)

// CACHE_SYNC payload: repeated { u32 units, units UTF-16LE } fields, two
// fields per pair (original then translated).
func decodeCachePairs(data []byte) (map[string]string, error) {
	pairs := make(map[string]string)
	offset := 0

	readField := func() (string, error) {
		if offset+4 > len(data) {
			return "", fmt.Errorf("truncated cache sync: %w", ErrProtocol)
		}
		n := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if offset+n*2 > len(data) {
			return "", fmt.Errorf("truncated cache sync: %w", ErrProtocol)
		}
		s, err := textenc.DecodeWide(data[offset : offset+n*2])
		offset += n * 2
		return s, err
	}

	for offset < len(data) {
		original, err := readField()
		if err != nil {
			return nil, err
		}
		translated, err := readField()
		if err != nil {
			return nil, err
		}
		pairs[original] = translated
	}

	return pairs, nil
}
