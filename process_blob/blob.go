// Package process_blob holds immutable snapshots of target memory regions.
// Scanning happens against a snapshot rather than a live address so a
// region that becomes unreadable mid-scan cannot abort the pass.
package process_blob

import (
	"errors"
	"unicode/utf16"

	"gamestringer/process"
	"gamestringer/process/memory_map"
)

var ErrOutOfBounds = errors.New("offset out of bounds")

// Blob is a snapshot of one region: its descriptor plus the bytes that were
// readable at capture time.
type Blob struct {
	region memory_map.Region
	data   []byte
}

func New(region memory_map.Region, data []byte) *Blob {
	return &Blob{region: region, data: data}
}

// Capture reads an entire region from the target. A failed read returns an
// error; callers treat that as "skip this region".
func Capture(p process.Process, region memory_map.Region) (*Blob, error) {
	data, err := p.ReadMemory(process.ProcessMemoryAddress(region.Base), process.ProcessMemorySize(region.Size))
	if err != nil {
		return nil, err
	}
	return &Blob{region: region, data: data}, nil
}

// Region returns the descriptor the snapshot was taken from
func (b *Blob) Region() memory_map.Region {
	return b.region
}

// Base returns the absolute address of the first snapshot byte
func (b *Blob) Base() process.ProcessMemoryAddress {
	return process.ProcessMemoryAddress(b.region.Base)
}

// Data returns the raw snapshot bytes
func (b *Blob) Data() []byte {
	return b.data
}

func (b *Blob) Len() int {
	return len(b.data)
}

// Slice returns size bytes starting at offset
func (b *Blob) Slice(offset, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset+size > len(b.data) {
		return nil, ErrOutOfBounds
	}
	return b.data[offset : offset+size], nil
}

// NTS extracts a null-terminated narrow string starting at offset,
// reading at most maxLength characters.
func (b *Blob) NTS(offset, maxLength int) (string, error) {
	if offset < 0 || offset >= len(b.data) {
		return "", ErrOutOfBounds
	}
	end := offset + maxLength
	if end > len(b.data) {
		end = len(b.data)
	}
	for i := offset; i < end; i++ {
		if b.data[i] == 0 {
			return string(b.data[offset:i]), nil
		}
	}
	return string(b.data[offset:end]), nil
}

// WideNTS extracts a null-terminated UTF-16LE string starting at offset,
// reading at most maxLength code units.
func (b *Blob) WideNTS(offset, maxLength int) (string, error) {
	if offset < 0 || offset+2 > len(b.data) {
		return "", ErrOutOfBounds
	}
	var units []uint16
	for i := 0; i < maxLength; i++ {
		pos := offset + i*2
		if pos+2 > len(b.data) {
			break
		}
		u := uint16(b.data[pos]) | uint16(b.data[pos+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}
