// Package scan finds byte and text patterns inside region snapshots. All
// scanning is against captured blobs; the enumerator and the patcher deal
// with the live target.
package scan

import (
	"bytes"

	"gamestringer/process"
	"gamestringer/process_blob"
	"gamestringer/textenc"
)

// Scanner holds configuration for a scanning pass
type Scanner struct {
	// MaxResults caps the number of matches per blob; 0 means unlimited
	MaxResults int
}

// Option is a function that configures a Scanner
type Option func(*Scanner)

func WithMaxResults(n int) Option {
	return func(s *Scanner) {
		s.MaxResults = n
	}
}

func New(options ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// FindText reports every offset of needle in the blob, as absolute
// addresses. Wide scans return only offsets aligned to the wide character
// size. Matches do not overlap; the search resumes after each match.
func (s *Scanner) FindText(blob *process_blob.Blob, needle string, enc process.Encoding) ([]process.ProcessMemoryAddress, error) {
	if needle == "" {
		return nil, nil
	}

	pattern, err := textenc.Encode(needle, enc)
	if err != nil {
		return nil, err
	}

	return s.findAligned(blob, pattern, enc.Unit()), nil
}

// FindPattern reports every position where the non-wildcard bytes of the
// AOB equal the blob data.
func (s *Scanner) FindPattern(blob *process_blob.Blob, aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return nil, process.ErrInvalidAOB
	}

	data := blob.Data()
	var results []process.ProcessMemoryAddress

	for i := 0; i+len(aob.Pattern) <= len(data); i++ {
		if matchAt(data[i:], aob) {
			results = append(results, blob.Base()+process.ProcessMemoryAddress(i))
			if s.MaxResults > 0 && len(results) >= s.MaxResults {
				break
			}
		}
	}

	return results, nil
}

func (s *Scanner) findAligned(blob *process_blob.Blob, pattern []byte, unit int) []process.ProcessMemoryAddress {
	data := blob.Data()
	if len(pattern) == 0 || len(pattern) > len(data) {
		return nil
	}

	var results []process.ProcessMemoryAddress
	offset := 0
	for {
		idx := bytes.Index(data[offset:], pattern)
		if idx < 0 {
			break
		}
		abs := offset + idx
		if abs%unit != 0 {
			// Misaligned wide hit; resume at the next aligned position.
			offset = abs + 1
			continue
		}

		results = append(results, blob.Base()+process.ProcessMemoryAddress(abs))
		if s.MaxResults > 0 && len(results) >= s.MaxResults {
			break
		}

		offset = abs + len(pattern)
		if offset >= len(data) {
			break
		}
	}

	return results
}

func matchAt(data []byte, aob process.AOB) bool {
	if len(data) < len(aob.Pattern) {
		return false
	}
	for i, m := range aob.Mask {
		if m != 0 && data[i] != aob.Pattern[i] {
			return false
		}
	}
	return true
}
