package scan

import (
	"gamestringer/process"
	"gamestringer/process_blob"
)

// RegionMatch is a pattern hit annotated with the region it landed in
type RegionMatch struct {
	Address    process.ProcessMemoryAddress
	RegionBase process.ProcessMemoryAddress
	RegionSize process.ProcessMemorySize
}

// ScanProcess walks every committed readable region of the target and
// reports pattern matches. A region whose read fails is skipped; it never
// aborts the pass.
func (s *Scanner) ScanProcess(p process.Process, aob process.AOB) ([]RegionMatch, error) {
	if !aob.IsValid() {
		return nil, process.ErrInvalidAOB
	}

	var results []RegionMatch
	it := p.Regions()
	for {
		region, ok := it.Next()
		if !ok {
			break
		}

		blob, err := process_blob.Capture(p, region)
		if err != nil {
			continue
		}

		addrs, err := s.FindPattern(blob, aob)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			results = append(results, RegionMatch{
				Address:    addr,
				RegionBase: blob.Base(),
				RegionSize: process.ProcessMemorySize(blob.Len()),
			})
		}
	}

	return results, nil
}

// ScanProcessText walks the target and reports text matches in the given
// encoding, annotated with the pair that produced them.
func (s *Scanner) ScanProcessText(p process.Process, pair process.TranslationPair, enc process.Encoding) ([]process.Match, error) {
	var results []process.Match
	it := p.Regions()
	for {
		region, ok := it.Next()
		if !ok {
			break
		}

		blob, err := process_blob.Capture(p, region)
		if err != nil {
			continue
		}

		addrs, err := s.FindText(blob, pair.Original, enc)
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			results = append(results, process.Match{Address: addr, Encoding: enc, Pair: pair})
		}
	}

	return results, nil
}
