package patch

import (
	"sort"

	"gamestringer/process"
)

// InjectedItem records one successful in-place rewrite
type InjectedItem struct {
	Address    uint64 `json:"address"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Encoding   string `json:"encoding"`
}

// InjectResult summarizes an injection batch. Failed pairs are reported by
// omission: only successful patches appear in Injected.
type InjectResult struct {
	Success       bool           `json:"success"`
	InjectedCount int            `json:"injectedCount"`
	Injected      []InjectedItem `json:"injected"`
}

// InjectTranslations locates every occurrence of each pair's original text
// in the target, as UTF-16 and as ASCII, and rewrites it in place. Pairs
// are processed smallest first; the target may be reading any of these
// bytes concurrently and short strings swap fastest.
func (p *Patcher) InjectTranslations(pairs []process.TranslationPair) (*InjectResult, error) {
	ordered := make([]process.TranslationPair, len(pairs))
	copy(ordered, pairs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Original) < len(ordered[j].Original)
	})

	result := &InjectResult{Success: true, Injected: []InjectedItem{}}

	for _, pair := range ordered {
		for _, enc := range []process.Encoding{process.EncodingWide, process.EncodingNarrow} {
			matches, err := p.scanner.ScanProcessText(p.proc, pair, enc)
			if err != nil {
				p.log.Warn("Scan failed for ", pair.Original, ": ", err)
				continue
			}

			for _, m := range matches {
				if err := p.Patch(m.Address, pair.Original, pair.Translated, enc); err != nil {
					p.log.Debugln("Patch skipped at", m.Address.ToString(), ":", err)
					continue
				}
				result.Injected = append(result.Injected, InjectedItem{
					Address:    uint64(m.Address),
					Original:   pair.Original,
					Translated: pair.Translated,
					Encoding:   enc.String(),
				})
			}
		}
	}

	result.InjectedCount = len(result.Injected)
	return result, nil
}
