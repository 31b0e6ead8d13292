// Package hexdump renders memory buffers for the CLI: hex bytes with an
// ASCII sidebar and optional pattern highlighting.
package hexdump

import (
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options defines options for customizing the hexdump output
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// ShowASCII determines whether to show the ASCII representation
	ShowASCII bool

	// BaseAddress is the address of the first byte, for the offset column
	BaseAddress uint64

	// Highlight marks every occurrence of this pattern in the dump
	Highlight []byte

	// Color enables ANSI colors on the highlighted ranges
	Color bool
}

// DefaultOptions returns the rendering used by the CLI
func DefaultOptions() Options {
	return Options{
		BytesPerLine: 16,
		ShowASCII:    true,
	}
}

// Dump writes the rendered buffer to w
func Dump(w io.Writer, data []byte, opts Options) {
	if opts.BytesPerLine <= 0 {
		opts.BytesPerLine = 16
	}

	marks := highlightMask(data, opts.Highlight)

	for i := 0; i < len(data); i += opts.BytesPerLine {
		end := i + opts.BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		line := data[i:end]

		fmt.Fprintf(w, "%08X  ", opts.BaseAddress+uint64(i))

		for j, b := range line {
			cell := fmt.Sprintf(" %02x ", b)
			if marks != nil && marks[i+j] {
				cell = fmt.Sprintf("[%02x]", b)
				if opts.Color {
					cell = coloransi.Color(coloransi.Red, coloransi.ColorOrange, cell)
				}
			}
			io.WriteString(w, cell)
		}
		for j := len(line); j < opts.BytesPerLine; j++ {
			io.WriteString(w, "    ")
		}

		if opts.ShowASCII {
			var sb strings.Builder
			sb.WriteString(" |")
			for _, b := range line {
				if b >= 0x20 && b <= 0x7e {
					sb.WriteByte(b)
				} else {
					sb.WriteByte('.')
				}
			}
			sb.WriteString("|")
			io.WriteString(w, sb.String())
		}

		io.WriteString(w, "\n")
	}
}

// String renders the buffer with the given options
func String(data []byte, opts Options) string {
	var sb strings.Builder
	Dump(&sb, data, opts)
	return sb.String()
}

// highlightMask marks the byte positions covered by any pattern occurrence
func highlightMask(data, pattern []byte) []bool {
	if len(pattern) == 0 || len(pattern) > len(data) {
		return nil
	}
	marks := make([]bool, len(data))
	for i := 0; i+len(pattern) <= len(data); i++ {
		match := true
		for j := range pattern {
			if data[i+j] != pattern[j] {
				match = false
				break
			}
		}
		if match {
			for j := range pattern {
				marks[i+j] = true
			}
		}
	}
	return marks
}
