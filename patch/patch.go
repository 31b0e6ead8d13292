// Package patch rewrites strings in place inside a target process. All
// rewrites are size-preserving: the replacement must fit within the
// original and the tail is padded with spaces, so null-terminated
// consumers keep seeing a string of the original length.
package patch

import (
	"errors"
	"fmt"

	"gamestringer/process"
	"gamestringer/process/memory_map"
	"gamestringer/scan"
	"gamestringer/textenc"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// ErrReplacementTooLong is returned when the replacement does not fit
// within the original string in the chosen encoding.
var ErrReplacementTooLong = errors.New("replacement longer than original")

// Patcher performs size-preserving rewrites against one target process
type Patcher struct {
	proc    process.Process
	scanner *scan.Scanner
	log     *logger.Logger
}

func New(proc process.Process) *Patcher {
	return &Patcher{
		proc:    proc,
		scanner: scan.New(),
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "patcher")),
	}
}

// PrepareBuffer builds the scratch buffer written over the original: the
// replacement bytes followed by space characters up to the original size.
func PrepareBuffer(original, replacement string, enc process.Encoding) ([]byte, error) {
	origBytes, err := textenc.Encode(original, enc)
	if err != nil {
		return nil, err
	}
	replBytes, err := textenc.Encode(replacement, enc)
	if err != nil {
		return nil, err
	}

	if len(replBytes) > len(origBytes) {
		return nil, fmt.Errorf("%q (%d bytes) over %q (%d bytes): %w",
			replacement, len(replBytes), original, len(origBytes), ErrReplacementTooLong)
	}

	buf := make([]byte, len(origBytes))
	copy(buf, replBytes)
	pad, _ := textenc.Encode(" ", enc)
	for i := len(replBytes); i < len(buf); i += len(pad) {
		copy(buf[i:], pad)
	}

	return buf, nil
}

// Patch rewrites the string at addr. The affected range is re-protected
// for write, the padded buffer is written, and the prior protection is
// restored whether or not the write succeeded.
func (p *Patcher) Patch(addr process.ProcessMemoryAddress, original, replacement string, enc process.Encoding) error {
	buf, err := PrepareBuffer(original, replacement, enc)
	if err != nil {
		return err
	}

	old, err := p.proc.Protect(addr, process.ProcessMemorySize(len(buf)), memory_map.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return err
	}

	writeErr := p.proc.WriteMemory(addr, buf)

	if _, err := p.proc.Protect(addr, process.ProcessMemorySize(len(buf)), old); err != nil {
		// The write result stands; losing the original protection is
		// recoverable only by the target.
		p.log.Warn("Failed to restore protection at ", addr.ToString(), ": ", err)
	}

	if writeErr != nil {
		return writeErr
	}

	p.log.Debugln("Patched", addr.ToString(), "(", enc.String(), ",", len(buf), "bytes )")
	return nil
}
