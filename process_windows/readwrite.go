//go:build windows

package process_windows

import (
	"fmt"

	"gamestringer/process"

	"golang.org/x/sys/windows"
)

// Read requests larger than this are split so a partially unreadable
// region still yields its readable prefix.
const maxReadChunk = 1 << 20

// ReadMemory reads memory from the process at the specified address
func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	handle, err := p.getHandle()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	offset := uintptr(0)
	total := uintptr(size)

	for offset < total {
		chunk := total - offset
		if chunk > maxReadChunk {
			chunk = maxReadChunk
		}

		var read uintptr
		err := windows.ReadProcessMemory(handle, uintptr(addr)+offset, &buf[offset], chunk, &read)
		if err != nil {
			if offset > 0 {
				return buf[:offset], nil
			}
			return nil, fmt.Errorf("ReadProcessMemory at %s: %w", addr.ToString(), process.ErrRegionUnreadable)
		}
		if read < chunk {
			return buf[:offset+read], nil
		}
		offset += chunk
	}

	return buf, nil
}

// WriteMemory writes data to the process memory at the specified address.
// A short transfer fails with ErrWriteIncomplete.
func (p *WindowsProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	handle, err := p.getHandle()
	if err != nil {
		return err
	}

	var written uintptr
	if err := windows.WriteProcessMemory(handle, uintptr(addr), &data[0], uintptr(len(data)), &written); err != nil {
		return fmt.Errorf("WriteProcessMemory at %s: %w", addr.ToString(), err)
	}
	if written != uintptr(len(data)) {
		return fmt.Errorf("short write %d of %d: %w", written, len(data), process.ErrWriteIncomplete)
	}

	return nil
}

// Protect changes the protection of [addr, addr+size) and returns the
// prior protection so it can be restored.
func (p *WindowsProcess) Protect(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, protect uint32) (uint32, error) {
	handle, err := p.getHandle()
	if err != nil {
		return 0, err
	}

	var old uint32
	if err := windows.VirtualProtectEx(handle, uintptr(addr), uintptr(size), protect, &old); err != nil {
		return 0, fmt.Errorf("VirtualProtectEx at %s: %w", addr.ToString(), process.ErrRegionUnwritable)
	}

	return old, nil
}
