//go:build windows

package hook

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32               = syscall.NewLazyDLL("kernel32.dll")
	procFlushInstructionCache = modkernel32.NewProc("FlushInstructionCache")
)

// x64 absolute jump: FF 25 00000000 (jmp [rip+0]) followed by the 8-byte
// destination.
const absJumpSize = 14

type windowsCodeWriter struct{}

func newCodeWriter() codeWriter {
	return &windowsCodeWriter{}
}

func (windowsCodeWriter) jumpSize() int {
	return absJumpSize
}

func (windowsCodeWriter) makeJump(dest uintptr) []byte {
	jump := make([]byte, absJumpSize)
	jump[0] = 0xFF
	jump[1] = 0x25
	// 4 zero bytes of displacement already in place
	for i := 0; i < 8; i++ {
		jump[6+i] = byte(uint64(dest) >> (i * 8))
	}
	return jump
}

func (windowsCodeWriter) readCode(addr uintptr, n int) ([]byte, error) {
	if addr == 0 || n <= 0 {
		return nil, fmt.Errorf("invalid read at %#x", addr)
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
	out := make([]byte, n)
	copy(out, src)
	return out, nil
}

func (windowsCodeWriter) writeCode(addr uintptr, data []byte) error {
	var oldProtect uint32
	if err := windows.VirtualProtect(addr, uintptr(len(data)), windows.PAGE_EXECUTE_READWRITE, &oldProtect); err != nil {
		return fmt.Errorf("VirtualProtect: %w", err)
	}

	copy(unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(data)), data)

	if err := windows.VirtualProtect(addr, uintptr(len(data)), oldProtect, &oldProtect); err != nil {
		return fmt.Errorf("VirtualProtect restore: %w", err)
	}

	flushInstructionCache(addr, uintptr(len(data)))
	return nil
}

func (w windowsCodeWriter) allocTrampoline(prologue []byte, resume uintptr) (uintptr, error) {
	size := uintptr(len(prologue) + absJumpSize)
	mem, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return 0, fmt.Errorf("VirtualAlloc: %w", err)
	}

	code := append(append([]byte{}, prologue...), w.makeJump(resume)...)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(mem)), len(code)), code)

	var oldProtect uint32
	if err := windows.VirtualProtect(mem, size, windows.PAGE_EXECUTE_READ, &oldProtect); err != nil {
		windows.VirtualFree(mem, 0, windows.MEM_RELEASE)
		return 0, fmt.Errorf("VirtualProtect trampoline: %w", err)
	}

	flushInstructionCache(mem, size)
	return mem, nil
}

func (windowsCodeWriter) freeTrampoline(addr uintptr) error {
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}

func flushInstructionCache(addr, size uintptr) {
	handle, _ := windows.GetCurrentProcess()
	procFlushInstructionCache.Call(uintptr(handle), addr, size)
}
