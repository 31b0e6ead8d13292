//go:build windows

package process_windows

import (
	"os"
	"testing"

	"gamestringer/process"

	"golang.org/x/sys/windows"
)

func openSelf(t *testing.T) *WindowsProcess {
	t.Helper()
	p, err := NewWithPID(process.ProcessID(os.Getpid()))
	if err != nil {
		t.Fatalf("open self: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func allocRW(t *testing.T, size uintptr) uintptr {
	t.Helper()
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil || addr == 0 {
		t.Fatalf("VirtualAlloc: %v", err)
	}
	t.Cleanup(func() { _ = windows.VirtualFree(addr, 0, windows.MEM_RELEASE) })
	return addr
}
