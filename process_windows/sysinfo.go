//go:build windows

package process_windows

import (
	"syscall"
	"unsafe"
)

var (
	modkernel32             = syscall.NewLazyDLL("kernel32.dll")
	procGetNativeSystemInfo = modkernel32.NewProc("GetNativeSystemInfo")
)

const processorArchitectureAMD64 = 9

// systemInfo mirrors SYSTEM_INFO; the enumerator needs the application
// address bounds and the page size, Is64Bit needs the architecture.
type systemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

func getNativeSystemInfo(si *systemInfo) {
	procGetNativeSystemInfo.Call(uintptr(unsafe.Pointer(si)))
}
