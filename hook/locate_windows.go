//go:build windows

package hook

import (
	"fmt"
	"unsafe"

	"gamestringer/process"
	"gamestringer/process/memory_map"
	"gamestringer/process_blob"
	"gamestringer/scan"

	"golang.org/x/sys/windows"
)

// moduleImage returns the base address and mapped bytes of a loaded
// module. An empty name means the main executable.
func moduleImage(name string) (uintptr, []byte, error) {
	var handle windows.Handle
	var err error
	if name == "" {
		handle, err = windows.GetModuleHandle(nil)
	} else {
		var namePtr *uint16
		namePtr, err = windows.UTF16PtrFromString(name)
		if err == nil {
			handle, err = windows.GetModuleHandle(namePtr)
		}
	}
	if err != nil {
		return 0, nil, fmt.Errorf("GetModuleHandle %q: %w", name, err)
	}

	proc, err := windows.GetCurrentProcess()
	if err != nil {
		return 0, nil, err
	}

	var info windows.ModuleInfo
	if err := windows.GetModuleInformation(proc, handle, &info, uint32(unsafe.Sizeof(info))); err != nil {
		return 0, nil, fmt.Errorf("GetModuleInformation %q: %w", name, err)
	}

	base := uintptr(info.BaseOfDll)
	data := unsafe.Slice((*byte)(unsafe.Pointer(base)), int(info.SizeOfImage))
	return base, data, nil
}

// FindSignature scans a loaded module's image for the pattern and returns
// the first match address.
func FindSignature(moduleName string, aob process.AOB) (uintptr, error) {
	base, data, err := moduleImage(moduleName)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrTargetNotFound)
	}

	blob := process_blob.New(memory_map.Region{
		Base:    uint64(base),
		Size:    uint(len(data)),
		Protect: memory_map.PAGE_EXECUTE_READ,
		State:   memory_map.MEM_COMMIT,
	}, data)

	matches, err := scan.New(scan.WithMaxResults(1)).FindPattern(blob, aob)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("module %q: %w", moduleName, ErrTargetNotFound)
	}
	return uintptr(matches[0]), nil
}
