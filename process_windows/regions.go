//go:build windows

package process_windows

import (
	"unsafe"

	"gamestringer/process"
	"gamestringer/process/memory_map"

	"golang.org/x/sys/windows"
)

// regionIterator walks the target address space with VirtualQueryEx from
// the minimum to the maximum application address. Regions without a valid
// descriptor advance by one page.
type regionIterator struct {
	handle   windows.Handle
	addr     uintptr
	max      uintptr
	pageSize uintptr
}

// Regions returns a lazy iterator over committed readable regions. The
// iterator holds the handle captured at creation; enumerate again after
// reopening the process.
func (p *WindowsProcess) Regions() process.RegionIterator {
	var si systemInfo
	getNativeSystemInfo(&si)

	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	return &regionIterator{
		handle:   handle,
		addr:     si.MinimumApplicationAddress,
		max:      si.MaximumApplicationAddress,
		pageSize: uintptr(si.PageSize),
	}
}

func (it *regionIterator) Next() (memory_map.Region, bool) {
	if it.handle == 0 {
		return memory_map.Region{}, false
	}

	for it.addr < it.max {
		var mbi windows.MemoryBasicInformation
		if err := windows.VirtualQueryEx(it.handle, it.addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			it.addr += it.pageSize
			continue
		}
		if mbi.RegionSize == 0 {
			return memory_map.Region{}, false
		}

		region := memory_map.Region{
			Base:    uint64(mbi.BaseAddress),
			Size:    uint(mbi.RegionSize),
			Protect: mbi.Protect,
			State:   mbi.State,
		}

		next := uintptr(mbi.BaseAddress) + uintptr(mbi.RegionSize)
		if next <= it.addr {
			// Wrapped; address space exhausted.
			return memory_map.Region{}, false
		}
		it.addr = next

		if region.IsScannable() {
			return region, true
		}
	}

	return memory_map.Region{}, false
}
