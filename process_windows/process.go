//go:build windows

// Package process_windows implements the process.Process interface on top
// of the Win32 debug APIs: OpenProcess, VirtualQueryEx, ReadProcessMemory,
// WriteProcessMemory and VirtualProtectEx.
package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"gamestringer/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

const openAccess = windows.PROCESS_QUERY_INFORMATION |
	windows.PROCESS_VM_READ |
	windows.PROCESS_VM_WRITE |
	windows.PROCESS_VM_OPERATION

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
	mu     sync.Mutex
}

// New creates a new WindowsProcess instance
func New() *WindowsProcess {
	return &WindowsProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (*WindowsProcess, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Best effort; games running elevated need SeDebugPrivilege to open.
	if err := EnableDebugPrivilege(); err != nil {
		p.log.Warn("Debug privilege not acquired: ", err)
	}

	handle, err := windows.OpenProcess(openAccess, false, uint32(pid))
	if err != nil {
		if err == windows.ERROR_ACCESS_DENIED {
			return fmt.Errorf("OpenProcess %d: %w", pid, process.ErrPrivilegeDenied)
		}
		return fmt.Errorf("OpenProcess %d: %v: %w", pid, err, process.ErrProcessUnavailable)
	}

	p.pid = pid
	p.handle = handle
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.log.Infoln("Process opened")

	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle: %w", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *WindowsProcess) getHandle() (windows.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return 0, process.ErrProcessNotOpen
	}
	return p.handle, nil
}

// Is64Bit reports whether the target is a 64-bit process
func (p *WindowsProcess) Is64Bit() (bool, error) {
	handle, err := p.getHandle()
	if err != nil {
		return false, err
	}

	var wow64 bool
	if err := windows.IsWow64Process(handle, &wow64); err != nil {
		return false, fmt.Errorf("IsWow64Process: %w", err)
	}

	var si systemInfo
	getNativeSystemInfo(&si)

	return si.ProcessorArchitecture == processorArchitectureAMD64 && !wow64, nil
}

// Modules lists the modules loaded into the target
func (p *WindowsProcess) Modules() ([]process.ModuleInfo, error) {
	handle, err := p.getHandle()
	if err != nil {
		return nil, err
	}

	handles := make([]windows.Handle, 1024)
	var needed uint32
	if err := windows.EnumProcessModules(handle, &handles[0], uint32(len(handles))*uint32(unsafe.Sizeof(handles[0])), &needed); err != nil {
		return nil, fmt.Errorf("EnumProcessModules: %w", err)
	}

	count := int(needed / uint32(unsafe.Sizeof(handles[0])))
	if count > len(handles) {
		count = len(handles)
	}

	modules := make([]process.ModuleInfo, 0, count)
	for _, mod := range handles[:count] {
		var name [windows.MAX_PATH]uint16
		if err := windows.GetModuleFileNameEx(handle, mod, &name[0], windows.MAX_PATH); err != nil {
			continue
		}

		var info windows.ModuleInfo
		if err := windows.GetModuleInformation(handle, mod, &info, uint32(unsafe.Sizeof(info))); err != nil {
			continue
		}

		modules = append(modules, process.ModuleInfo{
			Name: windows.UTF16ToString(name[:]),
			Base: process.ProcessMemoryAddress(info.BaseOfDll),
			Size: process.ProcessMemorySize(info.SizeOfImage),
		})
	}

	p.log.Debugln("Enumerated", len(modules), "modules")
	return modules, nil
}
