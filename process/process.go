// Package process provides interfaces and types for cross-process memory
// manipulation: region enumeration, reads, size-preserving writes, and the
// pattern types shared by the scanner and the patcher.
package process

import (
	"errors"

	"gamestringer/process/memory_map"
)

var (
	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrPrivilegeDenied is returned when the debug privilege cannot be acquired
	// or the target process cannot be opened with the required access.
	ErrPrivilegeDenied = errors.New("privilege denied")

	// ErrProcessUnavailable is returned when the target process has exited
	// or is otherwise inaccessible.
	ErrProcessUnavailable = errors.New("process unavailable")

	// ErrRegionUnreadable marks a region whose read failed; local to the region, never fatal.
	ErrRegionUnreadable = errors.New("region unreadable")

	// ErrRegionUnwritable marks a region whose re-protect failed.
	ErrRegionUnwritable = errors.New("region unwritable")

	// ErrWriteIncomplete is returned when fewer bytes were transferred than requested.
	ErrWriteIncomplete = errors.New("write incomplete")
)

// Process is the interface that defines operations for interacting with a
// target process's virtual address space.
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// Regions returns a lazy iterator over the committed, readable regions
	// of the target address space. The iterator is finite and not
	// restartable; call Regions again to re-scan.
	Regions() RegionIterator

	// ReadMemory reads memory from the process at the specified address
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// WriteMemory writes data to the process memory at the specified address.
	// A short transfer fails with ErrWriteIncomplete.
	WriteMemory(addr ProcessMemoryAddress, data []byte) error

	// Protect changes the protection of [addr, addr+size) and returns the
	// prior protection so it can be restored.
	Protect(addr ProcessMemoryAddress, size ProcessMemorySize, protect uint32) (old uint32, err error)

	// Modules lists the modules loaded into the target
	Modules() ([]ModuleInfo, error)

	// Is64Bit reports whether the target is a 64-bit process
	Is64Bit() (bool, error)
}

// RegionIterator walks an address space one region at a time.
type RegionIterator interface {
	// Next returns the next committed readable region. ok is false once the
	// maximum application address has been passed.
	Next() (region memory_map.Region, ok bool)
}
