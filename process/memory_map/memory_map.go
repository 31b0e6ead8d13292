// Package memory_map models the regions of a target process's virtual
// address space as reported by the platform query API.
package memory_map

import (
	"fmt"
	"sort"
)

// Windows page protection constants, mirrored here so the portable
// predicates and the scanner can reason about regions without importing
// the syscall package.
const (
	PAGE_NOACCESS          = 0x01
	PAGE_READONLY          = 0x02
	PAGE_READWRITE         = 0x04
	PAGE_WRITECOPY         = 0x08
	PAGE_EXECUTE           = 0x10
	PAGE_EXECUTE_READ      = 0x20
	PAGE_EXECUTE_READWRITE = 0x40
	PAGE_EXECUTE_WRITECOPY = 0x80
	PAGE_GUARD             = 0x100

	MEM_COMMIT = 0x1000
)

// Region represents a memory region in a process's address space
type Region struct {
	Base    uint64 // starting address of the region
	Size    uint   // size of the region in bytes
	Protect uint32 // page protection flags
	State   uint32 // MEM_COMMIT, MEM_FREE, MEM_RESERVE
}

// String returns a string representation of the region
func (r Region) String() string {
	return fmt.Sprintf("Base: %x, Size: %d, Protect: %#x, State: %#x", r.Base, r.Size, r.Protect, r.State)
}

// IsCommitted reports whether the region is backed by committed pages
func (r Region) IsCommitted() bool {
	return r.State == MEM_COMMIT
}

// IsReadable reports whether the protection permits reading. Guard pages
// are excluded; touching one raises an exception in the target.
func (r Region) IsReadable() bool {
	if r.Protect&PAGE_GUARD != 0 {
		return false
	}
	switch r.Protect & 0xFF {
	case PAGE_READONLY,
		PAGE_READWRITE,
		PAGE_WRITECOPY,
		PAGE_EXECUTE_READ,
		PAGE_EXECUTE_READWRITE,
		PAGE_EXECUTE_WRITECOPY:
		return true
	default:
		return false
	}
}

// IsWritable reports whether the protection permits writing
func (r Region) IsWritable() bool {
	switch r.Protect & 0xFF {
	case PAGE_READWRITE,
		PAGE_WRITECOPY,
		PAGE_EXECUTE_READWRITE,
		PAGE_EXECUTE_WRITECOPY:
		return true
	default:
		return false
	}
}

// IsScannable reports whether the region enumerator should emit the region
func (r Region) IsScannable() bool {
	return r.IsCommitted() && r.IsReadable()
}

// RegionForAddress returns the region containing addr. The slice must be
// sorted by Base.
func RegionForAddress(addr uint64, regions []Region) *Region {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].Base+uint64(regions[i].Size) > addr
	})
	if i < len(regions) && regions[i].Base <= addr {
		return &regions[i]
	}
	return nil
}

// IsValidAddress checks if an address is within a valid, readable region
func IsValidAddress(addr uint64, regions []Region) bool {
	r := RegionForAddress(addr, regions)
	return r != nil && r.IsReadable()
}
