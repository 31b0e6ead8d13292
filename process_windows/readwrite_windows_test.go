//go:build windows

package process_windows

import (
	"bytes"
	"errors"
	"testing"

	"gamestringer/process"
	"gamestringer/process/memory_map"
)

func TestReadWriteRoundTrip(t *testing.T) {
	p := openSelf(t)
	addr := allocRW(t, 0x1000)

	want := []byte("gamestringer read/write probe")
	if err := p.WriteMemory(process.ProcessMemoryAddress(addr), want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := p.ReadMemory(process.ProcessMemoryAddress(addr), process.ProcessMemorySize(len(want)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read back %q, want %q", got, want)
	}
}

func TestReadZeroSize(t *testing.T) {
	p := openSelf(t)
	addr := allocRW(t, 0x1000)

	got, err := p.ReadMemory(process.ProcessMemoryAddress(addr), 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty read, got %d bytes", len(got))
	}
}

func TestReadUnmappedFails(t *testing.T) {
	p := openSelf(t)

	_, err := p.ReadMemory(0x10, 16)
	if !errors.Is(err, process.ErrRegionUnreadable) {
		t.Fatalf("expected ErrRegionUnreadable, got %v", err)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	p := openSelf(t)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := p.ReadMemory(0x1000, 4); !errors.Is(err, process.ErrProcessNotOpen) {
		t.Fatalf("expected ErrProcessNotOpen, got %v", err)
	}
	if err := p.WriteMemory(0x1000, []byte{1}); !errors.Is(err, process.ErrProcessNotOpen) {
		t.Fatalf("expected ErrProcessNotOpen, got %v", err)
	}
}

func TestProtectBracketing(t *testing.T) {
	p := openSelf(t)
	addr := allocRW(t, 0x1000)

	old, err := p.Protect(process.ProcessMemoryAddress(addr), 0x1000, memory_map.PAGE_EXECUTE_READWRITE)
	if err != nil {
		t.Fatalf("protect: %v", err)
	}
	if old != memory_map.PAGE_READWRITE {
		t.Fatalf("prior protection %#x, want PAGE_READWRITE", old)
	}

	restored, err := p.Protect(process.ProcessMemoryAddress(addr), 0x1000, old)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored != memory_map.PAGE_EXECUTE_READWRITE {
		t.Fatalf("elevated protection %#x, want PAGE_EXECUTE_READWRITE", restored)
	}
}

func TestModulesAndBitness(t *testing.T) {
	p := openSelf(t)

	modules, err := p.Modules()
	if err != nil {
		t.Fatalf("modules: %v", err)
	}
	if len(modules) == 0 {
		t.Fatal("expected at least the main module")
	}
	for _, m := range modules {
		if m.Base == 0 || m.Size == 0 || m.Name == "" {
			t.Fatalf("incomplete module entry: %+v", m)
		}
	}

	if _, err := p.Is64Bit(); err != nil {
		t.Fatalf("is64bit: %v", err)
	}
}
