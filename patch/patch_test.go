package patch

import (
	"testing"

	"gamestringer/process"
	"gamestringer/process/memory_map"
	"gamestringer/textenc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcess backs the process interface with one in-memory region so the
// full scan-and-patch path runs without a live target.
type fakeProcess struct {
	base    uint64
	mem     []byte
	protect uint32

	protectCalls []uint32
	failWrite    bool
	shortWrite   bool
}

func newFakeProcess(size int) *fakeProcess {
	return &fakeProcess{
		base:    0x100000,
		mem:     make([]byte, size),
		protect: memory_map.PAGE_READWRITE,
	}
}

func (f *fakeProcess) Open(pid process.ProcessID) error { return nil }
func (f *fakeProcess) Close() error                     { return nil }
func (f *fakeProcess) GetPID() process.ProcessID        { return 1 }

func (f *fakeProcess) Regions() process.RegionIterator {
	return &fakeRegionIterator{proc: f}
}

type fakeRegionIterator struct {
	proc *fakeProcess
	done bool
}

func (it *fakeRegionIterator) Next() (memory_map.Region, bool) {
	if it.done {
		return memory_map.Region{}, false
	}
	it.done = true
	return memory_map.Region{
		Base:    it.proc.base,
		Size:    uint(len(it.proc.mem)),
		Protect: it.proc.protect,
		State:   memory_map.MEM_COMMIT,
	}, true
}

func (f *fakeProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	offset := int(uint64(addr) - f.base)
	if offset < 0 || offset+int(size) > len(f.mem) {
		return nil, process.ErrRegionUnreadable
	}
	out := make([]byte, size)
	copy(out, f.mem[offset:])
	return out, nil
}

func (f *fakeProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if f.failWrite {
		return process.ErrRegionUnreadable
	}
	offset := int(uint64(addr) - f.base)
	if offset < 0 || offset+len(data) > len(f.mem) {
		return process.ErrRegionUnreadable
	}
	if f.shortWrite {
		copy(f.mem[offset:], data[:len(data)/2])
		return process.ErrWriteIncomplete
	}
	copy(f.mem[offset:], data)
	return nil
}

func (f *fakeProcess) Protect(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, protect uint32) (uint32, error) {
	old := f.protect
	f.protect = protect
	f.protectCalls = append(f.protectCalls, protect)
	return old, nil
}

func (f *fakeProcess) Modules() ([]process.ModuleInfo, error) { return nil, nil }
func (f *fakeProcess) Is64Bit() (bool, error)                 { return true, nil }

func (f *fakeProcess) addr(offset uint64) process.ProcessMemoryAddress {
	return process.ProcessMemoryAddress(f.base + offset)
}

func wideBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := textenc.EncodeWide(s)
	require.NoError(t, err)
	return b
}

func TestPrepareBufferEqualLength(t *testing.T) {
	buf, err := PrepareBuffer("OK", "OK", process.EncodingNarrow)
	require.NoError(t, err)
	assert.Equal(t, []byte("OK"), buf)
}

func TestPrepareBufferOneShorter(t *testing.T) {
	buf, err := PrepareBuffer("abc", "ab", process.EncodingNarrow)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab "), buf)
}

func TestPrepareBufferWidePadding(t *testing.T) {
	buf, err := PrepareBuffer("Start Game", "Inizia", process.EncodingWide)
	require.NoError(t, err)
	assert.Equal(t, wideBytes(t, "Inizia    "), buf)
}

func TestPrepareBufferTooLong(t *testing.T) {
	_, err := PrepareBuffer("Hi", "Ciao", process.EncodingNarrow)
	assert.ErrorIs(t, err, ErrReplacementTooLong)

	_, err = PrepareBuffer("Hi", "Ciao", process.EncodingWide)
	assert.ErrorIs(t, err, ErrReplacementTooLong)
}

func TestPatchRestoresProtection(t *testing.T) {
	proc := newFakeProcess(0x100)
	copy(proc.mem[0x10:], "Options")

	err := New(proc).Patch(proc.addr(0x10), "Options", "Opzioni", process.EncodingNarrow)
	require.NoError(t, err)

	// Elevated to WX for the write, then restored to the prior value
	require.Len(t, proc.protectCalls, 2)
	assert.Equal(t, uint32(memory_map.PAGE_EXECUTE_READWRITE), proc.protectCalls[0])
	assert.Equal(t, uint32(memory_map.PAGE_READWRITE), proc.protectCalls[1])
	assert.Equal(t, uint32(memory_map.PAGE_READWRITE), proc.protect)
}

func TestPatchRestoresProtectionOnFailedWrite(t *testing.T) {
	proc := newFakeProcess(0x100)
	copy(proc.mem[0x10:], "Options")
	proc.failWrite = true

	err := New(proc).Patch(proc.addr(0x10), "Options", "Opzioni", process.EncodingNarrow)
	assert.Error(t, err)

	require.Len(t, proc.protectCalls, 2)
	assert.Equal(t, uint32(memory_map.PAGE_READWRITE), proc.protect)
}

func TestPatchShortWrite(t *testing.T) {
	proc := newFakeProcess(0x100)
	copy(proc.mem[0x10:], "Options")
	proc.shortWrite = true

	err := New(proc).Patch(proc.addr(0x10), "Options", "Opzioni", process.EncodingNarrow)
	assert.ErrorIs(t, err, process.ErrWriteIncomplete)
}

func TestInjectWideScenario(t *testing.T) {
	// Region contains L"Start Game\0" at offset 0x1000
	proc := newFakeProcess(0x2000)
	copy(proc.mem[0x1000:], wideBytes(t, "Start Game"))

	result, err := New(proc).InjectTranslations([]process.TranslationPair{
		{Original: "Start Game", Translated: "Inizia"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.InjectedCount)
	item := result.Injected[0]
	assert.Equal(t, uint64(proc.addr(0x1000)), item.Address)
	assert.Equal(t, "UTF-16", item.Encoding)

	// Post-patch bytes read back as L"Inizia    " with the null preserved
	assert.Equal(t, wideBytes(t, "Inizia    "), proc.mem[0x1000:0x1000+20])
	assert.Equal(t, []byte{0, 0}, proc.mem[0x1000+20:0x1000+22])
}

func TestInjectNarrowTwice(t *testing.T) {
	// "OK" twice at 0x40 and 0x80; replacement of equal length
	proc := newFakeProcess(0x100)
	copy(proc.mem[0x40:], "OK")
	copy(proc.mem[0x80:], "OK")
	before := append([]byte{}, proc.mem...)

	result, err := New(proc).InjectTranslations([]process.TranslationPair{
		{Original: "OK", Translated: "OK"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.InjectedCount)
	assert.Equal(t, before, proc.mem)
}

func TestInjectTooLongOmitted(t *testing.T) {
	proc := newFakeProcess(0x100)
	copy(proc.mem[0x20:], "Hi")

	result, err := New(proc).InjectTranslations([]process.TranslationPair{
		{Original: "Hi", Translated: "Ciao"},
	})
	require.NoError(t, err)

	// Reported by omission: the pair simply does not appear
	assert.Equal(t, 0, result.InjectedCount)
	assert.Empty(t, result.Injected)
	assert.True(t, result.Success)
}

func TestInjectThenRescanFindsReplacement(t *testing.T) {
	proc := newFakeProcess(0x800)
	copy(proc.mem[0x200:], wideBytes(t, "Continue"))

	patcher := New(proc)
	_, err := patcher.InjectTranslations([]process.TranslationPair{
		{Original: "Continue", Translated: "Avanti"},
	})
	require.NoError(t, err)

	matches, err := patcher.scanner.ScanProcessText(proc,
		process.TranslationPair{Original: "Avanti"}, process.EncodingWide)
	require.NoError(t, err)

	require.NotEmpty(t, matches)
	assert.Equal(t, proc.addr(0x200), matches[0].Address)
}
