package hook

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCodeWriter backs the engine with a byte-addressable fake text
// segment so install/enable/teardown run without touching real code.
type fakeCodeWriter struct {
	code        map[uintptr][]byte // target to current bytes at jumpSize window
	trampolines map[uintptr][]byte
	nextAlloc   uintptr
	failWrite   bool
}

const fakeJumpSize = 5

func newFakeCodeWriter() *fakeCodeWriter {
	return &fakeCodeWriter{
		code:        make(map[uintptr][]byte),
		trampolines: make(map[uintptr][]byte),
		nextAlloc:   0x7000,
	}
}

func (f *fakeCodeWriter) seed(target uintptr, prologue []byte) {
	f.code[target] = append([]byte{}, prologue...)
}

func (f *fakeCodeWriter) jumpSize() int { return fakeJumpSize }

func (f *fakeCodeWriter) makeJump(dest uintptr) []byte {
	return []byte{0xE9, byte(dest), byte(dest >> 8), byte(dest >> 16), byte(dest >> 24)}
}

func (f *fakeCodeWriter) readCode(addr uintptr, n int) ([]byte, error) {
	code, ok := f.code[addr]
	if !ok {
		return nil, fmt.Errorf("no code at %#x", addr)
	}
	out := make([]byte, n)
	copy(out, code)
	return out, nil
}

func (f *fakeCodeWriter) writeCode(addr uintptr, data []byte) error {
	if f.failWrite {
		return fmt.Errorf("write refused")
	}
	if _, ok := f.code[addr]; !ok {
		return fmt.Errorf("no code at %#x", addr)
	}
	f.code[addr] = append([]byte{}, data...)
	return nil
}

func (f *fakeCodeWriter) allocTrampoline(prologue []byte, resume uintptr) (uintptr, error) {
	addr := f.nextAlloc
	f.nextAlloc += 0x100
	f.trampolines[addr] = append(append([]byte{}, prologue...), f.makeJump(resume)...)
	return addr, nil
}

func (f *fakeCodeWriter) freeTrampoline(addr uintptr) error {
	delete(f.trampolines, addr)
	return nil
}

var testPrologue = []byte{0x48, 0x89, 0x5C, 0x24, 0x08}

func readyEngine(t *testing.T) (*Engine, *fakeCodeWriter) {
	t.Helper()
	writer := newFakeCodeWriter()
	writer.seed(0x1000, testPrologue)
	writer.seed(0x2000, []byte{0x40, 0x53, 0x48, 0x83, 0xEC})

	e := NewEngine()
	require.NoError(t, e.initialize(writer))
	return e, writer
}

func TestEngineLifecycle(t *testing.T) {
	e, _ := readyEngine(t)
	assert.Equal(t, StateReady, e.State())

	tramp, err := e.Create(0x1000, 0x9000)
	require.NoError(t, err)
	assert.NotZero(t, tramp)
	assert.Equal(t, StateReady, e.State())

	require.NoError(t, e.Enable(0x1000))
	assert.Equal(t, StateArmed, e.State())

	e.Teardown()
	assert.Equal(t, StateTornDown, e.State())
}

func TestEngineCreateBeforeInitialize(t *testing.T) {
	e := NewEngine()
	_, err := e.Create(0x1000, 0x9000)
	assert.ErrorIs(t, err, ErrBadState)
}

func TestEngineEnableWritesJumpDisableRestores(t *testing.T) {
	e, writer := readyEngine(t)

	_, err := e.Create(0x1000, 0x9000)
	require.NoError(t, err)
	require.NoError(t, e.Enable(0x1000))

	// Target now starts with the jump opcode, not the prologue
	assert.Equal(t, byte(0xE9), writer.code[0x1000][0])

	require.NoError(t, e.Disable(0x1000))
	assert.Equal(t, testPrologue, writer.code[0x1000])
}

func TestEngineTrampolinePreservesPrologue(t *testing.T) {
	e, writer := readyEngine(t)

	tramp, err := e.Create(0x1000, 0x9000)
	require.NoError(t, err)

	code := writer.trampolines[tramp]
	require.GreaterOrEqual(t, len(code), fakeJumpSize)
	assert.Equal(t, testPrologue, code[:fakeJumpSize])
}

func TestEngineTargetHookedOnce(t *testing.T) {
	e, _ := readyEngine(t)

	_, err := e.Create(0x1000, 0x9000)
	require.NoError(t, err)

	_, err = e.Create(0x1000, 0x9100)
	assert.ErrorIs(t, err, ErrAlreadyHooked)
}

func TestEngineDisableAll(t *testing.T) {
	e, writer := readyEngine(t)

	for _, target := range []uintptr{0x1000, 0x2000} {
		_, err := e.Create(target, 0x9000+target)
		require.NoError(t, err)
		require.NoError(t, e.Enable(target))
	}

	e.DisableAll()

	assert.Equal(t, testPrologue, writer.code[0x1000])
	assert.Equal(t, []byte{0x40, 0x53, 0x48, 0x83, 0xEC}, writer.code[0x2000])
}

func TestEngineTeardownRestoresOriginalBytes(t *testing.T) {
	e, writer := readyEngine(t)

	tramp, err := e.Create(0x1000, 0x9000)
	require.NoError(t, err)
	require.NoError(t, e.Enable(0x1000))

	e.Teardown()

	// Re-reading the target yields the original prologue and the
	// trampoline is gone
	assert.Equal(t, testPrologue, writer.code[0x1000])
	_, alive := writer.trampolines[tramp]
	assert.False(t, alive)

	// Idempotent
	e.Teardown()
	assert.Equal(t, StateTornDown, e.State())
}

func TestEngineEnableFailureSkipsHook(t *testing.T) {
	e, writer := readyEngine(t)

	_, err := e.Create(0x1000, 0x9000)
	require.NoError(t, err)

	writer.failWrite = true
	err = e.Enable(0x1000)
	assert.ErrorIs(t, err, ErrInstallFailed)
	assert.Equal(t, StateReady, e.State())
}

func TestEngineEnableUnknownTarget(t *testing.T) {
	e, _ := readyEngine(t)
	assert.ErrorIs(t, e.Enable(0xDEAD), ErrTargetNotFound)
}

func TestEngineOperationsAfterTeardown(t *testing.T) {
	e, _ := readyEngine(t)
	e.Teardown()

	_, err := e.Create(0x1000, 0x9000)
	assert.ErrorIs(t, err, ErrBadState)
	assert.ErrorIs(t, e.Enable(0x1000), ErrBadState)
}
