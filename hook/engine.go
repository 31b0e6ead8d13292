// Package hook installs trampoline hooks on engine text functions located
// by byte signature or export name. A short jump at the target transfers
// control to a detour; the displaced prologue lives on in a trampoline the
// detour uses to reach the original.
package hook

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrTargetNotFound is returned when a signature scan yields no
	// candidate; the caller reports and continues.
	ErrTargetNotFound = errors.New("hook target not found")

	// ErrInstallFailed is returned when trampoline creation or the enable
	// write failed; the hook is skipped, others continue.
	ErrInstallFailed = errors.New("hook install failed")

	// ErrAlreadyHooked guards the one-hook-per-target invariant.
	ErrAlreadyHooked = errors.New("target already hooked")

	// ErrBadState is returned for operations outside the engine's current
	// lifecycle state.
	ErrBadState = errors.New("hook engine in wrong state")
)

// State is the engine lifecycle
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateArmed
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateArmed:
		return "armed"
	case StateTornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// Hook records one installed interception
type Hook struct {
	Target     uintptr
	Trampoline uintptr
	Detour     uintptr
	Enabled    bool

	prologue []byte // original bytes displaced by the jump
	jump     []byte // the jump written at Target while enabled
}

// codeWriter is the platform seam: reading and rewriting executable code
// and allocating trampolines.
type codeWriter interface {
	// readCode copies n bytes from executable memory
	readCode(addr uintptr, n int) ([]byte, error)

	// writeCode rewrites executable memory, bracketing page protection
	writeCode(addr uintptr, data []byte) error

	// allocTrampoline places prologue followed by a jump to resume into
	// fresh executable memory
	allocTrampoline(prologue []byte, resume uintptr) (uintptr, error)

	// freeTrampoline releases a trampoline allocation
	freeTrampoline(addr uintptr) error

	// jumpSize is the number of bytes the enable write occupies
	jumpSize() int

	// makeJump builds the jump instruction bytes from addr to dest
	makeJump(dest uintptr) []byte
}

// Engine owns the hook table. The table is mutated only during install and
// teardown on the initialization thread; detours never touch it.
type Engine struct {
	mu     sync.Mutex
	state  State
	writer codeWriter
	hooks  map[uintptr]*Hook

	// hookedEver enforces at most one hook per target address per process
	// lifetime, even across uninstall.
	hookedEver map[uintptr]bool

	log *logger.Logger
}

// NewEngine returns an engine in the uninitialized state
func NewEngine() *Engine {
	return &Engine{
		state:      StateUninitialized,
		hooks:      make(map[uintptr]*Hook),
		hookedEver: make(map[uintptr]bool),
		log:        logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "hooks")),
	}
}

// Initialize transitions to ready with the platform code writer
func (e *Engine) Initialize() error {
	return e.initialize(newCodeWriter())
}

func (e *Engine) initialize(writer codeWriter) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateUninitialized {
		return fmt.Errorf("initialize from %s: %w", e.state, ErrBadState)
	}
	if writer == nil {
		return ErrInstallFailed
	}
	e.writer = writer
	e.state = StateReady
	e.log.Infoln("Hook engine ready")
	return nil
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Create installs a disabled hook: the prologue is displaced into a fresh
// trampoline and the target recorded. Returns the trampoline address the
// detour calls to reach the original.
func (e *Engine) Create(target, detour uintptr) (uintptr, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady && e.state != StateArmed {
		return 0, fmt.Errorf("create from %s: %w", e.state, ErrBadState)
	}
	if target == 0 || detour == 0 {
		return 0, fmt.Errorf("nil target or detour: %w", ErrInstallFailed)
	}
	if e.hookedEver[target] {
		return 0, fmt.Errorf("target %#x: %w", target, ErrAlreadyHooked)
	}

	size := e.writer.jumpSize()
	prologue, err := e.writer.readCode(target, size)
	if err != nil {
		return 0, fmt.Errorf("read prologue at %#x: %v: %w", target, err, ErrInstallFailed)
	}

	trampoline, err := e.writer.allocTrampoline(prologue, target+uintptr(size))
	if err != nil {
		return 0, fmt.Errorf("trampoline for %#x: %v: %w", target, err, ErrInstallFailed)
	}

	e.hooks[target] = &Hook{
		Target:     target,
		Trampoline: trampoline,
		Detour:     detour,
		prologue:   prologue,
		jump:       e.writer.makeJump(detour),
	}
	e.hookedEver[target] = true

	e.log.Debugln("Hook created for", fmt.Sprintf("%#x", target))
	return trampoline, nil
}

// Enable writes the jump at the target, arming the hook
func (e *Engine) Enable(target uintptr) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady && e.state != StateArmed {
		return fmt.Errorf("enable from %s: %w", e.state, ErrBadState)
	}
	h, ok := e.hooks[target]
	if !ok {
		return fmt.Errorf("target %#x: %w", target, ErrTargetNotFound)
	}
	if h.Enabled {
		return nil
	}

	if err := e.writer.writeCode(h.Target, h.jump); err != nil {
		return fmt.Errorf("enable %#x: %v: %w", target, err, ErrInstallFailed)
	}
	h.Enabled = true
	e.state = StateArmed

	e.log.Infoln("Hook enabled at", fmt.Sprintf("%#x", target))
	return nil
}

// Disable restores the original prologue bytes at the target
func (e *Engine) Disable(target uintptr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disableLocked(target)
}

func (e *Engine) disableLocked(target uintptr) error {
	h, ok := e.hooks[target]
	if !ok {
		return fmt.Errorf("target %#x: %w", target, ErrTargetNotFound)
	}
	if !h.Enabled {
		return nil
	}

	if err := e.writer.writeCode(h.Target, h.prologue); err != nil {
		return fmt.Errorf("disable %#x: %w", target, err)
	}
	h.Enabled = false
	return nil
}

// DisableAll restores every hooked target; failures are logged and the
// remaining hooks still get disabled.
func (e *Engine) DisableAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for target := range e.hooks {
		if err := e.disableLocked(target); err != nil {
			e.log.Warn("DisableAll: ", err)
		}
	}
}

// Teardown disables all hooks, releases trampolines, and retires the
// engine. Safe to call more than once.
func (e *Engine) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateTornDown || e.state == StateUninitialized {
		e.state = StateTornDown
		return
	}

	for target, h := range e.hooks {
		if err := e.disableLocked(target); err != nil {
			e.log.Warn("Teardown: ", err)
		}
		if h.Trampoline != 0 {
			if err := e.writer.freeTrampoline(h.Trampoline); err != nil {
				e.log.Warn("Teardown: free trampoline: ", err)
			}
		}
	}
	e.hooks = make(map[uintptr]*Hook)
	e.state = StateTornDown
	e.log.Infoln("Hook engine torn down")
}

// Hooks returns a snapshot of the hook table for inspection
func (e *Engine) Hooks() []Hook {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Hook, 0, len(e.hooks))
	for _, h := range e.hooks {
		out = append(out, *h)
	}
	return out
}
