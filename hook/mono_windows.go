//go:build windows

package hook

import (
	"fmt"
	"strings"
	"sync/atomic"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"gamestringer/translate"

	"golang.org/x/sys/windows"
)

// Mono runtimes ship under either name depending on the GC build
var monoModuleNames = []string{"mono-2.0-bdwgc.dll", "mono.dll"}

// monoState carries resolved runtime functions and trampolines for the
// detours.
var monoState struct {
	pipeline *translate.Pipeline

	stringNewTramp      uintptr
	stringNewUTF16Tramp uintptr
	runtimeInvokeTramp  uintptr

	methodGetName uintptr

	setTextInvocations atomic.Uint64
}

func monoModule() (windows.Handle, error) {
	for _, name := range monoModuleNames {
		namePtr, err := windows.UTF16PtrFromString(name)
		if err != nil {
			continue
		}
		if handle, err := windows.GetModuleHandle(namePtr); err == nil {
			return handle, nil
		}
	}
	return 0, fmt.Errorf("mono runtime not loaded: %w", ErrTargetNotFound)
}

func monoProc(module windows.Handle, name string) uintptr {
	addr, err := windows.GetProcAddress(module, name)
	if err != nil {
		return 0
	}
	return addr
}

// InstallMonoHooks resolves the managed-string constructors by export name
// and hooks them, plus mono_runtime_invoke for observation only. Hooks
// that cannot install are skipped; the rest continue.
func InstallMonoHooks(e *Engine, pipeline *translate.Pipeline) error {
	module, err := monoModule()
	if err != nil {
		return err
	}

	monoState.pipeline = pipeline
	monoState.methodGetName = monoProc(module, "mono_method_get_name")

	var firstErr error
	install := func(export string, detour uintptr, tramp *uintptr) {
		target := monoProc(module, export)
		if target == 0 {
			e.log.Warn(export, ": not exported")
			if firstErr == nil {
				firstErr = ErrTargetNotFound
			}
			return
		}
		t, err := e.Create(target, detour)
		if err != nil {
			e.log.Warn(export, ": ", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*tramp = t
		if err := e.Enable(target); err != nil {
			e.log.Warn(export, ": ", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		e.log.Infoln(export, "hooked")
	}

	// Order matters: the utf16 trampoline must exist before the narrow
	// detour can substitute through it.
	install("mono_string_new_utf16", syscall.NewCallback(monoStringNewUTF16Detour), &monoState.stringNewUTF16Tramp)
	install("mono_string_new", syscall.NewCallback(monoStringNewDetour), &monoState.stringNewTramp)
	install("mono_runtime_invoke", syscall.NewCallback(monoRuntimeInvokeDetour), &monoState.runtimeInvokeTramp)

	return firstErr
}

// SetTextInvocations reports how many SetText-shaped managed calls the
// observation hook has seen.
func SetTextInvocations() uint64 {
	return monoState.setTextInvocations.Load()
}

// monoStringNewDetour intercepts mono_string_new(domain, utf8). When the
// text passes the filter and a translation comes back, the managed string
// is built with mono_string_new_utf16 instead.
func monoStringNewDetour(domain, text uintptr) uintptr {
	if text == 0 {
		ret, _, _ := syscall.SyscallN(monoState.stringNewTramp, domain, text)
		return ret
	}

	original := goStringFromC(text)
	translated, changed := Substitute(monoState.pipeline, original)
	if changed && monoState.stringNewUTF16Tramp != 0 {
		return newMonoUTF16(domain, translated)
	}

	ret, _, _ := syscall.SyscallN(monoState.stringNewTramp, domain, text)
	return ret
}

// monoStringNewUTF16Detour intercepts mono_string_new_utf16(domain, ptr,
// len); symmetric substitution.
func monoStringNewUTF16Detour(domain, text uintptr, length uintptr) uintptr {
	n := int(int32(length))
	if text == 0 || n <= 0 {
		ret, _, _ := syscall.SyscallN(monoState.stringNewUTF16Tramp, domain, text, length)
		return ret
	}

	units := unsafe.Slice((*uint16)(unsafe.Pointer(text)), n)
	original := string(utf16.Decode(units))

	translated, changed := Substitute(monoState.pipeline, original)
	if changed {
		return newMonoUTF16(domain, translated)
	}

	ret, _, _ := syscall.SyscallN(monoState.stringNewUTF16Tramp, domain, text, length)
	return ret
}

// monoRuntimeInvokeDetour observes managed invocations without modifying
// them; SetText-shaped method names are counted for telemetry.
func monoRuntimeInvokeDetour(method, obj, params, exc uintptr) uintptr {
	if method != 0 && monoState.methodGetName != 0 {
		if namePtr, _, _ := syscall.SyscallN(monoState.methodGetName, method); namePtr != 0 {
			name := goStringFromC(namePtr)
			if strings.Contains(name, "SetText") || strings.Contains(name, "set_text") ||
				name == "set_Text" || name == "SetCharArray" {
				monoState.setTextInvocations.Add(1)
			}
		}
	}

	ret, _, _ := syscall.SyscallN(monoState.runtimeInvokeTramp, method, obj, params, exc)
	return ret
}

// newMonoUTF16 builds a managed string through the original constructor
func newMonoUTF16(domain uintptr, s string) uintptr {
	units := utf16.Encode([]rune(s))
	units = append(units, 0)
	ret, _, _ := syscall.SyscallN(monoState.stringNewUTF16Tramp,
		domain,
		uintptr(unsafe.Pointer(&units[0])),
		uintptr(len(units)-1),
	)
	return ret
}

// goStringFromC copies a NUL-terminated byte string out of native memory
func goStringFromC(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var out []byte
	for i := 0; ; i++ {
		b := *(*byte)(unsafe.Pointer(ptr + uintptr(i)))
		if b == 0 {
			break
		}
		out = append(out, b)
		if len(out) > 4096 {
			break
		}
	}
	return string(out)
}
