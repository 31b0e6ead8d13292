//go:build windows

package hook

import (
	"fmt"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"gamestringer/translate"
)

// ueFString mirrors Unreal's FString: a counted UTF-16 buffer where
// ArrayNum includes the terminator.
type ueFString struct {
	Data     *uint16
	ArrayNum int32
	ArrayMax int32
}

func (s *ueFString) length() int {
	if s.ArrayNum > 0 {
		return int(s.ArrayNum - 1)
	}
	return 0
}

// unrealState carries what the detours need. Detours are plain callbacks
// with a fixed signature; this is their only channel to the pipeline.
var unrealState struct {
	pipeline      *translate.Pipeline
	toStringTramp uintptr
	setTextTramp  uintptr
}

// InstallUnrealHooks detects the engine version, locates FText::ToString
// and UTextBlock::SetText by signature in the main module, and arms both
// hooks. A function that cannot be located is skipped; the other still
// installs.
func InstallUnrealHooks(e *Engine, pipeline *translate.Pipeline, gameDir string) error {
	version := DetectUnrealVersion(gameDir)
	e.log.Infoln("Detected", version.String())

	unrealState.pipeline = pipeline

	var firstErr error
	install := func(table map[EngineVersion]string, detour uintptr, tramp *uintptr, what string) {
		aob, err := SignatureFor(table, version)
		if err != nil {
			e.log.Warn(what, ": no signature for ", version.String())
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		target, err := FindSignature("", aob)
		if err != nil {
			e.log.Warn(what, ": ", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		t, err := e.Create(target, detour)
		if err != nil {
			e.log.Warn(what, ": ", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*tramp = t
		if err := e.Enable(target); err != nil {
			e.log.Warn(what, ": ", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		e.log.Infoln(what, "hooked at", fmt.Sprintf("%#x", target))
	}

	install(fTextToStringSignatures, syscall.NewCallback(fTextToStringDetour), &unrealState.toStringTramp, "FText::ToString")
	install(uTextBlockSetTextSignatures, syscall.NewCallback(uTextBlockSetTextDetour), &unrealState.setTextTramp, "UTextBlock::SetText")

	return firstErr
}

// fTextToStringDetour calls the original, then rewrites the produced
// buffer in place when a translation fits. The allocation is the engine's;
// only the counted contents change.
func fTextToStringDetour(self, out uintptr) uintptr {
	ret, _, _ := syscall.SyscallN(unrealState.toStringTramp, self, out)
	if ret == 0 {
		return ret
	}

	fs := (*ueFString)(unsafe.Pointer(ret))
	if fs.Data == nil || fs.length() == 0 {
		return ret
	}

	units := unsafe.Slice(fs.Data, fs.length())
	original := string(utf16.Decode(units))

	translated, changed := Substitute(unrealState.pipeline, original)
	if !changed {
		return ret
	}

	encoded := utf16.Encode([]rune(translated))
	if len(encoded)+1 > int(fs.ArrayMax) {
		// Does not fit in the engine's buffer; leave the original.
		return ret
	}

	dst := unsafe.Slice(fs.Data, len(encoded)+1)
	copy(dst, encoded)
	dst[len(encoded)] = 0
	fs.ArrayNum = int32(len(encoded) + 1)

	return ret
}

// uTextBlockSetTextDetour passes through; translation happens at ToString
func uTextBlockSetTextDetour(self, text uintptr) uintptr {
	ret, _, _ := syscall.SyscallN(unrealState.setTextTramp, self, text)
	return ret
}
