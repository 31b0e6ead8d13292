//go:build windows

package ipc

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isDisconnectError reports whether a read failed because the pipe went
// away, which triggers the reconnect path.
func isDisconnectError(err error) bool {
	return errors.Is(err, windows.ERROR_BROKEN_PIPE) ||
		errors.Is(err, windows.ERROR_PIPE_NOT_CONNECTED) ||
		errors.Is(err, windows.ERROR_NO_DATA)
}
