//go:build !windows

package ipc

// isDisconnectError always reports false off Windows; EOF and closed-conn
// errors are handled by the caller directly.
func isDisconnectError(err error) bool {
	return false
}
