//go:build !windows

package hook

// Hooking engine text functions is a Windows concern; elsewhere the engine
// stays uninitialized and the module runs degraded (no hooks, no crash).
func newCodeWriter() codeWriter {
	return nil
}
