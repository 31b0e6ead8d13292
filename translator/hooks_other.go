//go:build !windows

package translator

func (m *Module) installHooks(gameDir string) {
	m.log.Warn("No engine hooks on this platform; running degraded")
}
