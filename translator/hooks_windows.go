//go:build windows

package translator

import "gamestringer/hook"

func (m *Module) installHooks(gameDir string) {
	if err := hook.InstallUnrealHooks(m.engine, m.pipeline, gameDir); err != nil {
		m.log.Warn("Unreal hooks incomplete: ", err)
	}
	if err := hook.InstallMonoHooks(m.engine, m.pipeline); err != nil {
		m.log.Warn("Mono hooks incomplete: ", err)
	}
	m.log.Infoln("Hooks installed:", len(m.engine.Hooks()))
}
