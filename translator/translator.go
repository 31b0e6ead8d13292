// Package translator is the root context of the injected module. It owns
// the cache, the IPC client, the pipeline, and the hook engine for the
// lifetime of the target process, and tears them down in reverse order.
package translator

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gamestringer/hook"
	"gamestringer/ipc"
	"gamestringer/translate"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// reconnectInterval paces the keepalive loop at roughly 10 Hz
const reconnectInterval = 100 * time.Millisecond

// Module wires the injected-module subsystems together
type Module struct {
	cfg      translate.Config
	pipeName string

	cache    *translate.Cache
	client   *ipc.Client
	pipeline *translate.Pipeline
	engine   *hook.Engine

	running atomic.Bool
	stopped chan struct{}
	stopMu  sync.Mutex

	log *logger.Logger
}

// New builds the module around a configuration. Nothing connects or hooks
// until Run.
func New(cfg translate.Config, pipeName string) *Module {
	cache := translate.NewCache(cfg.MaxCacheSize)
	client := ipc.NewClient(pipeName)
	if pipeName == ipc.PipeNameUnity {
		client.UseCodec(ipc.JSONCodec{})
	}

	m := &Module{
		cfg:      cfg,
		pipeName: pipeName,
		cache:    cache,
		client:   client,
		pipeline: translate.NewPipeline(cfg, cache, client),
		engine:   hook.NewEngine(),
		stopped:  make(chan struct{}),
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "translator")),
	}
	client.OnConfigUpdate = m.applyConfig
	return m
}

// applyConfig handles CONFIG_UPDATE lines of key=value pairs separated by
// semicolons, e.g. "enabled=false;target_language=de".
func (m *Module) applyConfig(text string) {
	for _, field := range strings.Split(text, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok {
			continue
		}
		switch key {
		case "enabled":
			m.pipeline.SetEnabled(value == "true" || value == "1")
		case "target_language":
			m.pipeline.SetTargetLanguage(value)
		default:
			m.log.Debugln("Ignoring config key", key)
		}
	}
	m.log.Infoln("Configuration updated")
}

// Pipeline exposes the pipeline for the control surface and detours
func (m *Module) Pipeline() *translate.Pipeline {
	return m.pipeline
}

// Engine exposes the hook engine
func (m *Module) Engine() *hook.Engine {
	return m.engine
}

// Run performs the staged startup: cache load, transport connect, hook
// install, then the keepalive loop until Shutdown. Every stage failing
// leaves the module degraded but valid; only a dead hook engine aborts.
func (m *Module) Run(gameDir string) {
	if !m.running.CompareAndSwap(false, true) {
		return
	}

	if m.cfg.CacheEnabled && m.cfg.CachePath != "" {
		if loaded, err := m.cache.Load(m.cfg.CachePath); err != nil {
			m.log.Warn("Cache not loaded: ", err)
		} else if loaded {
			m.log.Infoln("Cache loaded:", m.cache.Size(), "entries")
		}
	}

	if err := m.client.Connect(); err != nil {
		m.log.Warn("Orchestrator unreachable, running from local cache: ", err)
	}

	if err := m.engine.Initialize(); err != nil {
		m.log.Warn("Hook engine unavailable: ", err)
		m.running.Store(false)
		return
	}

	m.installHooks(gameDir)

	m.log.Infoln("Translator active")
	m.keepalive()
}

// statsEveryTicks spaces the periodic stats push at ~30 s
const statsEveryTicks = 300

// keepalive retries the connection and pushes stats while the module runs
func (m *Module) keepalive() {
	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-m.stopped:
			return
		case <-ticker.C:
			if !m.running.Load() {
				continue
			}
			if !m.client.IsConnected() {
				_ = m.client.Connect()
				continue
			}
			ticks++
			if ticks%statsEveryTicks == 0 {
				m.PushStats()
			}
		}
	}
}

// Shutdown tears the module down in reverse order of construction: hooks
// first, then the cache flush, then the transport.
func (m *Module) Shutdown() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}

	m.stopMu.Lock()
	select {
	case <-m.stopped:
	default:
		close(m.stopped)
	}
	m.stopMu.Unlock()

	m.engine.Teardown()

	if m.cfg.CacheEnabled && m.cfg.CachePath != "" {
		if err := m.cache.Save(m.cfg.CachePath); err != nil {
			m.log.Warn("Cache not saved: ", err)
		}
	}

	m.client.Close()
	m.log.Infoln("Translator shut down")
}

// IsActive reports whether the module is running and translation is on
func (m *Module) IsActive() bool {
	return m.running.Load() && m.pipeline.Enabled()
}

// Toggle flips the master switch and returns the new state
func (m *Module) Toggle() bool {
	state := m.pipeline.Toggle()
	if state {
		m.log.Infoln("Translation enabled")
	} else {
		m.log.Infoln("Translation disabled")
	}
	return state
}

// SetEnabled sets the master switch
func (m *Module) SetEnabled(enabled bool) {
	m.pipeline.SetEnabled(enabled)
}

// SetTargetLanguage updates the destination language tag
func (m *Module) SetTargetLanguage(lang string) {
	m.pipeline.SetTargetLanguage(lang)
}

// CacheSize returns the number of cached pairs
func (m *Module) CacheSize() int {
	return m.cache.Size()
}

// ClearCache drops every cached pair
func (m *Module) ClearCache() {
	m.cache.Clear()
	m.log.Infoln("Cache cleared")
}

// Stats returns the pipeline counters
func (m *Module) Stats() translate.StatsSnapshot {
	return m.pipeline.Stats()
}

// PushStats forwards the counters to the orchestrator, best effort
func (m *Module) PushStats() {
	if !m.client.IsConnected() {
		return
	}
	s := m.pipeline.Stats()
	_ = m.client.SendStats(s.TotalRequests, s.CacheHits, s.Errors)
}

// PushCache uploads the locally observed pairs to the orchestrator
func (m *Module) PushCache() {
	if !m.client.IsConnected() {
		return
	}
	pairs := m.cache.Pairs()
	if len(pairs) == 0 {
		return
	}
	_ = m.client.SendCacheSync(pairs)
}
