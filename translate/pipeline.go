package translate

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// DefaultTimeout bounds how long a detour may hold an engine thread while
// waiting for the orchestrator.
const DefaultTimeout = 2000 * time.Millisecond

// Transport is the request channel to the orchestrator. The pipeline holds
// a non-owning reference; the module root owns the connection.
type Transport interface {
	IsConnected() bool
	Translate(text string, timeout time.Duration) (string, error)
}

// Config carries the recognized options of the injected module
type Config struct {
	TargetLanguage string
	SourceLanguage string
	Enabled        bool
	CacheEnabled   bool
	MaxCacheSize   int
	CachePath      string
}

func DefaultConfig() Config {
	return Config{
		TargetLanguage: "it",
		SourceLanguage: "en",
		Enabled:        true,
		CacheEnabled:   true,
		MaxCacheSize:   DefaultMaxCacheSize,
	}
}

// Pipeline decides translatability, consults the cache, and falls back to
// the transport. A failed translation always surfaces as the original
// string, never as a missing one.
type Pipeline struct {
	mu      sync.Mutex
	cfg     Config
	enabled atomic.Bool

	cache     *Cache
	transport Transport
	stats     *Stats
	timeout   time.Duration
	log       *logger.Logger
}

func NewPipeline(cfg Config, cache *Cache, transport Transport) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		cache:     cache,
		transport: transport,
		stats:     &Stats{},
		timeout:   DefaultTimeout,
		log:       logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "translate")),
	}
	p.enabled.Store(cfg.Enabled)
	return p
}

// SetTimeout overrides the per-request deadline. Orchestrator-initiated
// calls use a longer one than engine detours.
func (p *Pipeline) SetTimeout(d time.Duration) {
	p.mu.Lock()
	p.timeout = d
	p.mu.Unlock()
}

func (p *Pipeline) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *Pipeline) Enabled() bool {
	return p.enabled.Load()
}

// Toggle flips the master switch and returns the new state
func (p *Pipeline) Toggle() bool {
	for {
		old := p.enabled.Load()
		if p.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (p *Pipeline) SetTargetLanguage(lang string) {
	p.mu.Lock()
	p.cfg.TargetLanguage = lang
	p.mu.Unlock()
}

func (p *Pipeline) TargetLanguage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.TargetLanguage
}

// Cache exposes the cache for the module control surface
func (p *Pipeline) Cache() *Cache {
	return p.cache
}

// Stats returns a snapshot of the pipeline counters
func (p *Pipeline) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}

// Translate resolves original to its translation: cache first, then one
// transport round trip. On timeout or transport failure the original comes
// back unchanged.
func (p *Pipeline) Translate(original string) string {
	if !p.enabled.Load() {
		return original
	}

	p.stats.addRequest()

	p.mu.Lock()
	cacheEnabled := p.cfg.CacheEnabled
	timeout := p.timeout
	p.mu.Unlock()

	if cacheEnabled {
		if translated, ok := p.cache.Get(original); ok {
			p.stats.addHit()
			return translated
		}
	}
	p.stats.addMiss()

	if p.transport == nil || !p.transport.IsConnected() {
		return original
	}

	start := time.Now()
	translated, err := p.transport.Translate(original, timeout)
	if err != nil {
		p.stats.addError()
		return original
	}

	p.stats.observeLatency(uint64(time.Since(start).Milliseconds()))
	if cacheEnabled {
		p.cache.Put(original, translated)
	}

	return translated
}

// TranslateAsync resolves original off the caller's thread. The callback
// is invoked exactly once.
func (p *Pipeline) TranslateAsync(original string, callback func(string)) {
	go func() {
		result := p.Translate(original)
		if callback != nil {
			callback(result)
		}
	}()
}
