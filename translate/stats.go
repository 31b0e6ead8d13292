package translate

import "sync"

// Stats tracks pipeline counters. Counters are monotonic; the latency is a
// rolling average halved toward each new observation.
type Stats struct {
	mu               sync.Mutex
	totalRequests    uint64
	cacheHits        uint64
	cacheMisses      uint64
	errors           uint64
	averageLatencyMs uint64
}

// StatsSnapshot is a point-in-time copy of the counters
type StatsSnapshot struct {
	TotalRequests    uint64
	CacheHits        uint64
	CacheMisses      uint64
	Errors           uint64
	AverageLatencyMs uint64
}

func (s *Stats) addRequest() {
	s.mu.Lock()
	s.totalRequests++
	s.mu.Unlock()
}

func (s *Stats) addHit() {
	s.mu.Lock()
	s.cacheHits++
	s.mu.Unlock()
}

func (s *Stats) addMiss() {
	s.mu.Lock()
	s.cacheMisses++
	s.mu.Unlock()
}

func (s *Stats) addError() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

func (s *Stats) observeLatency(ms uint64) {
	s.mu.Lock()
	s.averageLatencyMs = (s.averageLatencyMs + ms) / 2
	s.mu.Unlock()
}

// Snapshot returns a copy of all counters
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		TotalRequests:    s.totalRequests,
		CacheHits:        s.cacheHits,
		CacheMisses:      s.cacheMisses,
		Errors:           s.errors,
		AverageLatencyMs: s.averageLatencyMs,
	}
}
