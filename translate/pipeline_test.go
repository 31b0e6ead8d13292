package translate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport scripts the orchestrator side of the pipeline
type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	answers   map[string]string
	err       error
	delay     time.Duration
	calls     int
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) Translate(text string, timeout time.Duration) (string, error) {
	f.mu.Lock()
	f.calls++
	delay := f.delay
	err := f.err
	answer, ok := f.answers[text]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return text, nil
	}
	return answer, nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestPipeline(transport Transport) *Pipeline {
	return NewPipeline(DefaultConfig(), NewCache(100), transport)
}

func TestTranslateCacheMissThenHit(t *testing.T) {
	transport := &fakeTransport{connected: true, answers: map[string]string{"Player": "Giocatore"}}
	p := newTestPipeline(transport)

	assert.Equal(t, "Giocatore", p.Translate("Player"))
	assert.Equal(t, 1, transport.callCount())

	// Second identical call is served from the cache without IPC
	assert.Equal(t, "Giocatore", p.Translate("Player"))
	assert.Equal(t, 1, transport.callCount())

	s := p.Stats()
	assert.Equal(t, uint64(2), s.TotalRequests)
	assert.Equal(t, uint64(1), s.CacheHits)
	assert.Equal(t, uint64(1), s.CacheMisses)
	assert.Equal(t, uint64(0), s.Errors)
}

func TestTranslateDisabledReturnsOriginal(t *testing.T) {
	transport := &fakeTransport{connected: true, answers: map[string]string{"Player": "Giocatore"}}
	p := newTestPipeline(transport)
	p.SetEnabled(false)

	assert.Equal(t, "Player", p.Translate("Player"))
	assert.Equal(t, 0, transport.callCount())
	assert.Equal(t, uint64(0), p.Stats().TotalRequests)
}

func TestTranslateTransportErrorFallsBack(t *testing.T) {
	transport := &fakeTransport{connected: true, err: errors.New("broken pipe")}
	p := newTestPipeline(transport)

	assert.Equal(t, "Player", p.Translate("Player"))
	assert.Equal(t, uint64(1), p.Stats().Errors)
	assert.Equal(t, 0, p.Cache().Size())
}

func TestTranslateDisconnectedSkipsTransport(t *testing.T) {
	transport := &fakeTransport{connected: false, answers: map[string]string{"Player": "Giocatore"}}
	p := newTestPipeline(transport)

	assert.Equal(t, "Player", p.Translate("Player"))
	assert.Equal(t, 0, transport.callCount())
	assert.Equal(t, uint64(0), p.Stats().Errors)
}

func TestTranslateNilTransport(t *testing.T) {
	p := newTestPipeline(nil)
	assert.Equal(t, "Player", p.Translate("Player"))
}

func TestTranslateUpdatesLatency(t *testing.T) {
	transport := &fakeTransport{
		connected: true,
		answers:   map[string]string{"one": "uno", "two": "due"},
		delay:     5 * time.Millisecond,
	}
	p := newTestPipeline(transport)

	p.Translate("one")
	p.Translate("two")

	// Rolling average halves toward each observation; two ~5ms round
	// trips keep it above zero.
	assert.NotZero(t, p.Stats().AverageLatencyMs)
}

func TestTranslateAsyncCallsBackOnce(t *testing.T) {
	transport := &fakeTransport{connected: true, answers: map[string]string{"Player": "Giocatore"}}
	p := newTestPipeline(transport)

	results := make(chan string, 2)
	p.TranslateAsync("Player", func(s string) {
		results <- s
	})

	select {
	case got := <-results:
		assert.Equal(t, "Giocatore", got)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never invoked")
	}

	select {
	case <-results:
		t.Fatal("callback invoked twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestToggle(t *testing.T) {
	p := newTestPipeline(nil)
	require.True(t, p.Enabled())

	assert.False(t, p.Toggle())
	assert.False(t, p.Enabled())
	assert.True(t, p.Toggle())
}

func TestCacheDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheEnabled = false
	transport := &fakeTransport{connected: true, answers: map[string]string{"Player": "Giocatore"}}
	p := NewPipeline(cfg, NewCache(100), transport)

	p.Translate("Player")
	p.Translate("Player")

	assert.Equal(t, 2, transport.callCount())
	assert.Equal(t, 0, p.Cache().Size())
}
