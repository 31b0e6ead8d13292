package hook

import (
	"sync"
	"testing"
	"time"

	"gamestringer/translate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTransport answers from a map and counts round trips, standing in
// for the orchestrator in the detour decision tests.
type countingTransport struct {
	mu      sync.Mutex
	answers map[string]string
	calls   int
}

func (c *countingTransport) IsConnected() bool { return true }

func (c *countingTransport) Translate(text string, timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if answer, ok := c.answers[text]; ok {
		return answer, nil
	}
	return text, nil
}

func (c *countingTransport) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestSubstituteTranslates(t *testing.T) {
	transport := &countingTransport{answers: map[string]string{"Player": "Giocatore"}}
	pipeline := translate.NewPipeline(translate.DefaultConfig(), translate.NewCache(100), transport)

	got, changed := Substitute(pipeline, "Player")
	assert.True(t, changed)
	assert.Equal(t, "Giocatore", got)

	// The pair is now cached: a second identical interception answers
	// without another round trip.
	got, changed = Substitute(pipeline, "Player")
	assert.True(t, changed)
	assert.Equal(t, "Giocatore", got)
	assert.Equal(t, 1, transport.callCount())

	require.True(t, pipeline.Cache().Contains("Player"))
}

func TestSubstituteFiltersNonText(t *testing.T) {
	transport := &countingTransport{answers: map[string]string{}}
	pipeline := translate.NewPipeline(translate.DefaultConfig(), translate.NewCache(100), transport)

	for _, text := range []string{"", "OK", "path/to/file", "<tag>", "{0} pts"} {
		got, changed := Substitute(pipeline, text)
		assert.False(t, changed, "%q", text)
		assert.Equal(t, text, got)
	}
	assert.Equal(t, 0, transport.callCount())
}

func TestSubstituteUnchangedTranslation(t *testing.T) {
	// Server echoes the original: nothing to substitute
	transport := &countingTransport{answers: map[string]string{}}
	pipeline := translate.NewPipeline(translate.DefaultConfig(), translate.NewCache(100), transport)

	got, changed := Substitute(pipeline, "Untranslated")
	assert.False(t, changed)
	assert.Equal(t, "Untranslated", got)
}

func TestSubstituteNilPipeline(t *testing.T) {
	got, changed := Substitute(nil, "Player")
	assert.False(t, changed)
	assert.Equal(t, "Player", got)
}
