package tokencount

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	t.Parallel()

	counter := NewCounter()

	tests := []struct {
		name     string
		text     string
		model    string
		minCount int
		maxCount int
	}{
		{name: "gemini default", text: "Hello, world!", model: "gemini-2.5-flash", minCount: 3, maxCount: 5},
		{name: "openrouter prefixed id", text: "The quick brown fox jumps over the lazy dog.", model: "google/gemini-2.5-flash", minCount: 8, maxCount: 12},
		{name: "gpt-4o family", text: "Hello, world!", model: "openai/gpt-4o-mini", minCount: 3, maxCount: 5},
		{name: "empty", text: "", model: "gemini", minCount: 0, maxCount: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			count := counter.CountTokens(tt.text, tt.model)
			assert.GreaterOrEqual(t, count, tt.minCount)
			assert.LessOrEqual(t, count, tt.maxCount)
		})
	}
}

func TestEncodingName(t *testing.T) {
	assert.Equal(t, "cl100k_base", encodingName("gemini-2.5-flash"))
	assert.Equal(t, "cl100k_base", encodingName("google/gemini-2.5-flash"))
	assert.Equal(t, "o200k_base", encodingName("openai/gpt-4o"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	c := NewCounter()

	short := "function add(a, b) { return a + b; }"
	got, cut := c.Truncate(short, "gemini", 2000)
	assert.False(t, cut)
	assert.Equal(t, short, got)

	long := strings.Repeat("answer ", 500)
	got, cut = c.Truncate(long, "gemini", 50)
	assert.True(t, cut)
	assert.LessOrEqual(t, c.CountTokens(got, "gemini"), 50)
	assert.True(t, strings.HasPrefix(long, got))

	got, cut = c.Truncate(long, "gemini", 0)
	assert.False(t, cut)
	assert.Equal(t, long, got)
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounter()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.CountTokens("concurrent counting", "gemini")
		}()
	}
	wg.Wait()
	assert.Len(t, c.encodingCache, 1)
}

func TestDefaultHelpers(t *testing.T) {
	assert.Positive(t, CountTokensDefault("hello", "gemini"))
	out, cut := TruncateDefault("hello", "gemini", 10)
	assert.False(t, cut)
	assert.Equal(t, "hello", out)
}
