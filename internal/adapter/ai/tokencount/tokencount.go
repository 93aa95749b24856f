// Package tokencount estimates prompt sizes and caps user-supplied text
// before it is embedded into a prompt.
//
// Encodings are loaded from the embedded BPE tables so counting never needs
// network access. Gemini tokenization is approximated with cl100k_base.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const defaultEncoding = "cl100k_base"

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter provides thread-safe token counting.
type Counter struct {
	encodingCache map[string]*tiktoken.Tiktoken
	mu            sync.RWMutex
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is shared by the prompt builders.
var DefaultCounter = NewCounter()

func (c *Counter) encoding(model string) (*tiktoken.Tiktoken, error) {
	key := encodingName(model)

	c.mu.RLock()
	if enc, ok := c.encodingCache[key]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[key]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(key)
	if err != nil {
		return nil, err
	}
	c.encodingCache[key] = enc
	return enc, nil
}

// encodingName maps a model id to a tiktoken encoding.
func encodingName(model string) string {
	m := strings.ToLower(model)
	if i := strings.LastIndex(m, "/"); i >= 0 {
		m = m[i+1:]
	}
	switch {
	case strings.HasPrefix(m, "gpt-4o"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"):
		return "o200k_base"
	default:
		return defaultEncoding
	}
}

// CountTokens returns the number of tokens in text, or a chars/4 estimate
// when no encoding is available.
func (c *Counter) CountTokens(text, model string) int {
	if text == "" {
		return 0
	}
	enc, err := c.encoding(model)
	if err != nil {
		slog.Debug("token encoding unavailable; estimating", slog.String("model", model), slog.Any("error", err))
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Truncate cuts text to at most maxTokens tokens. It reports whether the
// text was shortened. maxTokens <= 0 disables the cap.
func (c *Counter) Truncate(text, model string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || text == "" {
		return text, false
	}
	enc, err := c.encoding(model)
	if err != nil {
		limit := maxTokens * 4
		r := []rune(text)
		if len(r) <= limit {
			return text, false
		}
		return string(r[:limit]), true
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false
	}
	return enc.Decode(tokens[:maxTokens]), true
}

// CountTokensDefault uses the default counter to count tokens.
func CountTokensDefault(text, model string) int {
	return DefaultCounter.CountTokens(text, model)
}

// TruncateDefault uses the default counter to truncate text.
func TruncateDefault(text, model string, maxTokens int) (string, bool) {
	return DefaultCounter.Truncate(text, model, maxTokens)
}
