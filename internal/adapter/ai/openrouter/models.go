package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ModelFree asks the client to pick a zero-priced model from the catalog.
const ModelFree = "free"

const catalogRefresh = time.Hour

type catalogModel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Pricing struct {
		Prompt     string `json:"prompt"`
		Completion string `json:"completion"`
		Request    string `json:"request"`
		Image      string `json:"image"`
	} `json:"pricing"`
}

type catalogResponse struct {
	Data []catalogModel `json:"data"`
}

// modelCatalog caches the free model ids listed by GET /models.
type modelCatalog struct {
	hc      *http.Client
	baseURL string
	apiKey  string

	mu        sync.Mutex
	ids       []string
	next      int
	lastFetch time.Time
	now       func() time.Time
}

// excluded patterns are auto-routers or known paid families that sometimes
// report zero pricing.
var excludedModelPatterns = []string{"auto", "gpt-4", "gpt-5", "claude-3", "gemini-pro", "mistral-large", "command-"}

func isZeroPrice(p string) bool { return p == "" || p == "0" || p == "0.0" }

func isFreeModel(m catalogModel) bool {
	id := strings.ToLower(m.ID)
	for _, pat := range excludedModelPatterns {
		if strings.Contains(id, pat) {
			return false
		}
	}
	pr := m.Pricing
	return isZeroPrice(pr.Prompt) && isZeroPrice(pr.Completion) && isZeroPrice(pr.Request) && isZeroPrice(pr.Image)
}

// Pick returns the next free model, rotating through the cached list. A
// failed refresh keeps serving the stale list when there is one.
func (c *modelCatalog) Pick(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	if len(c.ids) == 0 || now().Sub(c.lastFetch) > catalogRefresh {
		ids, err := c.fetch(ctx)
		switch {
		case err != nil && len(c.ids) == 0:
			return "", fmt.Errorf("op=openrouter.models: %w", err)
		case err != nil:
			slog.Warn("free model refresh failed; using cached list", slog.Any("error", err), slog.Int("cached", len(c.ids)))
		case len(ids) == 0 && len(c.ids) == 0:
			return "", fmt.Errorf("op=openrouter.models: no free models listed")
		case len(ids) > 0:
			c.ids, c.next, c.lastFetch = ids, 0, now()
			slog.Info("free models refreshed", slog.Int("count", len(ids)))
		}
	}
	id := c.ids[c.next%len(c.ids)]
	c.next++
	return id, nil
}

func (c *modelCatalog) fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("models status %d: %s", resp.StatusCode, body)
	}
	var out catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	ids := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		if isFreeModel(m) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}
