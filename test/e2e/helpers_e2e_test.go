//go:build e2e

// Package e2e_test exercises a running prepio-api over HTTP.
//
// Point E2E_BASE_URL at the server (default http://localhost:8080). Tests
// skip when the server is not reachable.
package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// getenv returns the value of the environment variable k or def if empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

var client = &http.Client{Timeout: 120 * time.Second}

func requireApp(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("short mode")
	}
	resp, err := (&http.Client{Timeout: 2 * time.Second}).Get(baseURL + "/healthz")
	if err != nil {
		t.Skip("App not available; skipping E2E")
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("App not healthy (%d); skipping E2E", resp.StatusCode)
	}
}

// postJSON sends body and decodes the JSON reply into out when non-nil.
func postJSON(t *testing.T, path string, body any, out any, hdr ...string) int {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	return doJSON(t, req, out)
}

func getJSON(t *testing.T, path string, out any, hdr ...string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	return doJSON(t, req, out)
}

func doJSON(t *testing.T, req *http.Request, out any) int {
	t.Helper()
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}
