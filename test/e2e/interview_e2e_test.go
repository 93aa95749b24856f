//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionView struct {
	ID       string         `json:"id"`
	Stage    string         `json:"stage"`
	Progress float64        `json:"progress"`
	Coding   map[string]any `json:"coding"`
	Report   map[string]any `json:"report"`
}

func TestE2E_InterviewSession_FullFlow(t *testing.T) {
	requireApp(t)

	var s sessionView
	st := postJSON(t, "/api/interview-sessions", map[string]string{
		"companyType": "startup", "role": "Backend Engineer", "experience": "mid", "language": "go",
	}, &s, "X-User-Id", "e2e-user")
	require.Equal(t, http.StatusCreated, st)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, "setup", s.Stage)

	base := "/api/interview-sessions/" + s.ID
	require.Equal(t, http.StatusOK, postJSON(t, base+"/advance", nil, &s))
	assert.Equal(t, "coding", s.Stage)
	require.NotEmpty(t, s.Coding)

	require.Equal(t, http.StatusOK, postJSON(t, base+"/answers", map[string]string{"codeSolution": "func solve() int { return 42 }"}, &s))
	for _, want := range []string{"technical", "behavioral", "report"} {
		require.Equal(t, http.StatusOK, postJSON(t, base+"/advance", nil, &s))
		assert.Equal(t, want, s.Stage)
	}
	require.NotEmpty(t, s.Report)
	assert.Equal(t, float64(100), s.Progress)

	assert.Equal(t, http.StatusConflict, postJSON(t, base+"/advance", nil, nil))
}

func TestE2E_InterviewChallenge_MissingParams(t *testing.T) {
	requireApp(t)
	var body map[string]any
	st := postJSON(t, "/api/generate-interview-challenge", map[string]string{"companyType": "faang"}, &body)
	assert.Equal(t, http.StatusBadRequest, st)
	assert.Equal(t, "Missing required parameters", body["error"])
}
