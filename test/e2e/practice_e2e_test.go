//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type challenge struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Code          string   `json:"code"`
	Language      string   `json:"language"`
	SkillLevel    string   `json:"skillLevel"`
	ChallengeType string   `json:"challengeType"`
	Hints         []string `json:"hints"`
}

type feedback struct {
	Score       int      `json:"score"`
	Correctness int      `json:"correctness"`
	Efficiency  int      `json:"efficiency"`
	CodeQuality int      `json:"codeQuality"`
	Suggestions []string `json:"suggestions"`
	IsCorrect   bool     `json:"isCorrect"`
}

func TestE2E_Practice_GenerateAndEvaluate(t *testing.T) {
	requireApp(t)
	uid := "e2e-user"

	var ch challenge
	st := postJSON(t, "/api/generate-challenge", map[string]string{
		"language": "JavaScript", "skillLevel": "beginner", "challengeType": "bug-fix",
	}, &ch)
	require.Equal(t, http.StatusOK, st)
	require.NotEmpty(t, ch.Code)
	assert.Equal(t, "JavaScript", ch.Language)

	var fb feedback
	st = postJSON(t, "/api/evaluate-solution", map[string]any{"challenge": ch, "userCode": ch.Code}, &fb, "X-User-Id", uid)
	require.Equal(t, http.StatusOK, st)
	assert.False(t, fb.IsCorrect)
	assert.LessOrEqual(t, fb.Score, 100)

	var progress map[string]any
	st = getJSON(t, "/api/progress", &progress, "X-User-Id", uid)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, progress, "level")
}

func TestE2E_Practice_Validation(t *testing.T) {
	requireApp(t)
	var body map[string]string
	st := postJSON(t, "/api/generate-challenge", map[string]string{"language": "Python"}, &body)
	assert.Equal(t, http.StatusBadRequest, st)
	assert.Equal(t, "Missing required fields", body["error"])

	st = postJSON(t, "/api/evaluate-solution", map[string]string{"userCode": "x"}, &body)
	assert.Equal(t, http.StatusBadRequest, st)
	assert.Equal(t, "Missing challenge or user code", body["error"])
}
