package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"companyType":"bank","role":"","experience":"mid","language":"go"}`))
	var req createSessionRequest
	details, err := decodeAndValidate(r, &req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	fields := []string{}
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"companyType", "role"}, fields)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"companyType":"faang","role":"SWE","experience":"senior","language":"rust"}`))
	details, err = decodeAndValidate(r, &req)
	require.NoError(t, err)
	assert.Nil(t, details)
	assert.Equal(t, "rust", req.Language)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":`))
	var v map[string]any
	err := decodeJSON(r, &v)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, validateSessionID("6f1c2a1e-8f0d-4a43-9c1b-0d6e9e1f5a77"))
	for _, id := range []string{"", "abc", "6f1c2a1e8f0d4a439c1b0d6e9e1f5a77", "{6f1c2a1e-8f0d-4a43-9c1b-0d6e9e1f5a77}"} {
		assert.Error(t, validateSessionID(id), id)
	}
}
