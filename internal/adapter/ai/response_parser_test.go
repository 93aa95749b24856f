package ai

import (
	"testing"

	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title string `json:"title"`
		Code  string `json:"code"`
	}

	tests := []struct {
		name    string
		input   string
		want    payload
		wantErr bool
	}{
		{name: "plain object", input: `{"title":"A","code":"x"}`, want: payload{Title: "A", Code: "x"}},
		{name: "fenced json", input: "```json\n{\"title\":\"A\",\"code\":\"x\"}\n```", want: payload{Title: "A", Code: "x"}},
		{name: "bare fence", input: "```\n{\"title\":\"A\"}\n```", want: payload{Title: "A"}},
		{name: "prose around", input: "Here you go:\n{\"title\":\"A\"}\nGood luck!", want: payload{Title: "A"}},
		{name: "nested braces in strings", input: `{"title":"A","code":"function f() { return {}; }"}`, want: payload{Title: "A", Code: "function f() { return {}; }"}},
		{name: "two objects use greedy span", input: `{"title":"A"} and {"title":"B"}`, wantErr: true},
		{name: "no object", input: "I cannot help with that", wantErr: true},
		{name: "malformed", input: `{"title": "A",}`, wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got payload
			err := ExtractJSON(tt.input, &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrParseFailure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_FenceMarkersInsideCodeAreRemoved(t *testing.T) {
	// every marker goes once fences are present, including ones inside string values
	in := "```json\n{\"code\":\"```js\\nx\\n```\"}\n```"
	var got struct {
		Code string `json:"code"`
	}
	require.NoError(t, ExtractJSON(in, &got))
	assert.Equal(t, "js\nx\n", got.Code)
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	var v map[string]any
	require.NoError(t, DecodeStrict("```json\n{\"a\":1}\n```", &v))
	assert.Equal(t, float64(1), v["a"])

	v = nil
	require.NoError(t, DecodeStrict("```\n{\"a\":2}```", &v))
	assert.Equal(t, float64(2), v["a"])

	// prose around the object is not tolerated
	err := DecodeStrict("Sure! {\"a\":1}", &v)
	assert.ErrorIs(t, err, domain.ErrParseFailure)

	err = DecodeStrict("```json\n```", &v)
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestObjectAccessors(t *testing.T) {
	t.Parallel()

	o, err := ExtractObject(`{"correctness": 85.4, "efficiency": "78", "codeQuality": 82,
		"feedback": "ok", "suggestions": ["a", "b"], "isCorrect": false, "bad": [1]}`)
	require.NoError(t, err)

	n, ok := o.Number("correctness")
	assert.True(t, ok)
	assert.InDelta(t, 85.4, n, 1e-9)

	_, ok = o.Number("efficiency")
	assert.False(t, ok, "numeric strings are not numbers")

	s, ok := o.String("feedback")
	assert.True(t, ok)
	assert.Equal(t, "ok", s)

	ss, ok := o.Strings("suggestions")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, ss)

	_, ok = o.Strings("bad")
	assert.False(t, ok)

	b, ok := o.Bool("isCorrect")
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = o.Bool("missing")
	assert.False(t, ok)

	assert.NoError(t, o.RequireNumbers("correctness", "codeQuality"))
	assert.ErrorIs(t, o.RequireNumbers("correctness", "efficiency"), domain.ErrParseFailure)
}

func TestExtractObject_Null(t *testing.T) {
	_, err := ExtractObject("no json here")
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}
