// Package ai turns raw model text into structured values and hosts the
// provider-neutral pieces of the AI gateway.
package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

const fence = "```"

// ExtractJSON decodes the greedy first-'{' to last-'}' span of raw into v.
// When the text contains code fences every fence marker is removed first.
// Failures wrap domain.ErrParseFailure.
func ExtractJSON(raw string, v any) error {
	span, err := jsonSpan(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}
	return nil
}

// DecodeStrict strips one leading and one trailing fence and decodes the
// whole remaining text into v. No span extraction is attempted.
func DecodeStrict(raw string, v any) error {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, fence+"json"):
		s = strings.TrimPrefix(s, fence+"json")
	case strings.HasPrefix(s, fence):
		s = strings.TrimPrefix(s, fence)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), fence))
	if s == "" {
		return fmt.Errorf("%w: empty response", domain.ErrParseFailure)
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}
	return nil
}

func jsonSpan(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, fence) {
		s = strings.ReplaceAll(s, fence+"json", "")
		s = strings.ReplaceAll(s, fence, "")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found", domain.ErrParseFailure)
	}
	return s[start : end+1], nil
}

// Object is a decoded JSON object whose fields are inspected lazily, so a
// single malformed optional field does not reject the whole response.
type Object map[string]json.RawMessage

// ExtractObject is ExtractJSON into an Object.
func ExtractObject(raw string) (Object, error) {
	var o Object
	if err := ExtractJSON(raw, &o); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: null object", domain.ErrParseFailure)
	}
	return o, nil
}

// Number returns the field as a float when it is a JSON number.
func (o Object) Number(key string) (float64, bool) {
	raw, ok := o[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String returns the field when it is a JSON string.
func (o Object) String(key string) (string, bool) {
	raw, ok := o[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Strings returns the field when it is an array of strings.
func (o Object) Strings(key string) ([]string, bool) {
	raw, ok := o[key]
	if !ok {
		return nil, false
	}
	var ss []string
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil, false
	}
	return ss, true
}

// Bool returns the field when it is a JSON boolean.
func (o Object) Bool(key string) (bool, bool) {
	raw, ok := o[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// RequireNumbers fails with domain.ErrParseFailure unless every key holds a number.
func (o Object) RequireNumbers(keys ...string) error {
	for _, k := range keys {
		if _, ok := o.Number(k); !ok {
			return fmt.Errorf("%w: field %q missing or not numeric", domain.ErrParseFailure, k)
		}
	}
	return nil
}
