package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ExtractObject pulls a JSON object out of free-form model output. Models
// typically wrap JSON in prose or markdown fences, so this takes everything
// between the first '{' and the last '}' and attempts to decode it. It
// returns nil on any failure and never panics: absence of a parseable object
// is an expected condition, not an error.
func ExtractObject(raw string) map[string]any {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}

	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	for _, fence := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		cleaned = strings.ReplaceAll(cleaned, fence, "")
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &obj); err != nil {
		return nil
	}

	return obj
}

// DecodeLoose decodes an untyped object into out using weakly-typed
// conversion, so "0.8" satisfies a float field and 1 satisfies a bool.
// Fields absent from the object are left untouched, which lets callers
// pre-fill out with defaults before decoding.
func DecodeLoose(obj map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}

	if err := dec.Decode(obj); err != nil {
		return fmt.Errorf("decoding llm object: %w", err)
	}

	return nil
}

// CoerceFloat converts a duck-typed value to float64, returning NaN when the
// value has no numeric interpretation. Callers must default NaN explicitly.
func CoerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// CoerceBool converts a duck-typed value to bool, treating "true"/"yes"
// strings and non-zero numbers as true.
func CoerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

// CoerceString converts a duck-typed value to a trimmed string, rendering
// non-string values as JSON.
func CoerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// Clamp01 bounds a score to the unit interval, mapping NaN to 0.
func Clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
