package llm

import (
	"math"
	"testing"
)

func TestExtractObjectFromProse(t *testing.T) {
	raw := "Sure! Here is my analysis:\n{\"quality_score\": 0.8, \"summary\": \"Good call\"}\nLet me know if you need anything else."

	obj := ExtractObject(raw)
	if obj == nil {
		t.Fatal("expected object")
	}

	if obj["quality_score"] != 0.8 {
		t.Fatalf("unexpected quality_score: %v", obj["quality_score"])
	}

	if obj["summary"] != "Good call" {
		t.Fatalf("unexpected summary: %v", obj["summary"])
	}
}

func TestExtractObjectHandlesCodeFences(t *testing.T) {
	raw := "```json\n{\"intent_level\": 0.7}\n```"

	obj := ExtractObject(raw)
	if obj == nil {
		t.Fatal("expected object")
	}

	if obj["intent_level"] != 0.7 {
		t.Fatalf("unexpected intent_level: %v", obj["intent_level"])
	}
}

func TestExtractObjectDegradesToNil(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "no braces", raw: "the model refused to answer"},
		{name: "unbalanced", raw: "}{"},
		{name: "invalid json", raw: "{not json at all}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if obj := ExtractObject(tc.raw); obj != nil {
				t.Fatalf("expected nil, got %v", obj)
			}
		})
	}
}

func TestDecodeLooseKeepsDefaultsForMissingFields(t *testing.T) {
	type eval struct {
		QualityScore float64 `json:"quality_score"`
		Summary      string  `json:"summary"`
	}

	out := eval{QualityScore: 0.5, Summary: "Call analyzed"}
	obj := map[string]any{"quality_score": "0.9"}

	if err := DecodeLoose(obj, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.QualityScore != 0.9 {
		t.Fatalf("expected weakly-typed float decode, got %v", out.QualityScore)
	}

	if out.Summary != "Call analyzed" {
		t.Fatalf("expected missing field to keep default, got %q", out.Summary)
	}
}

func TestCoerceFloat(t *testing.T) {
	if got := CoerceFloat(0.7); got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
	if got := CoerceFloat("0.4"); got != 0.4 {
		t.Fatalf("expected 0.4, got %v", got)
	}
	if got := CoerceFloat("not a number"); !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
	if got := CoerceFloat(nil); !math.IsNaN(got) {
		t.Fatalf("expected NaN for nil, got %v", got)
	}
}

func TestCoerceBool(t *testing.T) {
	if !CoerceBool(true) || !CoerceBool("yes") || !CoerceBool(1.0) {
		t.Fatal("expected truthy values")
	}
	if CoerceBool("no") || CoerceBool(0.0) || CoerceBool(nil) {
		t.Fatal("expected falsy values")
	}
}

func TestCoerceString(t *testing.T) {
	if got := CoerceString("  hi  "); got != "hi" {
		t.Fatalf("expected trimmed string, got %q", got)
	}
	if got := CoerceString(nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
	if got := CoerceString([]any{"a"}); got != `["a"]` {
		t.Fatalf("expected JSON rendering, got %q", got)
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{in: -0.5, want: 0},
		{in: 0.5, want: 0.5},
		{in: 1.5, want: 1},
		{in: math.NaN(), want: 0},
	}

	for _, tc := range cases {
		if got := Clamp01(tc.in); got != tc.want {
			t.Fatalf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
