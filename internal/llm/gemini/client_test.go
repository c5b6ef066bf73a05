package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "   ", "gemini-pro"); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestGenerateContentRejectsEmptyPrompt(t *testing.T) {
	g := &Generator{client: &genai.Client{}, model: "gemini-pro"}
	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestModelOnNilGenerator(t *testing.T) {
	var g *Generator
	if got := g.Model(); got != "" {
		t.Fatalf("expected empty model for nil generator, got %q", got)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "server error", err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}, want: true},
		{name: "rate limit", err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}, want: true},
		{name: "client error", err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}, want: false},
		{name: "transport error", err: errors.New("connection reset"), want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
