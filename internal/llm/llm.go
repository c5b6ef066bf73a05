package llm

import (
	"context"
	"errors"
	"time"
)

// TextGenerator produces free-form text for a prompt. Implementations must be
// safe for concurrent use; the gateway may invoke them from parallel requests.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Outcome is the result of a successful gateway invocation. An invocation is
// never partially successful: either Text is non-empty or the gateway
// returned an error.
type Outcome struct {
	Text     string
	Latency  time.Duration
	Attempts int
}

var (
	// ErrUnavailable signals that no generative backend is configured.
	// Callers are expected to fall back to heuristic scoring.
	ErrUnavailable = errors.New("llm backend is not available")

	// ErrExhausted signals that every attempt failed. It wraps the last
	// underlying cause.
	ErrExhausted = errors.New("llm attempts exhausted")
)

// Unavailable is a TextGenerator for deployments without a generative
// backend. Every call fails immediately with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) GenerateContent(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Model() string { return "none" }
