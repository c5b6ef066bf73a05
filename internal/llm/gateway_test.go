package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// zeroBackoff disables sleeping so retry tests run instantly.
var zeroBackoff = GatewayConfig{InitialBackoff: -1}

type stubBackend struct {
	mu        sync.Mutex
	responses []stubResponse
	calls     int
	prompts   []string
}

type stubResponse struct {
	text string
	err  error
}

func (s *stubBackend) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	s.calls++
	if len(s.responses) == 0 {
		return "", errors.New("unexpected call")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp.text, resp.err
}

func (s *stubBackend) Model() string { return "stub-model" }

func (s *stubBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestInvokeSucceedsFirstAttempt(t *testing.T) {
	backend := &stubBackend{responses: []stubResponse{{text: `{"ok": true}`}}}
	cfg := zeroBackoff
	cfg.MaxAttempts = 3
	g := NewGateway(backend, cfg, zap.NewNop())

	out, err := g.Invoke(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Text != `{"ok": true}` {
		t.Fatalf("unexpected text: %q", out.Text)
	}

	if out.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", out.Attempts)
	}

	if backend.callCount() != 1 {
		t.Fatalf("expected 1 backend call, got %d", backend.callCount())
	}
}

func TestInvokeRetriesOnFailure(t *testing.T) {
	backend := &stubBackend{responses: []stubResponse{
		{err: errors.New("backend down")},
		{text: "   "},
		{text: "recovered"},
	}}
	cfg := zeroBackoff
	cfg.MaxAttempts = 3
	g := NewGateway(backend, cfg, zap.NewNop())

	out, err := g.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Text != "recovered" {
		t.Fatalf("unexpected text: %q", out.Text)
	}

	if out.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", out.Attempts)
	}
}

func TestInvokeExhaustsAttempts(t *testing.T) {
	backend := &stubBackend{responses: []stubResponse{
		{err: errors.New("down")},
		{err: errors.New("down")},
		{err: errors.New("down")},
	}}
	cfg := zeroBackoff
	cfg.MaxAttempts = 3
	g := NewGateway(backend, cfg, zap.NewNop())

	_, err := g.Invoke(context.Background(), "prompt")
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}

	if backend.callCount() != 3 {
		t.Fatalf("expected 3 backend calls, got %d", backend.callCount())
	}
}

func TestInvokeEmptyTextIsNeverSuccess(t *testing.T) {
	backend := &stubBackend{responses: []stubResponse{{text: ""}, {text: "  \n "}}}
	cfg := zeroBackoff
	cfg.MaxAttempts = 2
	g := NewGateway(backend, cfg, zap.NewNop())

	if _, err := g.Invoke(context.Background(), "prompt"); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted for empty responses, got %v", err)
	}
}

func TestInvokeRejectsEmptyPrompt(t *testing.T) {
	backend := &stubBackend{}
	g := NewGateway(backend, zeroBackoff, zap.NewNop())

	if _, err := g.Invoke(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}

	if backend.callCount() != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.callCount())
	}
}

func TestInvokeUnavailableBackendFailsWithoutRetry(t *testing.T) {
	cfg := zeroBackoff
	cfg.MaxAttempts = 5
	g := NewGateway(Unavailable{}, cfg, zap.NewNop())

	_, err := g.Invoke(context.Background(), "prompt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected error to carry ErrExhausted, got %v", err)
	}
}

func TestInvokePermanentErrorStopsRetries(t *testing.T) {
	backend := &stubBackend{responses: []stubResponse{
		{err: errors.New("bad request")},
		{text: "should not be reached"},
	}}
	cfg := zeroBackoff
	cfg.MaxAttempts = 3
	cfg.ShouldRetry = func(err error) bool { return !strings.Contains(err.Error(), "bad request") }
	g := NewGateway(backend, cfg, zap.NewNop())

	if _, err := g.Invoke(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}

	if backend.callCount() != 1 {
		t.Fatalf("expected a single backend call, got %d", backend.callCount())
	}
}

func TestInvokeStopsOnCancelledContext(t *testing.T) {
	backend := &stubBackend{responses: []stubResponse{
		{err: errors.New("down")},
		{text: "late success"},
	}}
	cfg := zeroBackoff
	cfg.MaxAttempts = 3
	g := NewGateway(backend, cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Invoke(ctx, "prompt"); err == nil {
		t.Fatal("expected error when context already cancelled")
	}

	if backend.callCount() > 1 {
		t.Fatalf("expected at most 1 backend call, got %d", backend.callCount())
	}
}

func TestLinearBackOffGrowsAndCaps(t *testing.T) {
	b := newLinearBackOff(500*time.Millisecond, 1200*time.Millisecond)

	expected := []time.Duration{
		500 * time.Millisecond,
		1000 * time.Millisecond,
		1200 * time.Millisecond,
		1200 * time.Millisecond,
	}
	for i, want := range expected {
		if got := b.NextBackOff(); got != want {
			t.Fatalf("step %d: expected %v, got %v", i, want, got)
		}
	}

	b.Reset()
	if got := b.NextBackOff(); got != 500*time.Millisecond {
		t.Fatalf("expected reset to restart the sequence, got %v", got)
	}
}
