package calls

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/brickmetric/leadpulse/internal/llm"
)

type stubBackend struct {
	response string
	err      error
}

func (s *stubBackend) GenerateContent(context.Context, string) (string, error) {
	return s.response, s.err
}

func (s *stubBackend) Model() string { return "stub-model" }

func newTestEvaluator(backend llm.TextGenerator) *Evaluator {
	gateway := llm.NewGateway(backend, llm.GatewayConfig{MaxAttempts: 1, InitialBackoff: -1}, zap.NewNop())
	return NewEvaluator(gateway, 0, zap.NewNop())
}

func offlineEvaluator() *Evaluator {
	return newTestEvaluator(llm.Unavailable{})
}

func TestEvaluateModelPath(t *testing.T) {
	backend := &stubBackend{
		response: `{"rapport_building": 0.8, "need_discovery": 0.9, "closing_attempt": 0.7,
			"compliance_risk": 0.1, "quality_score": 0.8,
			"summary": "Strong call with a confirmed site visit",
			"next_actions": ["Confirm visit", "Send brochure"]}`,
	}

	res := newTestEvaluator(backend).Evaluate(context.Background(), Transcript{
		CallID:          "C1",
		Transcript:      "Agent: Shall we schedule a visit? Customer: Saturday works.",
		DurationSeconds: 180,
	})

	if res.Metadata.AnalysisType != AnalysisLLM {
		t.Fatalf("expected llm analysis type, got %s", res.Metadata.AnalysisType)
	}
	if res.QualityScore != 0.8 {
		t.Fatalf("expected quality 0.8, got %v", res.QualityScore)
	}
	if res.Labels.NeedDiscovery != 0.9 {
		t.Fatalf("expected discovery 0.9, got %v", res.Labels.NeedDiscovery)
	}
	if res.Summary != "Strong call with a confirmed site visit" {
		t.Fatalf("unexpected summary: %q", res.Summary)
	}
	if len(res.NextActions) != 2 || res.NextActions[0] != "Confirm visit" {
		t.Fatalf("unexpected next actions: %v", res.NextActions)
	}
	if res.Metadata.ModelName != "stub-model" {
		t.Fatalf("unexpected model name: %q", res.Metadata.ModelName)
	}
	if res.Metadata.DurationSeconds != 180 {
		t.Fatalf("expected duration to pass through, got %v", res.Metadata.DurationSeconds)
	}
	if res.Metadata.RetryAttempt != 1 {
		t.Fatalf("expected attempt count 1, got %d", res.Metadata.RetryAttempt)
	}
}

func TestEvaluatePartialResponseKeepsDefaults(t *testing.T) {
	backend := &stubBackend{response: `{"quality_score": 0.9}`}

	res := newTestEvaluator(backend).Evaluate(context.Background(), Transcript{
		CallID:     "C2",
		Transcript: "A long enough transcript for analysis.",
	})

	if res.QualityScore != 0.9 {
		t.Fatalf("expected quality 0.9, got %v", res.QualityScore)
	}
	if res.Labels.RapportBuilding != 0.5 || res.Labels.ComplianceRisk != 0.1 {
		t.Fatalf("expected defaulted labels, got %+v", res.Labels)
	}
	if res.Summary != "Call analyzed" {
		t.Fatalf("expected default summary, got %q", res.Summary)
	}
	if len(res.NextActions) == 0 {
		t.Fatal("expected next actions to never be empty")
	}
}

func TestEvaluateClampsModelScores(t *testing.T) {
	backend := &stubBackend{
		response: `{"quality_score": 1.7, "rapport_building": -2, "summary": "x"}`,
	}

	res := newTestEvaluator(backend).Evaluate(context.Background(), Transcript{
		CallID:     "C3",
		Transcript: "Clamp check transcript.",
	})

	if res.QualityScore != 1.0 {
		t.Fatalf("expected clamped quality 1.0, got %v", res.QualityScore)
	}
	if res.Labels.RapportBuilding != 0.0 {
		t.Fatalf("expected clamped rapport 0.0, got %v", res.Labels.RapportBuilding)
	}
}

func TestEvaluateFallbackOnBackendFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("backend down")}

	res := newTestEvaluator(backend).Evaluate(context.Background(), Transcript{
		CallID:     "C4",
		Transcript: "Thanks, that would be great. What is your budget? Shall we schedule a visit this weekend?",
	})

	if res.Metadata.AnalysisType != AnalysisFallback {
		t.Fatalf("expected fallback analysis type, got %s", res.Metadata.AnalysisType)
	}
	if res.Labels.ClosingAttempt < 0.5 {
		t.Fatalf("expected closing language to score >= 0.5, got %v", res.Labels.ClosingAttempt)
	}
	if res.QualityScore < 0 || res.QualityScore > 1 {
		t.Fatalf("quality out of range: %v", res.QualityScore)
	}
}

func TestEvaluateFallbackOnUnparsableResponse(t *testing.T) {
	backend := &stubBackend{response: "I cannot evaluate this call."}

	res := newTestEvaluator(backend).Evaluate(context.Background(), Transcript{
		CallID:     "C5",
		Transcript: "Customer: please stop calling me.",
	})

	if res.Metadata.AnalysisType != AnalysisFallback {
		t.Fatalf("expected fallback analysis type, got %s", res.Metadata.AnalysisType)
	}
	if res.QualityScore < 0 || res.QualityScore > 1 {
		t.Fatalf("quality out of range: %v", res.QualityScore)
	}
	if res.Summary == "" {
		t.Fatal("expected non-empty summary")
	}
	if len(res.NextActions) == 0 {
		t.Fatal("expected non-empty next actions")
	}
}

func TestEvaluateEmptyTranscript(t *testing.T) {
	res := offlineEvaluator().Evaluate(context.Background(), Transcript{CallID: "C6"})

	if res.Metadata.AnalysisType != AnalysisFallback {
		t.Fatalf("expected fallback analysis type, got %s", res.Metadata.AnalysisType)
	}
	if res.QualityScore != 0 {
		t.Fatalf("expected zero quality for empty transcript, got %v", res.QualityScore)
	}
	if res.CallID != "C6" {
		t.Fatalf("expected call id to pass through, got %q", res.CallID)
	}
}

func TestFallbackClosingLanguage(t *testing.T) {
	res := offlineEvaluator().Evaluate(context.Background(), Transcript{
		CallID:     "C7",
		Transcript: "Thanks, that sounds great. What is your budget for the property? Let us schedule a site visit this weekend, booking confirmed, we are ready.",
	})

	if res.QualityScore < 0.5 {
		t.Fatalf("expected quality >= 0.5 for closing-heavy transcript, got %v", res.QualityScore)
	}
	if res.Labels.ClosingAttempt != 1.0 {
		t.Fatalf("expected closing capped at 1.0, got %v", res.Labels.ClosingAttempt)
	}
}

func TestFallbackComplianceRiskCap(t *testing.T) {
	res := offlineEvaluator().Evaluate(context.Background(), Transcript{
		CallID:     "C8",
		Transcript: "This is a limited offer, book now, urgent discount, no pressure though.",
	})

	if res.Labels.ComplianceRisk != 0.3 {
		t.Fatalf("expected risk capped at 0.3, got %v", res.Labels.ComplianceRisk)
	}
}

func TestSummaryBands(t *testing.T) {
	cases := []struct {
		quality float64
		want    string
	}{
		{0.9, "Excellent call - Strong rapport, good discovery, clear closing attempt"},
		{0.7, "Good call - Positive engagement, adequate discovery, closing attempted"},
		{0.5, "Average call - Some engagement issues, needs better discovery"},
		{0.2, "Poor call - Weak rapport, minimal discovery, no closing attempt"},
	}

	for _, tc := range cases {
		if got := summaryBand(tc.quality); got != tc.want {
			t.Errorf("summaryBand(%v) = %q, want %q", tc.quality, got, tc.want)
		}
	}
}

func TestNextActionsNeverEmpty(t *testing.T) {
	cases := []struct {
		name    string
		quality float64
		closing float64
		want    []string
	}{
		{"low quality", 0.3, 0.6, []string{"Review call with agent for coaching"}},
		{"low closing", 0.7, 0.2, []string{"Coach on closing techniques"}},
		{"excellent", 0.9, 0.8, []string{"Share as best practice example"}},
		{"default", 0.7, 0.6, []string{"Follow up with lead"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextActions(tc.quality, tc.closing)
			if len(got) == 0 {
				t.Fatal("expected at least one action")
			}
			if got[0] != tc.want[0] {
				t.Fatalf("expected %q first, got %q", tc.want[0], got[0])
			}
		})
	}
}
