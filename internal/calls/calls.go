// Package calls evaluates the quality of recorded sales calls. A
// transcript is analyzed by the LLM backend when one is available and
// by a keyword heuristic otherwise, so an evaluation is always
// produced.
package calls

// Analysis path recorded in result metadata.
const (
	AnalysisLLM      = "llm-based"
	AnalysisFallback = "keyword-based-fallback"
)

// Transcript is a single call submitted for evaluation.
type Transcript struct {
	CallID          string  `json:"call_id"`
	LeadID          string  `json:"lead_id,omitempty"`
	Transcript      string  `json:"transcript"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Labels holds per-dimension call scores, each in [0, 1].
type Labels struct {
	RapportBuilding float64 `json:"rapport_building"`
	NeedDiscovery   float64 `json:"need_discovery"`
	ClosingAttempt  float64 `json:"closing_attempt"`
	ComplianceRisk  float64 `json:"compliance_risk"`
}

// Metadata describes how an evaluation was produced.
type Metadata struct {
	ModelName       string  `json:"model_name"`
	LatencySeconds  float64 `json:"latency_seconds"`
	InputLength     int     `json:"input_length"`
	DurationSeconds float64 `json:"duration_seconds"`
	AnalysisType    string  `json:"analysis_type"`
	RetryAttempt    int     `json:"retry_attempt"`
}

// EvalResult is the evaluation of one call.
type EvalResult struct {
	CallID       string   `json:"call_id"`
	QualityScore float64  `json:"quality_score"`
	Labels       Labels   `json:"labels"`
	Summary      string   `json:"summary"`
	NextActions  []string `json:"next_actions"`
	Metadata     Metadata `json:"model_metadata"`
}
