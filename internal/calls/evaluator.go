package calls

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/brickmetric/leadpulse/internal/llm"
	"github.com/brickmetric/leadpulse/internal/logger"
)

const defaultMaxLogLength = 200

// Keyword heuristics scored per dimension. Each hit contributes 1/divisor,
// capped so a verbose transcript cannot overflow the scale.
var (
	rapportKeywords = []string{"thanks", "great", "perfect", "wonderful", "excellent", "amazing", "pleasure", "glad"}

	discoveryKeywords = []string{"what", "tell", "budget", "location", "interested", "property", "requirements", "looking"}

	closingKeywords = []string{"visit", "schedule", "tomorrow", "weekend", "arrange", "booking", "ready", "book"}

	riskKeywords = []string{"pressure", "discount", "limited", "urgent", "now"}
)

// llmEvaluation mirrors the JSON shape the model is asked to return.
// Pre-filled defaults survive decoding, so fields the model omits keep
// sensible values instead of zeroing out.
type llmEvaluation struct {
	RapportBuilding float64  `json:"rapport_building"`
	NeedDiscovery   float64  `json:"need_discovery"`
	ClosingAttempt  float64  `json:"closing_attempt"`
	ComplianceRisk  float64  `json:"compliance_risk"`
	QualityScore    float64  `json:"quality_score"`
	Summary         string   `json:"summary"`
	NextActions     []string `json:"next_actions"`
}

func defaultEvaluation() llmEvaluation {
	return llmEvaluation{
		RapportBuilding: 0.5,
		NeedDiscovery:   0.5,
		ClosingAttempt:  0.5,
		ComplianceRisk:  0.1,
		QualityScore:    0.5,
		Summary:         "Call analyzed",
		NextActions:     []string{"Follow up"},
	}
}

// Evaluator produces a quality evaluation for a call transcript. It prefers
// the model path and silently degrades to the keyword heuristic, so a
// well-formed result is returned for every input.
type Evaluator struct {
	gateway   *llm.Gateway
	maxLogLen int
	logger    *zap.Logger
}

func NewEvaluator(gateway *llm.Gateway, maxLogLength int, log *zap.Logger) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Evaluator{
		gateway:   gateway,
		maxLogLen: maxLogLength,
		logger:    log,
	}
}

// Evaluate analyzes one call. It never returns an error and never panics:
// any failure inside the model path, including a panic, yields the keyword
// fallback result instead.
func (e *Evaluator) Evaluate(ctx context.Context, call Transcript) (result EvalResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("call evaluation panicked, using keyword fallback",
				zap.String("call_id", call.CallID),
				zap.Any("panic", r),
			)
			result = e.fallback(call)
		}
	}()

	transcript := strings.TrimSpace(call.Transcript)
	if transcript == "" || e.gateway == nil {
		return e.fallback(call)
	}

	prompt := llm.BuildPrompt(llm.TemplateCallEval, map[string]string{"transcript": transcript})

	out, err := e.gateway.Invoke(ctx, prompt)
	if err != nil {
		e.logger.Warn("model evaluation unavailable, using keyword fallback",
			zap.String("call_id", call.CallID),
			zap.Error(err),
		)
		return e.fallback(call)
	}

	obj := llm.ExtractObject(out.Text)
	if obj == nil {
		e.logger.Warn("no JSON object in model evaluation, using keyword fallback",
			zap.String("call_id", call.CallID),
			zap.String("response_preview", logger.TruncateForLog(out.Text, e.maxLogLen)),
		)
		return e.fallback(call)
	}

	eval := defaultEvaluation()
	if err := llm.DecodeLoose(obj, &eval); err != nil {
		e.logger.Warn("undecodable model evaluation, using keyword fallback",
			zap.String("call_id", call.CallID),
			zap.Error(err),
		)
		return e.fallback(call)
	}

	labels := Labels{
		RapportBuilding: llm.Clamp01(eval.RapportBuilding),
		NeedDiscovery:   llm.Clamp01(eval.NeedDiscovery),
		ClosingAttempt:  llm.Clamp01(eval.ClosingAttempt),
		ComplianceRisk:  llm.Clamp01(eval.ComplianceRisk),
	}

	summary := strings.TrimSpace(eval.Summary)
	if summary == "" {
		summary = "Call analyzed"
	}

	quality := llm.Clamp01(eval.QualityScore)

	actions := eval.NextActions
	if len(actions) == 0 {
		actions = nextActions(quality, labels.ClosingAttempt)
	}

	e.logger.Debug("call evaluated by model",
		zap.String("call_id", call.CallID),
		zap.Float64("quality_score", quality),
		zap.Int("attempts", out.Attempts),
	)

	return EvalResult{
		CallID:       call.CallID,
		QualityScore: quality,
		Labels:       labels,
		Summary:      summary,
		NextActions:  actions,
		Metadata: Metadata{
			ModelName:       e.gateway.Model(),
			LatencySeconds:  out.Latency.Seconds(),
			InputLength:     utf8.RuneCountInString(transcript),
			DurationSeconds: call.DurationSeconds,
			AnalysisType:    AnalysisLLM,
			RetryAttempt:    out.Attempts,
		},
	}
}

// fallback scores the transcript with keyword heuristics only.
func (e *Evaluator) fallback(call Transcript) EvalResult {
	text := strings.ToLower(call.Transcript)

	labels := Labels{
		RapportBuilding: keywordScore(text, rapportKeywords, 3, 1.0),
		NeedDiscovery:   keywordScore(text, discoveryKeywords, 4, 1.0),
		ClosingAttempt:  keywordScore(text, closingKeywords, 3, 1.0),
		ComplianceRisk:  keywordScore(text, riskKeywords, 5, 0.3),
	}

	quality := round2(0.3*labels.RapportBuilding + 0.3*labels.NeedDiscovery + 0.4*labels.ClosingAttempt)

	modelName := "none"
	if e.gateway != nil {
		modelName = e.gateway.Model()
	}

	return EvalResult{
		CallID:       call.CallID,
		QualityScore: quality,
		Labels:       labels,
		Summary:      summaryBand(quality),
		NextActions:  nextActions(quality, labels.ClosingAttempt),
		Metadata: Metadata{
			ModelName:       modelName,
			InputLength:     utf8.RuneCountInString(strings.TrimSpace(call.Transcript)),
			DurationSeconds: call.DurationSeconds,
			AnalysisType:    AnalysisFallback,
		},
	}
}

func keywordScore(text string, keywords []string, divisor, limit float64) float64 {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return math.Min(float64(hits)/divisor, limit)
}

// summaryBand maps a quality score onto a fixed human-readable summary.
func summaryBand(quality float64) string {
	switch {
	case quality >= 0.8:
		return "Excellent call - Strong rapport, good discovery, clear closing attempt"
	case quality >= 0.6:
		return "Good call - Positive engagement, adequate discovery, closing attempted"
	case quality >= 0.4:
		return "Average call - Some engagement issues, needs better discovery"
	default:
		return "Poor call - Weak rapport, minimal discovery, no closing attempt"
	}
}

// nextActions recommends follow-ups from the quality and closing scores.
// The returned list is never empty.
func nextActions(quality, closing float64) []string {
	var actions []string
	if quality < 0.6 {
		actions = append(actions, "Review call with agent for coaching")
	}
	if closing < 0.5 {
		actions = append(actions, "Coach on closing techniques")
	}
	if quality >= 0.8 {
		actions = append(actions, "Share as best practice example")
	}
	if len(actions) == 0 {
		actions = append(actions, "Follow up with lead")
	}
	return actions
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
