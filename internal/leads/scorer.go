package leads

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxResults bounds a ranked batch when the caller does not
	// specify a limit.
	DefaultMaxResults = 10

	defaultMaxParallel = 4
)

// Scorer computes priority scores for leads. It is stateless across
// requests; every score is a pure function of the lead and, when notes are
// substantial enough, the model's interpretation of them.
type Scorer struct {
	notes       *NotesInterpreter
	maxParallel int
	logger      *zap.Logger
}

func NewScorer(notes *NotesInterpreter, maxParallel int, log *zap.Logger) *Scorer {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Scorer{notes: notes, maxParallel: maxParallel, logger: log}
}

// ScoreOne scores a single lead. It never fails: an unexpected panic inside
// the scoring path is converted into a safe cold result, since the service
// guarantees availability over accuracy.
func (s *Scorer) ScoreOne(ctx context.Context, lead Lead) (result ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("lead scoring panicked, returning safe default",
				zap.String("lead_id", lead.LeadID),
				zap.Any("panic", r),
			)
			result = ScoreResult{
				LeadID:         lead.LeadID,
				PriorityScore:  0,
				PriorityBucket: BucketCold,
				Reasons:        []string{"Scoring degraded, manual review recommended"},
			}
		}
	}()

	score := 0.0
	reasons := make([]string, 0, len(ruleSignals)+3)

	for _, sig := range ruleSignals {
		if sig.match(lead) {
			score += sig.weight
			reasons = append(reasons, sig.reason)
		}
	}

	var signals NoteSignals
	var llmUsed bool
	if s.notes != nil {
		signals, llmUsed = s.notes.Interpret(ctx, lead.LeadID, lead.Notes)
	}

	if signals.Intent >= noteSignalThreshold {
		score += noteSignalWeight
		reasons = append(reasons, "High intent (notes)")
	}
	if signals.Urgency >= noteSignalThreshold {
		score += noteSignalWeight
		reasons = append(reasons, "High urgency (notes)")
	}
	if signals.Constraints != "" {
		reasons = append(reasons, fmt.Sprintf("Constraints: %s", signals.Constraints))
	}

	// Rule and note weights can sum past 1.0; cap before bucketing.
	if score > 1.0 {
		score = 1.0
	}
	score = math.Round(score*100) / 100

	return ScoreResult{
		LeadID:         lead.LeadID,
		PriorityScore:  score,
		PriorityBucket: BucketFor(score),
		Reasons:        reasons,
		LLMUsed:        llmUsed,
	}
}

// ScoreBatch scores every lead independently, ranks the results by
// descending score and truncates to maxResults (DefaultMaxResults when
// non-positive). Leads are scored in parallel; ties keep input order.
func (s *Scorer) ScoreBatch(ctx context.Context, batch []Lead, maxResults int) []ScoreResult {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if len(batch) == 0 {
		return []ScoreResult{}
	}

	results := make([]ScoreResult, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, lead := range batch {
		g.Go(func() error {
			results[i] = s.ScoreOne(gctx, lead)
			return nil
		})
	}
	// Workers never return errors; scoring degrades instead of failing.
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PriorityScore > results[j].PriorityScore
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	s.logger.Debug("lead batch scored",
		zap.Int("leads", len(batch)),
		zap.Int("returned", len(results)),
	)

	return results
}
