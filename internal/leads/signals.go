package leads

import "strings"

// signal is one additive scoring rule. Rules are evaluated in order and
// their weights summed; the order also fixes the order of reasons in the
// result.
type signal struct {
	weight float64
	reason string
	match  func(Lead) bool
}

// ruleSignals is the deterministic part of the policy. The weights can sum
// past 1.0 together with the note signals; the final score is capped.
var ruleSignals = []signal{
	{
		weight: 0.3,
		reason: "High budget",
		match:  func(l Lead) bool { return l.Budget > 5_000_000 },
	},
	{
		weight: 0.3,
		reason: "Recent activity",
		match:  func(l Lead) bool { return l.LastActivityMinutesAgo < 1000 },
	},
	{
		weight: 0.2,
		reason: "Multiple interactions",
		match:  func(l Lead) bool { return l.PastInteractions >= 3 },
	},
	{
		weight: 0.2,
		reason: "Follow-up stage",
		match:  func(l Lead) bool { return strings.EqualFold(strings.TrimSpace(l.Status), "follow_up") },
	},
}

// Note signal thresholds and weights.
const (
	noteSignalThreshold = 0.7
	noteSignalWeight    = 0.1
)

// NoteSignals are model-interpreted signals from the lead's free-text notes.
// Zero values are the neutral defaults used when the model is unavailable,
// unparsable, or skipped.
type NoteSignals struct {
	Intent      float64
	Urgency     float64
	Constraints string
}
