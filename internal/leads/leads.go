package leads

// Lead is an immutable scoring input. Fields mirror the CRM export shape;
// the scorer only reads them.
type Lead struct {
	LeadID                 string  `json:"lead_id"`
	Source                 string  `json:"source,omitempty"`
	Budget                 float64 `json:"budget"`
	City                   string  `json:"city,omitempty"`
	PropertyType           string  `json:"property_type,omitempty"`
	LastActivityMinutesAgo int     `json:"last_activity_minutes_ago"`
	PastInteractions       int     `json:"past_interactions"`
	Notes                  string  `json:"notes"`
	Status                 string  `json:"status"`
}

// Priority buckets derived from the score thresholds.
const (
	BucketHot  = "hot"
	BucketWarm = "warm"
	BucketCold = "cold"
)

// ScoreResult is recomputed per request and never persisted.
type ScoreResult struct {
	LeadID         string   `json:"lead_id"`
	PriorityScore  float64  `json:"priority_score"`
	PriorityBucket string   `json:"priority_bucket"`
	Reasons        []string `json:"reasons"`
	LLMUsed        bool     `json:"llm_used"`
}

// BucketFor maps a priority score to its bucket. The mapping is monotonic:
// >= 0.7 hot, >= 0.4 warm, below that cold.
func BucketFor(score float64) string {
	switch {
	case score >= 0.7:
		return BucketHot
	case score >= 0.4:
		return BucketWarm
	default:
		return BucketCold
	}
}
