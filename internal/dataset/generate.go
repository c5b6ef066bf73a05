// Package dataset generates and loads sample lead and call data for local
// development and offline evaluation.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/brickmetric/leadpulse/internal/calls"
	"github.com/brickmetric/leadpulse/internal/leads"
)

// Default dataset sizes.
const (
	DefaultLeadCount = 150
	DefaultCallCount = 25
)

var (
	cities        = []string{"Delhi", "Noida", "Gurgaon", "Mumbai", "Pune", "Bangalore"}
	propertyTypes = []string{"1BHK", "2BHK", "3BHK", "Plot", "Commercial"}
	sources       = []string{"portal", "website", "walk-in", "referral"}
	statuses      = []string{"new", "contacted", "follow_up"}

	notesSamples = []string{
		"Client wants 2bhk near metro, loan pre-approved",
		"Budget flexible, looking next 2 months",
		"Just checking prices, will call later",
		"Investor looking for rental yield",
		"Needs possession before year end",
		"Talked once, no response after that",
		"Urgent requirement, family shifting soon",
		"NRI buyer, prefers email communication",
	}

	callTemplates = []string{
		"Agent: Hi, this is Riya from ABC Realty.\n" +
			"Client: Yes, I'm interested.\n" +
			"Agent: You asked about a %[1]s in %[2]s. Can we schedule a visit?\n" +
			"Client: Saturday works.\n" +
			"Agent: Great, I'll block a slot and share details.\n",
		"Agent: Hello, following up on your inquiry.\n" +
			"Client: I'm just browsing, not sure yet.\n" +
			"Agent: No worries. Would you like options within a budget?\n" +
			"Client: Maybe around %[3]s.\n" +
			"Agent: I'll send curated options.\n",
		"Agent: Good evening, calling about the %[1]s listing.\n" +
			"Client: I'm in a hurry, can you be quick?\n" +
			"Agent: Of course. It's near %[2]s metro and available immediately.\n" +
			"Client: Send me the brochure.\n",
		"Agent: Hi, this is ABC Realty.\n" +
			"Client: Please stop calling.\n" +
			"Agent: Sorry for the disturbance. I'll update your preferences.\n",
		"Agent: Hello! You had asked about investment properties.\n" +
			"Client: Yes, I need rental yield details.\n" +
			"Agent: This %[1]s has strong ROI and steady occupancy.\n" +
			"Client: Sounds good, send the numbers.\n",
		"Agent: Hi, just checking if you're still looking.\n" +
			"Client: Not now, call next month.\n" +
			"Agent: Noted. I'll follow up then.\n",
		"Agent: Hello, can I help with your shortlisting?\n" +
			"Client: I want a ready-to-move %[1]s in %[2]s.\n" +
			"Agent: I have 3 options. Are you free for a call today?\n" +
			"Client: Yes, after 6 PM.\n",
		"Agent: This is a quick follow-up on your inquiry.\n" +
			"Client: I'm comparing with another builder.\n" +
			"Agent: We can match amenities and offer better payment terms.\n" +
			"Client: If the price fits %[3]s, I'm interested.\n",
		"Agent: Hello, I can arrange a site visit for the %[1]s.\n" +
			"Client: I'm out of town. Any virtual tour?\n" +
			"Agent: Yes, I can share a video walkthrough.\n" +
			"Client: Please send it today.\n",
		"Agent: Hi, we saw your request online.\n" +
			"Client: Yeah, I need something cheap.\n" +
			"Agent: Understood. I'll share listings within your range.\n" +
			"Client: Okay.\n",
	}
)

// CallRecord is a generated call with its ground-truth outcome. The outcome
// is only used by offline evaluation, never by the evaluator itself.
type CallRecord struct {
	calls.Transcript
	WasDealClosed bool `json:"was_deal_closed"`
}

// Generator produces reproducible sample data from a fixed seed.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

// between returns a random integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// Leads generates n sample leads with sequential ids.
func (g *Generator) Leads(n int) []leads.Lead {
	out := make([]leads.Lead, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, leads.Lead{
			LeadID:                 fmt.Sprintf("L%03d", i),
			Source:                 g.pick(sources),
			Budget:                 float64(g.between(3_000_000, 15_000_000)),
			City:                   g.pick(cities),
			PropertyType:           g.pick(propertyTypes),
			LastActivityMinutesAgo: g.between(5, 5000),
			PastInteractions:       g.between(0, 8),
			Notes:                  g.pick(notesSamples),
			Status:                 g.pick(statuses),
		})
	}
	return out
}

// Calls generates n sample calls referencing random lead ids from a pool of
// leadCount leads.
func (g *Generator) Calls(n, leadCount int) []CallRecord {
	out := make([]CallRecord, 0, n)
	for i := 1; i <= n; i++ {
		ptype := g.pick(propertyTypes)
		city := g.pick(cities)
		budget := fmt.Sprintf("₹%dL", g.between(30, 150))
		transcript := fmt.Sprintf(g.pick(callTemplates), ptype, city, budget)

		out = append(out, CallRecord{
			Transcript: calls.Transcript{
				CallID:          fmt.Sprintf("C%03d", i),
				LeadID:          fmt.Sprintf("L%03d", g.between(1, leadCount)),
				Transcript:      transcript,
				DurationSeconds: float64(g.between(60, 900)),
			},
			WasDealClosed: g.rng.Intn(2) == 0,
		})
	}
	return out
}

var leadCSVHeader = []string{
	"lead_id", "source", "budget", "city", "property_type",
	"last_activity_minutes_ago", "past_interactions", "notes", "status",
}

// WriteLeadsCSV writes leads to path, creating parent directories.
func WriteLeadsCSV(path string, batch []leads.Lead) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(leadCSVHeader); err != nil {
		return err
	}
	for _, lead := range batch {
		record := []string{
			lead.LeadID,
			lead.Source,
			strconv.FormatFloat(lead.Budget, 'f', -1, 64),
			lead.City,
			lead.PropertyType,
			strconv.Itoa(lead.LastActivityMinutesAgo),
			strconv.Itoa(lead.PastInteractions),
			lead.Notes,
			lead.Status,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteCallsJSON writes calls to path as an indented JSON array.
func WriteCallsJSON(path string, batch []CallRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
