package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brickmetric/leadpulse/internal/leads"
)

// LoadLeadsCSV reads a leads CSV with a header row. Column order follows the
// header, so reordered files load fine; unknown columns are ignored.
func LoadLeadsCSV(path string) ([]leads.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["lead_id"]; !ok {
		return nil, fmt.Errorf("%s: missing lead_id column", path)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]leads.Lead, 0, len(rows)-1)
	for n, row := range rows[1:] {
		budget, err := parseFloatField(field(row, "budget"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: budget: %w", path, n+2, err)
		}
		lastActivity, err := parseIntField(field(row, "last_activity_minutes_ago"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: last_activity_minutes_ago: %w", path, n+2, err)
		}
		interactions, err := parseIntField(field(row, "past_interactions"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: past_interactions: %w", path, n+2, err)
		}

		out = append(out, leads.Lead{
			LeadID:                 field(row, "lead_id"),
			Source:                 field(row, "source"),
			Budget:                 budget,
			City:                   field(row, "city"),
			PropertyType:           field(row, "property_type"),
			LastActivityMinutesAgo: lastActivity,
			PastInteractions:       interactions,
			Notes:                  field(row, "notes"),
			Status:                 field(row, "status"),
		})
	}
	return out, nil
}

// LoadCallsJSON reads the calls fixture written by WriteCallsJSON.
func LoadCallsJSON(path string) ([]CallRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var out []CallRecord
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}

// LoadLabelsCSV reads a two-column id,label CSV with a header row and
// returns an id-to-label map. Labels are lowercased.
func LoadLabelsCSV(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	labels := make(map[string]string, len(rows)-1)
	for _, row := range rows[1:] {
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		labels[id] = strings.ToLower(strings.TrimSpace(row[1]))
	}
	return labels, nil
}

func parseFloatField(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseIntField(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
