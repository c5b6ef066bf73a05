// Package evaluation measures scoring quality against labeled datasets. It
// drives the scoring and evaluation cores directly rather than going through
// HTTP, so reports reflect the algorithms alone.
package evaluation

import (
	"context"
	"math"
	"sort"

	"github.com/brickmetric/leadpulse/internal/calls"
	"github.com/brickmetric/leadpulse/internal/dataset"
	"github.com/brickmetric/leadpulse/internal/leads"
)

// DefaultCallThreshold is the quality score at which a call counts as a
// predicted close.
const DefaultCallThreshold = 0.7

var bucketLabels = []string{leads.BucketHot, leads.BucketWarm, leads.BucketCold}

// ClassMetrics are per-class precision, recall and F1.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Confusion counts actual-label rows against predicted-label columns.
type Confusion map[string]map[string]int

func newConfusion(labels []string) Confusion {
	c := make(Confusion, len(labels))
	for _, actual := range labels {
		c[actual] = make(map[string]int, len(labels))
		for _, predicted := range labels {
			c[actual][predicted] = 0
		}
	}
	return c
}

func (c Confusion) add(actual, predicted string) {
	if _, ok := c[actual]; !ok {
		return
	}
	if _, ok := c[actual][predicted]; !ok {
		return
	}
	c[actual][predicted]++
}

func (c Confusion) total() int {
	n := 0
	for _, row := range c {
		for _, count := range row {
			n += count
		}
	}
	return n
}

func (c Confusion) correct() int {
	n := 0
	for label, row := range c {
		n += row[label]
	}
	return n
}

// metrics computes precision, recall and F1 for one class.
func (c Confusion) metrics(label string) ClassMetrics {
	tp := c[label][label]
	fp, fn := 0, 0
	for other, row := range c {
		if other == label {
			continue
		}
		fp += row[label]
		fn += c[label][other]
	}

	var m ClassMetrics
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// LeadReport summarizes bucket predictions against ground truth.
type LeadReport struct {
	Evaluated      int                     `json:"evaluated"`
	MissingLeadIDs []string                `json:"missing_lead_ids,omitempty"`
	Confusion      Confusion               `json:"confusion_matrix"`
	PerClass       map[string]ClassMetrics `json:"per_class"`
	Accuracy       float64                 `json:"accuracy"`
	MacroPrecision float64                 `json:"macro_precision"`
	MacroRecall    float64                 `json:"macro_recall"`
	MacroF1        float64                 `json:"macro_f1"`
}

// EvaluateLeads scores every labeled lead and compares predicted buckets to
// the hot/warm/cold ground truth. Labeled ids absent from the dataset are
// reported, not scored; predictions outside the known buckets count as cold.
func EvaluateLeads(ctx context.Context, scorer *leads.Scorer, batch []leads.Lead, truth map[string]string) LeadReport {
	byID := make(map[string]leads.Lead, len(batch))
	for _, lead := range batch {
		byID[lead.LeadID] = lead
	}

	var labeled []leads.Lead
	var missing []string
	for id := range truth {
		if lead, ok := byID[id]; ok {
			labeled = append(labeled, lead)
		} else {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	sort.Slice(labeled, func(i, j int) bool { return labeled[i].LeadID < labeled[j].LeadID })

	results := scorer.ScoreBatch(ctx, labeled, len(labeled))

	confusion := newConfusion(bucketLabels)
	for _, res := range results {
		actual := truth[res.LeadID]
		predicted := res.PriorityBucket
		if _, known := confusion[predicted]; !known {
			predicted = leads.BucketCold
		}
		confusion.add(actual, predicted)
	}

	report := LeadReport{
		Evaluated:      confusion.total(),
		MissingLeadIDs: missing,
		Confusion:      confusion,
		PerClass:       make(map[string]ClassMetrics, len(bucketLabels)),
	}

	for _, label := range bucketLabels {
		m := confusion.metrics(label)
		report.PerClass[label] = m
		report.MacroPrecision += m.Precision
		report.MacroRecall += m.Recall
		report.MacroF1 += m.F1
	}
	n := float64(len(bucketLabels))
	report.MacroPrecision = round2(report.MacroPrecision / n)
	report.MacroRecall = round2(report.MacroRecall / n)
	report.MacroF1 = round2(report.MacroF1 / n)

	if total := confusion.total(); total > 0 {
		report.Accuracy = round2(float64(confusion.correct()) / float64(total))
	}
	return report
}

// Misprediction records one call where the threshold disagreed with truth.
type Misprediction struct {
	CallID       string  `json:"call_id"`
	Predicted    string  `json:"predicted"`
	Actual       string  `json:"actual"`
	QualityScore float64 `json:"quality_score"`
}

// CallReport summarizes closed/not_closed predictions against ground truth.
type CallReport struct {
	Evaluated      int             `json:"evaluated"`
	Threshold      float64         `json:"threshold"`
	Confusion      Confusion       `json:"confusion_matrix"`
	Precision      float64         `json:"precision"`
	Recall         float64         `json:"recall"`
	F1             float64         `json:"f1"`
	Accuracy       float64         `json:"accuracy"`
	Mispredictions []Misprediction `json:"mispredictions,omitempty"`
}

const (
	labelClosed    = "closed"
	labelNotClosed = "not_closed"
)

// EvaluateCalls evaluates every labeled call and predicts closed when the
// quality score reaches the threshold. Calls without a label are skipped.
func EvaluateCalls(ctx context.Context, evaluator *calls.Evaluator, records []dataset.CallRecord, truth map[string]string, threshold float64) CallReport {
	if threshold <= 0 {
		threshold = DefaultCallThreshold
	}

	confusion := newConfusion([]string{labelClosed, labelNotClosed})
	var mispredictions []Misprediction

	for _, rec := range records {
		label, ok := truth[rec.CallID]
		if !ok {
			continue
		}
		actual := labelNotClosed
		if label == labelClosed {
			actual = labelClosed
		}

		res := evaluator.Evaluate(ctx, rec.Transcript)

		predicted := labelNotClosed
		if res.QualityScore >= threshold {
			predicted = labelClosed
		}
		confusion.add(actual, predicted)

		if predicted != actual {
			mispredictions = append(mispredictions, Misprediction{
				CallID:       rec.CallID,
				Predicted:    predicted,
				Actual:       actual,
				QualityScore: res.QualityScore,
			})
		}
	}

	m := confusion.metrics(labelClosed)

	report := CallReport{
		Evaluated:      confusion.total(),
		Threshold:      threshold,
		Confusion:      confusion,
		Precision:      round2(m.Precision),
		Recall:         round2(m.Recall),
		F1:             round2(m.F1),
		Mispredictions: mispredictions,
	}
	if total := confusion.total(); total > 0 {
		report.Accuracy = round2(float64(confusion.correct()) / float64(total))
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
