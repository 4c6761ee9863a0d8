package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/okian/ratecard/internal/domain/offer"
)

// Result is the outcome of evaluating one offer.
type Result struct {
	Index            int           `json:"index"`
	RequestID        string        `json:"request_id"`
	Status           int           `json:"status,omitempty"`
	Verdict          offer.Verdict `json:"verdict,omitempty"`
	Offer            float64       `json:"offer,omitempty"`
	FairValue        int64         `json:"fair_value,omitempty"`
	FairMinimum      int64         `json:"fair_minimum,omitempty"`
	FairMaximum      int64         `json:"fair_maximum,omitempty"`
	Ratio            float64       `json:"ratio,omitempty"`
	SuggestedCounter int64         `json:"suggested_counter,omitempty"`
	Error            string        `json:"error,omitempty"`
}

// Summary aggregates a batch run.
type Summary struct {
	Total     int                   `json:"total"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	ByVerdict map[offer.Verdict]int `json:"by_verdict"`
	Duration  time.Duration         `json:"duration_ns"`
}

// Report is written to the output file after a run.
type Report struct {
	BaseURL     string    `json:"base_url"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Results     []Result  `json:"results"`
}

func summarize(results []Result, elapsed time.Duration) Summary {
	s := Summary{Total: len(results), ByVerdict: make(map[offer.Verdict]int, len(offer.Verdicts)), Duration: elapsed}
	for _, v := range offer.Verdicts {
		s.ByVerdict[v] = 0
	}
	for _, r := range results {
		if r.Error != "" {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.ByVerdict[r.Verdict]++
	}
	return s
}

// WriteReport saves the report as indented JSON.
func WriteReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	return nil
}

// defaultOutput names a report file after the run start time.
func defaultOutput(now time.Time) string {
	return fmt.Sprintf("ratecard_batch_%s.json", now.Format("20060102_150405"))
}
