// Package offer classifies a sponsor's offer against a valuation and
// produces negotiation guidance.
package offer

import (
	"fmt"
	"math"

	"github.com/okian/ratecard/internal/domain/tables"
	"github.com/okian/ratecard/internal/domain/valuation"
)

// Verdict is an ordered offer tier.
type Verdict string

// Verdicts, lowest first.
const (
	WayTooLow  Verdict = "way_too_low"
	TooLow     Verdict = "too_low"
	Acceptable Verdict = "acceptable"
	Good       Verdict = "good"
)

// Verdicts lists every tier in ascending order.
var Verdicts = []Verdict{WayTooLow, TooLow, Acceptable, Good}

// Rank returns the position of v in the tier order, or -1 if unknown.
func (v Verdict) Rank() int {
	for i, x := range Verdicts {
		if x == v {
			return i
		}
	}
	return -1
}

// Evaluation is the classification of one offer. It is never mutated; a
// new offer needs a new evaluation.
type Evaluation struct {
	Verdict           Verdict  `json:"verdict"`
	Offer             float64  `json:"offer"`
	Ratio             float64  `json:"ratio"`
	PercentageOfValue int64    `json:"percentage_of_value"`
	Gap               int64    `json:"gap"`
	FairValue         int64    `json:"fair_value"`
	FairMinimum       int64    `json:"fair_minimum"`
	FairMaximum       int64    `json:"fair_maximum"`
	SuggestedCounter  int64    `json:"suggested_counter"`
	Headline          string   `json:"headline"`
	Advice            []string `json:"advice"`
}

// Classifier buckets offer ratios by verdict thresholds.
type Classifier struct {
	th tables.VerdictThresholds
}

// New returns a classifier using th.
func New(th tables.VerdictThresholds) *Classifier {
	return &Classifier{th: th}
}

// Classify maps a ratio to a verdict. Each threshold belongs to the higher
// tier.
func (c *Classifier) Classify(ratio float64) Verdict {
	switch {
	case math.IsNaN(ratio) || ratio < c.th.TooLow:
		return WayTooLow
	case ratio < c.th.Acceptable:
		return TooLow
	case ratio < c.th.Good:
		return Acceptable
	default:
		return Good
	}
}

// Evaluate compares offer with the valuation average. companySize only
// shapes the advice.
func (c *Classifier) Evaluate(res valuation.Result, offer float64, companySize string) Evaluation {
	avg := float64(res.Average)
	var ratio float64
	if avg > 0 {
		ratio = offer / avg
	}
	v := c.Classify(ratio)
	headline, advice := Advice(v, companySize)
	return Evaluation{
		Verdict:           v,
		Offer:             offer,
		Ratio:             ratio,
		PercentageOfValue: int64(math.Round(ratio * 100)),
		Gap:               int64(math.Round(math.Max(0, avg-offer))),
		FairValue:         res.Average,
		FairMinimum:       res.Minimum,
		FairMaximum:       res.Maximum,
		SuggestedCounter:  int64(math.Round(math.Max(offer, avg))),
		Headline:          headline,
		Advice:            advice,
	}
}

// Advice returns the headline and guidance for a verdict. It is a pure
// function of its arguments.
func Advice(v Verdict, companySize string) (string, []string) {
	var headline string
	var lines []string
	switch v {
	case WayTooLow:
		headline = "This offer is far below your market rate."
		lines = []string{
			"Counter with your fair value and show the numbers behind it.",
			"Be ready to walk away; accepting this resets what the sponsor expects next time.",
		}
	case TooLow:
		headline = "This offer is below your market rate."
		lines = []string{
			"Counter near your fair value and leave room to meet in the middle.",
			"If the budget is fixed, trade deliverables down instead of dropping your price.",
		}
	case Acceptable:
		headline = "This offer is within a reasonable range."
		lines = []string{
			"A small counter is reasonable, or accept and negotiate extras.",
			"Ask for added value such as a longer partnership or fewer usage rights.",
		}
	default:
		headline = "This is a strong offer."
		lines = []string{
			"The offer meets or beats your fair value.",
			"Lock in the terms in writing before you start production.",
		}
	}
	if tone := sizeTone(v, tables.NormalizeKey(companySize)); tone != "" {
		lines = append(lines, tone)
	}
	return headline, lines
}

func sizeTone(v Verdict, size string) string {
	low := v == WayTooLow || v == TooLow
	switch size {
	case "enterprise", "large":
		if low {
			return fmt.Sprintf("A %s sponsor has the budget for your full rate. Push back hard.", size)
		}
		return "Large sponsors expect negotiation. Clarify usage rights and payment terms."
	case "startup", "small":
		if v == Good {
			return "For a smaller sponsor this is a generous offer. They value you."
		}
		if low {
			return "Smaller sponsors often have tight budgets. Offer a lighter package at your rate."
		}
	}
	return ""
}
