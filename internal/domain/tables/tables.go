// Package tables holds the reference data the valuation engine resolves
// multipliers from: niches, brackets, enum-keyed multiplier tables and
// verdict thresholds.
//
// Tables are plain values. They are built once (Default or Load) and then
// passed to the engine and classifier; nothing in this package keeps
// package-level mutable state.
package tables

import (
	"math"
	"strings"
)

// Unbounded is the upper bound of the terminal bracket.
const Unbounded = math.MaxFloat64

// FallbackLabel labels the neutral entry used for unknown keys.
const FallbackLabel = "Unknown"

// Entry is a resolved multiplier with its human-readable label.
type Entry struct {
	Label      string  `json:"label" yaml:"label"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// Neutral is the multiplier-1.0 fallback entry.
func Neutral() Entry {
	return Entry{Label: FallbackLabel, Multiplier: 1.0}
}

// Lookup maps enum keys to entries. Unknown keys resolve to Fallback.
type Lookup struct {
	Entries  map[string]Entry `json:"entries" yaml:"entries"`
	Fallback Entry            `json:"fallback" yaml:"fallback"`
}

// Resolve returns the entry for key and whether key was recognized.
func (l Lookup) Resolve(key string) (Entry, bool) {
	k := NormalizeKey(key)
	if k != "" {
		if e, ok := l.Entries[k]; ok {
			return e, true
		}
	}
	return l.Fallback, false
}

// NormalizeKey folds case and separators so "Large", " large " and
// "LARGE" address the same entry, as do "paid-ads 30d" and "paid_ads_30d".
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Bracket is one step of a numeric bracket table.
type Bracket struct {
	UpperBound float64 `json:"upper_bound" yaml:"upper_bound"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Label      string  `json:"label" yaml:"label"`
}

// Brackets is sorted ascending by UpperBound and terminated by Unbounded.
type Brackets []Bracket

// Resolve returns the first bracket whose upper bound exceeds value.
// Negative and NaN values resolve as 0; values at or beyond the terminal
// bound resolve to the terminal bracket, so the lookup is total.
func (b Brackets) Resolve(value float64) Bracket {
	if len(b) == 0 {
		return Bracket{UpperBound: Unbounded, Multiplier: 1.0, Label: FallbackLabel}
	}
	if math.IsNaN(value) || value < 0 {
		value = 0
	}
	for _, br := range b {
		if value < br.UpperBound {
			return br
		}
	}
	return b[len(b)-1]
}

// Niche carries the base CPM (USD per 1000 impressions) of a content niche.
type Niche struct {
	Label string  `json:"label" yaml:"label"`
	CPM   float64 `json:"cpm" yaml:"cpm"`
}

// Niches is the niche table plus the CPM used when a niche is unknown.
type Niches struct {
	Entries    map[string]Niche `json:"entries" yaml:"entries"`
	DefaultCPM float64          `json:"default_cpm" yaml:"default_cpm"`
}

// Resolve returns the niche for key and whether it was recognized.
func (n Niches) Resolve(key string) (Niche, bool) {
	k := NormalizeKey(key)
	if k != "" {
		if e, ok := n.Entries[k]; ok {
			return e, true
		}
	}
	return Niche{Label: FallbackLabel, CPM: n.DefaultCPM}, false
}

// Kind groups platforms by how sponsorships are delivered on them.
type Kind string

// Platform kinds.
const (
	KindVideo      Kind = "video"
	KindShortForm  Kind = "short_form"
	KindLivestream Kind = "livestream"
	KindAudio      Kind = "audio"
)

// Platform is a platform multiplier plus the platform kind.
type Platform struct {
	Label      string  `json:"label" yaml:"label"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Kind       Kind    `json:"kind" yaml:"kind"`
}

// Platforms maps platform keys to platforms. Unknown keys resolve to Fallback.
type Platforms struct {
	Entries  map[string]Platform `json:"entries" yaml:"entries"`
	Fallback Platform            `json:"fallback" yaml:"fallback"`
}

// Resolve returns the platform for key and whether it was recognized.
func (p Platforms) Resolve(key string) (Platform, bool) {
	k := NormalizeKey(key)
	if k != "" {
		if e, ok := p.Entries[k]; ok {
			return e, true
		}
	}
	return p.Fallback, false
}

// VerdictThresholds are the lower ratio bounds of the three upper verdict
// tiers. Anything below TooLow is way too low.
type VerdictThresholds struct {
	TooLow     float64 `json:"too_low" yaml:"too_low"`
	Acceptable float64 `json:"acceptable" yaml:"acceptable"`
	Good       float64 `json:"good" yaml:"good"`
}

// Tables is the complete reference data set.
type Tables struct {
	Version string `json:"version" yaml:"version"`

	Niches              Niches            `json:"niches" yaml:"niches"`
	AudienceSize        Brackets          `json:"audience_size" yaml:"audience_size"`
	Engagement          Brackets          `json:"engagement" yaml:"engagement"`
	ContentTypes        Lookup            `json:"content_types" yaml:"content_types"`
	LivestreamContent   Lookup            `json:"livestream_content_types" yaml:"livestream_content_types"`
	CompanySizes        Lookup            `json:"company_sizes" yaml:"company_sizes"`
	AudienceLocations   Lookup            `json:"audience_locations" yaml:"audience_locations"`
	Platforms           Platforms         `json:"platforms" yaml:"platforms"`
	CampaignTypes       Lookup            `json:"campaign_types" yaml:"campaign_types"`
	PartnershipDuration Lookup            `json:"partnership_durations" yaml:"partnership_durations"`
	Exclusivity         Lookup            `json:"exclusivity" yaml:"exclusivity"`
	UsageRights         Lookup            `json:"usage_rights" yaml:"usage_rights"`
	Verdicts            VerdictThresholds `json:"verdicts" yaml:"verdicts"`
}

// ContentTypesFor returns the content-type table for a platform kind.
// Livestream platforms price different deliverables than video platforms.
func (t *Tables) ContentTypesFor(kind Kind) Lookup {
	if kind == KindLivestream {
		return t.LivestreamContent
	}
	return t.ContentTypes
}
