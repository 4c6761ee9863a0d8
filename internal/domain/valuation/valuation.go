// Package valuation composes a sponsorship price estimate from a normalized
// input record and a set of reference tables.
//
// The engine is a pure function of its tables and input: no I/O, no clock,
// no randomness. An Engine may be shared between goroutines.
package valuation

import (
	"math"

	"github.com/okian/ratecard/internal/domain/tables"
)

// Pricing constants.
const (
	// MinimumPrice is the floor applied to the final price.
	MinimumPrice = 50.0
	// MaximumPrice caps the final price so the band stays exact in int64.
	MaximumPrice = 1e15
	// BandLow and BandHigh derive the range around the average.
	BandLow  = 0.8
	BandHigh = 1.2

	impressionsPerCPM = 1000.0
)

// Factor names, in the order they appear in a breakdown.
const (
	FactorAudienceSize        = "audience_size"
	FactorContentType         = "content_type"
	FactorEngagement          = "engagement"
	FactorCompanySize         = "company_size"
	FactorAudienceLocation    = "audience_location"
	FactorPlatform            = "platform"
	FactorCampaignType        = "campaign_type"
	FactorPartnershipDuration = "partnership_duration"
	FactorExclusivity         = "exclusivity"
	FactorUsageRights         = "usage_rights"
)

// NotSpecified labels an optional factor the caller left out.
const NotSpecified = "Not specified"

// CPMSource tells where the base CPM came from.
type CPMSource string

// CPM sources, in precedence order.
const (
	CPMCustom  CPMSource = "custom"
	CPMNiche   CPMSource = "niche"
	CPMDefault CPMSource = "default"
)

// Impression bases.
const (
	BasisAverageViews = "average_views"
	BasisAudienceSize = "audience_size"
)

// Input is a normalized valuation request. Optional factors are nil when the
// caller did not supply them.
type Input struct {
	Platform         string
	Niche            string
	AudienceSize     float64 // subscribers, followers or average concurrent viewers
	AverageViews     float64 // per-content views; preferred impression basis when > 0
	EngagementRate   float64 // percent, 0-100
	ContentType      string
	CompanySize      string
	AudienceLocation string

	CampaignType        *string
	PartnershipDuration *string
	Exclusivity         *string
	UsageRights         *string
	CustomCPM           *float64
}

// Factor is one resolved multiplier of the breakdown.
type Factor struct {
	Name       string  `json:"name"`
	Key        string  `json:"key,omitempty"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	// Matched is false when the key was unknown or the factor was omitted.
	Matched bool `json:"matched"`
}

// Defaulted reports whether a supplied key fell back to the neutral entry.
func (f Factor) Defaulted() bool {
	return !f.Matched && f.Key != ""
}

// Result is a valuation with its full audit trail.
type Result struct {
	Minimum int64 `json:"minimum"`
	Average int64 `json:"average"`
	Maximum int64 `json:"maximum"`

	CPM             float64   `json:"cpm"`
	CPMSource       CPMSource `json:"cpm_source"`
	NicheLabel      string    `json:"niche"`
	Impressions     float64   `json:"impressions"`
	ImpressionBasis string    `json:"impression_basis"`
	BasePrice       float64   `json:"base_price"`
	Multiplier      float64   `json:"multiplier"`
	RawPrice        float64   `json:"raw_price"`
	Floored         bool      `json:"floored"`
	Capped          bool      `json:"capped"`
	Breakdown       []Factor  `json:"breakdown"`
	TablesVersion   string    `json:"tables_version"`
}

// Factor returns the named breakdown entry.
func (r Result) Factor(name string) (Factor, bool) {
	for _, f := range r.Breakdown {
		if f.Name == name {
			return f, true
		}
	}
	return Factor{}, false
}

// Engine resolves inputs against one table set.
type Engine struct {
	tables *tables.Tables
}

// New builds an engine over t. A nil t selects the built-in tables.
func New(t *tables.Tables) *Engine {
	if t == nil {
		t = tables.Default()
	}
	return &Engine{tables: t}
}

// Tables returns the table set the engine resolves against.
func (e *Engine) Tables() *tables.Tables {
	return e.tables
}

// Valuate computes the price estimate. It is total: unknown keys resolve
// to neutral multipliers and the average stays within
// [MinimumPrice, MaximumPrice].
func (e *Engine) Valuate(in Input) Result {
	t := e.tables
	res := Result{TablesVersion: t.Version}

	niche, nicheOK := t.Niches.Resolve(in.Niche)
	res.NicheLabel = niche.Label
	switch {
	case in.CustomCPM != nil && finite(*in.CustomCPM) && *in.CustomCPM >= 0:
		res.CPM, res.CPMSource = *in.CustomCPM, CPMCustom
	case nicheOK:
		res.CPM, res.CPMSource = niche.CPM, CPMNiche
	default:
		res.CPM, res.CPMSource = t.Niches.DefaultCPM, CPMDefault
	}

	audience := nonNegative(in.AudienceSize)
	if views := nonNegative(in.AverageViews); views > 0 {
		res.Impressions, res.ImpressionBasis = views, BasisAverageViews
	} else {
		res.Impressions, res.ImpressionBasis = audience, BasisAudienceSize
	}
	res.BasePrice = res.Impressions / impressionsPerCPM * res.CPM

	platform, platformOK := t.Platforms.Resolve(in.Platform)
	size := t.AudienceSize.Resolve(audience)
	engagement := t.Engagement.Resolve(clamp(in.EngagementRate, 0, 100))

	res.Breakdown = []Factor{
		{Name: FactorAudienceSize, Label: size.Label, Multiplier: size.Multiplier, Matched: true},
		lookup(FactorContentType, in.ContentType, t.ContentTypesFor(platform.Kind)),
		{Name: FactorEngagement, Label: engagement.Label, Multiplier: engagement.Multiplier, Matched: true},
		lookup(FactorCompanySize, in.CompanySize, t.CompanySizes),
		lookup(FactorAudienceLocation, in.AudienceLocation, t.AudienceLocations),
		{Name: FactorPlatform, Key: tables.NormalizeKey(in.Platform), Label: platform.Label, Multiplier: platform.Multiplier, Matched: platformOK},
		optional(FactorCampaignType, in.CampaignType, t.CampaignTypes),
		optional(FactorPartnershipDuration, in.PartnershipDuration, t.PartnershipDuration),
		optional(FactorExclusivity, in.Exclusivity, t.Exclusivity),
		optional(FactorUsageRights, in.UsageRights, t.UsageRights),
	}

	res.Multiplier = 1.0
	for _, f := range res.Breakdown {
		res.Multiplier *= f.Multiplier
	}
	res.RawPrice = res.BasePrice * res.Multiplier

	final := res.RawPrice
	res.BasePrice = saturate(res.BasePrice)
	res.Multiplier = saturate(res.Multiplier)
	res.RawPrice = saturate(res.RawPrice)
	if math.IsNaN(final) || final < MinimumPrice {
		final = MinimumPrice
		res.Floored = true
	}
	if final > MaximumPrice {
		final = MaximumPrice
		res.Capped = true
	}
	avg := math.Round(final)
	res.Average = int64(avg)
	res.Minimum = int64(math.Round(avg * BandLow))
	res.Maximum = int64(math.Round(avg * BandHigh))
	return res
}

func lookup(name, key string, l tables.Lookup) Factor {
	e, ok := l.Resolve(key)
	return Factor{Name: name, Key: tables.NormalizeKey(key), Label: e.Label, Multiplier: e.Multiplier, Matched: ok}
}

func optional(name string, key *string, l tables.Lookup) Factor {
	if key == nil {
		return Factor{Name: name, Label: NotSpecified, Multiplier: 1.0}
	}
	return lookup(name, *key, l)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// saturate keeps +Inf out of results so they stay JSON encodable.
func saturate(f float64) float64 {
	if math.IsInf(f, 1) {
		return math.MaxFloat64
	}
	return f
}

func nonNegative(f float64) float64 {
	if !finite(f) || f < 0 {
		return 0
	}
	return f
}

func clamp(f, lo, hi float64) float64 {
	if math.IsNaN(f) {
		return lo
	}
	return math.Min(math.Max(f, lo), hi)
}
