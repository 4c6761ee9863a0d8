// Package normalize turns loosely typed request records into typed
// valuation inputs. It never fails: missing or malformed values degrade to
// safe defaults and the engine computes a best-effort estimate.
package normalize

import (
	"strings"

	"github.com/okian/ratecard/internal/domain/valuation"
)

const maxEngagement = 100

// Raw is a valuation request as it arrives on the wire.
type Raw struct {
	Platform            Field `json:"platform"`
	Niche               Field `json:"niche"`
	AudienceSize        Field `json:"audience_size"`
	AverageViews        Field `json:"average_views"`
	EngagementRate      Field `json:"engagement_rate"`
	ContentType         Field `json:"content_type"`
	CompanySize         Field `json:"company_size"`
	AudienceLocation    Field `json:"audience_location"`
	CampaignType        Field `json:"campaign_type"`
	PartnershipDuration Field `json:"partnership_duration"`
	Exclusivity         Field `json:"exclusivity"`
	UsageRights         Field `json:"usage_rights"`
	CustomCPM           Field `json:"custom_cpm"`
	OfferPrice          Field `json:"offer_price"`
}

// Normalize converts r into a valuation input.
func Normalize(r Raw) valuation.Input {
	in := valuation.Input{
		Platform:            enum(r.Platform),
		Niche:               enum(r.Niche),
		AudienceSize:        metric(r.AudienceSize),
		AverageViews:        metric(r.AverageViews),
		EngagementRate:      min(metric(r.EngagementRate), maxEngagement),
		ContentType:         enum(r.ContentType),
		CompanySize:         enum(r.CompanySize),
		AudienceLocation:    enum(r.AudienceLocation),
		CampaignType:        optional(r.CampaignType),
		PartnershipDuration: optional(r.PartnershipDuration),
		Exclusivity:         optional(r.Exclusivity),
		UsageRights:         optional(r.UsageRights),
	}
	if cpm, ok := r.CustomCPM.Float(); ok && cpm >= 0 {
		in.CustomCPM = &cpm
	}
	return in
}

// Offer returns the offer price. Absent, unparsable or negative offers
// report false and no evaluation takes place.
func Offer(r Raw) (float64, bool) {
	v, ok := r.OfferPrice.Float()
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

func enum(f Field) string {
	return strings.ToLower(f.String())
}

func optional(f Field) *string {
	if !f.Present() {
		return nil
	}
	s := enum(f)
	return &s
}

func metric(f Field) float64 {
	v, ok := f.Float()
	if !ok || v < 0 {
		return 0
	}
	return v
}
