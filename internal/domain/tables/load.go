package tables

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML table document and overlays it on Default. Map entries
// are merged by key, bracket lists replace the defaults wholesale.
func Load(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLoadTables, path, err)
	}
	return Parse(raw)
}

// Parse overlays a YAML table document on Default and validates the result.
func Parse(doc []byte) (*Tables, error) {
	t := Default()
	if err := yaml.Unmarshal(doc, t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTables, err)
	}
	t.canonicalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// canonicalize normalizes keys, fills empty labels and terminates brackets.
func (t *Tables) canonicalize() {
	t.Niches.Entries = rekey(t.Niches.Entries, func(k string, n Niche) Niche {
		if n.Label == "" {
			n.Label = k
		}
		return n
	})

	t.Platforms.Entries = rekey(t.Platforms.Entries, func(k string, p Platform) Platform {
		if p.Label == "" {
			p.Label = k
		}
		if p.Kind == "" {
			p.Kind = KindVideo
		}
		return p
	})

	for _, l := range t.lookups() {
		l.table.Entries = rekey(l.table.Entries, func(k string, e Entry) Entry {
			if e.Label == "" {
				e.Label = k
			}
			return e
		})
		if l.table.Fallback == (Entry{}) {
			l.table.Fallback = Neutral()
		}
	}

	for _, b := range []Brackets{t.AudienceSize, t.Engagement} {
		if n := len(b); n > 0 && (math.IsInf(b[n-1].UpperBound, 1) || b[n-1].UpperBound <= 0) {
			b[n-1].UpperBound = Unbounded
		}
	}
}

// rekey normalizes map keys. Keys that were not already canonical come from
// an overlay document, so they are applied last and win collisions.
func rekey[V any](m map[string]V, fill func(string, V) V) map[string]V {
	out := make(map[string]V, len(m))
	var overlay []string
	for k, v := range m {
		nk := NormalizeKey(k)
		if nk != k {
			overlay = append(overlay, k)
			continue
		}
		out[nk] = fill(k, v)
	}
	for _, k := range overlay {
		out[NormalizeKey(k)] = fill(k, m[k])
	}
	return out
}

type namedLookup struct {
	name  string
	table *Lookup
}

func (t *Tables) lookups() []namedLookup {
	return []namedLookup{
		{"content_types", &t.ContentTypes},
		{"livestream_content_types", &t.LivestreamContent},
		{"company_sizes", &t.CompanySizes},
		{"audience_locations", &t.AudienceLocations},
		{"campaign_types", &t.CampaignTypes},
		{"partnership_durations", &t.PartnershipDuration},
		{"exclusivity", &t.Exclusivity},
		{"usage_rights", &t.UsageRights},
	}
}

// Validate checks the structural invariants the engine relies on.
func (t *Tables) Validate() error {
	if !validCPM(t.Niches.DefaultCPM) {
		return fmt.Errorf("%w: niches: default cpm must be a finite non-negative number", ErrInvalidTables)
	}
	for k, n := range t.Niches.Entries {
		if !validCPM(n.CPM) {
			return fmt.Errorf("%w: niche %q: cpm must be a finite non-negative number", ErrInvalidTables, k)
		}
	}
	if err := validateBrackets("audience_size", t.AudienceSize); err != nil {
		return err
	}
	if err := validateBrackets("engagement", t.Engagement); err != nil {
		return err
	}
	for _, l := range t.lookups() {
		for k, e := range l.table.Entries {
			if !validMultiplier(e.Multiplier) {
				return fmt.Errorf("%w: %s %q: multiplier must be positive", ErrInvalidTables, l.name, k)
			}
		}
		if !validMultiplier(l.table.Fallback.Multiplier) {
			return fmt.Errorf("%w: %s: fallback multiplier must be positive", ErrInvalidTables, l.name)
		}
	}
	for k, p := range t.Platforms.Entries {
		if !validMultiplier(p.Multiplier) {
			return fmt.Errorf("%w: platform %q: multiplier must be positive", ErrInvalidTables, k)
		}
	}
	v := t.Verdicts
	if !(v.TooLow > 0 && v.TooLow < v.Acceptable && v.Acceptable < v.Good) {
		return fmt.Errorf("%w: verdict thresholds must be positive and strictly ascending", ErrInvalidTables)
	}
	return nil
}

func validateBrackets(name string, b Brackets) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: %s: no brackets", ErrInvalidTables, name)
	}
	for i, br := range b {
		if !validMultiplier(br.Multiplier) {
			return fmt.Errorf("%w: %s[%d]: multiplier must be positive", ErrInvalidTables, name, i)
		}
		if i > 0 && br.UpperBound <= b[i-1].UpperBound {
			return fmt.Errorf("%w: %s[%d]: upper bounds must be strictly ascending", ErrInvalidTables, name, i)
		}
	}
	if b[len(b)-1].UpperBound != Unbounded {
		return fmt.Errorf("%w: %s: last bracket must be unbounded", ErrInvalidTables, name)
	}
	return nil
}

func validCPM(c float64) bool {
	return c >= 0 && !math.IsInf(c, 0)
}

func validMultiplier(m float64) bool {
	return m > 0 && !math.IsNaN(m) && !math.IsInf(m, 0)
}
