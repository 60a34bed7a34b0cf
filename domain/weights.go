package domain

import "sort"

// Tier is a field weight tier, highest boost first.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Weight returns the boost multiplier for the tier. Unknown tiers fall back
// to the lowest boost.
func (t Tier) Weight() float64 {
	switch t {
	case TierA:
		return 1.0
	case TierB:
		return 0.4
	case TierC:
		return 0.2
	default:
		return 0.1
	}
}

// FieldWeights maps a text field name to its weight tier.
type FieldWeights map[string]Tier

// DefaultFieldWeights is the wine-catalog weighting: grape variety ranks
// above winery, which ranks above the label title and free-form description.
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		"variety":     TierA,
		"winery":      TierB,
		"title":       TierC,
		"description": TierD,
	}
}

// Fields returns the weighted field names in lexicographic order.
func (w FieldWeights) Fields() []string {
	fields := make([]string, 0, len(w))
	for f := range w {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// TierGroup is one weight tier with the fields assigned to it.
type TierGroup struct {
	Tier   Tier
	Weight float64
	Fields []string
}

// TierGroups returns the non-empty tiers from highest to lowest boost, each
// group's fields sorted. Used to re-specify boosts on every mirror query.
func (w FieldWeights) TierGroups() []TierGroup {
	order := []Tier{TierA, TierB, TierC, TierD}
	groups := make([]TierGroup, 0, len(order))
	for _, tier := range order {
		var fields []string
		for f, t := range w {
			if t == tier {
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 {
			continue
		}
		sort.Strings(fields)
		groups = append(groups, TierGroup{Tier: tier, Weight: tier.Weight(), Fields: fields})
	}
	return groups
}
