// Package vector derives the per-record SearchVector from weighted text
// fields. Building is pure: the same record and weighting configuration
// always produce the same vector.
package vector

import (
	"unicode/utf8"

	"catalog-search/domain"
	"catalog-search/tokenize"
)

// Build tokenizes each weighted field independently and merges the results
// into one vector. A term's weight is the sum, across the fields containing
// it, of that field's tier weight multiplied by the term's frequency in the
// field; a term in two weighted fields gains both contributions.
//
// Field values that are not valid UTF-8 are skipped, so a malformed record
// still yields a valid (possibly empty) vector and never aborts the write.
func Build(record *domain.Record, weights domain.FieldWeights, profile *tokenize.Profile) domain.SearchVector {
	vec := domain.SearchVector{}
	if record == nil {
		return vec
	}

	for _, field := range weights.Fields() {
		text := record.Field(field)
		if text == "" || !utf8.ValidString(text) {
			continue
		}
		tierWeight := weights[field].Weight()
		for _, tok := range tokenize.Tokenize(text, profile) {
			entry, ok := vec[tok.Term]
			if !ok {
				entry = domain.TermEntry{Positions: map[string][]int{}}
			}
			entry.Weight += tierWeight
			entry.Positions[field] = append(entry.Positions[field], tok.Position)
			vec[tok.Term] = entry
		}
	}

	return vec
}
