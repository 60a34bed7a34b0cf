package domain

import (
	"math"
	"sort"
)

// TermEntry holds one term's weight and its token positions per field.
type TermEntry struct {
	Weight    float64          `json:"weight"`
	Positions map[string][]int `json:"positions"`
}

// SearchVector is the derived per-record term-weight structure used for
// ranking. It is always rebuilt from the record's current field values and
// the weighting configuration, never edited in place.
type SearchVector map[string]TermEntry

// Norm is the L2 norm of the term weights, used for length normalization.
func (v SearchVector) Norm() float64 {
	var sum float64
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

// Terms returns the vector's terms in lexicographic order.
func (v SearchVector) Terms() []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Equal reports whether two vectors are identical, weights and positions
// included. Rebuilding from unchanged fields must satisfy this.
func (v SearchVector) Equal(o SearchVector) bool {
	if len(v) != len(o) {
		return false
	}
	for term, e := range v {
		oe, ok := o[term]
		if !ok || e.Weight != oe.Weight || len(e.Positions) != len(oe.Positions) {
			return false
		}
		for field, pos := range e.Positions {
			opos, ok := oe.Positions[field]
			if !ok || len(pos) != len(opos) {
				return false
			}
			for i := range pos {
				if pos[i] != opos[i] {
					return false
				}
			}
		}
	}
	return true
}
