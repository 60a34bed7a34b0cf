// Package highlight marks query-term matches inside a field's original
// text. Non-matching bytes are preserved exactly; when nothing matches the
// input is returned unchanged, which callers use to tell "no highlight"
// apart from an error.
package highlight

import (
	"sort"
	"strings"

	"catalog-search/tokenize"
)

// Highlight wraps the surface form of every token in fieldText whose
// normalized term appears among queryTerms. Query terms are normalized with
// the same profile, so "Chewy" highlights "chewy." and stemmed variants
// line up. Multiple query terms matching the same token produce a single
// marker pair.
func Highlight(fieldText string, queryTerms []string, startMarker, endMarker string, profile *tokenize.Profile) string {
	if fieldText == "" || len(queryTerms) == 0 {
		return fieldText
	}

	wanted := map[string]struct{}{}
	for _, raw := range queryTerms {
		for _, t := range tokenize.Tokenize(raw, profile) {
			wanted[t.Term] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return fieldText
	}

	var spans [][2]int
	for _, tok := range tokenize.Tokenize(fieldText, profile) {
		if _, ok := wanted[tok.Term]; ok {
			spans = append(spans, [2]int{tok.Start, tok.End})
		}
	}
	if len(spans) == 0 {
		return fieldText
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	var b strings.Builder
	b.Grow(len(fieldText) + len(spans)*(len(startMarker)+len(endMarker)))
	cursor := 0
	for _, span := range spans {
		if span[0] < cursor {
			continue // overlapping span already covered
		}
		b.WriteString(fieldText[cursor:span[0]])
		b.WriteString(startMarker)
		b.WriteString(fieldText[span[0]:span[1]])
		b.WriteString(endMarker)
		cursor = span[1]
	}
	b.WriteString(fieldText[cursor:])
	return b.String()
}

// Fields highlights each named field of a document, returning only the
// fields where at least one term matched.
func Fields(fields map[string]string, queryTerms []string, startMarker, endMarker string, profile *tokenize.Profile) map[string]string {
	out := map[string]string{}
	for name, text := range fields {
		marked := Highlight(text, queryTerms, startMarker, endMarker, profile)
		if marked != text {
			out[name] = marked
		}
	}
	return out
}
