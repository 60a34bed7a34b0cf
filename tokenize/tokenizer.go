package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	snowballeng "github.com/kljensen/snowball/english"
)

// Token is a normalized term together with the location of its surface form.
// Start/End are byte offsets into the original text so callers can address
// the untouched surface text (the highlighter depends on this).
type Token struct {
	Term     string
	Position int
	Start    int
	End      int
}

// Profile configures normalization. A nil profile means DefaultProfile.
type Profile struct {
	// StopWords are lowercased words dropped from the output.
	StopWords map[string]struct{}
	// MinTermLength drops words shorter than this many runes.
	MinTermLength int
	// Stem applies the Snowball English stemmer to non-CJK words.
	Stem bool
	// Segmenter, when set, word-segments text containing Japanese runes.
	Segmenter *tokenizer.Tokenizer
}

// DefaultProfile returns the standard English profile: stop words removed,
// terms of at least two runes, stemming on.
func DefaultProfile() *Profile {
	return &Profile{
		StopWords:     englishStopWords,
		MinTermLength: 2,
		Stem:          true,
	}
}

// CoarseProfile keeps surface words intact (no stemming). The vocabulary
// engine ingests with this profile so suggestions return real words.
func CoarseProfile() *Profile {
	return &Profile{
		StopWords:     englishStopWords,
		MinTermLength: 2,
		Stem:          false,
	}
}

// InitSegmenter builds the kagome IPA segmenter for Japanese text.
func InitSegmenter() (*tokenizer.Tokenizer, error) {
	return tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
}

func containsJapanese(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// Tokenize breaks text into normalized terms with surface offsets.
// It is pure and deterministic; empty input yields no tokens, never an error.
// Positions count every scanned surface word, so a removed stop word leaves
// a gap in the position sequence rather than shifting later terms.
func Tokenize(text string, p *Profile) []Token {
	if text == "" {
		return nil
	}
	if p == nil {
		p = DefaultProfile()
	}

	var tokens []Token
	pos := 0
	emit := func(start, end int) {
		defer func() { pos++ }()
		term := strings.ToLower(text[start:end])
		if utf8.RuneCountInString(term) < p.MinTermLength {
			return
		}
		if _, stop := p.StopWords[term]; stop {
			return
		}
		if p.Stem && !containsJapanese(term) {
			term = snowballeng.Stem(term, false)
		}
		tokens = append(tokens, Token{Term: term, Position: pos, Start: start, End: end})
	}

	if p.Segmenter != nil && containsJapanese(text) {
		for _, seg := range segmentOffsets(text, p.Segmenter) {
			emit(seg.start, seg.end)
		}
		return tokens
	}

	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			emit(start, i)
			start = -1
		}
	}
	if start >= 0 {
		emit(start, len(text))
	}
	return tokens
}

// Terms returns just the normalized terms of text, in order.
func Terms(text string, p *Profile) []string {
	tokens := Tokenize(text, p)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// TermSet returns the distinct normalized terms of text.
func TermSet(text string, p *Profile) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(text, p) {
		set[t.Term] = struct{}{}
	}
	return set
}

type span struct {
	start, end int
}

// segmentOffsets maps kagome segments back to byte offsets by walking a
// cursor through the original text. Segments without letters or digits
// (punctuation, whitespace) are skipped.
func segmentOffsets(text string, seg *tokenizer.Tokenizer) []span {
	var spans []span
	cursor := 0
	for _, word := range seg.Wakati(text) {
		if word == "" {
			continue
		}
		i := strings.Index(text[cursor:], word)
		if i < 0 {
			continue
		}
		start := cursor + i
		end := start + len(word)
		cursor = end
		if hasLetterOrDigit(word) {
			spans = append(spans, span{start: start, end: end})
		}
	}
	return spans
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
