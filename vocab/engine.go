// Package vocab maintains the deduplicated term vocabulary and answers
// fuzzy "closest known term" queries with trigram-set Jaccard similarity.
// The vocabulary is append-only: entries are never pruned when source terms
// disappear, which keeps suggestion quality stable across record churn.
package vocab

import (
	"context"
	"sort"
	"strings"
	"sync"

	"catalog-search/domain"
	"catalog-search/port"
	"catalog-search/tokenize"
)

// DefaultMinSimilarity is the suggestion threshold when the caller passes
// none.
const DefaultMinSimilarity = 0.3

// Engine holds the vocabulary in memory with a shingle inverted index
// (trigram -> terms), so a suggestion only compares terms sharing at least
// one trigram with the query instead of scanning the whole vocabulary.
// All methods are safe for concurrent use.
type Engine struct {
	mu            sync.RWMutex
	profile       *tokenize.Profile
	minSimilarity float64

	freqs    map[string]int
	shingles map[string][]string

	repo port.VocabularyRepository // optional write-through
}

// NewEngine creates a vocabulary engine. Ingestion uses the coarse profile
// (no stemming) so suggestions return real surface words. repo may be nil
// for a purely in-memory vocabulary.
func NewEngine(minSimilarity float64, repo port.VocabularyRepository) *Engine {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &Engine{
		profile:       tokenize.CoarseProfile(),
		minSimilarity: minSimilarity,
		freqs:         map[string]int{},
		shingles:      map[string][]string{},
		repo:          repo,
	}
}

// Hydrate loads persisted vocabulary entries. Called once at startup.
func (e *Engine) Hydrate(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	return e.repo.LoadTerms(ctx, func(term string, freq int) error {
		e.addTerm(term, freq)
		return nil
	})
}

// Ingest extracts normalized terms from the record's text fields and
// upserts each as a vocabulary entry, silently skipping terms already
// present. Frequencies accumulate for suggestion tie-breaking.
func (e *Engine) Ingest(ctx context.Context, record *domain.Record) error {
	counts := map[string]int{}
	for _, text := range record.Fields() {
		for _, term := range tokenize.Terms(text, e.profile) {
			counts[term]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	for term, n := range counts {
		e.addTerm(term, n)
	}
	if e.repo != nil {
		if err := e.repo.UpsertTerms(ctx, counts); err != nil {
			return &domain.RepositoryError{Op: "Ingest", Err: err.Error()}
		}
	}
	return nil
}

// Suggest returns known terms whose trigram Jaccard similarity to
// queryTerm is at least minSimilarity (engine default when <= 0), ordered
// by similarity descending, then corpus frequency descending, then
// lexicographically.
func (e *Engine) Suggest(queryTerm string, minSimilarity float64, maxResults int) []domain.Suggestion {
	if minSimilarity <= 0 {
		minSimilarity = e.minSimilarity
	}
	query := strings.ToLower(strings.TrimSpace(queryTerm))
	if query == "" {
		return nil
	}
	queryGrams := trigrams(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	candidates := map[string]struct{}{}
	for gram := range queryGrams {
		for _, term := range e.shingles[gram] {
			candidates[term] = struct{}{}
		}
	}

	var suggestions []domain.Suggestion
	for term := range candidates {
		sim := jaccard(queryGrams, trigrams(term))
		if sim >= minSimilarity {
			suggestions = append(suggestions, domain.Suggestion{Term: term, Similarity: sim})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if e.freqs[a.Term] != e.freqs[b.Term] {
			return e.freqs[a.Term] > e.freqs[b.Term]
		}
		return a.Term < b.Term
	})
	if maxResults > 0 && len(suggestions) > maxResults {
		suggestions = suggestions[:maxResults]
	}
	return suggestions
}

// Terms returns all known terms in lexicographic order.
func (e *Engine) Terms() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	terms := make([]string, 0, len(e.freqs))
	for t := range e.freqs {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Len returns the vocabulary size.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.freqs)
}

func (e *Engine) addTerm(term string, freq int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, known := e.freqs[term]; known {
		e.freqs[term] += freq
		return
	}
	e.freqs[term] = freq
	for gram := range trigrams(term) {
		e.shingles[gram] = append(e.shingles[gram], term)
	}
}

// trigrams decomposes a term into overlapping 3-rune shingles, padded at
// the word boundaries (two leading spaces, one trailing) so short terms and
// prefixes still overlap.
func trigrams(term string) map[string]struct{} {
	runes := []rune("  " + term + " ")
	grams := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for gram := range a {
		if _, ok := b[gram]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
