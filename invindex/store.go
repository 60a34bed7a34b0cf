// Package invindex implements the primary index store: an inverted index
// over SearchVectors kept in memory for querying, with write-through
// persistence so the index survives restarts. Writes are synchronous; a
// record is queryable here the moment its save completes.
package invindex

import (
	"context"
	"sort"
	"sync"

	"catalog-search/domain"
	"catalog-search/port"
	"catalog-search/tokenize"
)

// Hit is one ranked query result.
type Hit struct {
	RecordID string
	Score    float64
}

// Store answers ranked queries against per-record SearchVectors.
// All methods are safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	profile      *tokenize.Profile
	filterFields map[string]struct{}

	vectors  map[string]domain.SearchVector
	norms    map[string]float64
	attrs    map[string]map[string]string
	postings map[string]map[string]float64 // term -> recordID -> weight

	persist port.VectorStore // optional write-through
}

// NewStore creates a primary index store. filterFields declares the
// attribute names queries may filter on; anything else is a validation
// error. persist may be nil for a purely in-memory index.
func NewStore(profile *tokenize.Profile, filterFields []string, persist port.VectorStore) *Store {
	known := make(map[string]struct{}, len(filterFields))
	for _, f := range filterFields {
		known[f] = struct{}{}
	}
	return &Store{
		profile:      profile,
		filterFields: known,
		vectors:      map[string]domain.SearchVector{},
		norms:        map[string]float64{},
		attrs:        map[string]map[string]string{},
		postings:     map[string]map[string]float64{},
		persist:      persist,
	}
}

// Hydrate loads all persisted vectors into memory. Called once at startup.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	return s.persist.LoadVectors(ctx, func(recordID string, vec domain.SearchVector, attrs map[string]string) error {
		s.apply(recordID, vec, attrs)
		return nil
	})
}

// Index upserts a record's vector. Reindexing the same record with the same
// field values replaces the entry with an identical one, so the operation
// is idempotent.
func (s *Store) Index(ctx context.Context, recordID string, vec domain.SearchVector, attrs map[string]string) error {
	if s.persist != nil {
		if err := s.persist.UpsertVector(ctx, recordID, vec, attrs); err != nil {
			return &domain.RepositoryError{Op: "Index", Err: err.Error()}
		}
	}
	s.apply(recordID, vec, attrs)
	return nil
}

// Delete removes a record's vector and postings.
func (s *Store) Delete(ctx context.Context, recordID string) error {
	if s.persist != nil {
		if err := s.persist.DeleteVector(ctx, recordID); err != nil {
			return &domain.RepositoryError{Op: "Delete", Err: err.Error()}
		}
	}
	s.mu.Lock()
	s.removePostings(recordID)
	delete(s.vectors, recordID)
	delete(s.norms, recordID)
	delete(s.attrs, recordID)
	s.mu.Unlock()
	return nil
}

// Vector returns the indexed vector for a record, if any.
func (s *Store) Vector(recordID string) (domain.SearchVector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vectors[recordID]
	return v, ok
}

// Len returns the number of indexed records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Query tokenizes text with the indexing profile, applies the equality
// filters as hard predicates, and ranks matches by the dot product of query
// term frequencies with vector term weights, normalized by the vector's L2
// norm. Empty query text matches every record passing the filters with
// score zero. Results are ordered by score descending, ties broken by
// record ID for determinism.
func (s *Store) Query(ctx context.Context, text string, filters map[string]string, limit int) ([]Hit, error) {
	for field := range filters {
		if _, ok := s.filterFields[field]; !ok {
			return nil, &domain.ValidationError{Field: field, Msg: "unknown filter field"}
		}
	}

	queryTF := map[string]float64{}
	for _, term := range tokenize.Terms(text, s.profile) {
		queryTF[term]++
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []Hit
	if len(queryTF) == 0 {
		// Pure-filter (or empty) query: full scan over the filtered set.
		for recordID, attrs := range s.attrs {
			if matchesFilters(attrs, filters) {
				hits = append(hits, Hit{RecordID: recordID})
			}
		}
	} else {
		scores := map[string]float64{}
		for term, tf := range queryTF {
			for recordID, weight := range s.postings[term] {
				scores[recordID] += weight * tf
			}
		}
		for recordID, score := range scores {
			if !matchesFilters(s.attrs[recordID], filters) {
				continue
			}
			if norm := s.norms[recordID]; norm > 0 {
				score /= norm
			}
			hits = append(hits, Hit{RecordID: recordID, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RecordID < hits[j].RecordID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) apply(recordID string, vec domain.SearchVector, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removePostings(recordID)
	s.vectors[recordID] = vec
	s.norms[recordID] = vec.Norm()
	if attrs == nil {
		attrs = map[string]string{}
	}
	s.attrs[recordID] = attrs
	for term, entry := range vec {
		bucket, ok := s.postings[term]
		if !ok {
			bucket = map[string]float64{}
			s.postings[term] = bucket
		}
		bucket[recordID] = entry.Weight
	}
}

// removePostings must be called with the write lock held.
func (s *Store) removePostings(recordID string) {
	old, ok := s.vectors[recordID]
	if !ok {
		return
	}
	for term := range old {
		bucket := s.postings[term]
		delete(bucket, recordID)
		if len(bucket) == 0 {
			delete(s.postings, term)
		}
	}
}

func matchesFilters(attrs, filters map[string]string) bool {
	for field, want := range filters {
		if attrs[field] != want {
			return false
		}
	}
	return true
}
