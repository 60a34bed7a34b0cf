package port

import (
	"context"

	"catalog-search/domain"
)

// RecordSource streams records out of the primary store. GetRecords pages
// by record ID (keyset pagination) so bulk reindexing never holds the whole
// record set in memory; it returns the next cursor, empty when exhausted.
type RecordSource interface {
	GetRecords(ctx context.Context, lastID string, limit int) ([]*domain.Record, string, error)
	GetRecordByID(ctx context.Context, id string) (*domain.Record, error)
}

// VectorStore persists one SearchVector per record alongside the primary
// store, together with the record's filter attributes.
type VectorStore interface {
	UpsertVector(ctx context.Context, recordID string, vec domain.SearchVector, attrs map[string]string) error
	DeleteVector(ctx context.Context, recordID string) error
	LoadVectors(ctx context.Context, fn func(recordID string, vec domain.SearchVector, attrs map[string]string) error) error
}

// VocabularyRepository persists the append-only term vocabulary.
// UpsertTerms must ignore already-present terms (no error, no duplicate)
// while accumulating corpus frequency.
type VocabularyRepository interface {
	UpsertTerms(ctx context.Context, counts map[string]int) error
	LoadTerms(ctx context.Context, fn func(term string, freq int) error) error
}
