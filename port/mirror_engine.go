package port

import (
	"context"

	"catalog-search/domain"
)

// MirrorQuery is a query against the mirror index. Weights re-specify the
// field boosts on every query; the mirror holds no index-time boosts.
type MirrorQuery struct {
	Text      string
	Filters   map[string]string
	Limit     int
	Weights   domain.FieldWeights
	Highlight bool
	PreTag    string
	PostTag   string
}

// MirrorEngine is the external search engine holding the denormalized copy
// of the catalog. Ranking, highlighting, and term suggestion are delegated
// to the engine's own models.
type MirrorEngine interface {
	UpsertDocuments(ctx context.Context, docs []domain.MirrorDocument) error
	DeleteDocuments(ctx context.Context, ids []string) error
	Search(ctx context.Context, q MirrorQuery) ([]domain.MirrorHit, error)
	SuggestTerms(ctx context.Context, term string, limit int) ([]domain.Suggestion, error)
	UpsertTerms(ctx context.Context, terms []string) error
	EnsureIndexes(ctx context.Context) error
}
