package usecase

import (
	"context"
	"errors"
	"log/slog"

	"catalog-search/domain"
	"catalog-search/gateway"
	"catalog-search/highlight"
	"catalog-search/invindex"
	"catalog-search/logger"
	"catalog-search/port"
	"catalog-search/tokenize"
)

// Highlight markers used on both result paths.
const (
	HighlightPreTag  = "<mark>"
	HighlightPostTag = "</mark>"
)

// SearchHit is one ranked result, source-independent.
type SearchHit struct {
	ID         string            `json:"id"`
	Fields     map[string]string `json:"fields"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchResult carries the ranked hits plus which index answered.
type SearchResult struct {
	Source domain.Source `json:"source"`
	Hits   []SearchHit   `json:"hits"`
	Total  int           `json:"total"`
}

// SearchRecordsUsecase answers a validated query from either the primary
// inverted index or the mirror engine. The two paths rank with different
// models, so the same query can legitimately order results differently;
// only membership under equality filters is expected to agree.
type SearchRecordsUsecase struct {
	store   *invindex.Store
	records port.RecordSource
	mirror  port.MirrorEngine
	weights domain.FieldWeights
	profile *tokenize.Profile
	log     *slog.Logger
}

func NewSearchRecordsUsecase(
	store *invindex.Store,
	records port.RecordSource,
	mirror port.MirrorEngine,
	weights domain.FieldWeights,
	profile *tokenize.Profile,
	log *slog.Logger,
) *SearchRecordsUsecase {
	return &SearchRecordsUsecase{
		store:   store,
		records: records,
		mirror:  mirror,
		weights: weights,
		profile: profile,
		log:     log,
	}
}

func (u *SearchRecordsUsecase) Execute(ctx context.Context, q domain.Query) (*SearchResult, error) {
	ctx = logger.WithSource(ctx, string(q.Source))
	if q.Source == domain.SourceMirror {
		return u.searchMirror(ctx, q)
	}
	return u.searchPrimary(ctx, q)
}

func (u *SearchRecordsUsecase) searchPrimary(ctx context.Context, q domain.Query) (*SearchResult, error) {
	ranked, err := u.store.Query(ctx, q.Text, q.Filters, q.Limit)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(ranked))
	for _, r := range ranked {
		record, err := u.records.GetRecordByID(ctx, r.RecordID)
		if errors.Is(err, gateway.ErrRecordNotFound) {
			// Index entry outlived the row; skip rather than fail the query.
			logger.NewContextLogger(u.log).WithContext(ctx).Warn(
				"indexed record missing from store", "record_id", r.RecordID)
			continue
		}
		if err != nil {
			return nil, err
		}

		hit := SearchHit{
			ID:     record.ID(),
			Fields: record.Fields(),
			Attrs:  record.Attrs(),
			Score:  r.Score,
		}
		if q.Highlight && q.Text != "" {
			marked := highlight.Fields(record.Fields(), []string{q.Text}, HighlightPreTag, HighlightPostTag, u.profile)
			if len(marked) > 0 {
				hit.Highlights = marked
			}
		}
		hits = append(hits, hit)
	}

	return &SearchResult{Source: domain.SourcePrimary, Hits: hits, Total: len(hits)}, nil
}

func (u *SearchRecordsUsecase) searchMirror(ctx context.Context, q domain.Query) (*SearchResult, error) {
	mirrorHits, err := u.mirror.Search(ctx, port.MirrorQuery{
		Text:      q.Text,
		Filters:   q.Filters,
		Limit:     q.Limit,
		Weights:   u.weights,
		Highlight: q.Highlight,
		PreTag:    HighlightPreTag,
		PostTag:   HighlightPostTag,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(mirrorHits))
	for _, h := range mirrorHits {
		hits = append(hits, SearchHit{
			ID:         h.Document.ID,
			Fields:     h.Document.Fields,
			Attrs:      h.Document.Attrs,
			Score:      h.Score,
			Highlights: h.Highlights,
		})
	}
	return &SearchResult{Source: domain.SourceMirror, Hits: hits, Total: len(hits)}, nil
}
