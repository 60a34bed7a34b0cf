package gateway

import (
	"context"
	"sort"

	"catalog-search/domain"
	"catalog-search/driver"
	"catalog-search/port"
)

type MirrorDriver interface {
	UpsertDocuments(ctx context.Context, docs []map[string]interface{}) error
	DeleteDocuments(ctx context.Context, ids []string) error
	Search(ctx context.Context, req driver.MirrorSearchRequest) ([]driver.MirrorHitDriver, error)
	UpsertTerms(ctx context.Context, docs []driver.TermDoc) error
	SearchTerms(ctx context.Context, term string, limit int) ([]driver.TermHitDriver, error)
	EnsureIndexes(ctx context.Context) error
}

// MirrorGateway adapts the mirror engine driver to port.MirrorEngine.
// The engine carries no index-time boosts, so Search realizes the field
// weight tiers at query time: one pass per tier restricted to that tier's
// fields, merged client-side with tier weights.
type MirrorGateway struct {
	driver       MirrorDriver
	filterFields map[string]struct{}
}

func NewMirrorGateway(d MirrorDriver, filterFields []string) *MirrorGateway {
	known := make(map[string]struct{}, len(filterFields))
	for _, f := range filterFields {
		known[f] = struct{}{}
	}
	return &MirrorGateway{driver: d, filterFields: known}
}

func (g *MirrorGateway) UpsertDocuments(ctx context.Context, docs []domain.MirrorDocument) error {
	if len(docs) == 0 {
		return nil
	}
	driverDocs := make([]map[string]interface{}, len(docs))
	for i, doc := range docs {
		driverDocs[i] = flattenDocument(doc)
	}
	if err := g.driver.UpsertDocuments(ctx, driverDocs); err != nil {
		return &domain.IndexUnavailableError{Op: "UpsertDocuments", Err: err.Error()}
	}
	return nil
}

func (g *MirrorGateway) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := g.driver.DeleteDocuments(ctx, ids); err != nil {
		return &domain.IndexUnavailableError{Op: "DeleteDocuments", Err: err.Error()}
	}
	return nil
}

func (g *MirrorGateway) Search(ctx context.Context, q port.MirrorQuery) ([]domain.MirrorHit, error) {
	for field := range q.Filters {
		if _, ok := g.filterFields[field]; !ok {
			return nil, &domain.ValidationError{Field: field, Msg: "unknown filter field"}
		}
	}
	filter := driver.BuildSecureFilter(q.Filters)

	// Empty text matches everything passing the filters, same semantic as
	// the primary index.
	if q.Text == "" {
		raw, err := g.driver.Search(ctx, driver.MirrorSearchRequest{
			Query:  "",
			Filter: filter,
			Limit:  q.Limit,
		})
		if err != nil {
			return nil, &domain.IndexUnavailableError{Op: "Search", Err: err.Error()}
		}
		hits := make([]domain.MirrorHit, 0, len(raw))
		for _, h := range raw {
			hits = append(hits, domain.MirrorHit{Document: unflattenDocument(h.Document, q.Weights)})
		}
		sortHits(hits)
		return truncate(hits, q.Limit), nil
	}

	merged := map[string]*domain.MirrorHit{}
	for _, group := range q.Weights.TierGroups() {
		raw, err := g.driver.Search(ctx, driver.MirrorSearchRequest{
			Query:        q.Text,
			Filter:       filter,
			SearchFields: group.Fields,
			Limit:        q.Limit,
			Highlight:    q.Highlight,
			PreTag:       q.PreTag,
			PostTag:      q.PostTag,
		})
		if err != nil {
			return nil, &domain.IndexUnavailableError{Op: "Search", Err: err.Error()}
		}
		for _, h := range raw {
			doc := unflattenDocument(h.Document, q.Weights)
			if doc.ID == "" {
				continue
			}
			hit, ok := merged[doc.ID]
			if !ok {
				hit = &domain.MirrorHit{Document: doc}
				merged[doc.ID] = hit
			}
			hit.Score += group.Weight * h.Score
			if q.Highlight && len(hit.Highlights) == 0 {
				hit.Highlights = formattedHighlights(h.Formatted, doc, q.PreTag)
			}
		}
	}

	hits := make([]domain.MirrorHit, 0, len(merged))
	for _, hit := range merged {
		hits = append(hits, *hit)
	}
	sortHits(hits)
	return truncate(hits, q.Limit), nil
}

func (g *MirrorGateway) SuggestTerms(ctx context.Context, term string, limit int) ([]domain.Suggestion, error) {
	raw, err := g.driver.SearchTerms(ctx, term, limit)
	if err != nil {
		return nil, &domain.IndexUnavailableError{Op: "SuggestTerms", Err: err.Error()}
	}
	suggestions := make([]domain.Suggestion, 0, len(raw))
	for _, h := range raw {
		suggestions = append(suggestions, domain.Suggestion{Term: h.Term, Similarity: h.Score})
	}
	return suggestions, nil
}

func (g *MirrorGateway) UpsertTerms(ctx context.Context, terms []string) error {
	if len(terms) == 0 {
		return nil
	}
	docs := make([]driver.TermDoc, len(terms))
	for i, term := range terms {
		docs[i] = driver.TermDoc{ID: driver.TermDocID(term), Term: term}
	}
	if err := g.driver.UpsertTerms(ctx, docs); err != nil {
		return &domain.IndexUnavailableError{Op: "UpsertTerms", Err: err.Error()}
	}
	return nil
}

func (g *MirrorGateway) EnsureIndexes(ctx context.Context) error {
	if err := g.driver.EnsureIndexes(ctx); err != nil {
		return &domain.IndexUnavailableError{Op: "EnsureIndexes", Err: err.Error()}
	}
	return nil
}

// flattenDocument lays text fields and filter attributes out as top-level
// engine attributes; the ID keeps the record's identifier.
func flattenDocument(doc domain.MirrorDocument) map[string]interface{} {
	out := make(map[string]interface{}, len(doc.Fields)+len(doc.Attrs)+1)
	for k, v := range doc.Attrs {
		out[k] = v
	}
	for k, v := range doc.Fields {
		out[k] = v
	}
	out["id"] = doc.ID
	return out
}

// unflattenDocument splits a raw hit back into text fields (those named in
// the weight config) and filter attributes (everything else).
func unflattenDocument(raw map[string]interface{}, weights domain.FieldWeights) domain.MirrorDocument {
	doc := domain.MirrorDocument{Fields: map[string]string{}, Attrs: map[string]string{}}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == "id":
			doc.ID = s
		case k == "_formatted" || k == "_rankingScore":
		default:
			if _, weighted := weights[k]; weighted {
				doc.Fields[k] = s
			} else {
				doc.Attrs[k] = s
			}
		}
	}
	return doc
}

// formattedHighlights keeps only the weighted fields the engine actually
// marked up.
func formattedHighlights(formatted map[string]interface{}, doc domain.MirrorDocument, preTag string) map[string]string {
	if formatted == nil || preTag == "" {
		return nil
	}
	out := map[string]string{}
	for field := range doc.Fields {
		marked, ok := formatted[field].(string)
		if ok && marked != doc.Fields[field] {
			out[field] = marked
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortHits(hits []domain.MirrorHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Document.ID < hits[j].Document.ID
	})
}

func truncate(hits []domain.MirrorHit, limit int) []domain.MirrorHit {
	if limit > 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
