package usecase

import (
	"context"
	"log/slog"

	"catalog-search/domain"
	"catalog-search/gateway"
	"catalog-search/port"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockMirrorEngine counts calls and can fail selectively.
type mockMirrorEngine struct {
	upserted    []domain.MirrorDocument
	deleted     []string
	upsertCalls int
	failUpserts int // fail this many upsert calls before succeeding
	failAll     bool
	failIDs     map[string]bool // fail batches containing these IDs
	searchHits  []domain.MirrorHit
	suggestions []domain.Suggestion
	terms       []string
}

func (m *mockMirrorEngine) UpsertDocuments(_ context.Context, docs []domain.MirrorDocument) error {
	m.upsertCalls++
	if m.failAll {
		return &domain.IndexUnavailableError{Op: "UpsertDocuments", Err: "down"}
	}
	if m.failUpserts > 0 {
		m.failUpserts--
		return &domain.IndexUnavailableError{Op: "UpsertDocuments", Err: "down"}
	}
	for _, doc := range docs {
		if m.failIDs[doc.ID] {
			return &domain.IndexUnavailableError{Op: "UpsertDocuments", Err: "rejected " + doc.ID}
		}
	}
	m.upserted = append(m.upserted, docs...)
	return nil
}

func (m *mockMirrorEngine) DeleteDocuments(_ context.Context, ids []string) error {
	if m.failAll {
		return &domain.IndexUnavailableError{Op: "DeleteDocuments", Err: "down"}
	}
	m.deleted = append(m.deleted, ids...)
	return nil
}

func (m *mockMirrorEngine) Search(_ context.Context, q port.MirrorQuery) ([]domain.MirrorHit, error) {
	if m.failAll {
		return nil, &domain.IndexUnavailableError{Op: "Search", Err: "down"}
	}
	return m.searchHits, nil
}

func (m *mockMirrorEngine) SuggestTerms(_ context.Context, term string, limit int) ([]domain.Suggestion, error) {
	if m.failAll {
		return nil, &domain.IndexUnavailableError{Op: "SuggestTerms", Err: "down"}
	}
	return m.suggestions, nil
}

func (m *mockMirrorEngine) UpsertTerms(_ context.Context, terms []string) error {
	if m.failAll {
		return &domain.IndexUnavailableError{Op: "UpsertTerms", Err: "down"}
	}
	m.terms = append(m.terms, terms...)
	return nil
}

func (m *mockMirrorEngine) EnsureIndexes(_ context.Context) error {
	return nil
}

// mockRecordSource serves records from a fixed ordered slice.
type mockRecordSource struct {
	records []*domain.Record
}

func (m *mockRecordSource) GetRecords(_ context.Context, lastID string, limit int) ([]*domain.Record, string, error) {
	start := 0
	if lastID != "" {
		for i, r := range m.records {
			if r.ID() == lastID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(m.records) {
		end = len(m.records)
	}
	page := m.records[start:end]
	cursor := ""
	if len(page) == limit {
		cursor = page[len(page)-1].ID()
	}
	return page, cursor, nil
}

func (m *mockRecordSource) GetRecordByID(_ context.Context, id string) (*domain.Record, error) {
	for _, r := range m.records {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, gateway.ErrRecordNotFound
}

// mockEnqueuer records queued resync IDs.
type mockEnqueuer struct {
	queued []string
}

func (m *mockEnqueuer) EnqueueResync(_ context.Context, recordID string) error {
	m.queued = append(m.queued, recordID)
	return nil
}
