package gateway

import (
	"context"
	"errors"
	"testing"

	"catalog-search/domain"
	"catalog-search/driver"
	"catalog-search/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMirrorDriver answers Search per pass based on the requested fields.
type mockMirrorDriver struct {
	hitsByField map[string][]driver.MirrorHitDriver
	requests    []driver.MirrorSearchRequest
	upserted    [][]map[string]interface{}
	deleted     [][]string
	termDocs    []driver.TermDoc
	termHits    []driver.TermHitDriver
	err         error
}

func (m *mockMirrorDriver) UpsertDocuments(_ context.Context, docs []map[string]interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, docs)
	return nil
}

func (m *mockMirrorDriver) DeleteDocuments(_ context.Context, ids []string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, ids)
	return nil
}

func (m *mockMirrorDriver) Search(_ context.Context, req driver.MirrorSearchRequest) ([]driver.MirrorHitDriver, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.requests = append(m.requests, req)
	if len(req.SearchFields) == 0 {
		var all []driver.MirrorHitDriver
		for _, hits := range m.hitsByField {
			all = append(all, hits...)
		}
		return all, nil
	}
	var hits []driver.MirrorHitDriver
	for _, field := range req.SearchFields {
		hits = append(hits, m.hitsByField[field]...)
	}
	return hits, nil
}

func (m *mockMirrorDriver) UpsertTerms(_ context.Context, docs []driver.TermDoc) error {
	if m.err != nil {
		return m.err
	}
	m.termDocs = append(m.termDocs, docs...)
	return nil
}

func (m *mockMirrorDriver) SearchTerms(_ context.Context, term string, limit int) ([]driver.TermHitDriver, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.termHits, nil
}

func (m *mockMirrorDriver) EnsureIndexes(_ context.Context) error {
	return m.err
}

func docHit(id string, score float64) driver.MirrorHitDriver {
	return driver.MirrorHitDriver{
		Document: map[string]interface{}{"id": id, "variety": "Merlot", "country": "Italy"},
		Score:    score,
	}
}

func TestMirrorGateway_SearchMergesTierPasses(t *testing.T) {
	// wA matches in the tier-A field, wB only in the tier-D field; the
	// client-side merge must weight wA far above wB.
	mock := &mockMirrorDriver{hitsByField: map[string][]driver.MirrorHitDriver{
		"variety":     {docHit("wA", 0.9)},
		"description": {docHit("wB", 0.9)},
	}}
	g := NewMirrorGateway(mock, []string{"country", "points"})

	hits, err := g.Search(context.Background(), port.MirrorQuery{
		Text:    "merlot",
		Limit:   10,
		Weights: domain.DefaultFieldWeights(),
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "wA", hits[0].Document.ID)
	assert.InDelta(t, 0.9, hits[0].Score, 1e-9)  // tier A weight 1.0
	assert.InDelta(t, 0.09, hits[1].Score, 1e-9) // tier D weight 0.1

	// One pass per non-empty tier, each restricted to its fields.
	assert.Len(t, mock.requests, 4)
}

func TestMirrorGateway_SearchAccumulatesAcrossTiers(t *testing.T) {
	mock := &mockMirrorDriver{hitsByField: map[string][]driver.MirrorHitDriver{
		"variety":     {docHit("wA", 1.0)},
		"description": {docHit("wA", 0.5)},
	}}
	g := NewMirrorGateway(mock, nil)

	hits, err := g.Search(context.Background(), port.MirrorQuery{
		Text:    "merlot",
		Limit:   10,
		Weights: domain.DefaultFieldWeights(),
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0*1.0+0.1*0.5, hits[0].Score, 1e-9)
}

func TestMirrorGateway_SearchUnknownFilterField(t *testing.T) {
	g := NewMirrorGateway(&mockMirrorDriver{}, []string{"country"})

	_, err := g.Search(context.Background(), port.MirrorQuery{
		Text:    "merlot",
		Filters: map[string]string{"region": "Tuscany"},
		Weights: domain.DefaultFieldWeights(),
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestMirrorGateway_SearchEngineDown(t *testing.T) {
	mock := &mockMirrorDriver{err: errors.New("connection refused")}
	g := NewMirrorGateway(mock, nil)

	_, err := g.Search(context.Background(), port.MirrorQuery{
		Text:    "merlot",
		Weights: domain.DefaultFieldWeights(),
	})
	var unavailable *domain.IndexUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestMirrorGateway_EmptyTextSinglePass(t *testing.T) {
	mock := &mockMirrorDriver{hitsByField: map[string][]driver.MirrorHitDriver{
		"variety": {docHit("wA", 1.0)},
	}}
	g := NewMirrorGateway(mock, []string{"country"})

	hits, err := g.Search(context.Background(), port.MirrorQuery{
		Text:    "",
		Filters: map[string]string{"country": "Italy"},
		Limit:   10,
		Weights: domain.DefaultFieldWeights(),
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].Score)
	require.Len(t, mock.requests, 1)
	assert.Equal(t, `country = "Italy"`, mock.requests[0].Filter)
}

func TestMirrorGateway_DocumentRoundTrip(t *testing.T) {
	mock := &mockMirrorDriver{}
	g := NewMirrorGateway(mock, []string{"country"})

	doc := domain.MirrorDocument{
		ID:     "w1",
		Fields: map[string]string{"variety": "Merlot"},
		Attrs:  map[string]string{"country": "Italy"},
	}
	require.NoError(t, g.UpsertDocuments(context.Background(), []domain.MirrorDocument{doc}))
	require.Len(t, mock.upserted, 1)

	flat := mock.upserted[0][0]
	assert.Equal(t, "w1", flat["id"])
	assert.Equal(t, "Merlot", flat["variety"])
	assert.Equal(t, "Italy", flat["country"])

	back := unflattenDocument(flat, domain.DefaultFieldWeights())
	assert.Equal(t, doc, back)
}

func TestMirrorGateway_UpsertTermsHashesIDs(t *testing.T) {
	mock := &mockMirrorDriver{}
	g := NewMirrorGateway(mock, nil)

	require.NoError(t, g.UpsertTerms(context.Background(), []string{"cabernet", "merlot"}))
	require.Len(t, mock.termDocs, 2)
	assert.Equal(t, driver.TermDocID("cabernet"), mock.termDocs[0].ID)
	assert.Equal(t, "cabernet", mock.termDocs[0].Term)
}

func TestMirrorGateway_SuggestTerms(t *testing.T) {
	mock := &mockMirrorDriver{termHits: []driver.TermHitDriver{
		{Term: "cabernet", Score: 0.8},
	}}
	g := NewMirrorGateway(mock, nil)

	suggestions, err := g.SuggestTerms(context.Background(), "cabernay", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, domain.Suggestion{Term: "cabernet", Similarity: 0.8}, suggestions[0])
}
