package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"catalog-search/domain"
	"catalog-search/invindex"
	"catalog-search/tokenize"
	"catalog-search/vocab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaveFixture(mirror *mockMirrorEngine, enqueuer ResyncEnqueuer) (*SaveRecordUsecase, *invindex.Store, *vocab.Engine) {
	store := invindex.NewStore(tokenize.DefaultProfile(), []string{"country", "points"}, nil)
	vocabulary := vocab.NewEngine(0, nil)
	u := NewSaveRecordUsecase(
		store, vocabulary, mirror, enqueuer,
		domain.DefaultFieldWeights(), tokenize.DefaultProfile(),
		1, discardLogger(),
	)
	return u, store, vocabulary
}

func testRecord(t *testing.T, id string) *domain.Record {
	t.Helper()
	record, err := domain.NewRecord(id, map[string]string{
		"variety":     "Merlot",
		"description": "velvety plum and chocolate",
	}, map[string]string{"country": "Italy"})
	require.NoError(t, err)
	return record
}

func TestSaveRecord_FullWritePath(t *testing.T) {
	mirror := &mockMirrorEngine{}
	u, store, vocabulary := newSaveFixture(mirror, nil)

	require.NoError(t, u.Execute(context.Background(), testRecord(t, "w1")))

	// Queryable in the primary index immediately.
	hits, err := store.Query(context.Background(), "merlot", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "w1", hits[0].RecordID)

	// Vocabulary grew from the record's surface words.
	assert.Contains(t, vocabulary.Terms(), "merlot")
	assert.Contains(t, vocabulary.Terms(), "velvety")

	// Mirror received the denormalized document.
	require.Len(t, mirror.upserted, 1)
	assert.Equal(t, "w1", mirror.upserted[0].ID)
}

func TestSaveRecord_MirrorFailureDoesNotAbort(t *testing.T) {
	mirror := &mockMirrorEngine{failAll: true}
	enqueuer := &mockEnqueuer{}
	u, store, _ := newSaveFixture(mirror, enqueuer)

	// Mirror down: the save still succeeds and the record is queryable.
	require.NoError(t, u.Execute(context.Background(), testRecord(t, "w1")))

	hits, err := store.Query(context.Background(), "merlot", nil, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// The failed mirror write was queued for resync.
	assert.Equal(t, []string{"w1"}, enqueuer.queued)
}

func TestSaveRecord_MirrorRetriesBeforeEnqueue(t *testing.T) {
	mirror := &mockMirrorEngine{failUpserts: 2}
	enqueuer := &mockEnqueuer{}

	store := invindex.NewStore(tokenize.DefaultProfile(), nil, nil)
	vocabulary := vocab.NewEngine(0, nil)
	u := NewSaveRecordUsecase(
		store, vocabulary, mirror, enqueuer,
		domain.DefaultFieldWeights(), tokenize.DefaultProfile(),
		3, discardLogger(),
	)

	require.NoError(t, u.Execute(context.Background(), testRecord(t, "w1")))

	// Two failures, then success on the third try; nothing queued.
	assert.Equal(t, 3, mirror.upsertCalls)
	assert.Len(t, mirror.upserted, 1)
	assert.Empty(t, enqueuer.queued)
}

func TestSaveRecord_WarnCarriesRecordContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	mirror := &mockMirrorEngine{failAll: true}
	store := invindex.NewStore(tokenize.DefaultProfile(), nil, nil)
	vocabulary := vocab.NewEngine(0, nil)
	u := NewSaveRecordUsecase(
		store, vocabulary, mirror, nil,
		domain.DefaultFieldWeights(), tokenize.DefaultProfile(),
		1, log,
	)

	require.NoError(t, u.Execute(context.Background(), testRecord(t, "w1")))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "w1", logEntry["catalog.record.id"])
	assert.Equal(t, "mirror_sync", logEntry["hook"])
}

func TestSaveRecord_ResaveIsIdempotent(t *testing.T) {
	mirror := &mockMirrorEngine{}
	u, store, _ := newSaveFixture(mirror, nil)

	record := testRecord(t, "w1")
	require.NoError(t, u.Execute(context.Background(), record))
	before, _ := store.Vector("w1")

	require.NoError(t, u.Execute(context.Background(), record))
	after, _ := store.Vector("w1")

	assert.True(t, before.Equal(after))
	assert.Equal(t, 1, store.Len())
}

func TestDeleteRecord_RemovesEverywhere(t *testing.T) {
	mirror := &mockMirrorEngine{}
	u, store, vocabulary := newSaveFixture(mirror, nil)
	require.NoError(t, u.Execute(context.Background(), testRecord(t, "w1")))
	vocabBefore := vocabulary.Len()

	del := NewDeleteRecordUsecase(store, mirror, nil, 1, discardLogger())
	require.NoError(t, del.Execute(context.Background(), "w1"))

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []string{"w1"}, mirror.deleted)

	// Vocabulary is append-only; deletion leaves it untouched.
	assert.Equal(t, vocabBefore, vocabulary.Len())
}

func TestDeleteRecord_MirrorFailureEnqueuesResync(t *testing.T) {
	mirror := &mockMirrorEngine{}
	u, store, _ := newSaveFixture(mirror, nil)
	require.NoError(t, u.Execute(context.Background(), testRecord(t, "w1")))

	mirror.failAll = true
	enqueuer := &mockEnqueuer{}
	del := NewDeleteRecordUsecase(store, mirror, enqueuer, 1, discardLogger())

	require.NoError(t, del.Execute(context.Background(), "w1"))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []string{"w1"}, enqueuer.queued)
}
