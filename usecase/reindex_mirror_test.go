package usecase

import (
	"context"
	"fmt"
	"testing"

	"catalog-search/domain"
	"catalog-search/vocab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecords(t *testing.T, n int) []*domain.Record {
	t.Helper()
	records := make([]*domain.Record, 0, n)
	for i := 0; i < n; i++ {
		r, err := domain.NewRecord(
			fmt.Sprintf("w%03d", i),
			map[string]string{"variety": "Merlot", "description": "plum and chocolate"},
			map[string]string{"country": "Italy"},
		)
		require.NoError(t, err)
		records = append(records, r)
	}
	return records
}

func TestReindexMirror_StreamsAllRecords(t *testing.T) {
	source := &mockRecordSource{records: seedRecords(t, 25)}
	mirror := &mockMirrorEngine{}
	vocabulary := vocab.NewEngine(0, nil)

	// Batch size below the record count forces several pages.
	u := NewReindexMirrorUsecase(source, mirror, vocabulary, 10, discardLogger())
	result, err := u.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 25, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.Len(t, mirror.upserted, 25)

	// Vocabulary was fed along the way and pushed to the terms index.
	assert.Contains(t, mirror.terms, "merlot")
	assert.Contains(t, mirror.terms, "plum")
}

func TestReindexMirror_PartialFailure(t *testing.T) {
	source := &mockRecordSource{records: seedRecords(t, 5)}
	mirror := &mockMirrorEngine{failIDs: map[string]bool{"w002": true}}
	vocabulary := vocab.NewEngine(0, nil)

	u := NewReindexMirrorUsecase(source, mirror, vocabulary, 10, discardLogger())
	result, err := u.Execute(context.Background())
	require.NoError(t, err)

	// One bad record costs exactly one failure, not the batch.
	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"w002"}, result.FailedIDs)

	// The four surviving records all made it into the mirror.
	upsertedIDs := make([]string, 0, len(mirror.upserted))
	for _, doc := range mirror.upserted {
		upsertedIDs = append(upsertedIDs, doc.ID)
	}
	assert.ElementsMatch(t, []string{"w000", "w001", "w003", "w004"}, upsertedIDs)
}

func TestReindexMirror_EmptySource(t *testing.T) {
	source := &mockRecordSource{}
	mirror := &mockMirrorEngine{}
	vocabulary := vocab.NewEngine(0, nil)

	u := NewReindexMirrorUsecase(source, mirror, vocabulary, 10, discardLogger())
	result, err := u.Execute(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Succeeded)
	assert.Zero(t, result.Failed)
}

func TestReindexMirror_RerunConverges(t *testing.T) {
	source := &mockRecordSource{records: seedRecords(t, 3)}
	mirror := &mockMirrorEngine{}
	vocabulary := vocab.NewEngine(0, nil)

	u := NewReindexMirrorUsecase(source, mirror, vocabulary, 10, discardLogger())
	_, err := u.Execute(context.Background())
	require.NoError(t, err)
	firstVocab := vocabulary.Len()

	_, err = u.Execute(context.Background())
	require.NoError(t, err)

	// Upserts repeat (idempotent on the engine side) and the vocabulary
	// does not grow on a rerun over the same corpus.
	assert.Len(t, mirror.upserted, 6)
	assert.Equal(t, firstVocab, vocabulary.Len())
}
