package usecase

import (
	"context"
	"log/slog"
	"time"

	"catalog-search/domain"
	"catalog-search/port"
	"catalog-search/vocab"
)

// ReindexMirrorUsecase rebuilds the mirror index from the primary record
// store. Records stream out with keyset pagination so the whole set is
// never held in memory; upserts are idempotent, so rerunning after a crash
// converges to the same state.
type ReindexMirrorUsecase struct {
	records    port.RecordSource
	mirror     port.MirrorEngine
	vocabulary *vocab.Engine
	batchSize  int
	log        *slog.Logger
}

type ReindexResult struct {
	domain.BulkResult
	Duration time.Duration
}

func NewReindexMirrorUsecase(records port.RecordSource, mirror port.MirrorEngine, vocabulary *vocab.Engine, batchSize int, log *slog.Logger) *ReindexMirrorUsecase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ReindexMirrorUsecase{
		records:    records,
		mirror:     mirror,
		vocabulary: vocabulary,
		batchSize:  batchSize,
		log:        log,
	}
}

// Execute streams every record into the mirror. A failing batch is retried
// document by document so one bad record costs one failure, not the batch;
// the result reports which IDs failed.
func (u *ReindexMirrorUsecase) Execute(ctx context.Context) (*ReindexResult, error) {
	start := time.Now()
	result := &ReindexResult{}

	lastID := ""
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		records, cursor, err := u.records.GetRecords(ctx, lastID, u.batchSize)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}

		docs := make([]domain.MirrorDocument, 0, len(records))
		for _, record := range records {
			docs = append(docs, domain.NewMirrorDocument(record))
			if err := u.vocabulary.Ingest(ctx, record); err != nil {
				u.log.Warn("vocabulary ingest failed", "record_id", record.ID(), "err", err)
			}
		}

		result.Merge(u.upsertBatch(ctx, docs))

		if cursor == "" {
			break
		}
		lastID = cursor
	}

	if err := u.mirror.UpsertTerms(ctx, u.vocabulary.Terms()); err != nil {
		u.log.Warn("terms index feed failed", "err", err)
	}

	result.Duration = time.Since(start)
	u.log.Info("mirror reindex finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result, nil
}

func (u *ReindexMirrorUsecase) upsertBatch(ctx context.Context, docs []domain.MirrorDocument) domain.BulkResult {
	if err := u.mirror.UpsertDocuments(ctx, docs); err == nil {
		return domain.BulkResult{Succeeded: len(docs)}
	}

	// Batch rejected: isolate the failing documents one by one.
	var result domain.BulkResult
	for _, doc := range docs {
		if err := u.mirror.UpsertDocuments(ctx, []domain.MirrorDocument{doc}); err != nil {
			u.log.Warn("mirror upsert failed", "record_id", doc.ID, "err", err)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, doc.ID)
			continue
		}
		result.Succeeded++
	}
	return result
}
