package usecase

import (
	"context"
	"log/slog"
	"time"

	"catalog-search/domain"
	"catalog-search/invindex"
	"catalog-search/logger"
	"catalog-search/port"
	"catalog-search/tokenize"
	"catalog-search/vector"
	"catalog-search/vocab"

	"github.com/cenkalti/backoff/v5"
)

// ResyncEnqueuer queues a record for later mirror reconciliation when the
// synchronous mirror write fails.
type ResyncEnqueuer interface {
	EnqueueResync(ctx context.Context, recordID string) error
}

// PostSaveHook is one step of the record write path. Hooks run in
// registration order; a critical hook's failure aborts the save, a
// non-critical one only logs and queues follow-up work.
type PostSaveHook struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context, record *domain.Record) error
}

// SaveRecordUsecase drives the full write path for one record: build the
// weighted search vector, index it in the primary store, grow the
// vocabulary, and push the denormalized document to the mirror. The mirror
// step is best-effort; its failure leaves the record searchable locally and
// schedules a resync.
type SaveRecordUsecase struct {
	hooks []PostSaveHook
	log   *slog.Logger
}

func NewSaveRecordUsecase(
	store *invindex.Store,
	vocabulary *vocab.Engine,
	mirror port.MirrorEngine,
	resync ResyncEnqueuer,
	weights domain.FieldWeights,
	profile *tokenize.Profile,
	mirrorRetries int,
	log *slog.Logger,
) *SaveRecordUsecase {
	u := &SaveRecordUsecase{log: log}
	u.hooks = []PostSaveHook{
		{
			Name:     "primary_index",
			Critical: true,
			Run: func(ctx context.Context, record *domain.Record) error {
				vec := vector.Build(record, weights, profile)
				return store.Index(ctx, record.ID(), vec, record.Attrs())
			},
		},
		{
			Name:     "vocabulary",
			Critical: true,
			Run: func(ctx context.Context, record *domain.Record) error {
				return vocabulary.Ingest(ctx, record)
			},
		},
		{
			Name:     "mirror_sync",
			Critical: false,
			Run: func(ctx context.Context, record *domain.Record) error {
				doc := domain.NewMirrorDocument(record)
				err := retryMirror(ctx, mirrorRetries, func() error {
					return mirror.UpsertDocuments(ctx, []domain.MirrorDocument{doc})
				})
				if err == nil {
					return nil
				}
				if resync != nil {
					if qerr := resync.EnqueueResync(ctx, record.ID()); qerr != nil {
						log.Error("resync enqueue failed", "record_id", record.ID(), "err", qerr)
					}
				}
				return err
			},
		},
	}
	return u
}

// Execute runs the write path. The record is queryable in the primary index
// once Execute returns nil, regardless of mirror state.
func (u *SaveRecordUsecase) Execute(ctx context.Context, record *domain.Record) error {
	ctx = logger.WithRecordID(ctx, record.ID())
	clog := logger.NewContextLogger(u.log).WithContext(ctx)
	for _, hook := range u.hooks {
		if err := hook.Run(ctx, record); err != nil {
			if hook.Critical {
				return err
			}
			clog.Warn("post-save hook failed", "hook", hook.Name, "err", err)
		}
	}
	return nil
}

// retryMirror retries op with exponential backoff, bounded by maxTries.
func retryMirror(ctx context.Context, maxTries int, op func() error) error {
	if maxTries < 1 {
		maxTries = 1
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	var err error
	for attempt := 0; attempt < maxTries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == maxTries-1 {
			break
		}
		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
