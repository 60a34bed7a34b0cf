package usecase

import (
	"context"
	"log/slog"

	"catalog-search/invindex"
	"catalog-search/logger"
	"catalog-search/port"
)

// DeleteRecordUsecase removes a record from the primary index and the
// mirror. Vocabulary entries sourced from the record stay; the vocabulary
// is append-only. Mirror deletion is best-effort with a resync fallback,
// same as the save path.
type DeleteRecordUsecase struct {
	store         *invindex.Store
	mirror        port.MirrorEngine
	resync        ResyncEnqueuer
	mirrorRetries int
	log           *slog.Logger
}

func NewDeleteRecordUsecase(store *invindex.Store, mirror port.MirrorEngine, resync ResyncEnqueuer, mirrorRetries int, log *slog.Logger) *DeleteRecordUsecase {
	return &DeleteRecordUsecase{
		store:         store,
		mirror:        mirror,
		resync:        resync,
		mirrorRetries: mirrorRetries,
		log:           log,
	}
}

func (u *DeleteRecordUsecase) Execute(ctx context.Context, recordID string) error {
	ctx = logger.WithRecordID(ctx, recordID)
	clog := logger.NewContextLogger(u.log).WithContext(ctx)

	if err := u.store.Delete(ctx, recordID); err != nil {
		return err
	}

	err := retryMirror(ctx, u.mirrorRetries, func() error {
		return u.mirror.DeleteDocuments(ctx, []string{recordID})
	})
	if err != nil {
		clog.Warn("mirror delete failed", "err", err)
		if u.resync != nil {
			if qerr := u.resync.EnqueueResync(ctx, recordID); qerr != nil {
				clog.Error("resync enqueue failed", "err", qerr)
			}
		}
	}
	return nil
}
