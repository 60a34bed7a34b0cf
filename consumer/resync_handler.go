package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"catalog-search/domain"
	"catalog-search/gateway"
	"catalog-search/port"
)

// ResyncEventHandler replays a failed mirror write. It re-reads the record
// from the primary store so the event only needs the ID: if the record
// still exists the mirror document is upserted, if it was deleted in the
// meantime the mirror entry is removed. Either way the mirror converges on
// the store's current state.
type ResyncEventHandler struct {
	records port.RecordSource
	mirror  port.MirrorEngine
	logger  *slog.Logger
}

func NewResyncEventHandler(records port.RecordSource, mirror port.MirrorEngine, logger *slog.Logger) *ResyncEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResyncEventHandler{records: records, mirror: mirror, logger: logger}
}

func (h *ResyncEventHandler) HandleEvent(ctx context.Context, event Event) error {
	if event.EventType != EventTypeRecordResync {
		h.logger.Warn("unknown event type, skipping",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}

	var payload ResyncPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		h.logger.Error("failed to unmarshal resync payload",
			"event_id", event.EventID,
			"error", err,
		)
		// Malformed payloads never become valid; drop rather than redeliver.
		return nil
	}
	if payload.RecordID == "" {
		h.logger.Warn("resync event without record_id, skipping", "event_id", event.EventID)
		return nil
	}

	record, err := h.records.GetRecordByID(ctx, payload.RecordID)
	if errors.Is(err, gateway.ErrRecordNotFound) {
		if err := h.mirror.DeleteDocuments(ctx, []string{payload.RecordID}); err != nil {
			return err
		}
		h.logger.Info("resync removed deleted record from mirror", "record_id", payload.RecordID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.mirror.UpsertDocuments(ctx, []domain.MirrorDocument{domain.NewMirrorDocument(record)}); err != nil {
		return err
	}
	h.logger.Info("resync restored record in mirror", "record_id", payload.RecordID)
	return nil
}
