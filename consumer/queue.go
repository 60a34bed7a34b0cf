package consumer

import (
	"context"
	"encoding/json"
	"time"

	appOtel "catalog-search/utils/otel"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventTypeRecordResync marks an event asking for one record's mirror state
// to be reconciled against the primary store.
const EventTypeRecordResync = "RecordResync"

// ResyncPayload is the payload of a RecordResync event.
type ResyncPayload struct {
	RecordID string `json:"record_id"`
}

// Queue publishes resync events onto the stream the Consumer drains.
// Implements the write path's resync enqueuer.
type Queue struct {
	client    *redis.Client
	streamKey string
}

func NewQueue(client *redis.Client, streamKey string) *Queue {
	return &Queue{client: client, streamKey: streamKey}
}

// NewRedisClient parses a redis:// URL into a client shared by the queue
// and the consumer.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// EnqueueResync appends a RecordResync event for the record. Duplicate
// events for the same record are harmless; resync handling is idempotent.
func (q *Queue) EnqueueResync(ctx context.Context, recordID string) error {
	payload, err := json.Marshal(ResyncPayload{RecordID: recordID})
	if err != nil {
		return err
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.streamKey,
		Values: map[string]interface{}{
			"event_id":   uuid.NewString(),
			"event_type": EventTypeRecordResync,
			"created_at": time.Now().UTC().Format(time.RFC3339),
			"payload":    string(payload),
		},
	}).Err()
	if err == nil {
		if m := appOtel.Metrics; m != nil {
			m.ResyncTotal.Add(ctx, 1)
		}
	}
	return err
}
