package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/meilisearch/meilisearch-go"
)

// NewMeilisearchClient builds the mirror engine client. Constructed once at
// startup and shared; never reinitialized mid-process.
func NewMeilisearchClient(host string, apiKey string) meilisearch.ServiceManager {
	return meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
}

// MeilisearchDriver talks to the mirror engine. It owns two indexes: the
// records index holding one denormalized document per catalog record, and
// the terms index backing the engine's typo-tolerant term suggester.
type MeilisearchDriver struct {
	client     meilisearch.ServiceManager
	records    meilisearch.IndexManager
	terms      meilisearch.IndexManager
	recordsUID string
	termsUID   string
	timeout    time.Duration
	filterable []string
}

func NewMeilisearchDriver(client meilisearch.ServiceManager, recordsIndex, termsIndex string, timeout time.Duration, filterable []string) *MeilisearchDriver {
	return &MeilisearchDriver{
		client:     client,
		records:    client.Index(recordsIndex),
		terms:      client.Index(termsIndex),
		recordsUID: recordsIndex,
		termsUID:   termsIndex,
		timeout:    timeout,
		filterable: filterable,
	}
}

// Health reports whether the mirror engine is reachable.
func (d *MeilisearchDriver) Health() error {
	if _, err := d.client.Health(); err != nil {
		return &DriverError{Op: "Health", Err: err.Error()}
	}
	return nil
}

// UpsertDocuments replaces documents by ID and waits for the indexing task
// so callers observe completion.
func (d *MeilisearchDriver) UpsertDocuments(ctx context.Context, docs []map[string]interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	task, err := d.records.AddDocuments(docs, nil)
	if err != nil {
		return &DriverError{Op: "UpsertDocuments", Err: err.Error()}
	}
	if err := d.waitForTask(task.TaskUID); err != nil {
		return &DriverError{Op: "UpsertDocuments", Err: err.Error()}
	}
	return nil
}

func (d *MeilisearchDriver) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	task, err := d.records.DeleteDocuments(ids, nil)
	if err != nil {
		return &DriverError{Op: "DeleteDocuments", Err: err.Error()}
	}
	if err := d.waitForTask(task.TaskUID); err != nil {
		return &DriverError{Op: "DeleteDocuments", Err: err.Error()}
	}
	return nil
}

// Search runs one pass against the records index. Ranking scores are always
// requested so callers can merge tier-weighted passes.
func (d *MeilisearchDriver) Search(ctx context.Context, req MirrorSearchRequest) ([]MirrorHitDriver, error) {
	searchRequest := &meilisearch.SearchRequest{
		Query:            req.Query,
		Limit:            int64(req.Limit),
		ShowRankingScore: true,
	}
	if req.Filter != "" {
		searchRequest.Filter = req.Filter
	}
	if len(req.SearchFields) > 0 {
		searchRequest.AttributesToSearchOn = req.SearchFields
	}
	if req.Highlight {
		searchRequest.AttributesToHighlight = []string{"*"}
		searchRequest.HighlightPreTag = req.PreTag
		searchRequest.HighlightPostTag = req.PostTag
	}

	result, err := d.records.Search(req.Query, searchRequest)
	if err != nil {
		return nil, &DriverError{Op: "Search", Err: err.Error()}
	}

	hits := make([]MirrorHitDriver, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hitMap := decodeHit(hit)
		h := MirrorHitDriver{Document: hitMap}
		if score, ok := hitMap["_rankingScore"].(float64); ok {
			h.Score = score
		}
		if formatted, ok := hitMap["_formatted"].(map[string]interface{}); ok {
			h.Formatted = formatted
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// decodeHit unpacks a raw engine hit into plain Go values. Fields that fail
// to decode are dropped rather than failing the whole hit.
func decodeHit(hit meilisearch.Hit) map[string]interface{} {
	doc := make(map[string]interface{}, len(hit))
	for key, raw := range hit {
		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		doc[key] = value
	}
	return doc
}

// UpsertTerms feeds vocabulary terms into the terms index.
func (d *MeilisearchDriver) UpsertTerms(ctx context.Context, docs []TermDoc) error {
	if len(docs) == 0 {
		return nil
	}
	task, err := d.terms.AddDocuments(docs, nil)
	if err != nil {
		return &DriverError{Op: "UpsertTerms", Err: err.Error()}
	}
	if err := d.waitForTask(task.TaskUID); err != nil {
		return &DriverError{Op: "UpsertTerms", Err: err.Error()}
	}
	return nil
}

// SearchTerms asks the engine's typo-tolerant matcher for terms close to
// the query. The ranking score stands in for similarity.
func (d *MeilisearchDriver) SearchTerms(ctx context.Context, term string, limit int) ([]TermHitDriver, error) {
	result, err := d.terms.Search(term, &meilisearch.SearchRequest{
		Query:            term,
		Limit:            int64(limit),
		ShowRankingScore: true,
	})
	if err != nil {
		return nil, &DriverError{Op: "SearchTerms", Err: err.Error()}
	}

	hits := make([]TermHitDriver, 0, len(result.Hits))
	for _, hit := range result.Hits {
		var h TermHitDriver
		if raw, ok := hit["term"]; ok {
			_ = json.Unmarshal(raw, &h.Term)
		}
		if raw, ok := hit["_rankingScore"]; ok {
			_ = json.Unmarshal(raw, &h.Score)
		}
		if h.Term != "" {
			hits = append(hits, h)
		}
	}
	return hits, nil
}

// EnsureIndexes creates both indexes if missing and registers the
// filterable attributes on the records index. Run once at startup.
func (d *MeilisearchDriver) EnsureIndexes(ctx context.Context) error {
	for _, idx := range []struct {
		manager meilisearch.IndexManager
		uid     string
	}{
		{d.records, d.recordsUID},
		{d.terms, d.termsUID},
	} {
		if _, err := idx.manager.FetchInfo(); err == nil {
			continue
		}
		task, err := d.client.CreateIndex(&meilisearch.IndexConfig{Uid: idx.uid, PrimaryKey: "id"})
		if err != nil {
			return &DriverError{Op: "EnsureIndexes", Err: "create index " + idx.uid + ": " + err.Error()}
		}
		if err := d.waitForTask(task.TaskUID); err != nil {
			return &DriverError{Op: "EnsureIndexes", Err: "wait for index " + idx.uid + ": " + err.Error()}
		}
	}

	filterable := make([]interface{}, len(d.filterable))
	for i, field := range d.filterable {
		filterable[i] = field
	}
	task, err := d.records.UpdateFilterableAttributes(&filterable)
	if err != nil {
		return &DriverError{Op: "EnsureIndexes", Err: "filterable attributes: " + err.Error()}
	}
	if err := d.waitForTask(task.TaskUID); err != nil {
		return &DriverError{Op: "EnsureIndexes", Err: "filterable attributes: " + err.Error()}
	}
	return nil
}

func (d *MeilisearchDriver) waitForTask(taskUID int64) error {
	_, err := d.records.WaitForTask(taskUID, d.timeout)
	return err
}

// TermDocID derives a stable document ID for a vocabulary term; the engine
// restricts IDs to alphanumerics, hyphens, and underscores.
func TermDocID(term string) string {
	h := fnv.New64a()
	h.Write([]byte(term))
	return fmt.Sprintf("t%016x", h.Sum64())
}
