package domain

import "fmt"

// ValidationError reports malformed caller input (unknown filter field,
// out-of-range limit). Never retried automatically.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IndexUnavailableError means the mirror engine could not be reached.
// Queries against the mirror fail fast with this; callers fall back to the
// primary index or report degraded search.
type IndexUnavailableError struct {
	Op  string
	Err string
}

func (e *IndexUnavailableError) Error() string {
	return e.Op + ": mirror index unavailable: " + e.Err
}

// RepositoryError represents an error from the repository layer.
type RepositoryError struct {
	Op  string
	Err string
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err
}

// SearchEngineError represents an error from the search engine layer.
type SearchEngineError struct {
	Op  string
	Err string
}

func (e *SearchEngineError) Error() string {
	return e.Op + ": " + e.Err
}

// DriverError represents an error from the driver layer.
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}

// BulkResult reports partial-failure bulk outcomes: a single record's
// failure never aborts the stream.
type BulkResult struct {
	Succeeded int
	Failed    int
	FailedIDs []string
}

func (r *BulkResult) Merge(o BulkResult) {
	r.Succeeded += o.Succeeded
	r.Failed += o.Failed
	r.FailedIDs = append(r.FailedIDs, o.FailedIDs...)
}
