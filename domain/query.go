package domain

import "fmt"

// Source selects which index answers a query.
type Source string

const (
	SourcePrimary Source = "primary"
	SourceMirror  Source = "mirror"
)

const (
	maxQueryLen  = 1000
	maxLimit     = 100
	defaultLimit = 20
)

// Query is a validated search request: one free-text phrase, equality
// filters, and a result-source selector. Build one with QueryBuilder; the
// zero value is not validated.
type Query struct {
	Text      string
	Filters   map[string]string
	Limit     int
	Highlight bool
	Source    Source
}

// QueryBuilder enumerates the legal query operations and validates them
// before dispatch.
type QueryBuilder struct {
	q Query
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{q: Query{
		Filters: map[string]string{},
		Limit:   defaultLimit,
		Source:  SourcePrimary,
	}}
}

func (b *QueryBuilder) WithText(text string) *QueryBuilder {
	b.q.Text = text
	return b
}

// WithFilter adds an equality predicate on a filter attribute.
func (b *QueryBuilder) WithFilter(field, value string) *QueryBuilder {
	b.q.Filters[field] = value
	return b
}

func (b *QueryBuilder) WithLimit(limit int) *QueryBuilder {
	b.q.Limit = limit
	return b
}

func (b *QueryBuilder) WithHighlight(enabled bool) *QueryBuilder {
	b.q.Highlight = enabled
	return b
}

func (b *QueryBuilder) WithSource(source Source) *QueryBuilder {
	b.q.Source = source
	return b
}

// Build validates the accumulated query. A query with filters and empty
// text is legal: it matches every record passing the filters.
func (b *QueryBuilder) Build() (Query, error) {
	if len(b.q.Text) > maxQueryLen {
		return Query{}, &ValidationError{Field: "text", Msg: fmt.Sprintf("query too long: maximum %d characters, got %d", maxQueryLen, len(b.q.Text))}
	}
	if b.q.Limit <= 0 {
		return Query{}, &ValidationError{Field: "limit", Msg: fmt.Sprintf("limit must be positive: got %d", b.q.Limit)}
	}
	if b.q.Limit > maxLimit {
		return Query{}, &ValidationError{Field: "limit", Msg: fmt.Sprintf("limit too large: maximum %d, got %d", maxLimit, b.q.Limit)}
	}
	if b.q.Source != SourcePrimary && b.q.Source != SourceMirror {
		return Query{}, &ValidationError{Field: "source", Msg: fmt.Sprintf("unknown result source %q", b.q.Source)}
	}
	if err := ValidateFilters(b.q.Filters); err != nil {
		return Query{}, err
	}
	return b.q, nil
}
