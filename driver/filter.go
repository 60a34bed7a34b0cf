package driver

import (
	"fmt"
	"sort"
	"strings"
)

// escapeMeilisearchValue escapes special characters in Meilisearch filter
// values.
func escapeMeilisearchValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// BuildSecureFilter creates a Meilisearch filter expression from equality
// predicates. Fields are ordered so the same filters always produce the
// same expression.
func BuildSecureFilter(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}

	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	clauses := make([]string, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, fmt.Sprintf("%s = \"%s\"", field, escapeMeilisearchValue(filters[field])))
	}
	return strings.Join(clauses, " AND ")
}
