package driver

import (
	"encoding/json"
	"testing"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
)

func TestDecodeHit(t *testing.T) {
	hit := meilisearch.Hit{
		"id":            json.RawMessage(`"w1"`),
		"variety":       json.RawMessage(`"Merlot"`),
		"_rankingScore": json.RawMessage(`0.87`),
		"_formatted":    json.RawMessage(`{"variety":"<mark>Merlot</mark>"}`),
	}

	doc := decodeHit(hit)

	assert.Equal(t, "w1", doc["id"])
	assert.Equal(t, "Merlot", doc["variety"])
	assert.Equal(t, 0.87, doc["_rankingScore"])

	formatted, ok := doc["_formatted"].(map[string]interface{})
	assert.True(t, ok, "_formatted should decode as an object")
	assert.Equal(t, "<mark>Merlot</mark>", formatted["variety"])
}

func TestDecodeHit_DropsUndecodableFields(t *testing.T) {
	hit := meilisearch.Hit{
		"id":     json.RawMessage(`"w1"`),
		"broken": json.RawMessage(`{not json`),
	}

	doc := decodeHit(hit)

	assert.Equal(t, "w1", doc["id"])
	assert.NotContains(t, doc, "broken")
}
