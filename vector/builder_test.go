package vector

import (
	"math"
	"testing"

	"catalog-search/domain"
	"catalog-search/tokenize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecord(t *testing.T, id string, fields map[string]string) *domain.Record {
	t.Helper()
	r, err := domain.NewRecord(id, fields, nil)
	require.NoError(t, err)
	return r
}

func TestBuild_TierWeights(t *testing.T) {
	record := mustRecord(t, "w1", map[string]string{
		"variety":     "Merlot",
		"description": "velvety merlot",
	})

	vec := Build(record, domain.DefaultFieldWeights(), tokenize.DefaultProfile())

	// "merlot" appears in a tier-A field (1.0) and a tier-D field (0.1)
	entry, ok := vec["merlot"]
	require.True(t, ok)
	assert.InDelta(t, 1.1, entry.Weight, 1e-9)
	assert.Equal(t, []int{0}, entry.Positions["variety"])
	assert.Equal(t, []int{1}, entry.Positions["description"])

	// "velvety" only contributes from the description
	velvet, ok := vec["velveti"]
	require.True(t, ok)
	assert.InDelta(t, 0.1, velvet.Weight, 1e-9)
}

func TestBuild_TermFrequencyScalesWeight(t *testing.T) {
	record := mustRecord(t, "w1", map[string]string{
		"description": "plum plum plum",
	})

	vec := Build(record, domain.DefaultFieldWeights(), tokenize.DefaultProfile())
	entry := vec["plum"]
	assert.InDelta(t, 0.3, entry.Weight, 1e-9)
	assert.Equal(t, []int{0, 1, 2}, entry.Positions["description"])
}

func TestBuild_Deterministic(t *testing.T) {
	record := mustRecord(t, "w1", map[string]string{
		"title":       "Chateau Plum 2019",
		"description": "Ripe plum with chocolate and spice",
	})

	first := Build(record, domain.DefaultFieldWeights(), tokenize.DefaultProfile())
	second := Build(record, domain.DefaultFieldWeights(), tokenize.DefaultProfile())
	assert.True(t, first.Equal(second))
}

func TestBuild_SkipsInvalidUTF8Field(t *testing.T) {
	record := mustRecord(t, "w1", map[string]string{
		"variety":     "Merlot",
		"description": string([]byte{0xff, 0xfe}),
	})

	vec := Build(record, domain.DefaultFieldWeights(), tokenize.DefaultProfile())
	require.Len(t, vec, 1)
	assert.Contains(t, vec, "merlot")
}

func TestBuild_UnweightedFieldsIgnored(t *testing.T) {
	record := mustRecord(t, "w1", map[string]string{
		"variety": "Merlot",
		"notes":   "internal notes never indexed",
	})

	vec := Build(record, domain.DefaultFieldWeights(), tokenize.DefaultProfile())
	assert.NotContains(t, vec, "internal")
	assert.NotContains(t, vec, "note")
}

func TestBuild_EmptyRecord(t *testing.T) {
	record := mustRecord(t, "w1", map[string]string{})
	vec := Build(record, domain.DefaultFieldWeights(), tokenize.DefaultProfile())
	assert.Empty(t, vec)
	assert.Equal(t, 0.0, math.Abs(vec.Norm()))
}
