package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
)

func TestSearchFilter_NormalizedCanonicalizes(t *testing.T) {
	filter := SearchFilter{
		City:   "  Austin ",
		Status: "ACTIVE",
		Sort:   " Featured",
	}

	normalized := filter.Normalized()
	assert.Equal(t, "austin", normalized.City)
	assert.Equal(t, "active", normalized.Status)
	assert.Equal(t, "featured", normalized.Sort)
	assert.Equal(t, 1, normalized.Page)
	assert.Equal(t, listinghub.DefaultPageSize, normalized.PageSize)
}

func TestSearchFilter_NormalizedClampsPageSize(t *testing.T) {
	normalized := SearchFilter{Page: 3, PageSize: 500}.Normalized()
	assert.Equal(t, 3, normalized.Page)
	assert.Equal(t, listinghub.MaxPageSize, normalized.PageSize)
}

func TestSearchFilter_FingerprintStableAcrossEquivalents(t *testing.T) {
	first, err := SearchFilter{City: " Austin "}.Fingerprint()
	require.NoError(t, err)

	second, err := SearchFilter{City: "austin", Page: 1, PageSize: listinghub.DefaultPageSize}.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := SearchFilter{City: "dallas"}.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSearchFilter_UpstreamMapping(t *testing.T) {
	query := SearchFilter{
		City:     "austin",
		MinPrice: 100000,
		MaxPrice: 500000,
		Bedrooms: 3,
		Status:   "active",
		Sort:     "recent",
		Page:     2,
		PageSize: 50,
	}.Upstream()

	assert.Equal(t, listinghub.SearchQuery{
		City:     "austin",
		MinPrice: 100000,
		MaxPrice: 500000,
		Bedrooms: 3,
		Status:   "active",
		Sort:     "recent",
		Page:     2,
		PageSize: 50,
	}, query)
}
