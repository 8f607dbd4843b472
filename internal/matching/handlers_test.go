package matching

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiltersDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/matches", nil)

	dto, f, err := parseFilters(r)
	require.NoError(t, err)
	assert.Zero(t, dto.Limit)
	assert.Equal(t, FilterSet{}, f)
}

func TestParseFiltersFullQuery(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/matches?limit=5&online_only=true&new_users=true&min_score=true&refresh=true&max_distance=25.5&min_age=21&max_age=40", nil)

	dto, f, err := parseFilters(r)
	require.NoError(t, err)

	assert.Equal(t, 5, dto.Limit)
	assert.True(t, f.OnlineOnly)
	assert.True(t, f.NewUsersOnly)
	assert.True(t, f.ApplyMinScore)
	assert.True(t, f.ForceRefresh)
	assert.Equal(t, 25.5, f.MaxDistanceKm)
	assert.Equal(t, 21, f.MinAge)
	assert.Equal(t, 40, f.MaxAge)
}

func TestParseFiltersValidation(t *testing.T) {
	cases := []string{
		"limit=zero",
		"limit=500",
		"min_age=12",
		"max_distance=-5",
		"min_age=40&max_age=21",
	}
	for _, qs := range cases {
		r := httptest.NewRequest("GET", "/api/v1/matches?"+qs, nil)
		_, _, err := parseFilters(r)
		assert.Error(t, err, qs)
	}
}
