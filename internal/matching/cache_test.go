package matching

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyCanonical(t *testing.T) {
	f := FilterSet{OnlineOnly: true, MaxDistanceKm: 25, MinAge: 21, MaxAge: 40}

	a := NewKey(7, f)
	b := NewKey(7, f)
	assert.Equal(t, a, b, "equal filters share a key")

	f.MaxDistanceKm = 30
	c := NewKey(7, f)
	assert.NotEqual(t, a.FilterHash, c.FilterHash)

	d := NewKey(8, f)
	assert.Equal(t, c.FilterHash, d.FilterHash)
	assert.NotEqual(t, c.String(), d.String(), "seeker scopes the key")
}

func TestCacheKeyIgnoresForceRefresh(t *testing.T) {
	f := FilterSet{MinAge: 21}
	fresh := f
	fresh.ForceRefresh = true

	assert.Equal(t, NewKey(7, f), NewKey(7, fresh),
		"refresh is a read directive, not cache identity")
}

func TestCacheKeyString(t *testing.T) {
	key := NewKey(42, FilterSet{})
	assert.True(t, strings.HasPrefix(key.String(), "matches:42:"))
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	c := NewNoopCache()
	key := NewKey(1, FilterSet{})

	c.Set(context.Background(), key, []CandidateResult{{CandidateID: 2}})
	_, ok := c.Get(context.Background(), key)
	assert.False(t, ok)
}
