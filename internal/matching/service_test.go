package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	store map[string][]CandidateResult
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]CandidateResult)}
}

func (c *fakeCache) Get(ctx context.Context, key Key) ([]CandidateResult, bool) {
	results, ok := c.store[key.String()]
	return results, ok
}

func (c *fakeCache) Set(ctx context.Context, key Key, results []CandidateResult) {
	c.store[key.String()] = results
}

func seekerProfile(id int64) *Profile {
	p := blankProfile(id)
	p.Age = 30
	p.Gender = GenderMan
	p.WantAgeFrom = 18
	p.WantAgeTo = 99
	p.WantGenders[GenderWoman] = true
	return p
}

func candidateProfile(id int64) *Profile {
	p := blankProfile(id)
	p.Age = 28
	p.Gender = GenderWoman
	p.WantAgeFrom = 18
	p.WantAgeTo = 99
	p.WantGenders[GenderMan] = true
	return p
}

func newTestService(repo Repository, cache Cache, weights WeightSet) Service {
	store, err := NewWeightStore(weights)
	if err != nil {
		panic(err)
	}
	return NewService(repo, store, cache, &stubInteractions{}, ServiceConfig{
		PoolSize:   50,
		RerankTopN: 10,
		Workers:    4,
	})
}

func TestGetMatchesUnknownSeekerReturnsEmpty(t *testing.T) {
	repo := &fakeRepo{profiles: map[int64]*Profile{}}
	svc := newTestService(repo, NewNoopCache(), DefaultWeights())

	results, err := svc.GetMatches(context.Background(), 99, 10, FilterSet{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetMatchesRetrievalFailureDegrades(t *testing.T) {
	seeker := seekerProfile(1)
	repo := &fakeRepo{
		profiles: map[int64]*Profile{1: seeker},
		candErr:  errors.New("db down"),
	}
	svc := newTestService(repo, NewNoopCache(), DefaultWeights())

	results, err := svc.GetMatches(context.Background(), 1, 10, FilterSet{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetMatchesFiltersDealbreakers(t *testing.T) {
	seeker := seekerProfile(1)
	ok := candidateProfile(2)
	wrongGender := candidateProfile(3)
	wrongGender.Gender = GenderCouple

	repo := &fakeRepo{
		profiles:   map[int64]*Profile{1: seeker},
		candidates: []*Profile{ok, wrongGender},
	}
	svc := newTestService(repo, NewNoopCache(), DefaultWeights())

	results, err := svc.GetMatches(context.Background(), 1, 10, FilterSet{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), results[0].CandidateID)
}

func TestGetMatchesHonorsLimit(t *testing.T) {
	seeker := seekerProfile(1)
	repo := &fakeRepo{
		profiles:   map[int64]*Profile{1: seeker},
		candidates: []*Profile{candidateProfile(2), candidateProfile(3), candidateProfile(4)},
	}
	svc := newTestService(repo, NewNoopCache(), DefaultWeights())

	results, err := svc.GetMatches(context.Background(), 1, 2, FilterSet{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestGetMatchesMinScoreThreshold(t *testing.T) {
	lifestyleOnly := WeightSet{Version: "test", Lifestyle: 1.0}

	seeker := seekerProfile(1)
	seeker.Lifestyle = LifestyleFlags{
		Smokes: true, HeavyDrinker: true, Marijuana: true,
		OtherDrugs: true, Poly: true, MarriedDiscreet: true,
	}

	tolerant := candidateProfile(2)
	strict := candidateProfile(3)
	strict.RejectLifestyle = seeker.Lifestyle

	repo := &fakeRepo{
		profiles:   map[int64]*Profile{1: seeker},
		candidates: []*Profile{tolerant, strict},
	}
	svc := newTestService(repo, NewNoopCache(), lifestyleOnly)

	all, err := svc.GetMatches(context.Background(), 1, 10, FilterSet{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.GetMatches(context.Background(), 1, 10, FilterSet{ApplyMinScore: true})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(2), filtered[0].CandidateID)
}

func TestGetMatchesUsesCache(t *testing.T) {
	seeker := seekerProfile(1)
	repo := &fakeRepo{
		profiles:   map[int64]*Profile{1: seeker},
		candidates: []*Profile{candidateProfile(2)},
	}
	cache := newFakeCache()
	svc := newTestService(repo, cache, DefaultWeights())

	first, err := svc.GetMatches(context.Background(), 1, 10, FilterSet{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Retrieval now fails; the cached list must still be served.
	repo.candErr = errors.New("db down")

	second, err := svc.GetMatches(context.Background(), 1, 10, FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// ForceRefresh bypasses the cache and hits the failing retrieval.
	refreshed, err := svc.GetMatches(context.Background(), 1, 10, FilterSet{ForceRefresh: true})
	require.NoError(t, err)
	assert.Empty(t, refreshed)
}

func TestGetCompatibility(t *testing.T) {
	seeker := seekerProfile(1)
	candidate := candidateProfile(2)
	repo := &fakeRepo{profiles: map[int64]*Profile{1: seeker, 2: candidate}}
	svc := newTestService(repo, NewNoopCache(), DefaultWeights())

	result, err := svc.GetCompatibility(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.CandidateID)
	assert.Len(t, result.SubScores, 6)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 100.0)
}

func TestGetCompatibilityMissingProfile(t *testing.T) {
	repo := &fakeRepo{profiles: map[int64]*Profile{1: seekerProfile(1)}}
	svc := newTestService(repo, NewNoopCache(), DefaultWeights())

	_, err := svc.GetCompatibility(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
