package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubInteractions struct {
	boosts map[int64]float64
	err    error
}

func (s *stubInteractions) Boost(ctx context.Context, seekerID, candidateID int64) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.boosts[candidateID], nil
}

func TestRankSortsDescendingStable(t *testing.T) {
	r := NewRanker(&stubInteractions{}, 20)
	results := []CandidateResult{
		{CandidateID: 1, Score: 10},
		{CandidateID: 2, Score: 50},
		{CandidateID: 3, Score: 30},
		{CandidateID: 4, Score: 50},
	}

	r.Rank(results)

	assert.Equal(t, int64(2), results[0].CandidateID)
	assert.Equal(t, int64(4), results[1].CandidateID, "ties keep input order")
	assert.Equal(t, int64(3), results[2].CandidateID)
	assert.Equal(t, int64(1), results[3].CandidateID)
}

func TestRerankOnlyTouchesTopN(t *testing.T) {
	r := NewRanker(&stubInteractions{boosts: map[int64]float64{1: 0.5, 2: 0.5}}, 1)
	r.now = func() time.Time { return testNow }

	seeker := blankProfile(10)
	results := []CandidateResult{
		{CandidateID: 1, Score: 60},
		{CandidateID: 2, Score: 50},
	}
	profiles := map[int64]*Profile{1: blankProfile(1), 2: blankProfile(2)}

	r.Rerank(context.Background(), seeker, results, profiles)

	assert.Equal(t, 90.0, results[0].Score, "top entry boosted by 50%")
	assert.Equal(t, 0.5, results[0].Boost)
	assert.Equal(t, 50.0, results[1].Score, "below top N untouched")
	assert.Zero(t, results[1].Boost)
}

func TestRerankBoostIsCapped(t *testing.T) {
	venue := int64(9)
	r := NewRanker(&stubInteractions{boosts: map[int64]float64{1: 0.5}}, 5)
	r.now = func() time.Time { return testNow }

	seeker := blankProfile(10)
	seeker.CurrentVenueID = &venue

	candidate := blankProfile(1)
	candidate.CurrentVenueID = &venue
	candidate.CreatedAt = testNow.Add(-time.Hour)

	results := []CandidateResult{{CandidateID: 1, Score: 40}}

	r.Rerank(context.Background(), seeker, results, map[int64]*Profile{1: candidate})

	// ledger 0.5 + venue 0.2 + new account 0.1 still caps at 0.5
	assert.Equal(t, 0.5, results[0].Boost)
	assert.Equal(t, 60.0, results[0].Score)
}

func TestRerankSurvivesLedgerFailure(t *testing.T) {
	r := NewRanker(&stubInteractions{err: errors.New("ledger down")}, 5)
	r.now = func() time.Time { return testNow }

	results := []CandidateResult{{CandidateID: 1, Score: 40}}
	r.Rerank(context.Background(), blankProfile(10), results, map[int64]*Profile{1: blankProfile(1)})

	assert.Equal(t, 40.0, results[0].Score)
	assert.Zero(t, results[0].Boost)
}

func TestRerankClampsAtHundred(t *testing.T) {
	r := NewRanker(&stubInteractions{boosts: map[int64]float64{1: 0.5}}, 5)
	r.now = func() time.Time { return testNow }

	results := []CandidateResult{{CandidateID: 1, Score: 95}}
	r.Rerank(context.Background(), blankProfile(10), results, map[int64]*Profile{1: blankProfile(1)})

	assert.Equal(t, 100.0, results[0].Score)
}
