package matching

import (
	"context"
	"sort"
	"time"
)

// defaultRerankTopN is the size of the slice that gets the historical
// boost re-rank pass.
const defaultRerankTopN = 20

// Ranker orders scored candidates and applies the secondary boost pass to
// the top slice only, leaving the remainder untouched.
type Ranker struct {
	interactions InteractionSource
	topN         int
	now          func() time.Time
}

func NewRanker(interactions InteractionSource, topN int) *Ranker {
	if topN <= 0 {
		topN = defaultRerankTopN
	}
	return &Ranker{interactions: interactions, topN: topN, now: time.Now}
}

// Rank sorts results by score descending. The sort is stable, so ties
// keep their retrieval order (ascending distance).
func (r *Ranker) Rank(results []CandidateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// Rerank applies the compatibility boost to the top slice and re-sorts
// that slice in place. profiles maps candidate id to the retrieved
// profile, used for the same-venue and new-account boosts. Ledger errors
// cost only the boost, never the result.
func (r *Ranker) Rerank(ctx context.Context, seeker *Profile, results []CandidateResult, profiles map[int64]*Profile) {
	top := results
	if len(top) > r.topN {
		top = top[:r.topN]
	}

	now := r.now()
	for i := range top {
		boost, err := r.interactions.Boost(ctx, seeker.ID, top[i].CandidateID)
		if err != nil {
			boost = 0
		}
		if p := profiles[top[i].CandidateID]; p != nil {
			if sameVenue(seeker, p) {
				boost += 0.2
			}
			if isNewAccount(p, now) {
				boost += 0.1
			}
		}
		if boost > maxBoost {
			boost = maxBoost
		}
		top[i].Boost = boost
		top[i].Score = clampScore(top[i].Score * (1 + boost))
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
}
