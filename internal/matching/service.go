package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// defaultMinScore is the threshold applied when the caller opts into
	// minimum-score filtering.
	defaultMinScore = 30.0

	// defaultScoreWorkers bounds the scoring fan-out per request.
	defaultScoreWorkers = 8
)

// Service is the match engine's public surface.
type Service interface {
	// GetMatches returns the seeker's ranked candidate list, at most limit
	// entries. Degrades to an empty list on missing profiles or retrieval
	// failure rather than erroring.
	GetMatches(ctx context.Context, seekerID int64, limit int, filters FilterSet) ([]CandidateResult, error)

	// GetCompatibility scores a single pair on demand, bypassing the cache.
	GetCompatibility(ctx context.Context, seekerID, candidateID int64) (*CandidateResult, error)
}

type service struct {
	repo      Repository
	retriever *Retriever
	weights   *WeightStore
	ranker    *Ranker
	cache     Cache
	workers   int
	minScore  float64
	now       func() time.Time
}

// ServiceConfig carries the tunables main wires from the environment.
type ServiceConfig struct {
	PoolSize   int
	RerankTopN int
	Workers    int
	MinScore   float64
}

func NewService(repo Repository, weights *WeightStore, cache Cache, interactions InteractionSource, cfg ServiceConfig) Service {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultScoreWorkers
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = defaultMinScore
	}
	return &service{
		repo:      repo,
		retriever: NewRetriever(repo, cfg.PoolSize),
		weights:   weights,
		ranker:    NewRanker(interactions, cfg.RerankTopN),
		cache:     cache,
		workers:   cfg.Workers,
		minScore:  cfg.MinScore,
		now:       time.Now,
	}
}

func (s *service) GetMatches(ctx context.Context, seekerID int64, limit int, filters FilterSet) ([]CandidateResult, error) {
	seeker, err := s.repo.GetProfile(ctx, seekerID)
	if errors.Is(err, ErrProfileNotFound) {
		log.Printf("matching: seeker %d not found, returning empty list", seekerID)
		matchRequestsTotal.WithLabelValues("matches", "empty").Inc()
		return []CandidateResult{}, nil
	}
	if err != nil {
		matchRequestsTotal.WithLabelValues("matches", "error").Inc()
		return nil, fmt.Errorf("load seeker: %w", err)
	}

	key := NewKey(seekerID, filters)
	if filters.ForceRefresh {
		cacheLookupsTotal.WithLabelValues("bypass").Inc()
	} else if cached, ok := s.cache.Get(ctx, key); ok {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		matchRequestsTotal.WithLabelValues("matches", "ok").Inc()
		return truncate(cached, limit), nil
	} else {
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	candidates, err := s.retriever.Candidates(ctx, seeker, filters)
	if err != nil {
		log.Printf("matching: retrieval for seeker %d: %v", seekerID, err)
		retrievalFailuresTotal.Inc()
		matchRequestsTotal.WithLabelValues("matches", "empty").Inc()
		return []CandidateResult{}, nil
	}

	eligible := candidates[:0]
	for _, c := range candidates {
		if PassesDealbreakers(seeker, c.Profile) {
			eligible = append(eligible, c)
		}
	}

	results, profiles := s.scoreAll(ctx, seeker, eligible)

	if filters.ApplyMinScore {
		kept := results[:0]
		for _, r := range results {
			if r.Score >= s.minScore {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	s.ranker.Rank(results)
	s.ranker.Rerank(ctx, seeker, results, profiles)

	s.cache.Set(ctx, key, results)

	matchRequestsTotal.WithLabelValues("matches", "ok").Inc()
	return truncate(results, limit), nil
}

func (s *service) GetCompatibility(ctx context.Context, seekerID, candidateID int64) (*CandidateResult, error) {
	seeker, err := s.repo.GetProfile(ctx, seekerID)
	if err != nil {
		matchRequestsTotal.WithLabelValues("compatibility", "error").Inc()
		return nil, fmt.Errorf("load seeker: %w", err)
	}
	candidate, err := s.repo.GetProfile(ctx, candidateID)
	if err != nil {
		matchRequestsTotal.WithLabelValues("compatibility", "error").Inc()
		return nil, fmt.Errorf("load candidate: %w", err)
	}

	distance := -1.0
	if seeker.HasCoordinates() && candidate.HasCoordinates() {
		distance = haversineKm(*seeker.Latitude, *seeker.Longitude, *candidate.Latitude, *candidate.Longitude)
	}

	scorer := NewScorer(s.weights.Current())
	result := scorer.Score(seeker, candidate, distance)

	candidatesScoredTotal.Inc()
	compatibilityScores.Observe(result.Score)
	matchRequestsTotal.WithLabelValues("compatibility", "ok").Inc()
	return &result, nil
}

// scoreAll fans the candidate pool across a bounded worker group. Each
// slot in the output slice belongs to one goroutine, so no mutex is
// needed; the profiles map is built up front for the re-rank pass.
func (s *service) scoreAll(ctx context.Context, seeker *Profile, candidates []Candidate) ([]CandidateResult, map[int64]*Profile) {
	scorer := NewScorer(s.weights.Current())

	results := make([]CandidateResult, len(candidates))
	profiles := make(map[int64]*Profile, len(candidates))
	for _, c := range candidates {
		profiles[c.Profile.ID] = c.Profile
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			results[i] = scorer.Score(seeker, c.Profile, c.DistanceKm)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	candidatesScoredTotal.Add(float64(len(results)))
	for _, r := range results {
		compatibilityScores.Observe(r.Score)
	}
	return results, profiles
}

func truncate(results []CandidateResult, limit int) []CandidateResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
