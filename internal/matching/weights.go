package matching

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WeightSet holds the per-category scoring weights. Weights must be
// non-negative and sum to 1.0 (within rounding tolerance).
type WeightSet struct {
	Version     string  `json:"version"`
	Physical    float64 `json:"physical"`
	Personality float64 `json:"personality"`
	Sexual      float64 `json:"sexual"`
	Lifestyle   float64 `json:"lifestyle"`
	Location    float64 `json:"location"`
	Activity    float64 `json:"activity"`
}

// DefaultWeights returns the baseline weight set used when no override
// is configured.
func DefaultWeights() WeightSet {
	return WeightSet{
		Version:     "default",
		Physical:    0.25,
		Personality: 0.20,
		Sexual:      0.20,
		Lifestyle:   0.15,
		Location:    0.10,
		Activity:    0.10,
	}
}

// Validate rejects weight sets that could not have come from a sane
// configuration. Called once at load, not per score.
func (w WeightSet) Validate() error {
	values := []float64{w.Physical, w.Personality, w.Sexual, w.Lifestyle, w.Location, w.Activity}
	sum := 0.0
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("weight set %q: negative weight %v", w.Version, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("weight set %q: weights sum to %.3f, want 1.0", w.Version, sum)
	}
	return nil
}

// WeightAudit records one weight-set replacement.
type WeightAudit struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeightStore hands out the active weight set and accepts audited
// replacements. Reads are cheap; scoring takes a value copy per request,
// so an update never mutates an in-flight run.
type WeightStore struct {
	mu      sync.RWMutex
	current WeightSet
	history []WeightAudit
}

func NewWeightStore(initial WeightSet) (*WeightStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &WeightStore{current: initial}, nil
}

// Current returns the active weight set.
func (s *WeightStore) Current() WeightSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the active weight set. The new set gets a fresh version
// id and the change is recorded in the audit history.
func (s *WeightStore) Update(next WeightSet, updatedBy string) (WeightSet, error) {
	if err := next.Validate(); err != nil {
		return WeightSet{}, err
	}
	next.Version = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	s.history = append(s.history, WeightAudit{
		ID:        uuid.NewString(),
		Version:   next.Version,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	})
	return next, nil
}

// History returns a copy of the audit trail, oldest first.
func (s *WeightStore) History() []WeightAudit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WeightAudit, len(s.history))
	copy(out, s.history)
	return out
}
