package matching

import (
	"context"
	"math"
)

// InteractionSource supplies the historical-interaction signal behind the
// compatibility boost. Injected so tests (and offline scoring) can supply
// deterministic fakes instead of hitting the ledger.
type InteractionSource interface {
	// Boost returns a multiplier increment in [0, maxBoost] for the pair.
	Boost(ctx context.Context, seekerID, candidateID int64) (float64, error)
}

// maxBoost caps the compatibility boost at +50%.
const maxBoost = 0.5

// Weight per ledger action. Stronger signals of interest weigh more.
var actionWeights = map[string]float64{
	"profile_view": 0.1,
	"like":         0.3,
	"super_like":   0.5,
	"message_sent": 0.4,
	"match":        0.6,
}

// ledgerSource derives the boost from the pair's interaction history.
type ledgerSource struct {
	repo Repository
}

func NewLedgerSource(repo Repository) InteractionSource {
	return &ledgerSource{repo: repo}
}

// Boost averages the action weights over the pair's ledger rows. No
// history means no boost; a ledger full of strong signals approaches the
// cap.
func (s *ledgerSource) Boost(ctx context.Context, seekerID, candidateID int64) (float64, error) {
	interactions, err := s.repo.ListInteractions(ctx, seekerID, candidateID)
	if err != nil {
		return 0, err
	}
	if len(interactions) == 0 {
		return 0, nil
	}

	signal := 0.0
	for _, it := range interactions {
		signal += actionWeights[it.Action]
	}

	return math.Min(maxBoost, signal/float64(len(interactions))), nil
}
