package tier

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotParticipant = errors.New("user is not part of this match")

// conflictRetries bounds the optimistic-write retry loop.
const conflictRetries = 3

type Service interface {
	// GetTierStatus returns the progression state as seen by a participant.
	// Callers outside the pair get ErrNotParticipant.
	GetTierStatus(ctx context.Context, matchID, viewerID int64) (*Status, error)

	// RecordMessageSent bumps the exchanged-message counter and applies any
	// tier transition it unlocks.
	RecordMessageSent(ctx context.Context, matchID, senderID int64) (*Status, error)

	// RecordMeetingConfirmed marks the pair as having met in person. One
	// confirmation from either side pins the match at verified.
	RecordMeetingConfirmed(ctx context.Context, matchID, userID int64) (*Status, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) GetTierStatus(ctx context.Context, matchID, viewerID int64) (*Status, error) {
	rec, err := s.repo.GetOrCreate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !rec.Participates(viewerID) {
		return nil, ErrNotParticipant
	}

	// Time-based transitions happen on read; no scheduler needed.
	if updated, err := s.reconcile(ctx, rec); err == nil && updated != nil {
		rec = updated
	}

	return s.status(rec), nil
}

func (s *service) RecordMessageSent(ctx context.Context, matchID, senderID int64) (*Status, error) {
	rec, err := s.mutate(ctx, matchID, senderID, func(r *Record) {
		r.MessagesExchanged++
		now := s.now()
		r.LastMessageAt = &now
	})
	if err != nil {
		return nil, err
	}
	return s.status(rec), nil
}

func (s *service) RecordMeetingConfirmed(ctx context.Context, matchID, userID int64) (*Status, error) {
	rec, err := s.mutate(ctx, matchID, userID, func(r *Record) {
		r.HasMet = true
		if r.MetAt == nil {
			now := s.now()
			r.MetAt = &now
		}
	})
	if err != nil {
		return nil, err
	}
	return s.status(rec), nil
}

// mutate applies the change under optimistic versioning, recomputing the
// tier from the mutated state. Conflicts re-read and retry so concurrent
// counters never lose increments.
func (s *service) mutate(ctx context.Context, matchID, userID int64, apply func(*Record)) (*Record, error) {
	for attempt := 0; attempt < conflictRetries; attempt++ {
		rec, err := s.repo.GetOrCreate(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if !rec.Participates(userID) {
			return nil, ErrNotParticipant
		}

		apply(rec)
		s.applyTier(rec)

		err = s.repo.Update(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("update match %d: %w", matchID, ErrVersionConflict)
}

// reconcile promotes a record whose time threshold was crossed since the
// last write. Returns nil when nothing changed; conflicts are ignored
// since the competing writer already reconciled.
func (s *service) reconcile(ctx context.Context, rec *Record) (*Record, error) {
	before := rec.Tier
	s.applyTier(rec)
	if rec.Tier == before {
		return nil, nil
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// applyTier recomputes the tier, never demoting. The calculation is pure;
// monotonicity is enforced here.
func (s *service) applyTier(rec *Record) {
	days := DaysSince(rec.FirstMatchedAt, s.now())
	next := Calculate(rec.MessagesExchanged, days, rec.HasMet)
	if next.Rank() > rec.Tier.Rank() {
		tierUpgradesTotal.WithLabelValues(string(next)).Inc()
		rec.Tier = next
	}
}

func (s *service) status(rec *Record) *Status {
	now := s.now()
	st := &Status{
		MatchID:           rec.MatchID,
		Tier:              rec.Tier,
		MessagesExchanged: rec.MessagesExchanged,
		DaysSinceMatched:  DaysSince(rec.FirstMatchedAt, now),
		HasMet:            rec.HasMet,
		Visibility:        PolicyFor(rec.Tier),
	}
	st.NextTier, st.NextRequirements = NextRequirements(rec, now)
	return st
}
