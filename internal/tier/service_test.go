package tier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rec           *Record
	missing       bool
	conflictsLeft int
	updates       int
}

func (f *fakeRepo) Get(ctx context.Context, matchID int64) (*Record, error) {
	return f.GetOrCreate(ctx, matchID)
}

func (f *fakeRepo) GetOrCreate(ctx context.Context, matchID int64) (*Record, error) {
	if f.missing {
		return nil, ErrMatchNotFound
	}
	copied := *f.rec
	return &copied, nil
}

func (f *fakeRepo) Update(ctx context.Context, r *Record) error {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return ErrVersionConflict
	}
	copied := *r
	copied.Version++
	f.rec = &copied
	f.updates++
	return nil
}

var serviceNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *service {
	s := NewService(repo).(*service)
	s.now = func() time.Time { return serviceNow }
	return s
}

func freshRecord() *Record {
	return &Record{
		MatchID:        100,
		UserAID:        1,
		UserBID:        2,
		Tier:           TierMatched,
		FirstMatchedAt: serviceNow.Add(-2 * time.Hour),
		Version:        1,
	}
}

func TestGetTierStatusRequiresParticipant(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord()}
	svc := newTestService(repo)

	_, err := svc.GetTierStatus(context.Background(), 100, 999)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestGetTierStatusMissingMatch(t *testing.T) {
	svc := newTestService(&fakeRepo{missing: true})

	_, err := svc.GetTierStatus(context.Background(), 100, 1)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestGetTierStatusFields(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord()}
	svc := newTestService(repo)

	status, err := svc.GetTierStatus(context.Background(), 100, 1)
	require.NoError(t, err)

	assert.Equal(t, TierMatched, status.Tier)
	assert.Equal(t, 0, status.DaysSinceMatched)
	assert.Equal(t, PhotoVisibility{BlurredPhotos: 2}, status.Visibility)
	assert.Equal(t, TierConnected, status.NextTier)
	assert.Len(t, status.NextRequirements, 2)
}

func TestGetTierStatusPromotesOnRead(t *testing.T) {
	rec := freshRecord()
	rec.MessagesExchanged = 60
	rec.FirstMatchedAt = serviceNow.AddDate(0, 0, -10)
	repo := &fakeRepo{rec: rec}
	svc := newTestService(repo)

	status, err := svc.GetTierStatus(context.Background(), 100, 2)
	require.NoError(t, err)

	assert.Equal(t, TierEstablished, status.Tier)
	assert.Equal(t, 1, repo.updates, "promotion persisted")
	assert.Equal(t, TierEstablished, repo.rec.Tier)
}

func TestGetTierStatusIsIdempotent(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord()}
	svc := newTestService(repo)

	first, err := svc.GetTierStatus(context.Background(), 100, 1)
	require.NoError(t, err)
	second, err := svc.GetTierStatus(context.Background(), 100, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, repo.updates, "no write when nothing changed")
}

func TestRecordMessageSentIncrementsAndPromotes(t *testing.T) {
	rec := freshRecord()
	rec.MessagesExchanged = 9
	rec.FirstMatchedAt = serviceNow.AddDate(0, 0, -2)
	repo := &fakeRepo{rec: rec}
	svc := newTestService(repo)

	status, err := svc.RecordMessageSent(context.Background(), 100, 1)
	require.NoError(t, err)

	assert.Equal(t, 10, status.MessagesExchanged)
	assert.Equal(t, TierConnected, status.Tier)
}

func TestRecordMessageSentStaysMatchedBelowThreshold(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord()}
	svc := newTestService(repo)

	status, err := svc.RecordMessageSent(context.Background(), 100, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, status.MessagesExchanged)
	assert.Equal(t, TierMatched, status.Tier)
}

func TestRecordMeetingConfirmedPinsVerified(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord()}
	svc := newTestService(repo)

	status, err := svc.RecordMeetingConfirmed(context.Background(), 100, 1)
	require.NoError(t, err)

	assert.True(t, status.HasMet)
	assert.Equal(t, TierVerified, status.Tier, "meeting confirmation wins at zero messages")
	assert.Equal(t, PhotoVisibility{AllPhotos: true}, status.Visibility)
	assert.Empty(t, string(status.NextTier))
}

func TestMutateRetriesOnVersionConflict(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord(), conflictsLeft: 1}
	svc := newTestService(repo)

	status, err := svc.RecordMessageSent(context.Background(), 100, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, status.MessagesExchanged, "increment applied exactly once")
}

func TestMutateGivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord(), conflictsLeft: 10}
	svc := newTestService(repo)

	_, err := svc.RecordMessageSent(context.Background(), 100, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestMutateRejectsNonParticipant(t *testing.T) {
	repo := &fakeRepo{rec: freshRecord()}
	svc := newTestService(repo)

	_, err := svc.RecordMeetingConfirmed(context.Background(), 100, 42)
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Zero(t, repo.updates)
}
