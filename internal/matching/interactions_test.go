package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerBoostAveragesActionWeights(t *testing.T) {
	repo := &fakeRepo{interactions: []Interaction{
		{UserID: 1, TargetUserID: 2, Action: "like"},
		{UserID: 2, TargetUserID: 1, Action: "match"},
	}}
	src := NewLedgerSource(repo)

	boost, err := src.Boost(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.45, boost, 0.001)
}

func TestLedgerBoostEmptyHistory(t *testing.T) {
	src := NewLedgerSource(&fakeRepo{})

	boost, err := src.Boost(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Zero(t, boost)
}

func TestLedgerBoostCapped(t *testing.T) {
	repo := &fakeRepo{interactions: []Interaction{
		{Action: "match"},
		{Action: "match"},
		{Action: "match"},
	}}
	src := NewLedgerSource(repo)

	boost, err := src.Boost(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, maxBoost, boost)
}

func TestLedgerBoostIgnoresUnknownActions(t *testing.T) {
	repo := &fakeRepo{interactions: []Interaction{
		{Action: "like"},
		{Action: "poked"}, // unknown, weighs zero but still counts
	}}
	src := NewLedgerSource(repo)

	boost, err := src.Boost(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, boost, 0.001)
}
