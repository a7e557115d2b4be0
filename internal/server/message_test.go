package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmatth/judgement/internal/deck"
	"github.com/kmatth/judgement/internal/game"
	"github.com/kmatth/judgement/internal/randutil"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(MessageTypeBidPlaced, BidPlacedData{Seat: 2, Amount: 8, Next: 3})
	require.NoError(t, err)
	assert.Equal(t, MessageTypeBidPlaced, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	var data BidPlacedData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, BidPlacedData{Seat: 2, Amount: 8, Next: 3}, data)
}

func TestActionErrorCode(t *testing.T) {
	assert.Equal(t, "wrong_turn", actionErrorCode(game.ErrWrongActor))
	assert.Equal(t, "invalid_bid", actionErrorCode(game.ErrInvalidBid))
	assert.Equal(t, "game_paused", actionErrorCode(game.ErrGamePaused))
	assert.Equal(t, "match_not_found", actionErrorCode(game.ErrMatchNotFound))
	assert.Equal(t, "action_failed", actionErrorCode(assert.AnError))
}

func TestSnapshotMatch(t *testing.T) {
	m, err := game.NewMatch("SNAP01", game.Config{RoundCap: 7}, randutil.New(5), nil)
	require.NoError(t, err)

	state := snapshotMatch("SNAP01", m)
	assert.Equal(t, "awaiting_players", state.State)
	assert.Equal(t, -1, state.Acting)
	assert.Empty(t, state.Seats)
	assert.Nil(t, state.Trump)
	assert.Nil(t, state.Chooser)

	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		_, err := m.Join(name, name)
		require.NoError(t, err)
	}
	require.NoError(t, m.BeginBidding())
	require.NoError(t, m.PlaceBid(0, 7))

	state = snapshotMatch("SNAP01", m)
	assert.Equal(t, "in_progress", state.State)
	assert.Equal(t, "bidding", state.Phase)
	assert.Equal(t, 1, state.Round)
	assert.Equal(t, 1, state.Acting)
	assert.Equal(t, 0, state.AdminSeat)
	require.Len(t, state.Seats, 4)
	require.NotNil(t, state.Seats[0].Bid)
	assert.Equal(t, 7, *state.Seats[0].Bid)
	assert.Nil(t, state.Seats[1].Bid)

	// The snapshot never carries hands or valid plays.
	raw, err := json.Marshal(state)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hand")

	// Drive to trump selection to expose chooser and target.
	for state.Phase == "bidding" {
		require.NoError(t, m.PlaceBid(m.Round().Acting(), 7))
		state = snapshotMatch("SNAP01", m)
	}
	assert.Equal(t, "trump_selection", state.Phase)
	require.NotNil(t, state.Chooser)
	assert.Equal(t, 2, *state.Chooser)
	assert.Equal(t, 7, state.Target)

	require.NoError(t, m.SelectTrump(2, deck.Hearts))
	state = snapshotMatch("SNAP01", m)
	require.NotNil(t, state.Trump)
	assert.Equal(t, "hearts", *state.Trump)
}
