package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoActionFor(t *testing.T) {
	_, ok := AutoActionFor(nil)
	assert.False(t, ok)

	r := NewRound(1, suitHands())
	_, ok = AutoActionFor(r)
	assert.False(t, ok, "no default action while dealing")

	require.NoError(t, r.BeginBidding())
	action, ok := AutoActionFor(r)
	require.True(t, ok)
	assert.Equal(t, AutoBid, action.Kind)
	assert.Equal(t, r.Acting(), action.Seat)
	assert.Equal(t, MinBid, action.Bid)

	placeBids(t, r, [NumSeats]int{6, 6, 6, 6})
	action, ok = AutoActionFor(r)
	require.True(t, ok)
	assert.Equal(t, AutoTrump, action.Kind)
	assert.Equal(t, r.Chooser(), action.Seat)
	assert.Equal(t, DefaultTrumpSuit, action.Suit)

	require.NoError(t, r.SelectTrump(action.Seat, action.Suit))
	action, ok = AutoActionFor(r)
	require.True(t, ok)
	assert.Equal(t, AutoPlay, action.Kind)
	assert.Equal(t, r.Acting(), action.Seat)
	assert.Contains(t, r.ValidPlays(r.Acting()), action.Card)

	// The default action is always accepted by the entry point it
	// targets, whatever the position.
	_, err := r.PlayCard(action.Seat, action.Card)
	require.NoError(t, err)
}
