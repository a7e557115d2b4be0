package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmatth/judgement/internal/deck"
)

// suitHands deals each seat one entire suit: clubs, diamonds, hearts,
// spades in seat order. Degenerate but fully legal, and it makes trick
// outcomes easy to reason about.
func suitHands() [NumSeats][]deck.Card {
	var hands [NumSeats][]deck.Card
	for i, suit := range deck.Suits {
		for r := deck.Two; r <= deck.Ace; r++ {
			hands[i] = append(hands[i], deck.Card{Suit: suit, Rank: r})
		}
	}
	return hands
}

func biddingRound(t *testing.T, number int) *Round {
	t.Helper()
	r := NewRound(number, suitHands())
	require.NoError(t, r.BeginBidding())
	return r
}

// placeBids submits the four bids in turn order starting from the lead
// seat. bids is indexed by seat, not by turn.
func placeBids(t *testing.T, r *Round, bids [NumSeats]int) {
	t.Helper()
	for i := 0; i < NumSeats; i++ {
		seat := r.Acting()
		require.NoError(t, r.PlaceBid(seat, bids[seat]))
	}
}

func TestRoundLeadRotation(t *testing.T) {
	for number, want := range map[int]Seat{1: 0, 2: 1, 4: 3, 5: 0, 11: 2} {
		r := NewRound(number, suitHands())
		assert.Equal(t, want, r.LeadSeat(), "round %d", number)
		assert.Equal(t, want, r.Acting(), "round %d", number)
	}
}

func TestPlaceBidValidation(t *testing.T) {
	r := NewRound(1, suitHands())

	// Bidding is gated behind BeginBidding.
	assert.ErrorIs(t, r.PlaceBid(0, 6), ErrWrongPhase)
	require.NoError(t, r.BeginBidding())

	assert.ErrorIs(t, r.PlaceBid(1, 6), ErrWrongActor)
	assert.ErrorIs(t, r.PlaceBid(0, 5), ErrInvalidBid)
	assert.ErrorIs(t, r.PlaceBid(0, 14), ErrInvalidBid)

	// Rejections left the round untouched.
	assert.Equal(t, Seat(0), r.Acting())
	_, placed := r.Bids()
	assert.Equal(t, [NumSeats]bool{}, placed)

	require.NoError(t, r.PlaceBid(0, 6))
	assert.Equal(t, Seat(1), r.Acting())
}

func TestBidResolution(t *testing.T) {
	tests := []struct {
		name        string
		bids        [NumSeats]int // indexed by seat
		wantSide    Side
		wantChooser Seat
		wantTarget  int
	}{
		{
			name:        "higher side total wins",
			bids:        [NumSeats]int{6, 8, 7, 9},
			wantSide:    SideB,
			wantChooser: 3,
			wantTarget:  9,
		},
		{
			name:        "side tie goes to side A",
			bids:        [NumSeats]int{7, 7, 7, 7},
			wantSide:    SideA,
			wantChooser: 2,
			wantTarget:  7,
		},
		{
			name:        "within-side tie goes to the second seat",
			bids:        [NumSeats]int{8, 6, 8, 6},
			wantSide:    SideA,
			wantChooser: 2,
			wantTarget:  8,
		},
		{
			name:        "higher individual bid overrides seat order",
			bids:        [NumSeats]int{9, 6, 7, 6},
			wantSide:    SideA,
			wantChooser: 0,
			wantTarget:  9,
		},
		{
			name:        "target is the max bid not the sum",
			bids:        [NumSeats]int{6, 13, 6, 6},
			wantSide:    SideB,
			wantChooser: 1,
			wantTarget:  13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := biddingRound(t, 1)
			placeBids(t, r, tt.bids)

			assert.Equal(t, PhaseTrumpSelection, r.Phase())
			assert.Equal(t, tt.wantChooser, r.Chooser())
			assert.Equal(t, tt.wantSide, r.Chooser().Side())
			assert.Equal(t, tt.wantTarget, r.Target())
			assert.Equal(t, tt.wantChooser, r.Acting(), "chooser acts next")

			// The defender threshold always complements the target.
			assert.Equal(t, maxTrickSum, tt.wantTarget+(maxTrickSum-tt.wantTarget))
		})
	}
}

func TestSelectTrump(t *testing.T) {
	r := biddingRound(t, 1)
	placeBids(t, r, [NumSeats]int{6, 8, 7, 9}) // chooser: seat 3

	assert.ErrorIs(t, r.SelectTrump(1, deck.Hearts), ErrWrongActor)
	require.NoError(t, r.SelectTrump(3, deck.Hearts))

	trump, ok := r.Trump()
	require.True(t, ok)
	assert.Equal(t, deck.Hearts, trump)
	assert.Equal(t, PhasePlaying, r.Phase())
	assert.Equal(t, Seat(3), r.Acting(), "trump chooser leads the first trick")
}

func TestValidPlaysFollowSuit(t *testing.T) {
	hands := [NumSeats][]deck.Card{
		{card(deck.Hearts, deck.Ace), card(deck.Clubs, deck.Two)},
		{card(deck.Hearts, deck.Three), card(deck.Hearts, deck.Four), card(deck.Spades, deck.Nine)},
		{card(deck.Clubs, deck.King), card(deck.Diamonds, deck.Five)},
		{card(deck.Spades, deck.Two)},
	}
	r := NewRound(1, hands)
	require.NoError(t, r.BeginBidding())
	placeBids(t, r, [NumSeats]int{6, 6, 6, 6}) // chooser: seat 2
	require.NoError(t, r.SelectTrump(2, deck.Spades))

	// Leading: whole hand is playable.
	assert.ElementsMatch(t, hands[2], r.ValidPlays(2))
	assert.Nil(t, r.ValidPlays(0), "only the acting seat has valid plays")

	_, err := r.PlayCard(2, card(deck.Clubs, deck.King))
	require.NoError(t, err)

	// Seat 3 has no clubs: anything goes.
	assert.ElementsMatch(t, []deck.Card{card(deck.Spades, deck.Two)}, r.ValidPlays(3))
	_, err = r.PlayCard(3, card(deck.Spades, deck.Two))
	require.NoError(t, err)

	// Seat 0 holds a club and must follow.
	assert.ElementsMatch(t, []deck.Card{card(deck.Clubs, deck.Two)}, r.ValidPlays(0))
	_, err = r.PlayCard(0, card(deck.Hearts, deck.Ace))
	assert.ErrorIs(t, err, ErrInvalidPlay)
	_, err = r.PlayCard(0, card(deck.Diamonds, deck.Five))
	assert.ErrorIs(t, err, ErrNotHeld)
	_, err = r.PlayCard(0, card(deck.Clubs, deck.Two))
	require.NoError(t, err)
}

func TestPlayCardValidation(t *testing.T) {
	r := biddingRound(t, 1)
	placeBids(t, r, [NumSeats]int{6, 6, 6, 6})
	require.NoError(t, r.SelectTrump(2, deck.Spades))

	_, err := r.PlayCard(0, card(deck.Clubs, deck.Ace))
	assert.ErrorIs(t, err, ErrWrongActor)
	_, err = r.PlayCard(2, card(deck.Clubs, deck.Ace))
	assert.ErrorIs(t, err, ErrNotHeld)

	assert.Equal(t, deck.Size, r.CardCount())
}

func TestRoundEarlyTermination(t *testing.T) {
	// One suit per seat: seat 3 holds every spade. With spades trump the
	// defenders (side B) take every trick and the round ends the moment
	// they reach 14-6=8 tricks, hands still non-empty.
	r := biddingRound(t, 1)
	placeBids(t, r, [NumSeats]int{6, 6, 6, 6}) // chooser: seat 2, target 6
	require.NoError(t, r.SelectTrump(2, deck.Spades))

	trickCount := 0
	for r.Phase() == PhasePlaying {
		plays := r.ValidPlays(r.Acting())
		require.NotEmpty(t, plays)
		result, err := r.PlayCard(r.Acting(), plays[0])
		require.NoError(t, err)
		if result != nil {
			trickCount++
			assert.Equal(t, Seat(3), result.Winner, "trump holder wins every trick")
		}
		assert.Equal(t, deck.Size, r.CardCount(), "no card appears or vanishes")
	}

	assert.Equal(t, 8, trickCount)
	outcome, ok := r.Outcome()
	require.True(t, ok)
	assert.Equal(t, SideB, outcome.Winner)
	assert.Equal(t, SideA, outcome.BidWinner)
	assert.Equal(t, [2]int{0, 8}, outcome.Tricks)
	assert.Equal(t, [NumSeats]int{0, 0, 0, 8}, outcome.SeatTricks)
	assert.Len(t, r.Hand(0), deck.HandSize-8, "round ended with cards in hand")

	// The round is sealed.
	_, err := r.PlayCard(3, card(deck.Spades, deck.Ace))
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestBidSideWinsOnTarget(t *testing.T) {
	// Give the chooser's seat the spades and make its side the bidders:
	// seat 2 bids highest for side A, picks spades, takes tricks itself.
	hands := suitHands()
	hands[2], hands[3] = hands[3], hands[2] // seat 2: spades, seat 3: hearts

	r := NewRound(1, hands)
	require.NoError(t, r.BeginBidding())
	placeBids(t, r, [NumSeats]int{6, 6, 9, 6}) // side A 15 vs side B 12
	require.Equal(t, Seat(2), r.Chooser())
	require.NoError(t, r.SelectTrump(2, deck.Spades))

	for r.Phase() == PhasePlaying {
		plays := r.ValidPlays(r.Acting())
		_, err := r.PlayCard(r.Acting(), plays[0])
		require.NoError(t, err)
	}

	outcome, ok := r.Outcome()
	require.True(t, ok)
	assert.Equal(t, SideA, outcome.Winner)
	assert.Equal(t, 9, outcome.Target)
	assert.Equal(t, 9, outcome.Tricks[SideA], "ends exactly on the target")
}
