package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuit(t *testing.T) {
	tests := []struct {
		in      string
		want    Suit
		wantErr bool
	}{
		{"spades", Spades, false},
		{"hearts", Hearts, false},
		{"diamonds", Diamonds, false},
		{"clubs", Clubs, false},
		{"SPADES", Spades, false},
		{"", 0, true},
		{"swords", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSuit(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		in      string
		want    Rank
		wantErr bool
	}{
		{"2", Two, false},
		{"10", Ten, false},
		{"jack", Jack, false},
		{"QUEEN", Queen, false},
		{"king", King, false},
		{"ace", Ace, false},
		{"1", 0, true},
		{"J", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRank(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankStrengthOrdering(t *testing.T) {
	// Ace high, deuce low; strength is strictly increasing with rank.
	prev := Card{Suit: Spades, Rank: Two}
	for r := Three; r <= Ace; r++ {
		c := Card{Suit: Spades, Rank: r}
		assert.Greater(t, c.Strength(), prev.Strength(), "rank %s", r)
		prev = c
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", Card{Suit: Spades, Rank: Ace}.String())
	assert.Equal(t, "T♦", Card{Suit: Diamonds, Rank: Ten}.String())
	assert.Equal(t, "2♣", Card{Suit: Clubs, Rank: Two}.String())
}
