package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Suits lists all four suits in canonical order.
var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

// String returns the suit symbol for log output.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the lowercase suit name used on the wire.
func (s Suit) Name() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// ParseSuit converts a wire suit name into a Suit.
func ParseSuit(name string) (Suit, error) {
	switch strings.ToLower(name) {
	case "clubs":
		return Clubs, nil
	case "diamonds":
		return Diamonds, nil
	case "hearts":
		return Hearts, nil
	case "spades":
		return Spades, nil
	default:
		return 0, fmt.Errorf("invalid suit %q", name)
	}
}

// MarshalJSON encodes the suit as its lowercase name.
func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name())
}

// UnmarshalJSON decodes a lowercase suit name.
func (s *Suit) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	suit, err := ParseSuit(name)
	if err != nil {
		return err
	}
	*s = suit
	return nil
}

// Rank represents a card rank. The numeric value doubles as the card's
// strength: 2 is weakest and Ace (14) is strongest.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the short rank form for log output.
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return fmt.Sprintf("%d", int(r))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Name returns the lowercase rank name used on the wire.
func (r Rank) Name() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "jack"
	case r == Queen:
		return "queen"
	case r == King:
		return "king"
	case r == Ace:
		return "ace"
	default:
		return "unknown"
	}
}

// ParseRank converts a wire rank name into a Rank.
func ParseRank(name string) (Rank, error) {
	switch strings.ToLower(name) {
	case "2", "3", "4", "5", "6", "7", "8", "9", "10":
		var n int
		_, _ = fmt.Sscanf(name, "%d", &n)
		return Rank(n), nil
	case "jack":
		return Jack, nil
	case "queen":
		return Queen, nil
	case "king":
		return King, nil
	case "ace":
		return Ace, nil
	default:
		return 0, fmt.Errorf("invalid rank %q", name)
	}
}

// MarshalJSON encodes the rank as its lowercase name.
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Name())
}

// UnmarshalJSON decodes a lowercase rank name.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	rank, err := ParseRank(name)
	if err != nil {
		return err
	}
	*r = rank
	return nil
}

// Card is an immutable playing card value. Two cards are equal iff suit
// and rank match, so Card can be compared with == and used as a map key.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard creates a new card.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// Strength returns the card's comparison strength (2..14, ace high).
func (c Card) Strength() int {
	return int(c.Rank)
}

// String returns the short card form (e.g. "A♠").
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}
