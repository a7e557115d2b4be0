package deck

import rand "math/rand/v2"

const (
	// Size is the number of cards in a full deck.
	Size = 52

	// NumHands is the number of hands a deal produces.
	NumHands = 4

	// HandSize is the number of cards dealt to each hand.
	HandSize = Size / NumHands
)

// Deck is a standard 52-card deck. Randomness is injected so shuffles are
// reproducible from a seed.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New builds a full deck in canonical order, one card per (suit, rank) pair.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// Shuffle permutes the deck with a Fisher-Yates shuffle, which is uniform
// over all 52! orderings given a uniform rng.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Cards returns the current deck order. The slice is a copy.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// DealHands deals the whole deck round-robin into four 13-card hands:
// card i goes to hand i mod 4. Given a fixed deck order the result is
// deterministic. The deck is consumed.
func (d *Deck) DealHands() [NumHands][]Card {
	var hands [NumHands][]Card
	for i := range hands {
		hands[i] = make([]Card, 0, HandSize)
	}
	for i, card := range d.cards {
		hands[i%NumHands] = append(hands[i%NumHands], card)
	}
	d.cards = d.cards[:0]
	return hands
}
