package game

import "github.com/kmatth/judgement/internal/deck"

// PlayedCard is a card together with the seat that played it.
type PlayedCard struct {
	Seat Seat      `json:"seat"`
	Card deck.Card `json:"card"`
}

// Trick is an ordered sequence of at most four plays. The first play's
// suit is the lead suit for the trick.
type Trick struct {
	plays []PlayedCard
}

// Len returns the number of plays so far.
func (t *Trick) Len() int {
	return len(t.plays)
}

// Complete reports whether all four seats have played.
func (t *Trick) Complete() bool {
	return len(t.plays) == NumSeats
}

// LeadSuit returns the suit of the first play. ok is false for an empty
// trick.
func (t *Trick) LeadSuit() (deck.Suit, bool) {
	if len(t.plays) == 0 {
		return 0, false
	}
	return t.plays[0].Card.Suit, true
}

// Plays returns a copy of the plays in order.
func (t *Trick) Plays() []PlayedCard {
	out := make([]PlayedCard, len(t.plays))
	copy(out, t.plays)
	return out
}

func (t *Trick) add(seat Seat, card deck.Card) {
	t.plays = append(t.plays, PlayedCard{Seat: seat, Card: card})
}

func (t *Trick) reset() {
	t.plays = t.plays[:0]
}

// Winner returns the seat holding the highest-ranked play under
// trump-then-lead precedence. The trick must have at least one play.
// The running-best reduction is order-independent: beats() is a strict
// total preorder over the plays of one trick, and no two cards tie.
func (t *Trick) Winner(trump deck.Suit) Seat {
	lead := t.plays[0].Card.Suit
	best := t.plays[0]
	for _, play := range t.plays[1:] {
		if beats(play.Card, best.Card, trump, lead) {
			best = play
		}
	}
	return best.Seat
}

// beats reports whether the challenger outranks the current best card.
//
//  1. A trump card always beats a non-trump card.
//  2. Between two cards of the same suit, higher strength wins.
//  3. A lead-suit card beats a card that is neither trump nor lead.
//  4. Two off-suit cards never override each other; the earlier play stands.
func beats(challenger, best deck.Card, trump, lead deck.Suit) bool {
	if challenger.Suit == trump && best.Suit != trump {
		return true
	}
	if best.Suit == trump && challenger.Suit != trump {
		return false
	}
	if challenger.Suit == best.Suit {
		return challenger.Strength() > best.Strength()
	}
	if challenger.Suit == lead && best.Suit != lead {
		return true
	}
	return false
}
