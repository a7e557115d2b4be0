package game

import "github.com/kmatth/judgement/internal/deck"

// DefaultTrumpSuit is chosen for a seat that never picks one.
const DefaultTrumpSuit = deck.Spades

// AutoActionKind identifies which entry point an auto action targets.
type AutoActionKind int

const (
	AutoBid AutoActionKind = iota
	AutoTrump
	AutoPlay
)

// AutoAction is the default action to inject when the acting seat's
// deadline elapses: the minimum bid, a fixed trump suit, or the first
// valid play.
type AutoAction struct {
	Kind AutoActionKind
	Seat Seat
	Bid  int
	Suit deck.Suit
	Card deck.Card
}

// AutoActionFor is the turn timer policy. It is pure decision logic: it
// owns no timers and never mutates state. The host schedules the
// deadline, re-validates that the seat is still acting in the same
// phase, and feeds the result back through PlaceBid, SelectTrump or
// PlayCard so every transition goes through the one validated entry
// point.
func AutoActionFor(r *Round) (AutoAction, bool) {
	if r == nil {
		return AutoAction{}, false
	}
	switch r.Phase() {
	case PhaseBidding:
		return AutoAction{Kind: AutoBid, Seat: r.Acting(), Bid: MinBid}, true
	case PhaseTrumpSelection:
		return AutoAction{Kind: AutoTrump, Seat: r.Acting(), Suit: DefaultTrumpSuit}, true
	case PhasePlaying:
		plays := r.ValidPlays(r.Acting())
		if len(plays) == 0 {
			return AutoAction{}, false
		}
		return AutoAction{Kind: AutoPlay, Seat: r.Acting(), Card: plays[0]}, true
	default:
		return AutoAction{}, false
	}
}
