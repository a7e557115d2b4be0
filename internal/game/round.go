package game

import "github.com/kmatth/judgement/internal/deck"

// Bid limits. The minimum of 6 guarantees a plausible contract out of 13
// tricks; a target of t leaves the defenders needing 14-t, so the two
// thresholds always sum to 14.
const (
	MinBid = 6
	MaxBid = 13
)

// Phase is a round's lifecycle stage.
type Phase int

const (
	PhaseDealing Phase = iota
	PhaseBidding
	PhaseTrumpSelection
	PhasePlaying
	PhaseRoundEnd
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhaseBidding:
		return "bidding"
	case PhaseTrumpSelection:
		return "trump_selection"
	case PhasePlaying:
		return "playing"
	case PhaseRoundEnd:
		return "round_end"
	default:
		return "unknown"
	}
}

// TrickResult describes a resolved trick.
type TrickResult struct {
	Winner Seat
	Plays  []PlayedCard
	Tricks [2]int // tricks won per side so far this round
}

// RoundOutcome is handed to the match when a round ends.
type RoundOutcome struct {
	Round       int
	Winner      Side
	BidWinner   Side
	ChooserSeat Seat
	Target      int
	Tricks      [2]int
	Bids        [NumSeats]int
	SeatTricks  [NumSeats]int
}

// Round owns one deal's lifecycle: dealing, bidding, trump selection,
// playing, and round resolution. It is a pure state machine: every
// operation validates fully before mutating, so a rejected call leaves
// the round untouched.
type Round struct {
	number int
	phase  Phase

	hands    [NumSeats][]deck.Card
	leadSeat Seat
	acting   Seat

	bids      [NumSeats]int
	bidPlaced [NumSeats]bool
	bidCount  int

	chooser  Seat // bid-winning seat, picks trump and leads the first trick
	target   int  // tricks the bid-winning side must take
	trump    deck.Suit
	trumpSet bool

	trick       Trick
	tricks      [2]int        // completed tricks per side
	seatTricks  [NumSeats]int // completed tricks per seat
	playedCards int           // cards in completed tricks

	outcome *RoundOutcome
}

// NewRound creates a round for the given deal. The lead seat rotates
// every round: (number-1) mod 4.
func NewRound(number int, hands [NumSeats][]deck.Card) *Round {
	lead := Seat((number - 1) % NumSeats)
	return &Round{
		number:   number,
		phase:    PhaseDealing,
		hands:    hands,
		leadSeat: lead,
		acting:   lead,
	}
}

// Number returns the round number, starting at 1.
func (r *Round) Number() int { return r.number }

// Phase returns the current phase.
func (r *Round) Phase() Phase { return r.phase }

// Acting returns the seat that is to act.
func (r *Round) Acting() Seat { return r.acting }

// LeadSeat returns the seat that opened the bidding this round.
func (r *Round) LeadSeat() Seat { return r.leadSeat }

// Trump returns the trump suit once chosen.
func (r *Round) Trump() (deck.Suit, bool) { return r.trump, r.trumpSet }

// Chooser returns the bid-winning seat once bidding has resolved.
func (r *Round) Chooser() Seat { return r.chooser }

// Target returns the bid-winning side's required trick count.
func (r *Round) Target() int { return r.target }

// Tricks returns completed tricks per side.
func (r *Round) Tricks() [2]int { return r.tricks }

// SeatTricks returns completed tricks per seat.
func (r *Round) SeatTricks() [NumSeats]int { return r.seatTricks }

// Bids returns the bids placed so far and a parallel placed mask.
func (r *Round) Bids() ([NumSeats]int, [NumSeats]bool) {
	return r.bids, r.bidPlaced
}

// Hand returns a copy of the seat's remaining cards.
func (r *Round) Hand(seat Seat) []deck.Card {
	if !seat.Valid() {
		return nil
	}
	out := make([]deck.Card, len(r.hands[seat]))
	copy(out, r.hands[seat])
	return out
}

// CurrentTrick returns a copy of the in-flight trick's plays.
func (r *Round) CurrentTrick() []PlayedCard {
	return r.trick.Plays()
}

// Outcome returns the round's result once the phase is round_end.
func (r *Round) Outcome() (RoundOutcome, bool) {
	if r.outcome == nil {
		return RoundOutcome{}, false
	}
	return *r.outcome, true
}

// CardCount returns remaining hand cards plus cards played into completed
// tricks plus the in-flight trick. It is 52 at every observation point.
func (r *Round) CardCount() int {
	n := r.playedCards + r.trick.Len()
	for _, hand := range r.hands {
		n += len(hand)
	}
	return n
}

// BeginBidding advances from dealing to bidding. The transition is gated
// externally so the host can wait for an all-cards-delivered signal from
// the transport before the bid clock starts.
func (r *Round) BeginBidding() error {
	if r.phase != PhaseDealing {
		return ErrWrongPhase
	}
	r.phase = PhaseBidding
	return nil
}

// PlaceBid records the acting seat's bid. Seats bid strictly in turn
// order; once all four bids are in, the bid winner is resolved and the
// round moves to trump selection.
func (r *Round) PlaceBid(seat Seat, amount int) error {
	if r.phase != PhaseBidding {
		return ErrWrongPhase
	}
	if seat != r.acting {
		return ErrWrongActor
	}
	if amount < MinBid || amount > MaxBid {
		return ErrInvalidBid
	}

	r.bids[seat] = amount
	r.bidPlaced[seat] = true
	r.bidCount++
	r.acting = seat.Next()

	if r.bidCount == NumSeats {
		r.resolveBids()
	}
	return nil
}

// resolveBids compares side totals and picks the trump-choosing seat.
// Equal side totals go to Side A by positional precedence; an equal pair
// within the winning side goes to the side's second seat. The target is
// the winning side's maximum individual bid, not the sum.
func (r *Round) resolveBids() {
	sideATotal := r.bids[0] + r.bids[2]
	sideBTotal := r.bids[1] + r.bids[3]

	side := SideA
	if sideBTotal > sideATotal {
		side = SideB
	}

	seats := side.Seats()
	chooser := seats[1]
	if r.bids[seats[0]] > r.bids[seats[1]] {
		chooser = seats[0]
	}

	r.chooser = chooser
	r.target = r.bids[chooser]
	r.phase = PhaseTrumpSelection
	r.acting = chooser
}

// SelectTrump sets the trump suit. Only the bid-winning seat may choose;
// it then leads the first trick.
func (r *Round) SelectTrump(seat Seat, suit deck.Suit) error {
	if r.phase != PhaseTrumpSelection {
		return ErrWrongPhase
	}
	if seat != r.chooser {
		return ErrWrongActor
	}

	r.trump = suit
	r.trumpSet = true
	r.phase = PhasePlaying
	r.acting = r.chooser
	return nil
}

// ValidPlays returns the cards the acting seat may legally play: the
// whole hand when leading, otherwise the lead-suit subset if the hand has
// any, else the whole hand. Returns nil for any other seat or phase.
func (r *Round) ValidPlays(seat Seat) []deck.Card {
	if r.phase != PhasePlaying || seat != r.acting {
		return nil
	}

	lead, ok := r.trick.LeadSuit()
	if !ok {
		return r.Hand(seat)
	}

	var following []deck.Card
	for _, card := range r.hands[seat] {
		if card.Suit == lead {
			following = append(following, card)
		}
	}
	if len(following) > 0 {
		return following
	}
	return r.Hand(seat)
}

// PlayCard moves a card from the acting seat's hand into the trick. A
// fourth play resolves the trick immediately: the winner's side is
// credited, the winner becomes the acting seat, and the trick is cleared.
// The returned TrickResult is non-nil only when a trick was resolved.
// After each resolved trick the round ends at once if either side has
// reached its threshold (target for the bidders, 14-target for the
// defenders); since the thresholds are complementary this single rule
// also ends the round after the 13th trick.
func (r *Round) PlayCard(seat Seat, card deck.Card) (*TrickResult, error) {
	if r.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	if seat != r.acting {
		return nil, ErrWrongActor
	}

	idx := -1
	for i, held := range r.hands[seat] {
		if held == card {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNotHeld
	}
	if !r.followsSuit(seat, card) {
		return nil, ErrInvalidPlay
	}

	r.hands[seat] = append(r.hands[seat][:idx], r.hands[seat][idx+1:]...)
	r.trick.add(seat, card)

	if !r.trick.Complete() {
		r.acting = seat.Next()
		return nil, nil
	}

	winner := r.trick.Winner(r.trump)
	r.tricks[winner.Side()]++
	r.seatTricks[winner]++
	r.playedCards += NumSeats

	result := &TrickResult{
		Winner: winner,
		Plays:  r.trick.Plays(),
		Tricks: r.tricks,
	}
	r.trick.reset()
	r.acting = winner

	if side, over := r.decideWinner(); over {
		r.endRound(side)
	}
	return result, nil
}

// followsSuit checks the follow-suit-if-able rule for a candidate play.
func (r *Round) followsSuit(seat Seat, card deck.Card) bool {
	lead, ok := r.trick.LeadSuit()
	if !ok || card.Suit == lead {
		return true
	}
	for _, held := range r.hands[seat] {
		if held.Suit == lead {
			return false
		}
	}
	return true
}

// decideWinner applies the round's single termination rule: the bidding
// side wins on reaching its target, the defenders win on reaching
// 14-target, which makes the target mathematically unreachable.
func (r *Round) decideWinner() (Side, bool) {
	bidSide := r.chooser.Side()
	if r.tricks[bidSide] >= r.target {
		return bidSide, true
	}
	if r.tricks[bidSide.Other()] >= maxTrickSum-r.target {
		return bidSide.Other(), true
	}
	return 0, false
}

// maxTrickSum is the sum of the two complementary round thresholds.
const maxTrickSum = 14

func (r *Round) endRound(winner Side) {
	r.phase = PhaseRoundEnd
	r.outcome = &RoundOutcome{
		Round:       r.number,
		Winner:      winner,
		BidWinner:   r.chooser.Side(),
		ChooserSeat: r.chooser,
		Target:      r.target,
		Tricks:      r.tricks,
		Bids:        r.bids,
		SeatTricks:  r.seatTricks,
	}
}
