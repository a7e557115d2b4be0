package game

import (
	"time"

	"github.com/kmatth/judgement/internal/deck"
)

// EventType identifies a game domain event.
type EventType string

const (
	EventMatchStarted   EventType = "match_started"
	EventRoundStarted   EventType = "round_started"
	EventBiddingStarted EventType = "bidding_started"
	EventBidPlaced      EventType = "bid_placed"
	EventBidsResolved   EventType = "bids_resolved"
	EventTrumpSelected  EventType = "trump_selected"
	EventCardPlayed     EventType = "card_played"
	EventTrickCompleted EventType = "trick_completed"
	EventRoundEnded     EventType = "round_ended"
	EventMatchEnded     EventType = "match_ended"
	EventMatchPaused    EventType = "match_paused"
)

// String returns the string representation of the event type.
func (et EventType) String() string { return string(et) }

// Event is a state-transition result emitted by the match. The core
// never broadcasts anything itself; an outer orchestrator subscribes and
// decides what to announce, to whom, and when.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

type stamped struct {
	at time.Time
}

func (s stamped) Timestamp() time.Time { return s.at }

func stamp() stamped { return stamped{at: time.Now()} }

// MatchStartedEvent is emitted when the fourth seat joins.
type MatchStartedEvent struct {
	stamped
	MatchID string
	Players [NumSeats]Player
}

func (MatchStartedEvent) EventType() EventType { return EventMatchStarted }

// RoundStartedEvent is emitted when a round's hands have been dealt.
// Hands are deliberately absent: each seat's hand is private and must be
// fetched per seat by the orchestrator.
type RoundStartedEvent struct {
	stamped
	Round    int
	LeadSeat Seat
}

func (RoundStartedEvent) EventType() EventType { return EventRoundStarted }

// BiddingStartedEvent is emitted when the dealing gate opens.
type BiddingStartedEvent struct {
	stamped
	Round  int
	Acting Seat
}

func (BiddingStartedEvent) EventType() EventType { return EventBiddingStarted }

// BidPlacedEvent is emitted for every accepted bid.
type BidPlacedEvent struct {
	stamped
	Seat   Seat
	Amount int
	Next   Seat // meaningless once bidding has resolved
}

func (BidPlacedEvent) EventType() EventType { return EventBidPlaced }

// BidsResolvedEvent is emitted when the fourth bid resolves the winner.
type BidsResolvedEvent struct {
	stamped
	Chooser Seat
	Side    Side
	Target  int
}

func (BidsResolvedEvent) EventType() EventType { return EventBidsResolved }

// TrumpSelectedEvent is emitted when the bid winner picks trump.
type TrumpSelectedEvent struct {
	stamped
	Seat  Seat
	Trump deck.Suit
}

func (TrumpSelectedEvent) EventType() EventType { return EventTrumpSelected }

// CardPlayedEvent is emitted for every accepted play.
type CardPlayedEvent struct {
	stamped
	Seat Seat
	Card deck.Card
	Next Seat
}

func (CardPlayedEvent) EventType() EventType { return EventCardPlayed }

// TrickCompletedEvent is emitted when a fourth play resolves a trick.
// The authoritative state has already advanced; any display pause before
// announcing the winner is the orchestrator's concern.
type TrickCompletedEvent struct {
	stamped
	Winner Seat
	Plays  []PlayedCard
	Tricks [2]int
}

func (TrickCompletedEvent) EventType() EventType { return EventTrickCompleted }

// RoundEndedEvent is emitted when a round resolves.
type RoundEndedEvent struct {
	stamped
	Outcome   RoundOutcome
	RoundsWon [2]int
}

func (RoundEndedEvent) EventType() EventType { return EventRoundEnded }

// MatchEndedEvent is emitted when the match finishes. Winner is nil for
// a tie at the round cap or an administrative stop.
type MatchEndedEvent struct {
	stamped
	Winner    *Side
	RoundsWon [2]int
	Stopped   bool
	Log       []RoundOutcome
}

func (MatchEndedEvent) EventType() EventType { return EventMatchEnded }

// MatchPausedEvent is emitted on every pause state change.
type MatchPausedEvent struct {
	stamped
	Paused bool
	By     Seat
}

func (MatchPausedEvent) EventType() EventType { return EventMatchPaused }

// Subscriber receives events synchronously as they are published.
type Subscriber interface {
	OnEvent(event Event)
}

// Bus is a minimal in-memory event bus. Publication is synchronous and
// in order, which keeps the core deterministic under test.
type Bus struct {
	subscribers []Subscriber
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds a subscriber.
func (b *Bus) Subscribe(subscriber Subscriber) {
	b.subscribers = append(b.subscribers, subscriber)
}

// Unsubscribe removes a subscriber.
func (b *Bus) Unsubscribe(subscriber Subscriber) {
	for i, sub := range b.subscribers {
		if sub == subscriber {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

// Publish delivers an event to all subscribers.
func (b *Bus) Publish(event Event) {
	for _, sub := range b.subscribers {
		sub.OnEvent(event)
	}
}
