package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/kmatth/judgement/internal/deck"
)

// State is a match's lifecycle stage.
type State int

const (
	StateAwaitingPlayers State = iota
	StateInProgress
	StateFinished
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case StateAwaitingPlayers:
		return "awaiting_players"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Config holds the per-match configuration.
type Config struct {
	// RoundCap is the maximum number of rounds, 1..11. The match ends
	// early once a side wins ceil(RoundCap/2) rounds.
	RoundCap int
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.RoundCap < 1 || c.RoundCap > 11 {
		return fmt.Errorf("round cap must be in [1,11], got %d", c.RoundCap)
	}
	return nil
}

// RoundsToWin returns the majority threshold, ceil(RoundCap/2).
func (c Config) RoundsToWin() int {
	return (c.RoundCap + 1) / 2
}

// Player is an occupied seat.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result is the final standing of a finished match.
type Result struct {
	Winner    *Side // nil for a tie or an administrative stop
	RoundsWon [2]int
	Stopped   bool
}

// Match owns the sequence of rounds, cumulative round wins per side, and
// the game-end decision. It is single-threaded cooperative logic with no
// internal locking: the host must serialize operations against the same
// match. Operations against different matches share no mutable state.
type Match struct {
	id  string
	cfg Config
	rng *rand.Rand
	bus *Bus

	players [NumSeats]Player
	seated  int
	admin   Seat

	state    State
	paused   bool
	roundNum int
	round    *Round

	roundsWon  [2]int
	roundLog   []RoundOutcome
	seatTricks [NumSeats]int // cumulative tricks across rounds
	result     *Result
}

// NewMatch creates a match awaiting players. The first seat to join
// becomes the admin.
func NewMatch(id string, cfg Config, rng *rand.Rand, bus *Bus) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bus == nil {
		bus = NewBus()
	}
	return &Match{
		id:    id,
		cfg:   cfg,
		rng:   rng,
		bus:   bus,
		state: StateAwaitingPlayers,
	}, nil
}

// ID returns the match identifier.
func (m *Match) ID() string { return m.id }

// Config returns the match configuration.
func (m *Match) Config() Config { return m.cfg }

// Bus returns the event bus for subscribing to match events.
func (m *Match) Bus() *Bus { return m.bus }

// State returns the match lifecycle state.
func (m *Match) State() State { return m.state }

// Paused reports whether mutating operations are suspended.
func (m *Match) Paused() bool { return m.paused }

// Admin returns the administrator seat.
func (m *Match) Admin() Seat { return m.admin }

// RoundNumber returns the current round number, starting at 1.
func (m *Match) RoundNumber() int { return m.roundNum }

// Round returns the active round, nil before the match starts and after
// it finishes.
func (m *Match) Round() *Round { return m.round }

// RoundsWon returns cumulative round wins per side.
func (m *Match) RoundsWon() [2]int { return m.roundsWon }

// RoundLog returns the completed round outcomes in order.
func (m *Match) RoundLog() []RoundOutcome {
	out := make([]RoundOutcome, len(m.roundLog))
	copy(out, m.roundLog)
	return out
}

// SeatTricks returns cumulative tricks won per seat across all rounds.
func (m *Match) SeatTricks() [NumSeats]int { return m.seatTricks }

// Players returns the seated players; entries past the seated count are
// zero values.
func (m *Match) Players() [NumSeats]Player { return m.players }

// Seated returns the number of occupied seats.
func (m *Match) Seated() int { return m.seated }

// Result returns the final standing once the match is finished.
func (m *Match) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Hand returns a copy of the seat's current hand, nil when no round is
// active.
func (m *Match) Hand(seat Seat) []deck.Card {
	if m.round == nil {
		return nil
	}
	return m.round.Hand(seat)
}

// ValidPlays returns the legal plays for the seat, nil unless it is that
// seat's turn in the playing phase.
func (m *Match) ValidPlays(seat Seat) []deck.Card {
	if m.round == nil {
		return nil
	}
	return m.round.ValidPlays(seat)
}

// Join assigns the next open seat. The fourth join starts the match and
// deals round 1.
func (m *Match) Join(playerID, name string) (Seat, error) {
	if m.state != StateAwaitingPlayers || m.seated >= NumSeats {
		return 0, ErrMatchFull
	}

	seat := Seat(m.seated)
	m.players[seat] = Player{ID: playerID, Name: name}
	m.seated++

	if m.seated == NumSeats {
		m.state = StateInProgress
		m.roundNum = 1
		m.bus.Publish(MatchStartedEvent{stamped: stamp(), MatchID: m.id, Players: m.players})
		m.dealRound()
	}
	return seat, nil
}

// dealRound shuffles a fresh deck and starts a round in the dealing phase.
func (m *Match) dealRound() {
	d := deck.New(m.rng)
	d.Shuffle()
	m.round = NewRound(m.roundNum, d.DealHands())
	m.bus.Publish(RoundStartedEvent{
		stamped:  stamp(),
		Round:    m.roundNum,
		LeadSeat: m.round.LeadSeat(),
	})
}

// BeginBidding opens the bidding phase. The host calls this once every
// seat has received its hand.
func (m *Match) BeginBidding() error {
	if m.state != StateInProgress {
		return ErrWrongPhase
	}
	if err := m.round.BeginBidding(); err != nil {
		return err
	}
	m.bus.Publish(BiddingStartedEvent{
		stamped: stamp(),
		Round:   m.roundNum,
		Acting:  m.round.Acting(),
	})
	return nil
}

// checkMutable guards every player-facing mutating operation.
func (m *Match) checkMutable() error {
	if m.state != StateInProgress {
		return ErrWrongPhase
	}
	if m.paused {
		return ErrGamePaused
	}
	return nil
}

// PlaceBid forwards a bid to the active round.
func (m *Match) PlaceBid(seat Seat, amount int) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if err := m.round.PlaceBid(seat, amount); err != nil {
		return err
	}

	m.bus.Publish(BidPlacedEvent{stamped: stamp(), Seat: seat, Amount: amount, Next: m.round.Acting()})
	if m.round.Phase() == PhaseTrumpSelection {
		m.bus.Publish(BidsResolvedEvent{
			stamped: stamp(),
			Chooser: m.round.Chooser(),
			Side:    m.round.Chooser().Side(),
			Target:  m.round.Target(),
		})
	}
	return nil
}

// SelectTrump forwards the trump choice to the active round.
func (m *Match) SelectTrump(seat Seat, suit deck.Suit) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if err := m.round.SelectTrump(seat, suit); err != nil {
		return err
	}
	m.bus.Publish(TrumpSelectedEvent{stamped: stamp(), Seat: seat, Trump: suit})
	return nil
}

// PlayCard forwards a play to the active round and, when it ends the
// round, advances the match: the outcome is logged, the winning side is
// credited, and either the next round is dealt or the match finishes.
func (m *Match) PlayCard(seat Seat, card deck.Card) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	result, err := m.round.PlayCard(seat, card)
	if err != nil {
		return err
	}

	m.bus.Publish(CardPlayedEvent{stamped: stamp(), Seat: seat, Card: card, Next: m.round.Acting()})
	if result != nil {
		m.bus.Publish(TrickCompletedEvent{
			stamped: stamp(),
			Winner:  result.Winner,
			Plays:   result.Plays,
			Tricks:  result.Tricks,
		})
	}

	if m.round.Phase() == PhaseRoundEnd {
		outcome, _ := m.round.Outcome()
		m.finishRound(outcome)
	}
	return nil
}

// finishRound records the outcome and decides whether the match is over.
func (m *Match) finishRound(outcome RoundOutcome) {
	m.roundLog = append(m.roundLog, outcome)
	m.roundsWon[outcome.Winner]++
	for seat, n := range outcome.SeatTricks {
		m.seatTricks[seat] += n
	}
	m.bus.Publish(RoundEndedEvent{stamped: stamp(), Outcome: outcome, RoundsWon: m.roundsWon})

	toWin := m.cfg.RoundsToWin()
	switch {
	case m.roundsWon[SideA] >= toWin:
		m.finish(sidePtr(SideA), false)
	case m.roundsWon[SideB] >= toWin:
		m.finish(sidePtr(SideB), false)
	case m.roundNum >= m.cfg.RoundCap:
		var winner *Side
		if m.roundsWon[SideA] > m.roundsWon[SideB] {
			winner = sidePtr(SideA)
		} else if m.roundsWon[SideB] > m.roundsWon[SideA] {
			winner = sidePtr(SideB)
		}
		m.finish(winner, false)
	default:
		m.roundNum++
		m.dealRound()
	}
}

func (m *Match) finish(winner *Side, stopped bool) {
	m.state = StateFinished
	m.round = nil
	m.result = &Result{Winner: winner, RoundsWon: m.roundsWon, Stopped: stopped}
	m.bus.Publish(MatchEndedEvent{
		stamped:   stamp(),
		Winner:    winner,
		RoundsWon: m.roundsWon,
		Stopped:   stopped,
		Log:       m.RoundLog(),
	})
}

// SetPaused raises or clears the pause flag. Admin only. Pausing does not
// alter phase or counters; the host discards any armed deadline on pause
// and arms a fresh one on resume.
func (m *Match) SetPaused(seat Seat, paused bool) error {
	if seat != m.admin {
		return ErrUnauthorized
	}
	if m.state != StateInProgress {
		return ErrWrongPhase
	}
	if m.paused == paused {
		return nil
	}
	m.paused = paused
	m.bus.Publish(MatchPausedEvent{stamped: stamp(), Paused: paused, By: seat})
	return nil
}

// Stop ends the match immediately as an administrative abort; no winner
// is resolved from round data. Admin only.
func (m *Match) Stop(seat Seat) error {
	if seat != m.admin {
		return ErrUnauthorized
	}
	if m.state == StateFinished {
		return ErrWrongPhase
	}
	m.finish(nil, true)
	return nil
}

func sidePtr(s Side) *Side { return &s }
