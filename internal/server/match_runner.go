package server

import (
	rand "math/rand/v2"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/kmatth/judgement/internal/deck"
	"github.com/kmatth/judgement/internal/game"
)

// Broadcaster delivers messages to the seats of a match. Each seat's own
// hand is private, so the runner needs both a match-wide broadcast and a
// single-seat send.
type Broadcaster interface {
	BroadcastToMatch(code string, msg *Message)
	SendToSeat(code string, seat game.Seat, msg *Message) error
}

// MatchRunner hosts one match: it serializes every operation against the
// state machine behind a mutex, reacts to the events the core emits, and
// owns the per-seat action deadlines. The core transitions immediately;
// presentation pacing (trick display window, round countdown) only delays
// what the runner announces, never what the match knows.
type MatchRunner struct {
	code     string
	settings GameSettings
	logger   zerolog.Logger
	clock    quartz.Clock
	bcast    Broadcaster

	mu        sync.Mutex
	match     *game.Match
	turnGen   int // bumped on every accepted action; stale timers check it
	deadline  *quartz.Timer
	sawTrick  bool
	connected [game.NumSeats]bool
}

// NewMatchRunner creates a runner and its match.
func NewMatchRunner(code string, settings GameSettings, rng *rand.Rand, logger zerolog.Logger, clock quartz.Clock, bcast Broadcaster) (*MatchRunner, error) {
	r := &MatchRunner{
		code:     code,
		settings: settings,
		logger:   logger.With().Str("component", "match_runner").Str("game_code", code).Logger(),
		clock:    clock,
		bcast:    bcast,
	}

	bus := game.NewBus()
	bus.Subscribe(r)

	match, err := game.NewMatch(code, game.Config{RoundCap: settings.RoundCap}, rng, bus)
	if err != nil {
		return nil, err
	}
	r.match = match
	return r, nil
}

// Code returns the match's game code.
func (r *MatchRunner) Code() string { return r.code }

// Join seats a player. The fourth join starts the match.
func (r *MatchRunner) Join(playerID, name string) (game.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, err := r.match.Join(playerID, name)
	if err != nil {
		return 0, err
	}
	r.connected[seat] = true
	r.logger.Info().Stringer("seat", seat).Str("player", name).Msg("Player joined")

	if r.match.State() == game.StateInProgress {
		r.advanceLocked()
	}
	return seat, nil
}

// PlaceBid applies a bid from a seat.
func (r *MatchRunner) PlaceBid(seat game.Seat, amount int) error {
	return r.apply(func() error { return r.match.PlaceBid(seat, amount) })
}

// SelectTrump applies a trump choice from a seat.
func (r *MatchRunner) SelectTrump(seat game.Seat, suit deck.Suit) error {
	return r.apply(func() error { return r.match.SelectTrump(seat, suit) })
}

// PlayCard applies a card play from a seat.
func (r *MatchRunner) PlayCard(seat game.Seat, card deck.Card) error {
	return r.apply(func() error { return r.match.PlayCard(seat, card) })
}

// SetPaused toggles the pause flag (admin only). Pausing discards the
// armed deadline; resuming arms a fresh one, since elapsed-but-unconsumed
// time is not tracked.
func (r *MatchRunner) SetPaused(seat game.Seat, paused bool) error {
	return r.apply(func() error { return r.match.SetPaused(seat, paused) })
}

// Stop aborts the match (admin only).
func (r *MatchRunner) Stop(seat game.Seat) error {
	return r.apply(func() error { return r.match.Stop(seat) })
}

// Chat relays a chat line to every seat in the match.
func (r *MatchRunner) Chat(seat game.Seat, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.match.Players()[seat].Name
	r.broadcast(MessageTypeChat, ChatData{PlayerName: name, Message: text})
}

// HandleDisconnect marks a seat as gone and reports whether any seats
// remain connected. The manager destroys the match once it is empty.
func (r *MatchRunner) HandleDisconnect(seat game.Seat) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !seat.Valid() || !r.connected[seat] {
		return false
	}
	r.connected[seat] = false
	r.broadcast(MessageTypePlayerDisconnected, PlayerDisconnectedData{
		Seat: int(seat),
		Name: r.match.Players()[seat].Name,
	})

	for _, c := range r.connected {
		if c {
			return false
		}
	}
	return true
}

// Shutdown cancels all pending timers.
func (r *MatchRunner) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turnGen++
	r.stopDeadlineLocked()
}

// apply runs one mutating operation and, when it succeeds, advances the
// deadline machinery. Rejected operations change nothing.
func (r *MatchRunner) apply(op func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := op(); err != nil {
		return err
	}
	r.advanceLocked()
	return nil
}

// advanceLocked reacts to a successful state transition: it invalidates
// any armed deadline and decides what to announce and schedule next.
func (r *MatchRunner) advanceLocked() {
	r.turnGen++
	r.stopDeadlineLocked()

	trickResolved := r.sawTrick
	r.sawTrick = false

	if r.match.State() != game.StateInProgress || r.match.Paused() {
		return
	}
	round := r.match.Round()
	if round == nil {
		return
	}

	switch round.Phase() {
	case game.PhaseDealing:
		// Bidding is gated so clients can finish receiving hands first.
		delay := r.settings.DealDelay()
		if round.Number() > 1 {
			delay = r.settings.RoundCountdown()
		}
		gen := r.turnGen
		r.clock.AfterFunc(delay, func() { r.openBidding(gen) })

	case game.PhaseBidding, game.PhaseTrumpSelection, game.PhasePlaying:
		if trickResolved && r.settings.TrickDisplay() > 0 {
			// Authoritative state has already moved on; only the next
			// turn announcement waits out the display window.
			gen := r.turnGen
			r.clock.AfterFunc(r.settings.TrickDisplay(), func() { r.announceTurn(gen) })
			return
		}
		r.announceTurnLocked()
	}
}

// openBidding fires after the deal delay and opens the bidding phase.
func (r *MatchRunner) openBidding(gen int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.turnGen || r.match.Paused() || r.match.State() != game.StateInProgress {
		return
	}
	if err := r.match.BeginBidding(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to open bidding")
		return
	}
	r.advanceLocked()
}

// announceTurn is the delayed-announcement path after a resolved trick.
func (r *MatchRunner) announceTurn(gen int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.turnGen || r.match.Paused() || r.match.State() != game.StateInProgress {
		return
	}
	r.announceTurnLocked()
}

// announceTurnLocked broadcasts the current turn and arms the deadline.
func (r *MatchRunner) announceTurnLocked() {
	round := r.match.Round()
	if round == nil {
		return
	}

	r.broadcast(MessageTypeGameState, snapshotMatch(r.code, r.match))

	acting := round.Acting()
	var kind string
	switch round.Phase() {
	case game.PhaseBidding:
		kind = "bid"
	case game.PhaseTrumpSelection:
		kind = "trump"
	case game.PhasePlaying:
		kind = "play"
		r.sendToSeat(acting, MessageTypeValidCards, ValidCardsData{Cards: round.ValidPlays(acting)})
	default:
		return
	}

	r.broadcast(MessageTypeTimerStart, TimerStartData{
		Seat:       int(acting),
		DurationMs: int(r.settings.TurnTimeout().Milliseconds()),
		Kind:       kind,
	})
	r.armDeadlineLocked()
}

func (r *MatchRunner) armDeadlineLocked() {
	gen := r.turnGen
	r.deadline = r.clock.AfterFunc(r.settings.TurnTimeout(), func() { r.onDeadline(gen) })
}

func (r *MatchRunner) stopDeadlineLocked() {
	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}
}

// onDeadline fires when the acting seat's deadline elapses. A human
// action racing the timeout wins: every accepted action bumps turnGen,
// which makes the now-late timeout a recognized no-op.
func (r *MatchRunner) onDeadline(gen int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.turnGen || r.match.Paused() || r.match.State() != game.StateInProgress {
		return
	}

	action, ok := game.AutoActionFor(r.match.Round())
	if !ok {
		return
	}
	r.logger.Warn().
		Stringer("seat", action.Seat).
		Str("phase", r.match.Round().Phase().String()).
		Msg("Seat timed out, injecting default action")

	var err error
	switch action.Kind {
	case game.AutoBid:
		err = r.match.PlaceBid(action.Seat, action.Bid)
	case game.AutoTrump:
		err = r.match.SelectTrump(action.Seat, action.Suit)
	case game.AutoPlay:
		err = r.match.PlayCard(action.Seat, action.Card)
	}
	if err != nil {
		r.logger.Error().Err(err).Msg("Default action rejected")
		return
	}
	r.advanceLocked()
}

// OnEvent implements game.Subscriber. Events arrive synchronously while
// the runner holds its own mutex, so this must not lock.
func (r *MatchRunner) OnEvent(event game.Event) {
	switch e := event.(type) {
	case game.MatchStartedEvent:
		r.logger.Info().Msg("Match started")
		r.broadcast(MessageTypeMatchStarted, snapshotMatch(r.code, r.match))

	case game.RoundStartedEvent:
		r.logger.Info().Int("round", e.Round).Stringer("lead", e.LeadSeat).Msg("Round dealt")
		for seat := game.Seat(0); seat < game.NumSeats; seat++ {
			r.sendToSeat(seat, MessageTypeHandUpdate, HandUpdateData{Cards: r.match.Hand(seat)})
		}
		r.broadcast(MessageTypeGameState, snapshotMatch(r.code, r.match))

	case game.BidPlacedEvent:
		r.broadcast(MessageTypeBidPlaced, BidPlacedData{
			Seat:   int(e.Seat),
			Amount: e.Amount,
			Next:   int(e.Next),
		})

	case game.BidsResolvedEvent:
		r.logger.Info().
			Stringer("chooser", e.Chooser).
			Str("side", e.Side.String()).
			Int("target", e.Target).
			Msg("Bidding resolved")
		r.broadcast(MessageTypeBidsResolved, BidsResolvedData{
			Chooser: int(e.Chooser),
			Side:    e.Side.String(),
			Target:  e.Target,
		})

	case game.TrumpSelectedEvent:
		r.broadcast(MessageTypeTrumpSelected, TrumpSelectedData{
			Seat: int(e.Seat),
			Suit: e.Trump.Name(),
		})

	case game.CardPlayedEvent:
		r.broadcast(MessageTypeCardPlayed, CardPlayedData{
			Seat: int(e.Seat),
			Card: e.Card,
			Next: int(e.Next),
		})
		r.sendToSeat(e.Seat, MessageTypeHandUpdate, HandUpdateData{Cards: r.match.Hand(e.Seat)})

	case game.TrickCompletedEvent:
		r.sawTrick = true
		plays := make([]TrickPlay, len(e.Plays))
		for i, play := range e.Plays {
			plays[i] = TrickPlay{Seat: int(play.Seat), Card: play.Card}
		}
		r.broadcast(MessageTypeTrickCompleted, TrickCompletedData{
			Winner:     int(e.Winner),
			WinnerName: r.match.Players()[e.Winner].Name,
			Plays:      plays,
			Tricks:     e.Tricks,
			DisplayMs:  int(r.settings.TrickDisplay().Milliseconds()),
		})

	case game.RoundEndedEvent:
		r.logger.Info().
			Int("round", e.Outcome.Round).
			Str("winner", e.Outcome.Winner.String()).
			Int("target", e.Outcome.Target).
			Ints("tricks", e.Outcome.Tricks[:]).
			Msg("Round ended")
		r.broadcast(MessageTypeRoundEnded, RoundEndedData{
			Round:       e.Outcome.Round,
			WinningSide: e.Outcome.Winner.String(),
			BidSide:     e.Outcome.BidWinner.String(),
			Target:      e.Outcome.Target,
			Tricks:      e.Outcome.Tricks,
			SeatTricks:  e.Outcome.SeatTricks,
			RoundsWon:   e.RoundsWon,
		})

	case game.MatchEndedEvent:
		var winner *string
		if e.Winner != nil {
			name := e.Winner.String()
			winner = &name
		}
		r.logger.Info().
			Bool("stopped", e.Stopped).
			Ints("rounds_won", e.RoundsWon[:]).
			Msg("Match ended")
		r.broadcast(MessageTypeMatchEnded, MatchEndedData{
			Winner:    winner,
			RoundsWon: e.RoundsWon,
			Stopped:   e.Stopped,
			Rounds:    len(e.Log),
		})

	case game.MatchPausedEvent:
		r.broadcast(MessageTypeGamePaused, GamePausedData{
			Paused:   e.Paused,
			PausedBy: r.match.Players()[e.By].Name,
		})
	}
}

func (r *MatchRunner) broadcast(messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		r.logger.Error().Err(err).Str("type", messageType.String()).Msg("Failed to encode message")
		return
	}
	r.bcast.BroadcastToMatch(r.code, msg)
}

func (r *MatchRunner) sendToSeat(seat game.Seat, messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		r.logger.Error().Err(err).Str("type", messageType.String()).Msg("Failed to encode message")
		return
	}
	if err := r.bcast.SendToSeat(r.code, seat, msg); err != nil {
		r.logger.Debug().Err(err).Stringer("seat", seat).Msg("Failed to send to seat")
	}
}

// Snapshot returns the current shared game state.
func (r *MatchRunner) Snapshot() GameStateData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshotMatch(r.code, r.match)
}

// Match returns the underlying state machine for tests.
func (r *MatchRunner) Match() *game.Match { return r.match }
