package server

import (
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kmatth/judgement/internal/game"
	"github.com/kmatth/judgement/internal/randutil"
)

const gameCodeLength = 6

// MatchManager owns the live matches, keyed by game code. Codes are
// short and human-shareable; collisions are retried.
type MatchManager struct {
	settings GameSettings
	logger   zerolog.Logger
	clock    quartz.Clock
	bcast    Broadcaster

	mu      sync.RWMutex
	matches map[string]*MatchRunner
	seed    int64
}

// NewMatchManager creates a manager. The seed makes per-match shuffles
// reproducible; each match gets a derived seed.
func NewMatchManager(settings GameSettings, seed int64, logger zerolog.Logger, clock quartz.Clock, bcast Broadcaster) *MatchManager {
	return &MatchManager{
		settings: settings,
		logger:   logger.With().Str("component", "match_manager").Logger(),
		clock:    clock,
		bcast:    bcast,
		matches:  map[string]*MatchRunner{},
		seed:     seed,
	}
}

// Create starts a new match with an unused game code. A per-match round
// cap of 0 falls back to the configured default.
func (mm *MatchManager) Create(roundCap int) (*MatchRunner, error) {
	settings := mm.settings
	if roundCap > 0 {
		settings.RoundCap = roundCap
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	code := newGameCode()
	for _, taken := mm.matches[code]; taken; _, taken = mm.matches[code] {
		code = newGameCode()
	}

	mm.seed++
	runner, err := NewMatchRunner(code, settings, randutil.New(mm.seed), mm.logger, mm.clock, mm.bcast)
	if err != nil {
		return nil, err
	}
	mm.matches[code] = runner
	mm.logger.Info().Str("game_code", code).Int("round_cap", settings.RoundCap).Msg("Match created")
	return runner, nil
}

// Get looks up a match by game code.
func (mm *MatchManager) Get(code string) (*MatchRunner, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	runner, ok := mm.matches[strings.ToUpper(code)]
	if !ok {
		return nil, game.ErrMatchNotFound
	}
	return runner, nil
}

// Remove shuts a match down and forgets its code.
func (mm *MatchManager) Remove(code string) {
	mm.mu.Lock()
	runner, ok := mm.matches[code]
	delete(mm.matches, code)
	mm.mu.Unlock()

	if ok {
		runner.Shutdown()
		mm.logger.Info().Str("game_code", code).Msg("Match removed")
	}
}

// Count returns the number of live matches.
func (mm *MatchManager) Count() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.matches)
}

// newGameCode derives a short uppercase code from a fresh UUID.
func newGameCode() string {
	return strings.ToUpper(uuid.NewString()[:gameCodeLength])
}
