package server

import (
	"strings"
	"testing"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmatth/judgement/internal/game"
)

func newTestManager(t *testing.T) *MatchManager {
	t.Helper()
	return NewMatchManager(testSettings(7), 1, zerolog.Nop(), quartz.NewMock(t), newFakeBroadcaster())
}

func TestManagerCreateAssignsCodes(t *testing.T) {
	mm := newTestManager(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		runner, err := mm.Create(0)
		require.NoError(t, err)

		code := runner.Code()
		assert.Len(t, code, gameCodeLength)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Equal(t, 20, mm.Count())
}

func TestManagerRoundCapOverride(t *testing.T) {
	mm := newTestManager(t)

	runner, err := mm.Create(0)
	require.NoError(t, err)
	assert.Equal(t, 7, runner.Match().Config().RoundCap, "zero falls back to the default")

	runner, err = mm.Create(3)
	require.NoError(t, err)
	assert.Equal(t, 3, runner.Match().Config().RoundCap)

	_, err = mm.Create(12)
	assert.Error(t, err, "cap outside [1,11]")
}

func TestManagerGet(t *testing.T) {
	mm := newTestManager(t)

	runner, err := mm.Create(0)
	require.NoError(t, err)

	got, err := mm.Get(runner.Code())
	require.NoError(t, err)
	assert.Same(t, runner, got)

	got, err = mm.Get(strings.ToLower(runner.Code()))
	require.NoError(t, err)
	assert.Same(t, runner, got, "codes are case-insensitive on lookup")

	_, err = mm.Get("NOPE00")
	assert.ErrorIs(t, err, game.ErrMatchNotFound)
}

func TestManagerRemove(t *testing.T) {
	mm := newTestManager(t)

	runner, err := mm.Create(0)
	require.NoError(t, err)
	require.Equal(t, 1, mm.Count())

	mm.Remove(runner.Code())
	assert.Equal(t, 0, mm.Count())
	_, err = mm.Get(runner.Code())
	assert.ErrorIs(t, err, game.ErrMatchNotFound)

	// Removing twice is harmless.
	mm.Remove(runner.Code())
}
