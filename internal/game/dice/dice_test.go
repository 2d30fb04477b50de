package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

func TestSeededSource_Reproducible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		a, b := dice.NewSeededSource(seed), dice.NewSeededSource(seed)
		for i := 0; i < 20; i++ {
			v := a.Intn(6)
			assert.Equal(rt, v, b.Intn(6))
			assert.True(rt, v >= 0 && v < 6)
		}
	})
}

func TestSeededSource_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestScriptedSource_ReplaysFacesInOrder(t *testing.T) {
	src := dice.NewScriptedSource(5, 2, 6)
	assert.Equal(t, 4, src.Intn(6))
	assert.Equal(t, 1, src.Intn(6))
	assert.Equal(t, 1, src.Remaining())
	assert.Equal(t, 5, src.Intn(6))
	assert.Equal(t, 0, src.Remaining())
	assert.Panics(t, func() { src.Intn(6) })
}

func TestScriptedSource_PanicsOnFaceOutOfRange(t *testing.T) {
	src := dice.NewScriptedSource(7)
	assert.Panics(t, func() { src.Intn(6) })
}

func TestRoller_Roll_Property_InRange(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		v := roller.Roll(sides)
		assert.GreaterOrEqual(rt, v, 1)
		assert.LessOrEqual(rt, v, sides)
	})
}

func TestRoller_Roll_PanicsOnZeroSides(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zaptest.NewLogger(t))
	assert.Panics(t, func() { roller.Roll(0) })
}

func TestRoller_Roll_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(dice.NewScriptedSource(3), zap.New(core))

	require.Equal(t, 3, roller.Roll(dice.DefaultSides))

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "1d6", fields["expression"])
	assert.EqualValues(t, 3, fields["total"])
}
