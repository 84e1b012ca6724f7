package weather

import (
	"testing"

	"flattop/dice"
	"flattop/game"
	"flattop/hex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceTurn(t *testing.T) {
	midday := game.Clock{Turn: 2, Day: 1, Hour: 13}

	t.Run("certain transitions", func(t *testing.T) {
		s := New(2, 1, Clear, 1)
		s.Conditions[1] = Storm
		table := Table{ClearToCloudy: 100, StormPersists: 0}
		next := AdvanceTurn(s, midday, dice.Constant(1), table)
		require.Equal(t, []Condition{Cloudy, Cloudy}, next.Conditions)
		require.Equal(t, []Condition{Clear, Storm}, s.Conditions, "Input state should not change")
	})

	t.Run("cloud splits between storm and clearing", func(t *testing.T) {
		s := New(3, 1, Cloudy, 1)
		// Intn(100) on a script yields face-1, so faces 1, 3, 6 roll 0, 2, 5.
		table := Table{CloudyToStorm: 1, CloudyToClear: 2}
		next := AdvanceTurn(s, midday, dice.NewScript(1, 3, 6), table)
		require.Equal(t, []Condition{Storm, Clear, Cloudy}, next.Conditions)
	})

	t.Run("wind shifts on the watch", func(t *testing.T) {
		s := New(3, 1, Clear, 1)
		table := Table{}
		watch := game.Clock{Turn: 6, Day: 1, Hour: 12}
		next := AdvanceTurn(s, watch, dice.NewScript(1, 1, 1, 4, 6, 2), table)
		require.Equal(t, []int{2, 6, 1}, next.Wind)
	})

	t.Run("same seed same weather", func(t *testing.T) {
		a := New(4, 2, Clear, 3)
		b := New(4, 2, Clear, 3)
		ra, rb := dice.New(7), dice.New(7)
		clock := game.NewClock(5)
		for i := 0; i < 48; i++ {
			clock = clock.Advance()
			a = AdvanceTurn(a, clock, ra, DefaultTable())
			b = AdvanceTurn(b, clock, rb, DefaultTable())
		}
		require.Equal(t, a, b)
		require.NoError(t, a.Validate())
	})
}

func TestModifierFor(t *testing.T) {
	s := New(3, 1, Clear, 1)
	s.Conditions[1] = Cloudy
	s.Conditions[2] = Storm

	assert.Equal(t, Modifier{}, s.ModifierFor(0, Bombing))
	assert.Equal(t, Modifier{Value: -1}, s.ModifierFor(1, Observation))
	assert.Equal(t, Modifier{Value: -1}, s.ModifierFor(1, AntiAircraft))
	for _, a := range []Action{Launch, Observation, AirCombat, Bombing} {
		assert.True(t, s.ModifierFor(2, a).Blocked, "Storm should block action %d", a)
	}
	assert.False(t, s.ModifierFor(2, Landing).Blocked, "Aircraft can always try to land")
}

func TestRegion(t *testing.T) {
	b := hex.NewBoard(40, 20)
	s := New(4, 2, Clear, 1)
	s.Conditions[5] = Storm
	require.Equal(t, Region(5), s.Region(b, hex.Hex{Q: 12, R: 15}))
	require.Equal(t, Storm, s.ConditionAt(b, hex.Hex{Q: 12, R: 15}))
	require.Equal(t, Clear, s.ConditionAt(b, hex.Hex{Q: 0, R: 0}))
}

func TestValidate(t *testing.T) {
	require.NoError(t, New(4, 2, Clear, 1).Validate())
	bad := New(4, 2, Clear, 1)
	bad.Wind[3] = 0
	require.Error(t, bad.Validate())
	bad = New(4, 2, Clear, 1)
	bad.Conditions = bad.Conditions[:3]
	require.Error(t, bad.Validate())
	require.Error(t, Table{CloudyToStorm: 60, CloudyToClear: 60}.Validate())
}
