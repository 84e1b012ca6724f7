package dice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDice(t *testing.T) {
	t.Run("same seed rolls the same sequence", func(t *testing.T) {
		a, b := New(42), New(42)
		for i := 0; i < 100; i++ {
			require.Equal(t, a.D6(), b.D6(), "Roll %d should match", i)
		}
	})

	t.Run("rolls stay on the die", func(t *testing.T) {
		d := New(7)
		for i := 0; i < 1000; i++ {
			roll := d.D6()
			require.GreaterOrEqual(t, roll, 1)
			require.LessOrEqual(t, roll, 6)
		}
	})

	t.Run("restored state continues the sequence", func(t *testing.T) {
		d := New(99)
		d.D6()
		d.Intn(100)
		restored, err := Restore(d.State())
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			require.Equal(t, d.Intn(1000), restored.Intn(1000), "Restored generator should follow the original")
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		d := New(3)
		c := d.Clone()
		first := c.D6()
		require.Equal(t, first, d.D6(), "Clone should start at the same position")
		c.D6()
		require.NotEqual(t, d.State(), c.State(), "Advancing the clone should not move the original")
	})

	t.Run("short state is rejected", func(t *testing.T) {
		_, err := Restore([]byte{1, 2, 3})
		require.Error(t, err)
	})
}

func TestScript(t *testing.T) {
	s := NewScript(6, 1, 3)
	require.Equal(t, 6, s.D6())
	require.Equal(t, 0, s.Intn(6))
	require.Equal(t, 0, s.Intn(2), "Face 3 should wrap onto the smaller bound")
	require.Equal(t, 3, s.Used())
	require.Panics(t, func() { s.D6() }, "Exhausted script should panic")
}
