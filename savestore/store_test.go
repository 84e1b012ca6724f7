package savestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flattop/combat"
	"flattop/engine"
	"flattop/game"
	"flattop/hex"
	"flattop/opchart"
	"flattop/opponent"
	"flattop/scenario"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "flattop.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newGame(t *testing.T, seed uint64) *engine.Engine {
	t.Helper()
	setup, err := scenario.CoralSea()
	require.NoError(t, err)
	rules := engine.StandardRules()
	rules.TurnLimit = 2
	e, err := engine.New(setup, seed, engine.WithRules(rules))
	require.NoError(t, err)
	return e
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	e := newGame(t, 3)
	data, err := e.Export()
	require.NoError(t, err)

	saved, err := s.Save(ctx, "opening", data)
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.Equal(t, 1, saved.Turn)
	assert.Equal(t, e.Phase().String(), saved.Phase)
	assert.False(t, saved.Over)

	loaded, err := s.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "opening", loaded.Name)
	assert.JSONEq(t, string(data), string(loaded.Snapshot))

	t.Run("resume continues the same game", func(t *testing.T) {
		resumed, err := s.Resume(ctx, saved.ID, engine.WithRules(e.Rules()))
		require.NoError(t, err)
		again, err := resumed.Export()
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(again))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Load(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
		_, err = s.Resume(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestSaveRejectsBadSnapshots(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	for name, data := range map[string]string{
		"not json":  "{",
		"no state":  `{"version":1}`,
		"version 0": `{"version":0,"state":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, name, []byte(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, game.ErrInvalidSaveFormat))
		})
	}
	saves, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, saves)
}

func TestFinishedGame(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	e := newGame(t, 11)
	ai := opponent.New()
	outcome, err := e.Run(ctx, map[game.Side]engine.Controller{game.Allied: ai, game.Japanese: ai})
	require.NoError(t, err)
	require.True(t, outcome.Over)

	data, err := e.Export()
	require.NoError(t, err)
	saved, err := s.Save(ctx, "final", data)
	require.NoError(t, err)
	assert.True(t, saved.Over)
	assert.Equal(t, string(outcome.Winner), saved.Winner)

	require.NoError(t, s.ArchiveCombat(ctx, saved.ID, e.CombatLog()))
	history, err := s.CombatHistory(ctx, saved.ID)
	require.NoError(t, err)
	assert.Len(t, history, len(e.CombatLog()))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	data, err := newGame(t, 1).Export()
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Save(ctx, name, data)
		require.NoError(t, err)
	}
	saves, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, saves, 3)
	names := map[string]bool{}
	for _, save := range saves {
		names[save.Name] = true
		assert.Empty(t, save.Snapshot)
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, names)
}

func result(seq int, target string) combat.Result {
	return combat.Result{
		Sequence: seq,
		Turn:     seq,
		Hex:      hex.Hex{Q: seq, R: 2},
		Attacker: game.Japanese,
		Defender: game.Allied,
		Target:   opchart.ID(target),
		Sunk:     []opchart.ID{opchart.ID(target)},
	}
}

func TestCombatArchive(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	first := []combat.Result{result(1, "tf17"), result(2, "port_moresby")}

	require.NoError(t, s.ArchiveCombat(ctx, "game-1", first))
	// Archiving the full log again only adds what is new.
	require.NoError(t, s.ArchiveCombat(ctx, "game-1", append(first, result(3, "tf11"))))
	require.NoError(t, s.ArchiveCombat(ctx, "game-2", []combat.Result{result(1, "rabaul")}))

	history, err := s.CombatHistory(ctx, "game-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, r := range history {
		assert.Equal(t, i+1, r.Sequence)
	}
	assert.Equal(t, result(2, "port_moresby"), history[1])

	none, err := s.CombatHistory(ctx, "game-3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	data, err := newGame(t, 1).Export()
	require.NoError(t, err)
	saved, err := s.Save(ctx, "doomed", data)
	require.NoError(t, err)
	require.NoError(t, s.ArchiveCombat(ctx, saved.ID, []combat.Result{result(1, "tf17")}))

	require.NoError(t, s.Delete(ctx, saved.ID))
	_, err = s.Load(ctx, saved.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	history, err := s.CombatHistory(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.True(t, errors.Is(s.Delete(ctx, saved.ID), ErrNotFound))
}

func TestInMemory(t *testing.T) {
	s, err := Open("", zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.ArchiveCombat(context.Background(), "g", []combat.Result{result(1, "tf17")}))
	history, err := s.CombatHistory(context.Background(), "g")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
