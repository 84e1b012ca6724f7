package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flattop/combat"
	"flattop/game"
	"flattop/hex"
	"flattop/opchart"
)

func strike() combat.Result {
	return combat.Result{
		Sequence: 1,
		Turn:     3,
		Hex:      hex.Hex{Q: 4, R: 5},
		Attacker: game.Japanese,
		Defender: game.Allied,
		Target:   "tf17",
		Losses: []combat.Loss{
			{Formation: "kido-strike", Side: game.Japanese, Aircraft: "Val", Count: 2},
			{Formation: "tf17-cap", Side: game.Allied, Aircraft: "Wildcat", Count: 1},
		},
		Damage: []combat.Damage{{Unit: "yorktown", TaskForce: "tf17", Hits: 3, Sunk: true}},
		Sunk:   []opchart.ID{"yorktown"},
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start(7)
	c.AddTurn()
	c.AddTurn()
	c.AddCombat(strike())
	c.AddRejection()

	m := c.Complete()
	assert.Equal(t, uint64(7), m.Seed)
	assert.Equal(t, 2, m.Turns)
	assert.Equal(t, 1, m.Combats)
	assert.Equal(t, 1, m.Rejections)
	assert.Equal(t, 1, m.AlliedAircraftLost)
	assert.Equal(t, 2, m.JapaneseAircraftLost)
	assert.Equal(t, 1, m.AlliedShipsSunk)
	assert.Equal(t, 0, m.JapaneseShipsSunk)
	assert.False(t, m.EndTime.Before(m.StartTime))

	t.Run("dummy records nothing", func(t *testing.T) {
		d := NewDummyCollector()
		d.Start(7)
		d.AddTurn()
		d.AddCombat(strike())
		assert.Equal(t, GameMetric{}, d.Complete())
	})
}

func read(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, "unit")
	require.NoError(t, err)
	rel, err := filepath.Rel(root, w.Dir())
	require.NoError(t, err)
	assert.Equal(t, "unit", filepath.Dir(rel))

	require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 0, Name: "baseline", Threat: 0.4, Preservation: 0.2, Mission: 0.4, StrikeRadius: 12, MaxSearches: 2}}))
	rows := read(t, filepath.Join(w.Dir(), "agent_configs.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"0", "baseline", "0.400", "0.200", "0.400", "12", "2"}, rows[1])

	start := time.Date(2026, 5, 7, 6, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteGameRecords([]GameRecord{{
		ID: 1, Allied: 0, Japanese: 2,
		GameMetric: GameMetric{Seed: 9, Winner: "japanese", Reason: "carriers sunk", StartTime: start,
			EndTime: start.Add(time.Second), Duration: time.Second, Turns: 12, Combats: 3, AlliedShipsSunk: 1},
	}}))
	rows = read(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, []string{"1", "0", "2", "9", "japanese", "carriers sunk"}, rows[1][:6])
	assert.Equal(t, "1s", rows[1][8])

	require.NoError(t, w.WriteCombatRecords([]CombatRecord{{Game: 1, Result: strike()}}))
	rows = read(t, filepath.Join(w.Dir(), "combat_records.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "1", "3"}, rows[1][:3])
	// aircraft lost, hits, sunk
	assert.Equal(t, []string{"3", "3", "1"}, rows[1][9:])
}
