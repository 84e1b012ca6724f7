package experiments

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flattop/config"
	"flattop/experiments/metrics"
	"flattop/game"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Cleanup(viper.Reset)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.TurnLimit = 3
	cfg.Metrics.Games = 2
	cfg.Metrics.OutputDir = t.TempDir()
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRunSelfPlay(t *testing.T) {
	cfg := testConfig(t)
	dir, records, err := RunSelfPlay(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, records, 2)

	for i, r := range records {
		assert.Equal(t, i+1, r.ID)
		assert.Equal(t, cfg.Seed+uint64(i), r.Seed)
		assert.NotEmpty(t, r.Reason)
		assert.LessOrEqual(t, r.Turns, cfg.TurnLimit)
	}

	games := readCSV(t, filepath.Join(dir, "game_records.csv"))
	assert.Len(t, games, 3)
	assert.Equal(t, "id", games[0][0])
	configs := readCSV(t, filepath.Join(dir, "agent_configs.csv"))
	assert.Len(t, configs, 2)
	assert.Equal(t, "baseline", configs[1][1])
	_, err = os.Stat(filepath.Join(dir, "combat_records.csv"))
	assert.NoError(t, err)
}

func TestSelfPlayIsReproducible(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Games = 1
	_, first, err := RunSelfPlay(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	_, second, err := RunSelfPlay(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	a, b := first[0], second[0]
	assert.Equal(t, a.Winner, b.Winner)
	assert.Equal(t, a.Reason, b.Reason)
	assert.Equal(t, a.Turns, b.Turns)
	assert.Equal(t, a.Combats, b.Combats)
	assert.Equal(t, a.AlliedShipsSunk, b.AlliedShipsSunk)
}

func TestRunWeightsExperiment(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Games = 1
	dir, records, err := RunWeightsExperiment(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, records, 6)

	// Every variant plays once from each side against the baseline.
	sides := map[int][]int{}
	for _, r := range records {
		if r.Allied != 0 {
			sides[r.Allied] = append(sides[r.Allied], r.Japanese)
		}
		if r.Japanese != 0 {
			sides[r.Japanese] = append(sides[r.Japanese], r.Allied)
		}
	}
	assert.Equal(t, map[int][]int{1: {0, 0}, 2: {0, 0}, 3: {0, 0}}, sides)
	assert.Len(t, readCSV(t, filepath.Join(dir, "agent_configs.csv")), 5)
}

func TestCancelledRun(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := RunSelfPlay(ctx, cfg, zerolog.Nop())
	require.ErrorIs(t, err, context.Canceled)
}

func TestCreateOpponent(t *testing.T) {
	cfg := testConfig(t)
	base := Baseline(cfg)
	assert.Equal(t, cfg.Opponent.Weights.Threat, base.Threat)
	assert.NotNil(t, createOpponent(cfg, base))

	for _, c := range weightConfigs(cfg) {
		assert.NotZero(t, c.ID)
		assert.NotEqual(t, base, c)
		assert.NotNil(t, createOpponent(cfg, c))
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	records := []metrics.GameRecord{
		{ID: 1, GameMetric: metrics.GameMetric{Winner: string(game.Allied), Turns: 10, Combats: 2, Duration: time.Second}},
		{ID: 2, GameMetric: metrics.GameMetric{Winner: string(game.Japanese), Turns: 20, Combats: 4, Duration: time.Second}},
		{ID: 3, GameMetric: metrics.GameMetric{Turns: 30, Combats: 0, Duration: 2 * time.Second}},
	}
	s := Summarize(records)
	assert.Equal(t, 3, s.Games)
	assert.Equal(t, 1, s.AlliedWins)
	assert.Equal(t, 1, s.JapaneseWins)
	assert.Equal(t, 1, s.Draws)
	assert.InDelta(t, 20.0, s.MeanTurns, 1e-9)
	assert.InDelta(t, 2.0, s.MeanCombats, 1e-9)
	assert.InDelta(t, 0.75, s.GamesPerSecond, 1e-9)
	assert.Equal(t, 4*time.Second, s.Elapsed)
}
