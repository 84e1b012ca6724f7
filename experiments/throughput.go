package experiments

import (
	"time"

	"github.com/rs/zerolog"

	"flattop/experiments/metrics"
	"flattop/game"
)

// Summary aggregates the game records of one experiment.
type Summary struct {
	Games        int
	AlliedWins   int
	JapaneseWins int
	Draws        int
	MeanTurns    float64
	MeanCombats  float64
	// GamesPerSecond is the engine throughput with computer players on both sides.
	GamesPerSecond float64
	Elapsed        time.Duration
}

func Summarize(records []metrics.GameRecord) Summary {
	s := Summary{Games: len(records)}
	if len(records) == 0 {
		return s
	}
	turns, combats := 0, 0
	for _, r := range records {
		switch game.Side(r.Winner) {
		case game.Allied:
			s.AlliedWins++
		case game.Japanese:
			s.JapaneseWins++
		default:
			s.Draws++
		}
		turns += r.Turns
		combats += r.Combats
		s.Elapsed += r.Duration
	}
	s.MeanTurns = float64(turns) / float64(len(records))
	s.MeanCombats = float64(combats) / float64(len(records))
	if s.Elapsed > 0 {
		s.GamesPerSecond = float64(len(records)) / s.Elapsed.Seconds()
	}
	return s
}

func (s Summary) Log(log zerolog.Logger) {
	log.Info().
		Int("games", s.Games).
		Int("allied", s.AlliedWins).
		Int("japanese", s.JapaneseWins).
		Int("draws", s.Draws).
		Float64("meanTurns", s.MeanTurns).
		Float64("meanCombats", s.MeanCombats).
		Float64("gamesPerSecond", s.GamesPerSecond).
		Msg("experiment summary")
}
