// Package experiments plays batches of computer-versus-computer games and stores their metrics
// as csv.
package experiments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"flattop/combat"
	"flattop/config"
	"flattop/engine"
	"flattop/experiments/metrics"
	"flattop/game"
	"flattop/opponent"
	"flattop/scenario"
)

// Baseline is the opponent exactly as configured.
func Baseline(cfg config.Config) metrics.AgentConfig {
	o := cfg.Opponent
	return metrics.AgentConfig{
		ID:           0,
		Name:         "baseline",
		Threat:       o.Weights.Threat,
		Preservation: o.Weights.Preservation,
		Mission:      o.Weights.Mission,
		StrikeRadius: o.StrikeRadius,
		MaxSearches:  o.MaxSearches,
	}
}

// weightConfigs leans the baseline toward each priority in turn.
func weightConfigs(cfg config.Config) []metrics.AgentConfig {
	base := Baseline(cfg)
	cautious, aggressive, scouting := base, base, base
	cautious.ID, cautious.Name = 1, "cautious"
	cautious.Threat, cautious.Preservation, cautious.Mission = 0.5, 0.4, 0.1
	aggressive.ID, aggressive.Name = 2, "aggressive"
	aggressive.Threat, aggressive.Preservation, aggressive.Mission = 0.1, 0.1, 0.8
	aggressive.StrikeRadius = base.StrikeRadius + 4
	scouting.ID, scouting.Name = 3, "scouting"
	scouting.MaxSearches = base.MaxSearches + 2
	return []metrics.AgentConfig{cautious, aggressive, scouting}
}

// RunSelfPlay plays the configured number of games with the baseline opponent on both sides.
func RunSelfPlay(ctx context.Context, cfg config.Config, log zerolog.Logger) (string, []metrics.GameRecord, error) {
	base := Baseline(cfg)
	return runExperiment(ctx, cfg, log, "self_play", []metrics.AgentConfig{base}, [][2]metrics.AgentConfig{{base, base}})
}

// RunWeightsExperiment pits every weighting against the baseline, once from each side.
func RunWeightsExperiment(ctx context.Context, cfg config.Config, log zerolog.Logger) (string, []metrics.GameRecord, error) {
	base := Baseline(cfg)
	configs := weightConfigs(cfg)
	matchUps := [][2]metrics.AgentConfig{}
	for _, c := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{c, base}, [2]metrics.AgentConfig{base, c})
	}
	return runExperiment(ctx, cfg, log, "weights", append(configs, base), matchUps)
}

func runExperiment(ctx context.Context, cfg config.Config, log zerolog.Logger, name string,
	configs []metrics.AgentConfig, matchUps [][2]metrics.AgentConfig) (string, []metrics.GameRecord, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	combatRecords := []metrics.CombatRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	games := cfg.Metrics.Games
	for mi, matchUp := range matchUps {
		allied, japanese := matchUp[0], matchUp[1]
		log.Info().Msgf("starting matchup %d of %d between allied=%s and japanese=%s...", mi+1, len(matchUps), allied.Name, japanese.Name)

		for i := 0; i < games; i++ {
			seed := cfg.Seed + uint64(i)
			gameMetric, combats, err := runGame(ctx, cfg, log, seed, allied, japanese)
			if err != nil {
				return "", nil, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Allied:     allied.ID,
				Japanese:   japanese.ID,
				GameMetric: gameMetric,
			})
			for _, r := range combats {
				combatRecords = append(combatRecords, metrics.CombatRecord{Game: count, Result: r})
			}
			log.Info().Msgf("completed matchup %d of %d game %d with winner %q (%s)", mi+1, len(matchUps), i+1, gameMetric.Winner, gameMetric.Reason)
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(cfg.Metrics.OutputDir, name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", nil, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", nil, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteCombatRecords(combatRecords); err != nil {
		return "", nil, fmt.Errorf("failed to write combat records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")
	return writer.Dir(), gameRecords, nil
}

// runGame plays one seeded game to the end.
func runGame(ctx context.Context, cfg config.Config, log zerolog.Logger, seed uint64,
	allied, japanese metrics.AgentConfig) (metrics.GameMetric, []combat.Result, error) {
	setup, err := scenario.ByName(cfg.Scenario)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	collector := metrics.NewCollector()
	e, err := engine.New(cfg.Apply(setup), seed,
		engine.WithRules(cfg.Rules()),
		engine.WithCollector(collector),
		engine.WithLogger(log.Level(zerolog.WarnLevel)))
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	controllers := map[game.Side]engine.Controller{
		game.Allied:   createOpponent(cfg, allied),
		game.Japanese: createOpponent(cfg, japanese),
	}
	outcome, err := e.Run(ctx, controllers)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	gameMetric := collector.Complete()
	gameMetric.Winner = string(outcome.Winner)
	gameMetric.Reason = outcome.Reason
	return gameMetric, e.CombatLog(), nil
}

func createOpponent(cfg config.Config, c metrics.AgentConfig) *opponent.Opponent {
	options := cfg.OpponentOptions()

	if c.Threat+c.Preservation+c.Mission > 0 {
		options = append(options, opponent.WithWeights(opponent.Weights{
			Threat:       c.Threat,
			Preservation: c.Preservation,
			Mission:      c.Mission,
		}))
	}
	if c.StrikeRadius > 0 {
		options = append(options, opponent.WithStrikeRadius(c.StrikeRadius))
	}
	if c.MaxSearches > 0 {
		options = append(options, opponent.WithSearch(cfg.Opponent.SearchSize, c.MaxSearches))
	}
	return opponent.New(options...)
}
