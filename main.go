package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"flattop/config"
	"flattop/engine"
	"flattop/experiments"
	"flattop/game"
	"flattop/opponent"
	"flattop/savestore"
	"flattop/scenario"
)

func main() {
	configPath := flag.String("config", "", "JSON or YAML settings file")
	mode := flag.String("mode", "play", "play, resume, list, delete, selfplay or weights")
	saveID := flag.String("save", "", "Save id for resume and delete")
	name := flag.String("name", "", "Name to store the finished game under")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flattop: %v\n", err)
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(cfg.Level())
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *mode, *saveID, *name); err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func run(ctx context.Context, cfg config.Config, mode, saveID, name string) error {
	switch mode {
	case "selfplay":
		_, records, err := experiments.RunSelfPlay(ctx, cfg, log.Logger)
		if err != nil {
			return err
		}
		experiments.Summarize(records).Log(log.Logger)
		return nil
	case "weights":
		_, records, err := experiments.RunWeightsExperiment(ctx, cfg, log.Logger)
		if err != nil {
			return err
		}
		experiments.Summarize(records).Log(log.Logger)
		return nil
	}

	store, err := savestore.Open(cfg.Store.Path, log.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	switch mode {
	case "play":
		setup, err := scenario.ByName(cfg.Scenario)
		if err != nil {
			return err
		}
		e, err := engine.New(cfg.Apply(setup), cfg.Seed, engine.WithRules(cfg.Rules()), engine.WithLogger(log.Logger))
		if err != nil {
			return err
		}
		if name == "" {
			name = fmt.Sprintf("%s-%d", cfg.Scenario, cfg.Seed)
		}
		return playAndSave(ctx, cfg, store, e, name)
	case "resume":
		e, err := store.Resume(ctx, saveID, engine.WithRules(cfg.Rules()), engine.WithLogger(log.Logger))
		if err != nil {
			return err
		}
		if name == "" {
			name = saveID
		}
		return playAndSave(ctx, cfg, store, e, name)
	case "list":
		saves, err := store.List(ctx)
		if err != nil {
			return err
		}
		for _, s := range saves {
			fmt.Printf("%s  %-24s turn %-3d %-15s over=%t winner=%s\n", s.ID, s.Name, s.Turn, s.Phase, s.Over, s.Winner)
		}
		return nil
	case "delete":
		return store.Delete(ctx, saveID)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// playAndSave runs the computer opponent for both sides and stores the game, even when
// interrupted, so it can be resumed.
func playAndSave(ctx context.Context, cfg config.Config, store *savestore.Store, e *engine.Engine, name string) error {
	ai := opponent.New(append(cfg.OpponentOptions(), opponent.WithLogger(log.Logger))...)
	outcome, runErr := e.Run(ctx, map[game.Side]engine.Controller{game.Allied: ai, game.Japanese: ai})

	data, err := e.Export()
	if err != nil {
		return err
	}
	// The interrupt is over; saving must still go through.
	saved, err := store.Save(context.Background(), name, data)
	if err != nil {
		return err
	}
	if err := store.ArchiveCombat(context.Background(), saved.ID, e.CombatLog()); err != nil {
		return err
	}
	log.Info().Str("save", saved.ID).Msgf("stored %q at turn %d", name, saved.Turn)
	if runErr != nil {
		return runErr
	}
	log.Info().Msgf("game over: winner %q (%s)", outcome.Winner, outcome.Reason)
	return nil
}
