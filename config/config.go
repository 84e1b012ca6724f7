// Package config loads run settings with viper: defaults, an optional JSON or YAML file and
// FLATTOP_* environment overrides, in rising priority.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"flattop/engine"
	"flattop/game"
	"flattop/opponent"
	"flattop/weather"
)

// EnvPrefix prefixes environment overrides, e.g. FLATTOP_OPPONENT_CAPRADIUS.
const EnvPrefix = "FLATTOP"

type OpponentConfig struct {
	CAPRadius    int              `json:"capRadius" mapstructure:"capRadius"`
	StrikeRadius int              `json:"strikeRadius" mapstructure:"strikeRadius"`
	ThreatRadius int              `json:"threatRadius" mapstructure:"threatRadius"`
	StandOff     int              `json:"standOff" mapstructure:"standOff"`
	SearchSize   int              `json:"searchSize" mapstructure:"searchSize"`
	MaxSearches  int              `json:"maxSearches" mapstructure:"maxSearches"`
	FuelMargin   int              `json:"fuelMargin" mapstructure:"fuelMargin"`
	Weights      opponent.Weights `json:"weights" mapstructure:"weights"`
}

// StoreConfig holds the sqlite save store settings
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

type MetricsConfig struct {
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
	Games     int    `json:"games" mapstructure:"games"`
}

type Config struct {
	Seed      uint64            `json:"seed" mapstructure:"seed"`
	TurnLimit int               `json:"turnLimit" mapstructure:"turnLimit"`
	StartHour int               `json:"startHour" mapstructure:"startHour"`
	LogLevel  string            `json:"logLevel" mapstructure:"logLevel"`
	Scenario  string            `json:"scenario" mapstructure:"scenario"`
	Opening   weather.Condition `json:"opening" mapstructure:"opening"`
	Weather   weather.Table     `json:"weather" mapstructure:"weather"`
	Opponent  OpponentConfig    `json:"opponent" mapstructure:"opponent"`
	Store     StoreConfig       `json:"store" mapstructure:"store"`
	Metrics   MetricsConfig     `json:"metrics" mapstructure:"metrics"`
}

func setDefaults() {
	viper.SetDefault("seed", 1)
	viper.SetDefault("turnLimit", engine.DefaultTurnLimit)
	viper.SetDefault("startHour", game.DawnHour)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("scenario", "coral_sea")
	viper.SetDefault("opening", string(weather.Clear))

	table := weather.DefaultTable()
	viper.SetDefault("weather.clear_to_cloudy", table.ClearToCloudy)
	viper.SetDefault("weather.cloudy_to_storm", table.CloudyToStorm)
	viper.SetDefault("weather.cloudy_to_clear", table.CloudyToClear)
	viper.SetDefault("weather.storm_persists", table.StormPersists)

	weights := opponent.DefaultWeights()
	viper.SetDefault("opponent.capRadius", opponent.DefaultCAPRadius)
	viper.SetDefault("opponent.strikeRadius", opponent.DefaultStrikeRadius)
	viper.SetDefault("opponent.threatRadius", opponent.DefaultThreatRadius)
	viper.SetDefault("opponent.standOff", opponent.DefaultStandOff)
	viper.SetDefault("opponent.searchSize", opponent.DefaultSearchSize)
	viper.SetDefault("opponent.maxSearches", opponent.DefaultMaxSearches)
	viper.SetDefault("opponent.fuelMargin", opponent.DefaultFuelMargin)
	viper.SetDefault("opponent.weights.threat", weights.Threat)
	viper.SetDefault("opponent.weights.preservation", weights.Preservation)
	viper.SetDefault("opponent.weights.mission", weights.Mission)

	viper.SetDefault("store.path", "./flattop.db")
	viper.SetDefault("metrics.outputDir", "./experiments/results")
	viper.SetDefault("metrics.games", 10)
}

// Load reads the settings. path names a JSON or YAML file and may be empty.
func Load(path string) (Config, error) {
	setDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TurnLimit < 0 {
		return fmt.Errorf("turn limit %d is negative", c.TurnLimit)
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("start hour %d out of range", c.StartHour)
	}
	if !c.Opening.Valid() {
		return fmt.Errorf("unknown opening weather %q", c.Opening)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	return nil
}

// Level is the zerolog level named by LogLevel, info when it cannot be parsed.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Rules are the standard rules with the configured weather table and turn limit.
func (c Config) Rules() engine.Rules {
	r := engine.StandardRules()
	r.Weather = c.Weather
	r.TurnLimit = c.TurnLimit
	return r
}

func (c Config) OpponentOptions() []opponent.Option {
	o := c.Opponent
	return []opponent.Option{
		opponent.WithCAPRadius(o.CAPRadius),
		opponent.WithStrikeRadius(o.StrikeRadius),
		opponent.WithThreatRadius(o.ThreatRadius),
		opponent.WithStandOff(o.StandOff),
		opponent.WithSearch(o.SearchSize, o.MaxSearches),
		opponent.WithFuelMargin(o.FuelMargin),
		opponent.WithWeights(o.Weights),
	}
}

// Apply sets the configured opening weather and start hour on a scenario setup.
func (c Config) Apply(setup engine.Setup) engine.Setup {
	w := setup.Weather
	setup.Weather = weather.New(w.Cols, w.Rows, c.Opening, 1)
	copy(setup.Weather.Wind, w.Wind)
	setup.Clock = game.NewClock(c.StartHour)
	return setup
}
