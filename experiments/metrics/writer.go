package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"flattop/combat"
)

// AgentConfig describes one opponent setup taking part in an experiment.
type AgentConfig struct {
	ID           int
	Name         string
	Threat       float64
	Preservation float64
	Mission      float64
	StrikeRadius int
	MaxSearches  int
}

type GameRecord struct {
	ID       int
	Allied   int // AgentConfig.ID
	Japanese int // AgentConfig.ID
	GameMetric
}

type CombatRecord struct {
	Game int // GameRecord.ID
	combat.Result
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped folder for one experiment under root.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	path := filepath.Join(w.baseDir, "agent_configs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create agent configs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "name", "threat", "preservation", "mission", "strike_radius", "max_searches"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write agent configs header: %w", err)
	}

	for _, config := range configs {
		row := []string{
			strconv.Itoa(config.ID),
			config.Name,
			strconv.FormatFloat(config.Threat, 'f', 3, 64),
			strconv.FormatFloat(config.Preservation, 'f', 3, 64),
			strconv.FormatFloat(config.Mission, 'f', 3, 64),
			strconv.Itoa(config.StrikeRadius),
			strconv.Itoa(config.MaxSearches),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write agent config row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "game_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{
		"id", "allied", "japanese", "seed", "winner", "reason", "start_time", "end_time", "duration", "turns", "combats", "rejections",
		"allied_aircraft_lost", "japanese_aircraft_lost", "allied_ships_sunk", "japanese_ships_sunk",
	}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write game records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Allied),
			strconv.Itoa(record.Japanese),
			strconv.FormatUint(record.Seed, 10),
			record.Winner,
			record.Reason,
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.Turns),
			strconv.Itoa(record.Combats),
			strconv.Itoa(record.Rejections),
			strconv.Itoa(record.AlliedAircraftLost),
			strconv.Itoa(record.JapaneseAircraftLost),
			strconv.Itoa(record.AlliedShipsSunk),
			strconv.Itoa(record.JapaneseShipsSunk),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write game record row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteCombatRecords(records []CombatRecord) error {
	path := filepath.Join(w.baseDir, "combat_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create combat records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"game", "sequence", "turn", "hex", "attacker", "target", "missed", "intercepted", "rolls", "aircraft_lost", "hits", "sunk"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write combat records header: %w", err)
	}

	for _, record := range records {
		lost, hits := 0, 0
		for _, l := range record.Losses {
			lost += l.Count
		}
		for _, d := range record.Damage {
			hits += d.Hits
		}
		row := []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Sequence),
			strconv.Itoa(record.Turn),
			record.Hex.String(),
			string(record.Attacker),
			string(record.Target),
			strconv.FormatBool(record.Missed),
			strconv.FormatBool(record.Intercepted),
			strconv.Itoa(len(record.Rolls)),
			strconv.Itoa(lost),
			strconv.Itoa(hits),
			strconv.Itoa(len(record.Sunk)),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write combat record row: %w", err)
		}
	}

	return nil
}
