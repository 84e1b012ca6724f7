// Package savestore keeps named game snapshots and an archive of resolved combats in SQLite.
package savestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flattop/combat"
	"flattop/engine"
	"flattop/game"
)

// ErrNotFound is returned for an unknown save id.
var ErrNotFound = errors.New("save not found")

// Save is one named snapshot slot.
type Save struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Name      string         `json:"name" gorm:"index"`
	Turn      int            `json:"turn"`
	Phase     string         `json:"phase"`
	Over      bool           `json:"over"`
	Winner    string         `json:"winner"`
	Snapshot  datatypes.JSON `json:"snapshot,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (*Save) TableName() string {
	return "saves"
}

// CombatRecord archives one combat result of a game.
type CombatRecord struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	GameID    string         `json:"gameId" gorm:"index;size:36"`
	Sequence  int            `json:"sequence" gorm:"index"`
	Turn      int            `json:"turn"`
	Attacker  string         `json:"attacker"`
	Target    string         `json:"target"`
	Result    datatypes.JSON `json:"result"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (*CombatRecord) TableName() string {
	return "combat_records"
}

var models = []interface{}{
	&Save{},
	&CombatRecord{},
}

type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the SQLite file at path, creating it and the schema if needed. An empty
// path opens a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open save store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode = WAL;", "PRAGMA foreign_keys = ON;"} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to migrate save store: %w", err)
	}
	if path == "" {
		log.Info().Msg("Using in-memory save store")
	} else {
		log.Info().Str("path", path).Msg("Using SQLite save store")
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// header is the part of a snapshot the store indexes.
type header struct {
	Version int `json:"version"`
	State   *struct {
		Clock   game.Clock     `json:"clock"`
		Phase   game.Phase     `json:"phase"`
		Outcome engine.Outcome `json:"outcome"`
	} `json:"state"`
}

// Save stores a snapshot produced by engine.Export under a fresh id.
func (s *Store) Save(ctx context.Context, name string, snapshot []byte) (Save, error) {
	var h header
	if err := json.Unmarshal(snapshot, &h); err != nil {
		return Save{}, game.Wrap(game.CodeInvalidSaveFormat, err, "snapshot is not valid JSON")
	}
	if h.Version != engine.SnapshotVersion || h.State == nil {
		return Save{}, game.Errorf(game.CodeInvalidSaveFormat, "snapshot version %d has no state", h.Version)
	}
	save := Save{
		ID:       uuid.NewString(),
		Name:     name,
		Turn:     h.State.Clock.Turn,
		Phase:    h.State.Phase.String(),
		Over:     h.State.Outcome.Over,
		Winner:   string(h.State.Outcome.Winner),
		Snapshot: datatypes.JSON(snapshot),
	}
	if err := s.db.WithContext(ctx).Create(&save).Error; err != nil {
		return Save{}, fmt.Errorf("failed to save %q: %w", name, err)
	}
	s.log.Debug().Msgf("saved %q as %s (turn %d, %s)", name, save.ID, save.Turn, save.Phase)
	return save, nil
}

// Load fetches a save with its snapshot.
func (s *Store) Load(ctx context.Context, id string) (Save, error) {
	var save Save
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&save).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Save{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Save{}, fmt.Errorf("failed to load save %s: %w", id, err)
	}
	return save, nil
}

// Resume loads a save and imports it into a new engine.
func (s *Store) Resume(ctx context.Context, id string, opts ...engine.Option) (*engine.Engine, error) {
	save, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return engine.Import(save.Snapshot, opts...)
}

// List returns every save, newest first, without snapshots.
func (s *Store) List(ctx context.Context) ([]Save, error) {
	var saves []Save
	err := s.db.WithContext(ctx).
		Select("id", "name", "turn", "phase", "over", "winner", "created_at").
		Order("created_at desc").Order("id").
		Find(&saves).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	return saves, nil
}

// Delete removes a save and the combats archived under its id.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&Save{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete save %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := tx.Where("game_id = ?", id).Delete(&CombatRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete combats of %s: %w", id, err)
		}
		return nil
	})
}

// ArchiveCombat appends combat results to a game's history. Results already archived, by
// sequence number, are skipped so a whole combat log can be archived after every save.
func (s *Store) ArchiveCombat(ctx context.Context, gameID string, results []combat.Result) error {
	var last int
	err := s.db.WithContext(ctx).Model(&CombatRecord{}).
		Where("game_id = ?", gameID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return fmt.Errorf("failed to read combat history of %s: %w", gameID, err)
	}
	var records []CombatRecord
	for _, r := range results {
		if r.Sequence <= last {
			continue
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode combat %d: %w", r.Sequence, err)
		}
		records = append(records, CombatRecord{
			GameID:   gameID,
			Sequence: r.Sequence,
			Turn:     r.Turn,
			Attacker: string(r.Attacker),
			Target:   string(r.Target),
			Result:   datatypes.JSON(data),
		})
	}
	if len(records) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to archive combats of %s: %w", gameID, err)
	}
	s.log.Debug().Msgf("archived %d combats of %s", len(records), gameID)
	return nil
}

// CombatHistory returns a game's archived combats in sequence order.
func (s *Store) CombatHistory(ctx context.Context, gameID string) ([]combat.Result, error) {
	var records []CombatRecord
	err := s.db.WithContext(ctx).Where("game_id = ?", gameID).Order("sequence").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read combat history of %s: %w", gameID, err)
	}
	results := make([]combat.Result, 0, len(records))
	for _, rec := range records {
		var r combat.Result
		if err := json.Unmarshal(rec.Result, &r); err != nil {
			return nil, fmt.Errorf("failed to decode combat %d of %s: %w", rec.Sequence, gameID, err)
		}
		results = append(results, r)
	}
	return results, nil
}
