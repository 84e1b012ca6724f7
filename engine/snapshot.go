package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"flattop/combat"
	"flattop/dice"
	"flattop/game"
	"flattop/observe"
)

// SnapshotVersion is bumped whenever the saved layout changes.
const SnapshotVersion = 1

type snapshot struct {
	Version int    `json:"version"`
	State   *State `json:"state"`
	Dice    []byte `json:"dice"`
}

// Export encodes the whole game, random generator included. Equal games export equal bytes.
func (e *Engine) Export() ([]byte, error) {
	data, err := json.Marshal(snapshot{Version: SnapshotVersion, State: e.state, Dice: e.dice.State()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Import resumes a game from Export output. Anything that play could not have produced is
// rejected with an InvalidSaveFormat error.
func Import(data []byte, opts ...Option) (*Engine, error) {
	e := newEngine(opts)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var snap snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, game.Wrap(game.CodeInvalidSaveFormat, err, "cannot decode snapshot")
	}
	if snap.Version != SnapshotVersion {
		return nil, game.Errorf(game.CodeInvalidSaveFormat, "snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	s := snap.State
	if s == nil || s.Board == nil || s.Chart == nil {
		return nil, game.Errorf(game.CodeInvalidSaveFormat, "snapshot is missing board or chart")
	}
	s.Chart.UseCatalog(e.rules.Catalog)
	if err := s.Chart.Validate(); err != nil {
		return nil, game.Wrap(game.CodeInvalidSaveFormat, err, "invalid chart")
	}
	if err := s.Weather.Validate(); err != nil {
		return nil, game.Wrap(game.CodeInvalidSaveFormat, err, "invalid weather")
	}
	if !s.Phase.Valid() || s.Clock.Turn < 1 || s.Clock.Hour < 0 || s.Clock.Hour > 23 {
		return nil, game.Errorf(game.CodeInvalidSaveFormat, "invalid clock or phase")
	}
	if err := consistency(s); err != nil {
		return nil, game.Wrap(game.CodeInvalidSaveFormat, err, "board does not match chart")
	}
	if s.Done == nil {
		s.Done = map[game.Side]bool{}
	}
	if s.Observations == nil {
		s.Observations = map[game.Side]observe.Result{}
	}
	if s.Combats == nil {
		s.Combats = []combat.Result{}
	}
	if s.Log == nil {
		s.Log = []LogEntry{}
	}
	if s.Points == nil {
		s.Points = map[game.Side]int{}
	}
	d, err := dice.Restore(snap.Dice)
	if err != nil {
		return nil, game.Wrap(game.CodeInvalidSaveFormat, err, "invalid dice state")
	}
	e.state, e.dice = s, d
	return e, nil
}
