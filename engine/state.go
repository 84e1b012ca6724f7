package engine

import (
	"fmt"
	"maps"
	"slices"

	"flattop/combat"
	"flattop/game"
	"flattop/hex"
	"flattop/observe"
	"flattop/opchart"
	"flattop/weather"
)

// LogEntry is one line of the turn log.
type LogEntry struct {
	Turn   int        `json:"turn"`
	Hour   int        `json:"hour"`
	Phase  game.Phase `json:"phase"`
	Side   game.Side  `json:"side,omitempty"`
	Event  string     `json:"event"`
	Detail string     `json:"detail"`
}

type Outcome struct {
	Over bool `json:"over"`
	// Winner is empty while the game runs and on a draw.
	Winner game.Side `json:"winner,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// State is the authoritative game state. Everything in it is saved.
type State struct {
	Board        *hex.Board                   `json:"board"`
	Chart        *opchart.Chart               `json:"chart"`
	Weather      weather.State                `json:"weather"`
	Clock        game.Clock                   `json:"clock"`
	Phase        game.Phase                   `json:"phase"`
	Done         map[game.Side]bool           `json:"done"`
	Observations map[game.Side]observe.Result `json:"observations"`
	Combats      []combat.Result              `json:"combats"`
	Log          []LogEntry                   `json:"log"`
	Points       map[game.Side]int            `json:"points"`
	Outcome      Outcome                      `json:"outcome"`
}

// Copy returns a state that shares nothing mutable with s. Observation and combat results are
// never changed once recorded, so they are shared.
func (s *State) Copy() *State {
	return &State{
		Board:        s.Board.Copy(),
		Chart:        s.Chart.Copy(),
		Weather:      s.Weather.Copy(),
		Clock:        s.Clock,
		Phase:        s.Phase,
		Done:         maps.Clone(s.Done),
		Observations: maps.Clone(s.Observations),
		Combats:      slices.Clone(s.Combats),
		Log:          slices.Clone(s.Log),
		Points:       maps.Clone(s.Points),
		Outcome:      s.Outcome,
	}
}

// placement is where the chart says a piece belongs.
type placement struct {
	piece hex.Piece
	at    hex.Hex
}

// placements lists every piece the board should carry, in chart order.
func placements(c *opchart.Chart) []placement {
	var out []placement
	for _, tf := range c.TaskForces {
		out = append(out, placement{hex.Piece{ID: tf.ID, Side: tf.Side, Layer: hex.Surface}, tf.Hex})
	}
	for _, b := range c.Bases {
		out = append(out, placement{hex.Piece{ID: b.ID, Side: b.Side, Layer: hex.Fixed}, b.Hex})
	}
	for _, f := range c.Formations {
		if f.Status.Aloft() {
			out = append(out, placement{hex.Piece{ID: f.ID, Side: f.Side, Layer: hex.Air}, f.Hex})
		}
	}
	return out
}

// syncBoard makes the board carry exactly the chart's pieces.
func syncBoard(b *hex.Board, c *opchart.Chart) error {
	want := placements(c)
	keep := make(map[hex.PieceID]bool, len(want))
	for _, p := range want {
		keep[p.piece.ID] = true
	}
	for _, p := range b.Pieces() {
		if !keep[p.ID] {
			if err := b.Remove(p.ID); err != nil {
				return err
			}
		}
	}
	for _, p := range want {
		at, ok := b.Position(p.piece.ID)
		switch {
		case !ok:
			if err := b.Place(p.piece, p.at); err != nil {
				return err
			}
		case at != p.at:
			if err := b.Relocate(p.piece.ID, p.at); err != nil {
				return err
			}
		}
	}
	return nil
}

// consistency reports the first disagreement between board and chart.
func consistency(s *State) error {
	want := placements(s.Chart)
	if len(want) != len(s.Board.Pieces()) {
		return fmt.Errorf("board carries %d pieces, chart has %d", len(s.Board.Pieces()), len(want))
	}
	for _, p := range want {
		got, ok := s.Board.Piece(p.piece.ID)
		if !ok {
			return fmt.Errorf("piece %s is missing from the board", p.piece.ID)
		}
		if got != p.piece {
			return fmt.Errorf("piece %s is %+v on the board, %+v on the chart", p.piece.ID, got, p.piece)
		}
		if at, _ := s.Board.Position(p.piece.ID); at != p.at {
			return fmt.Errorf("piece %s is at %s on the board, %s on the chart", p.piece.ID, at, p.at)
		}
	}
	return nil
}
