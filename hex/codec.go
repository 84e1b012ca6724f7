package hex

import (
	"encoding/json"
	"fmt"
	"sort"

	"flattop/game"
)

type terrainRecord struct {
	Hex
	Terrain Terrain `json:"terrain"`
}

type pieceRecord struct {
	Piece
	At Hex `json:"at"`
}

type boardRecord struct {
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Terrain []terrainRecord `json:"terrain"`
	Pieces  []pieceRecord   `json:"pieces"`
}

// MarshalJSON writes terrain and pieces in a fixed order so equal boards encode identically.
func (b *Board) MarshalJSON() ([]byte, error) {
	rec := boardRecord{Width: b.width, Height: b.height, Terrain: []terrainRecord{}, Pieces: []pieceRecord{}}
	for h, t := range b.terrain {
		rec.Terrain = append(rec.Terrain, terrainRecord{Hex: h, Terrain: t})
	}
	sort.Slice(rec.Terrain, func(i, j int) bool { return rec.Terrain[i].Hex.Less(rec.Terrain[j].Hex) })
	for _, p := range b.Pieces() {
		rec.Pieces = append(rec.Pieces, pieceRecord{Piece: p, At: b.positions[p.ID]})
	}
	return json.Marshal(rec)
}

// UnmarshalJSON rebuilds a board, rejecting records that could not have been produced by play.
func (b *Board) UnmarshalJSON(data []byte) error {
	var rec boardRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return game.Wrap(game.CodeInvalidSaveFormat, err, "cannot decode board")
	}
	if rec.Width <= 0 || rec.Height <= 0 {
		return game.Errorf(game.CodeInvalidSaveFormat, "invalid board size %dx%d", rec.Width, rec.Height)
	}
	nb := NewBoard(rec.Width, rec.Height)
	for _, t := range rec.Terrain {
		if err := nb.SetTerrain(t.Hex, t.Terrain); err != nil {
			return game.Wrap(game.CodeInvalidSaveFormat, err, "invalid terrain")
		}
	}
	for _, p := range rec.Pieces {
		if !p.Side.Valid() {
			return game.Errorf(game.CodeInvalidSaveFormat, "piece %s has unknown side %q", p.ID, p.Side)
		}
		if p.Layer < Surface || p.Layer > Fixed {
			return game.Errorf(game.CodeInvalidSaveFormat, "piece %s has unknown layer %d", p.ID, p.Layer)
		}
		if err := nb.Place(p.Piece, p.At); err != nil {
			return game.Wrap(game.CodeInvalidSaveFormat, err, fmt.Sprintf("cannot place piece %s", p.ID))
		}
	}
	*b = *nb
	return nil
}
