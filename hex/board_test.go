package hex

import (
	"encoding/json"
	"errors"
	"testing"

	"flattop/game"

	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	b := NewBoard(12, 10)
	t.Run("identity and symmetry hold for every pair", func(t *testing.T) {
		var all []Hex
		for q := 0; q < b.Width(); q++ {
			for r := 0; r < b.Height(); r++ {
				all = append(all, Hex{Q: q, R: r})
			}
		}
		for _, a := range all {
			require.Equal(t, 0, Distance(a, a))
			for _, c := range all {
				require.Equal(t, Distance(a, c), Distance(c, a), "Distance %s-%s should be symmetric", a, c)
			}
		}
	})

	t.Run("neighbors are one step away", func(t *testing.T) {
		for _, n := range b.Neighbors(Hex{Q: 5, R: 5}) {
			require.Equal(t, 1, Distance(Hex{Q: 5, R: 5}, n))
		}
	})

	t.Run("known distances", func(t *testing.T) {
		require.Equal(t, 3, Distance(Hex{Q: 0, R: 0}, Hex{Q: 3, R: 0}))
		require.Equal(t, 3, Distance(Hex{Q: 0, R: 3}, Hex{Q: 3, R: 0}))
		require.Equal(t, 6, Distance(Hex{Q: 0, R: 0}, Hex{Q: 3, R: 3}))
	})
}

func TestNeighbors(t *testing.T) {
	b := NewBoard(4, 4)
	require.Len(t, b.Neighbors(Hex{Q: 1, R: 1}), 6, "Interior hex should have six neighbors")
	require.Len(t, b.Neighbors(Hex{Q: 0, R: 0}), 2, "Corner hex should lose off-map neighbors")
	require.Equal(t, []Hex{{Q: 1, R: 0}, {Q: 0, R: 1}}, b.Neighbors(Hex{Q: 0, R: 0}), "Neighbors should follow direction order")
}

func TestRingAndLine(t *testing.T) {
	center := Hex{Q: 5, R: 5}
	for k := 1; k <= 3; k++ {
		ring := Ring(center, k)
		require.Len(t, ring, 6*k)
		for _, h := range ring {
			require.Equal(t, k, Distance(center, h))
		}
	}
	line := Line(Hex{Q: 0, R: 0}, Hex{Q: 4, R: -2})
	require.Len(t, line, 5)
	for i := 1; i < len(line); i++ {
		require.Equal(t, 1, Distance(line[i-1], line[i]), "Line should be contiguous")
	}
}

func TestPlacement(t *testing.T) {
	t.Run("off-map placement is rejected", func(t *testing.T) {
		b := NewBoard(5, 5)
		err := b.Place(Piece{ID: "tf1", Side: game.Allied, Layer: Surface}, Hex{Q: 5, R: 0})
		require.True(t, errors.Is(err, game.ErrInvalidPlacement))
		require.Empty(t, b.Pieces(), "Rejected placement should not change the board")
	})

	t.Run("ships cannot stand on land and bases cannot float", func(t *testing.T) {
		b := NewBoard(5, 5)
		require.NoError(t, b.SetTerrain(Hex{Q: 2, R: 2}, Land))
		err := b.Place(Piece{ID: "tf1", Side: game.Allied, Layer: Surface}, Hex{Q: 2, R: 2})
		require.Equal(t, game.CodeInvalidPlacement, game.CodeOf(err))
		err = b.Place(Piece{ID: "base", Side: game.Allied, Layer: Fixed}, Hex{Q: 1, R: 1})
		require.Equal(t, game.CodeInvalidPlacement, game.CodeOf(err))
		require.NoError(t, b.Place(Piece{ID: "base", Side: game.Allied, Layer: Fixed}, Hex{Q: 2, R: 2}))
	})

	t.Run("occupancy tracks place, relocate and remove", func(t *testing.T) {
		b := NewBoard(5, 5)
		h := Hex{Q: 1, R: 1}
		require.NoError(t, b.Place(Piece{ID: "b", Side: game.Allied, Layer: Air}, h))
		require.NoError(t, b.Place(Piece{ID: "a", Side: game.Japanese, Layer: Air}, h))
		require.Equal(t, []PieceID{"a", "b"}, b.PiecesAt(h), "Occupants should be kept in id order")

		require.NoError(t, b.Relocate("a", Hex{Q: 2, R: 1}))
		require.Equal(t, []PieceID{"b"}, b.PiecesAt(h))
		pos, ok := b.Position("a")
		require.True(t, ok)
		require.Equal(t, Hex{Q: 2, R: 1}, pos)

		require.NoError(t, b.Remove("b"))
		require.Empty(t, b.PiecesAt(h))
		require.Error(t, b.Remove("b"), "Removing twice should fail")
	})

	t.Run("placing twice is rejected", func(t *testing.T) {
		b := NewBoard(5, 5)
		p := Piece{ID: "tf1", Side: game.Allied, Layer: Surface}
		require.NoError(t, b.Place(p, Hex{Q: 0, R: 0}))
		require.Equal(t, game.CodeInvalidPlacement, game.CodeOf(b.Place(p, Hex{Q: 1, R: 0})))
	})
}

func TestCanMove(t *testing.T) {
	b := NewBoard(6, 6)
	require.NoError(t, b.SetTerrain(Hex{Q: 2, R: 0}, Land))
	require.NoError(t, b.Place(Piece{ID: "tf", Side: game.Allied, Layer: Surface}, Hex{Q: 0, R: 0}))
	require.NoError(t, b.Place(Piece{ID: "af", Side: game.Allied, Layer: Air}, Hex{Q: 0, R: 0}))

	t.Run("path within allowance", func(t *testing.T) {
		require.NoError(t, b.CanMove("tf", []Hex{{Q: 1, R: 0}, {Q: 1, R: 1}}, 2))
	})

	t.Run("path beyond allowance", func(t *testing.T) {
		err := b.CanMove("tf", []Hex{{Q: 1, R: 0}, {Q: 1, R: 1}, {Q: 2, R: 1}}, 2)
		require.True(t, errors.Is(err, game.ErrInsufficientMovement))
	})

	t.Run("ships cannot cross land, aircraft can", func(t *testing.T) {
		path := []Hex{{Q: 1, R: 0}, {Q: 2, R: 0}}
		require.Equal(t, game.CodeInvalidPlacement, game.CodeOf(b.CanMove("tf", path, 5)))
		require.NoError(t, b.CanMove("af", path, 5))
	})

	t.Run("gaps in the path are rejected", func(t *testing.T) {
		require.Equal(t, game.CodeInvalidPlacement, game.CodeOf(b.CanMove("tf", []Hex{{Q: 3, R: 3}}, 10)))
	})
}

func TestPath(t *testing.T) {
	b := NewBoard(6, 6)
	for _, h := range []Hex{{Q: 2, R: 2}, {Q: 2, R: 3}, {Q: 3, R: 2}, {Q: 3, R: 3}} {
		require.NoError(t, b.SetTerrain(h, Land))
	}
	steps, ok := b.Path(Hex{Q: 1, R: 2}, Hex{Q: 4, R: 2}, Surface)
	require.True(t, ok, "A route around the island should exist")
	require.Equal(t, Hex{Q: 4, R: 2}, steps[len(steps)-1])
	for _, s := range steps {
		require.NotEqual(t, Land, b.Terrain(s), "Surface route should avoid land")
	}

	_, ok = b.Path(Hex{Q: 1, R: 2}, Hex{Q: 2, R: 2}, Surface)
	require.False(t, ok, "Land destination should be unreachable by sea")

	routes := b.Reachable(Hex{Q: 0, R: 0}, Surface, 1)
	require.Len(t, routes, 3, "Corner start should reach itself and two neighbors")
	require.Len(t, b.StepToward(Hex{Q: 0, R: 0}, Hex{Q: 5, R: 0}, Air, 2), 2)
}

func TestLineOfSight(t *testing.T) {
	b := NewBoard(6, 3)
	require.NoError(t, b.SetTerrain(Hex{Q: 2, R: 1}, Land))
	require.False(t, b.LineOfSight(Hex{Q: 0, R: 1}, Hex{Q: 4, R: 1}, Surface))
	require.True(t, b.LineOfSight(Hex{Q: 0, R: 1}, Hex{Q: 4, R: 1}, Air))
	require.True(t, b.LineOfSight(Hex{Q: 0, R: 0}, Hex{Q: 4, R: 0}, Surface))
}

func TestSector(t *testing.T) {
	b := NewBoard(80, 44)
	require.Equal(t, 0, b.Sector(Hex{Q: 0, R: 0}, 4, 2))
	require.Equal(t, 3, b.Sector(Hex{Q: 79, R: 0}, 4, 2))
	require.Equal(t, 4, b.Sector(Hex{Q: 0, R: 43}, 4, 2))
	require.Equal(t, 7, b.Sector(Hex{Q: 79, R: 43}, 4, 2))
}

func TestBoardJSON(t *testing.T) {
	b := NewBoard(6, 6)
	require.NoError(t, b.SetTerrain(Hex{Q: 3, R: 3}, BaseHex))
	require.NoError(t, b.SetTerrain(Hex{Q: 4, R: 3}, Land))
	require.NoError(t, b.Place(Piece{ID: "base", Side: game.Japanese, Layer: Fixed}, Hex{Q: 3, R: 3}))
	require.NoError(t, b.Place(Piece{ID: "tf", Side: game.Allied, Layer: Surface}, Hex{Q: 0, R: 1}))

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var restored Board
	require.NoError(t, json.Unmarshal(data, &restored))
	again, err := json.Marshal(&restored)
	require.NoError(t, err)
	require.JSONEq(t, string(data), string(again))
	require.Equal(t, b.PiecesAt(Hex{Q: 3, R: 3}), restored.PiecesAt(Hex{Q: 3, R: 3}))

	t.Run("inconsistent records are rejected", func(t *testing.T) {
		var bad Board
		err := json.Unmarshal([]byte(`{"width":2,"height":2,"terrain":[],"pieces":[{"id":"x","side":"allied","layer":0,"at":{"q":9,"r":9}}]}`), &bad)
		require.Equal(t, game.CodeInvalidSaveFormat, game.CodeOf(err))
	})
}
