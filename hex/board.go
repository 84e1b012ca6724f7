package hex

import (
	"fmt"
	"sort"

	"flattop/game"
)

type Terrain int

const (
	Sea Terrain = iota
	Land
	BaseHex
)

var terrainNames = []string{"sea", "land", "base"}

func (t Terrain) String() string {
	if t < Sea || t > BaseHex {
		return fmt.Sprintf("terrain(%d)", int(t))
	}
	return terrainNames[t]
}

func (t Terrain) MarshalText() ([]byte, error) {
	if t < Sea || t > BaseHex {
		return nil, fmt.Errorf("cannot marshal terrain %d", int(t))
	}
	return []byte(terrainNames[t]), nil
}

func (t *Terrain) UnmarshalText(text []byte) error {
	for i, name := range terrainNames {
		if name == string(text) {
			*t = Terrain(i)
			return nil
		}
	}
	return fmt.Errorf("unknown terrain %q", text)
}

// Layer decides where a piece may stand and what moving costs it.
type Layer int

const (
	// Surface pieces (task forces) sail on sea and into base hexes.
	Surface Layer = iota
	// Air pieces (air formations) fly anywhere.
	Air
	// Fixed pieces (bases) sit on land or base hexes and never move.
	Fixed
)

type PieceID string

type Piece struct {
	ID    PieceID   `json:"id"`
	Side  game.Side `json:"side"`
	Layer Layer     `json:"layer"`
}

// Board is a Width x Height rectangle of axial hexes.
type Board struct {
	width     int
	height    int
	terrain   map[Hex]Terrain
	pieces    map[PieceID]Piece
	positions map[PieceID]Hex
	occupants map[Hex][]PieceID
}

func NewBoard(width, height int) *Board {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("hex: invalid board size %dx%d", width, height))
	}
	return &Board{
		width:     width,
		height:    height,
		terrain:   make(map[Hex]Terrain),
		pieces:    make(map[PieceID]Piece),
		positions: make(map[PieceID]Hex),
		occupants: make(map[Hex][]PieceID),
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) InBounds(h Hex) bool {
	return h.Q >= 0 && h.Q < b.width && h.R >= 0 && h.R < b.height
}

func (b *Board) SetTerrain(h Hex, t Terrain) error {
	if !b.InBounds(h) {
		return game.Errorf(game.CodeInvalidPlacement, "hex %s is off the map", h)
	}
	if t == Sea {
		delete(b.terrain, h)
	} else {
		b.terrain[h] = t
	}
	return nil
}

func (b *Board) Terrain(h Hex) Terrain {
	return b.terrain[h]
}

// Neighbors returns the in-bounds adjacent hexes in direction order.
func (b *Board) Neighbors(h Hex) []Hex {
	neighbors := make([]Hex, 0, 6)
	for d := range Directions {
		n := h.Neighbor(d)
		if b.InBounds(n) {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

func (b *Board) Distance(a, c Hex) int {
	return Distance(a, c)
}

// Within returns every in-bounds hex within radius of center, nearest rings first.
func (b *Board) Within(center Hex, radius int) []Hex {
	var hexes []Hex
	for k := 0; k <= radius; k++ {
		for _, h := range Ring(center, k) {
			if b.InBounds(h) {
				hexes = append(hexes, h)
			}
		}
	}
	return hexes
}

// LineOfSight reports whether no land hex lies strictly between a and c.
// Air pieces always see each other.
func (b *Board) LineOfSight(a, c Hex, layer Layer) bool {
	if layer == Air {
		return true
	}
	line := Line(a, c)
	for _, h := range line[1 : len(line)-1] {
		if b.terrain[h] == Land {
			return false
		}
	}
	return true
}

// Cost returns the movement cost of entering h for a layer, false when impassable.
func (b *Board) Cost(layer Layer, h Hex) (int, bool) {
	if !b.InBounds(h) {
		return 0, false
	}
	switch layer {
	case Air:
		return 1, true
	case Surface:
		if b.terrain[h] == Land {
			return 0, false
		}
		return 1, true
	default:
		return 0, false
	}
}

func (b *Board) canOccupy(layer Layer, h Hex) bool {
	if !b.InBounds(h) {
		return false
	}
	switch layer {
	case Fixed:
		return b.terrain[h] != Sea
	case Surface:
		return b.terrain[h] != Land
	default:
		return true
	}
}

// Place puts a piece on the map.
func (b *Board) Place(p Piece, h Hex) error {
	if !b.InBounds(h) {
		return game.Errorf(game.CodeInvalidPlacement, "hex %s is off the map", h)
	}
	if _, ok := b.positions[p.ID]; ok {
		return game.Errorf(game.CodeInvalidPlacement, "piece %s is already on the map", p.ID)
	}
	if !b.canOccupy(p.Layer, h) {
		return game.Errorf(game.CodeInvalidPlacement, "piece %s cannot stand on %s at %s", p.ID, b.terrain[h], h)
	}
	b.pieces[p.ID] = p
	b.positions[p.ID] = h
	b.occupy(h, p.ID)
	return nil
}

// Relocate moves a placed piece without a movement check.
func (b *Board) Relocate(id PieceID, h Hex) error {
	p, ok := b.pieces[id]
	if !ok {
		return game.Errorf(game.CodeInvalidPlacement, "piece %s is not on the map", id)
	}
	if !b.canOccupy(p.Layer, h) {
		return game.Errorf(game.CodeInvalidPlacement, "piece %s cannot stand at %s", id, h)
	}
	b.vacate(b.positions[id], id)
	b.positions[id] = h
	b.occupy(h, id)
	return nil
}

func (b *Board) Remove(id PieceID) error {
	h, ok := b.positions[id]
	if !ok {
		return game.Errorf(game.CodeInvalidPlacement, "piece %s is not on the map", id)
	}
	b.vacate(h, id)
	delete(b.positions, id)
	delete(b.pieces, id)
	return nil
}

func (b *Board) occupy(h Hex, id PieceID) {
	ids := b.occupants[h]
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	b.occupants[h] = ids
}

func (b *Board) vacate(h Hex, id PieceID) {
	ids := b.occupants[h]
	for i, other := range ids {
		if other == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(b.occupants, h)
	} else {
		b.occupants[h] = ids
	}
}

// PiecesAt returns the ids on h in id order.
func (b *Board) PiecesAt(h Hex) []PieceID {
	ids := b.occupants[h]
	out := make([]PieceID, len(ids))
	copy(out, ids)
	return out
}

func (b *Board) Position(id PieceID) (Hex, bool) {
	h, ok := b.positions[id]
	return h, ok
}

func (b *Board) Piece(id PieceID) (Piece, bool) {
	p, ok := b.pieces[id]
	return p, ok
}

// Pieces returns every placed piece in id order.
func (b *Board) Pieces() []Piece {
	pieces := make([]Piece, 0, len(b.pieces))
	for _, p := range b.pieces {
		pieces = append(pieces, p)
	}
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].ID < pieces[j].ID })
	return pieces
}

// CanMove validates a path for a placed piece. The path excludes the starting hex and
// each step must be adjacent to the previous one.
func (b *Board) CanMove(id PieceID, path []Hex, allowance int) error {
	p, ok := b.pieces[id]
	if !ok {
		return game.Errorf(game.CodeInvalidPlacement, "piece %s is not on the map", id)
	}
	if p.Layer == Fixed {
		return game.Errorf(game.CodeInvalidPlacement, "piece %s cannot move", id)
	}
	cost := 0
	from := b.positions[id]
	for _, step := range path {
		if Distance(from, step) != 1 {
			return game.Errorf(game.CodeInvalidPlacement, "step %s is not adjacent to %s", step, from)
		}
		c, ok := b.Cost(p.Layer, step)
		if !ok {
			return game.Errorf(game.CodeInvalidPlacement, "piece %s cannot enter %s", id, step)
		}
		cost += c
		from = step
	}
	if cost > allowance {
		return game.Errorf(game.CodeInsufficientMovement, "path costs %d, piece %s has %d", cost, id, allowance)
	}
	return nil
}

// Sector maps h onto a cols x rows grid of equal rectangles covering the board.
func (b *Board) Sector(h Hex, cols, rows int) int {
	col := h.Q * cols / b.width
	row := h.R * rows / b.height
	col = min(max(col, 0), cols-1)
	row = min(max(row, 0), rows-1)
	return row*cols + col
}

// Copy returns a deep copy.
func (b *Board) Copy() *Board {
	c := NewBoard(b.width, b.height)
	for h, t := range b.terrain {
		c.terrain[h] = t
	}
	for id, p := range b.pieces {
		c.pieces[id] = p
	}
	for id, h := range b.positions {
		c.positions[id] = h
	}
	for h, ids := range b.occupants {
		cp := make([]PieceID, len(ids))
		copy(cp, ids)
		c.occupants[h] = cp
	}
	return c
}
