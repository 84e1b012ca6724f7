// Package hex models the map: axial hex coordinates, terrain and piece occupancy.
package hex

import (
	"fmt"
	"math"
)

// Hex is an axial coordinate.
type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Directions in fixed order: E, NE, NW, W, SW, SE.
var Directions = [6]Hex{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

func (h Hex) Add(o Hex) Hex {
	return Hex{Q: h.Q + o.Q, R: h.R + o.R}
}

func (h Hex) Scale(k int) Hex {
	return Hex{Q: h.Q * k, R: h.R * k}
}

// Neighbor returns the adjacent hex in direction d (0..5, wrapping).
func (h Hex) Neighbor(d int) Hex {
	return h.Add(Directions[((d%6)+6)%6])
}

func (h Hex) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// Less orders hexes by row then column. Used wherever ties need a fixed order.
func (h Hex) Less(o Hex) bool {
	if h.R != o.R {
		return h.R < o.R
	}
	return h.Q < o.Q
}

// Distance is the hex-grid metric.
func Distance(a, b Hex) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Ring returns the hexes exactly radius steps away, unbounded by any board.
func Ring(center Hex, radius int) []Hex {
	if radius <= 0 {
		return []Hex{center}
	}
	ring := make([]Hex, 0, 6*radius)
	h := center.Add(Directions[4].Scale(radius))
	for d := 0; d < 6; d++ {
		for i := 0; i < radius; i++ {
			ring = append(ring, h)
			h = h.Neighbor(d)
		}
	}
	return ring
}

// Line returns the hexes on the straight line from a to b, both ends included.
func Line(a, b Hex) []Hex {
	n := Distance(a, b)
	if n == 0 {
		return []Hex{a}
	}
	line := make([]Hex, 0, n+1)
	// Nudge avoids landing exactly on hex edges.
	const eps = 1e-6
	aq, ar := float64(a.Q)+eps, float64(a.R)+eps
	bq, br := float64(b.Q)+eps, float64(b.R)+eps
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		line = append(line, round(aq+(bq-aq)*t, ar+(br-ar)*t))
	}
	return line
}

func round(fq, fr float64) Hex {
	fs := -fq - fr
	q, r, s := math.Round(fq), math.Round(fr), math.Round(fs)
	dq, dr, ds := math.Abs(q-fq), math.Abs(r-fr), math.Abs(s-fs)
	if dq > dr && dq > ds {
		q = -r - s
	} else if dr > ds {
		r = -q - s
	}
	return Hex{Q: int(q), R: int(r)}
}
