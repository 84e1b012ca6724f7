package opponent

import (
	"math"

	"flattop/hex"
	"flattop/opchart"
)

// ScoreTaskForce rates a hex for a task force between -1 and 1 from its own side's point of view.
func (o *Opponent) scoreTaskForce(p *picture, tf *opchart.TaskForce, at hex.Hex) float64 {
	w := o.weights
	return clamp(w.Threat*o.threat(p, at) + w.Preservation*o.preservation(p, tf, at) + w.Mission*o.mission(p, tf, at))
}

// threat is minus the proximity of the closest located enemy, ships and aircraft alike.
func (o *Opponent) threat(p *picture, at hex.Hex) float64 {
	worst := 0.0
	for _, c := range p.contacts() {
		worst = math.Max(worst, proximity(hex.Distance(at, c.at), o.threatRadius))
	}
	return -worst
}

// airThreat only counts enemy aircraft.
func (o *Opponent) airThreat(p *picture, at hex.Hex) float64 {
	worst := 0.0
	for _, c := range p.air {
		worst = math.Max(worst, proximity(hex.Distance(at, c.at), o.threatRadius))
	}
	return -worst
}

// preservation favours hexes closer to a friendly base than to the enemy, the more so the
// more of the force is crippled.
func (o *Opponent) preservation(p *picture, tf *opchart.TaskForce, at hex.Hex) float64 {
	base, ok := p.nearestBase(at, true)
	if !ok {
		return 0
	}
	enemy, ok := p.enemyDistance(at)
	if !ok {
		return 0
	}
	score := normalize(float64(enemy), float64(hex.Distance(at, base.Hex)))
	return score * (0.25 + 0.75*crippled(tf))
}

// mission depends on the task force role: carriers hold the stand-off distance, surface groups
// close in and transports have no objective of their own.
func (o *Opponent) mission(p *picture, tf *opchart.TaskForce, at hex.Hex) float64 {
	switch tf.Role() {
	case opchart.CarrierGroup:
		target, ok := p.objective(tf.Hex, true)
		if !ok {
			return 0
		}
		gap := abs(hex.Distance(at, target) - o.standOff)
		return 1 - 2*float64(min(gap, o.standOff))/float64(o.standOff)
	case opchart.SurfaceGroup:
		target, ok := p.objective(tf.Hex, false)
		if !ok {
			return 0
		}
		span := max(p.view.Board.Width(), p.view.Board.Height(), 1)
		return 1 - 2*float64(min(hex.Distance(at, target), span))/float64(span)
	}
	return 0
}

// targetScore rates a located task force as a strike target for aircraft flying from.
func (o *Opponent) targetScore(p *picture, c contact, from hex.Hex) float64 {
	value := 0.3
	switch {
	case c.carrier:
		value = 1
	case c.transport:
		value = 0.7
	case c.capital:
		value = 0.5
	}
	w := o.weights
	reach := 1 - 2*float64(min(hex.Distance(from, c.at), o.strikeRadius))/float64(o.strikeRadius)
	return clamp(w.Mission*value + w.Preservation*reach + w.Threat*o.airThreat(p, c.at))
}

// crippled is the share of afloat ships that are crippled.
func crippled(tf *opchart.TaskForce) float64 {
	afloat := tf.Afloat()
	if len(afloat) == 0 {
		return 1
	}
	n := 0
	for _, s := range afloat {
		if s.Crippled() {
			n++
		}
	}
	return float64(n) / float64(len(afloat))
}

// proximity is 1 on top of a hex and falls to 0 at radius.
func proximity(d, radius int) float64 {
	if radius <= 0 || d >= radius {
		return 0
	}
	return 1 - float64(d)/float64(radius)
}

// Normalize difference between values to be between -1 and 1.
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
