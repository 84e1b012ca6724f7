package engine

import (
	"flattop/game"
	"flattop/hex"
	"flattop/opchart"
	"flattop/weather"
)

// View is what one side may know without observation: its own forces, the map, the weather and
// the clock. Enemy bases are public but their decks are hidden.
type View struct {
	Side       game.Side
	Clock      game.Clock
	Phase      game.Phase
	Board      *hex.Board
	Weather    weather.State
	Catalog    opchart.Catalog
	TaskForces []*opchart.TaskForce
	Bases      []*opchart.Base
	Formations []*opchart.AirFormation
	Points     map[game.Side]int
}

// View builds side's view. Enemy ships and aircraft are taken off the board copy.
func (e *Engine) View(side game.Side) View {
	s := e.state
	v := View{
		Side:    side,
		Clock:   s.Clock,
		Phase:   s.Phase,
		Board:   s.Board.Copy(),
		Weather: s.Weather.Copy(),
		Catalog: s.Chart.Catalog(),
		Points:  map[game.Side]int{},
	}
	for k, p := range s.Points {
		v.Points[k] = p
	}
	for _, p := range v.Board.Pieces() {
		if p.Side != side && p.Layer != hex.Fixed {
			_ = v.Board.Remove(p.ID)
		}
	}
	for _, tf := range s.Chart.TaskForcesOf(side) {
		v.TaskForces = append(v.TaskForces, tf.Copy())
	}
	for _, b := range s.Chart.Bases {
		c := b.Copy()
		if b.Side != side {
			c.Deck = nil
		}
		v.Bases = append(v.Bases, c)
	}
	for _, f := range s.Chart.FormationsOf(side) {
		v.Formations = append(v.Formations, f.Copy())
	}
	return v
}

func (v View) TaskForce(id opchart.ID) (*opchart.TaskForce, bool) {
	for _, tf := range v.TaskForces {
		if tf.ID == id {
			return tf, true
		}
	}
	return nil, false
}

func (v View) Formation(id opchart.ID) (*opchart.AirFormation, bool) {
	for _, f := range v.Formations {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// Host is an own air deck together with where it is.
type Host struct {
	ID   opchart.ID
	Hex  hex.Hex
	Deck *opchart.Deck
}

// Hosts lists own afloat carriers and operational bases, carriers first, in chart order.
func (v View) Hosts() []Host {
	var hosts []Host
	for _, tf := range v.TaskForces {
		for _, s := range tf.Afloat() {
			if s.IsCarrier() {
				hosts = append(hosts, Host{ID: s.ID, Hex: tf.Hex, Deck: s.Deck})
			}
		}
	}
	for _, b := range v.Bases {
		if b.Side == v.Side && b.Operational() {
			hosts = append(hosts, Host{ID: b.ID, Hex: b.Hex, Deck: b.Deck})
		}
	}
	return hosts
}

// Host finds an own air deck by id.
func (v View) Host(id opchart.ID) (Host, bool) {
	for _, h := range v.Hosts() {
		if h.ID == id {
			return h, true
		}
	}
	return Host{}, false
}

// EnemyBases lists the other side's bases.
func (v View) EnemyBases() []*opchart.Base {
	var out []*opchart.Base
	for _, b := range v.Bases {
		if b.Side != v.Side {
			out = append(out, b)
		}
	}
	return out
}
