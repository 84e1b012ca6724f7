// Package observe decides what each side can see of the other. Results are computed fresh each
// observation phase and never carried forward.
package observe

import (
	"fmt"
	"sort"

	"flattop/dice"
	"flattop/game"
	"flattop/hex"
	"flattop/opchart"
	"flattop/weather"
)

// Precision is the observation condition number.
type Precision int

const (
	Unseen Precision = iota
	// Approximate reveals the kind of unit and the region it is in.
	Approximate
	// Located reveals the hex, the classes present and the total count.
	Located
	// Exact reveals counts per class, altitude and aircraft on deck.
	Exact
)

func (p Precision) String() string {
	switch p {
	case Approximate:
		return "approximate"
	case Located:
		return "located"
	case Exact:
		return "exact"
	}
	return "unseen"
}

// Detection is what one side knows about one enemy unit.
type Detection struct {
	Target    opchart.ID     `json:"target"`
	Kind      Kind           `json:"kind"`
	Side      game.Side      `json:"side"`
	Precision Precision      `json:"precision"`
	Region    weather.Region `json:"region"`
	Hex       *hex.Hex       `json:"hex,omitempty"`
	// Classes are the observation classes present: carrier, capital, small, bomber, interceptor.
	Classes []string `json:"classes,omitempty"`
	Total   int      `json:"total,omitempty"`
	// Counts per ship class or aircraft type, exact precision only.
	Counts   map[string]int   `json:"counts,omitempty"`
	Altitude opchart.Altitude `json:"altitude,omitempty"`
	// AircraftOnDeck reports planes visible on a carrier's deck.
	AircraftOnDeck bool `json:"aircraft_on_deck,omitempty"`
}

// Result is one side's observations for a turn.
type Result struct {
	Side       game.Side   `json:"side"`
	Turn       int         `json:"turn"`
	Detections []Detection `json:"detections"`
}

func (r Result) Find(id opchart.ID) (Detection, bool) {
	for _, d := range r.Detections {
		if d.Target == id {
			return d, true
		}
	}
	return Detection{}, false
}

// Input is the read-only world an observation runs against.
type Input struct {
	Board   *hex.Board
	Chart   *opchart.Chart
	Weather weather.State
	Clock   game.Clock
}

type observer struct {
	id     opchart.ID
	kind   Observer
	at     hex.Hex
	radar  bool
	search bool
	// searched is false for air formations that failed the search roll.
	searched bool
}

type target struct {
	unit opchart.Unit
	kind Kind
	at   hex.Hex
	alt  opchart.Altitude
}

// Observe computes what side sees. Air formation observers roll the search table in chart
// order, so the roller is consumed deterministically.
func Observe(side game.Side, in Input, rng dice.Roller, table Table) Result {
	res := Result{Side: side, Turn: in.Clock.Turn, Detections: []Detection{}}
	night := in.Clock.Night()
	observers := collectObservers(side, in, rng, table, night)
	best := make(map[opchart.ID]Precision)
	var targets []target
	for _, t := range collectTargets(side.Opponent(), in.Chart) {
		if in.Weather.ConditionAt(in.Board, t.at) == weather.Storm {
			continue
		}
		cloud := in.Weather.ConditionAt(in.Board, t.at) == weather.Cloudy
		for _, o := range observers {
			p := precision(o, t, cloud, night, table)
			if p > best[t.unit.UnitID()] {
				best[t.unit.UnitID()] = p
			}
		}
		if best[t.unit.UnitID()] > Unseen {
			targets = append(targets, t)
		}
	}
	for _, t := range targets {
		res.Detections = append(res.Detections, report(t, best[t.unit.UnitID()], in))
	}
	sort.Slice(res.Detections, func(i, j int) bool { return res.Detections[i].Target < res.Detections[j].Target })
	return res
}

func collectObservers(side game.Side, in Input, rng dice.Roller, table Table, night bool) []observer {
	var out []observer
	blind := func(h hex.Hex) bool {
		return in.Weather.ConditionAt(in.Board, h) == weather.Storm
	}
	for _, tf := range in.Chart.TaskForcesOf(side) {
		if !blind(tf.Hex) {
			out = append(out, observer{id: tf.ID, kind: TaskForceObserver, at: tf.Hex, radar: tf.Radar(), searched: true})
		}
	}
	for _, b := range in.Chart.BasesOf(side) {
		if !blind(b.Hex) {
			out = append(out, observer{id: b.ID, kind: BaseObserver, at: b.Hex, radar: b.Radar, searched: true})
		}
	}
	for _, f := range in.Chart.FormationsOf(side) {
		if !f.Status.Aloft() || blind(f.Hex) {
			continue
		}
		roll := rng.D6()
		if in.Weather.ConditionAt(in.Board, f.Hex) == weather.Cloudy {
			roll++
		}
		if night {
			roll++
		}
		out = append(out, observer{
			id:       f.ID,
			kind:     AirObserver,
			at:       f.Hex,
			search:   f.Mission == opchart.Search,
			searched: roll <= table.SearchSuccess,
		})
	}
	return out
}

func collectTargets(side game.Side, chart *opchart.Chart) []target {
	var out []target
	for _, tf := range chart.TaskForcesOf(side) {
		out = append(out, target{unit: tf, kind: TaskForceTarget, at: tf.Hex})
	}
	for _, f := range chart.FormationsOf(side) {
		if f.Status.Aloft() {
			out = append(out, target{unit: f, kind: AirTarget, at: f.Hex, alt: f.Altitude})
		}
	}
	return out
}

func precision(o observer, t target, cloud, night bool, table Table) Precision {
	d := hex.Distance(o.at, t.at)
	if o.kind == AirObserver && !o.searched && d > table.Guaranteed {
		return Unseen
	}
	reach := 0
	if o.search {
		reach = table.SearchReach
	}
	p := condition(table.Rows[Key{Night: night, Observer: o.kind, Target: t.kind, Cloud: cloud}], d, reach)
	if o.radar && t.kind == AirTarget && t.alt == opchart.High {
		p = max(p, condition(table.Radar, d, 0))
	}
	return Precision(min(p, int(Exact)))
}

func report(t target, p Precision, in Input) Detection {
	d := Detection{
		Target:    t.unit.UnitID(),
		Kind:      t.kind,
		Side:      t.unit.Owner(),
		Precision: p,
		Region:    in.Weather.Region(in.Board, t.at),
	}
	if p < Located {
		return d
	}
	at := t.at
	d.Hex = &at
	classes := make(map[string]bool)
	counts := make(map[string]int)
	switch u := t.unit.(type) {
	case *opchart.TaskForce:
		for _, s := range u.Afloat() {
			classes[shipClass(s.Class)] = true
			counts[string(s.Class)]++
			d.Total++
			if s.IsCarrier() && len(s.Deck.JustLanded)+len(s.Deck.Ready) > 0 {
				d.AircraftOnDeck = true
			}
		}
	case *opchart.AirFormation:
		for _, s := range u.Squadrons {
			if s.Armed() {
				classes["bomber"] = true
			} else {
				classes["interceptor"] = true
			}
			counts[string(s.Type)] += s.Strength
			d.Total += s.Strength
		}
	default:
		panic(fmt.Sprintf("observe: unexpected target %T", t.unit))
	}
	for c := range classes {
		d.Classes = append(d.Classes, c)
	}
	sort.Strings(d.Classes)
	if p == Exact {
		d.Counts = counts
		d.Altitude = t.alt
	} else {
		d.AircraftOnDeck = false
	}
	return d
}

func shipClass(c opchart.ShipClass) string {
	switch c {
	case opchart.CV, opchart.CVL:
		return "carrier"
	case opchart.AV, opchart.CAV, opchart.BB, opchart.CA, opchart.CL:
		return "capital"
	}
	return "small"
}
