// Package weather tracks cloud, storm and wind per map region. Weather is rolled once at the
// start of each turn and is read-only for the rest of it.
package weather

import (
	"fmt"

	"flattop/dice"
	"flattop/game"
	"flattop/hex"
)

type Condition string

const (
	Clear  Condition = "clear"
	Cloudy Condition = "cloudy"
	Storm  Condition = "storm"
)

func (c Condition) Valid() bool {
	return c == Clear || c == Cloudy || c == Storm
}

// Action is a rules activity that weather can hinder.
type Action int

const (
	Launch Action = iota
	Observation
	AirCombat
	AntiAircraft
	Bombing
	Landing
)

// Modifier is the weather effect on one action in one region.
type Modifier struct {
	Value   int
	Blocked bool
}

// Table holds the per-turn transition chances in percent.
type Table struct {
	ClearToCloudy int `mapstructure:"clear_to_cloudy" json:"clear_to_cloudy"`
	CloudyToStorm int `mapstructure:"cloudy_to_storm" json:"cloudy_to_storm"`
	CloudyToClear int `mapstructure:"cloudy_to_clear" json:"cloudy_to_clear"`
	StormPersists int `mapstructure:"storm_persists" json:"storm_persists"`
}

func DefaultTable() Table {
	return Table{ClearToCloudy: 30, CloudyToStorm: 15, CloudyToClear: 20, StormPersists: 40}
}

func (t Table) Validate() error {
	for _, p := range []int{t.ClearToCloudy, t.CloudyToStorm, t.CloudyToClear, t.StormPersists} {
		if p < 0 || p > 100 {
			return fmt.Errorf("weather chance %d out of range", p)
		}
	}
	if t.CloudyToStorm+t.CloudyToClear > 100 {
		return fmt.Errorf("cloudy transitions exceed 100%%")
	}
	return nil
}

// Region indexes a sector of the board, row-major.
type Region int

// State is the weather over every region.
type State struct {
	Cols       int         `json:"cols"`
	Rows       int         `json:"rows"`
	Conditions []Condition `json:"conditions"`
	// Wind is a hex direction per region, 1-6.
	Wind []int `json:"wind"`
}

// New returns uniform weather over cols x rows regions.
func New(cols, rows int, initial Condition, wind int) State {
	n := cols * rows
	s := State{Cols: cols, Rows: rows, Conditions: make([]Condition, n), Wind: make([]int, n)}
	for i := 0; i < n; i++ {
		s.Conditions[i] = initial
		s.Wind[i] = wind
	}
	return s
}

// Region maps a hex onto its weather region.
func (s State) Region(b *hex.Board, h hex.Hex) Region {
	return Region(b.Sector(h, s.Cols, s.Rows))
}

func (s State) At(r Region) Condition {
	if int(r) < 0 || int(r) >= len(s.Conditions) {
		return Clear
	}
	return s.Conditions[r]
}

// ConditionAt is the weather in the region containing h.
func (s State) ConditionAt(b *hex.Board, h hex.Hex) Condition {
	return s.At(s.Region(b, h))
}

// ModifierFor returns the effect of a region's weather on an action. Storms ground aircraft and
// blind searchers; cloud costs one on every table it touches.
func (s State) ModifierFor(r Region, a Action) Modifier {
	switch s.At(r) {
	case Storm:
		switch a {
		case Launch, Observation, AirCombat, Bombing:
			return Modifier{Blocked: true}
		}
		return Modifier{Value: -1}
	case Cloudy:
		if a == Landing {
			return Modifier{}
		}
		return Modifier{Value: -1}
	}
	return Modifier{}
}

// AdvanceTurn rolls every region through the transition table, then shifts the wind on the
// six-hourly watches. Regions are rolled in index order.
func AdvanceTurn(s State, clock game.Clock, rng dice.Roller, t Table) State {
	next := s.Copy()
	for i, c := range s.Conditions {
		roll := rng.Intn(100)
		switch c {
		case Clear:
			if roll < t.ClearToCloudy {
				next.Conditions[i] = Cloudy
			}
		case Cloudy:
			switch {
			case roll < t.CloudyToStorm:
				next.Conditions[i] = Storm
			case roll < t.CloudyToStorm+t.CloudyToClear:
				next.Conditions[i] = Clear
			}
		case Storm:
			if roll >= t.StormPersists {
				next.Conditions[i] = Cloudy
			}
		}
	}
	if clock.Hour%6 == 0 {
		for i := range next.Wind {
			switch rng.D6() {
			case 4, 5:
				next.Wind[i] = next.Wind[i]%6 + 1
			case 6:
				next.Wind[i] = (next.Wind[i]+4)%6 + 1
			}
		}
	}
	return next
}

func (s State) Validate() error {
	n := s.Cols * s.Rows
	if s.Cols <= 0 || s.Rows <= 0 || len(s.Conditions) != n || len(s.Wind) != n {
		return fmt.Errorf("weather grid %dx%d does not match %d conditions and %d winds", s.Cols, s.Rows, len(s.Conditions), len(s.Wind))
	}
	for i, c := range s.Conditions {
		if !c.Valid() {
			return fmt.Errorf("region %d has unknown weather %q", i, c)
		}
		if s.Wind[i] < 1 || s.Wind[i] > 6 {
			return fmt.Errorf("region %d has wind direction %d", i, s.Wind[i])
		}
	}
	return nil
}

func (s State) Copy() State {
	c := s
	c.Conditions = append([]Condition(nil), s.Conditions...)
	c.Wind = append([]int(nil), s.Wind...)
	return c
}
