package opchart

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"flattop/game"
	"flattop/hex"
)

// MaxFormations is the number of air formation counters each side owns.
const MaxFormations = 35

type Mission string

const (
	CAP      Mission = "cap"
	Strike   Mission = "strike"
	Search   Mission = "search"
	Transfer Mission = "transfer"
)

func (m Mission) Valid() bool {
	switch m {
	case CAP, Strike, Search, Transfer:
		return true
	}
	return false
}

type Status string

const (
	Based     Status = "based"
	Launched  Status = "launched"
	Airborne  Status = "airborne"
	Returning Status = "returning"
	Lost      Status = "lost"
)

// Formation lifecycle events.
const (
	eventLaunch = "launch"
	eventDepart = "depart"
	eventRecall = "recall"
	eventLand   = "land"
	eventLose   = "lose"
)

var formationEvents = fsm.Events{
	{Name: eventLaunch, Src: []string{string(Based)}, Dst: string(Launched)},
	{Name: eventDepart, Src: []string{string(Launched)}, Dst: string(Airborne)},
	{Name: eventRecall, Src: []string{string(Airborne)}, Dst: string(Returning)},
	{Name: eventLand, Src: []string{string(Returning)}, Dst: string(Based)},
	{Name: eventLose, Src: []string{string(Based), string(Launched), string(Airborne), string(Returning)}, Dst: string(Lost)},
}

func (s Status) Valid() bool {
	switch s {
	case Based, Launched, Airborne, Returning, Lost:
		return true
	}
	return false
}

// Aloft reports whether the formation is off the deck.
func (s Status) Aloft() bool {
	return s == Launched || s == Airborne || s == Returning
}

type AirFormation struct {
	ID         ID         `json:"id"`
	Number     int        `json:"number"`
	Side       game.Side  `json:"side"`
	Home       ID         `json:"home"`
	Mission    Mission    `json:"mission"`
	Status     Status     `json:"status"`
	Hex        hex.Hex    `json:"hex"`
	Altitude   Altitude   `json:"altitude"`
	Target     *hex.Hex   `json:"target,omitempty"`
	Squadrons  []Squadron `json:"squadrons"`
	LaunchTurn int        `json:"launch_turn"`
	Moved      int        `json:"moved"`
}

func (f *AirFormation) Strength() int {
	return Strength(f.Squadrons)
}

// Range is the fuel left to the squadron with the least.
func (f *AirFormation) Range() int {
	r := -1
	for _, s := range f.Squadrons {
		if r < 0 || s.Range < r {
			r = s.Range
		}
	}
	return max(r, 0)
}

func (f *AirFormation) can(event string) bool {
	return f.machine().Can(event)
}

func (f *AirFormation) machine() *fsm.FSM {
	return fsm.NewFSM(string(f.Status), formationEvents, fsm.Callbacks{})
}

// transition runs a lifecycle event through the status machine.
func (f *AirFormation) transition(event string) error {
	m := f.machine()
	if err := m.Event(context.Background(), event); err != nil {
		return game.Wrap(game.CodeIllegalPhaseAction, err, fmt.Sprintf("formation %s cannot %s while %s", f.ID, event, f.Status))
	}
	f.Status = Status(m.Current())
	return nil
}

// Transitions lists the events available from the current status.
func (f *AirFormation) Transitions() []string {
	return f.machine().AvailableTransitions()
}

func (f *AirFormation) Copy() *AirFormation {
	c := *f
	c.Squadrons = copySquadrons(f.Squadrons)
	if f.Target != nil {
		t := *f.Target
		c.Target = &t
	}
	return &c
}
