package opchart

import (
	"fmt"

	"flattop/game"
	"flattop/hex"
)

const (
	maxAlliedShips   = 15
	maxJapaneseShips = 10
	// Plane carriers may only join task forces with a counter number up to this.
	maxCarrierTaskForce = 9
)

// TaskForceRole is derived from composition and drives the computer opponent.
type TaskForceRole int

const (
	CarrierGroup TaskForceRole = iota
	SurfaceGroup
	TransportGroup
)

func (r TaskForceRole) String() string {
	switch r {
	case CarrierGroup:
		return "carrier"
	case TransportGroup:
		return "transport"
	}
	return "surface"
}

type TaskForce struct {
	ID           ID        `json:"id"`
	Number       int       `json:"number"`
	Name         string    `json:"name"`
	Side         game.Side `json:"side"`
	Hex          hex.Hex   `json:"hex"`
	Ships        []*Ship   `json:"ships"`
	MovementUsed int       `json:"movement_used"`
}

// NewTaskForce checks the composition rules and builds the task force.
func NewTaskForce(id ID, number int, name string, side game.Side, at hex.Hex, ships ...*Ship) (*TaskForce, error) {
	tf := &TaskForce{ID: id, Number: number, Name: name, Side: side, Hex: at, Ships: ships}
	if err := tf.checkComposition(); err != nil {
		return nil, err
	}
	for _, s := range ships {
		s.Side = side
	}
	return tf, nil
}

func (tf *TaskForce) checkComposition() error {
	if !tf.Side.Valid() {
		return fmt.Errorf("task force %s has unknown side %q", tf.ID, tf.Side)
	}
	if len(tf.Ships) == 0 {
		return game.Errorf(game.CodeEmptyFormation, "task force %s has no ships", tf.ID)
	}
	limit := maxAlliedShips
	if tf.Side == game.Japanese {
		limit = maxJapaneseShips
	}
	if len(tf.Ships) > limit {
		return game.Errorf(game.CodeCapacityExceeded, "task force %s has %d ships, limit %d", tf.ID, len(tf.Ships), limit)
	}
	var flight, tenders int
	for _, s := range tf.Ships {
		switch {
		case s.Class.flightDeck():
			flight++
		case s.Class.CarriesPlanes():
			tenders++
		}
	}
	if flight > 1 || tenders > 1 {
		return game.Errorf(game.CodeCapacityExceeded, "task force %s carries too many plane carriers", tf.ID)
	}
	if flight+tenders > 0 && (tf.Number < 1 || tf.Number > maxCarrierTaskForce) {
		return game.Errorf(game.CodeCapacityExceeded, "plane carriers need a task force numbered 1-%d, got %d", maxCarrierTaskForce, tf.Number)
	}
	return nil
}

// Allowance is the slowest afloat ship's move factor, halved when crippled.
func (tf *TaskForce) Allowance() int {
	allowance := -1
	for _, s := range tf.Afloat() {
		m := s.Move
		if s.Crippled() {
			m /= 2
		}
		if allowance < 0 || m < allowance {
			allowance = m
		}
	}
	return max(allowance, 0)
}

func (tf *TaskForce) Remaining() int {
	return max(tf.Allowance()-tf.MovementUsed, 0)
}

func (tf *TaskForce) Afloat() []*Ship {
	var ships []*Ship
	for _, s := range tf.Ships {
		if s.Afloat() {
			ships = append(ships, s)
		}
	}
	return ships
}

func (tf *TaskForce) Destroyed() bool {
	return len(tf.Afloat()) == 0
}

func (tf *TaskForce) Ship(id ID) (*Ship, bool) {
	for _, s := range tf.Ships {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Carrier returns the task force's afloat plane carrier, if any.
func (tf *TaskForce) Carrier() (*Ship, bool) {
	for _, s := range tf.Ships {
		if s.IsCarrier() && s.Afloat() {
			return s, true
		}
	}
	return nil, false
}

func (tf *TaskForce) Role() TaskForceRole {
	transports := 0
	for _, s := range tf.Afloat() {
		if s.Class.flightDeck() {
			return CarrierGroup
		}
		if s.Class == AP {
			transports++
		}
	}
	if transports > 0 {
		return TransportGroup
	}
	return SurfaceGroup
}

// AA sums the anti-aircraft factors of afloat ships.
func (tf *TaskForce) AA() int {
	total := 0
	for _, s := range tf.Afloat() {
		total += s.AA
	}
	return total
}

func (tf *TaskForce) Radar() bool {
	for _, s := range tf.Afloat() {
		if s.Radar {
			return true
		}
	}
	return false
}

// SetAnchored flips afloat ships to anchored and back. Crippled ships keep their status.
func (tf *TaskForce) SetAnchored(anchored bool) {
	for _, s := range tf.Ships {
		switch {
		case anchored && s.Status == Afloat:
			s.Status = Anchored
		case !anchored && s.Status == Anchored:
			s.Status = Afloat
		}
	}
}

func (tf *TaskForce) Copy() *TaskForce {
	c := *tf
	c.Ships = make([]*Ship, len(tf.Ships))
	for i, s := range tf.Ships {
		c.Ships[i] = s.Copy()
	}
	return &c
}
