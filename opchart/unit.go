package opchart

import (
	"flattop/game"
	"flattop/hex"
)

// ID names a unit on the chart. It doubles as the unit's piece id on the board.
type ID = hex.PieceID

// Unit is implemented by TaskForce, Ship, Base and AirFormation only.
type Unit interface {
	UnitID() ID
	Owner() game.Side
	// ReceivesDamage reports whether bombing can damage the unit directly.
	ReceivesDamage() bool
	// HostsFormations reports whether air formations can be based on the unit.
	HostsFormations() bool
	sealed()
}

func (tf *TaskForce) UnitID() ID            { return tf.ID }
func (tf *TaskForce) Owner() game.Side      { return tf.Side }
func (tf *TaskForce) ReceivesDamage() bool  { return false }
func (tf *TaskForce) HostsFormations() bool { return false }
func (tf *TaskForce) sealed()               {}

func (s *Ship) UnitID() ID            { return s.ID }
func (s *Ship) Owner() game.Side      { return s.Side }
func (s *Ship) ReceivesDamage() bool  { return s.Afloat() }
func (s *Ship) HostsFormations() bool { return s.IsCarrier() && s.Afloat() }
func (s *Ship) sealed()               {}

func (b *Base) UnitID() ID            { return b.ID }
func (b *Base) Owner() game.Side      { return b.Side }
func (b *Base) ReceivesDamage() bool  { return true }
func (b *Base) HostsFormations() bool { return b.Operational() }
func (b *Base) sealed()               {}

func (f *AirFormation) UnitID() ID            { return f.ID }
func (f *AirFormation) Owner() game.Side      { return f.Side }
func (f *AirFormation) ReceivesDamage() bool  { return false }
func (f *AirFormation) HostsFormations() bool { return false }
func (f *AirFormation) sealed()               {}
