package opchart

import (
	"fmt"

	"flattop/game"
)

type ShipClass string

const (
	CV  ShipClass = "CV"
	CVL ShipClass = "CVL"
	AV  ShipClass = "AV"
	CAV ShipClass = "CAV"
	BB  ShipClass = "BB"
	CA  ShipClass = "CA"
	CL  ShipClass = "CL"
	DD  ShipClass = "DD"
	AP  ShipClass = "AP"
)

func (c ShipClass) Valid() bool {
	switch c {
	case CV, CVL, AV, CAV, BB, CA, CL, DD, AP:
		return true
	}
	return false
}

// CarriesPlanes reports whether ships of the class operate an air deck.
func (c ShipClass) CarriesPlanes() bool {
	switch c {
	case CV, CVL, AV, CAV:
		return true
	}
	return false
}

func (c ShipClass) flightDeck() bool {
	return c == CV || c == CVL
}

type ShipStatus string

const (
	Afloat   ShipStatus = "afloat"
	Crippled ShipStatus = "crippled"
	Anchored ShipStatus = "anchored"
	Sunk     ShipStatus = "sunk"
)

type Ship struct {
	ID           ID         `json:"id"`
	Name         string     `json:"name"`
	Side         game.Side  `json:"side"`
	Class        ShipClass  `json:"class"`
	Status       ShipStatus `json:"status"`
	Attack       int        `json:"attack"`
	AA           int        `json:"aa"`
	Move         int        `json:"move"`
	DamageFactor int        `json:"damage_factor"`
	Damage       int        `json:"damage"`
	Radar        bool       `json:"radar,omitempty"`
	Deck         *Deck      `json:"deck,omitempty"`
}

// NewShip builds an afloat ship. Plane carriers get a deck whose handling follows the class.
func NewShip(id ID, name string, class ShipClass, attack, aa, move, damageFactor int, deck *DeckConfig) (*Ship, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("unknown ship class %q", class)
	}
	if damageFactor <= 0 {
		return nil, fmt.Errorf("ship %s needs a positive damage factor", id)
	}
	s := &Ship{ID: id, Name: name, Class: class, Status: Afloat, Attack: attack, AA: aa, Move: move, DamageFactor: damageFactor}
	if class.CarriesPlanes() {
		cfg := DeckConfig{Handling: SeaplaneDeck}
		if deck != nil {
			cfg = *deck
		}
		if class.flightDeck() {
			cfg.Handling = CarrierDeck
		} else {
			cfg.Handling = SeaplaneDeck
		}
		s.Deck = NewDeck(cfg)
	}
	return s, nil
}

func (s *Ship) Afloat() bool {
	return s.Status != Sunk
}

// Crippled reports damage at or above half the damage factor.
func (s *Ship) Crippled() bool {
	return s.Status == Crippled
}

// IsCarrier reports whether the ship hosts air formations.
func (s *Ship) IsCarrier() bool {
	return s.Deck != nil
}

// applyDamage adds hits and returns true when this sinks the ship.
func (s *Ship) applyDamage(hits int) bool {
	if !s.Afloat() || hits <= 0 {
		return false
	}
	s.Damage += hits
	switch {
	case s.Damage >= s.DamageFactor:
		s.Status = Sunk
		if s.Deck != nil {
			s.Deck.clear()
		}
		return true
	case s.Damage*2 >= s.DamageFactor:
		s.Status = Crippled
	}
	return false
}

func (s *Ship) Copy() *Ship {
	c := *s
	c.Deck = s.Deck.Copy()
	return &c
}
