package opchart

import (
	"fmt"

	"flattop/game"
	"flattop/hex"
)

// Base is a fixed airfield or seaplane anchorage. It never moves.
type Base struct {
	ID           ID        `json:"id"`
	Name         string    `json:"name"`
	Side         game.Side `json:"side"`
	Hex          hex.Hex   `json:"hex"`
	AA           int       `json:"aa"`
	DamageFactor int       `json:"damage_factor"`
	Damage       int       `json:"damage"`
	Radar        bool      `json:"radar,omitempty"`
	Deck         *Deck     `json:"deck"`
}

func NewBase(id ID, name string, side game.Side, at hex.Hex, aa, damageFactor int, deck DeckConfig) (*Base, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("base %s has unknown side %q", id, side)
	}
	if damageFactor <= 0 {
		return nil, fmt.Errorf("base %s needs a positive damage factor", id)
	}
	if deck.Handling == "" {
		deck.Handling = Airfield
	}
	return &Base{ID: id, Name: name, Side: side, Hex: at, AA: aa, DamageFactor: damageFactor, Deck: NewDeck(deck)}, nil
}

// Operational reports whether the base can still launch and recover aircraft.
func (b *Base) Operational() bool {
	return b.Damage < b.DamageFactor
}

// applyDamage records hits and destroys the same number of aircraft on deck.
func (b *Base) applyDamage(hits int) []Squadron {
	if hits <= 0 {
		return nil
	}
	b.Damage += hits
	return b.Deck.destroy(hits)
}

func (b *Base) Copy() *Base {
	c := *b
	c.Deck = b.Deck.Copy()
	return &c
}
