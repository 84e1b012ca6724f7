package opchart

import (
	"fmt"

	"flattop/game"
)

// Handling is the kind of facility an air operations deck offers.
type Handling string

const (
	CarrierDeck  Handling = "carrier"
	SeaplaneDeck Handling = "seaplane"
	Airfield     Handling = "airfield"
)

// Accepts reports whether aircraft with the given basing can operate from the deck.
func (h Handling) Accepts(b Basing) bool {
	switch h {
	case CarrierDeck:
		return b == CarrierPlane
	case SeaplaneDeck:
		return b == Floatplane
	case Airfield:
		return b != Floatplane
	}
	return false
}

type DeckConfig struct {
	Capacity     int      `json:"capacity"`
	LaunchFactor int      `json:"launch_factor"`
	ReadyFactor  int      `json:"ready_factor"`
	Handling     Handling `json:"handling"`
}

// Deck tracks the aircraft a carrier or base holds outside of air formations.
// Aircraft move just landed -> readying -> ready; only ready aircraft form up.
type Deck struct {
	Config     DeckConfig `json:"config"`
	JustLanded []Squadron `json:"just_landed,omitempty"`
	Readying   []Squadron `json:"readying,omitempty"`
	Ready      []Squadron `json:"ready,omitempty"`
	UsedLaunch int        `json:"used_launch"`
	UsedReady  int        `json:"used_ready"`
}

func NewDeck(cfg DeckConfig) *Deck {
	return &Deck{Config: cfg}
}

// Aircraft counts the air factors in all three pools.
func (d *Deck) Aircraft() int {
	return Strength(d.JustLanded) + Strength(d.Readying) + Strength(d.Ready)
}

func (d *Deck) LaunchRemaining() int {
	return max(d.Config.LaunchFactor-d.UsedLaunch, 0)
}

func (d *Deck) ReadyRemaining() int {
	return max(d.Config.ReadyFactor-d.UsedReady, 0)
}

// Stock puts aircraft straight into a pool during scenario setup.
func (d *Deck) Stock(s Squadron, ready bool) {
	if ready {
		d.Ready = merge(d.Ready, s)
		return
	}
	d.Readying = merge(d.Readying, s)
}

// prepare moves count aircraft of type t from readying to ready with the given armament.
func (d *Deck) prepare(p Profile, count int, arm Armament) error {
	if count <= 0 {
		return game.Errorf(game.CodeEmptyFormation, "nothing to ready")
	}
	if !p.CanCarry(arm) {
		return game.Errorf(game.CodeCapacityExceeded, "%s cannot carry %q", p.Type, arm)
	}
	if count > d.ReadyRemaining() {
		return game.Errorf(game.CodeCapacityExceeded, "ready factor exhausted: %d requested, %d left", count, d.ReadyRemaining())
	}
	rest, taken, ok := take(d.Readying, p.Type, count)
	if !ok {
		return game.Errorf(game.CodeCapacityExceeded, "only %d %s readying", available(d.Readying, p.Type), p.Type)
	}
	d.Readying = rest
	for _, s := range taken {
		s.Armament = arm
		s.Range = p.Range
		d.Ready = merge(d.Ready, s)
	}
	d.UsedReady += count
	return nil
}

// stow moves everything that landed this turn onto the readying pool.
func (d *Deck) stow() {
	for _, s := range d.JustLanded {
		s.Armament = Unarmed
		d.Readying = merge(d.Readying, s)
	}
	d.JustLanded = nil
}

// destroy removes up to n air factors, ready aircraft first, then just landed, then readying.
func (d *Deck) destroy(n int) []Squadron {
	var lost []Squadron
	for _, pool := range []*[]Squadron{&d.Ready, &d.JustLanded, &d.Readying} {
		for n > 0 && len(*pool) > 0 {
			last := len(*pool) - 1
			s := (*pool)[last]
			k := min(s.Strength, n)
			n -= k
			part := s
			part.Strength = k
			lost = append(lost, part)
			if s.Strength == k {
				*pool = (*pool)[:last]
			} else {
				(*pool)[last].Strength -= k
			}
		}
	}
	return lost
}

func (d *Deck) clear() {
	d.JustLanded, d.Readying, d.Ready = nil, nil, nil
}

func (d *Deck) resetTurn() {
	d.UsedLaunch, d.UsedReady = 0, 0
}

func (d *Deck) validate() error {
	switch d.Config.Handling {
	case CarrierDeck, SeaplaneDeck, Airfield:
	default:
		return fmt.Errorf("unknown deck handling %q", d.Config.Handling)
	}
	if d.Config.Capacity < 0 || d.Config.LaunchFactor < 0 || d.Config.ReadyFactor < 0 {
		return fmt.Errorf("negative deck factors")
	}
	for _, pool := range [][]Squadron{d.JustLanded, d.Readying, d.Ready} {
		for _, s := range pool {
			if s.Strength <= 0 {
				return fmt.Errorf("empty %s squadron on deck", s.Type)
			}
		}
	}
	return nil
}

func (d *Deck) Copy() *Deck {
	if d == nil {
		return nil
	}
	c := *d
	c.JustLanded = copySquadrons(d.JustLanded)
	c.Readying = copySquadrons(d.Readying)
	c.Ready = copySquadrons(d.Ready)
	return &c
}
