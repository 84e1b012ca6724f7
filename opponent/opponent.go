// Package opponent is the computer player. It reads only what its side is allowed to know, an
// engine.View plus its own observation result, and proposes orders for the current phase.
// The same inputs always give the same orders.
package opponent

import (
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"flattop/engine"
	"flattop/game"
	"flattop/hex"
	"flattop/observe"
	"flattop/opchart"
	"flattop/weather"
)

const (
	DefaultCAPRadius    = 10
	DefaultStrikeRadius = 12
	DefaultThreatRadius = 8
	DefaultStandOff     = 6
	DefaultSearchSize   = 2
	DefaultMaxSearches  = 2
	DefaultFuelMargin   = 1
)

// Weights blend the terms of a position score. They are scaled to sum to one.
type Weights struct {
	Threat       float64 `mapstructure:"threat" json:"threat"`
	Preservation float64 `mapstructure:"preservation" json:"preservation"`
	Mission      float64 `mapstructure:"mission" json:"mission"`
}

func DefaultWeights() Weights {
	return Weights{Threat: 0.4, Preservation: 0.2, Mission: 0.4}
}

type Option func(o *Opponent)

type Opponent struct {
	capRadius    int
	strikeRadius int
	threatRadius int
	standOff     int
	searchSize   int
	maxSearches  int
	fuelMargin   int
	weights      Weights
	log          zerolog.Logger
}

// WithCAPRadius sets how close enemy aircraft must be to a deck before fighters go up.
func WithCAPRadius(radius int) Option {
	return func(o *Opponent) {
		if radius > 0 {
			o.capRadius = radius
		}
	}
}

// WithStrikeRadius caps the distance at which a located task force is attacked.
func WithStrikeRadius(radius int) Option {
	return func(o *Opponent) {
		if radius > 0 {
			o.strikeRadius = radius
		}
	}
}

func WithThreatRadius(radius int) Option {
	return func(o *Opponent) {
		if radius > 0 {
			o.threatRadius = radius
		}
	}
}

// WithStandOff is the distance carrier groups try to keep from the enemy.
func WithStandOff(distance int) Option {
	return func(o *Opponent) {
		if distance > 0 {
			o.standOff = distance
		}
	}
}

// WithSearch sets the air factors per search formation and how many may be aloft at once.
func WithSearch(size, maxAloft int) Option {
	return func(o *Opponent) {
		if size > 0 {
			o.searchSize = size
		}
		if maxAloft >= 0 {
			o.maxSearches = maxAloft
		}
	}
}

// WithFuelMargin is the spare turns of fuel a formation keeps for the flight home.
func WithFuelMargin(turns int) Option {
	return func(o *Opponent) {
		if turns >= 0 {
			o.fuelMargin = turns
		}
	}
}

func WithWeights(w Weights) Option {
	return func(o *Opponent) {
		total := w.Threat + w.Preservation + w.Mission
		if w.Threat < 0 || w.Preservation < 0 || w.Mission < 0 || total <= 0 {
			return
		}
		o.weights = Weights{Threat: w.Threat / total, Preservation: w.Preservation / total, Mission: w.Mission / total}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Opponent) {
		o.log = l
	}
}

func New(options ...Option) *Opponent {
	o := &Opponent{ // Default values
		capRadius:    DefaultCAPRadius,
		strikeRadius: DefaultStrikeRadius,
		threatRadius: DefaultThreatRadius,
		standOff:     DefaultStandOff,
		searchSize:   DefaultSearchSize,
		maxSearches:  DefaultMaxSearches,
		fuelMargin:   DefaultFuelMargin,
		weights:      DefaultWeights(),
		log:          zerolog.Nop(),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// Decide makes the opponent an engine.Controller.
func (o *Opponent) Decide(side game.Side, view engine.View, obs observe.Result) []engine.Command {
	return o.ChooseActions(side, view, obs)
}

// ChooseActions proposes side's orders for the phase in view. Orders are not checked against
// the rules; the engine rejects the ones that turn out illegal.
func (o *Opponent) ChooseActions(side game.Side, view engine.View, obs observe.Result) []engine.Command {
	if view.Side != side || view.Board == nil {
		return nil
	}
	p := newPicture(view, obs)
	var cmds []engine.Command
	switch view.Phase {
	case game.MovementPhase:
		cmds = o.movement(p)
	case game.AirOperationsPhase:
		cmds = o.airOperations(p)
	case game.CombatPhase:
		cmds = o.combat(p)
	}
	o.log.Debug().Msgf("turn %d %s: %s proposes %d orders from %d contacts", view.Clock.Turn, view.Phase, side, len(cmds), len(p.ships)+len(p.air))
	return cmds
}

// contact is a located enemy unit.
type contact struct {
	id        opchart.ID
	at        hex.Hex
	carrier   bool
	capital   bool
	transport bool
	bomber    bool
	total     int
}

// picture is one side's knowledge for a single decision.
type picture struct {
	side  game.Side
	view  engine.View
	ships []contact
	air   []contact
	// sighted are regions holding task forces seen only approximately.
	sighted []weather.Region
}

func newPicture(view engine.View, obs observe.Result) *picture {
	p := &picture{side: view.Side, view: view}
	if obs.Side != "" && obs.Side != view.Side {
		return p
	}
	for _, d := range obs.Detections {
		if d.Side == view.Side || d.Precision == observe.Unseen {
			continue
		}
		if d.Precision < observe.Located || d.Hex == nil {
			if d.Kind == observe.TaskForceTarget && !slices.Contains(p.sighted, d.Region) {
				p.sighted = append(p.sighted, d.Region)
			}
			continue
		}
		c := contact{
			id:        d.Target,
			at:        *d.Hex,
			carrier:   slices.Contains(d.Classes, "carrier"),
			capital:   slices.Contains(d.Classes, "capital"),
			transport: d.Counts[string(opchart.AP)] > 0,
			bomber:    slices.Contains(d.Classes, "bomber"),
			total:     d.Total,
		}
		switch d.Kind {
		case observe.TaskForceTarget:
			p.ships = append(p.ships, c)
		case observe.AirTarget:
			p.air = append(p.air, c)
		}
	}
	byID := func(cs []contact) {
		sort.Slice(cs, func(i, j int) bool { return cs[i].id < cs[j].id })
	}
	byID(p.ships)
	byID(p.air)
	slices.Sort(p.sighted)
	return p
}

func (p *picture) contacts() []contact {
	return append(slices.Clone(p.ships), p.air...)
}

// nearestShip is the closest located task force to from, ties to the lowest id.
func (p *picture) nearestShip(from hex.Hex) (contact, bool) {
	best, found := contact{}, false
	for _, c := range p.ships {
		if !found || hex.Distance(from, c.at) < hex.Distance(from, best.at) {
			best, found = c, true
		}
	}
	return best, found
}

func (p *picture) nearestBase(from hex.Hex, own bool) (*opchart.Base, bool) {
	var best *opchart.Base
	for _, b := range p.view.Bases {
		if (b.Side == p.side) != own {
			continue
		}
		if own && !b.Operational() {
			continue
		}
		if best == nil || hex.Distance(from, b.Hex) < hex.Distance(from, best.Hex) {
			best = b
		}
	}
	return best, best != nil
}

// objective is where a force should head: a located task force, then the middle of an
// approximate sighting, then optionally the nearest enemy base.
func (p *picture) objective(from hex.Hex, bases bool) (hex.Hex, bool) {
	if c, ok := p.nearestShip(from); ok {
		return c.at, true
	}
	if at, ok := p.nearestSighting(from); ok {
		return at, true
	}
	if bases {
		if b, ok := p.nearestBase(from, false); ok {
			return b.Hex, true
		}
	}
	return hex.Hex{}, false
}

func (p *picture) nearestSighting(from hex.Hex) (hex.Hex, bool) {
	var best hex.Hex
	found := false
	for _, r := range p.sighted {
		at := p.regionCenter(r)
		if !found || hex.Distance(from, at) < hex.Distance(from, best) {
			best, found = at, true
		}
	}
	return best, found
}

func (p *picture) regionCenter(r weather.Region) hex.Hex {
	w, b := p.view.Weather, p.view.Board
	if w.Cols <= 0 || w.Rows <= 0 {
		return hex.Hex{Q: b.Width() / 2, R: b.Height() / 2}
	}
	col, row := int(r)%w.Cols, int(r)/w.Cols
	return hex.Hex{Q: (2*col + 1) * b.Width() / (2 * w.Cols), R: (2*row + 1) * b.Height() / (2 * w.Rows)}
}

// enemyDistance is the distance to the closest known enemy: a contact, else an enemy base.
func (p *picture) enemyDistance(from hex.Hex) (int, bool) {
	d, found := 0, false
	for _, c := range p.contacts() {
		if dist := hex.Distance(from, c.at); !found || dist < d {
			d, found = dist, true
		}
	}
	if found {
		return d, true
	}
	if b, ok := p.nearestBase(from, false); ok {
		return hex.Distance(from, b.Hex), true
	}
	return 0, false
}

// blocked reports whether the weather at h forbids action.
func (p *picture) blocked(h hex.Hex, action weather.Action) bool {
	w := p.view.Weather
	return w.ModifierFor(w.Region(p.view.Board, h), action).Blocked
}

// host finds where a formation belongs: its home deck, else the nearest own deck.
func (p *picture) host(f *opchart.AirFormation) (engine.Host, bool) {
	if h, ok := p.view.Host(f.Home); ok {
		return h, true
	}
	var best engine.Host
	found := false
	for _, h := range p.view.Hosts() {
		if !found || hex.Distance(f.Hex, h.Hex) < hex.Distance(f.Hex, best.Hex) {
			best, found = h, true
		}
	}
	return best, found
}
