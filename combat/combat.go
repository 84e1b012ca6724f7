// Package combat resolves one air engagement against a task force or base. Resolution reads a
// chart snapshot and returns a result plus the mutations the caller must apply.
package combat

import (
	"fmt"

	"flattop/dice"
	"flattop/game"
	"flattop/hex"
	"flattop/observe"
	"flattop/opchart"
	"flattop/weather"
)

// Engagement names who attacks what, and where.
type Engagement struct {
	Turn      int          `json:"turn"`
	Sequence  int          `json:"sequence"`
	Hex       hex.Hex      `json:"hex"`
	Attackers []opchart.ID `json:"attackers"`
	// Target is a task force, a ship within one, or a base.
	Target opchart.ID `json:"target"`
}

// Context carries the conditions of the engagement hex.
type Context struct {
	Weather   weather.State
	Region    weather.Region
	Night     bool
	Precision observe.Precision
	// Conserve keeps attacking escorts from spending range in air-to-air combat at a penalty.
	Conserve bool
}

type Step string

const (
	StepSearch       Step = "search"
	StepIntercept    Step = "intercept"
	StepEscort       Step = "escort"
	StepReturnFire   Step = "return_fire"
	StepAntiAircraft Step = "anti_aircraft"
	StepBombing      Step = "bombing"
)

// Roll is one die thrown during resolution.
type Roll struct {
	Step     Step                 `json:"step"`
	Shooter  opchart.ID           `json:"shooter"`
	Aircraft opchart.AircraftType `json:"aircraft,omitempty"`
	Target   opchart.ID           `json:"target,omitempty"`
	BHT      int                  `json:"bht"`
	Factors  int                  `json:"factors"`
	Die      int                  `json:"die"`
	Hits     int                  `json:"hits"`
}

type Loss struct {
	Formation opchart.ID           `json:"formation"`
	Side      game.Side            `json:"side"`
	Aircraft  opchart.AircraftType `json:"aircraft"`
	Count     int                  `json:"count"`
}

// Damage is the hits one ship or base took.
type Damage struct {
	Unit        opchart.ID `json:"unit"`
	TaskForce   opchart.ID `json:"task_force,omitempty"`
	Hits        int        `json:"hits"`
	Crippled    bool       `json:"crippled,omitempty"`
	Sunk        bool       `json:"sunk,omitempty"`
	OutOfAction bool       `json:"out_of_action,omitempty"`
}

// Result is the immutable record of one engagement.
type Result struct {
	Sequence int        `json:"sequence"`
	Turn     int        `json:"turn"`
	Hex      hex.Hex    `json:"hex"`
	Attacker game.Side  `json:"attacker"`
	Defender game.Side  `json:"defender"`
	Target   opchart.ID `json:"target"`
	// Missed is set when the strike failed to find a target it only knew approximately.
	Missed      bool         `json:"missed,omitempty"`
	Intercepted bool         `json:"intercepted,omitempty"`
	Rolls       []Roll       `json:"rolls"`
	Losses      []Loss       `json:"losses"`
	Damage      []Damage     `json:"damage"`
	Sunk        []opchart.ID `json:"sunk"`
	Eliminated  []opchart.ID `json:"eliminated"`
}

// unit is a working copy of one squadron during resolution.
type unit struct {
	formation opchart.ID
	side      game.Side
	alt       opchart.Altitude
	squadron  opchart.Squadron
	profile   opchart.Profile
	lost      int
}

func (u *unit) alive() bool { return u.squadron.Strength > 0 }

func strength(units []*unit) int {
	total := 0
	for _, u := range units {
		total += u.squadron.Strength
	}
	return total
}

// target is what the bombers aim at.
type target struct {
	side  game.Side
	tf    *opchart.TaskForce
	ship  *opchart.Ship
	base  *opchart.Base
	at    hex.Hex
	aa    int
	label opchart.ID
}

type resolver struct {
	chart  *opchart.Chart
	ctx    Context
	rng    dice.Roller
	tables Tables
	res    *Result
	night  int
	// modifiers from weather for the engagement region
	airMod, aaMod, bombMod int
}

// Resolve runs the engagement through interception, anti-aircraft fire and bombing. The chart is
// only read. Every die comes from rng, in attacker order, so a fixed seed replays exactly.
func Resolve(chart *opchart.Chart, eng Engagement, ctx Context, rng dice.Roller, t Tables) (Result, []Mutation, error) {
	attackers, side, err := collectAttackers(chart, eng)
	if err != nil {
		return Result{}, nil, err
	}
	tgt, err := findTarget(chart, eng, side)
	if err != nil {
		return Result{}, nil, err
	}
	if ctx.Weather.ModifierFor(ctx.Region, weather.AirCombat).Blocked || ctx.Weather.ModifierFor(ctx.Region, weather.Bombing).Blocked {
		return Result{}, nil, game.Errorf(game.CodeIllegalPhaseAction, "no air combat in a storm at %s", eng.Hex)
	}
	if ctx.Precision == observe.Unseen {
		return Result{}, nil, game.Errorf(game.CodeInvalidTarget, "%s is not observed", eng.Target)
	}

	res := Result{
		Sequence:   eng.Sequence,
		Turn:       eng.Turn,
		Hex:        eng.Hex,
		Attacker:   side,
		Defender:   tgt.side,
		Target:     eng.Target,
		Rolls:      []Roll{},
		Losses:     []Loss{},
		Damage:     []Damage{},
		Sunk:       []opchart.ID{},
		Eliminated: []opchart.ID{},
	}
	r := &resolver{
		chart:   chart,
		ctx:     ctx,
		rng:     rng,
		tables:  t,
		res:     &res,
		airMod:  ctx.Weather.ModifierFor(ctx.Region, weather.AirCombat).Value,
		aaMod:   ctx.Weather.ModifierFor(ctx.Region, weather.AntiAircraft).Value,
		bombMod: ctx.Weather.ModifierFor(ctx.Region, weather.Bombing).Value,
	}
	if ctx.Night {
		r.night = t.Night
	}

	if ctx.Precision == observe.Approximate && !r.search() {
		res.Missed = true
		return res, nil, nil
	}

	var escorts, bombers []*unit
	for _, u := range attackers {
		if !u.squadron.Armed() && u.profile.Role.CanEscort() {
			escorts = append(escorts, u)
		} else {
			bombers = append(bombers, u)
		}
	}
	interceptors, err := collectInterceptors(chart, eng.Hex, tgt.side)
	if err != nil {
		return Result{}, nil, err
	}

	expend := make(map[opchart.ID]int)
	var order []opchart.ID
	spend := func(id opchart.ID, n int) {
		if _, ok := expend[id]; !ok {
			order = append(order, id)
		}
		expend[id] += n
	}

	r.intercept(interceptors, escorts, bombers, spend)
	r.antiAircraft(tgt, bombers)
	shipHits, baseHits, spent := r.bomb(tgt, bombers, spend)

	muts := r.mutations(append(append(append([]*unit{}, escorts...), bombers...), interceptors...), order, expend, spent)
	muts = append(muts, r.damage(tgt, shipHits, baseHits)...)
	return res, muts, nil
}

func collectAttackers(chart *opchart.Chart, eng Engagement) ([]*unit, game.Side, error) {
	if len(eng.Attackers) == 0 {
		return nil, "", game.Errorf(game.CodeEmptyFormation, "no attacking formations")
	}
	var side game.Side
	var out []*unit
	seen := make(map[opchart.ID]bool)
	for _, id := range eng.Attackers {
		if seen[id] {
			continue
		}
		seen[id] = true
		f, ok := chart.Formation(id)
		if !ok {
			return nil, "", game.Errorf(game.CodeInvalidTarget, "no formation %s", id)
		}
		if side == "" {
			side = f.Side
		} else if f.Side != side {
			return nil, "", game.Errorf(game.CodeIllegalPhaseAction, "formation %s flies for the other side", id)
		}
		if f.Status != opchart.Airborne {
			return nil, "", game.Errorf(game.CodeIllegalPhaseAction, "formation %s is %s, not airborne", id, f.Status)
		}
		if f.Hex != eng.Hex {
			return nil, "", game.Errorf(game.CodeInvalidPlacement, "formation %s is at %s, not %s", id, f.Hex, eng.Hex)
		}
		units, err := squadrons(chart, f)
		if err != nil {
			return nil, "", err
		}
		out = append(out, units...)
	}
	if strength(out) == 0 {
		return nil, "", game.Errorf(game.CodeEmptyFormation, "attacking formations have no aircraft")
	}
	return out, side, nil
}

func squadrons(chart *opchart.Chart, f *opchart.AirFormation) ([]*unit, error) {
	var out []*unit
	for _, s := range f.Squadrons {
		p, err := chart.Catalog().Profile(s.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve squadron of %s: %w", f.ID, err)
		}
		out = append(out, &unit{formation: f.ID, side: f.Side, alt: f.Altitude, squadron: s, profile: p})
	}
	return out, nil
}

// collectInterceptors gathers unarmed fighters and scouts of the defender's airborne CAP in the
// hex. CAP that is still launching or already heading home does not engage.
func collectInterceptors(chart *opchart.Chart, at hex.Hex, side game.Side) ([]*unit, error) {
	var out []*unit
	for _, f := range chart.FormationsOf(side) {
		if f.Mission != opchart.CAP || f.Status != opchart.Airborne || f.Hex != at {
			continue
		}
		units, err := squadrons(chart, f)
		if err != nil {
			return nil, err
		}
		for _, u := range units {
			if !u.squadron.Armed() && u.profile.Role.CanEscort() {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func findTarget(chart *opchart.Chart, eng Engagement, side game.Side) (target, error) {
	u, ok := chart.Unit(eng.Target)
	if !ok {
		return target{}, game.Errorf(game.CodeInvalidTarget, "no target %s", eng.Target)
	}
	var t target
	switch v := u.(type) {
	case *opchart.TaskForce:
		t = target{side: v.Side, tf: v, at: v.Hex, aa: v.AA(), label: v.ID}
	case *opchart.Ship:
		tf, _, _ := chart.Ship(v.ID)
		if !v.ReceivesDamage() {
			return target{}, game.Errorf(game.CodeInvalidTarget, "ship %s is already sunk", v.ID)
		}
		t = target{side: tf.Side, tf: tf, ship: v, at: tf.Hex, aa: tf.AA(), label: v.ID}
	case *opchart.Base:
		t = target{side: v.Side, base: v, at: v.Hex, aa: v.AA, label: v.ID}
	case *opchart.AirFormation:
		return target{}, game.Errorf(game.CodeInvalidTarget, "air formations are engaged by CAP, not attacked")
	default:
		panic(fmt.Sprintf("combat: unexpected unit %T", u))
	}
	if t.side == side {
		return target{}, game.Errorf(game.CodeInvalidTarget, "%s is friendly", eng.Target)
	}
	if t.at != eng.Hex {
		return target{}, game.Errorf(game.CodeInvalidTarget, "%s is not at %s", eng.Target, eng.Hex)
	}
	return t, nil
}

// search rolls for a strike that knows only the target's region.
func (r *resolver) search() bool {
	die := r.rng.D6()
	mod := die
	if r.ctx.Weather.At(r.ctx.Region) == weather.Cloudy {
		mod++
	}
	if r.ctx.Night {
		mod++
	}
	found := mod <= r.tables.SearchSuccess
	hits := 0
	if found {
		hits = 1
	}
	r.res.Rolls = append(r.res.Rolls, Roll{Step: StepSearch, Target: r.res.Target, BHT: r.tables.SearchSuccess, Die: die, Hits: hits})
	return found
}

func (r *resolver) airBHT(u *unit, conserve bool) int {
	bht := u.profile.Hits.AirToAir + u.squadron.Quality + r.airMod - r.night
	if u.squadron.Armed() && u.profile.Role == opchart.Fighter {
		bht -= r.tables.ArmedFighter
	}
	if conserve {
		bht -= r.tables.Conserve
	}
	return max(bht, 1)
}

// fire rolls once per live shooter squadron and returns the total hits scored.
func (r *resolver) fire(step Step, shooters, targets []*unit, conserve bool) int {
	if strength(targets) == 0 {
		return 0
	}
	total := 0
	for _, u := range shooters {
		if !u.alive() {
			continue
		}
		bht := r.airBHT(u, conserve)
		die := r.rng.D6()
		hits := r.tables.Hits(bht, u.squadron.Strength, die)
		r.res.Rolls = append(r.res.Rolls, Roll{
			Step: step, Shooter: u.formation, Aircraft: u.squadron.Type,
			BHT: bht, Factors: u.squadron.Strength, Die: die, Hits: hits,
		})
		total += hits
	}
	return total
}

// absorb removes hits from targets front to back.
func absorb(targets []*unit, hits int) {
	for _, u := range targets {
		if hits == 0 {
			return
		}
		k := min(u.squadron.Strength, hits)
		u.squadron.Strength -= k
		u.lost += k
		hits -= k
	}
}

func (r *resolver) intercept(interceptors, escorts, bombers []*unit, spend func(opchart.ID, int)) {
	if strength(interceptors) == 0 {
		return
	}
	engaged := make(map[*unit]bool)
	if strength(escorts) > 0 {
		onEscorts := r.fire(StepIntercept, interceptors, escorts, false)
		onInterceptors := r.fire(StepEscort, escorts, interceptors, r.ctx.Conserve)
		absorb(escorts, onEscorts)
		absorb(interceptors, onInterceptors)
		for _, u := range interceptors {
			engaged[u] = true
		}
		for _, u := range escorts {
			engaged[u] = !r.ctx.Conserve
		}
	}
	if live := strength(interceptors); live > 0 && strength(bombers) > 0 && live >= 2*strength(escorts) {
		r.res.Intercepted = true
		onBombers := r.fire(StepIntercept, interceptors, bombers, false)
		onInterceptors := r.fire(StepReturnFire, bombers, interceptors, false)
		absorb(bombers, onBombers)
		absorb(interceptors, onInterceptors)
		for _, u := range interceptors {
			engaged[u] = true
		}
	}
	spent := make(map[opchart.ID]bool)
	for _, group := range [][]*unit{escorts, interceptors} {
		for _, u := range group {
			if engaged[u] && !spent[u.formation] {
				spent[u.formation] = true
				spend(u.formation, 1)
			}
		}
	}
}

func (r *resolver) antiAircraft(t target, bombers []*unit) {
	if t.aa <= 0 || strength(bombers) == 0 {
		return
	}
	bht := max(r.tables.AntiAircraft+r.aaMod-r.night, 1)
	die := r.rng.D6()
	hits := r.tables.Hits(bht, t.aa, die)
	r.res.Rolls = append(r.res.Rolls, Roll{Step: StepAntiAircraft, Shooter: t.label, BHT: bht, Factors: t.aa, Die: die, Hits: hits})
	absorb(bombers, hits)
}

type shipHit struct {
	ship *opchart.Ship
	hits int
}

type disarm struct {
	formation opchart.ID
	aircraft  opchart.AircraftType
}

// bomb resolves every armed surviving squadron in order. Hits on ships are tracked locally so a
// ship sunk by an earlier squadron is no longer a target.
func (r *resolver) bomb(t target, bombers []*unit, spend func(opchart.ID, int)) ([]*shipHit, int, []disarm) {
	var ships []*shipHit
	byShip := make(map[opchart.ID]*shipHit)
	sunk := func(s *opchart.Ship) bool {
		h := byShip[s.ID]
		return h != nil && s.Damage+h.hits >= s.DamageFactor
	}
	pick := func() *opchart.Ship {
		if t.ship != nil && !sunk(t.ship) {
			return t.ship
		}
		var first *opchart.Ship
		for _, s := range t.tf.Afloat() {
			if sunk(s) {
				continue
			}
			if s.IsCarrier() {
				return s
			}
			if first == nil {
				first = s
			}
		}
		return first
	}

	baseHits := 0
	var spent []disarm
	ranged := make(map[opchart.ID]bool)
	for _, u := range bombers {
		if !u.alive() || !u.squadron.Armed() {
			continue
		}
		kind := u.profile.AttackKind(u.squadron.Armament)
		var bht int
		var aim opchart.ID
		var ship *opchart.Ship
		if t.base != nil {
			bht = u.profile.Hits.VsBase(kind, u.alt, u.squadron.Armament)
			aim = t.base.ID
		} else {
			ship = pick()
			if ship == nil {
				break
			}
			bht = u.profile.Hits.VsShip(kind, u.alt, u.squadron.Armament)
			aim = ship.ID
		}
		if bht == 0 {
			continue
		}
		if ship != nil && r.vulnerable(ship, byShip[ship.ID]) {
			bht += r.tables.Vulnerable
		}
		bht = max(bht+r.bombMod-r.night, 1)
		die := r.rng.D6()
		hits := r.tables.Hits(bht, u.squadron.Strength, die)
		r.res.Rolls = append(r.res.Rolls, Roll{
			Step: StepBombing, Shooter: u.formation, Aircraft: u.squadron.Type, Target: aim,
			BHT: bht, Factors: u.squadron.Strength, Die: die, Hits: hits,
		})
		if ship != nil {
			h := byShip[ship.ID]
			if h == nil {
				h = &shipHit{ship: ship}
				byShip[ship.ID] = h
				ships = append(ships, h)
			}
			h.hits += hits
		} else {
			baseHits += hits
		}
		spent = append(spent, disarm{formation: u.formation, aircraft: u.squadron.Type})
		if !(kind == opchart.LevelAttack && u.alt == opchart.High) && !ranged[u.formation] {
			ranged[u.formation] = true
			spend(u.formation, 1)
		}
	}
	return ships, baseHits, spent
}

func (r *resolver) vulnerable(s *opchart.Ship, h *shipHit) bool {
	if s.Status == opchart.Anchored || s.Crippled() {
		return true
	}
	return h != nil && (s.Damage+h.hits)*2 >= s.DamageFactor
}

func (r *resolver) mutations(units []*unit, order []opchart.ID, expend map[opchart.ID]int, spent []disarm) []Mutation {
	var muts []Mutation
	type key struct {
		formation opchart.ID
		side      game.Side
		aircraft  opchart.AircraftType
	}
	lost := make(map[key]int)
	var keys []key
	seen := make(map[opchart.ID]bool)
	var formations []opchart.ID
	for _, u := range units {
		if !seen[u.formation] {
			seen[u.formation] = true
			formations = append(formations, u.formation)
		}
		if u.lost == 0 {
			continue
		}
		k := key{u.formation, u.side, u.squadron.Type}
		if _, ok := lost[k]; !ok {
			keys = append(keys, k)
		}
		lost[k] += u.lost
	}
	for _, k := range keys {
		r.res.Losses = append(r.res.Losses, Loss{Formation: k.formation, Side: k.side, Aircraft: k.aircraft, Count: lost[k]})
		muts = append(muts, Mutation{Kind: LossesMutation, Formation: k.formation, Aircraft: k.aircraft, Count: lost[k]})
	}
	// A CAP formation may carry armed squadrons that never fought, so compare against the chart.
	for _, id := range formations {
		if f, ok := r.chart.Formation(id); ok && lostAll(f, units) {
			r.res.Eliminated = append(r.res.Eliminated, id)
		}
	}
	eliminated := make(map[opchart.ID]bool)
	for _, id := range r.res.Eliminated {
		eliminated[id] = true
	}
	done := make(map[disarm]bool)
	for _, d := range spent {
		if eliminated[d.formation] || done[d] {
			continue
		}
		done[d] = true
		muts = append(muts, Mutation{Kind: DisarmMutation, Formation: d.formation, Aircraft: d.aircraft})
	}
	for _, id := range order {
		if eliminated[id] {
			continue
		}
		muts = append(muts, Mutation{Kind: ExpendRangeMutation, Formation: id, Count: expend[id]})
	}
	return muts
}

// lostAll reports whether the losses recorded against f account for its whole strength.
func lostAll(f *opchart.AirFormation, units []*unit) bool {
	lost := 0
	for _, u := range units {
		if u.formation == f.ID {
			lost += u.lost
		}
	}
	return lost > 0 && lost >= f.Strength()
}

func (r *resolver) damage(t target, ships []*shipHit, baseHits int) []Mutation {
	var muts []Mutation
	for _, h := range ships {
		if h.hits == 0 {
			continue
		}
		total := h.ship.Damage + h.hits
		d := Damage{
			Unit:      h.ship.ID,
			TaskForce: t.tf.ID,
			Hits:      h.hits,
			Sunk:      total >= h.ship.DamageFactor,
			Crippled:  total*2 >= h.ship.DamageFactor,
		}
		if d.Sunk {
			d.Crippled = false
			r.res.Sunk = append(r.res.Sunk, h.ship.ID)
		}
		r.res.Damage = append(r.res.Damage, d)
		muts = append(muts, Mutation{Kind: ShipDamageMutation, TaskForce: t.tf.ID, Ship: h.ship.ID, Count: h.hits})
	}
	if t.base != nil && baseHits > 0 {
		r.res.Damage = append(r.res.Damage, Damage{
			Unit:        t.base.ID,
			Hits:        baseHits,
			OutOfAction: t.base.Damage+baseHits >= t.base.DamageFactor,
		})
		muts = append(muts, Mutation{Kind: BaseDamageMutation, Base: t.base.ID, Count: baseHits})
	}
	return muts
}
