package engine

import (
	"fmt"
	"slices"

	"flattop/combat"
	"flattop/game"
	"flattop/hex"
	"flattop/observe"
	"flattop/opchart"
	"flattop/weather"
)

// Command is a player order. Each command is legal only in the phases it lists.
type Command interface {
	Issuer() game.Side
	Phases() []game.Phase
	apply(x *exec) error
}

var (
	movementOnly   = []game.Phase{game.MovementPhase}
	airOpsOnly     = []game.Phase{game.AirOperationsPhase}
	combatOnly     = []game.Phase{game.CombatPhase}
	interactive    = []game.Phase{game.MovementPhase, game.AirOperationsPhase, game.CombatPhase}
	movementAirOps = []game.Phase{game.MovementPhase, game.AirOperationsPhase}
)

// MoveTaskForce sails a task force along Path, which excludes its current hex. Formations
// sitting on its carriers go with it.
type MoveTaskForce struct {
	Side      game.Side  `json:"side"`
	TaskForce opchart.ID `json:"task_force"`
	Path      []hex.Hex  `json:"path"`
}

func (c MoveTaskForce) Issuer() game.Side    { return c.Side }
func (c MoveTaskForce) Phases() []game.Phase { return movementOnly }

func (c MoveTaskForce) apply(x *exec) error {
	tf, err := x.ownTaskForce(c.Side, c.TaskForce)
	if err != nil {
		return err
	}
	if len(c.Path) == 0 {
		return game.Errorf(game.CodeInvalidPlacement, "empty path for %s", tf.ID)
	}
	if err := x.state.Board.CanMove(tf.ID, c.Path, tf.Remaining()); err != nil {
		return err
	}
	from := tf.Hex
	tf.Hex = c.Path[len(c.Path)-1]
	tf.MovementUsed += len(c.Path)
	for _, f := range x.state.Chart.Formations {
		if f.Status != opchart.Based && f.Status != opchart.Launched {
			continue
		}
		if _, ok := tf.Ship(f.Home); ok {
			f.Hex = tf.Hex
		}
	}
	x.record(c.Side, "move", "%s %s -> %s", tf.ID, from, tf.Hex)
	return nil
}

// MoveFormation flies an airborne or returning formation along Path.
type MoveFormation struct {
	Side      game.Side  `json:"side"`
	Formation opchart.ID `json:"formation"`
	Path      []hex.Hex  `json:"path"`
}

func (c MoveFormation) Issuer() game.Side    { return c.Side }
func (c MoveFormation) Phases() []game.Phase { return movementOnly }

func (c MoveFormation) apply(x *exec) error {
	f, err := x.ownFormation(c.Side, c.Formation)
	if err != nil {
		return err
	}
	if f.Status != opchart.Airborne && f.Status != opchart.Returning {
		return game.Errorf(game.CodeIllegalPhaseAction, "formation %s is %s", f.ID, f.Status)
	}
	if len(c.Path) == 0 {
		return game.Errorf(game.CodeInvalidPlacement, "empty path for %s", f.ID)
	}
	allowance := FlightAllowance(x.state.Chart.Catalog(), f)
	if err := x.state.Board.CanMove(f.ID, c.Path, allowance); err != nil {
		return err
	}
	from := f.Hex
	f.Hex = c.Path[len(c.Path)-1]
	f.Moved += len(c.Path)
	x.record(c.Side, "fly", "%s %s -> %s", f.ID, from, f.Hex)
	return nil
}

// FlightAllowance is what a formation may still fly this turn: its slowest type's move less
// what it has flown.
func FlightAllowance(catalog opchart.Catalog, f *opchart.AirFormation) int {
	move := -1
	for _, s := range f.Squadrons {
		p, err := catalog.Profile(s.Type)
		if err != nil {
			continue
		}
		if move < 0 || p.Move < move {
			move = p.Move
		}
	}
	return max(move-f.Moved, 0)
}

// ReadyAircraft arms Count aircraft of one type on a host.
type ReadyAircraft struct {
	Side     game.Side            `json:"side"`
	Host     opchart.ID           `json:"host"`
	Aircraft opchart.AircraftType `json:"aircraft"`
	Count    int                  `json:"count"`
	Armament opchart.Armament     `json:"armament"`
}

func (c ReadyAircraft) Issuer() game.Side    { return c.Side }
func (c ReadyAircraft) Phases() []game.Phase { return airOpsOnly }

func (c ReadyAircraft) apply(x *exec) error {
	if err := x.ownHost(c.Side, c.Host); err != nil {
		return err
	}
	if err := x.state.Chart.ReadyAircraft(c.Host, c.Aircraft, c.Count, c.Armament); err != nil {
		return err
	}
	x.record(c.Side, "ready", "%d %s at %s armed %q", c.Count, c.Aircraft, c.Host, c.Armament)
	return nil
}

// FormAirFormation draws ready aircraft into a formation, optionally sending it off at once.
type FormAirFormation struct {
	Side     game.Side         `json:"side"`
	Host     opchart.ID        `json:"host"`
	Mission  opchart.Mission   `json:"mission"`
	Aircraft []opchart.Request `json:"aircraft"`
	Target   *hex.Hex          `json:"target,omitempty"`
	Altitude opchart.Altitude  `json:"altitude,omitempty"`
	Launch   bool              `json:"launch,omitempty"`
}

func (c FormAirFormation) Issuer() game.Side    { return c.Side }
func (c FormAirFormation) Phases() []game.Phase { return airOpsOnly }

func (c FormAirFormation) apply(x *exec) error {
	if err := x.ownHost(c.Side, c.Host); err != nil {
		return err
	}
	f, err := x.state.Chart.FormAirFormation(c.Host, c.Mission, c.Aircraft)
	if err != nil {
		return err
	}
	if c.Target != nil || c.Altitude != "" {
		if err := x.state.Chart.AssignMission(f.ID, c.Mission, c.Target, c.Altitude); err != nil {
			return err
		}
	}
	x.record(c.Side, "form", "%s %s from %s, %d factors", f.ID, c.Mission, c.Host, f.Strength())
	if c.Launch {
		return x.launch(f)
	}
	return nil
}

type AssignMission struct {
	Side      game.Side        `json:"side"`
	Formation opchart.ID       `json:"formation"`
	Mission   opchart.Mission  `json:"mission"`
	Target    *hex.Hex         `json:"target,omitempty"`
	Altitude  opchart.Altitude `json:"altitude,omitempty"`
}

func (c AssignMission) Issuer() game.Side    { return c.Side }
func (c AssignMission) Phases() []game.Phase { return airOpsOnly }

func (c AssignMission) apply(x *exec) error {
	f, err := x.ownFormation(c.Side, c.Formation)
	if err != nil {
		return err
	}
	if err := x.state.Chart.AssignMission(f.ID, c.Mission, c.Target, c.Altitude); err != nil {
		return err
	}
	x.record(c.Side, "mission", "%s %s", f.ID, c.Mission)
	return nil
}

type Launch struct {
	Side      game.Side  `json:"side"`
	Formation opchart.ID `json:"formation"`
}

func (c Launch) Issuer() game.Side    { return c.Side }
func (c Launch) Phases() []game.Phase { return airOpsOnly }

func (c Launch) apply(x *exec) error {
	f, err := x.ownFormation(c.Side, c.Formation)
	if err != nil {
		return err
	}
	return x.launch(f)
}

type ReturnToBase struct {
	Side      game.Side  `json:"side"`
	Formation opchart.ID `json:"formation"`
}

func (c ReturnToBase) Issuer() game.Side    { return c.Side }
func (c ReturnToBase) Phases() []game.Phase { return movementAirOps }

func (c ReturnToBase) apply(x *exec) error {
	f, err := x.ownFormation(c.Side, c.Formation)
	if err != nil {
		return err
	}
	if err := x.state.Chart.ReturnToBase(f.ID); err != nil {
		return err
	}
	x.record(c.Side, "recall", "%s", f.ID)
	return nil
}

// Land recovers a returning formation. Host defaults to the formation's home.
type Land struct {
	Side      game.Side  `json:"side"`
	Formation opchart.ID `json:"formation"`
	Host      opchart.ID `json:"host,omitempty"`
}

func (c Land) Issuer() game.Side    { return c.Side }
func (c Land) Phases() []game.Phase { return airOpsOnly }

func (c Land) apply(x *exec) error {
	f, err := x.ownFormation(c.Side, c.Formation)
	if err != nil {
		return err
	}
	host := c.Host
	if host == "" {
		host = f.Home
	}
	if err := x.ownHost(c.Side, host); err != nil {
		return err
	}
	strength := f.Strength()
	if err := x.state.Chart.Land(f.ID, host); err != nil {
		return err
	}
	x.record(c.Side, "land", "%s on %s, %d factors", f.ID, host, strength)
	return nil
}

// Attack resolves a strike by formations sharing a hex against a task force, a ship or a base.
// Conserve holds the escorts back from dogfighting to save fuel.
type Attack struct {
	Side       game.Side    `json:"side"`
	Formations []opchart.ID `json:"formations"`
	Target     opchart.ID   `json:"target"`
	Conserve   bool         `json:"conserve,omitempty"`
}

func (c Attack) Issuer() game.Side    { return c.Side }
func (c Attack) Phases() []game.Phase { return combatOnly }

func (c Attack) apply(x *exec) error {
	if len(c.Formations) == 0 {
		return game.Errorf(game.CodeEmptyFormation, "attack without formations")
	}
	var at hex.Hex
	for i, id := range c.Formations {
		f, err := x.ownFormation(c.Side, id)
		if err != nil {
			return err
		}
		if i == 0 {
			at = f.Hex
		}
	}
	chart := x.state.Chart
	eng := combat.Engagement{
		Turn:      x.state.Clock.Turn,
		Sequence:  len(x.state.Combats) + 1,
		Hex:       at,
		Attackers: slices.Clone(c.Formations),
		Target:    c.Target,
	}
	ctx := combat.Context{
		Weather:   x.state.Weather,
		Region:    x.state.Weather.Region(x.state.Board, at),
		Night:     x.state.Clock.Night(),
		Precision: x.precision(c.Side, c.Target),
		Conserve:  c.Conserve,
	}
	res, muts, err := combat.Resolve(chart, eng, ctx, x.rng, x.rules.Combat)
	if err != nil {
		return err
	}
	points := 0
	for _, d := range res.Damage {
		if _, s, ok := chart.Ship(d.Unit); ok && d.Sunk {
			points += s.DamageFactor
		}
		if b, ok := chart.Base(d.Unit); ok {
			points += min(d.Hits, max(b.DamageFactor-b.Damage, 0))
		}
	}
	if _, err := combat.Apply(chart, muts); err != nil {
		return err
	}
	x.state.Combats = append(x.state.Combats, res)
	x.state.Points[c.Side] += points
	if !res.Missed {
		for _, id := range c.Formations {
			if f, ok := chart.Formation(id); ok && f.Status == opchart.Airborne {
				if err := chart.ReturnToBase(id); err != nil {
					return err
				}
			}
		}
	}
	x.record(c.Side, "attack", "combat %d on %s at %s: %d sunk, %d formations eliminated",
		res.Sequence, res.Target, res.Hex, len(res.Sunk), len(res.Eliminated))
	x.checkAnnihilation()
	return nil
}

// EndPhase declares a side finished with the current phase.
type EndPhase struct {
	Side game.Side `json:"side"`
}

func (c EndPhase) Issuer() game.Side    { return c.Side }
func (c EndPhase) Phases() []game.Phase { return interactive }

func (c EndPhase) apply(x *exec) error {
	x.state.Done[c.Side] = true
	return nil
}

func (x *exec) ownTaskForce(side game.Side, id opchart.ID) (*opchart.TaskForce, error) {
	tf, ok := x.state.Chart.TaskForce(id)
	if !ok {
		return nil, game.Errorf(game.CodeInvalidTarget, "no task force %s", id)
	}
	if tf.Side != side {
		return nil, game.Errorf(game.CodeInvalidTarget, "task force %s belongs to %s", id, tf.Side)
	}
	return tf, nil
}

func (x *exec) ownFormation(side game.Side, id opchart.ID) (*opchart.AirFormation, error) {
	f, ok := x.state.Chart.Formation(id)
	if !ok {
		return nil, game.Errorf(game.CodeInvalidTarget, "no air formation %s", id)
	}
	if f.Side != side {
		return nil, game.Errorf(game.CodeInvalidTarget, "air formation %s belongs to %s", id, f.Side)
	}
	return f, nil
}

func (x *exec) ownHost(side game.Side, id opchart.ID) error {
	_, _, owner, err := x.state.Chart.HostAt(id)
	if err != nil {
		return err
	}
	if owner != side {
		return game.Errorf(game.CodeInvalidTarget, "host %s belongs to %s", id, owner)
	}
	return nil
}

// launch refuses to fly off a host under a storm.
func (x *exec) launch(f *opchart.AirFormation) error {
	_, at, _, err := x.state.Chart.HostAt(f.Home)
	if err != nil {
		return err
	}
	region := x.state.Weather.Region(x.state.Board, at)
	if x.state.Weather.ModifierFor(region, weather.Launch).Blocked {
		return game.Errorf(game.CodeIllegalPhaseAction, "cannot launch %s from %s in a storm", f.ID, f.Home)
	}
	if err := x.state.Chart.Launch(f.ID, x.state.Clock.Turn); err != nil {
		return err
	}
	x.record(f.Side, "launch", "%s from %s", f.ID, f.Home)
	return nil
}

// precision is how well side knows target this turn. Bases never move and are always known.
func (x *exec) precision(side game.Side, id opchart.ID) observe.Precision {
	chart := x.state.Chart
	if _, ok := chart.Base(id); ok {
		return observe.Exact
	}
	if tf, _, ok := chart.Ship(id); ok {
		id = tf.ID
	}
	d, ok := x.state.Observations[side].Find(id)
	if !ok {
		return observe.Unseen
	}
	return d.Precision
}

func (x *exec) record(side game.Side, event, format string, args ...any) {
	entry := LogEntry{
		Turn:   x.state.Clock.Turn,
		Hour:   x.state.Clock.Hour,
		Phase:  x.state.Phase,
		Side:   side,
		Event:  event,
		Detail: fmt.Sprintf(format, args...),
	}
	x.state.Log = append(x.state.Log, entry)
	x.log.Debug().Msgf("turn %d %s: %s %s", entry.Turn, entry.Phase, event, entry.Detail)
}
