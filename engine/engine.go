// Package engine runs the sequence of play. It owns the authoritative state and the dice and
// accepts commands from both sides; every command is applied to a copy so a rejected order leaves
// the game untouched.
package engine

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"flattop/combat"
	"flattop/dice"
	"flattop/experiments/metrics"
	"flattop/game"
	"flattop/hex"
	"flattop/observe"
	"flattop/opchart"
	"flattop/weather"
)

// Setup is the opening position of a game.
type Setup struct {
	Board   *hex.Board
	Chart   *opchart.Chart
	Weather weather.State
	// Clock defaults to dawn of day one.
	Clock game.Clock
}

type Engine struct {
	state   *State
	dice    *dice.Dice
	rules   Rules
	log     zerolog.Logger
	metrics metrics.Collector
}

type Option func(*Engine)

func WithRules(r Rules) Option {
	return func(e *Engine) {
		e.rules = r
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

func WithCollector(c metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}

func newEngine(opts []Option) *Engine {
	e := &Engine{
		rules:   StandardRules(),
		log:     zerolog.Nop(),
		metrics: metrics.NewDummyCollector(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New starts a game from setup and plays the automatic phases up to the first movement phase.
// The setup is copied.
func New(setup Setup, seed uint64, opts ...Option) (*Engine, error) {
	e := newEngine(opts)
	if setup.Board == nil || setup.Chart == nil {
		return nil, game.Errorf(game.CodeInvalidPlacement, "setup needs a board and a chart")
	}
	if err := e.rules.Weather.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weather table: %w", err)
	}
	if err := setup.Weather.Validate(); err != nil {
		return nil, game.Wrap(game.CodeInvalidPlacement, err, "invalid weather")
	}
	chart := setup.Chart.Copy()
	if chart.Catalog() == nil {
		chart.UseCatalog(e.rules.Catalog)
	}
	if err := chart.Validate(); err != nil {
		return nil, game.Wrap(game.CodeInvalidPlacement, err, "invalid chart")
	}
	clock := setup.Clock
	if clock.Turn == 0 {
		clock = game.NewClock(game.DawnHour)
	}
	state := &State{
		Board:        setup.Board.Copy(),
		Chart:        chart,
		Weather:      setup.Weather.Copy(),
		Clock:        clock,
		Phase:        game.WeatherPhase,
		Done:         map[game.Side]bool{},
		Observations: map[game.Side]observe.Result{},
		Combats:      []combat.Result{},
		Log:          []LogEntry{},
		Points:       map[game.Side]int{game.Allied: 0, game.Japanese: 0},
	}
	if err := syncBoard(state.Board, state.Chart); err != nil {
		return nil, err
	}
	e.state = state
	e.dice = dice.New(seed)
	e.metrics.Start(seed)

	x := e.exec(state, e.dice)
	x.enter(game.WeatherPhase)
	x.advance()
	e.commit(x)
	e.log.Info().Msgf("game started: turn %d, %02d:00, phase %s", e.state.Clock.Turn, e.state.Clock.Hour, e.state.Phase)
	return e, nil
}

// Execute applies a command. On error the state is unchanged and the error carries its
// rejection code.
func (e *Engine) Execute(cmd Command) error {
	e.mustBeConsistent()
	if err := e.admit(cmd); err != nil {
		e.reject(cmd, err)
		return err
	}
	x := e.exec(e.state.Copy(), e.dice.Clone())
	if err := cmd.apply(x); err != nil {
		e.reject(cmd, err)
		return err
	}
	x.sync()
	if !x.state.Outcome.Over && x.allDone() {
		x.advance()
	}
	e.commit(x)
	return nil
}

func (e *Engine) admit(cmd Command) error {
	if e.state.Outcome.Over {
		return game.Errorf(game.CodeIllegalPhaseAction, "the game is over")
	}
	side := cmd.Issuer()
	if !side.Valid() {
		return game.Errorf(game.CodeIllegalPhaseAction, "unknown side %q", side)
	}
	if !slices.Contains(cmd.Phases(), e.state.Phase) {
		return game.Errorf(game.CodeIllegalPhaseAction, "%T is not allowed in the %s phase", cmd, e.state.Phase)
	}
	if e.state.Done[side] {
		return game.Errorf(game.CodeIllegalPhaseAction, "%s has ended the %s phase", side, e.state.Phase)
	}
	return nil
}

func (e *Engine) reject(cmd Command, err error) {
	e.metrics.AddRejection()
	e.log.Debug().Err(err).Msgf("rejected %T from %s", cmd, cmd.Issuer())
}

func (e *Engine) exec(s *State, rng *dice.Dice) *exec {
	return &exec{state: s, rng: rng, rules: e.rules, log: e.log, combats: len(s.Combats)}
}

// commit installs the result of an exec and reports what happened to the collector.
func (e *Engine) commit(x *exec) {
	e.state, e.dice = x.state, x.rng
	for _, r := range e.state.Combats[x.combats:] {
		e.metrics.AddCombat(r)
	}
	for i := 0; i < x.turns; i++ {
		e.metrics.AddTurn()
	}
	if e.state.Outcome.Over && x.finished {
		e.log.Info().Msgf("game over on turn %d: winner %q (%s)", e.state.Clock.Turn, e.state.Outcome.Winner, e.state.Outcome.Reason)
	}
}

// mustBeConsistent panics when the board and chart disagree; only a bug gets there.
func (e *Engine) mustBeConsistent() {
	if err := consistency(e.state); err != nil {
		panic(fmt.Sprintf("engine: inconsistent state on turn %d: %v", e.state.Clock.Turn, err))
	}
}

// exec is one unit of work against a private copy of the state.
type exec struct {
	state *State
	rng   *dice.Dice
	rules Rules
	log   zerolog.Logger
	// combats is the combat log length before the work began.
	combats  int
	turns    int
	finished bool
}

func automatic(p game.Phase) bool {
	return p == game.WeatherPhase || p == game.ObservationPhase || p == game.CleanupPhase
}

func (x *exec) allDone() bool {
	for _, side := range game.Sides {
		if !x.state.Done[side] {
			return false
		}
	}
	return true
}

func (x *exec) sync() {
	if err := syncBoard(x.state.Board, x.state.Chart); err != nil {
		panic(fmt.Sprintf("engine: cannot place pieces on turn %d: %v", x.state.Clock.Turn, err))
	}
}

// advance moves through the sequence of play, running automatic phases, until a side has
// something to decide or the game ends.
func (x *exec) advance() {
	for !x.state.Outcome.Over {
		next, rollover := x.state.Phase.Next()
		if rollover {
			x.state.Clock = x.state.Clock.Advance()
			x.turns++
		}
		x.enter(next)
		if !automatic(next) {
			return
		}
	}
}

func (x *exec) enter(p game.Phase) {
	x.state.Phase = p
	x.state.Done = map[game.Side]bool{}
	switch p {
	case game.WeatherPhase:
		x.state.Weather = weather.AdvanceTurn(x.state.Weather, x.state.Clock, x.rng, x.rules.Weather)
		// Sightings expire with the turn; nothing is known until the next observation phase.
		obs := make(map[game.Side]observe.Result, len(game.Sides))
		for _, side := range game.Sides {
			obs[side] = observe.Result{Side: side, Turn: x.state.Clock.Turn, Detections: []observe.Detection{}}
		}
		x.state.Observations = obs
	case game.ObservationPhase:
		x.observe()
	case game.CleanupPhase:
		x.cleanup()
	}
}

// observe anchors task forces that stayed in a base hex, then computes both sides' results.
func (x *exec) observe() {
	for _, tf := range x.state.Chart.TaskForces {
		tf.SetAnchored(tf.MovementUsed == 0 && x.state.Board.Terrain(tf.Hex) == hex.BaseHex)
	}
	in := observe.Input{
		Board:   x.state.Board,
		Chart:   x.state.Chart,
		Weather: x.state.Weather,
		Clock:   x.state.Clock,
	}
	obs := make(map[game.Side]observe.Result, len(game.Sides))
	for _, side := range game.Sides {
		obs[side] = observe.Observe(side, in, x.rng, x.rules.Observation)
	}
	x.state.Observations = obs
}

func (x *exec) cleanup() {
	chart := x.state.Chart
	for _, id := range chart.BurnFuel() {
		f, _ := chart.Formation(id)
		x.record(f.Side, "fuel", "%s ran out of fuel and is lost", id)
	}
	chart.DepartAll()
	chart.StowAircraft()
	chart.ResetTurn()
	chart.Prune()
	x.sync()
	x.checkAnnihilation()
	if !x.state.Outcome.Over && x.rules.TurnLimit > 0 && x.state.Clock.Turn >= x.rules.TurnLimit {
		x.finishOnPoints()
	}
}

// checkAnnihilation ends the game when a side has no task force left afloat.
func (x *exec) checkAnnihilation() {
	if x.state.Outcome.Over {
		return
	}
	allied := len(x.state.Chart.TaskForcesOf(game.Allied))
	japanese := len(x.state.Chart.TaskForcesOf(game.Japanese))
	switch {
	case allied == 0 && japanese == 0:
		x.finish("", "both fleets destroyed")
	case allied == 0:
		x.finish(game.Japanese, "allied fleet destroyed")
	case japanese == 0:
		x.finish(game.Allied, "japanese fleet destroyed")
	}
}

func (x *exec) finishOnPoints() {
	allied, japanese := x.state.Points[game.Allied], x.state.Points[game.Japanese]
	reason := fmt.Sprintf("turn limit, points %d to %d", allied, japanese)
	switch {
	case allied > japanese:
		x.finish(game.Allied, reason)
	case japanese > allied:
		x.finish(game.Japanese, reason)
	default:
		x.finish("", reason)
	}
}

func (x *exec) finish(winner game.Side, reason string) {
	x.state.Outcome = Outcome{Over: true, Winner: winner, Reason: reason}
	x.finished = true
	x.record(winner, "game_over", "%s", reason)
}

// Snapshot returns a copy of the full state.
func (e *Engine) Snapshot() *State {
	return e.state.Copy()
}

// Observation is side's result from the latest observation phase.
func (e *Engine) Observation(side game.Side) observe.Result {
	if r, ok := e.state.Observations[side]; ok {
		return r
	}
	return observe.Result{Side: side, Detections: []observe.Detection{}}
}

func (e *Engine) CombatLog() []combat.Result {
	return slices.Clone(e.state.Combats)
}

func (e *Engine) TurnLog() []LogEntry {
	return slices.Clone(e.state.Log)
}

// Winner is the winning side, empty while the game runs or after a draw.
func (e *Engine) Winner() game.Side {
	return e.state.Outcome.Winner
}

func (e *Engine) Outcome() Outcome {
	return e.state.Outcome
}

func (e *Engine) Phase() game.Phase {
	return e.state.Phase
}

func (e *Engine) Clock() game.Clock {
	return e.state.Clock
}

// Done reports whether side has ended the current phase.
func (e *Engine) Done(side game.Side) bool {
	return e.state.Done[side]
}

func (e *Engine) Rules() Rules {
	return e.rules
}

func (e *Engine) Collector() metrics.Collector {
	return e.metrics
}
