package engine

import (
	"context"

	"flattop/game"
	"flattop/observe"
)

// MaxPhases bounds a Run so a pair of controllers that never finish cannot spin forever.
const MaxPhases = 10000

// Controller decides one side's orders for the current phase from what that side knows.
type Controller interface {
	Decide(side game.Side, view View, obs observe.Result) []Command
}

// Run plays the game to the end. Each interactive phase the Allied controller goes first, then
// the Japanese; a side without a controller passes. Rejected orders are logged and skipped and
// every side ends the phase after its orders.
func (e *Engine) Run(ctx context.Context, controllers map[game.Side]Controller) (Outcome, error) {
	log := e.log
	log.Info().Msgf("turn %d: %s to play", e.state.Clock.Turn, e.state.Phase)

	for phases := 0; !e.state.Outcome.Over; phases++ {
		if phases >= MaxPhases {
			log.Warn().Msgf("stopped after %d phases without a result", MaxPhases)
			break
		}
		if err := ctx.Err(); err != nil {
			return e.state.Outcome, err
		}
		turn, phase := e.state.Clock.Turn, e.state.Phase
		for _, side := range game.Sides {
			if e.state.Outcome.Over || e.state.Clock.Turn != turn || e.state.Phase != phase {
				break
			}
			if c := controllers[side]; c != nil {
				for _, cmd := range c.Decide(side, e.View(side), e.Observation(side)) {
					if err := e.Execute(cmd); err != nil {
						if game.CodeOf(err) == "" {
							return e.state.Outcome, err
						}
						log.Warn().Err(err).Msgf("turn %d %s: %s order %T rejected", turn, phase, side, cmd)
					}
					if e.state.Outcome.Over || e.state.Phase != phase || e.state.Done[side] {
						break
					}
				}
			}
			if e.state.Outcome.Over || e.state.Phase != phase || e.state.Done[side] {
				continue
			}
			if err := e.Execute(EndPhase{Side: side}); err != nil {
				return e.state.Outcome, err
			}
		}
		if e.state.Clock.Turn != turn && !e.state.Outcome.Over {
			log.Info().Msgf("turn %d: points allied %d japanese %d", e.state.Clock.Turn,
				e.state.Points[game.Allied], e.state.Points[game.Japanese])
		}
	}
	return e.state.Outcome, nil
}
