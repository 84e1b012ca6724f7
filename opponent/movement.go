package opponent

import (
	"flattop/engine"
	"flattop/hex"
	"flattop/opchart"
)

// epsilon keeps float noise from beating an earlier, shorter route.
const epsilon = 1e-9

func (o *Opponent) movement(p *picture) []engine.Command {
	var cmds []engine.Command
	for _, tf := range p.view.TaskForces {
		if cmd, ok := o.moveTaskForce(p, tf); ok {
			cmds = append(cmds, cmd)
		}
	}
	for _, f := range p.view.Formations {
		cmds = append(cmds, o.moveFormation(p, f)...)
	}
	return cmds
}

// moveTaskForce scores every reachable hex and sails to the best one. Routes come in
// breadth-first order, so on a tie the shorter route wins and standing still wins over all.
func (o *Opponent) moveTaskForce(p *picture, tf *opchart.TaskForce) (engine.Command, bool) {
	allowance := tf.Remaining()
	if allowance == 0 || tf.Destroyed() {
		return nil, false
	}
	routes := p.view.Board.Reachable(tf.Hex, hex.Surface, allowance)
	best, bestScore := routes[0], o.scoreTaskForce(p, tf, tf.Hex)
	for _, r := range routes[1:] {
		if s := o.scoreTaskForce(p, tf, r.Dest); s > bestScore+epsilon {
			best, bestScore = r, s
		}
	}
	if len(best.Steps) == 0 {
		return nil, false
	}
	return engine.MoveTaskForce{Side: p.side, TaskForce: tf.ID, Path: best.Steps}, true
}

func (o *Opponent) moveFormation(p *picture, f *opchart.AirFormation) []engine.Command {
	allowance := engine.FlightAllowance(p.view.Catalog, f)
	if allowance == 0 {
		return nil
	}
	home, hasHome := p.host(f)
	var cmds []engine.Command
	var goal hex.Hex
	switch f.Status {
	case opchart.Returning:
		if !hasHome {
			return nil
		}
		goal = home.Hex
	case opchart.Airborne:
		if o.mustReturn(p, f, home, hasHome) {
			if !hasHome {
				return nil
			}
			cmds = append(cmds, engine.ReturnToBase{Side: p.side, Formation: f.ID})
			goal = home.Hex
			break
		}
		goal = o.goal(p, f, home, hasHome)
	default:
		return nil
	}
	steps := p.view.Board.StepToward(f.Hex, goal, hex.Air, allowance)
	if len(steps) > 0 {
		cmds = append(cmds, engine.MoveFormation{Side: p.side, Formation: f.ID, Path: steps})
	}
	return cmds
}

// mustReturn sends a formation home once its job is done or its fuel only covers the way back.
func (o *Opponent) mustReturn(p *picture, f *opchart.AirFormation, home engine.Host, hasHome bool) bool {
	switch f.Mission {
	case opchart.Search:
		if f.Target != nil && f.Hex == *f.Target {
			return true
		}
	case opchart.Strike:
		if !armed(f) {
			return true
		}
	}
	if !hasHome {
		return false
	}
	move := cruise(p.view.Catalog, f)
	if move == 0 {
		return false
	}
	return f.Range() <= ceilDiv(hex.Distance(f.Hex, home.Hex), move)+o.fuelMargin
}

// goal is where an airborne formation on its mission flies next.
func (o *Opponent) goal(p *picture, f *opchart.AirFormation, home engine.Host, hasHome bool) hex.Hex {
	fallback := f.Hex
	if hasHome {
		fallback = home.Hex
	}
	switch f.Mission {
	case opchart.Strike:
		from := f.Hex
		if f.Target != nil {
			from = *f.Target
		}
		if c, ok := p.nearestShip(from); ok {
			return c.at
		}
		if f.Target != nil {
			return *f.Target
		}
	case opchart.Search, opchart.Transfer:
		if f.Target != nil {
			return *f.Target
		}
	}
	return fallback
}

// cruise is the speed of the slowest squadron.
func cruise(catalog opchart.Catalog, f *opchart.AirFormation) int {
	move := -1
	for _, s := range f.Squadrons {
		prof, err := catalog.Profile(s.Type)
		if err != nil {
			continue
		}
		if move < 0 || prof.Move < move {
			move = prof.Move
		}
	}
	return max(move, 0)
}

func armed(f *opchart.AirFormation) bool {
	for _, s := range f.Squadrons {
		if s.Armed() && s.Strength > 0 {
			return true
		}
	}
	return false
}
