package opponent

import (
	"flattop/engine"
	"flattop/hex"
	"flattop/opchart"
	"flattop/weather"
)

// combat attacks with every armed airborne formation that shares a hex with a located task
// force or an enemy base. Formations in the same hex attack together.
func (o *Opponent) combat(p *picture) []engine.Command {
	var order []hex.Hex
	groups := make(map[hex.Hex][]*opchart.AirFormation)
	for _, f := range p.view.Formations {
		if f.Status != opchart.Airborne || !armed(f) {
			continue
		}
		if _, ok := groups[f.Hex]; !ok {
			order = append(order, f.Hex)
		}
		groups[f.Hex] = append(groups[f.Hex], f)
	}
	var cmds []engine.Command
	for _, at := range order {
		if p.blocked(at, weather.Bombing) {
			continue
		}
		target, ok := p.targetAt(at)
		if !ok {
			continue
		}
		attack := engine.Attack{Side: p.side, Target: target}
		for _, f := range groups[at] {
			attack.Formations = append(attack.Formations, f.ID)
			if f.Range() <= o.fuelMargin+1 {
				attack.Conserve = true
			}
		}
		cmds = append(cmds, attack)
	}
	return cmds
}

// targetAt prefers a located carrier group, then any located task force, then an enemy base.
func (p *picture) targetAt(at hex.Hex) (opchart.ID, bool) {
	var best *contact
	for i := range p.ships {
		c := &p.ships[i]
		if c.at != at {
			continue
		}
		if best == nil || (c.carrier && !best.carrier) {
			best = c
		}
	}
	if best != nil {
		return best.id, true
	}
	for _, b := range p.view.EnemyBases() {
		if b.Hex == at {
			return b.ID, true
		}
	}
	return "", false
}
