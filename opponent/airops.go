package opponent

import (
	"flattop/engine"
	"flattop/hex"
	"flattop/opchart"
	"flattop/weather"
)

// deckPlan tracks what is left on a deck while orders for the phase are drawn up.
type deckPlan struct {
	host    engine.Host
	blocked bool
	launch  int
	readies int
	ready   []opchart.Squadron
}

func (o *Opponent) airOperations(p *picture) []engine.Command {
	cmds := o.land(p)
	var decks []*deckPlan
	for _, h := range p.view.Hosts() {
		if h.Deck == nil {
			continue
		}
		decks = append(decks, &deckPlan{
			host:    h,
			blocked: p.blocked(h.Hex, weather.Launch),
			launch:  h.Deck.LaunchRemaining(),
			readies: h.Deck.ReadyRemaining(),
			ready:   append([]opchart.Squadron(nil), h.Deck.Ready...),
		})
	}
	for _, d := range decks {
		cmds = append(cmds, o.ready(p, d)...)
	}
	cmds = append(cmds, o.interceptors(p, decks)...)
	cmds = append(cmds, o.strikes(p, decks)...)
	cmds = append(cmds, o.searches(p, decks)...)
	return cmds
}

// land brings down returning formations over a friendly deck, the home deck first.
func (o *Opponent) land(p *picture) []engine.Command {
	var cmds []engine.Command
	for _, f := range p.view.Formations {
		if f.Status != opchart.Returning {
			continue
		}
		if h, ok := p.view.Host(f.Home); ok && h.Hex == f.Hex {
			cmds = append(cmds, engine.Land{Side: p.side, Formation: f.ID, Host: h.ID})
			continue
		}
		for _, h := range p.view.Hosts() {
			if h.Hex == f.Hex {
				cmds = append(cmds, engine.Land{Side: p.side, Formation: f.ID, Host: h.ID})
				break
			}
		}
	}
	return cmds
}

// ready arms whatever the deck crew can handle this turn.
func (o *Opponent) ready(p *picture, d *deckPlan) []engine.Command {
	var cmds []engine.Command
	for _, s := range d.host.Deck.Readying {
		if d.readies <= 0 {
			break
		}
		prof, err := p.view.Catalog.Profile(s.Type)
		if err != nil {
			continue
		}
		arm := o.armament(p, prof)
		if arm == opchart.Unarmed && !prof.Role.CanEscort() {
			continue
		}
		n := min(s.Strength, d.readies)
		cmds = append(cmds, engine.ReadyAircraft{Side: p.side, Host: d.host.ID, Aircraft: s.Type, Count: n, Armament: arm})
		d.readies -= n
		d.ready = append(d.ready, opchart.Squadron{Type: s.Type, Strength: n, Range: s.Range, Armament: arm, Quality: s.Quality})
	}
	return cmds
}

// armament picks the load with the best hit number against the likely target: ships once
// any have been seen or no enemy base exists, bases otherwise. Fighters stay unarmed.
func (o *Opponent) armament(p *picture, prof opchart.Profile) opchart.Armament {
	if prof.Role == opchart.Fighter || prof.Role == opchart.Scout {
		return opchart.Unarmed
	}
	ships := len(p.ships) > 0 || len(p.sighted) > 0 || len(p.view.EnemyBases()) == 0
	best, bestHits := opchart.Unarmed, 0
	for _, arm := range []opchart.Armament{opchart.Torpedo, opchart.ArmorPiercing, opchart.GP} {
		if !prof.CanCarry(arm) {
			continue
		}
		kind := prof.AttackKind(arm)
		hits := prof.Hits.VsBase(kind, opchart.High, arm)
		if ships {
			hits = prof.Hits.VsShip(kind, opchart.High, arm)
		}
		if hits > bestHits {
			best, bestHits = arm, hits
		}
	}
	return best
}

// interceptors put fighters over a deck when enemy aircraft come within the CAP radius and no
// patrol from that deck is already up.
func (o *Opponent) interceptors(p *picture, decks []*deckPlan) []engine.Command {
	var cmds []engine.Command
	for _, d := range decks {
		if d.blocked || d.launch == 0 || !o.underThreat(p, d.host.Hex) || patrolled(p, d.host.ID) {
			continue
		}
		reqs := d.draw(d.launch, func(s opchart.Squadron) bool {
			return !s.Armed() && o.escorts(p, s.Type)
		})
		if len(reqs) == 0 {
			continue
		}
		cmds = append(cmds, engine.FormAirFormation{Side: p.side, Host: d.host.ID, Mission: opchart.CAP, Aircraft: reqs, Launch: true})
	}
	return cmds
}

func (o *Opponent) underThreat(p *picture, at hex.Hex) bool {
	for _, c := range p.air {
		if hex.Distance(at, c.at) <= o.capRadius {
			return true
		}
	}
	return false
}

func patrolled(p *picture, host opchart.ID) bool {
	for _, f := range p.view.Formations {
		if f.Mission == opchart.CAP && f.Home == host && f.Status.Aloft() {
			return true
		}
	}
	return false
}

// strikes send every armed aircraft that can make the round trip after the best located task
// force, with up to one escort for every two bombers.
func (o *Opponent) strikes(p *picture, decks []*deckPlan) []engine.Command {
	if len(p.ships) == 0 {
		return nil
	}
	var cmds []engine.Command
	for _, d := range decks {
		if d.blocked || d.launch == 0 {
			continue
		}
		target, ok := o.strikeTarget(p, d)
		if !ok {
			continue
		}
		dist := hex.Distance(d.host.Hex, target.at)
		bombers := d.draw(d.launch, func(s opchart.Squadron) bool {
			return s.Armed() && o.reaches(p, s, dist)
		})
		if len(bombers) == 0 {
			continue
		}
		escorts := d.draw(ceilDiv(requested(bombers), 2), func(s opchart.Squadron) bool {
			return !s.Armed() && o.escorts(p, s.Type) && o.reaches(p, s, dist)
		})
		at := target.at
		cmds = append(cmds, engine.FormAirFormation{
			Side:     p.side,
			Host:     d.host.ID,
			Mission:  opchart.Strike,
			Aircraft: append(bombers, escorts...),
			Target:   &at,
			Launch:   true,
		})
		o.log.Debug().Msgf("%s strikes %s at %s from %s", p.side, target.id, target.at, d.host.ID)
	}
	return cmds
}

// strikeTarget is the best scoring located task force some armed squadron on the deck can reach.
func (o *Opponent) strikeTarget(p *picture, d *deckPlan) (contact, bool) {
	var best contact
	bestScore, found := 0.0, false
	for _, c := range p.ships {
		dist := hex.Distance(d.host.Hex, c.at)
		if dist > o.strikeRadius || !d.has(func(s opchart.Squadron) bool { return s.Armed() && o.reaches(p, s, dist) }) {
			continue
		}
		if s := o.targetScore(p, c, d.host.Hex); !found || s > bestScore+epsilon {
			best, bestScore, found = c, s, true
		}
	}
	return best, found
}

// searches go out while nothing is located, toward the last approximate sighting or the
// nearest enemy base.
func (o *Opponent) searches(p *picture, decks []*deckPlan) []engine.Command {
	if len(p.ships) > 0 {
		return nil
	}
	aloft := 0
	for _, f := range p.view.Formations {
		if f.Mission == opchart.Search && f.Status.Aloft() {
			aloft++
		}
	}
	var cmds []engine.Command
	for _, d := range decks {
		if aloft >= o.maxSearches {
			break
		}
		if d.blocked || d.launch == 0 {
			continue
		}
		scout, ok := o.searcher(p, d)
		if !ok {
			continue
		}
		reqs := d.draw(min(o.searchSize, d.launch), func(s opchart.Squadron) bool {
			return s.Type == scout && !s.Armed()
		})
		if len(reqs) == 0 {
			continue
		}
		target := o.searchTarget(p, d.host.Hex)
		cmds = append(cmds, engine.FormAirFormation{Side: p.side, Host: d.host.ID, Mission: opchart.Search, Aircraft: reqs, Target: &target, Launch: true})
		aloft++
	}
	return cmds
}

// searcher picks the unarmed type to search with: scouts first, then the longest range.
func (o *Opponent) searcher(p *picture, d *deckPlan) (opchart.AircraftType, bool) {
	var best opchart.Squadron
	bestScout, found := false, false
	for _, s := range d.ready {
		if s.Strength == 0 || s.Armed() {
			continue
		}
		prof, err := p.view.Catalog.Profile(s.Type)
		if err != nil {
			continue
		}
		scout := prof.Role == opchart.Scout
		if !found || (scout && !bestScout) || (scout == bestScout && s.Range > best.Range) {
			best, bestScout, found = s, scout, true
		}
	}
	return best.Type, found
}

func (o *Opponent) searchTarget(p *picture, from hex.Hex) hex.Hex {
	if at, ok := p.nearestSighting(from); ok {
		return at
	}
	if b, ok := p.nearestBase(from, false); ok {
		return b.Hex
	}
	return hex.Hex{Q: p.view.Board.Width() / 2, R: p.view.Board.Height() / 2}
}

// reaches reports whether a squadron can fly dist hexes out and back with fuel to spare.
func (o *Opponent) reaches(p *picture, s opchart.Squadron, dist int) bool {
	prof, err := p.view.Catalog.Profile(s.Type)
	if err != nil || prof.Move <= 0 {
		return false
	}
	fuel := s.Range
	if fuel <= 0 {
		fuel = prof.Range
	}
	return 2*ceilDiv(dist, prof.Move)+o.fuelMargin <= fuel
}

func (o *Opponent) escorts(p *picture, t opchart.AircraftType) bool {
	prof, err := p.view.Catalog.Profile(t)
	return err == nil && prof.Role.CanEscort()
}

// draw takes up to limit air factors matching want, bounded by the launch factor left.
func (d *deckPlan) draw(limit int, want func(opchart.Squadron) bool) []opchart.Request {
	var reqs []opchart.Request
	for i := range d.ready {
		s := &d.ready[i]
		if limit <= 0 || d.launch <= 0 {
			break
		}
		if s.Strength == 0 || !want(*s) {
			continue
		}
		n := min(s.Strength, limit, d.launch)
		s.Strength -= n
		limit -= n
		d.launch -= n
		reqs = addRequest(reqs, s.Type, n)
	}
	return reqs
}

func (d *deckPlan) has(want func(opchart.Squadron) bool) bool {
	for _, s := range d.ready {
		if s.Strength > 0 && want(s) {
			return true
		}
	}
	return false
}

func addRequest(reqs []opchart.Request, t opchart.AircraftType, n int) []opchart.Request {
	for i := range reqs {
		if reqs[i].Type == t {
			reqs[i].Count += n
			return reqs
		}
	}
	return append(reqs, opchart.Request{Type: t, Count: n})
}

func requested(reqs []opchart.Request) int {
	n := 0
	for _, r := range reqs {
		n += r.Count
	}
	return n
}
