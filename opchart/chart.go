package opchart

import (
	"fmt"
	"slices"

	"flattop/game"
	"flattop/hex"
)

// Request asks for count air factors of one type when forming up.
type Request struct {
	Type  AircraftType `json:"type"`
	Count int          `json:"count"`
}

// Chart is the operations chart of both sides: every task force, base and air formation.
type Chart struct {
	TaskForces []*TaskForce    `json:"task_forces"`
	Bases      []*Base         `json:"bases"`
	Formations []*AirFormation `json:"formations"`
	Sequence   int             `json:"sequence"`

	catalog Catalog
}

func NewChart(catalog Catalog) *Chart {
	return &Chart{catalog: catalog}
}

func (c *Chart) Catalog() Catalog {
	return c.catalog
}

// UseCatalog attaches the aircraft table after decoding a chart.
func (c *Chart) UseCatalog(catalog Catalog) {
	c.catalog = catalog
}

func (c *Chart) exists(id ID) bool {
	_, ok := c.Unit(id)
	return ok
}

func (c *Chart) AddTaskForce(tf *TaskForce) error {
	if err := tf.checkComposition(); err != nil {
		return err
	}
	if c.exists(tf.ID) {
		return game.Errorf(game.CodeInvalidPlacement, "unit %s already on the chart", tf.ID)
	}
	for _, s := range tf.Ships {
		if c.exists(s.ID) {
			return game.Errorf(game.CodeInvalidPlacement, "unit %s already on the chart", s.ID)
		}
		s.Side = tf.Side
	}
	for _, other := range c.TaskForces {
		if other.Side == tf.Side && other.Number == tf.Number {
			return game.Errorf(game.CodeCapacityExceeded, "%s task force %d already exists", tf.Side, tf.Number)
		}
	}
	c.TaskForces = append(c.TaskForces, tf)
	return nil
}

func (c *Chart) AddBase(b *Base) error {
	if c.exists(b.ID) {
		return game.Errorf(game.CodeInvalidPlacement, "unit %s already on the chart", b.ID)
	}
	c.Bases = append(c.Bases, b)
	return nil
}

func (c *Chart) TaskForce(id ID) (*TaskForce, bool) {
	for _, tf := range c.TaskForces {
		if tf.ID == id {
			return tf, true
		}
	}
	return nil, false
}

// Ship finds a ship and the task force it sails with.
func (c *Chart) Ship(id ID) (*TaskForce, *Ship, bool) {
	for _, tf := range c.TaskForces {
		if s, ok := tf.Ship(id); ok {
			return tf, s, true
		}
	}
	return nil, nil, false
}

func (c *Chart) Base(id ID) (*Base, bool) {
	for _, b := range c.Bases {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

func (c *Chart) Formation(id ID) (*AirFormation, bool) {
	for _, f := range c.Formations {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// Unit resolves any id on the chart.
func (c *Chart) Unit(id ID) (Unit, bool) {
	if tf, ok := c.TaskForce(id); ok {
		return tf, true
	}
	if _, s, ok := c.Ship(id); ok {
		return s, true
	}
	if b, ok := c.Base(id); ok {
		return b, true
	}
	if f, ok := c.Formation(id); ok {
		return f, true
	}
	return nil, false
}

func (c *Chart) TaskForcesOf(side game.Side) []*TaskForce {
	var out []*TaskForce
	for _, tf := range c.TaskForces {
		if tf.Side == side {
			out = append(out, tf)
		}
	}
	return out
}

func (c *Chart) BasesOf(side game.Side) []*Base {
	var out []*Base
	for _, b := range c.Bases {
		if b.Side == side {
			out = append(out, b)
		}
	}
	return out
}

// FormationsOf lists a side's formations that are not lost.
func (c *Chart) FormationsOf(side game.Side) []*AirFormation {
	var out []*AirFormation
	for _, f := range c.Formations {
		if f.Side == side && f.Status != Lost {
			out = append(out, f)
		}
	}
	return out
}

// Hosts lists the ids of a side's carriers and operational bases.
func (c *Chart) Hosts(side game.Side) []ID {
	var ids []ID
	for _, tf := range c.TaskForcesOf(side) {
		if s, ok := tf.Carrier(); ok {
			ids = append(ids, s.ID)
		}
	}
	for _, b := range c.BasesOf(side) {
		if b.Operational() {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// HostAt resolves an air deck: an afloat carrier or an operational base.
func (c *Chart) HostAt(id ID) (*Deck, hex.Hex, game.Side, error) {
	if tf, s, ok := c.Ship(id); ok {
		if !s.IsCarrier() {
			return nil, hex.Hex{}, "", game.Errorf(game.CodeInvalidTarget, "%s has no air deck", id)
		}
		if !s.Afloat() {
			return nil, hex.Hex{}, "", game.Errorf(game.CodeInvalidTarget, "%s is sunk", id)
		}
		return s.Deck, tf.Hex, tf.Side, nil
	}
	if b, ok := c.Base(id); ok {
		if !b.Operational() {
			return nil, hex.Hex{}, "", game.Errorf(game.CodeCapacityExceeded, "base %s is out of action", id)
		}
		return b.Deck, b.Hex, b.Side, nil
	}
	return nil, hex.Hex{}, "", game.Errorf(game.CodeInvalidTarget, "no host %s", id)
}

// Load counts the air factors a host is responsible for: its deck plus formations homed on it.
func (c *Chart) Load(host ID) int {
	total := 0
	if _, s, ok := c.Ship(host); ok && s.Deck != nil {
		total += s.Deck.Aircraft()
	}
	if b, ok := c.Base(host); ok {
		total += b.Deck.Aircraft()
	}
	for _, f := range c.Formations {
		if f.Home == host && f.Status != Lost {
			total += f.Strength()
		}
	}
	return total
}

func (c *Chart) freeNumber(side game.Side) int {
	used := make(map[int]bool)
	for _, f := range c.FormationsOf(side) {
		used[f.Number] = true
	}
	for n := 1; n <= MaxFormations; n++ {
		if !used[n] {
			return n
		}
	}
	return 0
}

func (c *Chart) formation(id ID) (*AirFormation, error) {
	f, ok := c.Formation(id)
	if !ok {
		return nil, game.Errorf(game.CodeInvalidTarget, "no air formation %s", id)
	}
	return f, nil
}

// FormAirFormation draws aircraft from a host's ready pool into a new based formation
// carrying the lowest free counter number.
func (c *Chart) FormAirFormation(host ID, mission Mission, requests []Request) (*AirFormation, error) {
	if !mission.Valid() {
		return nil, game.Errorf(game.CodeIllegalPhaseAction, "unknown mission %q", mission)
	}
	total := 0
	for _, r := range requests {
		if r.Count < 0 {
			return nil, game.Errorf(game.CodeEmptyFormation, "negative count for %s", r.Type)
		}
		total += r.Count
	}
	if total == 0 {
		return nil, game.Errorf(game.CodeEmptyFormation, "no aircraft requested")
	}
	deck, at, side, err := c.HostAt(host)
	if err != nil {
		return nil, err
	}
	if total > deck.Config.LaunchFactor {
		return nil, game.Errorf(game.CodeCapacityExceeded, "host %s launches at most %d aircraft a turn, %d requested", host, deck.Config.LaunchFactor, total)
	}
	number := c.freeNumber(side)
	if number == 0 {
		return nil, game.Errorf(game.CodeCapacityExceeded, "%s has no free formation counters", side)
	}
	pool := copySquadrons(deck.Ready)
	var squadrons []Squadron
	for _, r := range requests {
		if r.Count == 0 {
			continue
		}
		rest, taken, ok := take(pool, r.Type, r.Count)
		if !ok {
			return nil, game.Errorf(game.CodeCapacityExceeded, "host %s has %d %s ready, %d requested", host, available(pool, r.Type), r.Type, r.Count)
		}
		pool = rest
		for _, s := range taken {
			squadrons = merge(squadrons, s)
		}
	}
	deck.Ready = pool
	c.Sequence++
	f := &AirFormation{
		ID:        ID(fmt.Sprintf("%s-af-%d", side, c.Sequence)),
		Number:    number,
		Side:      side,
		Home:      host,
		Mission:   mission,
		Status:    Based,
		Hex:       at,
		Altitude:  High,
		Squadrons: squadrons,
	}
	c.Formations = append(c.Formations, f)
	return f, nil
}

// AssignMission retasks a formation that has not started home.
func (c *Chart) AssignMission(id ID, mission Mission, target *hex.Hex, alt Altitude) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	if !mission.Valid() {
		return game.Errorf(game.CodeIllegalPhaseAction, "unknown mission %q", mission)
	}
	if f.Status == Lost || f.Status == Returning {
		return game.Errorf(game.CodeIllegalPhaseAction, "formation %s is %s", id, f.Status)
	}
	f.Mission = mission
	if target != nil {
		t := *target
		f.Target = &t
	} else {
		f.Target = nil
	}
	if alt != "" {
		f.Altitude = alt
	}
	return nil
}

// Launch puts a based formation in the air over its host, spending launch factor.
func (c *Chart) Launch(id ID, turn int) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	if !f.can(eventLaunch) {
		return f.transition(eventLaunch)
	}
	if f.Strength() == 0 {
		return game.Errorf(game.CodeEmptyFormation, "formation %s has no aircraft", id)
	}
	deck, at, _, err := c.HostAt(f.Home)
	if err != nil {
		return err
	}
	if f.Strength() > deck.LaunchRemaining() {
		return game.Errorf(game.CodeCapacityExceeded, "launch factor exhausted at %s: %d needed, %d left", f.Home, f.Strength(), deck.LaunchRemaining())
	}
	if err := f.transition(eventLaunch); err != nil {
		return err
	}
	deck.UsedLaunch += f.Strength()
	f.LaunchTurn = turn
	f.Hex = at
	return nil
}

// Depart moves a launched formation to airborne.
func (c *Chart) Depart(id ID) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	return f.transition(eventDepart)
}

// ReturnToBase turns an airborne formation toward its home host.
func (c *Chart) ReturnToBase(id ID) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	if err := f.transition(eventRecall); err != nil {
		return err
	}
	if _, at, _, err := c.HostAt(f.Home); err == nil {
		f.Target = &at
	} else {
		f.Target = nil
	}
	return nil
}

// Land recovers a returning formation onto a friendly host in its hex. Its aircraft join the
// host's just landed pool and the formation stays behind, based and empty.
func (c *Chart) Land(id, host ID) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	if !f.can(eventLand) {
		return f.transition(eventLand)
	}
	deck, at, side, err := c.HostAt(host)
	if err != nil {
		return err
	}
	if side != f.Side {
		return game.Errorf(game.CodeInvalidTarget, "%s cannot land on enemy host %s", id, host)
	}
	if at != f.Hex {
		return game.Errorf(game.CodeInvalidPlacement, "%s is at %s, host %s is at %s", id, f.Hex, host, at)
	}
	for _, s := range f.Squadrons {
		p, err := c.catalog.Profile(s.Type)
		if err != nil {
			return game.Wrap(game.CodeCapacityExceeded, err, "unknown aircraft")
		}
		if !deck.Config.Handling.Accepts(p.Basing) {
			return game.Errorf(game.CodeCapacityExceeded, "%s cannot operate from %s deck %s", s.Type, deck.Config.Handling, host)
		}
	}
	if host != f.Home && c.Load(host)+f.Strength() > deck.Config.Capacity {
		return game.Errorf(game.CodeCapacityExceeded, "host %s has no room for %d aircraft", host, f.Strength())
	}
	if err := f.transition(eventLand); err != nil {
		return err
	}
	for _, s := range f.Squadrons {
		deck.JustLanded = merge(deck.JustLanded, s)
	}
	f.Squadrons = nil
	f.Home = host
	f.Target = nil
	return nil
}

// Lose removes a formation from play for good.
func (c *Chart) Lose(id ID) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	if err := f.transition(eventLose); err != nil {
		return err
	}
	f.Squadrons = nil
	return nil
}

// ApplyLosses removes air factors from the back of the formation. A formation that loses its
// last aircraft is lost. It returns the number actually removed.
func (c *Chart) ApplyLosses(id ID, count int) (int, error) {
	return c.reduce(id, count, func(Squadron) bool { return true })
}

// ApplyTypeLosses is ApplyLosses restricted to squadrons of one aircraft type.
func (c *Chart) ApplyTypeLosses(id ID, t AircraftType, count int) (int, error) {
	return c.reduce(id, count, func(s Squadron) bool { return s.Type == t })
}

func (c *Chart) reduce(id ID, count int, match func(Squadron) bool) (int, error) {
	f, err := c.formation(id)
	if err != nil {
		return 0, err
	}
	if f.Status == Lost {
		return 0, game.Errorf(game.CodeIllegalPhaseAction, "formation %s is already lost", id)
	}
	removed := 0
	for i := len(f.Squadrons) - 1; i >= 0 && removed < count; i-- {
		if !match(f.Squadrons[i]) {
			continue
		}
		k := min(f.Squadrons[i].Strength, count-removed)
		f.Squadrons[i].Strength -= k
		removed += k
	}
	f.Squadrons = slices.DeleteFunc(f.Squadrons, func(s Squadron) bool { return s.Strength == 0 })
	if removed > 0 && f.Strength() == 0 {
		if err := f.transition(eventLose); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Disarm spends the armament of a formation's squadrons of one type.
func (c *Chart) Disarm(id ID, t AircraftType) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	for i := range f.Squadrons {
		if f.Squadrons[i].Type == t {
			f.Squadrons[i].Armament = Unarmed
		}
	}
	return nil
}

// ExpendRange burns extra fuel, flooring at zero.
func (c *Chart) ExpendRange(id ID, n int) error {
	f, err := c.formation(id)
	if err != nil {
		return err
	}
	for i := range f.Squadrons {
		f.Squadrons[i].Range = max(f.Squadrons[i].Range-n, 0)
	}
	return nil
}

// ReadyAircraft arms aircraft in a host's readying pool and moves them to ready.
func (c *Chart) ReadyAircraft(host ID, t AircraftType, count int, arm Armament) error {
	deck, _, _, err := c.HostAt(host)
	if err != nil {
		return err
	}
	p, err := c.catalog.Profile(t)
	if err != nil {
		return game.Wrap(game.CodeCapacityExceeded, err, "cannot ready aircraft")
	}
	return deck.prepare(p, count, arm)
}

func (c *Chart) decks() []*Deck {
	var decks []*Deck
	for _, tf := range c.TaskForces {
		for _, s := range tf.Ships {
			if s.Deck != nil && s.Afloat() {
				decks = append(decks, s.Deck)
			}
		}
	}
	for _, b := range c.Bases {
		decks = append(decks, b.Deck)
	}
	return decks
}

// StowAircraft moves every just landed aircraft to readying.
func (c *Chart) StowAircraft() {
	for _, d := range c.decks() {
		d.stow()
	}
}

// ResetTurn clears per-turn launch, ready and movement counters.
func (c *Chart) ResetTurn() {
	for _, d := range c.decks() {
		d.resetTurn()
	}
	for _, tf := range c.TaskForces {
		tf.MovementUsed = 0
	}
	for _, f := range c.Formations {
		f.Moved = 0
	}
}

// BurnFuel spends one turn of range for every formation aloft. Formations that were already
// dry are lost; their ids are returned.
func (c *Chart) BurnFuel() []ID {
	var lost []ID
	for _, f := range c.Formations {
		if !f.Status.Aloft() {
			continue
		}
		if f.Range() == 0 {
			if err := f.transition(eventLose); err == nil {
				f.Squadrons = nil
				lost = append(lost, f.ID)
			}
			continue
		}
		for i := range f.Squadrons {
			f.Squadrons[i].Range--
		}
	}
	return lost
}

// DepartAll turns every launched formation airborne.
func (c *Chart) DepartAll() {
	for _, f := range c.Formations {
		if f.Status == Launched {
			_ = f.transition(eventDepart)
		}
	}
}

// Prune drops spent formations: lost ones and based ones with no aircraft.
func (c *Chart) Prune() []ID {
	var gone []ID
	c.Formations = slices.DeleteFunc(c.Formations, func(f *AirFormation) bool {
		if f.Status == Lost || (f.Status == Based && f.Strength() == 0) {
			gone = append(gone, f.ID)
			return true
		}
		return false
	})
	return gone
}

type ShipDamage struct {
	TaskForce ID   `json:"task_force"`
	Ship      ID   `json:"ship"`
	Hits      int  `json:"hits"`
	Crippled  bool `json:"crippled,omitempty"`
	Sunk      bool `json:"sunk,omitempty"`
	// Destroyed lists deck aircraft wrecked by hits on a carrier.
	Destroyed []Squadron `json:"destroyed,omitempty"`
	// Lost lists formations that went down with a carrier.
	Lost               []ID `json:"lost,omitempty"`
	TaskForceDestroyed bool `json:"task_force_destroyed,omitempty"`
}

// DamageShip applies bomb and torpedo hits. Each hit on a carrier also wrecks one aircraft on
// its deck. A sunk carrier takes its deck aircraft and every
// formation on it that is not airborne; a task force with no ships left leaves the chart.
func (c *Chart) DamageShip(tfID, shipID ID, hits int) (ShipDamage, error) {
	tf, ok := c.TaskForce(tfID)
	if !ok {
		return ShipDamage{}, game.Errorf(game.CodeInvalidTarget, "no task force %s", tfID)
	}
	s, ok := tf.Ship(shipID)
	if !ok {
		return ShipDamage{}, game.Errorf(game.CodeInvalidTarget, "no ship %s in %s", shipID, tfID)
	}
	if !s.Afloat() {
		return ShipDamage{}, game.Errorf(game.CodeInvalidTarget, "ship %s is already sunk", shipID)
	}
	res := ShipDamage{TaskForce: tfID, Ship: shipID, Hits: hits}
	if s.Deck != nil {
		res.Destroyed = s.Deck.destroy(hits)
	}
	res.Sunk = s.applyDamage(hits)
	res.Crippled = s.Status == Crippled
	if res.Sunk && s.IsCarrier() {
		for _, f := range c.Formations {
			if f.Home == s.ID && (f.Status == Based || f.Status == Launched) {
				if err := f.transition(eventLose); err == nil {
					f.Squadrons = nil
					res.Lost = append(res.Lost, f.ID)
				}
			}
		}
	}
	if tf.Destroyed() {
		res.TaskForceDestroyed = true
		c.TaskForces = slices.DeleteFunc(c.TaskForces, func(t *TaskForce) bool { return t.ID == tfID })
	}
	return res, nil
}

type BaseDamage struct {
	Base        ID         `json:"base"`
	Hits        int        `json:"hits"`
	Destroyed   []Squadron `json:"destroyed,omitempty"`
	OutOfAction bool       `json:"out_of_action,omitempty"`
}

// DamageBase applies hits to a base and wrecks aircraft on its deck.
func (c *Chart) DamageBase(id ID, hits int) (BaseDamage, error) {
	b, ok := c.Base(id)
	if !ok {
		return BaseDamage{}, game.Errorf(game.CodeInvalidTarget, "no base %s", id)
	}
	res := BaseDamage{Base: id, Hits: hits}
	res.Destroyed = b.applyDamage(hits)
	res.OutOfAction = !b.Operational()
	return res, nil
}

// Validate checks a decoded chart for records that play could not have produced.
func (c *Chart) Validate() error {
	seen := make(map[ID]bool)
	claim := func(id ID) error {
		if id == "" {
			return fmt.Errorf("empty unit id")
		}
		if seen[id] {
			return fmt.Errorf("duplicate unit id %s", id)
		}
		seen[id] = true
		return nil
	}
	for _, tf := range c.TaskForces {
		if err := claim(tf.ID); err != nil {
			return err
		}
		if err := tf.checkComposition(); err != nil {
			return err
		}
		for _, s := range tf.Ships {
			if err := claim(s.ID); err != nil {
				return err
			}
			if !s.Class.Valid() || s.DamageFactor <= 0 {
				return fmt.Errorf("ship %s is malformed", s.ID)
			}
			if s.Class.CarriesPlanes() != (s.Deck != nil) {
				return fmt.Errorf("ship %s deck does not match class %s", s.ID, s.Class)
			}
			if s.Deck != nil {
				if err := s.Deck.validate(); err != nil {
					return fmt.Errorf("ship %s: %w", s.ID, err)
				}
			}
		}
		if tf.Destroyed() {
			return fmt.Errorf("task force %s has no ships afloat", tf.ID)
		}
	}
	for _, b := range c.Bases {
		if err := claim(b.ID); err != nil {
			return err
		}
		if !b.Side.Valid() || b.Deck == nil || b.DamageFactor <= 0 {
			return fmt.Errorf("base %s is malformed", b.ID)
		}
		if err := b.Deck.validate(); err != nil {
			return fmt.Errorf("base %s: %w", b.ID, err)
		}
	}
	numbers := make(map[game.Side]map[int]bool)
	for _, f := range c.Formations {
		if err := claim(f.ID); err != nil {
			return err
		}
		if !f.Side.Valid() || !f.Status.Valid() || !f.Mission.Valid() {
			return fmt.Errorf("formation %s is malformed", f.ID)
		}
		if f.Status == Lost {
			continue
		}
		if f.Number < 1 || f.Number > MaxFormations {
			return fmt.Errorf("formation %s has counter number %d", f.ID, f.Number)
		}
		if numbers[f.Side] == nil {
			numbers[f.Side] = make(map[int]bool)
		}
		if numbers[f.Side][f.Number] {
			return fmt.Errorf("%s formation counter %d used twice", f.Side, f.Number)
		}
		numbers[f.Side][f.Number] = true
		if _, ok := c.Unit(f.Home); !ok && f.Status == Based {
			return fmt.Errorf("formation %s has unknown home %s", f.ID, f.Home)
		}
		for _, s := range f.Squadrons {
			if _, err := c.catalog.Profile(s.Type); err != nil && c.catalog != nil {
				return fmt.Errorf("formation %s: %w", f.ID, err)
			}
			if s.Strength <= 0 {
				return fmt.Errorf("formation %s has an empty squadron", f.ID)
			}
		}
	}
	return nil
}

// Copy returns a deep copy sharing only the immutable catalog.
func (c *Chart) Copy() *Chart {
	n := &Chart{Sequence: c.Sequence, catalog: c.catalog}
	n.TaskForces = make([]*TaskForce, len(c.TaskForces))
	for i, tf := range c.TaskForces {
		n.TaskForces[i] = tf.Copy()
	}
	n.Bases = make([]*Base, len(c.Bases))
	for i, b := range c.Bases {
		n.Bases[i] = b.Copy()
	}
	n.Formations = make([]*AirFormation, len(c.Formations))
	for i, f := range c.Formations {
		n.Formations[i] = f.Copy()
	}
	return n
}
