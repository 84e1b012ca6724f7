package opchart

type Armament string

const (
	Unarmed       Armament = ""
	GP            Armament = "gp"
	ArmorPiercing Armament = "ap"
	Torpedo       Armament = "torpedo"
)

type Altitude string

const (
	High Altitude = "high"
	Low  Altitude = "low"
)

// AttackKind selects which hit table a bombing run uses.
type AttackKind int

const (
	LevelAttack AttackKind = iota
	DiveAttack
	TorpedoAttack
)

func (k AttackKind) String() string {
	switch k {
	case DiveAttack:
		return "dive"
	case TorpedoAttack:
		return "torpedo"
	default:
		return "level"
	}
}

// AttackKind returns how an aircraft of this profile delivers the given armament.
func (p Profile) AttackKind(arm Armament) AttackKind {
	switch {
	case arm == Torpedo:
		return TorpedoAttack
	case p.Role == DiveBomber:
		return DiveAttack
	default:
		return LevelAttack
	}
}

// CanCarry reports whether the profile has a hit table for the armament.
func (p Profile) CanCarry(arm Armament) bool {
	h := p.Hits
	switch arm {
	case Unarmed:
		return true
	case Torpedo:
		return h.TorpedoShip > 0
	case GP:
		return h.LevelHighShipGP+h.LevelLowShipGP+h.DiveShipGP+h.LevelHighBaseGP+h.LevelLowBaseGP+h.DiveBaseGP > 0
	case ArmorPiercing:
		return h.LevelHighShipAP+h.LevelLowShipAP+h.DiveShipAP+h.LevelHighBaseAP+h.LevelLowBaseAP+h.DiveBaseAP > 0
	}
	return false
}

// VsShip returns the Basic Hit Table number against a ship, 0 when the attack is impossible.
func (h HitTables) VsShip(kind AttackKind, alt Altitude, arm Armament) int {
	switch kind {
	case TorpedoAttack:
		return h.TorpedoShip
	case DiveAttack:
		return pick(arm, h.DiveShipGP, h.DiveShipAP)
	}
	if alt == Low {
		return pick(arm, h.LevelLowShipGP, h.LevelLowShipAP)
	}
	return pick(arm, h.LevelHighShipGP, h.LevelHighShipAP)
}

// VsBase returns the Basic Hit Table number against a base. Torpedoes cannot hit bases.
func (h HitTables) VsBase(kind AttackKind, alt Altitude, arm Armament) int {
	switch kind {
	case TorpedoAttack:
		return 0
	case DiveAttack:
		return pick(arm, h.DiveBaseGP, h.DiveBaseAP)
	}
	if alt == Low {
		return pick(arm, h.LevelLowBaseGP, h.LevelLowBaseAP)
	}
	return pick(arm, h.LevelHighBaseGP, h.LevelHighBaseAP)
}

func pick(arm Armament, gp, ap int) int {
	switch arm {
	case GP:
		return gp
	case ArmorPiercing:
		return ap
	}
	return 0
}

// Squadron is a group of air factors of one type sharing armament and fuel state.
type Squadron struct {
	Type     AircraftType `json:"type"`
	Strength int          `json:"strength"`
	Range    int          `json:"range"`
	Armament Armament     `json:"armament,omitempty"`
	Quality  int          `json:"quality,omitempty"`
}

func (s Squadron) Armed() bool {
	return s.Armament != Unarmed
}

func (s Squadron) sameKind(o Squadron) bool {
	return s.Type == o.Type && s.Armament == o.Armament && s.Quality == o.Quality && s.Range == o.Range
}

// Strength sums the air factors of a list of squadrons.
func Strength(squadrons []Squadron) int {
	total := 0
	for _, s := range squadrons {
		total += s.Strength
	}
	return total
}

// merge adds s to the pool, combining it with a matching squadron.
func merge(pool []Squadron, s Squadron) []Squadron {
	if s.Strength <= 0 {
		return pool
	}
	for i := range pool {
		if pool[i].sameKind(s) {
			pool[i].Strength += s.Strength
			return pool
		}
	}
	return append(pool, s)
}

// take removes count air factors of type t from the pool, first squadrons first.
func take(pool []Squadron, t AircraftType, count int) ([]Squadron, []Squadron, bool) {
	if available(pool, t) < count {
		return pool, nil, false
	}
	var taken []Squadron
	rest := make([]Squadron, 0, len(pool))
	for _, s := range pool {
		if s.Type != t || count == 0 {
			rest = append(rest, s)
			continue
		}
		n := min(s.Strength, count)
		count -= n
		part := s
		part.Strength = n
		taken = append(taken, part)
		if s.Strength > n {
			s.Strength -= n
			rest = append(rest, s)
		}
	}
	return rest, taken, true
}

func available(pool []Squadron, t AircraftType) int {
	n := 0
	for _, s := range pool {
		if s.Type == t {
			n += s.Strength
		}
	}
	return n
}

func copySquadrons(s []Squadron) []Squadron {
	if s == nil {
		return nil
	}
	c := make([]Squadron, len(s))
	copy(c, s)
	return c
}
