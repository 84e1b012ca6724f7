package opchart

import (
	"fmt"
	"sort"

	"flattop/game"
)

type AircraftType string

const (
	A20         AircraftType = "A-20"
	Avenger     AircraftType = "Avenger"
	B17         AircraftType = "B-17"
	B25         AircraftType = "B-25"
	B26         AircraftType = "B-26"
	Beaufighter AircraftType = "Beaufighter"
	Beaufort    AircraftType = "Beaufort"
	Catalina    AircraftType = "Catalina"
	Dauntless   AircraftType = "Dauntless"
	Devastator  AircraftType = "Devastator"
	Hudson      AircraftType = "Hudson"
	P38         AircraftType = "P-38"
	P39         AircraftType = "P-39"
	P40         AircraftType = "P-40"
	Wildcat     AircraftType = "Wildcat"

	Betty AircraftType = "Betty"
	Dave  AircraftType = "Dave"
	Emily AircraftType = "Emily"
	Jake  AircraftType = "Jake"
	Judy  AircraftType = "Judy"
	Kate  AircraftType = "Kate"
	Mavis AircraftType = "Mavis"
	Nell  AircraftType = "Nell"
	Pete  AircraftType = "Pete"
	Rufe  AircraftType = "Rufe"
	Val   AircraftType = "Val"
	Zero  AircraftType = "Zero"
)

// Role is what an aircraft type may do on a mission.
type Role int

const (
	// Fighter can intercept, escort, or bomb when armed.
	Fighter Role = iota
	// Scout can intercept and escort but never bomb.
	Scout
	DiveBomber
	TorpedoBomber
	LevelBomber
)

func (r Role) String() string {
	switch r {
	case Fighter:
		return "fighter"
	case Scout:
		return "scout"
	case DiveBomber:
		return "dive_bomber"
	case TorpedoBomber:
		return "torpedo_bomber"
	case LevelBomber:
		return "level_bomber"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// CanEscort reports whether the role flies as escort or interceptor when unarmed.
func (r Role) CanEscort() bool {
	return r == Fighter || r == Scout
}

// Basing decides which decks can operate an aircraft type.
type Basing int

const (
	// CarrierPlane flies from carriers and airfields.
	CarrierPlane Basing = iota
	// LandPlane flies from airfields only.
	LandPlane
	// Floatplane flies from seaplane tenders and seaplane bases only.
	Floatplane
)

// HitTables holds the Basic Hit Table numbers of an aircraft type. Zero means the
// aircraft cannot make that kind of attack.
type HitTables struct {
	AirToAir int `json:"air_to_air"`

	LevelHighBaseGP int `json:"level_high_base_gp"`
	LevelHighBaseAP int `json:"level_high_base_ap"`
	LevelLowBaseGP  int `json:"level_low_base_gp"`
	LevelLowBaseAP  int `json:"level_low_base_ap"`
	DiveBaseGP      int `json:"dive_base_gp"`
	DiveBaseAP      int `json:"dive_base_ap"`

	LevelHighShipGP int `json:"level_high_ship_gp"`
	LevelHighShipAP int `json:"level_high_ship_ap"`
	LevelLowShipGP  int `json:"level_low_ship_gp"`
	LevelLowShipAP  int `json:"level_low_ship_ap"`
	DiveShipGP      int `json:"dive_ship_gp"`
	DiveShipAP      int `json:"dive_ship_ap"`
	TorpedoShip     int `json:"torpedo_ship"`
}

func tables(v [14]int) HitTables {
	return HitTables{
		AirToAir:        v[0],
		LevelHighBaseGP: v[1], LevelHighBaseAP: v[2],
		LevelLowBaseGP: v[3], LevelLowBaseAP: v[4],
		DiveBaseGP: v[5], DiveBaseAP: v[6],
		LevelHighShipGP: v[7], LevelHighShipAP: v[8],
		LevelLowShipGP: v[9], LevelLowShipAP: v[10],
		DiveShipGP: v[11], DiveShipAP: v[12],
		TorpedoShip: v[13],
	}
}

// Profile is the immutable rules data of one aircraft type.
type Profile struct {
	Type   AircraftType
	Side   game.Side
	Role   Role
	Basing Basing
	Hits   HitTables
	// Move is hexes flown per turn.
	Move int
	// Range is turns aloft before the aircraft runs out of fuel.
	Range int
}

// Catalog is the aircraft table. Treat it as read-only once built.
type Catalog map[AircraftType]Profile

func (c Catalog) Profile(t AircraftType) (Profile, error) {
	p, ok := c[t]
	if !ok {
		return Profile{}, fmt.Errorf("unknown aircraft type %q", t)
	}
	return p, nil
}

// Types lists the catalog in name order.
func (c Catalog) Types() []AircraftType {
	types := make([]AircraftType, 0, len(c))
	for t := range c {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DefaultCatalog returns the aircraft of the base game.
func DefaultCatalog() Catalog {
	entries := []Profile{
		{Type: A20, Side: game.Allied, Role: LevelBomber, Basing: LandPlane, Hits: tables([14]int{3, 5, 2, 8, 3, 0, 0, 0, 1, 2, 5, 0, 0, 0}), Move: 9, Range: 6},
		{Type: Avenger, Side: game.Allied, Role: TorpedoBomber, Basing: CarrierPlane, Hits: tables([14]int{3, 4, 2, 6, 2, 0, 0, 0, 1, 2, 5, 0, 0, 6}), Move: 7, Range: 8},
		{Type: B17, Side: game.Allied, Role: LevelBomber, Basing: LandPlane, Hits: tables([14]int{8, 13, 5, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0}), Move: 8, Range: 12},
		{Type: B25, Side: game.Allied, Role: LevelBomber, Basing: LandPlane, Hits: tables([14]int{4, 8, 3, 11, 5, 0, 0, 0, 1, 3, 7, 0, 0, 0}), Move: 9, Range: 7},
		{Type: B26, Side: game.Allied, Role: LevelBomber, Basing: LandPlane, Hits: tables([14]int{4, 6, 2, 10, 4, 0, 0, 0, 1, 2, 5, 0, 0, 5}), Move: 10, Range: 6},
		{Type: Beaufighter, Side: game.Allied, Role: Fighter, Basing: LandPlane, Hits: tables([14]int{6, 0, 0, 5, 0, 0, 0, 0, 0, 1, 3, 0, 0, 0}), Move: 9, Range: 6},
		{Type: Beaufort, Side: game.Allied, Role: TorpedoBomber, Basing: LandPlane, Hits: tables([14]int{3, 4, 2, 6, 2, 0, 0, 0, 1, 2, 6, 0, 0, 7}), Move: 7, Range: 8},
		{Type: Catalina, Side: game.Allied, Role: LevelBomber, Basing: Floatplane, Hits: tables([14]int{4, 6, 2, 9, 3, 0, 0, 0, 1, 2, 7, 0, 0, 10}), Move: 6, Range: 20},
		{Type: Dauntless, Side: game.Allied, Role: DiveBomber, Basing: CarrierPlane, Hits: tables([14]int{3, 3, 1, 5, 1, 6, 2, 0, 0, 2, 5, 2, 7, 0}), Move: 9, Range: 6},
		{Type: Devastator, Side: game.Allied, Role: TorpedoBomber, Basing: CarrierPlane, Hits: tables([14]int{2, 3, 1, 5, 2, 0, 0, 0, 0, 1, 5, 0, 0, 6}), Move: 6, Range: 5},
		{Type: Hudson, Side: game.Allied, Role: LevelBomber, Basing: LandPlane, Hits: tables([14]int{3, 3, 1, 6, 2, 0, 0, 0, 1, 1, 4, 0, 0, 0}), Move: 7, Range: 10},
		{Type: P38, Side: game.Allied, Role: Fighter, Basing: LandPlane, Hits: tables([14]int{7, 0, 0, 5, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}), Move: 12, Range: 5},
		{Type: P39, Side: game.Allied, Role: Fighter, Basing: LandPlane, Hits: tables([14]int{6, 0, 0, 5, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}), Move: 11, Range: 5},
		{Type: P40, Side: game.Allied, Role: Fighter, Basing: LandPlane, Hits: tables([14]int{7, 0, 0, 4, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}), Move: 11, Range: 5},
		{Type: Wildcat, Side: game.Allied, Role: Fighter, Basing: CarrierPlane, Hits: tables([14]int{9, 0, 0, 4, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}), Move: 8, Range: 6},

		{Type: Betty, Side: game.Japanese, Role: LevelBomber, Basing: LandPlane, Hits: tables([14]int{3, 4, 2, 6, 2, 0, 0, 0, 1, 2, 5, 0, 0, 9}), Move: 9, Range: 10},
		{Type: Dave, Side: game.Japanese, Role: Scout, Basing: Floatplane, Hits: tables([14]int{1, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}), Move: 4, Range: 6},
		{Type: Emily, Side: game.Japanese, Role: LevelBomber, Basing: Floatplane, Hits: tables([14]int{6, 8, 3, 9, 4, 0, 0, 0, 1, 3, 7, 0, 0, 15}), Move: 9, Range: 24},
		{Type: Jake, Side: game.Japanese, Role: Scout, Basing: Floatplane, Hits: tables([14]int{1, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}), Move: 5, Range: 9},
		{Type: Judy, Side: game.Japanese, Role: DiveBomber, Basing: CarrierPlane, Hits: tables([14]int{3, 2, 1, 3, 1, 4, 2, 0, 0, 1, 5, 2, 7, 0}), Move: 11, Range: 6},
		{Type: Kate, Side: game.Japanese, Role: TorpedoBomber, Basing: CarrierPlane, Hits: tables([14]int{2, 4, 2, 6, 2, 0, 0, 0, 1, 2, 6, 0, 0, 10}), Move: 7, Range: 7},
		{Type: Mavis, Side: game.Japanese, Role: LevelBomber, Basing: Floatplane, Hits: tables([14]int{5, 6, 2, 7, 3, 0, 0, 0, 1, 2, 6, 0, 0, 15}), Move: 8, Range: 23},
		{Type: Nell, Side: game.Japanese, Role: LevelBomber, Basing: LandPlane, Hits: tables([14]int{3, 4, 2, 6, 2, 0, 0, 0, 1, 2, 4, 0, 0, 9}), Move: 8, Range: 8},
		{Type: Pete, Side: game.Japanese, Role: Scout, Basing: Floatplane, Hits: tables([14]int{1, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}), Move: 4, Range: 6},
		{Type: Rufe, Side: game.Japanese, Role: Fighter, Basing: Floatplane, Hits: tables([14]int{6, 0, 0, 3, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}), Move: 9, Range: 6},
		{Type: Val, Side: game.Japanese, Role: DiveBomber, Basing: CarrierPlane, Hits: tables([14]int{2, 2, 1, 3, 1, 4, 2, 0, 0, 1, 5, 2, 7, 0}), Move: 9, Range: 7},
		{Type: Zero, Side: game.Japanese, Role: Fighter, Basing: CarrierPlane, Hits: tables([14]int{9, 0, 0, 3, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}), Move: 10, Range: 8},
	}
	c := make(Catalog, len(entries))
	for _, p := range entries {
		c[p.Type] = p
	}
	return c
}
