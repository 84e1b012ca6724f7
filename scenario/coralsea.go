// Package scenario holds the built-in orders of battle.
package scenario

import (
	"fmt"

	"flattop/engine"
	"flattop/game"
	"flattop/hex"
	"flattop/opchart"
	"flattop/weather"
)

const (
	CoralSeaWidth  = 30
	CoralSeaHeight = 20
)

// Weather regions of the Coral Sea map.
const (
	weatherCols = 3
	weatherRows = 2
)

type air struct {
	t opchart.AircraftType
	n int
}

type ship struct {
	id       opchart.ID
	name     string
	class    opchart.ShipClass
	attack   int
	aa       int
	move     int
	df       int
	ready    []air
	readying []air
}

type taskForce struct {
	id     opchart.ID
	number int
	name   string
	side   game.Side
	at     hex.Hex
	ships  []ship
}

type base struct {
	id       opchart.ID
	name     string
	side     game.Side
	at       hex.Hex
	terrain  hex.Terrain
	aa       int
	df       int
	handling opchart.Handling
	ready    []air
	readying []air
}

var (
	fleetDeck = opchart.DeckConfig{Capacity: 30, LaunchFactor: 12, ReadyFactor: 8}
	lightDeck = opchart.DeckConfig{Capacity: 12, LaunchFactor: 6, ReadyFactor: 4}
)

// land lists the land masses as rows of [from, to] column spans.
var land = map[int][][2]int{
	// New Britain
	1: {{20, 26}},
	2: {{20, 23}, {25, 26}},
	// New Guinea
	3: {{0, 10}},
	4: {{0, 8}, {10, 11}},
	5: {{0, 9}},
	6: {{0, 7}},
	// Solomons
	8:  {{25, 26}},
	9:  {{28, 29}},
	10: {{25, 26}},
	11: {{27, 29}},
	// Australia
	17: {{0, 9}, {11, 12}},
	18: {{0, 13}},
	19: {{0, 14}},
}

var bases = []base{
	{id: "port_moresby", name: "Port Moresby", side: game.Allied, at: hex.Hex{Q: 6, R: 7}, terrain: hex.BaseHex, aa: 3, df: 6, handling: opchart.Airfield,
		ready: []air{{opchart.P39, 6}}, readying: []air{{opchart.B26, 4}}},
	{id: "townsville", name: "Townsville", side: game.Allied, at: hex.Hex{Q: 10, R: 17}, terrain: hex.BaseHex, aa: 2, df: 8, handling: opchart.Airfield,
		readying: []air{{opchart.B17, 6}, {opchart.B25, 4}}},
	{id: "rabaul", name: "Rabaul", side: game.Japanese, at: hex.Hex{Q: 24, R: 2}, terrain: hex.BaseHex, aa: 3, df: 8, handling: opchart.Airfield,
		ready: []air{{opchart.Zero, 6}}, readying: []air{{opchart.Betty, 6}, {opchart.Nell, 4}}},
	{id: "lae", name: "Lae", side: game.Japanese, at: hex.Hex{Q: 9, R: 4}, terrain: hex.Land, aa: 1, df: 4, handling: opchart.Airfield,
		ready: []air{{opchart.Zero, 4}}, readying: []air{{opchart.Nell, 4}}},
	{id: "tulagi", name: "Tulagi", side: game.Japanese, at: hex.Hex{Q: 27, R: 10}, terrain: hex.BaseHex, aa: 1, df: 3, handling: opchart.SeaplaneDeck,
		ready: []air{{opchart.Jake, 2}, {opchart.Pete, 2}}, readying: []air{{opchart.Mavis, 3}}},
}

var taskForces = []taskForce{
	{id: "tf17", number: 1, name: "TF 17", side: game.Allied, at: hex.Hex{Q: 16, R: 14}, ships: []ship{
		{id: "yorktown", name: "Yorktown", class: opchart.CV, attack: 1, aa: 4, move: 2, df: 6,
			ready: []air{{opchart.Wildcat, 8}}, readying: []air{{opchart.Dauntless, 12}, {opchart.Devastator, 4}}},
		{id: "astoria", name: "Astoria", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "chester", name: "Chester", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "portland", name: "Portland", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "hammann", name: "Hammann", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "morris", name: "Morris", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "anderson", name: "Anderson", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "russell", name: "Russell", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
	}},
	{id: "tf11", number: 2, name: "TF 11", side: game.Allied, at: hex.Hex{Q: 14, R: 16}, ships: []ship{
		{id: "lexington", name: "Lexington", class: opchart.CV, attack: 1, aa: 4, move: 2, df: 6,
			ready: []air{{opchart.Wildcat, 8}}, readying: []air{{opchart.Dauntless, 12}, {opchart.Devastator, 6}}},
		{id: "minneapolis", name: "Minneapolis", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "new_orleans", name: "New Orleans", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "phelps", name: "Phelps", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "dewey", name: "Dewey", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
	}},
	{id: "tf44", number: 3, name: "TF 44", side: game.Allied, at: hex.Hex{Q: 10, R: 13}, ships: []ship{
		{id: "australia", name: "Australia", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "chicago", name: "Chicago", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "hobart", name: "Hobart", class: opchart.CL, attack: 3, aa: 2, move: 2, df: 3},
		{id: "perkins", name: "Perkins", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "walke", name: "Walke", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
	}},
	{id: "cardiv5-shokaku", number: 1, name: "Carrier Division 5", side: game.Japanese, at: hex.Hex{Q: 27, R: 5}, ships: []ship{
		{id: "shokaku", name: "Shokaku", class: opchart.CV, attack: 1, aa: 3, move: 2, df: 6,
			ready: []air{{opchart.Zero, 8}}, readying: []air{{opchart.Val, 10}, {opchart.Kate, 8}}},
		{id: "myoko", name: "Myoko", class: opchart.CA, attack: 5, aa: 2, move: 2, df: 4},
		{id: "ushio", name: "Ushio", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "akebono", name: "Akebono", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
	}},
	{id: "cardiv5-zuikaku", number: 2, name: "Carrier Division 5 (Zuikaku)", side: game.Japanese, at: hex.Hex{Q: 28, R: 6}, ships: []ship{
		{id: "zuikaku", name: "Zuikaku", class: opchart.CV, attack: 1, aa: 3, move: 2, df: 6,
			ready: []air{{opchart.Zero, 8}}, readying: []air{{opchart.Val, 10}, {opchart.Kate, 8}}},
		{id: "haguro", name: "Haguro", class: opchart.CA, attack: 5, aa: 2, move: 2, df: 4},
		{id: "ariake", name: "Ariake", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "yugure", name: "Yugure", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
	}},
	{id: "covering", number: 3, name: "Covering Force", side: game.Japanese, at: hex.Hex{Q: 20, R: 6}, ships: []ship{
		{id: "shoho", name: "Shoho", class: opchart.CVL, attack: 0, aa: 2, move: 2, df: 3,
			ready: []air{{opchart.Zero, 4}}, readying: []air{{opchart.Kate, 4}}},
		{id: "aoba", name: "Aoba", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "kinugasa", name: "Kinugasa", class: opchart.CA, attack: 4, aa: 2, move: 2, df: 4},
		{id: "sazanami", name: "Sazanami", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
	}},
	{id: "invasion", number: 10, name: "Port Moresby Invasion Force", side: game.Japanese, at: hex.Hex{Q: 22, R: 4}, ships: []ship{
		{id: "yubari", name: "Yubari", class: opchart.CL, attack: 3, aa: 1, move: 2, df: 3},
		{id: "oite", name: "Oite", class: opchart.DD, attack: 1, aa: 1, move: 2, df: 1},
		{id: "azumasan_maru", name: "Azumasan Maru", class: opchart.AP, move: 2, df: 2},
		{id: "mogamigawa_maru", name: "Mogamigawa Maru", class: opchart.AP, move: 2, df: 2},
		{id: "chowa_maru", name: "Chowa Maru", class: opchart.AP, move: 2, df: 2},
		{id: "goyo_maru", name: "Goyo Maru", class: opchart.AP, move: 2, df: 2},
	}},
}

// CoralSea builds the May 1942 opening: two American carrier task forces and a cruiser screen
// south of New Guinea against the Japanese carrier striking force, the Shoho covering group
// and the Port Moresby invasion convoy, with land-based air on both sides.
func CoralSea() (engine.Setup, error) {
	catalog := opchart.DefaultCatalog()
	board := hex.NewBoard(CoralSeaWidth, CoralSeaHeight)
	for r, spans := range land {
		for _, span := range spans {
			for q := span[0]; q <= span[1]; q++ {
				if err := board.SetTerrain(hex.Hex{Q: q, R: r}, hex.Land); err != nil {
					return engine.Setup{}, fmt.Errorf("failed to lay out land: %w", err)
				}
			}
		}
	}
	for _, b := range bases {
		if err := board.SetTerrain(b.at, b.terrain); err != nil {
			return engine.Setup{}, fmt.Errorf("failed to place %s: %w", b.name, err)
		}
	}

	chart := opchart.NewChart(catalog)
	for _, def := range taskForces {
		tf, err := buildTaskForce(def, catalog)
		if err != nil {
			return engine.Setup{}, err
		}
		if err := chart.AddTaskForce(tf); err != nil {
			return engine.Setup{}, fmt.Errorf("failed to add %s: %w", def.name, err)
		}
	}
	for _, def := range bases {
		b, err := opchart.NewBase(def.id, def.name, def.side, def.at, def.aa, def.df,
			opchart.DeckConfig{Capacity: 40, LaunchFactor: 10, ReadyFactor: 8, Handling: def.handling})
		if err != nil {
			return engine.Setup{}, fmt.Errorf("failed to build %s: %w", def.name, err)
		}
		if err := stock(b.Deck, catalog, def.ready, def.readying); err != nil {
			return engine.Setup{}, fmt.Errorf("failed to stock %s: %w", def.name, err)
		}
		if err := chart.AddBase(b); err != nil {
			return engine.Setup{}, fmt.Errorf("failed to add %s: %w", def.name, err)
		}
	}

	return engine.Setup{
		Board:   board,
		Chart:   chart,
		Weather: weather.New(weatherCols, weatherRows, weather.Clear, 2),
		Clock:   game.NewClock(game.DawnHour),
	}, nil
}

func buildTaskForce(def taskForce, catalog opchart.Catalog) (*opchart.TaskForce, error) {
	ships := make([]*opchart.Ship, 0, len(def.ships))
	for _, s := range def.ships {
		var deck *opchart.DeckConfig
		switch s.class {
		case opchart.CV:
			cfg := fleetDeck
			deck = &cfg
		case opchart.CVL:
			cfg := lightDeck
			deck = &cfg
		}
		built, err := opchart.NewShip(s.id, s.name, s.class, s.attack, s.aa, s.move, s.df, deck)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", s.name, err)
		}
		if built.Deck != nil {
			if err := stock(built.Deck, catalog, s.ready, s.readying); err != nil {
				return nil, fmt.Errorf("failed to stock %s: %w", s.name, err)
			}
		}
		ships = append(ships, built)
	}
	tf, err := opchart.NewTaskForce(def.id, def.number, def.name, def.side, def.at, ships...)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", def.name, err)
	}
	return tf, nil
}

// stock fills a deck with full-fuel squadrons.
func stock(deck *opchart.Deck, catalog opchart.Catalog, ready, readying []air) error {
	for _, pool := range []struct {
		aircraft []air
		ready    bool
	}{{ready, true}, {readying, false}} {
		for _, a := range pool.aircraft {
			p, err := catalog.Profile(a.t)
			if err != nil {
				return err
			}
			deck.Stock(opchart.Squadron{Type: a.t, Strength: a.n, Range: p.Range}, pool.ready)
		}
	}
	return nil
}

var scenarios = map[string]func() (engine.Setup, error){
	"coral_sea": CoralSea,
}

// ByName builds a built-in scenario.
func ByName(name string) (engine.Setup, error) {
	build, ok := scenarios[name]
	if !ok {
		return engine.Setup{}, fmt.Errorf("unknown scenario %q", name)
	}
	return build()
}
