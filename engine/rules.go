package engine

import (
	"flattop/combat"
	"flattop/observe"
	"flattop/opchart"
	"flattop/weather"
)

// DefaultTurnLimit is two days and a night of game hours.
const DefaultTurnLimit = 48

// Rules bundles the immutable tables a game is played with.
type Rules struct {
	Catalog     opchart.Catalog
	Weather     weather.Table
	Observation observe.Table
	Combat      combat.Tables
	TurnLimit   int
}

func StandardRules() Rules {
	return Rules{
		Catalog:     opchart.DefaultCatalog(),
		Weather:     weather.DefaultTable(),
		Observation: observe.DefaultTable(),
		Combat:      combat.DefaultTables(),
		TurnLimit:   DefaultTurnLimit,
	}
}
