// Package game holds the vocabulary shared by every rules package: sides, the
// sequence of play, the game clock and the error taxonomy.
package game

type Side string

const (
	Japanese Side = "japanese"
	Allied   Side = "allied"
)

// Sides lists both sides in the fixed order used whenever a rule iterates over them.
var Sides = []Side{Allied, Japanese}

// Opponent returns the enemy side.
func (s Side) Opponent() Side {
	if s == Japanese {
		return Allied
	}
	return Japanese
}

func (s Side) Valid() bool {
	return s == Japanese || s == Allied
}

func (s Side) String() string {
	return string(s)
}
