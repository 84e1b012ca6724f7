package game

import "fmt"

// Phase is one step of the sequence of play.
type Phase int

const (
	WeatherPhase Phase = iota
	MovementPhase
	ObservationPhase
	AirOperationsPhase
	CombatPhase
	CleanupPhase
)

var phaseNames = []string{"weather", "movement", "observation", "air_operations", "combat", "cleanup"}

// Next returns the following phase and whether the turn rolls over.
func (p Phase) Next() (Phase, bool) {
	if p == CleanupPhase {
		return WeatherPhase, true
	}
	return p + 1, false
}

func (p Phase) Valid() bool {
	return p >= WeatherPhase && p <= CleanupPhase
}

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
