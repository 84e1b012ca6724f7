package combat

import (
	"fmt"

	"flattop/opchart"
)

type MutationKind string

const (
	LossesMutation      MutationKind = "losses"
	DisarmMutation      MutationKind = "disarm"
	ExpendRangeMutation MutationKind = "expend_range"
	ShipDamageMutation  MutationKind = "ship_damage"
	BaseDamageMutation  MutationKind = "base_damage"
)

// Mutation is a change to the chart requested by a resolution. Count is aircraft lost, range
// expended or hits scored, depending on Kind.
type Mutation struct {
	Kind      MutationKind         `json:"kind"`
	Formation opchart.ID           `json:"formation,omitempty"`
	Aircraft  opchart.AircraftType `json:"aircraft,omitempty"`
	TaskForce opchart.ID           `json:"task_force,omitempty"`
	Ship      opchart.ID           `json:"ship,omitempty"`
	Base      opchart.ID           `json:"base,omitempty"`
	Count     int                  `json:"count"`
}

// Applied collects what the chart reported while applying mutations.
type Applied struct {
	Ships []opchart.ShipDamage
	Bases []opchart.BaseDamage
}

// Apply runs mutations against a chart in order. It stops at the first failure, leaving the
// chart partly changed, so callers apply to a copy.
func Apply(c *opchart.Chart, muts []Mutation) (Applied, error) {
	var out Applied
	for _, m := range muts {
		var err error
		switch m.Kind {
		case LossesMutation:
			_, err = c.ApplyTypeLosses(m.Formation, m.Aircraft, m.Count)
		case DisarmMutation:
			err = c.Disarm(m.Formation, m.Aircraft)
		case ExpendRangeMutation:
			err = c.ExpendRange(m.Formation, m.Count)
		case ShipDamageMutation:
			var d opchart.ShipDamage
			if d, err = c.DamageShip(m.TaskForce, m.Ship, m.Count); err == nil {
				out.Ships = append(out.Ships, d)
			}
		case BaseDamageMutation:
			var d opchart.BaseDamage
			if d, err = c.DamageBase(m.Base, m.Count); err == nil {
				out.Bases = append(out.Bases, d)
			}
		default:
			err = fmt.Errorf("unknown mutation %q", m.Kind)
		}
		if err != nil {
			return out, fmt.Errorf("failed to apply %s mutation: %w", m.Kind, err)
		}
	}
	return out, nil
}
