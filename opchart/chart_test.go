package opchart

import (
	"encoding/json"
	"errors"
	"testing"

	"flattop/game"
	"flattop/hex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carrierDeck() *DeckConfig {
	return &DeckConfig{Capacity: 40, LaunchFactor: 12, ReadyFactor: 10}
}

func newTestChart(t *testing.T) *Chart {
	t.Helper()
	c := NewChart(DefaultCatalog())

	lex, err := NewShip("lexington", "Lexington", CV, 0, 4, 3, 12, carrierDeck())
	require.NoError(t, err)
	dd, err := NewShip("phelps", "Phelps", DD, 1, 1, 4, 2, nil)
	require.NoError(t, err)
	lex.Deck.Stock(Squadron{Type: Wildcat, Strength: 8, Range: 6}, true)
	lex.Deck.Stock(Squadron{Type: Dauntless, Strength: 6, Range: 6, Armament: GP}, true)
	lex.Deck.Stock(Squadron{Type: Devastator, Strength: 4, Range: 5}, false)
	tf, err := NewTaskForce("tf17", 1, "TF 17", game.Allied, hex.Hex{Q: 4, R: 4}, lex, dd)
	require.NoError(t, err)
	require.NoError(t, c.AddTaskForce(tf))

	base, err := NewBase("moresby", "Port Moresby", game.Allied, hex.Hex{Q: 1, R: 6}, 3, 10, DeckConfig{Capacity: 30, LaunchFactor: 10, ReadyFactor: 10})
	require.NoError(t, err)
	base.Deck.Stock(Squadron{Type: B17, Strength: 4, Range: 12, Armament: GP}, true)
	require.NoError(t, c.AddBase(base))
	return c
}

func TestTaskForceComposition(t *testing.T) {
	ship := func(id ID, class ShipClass) *Ship {
		s, err := NewShip(id, string(id), class, 1, 1, 4, 4, nil)
		require.NoError(t, err)
		return s
	}

	t.Run("two fleet carriers are rejected", func(t *testing.T) {
		_, err := NewTaskForce("tf", 1, "", game.Allied, hex.Hex{}, ship("a", CV), ship("b", CVL))
		require.True(t, errors.Is(err, game.ErrCapacityExceeded))
	})

	t.Run("a carrier and a tender may sail together", func(t *testing.T) {
		_, err := NewTaskForce("tf", 2, "", game.Allied, hex.Hex{}, ship("a", CV), ship("b", AV))
		require.NoError(t, err)
	})

	t.Run("carriers need a low counter number", func(t *testing.T) {
		_, err := NewTaskForce("tf", 12, "", game.Japanese, hex.Hex{}, ship("a", CV))
		require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(err))
		_, err = NewTaskForce("tf", 12, "", game.Japanese, hex.Hex{}, ship("a", CA))
		require.NoError(t, err)
	})

	t.Run("japanese ship limit is ten", func(t *testing.T) {
		var ships []*Ship
		for i := 0; i < 11; i++ {
			ships = append(ships, ship(ID(rune('a'+i)), DD))
		}
		_, err := NewTaskForce("tf", 20, "", game.Japanese, hex.Hex{}, ships...)
		require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(err))
		_, err = NewTaskForce("tf", 20, "", game.Allied, hex.Hex{}, ships...)
		require.NoError(t, err)
	})

	t.Run("no ships", func(t *testing.T) {
		_, err := NewTaskForce("tf", 20, "", game.Allied, hex.Hex{})
		require.Equal(t, game.CodeEmptyFormation, game.CodeOf(err))
	})

	t.Run("allowance follows the slowest ship", func(t *testing.T) {
		slow, err := NewShip("slow", "", AP, 0, 0, 2, 2, nil)
		require.NoError(t, err)
		tf, err := NewTaskForce("tf", 20, "", game.Allied, hex.Hex{}, ship("a", DD), slow)
		require.NoError(t, err)
		require.Equal(t, 2, tf.Allowance())
		require.Equal(t, TransportGroup, tf.Role())
	})
}

func TestFormAirFormation(t *testing.T) {
	t.Run("draws from the ready pool", func(t *testing.T) {
		c := newTestChart(t)
		f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 4}, {Type: Wildcat, Count: 2}})
		require.NoError(t, err)
		require.Equal(t, 1, f.Number)
		require.Equal(t, Based, f.Status)
		require.Equal(t, 6, f.Strength())
		require.Equal(t, hex.Hex{Q: 4, R: 4}, f.Hex)

		_, lex, _ := c.Ship("lexington")
		require.Equal(t, 8, Strength(lex.Deck.Ready), "Six of fourteen ready aircraft should remain")

		g, err := c.FormAirFormation("lexington", CAP, []Request{{Type: Wildcat, Count: 2}})
		require.NoError(t, err)
		require.Equal(t, 2, g.Number, "Next formation should take the next free counter")
	})

	t.Run("missing aircraft", func(t *testing.T) {
		c := newTestChart(t)
		_, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Devastator, Count: 2}})
		require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(err), "Readying aircraft cannot form up")
		_, lex, _ := c.Ship("lexington")
		require.Equal(t, 14, Strength(lex.Deck.Ready), "Failed request should leave the pool untouched")
	})

	t.Run("larger than the launch factor", func(t *testing.T) {
		c := newTestChart(t)
		_, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Wildcat, Count: 8}, {Type: Dauntless, Count: 5}})
		require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(err), "Thirteen aircraft can never launch from a deck of twelve")
		_, lex, _ := c.Ship("lexington")
		require.Equal(t, 14, Strength(lex.Deck.Ready))

		f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Wildcat, Count: 8}, {Type: Dauntless, Count: 4}})
		require.NoError(t, err)
		require.NoError(t, c.Launch(f.ID, 1))
	})

	t.Run("empty request", func(t *testing.T) {
		c := newTestChart(t)
		_, err := c.FormAirFormation("lexington", Strike, nil)
		require.True(t, errors.Is(err, game.ErrEmptyFormation))
	})

	t.Run("counter numbers run out", func(t *testing.T) {
		c := newTestChart(t)
		_, lex, _ := c.Ship("lexington")
		lex.Deck.Ready = nil
		lex.Deck.Stock(Squadron{Type: Wildcat, Strength: MaxFormations + 1, Range: 6}, true)
		lex.Deck.Config.Capacity = 100
		for i := 0; i < MaxFormations; i++ {
			_, err := c.FormAirFormation("lexington", CAP, []Request{{Type: Wildcat, Count: 1}})
			require.NoError(t, err)
		}
		_, err := c.FormAirFormation("lexington", CAP, []Request{{Type: Wildcat, Count: 1}})
		require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(err))
	})

	t.Run("unknown host", func(t *testing.T) {
		c := newTestChart(t)
		_, err := c.FormAirFormation("phelps", CAP, []Request{{Type: Wildcat, Count: 1}})
		require.Equal(t, game.CodeInvalidTarget, game.CodeOf(err))
	})
}

func TestFormationLifecycle(t *testing.T) {
	t.Run("full cycle", func(t *testing.T) {
		c := newTestChart(t)
		f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 6}})
		require.NoError(t, err)

		require.NoError(t, c.Launch(f.ID, 3))
		require.Equal(t, Launched, f.Status)
		require.Equal(t, 3, f.LaunchTurn)
		require.NoError(t, c.Depart(f.ID))
		require.Equal(t, Airborne, f.Status)
		require.NoError(t, c.ReturnToBase(f.ID))
		require.Equal(t, Returning, f.Status)
		require.NotNil(t, f.Target)
		require.NoError(t, c.Land(f.ID, "lexington"))
		require.Equal(t, Based, f.Status)
		require.Zero(t, f.Strength(), "Landed aircraft should move to the deck")

		_, lex, _ := c.Ship("lexington")
		require.Equal(t, 6, Strength(lex.Deck.JustLanded))

		err = c.Launch(f.ID, 4)
		require.True(t, errors.Is(err, game.ErrEmptyFormation), "Formation emptied by landing should not relaunch")
	})

	t.Run("illegal transitions are rejected", func(t *testing.T) {
		c := newTestChart(t)
		f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 2}})
		require.NoError(t, err)

		require.Equal(t, game.CodeIllegalPhaseAction, game.CodeOf(c.Depart(f.ID)))
		require.Equal(t, game.CodeIllegalPhaseAction, game.CodeOf(c.ReturnToBase(f.ID)))
		require.Equal(t, game.CodeIllegalPhaseAction, game.CodeOf(c.Land(f.ID, "lexington")))
		require.Equal(t, Based, f.Status, "Rejected transitions should not change status")

		require.NoError(t, c.Launch(f.ID, 1))
		require.Equal(t, game.CodeIllegalPhaseAction, game.CodeOf(c.Launch(f.ID, 1)))
	})

	t.Run("lost is absorbing", func(t *testing.T) {
		c := newTestChart(t)
		f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 2}})
		require.NoError(t, err)
		require.NoError(t, c.Lose(f.ID))
		require.Equal(t, Lost, f.Status)
		require.Empty(t, f.Transitions())
		for _, err := range []error{c.Launch(f.ID, 1), c.Depart(f.ID), c.ReturnToBase(f.ID), c.Land(f.ID, "lexington"), c.Lose(f.ID)} {
			require.Equal(t, game.CodeIllegalPhaseAction, game.CodeOf(err))
		}
	})

	t.Run("launch factor", func(t *testing.T) {
		c := newTestChart(t)
		a, err := c.FormAirFormation("lexington", CAP, []Request{{Type: Wildcat, Count: 8}})
		require.NoError(t, err)
		b, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 6}})
		require.NoError(t, err)
		require.NoError(t, c.Launch(a.ID, 1))
		err = c.Launch(b.ID, 1)
		require.True(t, errors.Is(err, game.ErrCapacityExceeded), "Only four launch points should remain")
		require.Equal(t, Based, b.Status)

		c.ResetTurn()
		require.NoError(t, c.Launch(b.ID, 2))
	})

	t.Run("landing needs a friendly host in the same hex", func(t *testing.T) {
		c := newTestChart(t)
		f, err := c.FormAirFormation("moresby", Strike, []Request{{Type: B17, Count: 4}})
		require.NoError(t, err)
		require.NoError(t, c.Launch(f.ID, 1))
		require.NoError(t, c.Depart(f.ID))
		require.NoError(t, c.ReturnToBase(f.ID))

		require.Equal(t, game.CodeInvalidPlacement, game.CodeOf(c.Land(f.ID, "lexington")))
		f.Hex = hex.Hex{Q: 4, R: 4}
		require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(c.Land(f.ID, "lexington")), "B-17s cannot land on a carrier")
	})
}

func TestLosses(t *testing.T) {
	c := newTestChart(t)
	f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Wildcat, Count: 2}, {Type: Dauntless, Count: 3}})
	require.NoError(t, err)
	require.NoError(t, c.Launch(f.ID, 1))

	n, err := c.ApplyTypeLosses(f.ID, Wildcat, 5)
	require.NoError(t, err)
	require.Equal(t, 2, n, "Only two fighters can be lost")
	require.Equal(t, 3, f.Strength())
	require.Equal(t, Launched, f.Status)

	n, err = c.ApplyLosses(f.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, Lost, f.Status, "A formation reduced to nothing is lost")

	_, err = c.ApplyLosses(f.ID, 1)
	require.Equal(t, game.CodeIllegalPhaseAction, game.CodeOf(err))
}

func TestCarrierSinking(t *testing.T) {
	c := newTestChart(t)
	based, err := c.FormAirFormation("lexington", CAP, []Request{{Type: Wildcat, Count: 4}})
	require.NoError(t, err)
	aloft, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 6}})
	require.NoError(t, err)
	require.NoError(t, c.Launch(aloft.ID, 1))
	require.NoError(t, c.Depart(aloft.ID))

	dmg, err := c.DamageShip("tf17", "lexington", 6)
	require.NoError(t, err)
	require.True(t, dmg.Crippled)
	require.False(t, dmg.Sunk)

	dmg, err = c.DamageShip("tf17", "lexington", 6)
	require.NoError(t, err)
	require.True(t, dmg.Sunk)
	require.Equal(t, []ID{based.ID}, dmg.Lost, "Only formations still on deck go down with the carrier")
	require.Equal(t, Lost, based.Status)
	require.Equal(t, Airborne, aloft.Status)
	require.False(t, dmg.TaskForceDestroyed, "The destroyer is still afloat")

	_, err = c.DamageShip("tf17", "lexington", 1)
	require.True(t, errors.Is(err, game.ErrInvalidTarget), "A sunk carrier is not a target")

	dmg, err = c.DamageShip("tf17", "phelps", 2)
	require.NoError(t, err)
	require.True(t, dmg.TaskForceDestroyed)
	_, ok := c.TaskForce("tf17")
	require.False(t, ok)
}

func TestBaseDamage(t *testing.T) {
	c := newTestChart(t)
	dmg, err := c.DamageBase("moresby", 3)
	require.NoError(t, err)
	require.Equal(t, 3, Strength(dmg.Destroyed), "Each hit wrecks one aircraft on the ground")
	b, _ := c.Base("moresby")
	require.Equal(t, 1, Strength(b.Deck.Ready))

	dmg, err = c.DamageBase("moresby", 7)
	require.NoError(t, err)
	require.True(t, dmg.OutOfAction)
	_, err = c.FormAirFormation("moresby", Strike, []Request{{Type: B17, Count: 1}})
	require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(err))
}

func TestDeckCycle(t *testing.T) {
	c := newTestChart(t)
	require.NoError(t, c.ReadyAircraft("lexington", Devastator, 4, Torpedo))
	_, lex, _ := c.Ship("lexington")
	require.Empty(t, lex.Deck.Readying)
	require.Equal(t, 18, Strength(lex.Deck.Ready))
	require.Equal(t, 6, lex.Deck.ReadyRemaining())

	err := c.ReadyAircraft("lexington", Wildcat, 1, Torpedo)
	require.Equal(t, game.CodeCapacityExceeded, game.CodeOf(err), "Fighters carry no torpedoes")

	lex.Deck.JustLanded = []Squadron{{Type: Dauntless, Strength: 2, Range: 1, Armament: GP}}
	c.StowAircraft()
	require.Empty(t, lex.Deck.JustLanded)
	require.Equal(t, []Squadron{{Type: Dauntless, Strength: 2, Range: 1}}, lex.Deck.Readying)
}

func TestBurnFuel(t *testing.T) {
	c := newTestChart(t)
	f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 2}})
	require.NoError(t, err)
	require.NoError(t, c.Launch(f.ID, 1))
	f.Squadrons[0].Range = 1

	require.Empty(t, c.BurnFuel())
	require.Equal(t, 0, f.Range())
	require.Equal(t, []ID{f.ID}, c.BurnFuel())
	require.Equal(t, Lost, f.Status)
	require.Equal(t, []ID{f.ID}, c.Prune())
}

func TestChartJSON(t *testing.T) {
	c := newTestChart(t)
	f, err := c.FormAirFormation("lexington", Strike, []Request{{Type: Dauntless, Count: 2}})
	require.NoError(t, err)
	require.NoError(t, c.AssignMission(f.ID, Strike, &hex.Hex{Q: 9, R: 9}, Low))

	data, err := json.Marshal(c)
	require.NoError(t, err)
	var restored Chart
	require.NoError(t, json.Unmarshal(data, &restored))
	restored.UseCatalog(DefaultCatalog())
	require.NoError(t, restored.Validate())
	again, err := json.Marshal(&restored)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	t.Run("duplicate counters are rejected", func(t *testing.T) {
		bad := restored.Copy()
		dup := bad.Formations[0].Copy()
		dup.ID = "copy"
		bad.Formations = append(bad.Formations, dup)
		require.Error(t, bad.Validate())
	})
}

func TestCopyIsDeep(t *testing.T) {
	c := newTestChart(t)
	cp := c.Copy()
	_, err := cp.DamageShip("tf17", "lexington", 3)
	require.NoError(t, err)
	_, lex, _ := c.Ship("lexington")
	require.Zero(t, lex.Damage)
	_, err = cp.FormAirFormation("lexington", CAP, []Request{{Type: Wildcat, Count: 1}})
	require.NoError(t, err)
	require.Empty(t, c.Formations)
	require.Equal(t, 14, Strength(lex.Deck.Ready))
}
