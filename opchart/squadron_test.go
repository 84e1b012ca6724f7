package opchart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArmament(t *testing.T) {
	val, err := DefaultCatalog().Profile(Val)
	require.NoError(t, err)
	kate, err := DefaultCatalog().Profile(Kate)
	require.NoError(t, err)
	zero, err := DefaultCatalog().Profile(Zero)
	require.NoError(t, err)

	t.Run("armor piercing selects its own tables", func(t *testing.T) {
		assert.True(t, val.CanCarry(ArmorPiercing))
		assert.False(t, zero.CanCarry(ArmorPiercing))
		assert.True(t, zero.CanCarry(Unarmed))
		assert.Equal(t, DiveAttack, val.AttackKind(ArmorPiercing))
		assert.Equal(t, 7, val.Hits.VsShip(DiveAttack, High, ArmorPiercing))
		assert.Equal(t, 2, val.Hits.VsShip(DiveAttack, High, GP))
		assert.Equal(t, TorpedoAttack, kate.AttackKind(Torpedo))
		assert.Zero(t, kate.Hits.VsBase(TorpedoAttack, Low, Torpedo))
	})

	t.Run("armament and transports do not collide", func(t *testing.T) {
		data, err := json.Marshal(Squadron{Type: Val, Strength: 3, Armament: ArmorPiercing})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"Val","strength":3,"range":0,"armament":"ap"}`, string(data))

		assert.True(t, AP.Valid())
		transport, err := NewShip("kinryu", "Kinryu Maru", AP, 0, 0, 3, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, ShipClass("AP"), transport.Class)
	})
}
