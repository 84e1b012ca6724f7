package observe

import (
	"testing"

	"flattop/dice"
	"flattop/game"
	"flattop/hex"
	"flattop/opchart"
	"flattop/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	t     *testing.T
	board *hex.Board
	chart *opchart.Chart
	wx    weather.State
	clock game.Clock
}

func newWorld(t *testing.T) *world {
	return &world{
		t:     t,
		board: hex.NewBoard(20, 10),
		chart: opchart.NewChart(opchart.DefaultCatalog()),
		wx:    weather.New(2, 1, weather.Clear, 1),
		clock: game.Clock{Turn: 3, Day: 1, Hour: 10},
	}
}

func (w *world) taskForce(id opchart.ID, side game.Side, number int, at hex.Hex, radar bool) *opchart.TaskForce {
	s, err := opchart.NewShip(id+"-dd", "", opchart.DD, 1, 1, 4, 2, nil)
	require.NoError(w.t, err)
	s.Radar = radar
	tf, err := opchart.NewTaskForce(id, number, "", side, at, s)
	require.NoError(w.t, err)
	require.NoError(w.t, w.chart.AddTaskForce(tf))
	return tf
}

func (w *world) formation(id opchart.ID, side game.Side, at hex.Hex, status opchart.Status, mission opchart.Mission, alt opchart.Altitude) *opchart.AirFormation {
	f := &opchart.AirFormation{
		ID: id, Number: len(w.chart.Formations) + 1, Side: side, Home: "nowhere", Mission: mission, Status: status,
		Hex: at, Altitude: alt, Squadrons: []opchart.Squadron{{Type: opchart.Zero, Strength: 4, Range: 6}, {Type: opchart.Val, Strength: 3, Range: 6, Armament: opchart.GP}},
	}
	w.chart.Formations = append(w.chart.Formations, f)
	return f
}

func (w *world) observe(side game.Side, rng dice.Roller) Result {
	return Observe(side, Input{Board: w.board, Chart: w.chart, Weather: w.wx, Clock: w.clock}, rng, DefaultTable())
}

func TestObserveByDistance(t *testing.T) {
	for _, tc := range []struct {
		name string
		at   hex.Hex
		want Precision
	}{
		{"same hex", hex.Hex{Q: 2, R: 2}, Exact},
		{"adjacent", hex.Hex{Q: 3, R: 2}, Exact},
		{"two hexes", hex.Hex{Q: 4, R: 2}, Located},
		{"three hexes", hex.Hex{Q: 5, R: 2}, Approximate},
		{"four hexes", hex.Hex{Q: 6, R: 2}, Unseen},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorld(t)
			w.taskForce("us", game.Allied, 1, hex.Hex{Q: 2, R: 2}, false)
			w.taskForce("ijn", game.Japanese, 1, tc.at, false)
			res := w.observe(game.Allied, dice.NewScript())
			d, ok := res.Find("ijn")
			if tc.want == Unseen {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, tc.want, d.Precision)
		})
	}
}

func TestReporting(t *testing.T) {
	w := newWorld(t)
	w.taskForce("us", game.Allied, 1, hex.Hex{Q: 2, R: 2}, false)
	w.formation("near", game.Japanese, hex.Hex{Q: 3, R: 2}, opchart.Airborne, opchart.Strike, opchart.Low)
	w.formation("far", game.Japanese, hex.Hex{Q: 5, R: 2}, opchart.Airborne, opchart.Strike, opchart.Low)
	w.formation("mid", game.Japanese, hex.Hex{Q: 4, R: 2}, opchart.Airborne, opchart.Strike, opchart.Low)
	res := w.observe(game.Allied, dice.NewScript())

	require.Len(t, res.Detections, 3)
	require.Equal(t, []opchart.ID{"far", "mid", "near"}, []opchart.ID{res.Detections[0].Target, res.Detections[1].Target, res.Detections[2].Target}, "Detections should be sorted")

	near, _ := res.Find("near")
	assert.Equal(t, map[string]int{"Zero": 4, "Val": 3}, near.Counts)
	assert.Equal(t, opchart.Low, near.Altitude)
	assert.Equal(t, 7, near.Total)

	mid, _ := res.Find("mid")
	assert.Equal(t, []string{"bomber", "interceptor"}, mid.Classes)
	assert.Nil(t, mid.Counts, "Located precision should not give counts")
	require.NotNil(t, mid.Hex)

	far, _ := res.Find("far")
	assert.Nil(t, far.Hex, "Approximate precision should give only the region")
	assert.Zero(t, far.Total)
	assert.Equal(t, weather.Region(0), far.Region)
}

func TestCloud(t *testing.T) {
	w := newWorld(t)
	w.wx.Conditions[0] = weather.Cloudy
	w.taskForce("us", game.Allied, 1, hex.Hex{Q: 2, R: 2}, false)
	w.taskForce("ijn", game.Japanese, 1, hex.Hex{Q: 4, R: 2}, false)
	w.formation("af", game.Japanese, hex.Hex{Q: 4, R: 2}, opchart.Airborne, opchart.Strike, opchart.Low)
	res := w.observe(game.Allied, dice.NewScript())

	tf, ok := res.Find("ijn")
	require.True(t, ok)
	assert.Equal(t, Located, tf.Precision, "Ships see ships through cloud")
	af, ok := res.Find("af")
	require.True(t, ok)
	assert.Equal(t, Approximate, af.Precision, "Cloud should cost one condition against aircraft")
}

func TestStorm(t *testing.T) {
	t.Run("target in storm is hidden", func(t *testing.T) {
		w := newWorld(t)
		w.wx.Conditions[1] = weather.Storm
		w.taskForce("us", game.Allied, 1, hex.Hex{Q: 9, R: 2}, false)
		w.taskForce("ijn", game.Japanese, 1, hex.Hex{Q: 10, R: 2}, false)
		require.Empty(t, w.observe(game.Allied, dice.NewScript()).Detections)
	})

	t.Run("observer in storm is blind", func(t *testing.T) {
		w := newWorld(t)
		w.wx.Conditions[0] = weather.Storm
		w.taskForce("us", game.Allied, 1, hex.Hex{Q: 9, R: 2}, false)
		w.taskForce("ijn", game.Japanese, 1, hex.Hex{Q: 10, R: 2}, false)
		require.Empty(t, w.observe(game.Allied, dice.NewScript()).Detections)
		require.Len(t, w.observe(game.Japanese, dice.NewScript()).Detections, 0, "Storm hides the observer too")
	})
}

func TestSearchRoll(t *testing.T) {
	w := newWorld(t)
	w.clock.Hour = 20
	w.formation("scout", game.Allied, hex.Hex{Q: 2, R: 2}, opchart.Airborne, opchart.Search, opchart.High)
	w.formation("near", game.Japanese, hex.Hex{Q: 3, R: 2}, opchart.Airborne, opchart.Strike, opchart.High)
	w.formation("far", game.Japanese, hex.Hex{Q: 4, R: 2}, opchart.Airborne, opchart.Strike, opchart.High)

	t.Run("failed roll sees only the guaranteed radius", func(t *testing.T) {
		res := w.observe(game.Allied, dice.NewScript(5))
		_, ok := res.Find("near")
		require.True(t, ok)
		_, ok = res.Find("far")
		require.False(t, ok, "Night adds one, so a five fails")
	})

	t.Run("successful roll sees further", func(t *testing.T) {
		rng := dice.NewScript(4)
		res := w.observe(game.Allied, rng)
		d, ok := res.Find("far")
		require.True(t, ok)
		require.Equal(t, Approximate, d.Precision)
		require.Equal(t, 1, rng.Used(), "One search roll per airborne observer")
	})
}

func TestBestPrecisionWins(t *testing.T) {
	w := newWorld(t)
	w.taskForce("us1", game.Allied, 1, hex.Hex{Q: 0, R: 2}, false)
	w.taskForce("us2", game.Allied, 2, hex.Hex{Q: 4, R: 2}, false)
	w.taskForce("ijn", game.Japanese, 1, hex.Hex{Q: 3, R: 2}, false)
	d, ok := w.observe(game.Allied, dice.NewScript()).Find("ijn")
	require.True(t, ok)
	require.Equal(t, Exact, d.Precision)
}

func TestRadar(t *testing.T) {
	w := newWorld(t)
	w.clock.Hour = 2
	w.taskForce("us", game.Allied, 1, hex.Hex{Q: 2, R: 2}, true)
	w.formation("high", game.Japanese, hex.Hex{Q: 5, R: 2}, opchart.Airborne, opchart.Strike, opchart.High)
	w.formation("low", game.Japanese, hex.Hex{Q: 5, R: 2}, opchart.Airborne, opchart.Strike, opchart.Low)
	res := w.observe(game.Allied, dice.NewScript())
	d, ok := res.Find("high")
	require.True(t, ok)
	require.Equal(t, Approximate, d.Precision)
	_, ok = res.Find("low")
	require.False(t, ok, "Radar cannot see low flyers")

	t.Run("through daytime cloud", func(t *testing.T) {
		w := newWorld(t)
		for i := range w.wx.Conditions {
			w.wx.Conditions[i] = weather.Cloudy
		}
		w.formation("high", game.Japanese, hex.Hex{Q: 5, R: 2}, opchart.Airborne, opchart.Strike, opchart.High)

		w.taskForce("us", game.Allied, 1, hex.Hex{Q: 2, R: 2}, false)
		_, ok := w.observe(game.Allied, dice.NewScript()).Find("high")
		require.False(t, ok, "Lookouts see two hexes through cloud")

		w.chart.TaskForces[0].Ships[0].Radar = true
		d, ok := w.observe(game.Allied, dice.NewScript()).Find("high")
		require.True(t, ok)
		require.Equal(t, Approximate, d.Precision)
	})
}

func TestOwnSideNeverReported(t *testing.T) {
	w := newWorld(t)
	w.taskForce("us", game.Allied, 1, hex.Hex{Q: 2, R: 2}, false)
	w.taskForce("us2", game.Allied, 2, hex.Hex{Q: 2, R: 3}, false)
	w.formation("based", game.Japanese, hex.Hex{Q: 2, R: 2}, opchart.Based, opchart.CAP, opchart.High)
	require.Empty(t, w.observe(game.Allied, dice.NewScript()).Detections, "Friendly units and formations on deck are never detections")
}
