package metrics

import (
	"sync/atomic"
	"time"

	"flattop/combat"
	"flattop/game"
)

type GameMetric struct {
	Seed      uint64
	Winner    string // Side, empty on a draw
	Reason    string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Turns     int
	Combats   int
	// Rejections counts commands the engine refused.
	Rejections           int
	AlliedAircraftLost   int
	JapaneseAircraftLost int
	AlliedShipsSunk      int
	JapaneseShipsSunk    int
}

type Collector interface {
	Start(seed uint64)
	AddTurn()
	AddCombat(result combat.Result)
	AddRejection()
	Complete() GameMetric
}

type collector struct {
	seed       uint64
	startTime  time.Time
	turns      atomic.Int32
	combats    atomic.Int32
	rejections atomic.Int32
	lost       [2]atomic.Int32
	sunk       [2]atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func sideIndex(s game.Side) int {
	if s == game.Japanese {
		return 1
	}
	return 0
}

func (m *collector) Start(seed uint64) {
	m.seed = seed
	m.startTime = time.Now()
}

func (m *collector) AddTurn() {
	m.turns.Add(1)
}

func (m *collector) AddCombat(result combat.Result) {
	m.combats.Add(1)
	for _, l := range result.Losses {
		m.lost[sideIndex(l.Side)].Add(int32(l.Count))
	}
	m.sunk[sideIndex(result.Defender)].Add(int32(len(result.Sunk)))
}

func (m *collector) AddRejection() {
	m.rejections.Add(1)
}

func (m *collector) Complete() GameMetric {
	end := time.Now()
	return GameMetric{
		Seed:                 m.seed,
		StartTime:            m.startTime,
		EndTime:              end,
		Duration:             end.Sub(m.startTime),
		Turns:                int(m.turns.Load()),
		Combats:              int(m.combats.Load()),
		Rejections:           int(m.rejections.Load()),
		AlliedAircraftLost:   int(m.lost[0].Load()),
		JapaneseAircraftLost: int(m.lost[1].Load()),
		AlliedShipsSunk:      int(m.sunk[0].Load()),
		JapaneseShipsSunk:    int(m.sunk[1].Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(seed uint64)              {}
func (m *dummyCollector) AddTurn()                       {}
func (m *dummyCollector) AddCombat(result combat.Result) {}
func (m *dummyCollector) AddRejection()                  {}
func (m *dummyCollector) Complete() GameMetric           { return GameMetric{} }
