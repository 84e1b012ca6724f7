package observe

// Observer is the kind of unit doing the looking.
type Observer int

const (
	BaseObserver Observer = iota
	TaskForceObserver
	AirObserver
)

// Kind is the kind of unit being looked at.
type Kind string

const (
	TaskForceTarget Kind = "task_force"
	AirTarget       Kind = "air_formation"
)

// Key selects one row of the observation table.
type Key struct {
	Night    bool
	Observer Observer
	Target   Kind
	Cloud    bool
}

// Table is the observation table. Each row lists the condition number by hex distance;
// distances past the end of a row are out of sight.
type Table struct {
	Rows map[Key][]int
	// Radar lets radar-equipped ships and bases see high air formations, day or night, cloud or not.
	Radar []int
	// Guaranteed is the radius an air formation observes without a search roll.
	Guaranteed int
	// SearchSuccess is the highest modified d6 that passes the search table.
	SearchSuccess int
	// SearchReach extends condition one this many hexes for search missions.
	SearchReach int
}

func DefaultTable() Table {
	rows := make(map[Key][]int)
	set := func(night bool, o Observer, k Kind, clear, cloud []int) {
		rows[Key{Night: night, Observer: o, Target: k}] = clear
		rows[Key{Night: night, Observer: o, Target: k, Cloud: true}] = cloud
	}
	for _, o := range []Observer{BaseObserver, TaskForceObserver} {
		set(false, o, AirTarget, []int{3, 3, 2, 1}, []int{2, 2, 1})
		set(false, o, TaskForceTarget, []int{3, 3, 2, 1}, []int{3, 3, 2, 1})
		set(true, o, AirTarget, []int{1, 1}, nil)
		set(true, o, TaskForceTarget, []int{1, 1}, []int{1, 1})
	}
	set(false, AirObserver, AirTarget, []int{3, 3, 2, 1}, []int{2, 2, 1})
	set(false, AirObserver, TaskForceTarget, []int{3, 3, 2, 1}, []int{2, 2, 1})
	set(true, AirObserver, AirTarget, []int{1, 1, 1}, []int{1})
	set(true, AirObserver, TaskForceTarget, []int{1, 1}, nil)

	return Table{
		Rows:          rows,
		Radar:         []int{2, 2, 1, 1},
		Guaranteed:    1,
		SearchSuccess: 5,
		SearchReach:   1,
	}
}

func condition(row []int, distance, reach int) int {
	if distance < 0 {
		return 0
	}
	if distance < len(row) {
		return row[distance]
	}
	if len(row) > 0 && distance < len(row)+reach {
		return 1
	}
	return 0
}
