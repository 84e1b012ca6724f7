package game

// Clock tracks the game turn. One turn is one hour of game time.
type Clock struct {
	Turn int `json:"turn"`
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

const (
	DawnHour = 6
	DuskHour = 18
)

func NewClock(startHour int) Clock {
	return Clock{Turn: 1, Day: 1, Hour: ((startHour % 24) + 24) % 24}
}

// Night reports whether the current hour falls between dusk and dawn.
func (c Clock) Night() bool {
	return c.Hour < DawnHour || c.Hour >= DuskHour
}

func (c Clock) Advance() Clock {
	next := Clock{Turn: c.Turn + 1, Day: c.Day, Hour: c.Hour + 1}
	if next.Hour == 24 {
		next.Hour = 0
		next.Day++
	}
	return next
}
