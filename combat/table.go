package combat

// none marks a combat results entry where no roll can score.
const none = -1

// Tables are the numbers air combat resolves against.
type Tables struct {
	// Results is indexed by hit table 1-15 and attack factor column.
	Results [15][14]int
	// AntiAircraft is the hit table ships and bases fire on.
	AntiAircraft int
	// ArmedFighter is subtracted when a fighter carries bombs into air-to-air combat.
	ArmedFighter int
	// Conserve is subtracted when fighters refuse to spend range in air-to-air combat.
	Conserve int
	Night    int
	// Vulnerable is added against crippled or anchored ships.
	Vulnerable    int
	SearchSuccess int
}

func DefaultTables() Tables {
	return Tables{
		Results: [15][14]int{
			{none, none, none, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 2},
			{none, none, 0, 1, 1, 1, 1, 1, 2, 2, 2, 3, 3, 3},
			{none, 0, 1, 1, 1, 1, 2, 2, 2, 3, 3, 4, 4, 5},
			{none, 1, 1, 1, 2, 2, 2, 2, 3, 4, 4, 5, 6, 6},
			{none, 1, 1, 1, 2, 2, 3, 3, 4, 5, 6, 6, 7, 8},
			{0, 1, 1, 1, 2, 2, 3, 4, 5, 6, 7, 8, 8, 9},
			{0, 1, 1, 2, 2, 3, 3, 4, 5, 7, 8, 9, 10, 11},
			{0, 1, 1, 2, 2, 3, 4, 5, 6, 7, 9, 10, 11, 13},
			{0, 1, 2, 2, 3, 3, 4, 5, 7, 8, 10, 11, 13, 14},
			{0, 1, 2, 2, 3, 4, 5, 6, 7, 9, 11, 12, 14, 16},
			{0, 1, 2, 3, 3, 4, 5, 6, 8, 10, 12, 13, 16, 17},
			{0, 1, 2, 3, 4, 4, 6, 7, 9, 11, 13, 15, 17, 19},
			{0, 1, 2, 3, 4, 5, 6, 7, 9, 11, 13, 16, 18, 21},
			{0, 1, 2, 3, 4, 5, 7, 8, 10, 12, 14, 17, 20, 22},
			{1, 1, 2, 3, 4, 5, 7, 9, 11, 13, 17, 19, 21, 23},
		},
		AntiAircraft:  4,
		ArmedFighter:  6,
		Conserve:      6,
		Night:         2,
		Vulnerable:    2,
		SearchSuccess: 5,
	}
}

// columnTops are the upper bounds of the attack factor columns. The last column is open ended.
var columnTops = [14]int{2, 4, 6, 8, 10, 12, 15, 20, 25, 30, 35, 40, 45}

func column(factors int) int {
	if factors <= 0 {
		return -1
	}
	for i, top := range columnTops[:13] {
		if factors <= top {
			return i
		}
	}
	return 13
}

// dieShift is the result adjustment for die faces 1-6.
var dieShift = [7]int{0, -2, -1, 0, 0, 1, 2}

// Hits cross-indexes a modified hit table with the attack factors and applies the die.
func (t Tables) Hits(bht, factors, die int) int {
	col := column(factors)
	if col < 0 || die < 1 || die > 6 {
		return 0
	}
	bht = min(max(bht, 1), 15)
	r := t.Results[bht-1][col]
	if r == none {
		return 0
	}
	return max(r+dieShift[die], 0)
}
