package hex

// Route is a destination together with the steps that reach it.
type Route struct {
	Dest  Hex
	Steps []Hex
}

// Path finds a shortest passable route for a layer, steering around land for surface pieces.
// The returned steps exclude the start. Neighbors expand in direction order, so the
// result is stable for a given board.
func (b *Board) Path(from, to Hex, layer Layer) ([]Hex, bool) {
	if from == to {
		return nil, true
	}
	if _, ok := b.Cost(layer, to); !ok {
		return nil, false
	}
	prev := map[Hex]Hex{from: from}
	queue := []Hex{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range b.Neighbors(cur) {
			if _, seen := prev[n]; seen {
				continue
			}
			if _, ok := b.Cost(layer, n); !ok {
				continue
			}
			prev[n] = cur
			if n == to {
				return unwind(prev, from, to), true
			}
			queue = append(queue, n)
		}
	}
	return nil, false
}

func unwind(prev map[Hex]Hex, from, to Hex) []Hex {
	var steps []Hex
	for h := to; h != from; h = prev[h] {
		steps = append(steps, h)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

// Reachable lists every hex a layer can reach from start within allowance, in
// breadth-first order, the start included with an empty route.
func (b *Board) Reachable(start Hex, layer Layer, allowance int) []Route {
	routes := []Route{{Dest: start}}
	seen := map[Hex]bool{start: true}
	frontier := routes
	for depth := 0; depth < allowance; depth++ {
		var next []Route
		for _, r := range frontier {
			for _, n := range b.Neighbors(r.Dest) {
				if seen[n] {
					continue
				}
				if _, ok := b.Cost(layer, n); !ok {
					continue
				}
				seen[n] = true
				steps := make([]Hex, len(r.Steps), len(r.Steps)+1)
				copy(steps, r.Steps)
				next = append(next, Route{Dest: n, Steps: append(steps, n)})
			}
		}
		routes = append(routes, next...)
		frontier = next
	}
	return routes
}

// StepToward returns up to allowance steps of the shortest route toward target.
func (b *Board) StepToward(from, target Hex, layer Layer, allowance int) []Hex {
	steps, ok := b.Path(from, target, layer)
	if !ok {
		return nil
	}
	if len(steps) > allowance {
		steps = steps[:allowance]
	}
	return steps
}
