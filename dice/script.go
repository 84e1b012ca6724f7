package dice

// Script replays a fixed list of die faces. Intn maps the next face onto [0, n).
// It panics when exhausted so a test notices an unexpected extra roll.
type Script struct {
	faces []int
	next  int
}

func NewScript(faces ...int) *Script {
	return &Script{faces: faces}
}

func (s *Script) D6() int {
	if s.next >= len(s.faces) {
		panic("dice: script exhausted")
	}
	f := s.faces[s.next]
	s.next++
	return f
}

func (s *Script) Intn(n int) int {
	return (s.D6() - 1) % n
}

// Used returns how many faces have been consumed.
func (s *Script) Used() int {
	return s.next
}

// Constant always rolls the same face.
type Constant int

func (c Constant) D6() int {
	return int(c)
}

func (c Constant) Intn(n int) int {
	return (int(c) - 1) % n
}
