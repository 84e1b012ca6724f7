// Package dice is the single random source threaded through every probabilistic rule.
package dice

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Roller is what rule packages consume. Implementations must be deterministic for a given state.
type Roller interface {
	// D6 returns a value in [1, 6].
	D6() int
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// Dice is the authoritative generator owned by the game engine. Its state can be exported and
// restored so a saved game resumes with the same future rolls.
type Dice struct {
	src *rand.PCGSource
	rng *rand.Rand
}

func New(seed uint64) *Dice {
	src := &rand.PCGSource{}
	src.Seed(seed)
	return &Dice{src: src, rng: rand.New(src)}
}

func (d *Dice) D6() int {
	return d.rng.Intn(6) + 1
}

func (d *Dice) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dice: invalid bound %d", n))
	}
	return d.rng.Intn(n)
}

// State returns the generator state.
func (d *Dice) State() []byte {
	b, err := d.src.MarshalBinary()
	if err != nil {
		// PCGSource never fails to marshal.
		panic(err)
	}
	return b
}

// Restore rebuilds a generator from a State value.
func Restore(state []byte) (*Dice, error) {
	src := &rand.PCGSource{}
	if err := src.UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("cannot restore dice state: %w", err)
	}
	return &Dice{src: src, rng: rand.New(src)}, nil
}

// Clone returns an independent generator at the same position.
func (d *Dice) Clone() *Dice {
	c, err := Restore(d.State())
	if err != nil {
		panic(err)
	}
	return c
}
