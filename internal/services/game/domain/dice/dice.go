// Package dice implements the die-rolling primitive for the encounter engine.
//
// Every random outcome in the game (attack rolls, damage, starting gold, hit
// point growth, flight checks) composes from a Roller producing uniform
// integers in [1, sides]. Production code rolls from a seeded Source; tests
// inject a Scripted roller so resolution is deterministic.
package dice

import (
	"math/rand"
	"sync"

	apperrors "github.com/louisbranch/whispering.depths/internal/platform/errors"
)

// ErrInvalidSpec indicates a die specification has invalid fields.
var ErrInvalidSpec = apperrors.New(apperrors.CodeDiceInvalidSpec, "dice must have positive sides and count")

// Roller produces a uniform integer in [1, sides].
type Roller interface {
	Roll(sides int) int
}

// Spec describes a die to roll and how many times to roll it.
type Spec struct {
	Sides int
	Count int
}

// Result captures the faces rolled for a single spec.
type Result struct {
	Sides   int
	Results []int
	Total   int
}

// Source is a Roller backed by a seeded pseudo-random generator.
//
// # Determinism
//
// Two sources built from the same seed produce the same sequence of faces
// for the same sequence of Roll calls. Source is safe for concurrent use;
// concurrent callers interleave on one sequence.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource builds a Source seeded with seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a face in [1, sides], or 0 when sides is not positive.
func (s *Source) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(sides) + 1
}

// RollSpec rolls spec.Count dice of spec.Sides sides in order.
func RollSpec(r Roller, spec Spec) (Result, error) {
	if spec.Sides <= 0 || spec.Count <= 0 {
		return Result{}, ErrInvalidSpec
	}
	results := make([]int, spec.Count)
	total := 0
	for i := range results {
		results[i] = r.Roll(spec.Sides)
		total += results[i]
	}
	return Result{Sides: spec.Sides, Results: results, Total: total}, nil
}

// MustRoll rolls a spec known to be valid and returns the total.
func MustRoll(r Roller, count, sides int) int {
	result, err := RollSpec(r, Spec{Sides: sides, Count: count})
	if err != nil {
		// Callers only pass constant or normalized specs.
		panic(err)
	}
	return result.Total
}

// D20 rolls a single twenty-sided die.
func D20(r Roller) int {
	return r.Roll(20)
}
