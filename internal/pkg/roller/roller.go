// Package roller provides dice.Roller implementations for the engine: a
// seedable generator so encounters replay exactly, and a scripted roller
// for tests that need predetermined rolls.
package roller

import (
	"fmt"
	"math/rand"
)

// Seeded is a dice.Roller backed by a deterministic math/rand source.
// Every random decision in an encounter (rolls, tie breaks, target picks)
// flows through one Seeded instance, so the same seed replays the same
// encounter. Not safe for concurrent use; each encounter owns its own.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded returns a roller seeded with the given value.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a uniform value in [1, size].
func (s *Seeded) Roll(size int) (int, error) {
	if size < 1 {
		return 0, fmt.Errorf("invalid die size: %d", size)
	}
	return s.rng.Intn(size) + 1, nil
}

// RollN rolls count dice of the given size.
func (s *Seeded) RollN(count, size int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("invalid roll count: %d", count)
	}
	results := make([]int, count)
	for i := range results {
		r, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// Scripted is a dice.Roller that returns a fixed sequence of values, for
// tests that pin specific rolls. It fails loudly when the script runs dry.
type Scripted struct {
	rolls []int
	next  int
}

// NewScripted returns a roller that replays the given values in order.
func NewScripted(rolls ...int) *Scripted {
	return &Scripted{rolls: rolls}
}

// Roll returns the next scripted value regardless of die size.
func (s *Scripted) Roll(_ int) (int, error) {
	if s.next >= len(s.rolls) {
		return 0, fmt.Errorf("scripted roller exhausted after %d rolls", len(s.rolls))
	}
	r := s.rolls[s.next]
	s.next++
	return r, nil
}

// RollN returns the next count scripted values.
func (s *Scripted) RollN(count, size int) ([]int, error) {
	results := make([]int, count)
	for i := range results {
		r, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// Remaining reports how many scripted values are unused, so tests can
// assert the script was consumed exactly.
func (s *Scripted) Remaining() int {
	return len(s.rolls) - s.next
}
