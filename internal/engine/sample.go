package engine

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

// WeightedPick draws an index with probability proportional to its
// weight. Zero weights are never picked. The draw consumes exactly one
// roll from the roller, keeping seeded replays stable.
func WeightedPick(r dice.Roller, weights []int) (int, error) {
	total := 0
	for _, w := range weights {
		if w < 0 {
			return 0, errors.InvalidArgumentf("negative weight: %d", w)
		}
		total += w
	}
	if total == 0 {
		return 0, errors.InvalidArgument("no positive weights")
	}

	roll, err := r.Roll(total)
	if err != nil {
		return 0, errors.Wrap(err, "weighted pick roll failed")
	}

	for i, w := range weights {
		if roll <= w {
			return i, nil
		}
		roll -= w
	}
	// Unreachable when the roller honors its [1, size] contract.
	return 0, errors.Internalf("weighted pick overran total %d", total)
}

// UniformPick draws an index uniformly from [0, n).
func UniformPick(r dice.Roller, n int) (int, error) {
	if n <= 0 {
		return 0, errors.InvalidArgumentf("uniform pick over %d items", n)
	}
	if n == 1 {
		return 0, nil
	}
	roll, err := r.Roll(n)
	if err != nil {
		return 0, errors.Wrap(err, "uniform pick roll failed")
	}
	return roll - 1, nil
}
