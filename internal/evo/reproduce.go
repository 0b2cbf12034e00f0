package evo

import (
	"context"
	"fmt"
	"math/rand"

	"dilemma/internal/genotype"
	"dilemma/internal/model"
)

// Reproduction builds the next population from selected parents.
type Reproduction struct {
	Rand     *rand.Rand
	Mutation Operator
	Passes   MutationPassPolicy
}

// Offspring gives each parent size/len(parents) slots: one unmutated clone
// and the rest mutated clones. When size is not a multiple of the parent
// count, the leftover slots are filled round-robin with mutated clones of
// the parents in rank order. The result is shuffled.
func (r Reproduction) Offspring(ctx context.Context, parents []ScoredAutomaton, size, epoch int) ([]model.Automaton, error) {
	if r.Rand == nil {
		return nil, ErrRandomMissing
	}
	if r.Mutation == nil {
		return nil, fmt.Errorf("mutation operator is required")
	}
	if len(parents) == 0 {
		return nil, fmt.Errorf("%w: no parents", ErrDegenerateSelection)
	}
	if size < len(parents) {
		return nil, fmt.Errorf("population size %d below parent count %d", size, len(parents))
	}
	passes := r.Passes
	if passes == nil {
		passes = ConstMutationPasses{Count: 1}
	}

	mutated := func(parent model.Automaton) (model.Automaton, error) {
		count, err := passes.MutationCount(parent, epoch, r.Rand)
		if err != nil {
			return model.Automaton{}, err
		}
		return MutatedClone(ctx, parent, r.Mutation, count)
	}

	perParent := size / len(parents)
	next := make([]model.Automaton, 0, size)
	for _, parent := range parents {
		next = append(next, genotype.CloneAutomaton(parent.Automaton))
		for k := 1; k < perParent; k++ {
			child, err := mutated(parent.Automaton)
			if err != nil {
				return nil, err
			}
			next = append(next, child)
		}
	}
	for i := 0; len(next) < size; i++ {
		child, err := mutated(parents[i%len(parents)].Automaton)
		if err != nil {
			return nil, err
		}
		next = append(next, child)
	}

	r.Rand.Shuffle(len(next), func(i, j int) {
		next[i], next[j] = next[j], next[i]
	})
	return next, nil
}
