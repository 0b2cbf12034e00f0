package evo

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"dilemma/internal/model"
)

// ErrDegenerateSelection means truncation would keep no parents. The
// population must hold at least 1/KeepFraction automata.
var ErrDegenerateSelection = errors.New("degenerate selection")

type ScoredAutomaton struct {
	Automaton model.Automaton
	Fitness   float64

	// Index is the automaton's slot in the population that was scored.
	Index int
}

// Rank orders the population by fitness, best (least negative) first. Ties
// keep population order.
func Rank(population []model.Automaton, fitness []float64) ([]ScoredAutomaton, error) {
	if len(population) != len(fitness) {
		return nil, fmt.Errorf("fitness mismatch: population=%d fitness=%d", len(population), len(fitness))
	}
	ranked := make([]ScoredAutomaton, len(population))
	for i := range population {
		ranked[i] = ScoredAutomaton{Automaton: population[i], Fitness: fitness[i], Index: i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked, nil
}

// Selector picks the parents of the next epoch from a ranked population.
type Selector interface {
	Name() string
	Parents(ranked []ScoredAutomaton, populationSize int) ([]ScoredAutomaton, error)
}

// TruncationSelector keeps the top floor(KeepFraction * populationSize).
type TruncationSelector struct {
	KeepFraction float64
}

func (TruncationSelector) Name() string {
	return "truncation"
}

func (s TruncationSelector) ParentCount(populationSize int) int {
	return int(math.Floor(s.KeepFraction * float64(populationSize)))
}

func (s TruncationSelector) Parents(ranked []ScoredAutomaton, populationSize int) ([]ScoredAutomaton, error) {
	keep := s.ParentCount(populationSize)
	if keep < 1 {
		return nil, fmt.Errorf("%w: keep fraction %.3f of %d automata keeps none", ErrDegenerateSelection, s.KeepFraction, populationSize)
	}
	if keep > len(ranked) {
		return nil, fmt.Errorf("parent count %d exceeds ranked population %d", keep, len(ranked))
	}
	return append([]ScoredAutomaton(nil), ranked[:keep]...), nil
}
