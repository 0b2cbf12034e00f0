package evo

import (
	"fmt"
	"math"
	"math/rand"

	"dilemma/internal/model"
)

// MutationPassPolicy decides how many mutate() passes an offspring gets.
type MutationPassPolicy interface {
	Name() string
	MutationCount(automaton model.Automaton, epoch int, rng *rand.Rand) (int, error)
}

type ConstMutationPasses struct {
	Count int
}

func (ConstMutationPasses) Name() string {
	return "const"
}

func (p ConstMutationPasses) MutationCount(_ model.Automaton, _ int, _ *rand.Rand) (int, error) {
	if p.Count <= 0 {
		return 0, fmt.Errorf("const mutation pass count must be > 0")
	}
	return p.Count, nil
}

// NodeCountLinearMutationPasses scales passes with automaton size.
type NodeCountLinearMutationPasses struct {
	Multiplier float64
	MaxCount   int
}

func (NodeCountLinearMutationPasses) Name() string {
	return "ncount_linear"
}

func (p NodeCountLinearMutationPasses) MutationCount(automaton model.Automaton, _ int, _ *rand.Rand) (int, error) {
	if p.Multiplier <= 0 {
		return 0, fmt.Errorf("linear multiplier must be > 0")
	}
	count := int(math.Round(float64(automaton.NodeCount()) * p.Multiplier))
	if count < 1 {
		count = 1
	}
	if p.MaxCount > 0 && count > p.MaxCount {
		count = p.MaxCount
	}
	return count, nil
}

// MutationPassPolicyFromConfig resolves a policy by name. count applies to
// "const"; multiplier and maxCount apply to "ncount_linear".
func MutationPassPolicyFromConfig(name string, count int, multiplier float64, maxCount int) (MutationPassPolicy, error) {
	switch name {
	case "", "const":
		if count <= 0 {
			return nil, fmt.Errorf("mutation pass count must be > 0 for const policy")
		}
		return ConstMutationPasses{Count: count}, nil
	case "ncount_linear":
		if multiplier <= 0 {
			return nil, fmt.Errorf("mutation pass multiplier must be > 0 for ncount_linear policy")
		}
		if maxCount < 0 {
			return nil, fmt.Errorf("mutation pass max must be >= 0")
		}
		return NodeCountLinearMutationPasses{Multiplier: multiplier, MaxCount: maxCount}, nil
	default:
		return nil, fmt.Errorf("unsupported mutation pass policy: %s", name)
	}
}
