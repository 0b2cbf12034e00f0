package evo

import (
	"math/rand"
	"testing"

	"dilemma/internal/genotype"
	"dilemma/internal/model"
)

func alwaysCooperate() model.Automaton {
	return model.Automaton{Nodes: []model.Node{{Action: model.Cooperate}}}
}

func alwaysDefect() model.Automaton {
	return model.Automaton{Nodes: []model.Node{{Action: model.Defect}}}
}

func titForTat() model.Automaton {
	return model.Automaton{Nodes: []model.Node{
		{Action: model.Cooperate, OnCooperate: 0, OnDefect: 1},
		{Action: model.Defect, OnCooperate: 0, OnDefect: 1},
	}}
}

// randomAutomaton builds a valid automaton with n nodes without going
// through the mutation operators under test.
func randomAutomaton(rng *rand.Rand, n int) model.Automaton {
	nodes := make([]model.Node, n)
	for i := range nodes {
		action := model.Cooperate
		if rng.Intn(2) == 1 {
			action = model.Defect
		}
		nodes[i] = model.Node{Action: action, OnCooperate: rng.Intn(n), OnDefect: rng.Intn(n)}
	}
	return model.Automaton{Nodes: nodes}
}

func mustValid(t *testing.T, automaton model.Automaton) {
	t.Helper()
	if err := genotype.Validate(automaton); err != nil {
		t.Fatalf("invalid automaton %+v: %v", automaton.Nodes, err)
	}
}
