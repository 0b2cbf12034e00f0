package genotype

import "dilemma/internal/model"

func CloneAutomaton(a model.Automaton) model.Automaton {
	return model.Automaton{Nodes: append([]model.Node(nil), a.Nodes...)}
}

func ClonePopulation(population []model.Automaton) []model.Automaton {
	out := make([]model.Automaton, len(population))
	for i, a := range population {
		out[i] = CloneAutomaton(a)
	}
	return out
}

// Equal reports whether two automata have identical node tables.
func Equal(a, b model.Automaton) bool {
	if len(a.Nodes) != len(b.Nodes) {
		return false
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			return false
		}
	}
	return true
}
