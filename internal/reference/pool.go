// Package reference holds the fixed benchmark strategies evolved
// populations are measured against. They come from the two-state strategy
// catalogue in "Forgiver Triumphs in Alternating Prisoner's Dilemma"
// (Zagorsky et al.).
package reference

import (
	"fmt"

	"dilemma/internal/genotype"
	"dilemma/internal/model"
)

type Strategy struct {
	Name      string
	Automaton model.Automaton
}

// Rows are (action, if_cooperate, if_defect) with 1 = Cooperate, 2 = Defect.
var catalogue = []struct {
	name string
	rows [][3]int
}{
	{"S4", [][3]int{{2, 0, 1}, {1, 1, 0}}},
	{"S8", [][3]int{{2, 1, 0}, {1, 1, 0}}},
	{"S12", [][3]int{{2, 1, 1}, {1, 1, 0}}},
	{"S14", [][3]int{{1, 0, 1}, {2, 0, 0}}},
	{"S15", [][3]int{{1, 0, 1}, {2, 0, 1}}},
	{"S16", [][3]int{{1, 0, 1}, {2, 1, 0}}},
	{"S17", [][3]int{{1, 0, 1}, {2, 1, 1}}},
	{"S21", [][3]int{{1, 1, 0}, {2, 1, 1}}},
	{"S25", [][3]int{{1, 1, 1}, {2, 0, 0}}},
	{"S10", [][3]int{{2, 1, 1}, {1, 0, 0}}},
}

// Strategies returns fresh copies of the catalogue in its fixed order.
func Strategies() []Strategy {
	out := make([]Strategy, 0, len(catalogue))
	for _, entry := range catalogue {
		a, err := genotype.ParseRows(entry.rows)
		if err != nil {
			panic(fmt.Sprintf("reference strategy %s: %v", entry.name, err))
		}
		out = append(out, Strategy{Name: entry.name, Automaton: a})
	}
	return out
}

// Pool returns the benchmark automata in catalogue order.
func Pool() []model.Automaton {
	strategies := Strategies()
	out := make([]model.Automaton, len(strategies))
	for i, s := range strategies {
		out[i] = s.Automaton
	}
	return out
}
