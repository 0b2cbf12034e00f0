package genotype

import (
	"errors"
	"fmt"

	"dilemma/internal/model"
)

// ErrInvalidStructure reports a node table that breaks the automaton
// invariants. Bad tables are rejected, never repaired.
var ErrInvalidStructure = errors.New("invalid automaton structure")

// NewAutomaton validates arbitrary node data and returns an automaton that
// owns its own copy of the table.
func NewAutomaton(nodes []model.Node) (model.Automaton, error) {
	a := model.Automaton{Nodes: append([]model.Node(nil), nodes...)}
	if err := Validate(a); err != nil {
		return model.Automaton{}, err
	}
	return a, nil
}

// SeedAutomaton is the single self-looping Cooperate node every random
// strategy starts from before it is mutated.
func SeedAutomaton() model.Automaton {
	return model.Automaton{Nodes: []model.Node{
		{Action: model.Cooperate, OnCooperate: 0, OnDefect: 0},
	}}
}

func Validate(a model.Automaton) error {
	n := len(a.Nodes)
	if n == 0 {
		return fmt.Errorf("%w: automaton has no nodes", ErrInvalidStructure)
	}
	for i, node := range a.Nodes {
		if !node.Action.Valid() {
			return fmt.Errorf("%w: node %d has forbidden action %d", ErrInvalidStructure, i, uint8(node.Action))
		}
		if node.OnCooperate < 0 || node.OnCooperate >= n {
			return fmt.Errorf("%w: node %d cooperate transition %d outside [0,%d)", ErrInvalidStructure, i, node.OnCooperate, n)
		}
		if node.OnDefect < 0 || node.OnDefect >= n {
			return fmt.Errorf("%w: node %d defect transition %d outside [0,%d)", ErrInvalidStructure, i, node.OnDefect, n)
		}
	}
	return nil
}

// ParseRows builds an automaton from compact (action, if_cooperate,
// if_defect) rows where the action is encoded 1 for Cooperate and 2 for
// Defect.
func ParseRows(rows [][3]int) (model.Automaton, error) {
	nodes := make([]model.Node, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, model.Node{
			Action:      model.Action(row[0]),
			OnCooperate: row[1],
			OnDefect:    row[2],
		})
	}
	return NewAutomaton(nodes)
}
