package evo

import (
	"context"

	"dilemma/internal/model"
)

// Operator is a pure transformation: it returns a new automaton and never
// edits the node table it was given.
type Operator interface {
	Name() string
	Apply(ctx context.Context, automaton model.Automaton) (model.Automaton, error)
}
