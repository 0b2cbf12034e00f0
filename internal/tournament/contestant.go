package tournament

import "dilemma/internal/model"

// Contestant plays one automaton against several opponents at once. The
// automaton is shared and read-only; each opponent slot has its own
// traversal position.
type Contestant struct {
	automaton model.Automaton
	positions []int
}

// NewContestant starts every opponent slot at node 0.
func NewContestant(a model.Automaton, opponents int) *Contestant {
	if opponents < 0 {
		opponents = 0
	}
	return &Contestant{
		automaton: a,
		positions: make([]int, opponents),
	}
}

func (c *Contestant) OpponentCount() int {
	return len(c.positions)
}

// CurrentMoves returns the action for each opponent slot.
func (c *Contestant) CurrentMoves() []model.Action {
	moves := make([]model.Action, len(c.positions))
	for slot, node := range c.positions {
		moves[slot] = c.automaton.ActionAt(node)
	}
	return moves
}

// Advance moves every slot independently along the edge selected by what
// that slot's opponent just played.
func (c *Contestant) Advance(opponentMoves []model.Action) error {
	if len(opponentMoves) != len(c.positions) {
		return shapeErrorf("contestant has %d opponent slots but observed %d moves", len(c.positions), len(opponentMoves))
	}
	for slot, observed := range opponentMoves {
		c.positions[slot] = c.automaton.Transition(c.positions[slot], observed)
	}
	return nil
}

func (c *Contestant) Positions() []int {
	return append([]int(nil), c.positions...)
}
