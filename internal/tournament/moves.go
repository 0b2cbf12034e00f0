package tournament

import (
	"errors"
	"fmt"

	"dilemma/internal/model"
)

// ErrShapeMismatch means move or score vectors disagree about how many
// opponents a player faces. It signals a composition bug and is never
// recoverable.
var ErrShapeMismatch = errors.New("shape mismatch")

func shapeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}

// MoveMatrix holds the actions of one round. Row i is player i's action
// against each of its opponent slots.
//
// In self-play the group faces itself: the table is N x (N-1) and slot j of
// player i is the j-th other player in population order, skipping i. In
// cross play the table is N x M and slot k is the k-th member of the other
// group.
type MoveMatrix struct {
	rows     [][]model.Action
	selfPlay bool
}

func NewMoveMatrix(rows [][]model.Action, selfPlay bool) (MoveMatrix, error) {
	copied := make([][]model.Action, len(rows))
	for i, row := range rows {
		switch {
		case selfPlay && len(row) != len(rows)-1:
			return MoveMatrix{}, shapeErrorf("self-play row %d has %d moves, want %d", i, len(row), len(rows)-1)
		case !selfPlay && len(row) != len(rows[0]):
			return MoveMatrix{}, shapeErrorf("row %d has %d moves, want %d", i, len(row), len(rows[0]))
		}
		copied[i] = append([]model.Action(nil), row...)
	}
	return MoveMatrix{rows: copied, selfPlay: selfPlay}, nil
}

func (m MoveMatrix) Players() int {
	return len(m.rows)
}

// PlayerMoves is row i: what player i played against each opponent.
func (m MoveMatrix) PlayerMoves(i int) []model.Action {
	return append([]model.Action(nil), m.rows[i]...)
}

// OpponentMoves is what every opponent relationship played against player
// i, aligned slot for slot with player i's own moves. In self-play it is
// the column of i with i's own row excluded; in cross play it is column i
// of this group's table.
func (m MoveMatrix) OpponentMoves(i int) ([]model.Action, error) {
	if !m.selfPlay {
		out := make([]model.Action, len(m.rows))
		for k, row := range m.rows {
			if i < 0 || i >= len(row) {
				return nil, shapeErrorf("column %d outside row %d of width %d", i, k, len(row))
			}
			out[k] = row[i]
		}
		return out, nil
	}

	if i < 0 || i >= len(m.rows) {
		return nil, shapeErrorf("player %d outside self-play group of %d", i, len(m.rows))
	}
	out := make([]model.Action, 0, len(m.rows)-1)
	for opponent := range m.rows {
		if opponent == i {
			continue
		}
		out = append(out, m.rows[opponent][slotOf(i, opponent)])
	}
	return out, nil
}

// slotOf is the slot player occupies in opponent's row.
func slotOf(player, opponent int) int {
	if player < opponent {
		return player
	}
	return player - 1
}
