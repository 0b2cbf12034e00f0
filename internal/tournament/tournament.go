package tournament

import (
	"errors"
	"fmt"

	"dilemma/internal/model"
)

// ScoreMatrix accumulates payoff per (player, opponent slot) cell.
type ScoreMatrix [][]int

func NewScoreMatrix(players, opponents int) ScoreMatrix {
	s := make(ScoreMatrix, players)
	for i := range s {
		s[i] = make([]int, opponents)
	}
	return s
}

// RowSums is the fitness of every player: its payoff summed over all
// opponent slots.
func (s ScoreMatrix) RowSums() []float64 {
	out := make([]float64, len(s))
	for i, row := range s {
		total := 0
		for _, v := range row {
			total += v
		}
		out[i] = float64(total)
	}
	return out
}

// ColumnSums totals each opponent slot across players. In cross play this
// is what every member of the other group conceded.
func (s ScoreMatrix) ColumnSums() []float64 {
	if len(s) == 0 {
		return nil
	}
	out := make([]float64, len(s[0]))
	for _, row := range s {
		for j, v := range row {
			out[j] += float64(v)
		}
	}
	return out
}

func newContestants(group []model.Automaton, opponents int) []*Contestant {
	out := make([]*Contestant, len(group))
	for i, a := range group {
		out[i] = NewContestant(a, opponents)
	}
	return out
}

func collectMoves(contestants []*Contestant, selfPlay bool) (MoveMatrix, error) {
	rows := make([][]model.Action, len(contestants))
	for i, c := range contestants {
		rows[i] = c.CurrentMoves()
	}
	return NewMoveMatrix(rows, selfPlay)
}

// advanceAll reads every opponent view from the round's matrix before any
// contestant moves, so each advance sees the same round.
func advanceAll(contestants []*Contestant, observed MoveMatrix) error {
	views := make([][]model.Action, len(contestants))
	for i := range contestants {
		view, err := observed.OpponentMoves(i)
		if err != nil {
			return err
		}
		views[i] = view
	}
	for i, c := range contestants {
		if err := c.Advance(views[i]); err != nil {
			return fmt.Errorf("advance contestant %d: %w", i, err)
		}
	}
	return nil
}

// SelfPlay runs a round robin of the population against itself. Every
// (player, slot) cell scores only while its own budget in schedule lasts;
// play continues until the longest budget is spent.
func SelfPlay(population []model.Automaton, schedule RoundSchedule) (ScoreMatrix, error) {
	n := len(population)
	if n == 0 {
		return nil, errors.New("self-play requires at least one automaton")
	}
	if err := schedule.checkShape(n, n-1); err != nil {
		return nil, err
	}

	contestants := newContestants(population, n-1)
	total := NewScoreMatrix(n, n-1)
	rounds := schedule.Max()
	for r := 0; r < rounds; r++ {
		moves, err := collectMoves(contestants, true)
		if err != nil {
			return nil, err
		}
		scores, err := ScoreRound(moves, moves)
		if err != nil {
			return nil, err
		}
		for i, row := range scores {
			for j, v := range row {
				if r < schedule[i][j] {
					total[i][j] += v
				}
			}
		}
		if err := advanceAll(contestants, moves); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// CrossPlay pits two disjoint groups against each other for a fixed number
// of rounds. It returns both sides' score tables: a is len(groupA) x
// len(groupB) and b is len(groupB) x len(groupA).
func CrossPlay(groupA, groupB []model.Automaton, rounds int) (ScoreMatrix, ScoreMatrix, error) {
	if len(groupA) == 0 || len(groupB) == 0 {
		return nil, nil, errors.New("cross play requires two non-empty groups")
	}
	if rounds < 0 {
		return nil, nil, fmt.Errorf("rounds must be >= 0, got %d", rounds)
	}

	contestantsA := newContestants(groupA, len(groupB))
	contestantsB := newContestants(groupB, len(groupA))
	a := NewScoreMatrix(len(groupA), len(groupB))
	b := NewScoreMatrix(len(groupB), len(groupA))
	for r := 0; r < rounds; r++ {
		movesA, err := collectMoves(contestantsA, false)
		if err != nil {
			return nil, nil, err
		}
		movesB, err := collectMoves(contestantsB, false)
		if err != nil {
			return nil, nil, err
		}
		roundA, err := ScoreRound(movesA, movesB)
		if err != nil {
			return nil, nil, err
		}
		roundB, err := ScoreRound(movesB, movesA)
		if err != nil {
			return nil, nil, err
		}
		accumulate(a, roundA)
		accumulate(b, roundB)

		if err := advanceAll(contestantsA, movesB); err != nil {
			return nil, nil, err
		}
		if err := advanceAll(contestantsB, movesA); err != nil {
			return nil, nil, err
		}
	}
	return a, b, nil
}

func accumulate(total, round ScoreMatrix) {
	for i, row := range round {
		for j, v := range row {
			total[i][j] += v
		}
	}
}
