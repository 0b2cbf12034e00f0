package tournament

import (
	"errors"
	"fmt"
	"math/rand"
)

// RoundSchedule holds the round budget of every (player, opponent slot)
// cell. A cell stops scoring once its budget is spent even though play
// continues for the longest budget.
type RoundSchedule [][]int

func FixedRounds(players, opponents, rounds int) RoundSchedule {
	s := make(RoundSchedule, players)
	for i := range s {
		row := make([]int, opponents)
		for j := range row {
			row[j] = rounds
		}
		s[i] = row
	}
	return s
}

// RandomRounds draws each cell independently and uniformly from
// [minRounds, maxRounds). The two sides of one pairing draw separately.
func RandomRounds(rng *rand.Rand, players, opponents, minRounds, maxRounds int) (RoundSchedule, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if minRounds < 0 || maxRounds <= minRounds {
		return nil, fmt.Errorf("invalid round bounds [%d, %d)", minRounds, maxRounds)
	}
	s := make(RoundSchedule, players)
	for i := range s {
		row := make([]int, opponents)
		for j := range row {
			row[j] = minRounds + rng.Intn(maxRounds-minRounds)
		}
		s[i] = row
	}
	return s, nil
}

func (s RoundSchedule) Max() int {
	longest := 0
	for _, row := range s {
		for _, rounds := range row {
			if rounds > longest {
				longest = rounds
			}
		}
	}
	return longest
}

func (s RoundSchedule) checkShape(players, opponents int) error {
	if len(s) != players {
		return shapeErrorf("schedule has %d rows for %d players", len(s), players)
	}
	for i, row := range s {
		if len(row) != opponents {
			return shapeErrorf("schedule row %d has %d cells for %d opponents", i, len(row), opponents)
		}
	}
	return nil
}
