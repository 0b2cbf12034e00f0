package tournament

import "dilemma/internal/model"

// Payoffs are costs: zero is the best outcome and more negative is worse,
// keeping temptation > reward > punishment > sucker.
const (
	TemptationPayoff = 0
	RewardPayoff     = -10
	PunishmentPayoff = -20
	SuckerPayoff     = -25
)

// Payoff scores one pairing for the player that played mine.
func Payoff(mine, theirs model.Action) int {
	switch {
	case mine == model.Cooperate && theirs == model.Cooperate:
		return RewardPayoff
	case mine == model.Defect && theirs == model.Cooperate:
		return TemptationPayoff
	case mine == model.Cooperate && theirs == model.Defect:
		return SuckerPayoff
	default:
		return PunishmentPayoff
	}
}

// ScoreRound resolves every pairing cell of one round. Row i of the result
// is aligned with my.PlayerMoves(i) and scored against
// opponent.OpponentMoves(i). Pass the same matrix twice for self-play.
func ScoreRound(my, opponent MoveMatrix) (ScoreMatrix, error) {
	scores := make(ScoreMatrix, my.Players())
	for i := range scores {
		mine := my.rows[i]
		theirs, err := opponent.OpponentMoves(i)
		if err != nil {
			return nil, err
		}
		if len(mine) != len(theirs) {
			return nil, shapeErrorf("player %d has %d moves but faces %d opponent moves", i, len(mine), len(theirs))
		}
		row := make([]int, len(mine))
		for j := range mine {
			row[j] = Payoff(mine[j], theirs[j])
		}
		scores[i] = row
	}
	return scores, nil
}
