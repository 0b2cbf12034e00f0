package tournament

import (
	"errors"
	"testing"

	"dilemma/internal/model"
)

func TestPayoffLiterals(t *testing.T) {
	cases := []struct {
		mine, theirs model.Action
		want         int
	}{
		{model.Cooperate, model.Cooperate, -10},
		{model.Defect, model.Cooperate, 0},
		{model.Cooperate, model.Defect, -25},
		{model.Defect, model.Defect, -20},
	}
	for _, tc := range cases {
		if got := Payoff(tc.mine, tc.theirs); got != tc.want {
			t.Fatalf("unexpected payoff mine=%s theirs=%s: got=%d want=%d", tc.mine, tc.theirs, got, tc.want)
		}
	}
}

func TestPayoffOrdering(t *testing.T) {
	if !(TemptationPayoff > RewardPayoff && RewardPayoff > PunishmentPayoff && PunishmentPayoff > SuckerPayoff) {
		t.Fatal("expected temptation > reward > punishment > sucker")
	}
}

func TestScoreRoundSymmetricPairing(t *testing.T) {
	moves, err := NewMoveMatrix([][]model.Action{{model.Cooperate}, {model.Defect}}, true)
	if err != nil {
		t.Fatalf("new move matrix: %v", err)
	}
	scores, err := ScoreRound(moves, moves)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}
	if scores[0][0] != -25 || scores[1][0] != 0 {
		t.Fatalf("unexpected scores: %v", scores)
	}
}

func TestScoreRoundRejectsMisalignedGroups(t *testing.T) {
	a, err := NewMoveMatrix([][]model.Action{{model.Cooperate, model.Cooperate}}, false)
	if err != nil {
		t.Fatalf("new move matrix a: %v", err)
	}
	b, err := NewMoveMatrix([][]model.Action{{model.Cooperate}}, false)
	if err != nil {
		t.Fatalf("new move matrix b: %v", err)
	}
	if _, err := ScoreRound(a, b); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}
