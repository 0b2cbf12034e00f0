package tournament

import (
	"errors"
	"testing"

	"dilemma/internal/model"
)

func TestContestantStartsAtNodeZero(t *testing.T) {
	c := NewContestant(grimTrigger(), 3)
	if c.OpponentCount() != 3 {
		t.Fatalf("unexpected opponent count: %d", c.OpponentCount())
	}
	for slot, move := range c.CurrentMoves() {
		if move != model.Cooperate {
			t.Fatalf("slot %d: expected cooperate at start, got %s", slot, move)
		}
	}
}

func TestContestantSlotsAdvanceIndependently(t *testing.T) {
	c := NewContestant(titForTat(), 3)
	if err := c.Advance([]model.Action{model.Defect, model.Cooperate, model.Defect}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	got := c.CurrentMoves()
	want := []model.Action{model.Defect, model.Cooperate, model.Defect}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot %d: got=%s want=%s", i, got[i], want[i])
		}
	}
	if err := c.Advance([]model.Action{model.Cooperate, model.Cooperate, model.Defect}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	positions := c.Positions()
	if positions[0] != 0 || positions[1] != 0 || positions[2] != 1 {
		t.Fatalf("unexpected positions: %v", positions)
	}
}

func TestContestantAdvanceRejectsWrongWidth(t *testing.T) {
	c := NewContestant(titForTat(), 2)
	if err := c.Advance([]model.Action{model.Defect}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestContestantSharesAutomatonReadOnly(t *testing.T) {
	a := grimTrigger()
	first := NewContestant(a, 1)
	second := NewContestant(a, 1)
	if err := first.Advance([]model.Action{model.Defect}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if second.CurrentMoves()[0] != model.Cooperate {
		t.Fatal("expected contestants sharing an automaton to keep separate positions")
	}
	if a.Nodes[0].OnDefect != 1 || a.NodeCount() != 2 {
		t.Fatalf("expected automaton unchanged, got %+v", a.Nodes)
	}
}
