package model

import "testing"

func TestActionFlipAndString(t *testing.T) {
	if Cooperate.Flip() != Defect || Defect.Flip() != Cooperate {
		t.Fatal("flip must swap cooperate and defect")
	}
	if Action(0).Valid() || Action(3).Valid() {
		t.Fatal("only cooperate and defect are valid actions")
	}
	if Cooperate.String() != "C" || Defect.String() != "D" || Action(7).String() != "Action(7)" {
		t.Fatalf("unexpected strings: %s %s %s", Cooperate, Defect, Action(7))
	}
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"C", "c", "cooperate", "Cooperate"} {
		if a, err := ParseAction(s); err != nil || a != Cooperate {
			t.Fatalf("parse %q: got=%v err=%v want=C", s, a, err)
		}
	}
	for _, s := range []string{"D", "d", "defect", "Defect"} {
		if a, err := ParseAction(s); err != nil || a != Defect {
			t.Fatalf("parse %q: got=%v err=%v want=D", s, a, err)
		}
	}
	if _, err := ParseAction("x"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestAutomatonTransition(t *testing.T) {
	tft := Automaton{Nodes: []Node{
		{Action: Cooperate, OnCooperate: 0, OnDefect: 1},
		{Action: Defect, OnCooperate: 0, OnDefect: 1},
	}}
	if tft.NodeCount() != 2 || tft.ActionAt(1) != Defect {
		t.Fatalf("unexpected table: count=%d action=%s", tft.NodeCount(), tft.ActionAt(1))
	}
	if got := tft.Transition(0, Defect); got != 1 {
		t.Fatalf("unexpected defect transition: got=%d want=1", got)
	}
	if got := tft.Transition(1, Cooperate); got != 0 {
		t.Fatalf("unexpected cooperate transition: got=%d want=0", got)
	}
}
