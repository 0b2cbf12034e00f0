package evo

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"dilemma/internal/genotype"
	"dilemma/internal/model"
)

func identityMutation(t *testing.T, rng *rand.Rand) *StructuralMutation {
	t.Helper()
	mutation, err := NewStructuralMutation(rng, MutationRates{})
	if err != nil {
		t.Fatalf("new mutation: %v", err)
	}
	return mutation
}

func TestOffspringPadsRemainderInRankOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	parents := []ScoredAutomaton{
		{Automaton: alwaysDefect(), Fitness: -1, Index: 2},
		{Automaton: alwaysCooperate(), Fitness: -2, Index: 0},
		{Automaton: titForTat(), Fitness: -3, Index: 1},
	}
	r := Reproduction{Rand: rng, Mutation: identityMutation(t, rng)}
	next, err := r.Offspring(context.Background(), parents, 11, 0)
	if err != nil {
		t.Fatalf("offspring: %v", err)
	}
	if len(next) != 11 {
		t.Fatalf("unexpected population size: got=%d want=11", len(next))
	}

	counts := map[string]int{}
	for _, automaton := range next {
		counts[genotype.ComputeSignature(automaton).Fingerprint]++
	}
	// 11 / 3 = 3 each, and the two leftover slots go to the first two
	// parents by rank.
	want := map[string]int{
		genotype.ComputeSignature(alwaysDefect()).Fingerprint:    4,
		genotype.ComputeSignature(alwaysCooperate()).Fingerprint: 4,
		genotype.ComputeSignature(titForTat()).Fingerprint:       3,
	}
	for fingerprint, n := range want {
		if counts[fingerprint] != n {
			t.Fatalf("unexpected offspring count for %s: got=%d want=%d", fingerprint, counts[fingerprint], n)
		}
	}
}

func TestOffspringKeepsUnmutatedCloneOfEveryParent(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	mutation, err := NewStructuralMutation(rng, MutationRates{FlipAction: 1, AddNode: 1})
	if err != nil {
		t.Fatalf("new mutation: %v", err)
	}
	parents := []ScoredAutomaton{
		{Automaton: titForTat()},
		{Automaton: alwaysDefect()},
	}
	next, err := Reproduction{Rand: rng, Mutation: mutation}.Offspring(context.Background(), parents, 10, 0)
	if err != nil {
		t.Fatalf("offspring: %v", err)
	}
	for _, parent := range parents {
		found := 0
		for _, automaton := range next {
			if genotype.Equal(automaton, parent.Automaton) {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("expected exactly one unmutated clone of %+v, got=%d", parent.Automaton.Nodes, found)
		}
	}
	for _, automaton := range next {
		mustValid(t, automaton)
	}
}

func TestOffspringDoesNotAliasParents(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	parent := titForTat()
	next, err := Reproduction{Rand: rng, Mutation: identityMutation(t, rng)}.Offspring(
		context.Background(), []ScoredAutomaton{{Automaton: parent}}, 3, 0)
	if err != nil {
		t.Fatalf("offspring: %v", err)
	}
	next[0].Nodes[0].Action = model.Defect
	if parent.Nodes[0].Action != model.Cooperate {
		t.Fatal("offspring shares node storage with its parent")
	}
}

func TestOffspringRequiresParents(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Reproduction{Rand: rng, Mutation: identityMutation(t, rng)}.Offspring(context.Background(), nil, 4, 0)
	if !errors.Is(err, ErrDegenerateSelection) {
		t.Fatalf("expected ErrDegenerateSelection, got %v", err)
	}
}
