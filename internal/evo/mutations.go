package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"dilemma/internal/genotype"
	"dilemma/internal/model"
)

var (
	ErrNoNodes       = errors.New("automaton has no nodes")
	ErrRandomMissing = errors.New("random source is required")
)

// seedMutationPasses is how many structural passes turn the single-node
// seed into a fresh random strategy.
const seedMutationPasses = 3

func checkOperand(rng *rand.Rand, automaton model.Automaton) error {
	if rng == nil {
		return ErrRandomMissing
	}
	if len(automaton.Nodes) == 0 {
		return ErrNoNodes
	}
	return nil
}

// FlipAction toggles the action of one random node.
type FlipAction struct {
	Rand *rand.Rand
}

func (o *FlipAction) Name() string {
	return "flip_action"
}

func (o *FlipAction) Apply(_ context.Context, automaton model.Automaton) (model.Automaton, error) {
	if err := checkOperand(o.Rand, automaton); err != nil {
		return model.Automaton{}, err
	}
	out := genotype.CloneAutomaton(automaton)
	idx := o.Rand.Intn(len(out.Nodes))
	out.Nodes[idx].Action = out.Nodes[idx].Action.Flip()
	return out, nil
}

// RewireOnCooperate points one random node's cooperate edge at a random node.
type RewireOnCooperate struct {
	Rand *rand.Rand
}

func (o *RewireOnCooperate) Name() string {
	return "rewire_on_cooperate"
}

func (o *RewireOnCooperate) Apply(_ context.Context, automaton model.Automaton) (model.Automaton, error) {
	if err := checkOperand(o.Rand, automaton); err != nil {
		return model.Automaton{}, err
	}
	out := genotype.CloneAutomaton(automaton)
	idx := o.Rand.Intn(len(out.Nodes))
	out.Nodes[idx].OnCooperate = o.Rand.Intn(len(out.Nodes))
	return out, nil
}

// RewireOnDefect points one random node's defect edge at a random node.
type RewireOnDefect struct {
	Rand *rand.Rand
}

func (o *RewireOnDefect) Name() string {
	return "rewire_on_defect"
}

func (o *RewireOnDefect) Apply(_ context.Context, automaton model.Automaton) (model.Automaton, error) {
	if err := checkOperand(o.Rand, automaton); err != nil {
		return model.Automaton{}, err
	}
	out := genotype.CloneAutomaton(automaton)
	idx := o.Rand.Intn(len(out.Nodes))
	out.Nodes[idx].OnDefect = o.Rand.Intn(len(out.Nodes))
	return out, nil
}

// AddNode appends a node with a random action and random edges into the
// existing table, then forces one random cooperate edge and one random
// defect edge onto it so the new node is always referenced. The forced
// edges may overwrite edges other nodes relied on.
type AddNode struct {
	Rand *rand.Rand
}

func (o *AddNode) Name() string {
	return "add_node"
}

func (o *AddNode) Apply(_ context.Context, automaton model.Automaton) (model.Automaton, error) {
	if err := checkOperand(o.Rand, automaton); err != nil {
		return model.Automaton{}, err
	}
	out := genotype.CloneAutomaton(automaton)
	existing := len(out.Nodes)
	action := model.Cooperate
	if o.Rand.Intn(2) == 1 {
		action = model.Defect
	}
	out.Nodes = append(out.Nodes, model.Node{
		Action:      action,
		OnCooperate: o.Rand.Intn(existing),
		OnDefect:    o.Rand.Intn(existing),
	})

	added := len(out.Nodes) - 1
	out.Nodes[o.Rand.Intn(len(out.Nodes))].OnCooperate = added
	out.Nodes[o.Rand.Intn(len(out.Nodes))].OnDefect = added
	return out, nil
}

// RemoveNode deletes one random node and renumbers the table: edges above
// the removed index shift down by one and edges that pointed at it are sent
// to a random surviving node. A single-node automaton is left unchanged.
type RemoveNode struct {
	Rand *rand.Rand
}

func (o *RemoveNode) Name() string {
	return "remove_node"
}

func (o *RemoveNode) Apply(_ context.Context, automaton model.Automaton) (model.Automaton, error) {
	if err := checkOperand(o.Rand, automaton); err != nil {
		return model.Automaton{}, err
	}
	if len(automaton.Nodes) == 1 {
		return genotype.CloneAutomaton(automaton), nil
	}

	removed := o.Rand.Intn(len(automaton.Nodes))
	remaining := len(automaton.Nodes) - 1
	renumber := func(target int) int {
		switch {
		case target == removed:
			return o.Rand.Intn(remaining)
		case target > removed:
			return target - 1
		default:
			return target
		}
	}

	nodes := make([]model.Node, 0, remaining)
	for i, node := range automaton.Nodes {
		if i == removed {
			continue
		}
		nodes = append(nodes, model.Node{
			Action:      node.Action,
			OnCooperate: renumber(node.OnCooperate),
			OnDefect:    renumber(node.OnDefect),
		})
	}
	return model.Automaton{Nodes: nodes}, nil
}

// SwapNodes exchanges two whole node records by position. Edges elsewhere
// keep their indexes, so they now lead to whatever record moved into that
// slot; this is a behavioral change, not a relabeling.
type SwapNodes struct {
	Rand *rand.Rand
}

func (o *SwapNodes) Name() string {
	return "swap_nodes"
}

func (o *SwapNodes) Apply(_ context.Context, automaton model.Automaton) (model.Automaton, error) {
	if err := checkOperand(o.Rand, automaton); err != nil {
		return model.Automaton{}, err
	}
	out := genotype.CloneAutomaton(automaton)
	i := o.Rand.Intn(len(out.Nodes))
	j := o.Rand.Intn(len(out.Nodes))
	out.Nodes[i], out.Nodes[j] = out.Nodes[j], out.Nodes[i]
	return out, nil
}

// MutationRates holds the independent per-call probability of each
// structural operator.
type MutationRates struct {
	FlipAction        float64 `json:"flip_action" yaml:"flip_action"`
	RewireOnCooperate float64 `json:"rewire_on_cooperate" yaml:"rewire_on_cooperate"`
	RewireOnDefect    float64 `json:"rewire_on_defect" yaml:"rewire_on_defect"`
	AddNode           float64 `json:"add_node" yaml:"add_node"`
	RemoveNode        float64 `json:"remove_node" yaml:"remove_node"`
	SwapNodes         float64 `json:"swap_nodes" yaml:"swap_nodes"`
}

func DefaultMutationRates() MutationRates {
	return MutationRates{
		FlipAction:        0.35,
		RewireOnCooperate: 0.35,
		RewireOnDefect:    0.35,
		AddNode:           0.2,
		RemoveNode:        0.15,
		SwapNodes:         0.2,
	}
}

func (r MutationRates) Validate() error {
	for name, p := range map[string]float64{
		"flip_action":         r.FlipAction,
		"rewire_on_cooperate": r.RewireOnCooperate,
		"rewire_on_defect":    r.RewireOnDefect,
		"add_node":            r.AddNode,
		"remove_node":         r.RemoveNode,
		"swap_nodes":          r.SwapNodes,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("mutation rate %s must be in [0,1], got %f", name, p)
		}
	}
	return nil
}

type weightedOperator struct {
	operator    Operator
	probability float64
}

// StructuralMutation is one mutate() pass: each operator fires on its own
// coin flip, always in the order flip, rewire cooperate, rewire defect,
// add, remove, swap. Later operators sample from the node count left by
// earlier ones. The result is validated before it is returned.
type StructuralMutation struct {
	rng   *rand.Rand
	steps []weightedOperator
}

func NewStructuralMutation(rng *rand.Rand, rates MutationRates) (*StructuralMutation, error) {
	if rng == nil {
		return nil, ErrRandomMissing
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &StructuralMutation{
		rng: rng,
		steps: []weightedOperator{
			{operator: &FlipAction{Rand: rng}, probability: rates.FlipAction},
			{operator: &RewireOnCooperate{Rand: rng}, probability: rates.RewireOnCooperate},
			{operator: &RewireOnDefect{Rand: rng}, probability: rates.RewireOnDefect},
			{operator: &AddNode{Rand: rng}, probability: rates.AddNode},
			{operator: &RemoveNode{Rand: rng}, probability: rates.RemoveNode},
			{operator: &SwapNodes{Rand: rng}, probability: rates.SwapNodes},
		},
	}, nil
}

func (m *StructuralMutation) Name() string {
	return "structural"
}

func (m *StructuralMutation) Apply(ctx context.Context, automaton model.Automaton) (model.Automaton, error) {
	out, _, err := m.Mutate(ctx, automaton)
	return out, err
}

// Mutate runs one pass and also reports which operators fired.
func (m *StructuralMutation) Mutate(ctx context.Context, automaton model.Automaton) (model.Automaton, []string, error) {
	out := genotype.CloneAutomaton(automaton)
	var applied []string
	for _, step := range m.steps {
		if m.rng.Float64() >= step.probability {
			continue
		}
		next, err := step.operator.Apply(ctx, out)
		if err != nil {
			return model.Automaton{}, nil, fmt.Errorf("%s: %w", step.operator.Name(), err)
		}
		out = next
		applied = append(applied, step.operator.Name())
	}
	if err := genotype.Validate(out); err != nil {
		return model.Automaton{}, nil, fmt.Errorf("after %v: %w", applied, err)
	}
	recordMutations(ctx, applied)
	return out, applied, nil
}

// NewRandomAutomaton mutates the single-node seed three times.
func NewRandomAutomaton(ctx context.Context, mutation Operator) (model.Automaton, error) {
	out := genotype.SeedAutomaton()
	for i := 0; i < seedMutationPasses; i++ {
		next, err := mutation.Apply(ctx, out)
		if err != nil {
			return model.Automaton{}, fmt.Errorf("seed mutation %d: %w", i+1, err)
		}
		out = next
	}
	return out, nil
}

// MutatedClone copies source and applies passes mutation passes to the copy.
func MutatedClone(ctx context.Context, source model.Automaton, mutation Operator, passes int) (model.Automaton, error) {
	out := genotype.CloneAutomaton(source)
	for i := 0; i < passes; i++ {
		next, err := mutation.Apply(ctx, out)
		if err != nil {
			return model.Automaton{}, err
		}
		out = next
	}
	return out, nil
}
