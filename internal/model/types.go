package model

import (
	"fmt"
	"time"
)

// VersionedRecord captures schema and codec evolution for persisted documents.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version" yaml:"schema_version"`
	CodecVersion  int `json:"codec_version" yaml:"codec_version"`
}

// Action is the move a strategy plays against one opponent in one round.
// The zero value is not a valid action.
type Action uint8

const (
	Cooperate Action = iota + 1
	Defect
)

func (a Action) Valid() bool {
	return a == Cooperate || a == Defect
}

// Flip returns the opposite action.
func (a Action) Flip() Action {
	switch a {
	case Cooperate:
		return Defect
	case Defect:
		return Cooperate
	default:
		return a
	}
}

func (a Action) String() string {
	switch a {
	case Cooperate:
		return "C"
	case Defect:
		return "D"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// ParseAction accepts the short and long spellings of an action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "C", "c", "cooperate", "Cooperate":
		return Cooperate, nil
	case "D", "d", "defect", "Defect":
		return Defect, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// Node is one automaton state: the action it emits and where it goes next
// depending on what the opponent just played.
type Node struct {
	Action      Action `json:"action"`
	OnCooperate int    `json:"on_cooperate"`
	OnDefect    int    `json:"on_defect"`
}

// Automaton is a finite-state strategy stored as a dense node table.
// Traversal state is kept by the caller; the table itself is read-only
// while a tournament runs.
type Automaton struct {
	Nodes []Node `json:"nodes"`
}

func (a Automaton) NodeCount() int {
	return len(a.Nodes)
}

func (a Automaton) ActionAt(node int) Action {
	return a.Nodes[node].Action
}

// Transition returns the next node after observing the opponent's action.
func (a Automaton) Transition(node int, observed Action) int {
	if observed == Cooperate {
		return a.Nodes[node].OnCooperate
	}
	return a.Nodes[node].OnDefect
}

type Summary struct {
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
}

type EpochDiagnostics struct {
	Epoch                int           `json:"epoch"`
	Fitness              Summary       `json:"fitness"`
	Benchmark            *Summary      `json:"benchmark,omitempty"`
	BestFitness          float64       `json:"best_fitness"`
	FingerprintDiversity int           `json:"fingerprint_diversity"`
	MeanNodeCount        float64       `json:"mean_node_count"`
	MaxNodeCount         int           `json:"max_node_count"`
	ParentCount          int           `json:"parent_count"`
	Duration             time.Duration `json:"duration"`
}
