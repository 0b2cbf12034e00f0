package genotype

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"dilemma/internal/model"
)

type TopologySummary struct {
	TotalNodes     int `json:"total_nodes"`
	CooperateNodes int `json:"cooperate_nodes"`
	DefectNodes    int `json:"defect_nodes"`
	SelfLoops      int `json:"self_loops"`
	Unreachable    int `json:"unreachable"`
}

type AutomatonSignature struct {
	Fingerprint string          `json:"fingerprint"`
	Summary     TopologySummary `json:"summary"`
}

func ComputeSignature(a model.Automaton) AutomatonSignature {
	summary := TopologySummary{TotalNodes: len(a.Nodes)}
	parts := make([]string, 0, len(a.Nodes)+1)
	parts = append(parts, fmt.Sprintf("n=%d", len(a.Nodes)))
	for i, node := range a.Nodes {
		switch node.Action {
		case model.Cooperate:
			summary.CooperateNodes++
		case model.Defect:
			summary.DefectNodes++
		}
		if node.OnCooperate == i {
			summary.SelfLoops++
		}
		if node.OnDefect == i {
			summary.SelfLoops++
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", node.Action, node.OnCooperate, node.OnDefect))
	}
	summary.Unreachable = len(a.Nodes) - len(Reachable(a))

	digest := sha1.Sum([]byte(strings.Join(parts, "|")))
	return AutomatonSignature{
		Fingerprint: hex.EncodeToString(digest[:8]),
		Summary:     summary,
	}
}

// Reachable returns the node indexes reachable from the start node, in
// breadth-first order.
func Reachable(a model.Automaton) []int {
	if len(a.Nodes) == 0 {
		return nil
	}
	seen := make([]bool, len(a.Nodes))
	seen[0] = true
	order := []int{0}
	for i := 0; i < len(order); i++ {
		node := a.Nodes[order[i]]
		for _, next := range [2]int{node.OnCooperate, node.OnDefect} {
			if next < 0 || next >= len(a.Nodes) || seen[next] {
				continue
			}
			seen[next] = true
			order = append(order, next)
		}
	}
	return order
}
