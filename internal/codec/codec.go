package codec

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dilemma/internal/genotype"
	"dilemma/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// PopulationDocument is the on-disk form of a population. Actions are
// spelled "C" and "D".
type PopulationDocument struct {
	model.VersionedRecord `yaml:",inline"`
	Automata              []AutomatonRecord `yaml:"automata"`
}

type AutomatonRecord struct {
	Name  string       `yaml:"name,omitempty"`
	Nodes []NodeRecord `yaml:"nodes"`
}

type NodeRecord struct {
	Action      string `yaml:"action"`
	OnCooperate int    `yaml:"on_cooperate"`
	OnDefect    int    `yaml:"on_defect"`
}

// NamedAutomaton pairs an automaton with an optional label.
type NamedAutomaton struct {
	Name      string
	Automaton model.Automaton
}

func Named(population []model.Automaton) []NamedAutomaton {
	out := make([]NamedAutomaton, len(population))
	for i, automaton := range population {
		out[i] = NamedAutomaton{Automaton: automaton}
	}
	return out
}

func Automata(named []NamedAutomaton) []model.Automaton {
	out := make([]model.Automaton, len(named))
	for i, item := range named {
		out[i] = item.Automaton
	}
	return out
}

func EncodePopulation(population []NamedAutomaton) ([]byte, error) {
	doc := PopulationDocument{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Automata:        make([]AutomatonRecord, 0, len(population)),
	}
	for i, item := range population {
		if err := genotype.Validate(item.Automaton); err != nil {
			return nil, fmt.Errorf("automaton %d: %w", i, err)
		}
		record := AutomatonRecord{Name: item.Name, Nodes: make([]NodeRecord, len(item.Automaton.Nodes))}
		for j, node := range item.Automaton.Nodes {
			record.Nodes[j] = NodeRecord{
				Action:      node.Action.String(),
				OnCooperate: node.OnCooperate,
				OnDefect:    node.OnDefect,
			}
		}
		doc.Automata = append(doc.Automata, record)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodePopulation parses a population document and validates every
// automaton in it.
func DecodePopulation(data []byte) ([]NamedAutomaton, error) {
	var doc PopulationDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := checkVersion(doc.VersionedRecord); err != nil {
		return nil, err
	}

	out := make([]NamedAutomaton, 0, len(doc.Automata))
	for i, record := range doc.Automata {
		nodes := make([]model.Node, len(record.Nodes))
		for j, node := range record.Nodes {
			action, err := model.ParseAction(node.Action)
			if err != nil {
				return nil, fmt.Errorf("automaton %d node %d: %w: %v", i, j, genotype.ErrInvalidStructure, err)
			}
			nodes[j] = model.Node{Action: action, OnCooperate: node.OnCooperate, OnDefect: node.OnDefect}
		}
		automaton, err := genotype.NewAutomaton(nodes)
		if err != nil {
			return nil, fmt.Errorf("automaton %d: %w", i, err)
		}
		out = append(out, NamedAutomaton{Name: record.Name, Automaton: automaton})
	}
	return out, nil
}

func WritePopulationFile(path string, population []NamedAutomaton) error {
	data, err := EncodePopulation(population)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func ReadPopulationFile(path string) ([]NamedAutomaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	population, err := DecodePopulation(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return population, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
