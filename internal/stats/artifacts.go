package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"dilemma/internal/model"
)

const runIndexFile = "run_index.json"

type RunConfig struct {
	RunID           string  `json:"run_id"`
	PopulationSize  int     `json:"population_size"`
	Epochs          int     `json:"epochs"`
	Seed            int64   `json:"seed"`
	MinRounds       int     `json:"min_rounds"`
	MaxRounds       int     `json:"max_rounds"`
	KeepFraction    float64 `json:"keep_fraction"`
	MutationPasses  int     `json:"mutation_passes"`
	PassPolicy      string  `json:"mutation_pass_policy"`
	Benchmark       bool    `json:"benchmark"`
	BenchmarkRounds int     `json:"benchmark_rounds"`
}

type RunArtifacts struct {
	Config           RunConfig
	BestByEpoch      []float64
	FinalBestFitness float64
	Diagnostics      []model.EpochDiagnostics
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	PopulationSize   int     `json:"population_size"`
	Epochs           int     `json:"epochs"`
	Seed             int64   `json:"seed"`
	Interrupted      bool    `json:"interrupted"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes one directory per run under baseDir and returns
// its path.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), map[string]any{"best_by_epoch": artifacts.BestByEpoch, "final_best_fitness": artifacts.FinalBestFitness}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "epoch_diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}

	return runDir, nil
}

func ReadEpochDiagnostics(baseDir, runID string) ([]model.EpochDiagnostics, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, "epoch_diagnostics.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var diagnostics []model.EpochDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, false, err
	}
	return diagnostics, true, nil
}

// AppendRunIndex adds entry to the index in baseDir, replacing any entry
// with the same run id.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := readRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	entries, err := readRunIndex(baseDir)
	if err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Later appends win ties.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// readRunIndex returns the index in append order.
func readRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
