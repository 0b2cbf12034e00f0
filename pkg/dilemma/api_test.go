package dilemma

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func smallRunRequest() RunRequest {
	req := DefaultRunRequest()
	req.Population = 10
	req.MinRounds = 3
	req.MaxRounds = 8
	req.BenchmarkRounds = 5
	req.Seed = 7
	return req
}

func TestEvolveBoundedRun(t *testing.T) {
	req := smallRunRequest()
	req.Epochs = 3
	var seen []EpochReport
	req.OnEpoch = func(report EpochReport) {
		seen = append(seen, report)
	}

	summary, err := New(Options{}).Evolve(context.Background(), req)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if _, err := uuid.Parse(summary.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %q", summary.RunID)
	}
	if summary.Epochs != 3 || summary.Interrupted {
		t.Fatalf("unexpected run state: epochs=%d interrupted=%t", summary.Epochs, summary.Interrupted)
	}
	if len(summary.Population) != 10 {
		t.Fatalf("unexpected population size: got=%d want=10", len(summary.Population))
	}
	if len(seen) != 3 || len(summary.Diagnostics) != 3 || len(summary.BestByEpoch) != 3 {
		t.Fatalf("unexpected epoch records: reports=%d diagnostics=%d best=%d", len(seen), len(summary.Diagnostics), len(summary.BestByEpoch))
	}
	for i, report := range seen {
		if report.RunID != summary.RunID {
			t.Fatalf("report %d has run id %q want %q", i, report.RunID, summary.RunID)
		}
		if report.Diagnostics.Epoch != i+1 {
			t.Fatalf("unexpected epoch number: got=%d want=%d", report.Diagnostics.Epoch, i+1)
		}
		if report.Diagnostics.Benchmark == nil {
			t.Fatalf("epoch %d is missing the benchmark summary", i+1)
		}
		if report.ChampionFitness != report.Diagnostics.BestFitness {
			t.Fatalf("champion fitness %f disagrees with best fitness %f", report.ChampionFitness, report.Diagnostics.BestFitness)
		}
	}
	if summary.FinalBestFitness != summary.BestByEpoch[2] {
		t.Fatalf("unexpected final best: got=%f want=%f", summary.FinalBestFitness, summary.BestByEpoch[2])
	}
}

func TestEvolveCancelledBeforeStartReturnsInitialPopulation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := smallRunRequest()
	req.Initial = make([]Automaton, 10)
	for i := range req.Initial {
		req.Initial[i] = Automaton{Nodes: []Node{{Action: Defect}}}
	}
	summary, err := New(Options{}).Evolve(ctx, req)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if !summary.Interrupted || summary.Epochs != 0 {
		t.Fatalf("unexpected run state: epochs=%d interrupted=%t", summary.Epochs, summary.Interrupted)
	}
	if len(summary.Population) != 10 || summary.Population[0].Nodes[0].Action != Defect {
		t.Fatalf("expected the initial population back, got=%+v", summary.Population)
	}
}

func TestEvolveStopsBetweenEpochsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := smallRunRequest()
	req.Benchmark = false
	req.OnEpoch = func(report EpochReport) {
		if report.Diagnostics.Epoch == 2 {
			cancel()
		}
	}
	summary, err := New(Options{}).Evolve(ctx, req)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if !summary.Interrupted || summary.Epochs != 2 {
		t.Fatalf("unexpected run state: epochs=%d interrupted=%t", summary.Epochs, summary.Interrupted)
	}
	if len(summary.Population) != 10 {
		t.Fatalf("unexpected population size: got=%d want=10", len(summary.Population))
	}
	if summary.Diagnostics[0].Benchmark != nil {
		t.Fatal("benchmark summary present with benchmark disabled")
	}
}

func TestEvolveDegenerateSelection(t *testing.T) {
	req := smallRunRequest()
	req.Population = 5
	req.Epochs = 1
	_, err := New(Options{}).Evolve(context.Background(), req)
	if !errors.Is(err, ErrDegenerateSelection) {
		t.Fatalf("expected ErrDegenerateSelection, got %v", err)
	}
}

func TestEvolveRejectsNegativeEpochs(t *testing.T) {
	req := smallRunRequest()
	req.Epochs = -1
	if _, err := New(Options{}).Evolve(context.Background(), req); err == nil {
		t.Fatal("expected error for negative epochs")
	}
}

func TestRunRequestSelectsMutationPassPolicy(t *testing.T) {
	req := smallRunRequest()
	req.MutationPassPolicy = "ncount_linear"
	req.MutationPassMultiplier = 1.5
	req.MutationPassMax = 4
	cfg, err := req.monitorConfig(nil)
	if err != nil {
		t.Fatalf("monitor config: %v", err)
	}
	if cfg.MutationPasses.Name() != "ncount_linear" {
		t.Fatalf("unexpected mutation pass policy: got=%s want=ncount_linear", cfg.MutationPasses.Name())
	}

	req.Epochs = 2
	summary, err := New(Options{}).Evolve(context.Background(), req)
	if err != nil {
		t.Fatalf("evolve with ncount_linear: %v", err)
	}
	if summary.Epochs != 2 || len(summary.Population) != 10 {
		t.Fatalf("unexpected run state: epochs=%d population=%d", summary.Epochs, len(summary.Population))
	}
}

func TestEvolveRejectsUnknownMutationPassPolicy(t *testing.T) {
	req := smallRunRequest()
	req.Epochs = 1
	req.MutationPassPolicy = "ncount_exponential"
	if _, err := New(Options{}).Evolve(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown mutation pass policy")
	}
}

func TestBenchmarkAgainstCustomOpponents(t *testing.T) {
	defector := Automaton{Nodes: []Node{{Action: Defect}}}
	cooperator := Automaton{Nodes: []Node{{Action: Cooperate}}}
	result, err := New(Options{}).Benchmark(context.Background(), BenchmarkRequest{
		Population: []Automaton{defector},
		Opponents:  []Automaton{cooperator, defector},
		Rounds:     3,
	})
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if len(result.Scores) != 1 || result.Scores[0] != -60 {
		t.Fatalf("unexpected scores: got=%v want=[-60]", result.Scores)
	}
	if len(result.OpponentScores) != 2 || result.OpponentScores[0] != -75 || result.OpponentScores[1] != -60 {
		t.Fatalf("unexpected opponent scores: got=%v want=[-75 -60]", result.OpponentScores)
	}
	if len(result.ScoresAgainst) != 2 || result.ScoresAgainst[0] != 0 || result.ScoresAgainst[1] != -60 {
		t.Fatalf("unexpected scores against opponents: got=%v want=[0 -60]", result.ScoresAgainst)
	}
	if result.Summary.Mean != -60 {
		t.Fatalf("unexpected summary mean: got=%f want=-60", result.Summary.Mean)
	}
}

func TestBenchmarkDefaultsToReferencePool(t *testing.T) {
	result, err := New(Options{}).Benchmark(context.Background(), BenchmarkRequest{
		Population: []Automaton{{Nodes: []Node{{Action: Defect}}}},
		Rounds:     2,
	})
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if len(result.OpponentScores) != len(ReferencePool()) {
		t.Fatalf("unexpected opponent count: got=%d want=%d", len(result.OpponentScores), len(ReferencePool()))
	}
}

func TestBenchmarkRejectsBadInput(t *testing.T) {
	client := New(Options{})
	if _, err := client.Benchmark(context.Background(), BenchmarkRequest{Rounds: 1}); err == nil {
		t.Fatal("expected error for empty population")
	}
	broken := Automaton{Nodes: []Node{{Action: Cooperate, OnDefect: 5}}}
	_, err := client.Benchmark(context.Background(), BenchmarkRequest{Population: []Automaton{broken}, Rounds: 1})
	if !errors.Is(err, ErrInvalidStructure) {
		t.Fatalf("expected ErrInvalidStructure, got %v", err)
	}
}

func TestReferencePool(t *testing.T) {
	pool := ReferencePool()
	if len(pool) != 10 || pool[0].Name != "S4" {
		t.Fatalf("unexpected reference pool: %d strategies, first=%q", len(pool), pool[0].Name)
	}
	pool[0].Automaton.Nodes[0].Action = Cooperate
	if ReferencePool()[0].Automaton.Nodes[0].Action != Defect {
		t.Fatal("reference pool shares storage between calls")
	}
}
