// Package dilemma drives the evolution of iterated Prisoner's Dilemma
// strategies. The core only knows how to run one epoch; Evolve owns the
// loop and honors cancellation between epochs.
package dilemma

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dilemma/internal/evo"
	"dilemma/internal/genotype"
	"dilemma/internal/model"
	"dilemma/internal/reference"
	"dilemma/internal/stats"
	"dilemma/internal/tournament"
)

type (
	Action           = model.Action
	Node             = model.Node
	Automaton        = model.Automaton
	Summary          = model.Summary
	EpochDiagnostics = model.EpochDiagnostics
	MutationRates    = evo.MutationRates
)

const (
	Cooperate = model.Cooperate
	Defect    = model.Defect
)

var (
	ErrInvalidStructure    = genotype.ErrInvalidStructure
	ErrDegenerateSelection = evo.ErrDegenerateSelection
	ErrShapeMismatch       = tournament.ErrShapeMismatch
)

type Options struct {
	Logger *slog.Logger
}

type Client struct {
	logger *slog.Logger
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

type RunRequest struct {
	Population int

	// Epochs bounds the run. Zero runs until ctx is cancelled.
	Epochs         int
	Seed           int64
	MinRounds      int
	MaxRounds      int
	KeepFraction   float64
	MutationPasses int

	// MutationPassPolicy selects how many passes a mutated offspring gets:
	// "const" uses MutationPasses, "ncount_linear" scales the node count by
	// MutationPassMultiplier, capped at MutationPassMax when it is positive.
	MutationPassPolicy     string
	MutationPassMultiplier float64
	MutationPassMax        int

	// Rates overrides the default per-operator mutation probabilities.
	Rates *MutationRates

	// Benchmark plays every epoch's population against the reference pool
	// for BenchmarkRounds rounds. It is reported and never selected on.
	Benchmark       bool
	BenchmarkRounds int

	// Initial seeds the run. When empty, Population random automata are
	// generated; otherwise its length sets the population size.
	Initial []Automaton

	// OnEpoch, when set, receives every completed epoch.
	OnEpoch func(EpochReport)
}

type EpochReport struct {
	RunID           string
	Diagnostics     EpochDiagnostics
	Champion        Automaton
	ChampionFitness float64
}

type RunSummary struct {
	RunID       string
	Epochs      int
	Interrupted bool

	// Population is the last fully evolved population.
	Population       []Automaton
	BestByEpoch      []float64
	Diagnostics      []EpochDiagnostics
	FinalBestFitness float64
	Elapsed          time.Duration
}

func DefaultRunRequest() RunRequest {
	cfg := evo.DefaultMonitorConfig()
	return RunRequest{
		Population:             cfg.PopulationSize,
		Seed:                   cfg.Seed,
		MinRounds:              cfg.MinRounds,
		MaxRounds:              cfg.MaxRounds,
		KeepFraction:           cfg.KeepFraction,
		MutationPasses:         1,
		MutationPassPolicy:     "const",
		MutationPassMultiplier: 0.5,
		Benchmark:              true,
		BenchmarkRounds:        cfg.BenchmarkRounds,
	}
}

func DefaultMutationRates() MutationRates {
	return evo.DefaultMutationRates()
}

func (r RunRequest) monitorConfig(logger *slog.Logger) (evo.MonitorConfig, error) {
	cfg := evo.DefaultMonitorConfig()
	cfg.PopulationSize = r.Population
	if len(r.Initial) > 0 {
		cfg.PopulationSize = len(r.Initial)
	}
	cfg.Seed = r.Seed
	cfg.MinRounds = r.MinRounds
	cfg.MaxRounds = r.MaxRounds
	cfg.KeepFraction = r.KeepFraction
	count := r.MutationPasses
	if count <= 0 {
		count = 1
	}
	passes, err := evo.MutationPassPolicyFromConfig(r.MutationPassPolicy, count, r.MutationPassMultiplier, r.MutationPassMax)
	if err != nil {
		return evo.MonitorConfig{}, err
	}
	cfg.MutationPasses = passes
	if r.Rates != nil {
		cfg.Rates = *r.Rates
	}
	if r.Benchmark {
		cfg.Benchmark = reference.Pool()
		cfg.BenchmarkRounds = r.BenchmarkRounds
	}
	cfg.Logger = logger
	return cfg, nil
}

// Evolve runs epochs until req.Epochs is reached or ctx is cancelled.
// Cancellation is only observed between epochs; an epoch in flight always
// completes, and cancellation is not reported as an error.
func (c *Client) Evolve(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Epochs < 0 {
		return RunSummary{}, fmt.Errorf("epochs must be >= 0")
	}
	runID := uuid.NewString()
	logger := c.logger.With(slog.String("run_id", runID))

	cfg, err := req.monitorConfig(logger)
	if err != nil {
		return RunSummary{}, err
	}
	monitor, err := evo.NewPopulationMonitor(ctx, cfg, req.Initial)
	if err != nil {
		return RunSummary{}, err
	}
	logger.Info("run started",
		slog.Int("population", len(monitor.Population())),
		slog.Int64("seed", req.Seed),
		slog.Int("epochs", req.Epochs),
		slog.Bool("benchmark", req.Benchmark),
		slog.String("mutation_pass_policy", cfg.MutationPasses.Name()),
	)

	start := time.Now()
	summary := RunSummary{RunID: runID}
	for req.Epochs == 0 || monitor.Epoch() < req.Epochs {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		report, err := monitor.RunEpoch(context.WithoutCancel(ctx))
		if err != nil {
			return RunSummary{}, err
		}
		summary.Diagnostics = append(summary.Diagnostics, report.Diagnostics)
		summary.BestByEpoch = append(summary.BestByEpoch, report.Diagnostics.BestFitness)
		if req.OnEpoch != nil {
			champion := report.Champion()
			req.OnEpoch(EpochReport{
				RunID:           runID,
				Diagnostics:     report.Diagnostics,
				Champion:        champion.Automaton,
				ChampionFitness: champion.Fitness,
			})
		}
	}

	summary.Epochs = monitor.Epoch()
	summary.Population = monitor.Population()
	summary.Elapsed = time.Since(start)
	if n := len(summary.BestByEpoch); n > 0 {
		summary.FinalBestFitness = summary.BestByEpoch[n-1]
	}
	logger.Info("run finished",
		slog.Int("epochs", summary.Epochs),
		slog.Bool("interrupted", summary.Interrupted),
		slog.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

type BenchmarkRequest struct {
	Population []Automaton

	// Opponents defaults to the reference pool.
	Opponents []Automaton
	Rounds    int
}

type BenchmarkResult struct {
	// Scores[i] is automaton i's total against all opponents.
	Scores []float64

	// OpponentScores[j] is opponent j's total against the population.
	OpponentScores []float64

	// ScoresAgainst[j] is the population's total against opponent j.
	ScoresAgainst []float64
	Summary       Summary
}

// Benchmark plays a population against a fixed opponent group for a fixed
// number of rounds.
func (c *Client) Benchmark(_ context.Context, req BenchmarkRequest) (BenchmarkResult, error) {
	if len(req.Population) == 0 {
		return BenchmarkResult{}, errors.New("benchmark population is empty")
	}
	if req.Rounds <= 0 {
		return BenchmarkResult{}, fmt.Errorf("benchmark rounds must be > 0")
	}
	for i, automaton := range req.Population {
		if err := genotype.Validate(automaton); err != nil {
			return BenchmarkResult{}, fmt.Errorf("automaton %d: %w", i, err)
		}
	}
	opponents := req.Opponents
	if len(opponents) == 0 {
		opponents = reference.Pool()
	}
	a, b, err := tournament.CrossPlay(req.Population, opponents, req.Rounds)
	if err != nil {
		return BenchmarkResult{}, err
	}
	scores := a.RowSums()
	return BenchmarkResult{
		Scores:         scores,
		OpponentScores: b.RowSums(),
		ScoresAgainst:  a.ColumnSums(),
		Summary:        stats.Summarize(scores),
	}, nil
}

type ReferenceStrategy struct {
	Name      string
	Automaton Automaton
}

// ReferencePool returns fresh copies of the hand-authored benchmark
// strategies in their fixed order.
func ReferencePool() []ReferenceStrategy {
	strategies := reference.Strategies()
	out := make([]ReferenceStrategy, len(strategies))
	for i, s := range strategies {
		out[i] = ReferenceStrategy{Name: s.Name, Automaton: s.Automaton}
	}
	return out
}

// NewAutomaton validates and copies a node table.
func NewAutomaton(nodes []Node) (Automaton, error) {
	return genotype.NewAutomaton(nodes)
}
