package evo

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dilemma/internal/genotype"
	"dilemma/internal/model"
	"dilemma/internal/stats"
	"dilemma/internal/tournament"
)

type MonitorConfig struct {
	PopulationSize int

	// MinRounds and MaxRounds bound the per-pairing round budget, drawn
	// uniformly from [MinRounds, MaxRounds) each epoch.
	MinRounds    int
	MaxRounds    int
	KeepFraction float64
	Rates        MutationRates

	// Mutation overrides the structural operator built from Rates.
	Mutation       Operator
	MutationPasses MutationPassPolicy

	// Benchmark, when set, is played against the population every epoch
	// for BenchmarkRounds rounds. It never affects selection.
	Benchmark       []model.Automaton
	BenchmarkRounds int
	Seed            int64
	Logger          *slog.Logger
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PopulationSize:  100,
		MinRounds:       10,
		MaxRounds:       100,
		KeepFraction:    0.1,
		Rates:           DefaultMutationRates(),
		MutationPasses:  ConstMutationPasses{Count: 1},
		BenchmarkRounds: 50,
		Seed:            1,
	}
}

// EpochReport describes the population that was scored in one epoch.
type EpochReport struct {
	Diagnostics model.EpochDiagnostics

	// Ranked is the scored population, best first.
	Ranked []ScoredAutomaton

	// Benchmark holds each automaton's total against the reference pool,
	// indexed by population order. Nil when no benchmark is configured.
	Benchmark []float64
}

func (r EpochReport) Champion() ScoredAutomaton {
	return r.Ranked[0]
}

// PopulationMonitor owns the population and advances it one epoch at a
// time. Epoch state is replaced as a whole only after an epoch succeeds.
type PopulationMonitor struct {
	cfg          MonitorConfig
	rng          *rand.Rand
	selector     TruncationSelector
	reproduction Reproduction
	logger       *slog.Logger

	mu         sync.Mutex
	population []model.Automaton
	epoch      int
}

// NewPopulationMonitor validates cfg and builds the starting population.
// An empty initial population is replaced by PopulationSize random
// automata; a non-empty one must hold exactly PopulationSize valid entries.
func NewPopulationMonitor(ctx context.Context, cfg MonitorConfig, initial []model.Automaton) (*PopulationMonitor, error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.MinRounds <= 0 || cfg.MaxRounds <= cfg.MinRounds {
		return nil, fmt.Errorf("round bounds must satisfy 0 < min < max, got min=%d max=%d", cfg.MinRounds, cfg.MaxRounds)
	}
	if cfg.KeepFraction <= 0 || cfg.KeepFraction > 1 {
		return nil, fmt.Errorf("keep fraction must be in (0,1], got %f", cfg.KeepFraction)
	}
	if len(cfg.Benchmark) > 0 && cfg.BenchmarkRounds <= 0 {
		return nil, fmt.Errorf("benchmark rounds must be > 0")
	}
	selector := TruncationSelector{KeepFraction: cfg.KeepFraction}
	if selector.ParentCount(cfg.PopulationSize) < 1 {
		return nil, fmt.Errorf("%w: population %d with keep fraction %.3f", ErrDegenerateSelection, cfg.PopulationSize, cfg.KeepFraction)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	mutation := cfg.Mutation
	if mutation == nil {
		structural, err := NewStructuralMutation(rng, cfg.Rates)
		if err != nil {
			return nil, err
		}
		mutation = structural
	}
	passes := cfg.MutationPasses
	if passes == nil {
		passes = ConstMutationPasses{Count: 1}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var population []model.Automaton
	if len(initial) == 0 {
		population = make([]model.Automaton, 0, cfg.PopulationSize)
		for i := 0; i < cfg.PopulationSize; i++ {
			automaton, err := NewRandomAutomaton(ctx, mutation)
			if err != nil {
				return nil, fmt.Errorf("seed automaton %d: %w", i, err)
			}
			population = append(population, automaton)
		}
	} else {
		if len(initial) != cfg.PopulationSize {
			return nil, fmt.Errorf("initial population has %d automata, want %d", len(initial), cfg.PopulationSize)
		}
		for i, automaton := range initial {
			if err := genotype.Validate(automaton); err != nil {
				return nil, fmt.Errorf("initial automaton %d: %w", i, err)
			}
		}
		population = genotype.ClonePopulation(initial)
	}

	return &PopulationMonitor{
		cfg:      cfg,
		rng:      rng,
		selector: selector,
		reproduction: Reproduction{
			Rand:     rng,
			Mutation: mutation,
			Passes:   passes,
		},
		logger:     logger,
		population: population,
	}, nil
}

// Population returns a copy of the current population.
func (m *PopulationMonitor) Population() []model.Automaton {
	m.mu.Lock()
	defer m.mu.Unlock()
	return genotype.ClonePopulation(m.population)
}

// Epoch returns the number of completed epochs.
func (m *PopulationMonitor) Epoch() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// RunEpoch scores the current population in a self-play tournament,
// optionally benchmarks it, selects parents and replaces the population
// with their offspring. On error the population is left untouched.
func (m *PopulationMonitor) RunEpoch(ctx context.Context) (EpochReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	ctx, span := tracer.Start(ctx, "evo.RunEpoch",
		trace.WithAttributes(
			attribute.Int("epoch", m.epoch+1),
			attribute.Int("population", len(m.population)),
		),
	)
	defer span.End()

	report, next, err := m.runEpoch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EpochReport{}, fmt.Errorf("epoch %d: %w", m.epoch+1, err)
	}

	m.population = next
	m.epoch++

	report.Diagnostics.Duration = time.Since(start)
	diag := report.Diagnostics
	recordEpochMetrics(ctx, diag)
	span.SetAttributes(
		attribute.Float64("best_fitness", diag.BestFitness),
		attribute.Int("parent_count", diag.ParentCount),
	)
	m.logger.Debug("epoch complete",
		slog.Int("epoch", diag.Epoch),
		slog.Float64("best_fitness", diag.BestFitness),
		slog.Float64("mean_fitness", diag.Fitness.Mean),
		slog.Int("fingerprints", diag.FingerprintDiversity),
		slog.Duration("duration", diag.Duration),
	)
	return report, nil
}

func (m *PopulationMonitor) runEpoch(ctx context.Context) (EpochReport, []model.Automaton, error) {
	size := len(m.population)
	schedule, err := tournament.RandomRounds(m.rng, size, size-1, m.cfg.MinRounds, m.cfg.MaxRounds)
	if err != nil {
		return EpochReport{}, nil, err
	}
	scores, err := tournament.SelfPlay(m.population, schedule)
	if err != nil {
		return EpochReport{}, nil, fmt.Errorf("self-play: %w", err)
	}
	fitness := scores.RowSums()
	m.logger.Debug("self-play scored",
		slog.Int("epoch", m.epoch+1),
		slog.Int("max_rounds", schedule.Max()),
	)

	var benchmark []float64
	if len(m.cfg.Benchmark) > 0 {
		versus, _, err := tournament.CrossPlay(m.population, m.cfg.Benchmark, m.cfg.BenchmarkRounds)
		if err != nil {
			return EpochReport{}, nil, fmt.Errorf("benchmark: %w", err)
		}
		benchmark = versus.RowSums()
		m.logger.Debug("benchmark scored",
			slog.Int("epoch", m.epoch+1),
			slog.Int("references", len(m.cfg.Benchmark)),
		)
	}

	ranked, err := Rank(m.population, fitness)
	if err != nil {
		return EpochReport{}, nil, err
	}
	parents, err := m.selector.Parents(ranked, size)
	if err != nil {
		return EpochReport{}, nil, err
	}
	m.logger.Debug("parents selected",
		slog.Int("epoch", m.epoch+1),
		slog.Int("parents", len(parents)),
		slog.Float64("cutoff_fitness", parents[len(parents)-1].Fitness),
	)
	next, err := m.reproduction.Offspring(ctx, parents, size, m.epoch)
	if err != nil {
		return EpochReport{}, nil, fmt.Errorf("reproduce: %w", err)
	}

	report := EpochReport{
		Diagnostics: diagnose(m.epoch+1, m.population, fitness, benchmark, len(parents)),
		Ranked:      ranked,
		Benchmark:   benchmark,
	}
	return report, next, nil
}

func diagnose(epoch int, population []model.Automaton, fitness, benchmark []float64, parents int) model.EpochDiagnostics {
	diag := model.EpochDiagnostics{
		Epoch:       epoch,
		Fitness:     stats.Summarize(fitness),
		ParentCount: parents,
	}
	diag.BestFitness = diag.Fitness.Max
	if benchmark != nil {
		summary := stats.Summarize(benchmark)
		diag.Benchmark = &summary
	}

	fingerprints := make(map[string]struct{}, len(population))
	totalNodes := 0
	for _, automaton := range population {
		fingerprints[genotype.ComputeSignature(automaton).Fingerprint] = struct{}{}
		n := automaton.NodeCount()
		totalNodes += n
		if n > diag.MaxNodeCount {
			diag.MaxNodeCount = n
		}
	}
	diag.FingerprintDiversity = len(fingerprints)
	if len(population) > 0 {
		diag.MeanNodeCount = float64(totalNodes) / float64(len(population))
	}
	return diag
}
