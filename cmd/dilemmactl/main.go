package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dilemma/internal/codec"
	"dilemma/internal/stats"
	"dilemma/pkg/dilemma"
)

const defaultRunsDir = "runs"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:], os.Stdout)
	case "benchmark":
		return runBenchmark(ctx, args[1:], os.Stdout)
	case "reference":
		return runReference(ctx, args[1:], os.Stdout)
	case "runs":
		return runRuns(ctx, args[1:], os.Stdout)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string, stdout io.Writer) error {
	defaults := defaultRunConfig()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional YAML run config path")
	population := fs.Int("pop", defaults.Population, "population size")
	epochs := fs.Int("epochs", defaults.Epochs, "epoch limit (0 runs until interrupted)")
	seed := fs.Int64("seed", defaults.Seed, "rng seed")
	minRounds := fs.Int("min-rounds", defaults.MinRounds, "minimum rounds per pairing (inclusive)")
	maxRounds := fs.Int("max-rounds", defaults.MaxRounds, "maximum rounds per pairing (exclusive)")
	keepFraction := fs.Float64("keep-fraction", defaults.KeepFraction, "fraction of the population kept as parents")
	mutationPasses := fs.Int("mutation-passes", defaults.MutationPasses, "mutation passes per mutated offspring for mutation-pass-policy=const")
	mutationPassPolicy := fs.String("mutation-pass-policy", defaults.MutationPassPolicy, "mutation pass count policy: const|ncount_linear")
	mutationPassMultiplier := fs.Float64("mutation-pass-multiplier", defaults.MutationPassMultiplier, "node count multiplier for mutation-pass-policy=ncount_linear")
	mutationPassMax := fs.Int("mutation-pass-max", defaults.MutationPassMax, "cap on mutation passes for ncount_linear (0 disables)")
	benchmark := fs.Bool("benchmark", defaults.Benchmark, "benchmark every epoch against the reference pool")
	benchmarkRounds := fs.Int("benchmark-rounds", defaults.BenchmarkRounds, "rounds per reference pairing")
	inPath := fs.String("in", "", "seed the run from a population document")
	outPath := fs.String("out", "", "write the final population document here")
	artifactsDir := fs.String("artifacts-dir", "", "write run artifacts and the run index under this directory")
	jsonOut := fs.Bool("json", false, "print one JSON diagnostics line per epoch on stdout")
	logLevel := fs.String("log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	logFormat := fs.String("log-format", defaults.LogFormat, "log format: text|json")
	metrics := fs.Bool("metrics", false, "export metrics to stderr")
	tracing := fs.Bool("trace", false, "export epoch spans to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	cfg := defaultRunConfig()
	if *configPath != "" {
		if err := loadRunConfig(*configPath, &cfg); err != nil {
			return err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return err
	}
	overrideFromFlags(&cfg, setFlags, map[string]any{
		"pop":                      *population,
		"epochs":                   *epochs,
		"seed":                     *seed,
		"min-rounds":               *minRounds,
		"max-rounds":               *maxRounds,
		"keep-fraction":            *keepFraction,
		"mutation-passes":          *mutationPasses,
		"mutation-pass-policy":     *mutationPassPolicy,
		"mutation-pass-multiplier": *mutationPassMultiplier,
		"mutation-pass-max":        *mutationPassMax,
		"benchmark":                *benchmark,
		"benchmark-rounds":         *benchmarkRounds,
		"log-level":                *logLevel,
		"log-format":               *logFormat,
	})

	logger, err := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	if *metrics {
		shutdown, err := setupMetrics(os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("metrics shutdown", slog.Any("error", err))
			}
		}()
	}
	if *tracing {
		shutdown, err := setupTracing(os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("trace shutdown", slog.Any("error", err))
			}
		}()
	}

	req := cfg.runRequest()
	if *inPath != "" {
		initial, err := codec.ReadPopulationFile(*inPath)
		if err != nil {
			return err
		}
		req.Initial = codec.Automata(initial)
	}
	req.OnEpoch = epochReporter(logger, stdout, *jsonOut)

	summary, err := dilemma.New(dilemma.Options{Logger: logger}).Evolve(ctx, req)
	if err != nil {
		return err
	}
	if *outPath != "" {
		if err := codec.WritePopulationFile(*outPath, codec.Named(summary.Population)); err != nil {
			return err
		}
	}
	if *artifactsDir != "" {
		if err := writeArtifacts(*artifactsDir, cfg, summary); err != nil {
			return err
		}
	}

	if !*jsonOut {
		fmt.Fprintf(stdout, "run_id=%s epochs=%d interrupted=%t final_best=%.1f\n",
			summary.RunID, summary.Epochs, summary.Interrupted, summary.FinalBestFitness)
	}
	return nil
}

// epochReporter formats each epoch's fitness and benchmark summaries. The
// core only computes them.
func epochReporter(logger *slog.Logger, stdout io.Writer, jsonOut bool) func(dilemma.EpochReport) {
	enc := json.NewEncoder(stdout)
	return func(report dilemma.EpochReport) {
		diag := report.Diagnostics
		attrs := []any{
			slog.Int("epoch", diag.Epoch),
			slog.Float64("sum", diag.Fitness.Sum),
			slog.Float64("mean", diag.Fitness.Mean),
			slog.Float64("variance", diag.Fitness.Variance),
			slog.Float64("max", diag.Fitness.Max),
			slog.Float64("min", diag.Fitness.Min),
			slog.Int("fingerprints", diag.FingerprintDiversity),
			slog.Float64("mean_nodes", diag.MeanNodeCount),
		}
		if diag.Benchmark != nil {
			attrs = append(attrs,
				slog.Float64("benchmark_mean", diag.Benchmark.Mean),
				slog.Float64("benchmark_max", diag.Benchmark.Max),
			)
		}
		logger.Info("epoch", attrs...)
		if jsonOut {
			if err := enc.Encode(diag); err != nil {
				logger.Warn("write diagnostics", slog.Any("error", err))
			}
		}
	}
}

func writeArtifacts(baseDir string, cfg runConfig, summary dilemma.RunSummary) error {
	runDir, err := stats.WriteRunArtifacts(baseDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:           summary.RunID,
			PopulationSize:  len(summary.Population),
			Epochs:          summary.Epochs,
			Seed:            cfg.Seed,
			MinRounds:       cfg.MinRounds,
			MaxRounds:       cfg.MaxRounds,
			KeepFraction:    cfg.KeepFraction,
			MutationPasses:  cfg.MutationPasses,
			PassPolicy:      cfg.MutationPassPolicy,
			Benchmark:       cfg.Benchmark,
			BenchmarkRounds: cfg.BenchmarkRounds,
		},
		BestByEpoch:      summary.BestByEpoch,
		FinalBestFitness: summary.FinalBestFitness,
		Diagnostics:      summary.Diagnostics,
	})
	if err != nil {
		return err
	}
	if err := codec.WritePopulationFile(filepath.Join(runDir, "population.yaml"), codec.Named(summary.Population)); err != nil {
		return err
	}
	return stats.AppendRunIndex(baseDir, stats.RunIndexEntry{
		RunID:            summary.RunID,
		PopulationSize:   len(summary.Population),
		Epochs:           summary.Epochs,
		Seed:             cfg.Seed,
		Interrupted:      summary.Interrupted,
		FinalBestFitness: summary.FinalBestFitness,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func runRuns(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	dir := fs.String("dir", defaultRunsDir, "run artifacts directory")
	limit := fs.Int("limit", 20, "max runs to list (0 lists all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	index, err := stats.ListRunIndex(*dir)
	if err != nil {
		return err
	}
	if *limit > 0 && len(index) > *limit {
		index = index[:*limit]
	}
	for _, entry := range index {
		fmt.Fprintf(stdout, "run_id=%s created_at=%s pop=%d epochs=%d seed=%d interrupted=%t final_best=%.1f\n",
			entry.RunID, entry.CreatedAtUTC, entry.PopulationSize, entry.Epochs, entry.Seed, entry.Interrupted, entry.FinalBestFitness)
	}
	return nil
}

func runBenchmark(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	inPath := fs.String("in", "", "population document to benchmark")
	rounds := fs.Int("rounds", defaultRunConfig().BenchmarkRounds, "rounds per reference pairing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("benchmark requires -in")
	}

	population, err := codec.ReadPopulationFile(*inPath)
	if err != nil {
		return err
	}
	result, err := dilemma.New(dilemma.Options{}).Benchmark(ctx, dilemma.BenchmarkRequest{
		Population: codec.Automata(population),
		Rounds:     *rounds,
	})
	if err != nil {
		return err
	}

	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return result.Scores[order[a]] > result.Scores[order[b]]
	})
	for _, i := range order {
		name := population[i].Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fmt.Fprintf(stdout, "automaton=%s nodes=%d score=%.1f\n", name, population[i].Automaton.NodeCount(), result.Scores[i])
	}
	for j, strategy := range dilemma.ReferencePool() {
		fmt.Fprintf(stdout, "reference=%s score=%.1f population_score=%.1f\n", strategy.Name, result.OpponentScores[j], result.ScoresAgainst[j])
	}
	fmt.Fprintf(stdout, "mean=%.1f variance=%.1f max=%.1f min=%.1f\n",
		result.Summary.Mean, result.Summary.Variance, result.Summary.Max, result.Summary.Min)
	return nil
}

func runReference(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("reference", flag.ContinueOnError)
	outPath := fs.String("out", "", "write the reference pool document here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pool := dilemma.ReferencePool()
	named := make([]codec.NamedAutomaton, len(pool))
	for i, strategy := range pool {
		named[i] = codec.NamedAutomaton{Name: strategy.Name, Automaton: strategy.Automaton}
	}
	if *outPath != "" {
		return codec.WritePopulationFile(*outPath, named)
	}
	data, err := codec.EncodePopulation(named)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: dilemmactl <run|benchmark|reference|runs> [flags]", msg)
}
