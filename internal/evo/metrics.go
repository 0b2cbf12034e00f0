package evo

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"dilemma/internal/model"
)

var (
	tracer = otel.Tracer("dilemma.evo")
	meter  = otel.Meter("dilemma.evo")
)

var (
	epochTotal      metric.Int64Counter
	epochLatency    metric.Float64Histogram
	bestFitness     metric.Float64Histogram
	meanFitness     metric.Float64Histogram
	automatonNodes  metric.Int64Histogram
	benchmarkMean   metric.Float64Histogram
	mutationApplied metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		epochTotal, err = meter.Int64Counter(
			"evo_epoch_total",
			metric.WithDescription("Total number of completed epochs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		epochLatency, err = meter.Float64Histogram(
			"evo_epoch_duration_seconds",
			metric.WithDescription("Duration of one epoch"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		bestFitness, err = meter.Float64Histogram(
			"evo_best_fitness",
			metric.WithDescription("Best self-play fitness per epoch"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		meanFitness, err = meter.Float64Histogram(
			"evo_mean_fitness",
			metric.WithDescription("Mean self-play fitness per epoch"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		automatonNodes, err = meter.Int64Histogram(
			"evo_automaton_nodes",
			metric.WithDescription("Node count of the largest automaton per epoch"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		benchmarkMean, err = meter.Float64Histogram(
			"evo_benchmark_mean_score",
			metric.WithDescription("Mean population score against the reference pool per epoch"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		mutationApplied, err = meter.Int64Counter(
			"evo_mutation_applied_total",
			metric.WithDescription("Structural mutation operators applied"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordEpochMetrics(ctx context.Context, diag model.EpochDiagnostics) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("benchmark", diag.Benchmark != nil))

	epochTotal.Add(ctx, 1, attrs)
	epochLatency.Record(ctx, diag.Duration.Seconds(), attrs)
	bestFitness.Record(ctx, diag.BestFitness)
	meanFitness.Record(ctx, diag.Fitness.Mean)
	automatonNodes.Record(ctx, int64(diag.MaxNodeCount))
	if diag.Benchmark != nil {
		benchmarkMean.Record(ctx, diag.Benchmark.Mean)
	}
}

func recordMutations(ctx context.Context, applied []string) {
	if len(applied) == 0 {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	for _, name := range applied {
		mutationApplied.Add(ctx, 1, metric.WithAttributes(attribute.String("operator", name)))
	}
}
