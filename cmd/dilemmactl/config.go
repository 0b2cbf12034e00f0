package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"dilemma/pkg/dilemma"
)

// Environment overrides, applied after the config file and before flags.
const (
	envPopulation             = "DILEMMA_POPULATION"
	envSeed                   = "DILEMMA_SEED"
	envMinRounds              = "DILEMMA_MIN_ROUNDS"
	envMaxRounds              = "DILEMMA_MAX_ROUNDS"
	envEpochs                 = "DILEMMA_EPOCHS"
	envKeepFraction           = "DILEMMA_KEEP_FRACTION"
	envMutationPasses         = "DILEMMA_MUTATION_PASSES"
	envMutationPassPolicy     = "DILEMMA_MUTATION_PASS_POLICY"
	envMutationPassMultiplier = "DILEMMA_MUTATION_PASS_MULTIPLIER"
	envMutationPassMax        = "DILEMMA_MUTATION_PASS_MAX"
	envBenchmark              = "DILEMMA_BENCHMARK"
	envBenchmarkRounds        = "DILEMMA_BENCHMARK_ROUNDS"
	envLogLevel               = "DILEMMA_LOG_LEVEL"
	envLogFormat              = "DILEMMA_LOG_FORMAT"
)

type runConfig struct {
	Population             int                   `yaml:"population"`
	Epochs                 int                   `yaml:"epochs"`
	Seed                   int64                 `yaml:"seed"`
	MinRounds              int                   `yaml:"min_rounds"`
	MaxRounds              int                   `yaml:"max_rounds"`
	KeepFraction           float64               `yaml:"keep_fraction"`
	MutationPasses         int                   `yaml:"mutation_passes"`
	MutationPassPolicy     string                `yaml:"mutation_pass_policy"`
	MutationPassMultiplier float64               `yaml:"mutation_pass_multiplier"`
	MutationPassMax        int                   `yaml:"mutation_pass_max"`
	MutationRates          dilemma.MutationRates `yaml:"mutation_rates"`
	Benchmark              bool                  `yaml:"benchmark"`
	BenchmarkRounds        int                   `yaml:"benchmark_rounds"`
	LogLevel               string                `yaml:"log_level"`
	LogFormat              string                `yaml:"log_format"`
}

func defaultRunConfig() runConfig {
	req := dilemma.DefaultRunRequest()
	return runConfig{
		Population:             req.Population,
		Epochs:                 req.Epochs,
		Seed:                   req.Seed,
		MinRounds:              req.MinRounds,
		MaxRounds:              req.MaxRounds,
		KeepFraction:           req.KeepFraction,
		MutationPasses:         req.MutationPasses,
		MutationPassPolicy:     req.MutationPassPolicy,
		MutationPassMultiplier: req.MutationPassMultiplier,
		MutationPassMax:        req.MutationPassMax,
		MutationRates:          dilemma.DefaultMutationRates(),
		Benchmark:              req.Benchmark,
		BenchmarkRounds:        req.BenchmarkRounds,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// loadRunConfig layers a YAML file over cfg. Keys missing from the file
// keep their current values.
func loadRunConfig(path string, cfg *runConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *runConfig, lookup func(string) (string, bool)) error {
	intVars := map[string]*int{
		envPopulation:      &cfg.Population,
		envMinRounds:       &cfg.MinRounds,
		envMaxRounds:       &cfg.MaxRounds,
		envEpochs:          &cfg.Epochs,
		envMutationPasses:  &cfg.MutationPasses,
		envMutationPassMax: &cfg.MutationPassMax,
		envBenchmarkRounds: &cfg.BenchmarkRounds,
	}
	for name, target := range intVars {
		raw, ok := lookup(name)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = v
	}
	if raw, ok := lookup(envSeed); ok && raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envSeed, err)
		}
		cfg.Seed = v
	}
	floatVars := map[string]*float64{
		envKeepFraction:           &cfg.KeepFraction,
		envMutationPassMultiplier: &cfg.MutationPassMultiplier,
	}
	for name, target := range floatVars {
		raw, ok := lookup(name)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = v
	}
	if raw, ok := lookup(envBenchmark); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", envBenchmark, err)
		}
		cfg.Benchmark = v
	}
	stringVars := map[string]*string{
		envMutationPassPolicy: &cfg.MutationPassPolicy,
		envLogLevel:           &cfg.LogLevel,
		envLogFormat:          &cfg.LogFormat,
	}
	for name, target := range stringVars {
		if raw, ok := lookup(name); ok && raw != "" {
			*target = raw
		}
	}
	return nil
}

func overrideFromFlags(cfg *runConfig, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "pop":
			cfg.Population = v.(int)
		case "epochs":
			cfg.Epochs = v.(int)
		case "seed":
			cfg.Seed = v.(int64)
		case "min-rounds":
			cfg.MinRounds = v.(int)
		case "max-rounds":
			cfg.MaxRounds = v.(int)
		case "keep-fraction":
			cfg.KeepFraction = v.(float64)
		case "mutation-passes":
			cfg.MutationPasses = v.(int)
		case "mutation-pass-policy":
			cfg.MutationPassPolicy = v.(string)
		case "mutation-pass-multiplier":
			cfg.MutationPassMultiplier = v.(float64)
		case "mutation-pass-max":
			cfg.MutationPassMax = v.(int)
		case "benchmark":
			cfg.Benchmark = v.(bool)
		case "benchmark-rounds":
			cfg.BenchmarkRounds = v.(int)
		case "log-level":
			cfg.LogLevel = v.(string)
		case "log-format":
			cfg.LogFormat = v.(string)
		}
	}
}

func (c runConfig) runRequest() dilemma.RunRequest {
	rates := c.MutationRates
	return dilemma.RunRequest{
		Population:             c.Population,
		Epochs:                 c.Epochs,
		Seed:                   c.Seed,
		MinRounds:              c.MinRounds,
		MaxRounds:              c.MaxRounds,
		KeepFraction:           c.KeepFraction,
		MutationPasses:         c.MutationPasses,
		MutationPassPolicy:     c.MutationPassPolicy,
		MutationPassMultiplier: c.MutationPassMultiplier,
		MutationPassMax:        c.MutationPassMax,
		Rates:                  &rates,
		Benchmark:              c.Benchmark,
		BenchmarkRounds:        c.BenchmarkRounds,
	}
}
