package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/seedlab-io/influmax/pkg/algo"
	"github.com/seedlab-io/influmax/pkg/greedy"
	"github.com/seedlab-io/influmax/pkg/utils/logger"
)

type SystemConfig struct {
	Log       *logger.Aggregate
	LogWriter io.Writer

	GraphFile string
	OutputDir string

	// per-edge activation probability; 0 means 1/indegree weighting
	Prob float64

	// persist results to Redis when set
	UseRedis bool
}

// The configuration parameters for the system and the algorithm run.
type Config struct {
	SystemConfig
	Algo algo.Config
}

func NewSystemConfig() SystemConfig {
	return SystemConfig{
		LogWriter: os.Stdout,
		GraphFile: "graph.txt",
		OutputDir: ".",
	}
}

// NewConfig() returns a config with default parameters.
func NewConfig() *Config {
	return &Config{
		SystemConfig: NewSystemConfig(),
		Algo:         algo.NewConfig(algo.GeometricMartingale, 50),
	}
}

func (c SystemConfig) Print() {
	fmt.Println("System:")
	fmt.Printf("  LogWriter: %T\n", c.LogWriter)
	fmt.Printf("  GraphFile: %v\n", c.GraphFile)
	fmt.Printf("  OutputDir: %v\n", c.OutputDir)
	fmt.Printf("  Prob: %f\n", c.Prob)
	fmt.Printf("  UseRedis: %t\n", c.UseRedis)
}

func (c *Config) Print() {
	c.SystemConfig.Print()
	fmt.Println("Algorithm:")
	fmt.Printf("  Variant: %v\n", c.Algo.Variant)
	fmt.Printf("  K: %d\n", c.Algo.K)
	fmt.Printf("  Eps: %f\n", c.Algo.Eps)
	fmt.Printf("  Ell: %f\n", c.Algo.Ell)
	fmt.Printf("  Mode: %d\n", c.Algo.Mode)
	fmt.Printf("  Horizon: %d\n", c.Algo.Horizon)
	fmt.Printf("  Workers: %d\n", c.Algo.Policy.Workers)
}

// LoadConfig() reads the variables from the environment and parses them into
// a config struct.
func LoadConfig() (*Config, error) {
	var config = NewConfig()
	var err error

	for _, item := range os.Environ() {
		keyVal := strings.SplitN(item, "=", 2)
		key, val := keyVal[0], keyVal[1]

		switch key {
		case "LOGS":
			// LogWriter gets updated if a .log file is specified; otherwise it remains os.Stdout
			if strings.HasSuffix(val, ".log") {
				config.LogWriter, err = os.OpenFile(val, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
				if err != nil {
					return nil, fmt.Errorf("error opening file \"%v\": %v", val, err)
				}
			}

			config.Log = logger.New(config.LogWriter)
			config.Algo.Log = config.Log

		case "GRAPH_FILE":
			config.GraphFile = val

		case "OUTPUT_DIR":
			config.OutputDir = val

		case "ALGO":
			config.Algo.Variant, config.Algo.SingleNode, err = parseVariant(val)
			if err != nil {
				return nil, err
			}

		case "SEED_SIZE":
			config.Algo.K, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "EPSILON":
			config.Algo.Eps, err = strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "ELL":
			config.Algo.Ell, err = strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "ROUNDS":
			config.Algo.Rounds, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "MODE":
			config.Algo.Mode, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "HORIZON":
			config.Algo.Horizon, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "WEIGHTS":
			config.Algo.Weights, err = parseWeights(val)
			if err != nil {
				return nil, err
			}

		case "STRATEGY":
			config.Algo.Strategy, err = parseStrategy(val)
			if err != nil {
				return nil, err
			}

		case "BUDGET":
			config.Algo.Budget, err = strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "STEP_SIZE":
			config.Algo.StepSize, err = strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "DELTA":
			config.Algo.Delta, err = strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "PROB":
			config.Prob, err = strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "WORKERS":
			config.Algo.Policy.Workers, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "SEED_BASE":
			config.Algo.Policy.SeedBase, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}

		case "USE_REDIS":
			config.UseRedis, err = strconv.ParseBool(val)
			if err != nil {
				return nil, fmt.Errorf("error parsing %v: %v", keyVal, err)
			}
		}
	}

	return config, nil
}

// parseVariant parses an algorithm name into its variant tag. "sni" maps to
// the value-accumulation variant with per-hit credit.
func parseVariant(name string) (algo.Variant, bool, error) {
	switch name {
	case "rr":
		return algo.Fixed, false, nil
	case "rr_error":
		return algo.AdaptiveDoubling, false, nil
	case "timplus":
		return algo.TwoPhase, false, nil
	case "imm":
		return algo.GeometricMartingale, false, nil
	case "prm_imm":
		return algo.TimeIndexed, false, nil
	case "asvrr":
		return algo.ValueAccumulation, false, nil
	case "sni":
		return algo.ValueAccumulation, true, nil
	case "cimm":
		return algo.ContinuousBudget, false, nil
	default:
		return 0, false, fmt.Errorf("unknown algorithm \"%v\"", name)
	}
}

func parseWeights(name string) (greedy.WeightMode, error) {
	switch name {
	case "uniform":
		return greedy.WeightUniform, nil
	case "linear":
		return greedy.WeightLinear, nil
	case "exponential":
		return greedy.WeightExponential, nil
	default:
		return 0, fmt.Errorf("unknown weight mode \"%v\"", name)
	}
}

func parseStrategy(name string) (algo.Strategy, error) {
	switch name {
	case "topk":
		return algo.StrategyTopK, nil
	case "uniform":
		return algo.StrategyUniform, nil
	case "decreasing":
		return algo.StrategyDecreasing, nil
	case "random":
		return algo.StrategyRandom, nil
	case "reuse":
		return algo.StrategyReuse, nil
	default:
		return 0, fmt.Errorf("unknown strategy \"%v\"", name)
	}
}

// CloseLogs() closes the config.LogWriter if that is a file.
func (c *Config) CloseLogs() {
	if file, ok := c.LogWriter.(*os.File); ok && file != os.Stdout {
		file.Close()
	}
}

// algoName returns the reporting name of the configured algorithm.
func (c *Config) algoName() string {
	if c.Algo.Variant == algo.ValueAccumulation && c.Algo.SingleNode {
		return "sni"
	}
	return c.Algo.Variant.String()
}
