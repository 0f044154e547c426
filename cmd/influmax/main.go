package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/seedlab-io/influmax/pkg/algo"
	"github.com/seedlab-io/influmax/pkg/cascade"
	"github.com/seedlab-io/influmax/pkg/graph/memgraph"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/report"
	"github.com/seedlab-io/influmax/pkg/store/redistore"
	"github.com/seedlab-io/influmax/pkg/utils/redisutils"
)

func main() {
	fmt.Println("------------------------")
	fmt.Println("influmax is running")
	fmt.Println("------------------------")

	// the .env file is optional; explicit env vars win either way
	godotenv.Load()

	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	defer config.CloseLogs()
	config.Print()

	ctx := context.Background()

	g, err := loadGraph(config.GraphFile)
	if err != nil {
		panic(err)
	}

	var factory models.CascadeFactory
	if config.Prob > 0 {
		factory = cascade.UniformFactory(ctx, g, config.Prob)
	} else {
		factory = cascade.Factory(ctx, g)
	}

	if config.UseRedis {
		cl := redisutils.SetupProdClient()

		store, err := redistore.NewStore(cl)
		if err != nil {
			panic(err)
		}
		config.Algo.Store = store
	}

	orchestrator, err := algo.New(ctx, g, factory, config.Algo)
	if err != nil {
		panic(err)
	}

	result, err := orchestrator.Run(ctx)
	if err != nil {
		panic(err)
	}

	name := config.algoName()
	if err := report.WriteResult(config.OutputDir, name, result); err != nil {
		panic(err)
	}

	fmt.Printf("%v: spread %g with %d RR sets (sampling %v, selection %v)\n",
		name, result.Spread, result.Timing.Samples,
		result.Timing.Sampling, result.Timing.Selection)
}

// loadGraph reads an edge-list file: one "u v" pair per line, an optional
// third column (edge probability) is ignored, since activation probabilities
// are derived from indegrees or set uniformly via PROB. Lines starting with
// '#' are comments.
func loadGraph(path string) (*memgraph.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g := memgraph.NewGraph()
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed edge line: %q", line)
		}

		from, err := redisutils.ParseID(fields[0])
		if err != nil {
			return nil, fmt.Errorf("malformed node in line %q: %v", line, err)
		}

		to, err := redisutils.ParseID(fields[1])
		if err != nil {
			return nil, fmt.Errorf("malformed node in line %q: %v", line, err)
		}

		g.AddEdge(from, to)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return g, nil
}
