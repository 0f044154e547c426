// The report package writes computed seed sets, budget allocations and timing
// records to plain-text files, one value tuple per line, using the
// conventional per-algorithm file names.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/seedlab-io/influmax/pkg/algo"
	"github.com/seedlab-io/influmax/pkg/greedy"
	"github.com/seedlab-io/influmax/pkg/models"
)

// SeedFile() returns the conventional output file name of the named algorithm.
func SeedFile(name string) string {
	switch name {
	case "rr", "rr_error":
		return "rr_infl.txt"
	case "timplus":
		return "rr_timplus_infl.txt"
	case "imm", "prm_imm":
		return "rr_imm_infl.txt"
	case "cimm":
		return "rr_cimm.txt"
	case "asvrr":
		return "rrs_ASVRR_infl.txt"
	case "sni":
		return "rr_sni_infl.txt"
	default:
		return name + "_infl.txt"
	}
}

// TimeFile() returns the conventional timing file name of the named algorithm.
func TimeFile(name string) string {
	return "time_" + SeedFile(name)
}

// WriteSeeds() writes one line per seed: "node_id estimated_cumulative_spread".
func WriteSeeds(w io.Writer, seeds []models.Seed) error {
	for _, seed := range seeds {
		if _, err := fmt.Fprintf(w, "%d %g\n", seed.Node, seed.Spread); err != nil {
			return err
		}
	}
	return nil
}

// WriteTimedSeeds() writes one line per seed, with the added time column:
// "node_id time estimated_cumulative_spread".
func WriteTimedSeeds(w io.Writer, seeds []models.TimedSeed) error {
	for _, seed := range seeds {
		if _, err := fmt.Fprintf(w, "%d %d %g\n", seed.Node, seed.Time, seed.Spread); err != nil {
			return err
		}
	}
	return nil
}

// WriteAllocation() writes one line per allocated node, in nodeID order:
// "node_id budget_share".
func WriteAllocation(w io.Writer, allocation greedy.Allocation) error {
	nodeIDs := make([]uint32, 0, len(allocation))
	for nodeID := range allocation {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })

	for _, nodeID := range nodeIDs {
		if _, err := fmt.Fprintf(w, "%d %g\n", nodeID, allocation[nodeID]); err != nil {
			return err
		}
	}
	return nil
}

// WriteInfluence() writes one line per node, in nodeID order:
// "node_id influence".
func WriteInfluence(w io.Writer, influence models.InfluenceMap) error {
	nodeIDs := make([]uint32, 0, len(influence))
	for nodeID := range influence {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })

	for _, nodeID := range nodeIDs {
		if _, err := fmt.Fprintf(w, "%d %g\n", nodeID, influence[nodeID]); err != nil {
			return err
		}
	}
	return nil
}

// WriteTiming() writes a single line: "sampling_seconds selection_seconds
// rr_set_count".
func WriteTiming(w io.Writer, timing algo.Timing) error {
	_, err := fmt.Fprintf(w, "%g %g %d\n",
		timing.Sampling.Seconds(), timing.Selection.Seconds(), timing.Samples)
	return err
}

// WriteResult() writes the seed file and the timing file of one completed run
// into dir, under the conventional names of the named algorithm.
func WriteResult(dir, name string, result *algo.Result) error {
	seedFile, err := os.Create(filepath.Join(dir, SeedFile(name)))
	if err != nil {
		return err
	}
	defer seedFile.Close()

	switch {
	case len(result.TimedSeeds) > 0:
		err = WriteTimedSeeds(seedFile, result.TimedSeeds)
	case len(result.Allocation) > 0:
		err = WriteAllocation(seedFile, result.Allocation)
	default:
		err = WriteSeeds(seedFile, result.Seeds)
	}
	if err != nil {
		return err
	}

	timeFile, err := os.Create(filepath.Join(dir, TimeFile(name)))
	if err != nil {
		return err
	}
	defer timeFile.Close()

	return WriteTiming(timeFile, result.Timing)
}
