package redistore

import (
	"strconv"
	"strings"

	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/utils/redisutils"
)

// KeyInfluence() returns the key of the Redis hash holding the per-node
// influence values.
func KeyInfluence() string {
	return "influence"
}

// KeySeeds() returns the key holding the seed sequence of the named algorithm.
func KeySeeds(algo string) string {
	return "seeds:" + algo
}

// FormatSeeds() formats a seed sequence into a string ready to be stored in
// Redis. Each seed becomes "node:spread"; seeds are joined by commas.
func FormatSeeds(seeds []models.Seed) string {
	strVals := make([]string, len(seeds))
	for i, seed := range seeds {
		strVals[i] = redisutils.FormatID(seed.Node) + ":" +
			strconv.FormatFloat(seed.Spread, 'g', -1, 64)
	}

	return strings.Join(strVals, ",")
}

// ParseSeeds() parses a string to a seed sequence.
func ParseSeeds(strSeeds string) ([]models.Seed, error) {
	if len(strSeeds) == 0 {
		return []models.Seed{}, nil
	}

	strVals := strings.Split(strSeeds, ",")
	seeds := make([]models.Seed, len(strVals))

	for i, strVal := range strVals {
		strNode, strSpread, found := strings.Cut(strVal, ":")
		if !found {
			return nil, ErrInvalidSeedFormat
		}

		node, err := redisutils.ParseID(strNode)
		if err != nil {
			return nil, err
		}

		spread, err := redisutils.ParseFloat64(strSpread)
		if err != nil {
			return nil, err
		}

		seeds[i] = models.Seed{Node: node, Spread: spread}
	}

	return seeds, nil
}
