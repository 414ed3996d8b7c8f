package match

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmuldo/recolor/palette"
)

func randomHexes(rng *rand.Rand, n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		h := fmt.Sprintf("#%06x", rng.IntN(1<<24))
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

func entriesOf(hexes ...string) []palette.Entry {
	entries := make([]palette.Entry, len(hexes))
	for i, h := range hexes {
		entries[i] = palette.Entry{Hex: h}
	}
	return entries
}

func samplesOf(t *testing.T, hexes ...string) []palette.Sample {
	t.Helper()
	samples, err := palette.BuildCache(entriesOf(hexes...))
	require.NoError(t, err)
	return samples
}

func scenarioConfig() Config {
	return Config{
		Alpha:    1.2,
		Beta:     0.15,
		Gamma:    0.08,
		Delta:    0.35,
		CNeutral: 6.0,
		K:        2,
		Iter:     50,
		Seed:     7,
	}
}

func isInjective(assign []int) bool {
	seen := make(map[int]bool, len(assign))
	for _, j := range assign {
		if seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}
