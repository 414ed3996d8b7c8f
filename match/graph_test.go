package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmuldo/recolor/palette"
)

func TestBuildGraphNearestPairs(t *testing.T) {
	samples := samplesOf(t, "#000000", "#ffffff", "#050505", "#fafafa")

	gr := BuildGraph(samples, 1)

	assert.Equal(t, []Edge{
		{A: 0, B: 2, Distance: palette.DeltaE00(samples[0].Lab, samples[2].Lab)},
		{A: 1, B: 3, Distance: palette.DeltaE00(samples[1].Lab, samples[3].Lab)},
	}, gr.Edges())
	assert.Equal(t, 4, gr.Len())
	for i := 0; i < 4; i++ {
		assert.Equal(t, 1, gr.Degree(i))
	}
}

func TestBuildGraphCompleteWhenKCoversAll(t *testing.T) {
	samples := samplesOf(t, "#ff0000", "#00ff00", "#0000ff", "#808080", "#ffff00")

	gr := BuildGraph(samples, 10)

	assert.Len(t, gr.Edges(), 10)
	for i := range samples {
		assert.Equal(t, 4, gr.Degree(i))
	}
}

func TestBuildGraphInvariants(t *testing.T) {
	rng := NewRand(3)
	samples := samplesOf(t, randomHexes(rng, 25)...)

	for _, k := range []int{1, 2, 3, 5} {
		gr := BuildGraph(samples, k)

		seen := make(map[[2]int]bool)
		for idx, e := range gr.Edges() {
			require.Less(t, e.A, e.B, "edge %d not normalised", idx)
			key := [2]int{e.A, e.B}
			assert.False(t, seen[key], "duplicate edge %v", key)
			seen[key] = true
			assert.InDelta(t, palette.DeltaE00(samples[e.A].Lab, samples[e.B].Lab), e.Distance, 1e-12)

			d, ok := gr.Distance(e.B, e.A)
			assert.True(t, ok)
			assert.InDelta(t, e.Distance, d, 1e-12)

			if idx > 0 {
				prev := gr.Edges()[idx-1]
				assert.True(t, prev.A < e.A || prev.A == e.A && prev.B < e.B)
			}
		}

		assert.LessOrEqual(t, len(gr.Edges()), len(samples)*k)
		for i := range samples {
			assert.GreaterOrEqual(t, gr.Degree(i), k)
			for _, idx := range gr.Incident(i) {
				e := gr.Edges()[idx]
				assert.True(t, e.A == i || e.B == i)
			}
		}
	}
}

func TestBuildGraphDegenerate(t *testing.T) {
	assert.Empty(t, BuildGraph(nil, 3).Edges())

	single := BuildGraph(samplesOf(t, "#123456"), 3)
	assert.Empty(t, single.Edges())
	assert.Equal(t, 0, single.Degree(0))

	_, ok := single.Distance(0, 0)
	assert.False(t, ok)
}
