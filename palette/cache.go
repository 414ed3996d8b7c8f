package palette

import (
	"fmt"
	"sort"
)

// Entry is a colour as supplied by a caller: a palette slot or a colour used
// in the source image.
type Entry struct {
	Label  string  `json:"label,omitempty"`
	Hex    string  `json:"hex"`
	Weight float64 `json:"weight,omitempty"`
}

// Sample is an Entry enriched with everything the matcher needs.
type Sample struct {
	Index         int
	Label         string
	Hex           string
	Weight        float64
	Lab           Lab
	C             float64
	H             float64
	LightnessRank int
}

// BuildCache converts entries to samples and ranks them by lightness within
// the list. Sample.Index is the entry's position in entries.
func BuildCache(entries []Entry) ([]Sample, error) {
	samples := make([]Sample, len(entries))
	for i, e := range entries {
		hex, err := ParseHex(e.Hex)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		lab, err := ToLab(hex)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		samples[i] = Sample{
			Index:  i,
			Label:  e.Label,
			Hex:    hex,
			Weight: e.Weight,
			Lab:    lab,
			C:      lab.Chroma(),
			H:      lab.Hue(),
		}
	}
	AssignLightnessRanks(samples)
	return samples, nil
}

// AssignLightnessRanks sets LightnessRank on every sample: the position of the
// sample when the list is stably sorted by L ascending.
func AssignLightnessRanks(samples []Sample) {
	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return samples[order[a]].Lab.L < samples[order[b]].Lab.L
	})
	for rank, i := range order {
		samples[i].LightnessRank = rank
	}
}

// RanksArePermutation reports whether the lightness ranks cover 0..len-1
// exactly once.
func RanksArePermutation(samples []Sample) bool {
	seen := make([]bool, len(samples))
	for _, s := range samples {
		if s.LightnessRank < 0 || s.LightnessRank >= len(samples) || seen[s.LightnessRank] {
			return false
		}
		seen[s.LightnessRank] = true
	}
	return true
}
