package match

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mmuldo/recolor/palette"
)

// Result is the outcome of ComputeMapping.
type Result struct {
	// Mapping sends each original hex to an index in the caller's palette.
	Mapping map[string]int `json:"mapping"`
	// ActiveCount is the number of originals that took part in the optimal
	// one-to-one assignment.
	ActiveCount int `json:"active_count"`
	// Assignments lists every original in input order.
	Assignments []Assigned `json:"assignments"`
	// Refinement describes the swap pass over the active subset.
	Refinement RefineStats `json:"refinement"`
}

// Assigned describes the replacement chosen for one original.
type Assigned struct {
	Hex          string  `json:"hex"`
	Label        string  `json:"label,omitempty"`
	Weight       float64 `json:"weight"`
	PaletteIndex int     `json:"palette_index"`
	PaletteHex   string  `json:"palette_hex"`
	PaletteLabel string  `json:"palette_label,omitempty"`
	DeltaE       float64 `json:"delta_e"`
	Overflow     bool    `json:"overflow"`
}

// RefineStats summarises a RefineResult.
type RefineStats struct {
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
	Trials  int     `json:"trials"`
	Swaps   int     `json:"swaps"`
}

// ranked is an entry together with its input position.
type ranked struct {
	palette.Entry
	pos int
}

type byWeight []ranked

func (rs byWeight) Len() int           { return len(rs) }
func (rs byWeight) Less(i, j int) bool { return rs[i].Weight > rs[j].Weight }
func (rs byWeight) Swap(i, j int)      { rs[i], rs[j] = rs[j], rs[i] }

// ComputeMapping maps originals onto pal.
//
// Invalid colours are dropped, duplicate originals are merged (weights
// summed) and non-positive weights count as 1. When originals outnumber the
// palette, the heaviest len(pal) colours are assigned optimally and each of
// the rest takes the closest palette colour already in use.
func ComputeMapping(originals, pal []palette.Entry, cfg Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(cfg, opts)

	entries := sanitizeOriginals(originals, o.log)
	res := &Result{Mapping: make(map[string]int, len(entries))}
	if len(entries) == 0 {
		return res, nil
	}

	palSamples, err := paletteCache(pal, o.log)
	if err != nil {
		return nil, err
	}
	if len(palSamples) == 0 {
		return nil, fmt.Errorf("%w: %d colours to map", ErrEmptyPalette, len(entries))
	}

	active, overflow := splitActive(entries, len(palSamples))
	o.log.WithFields(logrus.Fields{
		"originals": len(entries),
		"palette":   len(palSamples),
		"active":    len(active),
		"overflow":  len(overflow),
	}).Debug("computing mapping")

	activeSamples, err := palette.BuildCache(active)
	if err != nil {
		return nil, err
	}
	gr := BuildGraph(activeSamples, cfg.K)
	cost, err := BuildCostMatrix(activeSamples, palSamples, cfg)
	if err != nil {
		return nil, err
	}
	assign, err := SolveAssignment(cost)
	if err != nil {
		return nil, err
	}
	refined := Refine(assign, cost, gr, PaletteDistances(palSamples), cfg.Delta, cfg.Iter, o.rng)
	o.log.WithFields(logrus.Fields{
		"edges":   len(gr.Edges()),
		"trials":  refined.Trials,
		"swaps":   refined.Swaps,
		"initial": refined.Initial,
		"final":   refined.Final,
	}).Debug("refinement finished")

	chosen := make(map[string]Assigned, len(entries))
	for i, s := range activeSamples {
		p := palSamples[refined.Assignment[i]]
		chosen[s.Hex] = assigned(s.Hex, s.Label, s.Weight, s.Lab, p, false)
	}
	for _, e := range overflow {
		lab, err := palette.ToLab(e.Hex)
		if err != nil {
			return nil, err
		}
		p := closestUsed(lab, refined.Assignment, palSamples)
		chosen[e.Hex] = assigned(e.Hex, e.Label, e.Weight, lab, p, true)
	}

	res.ActiveCount = len(active)
	res.Refinement = RefineStats{
		Initial: refined.Initial,
		Final:   refined.Final,
		Trials:  refined.Trials,
		Swaps:   refined.Swaps,
	}
	for _, e := range entries {
		a := chosen[e.Hex]
		res.Mapping[e.Hex] = a.PaletteIndex
		res.Assignments = append(res.Assignments, a)
	}
	return res, nil
}

func assigned(hex, label string, weight float64, lab palette.Lab, p palette.Sample, overflow bool) Assigned {
	return Assigned{
		Hex:          hex,
		Label:        label,
		Weight:       weight,
		PaletteIndex: p.Index,
		PaletteHex:   p.Hex,
		PaletteLabel: p.Label,
		DeltaE:       palette.DeltaE00(lab, p.Lab),
		Overflow:     overflow,
	}
}

// sanitizeOriginals normalises hexes, drops invalid ones and merges
// duplicates into the first occurrence.
func sanitizeOriginals(originals []palette.Entry, log logrus.FieldLogger) []palette.Entry {
	entries := make([]palette.Entry, 0, len(originals))
	seen := make(map[string]int, len(originals))
	for i, e := range originals {
		hex, err := palette.ParseHex(e.Hex)
		if err != nil {
			log.WithField("index", i).WithError(err).Debug("dropping original colour")
			continue
		}
		w := e.Weight
		if !(w > 0) {
			w = 1
		}
		if at, ok := seen[hex]; ok {
			entries[at].Weight += w
			if entries[at].Label == "" {
				entries[at].Label = e.Label
			}
			continue
		}
		seen[hex] = len(entries)
		entries = append(entries, palette.Entry{Label: e.Label, Hex: hex, Weight: w})
	}
	return entries
}

// paletteCache builds samples for the valid palette entries. Invalid entries
// are skipped; Sample.Index keeps the position in pal.
func paletteCache(pal []palette.Entry, log logrus.FieldLogger) ([]palette.Sample, error) {
	valid := make([]palette.Entry, 0, len(pal))
	index := make([]int, 0, len(pal))
	for i, e := range pal {
		hex, err := palette.ParseHex(e.Hex)
		if err != nil {
			log.WithField("index", i).WithError(err).Debug("skipping palette colour")
			continue
		}
		valid = append(valid, palette.Entry{Label: e.Label, Hex: hex})
		index = append(index, i)
	}
	samples, err := palette.BuildCache(valid)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		samples[i].Index = index[i]
	}
	return samples, nil
}

// splitActive keeps the m heaviest entries (ties by input order) in input
// order; the rest overflow.
func splitActive(entries []palette.Entry, m int) (active, overflow []palette.Entry) {
	if len(entries) <= m {
		return entries, nil
	}

	order := make(byWeight, len(entries))
	for i, e := range entries {
		order[i] = ranked{e, i}
	}
	sort.Stable(order)

	keep := make([]bool, len(entries))
	for _, r := range order[:m] {
		keep[r.pos] = true
	}
	for i, e := range entries {
		if keep[i] {
			active = append(active, e)
		} else {
			overflow = append(overflow, e)
		}
	}
	return active, overflow
}

// closestUsed picks, among the palette positions in assign (in order), the
// one with the smallest DeltaE00 to lab. Ties keep the first.
func closestUsed(lab palette.Lab, assign []int, pal []palette.Sample) palette.Sample {
	best := pal[assign[0]]
	bestD := palette.DeltaE00(lab, best.Lab)
	for _, j := range assign[1:] {
		if d := palette.DeltaE00(lab, pal[j].Lab); d < bestD {
			best, bestD = pal[j], d
		}
	}
	return best
}
