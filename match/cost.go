package match

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mmuldo/recolor/palette"
)

// Cost is the assignment cost of mapping original o onto palette colour p.
//
//	base    = DeltaE00(o, p)
//	scale   = Alpha * |rank(o) - rank(p)|
//	hue     = Beta * HueDistance(h(o), h(p))
//	neutral = Gamma * max(0, C(p) - C(o))   when C(o) < CNeutral
//
// The sum is multiplied by the weight of o.
func Cost(o, p palette.Sample, cfg Config) float64 {
	base := palette.DeltaE00(o.Lab, p.Lab)
	scale := cfg.Alpha * math.Abs(float64(o.LightnessRank-p.LightnessRank))
	hue := cfg.Beta * palette.HueDistance(o.H, p.H)
	neutral := 0.0
	if o.C < cfg.CNeutral {
		neutral = cfg.Gamma * math.Max(0, p.C-o.C)
	}
	return weightOf(o) * (base + scale + hue + neutral)
}

// BuildCostMatrix returns the len(originals) x len(pal) cost matrix.
func BuildCostMatrix(originals, pal []palette.Sample, cfg Config) (*mat.Dense, error) {
	if len(originals) == 0 || len(pal) == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyMatrix, len(originals), len(pal))
	}
	cost := mat.NewDense(len(originals), len(pal), nil)
	for i, o := range originals {
		for j, p := range pal {
			cost.Set(i, j, Cost(o, p, cfg))
		}
	}
	return cost, nil
}

// NewCostMatrix copies rows into a dense matrix, rejecting empty or jagged
// input and non-finite cells.
func NewCostMatrix(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyMatrix
	}
	m := len(rows[0])
	data := make([]float64, 0, len(rows)*m)
	for i, row := range rows {
		if len(row) != m {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedMatrix, i, len(row), m)
		}
		data = append(data, row...)
	}
	cost := mat.NewDense(len(rows), m, data)
	if err := checkFinite(cost); err != nil {
		return nil, err
	}
	return cost, nil
}

// PaletteDistances is the symmetric matrix of DeltaE00 between palette colours.
func PaletteDistances(pal []palette.Sample) *mat.SymDense {
	d := mat.NewSymDense(len(pal), nil)
	for i := range pal {
		for j := i + 1; j < len(pal); j++ {
			d.SetSym(i, j, palette.DeltaE00(pal[i].Lab, pal[j].Lab))
		}
	}
	return d
}

func weightOf(s palette.Sample) float64 {
	if s.Weight > 0 {
		return s.Weight
	}
	return 1
}
