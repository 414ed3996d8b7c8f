package match

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RefineResult reports what the refinement pass did.
type RefineResult struct {
	// Assignment is the refined row -> palette position mapping.
	Assignment []int
	// Initial and Final are the objective before and after the pass.
	Initial float64
	Final   float64
	// Trials is the number of swaps evaluated, Swaps the number committed.
	Trials int
	Swaps  int
	// History holds the objective after each committed swap.
	History []float64
}

// Objective is the node cost of assign plus delta times the total distortion
// of the graph's edges.
func Objective(assign []int, cost mat.Matrix, gr *Graph, dist mat.Symmetric, delta float64) float64 {
	nodes := make([]float64, len(assign))
	for i, j := range assign {
		nodes[i] = cost.At(i, j)
	}
	total := floats.Sum(nodes)
	if gr == nil || delta == 0 {
		return total
	}
	var distortion float64
	for _, e := range gr.Edges() {
		distortion += math.Abs(e.Distance - dist.At(assign[e.A], assign[e.B]))
	}
	return total + delta*distortion
}

// Refine runs iter trials of greedy pairwise swapping on a copy of assign.
// Each trial picks two distinct rows with rng and commits the swap only when
// it strictly lowers the objective. Only the two node terms and the edges
// incident to the two rows are re-evaluated.
func Refine(assign []int, cost mat.Matrix, gr *Graph, dist mat.Symmetric, delta float64, iter int, rng *rand.Rand) RefineResult {
	cur := make([]int, len(assign))
	copy(cur, assign)

	res := RefineResult{Assignment: cur}
	res.Initial = Objective(cur, cost, gr, dist, delta)
	res.Final = res.Initial

	n := len(cur)
	if n < 2 || iter <= 0 {
		return res
	}

	s := swapper{assign: cur, cost: cost, gr: gr, dist: dist, weight: delta}
	objective := res.Initial
	for t := 0; t < iter; t++ {
		i := rng.IntN(n)
		j := rng.IntN(n - 1)
		if j >= i {
			j++
		}
		res.Trials++

		d := s.change(i, j)
		if d < 0 {
			cur[i], cur[j] = cur[j], cur[i]
			objective += d
			res.Swaps++
			res.History = append(res.History, objective)
		}
	}
	res.Final = Objective(cur, cost, gr, dist, delta)
	return res
}

type swapper struct {
	assign []int
	cost   mat.Matrix
	gr     *Graph
	dist   mat.Symmetric
	weight float64
}

// change is the exact objective change of swapping the palette colours of
// rows i and j.
func (s swapper) change(i, j int) float64 {
	ai, aj := s.assign[i], s.assign[j]
	d := s.cost.At(i, aj) + s.cost.At(j, ai) - s.cost.At(i, ai) - s.cost.At(j, aj)
	if s.gr == nil || s.weight == 0 {
		return d
	}

	after := func(node int) int {
		switch node {
		case i:
			return aj
		case j:
			return ai
		}
		return s.assign[node]
	}
	edges := s.gr.Edges()
	edgeChange := func(idx int) float64 {
		e := edges[idx]
		before := math.Abs(e.Distance - s.dist.At(s.assign[e.A], s.assign[e.B]))
		moved := math.Abs(e.Distance - s.dist.At(after(e.A), after(e.B)))
		return moved - before
	}

	var distortion float64
	for _, idx := range s.gr.Incident(i) {
		distortion += edgeChange(idx)
	}
	for _, idx := range s.gr.Incident(j) {
		if e := edges[idx]; e.A == i || e.B == i {
			continue
		}
		distortion += edgeChange(idx)
	}
	return d + s.weight*distortion
}
