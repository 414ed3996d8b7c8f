package match

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/mmuldo/recolor/palette"
)

// Edge links two originals that are near each other. Distance is their
// CIEDE2000 difference, the value refinement tries to preserve.
type Edge struct {
	A        int
	B        int
	Distance float64
}

// Graph is the undirected k-nearest-neighbour graph over the originals.
type Graph struct {
	g        *simple.WeightedUndirectedGraph
	edges    []Edge
	incident [][]int
}

// BuildGraph selects, for every sample, the k closest other samples by
// DeltaE76 (ties by position), unions the candidates into undirected edges
// and weighs each edge with DeltaE00.
func BuildGraph(samples []palette.Sample, k int) *Graph {
	n := len(samples)
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}

	others := make([]int, 0, n)
	dist := make([]float64, n)
	for i := 0; i < n; i++ {
		others = others[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dist[j] = palette.DeltaE76(samples[i].Lab, samples[j].Lab)
			others = append(others, j)
		}
		sort.SliceStable(others, func(a, b int) bool {
			return dist[others[a]] < dist[others[b]]
		})

		limit := k
		if limit > len(others) {
			limit = len(others)
		}
		for _, j := range others[:limit] {
			if g.HasEdgeBetween(int64(i), int64(j)) {
				continue
			}
			g.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(i),
				T: simple.Node(j),
				W: palette.DeltaE00(samples[i].Lab, samples[j].Lab),
			})
		}
	}

	gr := &Graph{g: g, incident: make([][]int, n)}
	it := g.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		a, b := int(e.From().ID()), int(e.To().ID())
		if a > b {
			a, b = b, a
		}
		gr.edges = append(gr.edges, Edge{A: a, B: b, Distance: e.Weight()})
	}
	// gonum iterates in map order
	sort.Slice(gr.edges, func(x, y int) bool {
		if gr.edges[x].A != gr.edges[y].A {
			return gr.edges[x].A < gr.edges[y].A
		}
		return gr.edges[x].B < gr.edges[y].B
	})
	for idx, e := range gr.edges {
		gr.incident[e.A] = append(gr.incident[e.A], idx)
		gr.incident[e.B] = append(gr.incident[e.B], idx)
	}
	return gr
}

// Edges returns the edges ordered by (A, B).
func (gr *Graph) Edges() []Edge {
	return gr.edges
}

// Len is the number of nodes.
func (gr *Graph) Len() int {
	return len(gr.incident)
}

// Incident returns the indices into Edges of the edges touching node.
func (gr *Graph) Incident(node int) []int {
	return gr.incident[node]
}

// Degree is the number of edges touching node.
func (gr *Graph) Degree(node int) int {
	return len(gr.incident[node])
}

// Distance returns the stored distance between a and b, if they are linked.
func (gr *Graph) Distance(a, b int) (float64, bool) {
	if a == b || !gr.g.HasEdgeBetween(int64(a), int64(b)) {
		return 0, false
	}
	return gr.g.Weight(int64(a), int64(b))
}
