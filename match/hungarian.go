package match

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyMatrix is returned for a cost matrix with no rows or columns.
	ErrEmptyMatrix = errors.New("empty cost matrix")
	// ErrTooManyRows is returned when rows outnumber columns.
	ErrTooManyRows = errors.New("more rows than columns")
	// ErrMalformedMatrix is returned for jagged or non-finite input.
	ErrMalformedMatrix = errors.New("malformed cost matrix")
)

// SolveAssignment finds the minimum total cost assignment of every row to a
// distinct column (Kuhn-Munkres with potentials, O(n²m)). It requires
// 0 < rows <= columns. The returned slice maps row -> column.
func SolveAssignment(cost mat.Matrix) ([]int, error) {
	if cost == nil {
		return nil, ErrEmptyMatrix
	}
	n, m := cost.Dims()
	if n == 0 || m == 0 {
		return nil, ErrEmptyMatrix
	}
	if n > m {
		return nil, fmt.Errorf("%w: %d rows, %d columns", ErrTooManyRows, n, m)
	}
	if err := checkFinite(cost); err != nil {
		return nil, err
	}

	// 1-based: row 0 and column 0 are the virtual start of each search.
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)
	way := make([]int, m+1)
	minv := make([]float64, m+1)
	used := make([]bool, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = math.Inf(1)
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := cost.At(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 1; j <= m; j++ {
		if p[j] != 0 {
			assign[p[j]-1] = j - 1
		}
	}
	return assign, nil
}

// AssignmentCost sums cost(i, assign[i]).
func AssignmentCost(cost mat.Matrix, assign []int) float64 {
	var total float64
	for i, j := range assign {
		total += cost.At(i, j)
	}
	return total
}

func checkFinite(cost mat.Matrix) error {
	n, m := cost.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if v := cost.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: cell (%d,%d) is %v", ErrMalformedMatrix, i, j, v)
			}
		}
	}
	return nil
}
