package lowerbound

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// minCostAssignment solves the square minimum-cost bipartite assignment
// problem over cost (rows = boxes, columns = goals) using the Jonker-style
// shortest-augmenting-path formulation of the Hungarian algorithm. gonum has
// no ready-made assignment/matching solver, so the algorithm itself is
// hand-written here (see DESIGN.md); gonum's mat.Dense is still used as the
// cost-matrix container to keep the numeric plumbing consistent with the
// rest of the domain stack.
//
// ok is false if every complete assignment uses a non-finite entry.
// PushesLowerBound sets +Inf for a (box, goal) pair with no push path, so a
// configuration whose boxes cannot all be matched to distinct reachable
// goals yields ok == false.
func minCostAssignment(cost *mat.Dense) (total float64, ok bool) {
	n, m := cost.Dims()
	if n != m {
		return 0, false
	}
	if n == 0 {
		return 0, true
	}

	const inf = math.MaxFloat64 / 4

	// u, v are the dual potentials for rows and the augmented column set
	// (column 0 is an unused sentinel, columns 1..n map to goals 0..n-1).
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)  // p[j] = row currently matched to column j
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				c := cost.At(i0-1, j-1) - u[i0] - v[j]
				if c < minv[j] {
					minv[j] = c
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			if j1 == -1 {
				return 0, false
			}
			for j := 0; j <= n; j++ {
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

	total = 0
	for j := 1; j <= n; j++ {
		i := p[j]
		if i == 0 {
			return 0, false
		}
		c := cost.At(i-1, j-1)
		if math.IsInf(c, 1) || c >= inf {
			return 0, false
		}
		total += c
	}
	return total, true
}
