// Package route orders evidence locations into a short walking tour.
// Exact search for small point sets, nearest-neighbor beyond that. Pure
// compute, no I/O.
package route

import (
	"math"

	"github.com/huntworks/geohunt/internal/geo"
)

// bruteForceLimit is the largest point count solved exactly. 8 points is
// 5040 permutations with a fixed start; beyond that the greedy heuristic
// is close enough for a walking game.
const bruteForceLimit = 8

// Solution is an ordered visit plan starting at index 0 (the player).
type Solution struct {
	Order         []int   `json:"order"`
	TotalDistance float64 `json:"totalDistance"`
}

// DistanceMatrix precomputes pairwise haversine distances.
func DistanceMatrix(points []geo.Coordinate) [][]float64 {
	n := len(points)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := geo.Distance(points[i], points[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// Solve plans a visit order over the points, always starting at index 0.
func Solve(points []geo.Coordinate) Solution {
	n := len(points)
	if n == 0 {
		return Solution{Order: []int{}}
	}
	if n == 1 {
		return Solution{Order: []int{0}}
	}

	m := DistanceMatrix(points)
	if n <= bruteForceLimit {
		return solveBruteForce(m)
	}
	return solveNearestNeighbor(m)
}

func solveBruteForce(m [][]float64) Solution {
	n := len(m)
	rest := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		rest = append(rest, i)
	}

	best := Solution{TotalDistance: math.Inf(1)}
	permute(rest, 0, func(order []int) {
		total := 0.0
		prev := 0
		for _, next := range order {
			total += m[prev][next]
			prev = next
		}
		if total < best.TotalDistance {
			best.TotalDistance = total
			best.Order = append([]int{0}, append([]int(nil), order...)...)
		}
	})
	return best
}

func permute(elems []int, k int, visit func([]int)) {
	if k == len(elems) {
		visit(elems)
		return
	}
	for i := k; i < len(elems); i++ {
		elems[k], elems[i] = elems[i], elems[k]
		permute(elems, k+1, visit)
		elems[k], elems[i] = elems[i], elems[k]
	}
}

func solveNearestNeighbor(m [][]float64) Solution {
	n := len(m)
	visited := make([]bool, n)
	order := make([]int, 0, n)

	current := 0
	visited[0] = true
	order = append(order, 0)
	total := 0.0

	for len(order) < n {
		next := -1
		nearest := math.Inf(1)
		for j := 0; j < n; j++ {
			if !visited[j] && m[current][j] < nearest {
				nearest = m[current][j]
				next = j
			}
		}
		visited[next] = true
		order = append(order, next)
		total += nearest
		current = next
	}

	return Solution{Order: order, TotalDistance: total}
}
