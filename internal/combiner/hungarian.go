package combiner

import "math"

// forbiddenCost marks rejected train/track pairs and the padding rows or
// columns that make the train by track matrix square.
const forbiddenCost = 1e18

// assignTrains picks for every accepted train at most one track to extend
// so that no track takes two trains and the summed train/track weight is
// maximal. weights[i][j] scores train i on track j; rejected (NaN) pairs
// are never chosen. It returns the track index per train, or -1 when the
// train is left to become a new track.
func assignTrains(weights [][]float64) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}
	m := len(weights[0])
	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	if m == 0 {
		return result
	}

	// Best weight becomes zero cost.
	maxWeight := math.Inf(-1)
	for _, row := range weights {
		for _, w := range row {
			if !IsRejected(w) && w > maxWeight {
				maxWeight = w
			}
		}
	}
	if math.IsInf(maxWeight, -1) {
		return result
	}

	dim := max(n, m)
	cost := make([][]float64, dim)
	for i := range cost {
		cost[i] = make([]float64, dim)
		for j := range cost[i] {
			cost[i][j] = forbiddenCost
			if i < n && j < m && !IsRejected(weights[i][j]) {
				cost[i][j] = maxWeight - weights[i][j]
			}
		}
	}

	rowAssign := hungarian(cost)
	for i := 0; i < n; i++ {
		j := rowAssign[i]
		if j >= 0 && j < m && !IsRejected(weights[i][j]) {
			result[i] = j
		}
	}
	return result
}

// hungarian minimises the total cost of a square train by track matrix
// (Kuhn-Munkres with train and track potentials) and returns the track
// column for every train row. Padding rows and columns absorb the surplus
// side at forbiddenCost.
func hungarian(cost [][]float64) []int {
	dim := len(cost)
	const inf = math.MaxFloat64 / 2

	// Indices start at 1; column 0 holds the train being inserted.
	trainPot := make([]float64, dim+1)
	trackPot := make([]float64, dim+1)
	owner := make([]int, dim+1) // owner[j] is the train row holding track j
	way := make([]int, dim+1)
	slack := make([]float64, dim+1) // smallest reduced cost reaching each track
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		owner[0] = i
		j0 := 0
		for j := 1; j <= dim; j++ {
			slack[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := owner[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - trainPot[i0] - trackPot[j]
				if cur < slack[j] {
					slack[j] = cur
					way[j] = j0
				}
				if slack[j] < delta {
					delta = slack[j]
					j1 = j
				}
			}
			if j1 < 0 {
				break
			}
			for j := 0; j <= dim; j++ {
				if used[j] {
					trainPot[owner[j]] += delta
					trackPot[j] -= delta
				} else {
					slack[j] -= delta
				}
			}
			j0 = j1
			if owner[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			owner[j0] = owner[way[j0]]
			j0 = way[j0]
		}
	}

	rowAssign := make([]int, dim)
	for i := range rowAssign {
		rowAssign[i] = -1
	}
	for j := 1; j <= dim; j++ {
		if owner[j] > 0 {
			rowAssign[owner[j]-1] = j - 1
		}
	}
	return rowAssign
}
