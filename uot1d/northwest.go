// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uot1d

import "math"

// Plan is the support of a primal transport plan: W[k] units of mass moved
// from x[I[k]] to y[J[k]]. The north-west corner walk produces at most
// n+m-1 entries.
type Plan struct {
	I, J []int
	W    []float64
}

// SolveOT computes the exact optimal plan between two balanced measures on
// sorted supports for the ground cost |x-y|ᵖ, p ≥ 1, together with
// complementary-slack dual potentials and the transported cost.
//
// The plan is the north-west corner walk over the sorted supports, optimal
// because the cost satisfies the Monge condition. The duals are propagated
// along the walk (tight on every plan entry, anchored at g₀ = 0) and are
// feasible for every pair: fᵢ+gⱼ ≤ 𝐂ᵢⱼ.
//
// Total masses must agree; the trailing remainder of whichever side carries
// extra rounding mass is absorbed by the last entry.
func SolveOT(a, b, x, y []float64, p float64) (plan Plan, f, g []float64, cost float64) {
	n, m := len(a), len(b)
	if len(x) != n || len(y) != m {
		panic("support dimension not match weights")
	}
	if n == 0 || m == 0 {
		panic("empty measure")
	}

	f = make([]float64, n)
	g = make([]float64, m)
	plan.I = make([]int, 0, n+m-1)
	plan.J = make([]int, 0, n+m-1)
	plan.W = make([]float64, 0, n+m-1)

	i, j := 0, 0
	ra, rb := a[0], b[0]
	f[0] = groundCost(x[0], y[0], p)
	for {
		w := math.Min(ra, rb)
		plan.I = append(plan.I, i)
		plan.J = append(plan.J, j)
		plan.W = append(plan.W, w)
		cost += w * groundCost(x[i], y[j], p)
		if i == n-1 && j == m-1 {
			break
		}
		if (ra <= rb || j == m-1) && i < n-1 {
			rb -= ra
			i++
			ra = a[i]
			f[i] = groundCost(x[i], y[j], p) - g[j]
		} else {
			ra -= rb
			j++
			rb = b[j]
			g[j] = groundCost(x[i], y[j], p) - f[i]
		}
	}
	return
}
