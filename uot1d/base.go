// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uot1d solves unregularized unbalanced optimal transport between
// discrete measures supported on the real line.
//
// The supports are sorted, so the balanced problem has an exact O(n+m)
// solution by the north-west corner walk (SolveOT). The unbalanced problem
// relaxes the marginal constraints by a KL penalty of strength ρ and is
// solved in its dual form by Frank-Wolfe: each iteration re-centers the
// potentials along the translation symmetry, calls the exact balanced solver
// on the reweighted marginals as the linear minimization oracle, and moves
// toward that vertex by a configurable step size.
package uot1d

import "math"

const (
	zero = 0.0
	one  = 1.0
	half = 0.5
	two  = 2.0
)

const (
	// Newton budget of the line searches.
	defaultSearchIter = 5
)

// groundCost is the 1-D transport cost |x-y|ᵖ.
func groundCost(x, y, p float64) float64 {
	return math.Pow(math.Abs(x-y), p)
}

func clamp(t, lo, hi float64) float64 {
	return math.Min(math.Max(t, lo), hi)
}
