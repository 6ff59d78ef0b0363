// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sinkhorn computes dual potentials of entropic unbalanced optimal
// transport between discrete measures by alternating proximal iterations.
//
// The marginal constraints of balanced transport are relaxed by an entropy
// penalty (KL or Berg) of strength ρ, and the plan is smoothed by an entropic
// term of strength ε. Three fixed-point maps are provided: the plain
// alternating update (F), a translation-corrected single pass (G) and a
// nested translation-tightening pass (H). Each map application is a pure
// function of the current potentials; the caller owns the outer loop, or may
// use Solve which iterates a map until the sup-norm update stalls.
package sinkhorn

const (
	zero = 0.0
	one  = 1.0
	half = 0.5
)

const (
	// Newton budget of the Berg translation rescale.
	defaultRescaleIter = 10
	// Prox/rescale alternation budget of the H step.
	defaultInnerIter = 20
	// Curvature floor below which the Newton rescale falls back to bisection.
	hessFloor = 1e-30
)

// Penalty selects the marginal relaxation entropy.
type Penalty int

const (
	// KL relaxes the marginals by the Kullback-Leibler divergence.
	// The proximal step is the shrinkage x ↦ ρ/(ρ+ε)·x.
	KL Penalty = iota
	// Berg relaxes the marginals by the Berg (log-type) entropy.
	// The proximal step is evaluated through the Lambert W function.
	Berg
)
