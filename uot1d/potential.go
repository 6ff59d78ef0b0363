// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uot1d

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RescalePotentials returns the translation t after which both reweighted
// marginals carry the same mass:
//
//	Σᵢ aᵢ·𝚎𝚡𝚙(-(fᵢ+t)/ρ) = Σⱼ bⱼ·𝚎𝚡𝚙(-(gⱼ-t)/ρ₂)
//
// Closed form: t = τ·(𝚕𝚘𝚐 A - 𝚕𝚘𝚐 B) with τ = ρρ₂/(ρ+ρ₂),
// A = Σ aᵢ𝚎^{-fᵢ/ρ}, B = Σ bⱼ𝚎^{-gⱼ/ρ₂}, computed in log-domain.
// The shift t maximizes DualLoss along the translation direction, so
// applying it never decreases the dual objective. Feasibility of (f, g) is
// preserved: the constraint fᵢ+gⱼ ≤ 𝐂ᵢⱼ is translation invariant.
func RescalePotentials(f, g, a, b []float64, rho, rho2 float64) float64 {
	tau := rho * rho2 / (rho + rho2)
	return tau * (logMass(f, a, rho) - logMass(g, b, rho2))
}

// logMass returns 𝚕𝚘𝚐 Σᵢ wᵢ·𝚎𝚡𝚙(-hᵢ/s) with max subtraction.
func logMass(h, w []float64, s float64) float64 {
	if len(h) != len(w) {
		panic("weight dimension not match potential")
	}
	t := make([]float64, len(h))
	for i, v := range h {
		t[i] = math.Log(w[i]) - v/s
	}
	return floats.LogSumExp(t)
}

// DualLoss is the unregularized KL-penalized dual objective:
//
//	D(f, g) = ρ·Σᵢ aᵢ(1-𝚎^{-fᵢ/ρ}) + ρ₂·Σⱼ bⱼ(1-𝚎^{-gⱼ/ρ₂})
func DualLoss(f, g, a, b []float64, rho, rho2 float64) float64 {
	var s float64
	for i, v := range f {
		s += rho * a[i] * (1 - math.Exp(-v/rho))
	}
	for j, v := range g {
		s += rho2 * b[j] * (1 - math.Exp(-v/rho2))
	}
	return s
}

// InvariantDualLoss is DualLoss maximized over the translation symmetry
// (f+t, g-t):
//
//	ρ·Σa + ρ₂·Σb - (ρ+ρ₂)·A^{τ/ρ₂}·B^{τ/ρ}
//
// with A, B, τ as in RescalePotentials. The value is invariant under the
// translation and concave along segments of potential pairs, which is the
// property the Frank-Wolfe line searches rely on.
func InvariantDualLoss(f, g, a, b []float64, rho, rho2 float64) float64 {
	tau := rho * rho2 / (rho + rho2)
	la, lb := logMass(f, a, rho), logMass(g, b, rho2)
	return rho*floats.Sum(a) + rho2*floats.Sum(b) -
		(rho+rho2)*math.Exp(tau/rho2*la+tau/rho*lb)
}

// LazyPotential returns a feasible dual pair for the ground cost |x-y|ᵖ,
// p ≥ 1, without looking at the weights. With diagonal false the sides are
// anchored at opposite corners of the sorted supports:
//
//	fᵢ = 𝚌(xᵢ,y₀),  gⱼ = 𝚌(xₙ₋₁,yⱼ) - 𝚌(xₙ₋₁,y₀)
//
// Each gⱼ equals 𝚖𝚒𝚗ᵢ (𝚌(xᵢ,yⱼ) - fᵢ): the Monge inequality
// 𝚌(xᵢ,y₀) + 𝚌(xₙ₋₁,yⱼ) ≤ 𝚌(xᵢ,yⱼ) + 𝚌(xₙ₋₁,y₀) for xᵢ ≤ xₙ₋₁, y₀ ≤ yⱼ
// makes the minimum sit at the last source point, so fᵢ + gⱼ ≤ 𝚌(xᵢ,yⱼ) for
// every pair. With diagonal true the nearest-neighbour cost is split evenly
// between both sides:
//
//	fᵢ = ½·𝚖𝚒𝚗ⱼ 𝚌(xᵢ,yⱼ),  gⱼ = ½·𝚖𝚒𝚗ᵢ 𝚌(xᵢ,yⱼ)
//
// Both supports must be sorted ascending.
func LazyPotential(x, y []float64, p float64, diagonal bool) (f, g []float64) {
	n, m := len(x), len(y)
	if n == 0 || m == 0 {
		panic("empty support")
	}
	f = make([]float64, n)
	g = make([]float64, m)
	if diagonal {
		nearestCost(f, x, y, p)
		nearestCost(g, y, x, p)
		floats.Scale(half, f)
		floats.Scale(half, g)
		return
	}
	xl := x[n-1]
	cl0 := groundCost(xl, y[0], p)
	for i, xi := range x {
		f[i] = groundCost(xi, y[0], p)
	}
	for j, yj := range y {
		g[j] = groundCost(xl, yj, p) - cl0
	}
	return
}

// nearestCost fills c with the ground cost from each u[i] to its nearest
// point of v. Both slices are sorted ascending, so the nearest index is
// non-decreasing in i and one forward merge suffices.
func nearestCost(c, u, v []float64, p float64) {
	j := 0
	for i, ui := range u {
		for j < len(v)-1 && math.Abs(v[j+1]-ui) < math.Abs(v[j]-ui) {
			j++
		}
		c[i] = groundCost(ui, v[j], p)
	}
}

// InitGreed builds the greedy feasible start of the Frank-Wolfe iteration in
// O(n+m): the even nearest-neighbour cost split over the sorted supports,
// re-centered by the mass-balancing translation so the first oracle call
// already sees balanced reweighted marginals.
func InitGreed(a, b, x, y []float64, p, rho, rho2 float64) (f, g []float64) {
	if len(a) != len(x) || len(b) != len(y) {
		panic("weight dimension not match support")
	}
	f, g = LazyPotential(x, y, p, true)
	t := RescalePotentials(f, g, a, b, rho, rho2)
	floats.AddConst(t, f)
	floats.AddConst(-t, g)
	return
}
