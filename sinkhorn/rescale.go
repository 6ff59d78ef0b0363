// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sinkhorn

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RescaleKL returns the translation t balancing the reweighted masses of the
// shifted potentials:
//
//	Σᵢ aᵢ·𝚎𝚡𝚙(-(fᵢ+t)/ρ) = Σⱼ bⱼ·𝚎𝚡𝚙(-(gⱼ-t)/ρ₂)
//
// The KL mass curves are log-linear in t so the shift is closed-form:
//
//	t = τ·(𝚕𝚘𝚐 A - 𝚕𝚘𝚐 B),  τ = ρρ₂/(ρ+ρ₂)
//
// with A = Σ aᵢ𝚎^{-fᵢ/ρ} and B = Σ bⱼ𝚎^{-gⱼ/ρ₂} computed in log-domain.
func RescaleKL(f, g, a, b []float64, rho, rho2 float64) float64 {
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

// GradInvariant is the derivative in t of the translation invariant of the
// Berg dual score family:
//
//	𝙶(t) = Σᵢ aᵢ·φ′(-fᵢ-t, ρ) - Σⱼ bⱼ·φ′(-gⱼ+t, ρ₂),  φ′(z, s) = 1/(1-z/s)
//
// Its root is the stationary shift restored by RescaleBerg.
func GradInvariant(t float64, f, g, a, b []float64, rho, rho2 float64) float64 {
	var s float64
	for i, v := range f {
		s += a[i] / (1 - (-v-t)/rho)
	}
	for j, v := range g {
		s -= b[j] / (1 - (-v+t)/rho2)
	}
	return s
}

// hessInvariant is the second derivative of the invariant:
//
//	𝙷(t) = -Σᵢ aᵢ·φ″(-fᵢ-t, ρ) - Σⱼ bⱼ·φ″(-gⱼ+t, ρ₂),  φ″(z, s) = 1/(s(1-z/s)²)
func hessInvariant(t float64, f, g, a, b []float64, rho, rho2 float64) float64 {
	var s float64
	for i, v := range f {
		d := 1 - (-v-t)/rho
		s -= a[i] / (rho * d * d)
	}
	for j, v := range g {
		d := 1 - (-v+t)/rho2
		s -= b[j] / (rho2 * d * d)
	}
	return s
}

// RescaleBerg solves 𝙶𝚛𝚊𝚍𝙸𝚗𝚟𝚊𝚛𝚒𝚊𝚗𝚝(t) = 0 by a fixed budget of nits Newton
// steps (nits ≤ 0 selects 10) from the seed init, with no line search: the
// invariant is smooth and well-conditioned in the parameter regimes the loop
// variants produce, so the small fixed budget is treated as exact.
// When the curvature underflows (|𝙷| < 1e-30) or is not finite the solve
// falls back to bisection over an expanding bracket instead of dividing by it.
func RescaleBerg(f, g, a, b []float64, rho, rho2 float64, nits int, init float64) float64 {
	return rescaleBergTol(f, g, a, b, rho, rho2, nits, init, zero)
}

// rescaleBergTol adds an optional residual stop: tol > 0 ends the iteration
// once |𝙶(t)| < tol.
func rescaleBergTol(f, g, a, b []float64, rho, rho2 float64, nits int, init, tol float64) float64 {
	if nits <= 0 {
		nits = defaultRescaleIter
	}
	t := init
	for k := 0; k < nits; k++ {
		grad := GradInvariant(t, f, g, a, b, rho, rho2)
		if tol > zero && math.Abs(grad) < tol {
			break
		}
		hess := hessInvariant(t, f, g, a, b, rho, rho2)
		if math.Abs(hess) < hessFloor || math.IsNaN(hess) || math.IsInf(hess, 0) {
			return bisectInvariant(t, f, g, a, b, rho, rho2)
		}
		t -= grad / hess
	}
	return t
}

// bisectInvariant locates the root of the invariant gradient by bisecting
// over the domain of the Berg conjugate, t ∈ (-ρ-𝚖𝚒𝚗 f, ρ₂+𝚖𝚒𝚗 g): the
// gradient is strictly decreasing there and diverges to +∞ and -∞ at the
// edges, so the root is always bracketed. When the interval is degenerate the
// seed is returned unchanged, preserving the clamp-and-continue policy of the
// Newton path.
func bisectInvariant(init float64, f, g, a, b []float64, rho, rho2 float64) float64 {
	const refine = 60
	lo := -rho - floats.Min(f)
	hi := rho2 + floats.Min(g)
	w := hi - lo
	if !(w > zero) {
		return init
	}
	lo += 1e-9 * w
	hi -= 1e-9 * w
	glo := GradInvariant(lo, f, g, a, b, rho, rho2)
	if !(glo > zero) || !(GradInvariant(hi, f, g, a, b, rho, rho2) < zero) {
		return init
	}
	for k := 0; k < refine; k++ {
		mid := half * (lo + hi)
		gm := GradInvariant(mid, f, g, a, b, rho, rho2)
		if gm > zero {
			lo = mid
		} else {
			hi = mid
		}
	}
	return half * (lo + hi)
}
