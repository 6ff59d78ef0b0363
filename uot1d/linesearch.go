// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uot1d

import "math"

// searchSeg restricts the invariant dual objective to the segment
// (f+t·df, g+t·dg), t ∈ [0,1]. Along the segment the objective is
//
//	D(t) = 𝚌𝚜𝚝 - (ρ+ρ₂)·𝚎^{h(t)},  h(t) = (τ/ρ₂)𝚕𝚘𝚐 A(t) + (τ/ρ)𝚕𝚘𝚐 B(t)
//
// with A(t) = Σᵢ aᵢ𝚎^{-(fᵢ+t·dfᵢ)/ρ} and B(t) the symmetric sum, so
// maximizing D is minimizing the convex function h.
type searchSeg struct {
	f, g, df, dg, a, b []float64
	rho, rho2, tau     float64
}

func newSeg(f, g, df, dg, a, b []float64, rho, rho2 float64) *searchSeg {
	if len(df) != len(f) || len(a) != len(f) || len(dg) != len(g) || len(b) != len(g) {
		panic("segment dimension not match potential")
	}
	return &searchSeg{
		f: f, g: g, df: df, dg: dg, a: a, b: b,
		rho: rho, rho2: rho2, tau: rho * rho2 / (rho + rho2),
	}
}

// derivs returns h(t) and its first two derivatives.
func (s *searchSeg) derivs(t float64) (h, dh, d2h float64) {
	h1, d1, s1 := logMassDerivs(s.f, s.df, s.a, s.rho, t)
	h2, d2, s2 := logMassDerivs(s.g, s.dg, s.b, s.rho2, t)
	w1, w2 := s.tau/s.rho2, s.tau/s.rho
	h = w1*h1 + w2*h2
	dh = w1*d1 + w2*d2
	d2h = w1*s1 + w2*s2
	return
}

// logMassDerivs returns 𝚕𝚘𝚐 A(t) and its first two derivatives in t for
// A(t) = Σᵢ wᵢ·𝚎𝚡𝚙(-(hᵢ+t·dᵢ)/s), summing against the exponent maximum so
// the terms cannot overflow.
func logMassDerivs(h, d, w []float64, s, t float64) (la, dla, d2la float64) {
	mx := math.Inf(-1)
	for i := range h {
		if e := -(h[i] + t*d[i]) / s; e > mx {
			mx = e
		}
	}
	var m0, m1, m2 float64
	for i := range h {
		e := w[i] * math.Exp(-(h[i]+t*d[i])/s-mx)
		c := -d[i] / s
		m0 += e
		m1 += c * e
		m2 += c * c * e
	}
	la = math.Log(m0) + mx
	dla = m1 / m0
	d2la = m2/m0 - (m1/m0)*(m1/m0)
	return
}

// guard rejects a candidate step that fails to improve the objective versus
// the left endpoint, which keeps the Frank-Wolfe iteration monotone.
func (s *searchSeg) guard(t float64) float64 {
	h0, _, _ := s.derivs(zero)
	ht, _, _ := s.derivs(t)
	if ht > h0 {
		return zero
	}
	return t
}

// HomogeneousLineSearch returns the step t ∈ [0,1] maximizing the invariant
// dual objective along (f+t·df, g+t·dg), exploiting its homogeneous form:
// the objective reduces to 𝚌𝚜𝚝 - (ρ+ρ₂)𝚎^{h(t)} with h convex, so a small
// fixed budget of Newton steps on h′ (nits, ≤ 0 selects 5) pins the root.
// The returned step is clamped into [0,1] and never decreases the objective
// versus t = 0.
func HomogeneousLineSearch(f, g, df, dg, a, b []float64, rho, rho2 float64, nits int) float64 {
	seg := newSeg(f, g, df, dg, a, b, rho, rho2)
	if nits <= 0 {
		nits = defaultSearchIter
	}
	t := half
	for k := 0; k < nits; k++ {
		_, dh, d2h := seg.derivs(t)
		if !(d2h > zero) {
			break
		}
		t = clamp(t-dh/d2h, zero, one)
	}
	return seg.guard(t)
}

// NewtonLineSearch returns the step t ∈ [0,1] by generic Newton iteration on
// the derivative of the invariant objective itself:
//
//	D′(t) = -(ρ+ρ₂)𝚎^{h}·h′,  D″(t) = -(ρ+ρ₂)𝚎^{h}·(h″+h′²)
//	t ← t - h′/(h″+h′²)
//
// Used when the homogeneous reduction is not wanted, and as a generality
// check against it: both searches share the stationary point and differ only
// in the iteration map. Clamping and the non-decrease guarantee match
// HomogeneousLineSearch.
func NewtonLineSearch(f, g, df, dg, a, b []float64, rho, rho2 float64, nits int) float64 {
	seg := newSeg(f, g, df, dg, a, b, rho, rho2)
	if nits <= 0 {
		nits = defaultSearchIter
	}
	t := half
	for k := 0; k < nits; k++ {
		_, dh, d2h := seg.derivs(t)
		den := d2h + dh*dh
		if !(den > zero) {
			break
		}
		t = clamp(t-dh/den, zero, one)
	}
	return seg.guard(t)
}
