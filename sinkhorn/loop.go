// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sinkhorn

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Problem specifies a regularized unbalanced transport instance.
type Problem struct {
	// Marginal weights of the two measures. Non-negative and finite,
	// not required to carry the same total mass.
	A, B []float64
	// Ground cost between the two supports, n×m. Never mutated.
	C *mat.Dense
	// Entropic smoothing strength, ε > 0.
	Eps float64
	// Marginal relaxation strengths, ρ > 0. Rho2 = 0 selects Rho.
	Rho, Rho2 float64
	// Marginal penalty entropy.
	Penalty Penalty
	// Prox/rescale alternation budget of the H step (default 20).
	InnerIter int
	// Newton budget of the Berg translation rescale (default 10).
	RescaleIter int
	// Optional gradient tolerance ending the Berg rescale early.
	// Zero keeps the historical fixed-count behaviour.
	RescaleTol float64
}

// New validates the problem and returns an immutable solver.
func (p *Problem) New() (solver *Solver, err error) {

	if p.C == nil {
		return nil, errors.New("cost matrix is required")
	}
	n, m := p.C.Dims()

	prob := *p
	if prob.Rho2 == zero {
		prob.Rho2 = prob.Rho
	}
	if prob.InnerIter <= 0 {
		prob.InnerIter = defaultInnerIter
	}
	if prob.RescaleIter <= 0 {
		prob.RescaleIter = defaultRescaleIter
	}

	switch {
	case len(prob.A) != n:
		err = errors.New("first weight size must equal to cost rows")
	case len(prob.B) != m:
		err = errors.New("second weight size must equal to cost columns")
	case !(prob.Eps > zero):
		err = errors.New("entropic strength must greater than 0")
	case !(prob.Rho > zero) || !(prob.Rho2 > zero):
		err = errors.New("marginal strength must greater than 0")
	case prob.Penalty != KL && prob.Penalty != Berg:
		err = errors.New("unknown marginal penalty")
	case prob.RescaleTol < zero:
		err = errors.New("rescale tolerance must not less than 0")
	case !validWeights(prob.A) || !validWeights(prob.B):
		err = errors.New("weights must be finite and non-negative")
	}
	if err != nil {
		return
	}

	solver = &Solver{loopSpec{n: n, m: m, Problem: prob}}
	return
}

func validWeights(w []float64) bool {
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < zero {
			return false
		}
	}
	return true
}

type loopSpec struct {
	// the support sizes of both measures
	n, m int
	Problem
}

// Solver applies the fixed-point maps of one validated problem.
// A solver is immutable and safe for concurrent use: every step treats its
// inputs as read-only and returns fresh slices.
type Solver struct {
	loopSpec
}

// negProx overwrites x with -𝚊𝚙𝚛𝚘𝚡(-x, ε, ρ) for the configured penalty.
func (s *Solver) negProx(x []float64, rho float64) {
	floats.Scale(-one, x)
	switch s.Penalty {
	case KL:
		ProxKL(x, x, s.Eps, rho)
	default:
		ProxBerg(x, x, s.Eps, rho)
	}
	floats.Scale(-one, x)
}

// shiftProx writes dst = -𝚊𝚙𝚛𝚘𝚡(-(src+shift), ε, ρ) - shift, the proximal
// update conjugated by a translation of the potential.
func (s *Solver) shiftProx(dst, src []float64, shift, rho float64) {
	for i, v := range src {
		dst[i] = v + shift
	}
	s.negProx(dst, rho)
	floats.AddConst(-shift, dst)
}

// Rescale returns the translation restoring the stationarity condition of
// the configured penalty: the closed-form mass balance for KL, a Newton
// solve on the Berg invariant otherwise. init seeds the Newton iteration
// and is ignored for KL.
func (s *Solver) Rescale(f, g []float64, init float64) float64 {
	s.check(f, g)
	if s.Penalty == KL {
		return RescaleKL(f, g, s.A, s.B, s.Rho, s.Rho2)
	}
	return rescaleBergTol(f, g, s.A, s.B, s.Rho, s.Rho2, s.RescaleIter, init, s.RescaleTol)
}

// FStep applies one plain alternating update:
//
//	g ← -𝚊𝚙𝚛𝚘𝚡(-𝚂ᵪ(𝐂,f,a), ε, ρ₂)
//	f ← -𝚊𝚙𝚛𝚘𝚡(-𝚂ᵧ(𝐂,g,b), ε, ρ)
//
// No translation correction is made. The map carries no stopping rule of its
// own: the caller iterates it, typically until ‖fₖ₊₁-fₖ‖∞ stalls.
func (s *Solver) FStep(f []float64) (fNext, gNext []float64) {
	s.check(f, nil)
	g := SinkX(s.C, f, s.A, s.Eps)
	s.negProx(g, s.Rho2)
	fn := SinkY(s.C, g, s.B, s.Eps)
	s.negProx(fn, s.Rho)
	return fn, g
}

// GStep applies one translation-corrected update. Unlike FStep the map
// carries an explicit scalar state t, the running shift, recomputed after
// each half update and threaded between calls by the caller:
//
//	g ← -𝚊𝚙𝚛𝚘𝚡(-(𝚂ᵪ(𝐂,f,a) - t), ε, ρ₂);  t ← 𝚁𝚎𝚜𝚌𝚊𝚕𝚎(f, g)
//	f ← -𝚊𝚙𝚛𝚘𝚡(-(𝚂ᵧ(𝐂,g,b) + t), ε, ρ);  t ← 𝚁𝚎𝚜𝚌𝚊𝚕𝚎(f, g)
//
// Start from t = 0. At the fixed point the shift vanishes, so F and G share
// their limit; the correction only changes the contraction rate.
func (s *Solver) GStep(f []float64, t float64) (fNext, gNext []float64, tNext float64) {
	s.check(f, nil)
	g := SinkX(s.C, f, s.A, s.Eps)
	floats.AddConst(-t, g)
	s.negProx(g, s.Rho2)
	t = s.Rescale(f, g, t)
	fn := SinkY(s.C, g, s.B, s.Eps)
	floats.AddConst(t, fn)
	s.negProx(fn, s.Rho)
	t = s.Rescale(fn, g, t)
	return fn, g, t
}

// HStep applies one nested translation-tightening update: each half update
// alternates the shifted proximal step with a shift recomputation for
// InnerIter rounds, holding the opposite potential fixed, and the returned
// pair is re-centered by a final shift:
//
//	𝚂 ← 𝚂ᵪ(𝐂,f,a)
//	repeat: g ← -𝚊𝚙𝚛𝚘𝚡(-(𝚂-t), ε, ρ₂) + t;  t ← 𝚁𝚎𝚜𝚌𝚊𝚕𝚎(f, g)
//	𝚂 ← 𝚂ᵧ(𝐂,g,b)
//	repeat: f ← -𝚊𝚙𝚛𝚘𝚡(-(𝚂+t), ε, ρ) - t;  t ← 𝚁𝚎𝚜𝚌𝚊𝚕𝚎(f, g)
//	return f+t, g-t with t = 𝚁𝚎𝚜𝚌𝚊𝚕𝚎(f, g)
//
// The most accurate and most expensive variant: the inner rounds buy a
// tighter satisfaction of the translation invariance each outer step.
func (s *Solver) HStep(f []float64) (fNext, gNext []float64) {
	s.check(f, nil)
	t := zero
	gs := SinkX(s.C, f, s.A, s.Eps)
	g := make([]float64, s.m)
	for it := 0; it < s.InnerIter; it++ {
		s.shiftProx(g, gs, -t, s.Rho2)
		t = s.Rescale(f, g, t)
	}
	s.shiftProx(g, gs, -t, s.Rho2)

	fs := SinkY(s.C, g, s.B, s.Eps)
	fn := make([]float64, s.n)
	for it := 0; it < s.InnerIter; it++ {
		s.shiftProx(fn, fs, t, s.Rho)
		t = s.Rescale(fn, g, t)
	}
	s.shiftProx(fn, fs, t, s.Rho)

	t = s.Rescale(fn, g, zero)
	floats.AddConst(t, fn)
	floats.AddConst(-t, g)
	return fn, g
}

// DualScore evaluates the entropic dual objective at (f, g):
//
//	Σᵢ aᵢ·φ(fᵢ, ρ) + Σⱼ bⱼ·φ(gⱼ, ρ₂) + Σᵢⱼ aᵢbⱼ·ψ(𝐂ᵢⱼ-fᵢ-gⱼ, ε)
//
// where ψ(z, ε) = -ε(𝚎^{-z/ε}-1) and φ is the conjugate of the configured
// penalty: φ(z, s) = -s(𝚎^{-z/s}-1) for KL, φ(z, s) = s·𝚕𝚘𝚐(1+z/s) for Berg.
// The Berg term needs z > -s, guaranteed for potentials produced by the
// proximal maps, whose outputs stay strictly above -ρ.
// Each exact proximal half step is a block maximization of this score, so it
// is non-decreasing along F iterations.
func (s *Solver) DualScore(f, g []float64) float64 {
	s.check(f, g)
	var score float64
	for i, v := range f {
		score += s.A[i] * s.phi(v, s.Rho)
	}
	for j, v := range g {
		score += s.B[j] * s.phi(v, s.Rho2)
	}
	eps := s.Eps
	for i := range f {
		ai := s.A[i]
		for j := range g {
			z := s.C.At(i, j) - f[i] - g[j]
			score -= ai * s.B[j] * eps * (math.Exp(-z/eps) - 1)
		}
	}
	return score
}

func (s *Solver) phi(z, rho float64) float64 {
	if s.Penalty == KL {
		return -rho * (math.Exp(-z/rho) - 1)
	}
	return rho * math.Log(1+z/rho)
}

func (s *Solver) check(f, g []float64) {
	if len(f) != s.n {
		panic("row potential dimension not match problem")
	}
	if g != nil && len(g) != s.m {
		panic("column potential dimension not match problem")
	}
}
