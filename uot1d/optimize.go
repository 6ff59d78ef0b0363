// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uot1d

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// LineSearch selects the Frank-Wolfe step-size strategy.
type LineSearch int

const (
	// DefaultStep uses the open-loop schedule 2/(2+k).
	DefaultStep LineSearch = iota
	// Homogeneous runs Newton on the log of the invariant objective,
	// exploiting its homogeneous algebraic form.
	Homogeneous
	// Newton runs generic Newton on the invariant objective derivative.
	Newton
)

// LogLevel controls the frequency of logger output.
type LogLevel int

const (
	// LogNoop no output is generated.
	LogNoop LogLevel = -1
	// LogLast print only one line at the last iteration.
	LogLast LogLevel = 0
	// LogEval print objective and step of every iteration.
	LogEval LogLevel = 1
)

// Logger handles logging output for the optimizer.
type Logger struct {
	Level LogLevel
	Msg   io.Writer
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if l.Msg == nil {
		l.Msg = os.Stdout
	}
	_, _ = fmt.Fprintf(l.Msg, format, a...)
}

// Termination specifies the stopping criteria of the Frank-Wolfe iteration.
type Termination struct {
	// The iteration stops when the number of steps exceeds the limit.
	MaxIterations int
	// The iteration stops when the invariant dual objective improves by
	// less than the tolerance.
	Tolerance float64
}

// Problem specifies an unregularized 1-D unbalanced transport instance.
type Problem struct {
	// Marginal weights, non-negative and finite.
	A, B []float64
	// Support coordinates, sorted ascending.
	X, Y []float64
	// Ground cost exponent: 𝐂ᵢⱼ = |xᵢ-yⱼ|ᵖ with p ≥ 1.
	P float64
	// Marginal relaxation strengths, ρ > 0. Rho2 = 0 selects Rho.
	Rho, Rho2 float64
	// Stop condition.
	Stop Termination
	// Step-size strategy.
	Search LineSearch
	// Newton budget of the line searches (default 5).
	SearchIter int
	// Start from the greedy initializer instead of the lazy baseline.
	GreedInit bool
	// Compute the marginal reweighting through log-sum-exp. Costs a
	// constant factor, keeps the oracle marginals normalized when the
	// rescaled potentials drive the exponentials toward under/overflow.
	StableLSE bool
}

// New creates a Frank-Wolfe optimizer for the given problem.
func (p *Problem) New(logger *Logger) (optimizer *Optimizer, err error) {

	n, m := len(p.A), len(p.B)

	prob := *p
	if prob.Rho2 == zero {
		prob.Rho2 = prob.Rho
	}
	if prob.SearchIter <= 0 {
		prob.SearchIter = defaultSearchIter
	}

	switch {
	case n == 0 || m == 0:
		err = errors.New("weights must not be empty")
	case len(prob.X) != n:
		err = errors.New("first support size must equal to weight size")
	case len(prob.Y) != m:
		err = errors.New("second support size must equal to weight size")
	case prob.P < one:
		err = errors.New("cost exponent must not less than 1")
	case !(prob.Rho > zero) || !(prob.Rho2 > zero):
		err = errors.New("marginal strength must greater than 0")
	case prob.Stop.MaxIterations <= 0:
		err = errors.New("max iteration must greater than 0")
	case prob.Stop.Tolerance < zero:
		err = errors.New("tolerance must not less than 0")
	case prob.Search != DefaultStep && prob.Search != Homogeneous && prob.Search != Newton:
		err = errors.New("unknown line search")
	case !sorted(prob.X) || !sorted(prob.Y):
		err = errors.New("supports must be sorted ascending")
	case !validWeights(prob.A) || !validWeights(prob.B):
		err = errors.New("weights must be finite and non-negative")
	}
	if err != nil {
		return
	}

	optimizer = &Optimizer{fwSpec{n: n, m: m, logger: logger, Problem: prob}}
	return
}

func sorted(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] < x[i-1] {
			return false
		}
	}
	return true
}

func validWeights(w []float64) bool {
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < zero {
			return false
		}
	}
	return true
}

type fwSpec struct {
	// the support sizes of both measures
	n, m   int
	logger *Logger
	Problem
}

// Optimizer implements the Frank-Wolfe iteration on the translation
// invariant dual of the 1-D unbalanced problem.
type Optimizer struct {
	fwSpec
}

// Result contains the final result of the optimization process.
type Result struct {
	OK      bool      // Whether the objective improvement reached the tolerance.
	F, G    []float64 // Final dual potentials.
	Plan    Plan      // Plan of the last oracle call.
	Loss    float64   // Final invariant dual objective.
	Summary           // Optimization summary.
}

// Summary contains a summary of the optimization process.
type Summary struct {
	NumIter int     // Number of Frank-Wolfe steps performed.
	Delta   float64 // Last objective improvement.
}

// Fit runs the Frank-Wolfe iteration until the objective improvement drops
// below the tolerance or the iteration cap is exhausted. Hitting the cap is
// a diagnostic, not an error: the last feasible potentials are returned with
// OK = false.
//
// Every iterate stays feasible: the start is feasible, translations preserve
// the constraint and each step is a convex combination with the feasible
// oracle vertex.
func (o *Optimizer) Fit() *Result {

	var f, g []float64
	if o.GreedInit {
		f, g = InitGreed(o.A, o.B, o.X, o.Y, o.P, o.Rho, o.Rho2)
	} else {
		f, g = LazyPotential(o.X, o.Y, o.P, false)
	}

	loss := InvariantDualLoss(f, g, o.A, o.B, o.Rho, o.Rho2)

	var plan Plan
	var delta float64
	ok := false

	wa := make([]float64, o.n)
	wb := make([]float64, o.m)
	df := make([]float64, o.n)
	dg := make([]float64, o.m)

	it := 0
	for ; it < o.Stop.MaxIterations; it++ {
		t := RescalePotentials(f, g, o.A, o.B, o.Rho, o.Rho2)
		floats.AddConst(t, f)
		floats.AddConst(-t, g)

		o.reweight(wa, f, o.A, o.Rho)
		o.reweight(wb, g, o.B, o.Rho2)

		pl, fc, gc, _ := SolveOT(wa, wb, o.X, o.Y, o.P)
		plan = pl
		floats.SubTo(df, fc, f)
		floats.SubTo(dg, gc, g)

		step := o.step(it, f, g, df, dg)
		floats.AddScaled(f, step, df)
		floats.AddScaled(g, step, dg)

		next := InvariantDualLoss(f, g, o.A, o.B, o.Rho, o.Rho2)
		delta = next - loss
		loss = next

		if o.logger.enable(LogEval) {
			o.logger.log("fw iter %5d loss %.9e step %.3e delta %.3e\n", it+1, loss, step, delta)
		}
		if math.Abs(delta) < o.Stop.Tolerance {
			ok = true
			it++
			break
		}
	}

	if o.logger.enable(LogLast) {
		o.logger.log("fw done iters %d loss %.9e delta %.3e converged %v\n", it, loss, delta, ok)
	}

	return &Result{
		OK: ok,
		F:  f, G: g,
		Plan: plan,
		Loss: loss,
		Summary: Summary{NumIter: it, Delta: delta},
	}
}

// reweight fills dst with the normalized reweighted marginal
// dstᵢ ∝ wᵢ·𝚎𝚡𝚙(-hᵢ/s), Σ dst = 1, the marginals of the oracle subproblem.
func (o *Optimizer) reweight(dst, h, w []float64, s float64) {
	if o.StableLSE {
		for i := range dst {
			dst[i] = math.Log(w[i]) - h[i]/s
		}
		z := floats.LogSumExp(dst)
		for i := range dst {
			dst[i] = math.Exp(dst[i] - z)
		}
		return
	}
	for i := range dst {
		dst[i] = w[i] * math.Exp(-h[i]/s)
	}
	floats.Scale(one/floats.Sum(dst), dst)
}

func (o *Optimizer) step(k int, f, g, df, dg []float64) float64 {
	switch o.Search {
	case Homogeneous:
		return HomogeneousLineSearch(f, g, df, dg, o.A, o.B, o.Rho, o.Rho2, o.SearchIter)
	case Newton:
		return NewtonLineSearch(f, g, df, dg, o.A, o.B, o.Rho, o.Rho2, o.SearchIter)
	default:
		return two / (two + float64(k))
	}
}
