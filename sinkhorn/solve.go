// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sinkhorn

import (
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// Variant selects the fixed-point map iterated by Solve.
type Variant int

const (
	// FLoop plain alternating updates, no translation correction.
	FLoop Variant = iota
	// GLoop one translation recomputation after each half update.
	GLoop
	// HLoop nested prox/translation alternation on each half update.
	HLoop
)

// LogLevel controls the frequency of logger output.
type LogLevel int

const (
	// LogNoop no output is generated.
	LogNoop LogLevel = -1
	// LogLast print only one line at the last iteration.
	LogLast LogLevel = 0
	// LogEval print the sup-norm update of every iteration.
	LogEval LogLevel = 1
)

// Logger handles logging output for the iteration driver.
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

// Termination specifies the stopping criteria of the outer iteration.
type Termination struct {
	// The iteration stops when the number of steps exceeds the limit.
	MaxIterations int
	// The iteration stops when ‖fₖ₊₁ - fₖ‖∞ drops below the tolerance.
	Tolerance float64
}

// Result contains the final state of the outer iteration.
type Result struct {
	OK      bool      // Whether the sup-norm tolerance was reached.
	F, G    []float64 // Final dual potentials.
	Summary           // Iteration summary.
}

// Summary contains a summary of the outer iteration.
type Summary struct {
	NumIter int     // Number of fixed-point applications.
	Delta   float64 // Last sup-norm update of f.
}

// Solve drives the chosen fixed-point map from f₀ (zeros when nil) until the
// sup-norm update of f drops below stop.Tolerance or the iteration cap is
// exhausted. Exceeding the cap is a diagnostic, not an error: the last
// potentials are returned with OK = false and the caller inspects Delta.
func (s *Solver) Solve(v Variant, stop Termination, f0 []float64, logger *Logger) *Result {

	if stop.MaxIterations <= 0 {
		panic("max iteration must greater than 0")
	}
	if v != FLoop && v != GLoop && v != HLoop {
		panic("unknown loop variant")
	}

	f := make([]float64, s.n)
	if f0 != nil {
		if len(f0) != s.n {
			panic("initial potential dimension not match problem")
		}
		copy(f, f0)
	}

	g := make([]float64, s.m)
	var t, delta float64
	ok := false

	it := 0
	for ; it < stop.MaxIterations; it++ {
		var fn []float64
		switch v {
		case FLoop:
			fn, g = s.FStep(f)
		case GLoop:
			fn, g, t = s.GStep(f, t)
		case HLoop:
			fn, g = s.HStep(f)
		}
		delta = floats.Distance(fn, f, math.Inf(1))
		f = fn
		if logger.enable(LogEval) {
			logger.log("sinkhorn iter %5d delta %.6e\n", it+1, delta)
		}
		if delta < stop.Tolerance {
			ok = true
			it++
			break
		}
	}

	if logger.enable(LogLast) {
		logger.log("sinkhorn done iters %d delta %.6e converged %v\n", it, delta, ok)
	}

	return &Result{
		OK: ok,
		F:  f, G: g,
		Summary: Summary{NumIter: it, Delta: delta},
	}
}
