// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lambertw evaluates the principal branch of the Lambert W function
// for log-space arguments, i.e. W(eˣ) given x. Working from the logarithm of
// the argument keeps the evaluation finite when eˣ itself overflows, which is
// the regime produced by the Berg proximal operator at small ε.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Lambert_W_function
package lambertw

import "math"

const (
	// Halley corrections applied by LogW. Five steps reach machine
	// precision from the piecewise seed over the argument ranges produced
	// by the Berg proximal operator.
	fixedSteps = 5
	// Iterate floor keeping every Halley iterate inside the positive
	// principal-branch domain.
	iterFloor = 1e-17
	// Seed floor avoiding a zero division in the first correction.
	seedFloor = 1e-6
)

// seed picks the initial iterate z₀ for W(eˣ):
//   - x > 1  : z₀ = x
//   - x < -2 : z₀ = eˣ(1-eˣ)
//   - else   : Padé(3,2) approximant of W evaluated at eˣ
func seed(x float64) float64 {
	var z0 float64
	switch {
	case x > 1:
		z0 = x
	case x < -2:
		e := math.Exp(x)
		z0 = e * (1 - e)
	default:
		e := math.Exp(x)
		z0 = e * (3 + 6*e + e*e) / (3 + 9*e + 5*e*e)
	}
	if z0 == 0 {
		z0 = seedFloor
	}
	return z0
}

// halley applies one log-domain Halley correction to w:
//
//	a(w) = w·(𝚕𝚘𝚐 w + w - x)/(1+w)
//	b(w) = -1/(w·(1+w))
//	w ← 𝚖𝚊𝚡(w - a/(1 - ½·a·b), 1e-17)
func halley(w, x float64) float64 {
	a := w * (math.Log(w+iterFloor) + w - x) / (1 + w)
	b := -1 / (w * (1 + w))
	return math.Max(w-a/(1-0.5*a*b), iterFloor)
}

// LogW returns W(eˣ), the principal-branch solution w > 0 of w·eʷ = eˣ.
//
// The correction count is fixed rather than residual-checked: the historical
// precision/performance tradeoff of the solver. Use LogWTol when a residual
// guarantee is required.
func LogW(x float64) float64 {
	w := seed(x)
	for i := 0; i < fixedSteps; i++ {
		w = halley(w, x)
	}
	return w
}

// LogWTol behaves like LogW but iterates until the log-domain residual
// |𝚕𝚘𝚐 w + w - x| drops below tol, applying at most maxIter corrections.
func LogWTol(x, tol float64, maxIter int) float64 {
	w := seed(x)
	for i := 0; i < maxIter; i++ {
		w = halley(w, x)
		if math.Abs(math.Log(w+iterFloor)+w-x) < tol {
			break
		}
	}
	return w
}

// Apply evaluates LogW elementwise. The result is written into dst when its
// length matches x, otherwise a fresh slice is allocated. x is read-only.
func Apply(dst, x []float64) []float64 {
	if len(dst) != len(x) {
		dst = make([]float64, len(x))
	}
	for i, v := range x {
		dst[i] = LogW(v)
	}
	return dst
}
