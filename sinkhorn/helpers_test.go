// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sinkhorn

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func linspace(lo, hi float64, n int) []float64 {
	x := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range x {
		x[i] = lo + float64(i)*step
	}
	return x
}

func gauss(grid []float64, mu, sig float64) []float64 {
	g := make([]float64, len(grid))
	for i, v := range grid {
		d := (v - mu) / sig
		g[i] = math.Exp(-0.5 * d * d)
	}
	return g
}

// synthetic step/bimodal measure pair used by the loop tests
func synthMeasures(n, m int) (a, x, b, y []float64) {
	x = linspace(0.2, 0.4, n)
	a = make([]float64, n)
	for i := range a {
		a[i] = 2
		if i >= n/2 {
			a[i] = 3
		}
	}
	floats.Scale(1/floats.Sum(a), a)

	y = linspace(0.45, 0.95, m)
	b = gauss(y, 0.6, 0.03)
	floats.Add(b, gauss(y, 0.8, 0.03))
	floats.Scale(1/floats.Sum(b), b)
	return
}
