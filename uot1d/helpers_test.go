// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uot1d

import (
	"math/rand"
	"sort"
	"testing"

	"gonum.org/v1/gonum/floats"
)

const testP = 1.5

// randomUOT draws the unbalanced test instance: 15 and 16 support points,
// uniform weights normalized so the first measure carries the given mass and
// the second carries 1.
func randomUOT(seed int64, mass float64) (a, b, x, y []float64) {
	r := rand.New(rand.NewSource(seed))
	a, x = randomMeasure(r, 15, mass)
	b, y = randomMeasure(r, 16, 1)
	return
}

func randomMeasure(r *rand.Rand, n int, mass float64) (w, s []float64) {
	w = make([]float64, n)
	s = make([]float64, n)
	for i := range w {
		w[i] = r.Float64()
		s[i] = r.Float64()
	}
	floats.Scale(mass/floats.Sum(w), w)
	sort.Float64s(s)
	return
}

// assertFeasible checks fᵢ+gⱼ ≤ |xᵢ-yⱼ|ᵖ for every pair up to tol.
func assertFeasible(t *testing.T, f, g, x, y []float64, p, tol float64) {
	t.Helper()
	for i, xi := range x {
		for j, yj := range y {
			if excess := f[i] + g[j] - groundCost(xi, yj, p); excess > tol {
				t.Fatalf("infeasible pair (%d,%d): excess %v", i, j, excess)
			}
		}
	}
}
