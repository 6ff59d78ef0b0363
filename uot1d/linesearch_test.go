// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uot1d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

// segEndpoints builds a realistic search segment: the lazy feasible start as
// left endpoint, the oracle vertex of the normalized marginals as direction.
func segEndpoints(a, b, x, y []float64) (f, g, df, dg []float64) {
	na := append([]float64(nil), a...)
	nb := append([]float64(nil), b...)
	floats.Scale(1/floats.Sum(na), na)
	floats.Scale(1/floats.Sum(nb), nb)

	f, g = LazyPotential(x, y, testP, false)
	_, fb, gb, _ := SolveOT(na, nb, x, y, testP)
	df = make([]float64, len(f))
	dg = make([]float64, len(g))
	floats.SubTo(df, fb, f)
	floats.SubTo(dg, gb, g)
	return
}

func segLoss(f, g, df, dg, a, b []float64, t, rho, rho2 float64) float64 {
	ft := make([]float64, len(f))
	gt := make([]float64, len(g))
	for i := range f {
		ft[i] = f[i] + t*df[i]
	}
	for j := range g {
		gt[j] = g[j] + t*dg[j]
	}
	return InvariantDualLoss(ft, gt, a, b, rho, rho2)
}

// TestLineSearchImproves checks both searches return a clamped step that
// beats the chord, which concavity of the objective along segments demands
// of any point between the endpoints.
func TestLineSearchImproves(t *testing.T) {
	searches := map[string]func(f, g, df, dg, a, b []float64, rho, rho2 float64, nits int) float64{
		"homogeneous": HomogeneousLineSearch,
		"newton":      NewtonLineSearch,
	}
	for seed := int64(1); seed <= 7; seed++ {
		for _, rho := range []float64{0.1, 1, 10} {
			for _, rho2 := range []float64{0.1, 10} {
				for _, mass := range []float64{0.5, 2} {
					a, b, x, y := randomUOT(seed, mass)
					f, g, df, dg := segEndpoints(a, b, x, y)
					s0 := segLoss(f, g, df, dg, a, b, 0, rho, rho2)
					s1 := segLoss(f, g, df, dg, a, b, 1, rho, rho2)
					for name, search := range searches {
						ts := search(f, g, df, dg, a, b, rho, rho2, 3)
						if ts < 0 || ts > 1 {
							t.Fatalf("%s step %v outside [0,1] (seed=%d rho=%v rho2=%v mass=%v)",
								name, ts, seed, rho, rho2, mass)
						}
						st := segLoss(f, g, df, dg, a, b, ts, rho, rho2)
						chord := s0 + ts*(s1-s0)
						slack := 1e-9 * (1 + math.Abs(s0))
						assert.GreaterOrEqual(t, st, chord-slack,
							"%s step below the chord (seed=%d rho=%v rho2=%v mass=%v)",
							name, seed, rho, rho2, mass)
						assert.GreaterOrEqual(t, st, s0-slack,
							"%s step decreased the objective (seed=%d rho=%v rho2=%v mass=%v)",
							name, seed, rho, rho2, mass)
					}
				}
			}
		}
	}
}

// TestLineSearchesAgree checks both iteration maps land on the same
// stationary point when given a generous budget.
func TestLineSearchesAgree(t *testing.T) {
	a, b, x, y := randomUOT(3, 1)
	f, g, df, dg := segEndpoints(a, b, x, y)
	th := HomogeneousLineSearch(f, g, df, dg, a, b, 1, 1, 50)
	tn := NewtonLineSearch(f, g, df, dg, a, b, 1, 1, 50)
	if th > 0 && th < 1 && tn > 0 && tn < 1 {
		assert.InDelta(t, th, tn, 1e-8)
	}
}

// TestLineSearchDefaultBudget checks nits ≤ 0 falls back to the default.
func TestLineSearchDefaultBudget(t *testing.T) {
	a, b, x, y := randomUOT(4, 1)
	f, g, df, dg := segEndpoints(a, b, x, y)
	want := HomogeneousLineSearch(f, g, df, dg, a, b, 1, 1, defaultSearchIter)
	got := HomogeneousLineSearch(f, g, df, dg, a, b, 1, 1, 0)
	assert.Equal(t, want, got)
}
