// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sinkhorn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestProxKL checks the closed-form shrinkage ρ/(ρ+ε)·x.
func TestProxKL(t *testing.T) {
	x := []float64{-2, -0.5, 0, 1, 3}
	got := ProxKL(nil, x, 0.5, 1.5)
	for i, v := range x {
		assert.InDelta(t, 0.75*v, got[i], 1e-15, "at x=%v", v)
	}
	// in-place aliasing
	y := []float64{1, 2}
	out := ProxKL(y, y, 1, 1)
	assert.Equal(t, &y[0], &out[0])
	assert.InDelta(t, 0.5, y[0], 1e-15)
}

// TestProxBergLimit checks the ε → 0 limit of the Berg operator, 𝚖𝚒𝚗(x, ρ).
func TestProxBergLimit(t *testing.T) {
	const eps, rho = 1e-6, 1.0
	under := []float64{-1, 0.25, 0.5, 0.9}
	got := ProxBerg(nil, under, eps, rho)
	for i, x := range under {
		assert.InDelta(t, x, got[i], 1e-4, "below ρ the operator approaches identity, x=%v", x)
	}
	over := ProxBerg(nil, []float64{2, 10}, eps, rho)
	for i, v := range over {
		assert.InDelta(t, rho, v, 1e-9, "above ρ the operator saturates, case %d", i)
		assert.LessOrEqual(t, v, rho, "output must not cross ρ")
	}
}

// TestProxBergFinite checks the operator stays finite across regimes the
// loop variants visit (tiny ε, huge ρ).
func TestProxBergFinite(t *testing.T) {
	x := []float64{-5, 0, 5}
	for _, eps := range []float64{1e-12, 1e-3, 1, 10} {
		for _, rho := range []float64{1e-3, 1, 1e6} {
			got := ProxBerg(nil, x, eps, rho)
			for i, v := range got {
				assert.False(t, isBad(v), "not finite at eps=%v rho=%v x=%v", eps, rho, x[i])
			}
		}
	}
}
