// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sinkhorn

import (
	"math"

	"github.com/curioloop/uot/lambertw"
)

// ProxKL applies the KL proximal operator elementwise:
//
//	𝚊𝚙𝚛𝚘𝚡(x) = ρ/(ρ+ε)·x
//
// The result is written into dst when its length matches x, otherwise a
// fresh slice is allocated; dst may alias x.
func ProxKL(dst, x []float64, eps, rho float64) []float64 {
	if len(dst) != len(x) {
		dst = make([]float64, len(x))
	}
	s := rho / (rho + eps)
	for i, v := range x {
		dst[i] = s * v
	}
	return dst
}

// ProxBerg applies the Berg proximal operator elementwise:
//
//	𝚊𝚙𝚛𝚘𝚡(x) = ρ - ε·W(𝚎𝚡𝚙(ρ/ε + 𝚕𝚘𝚐(ρ/ε) - x/ε))
//
// W is evaluated by the log-space Lambert solver, so the operator stays
// finite as ε → 0 (limit 𝚖𝚒𝚗(x, ρ)) and as ρ → ∞. The result never exceeds
// ρ, keeping the Berg entropy in its domain.
// Allocation and aliasing rules are those of ProxKL.
func ProxBerg(dst, x []float64, eps, rho float64) []float64 {
	if len(dst) != len(x) {
		dst = make([]float64, len(x))
	}
	re := rho / eps
	lre := math.Log(re)
	for i, v := range x {
		dst[i] = rho - eps*lambertw.LogW(re+lre-v/eps)
	}
	return dst
}
