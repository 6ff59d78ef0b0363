// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sinkhorn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewCostMatrix builds the dense ground cost 𝐂ᵢⱼ = |xᵢ-yⱼ|ᵖ between two
// support coordinate vectors.
func NewCostMatrix(x, y []float64, p float64) *mat.Dense {
	c := mat.NewDense(len(x), len(y), nil)
	for i, xi := range x {
		for j, yj := range y {
			c.Set(i, j, math.Pow(math.Abs(xi-yj), p))
		}
	}
	return c
}

// SinkX reduces the cost matrix over its first index, returning for every
// column j the a-weighted soft minimum of 𝐂·ⱼ - f at temperature ε:
//
//	𝚂ⱼ = -ε·𝚕𝚘𝚐 Σᵢ aᵢ·𝚎𝚡𝚙((fᵢ - 𝐂ᵢⱼ)/ε)
//
// The sum is taken against the column maximum so the reduction stays finite
// for arbitrarily small ε. Inputs are read-only, the result is a new slice.
func SinkX(c *mat.Dense, f, a []float64, eps float64) []float64 {
	n, m := c.Dims()
	if len(f) != n || len(a) != n {
		panic("row potential dimension not match cost matrix")
	}
	la := logWeights(a)
	w := make([]float64, n)
	g := make([]float64, m)
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			w[i] = la[i] + (f[i]-c.At(i, j))/eps
		}
		g[j] = -eps * floats.LogSumExp(w)
	}
	return g
}

// SinkY is the symmetric reduction over the second index:
//
//	𝚂ᵢ = -ε·𝚕𝚘𝚐 Σⱼ bⱼ·𝚎𝚡𝚙((gⱼ - 𝐂ᵢⱼ)/ε)
func SinkY(c *mat.Dense, g, b []float64, eps float64) []float64 {
	n, m := c.Dims()
	if len(g) != m || len(b) != m {
		panic("column potential dimension not match cost matrix")
	}
	lb := logWeights(b)
	w := make([]float64, m)
	f := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			w[j] = lb[j] + (g[j]-c.At(i, j))/eps
		}
		f[i] = -eps * floats.LogSumExp(w)
	}
	return f
}

func logWeights(a []float64) []float64 {
	l := make([]float64, len(a))
	for i, v := range a {
		l[i] = math.Log(v)
	}
	return l
}
