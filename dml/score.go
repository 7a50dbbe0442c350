// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import "fmt"

// scoreElements is a linear orthogonal score evaluated per observation:
// psi_i(theta) = A[i]*theta + B[i]
type scoreElements struct {
	A []float64
	B []float64
}

// psi evaluates the score at theta
func (s scoreElements) psi(theta float64) []float64 {
	out := make([]float64, len(s.A))
	for i := range out {
		out[i] = s.A[i]*theta + s.B[i]
	}
	return out
}

// irmScore builds the IRM score from pooled nuisance arrays.
// ATE:  psi_a = -1,     psi_b = g1 - g0 + d*u1/m - (1-d)*u0/(1-m)
// ATTE: psi_a = -d/p,   psi_b = d*u0/p - m*(1-d)*u0/(p*(1-m))
// with u0 = y - g0, u1 = y - g1. g1 is only read for ATE.
func irmScore(score Score, y, d, g0, g1, m, p []float64) (scoreElements, error) {
	n := len(y)
	for _, v := range [][]float64{d, g0, g1, m, p} {
		if len(v) != n {
			return scoreElements{}, fmt.Errorf("%w: score input of length %d, want %d", ErrShapeMismatch, len(v), n)
		}
	}

	A := make([]float64, n)
	B := make([]float64, n)
	switch score {
	case ATE:
		for i := 0; i < n; i++ {
			u0 := y[i] - g0[i]
			u1 := y[i] - g1[i]
			A[i] = -1.0
			B[i] = g1[i] - g0[i] + d[i]*u1/m[i] - (1.-d[i])*u0/(1.-m[i])
		}
	case ATTE:
		for i := 0; i < n; i++ {
			u0 := y[i] - g0[i]
			A[i] = -(d[i] / p[i])
			B[i] = d[i]*u0/p[i] - m[i]*((1.-d[i])*u0)/(p[i]*(1.-m[i]))
		}
	default:
		return scoreElements{}, fmt.Errorf("%w: score %q is not defined for IRM (want %q or %q)",
			ErrInvalidConfiguration, score, ATE, ATTE)
	}
	return scoreElements{A: A, B: B}, nil
}

// plivScore builds the PLIV partialXZ "partialling out" score.
// With u = y - g, w = d - r and v = m - r:
// psi_a = -v*w, psi_b = v*u
func plivScore(score Score, y, d, g, m, r []float64) (scoreElements, error) {
	n := len(y)
	for _, v := range [][]float64{d, g, m, r} {
		if len(v) != n {
			return scoreElements{}, fmt.Errorf("%w: score input of length %d, want %d", ErrShapeMismatch, len(v), n)
		}
	}
	if score != PartiallingOut {
		return scoreElements{}, fmt.Errorf("%w: score %q is not defined for PLIV partialXZ (want %q)",
			ErrInvalidConfiguration, score, PartiallingOut)
	}

	A := make([]float64, n)
	B := make([]float64, n)
	for i := 0; i < n; i++ {
		u := y[i] - g[i]
		w := d[i] - r[i]
		v := m[i] - r[i]
		A[i] = -(v * w)
		B[i] = v * u
	}
	return scoreElements{A: A, B: B}, nil
}
