// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lucien1011/doubleml-for-py/resample"
)

// blocks returns the observation sets the score is aggregated over:
// each fold's test set for dml1, the whole sample (in index order) for dml2.
func blocks(proc Procedure, splits []resample.Split, n int) ([][]int, error) {
	switch proc {
	case DML1:
		out := make([][]int, len(splits))
		for f, s := range splits {
			out[f] = s.Test
		}
		return out, nil
	case DML2:
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return [][]int{all}, nil
	default:
		return nil, fmt.Errorf("%w: unknown procedure %q (want %q or %q)", ErrInvalidConfiguration, proc, DML1, DML2)
	}
}

// meanAt averages v over the positions in idx, in idx order
func meanAt(v []float64, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += v[i]
	}
	return sum / float64(len(idx))
}

// jacobian returns J_b = mean(psi_a) over every block
func jacobian(s scoreElements, blks [][]int) []float64 {
	J := make([]float64, len(blks))
	for b, idx := range blks {
		J[b] = meanAt(s.A, idx)
	}
	return J
}

// solve returns the point estimate: the root -mean(psi_b)/mean(psi_a) of
// each block, averaged over blocks.
func solve(s scoreElements, blks [][]int) float64 {
	thetas := make([]float64, len(blks))
	for b, idx := range blks {
		thetas[b] = -meanAt(s.B, idx) / meanAt(s.A, idx)
	}
	return stat.Mean(thetas, nil)
}

// standardError evaluates the score at the global theta and returns
// sqrt(mean_b(mean(psi^2)_b / (n * J_b^2))), where n is the full sample size.
func standardError(s scoreElements, theta float64, blks [][]int) float64 {
	n := float64(len(s.A))
	psi := s.psi(theta)
	psiSq := make([]float64, len(psi))
	for i, v := range psi {
		psiSq[i] = v * v
	}
	J := jacobian(s, blks)
	vars := make([]float64, len(blks))
	for b, idx := range blks {
		vars[b] = meanAt(psiSq, idx) / n / (J[b] * J[b])
	}
	return math.Sqrt(stat.Mean(vars, nil))
}
