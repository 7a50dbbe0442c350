// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// weightSampler yields the multiplier weights for one repetition
type weightSampler func(rep int, weights []float64)

// newWeightSampler validates method and prepares its draws.
// For Wild, both n_rep x n_obs normal batches (first xx, then yy) are drawn
// here, before any repetition runs; the draw order fixes the output for a
// seeded source.
func newWeightSampler(method BootstrapMethod, nRep, nObs int, src rand.Source) (weightSampler, error) {
	switch method {
	case Bayes:
		exp := distuv.Exponential{Rate: 1, Src: src}
		return func(_ int, w []float64) {
			for i := range w {
				w[i] = exp.Rand() - 1.
			}
		}, nil

	case Normal:
		norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		return func(_ int, w []float64) {
			for i := range w {
				w[i] = norm.Rand()
			}
		}, nil

	case Wild:
		norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		xx := mat.NewDense(nRep, nObs, nil)
		yy := mat.NewDense(nRep, nObs, nil)
		for _, batch := range []*mat.Dense{xx, yy} {
			for r := 0; r < nRep; r++ {
				row := batch.RawRowView(r)
				for i := range row {
					row[i] = norm.Rand()
				}
			}
		}
		return func(rep int, w []float64) {
			x := xx.RawRowView(rep)
			y := yy.RawRowView(rep)
			for i := range w {
				w[i] = x[i]/math.Sqrt2 + (y[i]*y[i]-1)/2
			}
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown bootstrap method %q (want %q, %q or %q)",
			ErrInvalidConfiguration, method, Bayes, Normal, Wild)
	}
}

// multiplierBootstrap returns nRep draws of the studentized estimate
// mean_b( mean_{i in b}( w_i/se * psi_i/J_b ) ).
func multiplierBootstrap(method BootstrapMethod, nRep int, src rand.Source,
	psi []float64, se float64, J []float64, blks [][]int) ([]float64, error) {

	if nRep <= 0 {
		return nil, fmt.Errorf("%w: bootstrap repetitions must be > 0, got %d", ErrInvalidConfiguration, nRep)
	}
	if src == nil {
		return nil, errors.New("dml: nil random source for bootstrap")
	}
	if len(J) != len(blks) {
		return nil, fmt.Errorf("%w: %d scaling factors for %d blocks", ErrShapeMismatch, len(J), len(blks))
	}

	nObs := len(psi)
	sample, err := newWeightSampler(method, nRep, nObs, src)
	if err != nil {
		return nil, err
	}

	boot := make([]float64, nRep)
	weights := make([]float64, nObs)
	blockStat := make([]float64, len(blks))
	for rep := 0; rep < nRep; rep++ {
		sample(rep, weights)
		for b, idx := range blks {
			sum := 0.0
			for _, i := range idx {
				sum += (weights[i] / se) * (psi[i] / J[b])
			}
			blockStat[b] = sum / float64(len(idx))
		}
		boot[rep] = stat.Mean(blockStat, nil)
	}
	return boot, nil
}
