// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/lucien1011/doubleml-for-py/learner"
	"github.com/lucien1011/doubleml-for-py/resample"
)

// forEachFold runs fn once per split with at most workers folds in flight.
// fn must only write to slots owned by its fold index.
func forEachFold(splits []resample.Split, workers int, fn func(f int, s resample.Split) error) error {
	var g errgroup.Group
	g.SetLimit(workers)
	for f, s := range splits {
		g.Go(func() error {
			if len(s.Train) == 0 || len(s.Test) == 0 {
				return fmt.Errorf("fold %d: %w", f, resample.ErrPartition)
			}
			if err := fn(f, s); err != nil {
				return fmt.Errorf("fold %d: %w", f, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// fitPredict fits reg on the rows trainIdx of X against target and predicts
// the rows testIdx. Returns: predictions aligned to testIdx
func fitPredict(reg learner.Regressor, X *mat.Dense, target []float64, trainIdx, testIdx []int) ([]float64, error) {
	model, err := reg.Fit(rows(X, trainIdx), target)
	if err != nil {
		return nil, err
	}
	return predictRows(model, X, testIdx)
}

// predictRows predicts the listed rows of X with a fitted model
func predictRows(model learner.Predictor, X *mat.Dense, idx []int) ([]float64, error) {
	pred, err := model.Predict(rows(X, idx))
	if err != nil {
		return nil, err
	}
	if len(pred) != len(idx) {
		return nil, fmt.Errorf("%w: learner returned %d predictions for %d rows", ErrShapeMismatch, len(pred), len(idx))
	}
	return pred, nil
}

// fitPredictProba is fitPredict for classifiers and returns P(y=1)
func fitPredictProba(clf learner.Classifier, X *mat.Dense, target []float64, trainIdx, testIdx []int) ([]float64, error) {
	model, err := clf.Fit(rows(X, trainIdx), target)
	if err != nil {
		return nil, err
	}
	proba, err := model.PredictProba(rows(X, testIdx))
	if err != nil {
		return nil, err
	}
	r, c := proba.Dims()
	if r != len(testIdx) || c < 2 {
		return nil, fmt.Errorf("%w: classifier returned %dx%d probabilities for %d rows", ErrShapeMismatch, r, c, len(testIdx))
	}
	return mat.Col(nil, 1, proba), nil
}

// rows copies the listed rows of X into a new matrix
func rows(X *mat.Dense, idx []int) *mat.Dense {
	_, p := X.Dims()
	out := mat.NewDense(len(idx), p, nil)
	for i, r := range idx {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}

// take copies v at the listed positions
func take(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = v[r]
	}
	return out
}

// whereEqual returns the members of idx with d == level, ascending
func whereEqual(idx []int, d []float64, level float64) []int {
	var out []int
	for _, i := range idx {
		if d[i] == level {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// pool scatters per-fold vectors back to their test positions in a fresh
// length-n array. Every position must be written exactly once.
func pool(splits []resample.Split, perFold [][]float64, n int) ([]float64, error) {
	if len(perFold) != len(splits) {
		return nil, fmt.Errorf("%w: %d fold vectors for %d folds", ErrShapeMismatch, len(perFold), len(splits))
	}
	out := make([]float64, n)
	written := make([]bool, n)
	for f, s := range splits {
		if len(perFold[f]) != len(s.Test) {
			return nil, fmt.Errorf("%w: fold %d has %d predictions for %d test observations",
				ErrShapeMismatch, f, len(perFold[f]), len(s.Test))
		}
		for k, i := range s.Test {
			if written[i] {
				return nil, fmt.Errorf("%w: observation %d written twice", resample.ErrPartition, i)
			}
			out[i] = perFold[f][k]
			written[i] = true
		}
	}
	for i, ok := range written {
		if !ok {
			return nil, fmt.Errorf("%w: observation %d never held out", resample.ErrPartition, i)
		}
	}
	return out, nil
}

// constant returns a length-n vector filled with v
func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
