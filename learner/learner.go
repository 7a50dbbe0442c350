// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// Package learner holds the nuisance learners used by the DML estimators.
// A learner value is only a recipe: Fit never mutates it and always returns
// a freshly fitted model, so one learner can be reused across folds.
package learner

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoData is returned when a learner is asked to fit zero rows.
	ErrNoData = errors.New("learner: no training data")
	// ErrSingleClass is returned when a classifier sees only one label.
	ErrSingleClass = errors.New("learner: training labels contain a single class")
	// ErrDims is returned when features and target (or a fitted model and new
	// features) disagree in shape.
	ErrDims = errors.New("learner: dimension mismatch")
)

// Regressor fits a regression function of y on X.
type Regressor interface {
	Fit(X mat.Matrix, y []float64) (Predictor, error)
}

// Predictor is a fitted regression model.
type Predictor interface {
	Predict(X mat.Matrix) ([]float64, error)
}

// Classifier fits a binary classifier of y in {0,1} on X.
type Classifier interface {
	Fit(X mat.Matrix, y []float64) (ProbPredictor, error)
}

// ProbPredictor is a fitted classifier. PredictProba returns an n x 2 matrix,
// column 1 holds the positive-class probability.
type ProbPredictor interface {
	PredictProba(X mat.Matrix) (*mat.Dense, error)
}

// checkXY validates the training inputs shared by every learner
func checkXY(X mat.Matrix, y []float64) (n, p int, err error) {
	n, p = X.Dims()
	if n == 0 {
		return 0, 0, ErrNoData
	}
	if len(y) != n {
		return 0, 0, fmt.Errorf("%w: X has %d rows, y has %d values", ErrDims, n, len(y))
	}
	return n, p, nil
}

// linearPredict computes intercept + X*coef for every row of X
func linearPredict(X mat.Matrix, intercept float64, coef []float64) ([]float64, error) {
	n, p := X.Dims()
	if p != len(coef) {
		return nil, fmt.Errorf("%w: model has %d features, X has %d columns", ErrDims, len(coef), p)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		val := intercept
		for j := 0; j < p; j++ {
			val += X.At(i, j) * coef[j]
		}
		out[i] = val
	}
	return out, nil
}
