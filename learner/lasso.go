// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package learner

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Lasso is L1-penalised least squares with an unpenalised intercept. It
// minimises (1/(2n)) * ||y - b - X*w||^2 + Alpha * ||w||_1 by cyclic
// coordinate descent on centred data.
type Lasso struct {
	Alpha float64
	// MaxIter bounds the number of full coordinate sweeps (default 1000).
	MaxIter int
	// Tol stops the sweeps once the largest coefficient update relative to
	// the largest coefficient falls below it (default 1e-4).
	Tol float64
}

func (l Lasso) String() string { return fmt.Sprintf("Lasso(alpha=%g)", l.Alpha) }

// Fit runs coordinate descent and returns a LinearModel.
func (l Lasso) Fit(X mat.Matrix, y []float64) (Predictor, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}
	if l.Alpha < 0 {
		return nil, fmt.Errorf("lasso: alpha must be >= 0, got %g", l.Alpha)
	}
	maxIter := l.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}
	tol := l.Tol
	if tol <= 0 {
		tol = 1e-4
	}

	// Centre y and each column of X; keep the columns contiguous for the sweeps
	yMean := floats.Sum(y) / float64(n)
	resid := make([]float64, n)
	for i := range y {
		resid[i] = y[i] - yMean
	}

	xMean := make([]float64, p)
	cols := make([][]float64, p)
	normSq := make([]float64, p)
	for j := 0; j < p; j++ {
		col := mat.Col(nil, j, X)
		xMean[j] = floats.Sum(col) / float64(n)
		floats.AddConst(-xMean[j], col)
		cols[j] = col
		normSq[j] = floats.Dot(col, col)
	}

	w := make([]float64, p)
	threshold := float64(n) * l.Alpha

	for iter := 0; iter < maxIter; iter++ {
		maxDelta := 0.0
		maxW := 0.0
		for j := 0; j < p; j++ {
			if normSq[j] == 0 {
				continue
			}
			old := w[j]
			rho := floats.Dot(cols[j], resid) + old*normSq[j]
			updated := softThreshold(rho, threshold) / normSq[j]
			if updated != old {
				floats.AddScaled(resid, old-updated, cols[j])
				w[j] = updated
			}
			maxDelta = math.Max(maxDelta, math.Abs(updated-old))
			maxW = math.Max(maxW, math.Abs(updated))
		}
		if maxW == 0 || maxDelta/maxW < tol {
			break
		}
	}

	return &LinearModel{
		Intercept: yMean - floats.Dot(xMean, w),
		Coef:      w,
	}, nil
}

func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	default:
		return 0
	}
}
