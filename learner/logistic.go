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
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is an L2-penalised logistic classifier. The penalty on
// the slope coefficients is ||w||^2 / (2C); the intercept is not penalised.
// C <= 0 means C = 1.
type LogisticRegression struct {
	C float64
	// MaxIter bounds the BFGS major iterations (default 500).
	MaxIter int
}

// LogisticModel is a fitted logistic regression:
// P(y=1|x) = 1 / (1 + exp(-(Intercept + x*Coef)))
type LogisticModel struct {
	Intercept float64
	Coef      []float64
}

func (lr LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(C=%g)", lr.penaltyC())
}

func (lr LogisticRegression) penaltyC() float64 {
	if lr.C <= 0 {
		return 1.0
	}
	return lr.C
}

// Fit minimises the penalised negative log-likelihood with BFGS.
// y must only contain 0 and 1 and both classes must be present.
func (lr LogisticRegression) Fit(X mat.Matrix, y []float64) (ProbPredictor, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}

	nPos := 0
	for i, v := range y {
		switch v {
		case 0:
		case 1:
			nPos++
		default:
			return nil, fmt.Errorf("logistic: label %d is %g, expected 0 or 1", i, v)
		}
	}
	if nPos == 0 || nPos == n {
		return nil, ErrSingleClass
	}

	// Dense copy of X, rows are read repeatedly by every evaluation
	xs := mat.DenseCopyOf(X)
	invC := 1.0 / lr.penaltyC()
	eta := make([]float64, n)

	// params[0] is the intercept, params[1:] the slopes
	linear := func(params []float64) {
		for i := 0; i < n; i++ {
			eta[i] = params[0] + floats.Dot(xs.RawRowView(i), params[1:])
		}
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			linear(params)
			nll := 0.0
			for i := 0; i < n; i++ {
				nll += softplus(eta[i]) - y[i]*eta[i]
			}
			return nll + 0.5*invC*floats.Dot(params[1:], params[1:])
		},
		Grad: func(grad, params []float64) {
			linear(params)
			for k := range grad {
				grad[k] = 0
			}
			for i := 0; i < n; i++ {
				r := sigmoid(eta[i]) - y[i]
				grad[0] += r
				floats.AddScaled(grad[1:], r, xs.RawRowView(i))
			}
			floats.AddScaled(grad[1:], invC, params[1:])
		},
	}

	maxIter := lr.MaxIter
	if maxIter <= 0 {
		maxIter = 500
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-8,
		MajorIterations:   maxIter,
	}

	start := make([]float64, p+1)
	result, err := optimize.Minimize(problem, start, settings, &optimize.BFGS{})
	if err != nil {
		// A line search that cannot improve any further still leaves a usable
		// optimum; only give up when there is nothing finite to return.
		if result == nil || !allFinite(result.X) {
			return nil, fmt.Errorf("logistic: optimisation failed: %w", err)
		}
	}

	return &LogisticModel{
		Intercept: result.X[0],
		Coef:      append([]float64(nil), result.X[1:]...),
	}, nil
}

// PredictProba returns an n x 2 matrix: column 0 is P(y=0), column 1 is P(y=1)
func (m *LogisticModel) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	eta, err := linearPredict(X, m.Intercept, m.Coef)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(eta), 2, nil)
	for i, e := range eta {
		p1 := sigmoid(e)
		out.Set(i, 0, 1-p1)
		out.Set(i, 1, p1)
	}
	return out, nil
}

// softplus computes log(1 + exp(x)) without overflow
func softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func allFinite(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
