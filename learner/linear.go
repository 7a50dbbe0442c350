// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package learner

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least squares with an intercept.
type LinearRegression struct{}

// LinearModel is a fitted linear regression: y = Intercept + X*Coef
type LinearModel struct {
	Intercept float64
	Coef      []float64
}

func (LinearRegression) String() string { return "LinearRegression" }

// Fit computes the OLS coefficients.
// X: n x p feature matrix, y: n-vector target
// Returns: fitted LinearModel
func (LinearRegression) Fit(X mat.Matrix, y []float64) (Predictor, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}

	// Design matrix with a leading column of ones for the intercept
	m := p + 1
	design := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1.0)
		for j := 0; j < p; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}
	yVec := mat.NewDense(n, 1, append([]float64(nil), y...))

	// B = (X'X)^(-1) X'y
	var B mat.Dense
	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var xtxInv mat.Dense
	xtxError := xtxInv.Inverse(&xtx)

	if xtxError == nil {
		var xty mat.Dense
		xty.Mul(design.T(), yVec)
		B.Mul(&xtxInv, &xty)
	} else {
		// X'X is singular (e.g. fewer rows than columns, or collinear features).
		// Minimum-norm least squares through the SVD pseudoinverse instead.
		var svd mat.SVD
		ok := svd.Factorize(design, mat.SVDFullU|mat.SVDFullV)
		if !ok {
			return nil, fmt.Errorf("OLS failed: X'X singular and SVD factorization failed: %v", xtxError)
		}
		rank := svd.Rank(1e-12)
		if rank == 0 {
			B = *mat.NewDense(m, 1, nil)
		} else {
			svd.SolveTo(&B, yVec, rank)
		}
	}

	model := &LinearModel{
		Intercept: B.At(0, 0),
		Coef:      make([]float64, p),
	}
	for j := 0; j < p; j++ {
		model.Coef[j] = B.At(j+1, 0)
	}
	return model, nil
}

// Predict returns Intercept + X*Coef
func (lm *LinearModel) Predict(X mat.Matrix) ([]float64, error) {
	return linearPredict(X, lm.Intercept, lm.Coef)
}
