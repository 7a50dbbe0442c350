// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// Package simdata generates synthetic samples with a known causal effect
// for tests and the simulate command.
package simdata

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lucien1011/doubleml-for-py/dataset"
)

// toeplitz returns the k x k covariance with entries rho^|i-j|
func toeplitz(k int, rho float64) *mat.SymDense {
	sigma := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sigma.SetSym(i, j, math.Pow(rho, math.Abs(float64(i-j))))
		}
	}
	return sigma
}

// inverseSquares returns 1/1^2, 1/2^2, ..., 1/k^2
func inverseSquares(k int) []float64 {
	out := make([]float64, k)
	for j := range out {
		out[j] = 1 / float64((j+1)*(j+1))
	}
	return out
}

// drawRows fills an n x k matrix with rows from dist
func drawRows(dist *distmv.Normal, n, k int) *mat.Dense {
	out := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		dist.Rand(out.RawRowView(i))
	}
	return out
}

func names(prefix string, k int) []string {
	out := make([]string, k)
	for j := range out {
		out[j] = fmt.Sprintf("%s%d", prefix, j+1)
	}
	return out
}

// assemble lays y, d, X (and Z) out as the columns y, d, X1.., Z1..
func assemble(y, d []float64, X, Z *mat.Dense) (*dataset.Frame, error) {
	n, p := X.Dims()
	q := 0
	if Z != nil {
		_, q = Z.Dims()
	}
	values := mat.NewDense(n, 2+p+q, nil)
	values.SetCol(0, y)
	values.SetCol(1, d)
	values.Slice(0, n, 2, 2+p).(*mat.Dense).Copy(X)
	cols := append([]string{"y", "d"}, names("X", p)...)
	if Z != nil {
		values.Slice(0, n, 2+p, 2+p+q).(*mat.Dense).Copy(Z)
		cols = append(cols, names("Z", q)...)
	}
	return dataset.NewFrame(values, cols)
}

// IRM draws a sample from the interactive regression model
//
//	d = 1{ logistic(c_d * x'b) > U },  y = theta*d + c_y * x'b * d + zeta
//
// with x ~ N(0, Sigma), Sigma_jk = 0.5^|j-k|, b_j = 1/j^2, U ~ U(0,1),
// zeta ~ N(0,1). c_d and c_y give both regressions an R^2 of one half.
// Draw order: all rows of x, then all U, then all zeta.
func IRM(nObs, dimX int, theta float64, src rand.Source) (*dataset.Frame, error) {
	if nObs < 2 || dimX < 1 {
		return nil, fmt.Errorf("simdata: need nObs >= 2 and dimX >= 1, got %d and %d", nObs, dimX)
	}
	const r2d, r2y = 0.5, 0.5

	sigma := toeplitz(dimX, 0.5)
	beta := inverseSquares(dimX)
	bSigmaB := mat.Inner(mat.NewVecDense(dimX, beta), sigma, mat.NewVecDense(dimX, beta))
	cy := math.Sqrt(r2y / ((1 - r2y) * bSigmaB))
	cd := math.Sqrt((math.Pi * math.Pi / 3) * r2d / ((1 - r2d) * bSigmaB))

	xDist, ok := distmv.NewNormal(make([]float64, dimX), sigma, src)
	if !ok {
		return nil, fmt.Errorf("simdata: covariance is not positive definite")
	}
	X := drawRows(xDist, nObs, dimX)

	xb := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		xb[i] = mat.Dot(X.RowView(i), mat.NewVecDense(dimX, beta))
	}

	unif := distuv.Uniform{Min: 0, Max: 1, Src: src}
	d := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		e := math.Exp(cd * xb[i])
		if e/(1+e) > unif.Rand() {
			d[i] = 1
		}
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		y[i] = theta*d[i] + cy*xb[i]*d[i] + norm.Rand()
	}

	return assemble(y, d, X, nil)
}

// PLIVPartialXZ draws a sample from the partially linear IV design of
// Chernozhukov, Hansen and Spindler (2015):
//
//	z = x * [I 0]' + v,  d = x'gamma + z'delta + u,  y = alpha*d + x'beta + eps
//
// with x ~ N(0, Sigma), Sigma_jk = 0.5^|j-k|, v ~ N(0, I), (eps, u) jointly
// normal with unit variances and correlation 0.6, beta_j = gamma_j = 1/j^2
// and delta_j = 1/j^2. dimZ may not exceed dimX.
func PLIVPartialXZ(nObs, dimX, dimZ int, alpha float64, src rand.Source) (*dataset.Frame, error) {
	if nObs < 2 || dimX < 1 || dimZ < 1 || dimZ > dimX {
		return nil, fmt.Errorf("simdata: need nObs >= 2 and 1 <= dimZ <= dimX, got %d, %d, %d", nObs, dimX, dimZ)
	}

	errDist, ok := distmv.NewNormal([]float64{0, 0}, mat.NewSymDense(2, []float64{1, 0.6, 0.6, 1}), src)
	if !ok {
		return nil, fmt.Errorf("simdata: error covariance is not positive definite")
	}
	epsU := drawRows(errDist, nObs, 2)

	xDist, ok := distmv.NewNormal(make([]float64, dimX), toeplitz(dimX, 0.5), src)
	if !ok {
		return nil, fmt.Errorf("simdata: covariance is not positive definite")
	}
	X := drawRows(xDist, nObs, dimX)

	beta := inverseSquares(dimX)
	delta := inverseSquares(dimZ)

	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	Z := mat.NewDense(nObs, dimZ, nil)
	for i := 0; i < nObs; i++ {
		for j := 0; j < dimZ; j++ {
			Z.Set(i, j, X.At(i, j)+norm.Rand())
		}
	}

	d := make([]float64, nObs)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		xb := 0.0
		for j := 0; j < dimX; j++ {
			xb += X.At(i, j) * beta[j]
		}
		zd := 0.0
		for j := 0; j < dimZ; j++ {
			zd += Z.At(i, j) * delta[j]
		}
		d[i] = xb + zd + epsU.At(i, 1)
		y[i] = alpha*d[i] + xb + epsU.At(i, 0)
	}

	return assemble(y, d, X, Z)
}
