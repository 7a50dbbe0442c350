// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

// Hand-written DML computations, fold by fold, used as the reference the
// estimators are checked against. They share no code with the estimators
// except the learners.

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lucien1011/doubleml-for-py/learner"
	"github.com/lucien1011/doubleml-for-py/resample"
)

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

// isClose mirrors math.isclose: |a-b| <= max(rel*max(|a|,|b|), abs)
func isClose(a, b, rel, abs float64) bool {
	return math.Abs(a-b) <= math.Max(rel*math.Max(math.Abs(a), math.Abs(b)), abs)
}

func mean(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func subset(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}

func subsetRows(X *mat.Dense, idx []int) *mat.Dense {
	_, p := X.Dims()
	out := mat.NewDense(len(idx), p, nil)
	for i, j := range idx {
		for k := 0; k < p; k++ {
			out.Set(i, k, X.At(j, k))
		}
	}
	return out
}

// intersect returns the members of train with D == level, ascending
func intersect(train []int, D []float64, level float64) []int {
	var out []int
	for i := range D {
		if D[i] != level {
			continue
		}
		for _, j := range train {
			if j == i {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func mustPredict(t *testing.T, reg learner.Regressor, Xtr *mat.Dense, ytr []float64, Xte *mat.Dense) []float64 {
	t.Helper()
	model, err := reg.Fit(Xtr, ytr)
	if err != nil {
		t.Fatalf("manual fit: %v", err)
	}
	pred, err := model.Predict(Xte)
	if err != nil {
		t.Fatalf("manual predict: %v", err)
	}
	return pred
}

// ============================================================================
// IRM
// ============================================================================

type manualIRM struct {
	g0, g1, m [][]float64
	p         []float64
}

func fitNuisanceIRMManual(t *testing.T, Y, D []float64, X *mat.Dense,
	mlM learner.Classifier, mlG learner.Regressor, smpls []resample.Split, score Score) manualIRM {
	t.Helper()
	var res manualIRM
	for _, s := range smpls {
		train0 := intersect(s.Train, D, 0)
		res.g0 = append(res.g0, mustPredict(t, mlG, subsetRows(X, train0), subset(Y, train0), subsetRows(X, s.Test)))
	}

	if score == ATE {
		for _, s := range smpls {
			train1 := intersect(s.Train, D, 1)
			res.g1 = append(res.g1, mustPredict(t, mlG, subsetRows(X, train1), subset(Y, train1), subsetRows(X, s.Test)))
		}
	} else {
		for idx := range smpls {
			// fill it up, but it is not used further
			res.g1 = append(res.g1, make([]float64, len(res.g0[idx])))
		}
	}

	for _, s := range smpls {
		model, err := mlM.Fit(subsetRows(X, s.Train), subset(D, s.Train))
		if err != nil {
			t.Fatalf("manual m fit: %v", err)
		}
		proba, err := model.PredictProba(subsetRows(X, s.Test))
		if err != nil {
			t.Fatalf("manual m predict: %v", err)
		}
		res.m = append(res.m, mat.Col(nil, 1, proba))
		res.p = append(res.p, mean(subset(D, s.Test)))
	}
	return res
}

func irmOrthManual(g0, g1, m, p, u0, u1, D []float64, score Score) float64 {
	n := len(D)
	switch score {
	case ATE:
		v := make([]float64, n)
		for i := range v {
			v[i] = g1[i] - g0[i] + D[i]*u1[i]/m[i] - (1.-D[i])*u0[i]/(1.-m[i])
		}
		return mean(v)
	case ATTE:
		num := make([]float64, n)
		den := make([]float64, n)
		for i := range num {
			num[i] = D[i]*u0[i]/p[i] - m[i]*((1.-D[i])*u0[i])/(p[i]*(1.-m[i]))
			den[i] = D[i] / p[i]
		}
		return mean(num) / mean(den)
	}
	return math.NaN()
}

func varIRMManual(theta float64, g0, g1, m, p, u0, u1, D []float64, score Score, nObs int) float64 {
	n := len(D)
	sq := make([]float64, n)
	switch score {
	case ATE:
		for i := range sq {
			v := g1[i] - g0[i] + D[i]*u1[i]/m[i] - (1.-D[i])*u0[i]/(1.-m[i]) - theta
			sq[i] = v * v
		}
		return 1 / float64(nObs) * mean(sq)
	case ATTE:
		den := make([]float64, n)
		for i := range sq {
			v := D[i]*u0[i]/p[i] - m[i]*((1.-D[i])*u0[i])/(p[i]*(1.-m[i])) - theta*(D[i]/p[i])
			sq[i] = v * v
			den[i] = D[i] / p[i]
		}
		return 1 / float64(nObs) * mean(sq) / math.Pow(mean(den), 2)
	}
	return math.NaN()
}

func residuals(Y, g []float64) []float64 {
	out := make([]float64, len(Y))
	for i := range Y {
		out[i] = Y[i] - g[i]
	}
	return out
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func irmDML1Manual(Y, D []float64, nu manualIRM, smpls []resample.Split, score Score) (float64, float64) {
	nObs := len(Y)
	thetas := make([]float64, len(smpls))
	for idx, s := range smpls {
		yTest := subset(Y, s.Test)
		u0 := residuals(yTest, nu.g0[idx])
		u1 := residuals(yTest, nu.g1[idx])
		p := filled(len(s.Test), nu.p[idx])
		thetas[idx] = irmOrthManual(nu.g0[idx], nu.g1[idx], nu.m[idx], p, u0, u1, subset(D, s.Test), score)
	}
	thetaHat := mean(thetas)

	ses := make([]float64, len(smpls))
	for idx, s := range smpls {
		yTest := subset(Y, s.Test)
		u0 := residuals(yTest, nu.g0[idx])
		u1 := residuals(yTest, nu.g1[idx])
		p := filled(len(s.Test), nu.p[idx])
		ses[idx] = varIRMManual(thetaHat, nu.g0[idx], nu.g1[idx], nu.m[idx], p, u0, u1, subset(D, s.Test), score, nObs)
	}
	return thetaHat, math.Sqrt(mean(ses))
}

// irmPooledManual scatters the fold predictions into full-length arrays
func irmPooledManual(Y []float64, nu manualIRM, smpls []resample.Split) (g0, g1, m, p, u0, u1 []float64) {
	n := len(Y)
	g0, g1, m, p = make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	u0, u1 = make([]float64, n), make([]float64, n)
	for idx, s := range smpls {
		for k, i := range s.Test {
			u0[i] = Y[i] - nu.g0[idx][k]
			u1[i] = Y[i] - nu.g1[idx][k]
			g0[i] = nu.g0[idx][k]
			g1[i] = nu.g1[idx][k]
			m[i] = nu.m[idx][k]
			p[i] = nu.p[idx]
		}
	}
	return
}

func irmDML2Manual(Y, D []float64, nu manualIRM, smpls []resample.Split, score Score) (float64, float64) {
	g0, g1, m, p, u0, u1 := irmPooledManual(Y, nu, smpls)
	thetaHat := irmOrthManual(g0, g1, m, p, u0, u1, D, score)
	se := math.Sqrt(varIRMManual(thetaHat, g0, g1, m, p, u0, u1, D, score, len(Y)))
	return thetaHat, se
}

func bootIRMManual(theta float64, Y, D []float64, nu manualIRM, smpls []resample.Split, score Score,
	se float64, method BootstrapMethod, nRep int, proc Procedure, src rand.Source) []float64 {
	g0, g1, m, p, u0, u1 := irmPooledManual(Y, nu, smpls)
	n := len(Y)

	var J []float64
	if proc == DML1 {
		J = make([]float64, len(smpls))
		for idx, s := range smpls {
			if score == ATE {
				J[idx] = -1.0
			} else {
				v := make([]float64, len(s.Test))
				for k, i := range s.Test {
					v[k] = -(D[i] / p[i])
				}
				J[idx] = mean(v)
			}
		}
	} else {
		if score == ATE {
			J = []float64{-1.0}
		} else {
			v := make([]float64, n)
			for i := range v {
				v[i] = -(D[i] / p[i])
			}
			J = []float64{mean(v)}
		}
	}

	psi := make([]float64, n)
	for i := range psi {
		if score == ATE {
			psi[i] = g1[i] - g0[i] + D[i]*u1[i]/m[i] - (1.-D[i])*u0[i]/(1.-m[i]) - theta
		} else {
			psi[i] = D[i]*u0[i]/p[i] - m[i]*((1.-D[i])*u0[i])/(p[i]*(1.-m[i])) - theta*(D[i]/p[i])
		}
	}
	return bootManual(psi, smpls, J, se, method, nRep, proc, src, false)
}

// bootManual runs the multiplier bootstrap loop. With wildPerRep the wild
// normals are drawn inside the loop instead of in two upfront batches.
func bootManual(psi []float64, smpls []resample.Split, J []float64, se float64,
	method BootstrapMethod, nRep int, proc Procedure, src rand.Source, wildPerRep bool) []float64 {
	nObs := len(psi)
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	exp := distuv.Exponential{Rate: 1, Src: src}

	var xxSample, yySample [][]float64
	if method == Wild && !wildPerRep {
		// draw all random variables at once for comparability
		for _, batch := range []*[][]float64{&xxSample, &yySample} {
			for r := 0; r < nRep; r++ {
				row := make([]float64, nObs)
				for i := range row {
					row[i] = norm.Rand()
				}
				*batch = append(*batch, row)
			}
		}
	}

	boot := make([]float64, nRep)
	for rep := 0; rep < nRep; rep++ {
		weights := make([]float64, nObs)
		switch method {
		case Bayes:
			for i := range weights {
				weights[i] = exp.Rand() - 1.
			}
		case Normal:
			for i := range weights {
				weights[i] = norm.Rand()
			}
		case Wild:
			var xx, yy []float64
			if wildPerRep {
				xx, yy = make([]float64, nObs), make([]float64, nObs)
				for i := range xx {
					xx[i] = norm.Rand()
				}
				for i := range yy {
					yy[i] = norm.Rand()
				}
			} else {
				xx, yy = xxSample[rep], yySample[rep]
			}
			for i := range weights {
				weights[i] = xx[i]/math.Sqrt(2) + (math.Pow(yy[i], 2)-1)/2
			}
		}

		if proc == DML1 {
			this := make([]float64, len(smpls))
			for idx, s := range smpls {
				v := make([]float64, len(s.Test))
				for k, i := range s.Test {
					v[k] = (weights[i] / se) * (psi[i] / J[idx])
				}
				this[idx] = mean(v)
			}
			boot[rep] = mean(this)
		} else {
			v := make([]float64, nObs)
			for i := range v {
				v[i] = (weights[i] / se) * (psi[i] / J[0])
			}
			boot[rep] = mean(v)
		}
	}
	return boot
}

// ============================================================================
// PLIV partialXZ
// ============================================================================

type manualPLIV struct {
	g, m, r [][]float64
}

func fitNuisancePLIVManual(t *testing.T, Y, D []float64, X, Z *mat.Dense,
	mlG, mlM, mlR learner.Regressor, smpls []resample.Split) manualPLIV {
	t.Helper()
	n, p := X.Dims()
	_, q := Z.Dims()
	XZ := mat.NewDense(n, p+q, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			XZ.Set(i, j, X.At(i, j))
		}
		for j := 0; j < q; j++ {
			XZ.Set(i, p+j, Z.At(i, j))
		}
	}

	var res manualPLIV
	for _, s := range smpls {
		res.g = append(res.g, mustPredict(t, mlG, subsetRows(X, s.Train), subset(Y, s.Train), subsetRows(X, s.Test)))

		model, err := mlM.Fit(subsetRows(XZ, s.Train), subset(D, s.Train))
		if err != nil {
			t.Fatalf("manual m fit: %v", err)
		}
		mTest, err := model.Predict(subsetRows(XZ, s.Test))
		if err != nil {
			t.Fatalf("manual m predict: %v", err)
		}
		mTrain, err := model.Predict(subsetRows(XZ, s.Train))
		if err != nil {
			t.Fatalf("manual m predict: %v", err)
		}
		res.m = append(res.m, mTest)
		res.r = append(res.r, mustPredict(t, mlR, subsetRows(X, s.Train), mTrain, subsetRows(X, s.Test)))
	}
	return res
}

// plivParts returns u = y - g, w = d - r, v = m - r on the given rows
func plivParts(Y, D, g, m, r []float64) (u, w, v []float64) {
	n := len(Y)
	u, w, v = make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		u[i] = Y[i] - g[i]
		w[i] = D[i] - r[i]
		v[i] = m[i] - r[i]
	}
	return
}

func plivOrthManual(u, w, v []float64) float64 {
	num := make([]float64, len(u))
	den := make([]float64, len(u))
	for i := range u {
		num[i] = v[i] * u[i]
		den[i] = v[i] * w[i]
	}
	return mean(num) / mean(den)
}

func varPLIVManual(theta float64, u, w, v []float64, nObs int) float64 {
	sq := make([]float64, len(u))
	den := make([]float64, len(u))
	for i := range u {
		e := v[i] * (u[i] - w[i]*theta)
		sq[i] = e * e
		den[i] = v[i] * w[i]
	}
	return 1 / float64(nObs) * mean(sq) / math.Pow(mean(den), 2)
}

func plivDML1Manual(Y, D []float64, nu manualPLIV, smpls []resample.Split) (float64, float64) {
	thetas := make([]float64, len(smpls))
	for idx, s := range smpls {
		u, w, v := plivParts(subset(Y, s.Test), subset(D, s.Test), nu.g[idx], nu.m[idx], nu.r[idx])
		thetas[idx] = plivOrthManual(u, w, v)
	}
	thetaHat := mean(thetas)
	vars := make([]float64, len(smpls))
	for idx, s := range smpls {
		u, w, v := plivParts(subset(Y, s.Test), subset(D, s.Test), nu.g[idx], nu.m[idx], nu.r[idx])
		vars[idx] = varPLIVManual(thetaHat, u, w, v, len(Y))
	}
	return thetaHat, math.Sqrt(mean(vars))
}

func plivPooledManual(Y, D []float64, nu manualPLIV, smpls []resample.Split) (u, w, v []float64) {
	n := len(Y)
	g, m, r := make([]float64, n), make([]float64, n), make([]float64, n)
	for idx, s := range smpls {
		for k, i := range s.Test {
			g[i] = nu.g[idx][k]
			m[i] = nu.m[idx][k]
			r[i] = nu.r[idx][k]
		}
	}
	return plivParts(Y, D, g, m, r)
}

func plivDML2Manual(Y, D []float64, nu manualPLIV, smpls []resample.Split) (float64, float64) {
	u, w, v := plivPooledManual(Y, D, nu, smpls)
	thetaHat := plivOrthManual(u, w, v)
	return thetaHat, math.Sqrt(varPLIVManual(thetaHat, u, w, v, len(Y)))
}

func bootPLIVManual(theta float64, Y, D []float64, nu manualPLIV, smpls []resample.Split,
	se float64, method BootstrapMethod, nRep int, proc Procedure, src rand.Source) []float64 {
	u, w, v := plivPooledManual(Y, D, nu, smpls)

	var J []float64
	if proc == DML1 {
		for _, s := range smpls {
			a := make([]float64, len(s.Test))
			for k, i := range s.Test {
				a[k] = -(v[i] * w[i])
			}
			J = append(J, mean(a))
		}
	} else {
		a := make([]float64, len(Y))
		for i := range a {
			a[i] = -(v[i] * w[i])
		}
		J = []float64{mean(a)}
	}

	psi := make([]float64, len(Y))
	for i := range psi {
		psi[i] = v[i]*u[i] - v[i]*w[i]*theta
	}
	return bootManual(psi, smpls, J, se, method, nRep, proc, src, false)
}
