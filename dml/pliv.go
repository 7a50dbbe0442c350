// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lucien1011/doubleml-for-py/dataset"
	"github.com/lucien1011/doubleml-for-py/learner"
	"github.com/lucien1011/doubleml-for-py/resample"
)

// PLIV is the partially linear IV model in its partialXZ form:
// Y = theta*D + g(X) + U, D = m(X, Z) + V, with E[U | X, Z] = 0.
// The instruments enter only through the treatment regression m; r
// projects m's in-sample fit back onto X.
type PLIV struct {
	*base
	mlG learner.Regressor
	mlM learner.Regressor
	mlR learner.Regressor
}

// plivNuisance holds the cross-fitted predictions, one vector per fold
type plivNuisance struct {
	g [][]float64 // E[Y|X]
	m [][]float64 // E[D|X,Z]
	r [][]float64 // E[m(X,Z)|X]
}

// NewPLIVPartialXZ builds a PLIV partialXZ estimator. data must carry at
// least one instrument. The default score is "partialling out".
func NewPLIVPartialXZ(data *dataset.Data, mlG, mlM, mlR learner.Regressor, opts ...Option) (*PLIV, error) {
	if mlG == nil || mlM == nil || mlR == nil {
		return nil, errors.New("dml: PLIV partialXZ needs learners for g, m and r")
	}
	if data == nil {
		return nil, errors.New("dml: nil data")
	}
	if data.Z == nil {
		return nil, errors.New("dml: PLIV partialXZ needs at least one instrument")
	}
	if r, _ := data.Z.Dims(); r != data.NObs() {
		return nil, fmt.Errorf("%w: y has %d values, Z has %d rows", ErrShapeMismatch, data.NObs(), r)
	}
	b, err := newBase(data, newSettings(PartiallingOut, opts))
	if err != nil {
		return nil, err
	}
	return &PLIV{base: b, mlG: mlG, mlM: mlM, mlR: mlR}, nil
}

// Fit cross-fits the nuisance functions and estimates coef and se.
func (e *PLIV) Fit() error {
	nu, err := e.fitNuisance()
	if err != nil {
		return err
	}
	return e.estimate(nu)
}

// fitNuisance fits on every fold:
// g: Y on X; m: D on [X Z], predicted on both test and train rows;
// r: m's train predictions on X, predicted on the test rows.
func (e *PLIV) fitNuisance() (*plivNuisance, error) {
	k := len(e.splits)
	nu := &plivNuisance{
		g: make([][]float64, k),
		m: make([][]float64, k),
		r: make([][]float64, k),
	}
	Y, D, X := e.data.Y, e.data.D, e.data.X
	XZ := e.data.XZ()

	err := forEachFold(e.splits, e.cfg.workers, func(f int, s resample.Split) error {
		g, err := fitPredict(e.mlG, X, take(Y, s.Train), s.Train, s.Test)
		if err != nil {
			return fmt.Errorf("g: %w", err)
		}
		nu.g[f] = g

		mModel, err := e.mlM.Fit(rows(XZ, s.Train), take(D, s.Train))
		if err != nil {
			return fmt.Errorf("m: %w", err)
		}
		m, err := predictRows(mModel, XZ, s.Test)
		if err != nil {
			return fmt.Errorf("m: %w", err)
		}
		mTrain, err := predictRows(mModel, XZ, s.Train)
		if err != nil {
			return fmt.Errorf("m: %w", err)
		}
		nu.m[f] = m

		r, err := fitPredict(e.mlR, X, mTrain, s.Train, s.Test)
		if err != nil {
			return fmt.Errorf("r: %w", err)
		}
		nu.r[f] = r

		e.cfg.logger.Debug("pliv fold fitted",
			slog.Int("fold", f),
			slog.Int("n_train", len(s.Train)),
			slog.Int("n_test", len(s.Test)),
			slog.String("ml_g", fmt.Sprint(e.mlG)),
			slog.String("ml_m", fmt.Sprint(e.mlM)),
			slog.String("ml_r", fmt.Sprint(e.mlR)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pliv nuisance: %w", err)
	}
	return nu, nil
}

// estimate pools the fold predictions, builds the score and publishes the
// estimate.
func (e *PLIV) estimate(nu *plivNuisance) error {
	n := e.data.NObs()
	g, err := pool(e.splits, nu.g, n)
	if err != nil {
		return err
	}
	m, err := pool(e.splits, nu.m, n)
	if err != nil {
		return err
	}
	r, err := pool(e.splits, nu.r, n)
	if err != nil {
		return err
	}

	s, err := plivScore(e.cfg.score, e.data.Y, e.data.D, g, m, r)
	if err != nil {
		return err
	}
	return e.finish(s)
}
