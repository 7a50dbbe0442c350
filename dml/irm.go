// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/lucien1011/doubleml-for-py/dataset"
	"github.com/lucien1011/doubleml-for-py/learner"
	"github.com/lucien1011/doubleml-for-py/resample"
)

// IRM is the interactive regression model for a binary treatment:
// Y = g(D, X) + U, D = m(X) + V. It estimates the ATE or the ATTE.
type IRM struct {
	*base
	mlG learner.Regressor
	mlM learner.Classifier
}

// irmNuisance holds the cross-fitted predictions, one vector per fold,
// aligned to that fold's test set.
type irmNuisance struct {
	g0 [][]float64 // E[Y|X, D=0]
	g1 [][]float64 // E[Y|X, D=1]; zero placeholder unless score is ATE
	m  [][]float64 // P(D=1|X)
	p  []float64   // treated share of the fold's test set
}

// NewIRM builds an IRM estimator. mlG is fitted separately on untreated
// and treated training units, mlM is the propensity classifier.
// The default score is ATE; the fold split is drawn here.
func NewIRM(data *dataset.Data, mlG learner.Regressor, mlM learner.Classifier, opts ...Option) (*IRM, error) {
	if mlG == nil || mlM == nil {
		return nil, errors.New("dml: IRM needs both an outcome regressor and a propensity classifier")
	}
	if data == nil {
		return nil, errors.New("dml: nil data")
	}
	if err := data.CheckBinaryTreatment(); err != nil {
		return nil, err
	}
	b, err := newBase(data, newSettings(ATE, opts))
	if err != nil {
		return nil, err
	}
	return &IRM{base: b, mlG: mlG, mlM: mlM}, nil
}

// Fit cross-fits the nuisance functions and estimates coef and se.
func (e *IRM) Fit() error {
	nu, err := e.fitNuisance()
	if err != nil {
		return err
	}
	return e.estimate(nu)
}

// fitNuisance fits g0, g1 (ATE only), m and p on every fold.
// Any score other than ATE skips the g1 fit without complaint; an invalid
// score is reported later by the score itself.
func (e *IRM) fitNuisance() (*irmNuisance, error) {
	k := len(e.splits)
	nu := &irmNuisance{
		g0: make([][]float64, k),
		g1: make([][]float64, k),
		m:  make([][]float64, k),
		p:  make([]float64, k),
	}
	Y, D, X := e.data.Y, e.data.D, e.data.X
	fitG1 := e.cfg.score == ATE

	err := forEachFold(e.splits, e.cfg.workers, func(f int, s resample.Split) error {
		train0 := whereEqual(s.Train, D, 0)
		if len(train0) == 0 {
			return fmt.Errorf("no untreated units in the training set")
		}
		g0, err := fitPredict(e.mlG, X, take(Y, train0), train0, s.Test)
		if err != nil {
			return fmt.Errorf("g0: %w", err)
		}
		nu.g0[f] = g0

		if fitG1 {
			train1 := whereEqual(s.Train, D, 1)
			if len(train1) == 0 {
				return fmt.Errorf("no treated units in the training set")
			}
			g1, err := fitPredict(e.mlG, X, take(Y, train1), train1, s.Test)
			if err != nil {
				return fmt.Errorf("g1: %w", err)
			}
			nu.g1[f] = g1
		} else {
			// Same shape as g0, never read by the score
			nu.g1[f] = make([]float64, len(g0))
		}

		m, err := fitPredictProba(e.mlM, X, take(D, s.Train), s.Train, s.Test)
		if err != nil {
			return fmt.Errorf("m: %w", err)
		}
		nu.m[f] = m
		nu.p[f] = stat.Mean(take(D, s.Test), nil)

		e.cfg.logger.Debug("irm fold fitted",
			slog.Int("fold", f),
			slog.Int("n_train", len(s.Train)),
			slog.Int("n_test", len(s.Test)),
			slog.Bool("g1_fitted", fitG1),
			slog.String("ml_g", fmt.Sprint(e.mlG)),
			slog.String("ml_m", fmt.Sprint(e.mlM)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("irm nuisance: %w", err)
	}
	return nu, nil
}

// estimate pools the fold predictions, builds the score and publishes the
// estimate.
func (e *IRM) estimate(nu *irmNuisance) error {
	n := e.data.NObs()
	g0, err := pool(e.splits, nu.g0, n)
	if err != nil {
		return err
	}
	g1, err := pool(e.splits, nu.g1, n)
	if err != nil {
		return err
	}
	m, err := pool(e.splits, nu.m, n)
	if err != nil {
		return err
	}
	pFolds := make([][]float64, len(e.splits))
	for f, s := range e.splits {
		pFolds[f] = constant(len(s.Test), nu.p[f])
	}
	p, err := pool(e.splits, pFolds, n)
	if err != nil {
		return err
	}

	s, err := irmScore(e.cfg.score, e.data.Y, e.data.D, g0, g1, m, p)
	if err != nil {
		return err
	}
	return e.finish(s)
}
