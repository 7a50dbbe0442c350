// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// Package dml implements double/debiased machine learning estimators for
// causal parameters: the interactive regression model (IRM, ATE and ATTE)
// and the partially linear IV model with instruments entering the treatment
// regression only (PLIV partialXZ).
//
// Every estimator follows the same pipeline: cross-fitted nuisance
// predictions, scattered back into full-length arrays, are turned into a
// linear orthogonal score psi = psi_a*theta + psi_b. The point estimate,
// its standard error and the multiplier bootstrap all aggregate psi over
// blocks of observations: one block per fold for dml1, a single block
// holding the whole sample for dml2.
package dml

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/lucien1011/doubleml-for-py/resample"
)

var (
	// ErrInvalidConfiguration reports an unknown score, procedure or
	// bootstrap method, or an out-of-range setting.
	ErrInvalidConfiguration = errors.New("dml: invalid configuration")
	// ErrShapeMismatch reports arrays that do not line up with the data or
	// with a fold's test set.
	ErrShapeMismatch = errors.New("dml: shape mismatch")
	// ErrNotFitted is returned by inference methods called before Fit.
	ErrNotFitted = errors.New("dml: estimator has not been fitted")
	// ErrNotBootstrapped is returned by joint inference before Bootstrap.
	ErrNotBootstrapped = errors.New("dml: bootstrap has not been run")
)

// Score selects the orthogonal moment.
type Score string

const (
	ATE            Score = "ATE"
	ATTE           Score = "ATTE"
	PartiallingOut Score = "partialling out"
)

// Procedure selects how fold results are combined.
type Procedure string

const (
	// DML1 estimates theta on every fold and averages the fold estimates.
	DML1 Procedure = "dml1"
	// DML2 pools the fold predictions and solves the score once.
	DML2 Procedure = "dml2"
)

// BootstrapMethod selects the multiplier weight distribution.
type BootstrapMethod string

const (
	// Bayes draws Exponential(1) - 1 weights
	Bayes BootstrapMethod = "Bayes"
	// Normal draws standard normal weights
	Normal BootstrapMethod = "normal"
	// Wild draws Mammen-type weights xx/sqrt(2) + (yy^2-1)/2 from two normal batches
	Wild BootstrapMethod = "wild"
)

// settings holds what the functional options configure
type settings struct {
	score     Score
	procedure Procedure
	nFolds    int
	splits    []resample.Split
	src       rand.Source
	logger    *slog.Logger
	workers   int
}

// Option configures an estimator.
type Option func(*settings)

// WithScore sets the score. It is not validated until Fit.
func WithScore(s Score) Option { return func(c *settings) { c.score = s } }

// WithProcedure sets dml1 or dml2 (default dml2).
func WithProcedure(p Procedure) Option { return func(c *settings) { c.procedure = p } }

// WithFolds sets the number of cross-fitting folds (default 5).
func WithFolds(k int) Option { return func(c *settings) { c.nFolds = k } }

// WithSplits supplies the sample splitting instead of drawing it. The fold
// count is taken from len(splits).
func WithSplits(splits []resample.Split) Option {
	return func(c *settings) { c.splits = splits }
}

// WithSource sets the random source the fold split is drawn from.
// Without it a time-seeded source is used.
func WithSource(src rand.Source) Option { return func(c *settings) { c.src = src } }

// WithLogger sets the structured logger (default discards).
func WithLogger(l *slog.Logger) Option { return func(c *settings) { c.logger = l } }

// WithWorkers fits up to n folds concurrently (default 1). Results do not
// depend on n.
func WithWorkers(n int) Option { return func(c *settings) { c.workers = n } }

func newSettings(defaultScore Score, opts []Option) settings {
	s := settings{
		score:     defaultScore,
		procedure: DML2,
		nFolds:    5,
		workers:   1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.src == nil && s.splits == nil {
		s.src = rand.NewPCG(uint64(time.Now().UnixNano()), 0)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}
