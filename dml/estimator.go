// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/lucien1011/doubleml-for-py/dataset"
	"github.com/lucien1011/doubleml-for-py/resample"
)

// base carries what IRM and PLIV share: data, sample splitting,
// configuration and the results of the last successful Fit/Bootstrap.
type base struct {
	data   *dataset.Data
	cfg    settings
	splits []resample.Split

	// Set by Fit
	fitted bool
	coef   float64
	se     float64
	score  scoreElements
	blocks [][]int

	// Set by Bootstrap, keyed by method
	bootCoef map[BootstrapMethod][]float64
}

// newBase validates the configuration that is checked eagerly (data, fold
// count, procedure) and draws or checks the sample splitting. The score is
// left for Fit.
func newBase(data *dataset.Data, cfg settings) (*base, error) {
	if data == nil {
		return nil, errors.New("dml: nil data")
	}
	n := data.NObs()
	if len(data.D) != n {
		return nil, fmt.Errorf("%w: y has %d values, d has %d", ErrShapeMismatch, n, len(data.D))
	}
	if r, _ := data.X.Dims(); r != n {
		return nil, fmt.Errorf("%w: y has %d values, X has %d rows", ErrShapeMismatch, n, r)
	}
	if cfg.procedure != DML1 && cfg.procedure != DML2 {
		return nil, fmt.Errorf("%w: unknown procedure %q (want %q or %q)", ErrInvalidConfiguration, cfg.procedure, DML1, DML2)
	}

	splits := cfg.splits
	if splits == nil {
		if cfg.nFolds < 2 {
			return nil, fmt.Errorf("%w: need at least 2 folds, got %d", ErrInvalidConfiguration, cfg.nFolds)
		}
		var err error
		splits, err = resample.KFold(n, cfg.nFolds, cfg.src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
	} else {
		if err := resample.CheckPartition(splits, n); err != nil {
			return nil, err
		}
		splits = copySplits(splits)
		cfg.splits = nil
		cfg.nFolds = len(splits)
	}

	return &base{data: data, cfg: cfg, splits: splits}, nil
}

// finish turns the pooled score into the point estimate and standard error
// and publishes them. Nothing is published if any step fails.
func (b *base) finish(s scoreElements) error {
	blks, err := blocks(b.cfg.procedure, b.splits, b.data.NObs())
	if err != nil {
		return err
	}
	theta := solve(s, blks)
	se := standardError(s, theta, blks)

	b.coef, b.se = theta, se
	b.score = s
	b.blocks = blks
	b.bootCoef = nil
	b.fitted = true

	b.cfg.logger.Info("dml fit complete",
		slog.String("score", string(b.cfg.score)),
		slog.String("procedure", string(b.cfg.procedure)),
		slog.Int("n_folds", len(b.splits)),
		slog.Float64("coef", theta),
		slog.Float64("se", se))
	return nil
}

// Bootstrap draws nRep multiplier-bootstrap replicates of the studentized
// estimate with weights from method, using src for every draw.
// Returns: the draws, also kept for BootCoef and JointConfInt
func (b *base) Bootstrap(method BootstrapMethod, nRep int, src rand.Source) ([]float64, error) {
	if !b.fitted {
		return nil, ErrNotFitted
	}
	J := jacobian(b.score, b.blocks)
	psi := b.score.psi(b.coef)

	b.cfg.logger.Debug("dml bootstrap",
		slog.String("method", string(method)),
		slog.Int("n_rep", nRep))

	draws, err := multiplierBootstrap(method, nRep, src, psi, b.se, J, b.blocks)
	if err != nil {
		return nil, err
	}
	if b.bootCoef == nil {
		b.bootCoef = make(map[BootstrapMethod][]float64)
	}
	b.bootCoef[method] = draws
	return append([]float64(nil), draws...), nil
}

// Coef returns the point estimate of the last Fit
func (b *base) Coef() float64 { return b.coef }

// SE returns the standard error of the last Fit
func (b *base) SE() float64 { return b.se }

// Fitted reports whether Fit has succeeded
func (b *base) Fitted() bool { return b.fitted }

// BootCoef returns a copy of the bootstrap draws for method, or nil
func (b *base) BootCoef(method BootstrapMethod) []float64 {
	draws, ok := b.bootCoef[method]
	if !ok {
		return nil
	}
	return append([]float64(nil), draws...)
}

// Splits returns a copy of the sample splitting in use
func (b *base) Splits() []resample.Split { return copySplits(b.splits) }

func copySplits(splits []resample.Split) []resample.Split {
	out := make([]resample.Split, len(splits))
	for f, s := range splits {
		out[f] = resample.Split{
			Train: append([]int(nil), s.Train...),
			Test:  append([]int(nil), s.Test...),
		}
	}
	return out
}

// Procedure returns dml1 or dml2
func (b *base) Procedure() Procedure { return b.cfg.procedure }

// Score returns the configured score
func (b *base) Score() Score { return b.cfg.score }

// Treatment returns the name of the treatment column
func (b *base) Treatment() string { return b.data.DCol }
