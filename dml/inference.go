// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dml

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Summary is the inference table row for one treatment
type Summary struct {
	Treatment string
	Coef      float64
	SE        float64
	TStat     float64
	PValue    float64
	Level     float64 // confidence level of [Lower, Upper], e.g. 0.95
	Lower     float64
	Upper     float64
}

// TStat returns coef / se
func (b *base) TStat() (float64, error) {
	if !b.fitted {
		return math.NaN(), ErrNotFitted
	}
	return b.coef / b.se, nil
}

// PValue returns the two-sided p-value of the t-statistic under N(0,1)
func (b *base) PValue() (float64, error) {
	t, err := b.TStat()
	if err != nil {
		return math.NaN(), err
	}
	return 2 * distuv.UnitNormal.Survival(math.Abs(t)), nil
}

// ConfInt returns the pointwise normal confidence interval at level
// (e.g. 0.95): coef -/+ z_{1-(1-level)/2} * se
func (b *base) ConfInt(level float64) (lower, upper float64, err error) {
	if !b.fitted {
		return math.NaN(), math.NaN(), ErrNotFitted
	}
	if err := checkLevel(level); err != nil {
		return math.NaN(), math.NaN(), err
	}
	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	return b.coef - z*b.se, b.coef + z*b.se, nil
}

// JointConfInt returns the bootstrap-calibrated interval at level: the
// critical value is the level-quantile of |boot_coef| for method.
// Bootstrap(method, ...) must have run since the last Fit.
func (b *base) JointConfInt(level float64, method BootstrapMethod) (lower, upper float64, err error) {
	if !b.fitted {
		return math.NaN(), math.NaN(), ErrNotFitted
	}
	if err := checkLevel(level); err != nil {
		return math.NaN(), math.NaN(), err
	}
	draws, ok := b.bootCoef[method]
	if !ok {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: no draws for method %q", ErrNotBootstrapped, method)
	}
	abs := make([]float64, len(draws))
	for i, v := range draws {
		abs[i] = math.Abs(v)
	}
	crit := bootstrapQuantile(abs, level)
	return b.coef - crit*b.se, b.coef + crit*b.se, nil
}

// Summary collects coef, se, t, p and the pointwise interval at level
func (b *base) Summary(level float64) (Summary, error) {
	t, err := b.TStat()
	if err != nil {
		return Summary{}, err
	}
	p, err := b.PValue()
	if err != nil {
		return Summary{}, err
	}
	lo, hi, err := b.ConfInt(level)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Treatment: b.data.DCol,
		Coef:      b.coef,
		SE:        b.se,
		TStat:     t,
		PValue:    p,
		Level:     level,
		Lower:     lo,
		Upper:     hi,
	}, nil
}

func checkLevel(level float64) error {
	if !(level > 0 && level < 1) {
		return fmt.Errorf("%w: confidence level must be in (0, 1), got %g", ErrInvalidConfiguration, level)
	}
	return nil
}

// bootstrapQuantile returns the empirical q-quantile of samples (0 <= q <= 1)
// using linear interpolation between order statistics.
func bootstrapQuantile(samples []float64, q float64) float64 {
	n := len(samples)
	if n == 0 {
		return math.NaN()
	}

	tmp := make([]float64, n)
	copy(tmp, samples)
	sort.Float64s(tmp)

	if q <= 0 {
		return tmp[0]
	}
	if q >= 1 {
		return tmp[n-1]
	}

	pos := q * float64(n-1)
	idxBelow := int(math.Floor(pos))
	idxAbove := int(math.Ceil(pos))

	if idxAbove == idxBelow {
		return tmp[idxBelow]
	}

	weight := pos - float64(idxBelow)
	return tmp[idxBelow]*(1.0-weight) + tmp[idxAbove]*weight
}
