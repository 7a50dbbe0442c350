// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// Package resample produces the train/test index pairs used for cross-fitting.
package resample

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrPartition is returned when test sets do not cover every observation
// exactly once.
var ErrPartition = errors.New("resample: test sets do not partition the sample")

// Split is one cross-fitting fold. Train holds the observations used to fit
// the nuisance learners, Test the held-out observations they predict.
type Split struct {
	Train []int
	Test  []int
}

// KFold shuffles 0..nObs-1 with src and cuts the permutation into nFolds
// contiguous test chunks. The first nObs%nFolds folds get one extra
// observation. Train indices are the complement of each test chunk in
// ascending order.
// Returns: nFolds splits whose test sets partition the sample
func KFold(nObs, nFolds int, src rand.Source) ([]Split, error) {
	if nFolds < 2 {
		return nil, fmt.Errorf("resample: need at least 2 folds, got %d", nFolds)
	}
	if nObs < nFolds {
		return nil, fmt.Errorf("resample: cannot split %d observations into %d folds", nObs, nFolds)
	}
	if src == nil {
		return nil, errors.New("resample: nil random source")
	}

	// Get a random permutation of the data samples
	perm := rand.New(src).Perm(nObs)

	splits := make([]Split, nFolds)
	nSampPerFold := nObs / nFolds
	remainder := nObs % nFolds

	inTest := make([]bool, nObs)
	idx := 0
	for i := 0; i < nFolds; i++ {
		nTestElems := nSampPerFold
		if i < remainder {
			nTestElems++
		}
		test := make([]int, nTestElems)
		copy(test, perm[idx:idx+nTestElems])

		for _, o := range test {
			inTest[o] = true
		}
		train := make([]int, 0, nObs-nTestElems)
		for o := 0; o < nObs; o++ {
			if !inTest[o] {
				train = append(train, o)
			}
		}
		for _, o := range test {
			inTest[o] = false
		}

		splits[i] = Split{Train: train, Test: test}
		idx += nTestElems
	}
	return splits, nil
}

// CheckPartition verifies that the test sets of splits cover 0..nObs-1
// exactly once, that every index is in range and that no fold has an empty
// train or test set.
func CheckPartition(splits []Split, nObs int) error {
	seen := make([]bool, nObs)
	covered := 0
	for f, s := range splits {
		if len(s.Test) == 0 {
			return fmt.Errorf("%w: fold %d has an empty test set", ErrPartition, f)
		}
		if len(s.Train) == 0 {
			return fmt.Errorf("%w: fold %d has an empty training set", ErrPartition, f)
		}
		for _, o := range s.Test {
			if o < 0 || o >= nObs {
				return fmt.Errorf("%w: fold %d test index %d outside [0, %d)", ErrPartition, f, o, nObs)
			}
			if seen[o] {
				return fmt.Errorf("%w: observation %d appears in more than one test set (fold %d)", ErrPartition, o, f)
			}
			seen[o] = true
			covered++
		}
		for _, o := range s.Train {
			if o < 0 || o >= nObs {
				return fmt.Errorf("%w: fold %d train index %d outside [0, %d)", ErrPartition, f, o, nObs)
			}
		}
	}
	if covered != nObs {
		return fmt.Errorf("%w: %d of %d observations are never held out", ErrPartition, nObs-covered, nObs)
	}
	return nil
}
