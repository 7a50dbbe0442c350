// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// Package config reads the YAML run description used by `doubleml fit`.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Model names accepted in the model field
const (
	ModelIRM  = "irm"
	ModelPLIV = "pliv-partialxz"
)

// Learner names accepted in the learners section
const (
	LearnerOLS      = "ols"
	LearnerLasso    = "lasso"
	LearnerLogistic = "logistic"
)

// Run describes one estimation: where the data is, which columns play which
// role, the model and how to infer.
type Run struct {
	Data             string   `yaml:"data"`
	Outcome          string   `yaml:"outcome"`
	Treatment        string   `yaml:"treatment"`
	Covariates       []string `yaml:"covariates"`
	CovariatePrefix  string   `yaml:"covariate_prefix"`
	Instruments      []string `yaml:"instruments"`
	InstrumentPrefix string   `yaml:"instrument_prefix"`

	Model     string  `yaml:"model"`
	Score     string  `yaml:"score"` // empty selects the model's default
	Procedure string  `yaml:"procedure"`
	Folds     int     `yaml:"folds"`
	Seed      *uint64 `yaml:"seed"` // nil seeds from the clock
	Workers   int     `yaml:"workers"`

	Learners  Learners  `yaml:"learners"`
	Bootstrap Bootstrap `yaml:"bootstrap"`
	Level     float64   `yaml:"level"`
	Output    string    `yaml:"output"` // summary CSV; empty skips it
}

// Learners names the learner for each nuisance function
type Learners struct {
	G          string  `yaml:"g"`
	M          string  `yaml:"m"`
	R          string  `yaml:"r"`
	LassoAlpha float64 `yaml:"lasso_alpha"`
	LogisticC  float64 `yaml:"logistic_c"`
}

// Bootstrap lists the multiplier bootstrap runs. No methods means none.
type Bootstrap struct {
	Methods []string `yaml:"methods"`
	Reps    int      `yaml:"reps"`
	Output  string   `yaml:"output"` // draws CSV; empty skips it
}

// Default returns a Run with every optional field filled in
func Default() Run {
	return Run{
		Model:     ModelIRM,
		Procedure: "dml2",
		Folds:     5,
		Workers:   1,
		Learners: Learners{
			LassoAlpha: 0.1,
			LogisticC:  1.0,
		},
		Bootstrap: Bootstrap{Reps: 500},
		Level:     0.95,
	}
}

// Load reads path, fills defaults and validates the result.
func Load(path string) (Run, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML on top of Default. Unknown keys are an error.
func Parse(raw []byte) (Run, error) {
	run := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&run); err != nil && !errors.Is(err, io.EOF) {
		return Run{}, fmt.Errorf("parse config yaml: %w", err)
	}
	run.fillLearners()
	if err := run.Validate(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// fillLearners picks the model's default learner for every empty slot
func (r *Run) fillLearners() {
	if r.Learners.G == "" {
		r.Learners.G = LearnerOLS
	}
	if r.Learners.M == "" {
		if r.Model == ModelPLIV {
			r.Learners.M = LearnerOLS
		} else {
			r.Learners.M = LearnerLogistic
		}
	}
	if r.Learners.R == "" && r.Model == ModelPLIV {
		r.Learners.R = LearnerOLS
	}
}

// Validate checks the fields this package owns. The score, procedure and
// bootstrap methods are left to the estimator, which reports them with
// dml.ErrInvalidConfiguration.
func (r Run) Validate() error {
	var errs []error
	if r.Data == "" {
		errs = append(errs, errors.New("data: path is required"))
	}
	if r.Outcome == "" {
		errs = append(errs, errors.New("outcome: column is required"))
	}
	if r.Treatment == "" {
		errs = append(errs, errors.New("treatment: column is required"))
	}
	if len(r.Covariates) == 0 && r.CovariatePrefix == "" {
		errs = append(errs, errors.New("covariates: give a list or covariate_prefix"))
	}
	if r.Folds < 2 {
		errs = append(errs, fmt.Errorf("folds: need at least 2, got %d", r.Folds))
	}
	if !(r.Level > 0 && r.Level < 1) {
		errs = append(errs, fmt.Errorf("level: must be in (0, 1), got %g", r.Level))
	}
	if len(r.Bootstrap.Methods) > 0 && r.Bootstrap.Reps <= 0 {
		errs = append(errs, fmt.Errorf("bootstrap.reps: must be > 0, got %d", r.Bootstrap.Reps))
	}

	regressor := func(field, name string) {
		if name != LearnerOLS && name != LearnerLasso {
			errs = append(errs, fmt.Errorf("learners.%s: %q is not a regressor (want %q or %q)", field, name, LearnerOLS, LearnerLasso))
		}
	}
	switch r.Model {
	case ModelIRM:
		regressor("g", r.Learners.G)
		if r.Learners.M != LearnerLogistic {
			errs = append(errs, fmt.Errorf("learners.m: irm needs %q for the propensity, got %q", LearnerLogistic, r.Learners.M))
		}
	case ModelPLIV:
		if len(r.Instruments) == 0 && r.InstrumentPrefix == "" {
			errs = append(errs, errors.New("instruments: pliv-partialxz needs a list or instrument_prefix"))
		}
		regressor("g", r.Learners.G)
		regressor("m", r.Learners.M)
		regressor("r", r.Learners.R)
	default:
		errs = append(errs, fmt.Errorf("model: %q is unknown (want %q or %q)", r.Model, ModelIRM, ModelPLIV))
	}
	if r.Learners.LassoAlpha < 0 {
		errs = append(errs, fmt.Errorf("learners.lasso_alpha: must be >= 0, got %g", r.Learners.LassoAlpha))
	}
	if r.Learners.LogisticC <= 0 {
		errs = append(errs, fmt.Errorf("learners.logistic_c: must be > 0, got %g", r.Learners.LogisticC))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
