// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucien1011/doubleml-for-py/dataset"
	"github.com/lucien1011/doubleml-for-py/dml"
	"github.com/lucien1011/doubleml-for-py/internal/config"
	"github.com/lucien1011/doubleml-for-py/internal/report"
	"github.com/lucien1011/doubleml-for-py/learner"
)

var fitFlags struct {
	config   string
	verbose  bool
	markdown bool
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Estimate a causal parameter from a CSV file described by a YAML config",
	RunE:  runFit,
}

func init() {
	f := fitCmd.Flags()
	f.StringVarP(&fitFlags.config, "config", "c", "", "Path to the run config (YAML, required)")
	f.BoolVarP(&fitFlags.verbose, "verbose", "v", false, "Log every fold at debug level")
	f.BoolVar(&fitFlags.markdown, "markdown", false, "Print the summary as a Markdown table")

	_ = fitCmd.MarkFlagRequired("config")
}

// estimator is what the fit command needs from IRM and PLIV
type estimator interface {
	Fit() error
	Bootstrap(method dml.BootstrapMethod, nRep int, src rand.Source) ([]float64, error)
	Summary(level float64) (dml.Summary, error)
	JointConfInt(level float64, method dml.BootstrapMethod) (float64, float64, error)
}

func runFit(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if fitFlags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// 1. Load the run description
	run, err := config.Load(fitFlags.config)
	if err != nil {
		return err
	}

	// 2. Load the data and assign column roles
	data, err := loadData(run)
	if err != nil {
		return err
	}
	logger.Info("data loaded",
		slog.String("path", run.Data),
		slog.Int("n_obs", data.NObs()),
		slog.Int("n_covariates", len(data.XCols)),
		slog.Int("n_instruments", len(data.ZCols)))

	// 3. Build the estimator
	seed := uint64(time.Now().UnixNano())
	if run.Seed != nil {
		seed = *run.Seed
	}
	est, err := buildEstimator(run, data, seed, logger)
	if err != nil {
		return err
	}

	// 4. Cross-fit and estimate
	if err := est.Fit(); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	summary, err := est.Summary(run.Level)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	mode := report.ASCII
	if fitFlags.markdown {
		mode = report.Markdown
	}
	fmt.Fprintln(out, report.SummaryTable([]dml.Summary{summary}, mode))

	// 5. Multiplier bootstrap, reseeded per method
	draws := make(map[dml.BootstrapMethod][]float64)
	for _, name := range run.Bootstrap.Methods {
		method := dml.BootstrapMethod(name)
		boot, err := est.Bootstrap(method, run.Bootstrap.Reps, rand.NewPCG(seed, 1))
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		draws[method] = boot
		lo, hi, err := est.JointConfInt(run.Level, method)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s bootstrap (%d reps) %g%% interval: [%.6f, %.6f]\n",
			method, run.Bootstrap.Reps, run.Level*100, lo, hi)
	}

	// 6. Write results
	if run.Output != "" {
		if err := report.OutputSummaryToCSV(run.Output, []dml.Summary{summary}); err != nil {
			return err
		}
		fmt.Fprintln(out, "Summary written to", run.Output)
	}
	if run.Bootstrap.Output != "" && len(draws) > 0 {
		if err := report.OutputBootstrapToCSV(run.Bootstrap.Output, draws); err != nil {
			return err
		}
		fmt.Fprintln(out, "Bootstrap draws written to", run.Bootstrap.Output)
	}
	return nil
}

// loadData reads the CSV and resolves the covariate and instrument lists,
// by name or by prefix.
func loadData(run config.Run) (*dataset.Data, error) {
	frame, err := dataset.LoadCSV(run.Data)
	if err != nil {
		return nil, err
	}
	xCols := run.Covariates
	if len(xCols) == 0 {
		xCols = frame.ColumnsWithPrefix(run.CovariatePrefix)
	}
	var zCols []string
	if run.Model == config.ModelPLIV {
		zCols = run.Instruments
		if len(zCols) == 0 {
			zCols = frame.ColumnsWithPrefix(run.InstrumentPrefix)
		}
	}
	return dataset.New(frame, run.Outcome, run.Treatment, xCols, zCols)
}

func buildEstimator(run config.Run, data *dataset.Data, seed uint64, logger *slog.Logger) (estimator, error) {
	opts := []dml.Option{
		dml.WithProcedure(dml.Procedure(run.Procedure)),
		dml.WithFolds(run.Folds),
		dml.WithWorkers(run.Workers),
		dml.WithSource(rand.NewPCG(seed, 0)),
		dml.WithLogger(logger),
	}
	if run.Score != "" {
		opts = append(opts, dml.WithScore(dml.Score(run.Score)))
	}

	switch run.Model {
	case config.ModelPLIV:
		return dml.NewPLIVPartialXZ(data,
			regressor(run.Learners.G, run.Learners),
			regressor(run.Learners.M, run.Learners),
			regressor(run.Learners.R, run.Learners),
			opts...)
	default:
		return dml.NewIRM(data,
			regressor(run.Learners.G, run.Learners),
			learner.LogisticRegression{C: run.Learners.LogisticC},
			opts...)
	}
}

// regressor maps a validated learner name to its learner
func regressor(name string, l config.Learners) learner.Regressor {
	if name == config.LearnerLasso {
		return learner.Lasso{Alpha: l.LassoAlpha}
	}
	return learner.LinearRegression{}
}
