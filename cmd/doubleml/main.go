// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// doubleml estimates causal parameters with double/debiased machine learning.
//
// Usage:
//
//	doubleml simulate --model irm|pliv -n 500 --seed 3141 -o data.csv
//	doubleml fit --config run.yaml [--verbose]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "doubleml",
	Short: "Double/debiased machine learning for causal parameters",
	Long: "doubleml estimates the average treatment effect (IRM) or the effect of an\n" +
		"endogenous treatment with instruments (PLIV partialXZ) using cross-fitted\n" +
		"nuisance learners, with multiplier-bootstrap inference.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
