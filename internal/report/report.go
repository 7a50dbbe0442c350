// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// Package report renders estimation results as terminal tables and CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lucien1011/doubleml-for-py/dml"
)

// Mode controls the table format
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal table
	Markdown             // GitHub-flavoured Markdown table
)

// SummaryTable renders one row per treatment: coef, std err, t, P>|t| and
// the pointwise confidence interval.
func SummaryTable(rows []dml.Summary, m Mode) string {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	w.Style().Format.Header = text.FormatDefault

	level := 0.95
	if len(rows) > 0 {
		level = rows[0].Level
	}
	lo, hi := intervalLabels(level)
	w.AppendHeader(table.Row{"", "coef", "std err", "t", "P>|t|", lo, hi})
	for _, r := range rows {
		w.AppendRow(table.Row{
			r.Treatment,
			fmt.Sprintf("%.6f", r.Coef),
			fmt.Sprintf("%.6f", r.SE),
			fmt.Sprintf("%.4f", r.TStat),
			fmt.Sprintf("%.4g", r.PValue),
			fmt.Sprintf("%.6f", r.Lower),
			fmt.Sprintf("%.6f", r.Upper),
		})
	}
	cfgs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for c := 2; c <= 7; c++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	w.SetColumnConfigs(cfgs)

	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// intervalLabels returns the column names of a level interval,
// e.g. "2.5 %" and "97.5 %" for 0.95
func intervalLabels(level float64) (string, string) {
	a := (1 - level) / 2 * 100
	return percent(a), percent(100 - a)
}

// percent formats p to at most six decimals without trailing zeros
func percent(p float64) string {
	return strconv.FormatFloat(math.Round(p*1e6)/1e6, 'f', -1, 64) + " %"
}

// OutputSummaryToCSV writes the summary rows to path.
// Columns: Treatment, Coef, SE, TStat, PValue, Level, Lower, Upper
func OutputSummaryToCSV(path string, rows []dml.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary csv: %w", err)
	}
	if err := WriteSummaryCSV(file, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteSummaryCSV writes the summary rows as CSV to out
func WriteSummaryCSV(out io.Writer, rows []dml.Summary) error {
	writer := csv.NewWriter(out)

	header := []string{"Treatment", "Coef", "SE", "TStat", "PValue", "Level", "Lower", "Upper"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Treatment,
			formatFloat(r.Coef),
			formatFloat(r.SE),
			formatFloat(r.TStat),
			formatFloat(r.PValue),
			formatFloat(r.Level),
			formatFloat(r.Lower),
			formatFloat(r.Upper),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// OutputBootstrapToCSV writes the bootstrap draws to path, one column per
// method (sorted by name) and one row per repetition.
// Columns: Rep, then one per method
func OutputBootstrapToCSV(path string, draws map[dml.BootstrapMethod][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bootstrap csv: %w", err)
	}
	if err := WriteBootstrapCSV(file, draws); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteBootstrapCSV writes the bootstrap draws as CSV to out. Methods with
// fewer draws leave their trailing cells empty.
func WriteBootstrapCSV(out io.Writer, draws map[dml.BootstrapMethod][]float64) error {
	methods := make([]dml.BootstrapMethod, 0, len(draws))
	nRep := 0
	for m, d := range draws {
		methods = append(methods, m)
		nRep = max(nRep, len(d))
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })

	writer := csv.NewWriter(out)
	header := []string{"Rep"}
	for _, m := range methods {
		header = append(header, string(m))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for rep := 0; rep < nRep; rep++ {
		record := []string{strconv.Itoa(rep)}
		for _, m := range methods {
			if rep < len(draws[m]) {
				record = append(record, formatFloat(draws[m][rep]))
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
