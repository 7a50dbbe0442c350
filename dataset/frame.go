// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

// Package dataset holds the data container consumed by the DML estimators:
// a named-column numeric Frame and the Data view that picks the outcome,
// treatment, covariate and instrument columns out of it.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrMissingColumn is returned when a requested column is not in the Frame.
var ErrMissingColumn = errors.New("dataset: missing column")

// Frame is a numeric table: one row per observation, one named column per
// variable.
type Frame struct {
	// Matrix for data, n rows x len(Names) columns
	Values *mat.Dense
	// Column names, in column order
	Names []string
}

// NewFrame wraps values with column names.
func NewFrame(values *mat.Dense, names []string) (*Frame, error) {
	if values == nil {
		return nil, errors.New("dataset: nil values")
	}
	_, c := values.Dims()
	if c != len(names) {
		return nil, fmt.Errorf("dataset: %d columns but %d names", c, len(names))
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("dataset: duplicate column %q", name)
		}
		seen[name] = true
	}
	return &Frame{Values: values, Names: names}, nil
}

// NObs returns the number of rows
func (f *Frame) NObs() int {
	r, _ := f.Values.Dims()
	return r
}

// Index returns the position of column name, or -1
func (f *Frame) Index(name string) int {
	for i, n := range f.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	j := f.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return mat.Col(nil, j, f.Values), nil
}

// Columns returns a copy of the named columns as an n x len(names) matrix.
func (f *Frame) Columns(names []string) (*mat.Dense, error) {
	if len(names) == 0 {
		return nil, errors.New("dataset: no columns requested")
	}
	n := f.NObs()
	out := mat.NewDense(n, len(names), nil)
	for k, name := range names {
		j := f.Index(name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		for i := 0; i < n; i++ {
			out.Set(i, k, f.Values.At(i, j))
		}
	}
	return out, nil
}

// ColumnsWithPrefix lists the column names starting with prefix, in column order
func (f *Frame) ColumnsWithPrefix(prefix string) []string {
	var cols []string
	for _, n := range f.Names {
		if strings.HasPrefix(n, prefix) {
			cols = append(cols, n)
		}
	}
	return cols
}

// LoadCSV loads a CSV file with a header row into a Frame.
func LoadCSV(path string) (*Frame, error) {
	// 1. Open file
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	frame, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frame, nil
}

// ReadCSV parses CSV data with a header row into a Frame.
func ReadCSV(in io.Reader) (*Frame, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true

	// Read header row
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, errors.New("empty header")
	}
	K := len(header)

	var (
		data []float64 // flat data for mat.Dense
		row  int       // row counter
	)

	// Read each data row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, err) // +2 for header + 1-based
		}

		// Skip completely empty lines
		if len(record) == 1 && record[0] == "" {
			continue
		}

		if len(record) != K {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row+2, K, len(record))
		}

		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse float at row %d col %d (%q): %w", row+2, j+1, s, err)
			}
			data = append(data, v)
		}
		row++
	}

	if row == 0 {
		return nil, errors.New("no data rows")
	}

	return NewFrame(mat.NewDense(row, K, data), header)
}

// WriteCSV writes the frame with a header row to path
func (f *Frame) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(f.Names); err != nil {
		return err
	}

	n, K := f.Values.Dims()
	record := make([]string, K)
	for i := 0; i < n; i++ {
		for j := 0; j < K; j++ {
			record[j] = strconv.FormatFloat(f.Values.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
