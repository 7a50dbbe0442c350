// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Double/Debiased Machine Learning for Causal Parameters
// Class: 02-613 at Caregie Mellon University

package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNonBinaryTreatment is returned when a model that needs a 0/1 treatment
// is given anything else.
var ErrNonBinaryTreatment = errors.New("dataset: treatment is not binary")

// Data is the estimation sample. It is never modified once built.
type Data struct {
	// Outcome, length n
	Y []float64
	// Treatment, length n
	D []float64
	// Covariates, n x p
	X *mat.Dense
	// Instruments, n x q; nil when the model has none
	Z *mat.Dense

	YCol  string
	DCol  string
	XCols []string
	ZCols []string
}

// New selects the outcome, treatment, covariate and instrument columns from
// f. zCols may be empty. A column may only play one role.
func New(f *Frame, yCol, dCol string, xCols, zCols []string) (*Data, error) {
	if f == nil {
		return nil, errors.New("dataset: nil frame")
	}
	if len(xCols) == 0 {
		return nil, errors.New("dataset: at least one covariate column is required")
	}

	roles := make(map[string]string)
	assign := func(col, role string) error {
		if prev, ok := roles[col]; ok {
			return fmt.Errorf("dataset: column %q used as both %s and %s", col, prev, role)
		}
		roles[col] = role
		return nil
	}
	if err := assign(yCol, "outcome"); err != nil {
		return nil, err
	}
	if err := assign(dCol, "treatment"); err != nil {
		return nil, err
	}
	for _, c := range xCols {
		if err := assign(c, "covariate"); err != nil {
			return nil, err
		}
	}
	for _, c := range zCols {
		if err := assign(c, "instrument"); err != nil {
			return nil, err
		}
	}

	y, err := f.Column(yCol)
	if err != nil {
		return nil, err
	}
	d, err := f.Column(dCol)
	if err != nil {
		return nil, err
	}
	X, err := f.Columns(xCols)
	if err != nil {
		return nil, err
	}
	var Z *mat.Dense
	if len(zCols) > 0 {
		if Z, err = f.Columns(zCols); err != nil {
			return nil, err
		}
	}

	return &Data{
		Y:     y,
		D:     d,
		X:     X,
		Z:     Z,
		YCol:  yCol,
		DCol:  dCol,
		XCols: append([]string(nil), xCols...),
		ZCols: append([]string(nil), zCols...),
	}, nil
}

// FromArrays builds Data directly from vectors and matrices. Z may be nil.
func FromArrays(y, d []float64, X, Z *mat.Dense) (*Data, error) {
	if X == nil {
		return nil, errors.New("dataset: nil covariate matrix")
	}
	n, p := X.Dims()
	if len(y) != n || len(d) != n {
		return nil, fmt.Errorf("dataset: length mismatch: y %d, d %d, X %d rows", len(y), len(d), n)
	}
	data := &Data{
		Y:    append([]float64(nil), y...),
		D:    append([]float64(nil), d...),
		X:    mat.DenseCopyOf(X),
		YCol: "y",
		DCol: "d",
	}
	for j := 0; j < p; j++ {
		data.XCols = append(data.XCols, fmt.Sprintf("X%d", j+1))
	}
	if Z != nil {
		nz, q := Z.Dims()
		if nz != n {
			return nil, fmt.Errorf("dataset: length mismatch: Z has %d rows, X %d", nz, n)
		}
		data.Z = mat.DenseCopyOf(Z)
		for j := 0; j < q; j++ {
			data.ZCols = append(data.ZCols, fmt.Sprintf("Z%d", j+1))
		}
	}
	return data, nil
}

// NObs returns the number of observations
func (d *Data) NObs() int { return len(d.Y) }

// CheckBinaryTreatment returns ErrNonBinaryTreatment unless every D is 0 or 1
// and both values occur.
func (d *Data) CheckBinaryTreatment() error {
	var n0, n1 int
	for i, v := range d.D {
		switch v {
		case 0:
			n0++
		case 1:
			n1++
		default:
			return fmt.Errorf("%w: %s[%d] = %g", ErrNonBinaryTreatment, d.DCol, i, v)
		}
	}
	if n0 == 0 || n1 == 0 {
		return fmt.Errorf("%w: only one treatment level observed", ErrNonBinaryTreatment)
	}
	return nil
}

// XZ returns the covariates and instruments side by side, n x (p+q).
// Without instruments it returns a copy of X.
func (d *Data) XZ() *mat.Dense {
	if d.Z == nil {
		return mat.DenseCopyOf(d.X)
	}
	n, p := d.X.Dims()
	_, q := d.Z.Dims()
	out := mat.NewDense(n, p+q, nil)
	out.Slice(0, n, 0, p).(*mat.Dense).Copy(d.X)
	out.Slice(0, n, p, p+q).(*mat.Dense).Copy(d.Z)
	return out
}
