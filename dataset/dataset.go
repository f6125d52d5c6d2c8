// Package dataset loads the passenger table and turns it into the fixed
// numeric feature matrix the experiment operates on.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/pkg/errors"
)

// FeatureColumns is the fixed predictor set, in matrix column order. The
// order is significant and never changes after construction.
var FeatureColumns = []string{"pclass", "sex", "age", "sibsp", "parch", "fare"}

// labelColumn is the binary outcome column.
const labelColumn = "survived"

// Dataset is an immutable feature matrix plus its aligned 0/1 outcome
// labels.
type Dataset struct {
	features *mat.Dense
	labels   *mat.VecDense
	names    []string
}

// New builds a Dataset from raw rows. Every row must have exactly
// len(names) values and one label; ragged input is rejected.
func New(rows [][]float64, labels []float64, names []string) (*Dataset, error) {
	if len(rows) == 0 || len(names) == 0 {
		return nil, errors.NewInvalidInputError("dataset.New", "no rows or no feature columns")
	}
	if len(labels) != len(rows) {
		return nil, errors.NewDimensionError("dataset.New", len(rows), len(labels), 0)
	}

	nCols := len(names)
	data := make([]float64, 0, len(rows)*nCols)
	for i, row := range rows {
		if len(row) != nCols {
			return nil, errors.NewInvalidInputError("dataset.New",
				fmt.Sprintf("row %d has %d columns, want %d", i, len(row), nCols))
		}
		data = append(data, row...)
	}

	return &Dataset{
		features: mat.NewDense(len(rows), nCols, data),
		labels:   mat.NewVecDense(len(labels), append([]float64(nil), labels...)),
		names:    append([]string(nil), names...),
	}, nil
}

// LoadCSV reads a passenger table with a header row. The survived column
// and every feature column must be present (any casing, any order); extra
// columns are ignored. Missing numeric values are filled with zero before
// use, and sex is encoded as male=0, female=1.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSV: open %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		// csv.Reader rejects ragged rows on its own; surface that as
		// malformed input.
		return nil, errors.Wrap(errors.NewInvalidInputError("dataset.LoadCSV", err.Error()), path)
	}
	if len(records) < 2 {
		return nil, errors.NewInvalidInputError("dataset.LoadCSV", "need a header row and at least one data row")
	}

	colIdx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	labelIdx, ok := colIdx[labelColumn]
	if !ok {
		return nil, errors.NewInvalidInputError("dataset.LoadCSV", "missing column: "+labelColumn)
	}
	featIdx := make([]int, len(FeatureColumns))
	for j, name := range FeatureColumns {
		idx, ok := colIdx[name]
		if !ok {
			return nil, errors.NewInvalidInputError("dataset.LoadCSV", "missing column: "+name)
		}
		featIdx[j] = idx
	}

	rows := make([][]float64, 0, len(records)-1)
	labels := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		label, err := parseCell(rec[labelIdx])
		if err != nil {
			return nil, errors.NewInvalidInputError("dataset.LoadCSV",
				fmt.Sprintf("row %d: bad label %q", i+1, rec[labelIdx]))
		}
		if label != 0 && label != 1 {
			return nil, errors.NewInvalidInputError("dataset.LoadCSV",
				fmt.Sprintf("row %d: label must be 0 or 1, got %g", i+1, label))
		}

		row := make([]float64, len(featIdx))
		for j, idx := range featIdx {
			v, err := parseCell(rec[idx])
			if err != nil {
				return nil, errors.NewInvalidInputError("dataset.LoadCSV",
					fmt.Sprintf("row %d, column %s: bad value %q", i+1, FeatureColumns[j], rec[idx]))
			}
			row[j] = v
		}
		rows = append(rows, row)
		labels = append(labels, label)
	}

	return New(rows, labels, FeatureColumns)
}

// parseCell converts one CSV cell to a float. Empty and NA-style cells are
// the default zero; sex is encoded in place.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return 0, nil
	case "male":
		return 0, nil
	case "female":
		return 1, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Features returns the n_samples x n_features matrix. Callers must treat
// it as read-only.
func (d *Dataset) Features() *mat.Dense {
	return d.features
}

// Labels returns the n_samples outcome vector aligned with Features.
func (d *Dataset) Labels() *mat.VecDense {
	return d.labels
}

// FeatureNames returns the column names in matrix order.
func (d *Dataset) FeatureNames() []string {
	return append([]string(nil), d.names...)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	r, _ := d.features.Dims()
	return r
}
