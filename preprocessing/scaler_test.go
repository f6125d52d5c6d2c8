package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/pkg/errors"
)

const tol = 1e-9

func matApproxEqual(t *testing.T, got mat.Matrix, want []float64, rows, cols int) {
	t.Helper()
	r, c := got.Dims()
	if r != rows || c != cols {
		t.Fatalf("dims = (%d, %d), want (%d, %d)", r, c, rows, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.Abs(got.At(i, j)-want[i*cols+j]) > tol {
				t.Errorf("at (%d,%d): got %v, want %v", i, j, got.At(i, j), want[i*cols+j])
			}
		}
	}
}

func TestRangeScaler_Transform(t *testing.T) {
	train := mat.NewDense(3, 2, []float64{
		1, 10,
		3, 20,
		5, 30,
	})

	tests := []struct {
		name  string
		input *mat.Dense
		want  []float64
	}{
		{
			name:  "midpoint row maps to 0.5",
			input: mat.NewDense(1, 2, []float64{3, 20}),
			want:  []float64{0.5, 0.5},
		},
		{
			name:  "max row maps to 1",
			input: mat.NewDense(1, 2, []float64{5, 30}),
			want:  []float64{1.0, 1.0},
		},
		{
			name:  "min row maps to 0",
			input: mat.NewDense(1, 2, []float64{1, 10}),
			want:  []float64{0.0, 0.0},
		},
		{
			name:  "out-of-range row maps outside [0,1]",
			input: mat.NewDense(1, 2, []float64{6, 35}),
			want:  []float64{1.25, 1.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaler := NewRangeScalerDefault()
			if err := scaler.Fit(train); err != nil {
				t.Fatalf("Fit() error = %v", err)
			}
			got, err := scaler.Transform(tt.input)
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			matApproxEqual(t, got, tt.want, 1, 2)
		})
	}
}

func TestRangeScaler_TrainingMatrixSpansUnitInterval(t *testing.T) {
	train := mat.NewDense(5, 3, []float64{
		2.5, -10, 100,
		7.0, 0, 250,
		1.0, 5, 180,
		4.2, -3, 300,
		6.6, 12, 125,
	})

	scaler := NewRangeScalerDefault()
	scaled, err := scaler.FitTransform(train)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	r, c := scaled.Dims()
	for j := 0; j < c; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < r; i++ {
			v := scaled.At(i, j)
			if v < -tol || v > 1+tol {
				t.Errorf("column %d: value %v outside [0,1]", j, v)
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if math.Abs(lo) > tol {
			t.Errorf("column %d: min = %v, want exactly 0", j, lo)
		}
		if math.Abs(hi-1) > tol {
			t.Errorf("column %d: max = %v, want exactly 1", j, hi)
		}
	}
}

func TestRangeScaler_InverseRoundTrip(t *testing.T) {
	train := mat.NewDense(3, 2, []float64{
		1, 10,
		3, 20,
		5, 30,
	})
	other := mat.NewDense(4, 2, []float64{
		2, 15,
		6, 35, // outside the fitted range on purpose
		-1, 8,
		4.5, 22.2,
	})

	scaler := NewRangeScalerDefault()
	if err := scaler.Fit(train); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	scaled, err := scaler.Transform(other)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	back, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}

	matApproxEqual(t, back, []float64{2, 15, 6, 35, -1, 8, 4.5, 22.2}, 4, 2)
}

func TestRangeScaler_CustomFeatureRange(t *testing.T) {
	train := mat.NewDense(3, 1, []float64{0, 5, 10})

	scaler := NewRangeScaler([2]float64{-1, 1}, DegenerateZero)
	scaled, err := scaler.FitTransform(train)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	matApproxEqual(t, scaled, []float64{-1, 0, 1}, 3, 1)
}

func TestRangeScaler_NotFitted(t *testing.T) {
	scaler := NewRangeScalerDefault()
	X := mat.NewDense(1, 2, []float64{1, 2})

	if _, err := scaler.Transform(X); err == nil {
		t.Fatal("Transform() before Fit() should fail")
	} else {
		var nf *errors.NotFittedError
		if !errors.As(err, &nf) {
			t.Errorf("expected NotFittedError, got %T: %v", err, err)
		}
	}

	if _, err := scaler.InverseTransform(X); err == nil {
		t.Fatal("InverseTransform() before Fit() should fail")
	}
}

func TestRangeScaler_EmptyInput(t *testing.T) {
	scaler := NewRangeScalerDefault()
	err := scaler.Fit(&mat.Dense{})

	var ii *errors.InvalidInputError
	if !errors.As(err, &ii) {
		t.Errorf("expected InvalidInputError for empty matrix, got %v", err)
	}
}

func TestRangeScaler_DegenerateColumn(t *testing.T) {
	// First column is constant.
	train := mat.NewDense(3, 2, []float64{
		2, 10,
		2, 20,
		2, 30,
	})

	t.Run("zero policy substitutes the range low end", func(t *testing.T) {
		scaler := NewRangeScalerDefault()
		scaled, err := scaler.FitTransform(train)
		if err != nil {
			t.Fatalf("FitTransform() error = %v", err)
		}
		r, _ := scaled.Dims()
		for i := 0; i < r; i++ {
			v := scaled.At(i, 0)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("degenerate column leaked %v", v)
			}
			if v != 0 {
				t.Errorf("row %d: got %v, want 0", i, v)
			}
		}
		// The healthy column still scales normally.
		matApproxEqual(t, scaled.(*mat.Dense).ColView(1), []float64{0, 0.5, 1}, 3, 1)
	})

	t.Run("error policy refuses with a typed error", func(t *testing.T) {
		scaler := NewRangeScaler([2]float64{0, 1}, DegenerateError)
		_, err := scaler.FitTransform(train)

		var dc *errors.DegenerateColumnError
		if !errors.As(err, &dc) {
			t.Fatalf("expected DegenerateColumnError, got %v", err)
		}
		if dc.Column != 0 {
			t.Errorf("Column = %d, want 0", dc.Column)
		}
		if dc.Value != 2 {
			t.Errorf("Value = %v, want 2", dc.Value)
		}
	})

	t.Run("degenerate column inverts to the fitted constant", func(t *testing.T) {
		scaler := NewRangeScalerDefault()
		scaled, err := scaler.FitTransform(train)
		if err != nil {
			t.Fatalf("FitTransform() error = %v", err)
		}
		back, err := scaler.InverseTransform(scaled)
		if err != nil {
			t.Fatalf("InverseTransform() error = %v", err)
		}
		for i := 0; i < 3; i++ {
			if back.At(i, 0) != 2 {
				t.Errorf("row %d: got %v, want 2", i, back.At(i, 0))
			}
		}
	})
}

func TestRangeScaler_DimensionMismatch(t *testing.T) {
	scaler := NewRangeScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	_, err := scaler.Transform(mat.NewDense(1, 2, []float64{1, 2}))
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if de.Expected != 3 || de.Got != 2 {
		t.Errorf("Expected/Got = %d/%d, want 3/2", de.Expected, de.Got)
	}
}

func TestRangeScaler_Refit(t *testing.T) {
	scaler := NewRangeScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 1, []float64{0, 10})); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	// Refitting is not an error; it replaces the stored min/max.
	if err := scaler.Fit(mat.NewDense(2, 1, []float64{0, 100})); err != nil {
		t.Fatalf("second Fit() error = %v", err)
	}

	scaled, err := scaler.Transform(mat.NewDense(1, 1, []float64{50}))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if math.Abs(scaled.At(0, 0)-0.5) > tol {
		t.Errorf("got %v, want 0.5 from the refitted state", scaled.At(0, 0))
	}
}
