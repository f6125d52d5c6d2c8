package errors

import (
	"strings"
	"testing"
)

func TestTypedErrors_As(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want interface{}
	}{
		{
			name: "NotFittedError",
			err:  NewNotFittedError("RangeScaler", "Transform"),
			want: &NotFittedError{},
		},
		{
			name: "InvalidInputError",
			err:  NewInvalidInputError("RangeScaler.Fit", "empty matrix"),
			want: &InvalidInputError{},
		},
		{
			name: "DimensionError",
			err:  NewDimensionError("RangeScaler.Transform", 6, 4, 1),
			want: &DimensionError{},
		},
		{
			name: "DegenerateColumnError",
			err:  NewDegenerateColumnError("RangeScaler.Transform", 2, 7.0),
			want: &DegenerateColumnError{},
		},
		{
			name: "ValueError",
			err:  NewValueError("TrainTestSplit", "fraction out of range"),
			want: &ValueError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switch target := tt.want.(type) {
			case *NotFittedError:
				var e *NotFittedError
				if !As(tt.err, &e) {
					t.Fatalf("As() failed for %T", target)
				}
			case *InvalidInputError:
				var e *InvalidInputError
				if !As(tt.err, &e) {
					t.Fatalf("As() failed for %T", target)
				}
			case *DimensionError:
				var e *DimensionError
				if !As(tt.err, &e) {
					t.Fatalf("As() failed for %T", target)
				}
			case *DegenerateColumnError:
				var e *DegenerateColumnError
				if !As(tt.err, &e) {
					t.Fatalf("As() failed for %T", target)
				}
			case *ValueError:
				var e *ValueError
				if !As(tt.err, &e) {
					t.Fatalf("As() failed for %T", target)
				}
			}
		})
	}
}

func TestDegenerateColumnError_Message(t *testing.T) {
	err := NewDegenerateColumnError("RangeScaler.Transform", 1, 2.0)
	msg := err.Error()
	if !strings.Contains(msg, "column 1") {
		t.Errorf("message should name the column: %q", msg)
	}
	if !strings.Contains(msg, "zero range") {
		t.Errorf("message should state the zero-range condition: %q", msg)
	}
}

func TestWrap_PreservesType(t *testing.T) {
	base := NewNotFittedError("RangeScaler", "Transform")
	wrapped := Wrap(base, "scaling failed")

	var e *NotFittedError
	if !As(wrapped, &e) {
		t.Fatal("wrapping should preserve the typed error in the chain")
	}
	if e.EstimatorName != "RangeScaler" {
		t.Errorf("EstimatorName = %q, want RangeScaler", e.EstimatorName)
	}
}

func TestWarn_Handler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewUndefinedMetricWarning("roc_auc", "only one class present in yTrue", 0.5)
	Warn(w)

	if captured == nil {
		t.Fatal("handler not invoked")
	}
	var uw *UndefinedMetricWarning
	if !As(captured, &uw) {
		t.Fatalf("captured warning has wrong type: %T", captured)
	}
	if uw.Result != 0.5 {
		t.Errorf("Result = %v, want 0.5", uw.Result)
	}
}

func TestSafeExecute_RecoversPanic(t *testing.T) {
	err := SafeExecute("model fit", func() error {
		panic("mat: dimension mismatch")
	})
	if err == nil {
		t.Fatal("expected an error from a panicking function")
	}
	var pe *PanicError
	if !As(err, &pe) {
		t.Fatalf("expected PanicError, got %T", err)
	}
	if pe.Operation != "model fit" {
		t.Errorf("Operation = %q, want %q", pe.Operation, "model fit")
	}
}

func TestSafeExecute_PassesThroughError(t *testing.T) {
	want := New("fit diverged")
	err := SafeExecute("model fit", func() error { return want })
	if !Is(err, want) {
		t.Errorf("SafeExecute() = %v, want %v", err, want)
	}
}
