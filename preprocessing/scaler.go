// Package preprocessing provides feature transforms applied ahead of model
// fitting.
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/pkg/errors"
)

// DegeneratePolicy decides what Transform does with a zero-range column,
// i.e. one whose fitted minimum equals its fitted maximum. Proportional
// rescaling is undefined there; the scaler must never emit NaN or Inf.
type DegeneratePolicy int

const (
	// DegenerateZero maps every value of a zero-range column to the low end
	// of the feature range (0 for the default [0,1] range). This is the
	// default: a constant column carries no information either way.
	DegenerateZero DegeneratePolicy = iota

	// DegenerateError refuses to transform and returns a
	// DegenerateColumnError naming the offending column.
	DegenerateError
)

// RangeScaler linearly rescales each feature column into a bounded range
// (default [0,1]) using the per-column minimum and maximum observed during
// Fit. Unlike standardization it makes no distributional assumption; values
// from the fitting matrix land inside the range, values from other matrices
// may fall outside it.
//
// The fitted state is written exactly once per Fit call and only read
// afterwards, so a fitted scaler is safe to share across goroutines.
type RangeScaler struct {
	state *model.StateManager

	// DataMin holds the fitted per-column minima.
	DataMin []float64

	// DataMax holds the fitted per-column maxima.
	DataMax []float64

	// FeatureRange is the target interval [low, high].
	FeatureRange [2]float64

	// Policy selects the zero-range column behaviour.
	Policy DegeneratePolicy

	nFeatures int
}

// NewRangeScaler creates a RangeScaler with the given target range and
// degenerate-column policy.
func NewRangeScaler(featureRange [2]float64, policy DegeneratePolicy) *RangeScaler {
	return &RangeScaler{
		state:        model.NewStateManager(),
		FeatureRange: featureRange,
		Policy:       policy,
	}
}

// NewRangeScalerDefault creates a RangeScaler mapping onto [0,1] with the
// DegenerateZero policy.
func NewRangeScalerDefault() *RangeScaler {
	return NewRangeScaler([2]float64{0.0, 1.0}, DegenerateZero)
}

// IsFitted reports whether Fit has completed successfully.
func (s *RangeScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// Fit computes the per-column minimum and maximum of X and stores them as
// the scaler's immutable state. Calling Fit again simply replaces the
// stored state.
func (s *RangeScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewInvalidInputError("RangeScaler.Fit", "empty matrix")
	}
	if s.FeatureRange[1] <= s.FeatureRange[0] {
		return errors.NewValueError("RangeScaler.Fit",
			fmt.Sprintf("feature range [%g, %g] is not increasing", s.FeatureRange[0], s.FeatureRange[1]))
	}

	dataMin := make([]float64, c)
	dataMax := make([]float64, c)
	for j := 0; j < c; j++ {
		lo := X.At(0, j)
		hi := lo
		for i := 1; i < r; i++ {
			v := X.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		dataMin[j] = lo
		dataMax[j] = hi
	}

	s.DataMin = dataMin
	s.DataMax = dataMax
	s.nFeatures = c
	s.state.SetDimensions(c, r)
	s.state.SetFitted()
	return nil
}

// Transform maps every element x of column j to
//
//	(x - min_j) / (max_j - min_j)
//
// stretched onto the configured feature range. Values outside the fitted
// min/max map outside the range; that is intentional and is exactly what
// the train/test comparison exercises. Zero-range columns follow the
// configured DegeneratePolicy.
func (s *RangeScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("RangeScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("RangeScaler.Transform", s.nFeatures, c, 1)
	}

	span := s.FeatureRange[1] - s.FeatureRange[0]
	result := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		dataRange := s.DataMax[j] - s.DataMin[j]
		if dataRange == 0 {
			if s.Policy == DegenerateError {
				return nil, errors.NewDegenerateColumnError("RangeScaler.Transform", j, s.DataMin[j])
			}
			for i := 0; i < r; i++ {
				result.Set(i, j, s.FeatureRange[0])
			}
			continue
		}
		for i := 0; i < r; i++ {
			std := (X.At(i, j) - s.DataMin[j]) / dataRange
			result.Set(i, j, std*span+s.FeatureRange[0])
		}
	}
	return result, nil
}

// FitTransform fits on X and transforms the same matrix.
func (s *RangeScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps every element v of column j back to
//
//	v * (max_j - min_j) + min_j
//
// after undoing the feature-range stretch. It is the exact algebraic
// inverse of Transform for non-degenerate columns; a zero-range column
// inverts to the constant it was fitted with.
func (s *RangeScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("RangeScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("RangeScaler.InverseTransform", s.nFeatures, c, 1)
	}

	span := s.FeatureRange[1] - s.FeatureRange[0]
	result := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		dataRange := s.DataMax[j] - s.DataMin[j]
		for i := 0; i < r; i++ {
			std := (X.At(i, j) - s.FeatureRange[0]) / span
			result.Set(i, j, std*dataRange+s.DataMin[j])
		}
	}
	return result, nil
}

// GetParams returns the scaler's configuration.
func (s *RangeScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range":     s.FeatureRange,
		"degenerate_policy": s.Policy,
	}
}

// String returns a short description of the scaler.
func (s *RangeScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("RangeScaler(feature_range=[%.1f, %.1f])",
			s.FeatureRange[0], s.FeatureRange[1])
	}
	return fmt.Sprintf("RangeScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		s.FeatureRange[0], s.FeatureRange[1], s.nFeatures)
}
