package model

import "gonum.org/v1/gonum/mat"

// Transformer is the contract for feature transforms such as the range
// scaler: parameters are learned once from a reference matrix and then
// applied read-only to any number of matrices.
type Transformer interface {
	// Fit learns the transform parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned parameters to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit followed by Transform on the same matrix.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InvertibleTransformer is a Transformer with an exact algebraic inverse.
type InvertibleTransformer interface {
	Transformer

	// InverseTransform maps transformed values back to original units.
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is the opaque collaborator contract consumed by the
// experiment runner. X is n_samples x n_features; y is an n_samples x 1
// column of 0/1 labels.
type Classifier interface {
	// Fit trains the classifier.
	Fit(X, y mat.Matrix) error

	// PredictProba returns an n_samples x 2 matrix of class probabilities;
	// column 1 is the probability of the positive class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// LinearModel is implemented by classifiers whose decision function is a
// linear combination of the inputs. The experiment report uses it to show
// how rescaling shifts the learned coefficients.
type LinearModel interface {
	// Weights returns the learned per-feature coefficients.
	Weights() []float64

	// Intercept returns the learned bias term.
	Intercept() float64
}
