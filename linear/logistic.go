// Package linear provides classifiers whose decision function is a linear
// combination of the input features. Both are magnitude-sensitive: their
// gradient updates mix feature columns, so a column measured in hundreds
// dominates one measured in single digits until the inputs are rescaled.
package linear

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/pkg/errors"
)

// LogisticRegression is a binary classifier trained by full-batch gradient
// descent on the log loss with optional L2 regularization.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	c            float64 // inverse regularization strength
	fitIntercept bool
	maxIter      int
	tol          float64
	seed         int64

	// Learned parameters
	weights   []float64
	intercept float64

	rand *rand.Rand
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// WithLRC sets the inverse regularization strength.
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.c = c }
}

// WithLRMaxIter sets the maximum number of gradient-descent iterations.
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.maxIter = maxIter }
}

// WithLRTol sets the gradient-norm stopping tolerance.
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.tol = tol }
}

// WithLRSeed sets the weight-initialization seed.
func WithLRSeed(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.seed = seed }
}

// WithLRFitIntercept sets whether a bias term is learned.
func WithLRFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.fitIntercept = fit }
}

// NewLogisticRegression creates a LogisticRegression with the defaults
// C=1, 200 iterations, tol=1e-4.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		c:            1.0,
		fitIntercept: true,
		maxIter:      200,
		tol:          1e-4,
		seed:         0,
	}
	for _, opt := range opts {
		opt(lr)
	}
	lr.rand = rand.New(rand.NewSource(lr.seed))
	return lr
}

// Fit trains the model on X (n_samples x n_features) and 0/1 labels y
// (n_samples x 1).
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkBinaryInput("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}

	weights := make([]float64, nFeatures)
	for j := range weights {
		weights[j] = lr.rand.NormFloat64() * 0.01
	}
	intercept := 0.0

	lambda := 1.0 / lr.c
	base := 1.0

	for iter := 0; iter < lr.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		for i := 0; i < nSamples; i++ {
			z := intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sigmoid(z) - y.At(i, 0)
			gradB += residual
			for j := 0; j < nFeatures; j++ {
				gradW[j] += residual * X.At(i, j)
			}
		}

		for j := range gradW {
			gradW[j] = gradW[j]/float64(nSamples) + lambda*weights[j]
		}
		gradB /= float64(nSamples)

		rate := base / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= rate * gradW[j]
		}
		if lr.fitIntercept {
			intercept -= rate * gradB
		}

		maxGrad := math.Abs(gradB)
		for _, g := range gradW {
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		if maxGrad < lr.tol {
			break
		}
	}

	lr.weights = weights
	lr.intercept = intercept
	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// PredictProba returns an n_samples x 2 matrix of class probabilities;
// column 1 holds the probability of the positive class.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := lr.state.Dimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", wantFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		z := lr.intercept
		for j := 0; j < nFeatures; j++ {
			z += X.At(i, j) * lr.weights[j]
		}
		p := sigmoid(z)
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Weights returns the learned per-feature coefficients.
func (lr *LogisticRegression) Weights() []float64 {
	return append([]float64(nil), lr.weights...)
}

// Intercept returns the learned bias term.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept
}

// checkBinaryInput validates the common Fit preconditions shared by the
// linear classifiers.
func checkBinaryInput(op string, X, y mat.Matrix) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.NewInvalidInputError(op, "empty matrix")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return 0, 0, errors.NewInvalidInputError(op, "y must be a column vector")
	}
	if yRows != nSamples {
		return 0, 0, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	for i := 0; i < yRows; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return 0, 0, errors.NewInvalidInputError(op, "labels must be binary (0 or 1)")
		}
	}
	return nSamples, nFeatures, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
