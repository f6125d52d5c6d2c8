// Package neural implements a small feed-forward classifier. Sigmoid
// activations saturate quickly when raw feature magnitudes push the
// pre-activations far from zero, which is what makes this model's
// scaled/unscaled gap in the comparison so pronounced.
package neural

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/pkg/errors"
)

// MLPClassifier is a one-hidden-layer perceptron with sigmoid activations,
// trained by per-sample stochastic gradient descent on the log loss.
type MLPClassifier struct {
	state *model.StateManager

	// Hyperparameters
	hidden       int
	epochs       int
	learningRate float64
	seed         int64

	// Learned parameters
	w1 [][]float64 // hidden x features
	b1 []float64
	w2 []float64 // hidden
	b2 float64
}

// MLPOption is a functional option for MLPClassifier.
type MLPOption func(*MLPClassifier)

// WithMLPHidden sets the hidden-layer width.
func WithMLPHidden(n int) MLPOption {
	return func(m *MLPClassifier) { m.hidden = n }
}

// WithMLPEpochs sets the number of passes over the training data.
func WithMLPEpochs(n int) MLPOption {
	return func(m *MLPClassifier) { m.epochs = n }
}

// WithMLPLearningRate sets the SGD step size.
func WithMLPLearningRate(lr float64) MLPOption {
	return func(m *MLPClassifier) { m.learningRate = lr }
}

// WithMLPSeed sets the weight-initialization and shuffling seed.
func WithMLPSeed(seed int64) MLPOption {
	return func(m *MLPClassifier) { m.seed = seed }
}

// NewMLPClassifier creates an MLP with 8 hidden units, 200 epochs and a
// 0.1 learning rate.
func NewMLPClassifier(opts ...MLPOption) *MLPClassifier {
	m := &MLPClassifier{
		state:        model.NewStateManager(),
		hidden:       8,
		epochs:       200,
		learningRate: 0.1,
		seed:         0,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit trains the network on X and 0/1 labels y.
func (m *MLPClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewInvalidInputError("MLPClassifier.Fit", "empty matrix")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewInvalidInputError("MLPClassifier.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("MLPClassifier.Fit", nSamples, yRows, 0)
	}
	if m.hidden < 1 {
		return errors.NewValueError("MLPClassifier.Fit", "hidden-layer width must be at least 1")
	}
	for i := 0; i < nSamples; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return errors.NewInvalidInputError("MLPClassifier.Fit", "labels must be binary (0 or 1)")
		}
	}

	rng := rand.New(rand.NewSource(m.seed))
	w1 := make([][]float64, m.hidden)
	b1 := make([]float64, m.hidden)
	w2 := make([]float64, m.hidden)
	for h := range w1 {
		w1[h] = make([]float64, nFeatures)
		for j := range w1[h] {
			w1[h][j] = rng.NormFloat64() * 0.5
		}
		w2[h] = rng.NormFloat64() * 0.5
	}
	b2 := 0.0

	hiddenOut := make([]float64, m.hidden)
	for epoch := 0; epoch < m.epochs; epoch++ {
		for _, i := range rng.Perm(nSamples) {
			// forward
			for h := 0; h < m.hidden; h++ {
				z := b1[h]
				for j := 0; j < nFeatures; j++ {
					z += w1[h][j] * X.At(i, j)
				}
				hiddenOut[h] = sigmoid(z)
			}
			z := b2
			for h := 0; h < m.hidden; h++ {
				z += w2[h] * hiddenOut[h]
			}
			out := sigmoid(z)

			// backward: log loss makes the output delta the plain residual
			delta := out - y.At(i, 0)
			for h := 0; h < m.hidden; h++ {
				deltaH := delta * w2[h] * hiddenOut[h] * (1 - hiddenOut[h])
				w2[h] -= m.learningRate * delta * hiddenOut[h]
				for j := 0; j < nFeatures; j++ {
					w1[h][j] -= m.learningRate * deltaH * X.At(i, j)
				}
				b1[h] -= m.learningRate * deltaH
			}
			b2 -= m.learningRate * delta
		}
	}

	m.w1, m.b1, m.w2, m.b2 = w1, b1, w2, b2
	m.state.SetDimensions(nFeatures, nSamples)
	m.state.SetFitted()
	return nil
}

// PredictProba returns an n_samples x 2 matrix of class probabilities.
func (m *MLPClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MLPClassifier", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := m.state.Dimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("MLPClassifier.PredictProba", wantFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		z := m.b2
		for h := 0; h < m.hidden; h++ {
			zh := m.b1[h]
			for j := 0; j < nFeatures; j++ {
				zh += m.w1[h][j] * X.At(i, j)
			}
			z += m.w2[h] * sigmoid(zh)
		}
		p := sigmoid(z)
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
