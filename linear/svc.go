package linear

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/pkg/errors"
)

// LinearSVC is a linear support vector classifier trained by stochastic
// sub-gradient descent on the hinge loss (Pegasos-style schedule). The
// reported probabilities come from squashing the signed margin through a
// sigmoid; they preserve the ranking of the margins, which is all the
// ROC-AUC comparison needs.
type LinearSVC struct {
	state *model.StateManager

	// Hyperparameters
	lambda  float64 // regularization strength
	epochs  int
	seed    int64

	// Learned parameters
	weights   []float64
	intercept float64
}

// LinearSVCOption is a functional option for LinearSVC.
type LinearSVCOption func(*LinearSVC)

// WithSVCLambda sets the regularization strength.
func WithSVCLambda(lambda float64) LinearSVCOption {
	return func(s *LinearSVC) { s.lambda = lambda }
}

// WithSVCEpochs sets the number of passes over the training data.
func WithSVCEpochs(epochs int) LinearSVCOption {
	return func(s *LinearSVC) { s.epochs = epochs }
}

// WithSVCSeed sets the sample-order shuffling seed.
func WithSVCSeed(seed int64) LinearSVCOption {
	return func(s *LinearSVC) { s.seed = seed }
}

// NewLinearSVC creates a LinearSVC with lambda=1e-3 and 50 epochs.
func NewLinearSVC(opts ...LinearSVCOption) *LinearSVC {
	s := &LinearSVC{
		state:  model.NewStateManager(),
		lambda: 1e-3,
		epochs: 50,
		seed:   0,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit trains the classifier on X and 0/1 labels y.
func (s *LinearSVC) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkBinaryInput("LinearSVC.Fit", X, y)
	if err != nil {
		return err
	}

	weights := make([]float64, nFeatures)
	intercept := 0.0
	rng := rand.New(rand.NewSource(s.seed))

	t := 0
	for epoch := 0; epoch < s.epochs; epoch++ {
		for _, i := range rng.Perm(nSamples) {
			t++
			rate := 1.0 / (s.lambda * float64(t))

			// hinge loss works on +-1 targets
			target := 2*y.At(i, 0) - 1

			margin := intercept
			for j := 0; j < nFeatures; j++ {
				margin += X.At(i, j) * weights[j]
			}

			for j := range weights {
				weights[j] -= rate * s.lambda * weights[j]
			}
			if target*margin < 1 {
				for j := range weights {
					weights[j] += rate * target * X.At(i, j)
				}
				intercept += rate * target
			}
		}
	}

	s.weights = weights
	s.intercept = intercept
	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()
	return nil
}

// PredictProba returns an n_samples x 2 matrix; column 1 is the sigmoid of
// the signed margin.
func (s *LinearSVC) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearSVC", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := s.state.Dimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("LinearSVC.PredictProba", wantFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		margin := s.intercept
		for j := 0; j < nFeatures; j++ {
			margin += X.At(i, j) * s.weights[j]
		}
		p := 1.0 / (1.0 + math.Exp(-margin))
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Weights returns the learned per-feature coefficients.
func (s *LinearSVC) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// Intercept returns the learned bias term.
func (s *LinearSVC) Intercept() float64 {
	return s.intercept
}
