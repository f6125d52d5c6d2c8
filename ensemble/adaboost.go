package ensemble

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/pkg/errors"
)

// AdaBoost boosts depth-1 decision stumps. Each round fits the stump that
// minimizes the weighted error on the current sample weights, then
// re-weights so the misclassified rows matter more next round. The
// positive-class probability of a query is its normalized ensemble margin
// mapped onto [0, 1]; that preserves the ranking of the margins, which is
// what the ROC-AUC comparison consumes.
type AdaBoost struct {
	state *model.StateManager

	// NEstimators is the maximum number of boosting rounds.
	NEstimators int

	stumps []stump
}

// stump predicts +1 when the feature value is above the threshold and the
// polarity is positive (below, when negative).
type stump struct {
	feature   int
	threshold float64
	polarity  float64 // +1 or -1
	alpha     float64
}

// AdaBoostOption is a functional option for AdaBoost.
type AdaBoostOption func(*AdaBoost)

// WithBoostEstimators sets the maximum number of boosting rounds.
func WithBoostEstimators(n int) AdaBoostOption {
	return func(ab *AdaBoost) { ab.NEstimators = n }
}

// NewAdaBoost creates an AdaBoost with 50 rounds.
func NewAdaBoost(opts ...AdaBoostOption) *AdaBoost {
	ab := &AdaBoost{
		state:       model.NewStateManager(),
		NEstimators: 50,
	}
	for _, o := range opts {
		o(ab)
	}
	return ab
}

// Fit boosts stumps on X and 0/1 labels y.
func (ab *AdaBoost) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewInvalidInputError("AdaBoost.Fit", "empty matrix")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewInvalidInputError("AdaBoost.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("AdaBoost.Fit", nSamples, yRows, 0)
	}
	if ab.NEstimators < 1 {
		return errors.NewValueError("AdaBoost.Fit", "need at least one boosting round")
	}

	// boosting works on +-1 targets
	targets := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		switch y.At(i, 0) {
		case 0:
			targets[i] = -1
		case 1:
			targets[i] = 1
		default:
			return errors.NewInvalidInputError("AdaBoost.Fit", "labels must be binary (0 or 1)")
		}
	}

	weights := make([]float64, nSamples)
	for i := range weights {
		weights[i] = 1.0 / float64(nSamples)
	}

	var stumps []stump
	for round := 0; round < ab.NEstimators; round++ {
		st, werr := bestStump(X, targets, weights, nSamples, nFeatures)
		if werr >= 0.5 {
			break // no stump beats chance on these weights
		}
		if werr < 1e-10 {
			werr = 1e-10
		}
		st.alpha = 0.5 * math.Log((1-werr)/werr)
		stumps = append(stumps, st)

		total := 0.0
		for i := 0; i < nSamples; i++ {
			weights[i] *= math.Exp(-st.alpha * targets[i] * st.predict(X, i))
			total += weights[i]
		}
		for i := range weights {
			weights[i] /= total
		}

		if werr <= 1e-10 {
			break // perfect stump; further rounds would only repeat it
		}
	}

	if len(stumps) == 0 {
		return errors.NewInvalidInputError("AdaBoost.Fit", "no stump performed better than chance")
	}

	ab.stumps = stumps
	ab.state.SetDimensions(nFeatures, nSamples)
	ab.state.SetFitted()
	return nil
}

func (s stump) predict(X mat.Matrix, row int) float64 {
	if X.At(row, s.feature) > s.threshold {
		return s.polarity
	}
	return -s.polarity
}

// bestStump finds the (feature, threshold, polarity) minimizing the
// weighted error, scanning sorted feature values with running weight sums.
func bestStump(X mat.Matrix, targets, weights []float64, nSamples, nFeatures int) (stump, float64) {
	best := stump{polarity: 1}
	bestErr := math.Inf(1)

	type pair struct {
		v float64
		i int
	}
	pairs := make([]pair, nSamples)

	for f := 0; f < nFeatures; f++ {
		for i := 0; i < nSamples; i++ {
			pairs[i] = pair{v: X.At(i, f), i: i}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		// err(threshold below all, polarity +1): everything predicted +1,
		// so the error is the weight of negative targets. Moving the
		// threshold past a sample flips its prediction to -1.
		errPlus := 0.0
		for i := 0; i < nSamples; i++ {
			if targets[i] < 0 {
				errPlus += weights[i]
			}
		}

		consider := func(thr, ePlus float64) {
			if ePlus < bestErr {
				bestErr = ePlus
				best = stump{feature: f, threshold: thr, polarity: 1}
			}
			if 1-ePlus < bestErr {
				bestErr = 1 - ePlus
				best = stump{feature: f, threshold: thr, polarity: -1}
			}
		}

		lowest := pairs[0].v - 1
		consider(lowest, errPlus)
		for s := 0; s < nSamples; s++ {
			i := pairs[s].i
			if targets[i] > 0 {
				errPlus += weights[i] // positive now predicted -1: new mistake
			} else {
				errPlus -= weights[i] // negative now predicted -1: fixed
			}
			if s+1 < nSamples && pairs[s+1].v == pairs[s].v {
				continue
			}
			thr := pairs[s].v
			if s+1 < nSamples {
				thr = (pairs[s].v + pairs[s+1].v) / 2
			}
			consider(thr, errPlus)
		}
	}
	return best, bestErr
}

// PredictProba maps the normalized ensemble margin onto [0, 1].
func (ab *AdaBoost) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !ab.state.IsFitted() {
		return nil, errors.NewNotFittedError("AdaBoost", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := ab.state.Dimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("AdaBoost.PredictProba", wantFeatures, nFeatures, 1)
	}

	totalAlpha := 0.0
	for _, st := range ab.stumps {
		totalAlpha += st.alpha
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		margin := 0.0
		for _, st := range ab.stumps {
			margin += st.alpha * st.predict(X, i)
		}
		p := (margin/totalAlpha + 1) / 2
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}
