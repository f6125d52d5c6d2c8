package ensemble

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/core/parallel"
	"github.com/scalego/scalego/pkg/errors"
)

// RandomForest averages the leaf probabilities of trees grown on bootstrap
// samples with per-split feature subsampling.
type RandomForest struct {
	state *model.StateManager

	// NEstimators is the number of trees.
	NEstimators int

	// MaxDepth limits each tree; 0 means unlimited.
	MaxDepth int

	// MaxFeatures is the per-split feature sample size; 0 picks sqrt of
	// the feature count.
	MaxFeatures int

	// Seed derives every tree's bootstrap and subsampling seed.
	Seed int64

	trees []*DecisionTree
}

// ForestOption is a functional option for RandomForest.
type ForestOption func(*RandomForest)

// WithForestEstimators sets the number of trees.
func WithForestEstimators(n int) ForestOption {
	return func(rf *RandomForest) { rf.NEstimators = n }
}

// WithForestMaxDepth limits the depth of each tree.
func WithForestMaxDepth(d int) ForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}

// WithForestMaxFeatures sets the per-split feature sample size.
func WithForestMaxFeatures(k int) ForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}

// WithForestSeed sets the master seed.
func WithForestSeed(seed int64) ForestOption {
	return func(rf *RandomForest) { rf.Seed = seed }
}

// NewRandomForest creates a forest of 100 trees.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	rf := &RandomForest{
		state:       model.NewStateManager(),
		NEstimators: 100,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit grows the forest on X and 0/1 labels y. Trees are grown in parallel
// across CPU cores; each tree's randomness is derived from the master seed
// so a forest is reproducible regardless of scheduling.
func (rf *RandomForest) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewInvalidInputError("RandomForest.Fit", "empty matrix")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewInvalidInputError("RandomForest.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("RandomForest.Fit", nSamples, yRows, 0)
	}
	if rf.NEstimators < 1 {
		return errors.NewValueError("RandomForest.Fit", "need at least one tree")
	}

	labels := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return errors.NewInvalidInputError("RandomForest.Fit", "labels must be binary (0 or 1)")
		}
		labels[i] = v
	}

	maxFeatures := rf.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Sqrt(float64(nFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	trees := make([]*DecisionTree, rf.NEstimators)
	parallel.Parallelize(rf.NEstimators, func(start, end int) {
		for k := start; k < end; k++ {
			treeSeed := rf.Seed + int64(k)
			rng := rand.New(rand.NewSource(treeSeed))

			sample := make([]int, nSamples)
			for j := range sample {
				sample[j] = rng.Intn(nSamples)
			}

			tree := NewDecisionTree(
				WithTreeMaxDepth(rf.MaxDepth),
				WithTreeMaxFeatures(maxFeatures),
				WithTreeSeed(treeSeed),
			)
			tree.fitSubset(X, labels, sample)
			trees[k] = tree
		}
	})

	rf.trees = trees
	rf.state.SetDimensions(nFeatures, nSamples)
	rf.state.SetFitted()
	return nil
}

// PredictProba averages the positive-class probability over all trees.
func (rf *RandomForest) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.state.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := rf.state.Dimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("RandomForest.PredictProba", wantFeatures, nFeatures, 1)
	}

	sum := make([]float64, nSamples)
	for _, tree := range rf.trees {
		p, err := tree.PredictProba(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < nSamples; i++ {
			sum[i] += p.At(i, 1)
		}
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p := sum[i] / float64(len(rf.trees))
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}
