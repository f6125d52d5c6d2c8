// Package ensemble implements tree-based classifiers. Trees split on one
// feature at a time with order-preserving thresholds, so they are the
// scale-invariant control group of the comparison: min-max rescaling
// cannot change any split decision.
package ensemble

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/pkg/errors"
)

// DecisionTree is a CART-style binary classifier using Gini impurity and
// numeric threshold splits. Leaf probabilities are the positive-label
// fraction of the training rows that reached the leaf.
type DecisionTree struct {
	state *model.StateManager

	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int

	// MinLeaf is the minimum number of samples in each leaf.
	MinLeaf int

	// MaxFeatures is the number of features sampled per split; 0 uses all.
	MaxFeatures int

	// Seed drives the per-split feature subsampling.
	Seed int64

	root *treeNode
}

type treeNode struct {
	leaf      bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *treeNode
	right     *treeNode

	n           int
	posFraction float64
}

// TreeOption is a functional option for DecisionTree.
type TreeOption func(*DecisionTree)

// WithTreeMaxDepth limits the tree depth.
func WithTreeMaxDepth(d int) TreeOption {
	return func(t *DecisionTree) { t.MaxDepth = d }
}

// WithTreeMinLeaf sets the minimum samples per leaf.
func WithTreeMinLeaf(n int) TreeOption {
	return func(t *DecisionTree) { t.MinLeaf = n }
}

// WithTreeMaxFeatures sets the per-split feature sample size.
func WithTreeMaxFeatures(k int) TreeOption {
	return func(t *DecisionTree) { t.MaxFeatures = k }
}

// WithTreeSeed sets the feature-subsampling seed.
func WithTreeSeed(seed int64) TreeOption {
	return func(t *DecisionTree) { t.Seed = seed }
}

// NewDecisionTree creates a tree with unlimited depth and one sample per
// leaf.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{
		state:   model.NewStateManager(),
		MinLeaf: 1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit grows the tree on X and 0/1 labels y.
func (t *DecisionTree) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewInvalidInputError("DecisionTree.Fit", "empty matrix")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewInvalidInputError("DecisionTree.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("DecisionTree.Fit", nSamples, yRows, 0)
	}

	labels := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return errors.NewInvalidInputError("DecisionTree.Fit", "labels must be binary (0 or 1)")
		}
		labels[i] = v
	}

	idx := make([]int, nSamples)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(t.Seed))
	t.root = t.buildNode(X, labels, idx, 0, nFeatures, rng)
	t.state.SetDimensions(nFeatures, nSamples)
	t.state.SetFitted()
	return nil
}

// fitSubset grows the tree on the given row indices only; the forest uses
// it for bootstrap samples without copying the matrix.
func (t *DecisionTree) fitSubset(X mat.Matrix, labels []float64, idx []int) {
	_, nFeatures := X.Dims()
	rng := rand.New(rand.NewSource(t.Seed))
	t.root = t.buildNode(X, labels, idx, 0, nFeatures, rng)
	t.state.SetDimensions(nFeatures, len(idx))
	t.state.SetFitted()
}

func (t *DecisionTree) buildNode(X mat.Matrix, labels []float64, idx []int, depth, nFeatures int, rng *rand.Rand) *treeNode {
	pos := 0.0
	for _, i := range idx {
		pos += labels[i]
	}
	node := &treeNode{
		leaf:        true,
		n:           len(idx),
		posFraction: pos / float64(len(idx)),
	}

	if node.posFraction == 0 || node.posFraction == 1 {
		return node
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return node
	}
	if len(idx) < 2*t.MinLeaf {
		return node
	}

	feature, threshold, gain := t.bestSplit(X, labels, idx, nFeatures, rng)
	if gain <= 0 {
		return node
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	node.leaf = false
	node.feature = feature
	node.threshold = threshold
	node.left = t.buildNode(X, labels, leftIdx, depth+1, nFeatures, rng)
	node.right = t.buildNode(X, labels, rightIdx, depth+1, nFeatures, rng)
	return node
}

// bestSplit scans candidate features for the threshold with the largest
// Gini gain. Returns gain <= 0 when no admissible split exists.
func (t *DecisionTree) bestSplit(X mat.Matrix, labels []float64, idx []int, nFeatures int, rng *rand.Rand) (feature int, threshold, gain float64) {
	candidates := make([]int, nFeatures)
	for j := range candidates {
		candidates[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < nFeatures {
		rng.Shuffle(nFeatures, func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})
		candidates = candidates[:t.MaxFeatures]
	}

	n := len(idx)
	totalPos := 0.0
	for _, i := range idx {
		totalPos += labels[i]
	}
	parent := gini(totalPos, float64(n))

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	type pair struct {
		v     float64
		label float64
	}
	pairs := make([]pair, n)

	for _, f := range candidates {
		for k, i := range idx {
			pairs[k] = pair{v: X.At(i, f), label: labels[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		leftPos := 0.0
		for s := 1; s < n; s++ {
			leftPos += pairs[s-1].label
			if pairs[s].v == pairs[s-1].v {
				continue
			}
			if s < t.MinLeaf || n-s < t.MinLeaf {
				continue
			}
			weighted := (float64(s)*gini(leftPos, float64(s)) +
				float64(n-s)*gini(totalPos-leftPos, float64(n-s))) / float64(n)
			if g := parent - weighted; g > bestGain {
				bestGain = g
				bestFeature = f
				bestThreshold = (pairs[s-1].v + pairs[s].v) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

// gini computes binary Gini impurity from the positive count and total.
func gini(pos, n float64) float64 {
	if n == 0 {
		return 0
	}
	p := pos / n
	return 2 * p * (1 - p)
}

// PredictProba walks each row down the tree and reports the leaf's
// positive fraction.
func (t *DecisionTree) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTree", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := t.state.Dimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("DecisionTree.PredictProba", wantFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		node := t.root
		for !node.leaf {
			if X.At(i, node.feature) <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		probas.Set(i, 0, 1-node.posFraction)
		probas.Set(i, 1, node.posFraction)
	}
	return probas, nil
}
