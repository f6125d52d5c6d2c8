// Package neighbors implements distance-based classification. KNN is the
// most magnitude-sensitive model in the comparison: Euclidean distance is
// dominated outright by whichever feature has the largest range.
package neighbors

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/core/parallel"
	"github.com/scalego/scalego/pkg/errors"
)

// KNNClassifier is a lazy k-nearest-neighbours binary classifier. Fit only
// stores the training data; all work happens at prediction time. The
// positive-class probability of a query point is the fraction of positive
// labels among its k nearest training rows.
type KNNClassifier struct {
	state *model.StateManager

	// K is the number of neighbours consulted per query.
	K int

	train  *mat.Dense
	labels []float64
}

// NewKNNClassifier creates a classifier consulting k neighbours.
func NewKNNClassifier(k int) *KNNClassifier {
	return &KNNClassifier{
		state: model.NewStateManager(),
		K:     k,
	}
}

// Fit stores the training data and labels.
func (m *KNNClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewInvalidInputError("KNNClassifier.Fit", "empty matrix")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewInvalidInputError("KNNClassifier.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("KNNClassifier.Fit", nSamples, yRows, 0)
	}
	if m.K < 1 {
		return errors.NewValueError("KNNClassifier.Fit", "k must be at least 1")
	}

	train := mat.NewDense(nSamples, nFeatures, nil)
	train.Copy(X)
	labels := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return errors.NewInvalidInputError("KNNClassifier.Fit", "labels must be binary (0 or 1)")
		}
		labels[i] = v
	}

	m.train = train
	m.labels = labels
	m.state.SetDimensions(nFeatures, nSamples)
	m.state.SetFitted()
	return nil
}

// PredictProba scores every query row against the stored training set.
// Rows are processed in parallel across CPU cores.
func (m *KNNClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("KNNClassifier", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := m.state.Dimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("KNNClassifier.PredictProba", wantFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	parallel.ParallelizeWithThreshold(nSamples, 64, func(start, end int) {
		for i := start; i < end; i++ {
			p := m.positiveFraction(mat.Row(nil, i, X))
			probas.Set(i, 0, 1-p)
			probas.Set(i, 1, p)
		}
	})
	return probas, nil
}

// positiveFraction returns the share of positive labels among the k nearest
// training rows of the query point.
func (m *KNNClassifier) positiveFraction(query []float64) float64 {
	type neighbour struct {
		dist  float64
		label float64
	}

	nTrain, _ := m.train.Dims()
	k := m.K
	if k > nTrain {
		k = nTrain
	}

	// Small sorted buffer of the best k seen so far.
	nbrs := make([]neighbour, 0, k+1)
	for i := 0; i < nTrain; i++ {
		d := 0.0
		for j := range query {
			diff := query[j] - m.train.At(i, j)
			d += diff * diff
		}
		if len(nbrs) == k && d >= nbrs[k-1].dist {
			continue
		}
		pos := sort.Search(len(nbrs), func(x int) bool { return nbrs[x].dist > d })
		nbrs = append(nbrs, neighbour{})
		copy(nbrs[pos+1:], nbrs[pos:])
		nbrs[pos] = neighbour{dist: d, label: m.labels[i]}
		if len(nbrs) > k {
			nbrs = nbrs[:k]
		}
	}

	positives := 0.0
	for _, nb := range nbrs {
		positives += nb.label
	}
	return positives / float64(len(nbrs))
}
