// Package metrics implements the discrimination scores consumed by the
// experiment runner.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/pkg/errors"
)

// AUC computes the area under the ROC curve for binary labels: the
// probability that a randomly chosen positive example receives a higher
// score than a randomly chosen negative one, with ties counted half.
//
// yTrue must contain only 0 and 1. When only one class is present the
// metric is undefined; AUC emits an UndefinedMetricWarning and returns 0.5.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos := 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
		default:
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("roc_auc",
			"only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	// Rank the scores ascending, giving tied scores their average rank
	// (Mann-Whitney U).
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return yPred.AtVec(order[a]) < yPred.AtVec(order[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && yPred.AtVec(order[j+1]) == yPred.AtVec(order[i]) {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	var rankSumPos float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			rankSumPos += ranks[i]
		}
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// Accuracy returns the fraction of predictions matching the true labels,
// thresholding predicted probabilities at 0.5.
func Accuracy(yTrue, yProb *mat.VecDense) (float64, error) {
	if yTrue == nil || yProb == nil {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yProb.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yProb.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		pred := 0.0
		if yProb.AtVec(i) >= 0.5 {
			pred = 1.0
		}
		if yTrue.AtVec(i) == pred {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
