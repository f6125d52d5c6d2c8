package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/pkg/errors"
)

// TrainTestSplit shuffles the rows of X and y with the given seed and
// carves off testFraction of them as the held-out set. The split is
// deterministic for a fixed seed; both splits keep the original column
// order.
func TrainTestSplit(X *mat.Dense, y *mat.VecDense, testFraction float64, seed int64) (XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense, err error) {
	if X == nil || y == nil {
		return nil, nil, nil, nil, errors.NewInvalidInputError("TrainTestSplit", "nil input")
	}
	n, c := X.Dims()
	if n == 0 || c == 0 {
		return nil, nil, nil, nil, errors.NewInvalidInputError("TrainTestSplit", "empty matrix")
	}
	if y.Len() != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit",
			fmt.Sprintf("test fraction must be in (0, 1), got %g", testFraction))
	}

	nTest := int(float64(n) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit",
			fmt.Sprintf("test fraction %g leaves no training rows for n=%d", testFraction, n))
	}
	nTrain := n - nTest

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	XTest = mat.NewDense(nTest, c, nil)
	yTest = mat.NewVecDense(nTest, nil)
	XTrain = mat.NewDense(nTrain, c, nil)
	yTrain = mat.NewVecDense(nTrain, nil)

	for i, src := range perm {
		if i < nTest {
			XTest.SetRow(i, mat.Row(nil, src, X))
			yTest.SetVec(i, y.AtVec(src))
		} else {
			XTrain.SetRow(i-nTest, mat.Row(nil, src, X))
			yTrain.SetVec(i-nTest, y.AtVec(src))
		}
	}
	return XTrain, XTest, yTrain, yTest, nil
}
