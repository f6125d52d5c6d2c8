package neural

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/pkg/errors"
)

func TestMLPClassifier_LearnsXOR(t *testing.T) {
	// XOR is not linearly separable; solving it requires the hidden layer
	// to actually learn something.
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(4, 1, []float64{0, 1, 1, 0})

	mlp := NewMLPClassifier(WithMLPSeed(2), WithMLPEpochs(8000), WithMLPLearningRate(0.5))
	if err := mlp.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	probas, err := mlp.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	want := []float64{0, 1, 1, 0}
	for i, label := range want {
		p := probas.At(i, 1)
		pred := 0.0
		if p >= 0.5 {
			pred = 1.0
		}
		if pred != label {
			t.Errorf("sample %d: p = %v, want class %v", i, p, label)
		}
	}
}

func TestMLPClassifier_Deterministic(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{0, 0, 0, 1, 1, 0, 1, 1})
	y := mat.NewDense(4, 1, []float64{0, 1, 1, 0})

	a := NewMLPClassifier(WithMLPSeed(5), WithMLPEpochs(50))
	b := NewMLPClassifier(WithMLPSeed(5), WithMLPEpochs(50))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	pa, err := a.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := b.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(pa, pb) {
		t.Error("same seed should reproduce the same network")
	}
}

func TestMLPClassifier_Errors(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		mlp := NewMLPClassifier()
		_, err := mlp.PredictProba(mat.NewDense(1, 2, []float64{0, 1}))
		var nf *errors.NotFittedError
		if !errors.As(err, &nf) {
			t.Errorf("expected NotFittedError, got %v", err)
		}
	})

	t.Run("bad hidden width", func(t *testing.T) {
		mlp := NewMLPClassifier(WithMLPHidden(0))
		err := mlp.Fit(mat.NewDense(2, 1, []float64{0, 1}), mat.NewDense(2, 1, []float64{0, 1}))
		var ve *errors.ValueError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValueError, got %v", err)
		}
	})
}
