// Package experiment fits every registered classifier on raw and on
// min-max rescaled features and scores both variants with ROC-AUC, so the
// effect of feature magnitude can be read off a single report.
package experiment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/scalego/scalego/core/model"
	"github.com/scalego/scalego/dataset"
	"github.com/scalego/scalego/ensemble"
	"github.com/scalego/scalego/linear"
	"github.com/scalego/scalego/metrics"
	"github.com/scalego/scalego/neighbors"
	"github.com/scalego/scalego/neural"
	"github.com/scalego/scalego/pkg/errors"
	"github.com/scalego/scalego/pkg/log"
	"github.com/scalego/scalego/preprocessing"
)

// Config controls the shared experiment setup. The zero value picks a
// 30% held-out split, seed 0 and the unit feature range.
type Config struct {
	// TestFraction is the held-out share of rows, in (0, 1).
	TestFraction float64

	// Seed drives the split permutation. Fixed seed, fixed split.
	Seed int64

	// FeatureRange is the target interval of the scaled variant.
	FeatureRange [2]float64

	// FeatureNames labels the coefficient report. Optional.
	FeatureNames []string
}

// ModelSpec names a classifier factory. The runner calls New once per
// variant so the raw and scaled fits never share state.
type ModelSpec struct {
	Name string
	New  func() model.Classifier
}

// DefaultModels returns the six reference collaborators with fixed seeds.
func DefaultModels() []ModelSpec {
	return []ModelSpec{
		{Name: "LogisticRegression", New: func() model.Classifier {
			return linear.NewLogisticRegression(linear.WithLRSeed(1))
		}},
		{Name: "LinearSVC", New: func() model.Classifier {
			return linear.NewLinearSVC(linear.WithSVCSeed(1))
		}},
		{Name: "KNN", New: func() model.Classifier {
			return neighbors.NewKNNClassifier(5)
		}},
		{Name: "MLP", New: func() model.Classifier {
			return neural.NewMLPClassifier(neural.WithMLPSeed(1))
		}},
		{Name: "RandomForest", New: func() model.Classifier {
			return ensemble.NewRandomForest(ensemble.WithForestSeed(1))
		}},
		{Name: "AdaBoost", New: func() model.Classifier {
			return ensemble.NewAdaBoost()
		}},
	}
}

// Runner executes the raw-versus-scaled comparison for a set of models.
type Runner struct {
	cfg   Config
	specs []ModelSpec
}

// NewRunner builds a Runner over the given model specs.
func NewRunner(cfg Config, specs ...ModelSpec) *Runner {
	if cfg.TestFraction == 0 {
		cfg.TestFraction = 0.3
	}
	if cfg.FeatureRange == [2]float64{} {
		cfg.FeatureRange = [2]float64{0, 1}
	}
	return &Runner{cfg: cfg, specs: specs}
}

// Run splits the data once, fits the scaler on the training split only,
// and scores every (model, raw|scaled) pair on both splits. A failing
// model contributes a Result carrying its error; the rest still score.
// Run itself fails only when the shared setup (split or scaler) fails.
func (r *Runner) Run(X *mat.Dense, y *mat.VecDense) (*Report, error) {
	if len(r.specs) == 0 {
		return nil, errors.NewInvalidInputError("Runner.Run", "no models registered")
	}

	XTrain, XTest, yTrain, yTest, err := dataset.TrainTestSplit(X, y, r.cfg.TestFraction, r.cfg.Seed)
	if err != nil {
		return nil, err
	}

	scaler := preprocessing.NewRangeScaler(r.cfg.FeatureRange, preprocessing.DegenerateZero)
	if err := scaler.Fit(XTrain); err != nil {
		return nil, errors.Wrap(err, "fitting scaler on training split")
	}
	scaledTrain, err := scaler.Transform(XTrain)
	if err != nil {
		return nil, err
	}
	scaledTest, err := scaler.Transform(XTest)
	if err != nil {
		return nil, err
	}

	variants := []struct {
		scaled      bool
		train, test mat.Matrix
	}{
		{scaled: false, train: XTrain, test: XTest},
		{scaled: true, train: scaledTrain, test: scaledTest},
	}

	logger := log.Logger()
	report := &Report{FeatureNames: r.cfg.FeatureNames}
	for _, spec := range r.specs {
		for _, v := range variants {
			res := evaluate(spec, v.scaled, v.train, v.test, yTrain, yTest)
			report.Results = append(report.Results, res)

			if res.Err != nil {
				logger.Warn().
					Str("model", res.Model).
					Bool("scaled", res.Scaled).
					Err(res.Err).
					Msg("model failed")
				continue
			}
			ev := logger.Info().
				Str("model", res.Model).
				Bool("scaled", res.Scaled).
				Float64("train_auc", res.TrainAUC).
				Float64("test_auc", res.TestAUC).
				Float64("test_accuracy", res.TestAccuracy)
			if res.HasCoefficients {
				ev = ev.Floats64("weights", res.Weights).
					Float64("intercept", res.Intercept)
			}
			ev.Msg("model scored")
		}
	}
	return report, nil
}

// evaluate fits one fresh collaborator and scores it. Panics inside the
// collaborator are contained and surface as the Result's Err.
func evaluate(spec ModelSpec, scaled bool, train, test mat.Matrix, yTrain, yTest *mat.VecDense) Result {
	res := Result{Model: spec.Name, Scaled: scaled}

	clf := spec.New()
	res.Err = errors.SafeExecute(spec.Name+".Fit", func() error {
		return clf.Fit(train, yTrain)
	})
	if res.Err != nil {
		return res
	}

	var trainProba, testProba mat.Matrix
	res.Err = errors.SafeExecute(spec.Name+".PredictProba", func() error {
		var err error
		if trainProba, err = clf.PredictProba(train); err != nil {
			return err
		}
		testProba, err = clf.PredictProba(test)
		return err
	})
	if res.Err != nil {
		return res
	}

	trainScore := positiveColumn(trainProba)
	testScore := positiveColumn(testProba)

	if res.TrainAUC, res.Err = metrics.AUC(yTrain, trainScore); res.Err != nil {
		return res
	}
	if res.TestAUC, res.Err = metrics.AUC(yTest, testScore); res.Err != nil {
		return res
	}
	if res.TrainAccuracy, res.Err = metrics.Accuracy(yTrain, trainScore); res.Err != nil {
		return res
	}
	if res.TestAccuracy, res.Err = metrics.Accuracy(yTest, testScore); res.Err != nil {
		return res
	}

	if lm, ok := clf.(model.LinearModel); ok {
		res.Weights = lm.Weights()
		res.Intercept = lm.Intercept()
		res.HasCoefficients = true
	}
	return res
}

// positiveColumn extracts the positive-class probabilities as a vector.
func positiveColumn(probas mat.Matrix) *mat.VecDense {
	n, _ := probas.Dims()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, probas.At(i, 1))
	}
	return v
}
