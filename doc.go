// Package scalego demonstrates how feature magnitude changes the behaviour
// of binary classifiers, using the Titanic survival data as the running
// example.
//
// The library is organized around three pieces:
//
//   - preprocessing.RangeScaler: a deterministic, reversible min-max
//     rescaling of each feature column, fitted once on training data and
//     applied read-only anywhere else.
//   - experiment.Runner: fits every registered classifier on raw and on
//     rescaled features and reports train/test ROC-AUC side by side.
//   - Model families (linear, neighbors, neural, ensemble): small reference
//     classifiers behind the shared model.Classifier contract. They are
//     interchangeable; the runner only sees Fit and PredictProba.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/scalego/scalego/dataset"
//	    "github.com/scalego/scalego/experiment"
//	)
//
//	func main() {
//	    ds, err := dataset.LoadCSV("titanic.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    runner := experiment.NewRunner(
//	        experiment.Config{TestFraction: 0.3, Seed: 42},
//	        experiment.DefaultModels()...,
//	    )
//	    report, err := runner.Run(ds.Features(), ds.Labels())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(report.Table())
//	}
//
// The cmd/scalego command wraps exactly this flow behind flags.
package scalego
