// Command scalego loads a passenger CSV, fits every registered classifier
// on raw and on min-max rescaled features, and prints the ROC-AUC
// comparison table. A single failing model is reported in the table; the
// command exits non-zero only when nothing scored at all.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/scalego/scalego/dataset"
	"github.com/scalego/scalego/experiment"
	"github.com/scalego/scalego/pkg/log"
)

func main() {
	var (
		csvPath      = flag.String("csv", "dataset/testdata/titanic.csv", "path to the passenger CSV")
		testFraction = flag.Float64("test-fraction", 0.3, "held-out share of rows, in (0, 1)")
		seed         = flag.Int64("seed", 42, "seed for the train/test permutation")
		models       = flag.String("models", "", "comma-separated model names to run (default: all)")
		chartPath    = flag.String("chart", "", "write a test-AUC bar chart to this path (.png, .svg, .pdf)")
		logLevel     = flag.String("log-level", "info", "zerolog level: debug, info, warn, error, disabled")
		console      = flag.Bool("console", true, "human-readable log output instead of JSON")
	)
	flag.Parse()

	log.Setup(*logLevel, *console)
	logger := log.Logger()

	specs, err := selectModels(*models)
	if err != nil {
		logger.Error().Err(err).Msg("bad -models value")
		os.Exit(2)
	}

	ds, err := dataset.LoadCSV(*csvPath)
	if err != nil {
		logger.Error().Err(err).Str("csv", *csvPath).Msg("loading dataset")
		os.Exit(1)
	}
	logger.Info().
		Str("csv", *csvPath).
		Int("rows", ds.Len()).
		Strs("features", ds.FeatureNames()).
		Msg("dataset loaded")

	runner := experiment.NewRunner(experiment.Config{
		TestFraction: *testFraction,
		Seed:         *seed,
		FeatureNames: ds.FeatureNames(),
	}, specs...)

	report, err := runner.Run(ds.Features(), ds.Labels())
	if err != nil {
		logger.Error().Err(err).Msg("running experiment")
		os.Exit(1)
	}

	fmt.Println(report.Table())

	if *chartPath != "" {
		if err := report.SaveChart(*chartPath); err != nil {
			logger.Error().Err(err).Str("chart", *chartPath).Msg("writing chart")
			os.Exit(1)
		}
		logger.Info().Str("chart", *chartPath).Msg("chart written")
	}

	if report.Succeeded() == 0 {
		logger.Error().Msg("every model failed")
		os.Exit(1)
	}
}

// selectModels filters the default registry by a comma-separated name
// list; an empty list keeps everything.
func selectModels(names string) ([]experiment.ModelSpec, error) {
	all := experiment.DefaultModels()
	if strings.TrimSpace(names) == "" {
		return all, nil
	}

	byName := make(map[string]experiment.ModelSpec, len(all))
	for _, s := range all {
		byName[strings.ToLower(s.Name)] = s
	}

	var specs []experiment.ModelSpec
	for _, raw := range strings.Split(names, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		spec, ok := byName[name]
		if !ok {
			known := make([]string, 0, len(all))
			for _, s := range all {
				known = append(known, s.Name)
			}
			return nil, fmt.Errorf("unknown model %q (known: %s)", raw, strings.Join(known, ", "))
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
