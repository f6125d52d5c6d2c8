package experiment

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Result is one scored (model, variant) pair. Err set means the model
// never produced scores for this variant.
type Result struct {
	Model  string
	Scaled bool

	TrainAUC      float64
	TestAUC       float64
	TrainAccuracy float64
	TestAccuracy  float64

	// Linear collaborators also report their fitted coefficients.
	HasCoefficients bool
	Weights         []float64
	Intercept       float64

	Err error
}

// Variant names the feature treatment of a result row.
func (r Result) Variant() string {
	if r.Scaled {
		return "scaled"
	}
	return "raw"
}

// Report collects every result of one Runner.Run call.
type Report struct {
	Results      []Result
	FeatureNames []string
}

// Succeeded counts the result rows that produced scores.
func (rep *Report) Succeeded() int {
	n := 0
	for _, r := range rep.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Table renders the comparison as an aligned text table, one row per
// (model, variant), followed by the coefficients of the linear models.
func (rep *Report) Table() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "MODEL\tFEATURES\tTRAIN AUC\tTEST AUC\tTEST ACC")
	for _, r := range rep.Results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%s\tfailed: %v\t\t\n", r.Model, r.Variant(), r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\n",
			r.Model, r.Variant(), r.TrainAUC, r.TestAUC, r.TestAccuracy)
	}
	w.Flush()

	if coef := rep.coefficientSection(); coef != "" {
		sb.WriteString("\n")
		sb.WriteString(coef)
	}
	return sb.String()
}

func (rep *Report) coefficientSection() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	header := false
	for _, r := range rep.Results {
		if r.Err != nil || !r.HasCoefficients {
			continue
		}
		if !header {
			fmt.Fprintln(w, "MODEL\tFEATURES\tCOEFFICIENTS\tINTERCEPT")
			header = true
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\n",
			r.Model, r.Variant(), rep.formatWeights(r.Weights), r.Intercept)
	}
	if !header {
		return ""
	}
	w.Flush()
	return sb.String()
}

func (rep *Report) formatWeights(weights []float64) string {
	parts := make([]string, len(weights))
	for i, v := range weights {
		if i < len(rep.FeatureNames) {
			parts[i] = fmt.Sprintf("%s=%.4f", rep.FeatureNames[i], v)
		} else {
			parts[i] = fmt.Sprintf("%.4f", v)
		}
	}
	return strings.Join(parts, " ")
}
