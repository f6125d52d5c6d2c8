package experiment

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/scalego/scalego/pkg/errors"
)

// SaveChart writes a grouped bar chart of the test ROC-AUC per model,
// raw next to scaled, to path. The image format follows the extension
// (.png, .svg, .pdf). Failed rows chart as zero-height bars.
func (rep *Report) SaveChart(path string) error {
	var names []string
	var raw, scaled plotter.Values
	for _, r := range rep.Results {
		v := 0.0
		if r.Err == nil {
			v = r.TestAUC
		}
		if r.Scaled {
			scaled = append(scaled, v)
		} else {
			names = append(names, r.Model)
			raw = append(raw, v)
		}
	}
	if len(raw) == 0 || len(raw) != len(scaled) {
		return errors.NewInvalidInputError("Report.SaveChart", "report has no raw/scaled result pairs")
	}

	p := plot.New()
	p.Title.Text = "Test ROC-AUC by feature treatment"
	p.Y.Label.Text = "ROC-AUC"
	p.Y.Min, p.Y.Max = 0, 1

	width := vg.Points(16)
	rawBars, err := plotter.NewBarChart(raw, width)
	if err != nil {
		return errors.Wrap(err, "building raw bars")
	}
	rawBars.LineStyle.Width = 0
	rawBars.Color = plotutil.Color(0)
	rawBars.Offset = -width / 2

	scaledBars, err := plotter.NewBarChart(scaled, width)
	if err != nil {
		return errors.Wrap(err, "building scaled bars")
	}
	scaledBars.LineStyle.Width = 0
	scaledBars.Color = plotutil.Color(1)
	scaledBars.Offset = width / 2

	p.Add(rawBars, scaledBars)
	p.Legend.Add("raw", rawBars)
	p.Legend.Add("scaled", scaledBars)
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "saving chart")
	}
	return nil
}
