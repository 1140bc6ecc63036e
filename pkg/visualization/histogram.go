package visualization

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"mrimetrics/internal/models"
	"mrimetrics/pkg/metrics"
)

// SaveHistogramChart renders the intensity histogram as a PNG with the
// threshold bounds drawn as vertical markers
func SaveHistogramChart(h metrics.Histogram, interval models.ThresholdInterval, filename string) error {
	if len(h.Counts) == 0 {
		return fmt.Errorf("histogram has no bins")
	}

	peak := floats.Max(h.Counts)
	marker := func(name string, x float64) chart.Series {
		return chart.ContinuousSeries{
			Name:    name,
			XValues: []float64{x, x},
			YValues: []float64{0, peak},
			Style: chart.Style{
				StrokeColor:     drawing.ColorRed,
				StrokeWidth:     1,
				StrokeDashArray: []float64{4, 2},
			},
		}
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name: "Intensity",
		},
		YAxis: chart.YAxis{
			Name: "Voxels",
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "histogram",
				XValues: h.Centers(),
				YValues: h.Counts,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlue,
					StrokeWidth: 1.5,
				},
			},
			marker("lower threshold", interval.Lower),
			marker("upper threshold", interval.Upper),
		},
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	return nil
}
