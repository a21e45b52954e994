// Package export renders the recorded timeseries and the live field into
// shareable artifacts: PNG charts and MJPEG AVI animations.
package export

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lixenwraith/contagion/engine"
)

var (
	colorHealthy      = drawing.Color{R: 46, G: 204, B: 113, A: 255}
	colorInfected     = drawing.Color{R: 231, G: 76, B: 60, A: 255}
	colorAsymptomatic = drawing.Color{R: 230, G: 126, B: 34, A: 255}
	colorRecovered    = drawing.Color{R: 52, G: 152, B: 219, A: 255}
	colorVaccinated   = drawing.Color{R: 243, G: 156, B: 18, A: 255}
)

// Chart renders the timeseries as a PNG line chart, one series per state.
// Needs at least two samples to draw a line.
func Chart(samples []engine.Sample, width, height int) ([]byte, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("export: need at least 2 samples to chart, have %d", len(samples))
	}

	ts := make([]float64, len(samples))
	healthy := make([]float64, len(samples))
	infected := make([]float64, len(samples))
	asymptomatic := make([]float64, len(samples))
	recovered := make([]float64, len(samples))
	vaccinated := make([]float64, len(samples))
	for i, s := range samples {
		ts[i] = s.T
		healthy[i] = float64(s.Healthy)
		infected[i] = float64(s.Infected)
		asymptomatic[i] = float64(s.Asymptomatic)
		recovered[i] = float64(s.Recovered)
		vaccinated[i] = float64(s.Vaccinated)
	}

	series := func(name string, ys []float64, c drawing.Color) chart.Series {
		return chart.ContinuousSeries{
			Name:    name,
			XValues: ts,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 2.0,
			},
		}
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name: "Time (s)",
			Style: chart.Style{
				FontSize: 10.0,
			},
		},
		YAxis: chart.YAxis{
			Name: "Population",
			Style: chart.Style{
				FontSize: 10.0,
			},
		},
		Series: []chart.Series{
			series("Healthy", healthy, colorHealthy),
			series("Infected", infected, colorInfected),
			series("Asymptomatic", asymptomatic, colorAsymptomatic),
			series("Recovered", recovered, colorRecovered),
			series("Vaccinated", vaccinated, colorVaccinated),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("export: render chart: %w", err)
	}
	return buf.Bytes(), nil
}
