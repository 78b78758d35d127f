// Package plot renders a quick HTML scatter of a survey site: projected
// GCP references against projected marker observations. Debugging aid for
// choosing a sensible match threshold; never part of the primary output.
package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/openaerial/gcptools/internal/geo"
)

// LabelledPoint is a projected position with its display label.
type LabelledPoint struct {
	Label string
	Point geo.Point
}

// Scatter writes an HTML page plotting GCPs and marker observations in
// planar UTM coordinates.
func Scatter(w io.Writer, title string, gcps, markers []LabelledPoint) error {
	minX, maxX, minY, maxY := bounds(append(append([]LabelledPoint{}, gcps...), markers...))

	// Pad the axis ranges so edge points stay visible.
	padX := (maxX - minX) * 0.05
	padY := (maxY - minY) * 0.05
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("gcps=%d markers=%d", len(gcps), len(markers))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minX - padX, Max: maxX + padX, Name: "Easting (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minY - padY, Max: maxY + padY, Name: "Northing (m)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("gcps", series(gcps), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	scatter.AddSeries("markers", series(markers), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render scatter: %w", err)
	}
	return nil
}

func series(pts []LabelledPoint) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.ScatterData{
			Name:  p.Label,
			Value: []interface{}{p.Point.X, p.Point.Y},
		})
	}
	return data
}

func bounds(pts []LabelledPoint) (minX, maxX, minY, maxY float64) {
	for i, p := range pts {
		if i == 0 || p.Point.X < minX {
			minX = p.Point.X
		}
		if i == 0 || p.Point.X > maxX {
			maxX = p.Point.X
		}
		if i == 0 || p.Point.Y < minY {
			minY = p.Point.Y
		}
		if i == 0 || p.Point.Y > maxY {
			maxY = p.Point.Y
		}
	}
	return minX, maxX, minY, maxY
}
