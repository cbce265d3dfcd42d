// Package chart renders a session's trend ledger as a bar chart, either as a
// PNG image or as an XLSX workbook with a native column chart.
package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/stylepulse/internal/domain/ledger"
)

// PNG layout.
const (
	PNGContentType = "image/png"

	chartTitle    = "Popular Style Categories"
	axisName      = "Count"
	chartHeight   = 400
	minChartWidth = 480
	barWidth      = 60
	perBarWidth   = 110
	titlePadding  = 40
)

// teal is the bar colour shared with the upload page.
var teal = drawing.ColorFromHex("008080") //nolint:gochecknoglobals // colour constant

// RenderPNG draws one bar per entry, category on x and count on y.
func RenderPNG(w io.Writer, entries []ledger.Entry) error {
	if len(entries) == 0 {
		return ErrNoData
	}

	bars := make([]gochart.Value, len(entries))
	maxCount := 0
	for i, e := range entries {
		bars[i] = gochart.Value{
			Label: e.Category.String(),
			Value: float64(e.Count),
			Style: gochart.Style{FillColor: teal, StrokeColor: teal},
		}
		if e.Count > maxCount {
			maxCount = e.Count
		}
	}

	width := perBarWidth * len(entries)
	if width < minChartWidth {
		width = minChartWidth
	}

	graph := gochart.BarChart{
		Title:      chartTitle,
		Background: gochart.Style{Padding: gochart.Box{Top: titlePadding}},
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		YAxis: gochart.YAxis{
			Name: axisName,
			// A fixed range starting at zero keeps single-value ledgers plottable.
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
