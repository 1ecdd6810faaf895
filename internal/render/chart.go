package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/SSK015/Workload-Profiling/pkg/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	barFill  = drawing.ColorFromHex("1f77b4")
	dotColor = drawing.Color{R: 31, G: 119, B: 180, A: 90}
)

var ErrEmptySeries = errors.New("nothing to render")

type ChartOptions struct {
	Width  int
	Height int
	DPI    float64
}

// ChartRenderer draws PNG charts with go-chart.
type ChartRenderer struct {
	opts ChartOptions
}

func NewChartRenderer(opts ChartOptions) *ChartRenderer {
	return &ChartRenderer{opts: opts}
}

func (cr *ChartRenderer) Extension() string { return ".png" }

func (cr *ChartRenderer) Render(w io.Writer, s types.Series) error {
	switch s.Kind {
	case types.SERIES_BAR:
		return cr.renderBars(w, s)
	case types.SERIES_SCATTER:
		return cr.renderScatter(w, s)
	default:
		return fmt.Errorf("chart: unsupported series kind %q", s.Kind)
	}
}

func (cr *ChartRenderer) yAxis(s types.Series) chart.YAxis {
	y := chart.YAxis{Name: s.YLabel}
	if s.YMax > s.YMin {
		y.Range = &chart.ContinuousRange{Min: s.YMin, Max: s.YMax}
	}
	return y
}

func (cr *ChartRenderer) renderBars(w io.Writer, s types.Series) error {
	if len(s.Y) == 0 {
		return ErrEmptySeries
	}
	bars := make([]chart.Value, len(s.Y))
	for i, v := range s.Y {
		label := ""
		if i < len(s.Labels) {
			label = s.Labels[i]
		}
		bars[i] = chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{FillColor: barFill, StrokeColor: barFill},
		}
	}

	// keep bars readable however many bins there are
	barWidth := max(2, (cr.opts.Width-120)/len(bars)*9/10)

	graph := chart.BarChart{
		Title:    s.Title,
		Width:    cr.opts.Width,
		Height:   cr.opts.Height,
		DPI:      cr.opts.DPI,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: cr.yAxis(s),
		Bars:  bars,
	}
	return graph.Render(chart.PNG, w)
}

func (cr *ChartRenderer) renderScatter(w io.Writer, s types.Series) error {
	if len(s.X) == 0 {
		return ErrEmptySeries
	}
	graph := chart.Chart{
		Title:  s.Title,
		Width:  cr.opts.Width,
		Height: cr.opts.Height,
		DPI:    cr.opts.DPI,
		XAxis:  chart.XAxis{Name: s.XLabel},
		YAxis:  cr.yAxis(s),
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    1,
					DotColor:    dotColor,
				},
				XValues: s.X,
				YValues: s.Y,
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
