package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("series has no points")

type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

func ParseChartKind(s string) (ChartKind, error) {
	switch ChartKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChartBar:
		return ChartBar, nil
	case ChartLine:
		return ChartLine, nil
	default:
		return "", fmt.Errorf("unknown chart type %q (expected bar or line)", s)
	}
}

var metricColors = map[string]string{
	"Spend":       "#1a56db",
	"Sales":       "#10b981",
	"ACOS":        "#f97316",
	"ROAS":        "#e11d48",
	"CTR":         "#0ea5e9",
	"Clicks":      "#a855f7",
	"Impressions": "#6b7280",
	"CPC":         "#ca8a04",
}

const defaultMetricColor = "#0f172a"

// MetricColor is the hex color a metric is always drawn with.
func MetricColor(metric string) string {
	if c, ok := metricColors[metric]; ok {
		return c
	}
	return defaultMetricColor
}

type ChartOptions struct {
	Kind   ChartKind
	Title  string
	Metric string
	Width  int
	Height int
	// SVG selects vector output instead of PNG.
	SVG bool
}

// ChartOptionsForFile picks SVG output for .svg files and PNG otherwise.
func ChartOptionsForFile(path string) ChartOptions {
	return ChartOptions{SVG: strings.EqualFold(filepath.Ext(path), ".svg")}
}

// RenderChart draws the per-period series of one metric.
func RenderChart(w io.Writer, s domain.Series, opts ChartOptions) error {
	if s.Len() == 0 {
		return ErrEmptySeries
	}
	if opts.Width <= 0 {
		opts.Width = max(640, 80*s.Len()+160)
	}
	if opts.Height <= 0 {
		opts.Height = 480
	}
	if opts.Title == "" {
		opts.Title = opts.Metric
	}

	provider := chart.PNG
	if opts.SVG {
		provider = chart.SVG
	}

	color := drawing.ColorFromHex(strings.TrimPrefix(MetricColor(opts.Metric), "#"))
	yRange := valueRange(s.Values)

	switch opts.Kind {
	case ChartLine:
		return renderLine(w, provider, s, opts, color, yRange)
	case ChartBar, "":
		return renderBar(w, provider, s, opts, color, yRange)
	default:
		return fmt.Errorf("unknown chart type %q", opts.Kind)
	}
}

func renderBar(w io.Writer, provider chart.RendererProvider, s domain.Series, opts ChartOptions, color drawing.Color, yRange *chart.ContinuousRange) error {
	bars := make([]chart.Value, s.Len())
	for i, label := range s.Labels {
		bars[i] = chart.Value{
			Label: label,
			Value: s.Values[i],
			Style: chart.Style{
				FillColor:   color.WithAlpha(160),
				StrokeColor: color,
				StrokeWidth: 1,
			},
		}
	}

	bc := chart.BarChart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   40,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:      chart.YAxis{Range: yRange},
		Bars:       bars,
	}
	if err := bc.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}

func renderLine(w io.Writer, provider chart.RendererProvider, s domain.Series, opts ChartOptions, color drawing.Color, yRange *chart.ContinuousRange) error {
	xs := make([]float64, s.Len())
	ticks := make([]chart.Tick, s.Len())
	for i, label := range s.Labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(s.Len()) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{Name: opts.Metric, Range: yRange},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    opts.Metric,
				XValues: xs,
				YValues: s.Values,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					DotColor:    color,
					DotWidth:    4,
				},
			},
		},
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}
	return nil
}

// valueRange spans zero and every value, and is never empty.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}
