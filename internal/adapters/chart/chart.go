// Package chart renders view tables as SVG charts.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

const (
	defaultWidth  = 800
	defaultHeight = 420
	barSlot       = 70
)

// Bar is one labelled value.
type Bar struct {
	Label string
	Value float64
}

// Point is an x/y pair of a line.
type Point struct {
	X, Y float64
}

// Line is a named series of points ordered by X.
type Line struct {
	Name   string
	Points []Point
}

// Bars renders a bar chart of values.
func Bars(w io.Writer, title string, bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	values := make([]chart.Value, len(bars))
	hi := 0.0
	for i, b := range bars {
		values[i] = chart.Value{Label: b.Label, Value: b.Value}
		hi = math.Max(hi, b.Value)
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      max(defaultWidth, barSlot*len(bars)),
		Height:     defaultHeight,
		BarWidth:   barSlot / 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: upper(hi)},
			ValueFormatter: money,
		},
		Bars: values,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// Pie renders a pie chart of shares. Non-positive slices are skipped.
func Pie(w io.Writer, title string, slices []Bar) error {
	var values []chart.Value
	for _, s := range slices {
		if s.Value > 0 {
			values = append(values, chart.Value{Label: s.Label, Value: s.Value})
		}
	}
	if len(values) == 0 {
		return ErrNoData
	}
	pc := chart.PieChart{
		Title:  title,
		Width:  defaultHeight + 60,
		Height: defaultHeight + 60,
		Values: values,
	}
	if err := pc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

// Lines renders one or more line series against a numeric x axis.
func Lines(w io.Writer, title, xName, yName string, lines []Line) error {
	var (
		series []chart.Series
		lo     = math.Inf(1)
		hi     = math.Inf(-1)
	)
	for _, l := range lines {
		if len(l.Points) == 0 {
			continue
		}
		xs := make([]float64, 0, len(l.Points))
		ys := make([]float64, 0, len(l.Points))
		for _, p := range l.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
			lo, hi = math.Min(lo, p.Y), math.Max(hi, p.Y)
		}
		// A single point has no x range; widen it so the axis can be drawn.
		if len(xs) == 1 {
			xs = []float64{xs[0] - 0.5, xs[0] + 0.5}
			ys = []float64{ys[0], ys[0]}
		}
		series = append(series, chart.ContinuousSeries{Name: l.Name, XValues: xs, YValues: ys})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	ch := chart.Chart{
		Title:      title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: xName, ValueFormatter: whole},
		YAxis: chart.YAxis{
			Name:           yName,
			Range:          &chart.ContinuousRange{Min: math.Max(0, lo*0.9), Max: upper(hi)},
			ValueFormatter: money,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

func upper(hi float64) float64 {
	if hi <= 0 || math.IsInf(hi, 0) || math.IsNaN(hi) {
		return 1
	}
	return hi * 1.1
}

func money(v any) string {
	if f, ok := v.(float64); ok {
		return "$" + strconv.FormatFloat(math.Round(f/1000), 'f', 0, 64) + "k"
	}
	return ""
}

func whole(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return ""
}
