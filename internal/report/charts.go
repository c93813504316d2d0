package report

import (
	"fmt"
	"os"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// labelThresholdPct hides slice labels below this share of the pie.
const labelThresholdPct = 5.0

// labelMaxLen truncates long group/class names on chart labels.
const labelMaxLen = 10

// pieSlice is one wedge of a pie chart.
type pieSlice struct {
	Label string
	Color drawing.Color
	Count int
}

// renderPie writes a pie chart PNG. Slices below the label threshold
// keep their wedge but lose their label, matching the report style.
func renderPie(path, title string, slices []pieSlice) error {
	total := 0
	for _, s := range slices {
		total += s.Count
	}
	if total == 0 {
		return fmt.Errorf("pie %q has no data", title)
	}

	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if s.Count == 0 {
			continue
		}
		label := truncateLabel(s.Label)
		if 100*float64(s.Count)/float64(total) < labelThresholdPct {
			label = ""
		}
		values = append(values, chart.Value{
			Value: float64(s.Count),
			Label: label,
			Style: chart.Style{FillColor: s.Color},
		})
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  512,
		Height: 512,
		Values: values,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := pie.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render pie %q: %w", title, err)
	}
	return nil
}

// timelineSeries is one group's hourly counts for a camera timeline.
type timelineSeries struct {
	Group  string
	Color  drawing.Color
	Counts []float64 // one entry per hour bucket
}

// renderTimeline writes a stacked hourly timeline PNG. Stacking is done
// by plotting cumulative sums back to front, each filled to the axis,
// so every group's band is its own color.
func renderTimeline(path, title string, hours []time.Time, series []timelineSeries) error {
	if len(hours) == 0 || len(series) == 0 {
		return fmt.Errorf("timeline %q has no data", title)
	}

	// go-chart needs at least two x values to establish a range.
	xs := hours
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(time.Hour))
	}

	// Cumulative stack, bottom group first.
	cumulative := make([][]float64, len(series))
	for i, s := range series {
		cumulative[i] = make([]float64, len(xs))
		for j := range xs {
			v := 0.0
			if j < len(s.Counts) {
				v = s.Counts[j]
			}
			if i > 0 {
				v += cumulative[i-1][j]
			}
			cumulative[i][j] = v
		}
	}

	maxY := 1.0
	top := cumulative[len(cumulative)-1]
	for _, v := range top {
		if v > maxY {
			maxY = v
		}
	}

	// Highest stack first so lower bands paint over it.
	plots := make([]chart.Series, 0, len(series))
	for i := len(series) - 1; i >= 0; i-- {
		color := series[i].Color
		plots = append(plots, chart.TimeSeries{
			Name:    series[i].Group,
			XValues: xs,
			YValues: cumulative[i],
			Style: chart.Style{
				StrokeColor: color,
				FillColor:   color,
			},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01/02 15h"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
		},
		Series: plots,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render timeline %q: %w", title, err)
	}
	return nil
}

func truncateLabel(label string) string {
	if len(label) > labelMaxLen {
		return label[:labelMaxLen]
	}
	return label
}
