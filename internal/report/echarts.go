package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func ringLabels(s Summary) []string {
	labels := make([]string, len(s.Rings))
	for i, r := range s.Rings {
		labels[i] = strconv.Itoa(r.Ring)
	}
	return labels
}

// RingDensityChart builds a bar chart of the prime density of every ring.
func RingDensityChart(s Summary, title string) *charts.Bar {
	data := make([]opts.BarData, len(s.Rings))
	for i, r := range s.Rings {
		data[i] = opts.BarData{Value: r.Density}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Subtitle: fmt.Sprintf("size=%d primes=%d mean=%.4f std=%.4f",
				s.Size, s.PrimeCount, s.MeanRingDensity, s.StdRingDensity),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Ring", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Prime density", NameLocation: "middle", NameGap: 40}),
	)
	bar.SetXAxis(ringLabels(s)).AddSeries("density", data)
	return bar
}

// CumulativePrimesChart builds a line chart of the running prime count
// outward from the center.
func CumulativePrimesChart(s Summary) *charts.Line {
	cum := s.CumulativePrimes()
	data := make([]opts.LineData, len(cum))
	for i, v := range cum {
		data[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Primes enclosed by ring"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Ring", NameLocation: "middle", NameGap: 25}),
	)
	line.SetXAxis(ringLabels(s)).AddSeries("primes", data)
	return line
}

// WriteRingDensityHTML renders both ring charts as one HTML page.
func WriteRingDensityHTML(w io.Writer, s Summary, title string) error {
	page := components.NewPage()
	page.AddCharts(RingDensityChart(s, title), CumulativePrimesChart(s))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render ring chart: %w", err)
	}
	return nil
}
