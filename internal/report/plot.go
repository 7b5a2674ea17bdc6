package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	densityColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	diagonalColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// DensityPlot builds a line plot of prime density per ring, with the mean
// diagonal density drawn as a horizontal reference line.
func DensityPlot(s Summary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Ulam spiral %dx%d - prime density by ring", s.Size, s.Size)
	p.X.Label.Text = "Ring"
	p.Y.Label.Text = "Prime density"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(s.Rings))
	for _, r := range s.Rings {
		if r.Ring > 0 {
			pts = append(pts, plotter.XY{X: float64(r.Ring), Y: r.Density})
		}
	}
	if len(pts) == 0 {
		return p, nil
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = densityColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("rings", line)

	diag, err := plotter.NewLine(plotter.XYs{
		{X: pts[0].X, Y: s.DiagonalDensity},
		{X: pts[len(pts)-1].X, Y: s.DiagonalDensity},
	})
	if err != nil {
		return nil, err
	}
	diag.Color = diagonalColor
	diag.Width = vg.Points(1)
	diag.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(diag)
	p.Legend.Add("diagonals", diag)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WriteDensityPlot saves DensityPlot to path; the extension picks the format
// (.png, .svg, .pdf).
func WriteDensityPlot(s Summary, path string) error {
	p, err := DensityPlot(s)
	if err != nil {
		return fmt.Errorf("failed to build density plot: %w", err)
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save density plot: %w", err)
	}
	return nil
}
