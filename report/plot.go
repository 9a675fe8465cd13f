package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// maxPlotFixtures bounds the grid drawn by LayoutPlot.
const maxPlotFixtures = 2500

// ErrNoLayout is returned when a room cannot be drawn: non-finite or
// non-positive sides, or a fixture grid too large to be useful.
var ErrNoLayout = errors.New("layout cannot be plotted")

// LayoutPlot draws the room outline and the fixture grid as a PNG of the
// given size in points. Rows are spread evenly, each fixture centred in its
// cell.
func LayoutPlot(room Room, width, height float64) ([]byte, error) {
	cols, rows := room.Layout.Length, room.Layout.Width
	if !positive(room.Length, room.Width, cols, rows) || cols*rows > maxPlotFixtures {
		return nil, ErrNoLayout
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribución de luminarias (%.0f × %.0f)", rows, cols)
	p.X.Label.Text = "Largo b (m)"
	p.Y.Label.Text = "Ancho a (m)"
	p.X.Min, p.X.Max = 0, room.Length
	p.Y.Min, p.Y.Max = 0, room.Width
	p.Add(plotter.NewGrid())

	outline, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: 0},
		{X: room.Length, Y: 0},
		{X: room.Length, Y: room.Width},
		{X: 0, Y: room.Width},
		{X: 0, Y: 0},
	})
	if err != nil {
		return nil, fmt.Errorf("room outline: %w", err)
	}
	outline.Color = color.Gray{Y: 60}
	outline.Width = vg.Points(1.5)

	dx, dy := room.Length/cols, room.Width/rows
	pts := make(plotter.XYs, 0, int(cols*rows))
	for i := 0.0; i < cols; i++ {
		for j := 0.0; j < rows; j++ {
			pts = append(pts, plotter.XY{X: (i + 0.5) * dx, Y: (j + 0.5) * dy})
		}
	}
	fixtures, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("fixture grid: %w", err)
	}
	fixtures.GlyphStyle.Shape = draw.CircleGlyph{}
	fixtures.GlyphStyle.Radius = vg.Points(4)
	fixtures.GlyphStyle.Color = color.RGBA{R: 230, G: 150, B: 0, A: 255}

	p.Add(outline, fixtures)
	p.Legend.Add("Luminaria", fixtures)
	p.Legend.Top = true

	wt, err := p.WriterTo(vg.Points(width), vg.Points(height), "png")
	if err != nil {
		return nil, fmt.Errorf("rendering layout plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing layout plot: %w", err)
	}
	return buf.Bytes(), nil
}

func positive(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
			return false
		}
	}
	return true
}
