package report

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/talgya/flowsim/internal/engine"
)

// DefaultFigurePath is where `flowsim run` writes the figure unless told otherwise.
const DefaultFigurePath = "circulation_with_burn_exceptions_simulation.png"

const (
	figureRows   = 4
	figureCols   = 2
	figureWidth  = 12 * vg.Inch
	figureHeight = 10 * vg.Inch
)

// Panels in figure order, row-major.
var figurePanels = []struct {
	key   string
	title string
}{
	{engine.MetricEffort, "Effort Accumulation"},
	{engine.MetricSupply, "Component Supply"},
	{engine.MetricMints, "Successful Mints"},
	{engine.MetricLegendaryMints, "Legendary Mints"},
	{engine.MetricBurned, "Burned NFTs"},
	{engine.MetricNFTSupply, "NFT Supply After Burn"},
	{engine.MetricLegendary, "Legendary NFTs"},
	{engine.MetricPool, "Community Pool Growth"},
}

// Figure draws one line plot per history series on a 4x2 grid.
func Figure(h *engine.History) (*vgimg.Canvas, error) {
	panels := make([][]*plot.Plot, figureRows)
	for i := range panels {
		panels[i] = make([]*plot.Plot, figureCols)
	}

	for i, fp := range figurePanels {
		m, ok := h.Metric(fp.key)
		if !ok {
			return nil, fmt.Errorf("figure: no series %q", fp.key)
		}
		p, err := linePanel(fp.title, m.Values)
		if err != nil {
			return nil, fmt.Errorf("figure panel %q: %w", fp.title, err)
		}
		panels[i/figureCols][i%figureCols] = p
	}

	img := vgimg.New(figureWidth, figureHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      figureRows,
		Cols:      figureCols,
		PadX:      6 * vg.Millimeter,
		PadY:      6 * vg.Millimeter,
		PadTop:    3 * vg.Millimeter,
		PadBottom: 3 * vg.Millimeter,
		PadLeft:   3 * vg.Millimeter,
		PadRight:  3 * vg.Millimeter,
	}

	canvases := plot.Align(panels, tiles, dc)
	for j := range panels {
		for i := range panels[j] {
			panels[j][i].Draw(canvases[j][i])
		}
	}
	return img, nil
}

func linePanel(title string, values []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Round"
	p.Add(plotter.NewGrid())

	if len(values) == 0 {
		return p, nil
	}
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	p.Add(line)
	return p, nil
}

// WriteFigure renders the figure for h as a PNG at path.
func WriteFigure(path string, h *engine.History) error {
	img, err := Figure(h)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create figure: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write figure: %w", err)
	}
	return f.Close()
}
