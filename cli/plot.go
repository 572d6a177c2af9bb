package cli

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/tdcr/config"
	"go.viam.com/tdcr/motionplan"
	"go.viam.com/tdcr/spatialmath"
)

const (
	plotSize        = 6 * vg.Inch
	circleVertices  = 64
	maxPlottedSteps = 20
)

var (
	obstacleColor = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	targetColor   = color.RGBA{R: 60, G: 160, B: 60, A: 255}
)

// plotPath renders the x/z backbone of every plotted path step together with the scene's obstacles
// and target. The file extension picks the image format.
func plotPath(file string, setup *config.Setup, path motionplan.Path) error {
	p := plot.New()
	p.Title.Text = "tdcr path"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "z"

	for _, obs := range setup.Taskspace.Obstacles() {
		poly, err := circlePolygon(obs.Geometry, obstacleColor)
		if err != nil {
			return err
		}
		p.Add(poly)
	}
	if tgt := setup.Taskspace.Target(); tgt != nil {
		poly, err := circlePolygon(tgt.Geometry, targetColor)
		if err != nil {
			return err
		}
		p.Add(poly)
	}

	stride := 1
	if len(path) > maxPlottedSteps {
		stride = int(math.Ceil(float64(len(path)) / maxPlottedSteps))
	}
	for i := 0; i < len(path); i += stride {
		if err := addBackbone(p, setup, path[i], i); err != nil {
			return err
		}
	}
	if len(path) > 0 && (len(path)-1)%stride != 0 {
		if err := addBackbone(p, setup, path.Last(), len(path)-1); err != nil {
			return err
		}
	}

	return errors.Wrapf(p.Save(plotSize, plotSize, file), "saving plot to %q", file)
}

func addBackbone(p *plot.Plot, setup *config.Setup, step motionplan.PathStep, idx int) error {
	cfg, err := step.Configuration(setup.Robot)
	if err != nil {
		return err
	}
	cfg.SetBase(setup.Start.Base())
	coords, err := cfg.Backbone(setup.Robot, step.Curvature)
	if err != nil {
		return err
	}
	line, err := plotter.NewLine(toXYs(coords))
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(idx)
	if step.GoalReached {
		line.Width = vg.Points(2)
	}
	p.Add(line)
	return nil
}

func circlePolygon(c *spatialmath.Circle, fill color.Color) (*plotter.Polygon, error) {
	pts := make([]r3.Vector, circleVertices)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / circleVertices
		pts[i] = c.Center().Add(r3.Vector{X: c.Radius() * math.Cos(theta), Z: c.Radius() * math.Sin(theta)})
	}
	poly, err := plotter.NewPolygon(toXYs(pts))
	if err != nil {
		return nil, err
	}
	poly.Color = fill
	return poly, nil
}

func toXYs(coords []r3.Vector) plotter.XYs {
	xys := make(plotter.XYs, len(coords))
	for i, c := range coords {
		xys[i].X = c.X
		xys[i].Y = c.Z
	}
	return xys
}
