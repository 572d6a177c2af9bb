package cli

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"go.viam.com/tdcr/config"
	"go.viam.com/tdcr/motionplan"
	"go.viam.com/tdcr/spatialmath"
)

const (
	renderWidth    = 800
	renderHeight   = 600
	renderGridSize = 20
)

var (
	gridColor          = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	renderObstacle     = color.RGBA{R: 0, G: 55, B: 255, A: 255}
	renderTarget       = color.RGBA{R: 0, G: 255, B: 55, A: 255}
	renderBackbone     = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	renderLastBackbone = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// renderPath draws the scene in display coordinates, the way an interactive shell shows it: a
// grid, the obstacles and target, and every path step's backbone with the last one emphasized.
func renderPath(file string, setup *config.Setup, path motionplan.Path) error {
	dc := gg.NewContext(renderWidth, renderHeight)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for x := 0; x < renderWidth; x += renderGridSize {
		dc.DrawLine(float64(x), 0, float64(x), renderHeight)
	}
	for y := 0; y < renderHeight; y += renderGridSize {
		dc.DrawLine(0, float64(y), renderWidth, float64(y))
	}
	dc.Stroke()

	view := setup.View
	// uniform view scale, in pixels per workspace unit
	scale := math.Sqrt(math.Abs(view.Determinant()))
	for _, obs := range setup.Taskspace.Obstacles() {
		drawCircle(dc, view, obs.Geometry, scale, renderObstacle)
	}
	if tgt := setup.Taskspace.Target(); tgt != nil {
		drawCircle(dc, view, tgt.Geometry, scale, renderTarget)
	}

	for i, step := range path {
		cfg, err := step.Configuration(setup.Robot)
		if err != nil {
			return err
		}
		cfg.SetBase(setup.Start.Base())
		coords, err := cfg.Backbone(setup.Robot, step.Curvature)
		if err != nil {
			return err
		}
		dc.SetColor(renderBackbone)
		dc.SetLineWidth(1)
		if i == len(path)-1 {
			dc.SetColor(renderLastBackbone)
			dc.SetLineWidth(3)
		}
		for j, c := range coords {
			pt := view.ToDisplay(c)
			if j == 0 {
				dc.MoveTo(pt.X, pt.Y)
				continue
			}
			dc.LineTo(pt.X, pt.Y)
		}
		dc.Stroke()
	}

	return errors.Wrapf(dc.SavePNG(file), "saving render to %q", file)
}

func drawCircle(dc *gg.Context, view spatialmath.Affine2, c *spatialmath.Circle, scale float64, fill color.Color) {
	center := view.ToDisplay(c.Center())
	dc.SetColor(fill)
	dc.DrawCircle(center.X, center.Y, c.Radius()*scale)
	dc.Fill()
}
