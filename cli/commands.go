package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/tdcr/config"
	"go.viam.com/tdcr/logging"
	"go.viam.com/tdcr/motionplan"
	"go.viam.com/tdcr/session"
)

// sceneSession reads a scene file and opens a session on it.
func sceneSession(file string, logger logging.Logger) (*session.Session, *config.Setup, error) {
	scene, err := config.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	setup, err := scene.Build()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "scene %q", file)
	}
	sess, err := session.NewWithTaskspace(setup.Robot, setup.Start, setup.Taskspace, setup.Options, logger)
	if err != nil {
		return nil, nil, err
	}
	view := setup.View
	sess.SetView(&view)
	return sess, setup, nil
}

func (s *appState) planCommand(c *cli.Context) error {
	sess, setup, err := sceneSession(c.String(planFlagScene), s.logger.Sublogger("session"))
	if err != nil {
		return err
	}
	res, err := sess.Plan(c.Context)
	if err != nil {
		return err
	}
	printf(c, "%s\n", res.Path)
	printf(c, "state: %s, steps: %d\n", res.State, len(res.Path))
	if res.LastError != nil {
		printf(c, "last failure: %v\n", res.LastError)
	}

	if out := c.String(planFlagOut); out != "" {
		if err := session.SavePath(out, res.Path); err != nil {
			return err
		}
		s.logger.Infof("wrote path to %s", out)
	}
	if file := c.String(planFlagPlot); file != "" {
		if err := plotPath(file, setup, res.Path); err != nil {
			return err
		}
		s.logger.Infof("wrote plot to %s", file)
	}
	if file := c.String(planFlagRender); file != "" {
		if err := renderPath(file, setup, res.Path); err != nil {
			return err
		}
		s.logger.Infof("wrote render to %s", file)
	}
	return nil
}

func (s *appState) solveCommand(c *cli.Context) error {
	sess, _, err := sceneSession(c.String(planFlagScene), s.logger.Sublogger("session"))
	if err != nil {
		return err
	}
	res, err := sess.Solve(c.Context, !c.Bool(solveFlagFree))
	if err != nil {
		return err
	}
	workspace, err := sess.Backbone2D()
	if err != nil {
		return err
	}
	display, err := sess.DisplayBackbone()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "X", "Z", "Display X", "Display Y"})
	for i, pt := range workspace {
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.6g", pt.X),
			fmt.Sprintf("%.6g", pt.Y),
			fmt.Sprintf("%.1f", display[i].X),
			fmt.Sprintf("%.1f", display[i].Y),
		})
	}
	printf(c, "%s\n", t.Render())
	printf(c, "curvature: %.6g\n", res.Configuration.Curvature())
	printf(c, "iterations: %d, residual: %.3g\n", res.Iterations, res.Residual)
	return nil
}

func (s *appState) showCommand(c *cli.Context) error {
	path, err := session.LoadPath(c.String(showFlagPath))
	if err != nil {
		return err
	}
	printf(c, "%s\n", path)
	return nil
}

// batchResult is one row of the batch summary.
type batchResult struct {
	scene string
	out   string
	state motionplan.PlanState
	steps int
}

func (s *appState) batchCommand(c *cli.Context) error {
	scenes := lo.Uniq(c.Args().Slice())
	if len(scenes) == 0 {
		return errors.New("batch needs at least one scene file")
	}
	if dups := lo.FindDuplicatesBy(scenes, sceneName); len(dups) > 0 {
		return errors.Errorf("scenes %v would write the same path file", dups)
	}
	outDir := c.String(planFlagOutDir)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return err
	}
	jobs := c.Int(planFlagJobs)
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		results []batchResult
	)
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(jobs)
	for _, scene := range scenes {
		scene := scene
		g.Go(func() error {
			res, err := s.planScene(ctx, scene, outDir)
			if err != nil {
				return errors.Wrapf(err, "scene %q", scene)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	byScene := lo.KeyBy(results, func(r batchResult) string { return r.scene })
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Scene", "State", "Steps", "Path"})
	for _, scene := range scenes {
		res := byScene[scene]
		t.AppendRow([]interface{}{res.scene, res.state.String(), res.steps, res.out})
	}
	steps := lo.Map(results, func(r batchResult, _ int) float64 { return float64(r.steps) })
	mean, errMean := stats.Mean(steps)
	most, errMax := stats.Max(steps)
	if err := multierr.Combine(errMean, errMax); err != nil {
		return err
	}
	t.AppendFooter(table.Row{"", "mean steps", fmt.Sprintf("%.1f", mean), fmt.Sprintf("max %.0f", most)})
	printf(c, "%s\n", t.Render())
	return nil
}

func (s *appState) planScene(ctx context.Context, scene, outDir string) (batchResult, error) {
	name := sceneName(scene)
	sess, _, err := sceneSession(scene, s.logger.Sublogger(name))
	if err != nil {
		return batchResult{}, err
	}
	res, err := sess.Plan(ctx)
	if err != nil {
		return batchResult{}, err
	}
	out := filepath.Join(outDir, name+".csv")
	if err := session.SavePath(out, res.Path); err != nil {
		return batchResult{}, err
	}
	return batchResult{scene: scene, out: out, state: res.State, steps: len(res.Path)}, nil
}

// sceneName is the scene file's base name without its extension.
func sceneName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

func printf(c *cli.Context, format string, args ...interface{}) {
	fmt.Fprintf(c.App.Writer, format, args...)
}
