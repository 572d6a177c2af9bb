// Package cli contains the tdcr command line tool.
package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/tdcr/logging"
)

const (
	// Flags.
	generalFlagDebug    = "debug"
	generalFlagLogLevel = "log-level"
	generalFlagLogFile  = "log-file"

	planFlagScene   = "scene"
	planFlagOut     = "out"
	planFlagPlot    = "plot"
	planFlagRender  = "render"
	planFlagOutDir  = "out-dir"
	planFlagJobs    = "jobs"
	solveFlagFree   = "no-obstacles"
	showFlagPath    = "path"
	logFileMaxSize  = 10
	logFileBackups  = 3
	defaultRootName = "tdcr"
)

// appState is shared by every command of one App run.
type appState struct {
	registry *logging.Registry
	logger   logging.Logger
	logFile  *logging.FileAppender
}

// NewApp returns the tdcr command line application writing its output to out.
func NewApp(out io.Writer) *cli.App {
	state := &appState{}
	return &cli.App{
		Name:   defaultRootName,
		Usage:  "plan shapes for a tendon-driven continuum robot",
		Writer: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringSliceFlag{
				Name:  generalFlagLogLevel,
				Usage: "set the level of matching loggers, e.g. tdcr.plan.*=debug",
			},
			&cli.StringFlag{
				Name:  generalFlagLogFile,
				Usage: "also write logs to `FILE`, rotated by size",
			},
		},
		Before: state.before,
		After:  state.after,
		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "generate a path from a scene's start to its target",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     planFlagScene,
						Aliases:  []string{"s"},
						Usage:    "scene `FILE` (YAML or JSON)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  planFlagOut,
						Usage: "write the path as CSV to `FILE`",
					},
					&cli.StringFlag{
						Name:  planFlagPlot,
						Usage: "plot the path backbones in workspace units to `FILE` (png, svg or pdf)",
					},
					&cli.StringFlag{
						Name:  planFlagRender,
						Usage: "draw the scene and path in display coordinates to a png `FILE`",
					},
				},
				Action: state.planCommand,
			},
			{
				Name:  "solve",
				Usage: "solve a scene's start configuration once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     planFlagScene,
						Aliases:  []string{"s"},
						Usage:    "scene `FILE` (YAML or JSON)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  solveFlagFree,
						Usage: "ignore obstacle clearance",
					},
				},
				Action: state.solveCommand,
			},
			{
				Name:  "show",
				Usage: "print a saved path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     showFlagPath,
						Usage:    "path CSV `FILE`",
						Required: true,
					},
				},
				Action: state.showCommand,
			},
			{
				Name:      "batch",
				Usage:     "plan several scenes concurrently",
				ArgsUsage: "<scene> [scene...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     planFlagOutDir,
						Usage:    "write one path CSV per scene into `DIR`",
						Required: true,
					},
					&cli.IntFlag{
						Name:  planFlagJobs,
						Usage: "maximum scenes planned at once, 0 for one per CPU",
					},
				},
				Action: state.batchCommand,
			},
		},
	}
}

func (s *appState) before(c *cli.Context) error {
	level := logging.INFO
	if c.Bool(generalFlagDebug) {
		level = logging.DEBUG
	}
	s.registry = logging.NewRegistry()
	s.logger = s.registry.NewLogger(defaultRootName, level)

	var patterns []logging.LevelPattern
	for _, arg := range c.StringSlice(generalFlagLogLevel) {
		lp, err := logging.ParseLevelPattern(arg)
		if err != nil {
			return errors.Wrapf(err, "--%s", generalFlagLogLevel)
		}
		patterns = append(patterns, lp)
	}
	if err := s.registry.SetPatterns(patterns); err != nil {
		return err
	}

	if file := c.String(generalFlagLogFile); file != "" {
		s.logFile = logging.NewFileAppender(file, logFileMaxSize, logFileBackups)
		s.logger.AddAppender(s.logFile)
	}
	return nil
}

func (s *appState) after(c *cli.Context) error {
	if s.logger == nil {
		return nil
	}
	utils.UncheckedError(s.logger.Sync())
	if s.logFile != nil {
		return multierr.Combine(s.logFile.Sync(), s.logFile.Close())
	}
	return nil
}
