package motionplan

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/tdcr/kinematics"
)

// PlanState is the state of a path generation run.
type PlanState int

const (
	// Seeking means the tip has not yet reached the target.
	Seeking PlanState = iota
	// Succeeded means the last accepted step put the tip inside the target.
	Succeeded
	// Exhausted means MaxIter steps were accepted without reaching the target.
	Exhausted
	// Stalled means a step could not be solved, even after one perturbed retry.
	Stalled
)

func (s PlanState) String() string {
	switch s {
	case Seeking:
		return "seeking"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case Stalled:
		return "stalled"
	}
	return "PlanState(" + strconv.Itoa(int(s)) + ")"
}

// Terminal returns whether no further steps follow this state.
func (s PlanState) Terminal() bool {
	return s != Seeking
}

// PathStep is one accepted configuration: enough to replay or resume it.
type PathStep struct {
	Length      float64
	Tendon      float64
	Curvature   []float64
	GoalReached bool
}

// Configuration rebuilds an unsolved configuration for the step, seeded with its curvature.
func (s PathStep) Configuration(robot *kinematics.Robot) (*kinematics.Configuration, error) {
	cfg, err := kinematics.NewConfiguration(robot, s.Length, s.Tendon)
	if err != nil {
		return nil, err
	}
	if err := cfg.SetInitialGuess(s.Curvature); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path is the ordered log of accepted steps.
type Path []PathStep

// Last returns the final step. It panics on an empty path.
func (p Path) Last() PathStep {
	return p[len(p)-1]
}

// String prints a table of the path, one row per step.
func (p Path) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Length", "Tendon", "Curvature", "Goal"})
	for i, step := range p {
		goal := ""
		if step.GoalReached {
			goal = "*"
		}
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.6g", step.Length),
			fmt.Sprintf("%.6g", step.Tendon),
			fmt.Sprintf("%.4g", step.Curvature),
			goal,
		})
	}
	return t.Render()
}

// PlanResult is the outcome of GeneratePath. Path is retained in every state.
type PlanResult struct {
	State PlanState
	Path  Path

	// Final is the solved configuration of the last accepted step, or nil when none was accepted.
	Final *kinematics.Configuration

	// LastError is the solver failure that stalled planning.
	LastError error
}
