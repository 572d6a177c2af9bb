// Package motionplan steers a tendon-driven continuum robot's tip into a target by stepping its
// (segment length, tendon displacement) command and solving the shape at every step.
package motionplan

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/tdcr/kinematics"
	"go.viam.com/tdcr/logging"
	"go.viam.com/tdcr/motionplan/ik"
	"go.viam.com/tdcr/referenceframe"
	"go.viam.com/tdcr/utils"
)

// PlanRequest is the input to GeneratePath. Start is cloned and never modified. Taskspace must
// not be mutated while planning runs.
type PlanRequest struct {
	Robot     *kinematics.Robot
	Start     *kinematics.Configuration
	Taskspace *referenceframe.Taskspace
	Options   *PlannerOptions
	Logger    logging.Logger
}

func (req *PlanRequest) validate() error {
	if req.Robot == nil {
		return errors.New("PlanRequest cannot have nil robot")
	}
	if req.Start == nil {
		return errors.New("PlanRequest cannot have nil start configuration")
	}
	if req.Taskspace == nil {
		return errors.New("PlanRequest cannot have nil taskspace")
	}
	if req.Taskspace.Target() == nil {
		return ErrNoTarget
	}
	if err := req.Start.Validate(req.Robot); err != nil {
		return err
	}
	if req.Options == nil {
		req.Options = NewDefaultPlannerOptions()
	}
	if req.Logger == nil {
		req.Logger = logging.NewBlankLogger("motionplan")
	}
	return req.Options.Validate()
}

// GeneratePath steps the start configuration toward the taskspace target.
//
// Each step takes a damped least-squares move in (length, tendon) that reduces the tip error of
// the uniform-curvature model, limits it to MaxLengthStep/MaxTendonStep, clamps it to the
// configured limits and solves the new command with clearance enforced, seeded from the previous
// curvature. A step whose solve fails or whose backbone curve comes within Margin-Slack of a weighted
// obstacle is retried once from a perturbed seed; a second failure stalls the plan.
//
// Precondition failures return a nil result. Cancellation returns the partial result along with
// ctx.Err(). Every other outcome is reported through PlanResult.State with a nil error.
func GeneratePath(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	if req == nil {
		return nil, errors.New("cannot generate a path from a nil request")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	opts := req.Options
	solver, err := ik.NewSolver(opts.Method, opts.Solver, req.Logger.Sublogger("ik"))
	if err != nil {
		return nil, err
	}
	pm := &planner{
		robot:  req.Robot,
		ts:     req.Taskspace,
		target: req.Taskspace.Target(),
		opts:   opts,
		solver: solver,
		logger: req.Logger,
	}
	return pm.run(ctx, req.Start.Clone())
}

type planner struct {
	robot  *kinematics.Robot
	ts     *referenceframe.Taskspace
	target *referenceframe.Target
	opts   *PlannerOptions
	solver ik.Solver
	logger logging.Logger
}

func (pm *planner) run(ctx context.Context, current *kinematics.Configuration) (*PlanResult, error) {
	result := &PlanResult{State: Seeking}
	seed := current.Curvature()

	for len(result.Path) < pm.opts.MaxIter {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		length, tendon, err := pm.nextCommand(current)
		if err != nil {
			return result, err
		}
		solved, err := pm.attempt(ctx, current, length, tendon, seed)
		if err != nil && isStepFailure(err) {
			pm.logger.Debugw("step failed, retrying from perturbed seed", "step", len(result.Path), "error", err)
			solved, err = pm.attempt(ctx, current, length, tendon, pm.perturb(seed))
		}
		if err != nil {
			if !isStepFailure(err) {
				return result, err
			}
			result.State = Stalled
			result.LastError = err
			pm.logger.Infow("planning stalled", "steps", len(result.Path), "error", err)
			return result, nil
		}

		current = solved
		seed = solved.Curvature()
		tip, err := solved.Tip()
		if err != nil {
			return result, err
		}
		step := PathStep{Length: length, Tendon: tendon, Curvature: seed}
		if pm.target.Reached(tip) {
			step.GoalReached = true
		}
		result.Path = append(result.Path, step)
		result.Final = solved
		pm.logger.Debugw("accepted step",
			"step", len(result.Path)-1,
			"length", length,
			"tendon", tendon,
			"tip_error", tip.Sub(pm.target.Center()).Norm(),
		)
		if step.GoalReached {
			result.State = Succeeded
			pm.logger.Infow("target reached", "steps", len(result.Path))
			return result, nil
		}
	}
	result.State = Exhausted
	pm.logger.Infow("planning exhausted", "steps", len(result.Path))
	return result, nil
}

// attempt solves the command from seed and verifies clearance with slack.
func (pm *planner) attempt(
	ctx context.Context,
	from *kinematics.Configuration,
	length, tendon float64,
	seed []float64,
) (*kinematics.Configuration, error) {
	cfg := from.Clone()
	cfg.SetCommand(length, tendon)
	if err := cfg.SetInitialGuess(seed); err != nil {
		return nil, err
	}
	res, err := ik.Solve(ctx, pm.solver, pm.robot, cfg, pm.ts, true)
	if err != nil {
		return nil, err
	}
	arcs, err := res.Configuration.Arcs(pm.robot, res.Configuration.Curvature())
	if err != nil {
		return nil, err
	}
	if ids := pm.ts.ClearanceViolations(arcs, pm.opts.Slack); len(ids) > 0 {
		return nil, newClearanceError(ids)
	}
	return res.Configuration, nil
}

// perturb returns seed with +p added to even segments and -p to odd ones.
func (pm *planner) perturb(seed []float64) []float64 {
	out := make([]float64, len(seed))
	for i, k := range seed {
		if i%2 == 0 {
			out[i] = k + pm.opts.RetryPerturbation
		} else {
			out[i] = k - pm.opts.RetryPerturbation
		}
	}
	return out
}

// nextCommand returns the (length, tendon) command of the next step.
func (pm *planner) nextCommand(current *kinematics.Configuration) (float64, float64, error) {
	length, tendon := current.Length(), current.Tendon()
	tip, err := current.Tip()
	if err != nil {
		// unsolved start: use the uniform-curvature model
		if tip, err = pm.modelTip(current, length, tendon); err != nil {
			return 0, 0, err
		}
	}
	tipErr := pm.target.Center().Sub(tip)

	jac, err := pm.tipJacobian(current, length, tendon)
	if err != nil {
		return 0, 0, err
	}
	dLength, dTendon := dampedStep(jac, tipErr, pm.opts.StepDamping)

	scale := 1.
	if a := math.Abs(dLength); a > pm.opts.MaxLengthStep {
		scale = math.Min(scale, pm.opts.MaxLengthStep/a)
	}
	if a := math.Abs(dTendon); a > pm.opts.MaxTendonStep {
		scale = math.Min(scale, pm.opts.MaxTendonStep/a)
	}
	// a start outside the limits walks back in at the step bounds
	nextLength := pm.opts.LengthLimit.Clamp(length + scale*dLength)
	nextTendon := pm.opts.TendonLimit.Clamp(tendon + scale*dTendon)
	nextLength = length + utils.Clamp(nextLength-length, -pm.opts.MaxLengthStep, pm.opts.MaxLengthStep)
	nextTendon = tendon + utils.Clamp(nextTendon-tendon, -pm.opts.MaxTendonStep, pm.opts.MaxTendonStep)
	return nextLength, nextTendon, nil
}

// modelTip is the world-frame tip of cfg's base with every segment bent equally for the command.
func (pm *planner) modelTip(cfg *kinematics.Configuration, length, tendon float64) (r3.Vector, error) {
	model := cfg.Clone()
	model.SetCommand(length, tendon)
	pts, err := model.Backbone(pm.robot, pm.robot.UniformCurvature(length, tendon))
	if err != nil {
		return r3.Vector{}, err
	}
	return pts[len(pts)-1], nil
}

// tipJacobian is the 3x2 central difference Jacobian of modelTip in (length, tendon).
func (pm *planner) tipJacobian(cfg *kinematics.Configuration, length, tendon float64) (*mat.Dense, error) {
	jac := mat.NewDense(3, 2, nil)
	steps := [2]float64{defaultLengthDiffStep, defaultTendonDiffStep}
	for j, h := range steps {
		var dl, dt float64
		if j == 0 {
			dl = h
		} else {
			dt = h
		}
		plus, err := pm.modelTip(cfg, length+dl, tendon+dt)
		if err != nil {
			return nil, err
		}
		minus, err := pm.modelTip(cfg, length-dl, tendon-dt)
		if err != nil {
			return nil, err
		}
		d := plus.Sub(minus).Mul(1 / (2 * h))
		jac.SetCol(j, []float64{d.X, d.Y, d.Z})
	}
	return jac, nil
}

// dampedStep solves (J^T J + lambda^2 I) x = J^T e.
func dampedStep(jac *mat.Dense, e r3.Vector, lambda float64) (float64, float64) {
	var normal mat.SymDense
	normal.SymOuterK(1, jac.T())
	for i := 0; i < 2; i++ {
		normal.SetSym(i, i, normal.At(i, i)+lambda*lambda)
	}
	var rhs mat.VecDense
	rhs.MulVec(jac.T(), mat.NewVecDense(3, []float64{e.X, e.Y, e.Z}))

	var x mat.VecDense
	if err := x.SolveVec(&normal, &rhs); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return 0, 0
		}
	}
	return x.AtVec(0), x.AtVec(1)
}

// isStepFailure reports whether err should count against the step rather than abort planning.
func isStepFailure(err error) bool {
	return ik.IsNumericalFailure(err) || errors.Is(err, ErrClearanceViolated)
}
