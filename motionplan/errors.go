package motionplan

import "github.com/pkg/errors"

var (
	// ErrNoTarget is returned when planning is requested without a target in the taskspace.
	ErrNoTarget = errors.New("taskspace has no target to plan toward")

	// ErrClearanceViolated is recorded when a solved step comes closer to a weighted obstacle than
	// its margin allows.
	ErrClearanceViolated = errors.New("solved configuration violates obstacle clearance")
)

func newClearanceError(ids []string) error {
	return errors.Wrapf(ErrClearanceViolated, "obstacles %v", ids)
}
