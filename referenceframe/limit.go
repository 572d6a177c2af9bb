// Package referenceframe describes the workspace a continuum robot plans in: the obstacles it must
// keep clear of, the target it should reach, and the bounds on its actuation.
package referenceframe

import (
	"math"

	"go.viam.com/tdcr/utils"
)

// Limit represents the limits of motion for a single degree of freedom.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Unbounded is a limit that admits every finite value.
var Unbounded = Limit{Min: math.Inf(-1), Max: math.Inf(1)}

// Clamp restricts v to the limit.
func (l Limit) Clamp(v float64) float64 {
	return utils.Clamp(v, l.Min, l.Max)
}

// Contains returns whether v is within the limit, inclusive.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Valid returns whether Min <= Max.
func (l Limit) Valid() bool {
	return l.Min <= l.Max
}
