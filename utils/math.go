// Package utils contains small helpers shared across tdcr packages.
package utils

import "math"

// Clamp returns value limited to the closed interval [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// AllFinite reports whether no element of vals is NaN or infinite.
func AllFinite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
