package rules

import "math"

// Monetary amounts arrive as float64 with sub-cent noise from upstream type
// conversions. Every amount comparison in the catalogue goes through these
// helpers; raw ==/> on amounts is a defect.

const defaultTolerance = 0.01

// Round2 rounds to 2 decimals, the resolution of all monetary fields.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundedGreater reports whether a > b after rounding both to 2 decimals.
func RoundedGreater(a, b float64) bool {
	return Round2(a) > Round2(b)
}

// IsClose reports whether a and b are equal within the cent tolerance.
func IsClose(a, b float64) bool {
	return math.Abs(a-b) <= defaultTolerance
}
