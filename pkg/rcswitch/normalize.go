package rcswitch

import (
	"fmt"
	"math"
)

// NormalizeTime formats a duration in seconds with the best fitting unit (s, ms, µs, ns).
func NormalizeTime(t float64) string {
	switch a := math.Abs(t); {
	case a >= 1.0:
		return fmt.Sprintf("%.3f s", t)
	case a >= 0.001:
		return fmt.Sprintf("%.3f ms", t*1e3)
	case a >= 0.000001:
		return fmt.Sprintf("%.3f µs", t*1e6)
	case a >= 0.000000001:
		return fmt.Sprintf("%.3f ns", t*1e9)
	default:
		return fmt.Sprintf("%f", t)
	}
}
