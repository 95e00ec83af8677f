package backoff

import (
	"math"
	"time"
)

// Delay computes the pause taken before retrying a failed attempt:
// min(max, floor(base * multiplier^attemptIndex)), where attemptIndex is
// zero-based. For multiplier >= 1 the result is non-decreasing in
// attemptIndex and never exceeds maxMs.
func Delay(attemptIndex int, baseMs int64, multiplier float64, maxMs int64) time.Duration {
	if attemptIndex < 0 {
		attemptIndex = 0
	}
	scaled := float64(baseMs) * math.Pow(multiplier, float64(attemptIndex))
	if scaled >= float64(maxMs) {
		return time.Duration(maxMs) * time.Millisecond
	}
	return time.Duration(int64(math.Floor(scaled))) * time.Millisecond
}
