package grading

import "math"

// PassThreshold is the rounded accuracy percentage at which a module counts
// as completed and unlocks its successor.
const PassThreshold = 90

// Percent converts a raw score into a rounded 0..100 percentage.
// total must be positive; callers exclude total<=0 records before scoring.
func Percent(score, total int) int {
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Passing reports whether a rounded percentage meets the completion bar.
// Rounding happens in Percent, before this comparison: an 89.6% raw accuracy
// rounds to 90 and passes.
func Passing(pct int) bool { return pct >= PassThreshold }

// ValidAttempt reports whether a score/total pair may contribute to a best
// score. total==0 records guard against division by zero and are excluded.
func ValidAttempt(score, total int) bool { return total > 0 && score >= 0 }
