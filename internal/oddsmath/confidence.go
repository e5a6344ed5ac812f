package oddsmath

// Confidence bases per risk band. Low-risk slips carry high confidence,
// high-risk slips low, mid-range sits between.
const (
	confidenceBaseSafe     = 85
	confidenceBaseBalanced = 75
	confidenceBaseRisky    = 65

	confidenceMin = 50
	confidenceMax = 95

	// jitterSpan is the width of the random wobble applied to the base.
	jitterSpan = 10
)

// Rand is the randomness source for confidence jitter. Injectable so tests
// can fix the value.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// Confidence derives a confidence score for a parlay at the given risk
// level: a risk-banded base plus a small jitter, clamped to [50, 95].
func Confidence(riskLevel int, rng Rand) int {
	base := confidenceBaseBalanced
	switch {
	case riskLevel <= 3:
		base = confidenceBaseSafe
	case riskLevel >= 8:
		base = confidenceBaseRisky
	}

	jitter := 0
	if rng != nil {
		jitter = int(rng.Float64()*jitterSpan) - jitterSpan/2
	}

	c := base + jitter
	if c < confidenceMin {
		c = confidenceMin
	}
	if c > confidenceMax {
		c = confidenceMax
	}
	return c
}
