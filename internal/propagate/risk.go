package propagate

// RiskLevel is a fixed-threshold bucketing of a continuous impact score.
type RiskLevel string

const (
	// RiskCritical for scores >= 0.85
	RiskCritical RiskLevel = "critical"
	// RiskHigh for scores >= 0.6
	RiskHigh RiskLevel = "high"
	// RiskMedium for scores >= 0.3
	RiskMedium RiskLevel = "medium"
	// RiskLow for everything below
	RiskLow RiskLevel = "low"
)

// Thresholds are fixed constants, not configurable per call. Callers
// needing different buckets re-bucket the raw score themselves.
const (
	criticalThreshold = 0.85
	highThreshold     = 0.6
	mediumThreshold   = 0.3
)

// HelperBump is the fixed additive risk bump applied when helper code is
// involved. Additive rather than multiplicative so already-high scores do
// not saturate while borderline repositories are promoted past a
// threshold.
const HelperBump = 0.15

// RiskOf buckets a score into a risk level.
func RiskOf(score float64) RiskLevel {
	switch {
	case score >= criticalThreshold:
		return RiskCritical
	case score >= highThreshold:
		return RiskHigh
	case score >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}
