package recommend

import (
	"math"

	"OptionPilot/internal/domain/models"
)

// MaxConfidence is the upper bound of a reported confidence.
const MaxConfidence = 0.99

// DefaultRules are evaluated in order; the first met threshold wins.
var DefaultRules = []models.StrategyRule{
	{Name: "LONG_CALL", Direction: "CALL", MinConfidence: 0.55},
	{Name: "LONG_PUT", Direction: "PUT", MinConfidence: 0.55},
	{Name: "BULL_CALL_SPREAD", Direction: "CALL", MinConfidence: 0.5},
}

// ClampConfidence bounds a raw prediction to [0, MaxConfidence]. NaN maps to 0.
func ClampConfidence(raw float64) float64 {
	if math.IsNaN(raw) || raw < 0 {
		return 0
	}
	if raw > MaxConfidence {
		return MaxConfidence
	}
	return raw
}

// SelectRule returns the first rule whose threshold confidence meets,
// or the first rule when none does. rules must not be empty.
func SelectRule(rules []models.StrategyRule, confidence float64) models.StrategyRule {
	for _, r := range rules {
		if confidence >= r.MinConfidence {
			return r
		}
	}
	return rules[0]
}
