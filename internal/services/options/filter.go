package options

import (
	"math"
	"time"

	"OptionPilot/internal/domain/models"
	"OptionPilot/pkg/util"
)

// Bounds is the eligibility window of one risk profile. All bounds are inclusive.
type Bounds struct {
	MinDelta        float64
	MaxDelta        float64
	MinDTE          int
	MaxDTE          int
	MinOpenInterest int64   // 0 disables the check
	MaxSpreadPct    float64 // +Inf disables the check
}

// ProfileBounds is the only eligibility table.
var ProfileBounds = map[models.RiskProfile]Bounds{
	models.RiskConservative: {MinDelta: 0.20, MaxDelta: 0.40, MinDTE: 30, MaxDTE: 60, MinOpenInterest: 1000, MaxSpreadPct: 0.005},
	models.RiskNeutral:      {MinDelta: 0.30, MaxDelta: 0.50, MinDTE: 21, MaxDTE: 45, MinOpenInterest: 500, MaxSpreadPct: math.Inf(1)},
	models.RiskAggressive:   {MinDelta: 0.45, MaxDelta: 0.65, MinDTE: 7, MaxDTE: 30, MinOpenInterest: 0, MaxSpreadPct: 0.015},
}

// DaysToExpiry returns whole days from now to expiry, floored at 0.
// The second value is false when expiry does not parse.
func DaysToExpiry(expiry string, now time.Time) (int, bool) {
	t, ok := util.ParseDate(expiry)
	if !ok {
		return 0, false
	}
	d := util.DaysBetween(now.UTC(), t)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Passes reports whether c is eligible for the profile at time now.
// Unknown profiles and unparseable expiries never pass.
func Passes(c models.ContractCandidate, profile models.RiskProfile, now time.Time) bool {
	b, ok := ProfileBounds[profile]
	if !ok {
		return false
	}
	dte, ok := DaysToExpiry(c.Expiry, now)
	if !ok {
		return false
	}
	if !(b.MinDelta <= c.Delta && c.Delta <= b.MaxDelta) {
		return false
	}
	if dte < b.MinDTE || dte > b.MaxDTE {
		return false
	}
	if b.MinOpenInterest > 0 && c.OpenInterest < b.MinOpenInterest {
		return false
	}
	if !(c.SpreadPct <= b.MaxSpreadPct) {
		return false
	}
	return true
}

// FilterEligible keeps the candidates passing the profile, in input order.
func FilterEligible(cands []models.ContractCandidate, profile models.RiskProfile, now time.Time) []models.ContractCandidate {
	out := make([]models.ContractCandidate, 0, len(cands))
	for _, c := range cands {
		if Passes(c, profile, now) {
			out = append(out, c)
		}
	}
	return out
}
