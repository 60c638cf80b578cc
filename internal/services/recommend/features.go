package recommend

import (
	"errors"
	"strings"

	"OptionPilot/internal/domain/models"
	"OptionPilot/pkg/util"
)

// ErrEmptyUniverse aborts a recommendation when no contract is available.
var ErrEmptyUniverse = errors.New("empty contract universe")

// FeatureVector is the model input. Values() fixes the positional order the
// model was trained on; never reorder the fields there.
type FeatureVector struct {
	Liquidity            float64 // liquidity_score / 100
	IVRank               float64
	Sentiment            float64
	RiskBias             float64
	ExternalLiquidity    float64 // raw store score, scaled in Values
	ExternalOpenInterest float64 // raw store average, scaled in Values
}

// Values returns [liquidity_norm, iv_rank, sentiment, risk_bias, ext_liquidity/100, ext_oi/1000].
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.Liquidity,
		f.IVRank,
		f.Sentiment,
		f.RiskBias,
		f.ExternalLiquidity / 100,
		f.ExternalOpenInterest / 1000,
	}
}

// Mean is the naive score used when no model is available.
func (f FeatureVector) Mean() float64 {
	vals := f.Values()
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

var riskBias = map[string]float64{
	string(models.RiskConservative): 0.4,
	string(models.RiskNeutral):      0.5,
	string(models.RiskAggressive):   0.6,
}

// RiskBias maps a declared profile to its capital-risk weight. Unknown profiles get neutral.
func RiskBias(profile string) float64 {
	if b, ok := riskBias[profile]; ok {
		return b
	}
	return riskBias[string(models.RiskNeutral)]
}

// BuildFeatures assembles the vector for a contract. Missing external features
// fall back to the contract's own liquidity score.
func BuildFeatures(c models.ContractCandidate, signals models.SignalSnapshot, profile string, ext models.LiquidityFeatures) FeatureVector {
	own := float64(c.LiquidityScore)
	extLiquidity, extOI := own, own
	if ext.LiquidityScore != nil {
		extLiquidity = *ext.LiquidityScore
	}
	if ext.AvgOpenInterest != nil {
		extOI = *ext.AvgOpenInterest
	}
	return FeatureVector{
		Liquidity:            own / 100,
		IVRank:               signals.IVRank,
		Sentiment:            signals.SentimentScore,
		RiskBias:             RiskBias(profile),
		ExternalLiquidity:    extLiquidity,
		ExternalOpenInterest: extOI,
	}
}

// SelectByLiquidity returns the contract with the highest raw liquidity score;
// the earliest wins on ties. This is deliberately not the composite screening score.
func SelectByLiquidity(cands []models.ContractCandidate) (models.ContractCandidate, error) {
	if len(cands) == 0 {
		return models.ContractCandidate{}, ErrEmptyUniverse
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.LiquidityScore > best.LiquidityScore {
			best = c
		}
	}
	return best, nil
}

// FeatureKeyFor maps a contract to its feature-store key. The store is keyed
// by underlying, so the display symbol "AAPL 2026-04-17 150C" yields "AAPL".
func FeatureKeyFor(c models.ContractCandidate) models.FeatureKey {
	underlying := c.Symbol
	if f := strings.Fields(c.Symbol); len(f) > 0 {
		underlying = f[0]
	}
	expiry := c.Expiry
	if t, ok := util.ParseDate(c.Expiry); ok {
		expiry = t.Format("2006-01-02")
	}
	return models.FeatureKey{Symbol: util.NormalizeSymbol(underlying), Expiry: expiry, Strike: c.Strike}
}
