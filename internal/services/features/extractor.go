package features

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"OptionPilot/internal/domain/models"
)

// Saturation points of the liquidity components.
const (
	oiSaturation     = 10000.0
	volumeSaturation = 3000.0
	spreadCeiling    = 0.25
)

// LiquidityScore blends open interest, volume and spread into 0..100.
// OI and volume are log-scaled and saturate; a spread at or above the
// ceiling contributes nothing.
func LiquidityScore(avgOI, avgVolume, avgSpreadPct float64) float64 {
	oi := logShare(avgOI, oiSaturation)
	vol := logShare(avgVolume, volumeSaturation)
	spread := 1 - clamp(avgSpreadPct/spreadCeiling, 0, 1)
	if math.IsNaN(avgSpreadPct) {
		spread = 0
	}
	return round2(100 * (0.4*oi + 0.3*vol + 0.3*spread))
}

// IVRank places last within [lo, hi] as 0..1. A flat range yields 0.
func IVRank(last, lo, hi float64) float64 {
	if !(hi > lo) {
		return 0
	}
	return round4(clamp((last-lo)/(hi-lo), 0, 1))
}

// Build derives the feature row of one contract history.
func Build(h models.ContractHistory, asOf time.Time) models.FeatureRow {
	return models.FeatureRow{
		Key:             h.Key,
		LiquidityScore:  LiquidityScore(h.AvgOpenInterest, h.AvgVolume, h.AvgSpreadPct),
		AvgOpenInterest: round2(h.AvgOpenInterest),
		AvgVolume:       round2(h.AvgVolume),
		IVRank:          IVRank(h.IVLast, h.IVMin, h.IVMax),
		AsOf:            asOf.UTC(),
	}
}

// BuildAll derives rows for every history with at least minSamples snapshots.
func BuildAll(hs []models.ContractHistory, minSamples int64, asOf time.Time) []models.FeatureRow {
	out := make([]models.FeatureRow, 0, len(hs))
	for _, h := range hs {
		if h.Samples < minSamples {
			continue
		}
		out = append(out, Build(h, asOf))
	}
	return out
}

func logShare(v, saturation float64) float64 {
	if !(v > 0) {
		return 0
	}
	return clamp(math.Log1p(v)/math.Log1p(saturation), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func round4(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(4).Float64()
	return f
}
