package models

import "time"

// ContractHistory aggregates the archived snapshots of one contract.
type ContractHistory struct {
	Key             FeatureKey
	Samples         int64
	AvgOpenInterest float64
	AvgVolume       float64
	AvgSpreadPct    float64
	IVLast          float64
	IVMin           float64
	IVMax           float64
}

// FeatureRow is one materialized row of the liquidity feature table.
type FeatureRow struct {
	Key             FeatureKey
	LiquidityScore  float64
	AvgOpenInterest float64
	AvgVolume       float64
	IVRank          float64
	AsOf            time.Time
}
