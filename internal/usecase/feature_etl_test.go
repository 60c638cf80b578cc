package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
	"OptionPilot/pkg/metrics"
)

func history() []models.ContractHistory {
	return []models.ContractHistory{
		{Key: models.FeatureKey{Symbol: "AAPL", Expiry: "2026-04-17", Strike: 150}, Samples: 12, AvgOpenInterest: 1500, AvgVolume: 300, AvgSpreadPct: 0.01, IVLast: 0.3, IVMin: 0.2, IVMax: 0.4},
		{Key: models.FeatureKey{Symbol: "AAPL", Expiry: "2026-04-17", Strike: 155}, Samples: 1, AvgOpenInterest: 10},
	}
}

func newTestETL(store *stubMaterializer, opts ...FeatureETLOption) *FeatureETL {
	e := NewFeatureETL(store, metrics.Nop{}, append([]FeatureETLOption{WithMinSamples(3)}, opts...)...)
	e.now = fixedClock
	return e
}

func TestFeatureETLRunOnce(t *testing.T) {
	store := &stubMaterializer{history: history()}
	n, err := newTestETL(store, WithLookbackDays(7)).RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), n)
	assert.Equal(t, testNow.AddDate(0, 0, -7), store.since)
	require.Len(t, store.saved, 1)
	row := store.saved[0]
	assert.Equal(t, 150.0, row.Key.Strike)
	assert.Equal(t, 0.5, row.IVRank)
	assert.Equal(t, testNow, row.AsOf)
	assert.Greater(t, row.LiquidityScore, 0.0)
}

func TestFeatureETLRetriesOnce(t *testing.T) {
	store := &stubMaterializer{history: history(), histErr: []error{errors.New("timeout"), nil}}
	n, err := newTestETL(store, WithRetryDelay(0)).RunWithRetry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, store.histCalls)
}

func TestFeatureETLGivesUpAfterRetry(t *testing.T) {
	store := &stubMaterializer{histErr: []error{errors.New("a"), errors.New("b"), nil}}
	_, err := newTestETL(store, WithRetryDelay(0)).RunWithRetry(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, store.histCalls)
}

func TestFeatureETLRetryHonoursContext(t *testing.T) {
	store := &stubMaterializer{histErr: []error{errors.New("a")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestETL(store, WithRetryDelay(time.Hour)).RunWithRetry(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, store.histCalls)
}

func TestFeatureETLRunRejectsBadSchedule(t *testing.T) {
	err := newTestETL(&stubMaterializer{}, WithSchedule("not a cron")).Run(context.Background())
	assert.Error(t, err)
}

func TestFeatureETLRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, newTestETL(&stubMaterializer{}).Run(ctx))
}
