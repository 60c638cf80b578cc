package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
	"OptionPilot/pkg/cache"
)

type countingLookup struct {
	calls int
	err   error
	score float64
}

func (c *countingLookup) Lookup(context.Context, models.FeatureKey) (models.LiquidityFeatures, error) {
	c.calls++
	if c.err != nil {
		return models.LiquidityFeatures{}, c.err
	}
	s := c.score
	return models.LiquidityFeatures{LiquidityScore: &s}, nil
}

func TestCachedFeatureLookupHitsUntilExpiry(t *testing.T) {
	next := &countingLookup{score: 0.7}
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	c := NewCachedFeatureLookup(next, time.Minute, cache.WithClock(func() time.Time { return now }))
	defer c.Close()
	key := models.FeatureKey{Symbol: "AAPL", Expiry: "2026-04-17", Strike: 150}

	for i := 0; i < 3; i++ {
		got, err := c.Lookup(context.Background(), key)
		require.NoError(t, err)
		require.NotNil(t, got.LiquidityScore)
		assert.InDelta(t, 0.7, *got.LiquidityScore, 1e-9)
	}
	assert.Equal(t, 1, next.calls)

	_, err := c.Lookup(context.Background(), models.FeatureKey{Symbol: "AAPL", Expiry: "2026-04-17", Strike: 155})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	now = now.Add(2 * time.Minute)
	_, err = c.Lookup(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestCachedFeatureLookupSkipsErrors(t *testing.T) {
	next := &countingLookup{err: errors.New("clickhouse down")}
	c := NewCachedFeatureLookup(next, time.Minute)
	defer c.Close()
	key := models.FeatureKey{Symbol: "SPY"}

	_, err := c.Lookup(context.Background(), key)
	require.Error(t, err)
	_, err = c.Lookup(context.Background(), key)
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedFeatureLookupDisabled(t *testing.T) {
	next := &countingLookup{score: 0.1}
	c := NewCachedFeatureLookup(next, 0)
	key := models.FeatureKey{Symbol: "MSFT"}

	_, _ = c.Lookup(context.Background(), key)
	_, _ = c.Lookup(context.Background(), key)
	assert.Equal(t, 2, next.calls)
}

func TestCachedFeatureLookupIsBounded(t *testing.T) {
	next := &countingLookup{score: 0.5}
	c := NewCachedFeatureLookup(next, time.Hour, cache.WithMaxSize(3))
	defer c.Close()

	for i := 0; i < 50; i++ {
		_, err := c.Lookup(context.Background(), models.FeatureKey{Symbol: "AAPL", Expiry: "2026-04-17", Strike: float64(100 + i)})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 50, next.calls)

	// the most recent strike is still held
	_, err := c.Lookup(context.Background(), models.FeatureKey{Symbol: "AAPL", Expiry: "2026-04-17", Strike: 149})
	require.NoError(t, err)
	assert.Equal(t, 50, next.calls)
}
