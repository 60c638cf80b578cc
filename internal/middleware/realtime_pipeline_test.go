package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
	"OptionPilot/pkg/metrics"
)

type recordingProc struct {
	mu   sync.Mutex
	fail bool
	got  []models.MarketEvent
}

func (r *recordingProc) Publish(_ context.Context, e models.MarketEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("broker down")
	}
	r.got = append(r.got, e)
	return nil
}

func (r *recordingProc) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func quoteEvent(sym string) models.MarketEvent {
	return models.MarketEvent{Kind: models.EventOptionQuote, Quote: &models.NormalizedOptionQuote{
		Symbol: sym, Underlying: "AAPL", Bid: 1, Ask: 1.2, Mid: 1.1, SpreadPct: 0.18, Timestamp: time.Now(),
	}}
}

func TestPipelineThrottlesPerContract(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, metrics.Nop{}, WithMaxRPS(1))
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, quoteEvent("AAPL 2026-04-17 150C")))
	require.NoError(t, p.Process(ctx, quoteEvent("AAPL 2026-04-17 150C")))
	require.NoError(t, p.Process(ctx, quoteEvent("AAPL 2026-04-17 155C")))

	assert.Equal(t, 2, proc.count())
}

func TestPipelineRejectsInvalid(t *testing.T) {
	p := NewRealtimePipeline(&recordingProc{}, metrics.Nop{})
	ctx := context.Background()

	assert.Error(t, p.Process(ctx, models.MarketEvent{Kind: "trade"}))
	assert.Error(t, p.Process(ctx, models.MarketEvent{Kind: models.EventOptionQuote}))

	bad := quoteEvent("X")
	bad.Quote.Bid = -1
	assert.Error(t, p.Process(ctx, bad))

	agg := models.MarketEvent{Kind: models.EventEquityAggregate, Aggregate: &models.EquityAggregate{Symbol: "AAPL"}}
	assert.Error(t, p.Process(ctx, agg))
}

func TestPipelineBuffersAndFlushes(t *testing.T) {
	proc := &recordingProc{fail: true}
	p := NewRealtimePipeline(proc, metrics.Nop{}, WithBufferSize(4))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := p.Process(ctx, quoteEvent("AAPL 2026-04-17 150C"))
	require.Error(t, err)
	assert.Equal(t, 1, p.Buffered())

	proc.mu.Lock()
	proc.fail = false
	proc.mu.Unlock()

	p.Start(ctx)
	defer p.Stop()

	assert.Eventually(t, func() bool { return proc.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}
