package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
	mid "OptionPilot/internal/middleware"
	"OptionPilot/pkg/metrics"
)

// scriptedStream replays one batch of events per session, then fails the session.
type scriptedStream struct {
	mu         sync.Mutex
	sessions   [][]models.MarketEvent
	reconnects int
	connected  bool
	connectErr error
}

func (s *scriptedStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	return nil
}

func (s *scriptedStream) Subscribe(context.Context) error { return nil }

func (s *scriptedStream) Read(ctx context.Context) (<-chan models.MarketEvent, <-chan error) {
	s.mu.Lock()
	var batch []models.MarketEvent
	last := len(s.sessions) <= 1
	if len(s.sessions) > 0 {
		batch = s.sessions[0]
		s.sessions = s.sessions[1:]
	}
	s.mu.Unlock()

	events := make(chan models.MarketEvent, len(batch))
	errs := make(chan error, 1)
	for _, e := range batch {
		events <- e
	}
	go func() {
		defer close(events)
		defer close(errs)
		if last {
			<-ctx.Done()
			return
		}
		// let the batch drain before failing the session
		for len(events) > 0 {
			time.Sleep(time.Millisecond)
		}
		errs <- errors.New("socket closed")
	}()
	return events, errs
}

func (s *scriptedStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *scriptedStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

type collectingProc struct {
	mu  sync.Mutex
	got []string
}

func (p *collectingProc) Publish(_ context.Context, e models.MarketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e.Quote.Symbol)
	return nil
}

func (p *collectingProc) symbols() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.got...)
}

func quote(sym string) models.MarketEvent {
	return models.MarketEvent{Kind: models.EventOptionQuote, Quote: &models.NormalizedOptionQuote{
		Symbol: sym, Underlying: "AAPL", Bid: 1, Ask: 1.2, Mid: 1.1, SpreadPct: 0.18, Timestamp: testNow,
	}}
}

func TestQuoteCollectorForwardsAndReconnects(t *testing.T) {
	stream := &scriptedStream{sessions: [][]models.MarketEvent{
		{quote("AAPL 2026-04-17 150C"), quote("AAPL 2026-04-17 155C")},
		{quote("AAPL 2026-04-17 160C")},
	}}
	proc := &collectingProc{}
	pipe := mid.NewRealtimePipeline(proc, metrics.Nop{})
	c := NewQuoteCollector(stream, pipe, metrics.Nop{}, nil)
	assert.Equal(t, "quote-collector", c.Name())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return len(proc.symbols()) == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, c.IsConnected())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}

	assert.Equal(t, []string{"AAPL 2026-04-17 150C", "AAPL 2026-04-17 155C", "AAPL 2026-04-17 160C"}, proc.symbols())
	assert.Equal(t, 1, stream.reconnects)
	assert.False(t, c.IsConnected())
}

func TestQuoteCollectorConnectError(t *testing.T) {
	stream := &scriptedStream{connectErr: errors.New("refused")}
	c := NewQuoteCollector(stream, mid.NewRealtimePipeline(&collectingProc{}, metrics.Nop{}), metrics.Nop{}, nil)

	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "refused")
}
