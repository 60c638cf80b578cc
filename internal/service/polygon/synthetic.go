package polygon

import (
	"context"
	"math"
	"sync"
	"time"

	"OptionPilot/internal/domain/models"
	drepo "OptionPilot/internal/domain/repository"
	"OptionPilot/pkg/util"
)

// syntheticExpiryDays is how far out generated contracts expire.
const syntheticExpiryDays = 30

// SyntheticStream emits generated aggregates and option quotes on a ticker.
// It stands in for the live feed when no API key is configured.
type SyntheticStream struct {
	symbols  []string
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	connected bool
	tick      int
}

// NewSynthetic creates a synthetic QuoteStream.
func NewSynthetic(symbols []string, interval time.Duration) *SyntheticStream {
	if interval <= 0 {
		interval = time.Second
	}
	return &SyntheticStream{symbols: symbols, interval: interval, now: time.Now}
}

func (s *SyntheticStream) Connect(context.Context) error {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

func (s *SyntheticStream) Subscribe(context.Context) error { return nil }

func (s *SyntheticStream) Read(ctx context.Context) (<-chan models.MarketEvent, <-chan error) {
	events := make(chan models.MarketEvent, 256)
	errs := make(chan error)

	go func() {
		defer close(events)
		defer close(errs)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, e := range s.Generate() {
					select {
					case events <- e:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return events, errs
}

// Generate produces one round of events for every symbol.
func (s *SyntheticStream) Generate() []models.MarketEvent {
	s.mu.Lock()
	s.tick++
	tick := s.tick
	s.mu.Unlock()

	now := s.now().UTC()
	expiry := util.MidnightUTC(now).AddDate(0, 0, syntheticExpiryDays)
	out := make([]models.MarketEvent, 0, len(s.symbols)*4)
	for _, sym := range s.symbols {
		sym = util.NormalizeSymbol(sym)
		spot := 100 * (1 + 0.01*math.Sin(float64(tick)/10))
		out = append(out, models.MarketEvent{Kind: models.EventEquityAggregate, Aggregate: &models.EquityAggregate{
			Symbol:    sym,
			Open:      round2(spot - 0.5),
			Close:     round2(spot),
			High:      round2(spot + 1),
			Low:       round2(spot - 1),
			Volume:    1000,
			Vwap:      round2(spot + 0.5),
			Timestamp: now,
		}})

		atm := math.Round(spot/5) * 5
		for i, strike := range []float64{atm - 5, atm, atm + 5} {
			intrinsic := math.Max(spot-strike, 0)
			bid := round2(intrinsic + 1.2 + 0.1*float64(2-i))
			q := NormalizeOptionQuote(models.OptionQuote{
				Symbol:    Contract{Underlying: sym, Expiry: expiry, Right: "C", Strike: strike}.Display(),
				Bid:       bid,
				Ask:       round2(bid + 0.2),
				BidSize:   10,
				AskSize:   12,
				Timestamp: now,
			})
			out = append(out, models.MarketEvent{Kind: models.EventOptionQuote, Quote: &q})
		}
	}
	return out
}

func (s *SyntheticStream) Reconnect(ctx context.Context) error { return s.Connect(ctx) }

func (s *SyntheticStream) Close() error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

func (s *SyntheticStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ drepo.QuoteStream = (*SyntheticStream)(nil)
