package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
)

// Proc is the downstream the pipeline forwards accepted events to.
type Proc interface {
	Publish(ctx context.Context, e models.MarketEvent) error
}

// RealtimePipeline sits between the quote stream and Kafka. It validates,
// throttles per contract and buffers events while downstream is failing.
type RealtimePipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan models.MarketEvent
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	limits  map[string]*rate.Limiter
}

type PipelineOption func(*RealtimePipeline)

// WithMaxRPS sets the max events per second per contract or underlying.
func WithMaxRPS(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:    proc,
		metrics: metrics,
		maxRPS:  20,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
		limits:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.MarketEvent, p.bufSize)
	return p
}

// Start launches background flushing of buffered events.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case e := <-p.bufCh:
				if err := p.proc.Publish(ctx, e); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						return
					case <-ctx.Done():
						return
					}
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- e:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

// Buffered returns the number of events waiting for downstream.
func (p *RealtimePipeline) Buffered() int {
	return len(p.bufCh)
}

// Process validates, throttles and forwards e, buffering on downstream errors.
// Throttled events are dropped without error.
func (p *RealtimePipeline) Process(ctx context.Context, e models.MarketEvent) error {
	start := time.Now()
	if err := validateEvent(e); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(throttleKey(e)) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Publish(ctx, e); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- e:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEvent(e models.MarketEvent) error {
	switch e.Kind {
	case models.EventOptionQuote:
		q := e.Quote
		if q == nil {
			return fmt.Errorf("quote missing")
		}
		if q.Symbol == "" {
			return fmt.Errorf("symbol empty")
		}
		if q.Timestamp.IsZero() {
			return fmt.Errorf("timestamp invalid")
		}
		if q.Bid < 0 || q.Ask < 0 || q.BidSize < 0 || q.AskSize < 0 {
			return fmt.Errorf("negative bid/ask")
		}
		if !isFinite(q.Mid) || !isFinite(q.SpreadPct) {
			return fmt.Errorf("non-finite mid/spread")
		}
	case models.EventEquityAggregate:
		a := e.Aggregate
		if a == nil {
			return fmt.Errorf("aggregate missing")
		}
		if a.Symbol == "" {
			return fmt.Errorf("symbol empty")
		}
		if a.Timestamp.IsZero() {
			return fmt.Errorf("timestamp invalid")
		}
		if a.Close < 0 || a.Volume < 0 {
			return fmt.Errorf("negative price/volume")
		}
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

func throttleKey(e models.MarketEvent) string {
	if e.Quote != nil {
		return e.Kind + ":" + e.Quote.Symbol
	}
	return e.Kind + ":" + e.Key()
}

func (p *RealtimePipeline) allow(key string) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	lim, ok := p.limits[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(p.maxRPS), 1)
		p.limits[key] = lim
	}
	p.mu.Unlock()
	return lim.Allow()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
