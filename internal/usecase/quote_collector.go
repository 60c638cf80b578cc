package usecase

import (
	"context"
	"errors"
	"fmt"

	"OptionPilot/internal/domain/models"
	drepo "OptionPilot/internal/domain/repository"
	mid "OptionPilot/internal/middleware"
	applogger "OptionPilot/pkg/logger"
)

var errStreamClosed = errors.New("quote stream closed")

// QuoteCollector reads the quote stream and forwards events through the
// realtime pipeline. It reconnects until its context ends.
type QuoteCollector struct {
	stream  drepo.QuoteStream
	pipe    *mid.RealtimePipeline
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewQuoteCollector creates a new QuoteCollector.
func NewQuoteCollector(stream drepo.QuoteStream, pipe *mid.RealtimePipeline, metrics drepo.Metrics, log *applogger.Logger) *QuoteCollector {
	if log == nil {
		log = applogger.Nop()
	}
	return &QuoteCollector{stream: stream, pipe: pipe, metrics: metrics, log: log.Component("quote_collector")}
}

func (c *QuoteCollector) Name() string { return "quote-collector" }

// IsConnected returns true if the stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Run connects and collects until ctx is cancelled.
func (c *QuoteCollector) Run(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		_ = c.stream.Close()
		return fmt.Errorf("subscribe stream: %w", err)
	}
	c.pipe.Start(ctx)
	defer c.pipe.Stop()
	defer c.stream.Close()

	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.metrics.RecordError("stream")
		c.log.Warn("stream interrupted, reconnecting", applogger.Error(err))

		for {
			rerr := c.stream.Reconnect(ctx)
			if rerr == nil {
				break
			}
			if ctx.Err() != nil {
				return nil
			}
			c.metrics.RecordError("stream_reconnect")
			c.log.Warn("reconnect failed", applogger.Error(rerr))
		}
	}
}

func (c *QuoteCollector) session(ctx context.Context) error {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, errs := c.stream.Read(sctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return err
		case e, ok := <-events:
			if !ok {
				return errStreamClosed
			}
			c.forward(sctx, e)
		}
	}
}

func (c *QuoteCollector) forward(ctx context.Context, e models.MarketEvent) {
	if err := c.pipe.Process(ctx, e); err != nil {
		c.log.Debug("event not forwarded", applogger.String("key", e.Key()), applogger.Error(err))
	}
}
