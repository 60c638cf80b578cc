package analytics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"OptionPilot/internal/domain/models"
	"OptionPilot/internal/domain/repository"
	xhttp "OptionPilot/pkg/http"
	applogger "OptionPilot/pkg/logger"
	"OptionPilot/pkg/util"
)

// BreakerSettings tunes the market-data circuit breaker.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// MarketDataClient fetches option chains from the market-data service.
type MarketDataClient struct {
	base *HTTPServiceBase
	cb   *gobreaker.CircuitBreaker
	log  *applogger.Logger
}

// NewMarketDataClient builds the client. A nil base yields a client whose
// every fetch reports ErrMarketDataDisabled.
func NewMarketDataClient(base *HTTPServiceBase, bs BreakerSettings, log *applogger.Logger) *MarketDataClient {
	if log == nil {
		log = applogger.Nop()
	}
	log = log.Component("market_data_client")
	if bs.ConsecutiveFailures == 0 {
		bs.ConsecutiveFailures = 3
	}

	c := &MarketDataClient{base: base, log: log}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "market-data",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	})
	return c
}

// FetchChain returns the chain of symbol. A 404 yields (nil, nil); every
// other failure is wrapped in ErrFetchFailed.
func (c *MarketDataClient) FetchChain(ctx context.Context, symbol string) (*models.ChainPayload, error) {
	if c == nil || c.base == nil {
		return nil, repository.ErrMarketDataDisabled
	}

	path := "/chains/" + url.PathEscape(util.NormalizeSymbol(symbol))
	res, err := c.cb.Execute(func() (interface{}, error) {
		var p models.ChainPayload
		if err := c.base.GetJSON(ctx, path, nil, &p); err != nil {
			if xhttp.IsStatus(err, http.StatusNotFound) {
				return (*models.ChainPayload)(nil), nil
			}
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrFetchFailed, err)
	}

	payload, _ := res.(*models.ChainPayload)
	return payload, nil
}

// State exposes the breaker state for diagnostics.
func (c *MarketDataClient) State() string {
	return c.cb.State().String()
}

var _ repository.ChainSource = (*MarketDataClient)(nil)
