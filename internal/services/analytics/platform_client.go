package analytics

import (
	"context"
	"errors"
	"net/url"
	"time"

	"OptionPilot/internal/domain/models"
	domsvc "OptionPilot/internal/domain/service"
	"OptionPilot/pkg/util"
)

// Service names reported in upstream errors.
const (
	ServiceAnalytics   = "options-analytics"
	ServiceSignals     = "signals"
	ServiceRecommender = "recommendation"
	ServiceRationale   = "rationale"
)

var errNotConfigured = errors.New("service url not configured")

// PlatformURLs locates the services behind the gateway.
type PlatformURLs struct {
	Analytics   string
	Signals     string
	Recommender string
	Rationale   string
}

// PlatformClient calls the screening, signals, recommendation and rationale services.
type PlatformClient struct {
	analytics   *HTTPServiceBase
	signals     *HTTPServiceBase
	recommender *HTTPServiceBase
	rationale   *HTTPServiceBase
}

func NewPlatformClient(urls PlatformURLs, timeout time.Duration) *PlatformClient {
	return &PlatformClient{
		analytics:   NewHTTPServiceBase(urls.Analytics, timeout),
		signals:     NewHTTPServiceBase(urls.Signals, timeout),
		recommender: NewHTTPServiceBase(urls.Recommender, timeout),
		rationale:   NewHTTPServiceBase(urls.Rationale, timeout),
	}
}

// Screen posts the request to /screen and keeps the result as a raw chain snapshot.
func (p *PlatformClient) Screen(ctx context.Context, req models.ScreeningRequest) (*models.ChainSnapshot, error) {
	var out models.ChainSnapshot
	if err := post(ctx, p.analytics, ServiceAnalytics, "/screen", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PlatformClient) Snapshot(ctx context.Context, symbol string) (*models.SignalSnapshot, error) {
	if p.signals == nil {
		return nil, &domsvc.UpstreamError{Service: ServiceSignals, Err: errNotConfigured}
	}
	var out models.SignalSnapshot
	path := "/snapshot/" + url.PathEscape(util.NormalizeSymbol(symbol))
	if err := p.signals.GetJSON(ctx, path, nil, &out); err != nil {
		return nil, &domsvc.UpstreamError{Service: ServiceSignals, Err: err}
	}
	return &out, nil
}

func (p *PlatformClient) Score(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	var out models.RecommendationResponse
	if err := post(ctx, p.recommender, ServiceRecommender, "/score", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PlatformClient) Rationale(ctx context.Context, req models.RationaleRequest) (*models.Rationale, error) {
	var out models.Rationale
	if err := post(ctx, p.rationale, ServiceRationale, "/rationale", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func post(ctx context.Context, base *HTTPServiceBase, service, path string, body, dest interface{}) error {
	if base == nil {
		return &domsvc.UpstreamError{Service: service, Err: errNotConfigured}
	}
	if err := base.PostJSON(ctx, path, body, dest); err != nil {
		return &domsvc.UpstreamError{Service: service, Err: err}
	}
	return nil
}

var _ domsvc.Platform = (*PlatformClient)(nil)
