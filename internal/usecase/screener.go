package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/internal/services/options"
	applogger "OptionPilot/pkg/logger"
	"OptionPilot/pkg/util"
)

// ErrInvalidRiskProfile is returned for a profile outside the bound table.
var ErrInvalidRiskProfile = errors.New("invalid risk profile")

// Screener loads a chain, filters it by risk profile and ranks the survivors.
type Screener struct {
	source       domrepo.ChainSource
	fallback     domrepo.FallbackChainProvider
	archive      domrepo.ChainArchiver
	metrics      domrepo.Metrics
	log          *applogger.Logger
	topN         int
	fetchTimeout time.Duration
	now          func() time.Time
}

type ScreenerOption func(*Screener)

// WithTopN caps the ranked result size.
func WithTopN(n int) ScreenerOption {
	return func(s *Screener) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithFetchTimeout bounds the live chain fetch.
func WithFetchTimeout(d time.Duration) ScreenerOption {
	return func(s *Screener) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithChainArchiver records every live chain for the feature ETL.
func WithChainArchiver(a domrepo.ChainArchiver) ScreenerOption {
	return func(s *Screener) { s.archive = a }
}

// WithScreenerLogger sets the logger.
func WithScreenerLogger(l *applogger.Logger) ScreenerOption {
	return func(s *Screener) {
		if l != nil {
			s.log = l
		}
	}
}

// WithScreenerClock overrides the processing time source.
func WithScreenerClock(now func() time.Time) ScreenerOption {
	return func(s *Screener) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScreener builds a Screener. source may be nil, in which case every
// request is served from fallback.
func NewScreener(source domrepo.ChainSource, fallback domrepo.FallbackChainProvider, metrics domrepo.Metrics, opts ...ScreenerOption) *Screener {
	s := &Screener{
		source:       source,
		fallback:     fallback,
		metrics:      metrics,
		log:          applogger.Nop(),
		topN:         options.DefaultTopN,
		fetchTimeout: 5 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Component("screener")
	return s
}

// LoadedChain is a normalized chain and where it came from.
type LoadedChain struct {
	Candidates []models.ContractCandidate
	Source     string
	Dropped    int
}

// LoadChain fetches the live chain of symbol. Fetch failures, an empty payload
// and a payload without a single well-formed record all map to the fallback chain.
func (s *Screener) LoadChain(ctx context.Context, symbol string, now time.Time) LoadedChain {
	live, dropped, err := s.fetchLive(ctx, symbol)
	if err == nil && len(live) > 0 {
		return LoadedChain{Candidates: live, Source: models.SourceLive, Dropped: dropped}
	}

	reason := "empty"
	if err != nil {
		reason = "fetch_failed"
		if errors.Is(err, domrepo.ErrMarketDataDisabled) {
			reason = "disabled"
		}
		s.log.Debug("live chain unavailable", applogger.String("symbol", symbol), applogger.Error(err))
	}
	s.metrics.RecordFallback(reason)
	return LoadedChain{Candidates: s.fallback.FallbackChain(symbol, now), Source: models.SourceSynthetic, Dropped: dropped}
}

func (s *Screener) fetchLive(ctx context.Context, symbol string) ([]models.ContractCandidate, int, error) {
	if s.source == nil {
		return nil, 0, domrepo.ErrMarketDataDisabled
	}
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	payload, err := s.source.FetchChain(fctx, symbol)
	if err != nil {
		return nil, 0, err
	}
	cands, dropped := options.NormalizeAll(payload.Records())
	if dropped > 0 {
		s.log.Debug("dropped malformed contracts", applogger.String("symbol", symbol), applogger.Int("dropped", dropped))
	}
	return cands, dropped, nil
}

// Screen answers a screening request.
func (s *Screener) Screen(ctx context.Context, req models.ScreeningRequest) (*models.ScreeningResult, error) {
	if !req.RiskProfile.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRiskProfile, req.RiskProfile)
	}
	start := time.Now()
	now := s.now().UTC()
	symbol := util.NormalizeSymbol(req.Symbol)

	chain := s.LoadChain(ctx, symbol, now)
	if chain.Source == models.SourceLive && s.archive != nil {
		if err := s.archive.Archive(ctx, symbol, chain.Candidates, now); err != nil {
			s.metrics.RecordError("chain_archive")
			s.log.Warn("archive chain failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	eligible := options.FilterEligible(chain.Candidates, req.RiskProfile, now)
	ranked := options.RankByScore(eligible, s.topN, now)

	s.metrics.RecordScreening(string(req.RiskProfile), len(chain.Candidates), len(eligible))
	s.metrics.RecordLatency("screen", time.Since(start).Seconds())

	return &models.ScreeningResult{
		Symbol:     symbol,
		Timestamp:  now,
		Candidates: ranked,
		Diagnostics: models.ScreeningDiagnostics{
			Universe:    len(chain.Candidates),
			Filtered:    len(eligible),
			RiskProfile: req.RiskProfile,
			Source:      chain.Source,
			Dropped:     chain.Dropped,
		},
	}, nil
}
