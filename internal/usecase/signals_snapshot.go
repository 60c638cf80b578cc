package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	applogger "OptionPilot/pkg/logger"
	"OptionPilot/pkg/util"
)

// congressionalWindowDays is how recent a trade must be to count as related.
const congressionalWindowDays = 30

// SignalsService assembles signal snapshots. Indicator and sentiment values
// are fixed placeholders until an indicator source is wired.
type SignalsService struct {
	store   domrepo.SignalsStore
	metrics domrepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

// NewSignalsService creates the service. store may be nil; mock events are used then.
func NewSignalsService(store domrepo.SignalsStore, metrics domrepo.Metrics, log *applogger.Logger) *SignalsService {
	if log == nil {
		log = applogger.Nop()
	}
	return &SignalsService{store: store, metrics: metrics, log: log.Component("signals"), now: time.Now}
}

// Snapshot returns the signal snapshot of symbol.
func (s *SignalsService) Snapshot(ctx context.Context, symbol string) models.SignalSnapshot {
	now := s.now().UTC()
	symbol = util.NormalizeSymbol(symbol)

	trades := s.congressional(ctx, symbol)
	if len(trades) == 0 {
		trades = mockCongressionalTrades(now)
	}
	macro := s.macro(ctx)
	if len(macro) == 0 {
		macro = mockMacroEvents(now)
	}

	return models.SignalSnapshot{
		Symbol:                     symbol,
		RSI:                        54.2,
		MACD:                       "bullish-crossover",
		ADX:                        22.3,
		TrendRegime:                "uptrend",
		IV:                         0.29,
		IVRank:                     0.32,
		EarningsProximity:          "11 days",
		SentimentScore:             0.24,
		SentimentMomentum:          "improving",
		SentimentUncertainty:       0.18,
		CongressionalRecentRelated: recentRelated(trades, now),
		CongressionalEvents:        trades,
		MacroEvents:                macro,
		MacroRiskFlag:              strings.Contains(strings.Join(macro, " "), "FOMC"),
		GeneratedAt:                now,
	}
}

func (s *SignalsService) congressional(ctx context.Context, symbol string) []models.CongressionalTrade {
	if s.store == nil {
		return nil
	}
	trades, err := s.store.CongressionalTrades(ctx, symbol)
	if err != nil {
		s.metrics.RecordError("signals_congress")
		s.log.Warn("congressional trades unavailable", applogger.String("symbol", symbol), applogger.Error(err))
		return nil
	}
	return trades
}

func (s *SignalsService) macro(ctx context.Context) []string {
	if s.store == nil {
		return nil
	}
	events, err := s.store.MacroEvents(ctx)
	if err != nil {
		s.metrics.RecordError("signals_macro")
		s.log.Warn("macro events unavailable", applogger.Error(err))
		return nil
	}
	return events
}

// recentRelated is "mild" when any trade is dated within the window, else "none".
func recentRelated(trades []models.CongressionalTrade, now time.Time) string {
	for _, t := range trades {
		d, ok := util.ParseDate(t.Date)
		if !ok {
			continue
		}
		if age := util.DaysBetween(d, now); age >= 0 && age <= congressionalWindowDays {
			return "mild"
		}
	}
	return "none"
}

func mockMacroEvents(now time.Time) []string {
	return []string{
		fmt.Sprintf("CPI on %s", now.AddDate(0, 0, 5).Format("2006-01-02")),
		fmt.Sprintf("FOMC on %s", now.AddDate(0, 0, 12).Format("2006-01-02")),
	}
}

func mockCongressionalTrades(now time.Time) []models.CongressionalTrade {
	return []models.CongressionalTrade{{
		Name:   "Doe, Jane",
		Action: "buy",
		Amount: "$15k",
		Date:   now.AddDate(0, 0, -22).Format("2006-01-02"),
	}}
}
