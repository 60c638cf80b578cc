package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/pkg/util"
)

// Querier is the subset of pgxpool.Pool used by the Postgres repositories.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SignalsSchema creates the signals tables when missing.
const SignalsSchema = `
CREATE TABLE IF NOT EXISTS congressional_trades (
	id         BIGSERIAL PRIMARY KEY,
	symbol     TEXT NOT NULL,
	person     TEXT NOT NULL,
	party      TEXT,
	committee  TEXT,
	action     TEXT NOT NULL,
	amount     TEXT NOT NULL,
	trade_date DATE
);
CREATE INDEX IF NOT EXISTS congressional_trades_symbol_date ON congressional_trades (symbol, trade_date DESC);
CREATE TABLE IF NOT EXISTS macro_calendar (
	id         BIGSERIAL PRIMARY KEY,
	event_name TEXT NOT NULL,
	event_time TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS macro_calendar_time ON macro_calendar (event_time);
`

// PGSignalsStore reads congressional trades and the macro calendar.
type PGSignalsStore struct {
	q Querier
}

// NewPGSignalsStore creates the store.
func NewPGSignalsStore(q Querier) *PGSignalsStore {
	return &PGSignalsStore{q: q}
}

// CongressionalTrades returns the ten most recent trades in symbol.
func (s *PGSignalsStore) CongressionalTrades(ctx context.Context, symbol string) ([]models.CongressionalTrade, error) {
	const query = `
		SELECT person, COALESCE(party, ''), COALESCE(committee, ''), action, amount, trade_date
		FROM congressional_trades
		WHERE symbol = $1
		ORDER BY trade_date DESC NULLS LAST
		LIMIT 10
	`
	rows, err := s.q.Query(ctx, query, util.NormalizeSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("query congressional trades: %w", err)
	}
	defer rows.Close()

	var out []models.CongressionalTrade
	for rows.Next() {
		var (
			t    models.CongressionalTrade
			date *time.Time
		)
		if err := rows.Scan(&t.Name, &t.Party, &t.Committee, &t.Action, &t.Amount, &date); err != nil {
			return nil, fmt.Errorf("scan congressional trade: %w", err)
		}
		if date != nil {
			t.Date = date.Format("2006-01-02")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MacroEvents returns the next five calendar events as "NAME on YYYY-MM-DD".
func (s *PGSignalsStore) MacroEvents(ctx context.Context) ([]string, error) {
	const query = `
		SELECT event_name, event_time
		FROM macro_calendar
		WHERE event_time >= now()
		ORDER BY event_time ASC
		LIMIT 5
	`
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query macro calendar: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var (
			name string
			at   time.Time
		)
		if err := rows.Scan(&name, &at); err != nil {
			return nil, fmt.Errorf("scan macro event: %w", err)
		}
		out = append(out, fmt.Sprintf("%s on %s", name, at.UTC().Format("2006-01-02")))
	}
	return out, rows.Err()
}

var _ domrepo.SignalsStore = (*PGSignalsStore)(nil)
