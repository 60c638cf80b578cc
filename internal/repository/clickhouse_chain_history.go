package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/pkg/util"
)

// CHChainArchive appends screened chains to chain_history.
type CHChainArchive struct {
	db    *sql.DB
	table string
}

// NewCHChainArchive binds the archive to database.chain_history.
func NewCHChainArchive(db *sql.DB, database string) *CHChainArchive {
	return &CHChainArchive{db: db, table: database + ".chain_history"}
}

// Archive writes one row per contract with a parseable expiry.
func (a *CHChainArchive) Archive(ctx context.Context, symbol string, cs []models.ContractCandidate, at time.Time) error {
	if len(cs) == 0 {
		return nil
	}
	symbol = util.NormalizeSymbol(symbol)

	values := make([]string, 0, len(cs))
	args := make([]interface{}, 0, len(cs)*10)
	for _, c := range cs {
		exp, ok := util.ParseDate(c.Expiry)
		if !ok {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			at.UTC(),
			symbol,
			c.Symbol,
			exp.Format("2006-01-02"),
			c.Strike,
			uint64(c.OpenInterest),
			uint64(c.Volume),
			c.SpreadPct,
			c.ImpliedVol,
			uint8(c.LiquidityScore),
		)
	}
	if len(values) == 0 {
		return nil
	}

	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, contract, expiry, strike, open_interest, volume, spread_pct, implied_vol, liquidity_score) VALUES %s",
		a.table, strings.Join(values, ","))
	if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("archive chain: %w", err)
	}
	return nil
}

var _ domrepo.ChainArchiver = (*CHChainArchive)(nil)
