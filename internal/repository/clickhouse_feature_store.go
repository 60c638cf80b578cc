package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	applogger "OptionPilot/pkg/logger"
)

// featureChunkSize bounds rows per multi-row INSERT.
const featureChunkSize = 2000

// CHFeatureStore serves and materializes liquidity features in ClickHouse.
type CHFeatureStore struct {
	db       *sql.DB
	features string
	history  string
	l        *applogger.Logger
}

// NewCHFeatureStore binds the store to tables of database.
func NewCHFeatureStore(db *sql.DB, database string, l *applogger.Logger) *CHFeatureStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHFeatureStore{
		db:       db,
		features: database + ".liquidity_features",
		history:  database + ".chain_history",
		l:        l.Component("feature_store"),
	}
}

// Schema returns the idempotent DDL of the feature tables.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.chain_history (
			ts DateTime64(3, 'UTC'),
			symbol LowCardinality(String),
			contract String,
			expiry Date,
			strike Float64,
			open_interest UInt64,
			volume UInt64,
			spread_pct Float64,
			implied_vol Float64,
			liquidity_score UInt8
		) ENGINE = MergeTree
		PARTITION BY toYYYYMM(ts)
		ORDER BY (symbol, expiry, strike, ts)
		TTL toDateTime(ts) + INTERVAL 180 DAY`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.liquidity_features (
			symbol LowCardinality(String),
			expiry Date,
			strike Float64,
			liquidity_score Float64,
			avg_open_interest Float64,
			avg_volume Float64,
			iv_rank Float64,
			as_of DateTime('UTC')
		) ENGINE = ReplacingMergeTree(as_of)
		ORDER BY (symbol, expiry, strike)`, database),
	}
}

// Lookup returns the latest features of key. A missing row is not an error.
func (s *CHFeatureStore) Lookup(ctx context.Context, key models.FeatureKey) (models.LiquidityFeatures, error) {
	q := fmt.Sprintf(`
		SELECT liquidity_score, avg_open_interest, avg_volume
		FROM %s
		WHERE symbol = ? AND expiry = toDate(?) AND strike = ?
		ORDER BY as_of DESC
		LIMIT 1`, s.features)

	var score, oi, vol float64
	err := s.db.QueryRowContext(ctx, q, key.Symbol, key.Expiry, key.Strike).Scan(&score, &oi, &vol)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.LiquidityFeatures{}, nil
	case err != nil:
		s.l.Warn("feature lookup failed",
			applogger.String("symbol", key.Symbol),
			applogger.String("expiry", key.Expiry),
			applogger.Float64("strike", key.Strike),
			applogger.Error(err),
		)
		return models.LiquidityFeatures{}, fmt.Errorf("lookup features: %w", err)
	}
	return models.LiquidityFeatures{
		LiquidityScore:  &score,
		AvgOpenInterest: &oi,
		AvgVolume:       &vol,
	}, nil
}

// ContractHistory aggregates chain_history per contract since the given time.
func (s *CHFeatureStore) ContractHistory(ctx context.Context, since time.Time) ([]models.ContractHistory, error) {
	start := time.Now()
	q := fmt.Sprintf(`
		SELECT symbol, toString(expiry), strike, count(),
			avg(open_interest), avg(volume), avg(spread_pct),
			argMax(implied_vol, ts), min(implied_vol), max(implied_vol)
		FROM %s
		WHERE ts >= ?
		GROUP BY symbol, expiry, strike`, s.history)

	rows, err := s.db.QueryContext(ctx, q, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query chain history: %w", err)
	}
	defer rows.Close()

	var out []models.ContractHistory
	for rows.Next() {
		var (
			h       models.ContractHistory
			samples uint64
		)
		if err := rows.Scan(&h.Key.Symbol, &h.Key.Expiry, &h.Key.Strike, &samples,
			&h.AvgOpenInterest, &h.AvgVolume, &h.AvgSpreadPct,
			&h.IVLast, &h.IVMin, &h.IVMax); err != nil {
			return nil, fmt.Errorf("scan chain history: %w", err)
		}
		h.Samples = int64(samples)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Info("chain history loaded",
		applogger.Int("contracts", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// SaveFeatures inserts rows in chunks and returns the number written.
func (s *CHFeatureStore) SaveFeatures(ctx context.Context, rows []models.FeatureRow) (int64, error) {
	var written int64
	for start := 0; start < len(rows); start += featureChunkSize {
		end := start + featureChunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, r := range rows[start:end] {
			if r.Key.Symbol == "" || r.Key.Expiry == "" {
				continue
			}
			values = append(values, "(?, toDate(?), ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.Key.Symbol,
				r.Key.Expiry,
				r.Key.Strike,
				r.LiquidityScore,
				r.AvgOpenInterest,
				r.AvgVolume,
				r.IVRank,
				r.AsOf,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, expiry, strike, liquidity_score, avg_open_interest, avg_volume, iv_rank, as_of) VALUES %s",
			s.features, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return written, fmt.Errorf("insert features: %w", err)
		}
		written += int64(len(values))
	}
	return written, nil
}

var (
	_ domrepo.FeatureLookup       = (*CHFeatureStore)(nil)
	_ domrepo.FeatureMaterializer = (*CHFeatureStore)(nil)
)
