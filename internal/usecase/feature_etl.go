package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/internal/services/features"
	applogger "OptionPilot/pkg/logger"
)

// FeatureETL materializes liquidity features from archived chains on a cron schedule.
type FeatureETL struct {
	store        domrepo.FeatureMaterializer
	metrics      domrepo.Metrics
	log          *applogger.Logger
	schedule     string
	lookbackDays int
	minSamples   int64
	retryDelay   time.Duration
	now          func() time.Time
}

type FeatureETLOption func(*FeatureETL)

// WithSchedule sets the standard 5-field cron expression.
func WithSchedule(spec string) FeatureETLOption {
	return func(e *FeatureETL) {
		if spec != "" {
			e.schedule = spec
		}
	}
}

// WithLookbackDays sets how much chain history a run aggregates.
func WithLookbackDays(days int) FeatureETLOption {
	return func(e *FeatureETL) {
		if days > 0 {
			e.lookbackDays = days
		}
	}
}

// WithRetryDelay sets the wait before the single retry of a failed run.
func WithRetryDelay(d time.Duration) FeatureETLOption {
	return func(e *FeatureETL) {
		if d >= 0 {
			e.retryDelay = d
		}
	}
}

// WithMinSamples skips contracts observed fewer times.
func WithMinSamples(n int64) FeatureETLOption {
	return func(e *FeatureETL) { e.minSamples = n }
}

// WithETLLogger sets the logger.
func WithETLLogger(l *applogger.Logger) FeatureETLOption {
	return func(e *FeatureETL) {
		if l != nil {
			e.log = l
		}
	}
}

func NewFeatureETL(store domrepo.FeatureMaterializer, metrics domrepo.Metrics, opts ...FeatureETLOption) *FeatureETL {
	e := &FeatureETL{
		store:        store,
		metrics:      metrics,
		log:          applogger.Nop(),
		schedule:     "0 2 * * *",
		lookbackDays: 30,
		minSamples:   1,
		retryDelay:   5 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Component("feature_etl")
	return e
}

func (e *FeatureETL) Name() string { return "feature-etl" }

// RunOnce aggregates the lookback window and writes one feature row per contract.
func (e *FeatureETL) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	asOf := e.now().UTC()
	since := asOf.AddDate(0, 0, -e.lookbackDays)

	hs, err := e.store.ContractHistory(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("load history: %w", err)
	}
	rows := features.BuildAll(hs, e.minSamples, asOf)
	n, err := e.store.SaveFeatures(ctx, rows)
	if err != nil {
		return n, fmt.Errorf("save features: %w", err)
	}

	e.metrics.RecordLatency("feature_etl", time.Since(start).Seconds())
	e.log.Info("features materialized",
		applogger.Int("contracts", len(hs)),
		applogger.Int64("rows", n),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return n, nil
}

// RunWithRetry runs once and, on failure, once more after the retry delay.
func (e *FeatureETL) RunWithRetry(ctx context.Context) (int64, error) {
	n, err := e.RunOnce(ctx)
	if err == nil {
		return n, nil
	}
	e.metrics.RecordError("feature_etl")
	e.log.Warn("feature run failed, retrying", applogger.Error(err), applogger.Duration("retry_in_ms", e.retryDelay))

	select {
	case <-time.After(e.retryDelay):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	n, err = e.RunOnce(ctx)
	if err != nil {
		e.metrics.RecordError("feature_etl")
	}
	return n, err
}

// Run schedules RunWithRetry until ctx ends.
func (e *FeatureETL) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(e.schedule, func() {
		if _, err := e.RunWithRetry(ctx); err != nil {
			e.log.Error("feature run failed", applogger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", e.schedule, err)
	}

	e.log.Info("scheduler started", applogger.String("schedule", e.schedule))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	e.log.Info("scheduler stopped")
	return nil
}
