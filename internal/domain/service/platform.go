package service

import (
	"context"
	"fmt"

	"OptionPilot/internal/domain/models"
)

// Platform is the set of services a gateway request fans out to.
type Platform interface {
	Screen(ctx context.Context, req models.ScreeningRequest) (*models.ChainSnapshot, error)
	Snapshot(ctx context.Context, symbol string) (*models.SignalSnapshot, error)
	Score(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error)
	Rationale(ctx context.Context, req models.RationaleRequest) (*models.Rationale, error)
}

// UpstreamError names the downstream service a call failed against.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
