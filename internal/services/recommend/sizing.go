package recommend

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"OptionPilot/internal/domain/models"
)

const (
	perTradeRiskFraction = 0.02
	contractMultiplier   = 100
	minMid               = 0.01
	holdingWindowDays    = 21
	maxContracts         = math.MaxInt32
)

// ErrUnsizablePosition is returned when capital or mid cannot yield a finite position.
var ErrUnsizablePosition = errors.New("position cannot be sized")

// SizePosition bounds a position to 2% of capital per trade, at least one contract.
func SizePosition(capitalUSD, mid float64) (models.Position, error) {
	if !finite(capitalUSD) || !finite(mid) {
		return models.Position{}, ErrUnsizablePosition
	}
	perTradeCap := math.Max(1, capitalUSD*perTradeRiskFraction)
	n := math.Floor(perTradeCap / math.Max(mid, minMid))
	if n > maxContracts {
		return models.Position{}, ErrUnsizablePosition
	}
	contracts := int(math.Max(1, n))

	raw := float64(contracts) * mid * contractMultiplier
	if !finite(raw) {
		return models.Position{}, ErrUnsizablePosition
	}
	notional := decimal.NewFromFloat(raw).Round(2).InexactFloat64()
	return models.Position{
		Contracts:         contracts,
		Notional:          notional,
		EstMaxLoss:        notional,
		HoldingWindowDays: holdingWindowDays,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
