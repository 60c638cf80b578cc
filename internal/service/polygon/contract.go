package polygon

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"OptionPilot/internal/domain/models"
	"OptionPilot/pkg/util"
)

// Contract is the parsed identity of an option ticker.
type Contract struct {
	Underlying string
	Expiry     time.Time
	Right      string // "C" or "P"
	Strike     float64
}

// Display renders the contract as "AAPL 2026-04-17 150C".
func (c Contract) Display() string {
	return fmt.Sprintf("%s %s %s%s", c.Underlying, c.Expiry.Format("2006-01-02"),
		strconv.FormatFloat(c.Strike, 'f', -1, 64), c.Right)
}

// ParseContract accepts OCC tickers ("O:AAPL260417C00150000") and the
// display form.
func ParseContract(sym string) (Contract, bool) {
	sym = strings.TrimSpace(sym)
	if c, ok := parseOCC(sym); ok {
		return c, true
	}
	return parseDisplay(sym)
}

func parseOCC(sym string) (Contract, bool) {
	sym = strings.TrimPrefix(sym, "O:")
	// root + YYMMDD + right + 8-digit strike in thousandths
	if len(sym) < 16 {
		return Contract{}, false
	}
	tail := sym[len(sym)-15:]
	root := strings.TrimSpace(sym[:len(sym)-15])
	if root == "" {
		return Contract{}, false
	}
	exp, err := time.Parse("060102", tail[:6])
	if err != nil {
		return Contract{}, false
	}
	right := tail[6:7]
	if right != "C" && right != "P" {
		return Contract{}, false
	}
	milli, err := strconv.ParseInt(tail[7:], 10, 64)
	if err != nil {
		return Contract{}, false
	}
	return Contract{
		Underlying: util.NormalizeSymbol(root),
		Expiry:     exp,
		Right:      right,
		Strike:     float64(milli) / 1000,
	}, true
}

func parseDisplay(sym string) (Contract, bool) {
	parts := strings.Fields(sym)
	if len(parts) != 3 || len(parts[2]) < 2 {
		return Contract{}, false
	}
	exp, err := time.Parse("2006-01-02", parts[1])
	if err != nil {
		return Contract{}, false
	}
	last := len(parts[2]) - 1
	right := strings.ToUpper(parts[2][last:])
	if right != "C" && right != "P" {
		return Contract{}, false
	}
	strike, err := strconv.ParseFloat(parts[2][:last], 64)
	if err != nil || strike <= 0 {
		return Contract{}, false
	}
	return Contract{
		Underlying: util.NormalizeSymbol(parts[0]),
		Expiry:     exp,
		Right:      right,
		Strike:     strike,
	}, true
}

// NormalizeOptionQuote derives mid and spread. spread_pct is relative to mid
// and zero when mid is not positive.
func NormalizeOptionQuote(q models.OptionQuote) models.NormalizedOptionQuote {
	mid := (q.Bid + q.Ask) / 2
	spread := 0.0
	if mid > 0 {
		spread = (q.Ask - q.Bid) / mid
	}

	out := models.NormalizedOptionQuote{
		Symbol:    q.Symbol,
		Mid:       mid,
		SpreadPct: spread,
		Bid:       q.Bid,
		Ask:       q.Ask,
		BidSize:   q.BidSize,
		AskSize:   q.AskSize,
		Timestamp: q.Timestamp.UTC(),
	}
	if c, ok := ParseContract(q.Symbol); ok {
		out.Symbol = c.Display()
		out.Underlying = c.Underlying
		out.Expiry = c.Expiry.Format("2006-01-02")
		out.Strike = c.Strike
		out.Right = c.Right
	}
	return out
}
