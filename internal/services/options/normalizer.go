package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"OptionPilot/internal/domain/models"
)

// ErrMalformedContract marks a raw record that could not be coerced.
var ErrMalformedContract = errors.New("malformed contract")

// lookup returns the value of the first key present in rec.
func lookup(rec map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// toFloat coerces v and rejects NaN and infinities.
func toFloat(v any) (float64, error) {
	f, err := coerceFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %v", f)
	}
	return f, nil
}

func coerceFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, err
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("integer overflow: %d", x)
		}
		return int64(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	default:
		f, err := toFloat(v)
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	}
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cannot convert %v to integer", f)
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, fmt.Errorf("integer overflow: %v", f)
	}
	return int64(f), nil
}

func toText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// falsy mirrors how an absent book price is detected: nil, false, zero or empty string.
func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	default:
		f, err := toFloat(v)
		return err == nil && f == 0
	}
}

type floatField struct {
	dst  *float64
	keys []string
}

// Normalize coerces one raw record into a ContractCandidate.
// The primary key wins when present, then the alias, then the zero value.
// Any numeric coercion failure rejects the whole record with ErrMalformedContract.
func Normalize(rec map[string]any) (models.ContractCandidate, error) {
	var c models.ContractCandidate
	if rec == nil {
		return c, fmt.Errorf("%w: nil record", ErrMalformedContract)
	}

	if v, ok := rec["symbol"]; ok {
		c.Symbol = toText(v)
	}
	if v, ok := rec["expiry"]; ok {
		c.Expiry = toText(v)
	}

	floats := []floatField{
		{&c.Delta, []string{"delta"}},
		{&c.Gamma, []string{"gamma"}},
		{&c.Theta, []string{"theta"}},
		{&c.Vega, []string{"vega"}},
		{&c.ImpliedVol, []string{"implied_vol", "iv"}},
		{&c.Bid, []string{"bid"}},
		{&c.Ask, []string{"ask"}},
		{&c.SpreadPct, []string{"spread_pct", "spread_percent"}},
		{&c.Strike, []string{"strike"}},
	}
	for _, f := range floats {
		v, ok := lookup(rec, f.keys...)
		if !ok {
			continue
		}
		x, err := toFloat(v)
		if err != nil {
			return models.ContractCandidate{}, fmt.Errorf("%w: %s: %v", ErrMalformedContract, f.keys[0], err)
		}
		*f.dst = x
	}

	if v, ok := rec["mid"]; ok && !falsy(v) {
		x, err := toFloat(v)
		if err != nil {
			return models.ContractCandidate{}, fmt.Errorf("%w: mid: %v", ErrMalformedContract, err)
		}
		c.Mid = x
	} else {
		c.Mid = c.Bid/2 + c.Ask/2
	}

	var err error
	if c.OpenInterest, err = intField(rec, "open_interest", "oi"); err != nil {
		return models.ContractCandidate{}, err
	}
	if c.Volume, err = intField(rec, "volume"); err != nil {
		return models.ContractCandidate{}, err
	}
	liq, err := intField(rec, "liquidity_score")
	if err != nil {
		return models.ContractCandidate{}, err
	}
	c.LiquidityScore = clampLiquidity(liq)

	if c.OpenInterest < 0 || c.Volume < 0 {
		return models.ContractCandidate{}, fmt.Errorf("%w: negative open interest or volume", ErrMalformedContract)
	}
	return c, nil
}

func intField(rec map[string]any, keys ...string) (int64, error) {
	v, ok := lookup(rec, keys...)
	if !ok {
		return 0, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedContract, keys[0], err)
	}
	return n, nil
}

func clampLiquidity(v int64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

// NormalizeAll normalizes every record and silently drops malformed ones.
// It returns the kept candidates in input order and the number dropped.
func NormalizeAll(records []map[string]any) ([]models.ContractCandidate, int) {
	out := make([]models.ContractCandidate, 0, len(records))
	dropped := 0
	for _, rec := range records {
		c, err := Normalize(rec)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}
