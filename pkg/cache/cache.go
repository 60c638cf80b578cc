package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the key-value surface the quote store needs. Keys are given
// without the namespace prefix.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
}

// Decoded is the outcome of DecodeAll.
type Decoded[T any] struct {
	Values  []T
	Missing int
	Invalid int
}

// DecodeAll fetches keys in one MGET and JSON-decodes every value into T,
// preserving key order. Expired keys count as Missing; values that are not
// valid JSON for T count as Invalid. Neither is an error.
func DecodeAll[T any](ctx context.Context, c Service, keys ...string) (Decoded[T], error) {
	var d Decoded[T]
	if len(keys) == 0 {
		return d, nil
	}

	raw, err := c.MGet(ctx, keys...)
	if err != nil {
		return d, err
	}

	d.Values = make([]T, 0, len(raw))
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			d.Missing++
			continue
		}
		var obj T
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			d.Invalid++
			continue
		}
		d.Values = append(d.Values, obj)
	}
	return d, nil
}
