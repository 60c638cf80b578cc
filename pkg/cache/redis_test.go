package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_SetGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, WithRedisPrefix("optionpilot"))
	ctx := context.Background()

	mock.ExpectSet("optionpilot:k", []byte(`{"mid":1.5}`), 10*time.Second).SetVal("OK")
	require.NoError(t, c.Set(ctx, "k", map[string]float64{"mid": 1.5}, 10*time.Second))

	mock.ExpectGet("optionpilot:k").SetVal(`{"mid":1.5}`)
	var got map[string]float64
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 1.5, got["mid"])

	mock.ExpectGet("optionpilot:missing").RedisNil()
	err := c.Get(ctx, "missing", &got)
	assert.True(t, errors.Is(err, ErrCacheMiss))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_ScanKeysFollowsCursor(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, WithRedisPrefix("ns"), WithScanCount(2))
	ctx := context.Background()

	mock.ExpectScan(0, "ns:options:quote:AAPL*", 2).SetVal([]string{"ns:options:quote:AAPL1", "ns:options:quote:AAPL2"}, 7)
	mock.ExpectScan(7, "ns:options:quote:AAPL*", 2).SetVal([]string{"ns:options:quote:AAPL2", "ns:options:quote:AAPL3"}, 0)

	keys, err := c.ScanKeys(ctx, "options:quote:AAPL*")
	require.NoError(t, err)
	assert.Equal(t, []string{"options:quote:AAPL1", "options:quote:AAPL2", "options:quote:AAPL3"}, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_MGetSkipsMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db)
	ctx := context.Background()

	mock.ExpectMGet("a", "b").SetVal([]interface{}{"1", nil})

	got, err := c.MGet(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeAllKeepsOrderAndCounts(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db)

	mock.ExpectMGet("x", "y", "z", "w").SetVal([]interface{}{`{"n":1}`, `not-json`, nil, `{"n":4}`})

	got, err := DecodeAll[map[string]int](context.Background(), c, "x", "y", "z", "w")
	require.NoError(t, err)
	require.Len(t, got.Values, 2)
	assert.Equal(t, 1, got.Values[0]["n"])
	assert.Equal(t, 4, got.Values[1]["n"])
	assert.Equal(t, 1, got.Invalid)
	assert.Equal(t, 1, got.Missing)
}

func TestDecodeAllNoKeys(t *testing.T) {
	got, err := DecodeAll[string](context.Background(), NewRedisCacheWithClient(nil))
	require.NoError(t, err)
	assert.Empty(t, got.Values)
}

func TestKeyAndPrefixPattern(t *testing.T) {
	assert.Equal(t, "options:quote:AAPL", Key("options", "quote", "AAPL"))
	assert.Equal(t, "equity:aggregate", Key("equity", "", "aggregate"))
	assert.Equal(t, "options:quote:AAPL*", PrefixPattern("options:quote:AAPL"))
	assert.Equal(t, `a\*b*`, PrefixPattern("a*b"))
}

func TestNewRedisCacheRequiresURL(t *testing.T) {
	_, err := NewRedisCache()
	assert.Error(t, err)
}
