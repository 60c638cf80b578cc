package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, 5, c.Screening.TopN)
	assert.Equal(t, 5, c.Redis.DefaultChainContracts)
	assert.Equal(t, 10*time.Second, c.Redis.QuoteTTL)
	assert.Equal(t, 15*time.Minute, c.Redis.AggregateTTL)
	assert.Equal(t, []string{"AAPL", "MSFT", "SPY"}, c.Polygon.Symbols)
	assert.Equal(t, "market.events", c.Kafka.Topics.Events)
	assert.Equal(t, "0 2 * * *", c.ETL.Schedule)
	assert.Equal(t, uint32(3), c.MarketData.Breaker.ConsecutiveFailures)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.Gateway.RAGEnabled)
	assert.Equal(t, "http://localhost:7004", c.Gateway.RecommenderURL)
	assert.Equal(t, 10000, c.ClickHouse.FeatureCacheSize)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
environment: test
server:
  port: 9100
screening:
  top_n: 3
market_data:
  url: http://market-data:8000
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 9100, c.Server.Port)
	assert.Equal(t, 3, c.Screening.TopN)
	assert.Equal(t, "http://market-data:8000", c.MarketData.URL)
	// untouched sections keep defaults
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("screening:\n  top_n: 0\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_n")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_DATA_URL", "http://md:8000")
	t.Setenv("REDIS_NAMESPACE", "staging")
	t.Setenv("DEFAULT_CHAIN_CONTRACTS", "8")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("POLYGON_SYNTHETIC_ONLY", "true")
	t.Setenv("POLYGON_API_KEY", "secret")
	t.Setenv("RECOMMENDATION_RAG", "false")
	t.Setenv("SIGNALS_URL", "http://signals:8000")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://md:8000", c.MarketData.URL)
	assert.Equal(t, "staging", c.Redis.Namespace)
	assert.Equal(t, 8, c.Redis.DefaultChainContracts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.SyntheticQuotes())
	assert.False(t, c.Gateway.RAGEnabled)
	assert.Equal(t, "http://signals:8000", c.Gateway.SignalsURL)
}

func TestSyntheticQuotesWithoutKey(t *testing.T) {
	var c Config
	assert.True(t, c.SyntheticQuotes())
	c.Polygon.APIKey = "k"
	assert.False(t, c.SyntheticQuotes())
}
