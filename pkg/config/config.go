package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"OptionPilot/pkg/logger"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Port            int           `yaml:"port" default:"8000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		RateLimit       struct {
			RPS   float64 `yaml:"rps" default:"50"`
			Burst int     `yaml:"burst" default:"100"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Screening struct {
		TopN         int           `yaml:"top_n" default:"5"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" default:"5s"`
	} `yaml:"screening"`
	MarketData struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout" default:"5s"`
		Breaker struct {
			MaxRequests         uint32        `yaml:"max_requests" default:"1"`
			Interval            time.Duration `yaml:"interval" default:"60s"`
			Timeout             time.Duration `yaml:"timeout" default:"30s"`
			ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"3"`
		} `yaml:"breaker"`
	} `yaml:"market_data"`
	Model struct {
		URL      string        `yaml:"url"`
		Timeout  time.Duration `yaml:"timeout" default:"3s"`
		RetryMax int           `yaml:"retry_max" default:"2"`
	} `yaml:"model"`
	Redis struct {
		URI                   string        `yaml:"uri" default:"redis://localhost:6379/0"`
		Namespace             string        `yaml:"namespace" default:"optionpilot"`
		DefaultChainContracts int           `yaml:"default_chain_contracts" default:"5"`
		QuoteTTL              time.Duration `yaml:"quote_ttl" default:"10s"`
		AggregateTTL          time.Duration `yaml:"aggregate_ttl" default:"15m"`
		PoolSize              int           `yaml:"pool_size" default:"10"`
	} `yaml:"redis"`
	Postgres struct {
		DSN      string `yaml:"dsn"`
		MaxConns int32  `yaml:"max_conns" default:"5"`
	} `yaml:"postgres"`
	Kafka struct {
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Topics       struct {
			Events    string `yaml:"events" default:"market.events"`
			Decisions string `yaml:"decisions" default:"recommendation.decisions"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"500"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"quote-cache-writer"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"1000"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"market.events.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"options"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		FeatureCacheTTL  time.Duration `yaml:"feature_cache_ttl" default:"10m"`
		FeatureCacheSize int           `yaml:"feature_cache_size" default:"10000"`
	} `yaml:"clickhouse"`
	Polygon struct {
		APIKey            string        `yaml:"api_key"`
		WebSocketURL      string        `yaml:"websocket_url" default:"wss://socket.polygon.io/options"`
		Symbols           []string      `yaml:"symbols" default:"[\"AAPL\",\"MSFT\",\"SPY\"]"`
		SyntheticOnly     bool          `yaml:"synthetic_only"`
		SyntheticInterval time.Duration `yaml:"synthetic_interval" default:"1s"`
		ReconnectDelay    time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval      time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"polygon"`
	Ingest struct {
		MaxRPS     int `yaml:"max_rps" default:"50"`
		BufferSize int `yaml:"buffer_size" default:"2000"`
	} `yaml:"ingest"`
	Gateway struct {
		AnalyticsURL   string        `yaml:"analytics_url" default:"http://localhost:7002"`
		SignalsURL     string        `yaml:"signals_url" default:"http://localhost:7003"`
		RecommenderURL string        `yaml:"recommender_url" default:"http://localhost:7004"`
		RationaleURL   string        `yaml:"rationale_url" default:"http://localhost:7005"`
		RAGEnabled     bool          `yaml:"rag_enabled" default:"true"`
		Timeout        time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"gateway"`
	ETL struct {
		Schedule     string        `yaml:"schedule" default:"0 2 * * *"`
		LookbackDays int           `yaml:"lookback_days" default:"30"`
		RetryDelay   time.Duration `yaml:"retry_delay" default:"5m"`
		MinSamples   int64         `yaml:"min_samples" default:"3"`
	} `yaml:"etl"`
}

// Load applies defaults and then the YAML file at path. A missing file leaves the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if any), the YAML file, then environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("MARKET_DATA_URL"); v != "" {
		c.MarketData.URL = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Model.URL = v
	}
	if v := os.Getenv("REDIS_URI"); v != "" {
		c.Redis.URI = v
	}
	if v := os.Getenv("REDIS_NAMESPACE"); v != "" {
		c.Redis.Namespace = v
	}
	if v := os.Getenv("DEFAULT_CHAIN_CONTRACTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DefaultChainContracts = n
		}
	}
	if v := os.Getenv("SIGNALS_DB_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Polygon.APIKey = v
	}
	if v := os.Getenv("POLYGON_WS_URL"); v != "" {
		c.Polygon.WebSocketURL = v
	}
	if v := os.Getenv("POLYGON_SYMBOLS"); v != "" {
		c.Polygon.Symbols = splitList(v)
	}
	if v := os.Getenv("OPTIONS_ANALYTICS_URL"); v != "" {
		c.Gateway.AnalyticsURL = v
	}
	if v := os.Getenv("SIGNALS_URL"); v != "" {
		c.Gateway.SignalsURL = v
	}
	if v := os.Getenv("RECOMMENDER_URL"); v != "" {
		c.Gateway.RecommenderURL = v
	}
	if v := os.Getenv("AI_ORCHESTRATOR_URL"); v != "" {
		c.Gateway.RationaleURL = v
	}
	if v := os.Getenv("RECOMMENDATION_RAG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Gateway.RAGEnabled = b
		}
	}
	if v := os.Getenv("POLYGON_SYNTHETIC_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Polygon.SyntheticOnly = b
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Screening.TopN <= 0 {
		return fmt.Errorf("screening.top_n must be positive, got %d", c.Screening.TopN)
	}
	if c.Redis.DefaultChainContracts <= 0 {
		return fmt.Errorf("redis.default_chain_contracts must be positive, got %d", c.Redis.DefaultChainContracts)
	}
	return nil
}

// SyntheticQuotes reports whether the ingest stream should generate quotes locally.
func (c *Config) SyntheticQuotes() bool {
	return c.Polygon.SyntheticOnly || c.Polygon.APIKey == ""
}
