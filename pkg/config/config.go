package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
		RateLimit       struct {
			Enabled bool    `yaml:"enabled"`
			Burst   int     `yaml:"burst"`
			PerSec  float64 `yaml:"per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled"`
		SlowThreshold time.Duration `yaml:"slow_threshold"`
	} `yaml:"metrics"`
	IEX struct {
		BaseURL string        `yaml:"base_url"`
		Version string        `yaml:"version"`
		Token   string        `yaml:"token"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"iex"`
	Source struct {
		Type string `yaml:"type"` // iex or clickhouse
	} `yaml:"source"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		Table            string        `yaml:"table"`
		InitSchema       bool          `yaml:"init_schema"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic"`
		ResultTopic  string   `yaml:"result_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Consumer     struct {
			GroupID       string        `yaml:"group_id"`
			Workers       int           `yaml:"workers"`
			BufferSize    int           `yaml:"buffer_size"`
			RetryMax      int           `yaml:"retry_max"`
			BackoffMin    time.Duration `yaml:"backoff_min"`
			BackoffMax    time.Duration `yaml:"backoff_max"`
			HandleTimeout time.Duration `yaml:"handle_timeout"`
			DLQTopic      string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	RefData struct {
		Cache struct {
			Enabled bool          `yaml:"enabled"`
			Backend string        `yaml:"backend"` // memory or redis
			TTL     time.Duration `yaml:"ttl"`
		} `yaml:"cache"`
	} `yaml:"refdata"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
}

// Parse decodes YAML into a Config with defaults applied. It does not validate.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.RateLimit.Burst = 20
	c.Server.RateLimit.PerSec = 5
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Metrics.Enabled = true
	c.Metrics.SlowThreshold = 2 * time.Second
	c.IEX.BaseURL = "https://cloud.iexapis.com"
	c.IEX.Version = "stable"
	c.IEX.Timeout = 15 * time.Second
	c.Source.Type = "iex"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "default"
	c.ClickHouse.Table = "candles_1d"
	c.Kafka.RequestTopic = "study.requests"
	c.Kafka.ResultTopic = "study.results"
	c.Kafka.RequiredAcks = 1
	c.Kafka.Consumer.GroupID = "finstudies"
	c.Kafka.Consumer.Workers = 4
	c.RefData.Cache.Backend = "memory"
	c.RefData.Cache.TTL = time.Hour
	c.Redis.Prefix = "finstudies:"
	return c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, applies environment overrides and
// then validates the result.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// ApplyEnv overrides fields from environment variables looked up via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("IEX_TOKEN"); v != "" {
		c.IEX.Token = v
	}
	if v := getenv("IEX_BASE_URL"); v != "" {
		c.IEX.BaseURL = v
	}
	if v := getenv("SERIES_SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Source.Type {
	case "iex":
		if c.IEX.BaseURL == "" {
			return fmt.Errorf("iex.base_url is required")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for source.type 'clickhouse'")
		}
	default:
		return fmt.Errorf("source.type must be 'iex' or 'clickhouse', got '%s'", c.Source.Type)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.RequestTopic == "" || c.Kafka.ResultTopic == "" {
			return fmt.Errorf("kafka.request_topic and kafka.result_topic are required")
		}
	}
	if c.RefData.Cache.Enabled {
		switch c.RefData.Cache.Backend {
		case "memory":
		case "redis":
			if c.Redis.Addr == "" {
				return fmt.Errorf("redis.addr is required for refdata.cache.backend 'redis'")
			}
		default:
			return fmt.Errorf("refdata.cache.backend must be 'memory' or 'redis', got '%s'", c.RefData.Cache.Backend)
		}
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.Burst < 1 {
		return fmt.Errorf("server.rate_limit.burst must be at least 1")
	}
	return nil
}
