package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Mode        string `yaml:"mode" default:"simulation" validate:"oneof=simulation live"`

	Symbols []string `yaml:"symbols" validate:"min=1"`
	// Correlated pairs for divergence checks, subject -> peer.
	Peers map[string]string `yaml:"peers"`

	AnalysisInterval time.Duration `yaml:"analysis_interval" default:"5m"`
	BlockedSessions  []string      `yaml:"blocked_sessions"`

	Risk struct {
		ScoreThreshold         int     `yaml:"score_threshold" default:"65" validate:"gte=0,lte=100"`
		MaxDailyLossPercent    float64 `yaml:"max_daily_loss_percent" default:"2" validate:"gt=0,lte=100"`
		MaxPositionSizePercent float64 `yaml:"max_position_size_percent" default:"5" validate:"gt=0,lte=100"`
		MinRewardRiskRatio     float64 `yaml:"min_reward_risk_ratio" default:"2" validate:"gt=0"`
		StartingCapital        float64 `yaml:"starting_capital" default:"100000" validate:"gt=0"`
	} `yaml:"risk"`

	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Datafeed struct {
		BaseURL        string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		FallbackURL    string        `yaml:"fallback_url" default:"https://query2.finance.yahoo.com"`
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		StreamURL      string        `yaml:"stream_url"`
		StreamAPIKey   string        `yaml:"stream_api_key"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"datafeed"`

	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`

	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"trade-decisions"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`

	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		QuoteTTL time.Duration `yaml:"quote_ttl" default:"5s"`
		BarTTL   time.Duration `yaml:"bar_ttl" default:"1m"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file, applying defaults
// before validation.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("STREAM_API_KEY"); v != "" {
		c.Datafeed.StreamAPIKey = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	for subject, peer := range c.Peers {
		if subject == peer {
			return fmt.Errorf("peers: %s cannot be its own peer", subject)
		}
	}
	return nil
}
