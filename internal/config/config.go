package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"storepulse/internal/report"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Security    SecurityConfig    `yaml:"security" envconfig:"SECURITY"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	WebSocket   WebSocketConfig   `yaml:"websocket" envconfig:"WEBSOCKET"`
	Jobs        JobsConfig        `yaml:"jobs" envconfig:"JOBS"`
	Calculation CalculationConfig `yaml:"calculation" envconfig:"CALCULATION"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"2m"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// JobsConfig contains calculation job queue configuration
type JobsConfig struct {
	Workers   int           `yaml:"workers" envconfig:"WORKERS" default:"2"`
	QueueSize int           `yaml:"queue_size" envconfig:"QUEUE_SIZE" default:"16"`
	ResultTTL time.Duration `yaml:"result_ttl" envconfig:"RESULT_TTL" default:"1h"`
}

// CalculationConfig carries the default profitability parameters. Requests may
// override any of them per calculation.
type CalculationConfig struct {
	MaxConcurrency        int     `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" default:"4"`
	TargetGrossProfitRate float64 `yaml:"target_gross_profit_rate" envconfig:"TARGET_GROSS_PROFIT_RATE" default:"0.25"`
	WarningThreshold      float64 `yaml:"warning_threshold" envconfig:"WARNING_THRESHOLD" default:"0.23"`
	FlowerCostRate        float64 `yaml:"flower_cost_rate" envconfig:"FLOWER_COST_RATE" default:"0.80"`
	DirectProduceCostRate float64 `yaml:"direct_produce_cost_rate" envconfig:"DIRECT_PRODUCE_COST_RATE" default:"0.85"`
	DefaultMarkupRate     float64 `yaml:"default_markup_rate" envconfig:"DEFAULT_MARKUP_RATE" default:"0.26"`
	DefaultBudget         float64 `yaml:"default_budget" envconfig:"DEFAULT_BUDGET" default:"6450000"`
}

// Settings converts the configured defaults to engine settings.
func (c CalculationConfig) Settings() report.Settings {
	return report.Settings{
		TargetGrossProfitRate: c.TargetGrossProfitRate,
		WarningThreshold:      c.WarningThreshold,
		FlowerCostRate:        c.FlowerCostRate,
		DirectProduceCostRate: c.DirectProduceCostRate,
		DefaultMarkupRate:     c.DefaultMarkupRate,
		DefaultBudget:         c.DefaultBudget,
		SupplierCategoryMap:   map[string]report.Category{},
	}
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Environment variables win over file values
	if err := envconfig.Process("SP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("SP_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays env config on top of file config (env takes precedence)
func merge(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Server.ShutdownTimeout == 0 {
		envCfg.Server.ShutdownTimeout = fileCfg.Server.ShutdownTimeout
	}
	if envCfg.Jobs.Workers == 0 {
		envCfg.Jobs.Workers = fileCfg.Jobs.Workers
	}
	if envCfg.Jobs.QueueSize == 0 {
		envCfg.Jobs.QueueSize = fileCfg.Jobs.QueueSize
	}
	if envCfg.Calculation.MaxConcurrency == 0 {
		envCfg.Calculation.MaxConcurrency = fileCfg.Calculation.MaxConcurrency
	}
	if envCfg.Calculation.DefaultBudget == 0 {
		envCfg.Calculation.DefaultBudget = fileCfg.Calculation.DefaultBudget
	}
	return envCfg
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("jobs workers must be positive: %d", c.Jobs.Workers)
	}
	if c.Jobs.QueueSize < 1 {
		return fmt.Errorf("jobs queue size must be positive: %d", c.Jobs.QueueSize)
	}
	if c.Calculation.MaxConcurrency < 1 {
		return fmt.Errorf("calculation max concurrency must be positive: %d", c.Calculation.MaxConcurrency)
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive: %f", c.Security.RateLimit.RPS)
	}
	return nil
}

// GetListenAddr returns the address the HTTP server binds to
func (c *Config) GetListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
