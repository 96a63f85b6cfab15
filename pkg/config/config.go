package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceConfig addresses the raw records of one instrument.
type SourceConfig struct {
	Type  string `yaml:"type"` // file, http or clickhouse
	Path  string `yaml:"path"`
	URL   string `yaml:"url"`
	Table string `yaml:"table"`
}

// InstrumentConfig names one instrument and where its records live.
type InstrumentConfig struct {
	Name   string       `yaml:"name"`
	Source SourceConfig `yaml:"source"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Analysis struct {
		Window         int           `yaml:"window"`
		BandMultiplier float64       `yaml:"band_multiplier"`
		LoadTimeout    time.Duration `yaml:"load_timeout"`
	} `yaml:"analysis"`
	Instruments []InstrumentConfig `yaml:"instruments"`
	Cache       struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		MaxSize int           `yaml:"max_size"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Publisher struct {
		Enabled bool   `yaml:"enabled"`
		Topic   string `yaml:"topic"`
		Kafka   struct {
			Brokers      []string      `yaml:"brokers"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"kafka"`
	} `yaml:"publisher"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

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

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Publisher.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Publisher.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.Window == 0 {
		c.Analysis.Window = 10
	}
	if c.Analysis.BandMultiplier == 0 {
		c.Analysis.BandMultiplier = 1.0
	}
	if c.Analysis.LoadTimeout == 0 {
		c.Analysis.LoadTimeout = 15 * time.Second
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 10 * time.Minute
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 64
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Analysis.Window < 1 {
		return fmt.Errorf("analysis.window must be >= 1, got %d", c.Analysis.Window)
	}
	if c.Analysis.BandMultiplier <= 0 {
		return fmt.Errorf("analysis.band_multiplier must be > 0, got %v", c.Analysis.BandMultiplier)
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("instruments cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.Instruments))
	for i, ins := range c.Instruments {
		if ins.Name == "" {
			return fmt.Errorf("instruments[%d].name is required", i)
		}
		if _, dup := seen[ins.Name]; dup {
			return fmt.Errorf("duplicate instrument %q", ins.Name)
		}
		seen[ins.Name] = struct{}{}
		if err := ins.Source.validate(); err != nil {
			return fmt.Errorf("instrument %q: %w", ins.Name, err)
		}
	}
	if c.Publisher.Enabled {
		if len(c.Publisher.Kafka.Brokers) == 0 {
			return fmt.Errorf("publisher.kafka.brokers required when publisher enabled")
		}
		if c.Publisher.Topic == "" {
			return fmt.Errorf("publisher.topic required when publisher enabled")
		}
	}
	return nil
}

func (s SourceConfig) validate() error {
	switch s.Type {
	case "file":
		if s.Path == "" {
			return fmt.Errorf("source.path required for file source")
		}
	case "http":
		if s.URL == "" {
			return fmt.Errorf("source.url required for http source")
		}
	case "clickhouse":
		if s.Table == "" {
			return fmt.Errorf("source.table required for clickhouse source")
		}
	default:
		return fmt.Errorf("source.type must be 'file', 'http' or 'clickhouse', got %q", s.Type)
	}
	return nil
}
