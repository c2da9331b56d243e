package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Storage struct {
		Type string `yaml:"type"` // clickhouse or memory
	} `yaml:"storage"`
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
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		ItemsTopic  string   `yaml:"items_topic"`  // raw items consumed from here
		EventsTopic string   `yaml:"events_topic"` // analyzed posts published here
		Compression string   `yaml:"compression"`
		Consumer    struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Classifier struct {
		ServiceURL          string        `yaml:"service_url"`
		Timeout             time.Duration `yaml:"timeout"`
		MaxInputChars       int           `yaml:"max_input_chars"`
		ConfidenceThreshold float64       `yaml:"confidence_threshold"`
		RetryAttempts       int           `yaml:"retry_attempts"`
	} `yaml:"classifier"`
	Registry struct {
		TickersPath  string `yaml:"tickers_path"`
		StoplistPath string `yaml:"stoplist_path"`
	} `yaml:"registry"`
	Ingest struct {
		Workers         int      `yaml:"workers"`
		ExcludePatterns []string `yaml:"exclude_patterns"`
	} `yaml:"ingest"`
	Analytics struct {
		MinSampleSize int           `yaml:"min_sample_size"`
		MaxRankSize   int           `yaml:"max_rank_size"`
		PageLimit     int           `yaml:"page_limit"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"analytics"`
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

	if v := os.Getenv("STORAGE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("CLASSIFIER_URL"); v != "" {
		c.Classifier.ServiceURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Classifier.MaxInputChars <= 0 {
		c.Classifier.MaxInputChars = 2000
	}
	if c.Classifier.ConfidenceThreshold <= 0 {
		c.Classifier.ConfidenceThreshold = 0.6
	}
	if c.Classifier.RetryAttempts <= 0 {
		c.Classifier.RetryAttempts = 3
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Analytics.MinSampleSize <= 0 {
		c.Analytics.MinSampleSize = 5
	}
	if c.Analytics.MaxRankSize <= 0 {
		c.Analytics.MaxRankSize = 10
	}
	if c.Analytics.PageLimit <= 0 {
		c.Analytics.PageLimit = 50
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Storage.Type == "" {
		return fmt.Errorf("storage.type is required")
	}
	if c.Storage.Type != "clickhouse" && c.Storage.Type != "memory" {
		return fmt.Errorf("storage.type must be 'clickhouse' or 'memory', got '%s'", c.Storage.Type)
	}
	if c.Classifier.ServiceURL == "" {
		return fmt.Errorf("classifier.service_url is required")
	}
	if c.Registry.TickersPath == "" {
		return fmt.Errorf("registry.tickers_path is required")
	}
	if c.Classifier.ConfidenceThreshold >= 1 {
		return fmt.Errorf("classifier.confidence_threshold must be below 1, got %v", c.Classifier.ConfidenceThreshold)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
