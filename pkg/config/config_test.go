package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
storage:
  type: memory
classifier:
  service_url: http://localhost:5000
  timeout: 5s
  confidence_threshold: 0.7
registry:
  tickers_path: config/tickers.yaml
ingest:
  workers: 8
  exclude_patterns:
    - "daily.*discussion"
analytics:
  min_sample_size: 3
  cache_ttl: 60s
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("server %+v", cfg.Server)
	}
	if cfg.Storage.Type != "memory" {
		t.Fatalf("storage %+v", cfg.Storage)
	}
	if cfg.Classifier.ConfidenceThreshold != 0.7 {
		t.Fatalf("classifier %+v", cfg.Classifier)
	}
	if len(cfg.Ingest.ExcludePatterns) != 1 {
		t.Fatalf("ingest %+v", cfg.Ingest)
	}
	if cfg.Analytics.CacheTTL != time.Minute {
		t.Fatalf("analytics %+v", cfg.Analytics)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("logging defaults %+v", cfg.Logging)
	}
	if cfg.Classifier.MaxInputChars != 2000 {
		t.Fatalf("classifier defaults %+v", cfg.Classifier)
	}
	if cfg.Analytics.MaxRankSize != 10 || cfg.Analytics.PageLimit != 50 {
		t.Fatalf("analytics defaults %+v", cfg.Analytics)
	}
}

func TestLoadRejectsBadStorageType(t *testing.T) {
	bad := `
environment: test
storage:
  type: postgres
classifier:
  service_url: http://localhost:5000
registry:
  tickers_path: config/tickers.yaml
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRequiresClassifierURL(t *testing.T) {
	bad := `
environment: test
storage:
  type: memory
registry:
  tickers_path: config/tickers.yaml
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadKafkaEnabledNeedsBrokers(t *testing.T) {
	bad := validYAML + `
kafka:
  enabled: true
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE", "clickhouse")
	t.Setenv("CLASSIFIER_URL", "http://model:9000")
	t.Setenv("PORT", "9999")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Type != "clickhouse" {
		t.Fatalf("storage %q", cfg.Storage.Type)
	}
	if cfg.Classifier.ServiceURL != "http://model:9000" {
		t.Fatalf("classifier url %q", cfg.Classifier.ServiceURL)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("port %d", cfg.Server.Port)
	}
}
