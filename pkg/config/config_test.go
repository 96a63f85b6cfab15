package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
instruments:
  - name: NTPC
    source:
      type: file
      path: data/NTPC.csv
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Analysis.Window != 10 {
		t.Errorf("window = %d, want 10", cfg.Analysis.Window)
	}
	if cfg.Analysis.BandMultiplier != 1.0 {
		t.Errorf("band multiplier = %v, want 1.0", cfg.Analysis.BandMultiplier)
	}
	if cfg.Analysis.LoadTimeout != 15*time.Second {
		t.Errorf("load timeout = %v, want 15s", cfg.Analysis.LoadTimeout)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "json" {
		t.Errorf("logger defaults = %+v", cfg.Logger)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache ttl = %v, want 10m", cfg.Cache.TTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: production
analysis:
  window: 20
  band_multiplier: 1.5
instruments:
  - name: DLF
    source:
      type: http
      url: https://example.com/dlf.csv
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.Window != 20 || cfg.Analysis.BandMultiplier != 1.5 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing environment", `
instruments:
  - name: A
    source: {type: file, path: a.csv}
`},
		{"no instruments", `
environment: test
instruments: []
`},
		{"duplicate instrument", `
environment: test
instruments:
  - name: A
    source: {type: file, path: a.csv}
  - name: A
    source: {type: file, path: b.csv}
`},
		{"unknown source type", `
environment: test
instruments:
  - name: A
    source: {type: ftp, path: a.csv}
`},
		{"file source without path", `
environment: test
instruments:
  - name: A
    source: {type: file}
`},
		{"http source without url", `
environment: test
instruments:
  - name: A
    source: {type: http}
`},
		{"clickhouse source without table", `
environment: test
instruments:
  - name: A
    source: {type: clickhouse}
`},
		{"publisher without brokers", `
environment: test
instruments:
  - name: A
    source: {type: file, path: a.csv}
publisher:
  enabled: true
  topic: signals
`},
		{"negative window", `
environment: test
analysis:
  window: -3
instruments:
  - name: A
    source: {type: file, path: a.csv}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("KAFKA_TOPIC", "signals.prod")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Cache.Redis.Addr != "redis.internal:6379" || !cfg.Cache.Redis.Enabled {
		t.Errorf("redis override = %+v", cfg.Cache.Redis)
	}
	if cfg.Publisher.Topic != "signals.prod" {
		t.Errorf("topic = %q", cfg.Publisher.Topic)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
