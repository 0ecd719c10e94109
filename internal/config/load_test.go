package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Data.Source != SourceCSV {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, ok := cfg.EstimatorModel(); ok {
		t.Fatalf("estimator should be disabled by default")
	}
}

func TestLoadFileJSON(t *testing.T) {
	p := writeFile(t, "config.json", `{
		"env": "production",
		"http": {"addr": ":9000", "shutdown_timeout": "3s"},
		"data": {"source": "csv", "rates_path": "r.csv", "definitions_path": "d.csv"},
		"estimator": {"model": "gpt", "temperature": 0.2},
		"models": [
			{"id": "gpt", "upstream_model": "gpt-4o-mini", "engine": {"type": "openai_http", "base_url": "https://api.example.com/", "timeout": 2000000000}}
		]
	}`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Env != "production" || cfg.HTTP.Addr != ":9000" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 3*time.Second {
		t.Fatalf("shutdown=%v", cfg.HTTP.ShutdownTimeout.Duration)
	}
	m, ok := cfg.EstimatorModel()
	if !ok {
		t.Fatalf("estimator model missing")
	}
	if m.Engine.Type != "oai_http" || m.Engine.BaseURL != "https://api.example.com" {
		t.Fatalf("engine=%+v", m.Engine)
	}
	if m.Engine.ChatCompletionsPath != "/v1/chat/completions" {
		t.Fatalf("path=%q", m.Engine.ChatCompletionsPath)
	}
	if m.Engine.Timeout.Duration != 2*time.Second {
		t.Fatalf("timeout=%v", m.Engine.Timeout.Duration)
	}
}

func TestLoadFileYAML(t *testing.T) {
	p := writeFile(t, "config.yaml", `
env: development
http:
  addr: ":7000"
  idle_timeout: 90s
data:
  source: postgres
  postgres_dsn: postgres://localhost/shiprate
estimator:
  model: gemini
models:
  - id: gemini
    upstream_model: gemini-2.0-flash
    engine:
      type: gemini
      timeout: 10s
`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.IdleTimeout.Duration != 90*time.Second {
		t.Fatalf("idle=%v", cfg.HTTP.IdleTimeout.Duration)
	}
	if cfg.Data.Source != SourcePostgres {
		t.Fatalf("source=%q", cfg.Data.Source)
	}
	m, ok := cfg.EstimatorModel()
	if !ok || m.Engine.Type != "genai" || m.Engine.Timeout.Duration != 10*time.Second {
		t.Fatalf("model=%+v ok=%v", m, ok)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHIPRATE_HTTP_ADDR", ":1234")
	t.Setenv("SHIPRATE_ESTIMATOR_MODEL", "mock-1")
	t.Setenv("SHIPRATE_ESTIMATOR_API_KEY", "k-123")
	t.Setenv("SHIPRATE_RATES_PATH", "/tmp/rates.csv")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("SHIPRATE_MAX_REQUEST_BYTES", "2048")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Addr != ":1234" || cfg.Data.RatesPath != "/tmp/rates.csv" || !cfg.HTTP.MetricsEnabled || cfg.HTTP.MaxRequestBytes != 2048 {
		t.Fatalf("cfg=%+v", cfg)
	}
	m, ok := cfg.EstimatorModel()
	if !ok || m.Engine.APIKey != "k-123" {
		t.Fatalf("model=%+v", m)
	}
}

func TestLoadFileValidation(t *testing.T) {
	cases := map[string]string{
		"unknown estimator": `{"estimator":{"model":"nope"}}`,
		"bad source":        `{"data":{"source":"s3"}}`,
		"postgres no dsn":   `{"data":{"source":"postgres"}}`,
		"missing base url":  `{"models":[{"id":"x","engine":{"type":"oai_http"}}]}`,
		"duplicate model":   `{"models":[{"id":"x","engine":{"type":"mock"}},{"id":"x","engine":{"type":"mock"}}]}`,
		"unsupported type":  `{"models":[{"id":"x","engine":{"type":"carrier_pigeon"}}]}`,
		"bad duration":      `{"http":{"idle_timeout":"soon"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFile(writeFile(t, "c.json", body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadUsesEnvPath(t *testing.T) {
	p := writeFile(t, "c.json", `{"http":{"addr":":5555"}}`)
	t.Setenv("SHIPRATE_CONFIG_PATH", p)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":5555" {
		t.Fatalf("addr=%q", cfg.HTTP.Addr)
	}

	t.Setenv("SHIPRATE_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("err=%v", err)
	}
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "config", "config.example.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Estimator.Model != "offline" {
		t.Fatalf("estimator model = %q", cfg.Estimator.Model)
	}
	if len(cfg.Models) != 3 {
		t.Fatalf("models = %d", len(cfg.Models))
	}
	if cfg.Models[1].Engine.ChatCompletionsPath != "/v1/chat/completions" {
		t.Fatalf("default path = %q", cfg.Models[1].Engine.ChatCompletionsPath)
	}
	if cfg.HTTP.IdleTimeout.Duration != 2*time.Minute || !cfg.HTTP.MetricsEnabled {
		t.Fatalf("http = %+v", cfg.HTTP)
	}
}

func TestEstimatorModelOptionReceivesEnvKey(t *testing.T) {
	t.Setenv("SHIPRATE_ESTIMATOR_MODEL", "")
	t.Setenv("SHIPRATE_ESTIMATOR_API_KEY", "env-key")
	p := writeFile(t, "c.json", `{
		"data": {"rates_path": "rates.csv"},
		"estimator": {"model": "offline"},
		"models": [
			{"id": "offline", "engine": {"type": "mock"}},
			{"id": "gemini-x", "engine": {"type": "genai"}}
		]
	}`)

	cfg, err := LoadFile(p, WithEstimatorModel("gemini-x"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	mc, ok := cfg.EstimatorModel()
	if !ok || mc.ID != "gemini-x" {
		t.Fatalf("estimator model = %+v ok=%v", mc, ok)
	}
	if mc.Engine.APIKey != "env-key" {
		t.Fatalf("api key = %q", mc.Engine.APIKey)
	}
	if cfg.Models[0].Engine.APIKey != "" {
		t.Fatalf("key leaked to %q", cfg.Models[0].ID)
	}

	if _, err := LoadFile(p, WithEstimatorModel("unknown")); err == nil {
		t.Fatalf("expected error for unknown estimator model")
	}
}
