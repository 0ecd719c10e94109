package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`

	// AllowOrigins feeds the CORS middleware; empty means the local dev
	// frontends only.
	AllowOrigins []string `json:"allow_origins,omitempty" yaml:"allow_origins,omitempty"`

	// MetricsEnabled exposes Prometheus text metrics at GET /metrics.
	MetricsEnabled bool `json:"metrics_enabled,omitempty" yaml:"metrics_enabled,omitempty"`
}

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type DataConfig struct {
	// Source selects where the rate and definition tables are loaded from:
	// "csv" reads RatesPath/DefinitionsPath, "postgres" reads the tables
	// written by cmd/import_rates.
	Source          string `json:"source" yaml:"source"`
	RatesPath       string `json:"rates_path" yaml:"rates_path"`
	DefinitionsPath string `json:"definitions_path" yaml:"definitions_path"`
	PostgresDSN     string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`
}

type EstimatorConfig struct {
	// Model is the id of an entry in Models. Empty disables estimates.
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	// SystemPrompt replaces the built-in instruction sent ahead of the prompt.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

type EngineConfig struct {
	Type string `json:"type" yaml:"type"`

	// BaseURL is the upstream base URL (for "oai_http" engines).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is sent as `Authorization: Bearer <api_key>` for oai_http and
	// used as the Gemini key for genai.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	ChatCompletionsPath string `json:"chat_completions_path,omitempty" yaml:"chat_completions_path,omitempty"`

	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

type ModelConfig struct {
	ID string `json:"id" yaml:"id"`

	// UpstreamModel overrides the model name sent to the engine. Defaults to ID.
	UpstreamModel string `json:"upstream_model,omitempty" yaml:"upstream_model,omitempty"`

	Engine EngineConfig `json:"engine" yaml:"engine"`
}

type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	ServiceName string  `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	Endpoint    string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Insecure    bool    `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	SampleRatio float64 `json:"sample_ratio,omitempty" yaml:"sample_ratio,omitempty"`
}

type Config struct {
	Env       string          `json:"env" yaml:"env"`
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Data      DataConfig      `json:"data" yaml:"data"`
	Estimator EstimatorConfig `json:"estimator" yaml:"estimator"`
	Models    []ModelConfig   `json:"models" yaml:"models"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
}

// EstimatorModel returns the configured estimator model, if any.
func (c *Config) EstimatorModel() (ModelConfig, bool) {
	if c == nil || c.Estimator.Model == "" {
		return ModelConfig{}, false
	}
	for _, m := range c.Models {
		if m.ID == c.Estimator.Model {
			return m, true
		}
	}
	return ModelConfig{}, false
}
