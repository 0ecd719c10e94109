package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/shipping-estimator/internal/platform/envutil"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, line %d", node.Line)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
		},
		Data: DataConfig{
			Source:          SourceCSV,
			RatesPath:       "data/shipping_rate_by_country.csv",
			DefinitionsPath: "data/shipping_definitions_reference.csv",
		},
		Tracing: TracingConfig{
			ServiceName: "shipping-estimator",
			SampleRatio: 0.1,
		},
	}
}

// Load reads the config file named by SHIPRATE_CONFIG_PATH, falling back to
// config/config.{json,yaml,yml} under the working directory, then applies
// environment overrides. When no file is found defaults apply; a path named
// by SHIPRATE_CONFIG_PATH must exist.
func Load(opts ...Option) (*Config, error) {
	path := strings.TrimSpace(os.Getenv("SHIPRATE_CONFIG_PATH"))
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
				p := filepath.Join(wd, "config", name)
				if _, err := os.Stat(p); err == nil {
					path = p
					break
				}
			}
		}
	}
	return LoadFile(path, opts...)
}

// Option overrides a setting after the file and environment are applied and
// before validation, so derived settings see the override.
type Option func(*Config)

// WithEstimatorModel selects the estimator model. An empty id keeps the
// configured one.
func WithEstimatorModel(id string) Option {
	return func(cfg *Config) {
		if id = strings.TrimSpace(id); id != "" {
			cfg.Estimator.Model = id
		}
	}
}

// LoadFile is Load with an explicit path. An empty path skips the file.
func LoadFile(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := decode(path, b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	for _, opt := range opts {
		opt(cfg)
	}
	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("SHIPRATE_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.AllowOrigins = envutil.CSV("SHIPRATE_ALLOW_ORIGINS", cfg.HTTP.AllowOrigins)
	cfg.HTTP.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.HTTP.MetricsEnabled)
	cfg.HTTP.MaxRequestBytes = int64(envutil.Int("SHIPRATE_MAX_REQUEST_BYTES", int(cfg.HTTP.MaxRequestBytes)))
	cfg.Data.Source = envutil.String("SHIPRATE_DATA_SOURCE", cfg.Data.Source)
	cfg.Data.RatesPath = envutil.String("SHIPRATE_RATES_PATH", cfg.Data.RatesPath)
	cfg.Data.DefinitionsPath = envutil.String("SHIPRATE_DEFINITIONS_PATH", cfg.Data.DefinitionsPath)
	cfg.Data.PostgresDSN = envutil.String("POSTGRES_DSN", cfg.Data.PostgresDSN)
	cfg.Estimator.Model = envutil.String("SHIPRATE_ESTIMATOR_MODEL", cfg.Estimator.Model)
	cfg.Tracing.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Tracing.Insecure)
	cfg.Tracing.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Tracing.SampleRatio)
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}

	cfg.Data.Source = strings.ToLower(strings.TrimSpace(cfg.Data.Source))
	switch cfg.Data.Source {
	case "", SourceCSV:
		cfg.Data.Source = SourceCSV
		if strings.TrimSpace(cfg.Data.RatesPath) == "" {
			return errors.New("data.rates_path is required for the csv source")
		}
	case SourcePostgres:
		if strings.TrimSpace(cfg.Data.PostgresDSN) == "" {
			return errors.New("data.postgres_dsn (or POSTGRES_DSN) is required for the postgres source")
		}
	default:
		return fmt.Errorf("invalid data.source=%q", cfg.Data.Source)
	}

	if len(cfg.Models) == 0 {
		cfg.Models = []ModelConfig{{ID: "mock-1", Engine: EngineConfig{Type: "mock"}}}
	}

	seen := map[string]bool{}
	for i := range cfg.Models {
		m := &cfg.Models[i]
		m.ID = strings.TrimSpace(m.ID)
		if m.ID == "" {
			return errors.New("model id is required")
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate model id: %s", m.ID)
		}
		seen[m.ID] = true
		if strings.TrimSpace(m.UpstreamModel) == "" {
			m.UpstreamModel = m.ID
		}

		m.Engine.Type = strings.ToLower(strings.TrimSpace(m.Engine.Type))
		m.Engine.BaseURL = strings.TrimRight(strings.TrimSpace(m.Engine.BaseURL), "/")
		m.Engine.ChatCompletionsPath = strings.TrimSpace(m.Engine.ChatCompletionsPath)
		m.Engine.APIKey = strings.TrimSpace(m.Engine.APIKey)

		switch m.Engine.Type {
		case "":
			return fmt.Errorf("model %q missing engine.type", m.ID)
		case "mock":
		case "openai_http", "oai_http":
			m.Engine.Type = "oai_http"
			if m.Engine.BaseURL == "" {
				return fmt.Errorf("model %q (oai_http) missing engine.base_url", m.ID)
			}
			if m.Engine.ChatCompletionsPath == "" {
				m.Engine.ChatCompletionsPath = "/v1/chat/completions"
			}
		case "genai", "gemini":
			m.Engine.Type = "genai"
		default:
			return fmt.Errorf("model %q unsupported engine.type=%q", m.ID, m.Engine.Type)
		}
		if m.Engine.Timeout.Duration <= 0 {
			m.Engine.Timeout = Duration{Duration: 60 * time.Second}
		}
	}

	cfg.Estimator.Model = strings.TrimSpace(cfg.Estimator.Model)
	if cfg.Estimator.Model != "" && !seen[cfg.Estimator.Model] {
		return fmt.Errorf("estimator.model %q is not a configured model", cfg.Estimator.Model)
	}
	if key := envutil.String("SHIPRATE_ESTIMATOR_API_KEY", ""); key != "" {
		for i := range cfg.Models {
			if cfg.Models[i].ID == cfg.Estimator.Model && cfg.Models[i].Engine.APIKey == "" {
				cfg.Models[i].Engine.APIKey = key
			}
		}
	}
	if cfg.Estimator.Temperature < 0 || cfg.Estimator.Temperature > 2 {
		return fmt.Errorf("estimator.temperature out of range: %v", cfg.Estimator.Temperature)
	}

	if cfg.Tracing.SampleRatio < 0 {
		cfg.Tracing.SampleRatio = 0
	}
	if cfg.Tracing.SampleRatio > 1 {
		cfg.Tracing.SampleRatio = 1
	}
	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "shipping-estimator"
	}
	return nil
}
