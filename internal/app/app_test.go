package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/estimate"
	"github.com/yungbote/shipping-estimator/internal/observability"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
)

const ratesCSV = `size_tier,weight_class,service_tier,to_country,low_rate,average_rate,high_rate
Small Box,0-1 lb,Economy,United States,5,7.5,10
Large Box,5-10 lb,Express,Canada,40,52,70
Small Box,0-1 lb,Economy,United States,99,99,99
`

const definitionsCSV = `Category,Name,Definition
Size Tier,Small Box,Up to 12 x 9 x 3 in.
Service Tier,Economy,Slowest and cheapest.
`

func writeData(t *testing.T) config.DataConfig {
	t.Helper()
	dir := t.TempDir()
	rates := filepath.Join(dir, "rates.csv")
	defs := filepath.Join(dir, "defs.csv")
	if err := os.WriteFile(rates, []byte(ratesCSV), 0o644); err != nil {
		t.Fatalf("write rates: %v", err)
	}
	if err := os.WriteFile(defs, []byte(definitionsCSV), 0o644); err != nil {
		t.Fatalf("write definitions: %v", err)
	}
	return config.DataConfig{Source: config.SourceCSV, RatesPath: rates, DefinitionsPath: defs}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Env = "test"
	cfg.Data = writeData(t)
	cfg.HTTP.MetricsEnabled = true
	cfg.Models = []config.ModelConfig{{ID: "mock-1", Engine: config.EngineConfig{Type: "mock"}}}
	cfg.Estimator.Model = "mock-1"
	return cfg
}

func TestNewWiresCSVTablesAndEstimator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	if got := a.Tables.Rates.Len(); got != 3 {
		t.Fatalf("rates=%d", got)
	}
	if got := len(a.Tables.Rates.Duplicates()); got != 1 {
		t.Fatalf("duplicates=%d", got)
	}
	if got := a.Tables.Definitions.Len(); got != 2 {
		t.Fatalf("definitions=%d", got)
	}
	if !a.Estimate.Enabled() {
		t.Fatalf("estimator not enabled")
	}

	body := `{"question":"How much?","selection":{"size_tier":"Small Box","weight_class":"0-1 lb","service_tier":"Economy","to_country":"United States"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var ans estimate.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// first row wins over the later duplicate
	if !ans.Found || ans.Rate == nil || ans.Rate.Average != 7.5 {
		t.Fatalf("answer=%+v", ans)
	}
	if !strings.HasPrefix(ans.Estimate, "mock(mock-1): Question: How much?") {
		t.Fatalf("estimate=%q", ans.Estimate)
	}

	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	for _, want := range []string{
		"shiprate_rate_table_rows 3",
		`shiprate_estimates_total{model="mock-1",status="ok"} 1`,
	} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("missing %q in:\n%s", want, rec.Body.String())
		}
	}
}

func TestNewWithoutEstimator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.Estimator.Model = ""

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Estimate.Enabled() {
		t.Fatalf("estimator enabled")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(`{"question":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNewMissingRatesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.RatesPath = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error")
	}
}

type stubEstimator struct {
	out string
	err error
}

func (s stubEstimator) Estimate(context.Context, string) (string, error) { return s.out, s.err }

func TestInstrumentedEstimatorRecordsOutcome(t *testing.T) {
	m := observability.NewMetrics()

	ok := instrumentEstimator("m1", stubEstimator{out: "fine"}, m)
	if out, err := ok.Estimate(context.Background(), "p"); err != nil || out != "fine" {
		t.Fatalf("out=%q err=%v", out, err)
	}

	boom := errors.New("boom")
	bad := instrumentEstimator("m1", stubEstimator{err: boom}, m)
	if _, err := bad.Estimate(context.Background(), "p"); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}

	var sb strings.Builder
	if err := m.WritePrometheus(&sb); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	for _, want := range []string{
		`shiprate_estimates_total{model="m1",status="ok"} 1`,
		`shiprate_estimates_total{model="m1",status="error"} 1`,
	} {
		if !strings.Contains(sb.String(), want) {
			t.Fatalf("missing %q", want)
		}
	}

	if instrumentEstimator("m1", nil, m) != nil {
		t.Fatalf("nil inner should stay nil")
	}
}

func TestBuildEstimatorUsesUpstreamModel(t *testing.T) {
	est, err := BuildEstimator(context.Background(),
		config.ModelConfig{ID: "public", UpstreamModel: "private", Engine: config.EngineConfig{Type: "mock"}},
		config.EstimatorConfig{})
	if err != nil {
		t.Fatalf("BuildEstimator: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out, err := est.Estimate(ctx, "hello")
	if err != nil || out != "mock(private): hello" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestNewShutsDownTracingOnInitError(t *testing.T) {
	calls := 0
	prev := initOTel
	initOTel = func(context.Context, *logger.Logger, string, config.TracingConfig) func(context.Context) error {
		return func(context.Context) error {
			calls++
			return nil
		}
	}
	t.Cleanup(func() { initOTel = prev })

	badRates := testConfig(t)
	badRates.Data.RatesPath = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := New(context.Background(), badRates, nil); err == nil {
		t.Fatalf("expected load error")
	}
	if calls != 1 {
		t.Fatalf("shutdown calls after load error = %d", calls)
	}

	badModel := testConfig(t)
	badModel.Models = []config.ModelConfig{{ID: "mock-1", Engine: config.EngineConfig{Type: "genai"}}}
	if _, err := New(context.Background(), badModel, nil); err == nil {
		t.Fatalf("expected estimator error")
	}
	if calls != 2 {
		t.Fatalf("shutdown calls after estimator error = %d", calls)
	}

	a, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if calls != 2 {
		t.Fatalf("shutdown ran on success: %d", calls)
	}
	a.Close(context.Background())
	if calls != 3 {
		t.Fatalf("Close did not shut down tracing: %d", calls)
	}
}
