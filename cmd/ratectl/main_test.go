package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/shipping-estimator/internal/estimate"
	"github.com/yungbote/shipping-estimator/internal/reference"
)

const ratesCSV = `size_tier,weight_class,service_tier,to_country,low_rate,average_rate,high_rate
Small Box,0-1 lb,Economy,United States,5,7.5,10
Large Box,5-10 lb,Express,Canada,40,52,70
`

const definitionsCSV = `Category,Name,Definition
Size Tier,Small Box,Up to 12 x 9 x 3 in.
Service Tier,Economy,Slowest and cheapest.
Size Tier,Large Box,Up to 24 x 18 x 12 in.
`

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	rates := filepath.Join(dir, "rates.csv")
	defs := filepath.Join(dir, "defs.csv")
	if err := os.WriteFile(rates, []byte(ratesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(defs, []byte(definitionsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return rates, defs
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rates, defs := writeFixtures(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--rates", rates, "--definitions", defs}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLookupFound(t *testing.T) {
	out, err := run(t, "lookup", "--size", "Small Box", "--weight", "0-1 lb", "--service", "Economy", "--country", "United States")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	for _, want := range []string{"Low:     $5.00", "Average: $7.50", "High:    $10.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLookupNotFoundIsNotAnError(t *testing.T) {
	out, err := run(t, "lookup", "--size", "Small Box", "--weight", "0-1 lb", "--service", "Economy", "--country", "Mongolia")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !strings.Contains(out, "No matching rate found") {
		t.Fatalf("out=%s", out)
	}
}

func TestLookupJSON(t *testing.T) {
	out, err := run(t, "--json", "lookup", "--size", "Large Box", "--weight", "5-10 lb", "--service", "Express", "--country", "Canada")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	var ans estimate.Answer
	if err := json.Unmarshal([]byte(out), &ans); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !ans.Found || ans.Rate == nil || ans.Rate.Average != 52 {
		t.Fatalf("answer=%+v", ans)
	}
}

func TestLookupMissingFlags(t *testing.T) {
	_, err := run(t, "lookup", "--size", "Small Box")
	if err == nil || !strings.Contains(err.Error(), "weight_class, service_tier, to_country") {
		t.Fatalf("err=%v", err)
	}
}

func TestOptions(t *testing.T) {
	out, err := run(t, "options")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if !strings.Contains(out, "Package Size:\n  Large Box\n  Small Box\n") {
		t.Fatalf("out=%s", out)
	}
	if !strings.Contains(out, "Destination Country:\n  Canada\n  United States\n") {
		t.Fatalf("out=%s", out)
	}
}

func TestDefinitionsGroupedByFirstAppearance(t *testing.T) {
	out, err := run(t, "--json", "definitions")
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	var sections []reference.Section
	if err := json.Unmarshal([]byte(out), &sections); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sections) != 2 || sections[0].Category != "Size Tier" || len(sections[0].Entries) != 2 || sections[1].Category != "Service Tier" {
		t.Fatalf("sections=%+v", sections)
	}
}

func TestDefinitionsSingleTerm(t *testing.T) {
	out, err := run(t, "definitions", "Economy")
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if out != "Economy (Service Tier): Slowest and cheapest.\n" {
		t.Fatalf("out=%q", out)
	}

	if _, err := run(t, "definitions", "Pallet"); err == nil {
		t.Fatalf("expected error for unknown term")
	}
}

func TestEstimateWithMockModel(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgBody := "models:\n  - id: offline\n    engine:\n      type: mock\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHIPRATE_CONFIG_PATH", cfgPath)

	out, err := run(t, "estimate", "How much to ship?", "--model", "offline",
		"--size", "Small Box", "--weight", "0-1 lb", "--service", "Economy", "--country", "United States")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !strings.Contains(out, "Average: $7.50") || !strings.Contains(out, "mock(offline): Question: How much to ship?") {
		t.Fatalf("out=%s", out)
	}
}

func TestEstimateUnknownModel(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(cfgPath, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHIPRATE_CONFIG_PATH", cfgPath)

	_, err := run(t, "estimate", "How much?", "--model", "nope")
	if err == nil || !strings.Contains(err.Error(), "no estimator model") {
		t.Fatalf("err=%v", err)
	}
}
