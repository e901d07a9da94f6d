package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() SystemConfig {
	return SystemConfig{
		Schema:        "kpi_tv",
		Table:         "piperun_daily",
		FilterColumn:  "pipeline_id",
		FilterValue:   "78157",
		DateColumn:    "ref_date",
		UpdatedColumn: "updated_at",
		ChartColumn:   "oportunidades_recebidas",
		SeriesAgg:     AggSum,
		KPI:           LatestRow{Columns: []string{"oportunidades_recebidas"}},
	}
}

func TestNewAndLookup(t *testing.T) {
	reg, err := New(map[string]SystemConfig{"piperun": validConfig()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reg.Lookup("piperun"); !ok {
		t.Fatalf("expected piperun to resolve")
	}
	if _, ok := reg.Lookup("PipeRun"); ok {
		t.Fatalf("lookup must match identifiers literally")
	}
	if _, ok := reg.Lookup("unknown"); ok {
		t.Fatalf("unexpected hit for unknown system")
	}
}

func TestDefaultSystemsAreValid(t *testing.T) {
	reg, err := New(Default())
	if err != nil {
		t.Fatalf("built-in registry must validate: %v", err)
	}
	if got := len(reg.IDs()); got != 9 {
		t.Fatalf("expected 9 built-in systems, got %d", got)
	}
	for _, id := range []string{"piperun", "n8n", "conta_azul", "cpj3c", "meta_ads", "google_ads", "ti", "liderhub", "evolution"} {
		if _, ok := reg.Lookup(id); !ok {
			t.Errorf("missing built-in system %q", id)
		}
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SystemConfig)
	}{
		{"missing table", func(c *SystemConfig) { c.Table = "" }},
		{"injection in table", func(c *SystemConfig) { c.Table = "piperun_daily; DROP TABLE x" }},
		{"injection in filter column", func(c *SystemConfig) { c.FilterColumn = "pipeline_id = '1' OR" }},
		{"filter value without column", func(c *SystemConfig) { c.FilterColumn = "" }},
		{"filter column without value", func(c *SystemConfig) { c.FilterValue = "" }},
		{"no kpi mode", func(c *SystemConfig) { c.KPI = nil }},
		{"empty latest-row columns", func(c *SystemConfig) { c.KPI = LatestRow{} }},
		{"bad kpi column", func(c *SystemConfig) { c.KPI = LatestRow{Columns: []string{"a b"}} }},
		{"unknown aggregation", func(c *SystemConfig) {
			c.KPI = Aggregated{Aggregations: []ColumnAggregation{{Column: "cost", Func: "MEDIAN"}}}
		}},
		{"empty custom template", func(c *SystemConfig) { c.KPI = Custom{} }},
		{"filtered custom template without filter clauses", func(c *SystemConfig) {
			c.KPI = Custom{KPITemplate: "SELECT 1 FROM {schema}.{table}"}
		}},
		{"missing chart column", func(c *SystemConfig) { c.ChartColumn = "" }},
		{"unknown series aggregation", func(c *SystemConfig) { c.SeriesAgg = "COUNT" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if _, err := New(map[string]SystemConfig{"sys": cfg}); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestCustomWithSeriesTemplateNeedsNoChartColumn(t *testing.T) {
	cfg := validConfig()
	cfg.FilterColumn = ""
	cfg.FilterValue = ""
	cfg.ChartColumn = ""
	cfg.SeriesAgg = ""
	cfg.KPI = Custom{
		KPITemplate:    "SELECT COUNT(*), MAX({updated_col}) FROM {schema}.{table}",
		SeriesTemplate: "SELECT {date_col}, COUNT(*) FROM {schema}.{table} GROUP BY {date_col} ORDER BY {date_col} DESC LIMIT 14",
	}
	if _, err := New(map[string]SystemConfig{"sys": cfg}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	doc := `
systems:
  piperun:
    schema: kpi_tv
    table: piperun_daily
    filter_column: pipeline_id
    filter_value: "78157"
    date_column: ref_date
    updated_column: updated_at
    chart_column: oportunidades_recebidas
    series_aggregation: SUM
    kpi_mode: latest_row
    kpi_columns: [oportunidades_recebidas, oportunidades_ganhas]
  meta_ads:
    schema: kpi_tv
    table: meta_ads_daily
    date_column: ref_date
    updated_column: updated_at
    chart_column: clicks
    series_aggregation: SUM
    kpi_mode: aggregated
    kpi_aggregations:
      - column: cost
        func: SUM
      - column: cpl
        func: AVG
`
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write registry file: %v", err)
	}
	systems, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg, err := New(systems)
	if err != nil {
		t.Fatalf("loaded systems must validate: %v", err)
	}
	cfg, ok := reg.Lookup("piperun")
	if !ok {
		t.Fatalf("expected piperun")
	}
	lr, ok := cfg.KPI.(LatestRow)
	if !ok || len(lr.Columns) != 2 {
		t.Fatalf("unexpected kpi mode: %#v", cfg.KPI)
	}
	cfg, ok = reg.Lookup("meta_ads")
	if !ok {
		t.Fatalf("expected meta_ads")
	}
	agg, ok := cfg.KPI.(Aggregated)
	if !ok || len(agg.Aggregations) != 2 {
		t.Fatalf("unexpected kpi mode: %#v", cfg.KPI)
	}
	if agg.Aggregations[0] != (ColumnAggregation{Column: "cost", Func: AggSum}) {
		t.Fatalf("aggregation order not preserved: %#v", agg.Aggregations)
	}
}

func TestLoadFileRejectsUnknownMode(t *testing.T) {
	doc := `
systems:
  broken:
    schema: kpi_tv
    table: t
    date_column: d
    updated_column: u
    kpi_mode: magic
`
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write registry file: %v", err)
	}
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "kpi_mode") {
		t.Fatalf("expected kpi_mode error, got %v", err)
	}
}

func TestLoadFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte("systems: {}\n"), 0o600); err != nil {
		t.Fatalf("write registry file: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for empty registry")
	}
}
