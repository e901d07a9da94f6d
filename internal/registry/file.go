package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDocument is the YAML shape accepted by LoadFile.
type fileDocument struct {
	Systems map[string]fileSystem `yaml:"systems"`
}

type fileSystem struct {
	Schema            string            `yaml:"schema"`
	Table             string            `yaml:"table"`
	FilterColumn      string            `yaml:"filter_column"`
	FilterValue       string            `yaml:"filter_value"`
	DateColumn        string            `yaml:"date_column"`
	UpdatedColumn     string            `yaml:"updated_column"`
	ChartColumn       string            `yaml:"chart_column"`
	SeriesAggregation string            `yaml:"series_aggregation"`
	KPIMode           string            `yaml:"kpi_mode"`
	KPIColumns        []string          `yaml:"kpi_columns"`
	KPIAggregations   []fileAggregation `yaml:"kpi_aggregations"`
	CustomKPIQuery    string            `yaml:"custom_kpi_query"`
	CustomSeriesQuery string            `yaml:"custom_series_query"`
}

type fileAggregation struct {
	Column string `yaml:"column"`
	Func   string `yaml:"func"`
}

// LoadFile reads a system set from a YAML file. The result replaces the
// built-in set entirely; validation happens in New, same as for the
// built-ins.
func LoadFile(path string) (map[string]SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", path, err)
	}
	if len(doc.Systems) == 0 {
		return nil, fmt.Errorf("registry file %s defines no systems", path)
	}
	systems := make(map[string]SystemConfig, len(doc.Systems))
	for id, fs := range doc.Systems {
		cfg, err := fs.toConfig()
		if err != nil {
			return nil, fmt.Errorf("system %q: %w", id, err)
		}
		systems[id] = cfg
	}
	return systems, nil
}

func (fs fileSystem) toConfig() (SystemConfig, error) {
	cfg := SystemConfig{
		Schema:        fs.Schema,
		Table:         fs.Table,
		FilterColumn:  fs.FilterColumn,
		FilterValue:   fs.FilterValue,
		DateColumn:    fs.DateColumn,
		UpdatedColumn: fs.UpdatedColumn,
		ChartColumn:   fs.ChartColumn,
		SeriesAgg:     AggFunc(fs.SeriesAggregation),
	}
	switch fs.KPIMode {
	case "latest_row":
		cfg.KPI = LatestRow{Columns: fs.KPIColumns}
	case "aggregated":
		aggs := make([]ColumnAggregation, 0, len(fs.KPIAggregations))
		for _, a := range fs.KPIAggregations {
			aggs = append(aggs, ColumnAggregation{Column: a.Column, Func: AggFunc(a.Func)})
		}
		cfg.KPI = Aggregated{Aggregations: aggs}
	case "custom":
		cfg.KPI = Custom{
			KPITemplate:    fs.CustomKPIQuery,
			SeriesTemplate: fs.CustomSeriesQuery,
		}
	default:
		return SystemConfig{}, fmt.Errorf("unknown kpi_mode %q", fs.KPIMode)
	}
	return cfg, nil
}
