// Package registry holds the static per-system query configuration that
// drives the KPI and series endpoints. Configurations are validated once at
// construction and never change afterwards, so the registry is safe to share
// across request handlers without locking.
package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// AggFunc is a SQL aggregation function applied to a KPI or chart column.
type AggFunc string

const (
	AggSum AggFunc = "SUM"
	AggAvg AggFunc = "AVG"
)

func (f AggFunc) valid() bool {
	return f == AggSum || f == AggAvg
}

// ColumnAggregation pairs a column with the function used to aggregate it.
// Aggregations are kept as an ordered slice so snapshot values always come
// back in the configured order.
type ColumnAggregation struct {
	Column string
	Func   AggFunc
}

// KPIQuery is the tagged variant describing how a system's KPI snapshot is
// computed. Exactly one of LatestRow, Aggregated or Custom is attached to
// each SystemConfig.
type KPIQuery interface {
	kpiQuery()
}

// LatestRow selects the configured columns from the single most recent row.
type LatestRow struct {
	Columns []string
}

// Aggregated computes each aggregation over all rows sharing the most recent
// date bucket.
type Aggregated struct {
	Aggregations []ColumnAggregation
}

// Custom carries raw parameterized SQL templates for systems whose KPIs
// cannot be expressed by the two standard shapes. SeriesTemplate is optional;
// when empty the default series query is used.
type Custom struct {
	KPITemplate    string
	SeriesTemplate string
}

func (LatestRow) kpiQuery()  {}
func (Aggregated) kpiQuery() {}
func (Custom) kpiQuery()     {}

// SystemConfig describes where one system's daily rows live and how to turn
// them into a KPI snapshot and a 14-day series.
type SystemConfig struct {
	Schema        string
	Table         string
	FilterColumn  string
	FilterValue   string
	DateColumn    string
	UpdatedColumn string
	ChartColumn   string
	SeriesAgg     AggFunc
	KPI           KPIQuery
}

// Filtered reports whether the system is scoped to one logical partition.
func (c SystemConfig) Filtered() bool {
	return c.FilterColumn != ""
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidIdent reports whether s is acceptable as a schema, table or column
// name. Every identifier that ends up interpolated into SQL must pass this
// check at registry construction time.
func ValidIdent(s string) bool {
	return identPattern.MatchString(s)
}

func (c SystemConfig) validate() error {
	if c.Schema == "" || c.Table == "" {
		return fmt.Errorf("schema and table are required")
	}
	for _, ident := range []string{c.Schema, c.Table, c.DateColumn, c.UpdatedColumn} {
		if !ValidIdent(ident) {
			return fmt.Errorf("invalid identifier %q", ident)
		}
	}
	if c.FilterColumn == "" && c.FilterValue != "" {
		return fmt.Errorf("filter value %q set without a filter column", c.FilterValue)
	}
	if c.FilterColumn != "" {
		if !ValidIdent(c.FilterColumn) {
			return fmt.Errorf("invalid filter column %q", c.FilterColumn)
		}
		if c.FilterValue == "" {
			return fmt.Errorf("filter column %q set without a filter value", c.FilterColumn)
		}
	}
	if c.ChartColumn != "" && !ValidIdent(c.ChartColumn) {
		return fmt.Errorf("invalid chart column %q", c.ChartColumn)
	}
	switch q := c.KPI.(type) {
	case LatestRow:
		if len(q.Columns) == 0 {
			return fmt.Errorf("latest-row config needs at least one KPI column")
		}
		for _, col := range q.Columns {
			if !ValidIdent(col) {
				return fmt.Errorf("invalid KPI column %q", col)
			}
		}
	case Aggregated:
		if len(q.Aggregations) == 0 {
			return fmt.Errorf("aggregated config needs at least one aggregation")
		}
		for _, agg := range q.Aggregations {
			if !ValidIdent(agg.Column) {
				return fmt.Errorf("invalid aggregation column %q", agg.Column)
			}
			if !agg.Func.valid() {
				return fmt.Errorf("unknown aggregation function %q for column %q", agg.Func, agg.Column)
			}
		}
	case Custom:
		if strings.TrimSpace(q.KPITemplate) == "" {
			return fmt.Errorf("custom config needs a KPI query template")
		}
		if c.Filtered() {
			if !strings.Contains(q.KPITemplate, "{where_filter}") || !strings.Contains(q.KPITemplate, "{and_filter}") {
				return fmt.Errorf("filtered custom KPI template must reference {where_filter} and {and_filter}")
			}
			if q.SeriesTemplate != "" && !strings.Contains(q.SeriesTemplate, "{where_filter}") {
				return fmt.Errorf("filtered custom series template must reference {where_filter}")
			}
		}
	case nil:
		return fmt.Errorf("KPI query mode is required")
	default:
		return fmt.Errorf("unsupported KPI query mode %T", q)
	}
	usesDefaultSeries := true
	if q, ok := c.KPI.(Custom); ok && q.SeriesTemplate != "" {
		usesDefaultSeries = false
	}
	if usesDefaultSeries {
		if c.ChartColumn == "" {
			return fmt.Errorf("chart column is required without a custom series template")
		}
		if !c.SeriesAgg.valid() {
			return fmt.Errorf("unknown series aggregation %q", c.SeriesAgg)
		}
	}
	return nil
}

// Registry maps system identifiers to their configurations. Identifiers are
// matched literally, with no normalization.
type Registry struct {
	systems map[string]SystemConfig
}

// New validates every config and returns the immutable registry. A single
// invalid entry fails the whole set so misconfiguration is caught at startup
// rather than on the first request that hits it.
func New(systems map[string]SystemConfig) (*Registry, error) {
	copied := make(map[string]SystemConfig, len(systems))
	for id, cfg := range systems {
		if id == "" {
			return nil, fmt.Errorf("system identifier must not be empty")
		}
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("system %q: %w", id, err)
		}
		copied[id] = cfg
	}
	return &Registry{systems: copied}, nil
}

// Lookup returns the configuration registered under id.
func (r *Registry) Lookup(id string) (SystemConfig, bool) {
	cfg, ok := r.systems[id]
	return cfg, ok
}

// IDs returns the registered system identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.systems))
	for id := range r.systems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
