// Package query renders SystemConfig into parameterized SQL. Only
// configuration identifiers (validated against the registry allow-list) are
// interpolated into the text; every value, including the partition filter
// value, travels as a bound parameter.
package query

import (
	"fmt"
	"strings"

	"bno-dashboard-backend/internal/registry"
)

// seriesLimit and detailedLimit are contract values: series responses cover
// at most the 14 most recent date buckets, detailed responses at most 1000
// rows.
const (
	seriesLimit   = 14
	detailedLimit = 1000
)

// KPI returns the snapshot query for cfg. The parameter count is 0 for
// unfiltered systems, 1 for filtered latest-row systems and 2 for filtered
// aggregated/custom systems (the filter value is bound both in the max-date
// subquery and in the outer predicate).
func KPI(cfg registry.SystemConfig) string {
	switch q := cfg.KPI.(type) {
	case registry.LatestRow:
		var b strings.Builder
		b.WriteString("SELECT ")
		b.WriteString(strings.Join(q.Columns, ", "))
		b.WriteString(", ")
		b.WriteString(cfg.UpdatedColumn)
		b.WriteString(" FROM ")
		b.WriteString(relation(cfg))
		if cfg.Filtered() {
			b.WriteString(" WHERE ")
			b.WriteString(cfg.FilterColumn)
			b.WriteString(" = $1")
		}
		fmt.Fprintf(&b, " ORDER BY %s DESC LIMIT 1", cfg.DateColumn)
		return b.String()
	case registry.Aggregated:
		selects := make([]string, 0, len(q.Aggregations)+1)
		for _, agg := range q.Aggregations {
			selects = append(selects, fmt.Sprintf("%s(%s) AS %s_%s",
				agg.Func, agg.Column, agg.Column, strings.ToLower(string(agg.Func))))
		}
		selects = append(selects, fmt.Sprintf("MAX(%s) AS updated_at", cfg.UpdatedColumn))
		inner := ""
		outer := ""
		if cfg.Filtered() {
			inner = fmt.Sprintf(" WHERE %s = $1", cfg.FilterColumn)
			outer = fmt.Sprintf(" AND %s = $2", cfg.FilterColumn)
		}
		return fmt.Sprintf("SELECT %s FROM %s WHERE %s = (SELECT MAX(%s) FROM %s%s)%s",
			strings.Join(selects, ", "), relation(cfg),
			cfg.DateColumn, cfg.DateColumn, relation(cfg), inner, outer)
	case registry.Custom:
		return expandTemplate(q.KPITemplate, cfg)
	}
	return ""
}

// Series returns the 14-day series query for cfg: the custom series template
// when one is configured, otherwise the default daily aggregation. The
// parameter count is 1 for filtered systems, else 0.
func Series(cfg registry.SystemConfig) string {
	if q, ok := cfg.KPI.(registry.Custom); ok && q.SeriesTemplate != "" {
		return expandTemplate(q.SeriesTemplate, cfg)
	}
	where := ""
	if cfg.Filtered() {
		where = fmt.Sprintf(" WHERE %s = $1", cfg.FilterColumn)
	}
	return fmt.Sprintf("SELECT %s, %s(%s) AS value_sum FROM %s%s GROUP BY %s ORDER BY %s DESC LIMIT %d",
		cfg.DateColumn, cfg.SeriesAgg, cfg.ChartColumn, relation(cfg), where,
		cfg.DateColumn, cfg.DateColumn, seriesLimit)
}

// Detailed returns the raw-row query for cfg: every column, most recent
// first by date then freshness.
func Detailed(cfg registry.SystemConfig) string {
	where := ""
	if cfg.Filtered() {
		where = fmt.Sprintf(" WHERE %s = $1", cfg.FilterColumn)
	}
	return fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s DESC, %s DESC LIMIT %d",
		relation(cfg), where, cfg.DateColumn, cfg.UpdatedColumn, detailedLimit)
}

// PartitionUnion returns the raw-row query matching any of a bound list of
// filter values ($1 is an array parameter). Used for the fixed piperun
// pipeline set.
func PartitionUnion(cfg registry.SystemConfig) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = ANY($1) ORDER BY %s DESC, %s DESC LIMIT %d",
		relation(cfg), cfg.FilterColumn, cfg.DateColumn, cfg.UpdatedColumn, detailedLimit)
}

// KPIParams returns the bind values for KPI(cfg), in placeholder order. It
// must stay in lockstep with the placeholder counts KPI produces.
func KPIParams(cfg registry.SystemConfig) []any {
	if !cfg.Filtered() {
		return nil
	}
	switch cfg.KPI.(type) {
	case registry.Aggregated, registry.Custom:
		return []any{cfg.FilterValue, cfg.FilterValue}
	default:
		return []any{cfg.FilterValue}
	}
}

// SeriesParams returns the bind values for Series(cfg) and Detailed(cfg).
func SeriesParams(cfg registry.SystemConfig) []any {
	if !cfg.Filtered() {
		return nil
	}
	return []any{cfg.FilterValue}
}

func relation(cfg registry.SystemConfig) string {
	return cfg.Schema + "." + cfg.Table
}

// expandTemplate substitutes configuration identifiers and the filter clause
// text into a custom query template. Filter clauses render as empty strings
// for unfiltered systems.
func expandTemplate(tmpl string, cfg registry.SystemConfig) string {
	whereFilter := ""
	andFilter := ""
	if cfg.Filtered() {
		whereFilter = fmt.Sprintf("WHERE %s = $1", cfg.FilterColumn)
		andFilter = fmt.Sprintf("AND %s = $2", cfg.FilterColumn)
	}
	r := strings.NewReplacer(
		"{schema}", cfg.Schema,
		"{table}", cfg.Table,
		"{date_col}", cfg.DateColumn,
		"{updated_col}", cfg.UpdatedColumn,
		"{where_filter}", whereFilter,
		"{and_filter}", andFilter,
	)
	return strings.TrimSpace(r.Replace(tmpl))
}
