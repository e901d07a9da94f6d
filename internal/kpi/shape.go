package kpi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Snapshot is the latest KPI values for a system plus a freshness timestamp.
type Snapshot struct {
	Values    []any  `json:"values"`
	UpdatedAt string `json:"updatedAt"`
}

// SeriesPoint is one daily aggregate for the trend chart.
type SeriesPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// SeriesResult is a chronologically ascending series of at most 14 points.
type SeriesResult struct {
	Points []SeriesPoint `json:"points"`
	Label  string        `json:"label"`
}

// shapeSnapshot splits a KPI row into values and freshness. The query
// contract puts the updated-at column last.
func shapeSnapshot(row []any) Snapshot {
	values := make([]any, 0, len(row)-1)
	for _, v := range row[:len(row)-1] {
		values = append(values, normalizeValue(v))
	}
	return Snapshot{
		Values:    values,
		UpdatedAt: formatTimestamp(row[len(row)-1]),
	}
}

// shapeSeries turns (date, aggregate) rows into chart points. Rows arrive
// ordered descending by date per the query contract and are reversed here so
// the output ascends. A NULL aggregate becomes 0.
func shapeSeries(rows [][]any, label string) SeriesResult {
	points := make([]SeriesPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		points = append(points, SeriesPoint{
			X: formatDate(rows[i][0]),
			Y: toFloat(rows[i][1]),
		})
	}
	return SeriesResult{Points: points, Label: label}
}

// shapeDetailed converts raw rows into JSON objects keyed by column name,
// with datetime values rendered as text timestamps.
func shapeDetailed(cols []string, rows [][]any) []map[string]any {
	results := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(cols))
		for i, col := range cols {
			if t, ok := row[i].(time.Time); ok {
				obj[col] = t.Format(time.RFC3339)
				continue
			}
			obj[col] = normalizeValue(row[i])
		}
		results = append(results, obj)
	}
	return results
}

func formatTimestamp(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func formatDate(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return fmt.Sprint(v)
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return 0
		}
		return f.Float64
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case pgtype.Numeric:
		return toFloat(t)
	default:
		return t
	}
}
