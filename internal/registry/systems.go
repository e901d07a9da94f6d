package registry

// Built-in configurations for the nine dashboard systems. All tables live in
// the kpi_tv schema and carry one row (or one row per partition) per day.

const evolutionKPITemplate = `
SELECT
    COUNT(CASE WHEN conn_state_current = 'open' THEN 1 END) AS conn_state_open,
    COUNT(CASE WHEN conn_state_current != 'open' THEN 1 END) AS conn_state_not_open,
    SUM(messages_sent_total) AS messages_sent_total,
    AVG(frt_avg_minutes) AS frt_avg_minutes,
    COUNT(*) AS total_instances,
    MAX({updated_col}) AS updated_at
FROM {schema}.{table}
WHERE {date_col} = (
    SELECT MAX({date_col}) FROM {schema}.{table}
    {where_filter}
)
{and_filter}`

const evolutionSeriesTemplate = `
SELECT {date_col}, COUNT(*) AS value_sum
FROM {schema}.{table}
GROUP BY {date_col}
ORDER BY {date_col} DESC
LIMIT 14`

var adsAggregations = []ColumnAggregation{
	{Column: "cost", Func: AggSum},
	{Column: "leads", Func: AggSum},
	{Column: "clicks", Func: AggSum},
	{Column: "cpl", Func: AggAvg},
	{Column: "cpc", Func: AggAvg},
}

// Default returns the built-in system set. Deployments can replace it with a
// YAML file, see LoadFile.
func Default() map[string]SystemConfig {
	return map[string]SystemConfig{
		"piperun": {
			Schema:        "kpi_tv",
			Table:         "piperun_daily",
			FilterColumn:  "pipeline_id",
			FilterValue:   "78157",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "oportunidades_recebidas",
			SeriesAgg:     AggSum,
			KPI: LatestRow{Columns: []string{
				"oportunidades_recebidas", "oportunidades_ganhas", "oportunidades_perdidas",
			}},
		},
		"n8n": {
			Schema:        "kpi_tv",
			Table:         "n8n_daily",
			FilterColumn:  "workspace_id",
			FilterValue:   "HJDfVFxTb7w1KNDD",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "runs_success",
			SeriesAgg:     AggSum,
			KPI: LatestRow{Columns: []string{
				"flows_total", "runs_success", "runs_failed", "avg_duration_sec",
			}},
		},
		"conta_azul": {
			Schema:        "kpi_tv",
			Table:         "conta_azul_daily",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "entradaValor",
			SeriesAgg:     AggSum,
			KPI: LatestRow{Columns: []string{
				"recebiveisHojeValor", "entradaValor", "pagaveisHojeValor",
			}},
		},
		"cpj3c": {
			Schema:        "kpi_tv",
			Table:         "cpj_daily",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "audiencias",
			SeriesAgg:     AggSum,
			KPI: LatestRow{Columns: []string{
				"audiencias", "pericias", "processos",
			}},
		},
		"meta_ads": {
			Schema:        "kpi_tv",
			Table:         "meta_ads_daily",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "clicks",
			SeriesAgg:     AggSum,
			KPI:           Aggregated{Aggregations: adsAggregations},
		},
		"google_ads": {
			Schema:        "kpi_tv",
			Table:         "google_ads_daily",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "clicks",
			SeriesAgg:     AggSum,
			KPI:           Aggregated{Aggregations: adsAggregations},
		},
		"ti": {
			Schema:        "kpi_tv",
			Table:         "ti_chamados_daily",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "resolvidos_hoje",
			SeriesAgg:     AggSum,
			KPI: LatestRow{Columns: []string{
				"abertos", "andamento", "resolvidos_hoje",
			}},
		},
		"liderhub": {
			Schema:        "kpi_tv",
			Table:         "liderhub_daily",
			DateColumn:    "ref_date",
			UpdatedColumn: "updated_at",
			ChartColumn:   "finalizadas",
			SeriesAgg:     AggSum,
			KPI: LatestRow{Columns: []string{
				"aguardando", "em_andamento", "finalizadas",
			}},
		},
		"evolution": {
			Schema: "kpi_tv",
			Table:  "evolution_daily",
			// evolution_daily predates the naming convention used elsewhere.
			DateColumn:    "ref_date",
			UpdatedColumn: "update_at",
			ChartColumn:   "messages_sent_total",
			SeriesAgg:     AggSum,
			KPI: Custom{
				KPITemplate:    evolutionKPITemplate,
				SeriesTemplate: evolutionSeriesTemplate,
			},
		},
	}
}
