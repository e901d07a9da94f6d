// Package kpi composes the registry, the query builders and the store into
// the read-only dashboard operations the API exposes.
package kpi

import (
	"context"
	"fmt"

	"bno-dashboard-backend/internal/query"
	"bno-dashboard-backend/internal/registry"
	"bno-dashboard-backend/internal/storage"
)

// pipeRunSystem and pipeRunPartitions back the fixed combined-detail
// endpoint: three known PipeRun pipelines, not a general multi-value filter.
const pipeRunSystem = "piperun"

var pipeRunPartitions = []string{"78157", "78175", "78291"}

// Service answers dashboard reads for every registered system.
type Service struct {
	registry *registry.Registry
	store    *storage.Store
}

func NewService(reg *registry.Registry, store *storage.Store) *Service {
	return &Service{registry: reg, store: store}
}

// KPIs returns the latest snapshot for system. Zero rows from the snapshot
// query surface as ErrNoData, not as an empty snapshot.
func (s *Service) KPIs(ctx context.Context, system string) (Snapshot, error) {
	cfg, ok := s.registry.Lookup(system)
	if !ok {
		return Snapshot{}, ErrSystemNotFound
	}
	_, rows, err := s.store.Select(ctx, query.KPI(cfg), query.KPIParams(cfg)...)
	if err != nil {
		return Snapshot{}, fmt.Errorf("kpi query for %s: %w", system, err)
	}
	if len(rows) == 0 {
		return Snapshot{}, ErrNoData
	}
	return shapeSnapshot(rows[0]), nil
}

// Series returns the 14-day series for system, ascending by date. Zero
// matching rows yield an empty point list, not an error.
func (s *Service) Series(ctx context.Context, system string) (SeriesResult, error) {
	cfg, ok := s.registry.Lookup(system)
	if !ok {
		return SeriesResult{}, ErrSystemNotFound
	}
	_, rows, err := s.store.Select(ctx, query.Series(cfg), query.SeriesParams(cfg)...)
	if err != nil {
		return SeriesResult{}, fmt.Errorf("series query for %s: %w", system, err)
	}
	return shapeSeries(rows, system), nil
}

// Detailed returns up to 1000 raw rows for system, most recent first.
func (s *Service) Detailed(ctx context.Context, system string) ([]map[string]any, error) {
	cfg, ok := s.registry.Lookup(system)
	if !ok {
		return nil, ErrSystemNotFound
	}
	cols, rows, err := s.store.Select(ctx, query.Detailed(cfg), query.SeriesParams(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("detailed query for %s: %w", system, err)
	}
	return shapeDetailed(cols, rows), nil
}

// PipeRunAll returns the union of the three known PipeRun pipelines, most
// recent first, capped at 1000 rows.
func (s *Service) PipeRunAll(ctx context.Context) ([]map[string]any, error) {
	cfg, ok := s.registry.Lookup(pipeRunSystem)
	if !ok {
		return nil, ErrSystemNotFound
	}
	cols, rows, err := s.store.Select(ctx, query.PartitionUnion(cfg), pipeRunPartitions)
	if err != nil {
		return nil, fmt.Errorf("piperun union query: %w", err)
	}
	return shapeDetailed(cols, rows), nil
}
