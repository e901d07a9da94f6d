// Package api maps the dashboard service onto the HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bno-dashboard-backend/internal/kpi"
	"bno-dashboard-backend/internal/storage"
)

// Service is the read surface the handlers need. Implemented by
// *kpi.Service.
type Service interface {
	KPIs(ctx context.Context, system string) (kpi.Snapshot, error)
	Series(ctx context.Context, system string) (kpi.SeriesResult, error)
	Detailed(ctx context.Context, system string) ([]map[string]any, error)
	PipeRunAll(ctx context.Context) ([]map[string]any, error)
}

type Handler struct {
	Service Service
	Logger  *slog.Logger
	Timeout time.Duration
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/kpis/{system}", h.handleKPIs)
		r.Get("/series/{system}", h.handleSeries)
		r.Get("/detailed/piperun/all", h.handlePipeRunAll)
		r.Get("/detailed/{system}", h.handleDetailed)
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "B&O Dashboard API"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleKPIs(w http.ResponseWriter, r *http.Request) {
	system := chi.URLParam(r, "system")
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	snapshot, err := h.Service.KPIs(ctx, system)
	if err != nil {
		h.writeError(w, system, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	system := chi.URLParam(r, "system")
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	series, err := h.Service.Series(ctx, system)
	if err != nil {
		h.writeError(w, system, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (h *Handler) handleDetailed(w http.ResponseWriter, r *http.Request) {
	system := chi.URLParam(r, "system")
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	rows, err := h.Service.Detailed(ctx, system)
	if err != nil {
		h.writeError(w, system, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handlePipeRunAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	rows, err := h.Service.PipeRunAll(ctx)
	if err != nil {
		h.writeError(w, "piperun", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) writeError(w http.ResponseWriter, system string, err error) {
	switch {
	case errors.Is(err, kpi.ErrSystemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "system not found"})
	case errors.Is(err, kpi.ErrNoData):
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "no data for system"})
	case errors.Is(err, storage.ErrUnavailable):
		h.Logger.Error("data source unavailable", slog.String("system", system), slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "message": "data source unavailable"})
	default:
		h.Logger.Error("query failed", slog.String("system", system), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
