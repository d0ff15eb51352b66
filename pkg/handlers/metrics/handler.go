package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/claim-audit/pkg/adapters"
	"github.com/de-tools/claim-audit/pkg/models/api"
	"github.com/de-tools/claim-audit/pkg/services/metrics"
)

type Handler struct {
	explorer metrics.Explorer
}

func NewHandler(explorer metrics.Explorer) *Handler {
	return &Handler{explorer: explorer}
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, scalars, err := h.explorer.Metrics(ctx)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "failed to read metrics", err)
		return
	}
	writeJSON(w, r, adapters.MapMetricsStoreToApi(info, scalars))
}

func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.explorer.Comparison(ctx)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "failed to read comparison", err)
		return
	}
	writeJSON(w, r, adapters.MapComparisonDomainToApi(rows))
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names, err := h.explorer.Tables(ctx)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "failed to list tables", err)
		return
	}
	writeJSON(w, r, api.TableList{Tables: names})
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "table")

	table, err := h.explorer.Table(ctx, name)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "failed to read table", err)
		return
	}
	writeJSON(w, r, adapters.MapTableStoreToApi(table))
}

func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	f, err := h.explorer.Workbook(ctx)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "failed to build workbook", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=quality_metrics.xlsx")
	if err := f.Write(w); err != nil {
		logger.Error().Err(err).Msg("failed to stream workbook")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	logger := zerolog.Ctx(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	logger := zerolog.Ctx(r.Context())
	logger.Error().Err(err).Msg(msg)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(api.Error{Message: msg}); encErr != nil {
		logger.Error().Err(encErr).Msg("failed to encode error response")
	}
}
