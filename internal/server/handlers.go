package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fitpull/fitpull/internal/agent"
	"github.com/fitpull/fitpull/internal/model"
	"github.com/fitpull/fitpull/internal/store"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", s.tracker.Latest())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartExtraction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	startDate := r.FormValue("start_date")
	if startDate == "" {
		startDate = agent.DefaultStartDate
	}

	runID := s.starter.Start(startDate)
	zap.L().Info("extraction run requested",
		zap.String("run_id", runID), zap.String("start_date", startDate))

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "started",
		"message": fmt.Sprintf("Extraction started from %s", startDate),
		"run_id":  runID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		rec, ok := s.tracker.Run(runID)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown run id")
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Latest())
}

func (s *Server) handleViewData(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.store.ListMetrics(r.Context())
	if err != nil {
		zap.L().Error("list metrics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}
	s.render(w, "data.html", metrics)
}

func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	metrics, err := s.store.ListMetrics(r.Context())
	if err != nil {
		zap.L().Error("list metrics for export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="fitbit_metrics.csv"`)
		err = store.WriteCSV(w, metrics)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="fitbit_metrics.json"`)
		err = store.WriteJSON(w, metrics)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="fitbit_metrics.xlsx"`)
		err = store.WriteXLSX(w, metrics)
	default:
		// No download headers on an unsupported format, just the error body.
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format: %s", format))
		return
	}
	if err != nil {
		zap.L().Error("export metrics", zap.String("format", format), zap.Error(err))
	}
}

func (s *Server) handleDeleteMetric(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid metric id")
		return
	}

	if err := s.store.DeleteMetric(r.Context(), id); err != nil {
		zap.L().Warn("delete metric", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusNotFound, fmt.Sprintf("failed to delete metric %d", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Deleted metric %d", id),
	})
}

func (s *Server) handleAPIMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.store.ListMetrics(r.Context())
	if err != nil {
		zap.L().Error("list metrics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}
	if metrics == nil {
		metrics = []model.WeeklyMetrics{}
	}
	writeJSON(w, http.StatusOK, metrics)
}
