// Package server exposes the dashboard and the extraction control API.
package server

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fitpull/fitpull/internal/agent"
	"github.com/fitpull/fitpull/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Starter launches extraction runs in the background.
type Starter interface {
	Start(startDate string) string
}

// Server holds the HTTP surface's dependencies.
type Server struct {
	store   store.Store
	starter Starter
	tracker *agent.Tracker
	tmpl    *template.Template
}

func New(st store.Store, starter Starter, tracker *agent.Tracker) *Server {
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"comma": func(n int) string {
			return printer.Sprintf("%d", n)
		},
		"commaf": func(f float64) string {
			return printer.Sprintf("%.1f", f)
		},
	}

	return &Server{
		store:   st,
		starter: starter,
		tracker: tracker,
		tmpl:    template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/start-extraction", s.handleStartExtraction)
	r.Get("/status", s.handleStatus)
	r.Get("/view-data", s.handleViewData)
	r.Get("/export-data", s.handleExportData)
	r.Post("/delete-metric/{id}", s.handleDeleteMetric)
	r.Get("/api/metrics", s.handleAPIMetrics)

	return r
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		zap.L().Error("render template", zap.String("template", name), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write json response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}
