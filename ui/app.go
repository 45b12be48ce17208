// Package ui serves a read-only HTML view of recorded analysis runs.
package ui

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"choicelab/adapters/report"
	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/internal"
	"choicelab/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router    *chi.Mux
	recorder  ports.RunRecorder
	templates *template.Template
	log       *internal.Logger
}

// NewApp creates the viewer over a run recorder
func NewApp(recorder ports.RunRecorder, log *internal.Logger) (*App, error) {
	if log == nil {
		log = internal.DefaultLogger
	}

	funcMap := template.FuncMap{
		"timestamp": func(t core.Timestamp) string { return t.Time().Format("2006-01-02 15:04:05 UTC") },
		"labels": func(inputs []run.Input) string {
			s := ""
			for i, in := range inputs {
				if i > 0 {
					s += " / "
				}
				s += in.Label
			}
			return s
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		recorder:  recorder,
		templates: templates,
		log:       log,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/runs/{id}", a.handleRun)
}

// ServeHTTP makes the app an http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

type indexPage struct {
	Runs  []run.Record
	Limit int
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := a.recorder.ListRuns(r.Context(), limit)
	if err != nil {
		a.log.Error("[UI] list runs: %v", err)
		http.Error(w, "could not list runs", http.StatusInternalServerError)
		return
	}
	a.renderTemplate(w, "index.html", indexPage{Runs: runs, Limit: limit})
}

type runPage struct {
	Run    *run.Record
	Report template.HTML
}

func (a *App) handleRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := a.recorder.GetRun(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.log.Error("[UI] get run %s: %v", id, err)
		http.Error(w, "could not load run", http.StatusInternalServerError)
		return
	}

	md, err := report.ForRecord(rec)
	if err != nil {
		a.log.Error("[UI] render run %s: %v", id, err)
		http.Error(w, "could not render run", http.StatusInternalServerError)
		return
	}
	a.renderTemplate(w, "run.html", runPage{Run: rec, Report: template.HTML(report.HTML(md))})
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.log.Error("[UI] template %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
