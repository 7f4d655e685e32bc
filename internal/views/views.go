// Package views renders handler results as HTML pages or, for clients that
// ask for it, as JSON.
package views

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/brntsllvn/devlunch/internal/models"
)

// View names
const (
	Index   = "index"
	Details = "details"
	Create  = "create"
	Edit    = "edit"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Form is the model of the create and edit views
type Form struct {
	Restaurant models.Restaurant `json:"restaurant"`
	Errors     []string          `json:"errors,omitempty"`
	Action     string            `json:"-"`
}

// Renderer is the boundary between handlers and response formatting
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, view string, model any)
	Error(w http.ResponseWriter, r *http.Request, status int, message string)
}

// Templates renders the embedded HTML templates
type Templates struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parses every page template together with the shared layout
func New(logger *slog.Logger) (*Templates, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pages := make(map[string]*template.Template)
	for _, view := range []string{Index, Details, Create, Edit} {
		tmpl, err := template.New(view).
			Funcs(sprig.FuncMap()).
			ParseFS(templatesFS, "templates/layout.html", "templates/form.html", "templates/"+view+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", view, err)
		}
		pages[view] = tmpl
	}
	return &Templates{pages: pages, logger: logger}, nil
}

// Render writes model with the named view, or as JSON when the client prefers it
func (t *Templates) Render(w http.ResponseWriter, r *http.Request, status int, view string, model any) {
	if WantsJSON(r) {
		WriteJSON(w, status, model, t.logger)
		return
	}

	tmpl, ok := t.pages[view]
	if !ok {
		t.logger.Error("unknown view", "view", view)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Render into a buffer so a template failure can still become a 500.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", model); err != nil {
		t.logger.Error("failed to render view", "view", view, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		t.logger.Error("failed to write view", "view", view, "error", err)
	}
}

// Error writes a status response with a short message
func (t *Templates) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	if WantsJSON(r) {
		WriteError(w, status, message, t.logger)
		return
	}
	http.Error(w, message, status)
}

// WantsJSON reports whether the Accept header asks for JSON
func WantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mediaType {
		case "application/json":
			return true
		case "text/html":
			return false
		}
	}
	return false
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, map[string]string{"error": message}, logger)
}
