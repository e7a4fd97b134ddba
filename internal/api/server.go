// Package api implements the REST handlers: submission intake and delivery
// log access. The intake handler is the only boundary that drives the
// dispatch core — it enqueues one work item per accepted submission and
// returns immediately.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/formrelay/internal/config"
	"github.com/shaharia-lab/formrelay/internal/connector"
	"github.com/shaharia-lab/formrelay/internal/metrics"
	"github.com/shaharia-lab/formrelay/internal/queue"
	"github.com/shaharia-lab/formrelay/internal/storage"
)

// Server holds all dependencies for the REST API handlers.
type Server struct {
	forms      *config.FormRegistry
	queue      *queue.Queue
	dispatcher *connector.Dispatcher
	store      storage.DeliveryStore
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a new API Server.
func New(
	forms *config.FormRegistry,
	q *queue.Queue,
	dispatcher *connector.Dispatcher,
	store storage.DeliveryStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Server {
	return &Server{
		forms:      forms,
		queue:      q,
		dispatcher: dispatcher,
		store:      store,
		metrics:    m,
		logger:     logger,
	}
}

// Mount registers the management API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/forms", s.handleListForms)
	r.Get("/forms/{formID}/deliveries", s.handleListDeliveries)
}

// handleListForms returns the registered forms and their connector counts.
func (s *Server) handleListForms(w http.ResponseWriter, _ *http.Request) {
	type formView struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Connectors int    `json:"connectors"`
	}
	forms := s.forms.All()
	out := make([]formView, 0, len(forms))
	for _, f := range forms {
		out = append(out, formView{ID: f.ID, Name: f.Name, Connectors: len(f.Connectors)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListDeliveries returns the recent delivery log for a form.
func (s *Server) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	if !s.forms.Has(formID) {
		writeError(w, http.StatusNotFound, "unknown form")
		return
	}

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.store.ListDeliveries(r.Context(), formID, limit)
	if err != nil {
		s.logger.Error("listing deliveries failed", "form_id", formID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list deliveries")
		return
	}
	if entries == nil {
		entries = []storage.DeliveryLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
