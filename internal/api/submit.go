package api

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/formrelay/internal/form"
	"github.com/shaharia-lab/formrelay/internal/queue"
)

// maxSubmissionBody bounds how much of an intake request body is read.
const maxSubmissionBody = 1 << 20 // 1 MiB

// HandleSubmit accepts a form submission (JSON object or URL-encoded form
// body), enqueues dispatch work when the form has enabled connectors, and
// responds 202 immediately. Connector outcomes never affect this response.
func (s *Server) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	f := s.forms.Get(formID)
	if f == nil {
		writeError(w, http.StatusNotFound, "unknown form")
		return
	}

	fields, err := parseFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable submission body")
		return
	}

	sub := form.NewSubmission(f.ID, f.Name, fields, form.SubmissionMeta{
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
		Referer:    r.Referer(),
	})
	s.metrics.SubmissionAccepted()
	s.logger.Info("submission accepted",
		"form_id", f.ID,
		"submission_id", sub.ID,
		"fields", len(fields),
	)

	// Only enqueue when there is something to dispatch; the response is the
	// same either way since dispatch is fire-and-forget.
	if f.HasEnabledConnectors() {
		configs := f.Connectors
		item := queue.WorkItem(func(ctx context.Context) {
			s.dispatcher.Dispatch(ctx, sub, configs)
		})
		if err := s.queue.Enqueue(item); err != nil {
			s.logger.Error("enqueueing dispatch work failed",
				"form_id", f.ID, "submission_id", sub.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     sub.ID,
		"status": "accepted",
	})
}

// parseFields extracts the key/value fields from the request body based on
// its content type.
func parseFields(r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxSubmissionBody)

	ct := r.Header.Get("Content-Type")
	if ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			ct = parsed
		}
	}

	if ct == "application/json" {
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return nil, err
		}
		return fields, nil
	}

	// Everything else is treated as a URL-encoded form post.
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	fields := make(map[string]any, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) == 1 {
			fields[k] = vs[0]
		} else {
			fields[k] = vs
		}
	}
	return fields, nil
}
