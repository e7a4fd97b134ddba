// Package form defines the submission model shared by the intake layer and
// the dispatch core. The dispatch core only ever reads a Submission.
package form

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SubmissionMeta carries request metadata captured at intake time.
type SubmissionMeta struct {
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	Referer    string `json:"referer"`
}

// Submission is a single accepted form submission. Validation happens at the
// intake boundary; by the time a Submission reaches a connector it is treated
// as trusted, read-only data.
type Submission struct {
	ID         string         `json:"id"`
	FormID     string         `json:"form_id"`
	FormName   string         `json:"form_name"`
	Fields     map[string]any `json:"fields"`
	Meta       SubmissionMeta `json:"meta"`
	ReceivedAt time.Time      `json:"received_at"`
}

// NewSubmission builds a Submission with a fresh id and the current time.
func NewSubmission(formID, formName string, fields map[string]any, meta SubmissionMeta) Submission {
	return Submission{
		ID:         uuid.NewString(),
		FormID:     formID,
		FormName:   formName,
		Fields:     fields,
		Meta:       meta,
		ReceivedAt: time.Now().UTC(),
	}
}

// FieldNames returns the submission's field names in sorted order, so
// connector output is stable across runs.
func (s Submission) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
