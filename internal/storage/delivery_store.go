package storage

import (
	"context"
	"time"
)

// Delivery statuses recorded in the log.
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// DeliveryLogEntry records the final outcome of one connector execution for
// one submission. It is an audit record of completed attempts, not a source
// for replay.
type DeliveryLogEntry struct {
	ID            int64     `json:"id"`
	FormID        string    `json:"form_id"`
	SubmissionID  string    `json:"submission_id"`
	ConnectorType string    `json:"connector_type"`
	ConnectorName string    `json:"connector_name"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	ErrorMsg      string    `json:"error_msg"`
	Attempts      int       `json:"attempts"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeliveryStore defines the interface for persisting delivery outcomes.
type DeliveryStore interface {
	// LogDelivery records one connector outcome.
	LogDelivery(ctx context.Context, entry DeliveryLogEntry) error
	// ListDeliveries returns the most recent entries for a form, up to limit.
	ListDeliveries(ctx context.Context, formID string, limit int) ([]DeliveryLogEntry, error)
	// PruneDeliveries deletes entries created before cutoff and returns how
	// many were removed.
	PruneDeliveries(ctx context.Context, cutoff time.Time) (int64, error)
}
