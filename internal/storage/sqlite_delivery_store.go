package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteDeliveryStore implements DeliveryStore backed by SQLite.
type SQLiteDeliveryStore struct {
	db *sql.DB
}

// NewSQLiteDeliveryStore returns a new SQLiteDeliveryStore.
func NewSQLiteDeliveryStore(db *sql.DB) *SQLiteDeliveryStore {
	return &SQLiteDeliveryStore{db: db}
}

// LogDelivery inserts a delivery record into the database.
func (s *SQLiteDeliveryStore) LogDelivery(ctx context.Context, entry DeliveryLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_log
			(form_id, submission_id, connector_type, connector_name, status, message, error_msg, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.FormID, entry.SubmissionID, entry.ConnectorType, entry.ConnectorName,
		entry.Status, entry.Message, entry.ErrorMsg, entry.Attempts, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}
	return nil
}

// ListDeliveries returns the most recent entries for formID ordered by
// created_at descending.
func (s *SQLiteDeliveryStore) ListDeliveries(ctx context.Context, formID string, limit int) ([]DeliveryLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, submission_id, connector_type, connector_name, status, message, error_msg, attempts, created_at
		FROM delivery_log
		WHERE form_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, formID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying delivery log: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	var entries []DeliveryLogEntry
	for rows.Next() {
		var e DeliveryLogEntry
		if err := rows.Scan(&e.ID, &e.FormID, &e.SubmissionID, &e.ConnectorType, &e.ConnectorName,
			&e.Status, &e.Message, &e.ErrorMsg, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning delivery log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delivery log rows: %w", err)
	}
	return entries, nil
}

// PruneDeliveries deletes entries created before cutoff.
func (s *SQLiteDeliveryStore) PruneDeliveries(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM delivery_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning delivery log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return n, nil
}
