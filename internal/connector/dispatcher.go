package connector

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shaharia-lab/formrelay/internal/form"
	"github.com/shaharia-lab/formrelay/internal/metrics"
	"github.com/shaharia-lab/formrelay/internal/storage"
)

// Dispatcher fans out one submission to its configured connectors. Each
// enabled connector runs in its own goroutine; the dispatcher waits for all
// of them, so a slow or failing connector never delays or cancels a sibling.
// Dispatch signals only "all attempts completed", never "all succeeded" —
// outcomes go to the log and the delivery store.
type Dispatcher struct {
	registry *Registry
	store    storage.DeliveryStore // optional
	logger   *slog.Logger
	metrics  *metrics.Metrics // optional
}

// NewDispatcher creates a Dispatcher. store and m may be nil.
func NewDispatcher(registry *Registry, store storage.DeliveryStore, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		store:    store,
		logger:   logger,
		metrics:  m,
	}
}

// Dispatch executes all enabled connector configurations for the submission
// concurrently and returns once every execution has completed. Completion
// order among connectors is not defined.
func (d *Dispatcher) Dispatch(ctx context.Context, sub form.Submission, configs []Config) {
	if len(configs) == 0 {
		d.logger.Debug("no connectors configured, skipping dispatch",
			"form_id", sub.FormID, "submission_id", sub.ID)
		return
	}

	start := time.Now()
	var wg sync.WaitGroup
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		wg.Add(1)
		go func(cfg Config) {
			defer wg.Done()
			d.runOne(ctx, sub, cfg)
		}(cfg)
	}
	wg.Wait()

	d.metrics.ObserveDispatch(time.Since(start))
	d.logger.Debug("dispatch completed",
		"form_id", sub.FormID,
		"submission_id", sub.ID,
		"duration", time.Since(start),
	)
}

// runOne resolves and executes a single connector configuration. A panic
// escaping the connector is recovered here and treated as a failed result,
// so it can never abort sibling executions or propagate out of Dispatch.
func (d *Dispatcher) runOne(ctx context.Context, sub form.Submission, cfg Config) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("panic in connector execution",
				"connector_type", cfg.Type,
				"connector_name", cfg.Name,
				"submission_id", sub.ID,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			d.record(sub, cfg.Type, cfg.Name, Result{
				Success: false,
				Message: "connector panicked",
			})
		}
	}()

	if !d.registry.IsSupported(cfg.Type) {
		d.logger.Warn("unsupported connector type, skipping",
			"connector_type", cfg.Type,
			"form_id", sub.FormID,
			"submission_id", sub.ID,
		)
		return
	}

	conn := d.registry.Create(cfg.Type, cfg.Name)
	if conn == nil {
		d.logger.Error("connector creation failed, skipping",
			"connector_type", cfg.Type,
			"connector_name", cfg.Name,
			"submission_id", sub.ID,
		)
		return
	}
	conn.SetEnabled(cfg.Enabled)

	result := conn.Execute(ctx, sub, cfg.Settings)
	d.record(sub, conn.Type(), conn.Name(), result)
}

// record logs a connector result and writes it to the delivery store. Store
// failures are logged and swallowed: the dispatch outcome never depends on
// the audit log.
func (d *Dispatcher) record(sub form.Submission, connectorType, connectorName string, result Result) {
	status := storage.DeliveryStatusSent
	if result.Success {
		d.logger.Info("connector succeeded",
			"connector_type", connectorType,
			"connector_name", connectorName,
			"submission_id", sub.ID,
			"message", result.Message,
		)
	} else {
		status = storage.DeliveryStatusFailed
		d.logger.Error("connector failed",
			"connector_type", connectorType,
			"connector_name", connectorName,
			"submission_id", sub.ID,
			"message", result.Message,
			"error", result.Err,
		)
	}
	d.metrics.ConnectorResult(connectorType, status)

	if d.store == nil {
		return
	}
	entry := storage.DeliveryLogEntry{
		FormID:        sub.FormID,
		SubmissionID:  sub.ID,
		ConnectorType: connectorType,
		ConnectorName: connectorName,
		Status:        status,
		Message:       result.Message,
		Attempts:      resultAttempts(result),
		CreatedAt:     time.Now().UTC(),
	}
	if result.Err != nil {
		entry.ErrorMsg = result.Err.Error()
	}
	// The dispatch context may already be canceled during shutdown; the
	// audit write still gets its own short deadline.
	logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.LogDelivery(logCtx, entry); err != nil {
		d.logger.Error("failed to record delivery",
			"connector_type", connectorType,
			"submission_id", sub.ID,
			"error", err,
		)
	}
}

// resultAttempts extracts the attempt count a connector reported in its
// result metadata, defaulting to 1.
func resultAttempts(result Result) int {
	if result.Metadata == nil {
		return 1
	}
	if n, isInt := result.Metadata["attempts"].(int); isInt && n > 0 {
		return n
	}
	return 1
}
