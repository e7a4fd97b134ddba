package queue

import (
	"context"
	"log/slog"
	"runtime/debug"
)

// Consumer drains a Queue, executing one work item at a time. Submissions are
// deliberately not processed concurrently with each other by a single
// consumer; only the connector fan-out inside one work item runs in
// parallel. Run multiple consumers only when cross-submission ordering does
// not matter.
type Consumer struct {
	queue  *Queue
	logger *slog.Logger
}

// NewConsumer creates a Consumer for the given queue.
func NewConsumer(q *Queue, logger *slog.Logger) *Consumer {
	return &Consumer{queue: q, logger: logger}
}

// Run processes items until ctx is canceled. A cancellation observed while
// waiting for the next item ends the loop; an item already running is allowed
// to finish. Panics inside a work item are recovered and logged, never
// terminating the loop.
func (c *Consumer) Run(ctx context.Context) {
	for {
		item, err := c.queue.Dequeue(ctx)
		if err != nil {
			c.logger.Info("queue consumer stopping", "reason", err)
			return
		}
		c.runOne(ctx, item)
	}
}

// runOne executes a single work item with panic isolation.
func (c *Consumer) runOne(ctx context.Context, item WorkItem) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in work item",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	item(ctx)
}
