package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaharia-lab/formrelay/internal/form"
	"github.com/shaharia-lab/formrelay/internal/retry"
)

// TypeWebhook is the type name of the generic webhook connector.
const TypeWebhook = "webhook"

// webhookPayload is the JSON body posted to a generic webhook endpoint.
type webhookPayload struct {
	Form         string         `json:"form"`
	FormID       string         `json:"form_id"`
	SubmissionID string         `json:"submission_id"`
	Fields       map[string]any `json:"fields"`
	ReceivedAt   time.Time      `json:"received_at"`
}

// webhookConnector posts the full submission as JSON to a configured URL.
type webhookConnector struct {
	base
	client *http.Client
	policy retry.Policy
	logger *slog.Logger
}

func newWebhookConnector(deps Dependencies, name string) Connector {
	c := &webhookConnector{
		base:   base{typ: TypeWebhook, name: name, enabled: true},
		client: deps.HTTPClient,
		logger: deps.Logger,
	}
	if deps.Retry != nil {
		c.policy = deps.Retry.ForCategory(retry.CategoryHTTPGeneric)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Execute posts the submission to the webhook. Required settings: url.
func (c *webhookConnector) Execute(ctx context.Context, sub form.Submission, settings map[string]any) Result {
	url := settingString(settings, "url")
	if url == "" {
		return missingSetting("url")
	}

	body, err := json.Marshal(webhookPayload{
		Form:         sub.FormName,
		FormID:       sub.FormID,
		SubmissionID: sub.ID,
		Fields:       sub.Fields,
		ReceivedAt:   sub.ReceivedAt,
	})
	if err != nil {
		return failed("encoding webhook payload", err)
	}

	attempts := 0
	err = retry.Do(ctx, c.policy, c.logger, func(ctx context.Context) error {
		attempts++
		return postJSON(ctx, c.client, url, body)
	})
	meta := map[string]any{"attempts": attempts}
	if err != nil {
		res := failed(fmt.Sprintf("posting webhook to %s", url), err)
		res.Metadata = meta
		return res
	}
	return ok("webhook delivered", meta)
}

// postJSON performs one JSON POST attempt. Non-2xx responses come back as a
// *retry.StatusError so the policy layer can classify them.
func postJSON(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "formrelay")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("posting: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &retry.StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}
