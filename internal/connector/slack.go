package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shaharia-lab/formrelay/internal/form"
	"github.com/shaharia-lab/formrelay/internal/retry"
)

// TypeSlack is the type name of the Slack incoming-webhook connector.
const TypeSlack = "slack"

// slackConnector posts a readable summary of the submission to a Slack
// incoming webhook.
type slackConnector struct {
	base
	client *http.Client
	policy retry.Policy
	logger *slog.Logger
}

func newSlackConnector(deps Dependencies, name string) Connector {
	c := &slackConnector{
		base:   base{typ: TypeSlack, name: name, enabled: true},
		client: deps.HTTPClient,
		logger: deps.Logger,
	}
	if deps.Retry != nil {
		c.policy = deps.Retry.ForCategory(retry.CategoryChatWebhook)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Execute posts the submission summary to Slack. Required settings:
// webhook_url.
func (c *slackConnector) Execute(ctx context.Context, sub form.Submission, settings map[string]any) Result {
	url := settingString(settings, "webhook_url")
	if url == "" {
		return missingSetting("webhook_url")
	}

	body, err := json.Marshal(map[string]string{"text": slackText(sub)})
	if err != nil {
		return failed("encoding slack payload", err)
	}

	attempts := 0
	err = retry.Do(ctx, c.policy, c.logger, func(ctx context.Context) error {
		attempts++
		return postJSON(ctx, c.client, url, body)
	})
	meta := map[string]any{"attempts": attempts}
	if err != nil {
		res := failed("posting to slack webhook", err)
		res.Metadata = meta
		return res
	}
	return ok("slack message delivered", meta)
}

// slackText formats the submission as a Slack mrkdwn message.
func slackText(sub form.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":envelope: New submission to *%s*\n", sub.FormName)
	for _, name := range sub.FieldNames() {
		fmt.Fprintf(&b, ">*%s*: %v\n", name, sub.Fields[name])
	}
	return b.String()
}
