package connector

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/shaharia-lab/formrelay/internal/form"
)

func emailSubmission() form.Submission {
	return form.Submission{
		ID:         "sub-7",
		FormID:     "contact",
		FormName:   "Contact",
		Fields:     map[string]any{"name": "Ada", "message": "hello"},
		ReceivedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestSMTPConnector_MissingRequiredSettings(t *testing.T) {
	c := newSMTPConnector(Dependencies{}, "mailer")

	tests := []struct {
		name     string
		settings map[string]any
		wantKey  string
	}{
		{"no host", map[string]any{}, `"host"`},
		{"no from", map[string]any{"host": "smtp.example.com"}, `"from"`},
		{"no to", map[string]any{"host": "smtp.example.com", "from": "noreply@example.com"}, `"to"`},
		{
			"blank recipients",
			map[string]any{"host": "smtp.example.com", "from": "noreply@example.com", "to": []any{" ", ""}},
			`"to"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Execute(context.Background(), emailSubmission(), tt.settings)
			assert.False(t, res.Success)
			assert.Contains(t, res.Message, tt.wantKey)
		})
	}
}

func TestSMTPConnector_InvalidAddresses(t *testing.T) {
	c := newSMTPConnector(Dependencies{}, "mailer")

	res := c.Execute(context.Background(), emailSubmission(), map[string]any{
		"host": "smtp.example.com",
		"from": "not-an-address",
		"to":   "ops@example.com",
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "invalid from address")

	res = c.Execute(context.Background(), emailSubmission(), map[string]any{
		"host": "smtp.example.com",
		"from": "noreply@example.com",
		"to":   "not an address",
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "invalid recipient")
}

func TestCleanRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@example.com", "b@example.com"},
		cleanRecipients([]string{" a@example.com ", "", "b@example.com", "  "}))
	assert.Empty(t, cleanRecipients(nil))
}

func TestTLSPolicyFromEncryption(t *testing.T) {
	assert.Equal(t, mail.TLSMandatory, tlsPolicyFromEncryption("ssl_tls"))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicyFromEncryption("starttls"))
	assert.Equal(t, mail.NoTLS, tlsPolicyFromEncryption("none"))
	assert.Equal(t, mail.NoTLS, tlsPolicyFromEncryption(""))
}

func TestBuildPlainBody(t *testing.T) {
	body := buildPlainBody(emailSubmission())
	assert.Contains(t, body, "New submission to Contact (contact)")
	// Fields appear in sorted order, one per line.
	assert.Contains(t, body, "message: hello\n")
	assert.Contains(t, body, "name: Ada\n")
	assert.Less(t, strings.Index(body, "message:"), strings.Index(body, "name:"))
}

func TestBuildEmailHTML(t *testing.T) {
	sub := emailSubmission()
	sub.Fields["note"] = `<script>alert("x")</script>`

	html, err := buildEmailHTML("New submission: Contact", sub)
	require.NoError(t, err)
	assert.Contains(t, html, "New submission: Contact")
	assert.Contains(t, html, "sub-7")
	assert.Contains(t, html, "Ada")
	assert.NotContains(t, html, "<script>", "field values must be escaped")
}

func TestSlackText(t *testing.T) {
	text := slackText(emailSubmission())
	assert.Contains(t, text, "New submission to *Contact*")
	assert.Contains(t, text, ">*name*: Ada\n")
	assert.Contains(t, text, ">*message*: hello\n")
}
