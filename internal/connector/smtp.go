package connector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/shaharia-lab/formrelay/internal/form"
	"github.com/shaharia-lab/formrelay/internal/retry"
)

// TypeSMTP is the type name of the email connector.
const TypeSMTP = "smtp"

// smtpConnector delivers submissions by email using the go-mail library.
// Sends are retried under the transactional-email policy, which treats
// connection, handshake, and auth failures as transient.
type smtpConnector struct {
	base
	policy retry.Policy
	logger *slog.Logger
}

func newSMTPConnector(deps Dependencies, name string) Connector {
	c := &smtpConnector{
		base:   base{typ: TypeSMTP, name: name, enabled: true},
		logger: deps.Logger,
	}
	if deps.Retry != nil {
		c.policy = deps.Retry.ForCategory(retry.CategoryEmail)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Execute sends the submission as an email. Required settings: host, from,
// to. Optional: port (default 587), username, password, encryption ("none",
// "starttls", "ssl_tls"), subject.
func (c *smtpConnector) Execute(ctx context.Context, sub form.Submission, settings map[string]any) Result {
	host := settingString(settings, "host")
	if host == "" {
		return missingSetting("host")
	}
	from := settingString(settings, "from")
	if from == "" {
		return missingSetting("from")
	}
	recipients := cleanRecipients(settingStrings(settings, "to"))
	if len(recipients) == 0 {
		return missingSetting("to")
	}

	subject := settingString(settings, "subject")
	if subject == "" {
		subject = fmt.Sprintf("New submission: %s", sub.FormName)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return failed(fmt.Sprintf("invalid from address %q", from), err)
	}
	for _, r := range recipients {
		if err := m.To(r); err != nil {
			return failed(fmt.Sprintf("invalid recipient %q", r), err)
		}
	}
	m.Subject(subject)

	// Plain-text fallback for clients that don't render HTML.
	m.SetBodyString(mail.TypeTextPlain, buildPlainBody(sub))
	if html, err := buildEmailHTML(subject, sub); err == nil {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}

	opts := []mail.Option{
		mail.WithPort(settingInt(settings, "port", 587)),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(settingString(settings, "encryption"))),
	}
	if username := settingString(settings, "username"); username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(settingString(settings, "password")),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return failed("failed to create mail client", err)
	}

	attempts := 0
	err = retry.Do(ctx, c.policy, c.logger, func(ctx context.Context) error {
		attempts++
		return client.DialAndSendWithContext(ctx, m)
	})
	meta := map[string]any{"attempts": attempts, "recipients": len(recipients)}
	if err != nil {
		res := failed(fmt.Sprintf("sending email via %s", host), err)
		res.Metadata = meta
		return res
	}
	return ok(fmt.Sprintf("email sent to %d recipient(s)", len(recipients)), meta)
}

// cleanRecipients trims and drops empty entries.
func cleanRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// tlsPolicyFromEncryption converts the encryption setting to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
