package connector

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/shaharia-lab/formrelay/internal/form"
)

// emailTmpl is the HTML wrapper applied to outgoing submission emails.
// Field values are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f4f5;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#f4f4f5;padding:40px 16px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:600px;width:100%;">
          <tr>
            <td style="background-color:#111827;padding:24px 40px;border-radius:12px 12px 0 0;">
              <span style="font-size:18px;font-weight:700;color:#ffffff;">FormRelay</span>
              <span style="display:block;font-size:11px;color:#9ca3af;margin-top:2px;">
                {{.FormName}}
              </span>
            </td>
          </tr>
          <tr>
            <td style="background-color:#1f2937;padding:14px 40px;border-left:3px solid #10b981;">
              <p style="margin:0;font-size:15px;font-weight:600;color:#e5e7eb;">{{.Subject}}</p>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:28px 40px;">
              <table width="100%" cellpadding="0" cellspacing="0" role="presentation">
                {{range .Fields}}
                <tr>
                  <td style="padding:8px 0;border-bottom:1px solid #f3f4f6;vertical-align:top;
                             font-size:12px;color:#6b7280;width:35%;">{{.Name}}</td>
                  <td style="padding:8px 0;border-bottom:1px solid #f3f4f6;
                             font-size:13px;color:#111827;word-break:break-word;">{{.Value}}</td>
                </tr>
                {{end}}
              </table>
            </td>
          </tr>
          <tr>
            <td style="background-color:#f9fafb;padding:18px 40px;
                       border-top:1px solid #e5e7eb;border-radius:0 0 12px 12px;">
              <p style="margin:0;font-size:12px;color:#9ca3af;">
                Submission {{.SubmissionID}} received {{.ReceivedAt}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

type emailField struct {
	Name  string
	Value string
}

// buildEmailHTML renders the HTML email for a submission.
func buildEmailHTML(subject string, sub form.Submission) (string, error) {
	fields := make([]emailField, 0, len(sub.Fields))
	for _, name := range sub.FieldNames() {
		fields = append(fields, emailField{Name: name, Value: fmt.Sprint(sub.Fields[name])})
	}

	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct {
		Subject      string
		FormName     string
		SubmissionID string
		ReceivedAt   string
		Fields       []emailField
	}{
		Subject:      subject,
		FormName:     sub.FormName,
		SubmissionID: sub.ID,
		ReceivedAt:   sub.ReceivedAt.Format("2006-01-02 15:04 UTC"),
		Fields:       fields,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildPlainBody renders the plain-text email body: one "name: value" line
// per field, in stable order.
func buildPlainBody(sub form.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New submission to %s (%s)\n", sub.FormName, sub.FormID)
	fmt.Fprintf(&b, "Received: %s\n\n", sub.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))
	for _, name := range sub.FieldNames() {
		fmt.Fprintf(&b, "%s: %v\n", name, sub.Fields[name])
	}
	return b.String()
}
