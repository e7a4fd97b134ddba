package form_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/formrelay/internal/form"
)

func TestNewSubmission(t *testing.T) {
	fields := map[string]any{"email": "ada@example.com"}
	meta := form.SubmissionMeta{RemoteAddr: "10.0.0.1:1234", UserAgent: "curl/8.0"}

	sub := form.NewSubmission("contact", "Contact Us", fields, meta)

	_, err := uuid.Parse(sub.ID)
	require.NoError(t, err, "id must be a valid uuid")
	assert.Equal(t, "contact", sub.FormID)
	assert.Equal(t, "Contact Us", sub.FormName)
	assert.Equal(t, fields, sub.Fields)
	assert.Equal(t, meta, sub.Meta)
	assert.WithinDuration(t, time.Now().UTC(), sub.ReceivedAt, time.Minute)

	other := form.NewSubmission("contact", "Contact Us", fields, meta)
	assert.NotEqual(t, sub.ID, other.ID)
}

func TestSubmission_FieldNames(t *testing.T) {
	sub := form.Submission{Fields: map[string]any{"zeta": 1, "alpha": 2, "mid": 3}}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, sub.FieldNames())

	empty := form.Submission{}
	assert.Empty(t, empty.FieldNames())
}
