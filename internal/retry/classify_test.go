package retry_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/formrelay/internal/retry"
)

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, retry.RetryableStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 301, 400, 401, 403, 404, 422, 501} {
		assert.False(t, retry.RetryableStatus(code), "status %d", code)
	}
}

func TestIsTransientHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 503", &retry.StatusError{StatusCode: 503}, true},
		{"status 429", &retry.StatusError{StatusCode: 429}, true},
		{"wrapped status 500", fmt.Errorf("posting webhook: %w", &retry.StatusError{StatusCode: 500}), true},
		{"status 400", &retry.StatusError{StatusCode: 400}, false},
		{"status 404", &retry.StatusError{StatusCode: 404}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"cancellation", context.Canceled, false},
		{"unexpected EOF", io.ErrUnexpectedEOF, true},
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"plain error", errors.New("bad payload"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.IsTransientHTTP(tt.err))
		})
	}
}

func TestIsTransientSMTP_NetworkFailures(t *testing.T) {
	assert.True(t, retry.IsTransientSMTP(context.DeadlineExceeded))
	assert.True(t, retry.IsTransientSMTP(&net.OpError{Op: "dial", Err: errors.New("connection refused")}))
	assert.False(t, retry.IsTransientSMTP(context.Canceled))
	assert.False(t, retry.IsTransientSMTP(errors.New("invalid recipient")))
	assert.False(t, retry.IsTransientSMTP(nil))
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, `unexpected response status "503 Service Unavailable"`,
		(&retry.StatusError{StatusCode: 503, Status: "503 Service Unavailable"}).Error())
	assert.Equal(t, "unexpected response status 503",
		(&retry.StatusError{StatusCode: 503}).Error())
}
