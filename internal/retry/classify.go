package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/wneessen/go-mail"
)

// StatusError reports a non-success HTTP response from a connector's remote
// dependency. Connectors return it so the policy layer can classify the
// status code.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected response status %q", e.Status)
	}
	return fmt.Sprintf("unexpected response status %d", e.StatusCode)
}

// retryableStatusCodes are the HTTP statuses treated as transient.
var retryableStatusCodes = map[int]bool{
	408: true, // request timeout
	429: true, // too many requests
	500: true,
	502: true,
	503: true,
	504: true,
}

// RetryableStatus reports whether an HTTP status code is transient.
func RetryableStatus(code int) bool {
	return retryableStatusCodes[code]
}

// IsTransientHTTP classifies failures from webhook-style connectors:
// connection-level errors, timeouts, and the retryable status codes are
// transient; everything else (including 4xx application rejections) is
// terminal.
func IsTransientHTTP(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return RetryableStatus(se.StatusCode)
	}
	return isNetworkError(err)
}

// IsTransientSMTP classifies failures from the email category. On top of the
// generic network classification it retries connection/handshake/auth
// failures and SMTP 4xx responses, which are transient infrastructure
// failures rather than permanent rejections (e.g. a malformed recipient).
func IsTransientSMTP(err error) bool {
	if err == nil {
		return false
	}
	var se *mail.SendError
	if errors.As(err, &se) {
		if se.Reason == mail.ErrConnect {
			return true
		}
		return se.IsTemp()
	}
	return isNetworkError(err)
}

// isNetworkError reports whether err is a connection-level failure or a
// timeout. Cancellation is deliberately not retryable: it means the caller
// is shutting down.
func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
