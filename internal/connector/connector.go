// Package connector contains the notification dispatch core: the Connector
// contract, the type-keyed construction registry, the fan-out dispatcher,
// and the built-in connector implementations (SMTP email, generic webhook,
// Slack).
package connector

import (
	"context"
	"fmt"

	"github.com/shaharia-lab/formrelay/internal/form"
)

// Config is one connector configuration attached to a form. It is read-only
// for the dispatch core; duplicate names are dispatched independently.
type Config struct {
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Enabled  bool           `json:"enabled"`
	Settings map[string]any `json:"settings"`
}

// Result is the outcome of a single connector execution. Expected failure
// modes (missing settings, invalid target, downstream rejection) come back
// as a failed Result, never as a panic.
type Result struct {
	Success  bool
	Message  string
	Metadata map[string]any
	Err      error
}

// Connector is a pluggable notifier resolved by type name at dispatch time.
type Connector interface {
	// Type returns the connector type identifier (e.g. "smtp").
	Type() string
	// Name returns the instance name from configuration.
	Name() string
	// Enabled reports whether this instance should execute.
	Enabled() bool
	// SetEnabled toggles the instance on or off.
	SetEnabled(enabled bool)
	// Execute delivers a notification for the submission using the given
	// settings.
	Execute(ctx context.Context, sub form.Submission, settings map[string]any) Result
}

// base carries the identity shared by all connector implementations.
type base struct {
	typ     string
	name    string
	enabled bool
}

func (b *base) Type() string            { return b.typ }
func (b *base) Name() string            { return b.name }
func (b *base) Enabled() bool           { return b.enabled }
func (b *base) SetEnabled(enabled bool) { b.enabled = enabled }

// ok builds a successful Result.
func ok(message string, metadata map[string]any) Result {
	return Result{Success: true, Message: message, Metadata: metadata}
}

// failed builds a failed Result.
func failed(message string, err error) Result {
	return Result{Success: false, Message: message, Err: err}
}

// settingString reads a string setting; missing or non-string values
// yield "".
func settingString(settings map[string]any, key string) string {
	if v, found := settings[key]; found {
		if s, isStr := v.(string); isStr {
			return s
		}
	}
	return ""
}

// settingInt reads an integer setting, accepting the numeric types YAML and
// JSON decoding produce. Missing or unusable values yield def.
func settingInt(settings map[string]any, key string, def int) int {
	v, found := settings[key]
	if !found {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// settingStrings reads a setting that may be a single string or a list of
// strings.
func settingStrings(settings map[string]any, key string) []string {
	v, found := settings[key]
	if !found {
		return nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, isStr := item.(string); isStr {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// missingSetting is the shared failure for an absent required setting.
func missingSetting(key string) Result {
	return failed(fmt.Sprintf("missing required setting %q", key), nil)
}
