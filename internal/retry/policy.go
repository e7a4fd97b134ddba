// Package retry implements the retry/backoff policy layer for connector
// execution. Policies are built once per connector category and shared
// read-only across all invocations of that category. The executor is an
// explicit, inspectable loop rather than a resilience-library pipeline, so
// the per-category classification rules stay colocated and testable.
package retry

import (
	"math/rand/v2"
	"strings"
	"time"
)

// Connector categories with distinct retry behavior.
const (
	CategoryHTTPGeneric = "http-generic"
	CategoryChatWebhook = "chat-webhook"
	CategoryEmail       = "transactional-email"
)

// BackoffKind selects the growth function for the delay between attempts.
type BackoffKind int

const (
	BackoffExponential BackoffKind = iota
	BackoffLinear
	BackoffConstant
)

// JitterKind selects how a computed delay is randomized.
type JitterKind int

const (
	// JitterDecorrelated randomizes within a range bounded by the previous
	// delay, which spreads out concurrent retriers instead of letting them
	// storm in lockstep.
	JitterDecorrelated JitterKind = iota
	// JitterFull randomizes uniformly between zero and the computed delay.
	JitterFull
)

// Policy is the immutable retry specification for one connector category.
type Policy struct {
	Category string

	// MaxRetries is the number of retry attempts after the initial try, so
	// the total attempt count is MaxRetries+1.
	MaxRetries int

	BaseDelay time.Duration
	MaxDelay  time.Duration
	UseJitter bool
	Jitter    JitterKind
	Backoff   BackoffKind

	// ShouldRetry classifies a failed attempt: true means transient
	// (retryable), false means terminal.
	ShouldRetry func(error) bool
}

// Delay computes the backoff before retry number attempt (1-based). prev is
// the delay used before the previous retry (zero for the first), which the
// decorrelated jitter uses as its upper anchor.
func (p Policy) Delay(attempt int, prev time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	switch p.Backoff {
	case BackoffExponential:
		for i := 0; i < attempt; i++ {
			d *= 2
			if d >= p.MaxDelay {
				break
			}
		}
	case BackoffLinear:
		d = p.BaseDelay * time.Duration(attempt)
	case BackoffConstant:
		// base delay as-is
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	if !p.UseJitter {
		return d
	}
	return p.jittered(d, prev)
}

// jittered randomizes d according to the policy's jitter kind.
func (p Policy) jittered(d, prev time.Duration) time.Duration {
	switch p.Jitter {
	case JitterFull:
		if d <= 0 {
			return 0
		}
		d = time.Duration(rand.Int64N(int64(d) + 1))
	default: // decorrelated
		lo := p.BaseDelay
		hi := prev * 3
		if hi < lo {
			hi = d
		}
		if hi <= lo {
			return lo
		}
		d = lo + time.Duration(rand.Int64N(int64(hi-lo)))
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Settings is the static retry configuration shared by all categories.
// Unrecognized BackoffType or JitterType values fall back to exponential and
// decorrelated respectively.
type Settings struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	UseJitter   bool
	JitterType  string
	BackoffType string
}

// Provider builds and caches one Policy per connector category.
type Provider struct {
	policies map[string]Policy
}

// NewProvider constructs a Provider from the given settings. The policy set
// is built once here; ForCategory only reads it afterwards.
func NewProvider(s Settings) *Provider {
	backoff := parseBackoff(s.BackoffType)
	jitter := parseJitter(s.JitterType)

	base := Policy{
		MaxRetries: s.MaxRetries,
		BaseDelay:  s.BaseDelay,
		MaxDelay:   s.MaxDelay,
		UseJitter:  s.UseJitter,
		Jitter:     jitter,
		Backoff:    backoff,
	}

	policies := make(map[string]Policy, 3)
	for _, c := range []struct {
		category    string
		shouldRetry func(error) bool
	}{
		{CategoryHTTPGeneric, IsTransientHTTP},
		{CategoryChatWebhook, IsTransientHTTP},
		{CategoryEmail, IsTransientSMTP},
	} {
		p := base
		p.Category = c.category
		p.ShouldRetry = c.shouldRetry
		policies[c.category] = p
	}

	return &Provider{policies: policies}
}

// ForCategory returns the policy for the given category. Unknown categories
// get the generic HTTP policy so a new connector is still covered before a
// dedicated category is added.
func (p *Provider) ForCategory(category string) Policy {
	if pol, ok := p.policies[strings.ToLower(category)]; ok {
		return pol
	}
	return p.policies[CategoryHTTPGeneric]
}

func parseBackoff(s string) BackoffKind {
	switch strings.ToLower(s) {
	case "linear":
		return BackoffLinear
	case "constant":
		return BackoffConstant
	default:
		return BackoffExponential
	}
}

func parseJitter(s string) JitterKind {
	switch strings.ToLower(s) {
	case "full":
		return JitterFull
	default:
		return JitterDecorrelated
	}
}
