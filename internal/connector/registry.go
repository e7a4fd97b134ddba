package connector

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shaharia-lab/formrelay/internal/retry"
)

// Dependencies is the shared scope connector constructors resolve from.
type Dependencies struct {
	// HTTPClient is shared by all HTTP-speaking connectors.
	HTTPClient *http.Client
	// Retry supplies the per-category retry policies.
	Retry *retry.Provider
	// Logger is handed to each connector instance.
	Logger *slog.Logger
}

// constructorFn builds a fully wired connector instance with the given
// instance name.
type constructorFn func(deps Dependencies, name string) Connector

// Registry maps connector type names to constructors. The table is built
// once at startup and read-only afterwards; adding a connector category
// means adding one entry to the table, not touching dispatch logic.
type Registry struct {
	deps         Dependencies
	constructors map[string]constructorFn
	logger       *slog.Logger
}

// NewRegistry creates the registry with the built-in connector types.
func NewRegistry(deps Dependencies) *Registry {
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		deps:   deps,
		logger: logger,
		constructors: map[string]constructorFn{
			TypeSMTP:    newSMTPConnector,
			TypeWebhook: newWebhookConnector,
			TypeSlack:   newSlackConnector,
		},
	}
}

// IsSupported reports whether a connector type is registered. The check is
// case-insensitive.
func (r *Registry) IsSupported(connectorType string) bool {
	_, supported := r.constructors[strings.ToLower(connectorType)]
	return supported
}

// Create builds a connector instance for the given type. An unknown type
// returns nil without an error; callers are expected to have checked
// IsSupported first. A constructor panic is recovered and converted to nil
// plus a logged error, so construction never fails past this boundary. The
// instance name defaults to the type when name is empty, and new instances
// start enabled.
func (r *Registry) Create(connectorType, name string) (conn Connector) {
	key := strings.ToLower(connectorType)
	construct, supported := r.constructors[key]
	if !supported {
		return nil
	}
	if name == "" {
		name = key
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("connector construction panicked",
				"connector_type", key,
				"connector_name", name,
				"panic", rec,
			)
			conn = nil
		}
	}()

	return construct(r.deps, name)
}
