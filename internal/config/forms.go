package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaharia-lab/formrelay/internal/connector"
)

// rawFormEntry is used for initial YAML parsing of a single form definition.
type rawFormEntry struct {
	Name       string             `yaml:"name"`
	Connectors []rawConnectorSpec `yaml:"connectors"`
}

// rawConnectorSpec mirrors one connector block under a form.
type rawConnectorSpec struct {
	Type     string         `yaml:"type"`
	Name     string         `yaml:"name"`
	Enabled  *bool          `yaml:"enabled"`
	Settings map[string]any `yaml:"settings"`
}

// Form is one parsed form definition: a stable id, a display name, and the
// connector configurations notified for each accepted submission.
type Form struct {
	ID         string
	Name       string
	Connectors []connector.Config
}

// HasEnabledConnectors reports whether at least one connector is enabled.
// The intake handler uses this to decide whether a submission is worth
// enqueueing at all.
func (f *Form) HasEnabledConnectors() bool {
	for _, c := range f.Connectors {
		if c.Enabled {
			return true
		}
	}
	return false
}

// FormRegistry holds the parsed form definitions. It is built once at startup
// and read-only afterwards.
type FormRegistry struct {
	forms map[string]*Form // keyed by lowercase form id
}

// Get returns the form with the given id (case-insensitive), or nil.
func (r *FormRegistry) Get(id string) *Form {
	return r.forms[strings.ToLower(id)]
}

// Has reports whether the registry contains a form with the given id.
func (r *FormRegistry) Has(id string) bool {
	_, ok := r.forms[strings.ToLower(id)]
	return ok
}

// All returns all registered forms.
func (r *FormRegistry) All() []*Form {
	out := make([]*Form, 0, len(r.forms))
	for _, f := range r.forms {
		out = append(out, f)
	}
	return out
}

// LoadForms reads the forms registry YAML file at filePath and returns a
// populated FormRegistry. If the file does not exist, an empty registry is
// returned (not an error) so the service can start before any form is set up.
func LoadForms(filePath string) (*FormRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is from admin-configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &FormRegistry{forms: make(map[string]*Form)}, nil
		}
		return nil, fmt.Errorf("reading forms registry %q: %w", filePath, err)
	}

	var raw struct {
		Forms map[string]rawFormEntry `yaml:"forms"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing forms registry %q: %w", filePath, err)
	}

	registry := &FormRegistry{forms: make(map[string]*Form, len(raw.Forms))}
	for id, entry := range raw.Forms {
		if id == "" {
			return nil, fmt.Errorf("forms registry %q: form with empty id", filePath)
		}
		form := &Form{
			ID:         id,
			Name:       entry.Name,
			Connectors: make([]connector.Config, 0, len(entry.Connectors)),
		}
		if form.Name == "" {
			form.Name = id
		}
		for i, spec := range entry.Connectors {
			if spec.Type == "" {
				return nil, fmt.Errorf("forms registry %q: form %q connector %d has no type", filePath, id, i)
			}
			enabled := true
			if spec.Enabled != nil {
				enabled = *spec.Enabled
			}
			form.Connectors = append(form.Connectors, connector.Config{
				Type:     spec.Type,
				Name:     spec.Name,
				Enabled:  enabled,
				Settings: spec.Settings,
			})
		}
		registry.forms[strings.ToLower(id)] = form
	}
	return registry, nil
}
