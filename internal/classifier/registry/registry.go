// Package registry loads detector descriptors from configuration and builds
// the active detector set. Implementation references resolve through an
// explicit builder table rather than any dynamic loading, so an unresolvable
// reference is a startup failure, never a first-use surprise.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"docflow/internal/classifier/detector"
	"docflow/pkg/stageerr"
)

// Descriptor is one external declarative record describing a detector's
// identity and construction.
type Descriptor struct {
	Name        string `json:"name" validate:"required"`
	Impl        string `json:"impl" validate:"required"`
	Description string `json:"description"`
	OutputType  string `json:"output_type" validate:"required"`
}

// file is the on-disk shape of the descriptor configuration.
type file struct {
	Detectors []Descriptor `json:"detectors" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Builder constructs a detector variant under a configured name.
type Builder func(name string) detector.Detector

// builders maps implementation references to constructors. Adding a detector
// variant means adding a row here and referencing it from configuration.
var builders = map[string]Builder{
	"lease_header": func(name string) detector.Detector { return detector.NewLeaseHeader(name) },
	"jurisdiction": func(name string) detector.Detector { return detector.NewJurisdiction(name) },
}

// Registry owns the configured detector instances for the process lifetime.
// Detectors are instantiated once at load and shared read-only across
// concurrent classification calls.
type Registry struct {
	descriptors []Descriptor
	instances   map[string]detector.Detector
}

// Load reads, validates, and resolves the descriptor file. It fails with a
// configuration error on unreadable or malformed JSON, a missing required
// field, a duplicate descriptor name, or an implementation reference with no
// registered builder.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, stageerr.Wrap(err, stageerr.CodeConfig, fmt.Sprintf("read detector config %s", path))
	}
	return Parse(raw)
}

// Parse builds a registry from raw descriptor JSON.
func Parse(raw []byte) (*Registry, error) {
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, stageerr.Wrap(err, stageerr.CodeConfig, "malformed detector config")
	}
	if err := validate.Struct(f); err != nil {
		return nil, stageerr.Wrap(err, stageerr.CodeConfig, "invalid detector config")
	}

	r := &Registry{
		descriptors: f.Detectors,
		instances:   make(map[string]detector.Detector, len(f.Detectors)),
	}
	for _, d := range f.Detectors {
		if _, dup := r.instances[d.Name]; dup {
			return nil, stageerr.Newf(stageerr.CodeConfig, "duplicate detector name %q", d.Name)
		}
		build, ok := builders[d.Impl]
		if !ok {
			return nil, stageerr.Newf(stageerr.CodeConfig, "detector %q references unknown implementation %q", d.Name, d.Impl)
		}
		r.instances[d.Name] = build(d.Name)
	}
	return r, nil
}

// Names lists configured detector names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		names = append(names, d.Name)
	}
	return names
}

// Descriptor returns the configuration record for one detector.
func (r *Registry) Descriptor(name string) (Descriptor, error) {
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, nil
		}
	}
	return Descriptor{}, stageerr.Newf(stageerr.CodeValidation, "detector %q not found in configuration", name)
}

// All returns the full active detector set in declaration order.
func (r *Registry) All() []detector.Detector {
	out := make([]detector.Detector, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, r.instances[d.Name])
	}
	return out
}

// Subset returns the named detectors in the order given. It fails with a
// validation error if names is empty or references an unknown detector.
func (r *Registry) Subset(names []string) ([]detector.Detector, error) {
	if len(names) == 0 {
		return nil, stageerr.New(stageerr.CodeValidation, "at least one detector name must be specified")
	}
	out := make([]detector.Detector, 0, len(names))
	for _, name := range names {
		inst, ok := r.instances[name]
		if !ok {
			return nil, stageerr.Newf(stageerr.CodeValidation, "unknown detector %q, available: %v", name, r.Names())
		}
		out = append(out, inst)
	}
	return out, nil
}

// OutputTypes maps each detector name to its configured output type, e.g.
// "docType" or "jurisdiction". The stage uses this to place detected values
// into the outbound message.
func (r *Registry) OutputTypes() map[string]string {
	out := make(map[string]string, len(r.descriptors))
	for _, d := range r.descriptors {
		out[d.Name] = d.OutputType
	}
	return out
}
