// Package classifier runs the configured detection strategies over extracted
// document text and aggregates their outcomes with per-detector failure
// isolation: one misbehaving detector never takes down classification for a
// document.
package classifier

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"docflow/internal/classifier/detector"
	"docflow/internal/classifier/registry"
	"docflow/pkg/stageerr"
)

// Router executes detectors against one document's text. It borrows detector
// instances read-only from the registry, so a single Router is safe for
// concurrent use.
type Router struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a router over the given detector registry.
func New(reg *registry.Registry, opts ...Option) (*Router, error) {
	if reg == nil {
		return nil, fmt.Errorf("detector registry is required")
	}
	r := &Router{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Classify runs the full active detector set against the text.
func (r *Router) Classify(text string) (*Result, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	return r.run(text, r.registry.All()), nil
}

// ClassifySubset runs only the named detectors against the text. It fails
// with a validation error when the subset is empty or names an unknown
// detector.
func (r *Router) ClassifySubset(text string, names []string) (*Result, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	detectors, err := r.registry.Subset(names)
	if err != nil {
		return nil, err
	}
	return r.run(text, detectors), nil
}

// Names lists the detector names available for classification.
func (r *Router) Names() []string {
	return r.registry.Names()
}

// OutputTypes exposes the registry's detector-name to output-type mapping.
func (r *Router) OutputTypes() map[string]string {
	return r.registry.OutputTypes()
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return stageerr.New(stageerr.CodeValidation, "input text cannot be empty")
	}
	return nil
}

func (r *Router) run(text string, detectors []detector.Detector) *Result {
	result := &Result{
		TextLength: utf8.RuneCountInString(text),
		Detections: make(map[string]detector.Result, len(detectors)),
		Succeeded:  make(map[string]bool, len(detectors)),
		Failed:     make(map[string]string),
	}

	for _, d := range detectors {
		res, err := r.detect(d, text)
		if err != nil {
			result.Failed[d.Name()] = err.Error()
			r.logger.Warn("detector failed",
				"detector", d.Name(),
				"error", err,
			)
			continue
		}
		result.Detections[d.Name()] = res
		result.Succeeded[d.Name()] = true
		r.logger.Debug("detector completed",
			"detector", d.Name(),
			"detected", res.Detected,
			"value", res.Value,
		)
	}
	return result
}

// detect invokes one detector, converting a panic into an ordinary error so
// a newly added detector cannot abort the whole classification.
func (r *Router) detect(d detector.Detector, text string) (res detector.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = stageerr.Newf(stageerr.CodeDetector, "detector panicked: %v", rec)
		}
	}()
	return d.Detect(text), nil
}
