// Package detector holds the detection strategies run by the classification
// router. Detectors are stateless, deterministic pattern matchers over
// extracted document text; each is instantiated once at startup and shared
// across concurrent classification calls.
package detector

// Result is the outcome of one detector invocation.
// Invariant: Value is non-empty iff Detected is true.
type Result struct {
	Detected bool
	Value    string
}

// NotDetected is the zero outcome returned when no pattern matches.
var NotDetected = Result{}

// Found wraps a canonical value in a positive result.
func Found(value string) Result {
	return Result{Detected: true, Value: value}
}

// Detector inspects document text and signals a typed detection.
// Implementations must be safe for concurrent use, deterministic, and must
// not fail for any well-formed string input; empty text is simply "not
// detected".
type Detector interface {
	// Name identifies the detector in results, logs, and configuration.
	Name() string

	// Detect reports whether the detector's pattern set matches the text.
	Detect(text string) Result
}
