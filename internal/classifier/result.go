package classifier

import "docflow/internal/classifier/detector"

// Result aggregates the outcome of running a set of detectors over one
// document's text. Immutable after construction.
// Invariant: Succeeded and Failed are disjoint, and together cover exactly
// the detectors that were invoked.
type Result struct {
	// TextLength is the character length of the classified text.
	TextLength int

	// Detections maps detector name to its outcome, for detectors that ran
	// to completion.
	Detections map[string]detector.Result

	// Succeeded holds the names of detectors that ran without failure.
	Succeeded map[string]bool

	// Failed maps the names of detectors that failed to their error message.
	Failed map[string]string
}

// HasDetections reports whether any detector found a positive match.
func (r *Result) HasDetections() bool {
	for _, res := range r.Detections {
		if res.Detected {
			return true
		}
	}
	return false
}

// DetectedValues maps each successful detector that matched to its canonical
// detected value.
func (r *Result) DetectedValues() map[string]string {
	values := make(map[string]string)
	for name, res := range r.Detections {
		if r.Succeeded[name] && res.Detected && res.Value != "" {
			values[name] = res.Value
		}
	}
	return values
}

// ValuesByOutputType re-keys detected values by each detector's configured
// output type (e.g. "docType", "jurisdiction") using the given name-to-type
// mapping. Detectors without a mapping entry are skipped.
func (r *Result) ValuesByOutputType(outputTypes map[string]string) map[string]string {
	values := make(map[string]string)
	for name, value := range r.DetectedValues() {
		if outputType, ok := outputTypes[name]; ok {
			values[outputType] = value
		}
	}
	return values
}
