package detector

import "regexp"

// headerWindow bounds how far into a document the lease header detector
// looks. Classification signal is expected near the top of the document;
// scanning the full text buys nothing but regex cost.
const headerWindow = 500

// DocTypeLease is the canonical value emitted for any lease match.
const DocTypeLease = "lease"

var leasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bLEASE\b`),
	regexp.MustCompile(`(?i)\bRENTAL\s+AGREEMENT\b`),
	regexp.MustCompile(`(?i)\bTENANCY\s+AGREEMENT\b`),
	regexp.MustCompile(`(?i)\bLEASE\s+AGREEMENT\b`),
}

// LeaseHeader detects lease documents from keywords typically found in the
// opening of a lease agreement: "LEASE", "RENTAL AGREEMENT",
// "TENANCY AGREEMENT", "LEASE AGREEMENT" (case-insensitive, word-bounded).
type LeaseHeader struct {
	name string
}

// NewLeaseHeader constructs the lease header detector.
func NewLeaseHeader(name string) *LeaseHeader {
	return &LeaseHeader{name: name}
}

func (d *LeaseHeader) Name() string { return d.name }

// Detect scans the first 500 characters of the text. A pattern that only
// matches past the window is not a detection, even in part: the match must
// fall entirely inside the window.
func (d *LeaseHeader) Detect(text string) Result {
	if text == "" {
		return NotDetected
	}

	header := text
	if runes := []rune(text); len(runes) > headerWindow {
		header = string(runes[:headerWindow])
	}

	for _, p := range leasePatterns {
		if p.MatchString(header) {
			return Found(DocTypeLease)
		}
	}
	return NotDetected
}
