package detector

import "regexp"

// jurisdictionRule maps one canonical jurisdiction code to its pattern set.
// Patterns within a rule are ordered most-specific first; phrase forms are
// case-insensitive while bare abbreviations require exact case so that "ca"
// inside ordinary prose does not match.
type jurisdictionRule struct {
	code     string
	patterns []*regexp.Regexp
}

// jurisdictionRules is scanned in declaration order. When a document matches
// patterns for more than one jurisdiction the first rule in this list wins;
// the tie-break is configuration order, not position in the text. Ambiguous
// multi-state documents therefore resolve deterministically.
var jurisdictionRules = []jurisdictionRule{
	{
		code: "CA",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bState\s+of\s+California\b`),
			regexp.MustCompile(`(?i)\bCalifornia\b`),
			regexp.MustCompile(`\bCA\b`),
		},
	},
	{
		code: "MA",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bState\s+of\s+Massachusetts\b`),
			regexp.MustCompile(`(?i)\bCommonwealth\s+of\s+Massachusetts\b`),
			regexp.MustCompile(`(?i)\bMassachusetts\b`),
			regexp.MustCompile(`\bMA\b`),
		},
	},
	{
		code: "NY",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bState\s+of\s+New\s+York\b`),
			regexp.MustCompile(`(?i)\bNew\s+York\b`),
			regexp.MustCompile(`\bNY\b`),
		},
	},
}

// Jurisdiction detects the governing jurisdiction of a document from state
// references anywhere in the text. Supported: California (CA),
// Massachusetts (MA), New York (NY).
type Jurisdiction struct {
	name string
}

// NewJurisdiction constructs the jurisdiction detector.
func NewJurisdiction(name string) *Jurisdiction {
	return &Jurisdiction{name: name}
}

func (d *Jurisdiction) Name() string { return d.name }

// Detect scans the full text and returns the first configured jurisdiction
// with any matching pattern.
func (d *Jurisdiction) Detect(text string) Result {
	if text == "" {
		return NotDetected
	}

	for _, rule := range jurisdictionRules {
		for _, p := range rule.patterns {
			if p.MatchString(text) {
				return Found(rule.code)
			}
		}
	}
	return NotDetected
}
