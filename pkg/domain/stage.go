// Package domain holds identifiers shared by every pipeline stage: the stage
// enumeration and the cross-stage idempotency key convention. Keeping these in
// one place lets audits and dashboards query by document across all stages
// uniformly.
package domain

import (
	"fmt"

	"docflow/pkg/stageerr"
)

// Stage identifies one unit of the document pipeline.
// Invariant: the value must be one of the fixed stage names below; every
// stage uses exactly these names when writing idempotency keys.
//
// Usage: construct via ParseStage at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Stage string

// Pipeline stages in processing order.
const (
	StageIngestion        Stage = "INGESTION"
	StageExtractor        Stage = "EXTRACTOR"
	StageClassifierRouter Stage = "CLASSIFIER_ROUTER"
	StageLLMEngine        Stage = "LLM_ENGINE"
	StageRulesEngine      Stage = "RULES_ENGINE"
	StageFormatExport     Stage = "FORMAT_EXPORT"
	StageStorage          Stage = "STORAGE"
)

// validStages is the single source of truth for valid stage names.
var validStages = map[Stage]bool{
	StageIngestion:        true,
	StageExtractor:        true,
	StageClassifierRouter: true,
	StageLLMEngine:        true,
	StageRulesEngine:      true,
	StageFormatExport:     true,
	StageStorage:          true,
}

// ParseStage constructs a Stage from external input.
func ParseStage(s string) (Stage, error) {
	if s == "" {
		return "", stageerr.New(stageerr.CodeValidation, "stage name cannot be empty")
	}
	st := Stage(s)
	if !st.IsValid() {
		return "", stageerr.Newf(stageerr.CodeValidation, "unknown stage %q", s)
	}
	return st, nil
}

// IsValid checks if the stage is one of the supported enum values.
func (s Stage) IsValid() bool {
	return validStages[s]
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IdempotencyKey builds the shared cross-stage key for one processed
// document: "<docId>::<stageName>". Every stage writes exactly this shape so
// cross-stage tooling can query by document identifier.
func IdempotencyKey(docID string, stage Stage) string {
	return fmt.Sprintf("%s::%s", docID, stage)
}
