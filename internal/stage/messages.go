// Package stage implements the idempotent message-processing discipline of
// the classifier-router: consume, dedupe by key, classify, publish. The wire
// schemas here are the stage's contract with the extraction stage upstream
// and the LLM engine downstream.
package stage

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"docflow/internal/classifier"
	"docflow/pkg/stageerr"
)

var validate = validator.New()

// TextExtractionMessage is the inbound contract from the text-extraction
// topic.
type TextExtractionMessage struct {
	DocID string `json:"docId" validate:"required"`
	Text  string `json:"text" validate:"required"`
}

// LLMRequestMessage is the outbound contract for the llm-requests topic.
// DocType and JurisdictionCode are null when no detector matched.
type LLMRequestMessage struct {
	DocID            string  `json:"docId"`
	Text             string  `json:"text"`
	DocType          *string `json:"docType"`
	JurisdictionCode *string `json:"jurisdictionCode"`
}

// Output types configured for the default detector set. The registry maps
// detector names to these; the outbound builder maps them to message fields.
const (
	OutputDocType      = "docType"
	OutputJurisdiction = "jurisdiction"
)

// ParseInbound decodes and validates one inbound payload. Malformed JSON, a
// blank docId or text, or text over maxTextLength characters all fail with a
// validation error; the caller dead-letters the message and moves on.
func ParseInbound(raw []byte, maxTextLength int) (TextExtractionMessage, error) {
	var msg TextExtractionMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return TextExtractionMessage{}, stageerr.Wrap(err, stageerr.CodeValidation, "malformed inbound message")
	}
	if err := validate.Struct(msg); err != nil {
		return TextExtractionMessage{}, stageerr.Wrap(err, stageerr.CodeValidation, "invalid inbound message")
	}
	if n := utf8.RuneCountInString(msg.Text); n > maxTextLength {
		return TextExtractionMessage{}, stageerr.Newf(stageerr.CodeValidation,
			"text length %d exceeds maximum %d", n, maxTextLength)
	}
	return msg, nil
}

// BuildOutbound maps a classification result onto the outbound message using
// the registry's detector-name to output-type mapping.
func BuildOutbound(in TextExtractionMessage, result *classifier.Result, outputTypes map[string]string) LLMRequestMessage {
	values := result.ValuesByOutputType(outputTypes)
	out := LLMRequestMessage{
		DocID: in.DocID,
		Text:  in.Text,
	}
	if v, ok := values[OutputDocType]; ok {
		out.DocType = &v
	}
	if v, ok := values[OutputJurisdiction]; ok {
		out.JurisdictionCode = &v
	}
	return out
}
