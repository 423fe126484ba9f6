package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies what went wrong during a phase.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindParsingFailed       Kind = "parsing_failed"
	KindExtractionFailed    Kind = "extraction_failed"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
)

// FieldError is a single field-level problem found by validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Error carries the kind and the full error set for a failed phase.
// Phases never panic through to the caller; everything surfaces as one
// of these.
type Error struct {
	Kind   Kind         `json:"kind"`
	Fields []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return string(e.Kind)
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(msgs, "; "))
}

func newValidationError(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func newPhaseError(kind Kind, field string, cause interface{}) *Error {
	return &Error{
		Kind:   kind,
		Fields: []FieldError{{Field: field, Message: fmt.Sprintf("unexpected fault: %v", cause)}},
	}
}

// AsError unwraps err into the structured extraction error, if it is one.
func AsError(err error) (*Error, bool) {
	var ee *Error
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	if ee, ok := AsError(err); ok {
		return ee.Kind == KindValidation
	}
	return false
}
