package contract

import "fmt"

// MalformedRecordError reports a raw payload that is missing a
// structurally required field (id, created_at). Records failing
// normalization are dropped and logged by the caller, never retried.
type MalformedRecordError struct {
	Source string // source type of the offending payload
	Field  string // the missing or invalid field
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: missing or invalid field %q", e.Source, e.Field)
}

// NewMalformedRecordError builds a MalformedRecordError for the given source and field.
func NewMalformedRecordError(source, field string) error {
	return &MalformedRecordError{Source: source, Field: field}
}
