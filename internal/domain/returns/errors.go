package returns

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAllocationConflict means order id allocation kept colliding after every retry.
	ErrAllocationConflict = errors.New("order id allocation conflict")
	// ErrExtraction is matched by every *ExtractionError.
	ErrExtraction = errors.New("could not interpret input")
	ErrEmptyText  = errors.New("free-text description is empty")
)

// FieldError names one violated field rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every field violation of one candidate.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldNames lists the violated fields in report order.
func (e *ValidationError) FieldNames() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Field)
	}
	return out
}

// ExtractionError is returned when free text could not be turned into a candidate.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Cause == nil {
		return ErrExtraction.Error()
	}
	return fmt.Sprintf("%s: %v", ErrExtraction.Error(), e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// StorageError is returned when a valid, keyed record could not be persisted.
// The record does not exist in storage when this is returned.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }
