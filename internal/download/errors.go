package download

import (
	"errors"
	"fmt"
)

// Validated input fields
const (
	FieldURL    = "url"
	FieldFolder = "folder"
	FieldMedia  = "media"
)

// DefaultProcessFailure is the error message used when a failed process wrote
// nothing to stderr
const DefaultProcessFailure = "process failed"

// ErrRecordNotFound is returned for operations on unknown record IDs
var ErrRecordNotFound = errors.New("download record not found")

// ValidationError reports a missing or invalid submission field. No record is
// created when it is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field == FieldMedia {
		return "select at least one of video or audio"
	}
	return fmt.Sprintf("%s is required", e.Field)
}
