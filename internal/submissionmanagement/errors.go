package submissionmanagement

import (
	"fmt"
	"strings"
)

// ErrorKind labels the user-input failure modes of a submission. Every
// kind is surfaced verbatim to the submitter and none is fatal to the
// process or retried automatically.
type ErrorKind string

const (
	KindEmptySubmission  ErrorKind = "EmptySubmission"
	KindSchemaError      ErrorKind = "SchemaError"
	KindDuplicateIDs     ErrorKind = "DuplicateIdError"
	KindMissingIDs       ErrorKind = "MissingIdsError"
	KindExtraIDs         ErrorKind = "ExtraIdsError"
	KindInvalidModelName ErrorKind = "InvalidModelName"
	KindMissingModelURL  ErrorKind = "MissingModelUrl"
)

// maxExampleIDs bounds how many offending ids an error message names.
const maxExampleIDs = 5

// ValidationError is a user-facing submission defect. The message names
// the concrete offending values; that is a usability contract, not just a
// log detail.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newEmptySubmissionError() *ValidationError {
	return &ValidationError{Kind: KindEmptySubmission, Message: "Error: Uploaded CSV is empty."}
}

func newSchemaError(found []string) *ValidationError {
	return &ValidationError{
		Kind:    KindSchemaError,
		Message: fmt.Sprintf("Error: CSV must contain exactly 'id' and 'text' columns. Found: %s", strings.Join(found, ", ")),
	}
}

func newDuplicateIDsError(dups []string) *ValidationError {
	return &ValidationError{
		Kind:    KindDuplicateIDs,
		Message: fmt.Sprintf("Error: Duplicate IDs found: %s", strings.Join(truncateIDs(dups), ", ")),
	}
}

func newMissingIDsError(missing []string) *ValidationError {
	return &ValidationError{
		Kind: KindMissingIDs,
		Message: fmt.Sprintf("Error: Missing %d IDs in submission. First few missing: %s",
			len(missing), strings.Join(truncateIDs(missing), ", ")),
	}
}

func newExtraIDsError(extra []string) *ValidationError {
	return &ValidationError{
		Kind: KindExtraIDs,
		Message: fmt.Sprintf("Error: Found %d extra IDs not in reference dataset. First few extra: %s",
			len(extra), strings.Join(truncateIDs(extra), ", ")),
	}
}

func newInvalidModelNameError() *ValidationError {
	return &ValidationError{Kind: KindInvalidModelName, Message: "Error: Please provide a model name."}
}

func newMissingModelURLError(reason string) *ValidationError {
	return &ValidationError{
		Kind:    KindMissingModelURL,
		Message: fmt.Sprintf("Error: Open Source models require a valid model URL: %s", reason),
	}
}

func truncateIDs(ids []string) []string {
	if len(ids) > maxExampleIDs {
		return ids[:maxExampleIDs]
	}
	return ids
}
