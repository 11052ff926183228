// internal/common/errors/errors.go

// Package errors provides the standardized job error taxonomy: fatal input
// errors that fail a job immediately versus transient errors that are
// retried at the chunk level before failing the job.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingPrimaryProfile ErrorCode = "MISSING_PRIMARY_PROFILE"
	ErrCodeEmptyCandidateSet     ErrorCode = "EMPTY_CANDIDATE_SET"
	ErrCodeCandidateCapExceeded  ErrorCode = "CANDIDATE_CAP_EXCEEDED"
	ErrCodeMalformedVector       ErrorCode = "MALFORMED_PERSON_VECTOR"
	ErrCodeInvalidJobParams      ErrorCode = "INVALID_JOB_PARAMS"
	ErrCodeUnknownJobType        ErrorCode = "UNKNOWN_JOB_TYPE"

	ErrCodeVectorLoadFailed    ErrorCode = "VECTOR_LOAD_FAILED"
	ErrCodeResultPersistFailed ErrorCode = "RESULT_PERSIST_FAILED"
)

// JobError is a structured error recorded on the job row when processing
// fails. The message is what a caller polling job status will read.
type JobError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
}

func (e *JobError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRetryable reports whether err (or anything it wraps) is a transient
// JobError worth retrying before failing the job.
func IsRetryable(err error) bool {
	var je *JobError
	if errors.As(err, &je) {
		return je.Retryable
	}
	return false
}

// NewMissingPrimaryError is raised when a one-to-many job's owner does not
// have exactly one primary profile.
func NewMissingPrimaryError(found int) *JobError {
	return &JobError{
		Code:      ErrCodeMissingPrimaryProfile,
		Message:   "one_to_many job requires exactly one primary profile",
		Details:   fmt.Sprintf("found %d primary profiles", found),
		Retryable: false,
	}
}

// NewEmptyCandidateSetError is raised when a job has nothing to score.
func NewEmptyCandidateSetError() *JobError {
	return &JobError{
		Code:      ErrCodeEmptyCandidateSet,
		Message:   "no candidate vectors available for matching",
		Retryable: false,
	}
}

// NewCandidateCapError is raised instead of silently truncating an
// oversized candidate pool.
func NewCandidateCapError(count, cap int) *JobError {
	return &JobError{
		Code:      ErrCodeCandidateCapExceeded,
		Message:   "candidate count exceeds the configured maximum",
		Details:   fmt.Sprintf("%d candidates, cap %d", count, cap),
		Retryable: false,
	}
}

// NewMalformedVectorError wraps a vector validation failure at the database
// boundary.
func NewMalformedVectorError(err error) *JobError {
	return &JobError{
		Code:      ErrCodeMalformedVector,
		Message:   "person vector failed validation",
		Details:   err.Error(),
		Retryable: false,
	}
}

// NewInvalidParamsError is raised when the job params document fails schema
// validation.
func NewInvalidParamsError(details string) *JobError {
	return &JobError{
		Code:      ErrCodeInvalidJobParams,
		Message:   "job params failed schema validation",
		Details:   details,
		Retryable: false,
	}
}

// NewUnknownJobTypeError is raised for a job type outside the enum.
func NewUnknownJobTypeError(jobType string) *JobError {
	return &JobError{
		Code:      ErrCodeUnknownJobType,
		Message:   "unknown job type",
		Details:   jobType,
		Retryable: false,
	}
}

// NewVectorLoadError wraps a database failure while loading person vectors.
func NewVectorLoadError(err error) *JobError {
	return &JobError{
		Code:      ErrCodeVectorLoadFailed,
		Message:   "failed to load person vectors",
		Details:   err.Error(),
		Retryable: true,
	}
}

// NewPersistError wraps a result upsert failure. Persist errors are
// transient: the worker retries the chunk before failing the job.
func NewPersistError(err error) *JobError {
	return &JobError{
		Code:      ErrCodeResultPersistFailed,
		Message:   "failed to persist match results",
		Details:   err.Error(),
		Retryable: true,
	}
}
