package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	// not found (404)
	ErrUserNotFound = errors.New("user not found")
	ErrPlanNotFound = errors.New("plan not found")
	ErrTaskNotFound = errors.New("task not found")

	// failed precondition (400)
	ErrAssessmentIncomplete = errors.New("assessment must be completed first")
	ErrInvalidProgress      = errors.New("invalid progress submission")
	ErrInvalidInput         = errors.New("invalid input")

	// conflict (409)
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrPlanNotActive      = errors.New("plan is not active")
	ErrConfidenceConflict = errors.New("confidence score changed concurrently, retry the submission")

	// forbidden (403)
	ErrPlanAccessDenied = errors.New("access denied to this plan")

	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")

	// ErrStorageUnavailable means report export has no object storage configured.
	ErrStorageUnavailable = errors.New("report storage is not configured")
)

// ProcessingError wraps an unexpected failure of a multi-step operation.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// processing wraps err unless it already is a ProcessingError.
func processing(op string, err error) error {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return err
	}
	return &ProcessingError{Op: op, Err: err}
}
