package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Retryable  bool   `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code, so copies produced by WithError still
// compare equal to their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Retryable:  e.Retryable,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	// Registry errors

	ErrFaceNotRegistered = &AppError{
		Code:       "FACE_NOT_REGISTERED",
		Message:    "No face embedding registered for this identity",
		StatusCode: 404,
	}

	ErrEmptyRegistry = &AppError{
		Code:       "EMPTY_REGISTRY",
		Message:    "No registered users in the registry",
		StatusCode: 422,
	}

	// Input errors: the match engine fails closed on these, they are never
	// treated as an accept.

	ErrInvalidEmbedding = &AppError{
		Code:       "INVALID_EMBEDDING",
		Message:    "Embedding is zero-norm or malformed",
		StatusCode: 422,
	}

	ErrDimensionMismatch = &AppError{
		Code:       "DIMENSION_MISMATCH",
		Message:    "Embedding dimensionality does not match the configured model",
		StatusCode: 422,
	}

	// Detection / embedding collaborator errors

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, please provide image with single face",
		StatusCode: 422,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	// ErrCollaboratorUnavailable wraps detection/embedding/storage adapter
	// failures. These are propagated unchanged, never suppressed: a hidden
	// failure here would look identical to a genuine non-match.
	ErrCollaboratorUnavailable = &AppError{
		Code:       "COLLABORATOR_UNAVAILABLE",
		Message:    "A required external service is unavailable",
		StatusCode: 503,
		Retryable:  true,
	}

	// Attendance errors

	// ErrCheckinConflict means a concurrent writer won the check-in race.
	// Surfaced as retryable; the core does not retry on its own because a
	// retry would change the observed check-in timestamp.
	ErrCheckinConflict = &AppError{
		Code:       "ATTENDANCE_CONFLICT",
		Message:    "A concurrent check-in already opened a visit for this identity",
		StatusCode: 409,
		Retryable:  true,
	}

	ErrVisitNotFound = &AppError{
		Code:       "VISIT_NOT_FOUND",
		Message:    "Visit row not found",
		StatusCode: 404,
	}

	ErrVisitAlreadyClosed = &AppError{
		Code:       "VISIT_ALREADY_CLOSED",
		Message:    "Visit row has already been checked out",
		StatusCode: 409,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many denied attempts, please try again later",
		StatusCode: 429,
	}
)
