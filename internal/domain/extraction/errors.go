package extraction

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a precondition violation inside a pure
// calculation: input that request validation is expected to reject before
// the calculators ever run. Callers hitting it have a wiring bug, not a
// domain failure.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrExtractionInFlight is returned when a second extraction is started on
// an orchestrator that is still running one.
var ErrExtractionInFlight = errors.New("extraction already in flight")

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// FailureCode is the closed vocabulary for extraction failures. Callers
// branch on the code, never on message text.
type FailureCode string

const (
	FailureInvalidParameters   FailureCode = "INVALID_PARAMETERS"
	FailureInsufficientStorage FailureCode = "INSUFFICIENT_STORAGE"
	FailureVideoNotFound       FailureCode = "VIDEO_NOT_FOUND"
	FailureUnsupportedFormat   FailureCode = "UNSUPPORTED_FORMAT"
	FailureProcessing          FailureCode = "PROCESSING_FAILED"
	FailureCancelled           FailureCode = "CANCELLED"
	FailureUnknown             FailureCode = "UNKNOWN"
)

// Error is the failure shape every orchestration stage reports. Validation
// and quota findings ride along in Violations so callers can show users what
// exactly was wrong.
type Error struct {
	Code       FailureCode
	Message    string
	Violations []ValidationError
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a failure with no underlying cause.
func NewError(code FailureCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError attaches the taxonomy code to an underlying cause, which stays
// reachable through errors.Is / errors.As.
func WrapError(code FailureCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithViolations returns the same error carrying the given findings.
func (e *Error) WithViolations(violations []ValidationError) *Error {
	e.Violations = violations
	return e
}

// CodeOf extracts the taxonomy code from any error chain. Errors that never
// passed through the orchestrator come back as FailureUnknown.
func CodeOf(err error) FailureCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return FailureUnknown
}
