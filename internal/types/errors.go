package types

import "errors"

// ErrInvalidRequest is matched by every caller contract violation.
var ErrInvalidRequest = errors.New("invalid request")

// MissingResumeMessage is the rejection message when no resume content is supplied.
const MissingResumeMessage = "Resume content is missing."

// InvalidRequestError reports a request that violates the caller contract.
// It is the only error a simulation returns for bad input.
type InvalidRequestError struct {
	Field   string
	Message string
}

func (e *InvalidRequestError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidRequest.
func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// ErrMissingResume returns the error for a request with no usable resume source.
func ErrMissingResume() error {
	return &InvalidRequestError{Field: "resume", Message: MissingResumeMessage}
}
