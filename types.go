package patentsearch

import "github.com/cockroachdb/errors"

// ErrorCode represents specific error codes for patent search operations.
type ErrorCode int

const (
	// ErrCodeInvalidRequest is returned when a search request fails validation.
	ErrCodeInvalidRequest ErrorCode = iota + 1000

	// ErrCodeUnknownOperation is returned when an operation name is not registered.
	ErrCodeUnknownOperation

	// ErrCodeMissingCredentials is returned when no API key is configured.
	ErrCodeMissingCredentials

	// ErrCodeRateLimited is returned when the upstream API keeps answering 429
	// after all retry attempts are exhausted.
	ErrCodeRateLimited

	// ErrCodeUpstream is returned when the upstream API answers with a
	// non-retryable HTTP error.
	ErrCodeUpstream

	// ErrCodeMalformedResponse is returned when an upstream 200 body cannot be parsed.
	ErrCodeMalformedResponse

	// ErrCodeTimeout is returned when an upstream call times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when an operation is canceled.
	ErrCodeCanceled
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidRequest:
		return "invalid request"
	case ErrCodeUnknownOperation:
		return "unknown operation"
	case ErrCodeMissingCredentials:
		return "missing credentials"
	case ErrCodeRateLimited:
		return "rate limited"
	case ErrCodeUpstream:
		return "upstream error"
	case ErrCodeMalformedResponse:
		return "malformed response"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Common errors that can be returned by patent search operations.
var (
	// ErrInvalidRequest is returned when a search request fails validation.
	ErrInvalidRequest = newErrorWithCode(ErrCodeInvalidRequest, "patentsearch: invalid request")

	// ErrUnknownOperation is returned when an operation name is not registered.
	ErrUnknownOperation = newErrorWithCode(ErrCodeUnknownOperation, "patentsearch: unknown operation")

	// ErrMissingCredentials is returned when no API key is configured.
	ErrMissingCredentials = newErrorWithCode(ErrCodeMissingCredentials, "patentsearch: API key is not set")

	// ErrRateLimited is returned when retries against a 429 response are exhausted.
	ErrRateLimited = newErrorWithCode(ErrCodeRateLimited, "patentsearch: rate limited")

	// ErrUpstream is returned when the upstream API answers with a non-retryable error.
	ErrUpstream = newErrorWithCode(ErrCodeUpstream, "patentsearch: upstream error")

	// ErrMalformedResponse is returned when an upstream 200 body cannot be parsed.
	ErrMalformedResponse = newErrorWithCode(ErrCodeMalformedResponse, "patentsearch: malformed response")

	// ErrTimeout is returned when an upstream call times out.
	ErrTimeout = newErrorWithCode(ErrCodeTimeout, "patentsearch: operation timed out")

	// ErrCanceled is returned when an operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "patentsearch: operation canceled")
)
