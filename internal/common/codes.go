package common

import "errors"

// Wire codes carried in API error payloads. The server maps errors to codes,
// the client maps codes back to the sentinels above, so errors.Is works the
// same on both sides of the wire.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeForbidden           = "FORBIDDEN"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

// ErrorCode classifies err into a wire code. Unrecognized errors are
// internal.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return CodeInvalidRefreshToken
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// ErrorFromCode is the client-side inverse of ErrorCode.
func ErrorFromCode(code string) error {
	switch code {
	case CodeInvalidInput:
		return ErrInvalidInput
	case CodeInvalidCredentials:
		return ErrInvalidCredentials
	case CodeInvalidRefreshToken:
		return ErrInvalidOrExpiredToken
	case CodeUnauthenticated:
		return ErrUnauthenticated
	case CodeForbidden:
		return ErrForbidden
	case CodeAlreadyExists:
		return ErrAlreadyExists
	case CodeNotFound:
		return ErrNotFound
	default:
		return ErrInternal
	}
}
