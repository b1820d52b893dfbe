package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong secret.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMalformed means the token could not be parsed into header, claims and signature.
	ErrMalformed = errors.New("malformed token")
	// ErrInvalidSignature means the signature or algorithm did not verify against the server key.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired means the token is past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrRevoked means the token was revoked before its natural expiry.
	ErrRevoked = errors.New("token revoked")
	// ErrConflict means the email is already registered.
	ErrConflict = errors.New("email already registered")
	// ErrUnavailable means a backing store timed out or could not be reached. Callers may retry.
	ErrUnavailable = errors.New("auth backend unavailable")
)

// FailureKind names the internal reason a token was rejected, for logs and metrics only.
// It must never be surfaced to clients.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrRevoked):
		return "revoked"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "unknown"
	}
}

// IsUnauthenticated reports whether err is one of the token rejection kinds that collapse
// into a single public "unauthenticated" response.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrRevoked)
}
