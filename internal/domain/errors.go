package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification-protocol errors. VerifyCode reports exactly one of the first
// four so a client knows whether to retype the code or request a new one.
var (
	ErrMalformedCode   = errors.New("malformed code")
	ErrNoCodeRequested = errors.New("no code requested")
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeMismatch    = errors.New("code mismatch")
)

// Payment-attestation errors.
var (
	ErrNotConfigured     = errors.New("payment verification not configured")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// ErrStorageUnavailable normalizes record-store connectivity and timeout
// failures at the service boundary. Callers may retry.
var ErrStorageUnavailable = errors.New("storage unavailable")
