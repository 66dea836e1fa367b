package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// wash record does not exist in the database. Update and Delete return it when
// zero rows were affected.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. negative amount, unknown service type, malformed date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when an identity/secret pair is not in the
// configured credential set, or when a session token is missing, invalid or revoked.
// Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when an authenticated session lacks the role
// required for the operation (e.g. a read-only session attempting a write).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrExport is returned when the spreadsheet mirror could not be written.
// The record mutation that triggered the export has already been committed.
var ErrExport = errors.New("export failed")
