// Package errs defines the error taxonomy shared by all services. Sentinels
// are matched with errors.Is and mapped to HTTP statuses at the gateway.
package errs

import "errors"

var (
	// ErrUnauthenticated covers missing, malformed or expired credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden covers authenticated callers lacking role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers absent ids, slugs and cross-references.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate keys, last-admin removal, insufficient
	// inventory and illegal status/role values.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput covers malformed request payloads.
	ErrInvalidInput = errors.New("invalid input")
)
