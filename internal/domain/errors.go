// backend-go/internal/domain/errors.go
package domain

import "errors"

var (
	// ErrScopeMismatch means the caller's claimed scope does not match the
	// authenticated identity. Fatal before any processing starts.
	ErrScopeMismatch = errors.New("actor scope does not match requested scope")

	// ErrShipmentNotFound is a hard failure of a single evaluation call.
	ErrShipmentNotFound = errors.New("shipment not found")

	// ErrAlreadyResolved means the exception was resolved earlier.
	ErrAlreadyResolved = errors.New("exception already resolved")

	// ErrExceptionNotFound is returned for unknown exception IDs.
	ErrExceptionNotFound = errors.New("exception not found")
)
