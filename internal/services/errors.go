// Package services defines the business logic for applications, documents,
// and user accounts. This file centralizes the service-level error taxonomy so
// that it can be consistently returned by service methods and checked by
// callers.
//
// Translation into HTTP status codes is performed at the handler layer; the
// services only guarantee the kind taxonomy:
//
//   - *ValidationError        — a required field is missing or empty
//   - *InvalidTransitionError — a status change the state machine forbids
//   - ErrApplicationNotFound / ErrDocumentNotFound — unknown id, or a record
//     owned by another user (deliberately indistinguishable)
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/applicationtrack/applicationtrack-backend/internal/status"
)

// ValidationError reports every missing required field of one request at
// once, rather than one at a time.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// InvalidTransitionError reports a status change not permitted from the
// record's current status. The offending pair is carried so callers can name
// it in the response.
type InvalidTransitionError struct {
	From status.Status
	To   status.Status
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// Record lookup errors.
var (
	// ErrApplicationNotFound indicates that the requested application does
	// not exist or is not accessible to the current user.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrDocumentNotFound indicates that the requested document does not
	// exist or is not accessible to the current user.
	ErrDocumentNotFound = errors.New("document not found")
)

// Account errors.
var (
	// ErrUsernameTaken is returned when registering with a username that
	// already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when registering with an email that already
	// exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown username or
	// a wrong password. The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrWeakPassword is returned when a registration password is shorter
	// than the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)
