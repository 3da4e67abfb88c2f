package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage error")
	ErrDatabase        = errors.New("database error")
	ErrUnknown         = errors.New("unknown error")
)

// ForbiddenError carries audit detail about a denied mutation. Its Error text
// is meant for logs; PublicMessage is what untrusted callers may see.
type ForbiddenError struct {
	ListingID string
	OwnerID   string
	ActorID   string
	ActorRole Role
}

func (e *ForbiddenError) Error() string {
	if e.ListingID == "" {
		return fmt.Sprintf("forbidden: actor %q (role %q) may not create listings", e.ActorID, e.ActorRole)
	}
	return fmt.Sprintf("forbidden: actor %q (role %q) may not modify listing %q owned by %q",
		e.ActorID, e.ActorRole, e.ListingID, e.OwnerID)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func (e *ForbiddenError) PublicMessage() string {
	if e.ListingID == "" {
		return "you do not have permission to create listings"
	}
	return "you do not have permission to modify this listing"
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewDatabaseError wraps a document store failure, keeping the cause.
func NewDatabaseError(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrDatabase, op, cause)
}

// NewStorageError wraps a blob store failure, keeping the cause.
func NewStorageError(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, cause)
}
