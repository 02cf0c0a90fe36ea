package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("scheduling conflict")
)

var (
	ErrEventNotFound  = notFound("event not found")
	ErrAreaNotFound   = notFound("area not found")
	ErrArtistNotFound = notFound("artist not found")
	ErrTagNotFound    = notFound("tag not found")
)

var (
	ErrInvalidID           = errors.New("invalid id")
	ErrEventNameRequired   = errors.New("event name required")
	ErrInvalidTimeWindow   = errors.New("end must be after start")
	ErrInvalidStatus       = errors.New("invalid event status")
	ErrInvalidCapacity     = errors.New("capacity must not be negative")
	ErrCapacityExceedsArea = errors.New("capacity exceeds area capacity")
	ErrAreaNameRequired    = errors.New("area name required")
	ErrArtistNameRequired  = errors.New("artist name required")
	ErrTagNameRequired     = errors.New("tag name required")
	ErrTagAlreadyExists    = errors.New("tag already exists")
)

type notFoundError struct {
	msg string
}

func notFound(msg string) error {
	return &notFoundError{msg: msg}
}

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationError rejects malformed input before any query runs.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type ConflictKind string

const (
	ConflictAreaOverlap   ConflictKind = "area_overlap"
	ConflictArtistOverlap ConflictKind = "artist_overlap"
)

// ConflictError names the booking rule that was violated and, when known, the
// existing event (and artist) that holds the slot.
type ConflictError struct {
	Kind       ConflictKind
	EventID    string
	EventName  string
	ArtistID   string
	ArtistName string
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case ConflictAreaOverlap:
		if e.EventName == "" {
			return "area is already booked for an overlapping time"
		}
		return fmt.Sprintf("area is already booked by %q for an overlapping time", e.EventName)
	case ConflictArtistOverlap:
		artist := e.ArtistName
		if artist == "" {
			artist = e.ArtistID
		}
		if e.EventName == "" {
			return fmt.Sprintf("artist %q is already booked for an overlapping time", artist)
		}
		return fmt.Sprintf("artist %q already performs at %q for an overlapping time", artist, e.EventName)
	default:
		return ErrConflict.Error()
	}
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
