package domain

import "errors"

// Sentinel errors shared by services and repositories. Controllers map each one to a
// stable HTTP status and error code; anything else is an internal failure.
var (
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrInvalidInput            = errors.New("invalid input")
	ErrClosed                  = errors.New("event has already started")
	ErrAlreadyRegistered       = errors.New("already registered for this event")
	ErrFull                    = errors.New("event is full")
	ErrNotRegistered           = errors.New("not registered for this event")
	ErrCapacityBelowRegistered = errors.New("capacity is below the current number of registrations")
)
