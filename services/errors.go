package services

import "errors"

var (
	// ErrInvalidTransition means the requested status change violates the visit
	// state machine (already terminal, or missed window not yet open).
	ErrInvalidTransition = errors.New("invalid visit status transition")

	// ErrConflict means a conditional write lost to a concurrent update.
	ErrConflict = errors.New("visit was modified concurrently")
)
