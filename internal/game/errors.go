package game

import "errors"

// Rejection taxonomy. Every failed operation returns one of these and
// leaves match state exactly as it was; there are no partial applies.
var (
	// ErrWrongActor is returned when a seat acts out of turn.
	ErrWrongActor = errors.New("seat is not the acting seat")

	// ErrWrongPhase is returned when an operation is invalid for the
	// current phase.
	ErrWrongPhase = errors.New("operation not valid in current phase")

	// ErrInvalidBid is returned for bids outside [MinBid, MaxBid].
	ErrInvalidBid = errors.New("bid amount out of range")

	// ErrNotHeld is returned when a played card is not in the seat's hand.
	ErrNotHeld = errors.New("card not in hand")

	// ErrInvalidPlay is returned for follow-suit violations.
	ErrInvalidPlay = errors.New("card violates follow-suit rule")

	// ErrGamePaused is returned for mutating operations while paused.
	ErrGamePaused = errors.New("match is paused")

	// ErrUnauthorized is returned when a non-admin seat attempts an
	// admin operation.
	ErrUnauthorized = errors.New("seat is not the match admin")

	// ErrMatchFull is returned when a fifth player tries to join.
	ErrMatchFull = errors.New("match already has four seats")

	// ErrMatchNotFound is returned by the match directory for unknown codes.
	ErrMatchNotFound = errors.New("match not found")
)
