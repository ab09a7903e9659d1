package engine

import "errors"

var (
	// ErrOutOfBounds is returned by Grid accessors for coordinates outside
	// the grid. The resolver treats it as a wall.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrMalformedLevel is returned when level data cannot build a grid.
	ErrMalformedLevel = errors.New("malformed level")

	// ErrInvalidDirection is returned for movement tokens outside the four
	// cardinal directions.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrActorBusy is returned when input arrives while a move is still
	// resolving. The input is dropped.
	ErrActorBusy = errors.New("actor is moving")

	// ErrActorFinished is returned for input after the actor won or lost.
	ErrActorFinished = errors.New("actor already finished")
)
