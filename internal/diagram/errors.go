package diagram

import "errors"

var (
	// ErrUnknownReference means an id passed to an add/link operation does
	// not resolve to a live entity. The operation aborts with the model
	// unchanged.
	ErrUnknownReference = errors.New("unknown entity reference")

	// ErrSwimlaneExists means a swimlane with the same label is already in
	// the diagram. Labels are unique keys; the editor resolves swimlanes by
	// label.
	ErrSwimlaneExists = errors.New("swimlane label already exists")

	// ErrIDInUse means a restore was attempted with an id that is already
	// live in the diagram.
	ErrIDInUse = errors.New("entity id already in use")

	// ErrInvalidDistance means an outcome distance was negative.
	ErrInvalidDistance = errors.New("outcome distance must be non-negative")
)
