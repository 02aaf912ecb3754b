package native

import "errors"

var (
	// ErrUnknownType is returned by CreateComponent when the tag is not in the type map.
	ErrUnknownType = errors.New("native: unknown element type")

	// ErrInvalidTypeMap is returned when a type map entry has an invalid tag or a nil factory.
	ErrInvalidTypeMap = errors.New("native: invalid type map")

	// ErrNilNode is returned when a factory constructs a nil node.
	ErrNilNode = errors.New("native: factory returned nil node")

	// ErrDestroyed is returned when Destroy is called on an already destroyed node.
	ErrDestroyed = errors.New("native: node already destroyed")
)
