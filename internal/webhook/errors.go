package webhook

import "errors"

var (
	// ErrInvalidJSON is returned when the body is not valid JSON
	ErrInvalidJSON = errors.New("invalid JSON payload")

	// ErrNotObject is returned when the body is valid JSON but not an object
	ErrNotObject = errors.New("payload is not a JSON object")
)
