package storage

import "errors"

// Common storage errors
var (
	ErrEventNotFound = errors.New("event not found")
)

// IsNotFound returns true if the error is an event not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}
