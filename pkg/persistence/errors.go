package persistence

import "errors"

// ErrEntityNotFound is returned when an entity is not found in the repository.
var ErrEntityNotFound = errors.New("entity not found")
