package task

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("interval overlaps a scheduled task")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPersistence     = errors.New("persistence failure")
)

func notFound(kind Kind, id ID) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
