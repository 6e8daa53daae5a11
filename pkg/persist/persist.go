package persist

import (
	"errors"

	"github.com/td0m/tracker/pkg/task"
)

// ErrMalformedRow marks a stored row that could not be decoded.
var ErrMalformedRow = errors.New("malformed row")

type Persistor interface {
	Save(task.Snapshot) error
	Load() (task.Snapshot, error)
}
