package persist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/td0m/tracker/pkg/task"
)

// JSON keeps the flattened rows and history in an indented JSON document.
type JSON struct {
	file string
}

func NewJSON(file string) *JSON {
	return &JSON{
		file: file,
	}
}

// Save replaces the file atomically, like CSV.Save.
func (b *JSON) Save(snap task.Snapshot) error {
	return writeFile(b.file, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newSavable(snap))
	})
}

// Load decodes the document. A missing file yields an error matching fs.ErrNotExist.
func (b *JSON) Load() (task.Snapshot, error) {
	f, err := os.Open(b.file)
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("load: %w", err)
	}
	defer f.Close()
	var s savable
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return task.Snapshot{}, fmt.Errorf("load %s: %w: %w", b.file, ErrMalformedRow, err)
	}
	for i := range s.Rows {
		if s.Rows[i].Start != nil {
			start := s.Rows[i].Start.In(time.Local)
			s.Rows[i].Start = &start
		}
	}
	return s.Snapshot()
}
