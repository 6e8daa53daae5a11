package persist

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/td0m/tracker/pkg/task"
)

const (
	header     = "id,type,name,status,description,duration,startTime,epic"
	columns    = 8
	timeLayout = "2006-01-02T15:04"
)

var (
	escaper   = strings.NewReplacer("&", "&amp;", ",", "&#44;", "\n", "&#10;", "\r", "&#13;")
	unescaper = strings.NewReplacer("&#13;", "\r", "&#10;", "\n", "&#44;", ",", "&amp;", "&")
)

// CSV stores a snapshot as a comma separated text file: a header, one row per
// entity, a blank line, then the history ids.
type CSV struct {
	file string
	log  *slog.Logger
}

func InCSV(file string) *CSV {
	return &CSV{file: file, log: slog.New(slog.DiscardHandler)}
}

// WithLogger sets where skipped rows are reported.
func (c *CSV) WithLogger(l *slog.Logger) *CSV {
	if l != nil {
		c.log = l
	}
	return c
}

func (c *CSV) File() string {
	return c.file
}

// Save replaces the file atomically. On failure the previous content stays in place.
func (c *CSV) Save(snap task.Snapshot) error {
	return writeFile(c.file, func(w io.Writer) error {
		return Encode(w, snap)
	})
}

// Load reads the file. Rows that cannot be decoded are logged and skipped.
// A missing file yields an error matching fs.ErrNotExist.
func (c *CSV) Load() (task.Snapshot, error) {
	f, err := os.Open(c.file)
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("load: %w", err)
	}
	defer f.Close()

	snap, skipped, err := Decode(f)
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("load %s: %w", c.file, err)
	}
	for _, err := range skipped {
		c.log.Warn("skipped row", "file", c.file, "err", err)
	}
	return snap, nil
}

// Encode writes snap in the text format.
func Encode(w io.Writer, snap task.Snapshot) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(header)
	bw.WriteByte('\n')
	for _, r := range newSavable(snap).Rows {
		bw.WriteString(r.encode())
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	for i, id := range snap.History {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteString(strconv.Itoa(int(id)))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// Decode parses the text format. Malformed rows are returned as skipped and do
// not stop decoding; only a read failure or a missing header is fatal.
func Decode(r io.Reader) (task.Snapshot, []error, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return task.Snapshot{}, nil, err
		}
		// empty file
		return task.Snapshot{}, nil, nil
	}
	if h := strings.TrimRight(sc.Text(), "\r"); h != header {
		return task.Snapshot{}, nil, fmt.Errorf("header %q: %w", h, ErrMalformedRow)
	}

	var (
		s       savable
		skipped []error
		line    = 1
	)
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			break
		}
		r, err := decodeRow(text)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		s.Rows = append(s.Rows, r)
	}
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		for _, field := range strings.Split(text, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				skipped = append(skipped, fmt.Errorf("line %d: history id %q: %w", line, field, ErrMalformedRow))
				continue
			}
			s.History = append(s.History, task.ID(id))
		}
		break
	}
	if err := sc.Err(); err != nil {
		return task.Snapshot{}, skipped, err
	}

	snap, err := s.Snapshot()
	if err != nil {
		return task.Snapshot{}, skipped, err
	}
	return snap, skipped, nil
}

func (r row) encode() string {
	fields := make([]string, columns)
	fields[0] = strconv.Itoa(int(r.ID))
	fields[1] = r.Kind.String()
	fields[2] = escaper.Replace(r.Title)
	fields[3] = r.Status.String()
	fields[4] = escaper.Replace(r.Description)
	if r.Minutes != nil {
		fields[5] = strconv.FormatInt(*r.Minutes, 10)
	}
	if r.Start != nil {
		fields[6] = r.Start.Format(timeLayout)
	}
	if r.Kind == task.KindSubtask {
		fields[7] = strconv.Itoa(int(r.Epic))
	}
	return strings.Join(fields, ",")
}

func decodeRow(line string) (row, error) {
	fields := strings.Split(line, ",")
	if len(fields) != columns {
		return row{}, fmt.Errorf("%d fields, want %d: %w", len(fields), columns, ErrMalformedRow)
	}
	var (
		r   row
		err error
	)
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return row{}, fmt.Errorf("id %q: %w", fields[0], ErrMalformedRow)
	}
	r.ID = task.ID(id)
	if r.Kind, err = task.ParseKind(fields[1]); err != nil {
		return row{}, fmt.Errorf("id %d: %v: %w", id, err, ErrMalformedRow)
	}
	r.Title = unescaper.Replace(fields[2])
	if r.Status, err = task.ParseStatus(fields[3]); err != nil {
		return row{}, fmt.Errorf("id %d: %v: %w", id, err, ErrMalformedRow)
	}
	r.Description = unescaper.Replace(fields[4])
	if fields[5] != "" {
		m, err := strconv.ParseInt(fields[5], 10, 64)
		if err != nil || m < 0 {
			return row{}, fmt.Errorf("id %d: duration %q: %w", id, fields[5], ErrMalformedRow)
		}
		r.Minutes = &m
	}
	if fields[6] != "" {
		start, err := time.ParseInLocation(timeLayout, fields[6], time.Local)
		if err != nil {
			return row{}, fmt.Errorf("id %d: start %q: %w", id, fields[6], ErrMalformedRow)
		}
		r.Start = &start
	}
	if r.Kind == task.KindSubtask {
		epic, err := strconv.Atoi(fields[7])
		if err != nil {
			return row{}, fmt.Errorf("id %d: epic %q: %w", id, fields[7], ErrMalformedRow)
		}
		r.Epic = task.ID(epic)
	}
	return r, nil
}
