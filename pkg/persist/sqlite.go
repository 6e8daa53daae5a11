package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/td0m/tracker/pkg/task"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLite stores a snapshot in a SQLite database. Every Save replaces the whole
// snapshot in one transaction.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, log: slog.New(slog.DiscardHandler)}, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *SQLite) WithLogger(l *slog.Logger) *SQLite {
	if l != nil {
		s.log = l
	}
	return s
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(snap task.Snapshot) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entities"); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (id, kind, title, status, description, minutes, start_time, epic_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	sv := newSavable(snap)
	for _, r := range sv.Rows {
		var start, epic any
		if r.Start != nil {
			start = r.Start.Format(timeLayout)
		}
		if r.Kind == task.KindSubtask {
			epic = int(r.Epic)
		}
		if _, err := insert.ExecContext(ctx, int(r.ID), r.Kind.String(), r.Title, r.Status.String(), r.Description, r.Minutes, start, epic); err != nil {
			return fmt.Errorf("insert %s %d: %w", r.Kind, r.ID, err)
		}
	}
	for i, id := range sv.History {
		if _, err := tx.ExecContext(ctx, "INSERT INTO history (position, entity_id) VALUES (?, ?)", i, int(id)); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLite) Load() (task.Snapshot, error) {
	ctx := context.Background()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, status, description, minutes, start_time, epic_id
		FROM entities ORDER BY id`)
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var sv savable
	for rows.Next() {
		var (
			id            int
			kind, status  string
			r             row
			minutes, epic sql.NullInt64
			start         sql.NullString
		)
		if err := rows.Scan(&id, &kind, &r.Title, &status, &r.Description, &minutes, &start, &epic); err != nil {
			return task.Snapshot{}, fmt.Errorf("scan entity: %w", err)
		}
		r.ID = task.ID(id)
		if err := r.fill(kind, status, minutes, start, epic); err != nil {
			s.log.Warn("skipped row", "id", id, "err", err)
			continue
		}
		sv.Rows = append(sv.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return task.Snapshot{}, fmt.Errorf("query entities: %w", err)
	}

	hist, err := s.db.QueryContext(ctx, "SELECT entity_id FROM history ORDER BY position")
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("query history: %w", err)
	}
	defer hist.Close()
	for hist.Next() {
		var id int
		if err := hist.Scan(&id); err != nil {
			return task.Snapshot{}, fmt.Errorf("scan history: %w", err)
		}
		sv.History = append(sv.History, task.ID(id))
	}
	if err := hist.Err(); err != nil {
		return task.Snapshot{}, fmt.Errorf("query history: %w", err)
	}
	return sv.Snapshot()
}

// fill decodes the text and nullable columns of a stored row.
func (r *row) fill(kind, status string, minutes sql.NullInt64, start sql.NullString, epic sql.NullInt64) error {
	var err error
	if r.Kind, err = task.ParseKind(kind); err != nil {
		return fmt.Errorf("%v: %w", err, ErrMalformedRow)
	}
	if r.Status, err = task.ParseStatus(status); err != nil {
		return fmt.Errorf("%v: %w", err, ErrMalformedRow)
	}
	if minutes.Valid {
		m := minutes.Int64
		r.Minutes = &m
	}
	if start.Valid {
		t, err := time.ParseInLocation(timeLayout, start.String, time.Local)
		if err != nil {
			return fmt.Errorf("start %q: %w", start.String, ErrMalformedRow)
		}
		r.Start = &t
	}
	if r.Kind == task.KindSubtask {
		if !epic.Valid {
			return fmt.Errorf("subtask without epic: %w", ErrMalformedRow)
		}
		r.Epic = task.ID(epic.Int64)
	}
	return nil
}
